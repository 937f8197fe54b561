package object

// Record is a string-keyed map preserving insertion order. Mapped entries
// are assembled in declaration order of the mapping configuration and the
// downstream consumers rely on that order being stable.
type Record struct {
	keys   []string
	values map[string]any
}

func NewRecord() *Record {
	return &Record{values: make(map[string]any)}
}

// Set stores the value under key. The position of an existing key is kept.
func (r *Record) Set(key string, value any) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

func (r *Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

func (r *Record) Has(key string) bool {
	_, ok := r.values[key]
	return ok
}

func (r *Record) Len() int {
	return len(r.keys)
}

// Keys returns the keys in insertion order. The slice is a copy.
func (r *Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Each walks the entries in insertion order until fn returns false.
func (r *Record) Each(fn func(key string, value any) bool) {
	for _, k := range r.keys {
		if !fn(k, r.values[k]) {
			return
		}
	}
}

// Snapshot returns the entries as a plain map. Insertion order is lost;
// intended for expression bindings and assertions.
func (r *Record) Snapshot() map[string]any {
	out := make(map[string]any, len(r.keys))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}
