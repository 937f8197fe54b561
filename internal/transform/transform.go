// Package transform assembles connector attribute sets from mapped source
// data. It applies the declared attribute mappings of a descriptor, then
// the computed templates, then the configured transformation rules, always
// in that order so templates and rules can refer to already mapped values.
package transform

import (
	"fmt"

	"github.com/vdakb/docker-sub018/internal/coerce"
	"github.com/vdakb/docker-sub018/internal/descriptor"
	"github.com/vdakb/docker-sub018/internal/eval"
	"github.com/vdakb/docker-sub018/internal/object"
)

// Rule rewrites a single mapped value. The record holds every value mapped
// so far, keyed by target id, so a rule can derive its output from sibling
// attributes.
type Rule func(value any, record map[string]any) any

// Ruleset is a named rule registry. Descriptors reference rules by name;
// unresolved names are ignored at application time.
type Ruleset struct {
	rules map[string]Rule
}

func NewRuleset() *Ruleset {
	return &Ruleset{rules: make(map[string]Rule)}
}

func (r *Ruleset) Register(name string, rule Rule) {
	r.rules[name] = rule
}

func (r *Ruleset) Rule(name string) (Rule, bool) {
	rule, ok := r.rules[name]
	return rule, ok
}

// Builder turns source data into connector attribute sets following one
// descriptor. Safe for concurrent use as long as the registered rules are.
type Builder struct {
	evaluator eval.Evaluator
	rules     *Ruleset
}

func NewBuilder(evaluator eval.Evaluator, rules *Ruleset) *Builder {
	if rules == nil {
		rules = NewRuleset()
	}
	return &Builder{evaluator: evaluator, rules: rules}
}

// Build maps the source values onto the attribute set declared by the
// descriptor. The unique-id attribute is excluded; it travels separately
// on every operation. Attributes flagged to be ignored are never emitted.
// A source key missing from the data is skipped unless strict is set, in
// which case every declared attribute yields an entry.
func (b *Builder) Build(d *descriptor.Descriptor, source map[string]any, strict bool) ([]object.Attribute, error) {
	return b.build(d, source, strict, true)
}

// BuildEmbedded maps one row of a multi-valued reference. Unlike Build the
// unique-id attribute is kept, rows of an embedded collection carry their
// identifier inline.
func (b *Builder) BuildEmbedded(d *descriptor.Descriptor, source map[string]any, strict bool) ([]object.Attribute, error) {
	return b.build(d, source, strict, false)
}

func (b *Builder) build(d *descriptor.Descriptor, source map[string]any, strict bool, skipIdentifier bool) ([]object.Attribute, error) {
	record := object.NewRecord()
	for _, rule := range d.Attributes() {
		if skipIdentifier && rule.ID == d.Identifier {
			continue
		}
		if rule.Ignore() {
			continue
		}
		value, present := source[rule.Source]
		if !present && !strict {
			continue
		}
		mapped, err := b.mapValue(d, rule, value)
		if err != nil {
			return nil, fmt.Errorf("transform: %s: %w", rule.ID, err)
		}
		record.Set(rule.ID, mapped)
	}
	if err := ApplyTemplates(d, b.evaluator, record); err != nil {
		return nil, err
	}
	if d.Transformation {
		ApplyRules(d, b.rules, record)
	}
	return collect(record), nil
}

func (b *Builder) mapValue(d *descriptor.Descriptor, rule descriptor.Attribute, value any) (any, error) {
	if rule.ID == d.Password || rule.Sensitive() {
		return coerce.Value(value, coerce.Sensitive)
	}
	if rule.Entitlement() {
		if s, ok := value.(string); ok {
			value = object.StripEntitlement(s)
		}
	}
	kind := rule.Type.Kind()
	switch v := value.(type) {
	case []any:
		return coerce.List(v, kind)
	case []string:
		return coerce.List(v, kind)
	default:
		return coerce.Value(value, kind)
	}
}

// ApplyTemplates evaluates the computed attributes of the descriptor into
// the record. Templates run strictly after plain attribute mapping so they
// can reference mapped values by target id.
func ApplyTemplates(d *descriptor.Descriptor, evaluator eval.Evaluator, record *object.Record) error {
	templates := d.Templates()
	if len(templates) == 0 {
		return nil
	}
	for _, t := range templates {
		out, err := evaluator.Evaluate(t.Source, record.Snapshot())
		if err != nil {
			return fmt.Errorf("transform: template %s: %w", t.ID, err)
		}
		value, err := coerce.Value(out, t.Type.Kind())
		if err != nil {
			return fmt.Errorf("transform: template %s: %w", t.ID, err)
		}
		record.Set(t.ID, value)
	}
	return nil
}

// ApplyRules runs the transformation rules bound by the descriptor over
// the record. Bindings naming an unregistered rule are left untouched.
func ApplyRules(d *descriptor.Descriptor, rules *Ruleset, record *object.Record) {
	if rules == nil {
		return
	}
	for id, name := range d.Transformer() {
		rule, ok := rules.Rule(name)
		if !ok {
			continue
		}
		value, _ := record.Get(id)
		record.Set(id, rule(value, record.Snapshot()))
	}
}

func collect(record *object.Record) []object.Attribute {
	out := make([]object.Attribute, 0, record.Len())
	record.Each(func(key string, value any) bool {
		switch v := value.(type) {
		case []any:
			out = append(out, object.Attribute{Name: key, Values: v})
		default:
			out = append(out, object.Attribute{Name: key, Values: []any{v}})
		}
		return true
	})
	return out
}
