package descriptor

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/ianaindex"
)

// Source yields named descriptor documents. The metadata stores satisfy it.
type Source interface {
	Fetch(ctx context.Context, name string) (io.ReadCloser, error)
}

// charsetReader resolves non-UTF-8 document encodings by IANA name.
func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(charset)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("unsupported charset %q", charset)
	}
	return enc.NewDecoder().Reader(input), nil
}

// Parse reads one mapping document and returns the sealed descriptor.
func Parse(r io.Reader) (*Descriptor, error) {
	d := New()
	if err := NewParser(d).Parse(r); err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	d.Seal()
	return d, nil
}

// Load parses the mapping document at the given path.
func Load(path string) (*Descriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("descriptor: %w", err)
	}
	defer f.Close()
	d, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("descriptor: %s: %w", path, err)
	}
	return d, nil
}

// LoadStore parses the named mapping document fetched from a store.
func LoadStore(ctx context.Context, source Source, name string) (*Descriptor, error) {
	rc, err := source.Fetch(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("descriptor: %s: %w", name, err)
	}
	defer rc.Close()
	d, err := Parse(rc)
	if err != nil {
		return nil, fmt.Errorf("descriptor: %s: %w", name, err)
	}
	return d, nil
}
