// Package secret provides a write-only wrapper for sensitive character data.
//
// A Secret is populated once and from then on only exposes its cleartext to
// an Accessor callback. The String method renders a constant mask so a value
// can never leak through logging or error formatting.
package secret

import (
	"crypto/subtle"
	"unicode/utf8"
)

const mask = "********"

// Secret holds sensitive character data. The zero value is an empty secret.
type Secret struct {
	data []byte
}

// New copies the given bytes into a fresh Secret and wipes the source slice
// so the caller does not retain a cleartext copy.
func New(b []byte) *Secret {
	s := &Secret{data: make([]byte, len(b))}
	copy(s.data, b)
	for i := range b {
		b[i] = 0
	}
	return s
}

// FromString wraps string data. Strings are immutable in Go, so the source
// cannot be wiped; prefer New with a byte slice wherever the call site
// controls the buffer.
func FromString(v string) *Secret {
	s := &Secret{data: make([]byte, len(v))}
	copy(s.data, v)
	return s
}

// Empty returns the empty secret, the substitute for an absent sensitive
// value.
func Empty() *Secret {
	return &Secret{}
}

// Access invokes fn with the cleartext. The slice is only valid for the
// duration of the call and must not be retained.
func (s *Secret) Access(fn func(clear []byte)) {
	fn(s.data)
}

// Len reports the number of cleartext bytes.
func (s *Secret) Len() int {
	return len(s.data)
}

// RuneCount reports the number of characters in the cleartext.
func (s *Secret) RuneCount() int {
	return utf8.RuneCount(s.data)
}

// Equal reports whether both secrets unwrap to the same cleartext. This is
// the only equality defined for secrets; wrapper identity is meaningless.
func (s *Secret) Equal(other *Secret) bool {
	if other == nil {
		return false
	}
	return subtle.ConstantTimeCompare(s.data, other.data) == 1
}

// Clear wipes the cleartext. The secret is empty afterwards.
func (s *Secret) Clear() {
	for i := range s.data {
		s.data[i] = 0
	}
	s.data = s.data[:0]
}

// String renders a constant mask, never the cleartext.
func (s *Secret) String() string {
	return mask
}
