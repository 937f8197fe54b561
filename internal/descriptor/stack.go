package descriptor

import (
	"fmt"
	"strings"
)

// valueStack holds partially built model objects while the parser walks the
// document. Elements locate their owner by stack discipline: closing an
// element pops what it built and attaches it to whatever is then on top.
// Every pop and peek is checked against the expected variant; a mismatch is
// an internal grammar error, never a silent cast.
type valueStack struct {
	items []any
}

func (s *valueStack) push(v any) {
	s.items = append(s.items, v)
}

func (s *valueStack) pop() (any, error) {
	if len(s.items) == 0 {
		return nil, fmt.Errorf("value stack underflow")
	}
	v := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return v, nil
}

func (s *valueStack) peek() (any, error) {
	if len(s.items) == 0 {
		return nil, fmt.Errorf("value stack underflow")
	}
	return s.items[len(s.items)-1], nil
}

func popAs[T any](s *valueStack, want string) (T, error) {
	var zero T
	v, err := s.pop()
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("value stack holds %T where %s was expected", v, want)
	}
	return t, nil
}

func peekAs[T any](s *valueStack, want string) (T, error) {
	var zero T
	v, err := s.peek()
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("value stack holds %T where %s was expected", v, want)
	}
	return t, nil
}

func (s *valueStack) popDescriptor() (*Descriptor, error) {
	return popAs[*Descriptor](s, "descriptor")
}

func (s *valueStack) peekDescriptor() (*Descriptor, error) {
	return peekAs[*Descriptor](s, "descriptor")
}

func (s *valueStack) popAttribute() (*Attribute, error) {
	return popAs[*Attribute](s, "attribute")
}

func (s *valueStack) peekAttribute() (*Attribute, error) {
	return peekAs[*Attribute](s, "attribute")
}

func (s *valueStack) popTemplate() (*Template, error) {
	return popAs[*Template](s, "template")
}

func (s *valueStack) popAction() (*Action, error) {
	return popAs[*Action](s, "action")
}

func (s *valueStack) peekAction() (*Action, error) {
	return peekAs[*Action](s, "action")
}

func (s *valueStack) popPair() (Pair, error) {
	return popAs[Pair](s, "name pair")
}

func (s *valueStack) popPhase() (Phase, error) {
	return popAs[Phase](s, "action phase")
}

func (s *valueStack) popString() (string, error) {
	return popAs[string](s, "string")
}

func (s *valueStack) popBuilder() (*strings.Builder, error) {
	return popAs[*strings.Builder](s, "text buffer")
}

func (s *valueStack) peekBuilder() (*strings.Builder, error) {
	return peekAs[*strings.Builder](s, "text buffer")
}
