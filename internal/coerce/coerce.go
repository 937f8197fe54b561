// Package coerce translates loosely-typed source values into the strongly
// typed representations declared by a mapping descriptor.
package coerce

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/vdakb/docker-sub018/internal/secret"
)

// Kind enumerates the target representations a value can be coerced to.
type Kind int

const (
	String Kind = iota
	Boolean
	Long
	Integer
	Float
	Decimal
	BigInteger
	Bytes
	Date
	Calendar
	Sensitive
)

var kindName = map[Kind]string{
	String:     "string",
	Boolean:    "boolean",
	Long:       "long",
	Integer:    "integer",
	Float:      "float",
	Decimal:    "decimal",
	BigInteger: "biginteger",
	Bytes:      "bytes",
	Date:       "date",
	Calendar:   "calendar",
	Sensitive:  "sensitive",
}

var kindLookup = func() map[string]Kind {
	m := make(map[string]Kind, len(kindName))
	for k, n := range kindName {
		m[n] = k
	}
	return m
}()

func (k Kind) String() string {
	if n, ok := kindName[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// KindFrom resolves a kind by its configuration name.
func KindFrom(name string) (Kind, bool) {
	k, ok := kindLookup[name]
	return k, ok
}

// Value coerces a single untyped value into the representation declared by
// kind.
//
// A nil input yields nil for every kind except Sensitive, which yields the
// empty secret; callers requiring non-nil substitute an empty string.
// Timestamp targets never fail: an unparseable input yields nil. Numeric
// targets fail with a FormatError, an unknown kind with an
// UnsupportedTypeError.
func Value(value any, kind Kind) (any, error) {
	if value == nil {
		if kind == Sensitive {
			return secret.Empty(), nil
		}
		return nil, nil
	}
	switch kind {
	case String:
		return text(value), nil
	case Boolean:
		return truthy(text(value)), nil
	case Long:
		v, err := strconv.ParseInt(text(value), 10, 64)
		if err != nil {
			return nil, &FormatError{Value: text(value), Kind: kind, cause: err}
		}
		return v, nil
	case Integer:
		v, err := strconv.ParseInt(text(value), 10, 32)
		if err != nil {
			return nil, &FormatError{Value: text(value), Kind: kind, cause: err}
		}
		return int(v), nil
	case Float:
		v, err := strconv.ParseFloat(text(value), 64)
		if err != nil {
			return nil, &FormatError{Value: text(value), Kind: kind, cause: err}
		}
		return v, nil
	case Decimal:
		v, _, err := big.ParseFloat(text(value), 10, 236, big.ToNearestEven)
		if err != nil {
			return nil, &FormatError{Value: text(value), Kind: kind, cause: err}
		}
		return v, nil
	case BigInteger:
		v, ok := new(big.Int).SetString(text(value), 10)
		if !ok {
			return nil, &FormatError{Value: text(value), Kind: kind}
		}
		return v, nil
	case Bytes:
		return []byte(text(value)), nil
	case Date, Calendar:
		if t, ok := value.(time.Time); ok {
			return t, nil
		}
		t, ok := parseTime(text(value))
		if !ok {
			// unparseable timestamps degrade to absence, never to an error
			return nil, nil
		}
		return t, nil
	case Sensitive:
		switch v := value.(type) {
		case *secret.Secret:
			return v, nil
		case []byte:
			return secret.New(v), nil
		default:
			return secret.FromString(text(value)), nil
		}
	default:
		return nil, &UnsupportedTypeError{Kind: kind}
	}
}

// List coerces a multi-valued input to a slice of the component kind. A
// string input is tokenized with the composite grammar `"a","b","c"`; slices
// are coerced element-wise.
func List(value any, component Kind) ([]any, error) {
	if value == nil {
		return nil, nil
	}
	var parts []any
	switch v := value.(type) {
	case []any:
		parts = v
	case []string:
		parts = make([]any, len(v))
		for i, s := range v {
			parts[i] = s
		}
	default:
		tokens, err := splitComposite(text(value))
		if err != nil {
			return nil, err
		}
		parts = make([]any, len(tokens))
		for i, s := range tokens {
			parts[i] = s
		}
	}
	out := make([]any, 0, len(parts))
	for _, p := range parts {
		c, err := Value(p, component)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Display renders a coerced value in its canonical string form. Coercing the
// rendered form again yields an equal value for every kind except Sensitive,
// whose cleartext is never rendered.
func Display(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case *big.Int:
		return v.String()
	case *big.Float:
		return v.Text('g', -1)
	case []byte:
		return string(v)
	case time.Time:
		return v.UTC().Format(layoutInternal)
	case *secret.Secret:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func text(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

func truthy(value string) bool {
	return value == "1" || strings.EqualFold(value, "true")
}
