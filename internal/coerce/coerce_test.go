package coerce

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vdakb/docker-sub018/internal/secret"
)

func TestValueString(t *testing.T) {
	v, err := Value("hello", String)
	require.NoError(t, err)
	assert.Equal(t, "hello", v)

	v, err = Value(42, String)
	require.NoError(t, err)
	assert.Equal(t, "42", v)
}

func TestValueNil(t *testing.T) {
	for _, kind := range []Kind{String, Boolean, Long, Date, Calendar} {
		v, err := Value(nil, kind)
		require.NoError(t, err)
		assert.Nil(t, v, "kind %s", kind)
	}
	// sensitive is the exception, a missing secret is the empty secret
	v, err := Value(nil, Sensitive)
	require.NoError(t, err)
	s, ok := v.(*secret.Secret)
	require.True(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestValueBoolean(t *testing.T) {
	cases := map[string]bool{
		"1":     true,
		"true":  true,
		"TRUE":  true,
		"0":     false,
		"false": false,
		"yes":   false,
	}
	for in, want := range cases {
		v, err := Value(in, Boolean)
		require.NoError(t, err)
		assert.Equal(t, want, v, "input %q", in)
	}
}

func TestValueNumeric(t *testing.T) {
	v, err := Value("9223372036854775807", Long)
	require.NoError(t, err)
	assert.Equal(t, int64(9223372036854775807), v)

	v, err = Value("17", Integer)
	require.NoError(t, err)
	assert.Equal(t, 17, v)

	v, err = Value("3.25", Float)
	require.NoError(t, err)
	assert.Equal(t, 3.25, v)
}

func TestValueNumericMalformed(t *testing.T) {
	_, err := Value("not-a-number", Long)
	var formatErr *FormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Equal(t, "not-a-number", formatErr.Value)
	assert.Equal(t, Long, formatErr.Kind)
}

func TestValueUnsupportedKind(t *testing.T) {
	_, err := Value("x", Kind(99))
	var unsupported *UnsupportedTypeError
	assert.ErrorAs(t, err, &unsupported)
}

func TestDateLegacyLadder(t *testing.T) {
	// the three legacy formats are probed by input length
	cases := []struct {
		in   string
		want time.Time
	}{
		{"Mon Jan 02 15:04:05 GMT 2006", time.Date(2006, 1, 2, 15, 4, 5, 0, time.UTC)},
		{"2006-01-02", time.Date(2006, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"2006-01-02 15:04:05 Z", time.Date(2006, 1, 2, 15, 4, 5, 0, time.UTC)},
	}
	for _, c := range cases {
		v, err := Value(c.in, Date)
		require.NoError(t, err, "input %q", c.in)
		got, ok := v.(time.Time)
		require.True(t, ok, "input %q", c.in)
		assert.True(t, c.want.Equal(got), "input %q: got %v", c.in, got)
	}
}

func TestDateGenericFallback(t *testing.T) {
	v, err := Value("2006-01-02T15:04:05Z", Date)
	require.NoError(t, err)
	_, ok := v.(time.Time)
	assert.True(t, ok)
}

func TestDateUnparseableYieldsNil(t *testing.T) {
	v, err := Value("certainly not a date", Date)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestValueSensitive(t *testing.T) {
	v, err := Value("hush", Sensitive)
	require.NoError(t, err)
	s, ok := v.(*secret.Secret)
	require.True(t, ok)
	assert.True(t, s.Equal(secret.FromString("hush")))
	// rendering never leaks the cleartext
	assert.NotContains(t, Display(s), "hush")
}

// Coercing the rendered form of a coerced value must be stable.
func TestRoundTripStability(t *testing.T) {
	cases := []struct {
		in   any
		kind Kind
	}{
		{"plain", String},
		{"true", Boolean},
		{"1234567", Long},
		{"42", Integer},
		{"2.5", Float},
		{"2006-01-02 15:04:05 Z", Date},
	}
	for _, c := range cases {
		first, err := Value(c.in, c.kind)
		require.NoError(t, err)
		second, err := Value(Display(first), c.kind)
		require.NoError(t, err)
		if ft, ok := first.(time.Time); ok {
			st, ok := second.(time.Time)
			require.True(t, ok)
			assert.True(t, ft.Equal(st), "kind %s", c.kind)
			continue
		}
		assert.Equal(t, first, second, "kind %s", c.kind)
	}
}

func TestListFromComposite(t *testing.T) {
	v, err := List(`"a","b","c"`, String)
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b", "c"}, v)
}

func TestListEscapes(t *testing.T) {
	v, err := List(`"say \"hi\"","back\\slash"`, String)
	require.NoError(t, err)
	assert.Equal(t, []any{`say "hi"`, `back\slash`}, v)
}

func TestListMalformedComposite(t *testing.T) {
	for _, in := range []string{`"a",`, `"unterminated`, `"a" "b"`, `bare`} {
		_, err := List(in, String)
		var formatErr *FormatError
		assert.ErrorAs(t, err, &formatErr, "input %q", in)
	}
}

func TestListEmpty(t *testing.T) {
	v, err := List("   ", String)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestListElementwise(t *testing.T) {
	v, err := List([]string{"1", "2"}, Long)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(2)}, v)

	_, err = List([]any{"1", "x"}, Long)
	var formatErr *FormatError
	assert.True(t, errors.As(err, &formatErr))
}

func TestKindFrom(t *testing.T) {
	k, ok := KindFrom("calendar")
	require.True(t, ok)
	assert.Equal(t, Calendar, k)

	_, ok = KindFrom("complex")
	assert.False(t, ok)
}
