package secret

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWipesSource(t *testing.T) {
	src := []byte("cleartext")
	s := New(src)
	assert.Equal(t, make([]byte, len(src)), src)
	assert.Equal(t, len("cleartext"), s.Len())
}

func TestAccess(t *testing.T) {
	s := FromString("hush")
	var got string
	s.Access(func(clear []byte) {
		got = string(clear)
	})
	assert.Equal(t, "hush", got)
}

func TestEqualComparesCleartext(t *testing.T) {
	a := FromString("same")
	b := FromString("same")
	c := FromString("other")
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))
}

func TestEmpty(t *testing.T) {
	e := Empty()
	assert.Equal(t, 0, e.Len())
	assert.True(t, e.Equal(FromString("")))
}

func TestStringNeverLeaks(t *testing.T) {
	s := FromString("hunter2")
	require.NotContains(t, s.String(), "hunter2")
	require.NotContains(t, fmt.Sprintf("%v", s), "hunter2")
	require.NotContains(t, fmt.Sprintf("%+v", s), "hunter2")
}

func TestClear(t *testing.T) {
	s := FromString("gone")
	s.Clear()
	assert.Equal(t, 0, s.Len())
}

func TestRuneCount(t *testing.T) {
	s := FromString("päss")
	assert.Equal(t, 4, s.RuneCount())
	assert.Equal(t, 5, s.Len())
}
