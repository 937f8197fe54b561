package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	e := NewEngine()
	out, err := e.Evaluate(`first + " " + last`, map[string]any{"first": "Ada", "last": "Lovelace"})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", out)
}

func TestEvaluateUndefinedVariableIsNil(t *testing.T) {
	e := NewEngine()
	out, err := e.Evaluate(`missing`, map[string]any{})
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestEvaluateCompileError(t *testing.T) {
	e := NewEngine()
	_, err := e.Evaluate(`1 +`, map[string]any{})
	assert.Error(t, err)
}

func TestEvaluateBindingsDoNotLeakAcrossCalls(t *testing.T) {
	e := NewEngine()
	out, err := e.Evaluate(`name`, map[string]any{"name": "first"})
	require.NoError(t, err)
	assert.Equal(t, "first", out)

	out, err = e.Evaluate(`name`, map[string]any{})
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestCompiledProgramIsCached(t *testing.T) {
	e := NewEngine()
	for i := 0; i < 3; i++ {
		out, err := e.Evaluate(`n * 2`, map[string]any{"n": i})
		require.NoError(t, err)
		assert.Equal(t, i*2, out)
	}
}
