package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	e, err := NewEvaluator(Host{Platform: "Android", Conditions: []string{"inputstream.adaptive"}})
	require.NoError(t, err)
	return e
}

func TestEvaluator_Eval(t *testing.T) {
	e := newTestEvaluator(t)

	t.Run("Should evaluate platform comparisons case-insensitively", func(t *testing.T) {
		ok, err := e.Eval(`platform == "android"`)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = e.Eval(`platform == "windows"`)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Should evaluate host condition membership", func(t *testing.T) {
		ok, err := e.Eval(`"inputstream.adaptive" in conditions`)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = e.Eval(`"inputstream.ffmpegdirect" in conditions`)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Should accept literal booleans", func(t *testing.T) {
		ok, err := e.Eval("true")
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestEvaluator_Compile(t *testing.T) {
	e := newTestEvaluator(t)

	t.Run("Should reject empty expressions", func(t *testing.T) {
		assert.ErrorIs(t, e.Compile("  "), ErrEmptyExpression)
	})

	t.Run("Should reject syntax errors", func(t *testing.T) {
		assert.Error(t, e.Compile(`platform ==`))
	})

	t.Run("Should reject unknown variables", func(t *testing.T) {
		assert.Error(t, e.Compile(`addon == "x"`))
	})

	t.Run("Should reject non-bool expressions", func(t *testing.T) {
		assert.ErrorIs(t, e.Compile(`platform`), ErrNotBool)
		assert.ErrorIs(t, e.Compile(`1 + 2`), ErrNotBool)
	})

	t.Run("Should cache compiled programs", func(t *testing.T) {
		require.NoError(t, e.Compile(`platform == "linux"`))
		_, ok := e.programs.Load(`platform == "linux"`)
		assert.True(t, ok)
	})
}

func TestNewEvaluator(t *testing.T) {
	t.Run("Should accept a host without conditions", func(t *testing.T) {
		e, err := NewEvaluator(Host{})
		require.NoError(t, err)
		ok, err := e.Eval(`size(conditions) == 0`)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}
