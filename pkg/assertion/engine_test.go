package assertion

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEngine_RegistersAllBuiltins(t *testing.T) {
	e := NewEngine()

	names := []string{
		"not_empty", "empty", "equals", "not_equals",
		"contains", "contains_exact", "not_contains",
		"contains_any", "one_of", "is_true", "is_false",
		"less_or_equal", "min_length", "min_count",
		"exact_count", "max_duration", "all_pass",
	}

	for _, name := range names {
		assert.True(t, e.Has(name),
			"missing built-in evaluator: %s", name)
		assert.True(t, IsBuiltin(name))
	}
	assert.ElementsMatch(t, names, BuiltinTypes())
	assert.True(t, sort.StringsAreSorted(BuiltinTypes()))
	assert.False(t, IsBuiltin("custom"))
}

func TestDefaultEngine_Register_Success(t *testing.T) {
	e := NewEngine()

	err := e.Register("custom", func(
		_ Definition, _ any,
	) (bool, string) {
		return true, "custom ok"
	})

	require.NoError(t, err)
	assert.True(t, e.Has("custom"))

	r := e.Evaluate(Definition{Type: "custom", Target: "x"}, 1)
	assert.True(t, r.Passed)
	assert.Equal(t, "custom ok", r.Message)
}

func TestDefaultEngine_Register_Duplicate(t *testing.T) {
	e := NewEngine()

	err := e.Register("not_empty", func(
		_ Definition, _ any,
	) (bool, string) {
		return true, "dup"
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestDefaultEngine_Evaluate_UnknownType(t *testing.T) {
	e := NewEngine()

	r := e.Evaluate(Definition{
		Type:   "nonexistent",
		Target: "x",
	}, "hello")

	assert.False(t, r.Passed)
	assert.Contains(t, r.Message, "unknown assertion type")
}

func TestDefaultEngine_Evaluate_CarriesExpectedAndActual(t *testing.T) {
	e := NewEngine()

	r := e.Evaluate(Definition{
		Type:   "contains",
		Target: "page_title",
		Value:  "Swag Labs",
	}, "Swag Labs")

	assert.True(t, r.Passed)
	assert.Equal(t, "page_title", r.Target)
	assert.Equal(t, "Swag Labs", r.Expected)
	assert.Equal(t, "Swag Labs", r.Actual)
}

func TestDefaultEngine_EvaluateAll(t *testing.T) {
	e := NewEngine()

	results := e.EvaluateAll([]Definition{
		{Type: "contains", Target: "current_url", Value: "inventory"},
		{Type: "empty", Target: "error_text"},
		{Type: "not_empty", Target: "missing"},
	}, map[string]any{
		"current_url": "https://www.saucedemo.com/inventory.html",
		"error_text":  "",
	})

	require.Len(t, results, 3)
	assert.True(t, results[0].Passed)
	assert.True(t, results[1].Passed)
	assert.False(t, results[2].Passed)
	assert.Contains(t, results[2].Message, "target not observed: missing")
}

func TestDefaultEngine_Evaluate_OneOfReportsValues(t *testing.T) {
	r := NewEngine().Evaluate(Definition{
		Type:   "one_of",
		Target: "error_text",
		Values: []any{"a", "b"},
	}, "c")

	assert.False(t, r.Passed)
	assert.Equal(t, []any{"a", "b"}, r.Expected)
}

func TestDefaultEngine_CustomTypeIsNotBuiltin(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.Register("custom", func(Definition, any) (bool, string) { return true, "" }))
	assert.True(t, e.Has("custom"))
	assert.False(t, IsBuiltin("custom"))
	assert.False(t, NewEngine().Has("custom"), "registration is per engine")
}
