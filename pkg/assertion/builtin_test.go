package assertion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateNotEmptyAndEmpty(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		nonEmpty bool
	}{
		{"nil value", nil, false},
		{"empty string", "", false},
		{"whitespace only", "     ", false},
		{"non-empty string", "Epic sadface", true},
		{"empty slice", []any{}, false},
		{"non-empty string slice", []string{"a"}, true},
		{"empty map", map[string]any{}, false},
		{"integer", 42, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, _ := evaluateNotEmpty(Definition{}, tt.value)
			assert.Equal(t, tt.nonEmpty, ok)
			ok, _ = evaluateEmpty(Definition{}, tt.value)
			assert.Equal(t, !tt.nonEmpty, ok)
		})
	}
}

func TestEvaluateEquals(t *testing.T) {
	tests := []struct {
		name     string
		expected any
		actual   any
		passed   bool
	}{
		{"same string", "password", "password", true},
		{"different string", "password", "text", false},
		{"int vs float", 1280, float64(1280), true},
		{"nil vs nil", nil, nil, true},
		{"string vs int", "1", 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := Definition{Value: tt.expected}
			ok, _ := evaluateEquals(def, tt.actual)
			assert.Equal(t, tt.passed, ok)
			ok, _ = evaluateNotEquals(def, tt.actual)
			assert.Equal(t, !tt.passed, ok)
		})
	}
}

func TestEvaluateContainsVariants(t *testing.T) {
	def := Definition{Value: "locked out"}

	ok, _ := evaluateContains(def, "Epic sadface: Sorry, this user has been Locked Out.")
	assert.True(t, ok)

	ok, _ = evaluateContainsExact(def, "Sorry, this user has been Locked Out.")
	assert.False(t, ok)

	ok, msg := evaluateNotContains(def, "user has been locked out")
	assert.False(t, ok)
	assert.Contains(t, msg, "unexpectedly contains")

	ok, msg = evaluateContains(Definition{Value: 3}, "x")
	assert.False(t, ok)
	assert.Equal(t, "expected value is not a string", msg)

	ok, msg = evaluateContains(def, 3)
	assert.False(t, ok)
	assert.Equal(t, "value is not a string", msg)
}

func TestEvaluateContainsAny(t *testing.T) {
	tests := []struct {
		name   string
		def    Definition
		value  any
		passed bool
	}{
		{"comma list", Definition{Value: "login, sign in"}, "Sign In", true},
		{"string slice", Definition{Value: []string{"login"}}, "LOGIN", true},
		{"values field", Definition{Values: []any{"nope", "log"}}, "login", true},
		{"none match", Definition{Value: "a,b"}, "xyz", false},
		{"non-string", Definition{Value: "a"}, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, _ := evaluateContainsAny(tt.def, tt.value)
			assert.Equal(t, tt.passed, ok)
		})
	}
}

func TestEvaluateOneOf(t *testing.T) {
	def := Definition{Values: []any{"passed", "failed"}}
	ok, _ := evaluateOneOf(def, "failed")
	assert.True(t, ok)
	ok, _ = evaluateOneOf(def, "skipped")
	assert.False(t, ok)
}

func TestEvaluateBooleans(t *testing.T) {
	ok, _ := evaluateIsTrue(Definition{}, true)
	assert.True(t, ok)
	ok, _ = evaluateIsTrue(Definition{}, false)
	assert.False(t, ok)
	ok, msg := evaluateIsTrue(Definition{}, "true")
	assert.False(t, ok)
	assert.Equal(t, "value is not a boolean", msg)

	ok, _ = evaluateIsFalse(Definition{}, false)
	assert.True(t, ok)
	ok, _ = evaluateIsFalse(Definition{}, true)
	assert.False(t, ok)
}

func TestEvaluateLessOrEqual(t *testing.T) {
	tests := []struct {
		name   string
		limit  any
		value  any
		passed bool
	}{
		{"equal widths", 390, 390, true},
		{"narrower", 1280, float64(1265), true},
		{"overflow", 390, int64(412), false},
		{"not a number", 390, "390", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, _ := evaluateLessOrEqual(Definition{Value: tt.limit}, tt.value)
			assert.Equal(t, tt.passed, ok)
		})
	}
}

func TestEvaluateCounts(t *testing.T) {
	ok, _ := evaluateMinLength(Definition{Value: 1}, "Username")
	assert.True(t, ok)
	ok, _ = evaluateMinLength(Definition{Value: 1}, "")
	assert.False(t, ok)

	ok, _ = evaluateMinCount(Definition{Value: 2}, []any{1, 2, 3})
	assert.True(t, ok)
	ok, _ = evaluateExactCount(Definition{Value: 11}, 11)
	assert.True(t, ok)
	ok, msg := evaluateExactCount(Definition{Value: 11}, "x")
	assert.False(t, ok)
	assert.Equal(t, "value is not countable", msg)
}

func TestEvaluateMaxDuration(t *testing.T) {
	ok, _ := evaluateMaxDuration(Definition{Value: 15 * time.Second}, 3*time.Second)
	assert.True(t, ok)
	ok, _ = evaluateMaxDuration(Definition{Value: 1000}, 2*time.Second)
	assert.False(t, ok)
	ok, _ = evaluateMaxDuration(Definition{Value: 1000}, 999)
	assert.True(t, ok)
	ok, _ = evaluateMaxDuration(Definition{Value: "2s"}, 1500*time.Millisecond)
	assert.True(t, ok)
	ok, msg := evaluateMaxDuration(Definition{Value: "soon"}, time.Second)
	assert.False(t, ok)
	assert.Equal(t, "expected value is not a duration", msg)
}

func TestEvaluateAllPass(t *testing.T) {
	ok, _ := evaluateAllPass(Definition{}, []Result{{Passed: true}, {Passed: true}})
	assert.True(t, ok)
	ok, msg := evaluateAllPass(Definition{}, []Result{{Passed: true}, {Type: "equals", Message: "boom"}})
	assert.False(t, ok)
	assert.Contains(t, msg, "boom")
	ok, _ = evaluateAllPass(Definition{}, "nope")
	assert.False(t, ok)
}
