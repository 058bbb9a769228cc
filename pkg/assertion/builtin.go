package assertion

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// builtins maps every built-in assertion type to its evaluator.
var builtins = map[string]Evaluator{
	"not_empty":      evaluateNotEmpty,
	"empty":          evaluateEmpty,
	"equals":         evaluateEquals,
	"not_equals":     evaluateNotEquals,
	"contains":       evaluateContains,
	"contains_exact": evaluateContainsExact,
	"not_contains":   evaluateNotContains,
	"contains_any":   evaluateContainsAny,
	"one_of":         evaluateOneOf,
	"is_true":        evaluateIsTrue,
	"is_false":       evaluateIsFalse,
	"less_or_equal":  evaluateLessOrEqual,
	"min_length":     evaluateMinLength,
	"min_count":      evaluateMinCount,
	"exact_count":    evaluateExactCount,
	"max_duration":   evaluateMaxDuration,
	"all_pass":       evaluateAllPass,
}

// evaluateNotEmpty checks that a value is non-nil and non-empty.
// Strings consisting only of whitespace count as empty.
func evaluateNotEmpty(
	_ Definition,
	value any,
) (bool, string) {
	if value == nil {
		return false, "value is nil"
	}

	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return false, "string is empty"
		}
	case []any:
		if len(v) == 0 {
			return false, "array is empty"
		}
	case []string:
		if len(v) == 0 {
			return false, "array is empty"
		}
	case map[string]any:
		if len(v) == 0 {
			return false, "map is empty"
		}
	}

	return true, "value is not empty"
}

// evaluateEmpty is the inverse of evaluateNotEmpty.
func evaluateEmpty(
	assertion Definition,
	value any,
) (bool, string) {
	if ok, _ := evaluateNotEmpty(assertion, value); ok {
		return false, fmt.Sprintf("expected empty, got '%v'", value)
	}
	return true, "value is empty"
}

func evaluateEquals(
	assertion Definition,
	value any,
) (bool, string) {
	if valuesEqual(assertion.Value, value) {
		return true, fmt.Sprintf("equals '%v'", value)
	}
	return false, fmt.Sprintf(
		"expected '%v', got '%v'", assertion.Value, value,
	)
}

func evaluateNotEquals(
	assertion Definition,
	value any,
) (bool, string) {
	if valuesEqual(assertion.Value, value) {
		return false, fmt.Sprintf(
			"value must not equal '%v'", assertion.Value,
		)
	}
	return true, fmt.Sprintf("'%v' differs", value)
}

// evaluateContains checks that a string value contains the
// expected substring (case-insensitive).
func evaluateContains(
	assertion Definition,
	value any,
) (bool, string) {
	str, expected, msg, ok := stringPair(assertion, value)
	if !ok {
		return false, msg
	}

	if strings.Contains(
		strings.ToLower(str),
		strings.ToLower(expected),
	) {
		return true, fmt.Sprintf("contains '%s'", expected)
	}

	return false, fmt.Sprintf(
		"'%s' does not contain '%s'", str, expected,
	)
}

// evaluateContainsExact checks for a case-sensitive substring.
func evaluateContainsExact(
	assertion Definition,
	value any,
) (bool, string) {
	str, expected, msg, ok := stringPair(assertion, value)
	if !ok {
		return false, msg
	}

	if strings.Contains(str, expected) {
		return true, fmt.Sprintf("contains '%s'", expected)
	}

	return false, fmt.Sprintf(
		"'%s' does not contain '%s'", str, expected,
	)
}

// evaluateNotContains checks that a string value does not
// contain the given substring (case-insensitive).
func evaluateNotContains(
	assertion Definition,
	value any,
) (bool, string) {
	str, expected, msg, ok := stringPair(assertion, value)
	if !ok {
		return false, msg
	}

	if strings.Contains(
		strings.ToLower(str),
		strings.ToLower(expected),
	) {
		return false, fmt.Sprintf(
			"'%s' unexpectedly contains '%s'", str, expected,
		)
	}

	return true, fmt.Sprintf("does not contain '%s'", expected)
}

// evaluateContainsAny checks that a string value contains at
// least one of the expected substrings.
func evaluateContainsAny(
	assertion Definition,
	value any,
) (bool, string) {
	str, ok := value.(string)
	if !ok {
		return false, "value is not a string"
	}

	lower := strings.ToLower(str)
	values := expectedStrings(assertion)

	for _, expected := range values {
		trimmed := strings.TrimSpace(expected)
		if strings.Contains(
			lower, strings.ToLower(trimmed),
		) {
			return true, fmt.Sprintf(
				"contains '%s'", trimmed,
			)
		}
	}

	return false, fmt.Sprintf(
		"does not contain any of: %v", values,
	)
}

// evaluateOneOf checks that a value equals one of Values.
func evaluateOneOf(
	assertion Definition,
	value any,
) (bool, string) {
	for _, candidate := range assertion.Values {
		if valuesEqual(candidate, value) {
			return true, fmt.Sprintf("'%v' is allowed", value)
		}
	}
	return false, fmt.Sprintf(
		"'%v' is not one of %v", value, assertion.Values,
	)
}

func evaluateIsTrue(
	_ Definition,
	value any,
) (bool, string) {
	b, ok := value.(bool)
	if !ok {
		return false, "value is not a boolean"
	}
	if b {
		return true, "condition holds"
	}
	return false, "condition does not hold"
}

func evaluateIsFalse(
	_ Definition,
	value any,
) (bool, string) {
	b, ok := value.(bool)
	if !ok {
		return false, "value is not a boolean"
	}
	if !b {
		return true, "condition is false as expected"
	}
	return false, "condition unexpectedly holds"
}

// evaluateLessOrEqual compares two numbers: value <= Value.
func evaluateLessOrEqual(
	assertion Definition,
	value any,
) (bool, string) {
	actual, ok := toFloat64(value)
	if !ok {
		return false, "value is not a number"
	}

	limit, ok := toFloat64(assertion.Value)
	if !ok {
		return false, "expected value is not a number"
	}

	if actual <= limit {
		return true, fmt.Sprintf("%v <= %v", actual, limit)
	}

	return false, fmt.Sprintf("%v > %v", actual, limit)
}

// evaluateMinLength checks that a string value meets a minimum
// character length.
func evaluateMinLength(
	assertion Definition,
	value any,
) (bool, string) {
	str, ok := value.(string)
	if !ok {
		return false, "value is not a string"
	}

	minLength, ok := toInt(assertion.Value)
	if !ok {
		return false, "expected value is not a number"
	}

	actual := len(str)
	if actual >= minLength {
		return true, fmt.Sprintf(
			"length %d >= %d", actual, minLength,
		)
	}

	return false, fmt.Sprintf(
		"length %d < %d", actual, minLength,
	)
}

// evaluateMinCount checks that a countable value (int, float64,
// slice, or map) meets a minimum count.
func evaluateMinCount(
	assertion Definition,
	value any,
) (bool, string) {
	count, ok := toCount(value)
	if !ok {
		return false, "value is not countable"
	}

	minCount, ok := toInt(assertion.Value)
	if !ok {
		return false, "expected value is not a number"
	}

	if count >= minCount {
		return true, fmt.Sprintf(
			"count %d >= %d", count, minCount,
		)
	}

	return false, fmt.Sprintf(
		"count %d < %d", count, minCount,
	)
}

// evaluateExactCount checks that a countable value exactly
// matches the expected count.
func evaluateExactCount(
	assertion Definition,
	value any,
) (bool, string) {
	count, ok := toCount(value)
	if !ok {
		return false, "value is not countable"
	}

	expected, ok := toInt(assertion.Value)
	if !ok {
		return false, "expected value is not a number"
	}

	if count == expected {
		return true, fmt.Sprintf(
			"count %d == %d", count, expected,
		)
	}

	return false, fmt.Sprintf(
		"count %d != %d", count, expected,
	)
}

// evaluateMaxDuration checks that an elapsed duration does not
// exceed the maximum. Numbers are read as milliseconds and strings
// with time.ParseDuration ("2s").
func evaluateMaxDuration(
	assertion Definition,
	value any,
) (bool, string) {
	actual, ok := toDuration(value)
	if !ok {
		return false, "value is not a duration"
	}

	limit, ok := toDuration(assertion.Value)
	if !ok {
		return false, "expected value is not a duration"
	}

	if actual <= limit {
		return true, fmt.Sprintf("%s <= %s", actual, limit)
	}

	return false, fmt.Sprintf("%s > %s", actual, limit)
}

// evaluateAllPass checks that all items in a slice of results
// have passed.
func evaluateAllPass(
	_ Definition,
	value any,
) (bool, string) {
	results, ok := value.([]Result)
	if !ok {
		return false, "value is not an array of results"
	}

	for _, result := range results {
		if !result.Passed {
			return false, fmt.Sprintf(
				"assertion '%s' failed: %s",
				result.Type, result.Message,
			)
		}
	}

	return true, "all assertions passed"
}

// --- helpers ---

func stringPair(
	assertion Definition,
	value any,
) (str, expected, msg string, ok bool) {
	str, ok = value.(string)
	if !ok {
		return "", "", "value is not a string", false
	}
	expected, ok = assertion.Value.(string)
	if !ok {
		return "", "", "expected value is not a string", false
	}
	return str, expected, "", true
}

func expectedStrings(assertion Definition) []string {
	var values []string
	switch v := assertion.Value.(type) {
	case string:
		values = strings.Split(v, ",")
	case []string:
		values = v
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				values = append(values, s)
			}
		}
	}
	if len(values) == 0 {
		for _, item := range assertion.Values {
			if s, ok := item.(string); ok {
				values = append(values, s)
			}
		}
	}
	return values
}

// valuesEqual compares numbers by value and everything else
// with reflect.DeepEqual.
func valuesEqual(expected, actual any) bool {
	if a, ok := toFloat64(expected); ok {
		if b, ok := toFloat64(actual); ok {
			return a == b
		}
	}
	return reflect.DeepEqual(expected, actual)
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	case int64:
		return int(n), true
	}
	return 0, false
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func toDuration(v any) (time.Duration, bool) {
	switch d := v.(type) {
	case time.Duration:
		return d, true
	case string:
		parsed, err := time.ParseDuration(d)
		return parsed, err == nil
	}
	if ms, ok := toFloat64(v); ok {
		return time.Duration(ms * float64(time.Millisecond)), true
	}
	return 0, false
}

// toCount extracts an integer count from a value. It handles
// numbers, slices and maps.
func toCount(v any) (int, bool) {
	switch val := v.(type) {
	case []any:
		return len(val), true
	case []string:
		return len(val), true
	case map[string]any:
		return len(val), true
	}
	return toInt(v)
}
