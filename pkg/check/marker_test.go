package check

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParseExpr(t *testing.T) {
	neg := []Marker{MarkerNegative}
	negSec := []Marker{MarkerNegative, MarkerSecurity}
	ui := []Marker{MarkerUI}

	tests := []struct {
		expr string
		in   []Marker
		want bool
	}{
		{"", ui, true},
		{"negative", neg, true},
		{"negative", ui, false},
		{"not security", negSec, false},
		{"not security", neg, true},
		{"negative and not security", neg, true},
		{"negative and not security", negSec, false},
		{"positive, ui", ui, true},
		{"positive or ui", neg, false},
		{"(positive or negative) and security", negSec, true},
		{"not (negative or ui)", ui, false},
		{"not not ui", ui, true},
	}
	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			e, err := ParseExpr(tc.expr)
			require.NoError(t, err)
			assert.Equal(t, tc.want, e.Match(tc.in))
		})
	}
}

func TestParseExpr_Errors(t *testing.T) {
	for _, expr := range []string{
		"smoke",
		"not",
		"ui and",
		"(ui",
		"ui)",
		"and ui",
		"ui ui",
	} {
		_, err := ParseExpr(expr)
		assert.Error(t, err, expr)
	}
}

func TestMustParseExpr_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParseExpr("nope") })
	assert.NotPanics(t, func() { MustParseExpr("ui") })
}

func TestKnownMarkers(t *testing.T) {
	assert.Equal(t,
		[]Marker{MarkerForm, MarkerNegative, MarkerPositive, MarkerSecurity, MarkerUI},
		KnownMarkers(),
	)
}

func TestParseExpr_NotIsComplement(t *testing.T) {
	known := KnownMarkers()
	rapid.Check(t, func(rt *rapid.T) {
		name := rapid.SampledFrom(known).Draw(rt, "marker")
		set := rapid.SliceOfDistinct(rapid.SampledFrom(known), func(m Marker) Marker { return m }).Draw(rt, "set")

		pos := MustParseExpr(string(name))
		neg := MustParseExpr("not " + string(name))
		if pos.Match(set) == neg.Match(set) {
			rt.Fatalf("%s and its negation agree on %v", name, set)
		}
	})
}
