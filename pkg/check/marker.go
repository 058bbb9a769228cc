package check

import (
	"fmt"
	"sort"
	"strings"
)

// Marker categorises checks for selection.
type Marker string

const (
	MarkerPositive Marker = "positive"
	MarkerNegative Marker = "negative"
	MarkerUI       Marker = "ui"
	MarkerSecurity Marker = "security"
	MarkerForm     Marker = "form"
)

// MarkerDescriptions documents the known markers.
var MarkerDescriptions = map[Marker]string{
	MarkerPositive: "Happy-path login tests",
	MarkerNegative: "Failure-path login tests",
	MarkerUI:       "UI/layout/responsiveness tests",
	MarkerSecurity: "Security validation tests",
	MarkerForm:     "Form submission behaviour tests",
}

// KnownMarkers returns the registered markers sorted by name.
func KnownMarkers() []Marker {
	out := make([]Marker, 0, len(MarkerDescriptions))
	for m := range MarkerDescriptions {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Expr is a compiled marker selection expression.
type Expr interface {
	Match(markers []Marker) bool
	String() string
}

type markerExpr Marker

func (e markerExpr) Match(markers []Marker) bool {
	for _, m := range markers {
		if m == Marker(e) {
			return true
		}
	}
	return false
}

func (e markerExpr) String() string { return string(e) }

type notExpr struct{ x Expr }

func (e notExpr) Match(markers []Marker) bool { return !e.x.Match(markers) }
func (e notExpr) String() string              { return "not " + e.x.String() }

type binaryExpr struct {
	op   string
	l, r Expr
}

func (e binaryExpr) Match(markers []Marker) bool {
	if e.op == "and" {
		return e.l.Match(markers) && e.r.Match(markers)
	}
	return e.l.Match(markers) || e.r.Match(markers)
}

func (e binaryExpr) String() string {
	return "(" + e.l.String() + " " + e.op + " " + e.r.String() + ")"
}

type matchAll struct{}

func (matchAll) Match([]Marker) bool { return true }
func (matchAll) String() string      { return "" }

// ParseExpr compiles a selection expression such as
// "negative and not security" or "positive, ui". A comma means
// "or". An empty expression matches every check. Unknown marker
// names are rejected.
func ParseExpr(s string) (Expr, error) {
	toks := tokenize(s)
	if len(toks) == 0 {
		return matchAll{}, nil
	}
	p := &exprParser{toks: toks}
	e, err := p.or()
	if err != nil {
		return nil, fmt.Errorf("marker expression %q: %w", s, err)
	}
	if p.pos < len(p.toks) {
		return nil, fmt.Errorf("marker expression %q: unexpected %q", s, p.toks[p.pos])
	}
	return e, nil
}

// MustParseExpr is ParseExpr that panics on error.
func MustParseExpr(s string) Expr {
	e, err := ParseExpr(s)
	if err != nil {
		panic(err)
	}
	return e
}

func tokenize(s string) []string {
	var toks []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		switch {
		case r == '(' || r == ')':
			flush()
			toks = append(toks, string(r))
		case r == ',':
			flush()
			toks = append(toks, "or")
		case r == ' ' || r == '\t' || r == '\n':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return toks
}

type exprParser struct {
	toks []string
	pos  int
}

func (p *exprParser) peek() string {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return ""
}

func (p *exprParser) or() (Expr, error) {
	l, err := p.and()
	if err != nil {
		return nil, err
	}
	for p.peek() == "or" {
		p.pos++
		r, err := p.and()
		if err != nil {
			return nil, err
		}
		l = binaryExpr{op: "or", l: l, r: r}
	}
	return l, nil
}

func (p *exprParser) and() (Expr, error) {
	l, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.peek() == "and" {
		p.pos++
		r, err := p.unary()
		if err != nil {
			return nil, err
		}
		l = binaryExpr{op: "and", l: l, r: r}
	}
	return l, nil
}

func (p *exprParser) unary() (Expr, error) {
	tok := p.peek()
	switch tok {
	case "":
		return nil, fmt.Errorf("unexpected end of expression")
	case "not":
		p.pos++
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return notExpr{x}, nil
	case "(":
		p.pos++
		x, err := p.or()
		if err != nil {
			return nil, err
		}
		if p.peek() != ")" {
			return nil, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return x, nil
	case ")", "and", "or":
		return nil, fmt.Errorf("unexpected %q", tok)
	}
	p.pos++
	m := Marker(tok)
	if _, ok := MarkerDescriptions[m]; !ok {
		return nil, fmt.Errorf("unknown marker %q", tok)
	}
	return markerExpr(m), nil
}
