package assertion

import (
	"fmt"
	"sort"
	"sync"
)

// Engine evaluates definitions against values observed on a page.
type Engine interface {
	Evaluate(def Definition, value any) Result

	// EvaluateAll looks every definition's Target up in observed
	// and returns one Result per definition, in order. A target
	// that was not observed fails.
	EvaluateAll(defs []Definition, observed map[string]any) []Result

	Register(assertionType string, evaluator Evaluator) error
}

// DefaultEngine starts with the built-in evaluators and accepts
// custom ones. It is safe for concurrent use.
type DefaultEngine struct {
	mu         sync.RWMutex
	evaluators map[string]Evaluator
}

// NewEngine creates a DefaultEngine.
func NewEngine() *DefaultEngine {
	e := &DefaultEngine{evaluators: make(map[string]Evaluator, len(builtins))}
	for name, fn := range builtins {
		e.evaluators[name] = fn
	}
	return e
}

// Register adds an evaluator. Built-in and previously registered
// types cannot be replaced.
func (e *DefaultEngine) Register(assertionType string, evaluator Evaluator) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.evaluators[assertionType]; ok {
		return fmt.Errorf("assertion type already registered: %s", assertionType)
	}
	e.evaluators[assertionType] = evaluator
	return nil
}

// Has reports whether assertionType can be evaluated.
func (e *DefaultEngine) Has(assertionType string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.evaluators[assertionType]
	return ok
}

func (e *DefaultEngine) Evaluate(def Definition, value any) Result {
	r := Result{
		Type:     def.Type,
		Target:   def.Target,
		Expected: def.Value,
		Actual:   value,
	}
	if def.Value == nil && len(def.Values) > 0 {
		r.Expected = def.Values
	}

	e.mu.RLock()
	evaluator, ok := e.evaluators[def.Type]
	e.mu.RUnlock()
	if !ok {
		r.Message = "unknown assertion type: " + def.Type
		return r
	}

	r.Passed, r.Message = evaluator(def, value)
	return r
}

func (e *DefaultEngine) EvaluateAll(defs []Definition, observed map[string]any) []Result {
	results := make([]Result, 0, len(defs))
	for _, def := range defs {
		value, ok := observed[def.Target]
		if !ok {
			results = append(results, Result{
				Type:     def.Type,
				Target:   def.Target,
				Expected: def.Value,
				Message:  "target not observed: " + def.Target,
			})
			continue
		}
		results = append(results, e.Evaluate(def, value))
	}
	return results
}

// IsBuiltin reports whether assertionType ships with every engine.
func IsBuiltin(assertionType string) bool {
	_, ok := builtins[assertionType]
	return ok
}

// BuiltinTypes lists the built-in assertion types, sorted.
func BuiltinTypes() []string {
	out := make([]string, 0, len(builtins))
	for name := range builtins {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
