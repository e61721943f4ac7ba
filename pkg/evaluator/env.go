package evaluator

import (
	"maps"
	"slices"
)

// Env is the flat name-to-integer table for one session.
// Only Binding evaluation writes to it; there is no deletion.
type Env struct {
	bindings map[string]int32
}

// NamedValue is one entry of an environment snapshot.
type NamedValue struct {
	Name  string `json:"name"`
	Value int32  `json:"value"`
}

// NewEnv creates an empty environment.
func NewEnv() *Env {
	return &Env{bindings: make(map[string]int32)}
}

// Get looks up a variable by name.
func (e *Env) Get(name string) (int32, bool) {
	v, ok := e.bindings[name]
	return v, ok
}

// Set binds a variable, overwriting any earlier binding of the same name.
func (e *Env) Set(name string, val int32) {
	e.bindings[name] = val
}

// Has checks whether a variable is bound.
func (e *Env) Has(name string) bool {
	_, ok := e.bindings[name]
	return ok
}

// Len returns the number of bound names.
func (e *Env) Len() int {
	return len(e.bindings)
}

// Names returns the bound names in sorted order.
func (e *Env) Names() []string {
	return slices.Sorted(maps.Keys(e.bindings))
}

// Snapshot returns every binding sorted by name.
func (e *Env) Snapshot() []NamedValue {
	names := e.Names()
	out := make([]NamedValue, len(names))
	for i, name := range names {
		out[i] = NamedValue{Name: name, Value: e.bindings[name]}
	}
	return out
}
