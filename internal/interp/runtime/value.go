// Package runtime holds the value contract and environment plumbing
// shared by the interpreter: the Value interface every runtime value
// implements, the shared mutable cells bindings and object fields live
// in, and the scope-stack Environment.
package runtime

// Value represents a runtime value. All runtime values implement this
// interface; variant-dependent operations (arithmetic, display, field
// access) are dispatched by the interpreter.
type Value interface {
	// Type returns the type name of the value (e.g. "number", "string").
	Type() string
	// Truthy reports whether the value counts as true in a condition.
	// Only none and false are falsy.
	Truthy() bool
}

// Cell is a shared, mutable slot holding a Value. Object fields and
// environment bindings are cells so that mutation through one alias is
// observable through every other.
type Cell struct {
	V Value
}

// NewCell wraps v in a fresh cell.
func NewCell(v Value) *Cell { return &Cell{V: v} }
