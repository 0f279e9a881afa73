package runtime

import "fmt"

// SelfID is the reserved binding id for `self`. The resolver starts
// handing out ids at 1 (the first global), so 0 is free for the
// receiver slot a bound method defines when it is called.
const SelfID = 0

// scope is one layer of bindings, keyed by resolved identifier id.
type scope map[int]*Cell

// Environment is the interpreter's lexical context: an ordered stack of
// shared, mutable scope layers. Lookup walks top-down to the root layer
// (the globals). Cloning the stack shares the layer maps, which is how
// closures alias their definition scope while still observing mutation.
type Environment struct {
	scopes []scope
}

// NewEnvironment creates an environment holding a single root layer.
func NewEnvironment() *Environment {
	return &Environment{scopes: []scope{{}}}
}

// Clone returns an environment sharing every layer of e. Defining in a
// clone's new layers is invisible to e; writing through a shared layer
// is visible to both.
func (e *Environment) Clone() *Environment {
	scopes := make([]scope, len(e.scopes))
	copy(scopes, e.scopes)
	return &Environment{scopes: scopes}
}

// Push appends a fresh empty layer.
func (e *Environment) Push() {
	e.scopes = append(e.scopes, scope{})
}

// Pop discards the top layer.
func (e *Environment) Pop() {
	e.scopes = e.scopes[:len(e.scopes)-1]
}

// Define binds id in the topmost layer, shadowing any outer binding
// with the same id.
func (e *Environment) Define(id int, v Value) {
	e.scopes[len(e.scopes)-1][id] = NewCell(v)
}

// DefineCell binds id in the topmost layer to an existing cell.
func (e *Environment) DefineCell(id int, c *Cell) {
	e.scopes[len(e.scopes)-1][id] = c
}

// Get returns the value bound to id, walking the layers top-down. A
// missing id is a resolver bug, so it panics rather than erroring.
func (e *Environment) Get(id int) Value {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if c, ok := e.scopes[i][id]; ok {
			return c.V
		}
	}
	panic(fmt.Sprintf("unresolved binding id %d", id))
}

// Lookup is Get without the panic, for bindings that may legitimately be
// absent (the receiver slot of an unbound function).
func (e *Environment) Lookup(id int) (Value, bool) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if c, ok := e.scopes[i][id]; ok {
			return c.V, true
		}
	}
	return nil, false
}

// Assign overwrites the nearest binding of id. Like Get, a missing id is
// a resolver bug.
func (e *Environment) Assign(id int, v Value) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if c, ok := e.scopes[i][id]; ok {
			c.V = v
			return
		}
	}
	panic(fmt.Sprintf("assignment to unresolved binding id %d", id))
}
