package interp

import (
	"github.com/jvcmarcenes/wisp/internal/interp/runtime"
)

// Environment is a type alias for runtime.Environment, keeping the
// interpreter's call sites short while the scope-stack implementation
// lives with the rest of the runtime plumbing.
type Environment = runtime.Environment

// Value and Cell are likewise aliases: the contract lives in runtime so
// the environment can store values without importing the interpreter.
type (
	Value = runtime.Value
	Cell  = runtime.Cell
)

// NewCell wraps v in a fresh cell.
func NewCell(v Value) *Cell { return runtime.NewCell(v) }

// NewEnvironment creates the root environment holding only the globals
// layer.
func NewEnvironment() *Environment {
	return runtime.NewEnvironment()
}
