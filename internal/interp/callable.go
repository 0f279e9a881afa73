package interp

import (
	"fmt"

	"github.com/jvcmarcenes/wisp/internal/ast"
	"github.com/jvcmarcenes/wisp/internal/interp/runtime"
	"github.com/jvcmarcenes/wisp/internal/token"
)

// Callable is the contract shared by user functions and natives. Bind
// returns a copy with the receiver installed, which is how field access
// on a value produces a method ready to call.
type Callable interface {
	Value
	CheckArity(got int) error
	Bind(self Value) Callable
	Call(i *Interpreter, pos token.Position, args []Value) (Value, error)
}

// FunctionValue is a user-defined function: the parameter list and body
// from its lambda plus the environment captured when the lambda was
// evaluated. Self is nil until the function is bound to a receiver.
type FunctionValue struct {
	Name     string
	Params   []*ast.Identifier
	Body     ast.Block
	Env      *Environment
	HasSelf  bool
	Self     Value
}

func (*FunctionValue) Type() string { return "function" }
func (*FunctionValue) Truthy() bool { return true }

// CheckArity enforces the exact parameter count.
func (f *FunctionValue) CheckArity(got int) error {
	if got != len(f.Params) {
		return fmt.Errorf("Expected %d arguments, but got %d", len(f.Params), got)
	}
	return nil
}

// Bind returns a copy of the function with self installed as receiver.
func (f *FunctionValue) Bind(self Value) Callable {
	bound := *f
	bound.Self = self
	return &bound
}

// Call swaps the interpreter's environment for the function's captured
// one, pushes a frame, binds the receiver and parameters, and runs the
// body. A Return outcome unwinds here with its value; falling off the
// end yields none. The caller's environment is restored on every path.
func (f *FunctionValue) Call(i *Interpreter, pos token.Position, args []Value) (Value, error) {
	prev := i.env
	i.env = f.Env.Clone()
	i.env.Push()
	defer func() {
		i.env = prev
	}()

	if f.Self != nil {
		i.env.Define(runtime.SelfID, f.Self)
	}
	for idx, param := range f.Params {
		i.env.Define(*param.Id, args[idx])
	}

	out, err := i.execBlock(f.Body)
	if err != nil {
		return nil, err
	}
	if out.kind == outReturn {
		return out.value, nil
	}
	return None, nil
}

// NativeFn is a built-in function. Fn receives the call position, the
// interpreter, the bound receiver (nil unless the native came from an
// attribute method table) and the evaluated arguments. MinArity and
// MaxArity bound the accepted argument count; MaxArity -1 means
// unbounded.
type NativeFn struct {
	Name     string
	MinArity int
	MaxArity int
	Self     Value
	Fn       func(i *Interpreter, pos token.Position, self Value, args []Value) (Value, error)
}

// NewNative builds a fixed-arity native.
func NewNative(name string, arity int, fn func(i *Interpreter, pos token.Position, self Value, args []Value) (Value, error)) *NativeFn {
	return &NativeFn{Name: name, MinArity: arity, MaxArity: arity, Fn: fn}
}

func (*NativeFn) Type() string { return "function" }
func (*NativeFn) Truthy() bool { return true }

// CheckArity enforces the declared argument range.
func (n *NativeFn) CheckArity(got int) error {
	if n.MinArity == n.MaxArity {
		if got != n.MinArity {
			return fmt.Errorf("Expected %d arguments, but got %d", n.MinArity, got)
		}
		return nil
	}
	if got < n.MinArity || (n.MaxArity >= 0 && got > n.MaxArity) {
		if n.MaxArity < 0 {
			return fmt.Errorf("Expected at least %d arguments, but got %d", n.MinArity, got)
		}
		return fmt.Errorf("Expected %d to %d arguments, but got %d", n.MinArity, n.MaxArity, got)
	}
	return nil
}

// Bind returns a copy of the native with self installed as receiver.
func (n *NativeFn) Bind(self Value) Callable {
	bound := *n
	bound.Self = self
	return &bound
}

// Call invokes the native's implementation.
func (n *NativeFn) Call(i *Interpreter, pos token.Position, args []Value) (Value, error) {
	return n.Fn(i, pos, n.Self, args)
}
