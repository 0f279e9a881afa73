package interp

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/jvcmarcenes/wisp/internal/token"
)

func (i *Interpreter) nativeWrite() *NativeFn {
	return NewNative("write", 1, func(i *Interpreter, pos token.Position, _ Value, args []Value) (Value, error) {
		s, err := i.display(args[0], pos)
		if err != nil {
			return nil, err
		}
		fmt.Fprint(i.out, s)
		return None, nil
	})
}

func (i *Interpreter) nativeWriteline() *NativeFn {
	return NewNative("writeline", 1, func(i *Interpreter, pos token.Position, _ Value, args []Value) (Value, error) {
		s, err := i.display(args[0], pos)
		if err != nil {
			return nil, err
		}
		fmt.Fprintln(i.out, s)
		return None, nil
	})
}

func (i *Interpreter) nativeDebug() *NativeFn {
	return NewNative("debug", 1, func(i *Interpreter, pos token.Position, _ Value, args []Value) (Value, error) {
		fmt.Fprintln(i.out, i.inspect(args[0]))
		return None, nil
	})
}

func (i *Interpreter) nativeRead() *NativeFn {
	return NewNative("read", 0, func(i *Interpreter, pos token.Position, _ Value, _ []Value) (Value, error) {
		line, err := i.in.ReadString('\n')
		if err != nil && line == "" {
			return NewErrorStr("Invalid console input"), nil
		}
		return NewString(strings.TrimRight(line, "\r\n")), nil
	})
}

func (i *Interpreter) nativeExit() *NativeFn {
	return NewNative("exit", 0, func(i *Interpreter, pos token.Position, _ Value, _ []Value) (Value, error) {
		return nil, haltSignal{code: 0}
	})
}

func (i *Interpreter) nativeAbort() *NativeFn {
	return NewNative("abort", 1, func(i *Interpreter, pos token.Position, _ Value, args []Value) (Value, error) {
		v := args[0]
		if errVal, ok := v.(*ErrorValue); ok {
			v = errVal.Inner
		}
		s, err := i.display(v, pos)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(i.errOut, "error: %s\n", s)
		return nil, haltSignal{code: 1}
	})
}

func (i *Interpreter) nativeSleep() *NativeFn {
	return NewNative("sleep", 1, func(i *Interpreter, pos token.Position, _ Value, args []Value) (Value, error) {
		n, err := i.wantNumber(args[0], pos)
		if err != nil {
			return nil, err
		}
		time.Sleep(time.Duration(n * float64(time.Second)))
		return None, nil
	})
}

func (i *Interpreter) nativeClock() *NativeFn {
	return NewNative("clock", 0, func(i *Interpreter, pos token.Position, _ Value, _ []Value) (Value, error) {
		now := float64(time.Now().UnixNano()) / float64(time.Second)
		return NewNumber(now), nil
	})
}

func (i *Interpreter) nativeRange() *NativeFn {
	return NewNative("range", 2, func(i *Interpreter, pos token.Position, _ Value, args []Value) (Value, error) {
		from, err := i.wantNumber(args[0], pos)
		if err != nil {
			return nil, err
		}
		to, err := i.wantNumber(args[1], pos)
		if err != nil {
			return nil, err
		}
		var elems []Value
		for n := int(from); n < int(to); n++ {
			elems = append(elems, NewNumber(float64(n)))
		}
		return NewList(elems), nil
	})
}

func (i *Interpreter) nativeTypeof() *NativeFn {
	return NewNative("typeof", 1, func(i *Interpreter, pos token.Position, _ Value, args []Value) (Value, error) {
		return NewString(args[0].Type()), nil
	})
}

func (i *Interpreter) nativeRand() *NativeFn {
	return NewNative("rand", 0, func(i *Interpreter, pos token.Position, _ Value, _ []Value) (Value, error) {
		return NewNumber(rand.Float64()), nil
	})
}

// nativeRandom returns an rng-factory: random() seeds from the global
// source, random(seed) seeds deterministically; either way the result is
// a zero-arity callable producing floats in [0, 1).
func (i *Interpreter) nativeRandom() *NativeFn {
	return &NativeFn{
		Name:     "random",
		MinArity: 0,
		MaxArity: 1,
		Fn: func(i *Interpreter, pos token.Position, _ Value, args []Value) (Value, error) {
			var seed int64
			if len(args) == 1 {
				n, err := i.wantNumber(args[0], pos)
				if err != nil {
					return nil, err
				}
				seed = int64(n)
			} else {
				seed = rand.Int63()
			}
			rng := rand.New(rand.NewSource(seed))
			return NewNative("rng", 0, func(i *Interpreter, pos token.Position, _ Value, _ []Value) (Value, error) {
				return NewNumber(rng.Float64()), nil
			}), nil
		},
	}
}

// wantNumber unwraps a numeric argument or raises the canonical runtime
// error for a type mismatch.
func (i *Interpreter) wantNumber(v Value, pos token.Position) (float64, error) {
	n, ok := v.(*NumberValue)
	if !ok {
		return 0, i.runErrorf(pos, "Expected number, got %s", v.Type())
	}
	return n.Value, nil
}

// wantString unwraps a string argument.
func (i *Interpreter) wantString(v Value, pos token.Position) (string, error) {
	s, ok := v.(*StringValue)
	if !ok {
		return "", i.runErrorf(pos, "Expected string, got %s", v.Type())
	}
	return s.Value, nil
}

// wantCallable unwraps a callable argument.
func (i *Interpreter) wantCallable(v Value, pos token.Position) (Callable, error) {
	c, ok := v.(Callable)
	if !ok {
		return nil, i.runErrorf(pos, "Expected function, got %s", v.Type())
	}
	return c, nil
}
