package interp

import (
	"math"

	"github.com/jvcmarcenes/wisp/internal/token"
)

// mathObject builds the `math` global: an object of numeric natives plus
// the pi and e constants.
func (i *Interpreter) mathObject() *ObjectValue {
	unary := func(name string, fn func(float64) float64) *NativeFn {
		return NewNative(name, 1, func(i *Interpreter, pos token.Position, _ Value, args []Value) (Value, error) {
			n, err := i.wantNumber(args[0], pos)
			if err != nil {
				return nil, err
			}
			return NewNumber(fn(n)), nil
		})
	}
	binary := func(name string, fn func(a, b float64) float64) *NativeFn {
		return NewNative(name, 2, func(i *Interpreter, pos token.Position, _ Value, args []Value) (Value, error) {
			a, err := i.wantNumber(args[0], pos)
			if err != nil {
				return nil, err
			}
			b, err := i.wantNumber(args[1], pos)
			if err != nil {
				return nil, err
			}
			return NewNumber(fn(a, b)), nil
		})
	}
	ternary := func(name string, fn func(a, b, c float64) float64) *NativeFn {
		return NewNative(name, 3, func(i *Interpreter, pos token.Position, _ Value, args []Value) (Value, error) {
			a, err := i.wantNumber(args[0], pos)
			if err != nil {
				return nil, err
			}
			b, err := i.wantNumber(args[1], pos)
			if err != nil {
				return nil, err
			}
			c, err := i.wantNumber(args[2], pos)
			if err != nil {
				return nil, err
			}
			return NewNumber(fn(a, b, c)), nil
		})
	}

	sqrt := NewNative("sqrt", 1, func(i *Interpreter, pos token.Position, _ Value, args []Value) (Value, error) {
		n, err := i.wantNumber(args[0], pos)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return NewErrorStr("sqrt of negative numbers is undefined"), nil
		}
		return NewNumber(math.Sqrt(n)), nil
	})

	fields := map[string]*Cell{
		"sin":  NewCell(unary("sin", math.Sin)),
		"cos":  NewCell(unary("cos", math.Cos)),
		"tg":   NewCell(unary("tg", math.Tan)),
		"pow":  NewCell(binary("pow", math.Pow)),
		"sqrt": NewCell(sqrt),
		"floor": NewCell(unary("floor", math.Floor)),
		"ceil":  NewCell(unary("ceil", math.Ceil)),
		"round": NewCell(unary("round", math.Round)),
		"abs":   NewCell(unary("abs", math.Abs)),
		"max":   NewCell(binary("max", math.Max)),
		"min":   NewCell(binary("min", math.Min)),
		"clamp": NewCell(ternary("clamp", func(v, lo, hi float64) float64 {
			return math.Min(math.Max(v, lo), hi)
		})),
		"frac": NewCell(unary("frac", func(n float64) float64 {
			_, f := math.Modf(n)
			return f
		})),
		"sign": NewCell(unary("sign", func(n float64) float64 {
			if math.Signbit(n) {
				return -1
			}
			return 1
		})),
		"lerp": NewCell(ternary("lerp", func(t, a, b float64) float64 {
			t = math.Min(math.Max(t, 0), 1)
			return (1-t)*a + t*b
		})),
		"pi": NewCell(NewNumber(math.Pi)),
		"e":  NewCell(NewNumber(math.E)),
	}

	return NewObject(fields, nil)
}
