package interp

import (
	"github.com/fatih/color"

	"github.com/jvcmarcenes/wisp/internal/token"
)

// charObject builds the `char` global: named control characters plus a
// code-point constructor.
func (i *Interpreter) charObject() *ObjectValue {
	fromCode := NewNative("from_code", 1, func(i *Interpreter, pos token.Position, _ Value, args []Value) (Value, error) {
		n, err := i.wantNumber(args[0], pos)
		if err != nil {
			return nil, err
		}
		code := rune(int32(n))
		if code < 0 || code > 0x10FFFF {
			return NewErrorStr("Invalid char code"), nil
		}
		return NewString(string(code)), nil
	})

	fields := map[string]*Cell{
		"new_line":        NewCell(NewString("\n")),
		"carriage_return": NewCell(NewString("\r")),
		"tab":             NewCell(NewString("\t")),
		"null":            NewCell(NewString("\x00")),
		"from_code":       NewCell(fromCode),
	}
	return NewObject(fields, nil)
}

// paintObject builds the `paint` global: one native per named terminal
// color, each wrapping its argument's display form in the matching ANSI
// escapes, plus an rgb constructor for 24-bit colors.
func (i *Interpreter) paintObject() *ObjectValue {
	painter := func(name string, c *color.Color) *NativeFn {
		return NewNative(name, 1, func(i *Interpreter, pos token.Position, _ Value, args []Value) (Value, error) {
			s, err := i.display(args[0], pos)
			if err != nil {
				return nil, err
			}
			return NewString(c.Sprint(s)), nil
		})
	}

	rgb := NewNative("rgb", 3, func(i *Interpreter, pos token.Position, _ Value, args []Value) (Value, error) {
		r, err := i.wantNumber(args[0], pos)
		if err != nil {
			return nil, err
		}
		g, err := i.wantNumber(args[1], pos)
		if err != nil {
			return nil, err
		}
		b, err := i.wantNumber(args[2], pos)
		if err != nil {
			return nil, err
		}
		c := color.RGB(int(r), int(g), int(b))
		return painter("rgb", c), nil
	})

	fields := map[string]*Cell{
		"red":    NewCell(painter("red", color.New(color.FgRed))),
		"green":  NewCell(painter("green", color.New(color.FgGreen))),
		"blue":   NewCell(painter("blue", color.New(color.FgBlue))),
		"yellow": NewCell(painter("yellow", color.New(color.FgYellow))),
		"cyan":   NewCell(painter("cyan", color.New(color.FgCyan))),
		"purple": NewCell(painter("purple", color.New(color.FgMagenta))),
		"white":  NewCell(painter("white", color.New(color.FgWhite))),
		"black":  NewCell(painter("black", color.New(color.FgBlack))),
		"rgb":    NewCell(rgb),
	}
	return NewObject(fields, nil)
}
