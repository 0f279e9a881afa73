package interp

import (
	"strconv"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/jvcmarcenes/wisp/internal/globalnames"
	"github.com/jvcmarcenes/wisp/internal/token"
)

// The built-in attributes mirror the user-facing `attr` construct:
// method tables keyed by name, dispatched when a field lookup on a
// primitive misses. Methods receive the owning value through the same
// Bind mechanism user methods use.

func builtinAttr(name string, methods map[string]Callable) *AttributeValue {
	id, _ := globalnames.Id(name)
	return &AttributeValue{
		Name:    name,
		Id:      id,
		Methods: methods,
		Statics: map[string]*Cell{},
	}
}

// wantSelfString unwraps the bound receiver of a String method.
func wantSelfString(self Value) string {
	return self.(*StringValue).Value
}

// wantSelfList unwraps the bound receiver of a List method.
func wantSelfList(self Value) *ListValue {
	return self.(*ListValue)
}

func (i *Interpreter) stringAttribute() *AttributeValue {
	methods := map[string]Callable{}

	methods["size"] = NewNative("size", 0, func(i *Interpreter, pos token.Position, self Value, _ []Value) (Value, error) {
		return NewNumber(float64(len([]rune(wantSelfString(self))))), nil
	})

	methods["get"] = NewNative("get", 1, func(i *Interpreter, pos token.Position, self Value, args []Value) (Value, error) {
		n, err := i.wantNumber(args[0], pos)
		if err != nil {
			return nil, err
		}
		chars := []rune(wantSelfString(self))
		idx, inRange := normalizeIndex(n, len(chars))
		if !inRange {
			return None, nil
		}
		return NewString(string(chars[idx])), nil
	})

	methods["is_num"] = NewNative("is_num", 0, func(i *Interpreter, pos token.Position, self Value, _ []Value) (Value, error) {
		_, err := strconv.ParseFloat(wantSelfString(self), 64)
		return NewBool(err == nil), nil
	})

	methods["to_num"] = NewNative("to_num", 0, func(i *Interpreter, pos token.Position, self Value, _ []Value) (Value, error) {
		n, err := strconv.ParseFloat(wantSelfString(self), 64)
		if err != nil {
			return NewErrorStr("Cannot convert to number"), nil
		}
		return NewNumber(n), nil
	})

	methods["uppercase"] = NewNative("uppercase", 0, func(i *Interpreter, pos token.Position, self Value, _ []Value) (Value, error) {
		return NewString(strings.ToUpper(wantSelfString(self))), nil
	})

	methods["lowercase"] = NewNative("lowercase", 0, func(i *Interpreter, pos token.Position, self Value, _ []Value) (Value, error) {
		return NewString(strings.ToLower(wantSelfString(self))), nil
	})

	methods["trim"] = NewNative("trim", 0, func(i *Interpreter, pos token.Position, self Value, _ []Value) (Value, error) {
		return NewString(strings.TrimSpace(wantSelfString(self))), nil
	})

	methods["repeat"] = NewNative("repeat", 1, func(i *Interpreter, pos token.Position, self Value, args []Value) (Value, error) {
		n, err := i.wantNumber(args[0], pos)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			n = 0
		}
		return NewString(strings.Repeat(wantSelfString(self), int(n))), nil
	})

	methods["substring"] = NewNative("substring", 2, func(i *Interpreter, pos token.Position, self Value, args []Value) (Value, error) {
		start, err := i.wantNumber(args[0], pos)
		if err != nil {
			return nil, err
		}
		count, err := i.wantNumber(args[1], pos)
		if err != nil {
			return nil, err
		}
		chars := []rune(wantSelfString(self))
		from := int(start)
		if from < 0 {
			from = 0
		}
		if from > len(chars) {
			from = len(chars)
		}
		to := from + int(count)
		if to > len(chars) {
			to = len(chars)
		}
		if to < from {
			to = from
		}
		return NewString(string(chars[from:to])), nil
	})

	methods["split"] = NewNative("split", 1, func(i *Interpreter, pos token.Position, self Value, args []Value) (Value, error) {
		sep, err := i.wantString(args[0], pos)
		if err != nil {
			return nil, err
		}
		parts := strings.Split(wantSelfString(self), sep)
		elems := make([]Value, len(parts))
		for idx, p := range parts {
			elems[idx] = NewString(p)
		}
		return NewList(elems), nil
	})

	methods["contains"] = NewNative("contains", 1, func(i *Interpreter, pos token.Position, self Value, args []Value) (Value, error) {
		sub, err := i.wantString(args[0], pos)
		if err != nil {
			return nil, err
		}
		return NewBool(strings.Contains(wantSelfString(self), sub)), nil
	})

	methods["starts_with"] = NewNative("starts_with", 1, func(i *Interpreter, pos token.Position, self Value, args []Value) (Value, error) {
		prefix, err := i.wantString(args[0], pos)
		if err != nil {
			return nil, err
		}
		return NewBool(strings.HasPrefix(wantSelfString(self), prefix)), nil
	})

	methods["ends_with"] = NewNative("ends_with", 1, func(i *Interpreter, pos token.Position, self Value, args []Value) (Value, error) {
		suffix, err := i.wantString(args[0], pos)
		if err != nil {
			return nil, err
		}
		return NewBool(strings.HasSuffix(wantSelfString(self), suffix)), nil
	})

	methods["reverse"] = NewNative("reverse", 0, func(i *Interpreter, pos token.Position, self Value, _ []Value) (Value, error) {
		chars := []rune(wantSelfString(self))
		for a, b := 0, len(chars)-1; a < b; a, b = a+1, b-1 {
			chars[a], chars[b] = chars[b], chars[a]
		}
		return NewString(string(chars)), nil
	})

	return builtinAttr("String", methods)
}

func (i *Interpreter) listAttribute() *AttributeValue {
	methods := map[string]Callable{}

	methods["size"] = NewNative("size", 0, func(i *Interpreter, pos token.Position, self Value, _ []Value) (Value, error) {
		return NewNumber(float64(len(wantSelfList(self).Elements))), nil
	})

	methods["get"] = NewNative("get", 1, func(i *Interpreter, pos token.Position, self Value, args []Value) (Value, error) {
		n, err := i.wantNumber(args[0], pos)
		if err != nil {
			return nil, err
		}
		list := wantSelfList(self)
		idx, inRange := normalizeIndex(n, len(list.Elements))
		if !inRange {
			return None, nil
		}
		return list.Elements[idx], nil
	})

	methods["push"] = NewNative("push", 1, func(i *Interpreter, pos token.Position, self Value, args []Value) (Value, error) {
		list := wantSelfList(self)
		list.Elements = append(list.Elements, args[0])
		return None, nil
	})

	methods["pop"] = NewNative("pop", 0, func(i *Interpreter, pos token.Position, self Value, _ []Value) (Value, error) {
		list := wantSelfList(self)
		if len(list.Elements) == 0 {
			return None, nil
		}
		last := list.Elements[len(list.Elements)-1]
		list.Elements = list.Elements[:len(list.Elements)-1]
		return last, nil
	})

	methods["contains"] = NewNative("contains", 1, func(i *Interpreter, pos token.Position, self Value, args []Value) (Value, error) {
		for _, el := range wantSelfList(self).Elements {
			eq, err := i.equals(el, args[0], pos)
			if err != nil {
				return nil, err
			}
			if eq {
				return NewBool(true), nil
			}
		}
		return NewBool(false), nil
	})

	methods["reverse"] = NewNative("reverse", 0, func(i *Interpreter, pos token.Position, self Value, _ []Value) (Value, error) {
		src := wantSelfList(self).Elements
		rev := make([]Value, len(src))
		for idx, el := range src {
			rev[len(src)-1-idx] = el
		}
		return NewList(rev), nil
	})

	methods["join"] = NewNative("join", 1, func(i *Interpreter, pos token.Position, self Value, args []Value) (Value, error) {
		sep, err := i.wantString(args[0], pos)
		if err != nil {
			return nil, err
		}
		parts := make([]string, len(wantSelfList(self).Elements))
		for idx, el := range wantSelfList(self).Elements {
			s, err := i.display(el, pos)
			if err != nil {
				return nil, err
			}
			parts[idx] = s
		}
		return NewString(strings.Join(parts, sep)), nil
	})

	methods["iter"] = NewNative("iter", 1, func(i *Interpreter, pos token.Position, self Value, args []Value) (Value, error) {
		fn, err := i.wantCallable(args[0], pos)
		if err != nil {
			return nil, err
		}
		for _, el := range wantSelfList(self).Elements {
			if _, err := fn.Call(i, pos, []Value{el}); err != nil {
				return nil, err
			}
		}
		return None, nil
	})

	methods["map"] = NewNative("map", 1, func(i *Interpreter, pos token.Position, self Value, args []Value) (Value, error) {
		fn, err := i.wantCallable(args[0], pos)
		if err != nil {
			return nil, err
		}
		src := wantSelfList(self).Elements
		mapped := make([]Value, 0, len(src))
		for _, el := range src {
			v, err := fn.Call(i, pos, []Value{el})
			if err != nil {
				return nil, err
			}
			if errVal, isErr := v.(*ErrorValue); isErr {
				return errVal, nil
			}
			mapped = append(mapped, v)
		}
		return NewList(mapped), nil
	})

	methods["filter"] = NewNative("filter", 1, func(i *Interpreter, pos token.Position, self Value, args []Value) (Value, error) {
		fn, err := i.wantCallable(args[0], pos)
		if err != nil {
			return nil, err
		}
		var kept []Value
		for _, el := range wantSelfList(self).Elements {
			v, err := fn.Call(i, pos, []Value{el})
			if err != nil {
				return nil, err
			}
			if errVal, isErr := v.(*ErrorValue); isErr {
				return errVal, nil
			}
			if v.Truthy() {
				kept = append(kept, el)
			}
		}
		return NewList(kept), nil
	})

	methods["reduce"] = NewNative("reduce", 2, func(i *Interpreter, pos token.Position, self Value, args []Value) (Value, error) {
		acc := args[0]
		fn, err := i.wantCallable(args[1], pos)
		if err != nil {
			return nil, err
		}
		for _, el := range wantSelfList(self).Elements {
			acc, err = fn.Call(i, pos, []Value{acc, el})
			if err != nil {
				return nil, err
			}
			if errVal, isErr := acc.(*ErrorValue); isErr {
				return errVal, nil
			}
		}
		return acc, nil
	})

	// sort() orders numbers or strings naturally; sort(cmp) delegates to
	// a user comparator returning a negative, zero or positive number.
	// Either way a sorted copy is returned and the receiver is untouched.
	methods["sort"] = &NativeFn{
		Name:     "sort",
		MinArity: 0,
		MaxArity: 1,
		Fn: func(i *Interpreter, pos token.Position, self Value, args []Value) (Value, error) {
			src := wantSelfList(self).Elements
			sorted := make([]Value, len(src))
			copy(sorted, src)

			if len(args) == 1 {
				fn, err := i.wantCallable(args[0], pos)
				if err != nil {
					return nil, err
				}
				var callErr error
				slices.SortStableFunc(sorted, func(a, b Value) int {
					if callErr != nil {
						return 0
					}
					v, err := fn.Call(i, pos, []Value{a, b})
					if err != nil {
						callErr = err
						return 0
					}
					n, ok := v.(*NumberValue)
					if !ok {
						callErr = i.runErrorf(pos, "Comparator must return a number, got %s", v.Type())
						return 0
					}
					switch {
					case n.Value < 0:
						return -1
					case n.Value > 0:
						return 1
					default:
						return 0
					}
				})
				if callErr != nil {
					return nil, callErr
				}
				return NewList(sorted), nil
			}

			var sortErr error
			slices.SortStableFunc(sorted, func(a, b Value) int {
				if sortErr != nil {
					return 0
				}
				switch av := a.(type) {
				case *NumberValue:
					if bv, ok := b.(*NumberValue); ok {
						switch {
						case av.Value < bv.Value:
							return -1
						case av.Value > bv.Value:
							return 1
						default:
							return 0
						}
					}
				case *StringValue:
					if bv, ok := b.(*StringValue); ok {
						return strings.Compare(av.Value, bv.Value)
					}
				}
				sortErr = i.runErrorf(pos, "Cannot sort %s and %s without a comparator", a.Type(), b.Type())
				return 0
			})
			if sortErr != nil {
				return nil, sortErr
			}
			return NewList(sorted), nil
		},
	}

	return builtinAttr("List", methods)
}

func (i *Interpreter) errorAttribute() *AttributeValue {
	methods := map[string]Callable{}

	// get unwraps the error's inner value.
	methods["get"] = NewNative("get", 0, func(i *Interpreter, pos token.Position, self Value, _ []Value) (Value, error) {
		return self.(*ErrorValue).Inner, nil
	})

	methods["message"] = NewNative("message", 0, func(i *Interpreter, pos token.Position, self Value, _ []Value) (Value, error) {
		s, err := i.display(self.(*ErrorValue).Inner, pos)
		if err != nil {
			return nil, err
		}
		return NewString(s), nil
	})

	return builtinAttr("Error", methods)
}
