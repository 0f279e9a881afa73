package interp

import (
	"math"
	"strings"

	"github.com/jvcmarcenes/wisp/internal/ast"
	"github.com/jvcmarcenes/wisp/internal/token"
)

var binaryOpNames = map[ast.BinaryOp]string{
	ast.Add: "add", ast.Sub: "sub", ast.Mul: "mul", ast.Div: "div", ast.Rem: "mod",
	ast.Equ: "equals", ast.Neq: "equals",
	ast.Lst: "compare", ast.Lse: "compare", ast.Grt: "compare", ast.Gre: "compare",
}

// objectOverloads maps operators to the method an object may define to
// take part in them.
var objectOverloads = map[ast.BinaryOp]string{
	ast.Add: "add", ast.Sub: "sub", ast.Mul: "mul", ast.Div: "div",
}

func (i *Interpreter) binaryOp(op ast.BinaryOp, lhs, rhs Value, pos token.Position) (Value, error) {
	switch op {
	case ast.Equ:
		eq, err := i.equals(lhs, rhs, pos)
		if err != nil {
			return nil, err
		}
		return NewBool(eq), nil
	case ast.Neq:
		eq, err := i.equals(lhs, rhs, pos)
		if err != nil {
			return nil, err
		}
		return NewBool(!eq), nil
	case ast.Lst, ast.Lse, ast.Grt, ast.Gre:
		return i.compare(op, lhs, rhs, pos)
	}

	// String concatenation wins for either operand of +.
	if op == ast.Add {
		_, lStr := lhs.(*StringValue)
		_, rStr := rhs.(*StringValue)
		if lStr || rStr {
			ls, err := i.display(lhs, pos)
			if err != nil {
				return nil, err
			}
			rs, err := i.display(rhs, pos)
			if err != nil {
				return nil, err
			}
			return NewString(ls + rs), nil
		}
	}

	if ln, ok := lhs.(*NumberValue); ok {
		if rn, ok := rhs.(*NumberValue); ok {
			switch op {
			case ast.Add:
				return NewNumber(ln.Value + rn.Value), nil
			case ast.Sub:
				return NewNumber(ln.Value - rn.Value), nil
			case ast.Mul:
				return NewNumber(ln.Value * rn.Value), nil
			case ast.Div:
				if rn.Value == 0 {
					return nil, i.runErrorf(pos, "Division by zero")
				}
				return NewNumber(ln.Value / rn.Value), nil
			case ast.Rem:
				if rn.Value == 0 {
					return nil, i.runErrorf(pos, "Division by zero")
				}
				return NewNumber(math.Mod(ln.Value, rn.Value)), nil
			}
		}
	}

	// Objects take part in arithmetic through their user-defined methods.
	if obj, ok := lhs.(*ObjectValue); ok {
		if method, found := objectOverloads[op]; found {
			if v, handled, err := i.objectMethodCall(obj, method, []Value{rhs}, pos); handled || err != nil {
				return v, err
			}
		}
	}

	return nil, i.runErrorf(pos, "Operation '%s' is not defined for %s and %s",
		binaryOpNames[op], lhs.Type(), rhs.Type())
}

// equals implements same-tag equality. A tag mismatch is simply false;
// objects defer to a user `equals` method when they define one and fall
// back to identity.
func (i *Interpreter) equals(lhs, rhs Value, pos token.Position) (bool, error) {
	switch l := lhs.(type) {
	case *NoneValue:
		_, ok := rhs.(*NoneValue)
		return ok, nil

	case *NumberValue:
		r, ok := rhs.(*NumberValue)
		return ok && l.Value == r.Value, nil

	case *BoolValue:
		r, ok := rhs.(*BoolValue)
		return ok && l.Value == r.Value, nil

	case *StringValue:
		r, ok := rhs.(*StringValue)
		return ok && l.Value == r.Value, nil

	case *ListValue:
		r, ok := rhs.(*ListValue)
		if !ok || len(l.Elements) != len(r.Elements) {
			return false, nil
		}
		for idx := range l.Elements {
			eq, err := i.equals(l.Elements[idx], r.Elements[idx], pos)
			if err != nil || !eq {
				return false, err
			}
		}
		return true, nil

	case *ObjectValue:
		if v, handled, err := i.objectMethodCall(l, "equals", []Value{rhs}, pos); handled || err != nil {
			if err != nil {
				return false, err
			}
			return v.Truthy(), nil
		}
		r, ok := rhs.(*ObjectValue)
		return ok && l == r, nil

	case *ErrorValue:
		r, ok := rhs.(*ErrorValue)
		if !ok {
			return false, nil
		}
		return i.equals(l.Inner, r.Inner, pos)
	}

	// Callables, attributes: never equal.
	return false, nil
}

func (i *Interpreter) compare(op ast.BinaryOp, lhs, rhs Value, pos token.Position) (Value, error) {
	var cmp int
	switch l := lhs.(type) {
	case *NumberValue:
		r, ok := rhs.(*NumberValue)
		if !ok {
			return nil, i.runErrorf(pos, "Operation 'compare' is not defined for %s and %s", lhs.Type(), rhs.Type())
		}
		switch {
		case l.Value < r.Value:
			cmp = -1
		case l.Value > r.Value:
			cmp = 1
		}
	case *StringValue:
		r, ok := rhs.(*StringValue)
		if !ok {
			return nil, i.runErrorf(pos, "Operation 'compare' is not defined for %s and %s", lhs.Type(), rhs.Type())
		}
		cmp = strings.Compare(l.Value, r.Value)
	default:
		return nil, i.runErrorf(pos, "Operation 'compare' is not defined for %s and %s", lhs.Type(), rhs.Type())
	}

	switch op {
	case ast.Lst:
		return NewBool(cmp < 0), nil
	case ast.Lse:
		return NewBool(cmp <= 0), nil
	case ast.Grt:
		return NewBool(cmp > 0), nil
	default:
		return NewBool(cmp >= 0), nil
	}
}

// objectMethodCall invokes a user-defined method on obj if it exists.
// handled is false when the object defines no such method, letting the
// caller fall back to default behavior.
func (i *Interpreter) objectMethodCall(obj *ObjectValue, method string, args []Value, pos token.Position) (Value, bool, error) {
	var callee Value
	if cell, ok := obj.Fields[method]; ok {
		callee = cell.V
	} else if m, ok := i.attrMethod(obj.Attrs, method); ok {
		callee = m
	} else {
		return nil, false, nil
	}

	fn, ok := callee.(Callable)
	if !ok {
		return nil, false, nil
	}
	bound := fn.Bind(obj)
	if err := bound.CheckArity(len(args)); err != nil {
		return nil, true, i.runErrorf(pos, "%s", err)
	}
	v, err := bound.Call(i, pos, args)
	return v, true, err
}
