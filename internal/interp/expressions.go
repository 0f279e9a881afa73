package interp

import (
	"fmt"
	"strings"

	"github.com/jvcmarcenes/wisp/internal/ast"
	"github.com/jvcmarcenes/wisp/internal/interp/runtime"
)

func (i *Interpreter) evalExpr(expr ast.Expression) (Value, error) {
	switch e := expr.(type) {
	case *ast.NoneLiteral:
		return None, nil
	case *ast.StrLiteral:
		return NewString(e.Value), nil
	case *ast.NumLiteral:
		return NewNumber(e.Value), nil
	case *ast.BoolLiteral:
		return NewBool(e.Value), nil

	case *ast.TemplateLiteral:
		var sb strings.Builder
		for _, chunk := range e.Chunks {
			v, err := i.evalExpr(chunk)
			if err != nil {
				return nil, err
			}
			s, err := i.display(v, chunk.Pos())
			if err != nil {
				return nil, err
			}
			sb.WriteString(s)
		}
		return NewString(sb.String()), nil

	case *ast.ListLiteral:
		elems := make([]Value, 0, len(e.Elements))
		for _, el := range e.Elements {
			v, err := i.evalExpr(el)
			if err != nil {
				return nil, err
			}
			elems = append(elems, v)
		}
		return NewList(elems), nil

	case *ast.ObjectLiteral:
		fields := make(map[string]*Cell, len(e.Fields))
		for _, f := range e.Fields {
			v, err := i.evalExpr(f.Expr)
			if err != nil {
				return nil, err
			}
			fields[f.Name.Name] = NewCell(v)
		}
		return NewObject(fields, nil), nil

	case *ast.Binary:
		lhs, err := i.evalExpr(e.Lhs)
		if err != nil {
			return nil, err
		}
		rhs, err := i.evalExpr(e.Rhs)
		if err != nil {
			return nil, err
		}
		return i.binaryOp(e.Op, lhs, rhs, e.P)

	case *ast.Unary:
		v, err := i.evalExpr(e.Expr)
		if err != nil {
			return nil, err
		}
		switch e.Op {
		case ast.Not:
			return NewBool(!v.Truthy()), nil
		case ast.Neg:
			n, ok := v.(*NumberValue)
			if !ok {
				return nil, i.runErrorf(e.P, "Operation 'neg' is not defined for %s", v.Type())
			}
			return NewNumber(-n.Value), nil
		}

	case *ast.Logic:
		lhs, err := i.evalExpr(e.Lhs)
		if err != nil {
			return nil, err
		}
		// Short-circuit: the last evaluated operand is returned as-is,
		// not coerced to bool.
		switch e.Op {
		case ast.LogicAnd:
			if !lhs.Truthy() {
				return lhs, nil
			}
		case ast.LogicOr:
			if lhs.Truthy() {
				return lhs, nil
			}
		}
		return i.evalExpr(e.Rhs)

	case *ast.Grouping:
		return i.evalExpr(e.Expr)

	case *ast.Variable:
		return i.env.Get(*e.Ident.Id), nil

	case *ast.Lambda:
		return i.makeFunction("", e), nil

	case *ast.Call:
		return i.evalCall(e)

	case *ast.Index:
		return i.evalIndex(e)

	case *ast.FieldGet:
		head, err := i.evalExpr(e.Head)
		if err != nil {
			return nil, err
		}
		return i.getField(head, e.Field, e.P)

	case *ast.SelfRef:
		self, ok := i.env.Lookup(runtime.SelfID)
		if !ok {
			return nil, i.runErrorf(e.P, "'self' is not bound here")
		}
		return self, nil
	}

	panic(fmt.Sprintf("unhandled expression %T", expr))
}

func (i *Interpreter) evalCall(e *ast.Call) (Value, error) {
	callee, err := i.evalExpr(e.Callee)
	if err != nil {
		return nil, err
	}

	args := make([]Value, 0, len(e.Args))
	for _, a := range e.Args {
		v, err := i.evalExpr(a)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	fn, ok := callee.(Callable)
	if !ok {
		if attr, isAttr := callee.(*AttributeValue); isAttr {
			return i.constructObject(attr, args, e.P)
		}
		return nil, i.runErrorf(e.P, "Cannot call %s", callee.Type())
	}
	if err := fn.CheckArity(len(args)); err != nil {
		return nil, i.runErrorf(e.P, "%s", err)
	}
	return fn.Call(i, e.P, args)
}

func (i *Interpreter) evalIndex(e *ast.Index) (Value, error) {
	head, err := i.evalExpr(e.Head)
	if err != nil {
		return nil, err
	}
	index, err := i.evalExpr(e.Index)
	if err != nil {
		return nil, err
	}
	num, ok := index.(*NumberValue)
	if !ok {
		return nil, i.runErrorf(e.P, "Index must be a number, got %s", index.Type())
	}

	switch h := head.(type) {
	case *ListValue:
		idx, inRange := normalizeIndex(num.Value, len(h.Elements))
		if !inRange {
			return None, nil
		}
		return h.Elements[idx], nil

	case *StringValue:
		chars := []rune(h.Value)
		idx, inRange := normalizeIndex(num.Value, len(chars))
		if !inRange {
			return None, nil
		}
		return NewString(string(chars[idx])), nil
	}

	return nil, i.runErrorf(e.P, "Cannot index %s", head.Type())
}

// normalizeIndex converts a possibly-negative index into a slice offset,
// wrapping once from the end the way the language indexes lists (-1 is
// the last element).
func normalizeIndex(n float64, length int) (int, bool) {
	idx := int(n)
	if idx < 0 {
		idx += length
	}
	return idx, idx >= 0 && idx < length
}
