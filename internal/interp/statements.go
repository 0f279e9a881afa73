package interp

import (
	"fmt"

	"github.com/jvcmarcenes/wisp/internal/ast"
)

// execBlock runs a statement sequence in a fresh scope, propagating the
// first non-normal outcome. The scope is popped on every exit path.
func (i *Interpreter) execBlock(block ast.Block) (outcome, error) {
	i.env.Push()
	defer i.env.Pop()

	for _, stmt := range block {
		out, err := i.execStmt(stmt)
		if err != nil {
			return normal, err
		}
		if out.kind != outNormal {
			return out, nil
		}
	}
	return normal, nil
}

func (i *Interpreter) execStmt(stmt ast.Statement) (outcome, error) {
	if i.Trace {
		fmt.Fprintf(i.errOut, "[%s]\n", stmt.Pos())
	}

	switch s := stmt.(type) {
	case *ast.ExprStmt:
		_, err := i.evalExpr(s.Expr)
		return normal, err

	case *ast.Declaration:
		v, err := i.evalExpr(s.Expr)
		if err != nil {
			return normal, err
		}
		i.env.Define(*s.Name.Id, v)
		return normal, nil

	case *ast.FuncDeclaration:
		fn := i.makeFunction(s.Name.Name, s.Lambda)
		i.env.Define(*s.Name.Id, fn)
		return normal, nil

	case *ast.AttrDeclaration:
		attr, err := i.makeAttribute(s)
		if err != nil {
			return normal, err
		}
		i.env.Define(*s.Name.Id, attr)
		return normal, nil

	case *ast.Assignment:
		return normal, i.execAssignment(s)

	case *ast.If:
		cond, err := i.evalExpr(s.Cond)
		if err != nil {
			return normal, err
		}
		if cond.Truthy() {
			return i.execBlock(s.Then)
		}
		if s.Else != nil {
			return i.execBlock(s.Else)
		}
		return normal, nil

	case *ast.Loop:
		for {
			out, err := i.execBlock(s.Body)
			if err != nil {
				return normal, err
			}
			switch out.kind {
			case outBreak:
				return normal, nil
			case outReturn:
				return out, nil
			}
			// outNormal and outContinue both re-enter the loop.
		}

	case *ast.Break:
		return outcome{kind: outBreak}, nil
	case *ast.Continue:
		return outcome{kind: outContinue}, nil

	case *ast.Return:
		var v Value = None
		if s.Expr != nil {
			var err error
			v, err = i.evalExpr(s.Expr)
			if err != nil {
				return normal, err
			}
		}
		return outcome{kind: outReturn, value: v}, nil

	case *ast.Scoped:
		return i.execBlock(s.Body)

	case *ast.TypeAlias:
		return normal, nil
	}

	panic(fmt.Sprintf("unhandled statement %T", stmt))
}

// execAssignment writes through the three legal target shapes. The
// target's head is evaluated exactly once, before the right-hand side
// for compound operators (the current value participates in the
// computation) and once overall for plain assignment.
func (i *Interpreter) execAssignment(s *ast.Assignment) error {
	switch target := s.Target.(type) {
	case *ast.Variable:
		rhs, err := i.assignmentValue(s, func() (Value, error) {
			return i.env.Get(*target.Ident.Id), nil
		})
		if err != nil {
			return err
		}
		i.env.Assign(*target.Ident.Id, rhs)
		return nil

	case *ast.Index:
		head, err := i.evalExpr(target.Head)
		if err != nil {
			return err
		}
		index, err := i.evalExpr(target.Index)
		if err != nil {
			return err
		}
		list, ok := head.(*ListValue)
		if !ok {
			return i.runErrorf(target.P, "Cannot index %s", head.Type())
		}
		num, ok := index.(*NumberValue)
		if !ok {
			return i.runErrorf(target.P, "List index must be a number, got %s", index.Type())
		}
		idx, inRange := normalizeIndex(num.Value, len(list.Elements))
		if !inRange {
			return i.runErrorf(target.P, "Index %s out of bounds", num.String())
		}
		rhs, err := i.assignmentValue(s, func() (Value, error) {
			return list.Elements[idx], nil
		})
		if err != nil {
			return err
		}
		list.Elements[idx] = rhs
		return nil

	case *ast.FieldGet:
		head, err := i.evalExpr(target.Head)
		if err != nil {
			return err
		}
		obj, ok := head.(*ObjectValue)
		if !ok {
			return i.runErrorf(target.P, "Cannot set property '%s' of %s", target.Field, head.Type())
		}
		rhs, err := i.assignmentValue(s, func() (Value, error) {
			if cell, ok := obj.Fields[target.Field]; ok {
				return cell.V, nil
			}
			return nil, i.runErrorf(target.P, "Property '%s' is undefined for object", target.Field)
		})
		if err != nil {
			return err
		}
		if cell, ok := obj.Fields[target.Field]; ok {
			cell.V = rhs
		} else {
			obj.Fields[target.Field] = NewCell(rhs)
		}
		return nil
	}

	return i.runErrorf(s.P, "Invalid assignment target")
}

// assignmentValue evaluates the right-hand side of an assignment,
// folding in the target's current value for compound operators. current
// is only invoked for compound forms, so plain `=` never reads the
// target.
func (i *Interpreter) assignmentValue(s *ast.Assignment, current func() (Value, error)) (Value, error) {
	rhs, err := i.evalExpr(s.Expr)
	if err != nil {
		return nil, err
	}
	if s.Op == ast.AssignSet {
		return rhs, nil
	}

	cur, err := current()
	if err != nil {
		return nil, err
	}

	var op ast.BinaryOp
	switch s.Op {
	case ast.AssignAdd:
		op = ast.Add
	case ast.AssignSub:
		op = ast.Sub
	case ast.AssignMul:
		op = ast.Mul
	case ast.AssignDiv:
		op = ast.Div
	}
	return i.binaryOp(op, cur, rhs, s.P)
}
