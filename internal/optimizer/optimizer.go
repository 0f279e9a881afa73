// Package optimizer performs a single constant-folding pass over the
// resolved AST. Folding is sound because arithmetic and logic on literal
// operands have no side effects and the language's numbers are plain
// IEEE-754 doubles.
package optimizer

import (
	"math"

	"github.com/jvcmarcenes/wisp/internal/ast"
)

// Optimize folds constants in every top-level declaration and in the
// script block, rebuilding nodes in place.
func Optimize(mod *ast.Module) {
	for _, name := range mod.Names {
		optimizeStmt(mod.Decls[name])
	}
	mod.Script = OptimizeBlock(mod.Script)
}

// OptimizeBlock folds constants in a statement block.
func OptimizeBlock(block ast.Block) ast.Block {
	for _, stmt := range block {
		optimizeStmt(stmt)
	}
	return block
}

func optimizeStmt(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		s.Expr = optimizeExpr(s.Expr)
	case *ast.Declaration:
		s.Expr = optimizeExpr(s.Expr)
	case *ast.FuncDeclaration:
		s.Lambda.Body = OptimizeBlock(s.Lambda.Body)
	case *ast.AttrDeclaration:
		for _, field := range s.Fields {
			if field.Expr != nil {
				field.Expr = optimizeExpr(field.Expr)
			}
		}
		for _, method := range s.Methods {
			method.Lambda.Body = OptimizeBlock(method.Lambda.Body)
		}
	case *ast.Assignment:
		s.Target = optimizeExpr(s.Target)
		s.Expr = optimizeExpr(s.Expr)
	case *ast.If:
		s.Cond = optimizeExpr(s.Cond)
		s.Then = OptimizeBlock(s.Then)
		if s.Else != nil {
			s.Else = OptimizeBlock(s.Else)
		}
	case *ast.Loop:
		s.Body = OptimizeBlock(s.Body)
	case *ast.Return:
		if s.Expr != nil {
			s.Expr = optimizeExpr(s.Expr)
		}
	case *ast.Scoped:
		s.Body = OptimizeBlock(s.Body)
	}
}

func optimizeExpr(expr ast.Expression) ast.Expression {
	switch e := expr.(type) {
	case *ast.Binary:
		e.Lhs = optimizeExpr(e.Lhs)
		e.Rhs = optimizeExpr(e.Rhs)
		return foldBinary(e)

	case *ast.Unary:
		e.Expr = optimizeExpr(e.Expr)
		return foldUnary(e)

	case *ast.Logic:
		e.Lhs = optimizeExpr(e.Lhs)
		e.Rhs = optimizeExpr(e.Rhs)
		return e

	case *ast.Grouping:
		e.Expr = optimizeExpr(e.Expr)
		if isLiteral(e.Expr) {
			return e.Expr
		}
		return e

	case *ast.TemplateLiteral:
		for i, c := range e.Chunks {
			e.Chunks[i] = optimizeExpr(c)
		}
		return e

	case *ast.ListLiteral:
		for i, el := range e.Elements {
			e.Elements[i] = optimizeExpr(el)
		}
		return e

	case *ast.ObjectLiteral:
		for i := range e.Fields {
			e.Fields[i].Expr = optimizeExpr(e.Fields[i].Expr)
		}
		return e

	case *ast.Lambda:
		e.Body = OptimizeBlock(e.Body)
		return e

	case *ast.Call:
		e.Callee = optimizeExpr(e.Callee)
		for i, a := range e.Args {
			e.Args[i] = optimizeExpr(a)
		}
		return e

	case *ast.Index:
		e.Head = optimizeExpr(e.Head)
		e.Index = optimizeExpr(e.Index)
		return e

	case *ast.FieldGet:
		e.Head = optimizeExpr(e.Head)
		return e

	default:
		return expr
	}
}

func isLiteral(expr ast.Expression) bool {
	switch expr.(type) {
	case *ast.NoneLiteral, *ast.StrLiteral, *ast.NumLiteral, *ast.BoolLiteral:
		return true
	}
	return false
}

// foldBinary collapses a binary node whose operands are both numeric
// literals. Division and remainder by a zero literal are left unfolded so
// the runtime error surfaces during execution, where it belongs.
func foldBinary(e *ast.Binary) ast.Expression {
	lhs, lok := e.Lhs.(*ast.NumLiteral)
	rhs, rok := e.Rhs.(*ast.NumLiteral)
	if !lok || !rok {
		return e
	}

	switch e.Op {
	case ast.Add:
		return &ast.NumLiteral{Value: lhs.Value + rhs.Value, P: e.P}
	case ast.Sub:
		return &ast.NumLiteral{Value: lhs.Value - rhs.Value, P: e.P}
	case ast.Mul:
		return &ast.NumLiteral{Value: lhs.Value * rhs.Value, P: e.P}
	case ast.Div:
		if rhs.Value == 0 {
			return e
		}
		return &ast.NumLiteral{Value: lhs.Value / rhs.Value, P: e.P}
	case ast.Rem:
		if rhs.Value == 0 {
			return e
		}
		return &ast.NumLiteral{Value: math.Mod(lhs.Value, rhs.Value), P: e.P}
	case ast.Equ:
		return &ast.BoolLiteral{Value: lhs.Value == rhs.Value, P: e.P}
	case ast.Neq:
		return &ast.BoolLiteral{Value: lhs.Value != rhs.Value, P: e.P}
	case ast.Lst:
		return &ast.BoolLiteral{Value: lhs.Value < rhs.Value, P: e.P}
	case ast.Lse:
		return &ast.BoolLiteral{Value: lhs.Value <= rhs.Value, P: e.P}
	case ast.Grt:
		return &ast.BoolLiteral{Value: lhs.Value > rhs.Value, P: e.P}
	case ast.Gre:
		return &ast.BoolLiteral{Value: lhs.Value >= rhs.Value, P: e.P}
	}
	return e
}

func foldUnary(e *ast.Unary) ast.Expression {
	switch inner := e.Expr.(type) {
	case *ast.NumLiteral:
		if e.Op == ast.Neg {
			return &ast.NumLiteral{Value: -inner.Value, P: e.P}
		}
	case *ast.BoolLiteral:
		if e.Op == ast.Not {
			return &ast.BoolLiteral{Value: !inner.Value, P: e.P}
		}
	}
	return e
}
