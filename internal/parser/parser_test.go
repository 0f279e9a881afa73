package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jvcmarcenes/wisp/internal/ast"
	"github.com/jvcmarcenes/wisp/internal/errors"
	"github.com/jvcmarcenes/wisp/internal/lexer"
)

func parse(t *testing.T, source string) *ast.Module {
	t.Helper()
	mod, errs := parseWithErrors(t, source)
	require.Nil(t, errs, "unexpected parse errors: %v", errs)
	return mod
}

func parseWithErrors(t *testing.T, source string) (*ast.Module, *errors.List) {
	t.Helper()
	tokens, lexErrs := lexer.New(source, "test.wsp").ScanTokens()
	require.Nil(t, lexErrs, "unexpected lex errors")
	return New(tokens, source, "test.wsp").ParseModule()
}

func scriptExpr(t *testing.T, source string) ast.Expression {
	t.Helper()
	mod := parse(t, source)
	require.Len(t, mod.Script, 1)
	es, ok := mod.Script[0].(*ast.ExprStmt)
	require.True(t, ok, "expected expression statement, got %T", mod.Script[0])
	return es.Expr
}

func TestPrecedenceMulOverAdd(t *testing.T) {
	expr := scriptExpr(t, "1 + 2 * 3")

	add, ok := expr.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, ast.Add, add.Op)

	mul, ok := add.Rhs.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, ast.Mul, mul.Op)
}

func TestPrecedenceComparisonOverLogic(t *testing.T) {
	expr := scriptExpr(t, "a < b and c == d or e")

	or, ok := expr.(*ast.Logic)
	require.True(t, ok)
	assert.Equal(t, ast.LogicOr, or.Op)

	and, ok := or.Lhs.(*ast.Logic)
	require.True(t, ok)
	assert.Equal(t, ast.LogicAnd, and.Op)

	lt, ok := and.Lhs.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, ast.Lst, lt.Op)

	eq, ok := and.Rhs.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, ast.Equ, eq.Op)
}

func TestModIsAdditive(t *testing.T) {
	expr := scriptExpr(t, "a mod b * c")

	rem, ok := expr.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, ast.Rem, rem.Op)

	mul, ok := rem.Rhs.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, ast.Mul, mul.Op)
}

func TestUnaryBinds(t *testing.T) {
	expr := scriptExpr(t, "-a + !b")

	add := expr.(*ast.Binary)
	neg, ok := add.Lhs.(*ast.Unary)
	require.True(t, ok)
	assert.Equal(t, ast.Neg, neg.Op)

	not, ok := add.Rhs.(*ast.Unary)
	require.True(t, ok)
	assert.Equal(t, ast.Not, not.Op)
}

func TestPostfixChaining(t *testing.T) {
	expr := scriptExpr(t, "a.b[0](1, 2)")

	call, ok := expr.(*ast.Call)
	require.True(t, ok)
	require.Len(t, call.Args, 2)

	index, ok := call.Callee.(*ast.Index)
	require.True(t, ok)

	field, ok := index.Head.(*ast.FieldGet)
	require.True(t, ok)
	assert.Equal(t, "b", field.Field)
	_, ok = field.Head.(*ast.Variable)
	assert.True(t, ok)
}

func TestLambdaBlockForm(t *testing.T) {
	expr := scriptExpr(t, "fn (a, b) { return a + b }")

	lambda, ok := expr.(*ast.Lambda)
	require.True(t, ok)
	assert.False(t, lambda.SelfBound)
	require.Len(t, lambda.Params, 2)
	require.Len(t, lambda.Body, 1)
	_, ok = lambda.Body[0].(*ast.Return)
	assert.True(t, ok)
}

func TestLambdaArrowFormDesugarsToReturn(t *testing.T) {
	expr := scriptExpr(t, "fn (a, b) => a + b")

	lambda, ok := expr.(*ast.Lambda)
	require.True(t, ok)
	require.Len(t, lambda.Body, 1)
	ret, ok := lambda.Body[0].(*ast.Return)
	require.True(t, ok)
	assert.NotNil(t, ret.Expr)
}

func TestLambdaSelfParameter(t *testing.T) {
	expr := scriptExpr(t, "fn (self, x) => self")

	lambda, ok := expr.(*ast.Lambda)
	require.True(t, ok)
	assert.True(t, lambda.SelfBound)
	// self is not a real parameter: arity is the declared tail.
	require.Len(t, lambda.Params, 1)
	assert.Equal(t, "x", lambda.Params[0].Name)
}

func TestObjectLiteralBareNameDesugars(t *testing.T) {
	// A statement that opens with '{' is a scoped block, so the literal is
	// placed on the right of a declaration.
	mod := parse(t, "let o = { x = 1, y }")
	require.Len(t, mod.Script, 1)
	decl, ok := mod.Script[0].(*ast.Declaration)
	require.True(t, ok)

	obj, ok := decl.Expr.(*ast.ObjectLiteral)
	require.True(t, ok)
	require.Len(t, obj.Fields, 2)

	assert.Equal(t, "y", obj.Fields[1].Name.Name)
	v, ok := obj.Fields[1].Expr.(*ast.Variable)
	require.True(t, ok)
	assert.Equal(t, "y", v.Ident.Name)
}

func TestListLiteral(t *testing.T) {
	expr := scriptExpr(t, "[1, 2, 3]")

	list, ok := expr.(*ast.ListLiteral)
	require.True(t, ok)
	assert.Len(t, list.Elements, 3)
}

func TestTemplateReparsesInterpolations(t *testing.T) {
	expr := scriptExpr(t, `"hi #{1 + 2}!"`)

	tpl, ok := expr.(*ast.TemplateLiteral)
	require.True(t, ok)
	require.Len(t, tpl.Chunks, 3)

	add, ok := tpl.Chunks[1].(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, ast.Add, add.Op)
}

func TestForDesugarsToScopedLoop(t *testing.T) {
	mod := parse(t, "for v in xs { write(v) }")

	require.Len(t, mod.Script, 1)
	scoped, ok := mod.Script[0].(*ast.Scoped)
	require.True(t, ok)
	// $list, $len and $i declarations, then the loop itself.
	require.Len(t, scoped.Body, 4)

	iDecl, ok := scoped.Body[2].(*ast.Declaration)
	require.True(t, ok)
	init, ok := iDecl.Expr.(*ast.NumLiteral)
	require.True(t, ok)
	assert.Equal(t, float64(-1), init.Value)

	_, ok = scoped.Body[3].(*ast.Loop)
	assert.True(t, ok)
}

func TestTopLevelDeclarationsAreHoisted(t *testing.T) {
	mod := parse(t, "fn f() { return 1 }\nattr A { }\ntype T = number\nwriteline(1)")

	assert.Equal(t, []string{"f", "A", "T"}, mod.Names)
	assert.Len(t, mod.Script, 1)
}

func TestAttrDeclaration(t *testing.T) {
	mod := parse(t, `attr Point is Base {
	static origin = 0
	x = 1
	scale(self, by) { self.x = self.x * by }
}`)

	decl, ok := mod.Decls["Point"].(*ast.AttrDeclaration)
	require.True(t, ok)

	require.Len(t, decl.Attributes, 1)
	assert.Equal(t, "Base", decl.Attributes[0].Name)

	require.Len(t, decl.Fields, 2)
	assert.True(t, decl.Fields[0].Static)
	assert.False(t, decl.Fields[1].Static)

	require.Len(t, decl.Methods, 1)
	assert.Equal(t, "scale", decl.Methods[0].Name.Name)
	assert.True(t, decl.Methods[0].Lambda.SelfBound)
}

func TestDuplicateTopLevelDeclaration(t *testing.T) {
	_, errs := parseWithErrors(t, "fn f() { return 1 }\nfn f() { return 2 }")

	require.NotNil(t, errs)
	assert.Contains(t, errs.Diagnostics[0].Message, "already declared")
}

func TestInvalidAssignmentTarget(t *testing.T) {
	_, errs := parseWithErrors(t, "1 + 2 = 3")

	require.NotNil(t, errs)
	assert.Contains(t, errs.Diagnostics[0].Message, "Invalid assignment target")
}

func TestCompoundAssignmentOperators(t *testing.T) {
	mod := parse(t, "x += 1\nx -= 2\nx *= 3\nx /= 4")

	ops := []ast.AssignOp{ast.AssignAdd, ast.AssignSub, ast.AssignMul, ast.AssignDiv}
	require.Len(t, mod.Script, 4)
	for i, want := range ops {
		stmt, ok := mod.Script[i].(*ast.Assignment)
		require.True(t, ok)
		assert.Equal(t, want, stmt.Op)
	}
}

func TestErrorRecoverySynchronizes(t *testing.T) {
	mod, errs := parseWithErrors(t, "let = 1\nlet y = 2")

	require.NotNil(t, errs)
	// The second statement still parses after synchronization.
	found := false
	for _, stmt := range mod.Script {
		if d, ok := stmt.(*ast.Declaration); ok && d.Name.Name == "y" {
			found = true
		}
	}
	assert.True(t, found, "parser did not recover to the next statement")
}

func TestElseIfChains(t *testing.T) {
	mod := parse(t, "if a { } else if b { } else { }")

	ifStmt, ok := mod.Script[0].(*ast.If)
	require.True(t, ok)
	require.Len(t, ifStmt.Else, 1)

	nested, ok := ifStmt.Else[0].(*ast.If)
	require.True(t, ok)
	assert.NotNil(t, nested.Else)
}

func TestReturnWithoutValue(t *testing.T) {
	mod := parse(t, "fn f() { return }")

	decl := mod.Decls["f"].(*ast.FuncDeclaration)
	ret, ok := decl.Lambda.Body[0].(*ast.Return)
	require.True(t, ok)
	assert.Nil(t, ret.Expr)
}
