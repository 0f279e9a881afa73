package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jvcmarcenes/wisp/internal/ast"
	"github.com/jvcmarcenes/wisp/internal/errors"
	"github.com/jvcmarcenes/wisp/internal/globalnames"
	"github.com/jvcmarcenes/wisp/internal/lexer"
	"github.com/jvcmarcenes/wisp/internal/parser"
)

func resolveSource(t *testing.T, source string) (*ast.Module, *errors.List) {
	t.Helper()
	tokens, lexErrs := lexer.New(source, "test.wsp").ScanTokens()
	require.Nil(t, lexErrs)
	mod, parseErrs := parser.New(tokens, source, "test.wsp").ParseModule()
	require.Nil(t, parseErrs)
	return mod, New(source, "test.wsp").ResolveModule(mod)
}

func mustResolve(t *testing.T, source string) *ast.Module {
	t.Helper()
	mod, errs := resolveSource(t, source)
	require.Nil(t, errs, "unexpected resolve errors: %v", errs)
	return mod
}

func firstMessage(t *testing.T, errs *errors.List) string {
	t.Helper()
	require.NotNil(t, errs)
	require.NotEmpty(t, errs.Diagnostics)
	return errs.Diagnostics[0].Message
}

func TestDeclarationAssignsNonZeroId(t *testing.T) {
	mod := mustResolve(t, "let x = 1\nwriteline(x)")

	decl := mod.Script[0].(*ast.Declaration)
	assert.NotZero(t, *decl.Name.Id)

	use := mod.Script[1].(*ast.ExprStmt).Expr.(*ast.Call).Args[0].(*ast.Variable)
	assert.Equal(t, *decl.Name.Id, *use.Ident.Id)
}

func TestGlobalsResolveToPreassignedIds(t *testing.T) {
	mod := mustResolve(t, "writeline(1)")

	call := mod.Script[0].(*ast.ExprStmt).Expr.(*ast.Call)
	callee := call.Callee.(*ast.Variable)
	wantID, ok := globalnames.Id("writeline")
	require.True(t, ok)
	assert.Equal(t, wantID, *callee.Ident.Id)
}

func TestUndefinedVariable(t *testing.T) {
	_, errs := resolveSource(t, "writeline(nope)")

	assert.Contains(t, firstMessage(t, errs), "Use of undefined variable 'nope'")
}

func TestShadowingGetsDistinctIds(t *testing.T) {
	mod := mustResolve(t, "let x = 1\n{\nlet x = 2\nwriteline(x)\n}")

	outer := mod.Script[0].(*ast.Declaration)
	scoped := mod.Script[1].(*ast.Scoped)
	inner := scoped.Body[0].(*ast.Declaration)
	use := scoped.Body[1].(*ast.ExprStmt).Expr.(*ast.Call).Args[0].(*ast.Variable)

	assert.NotEqual(t, *outer.Name.Id, *inner.Name.Id)
	assert.Equal(t, *inner.Name.Id, *use.Ident.Id)
}

func TestSiblingScopesMayReuseIds(t *testing.T) {
	// last_id rewinds on scope exit, so sibling scopes can hand out the
	// same ids; distinctness is only required between live bindings.
	mod := mustResolve(t, "{\nlet a = 1\n}\n{\nlet b = 2\n}")

	a := mod.Script[0].(*ast.Scoped).Body[0].(*ast.Declaration)
	b := mod.Script[1].(*ast.Scoped).Body[0].(*ast.Declaration)
	assert.Equal(t, *a.Name.Id, *b.Name.Id)
}

func TestSelfReferenceInPlainDeclarationFails(t *testing.T) {
	_, errs := resolveSource(t, "let x = x")

	assert.Contains(t, firstMessage(t, errs), "undefined variable 'x'")
}

func TestLambdaMayReferenceItself(t *testing.T) {
	mustResolve(t, "let f = fn (n) {\nif n <= 0 { return 0 }\nreturn f(n - 1)\n}")
}

func TestMutualRecursionBetweenTopLevelFunctions(t *testing.T) {
	mustResolve(t, `fn is_even(n) {
	if n == 0 { return true }
	return is_odd(n - 1)
}
fn is_odd(n) {
	if n == 0 { return false }
	return is_even(n - 1)
}`)
}

func TestRedefineGlobalFails(t *testing.T) {
	_, errs := resolveSource(t, "let writeline = 1")

	assert.Contains(t, firstMessage(t, errs), "Cannot redefine global constant 'writeline'")
}

func TestAssignToGlobalFails(t *testing.T) {
	_, errs := resolveSource(t, "writeline = 1")

	assert.Contains(t, firstMessage(t, errs), "Cannot assign to global constant 'writeline'")
}

func TestAssignToConstantFails(t *testing.T) {
	_, errs := resolveSource(t, "let const pi = 3.14\npi = 3")

	assert.Contains(t, firstMessage(t, errs), "Cannot assign to constant 'pi'")
}

func TestIndexAssignmentThroughConstantFails(t *testing.T) {
	// The overwriting context follows the target's head, so a constant
	// binding rejects element writes too.
	_, errs := resolveSource(t, "let const xs = [1]\nxs[0] = 2")

	assert.Contains(t, firstMessage(t, errs), "Cannot assign to constant 'xs'")
}

func TestIndexAssignmentThroughMutableBinding(t *testing.T) {
	mustResolve(t, "let xs = [1]\nxs[0] = 2")
}

func TestBreakOutsideLoop(t *testing.T) {
	_, errs := resolveSource(t, "break")

	assert.Contains(t, firstMessage(t, errs), "Invalid break statement")
}

func TestContinueOutsideLoop(t *testing.T) {
	_, errs := resolveSource(t, "continue")

	assert.Contains(t, firstMessage(t, errs), "Invalid continue statement")
}

func TestReturnOutsideFunction(t *testing.T) {
	_, errs := resolveSource(t, "return 1")

	assert.Contains(t, firstMessage(t, errs), "Invalid return statement")
}

func TestBreakInsideLambdaInsideLoopFails(t *testing.T) {
	// The function boundary resets the loop context.
	_, errs := resolveSource(t, "loop {\nlet f = fn () { break }\n}")

	assert.Contains(t, firstMessage(t, errs), "Invalid break statement")
}

func TestSelfOutsideMethodFails(t *testing.T) {
	_, errs := resolveSource(t, "writeline(self)")

	assert.Contains(t, firstMessage(t, errs), "Invalid self expression")
}

func TestSelfInsidePlainLambdaFails(t *testing.T) {
	_, errs := resolveSource(t, "let f = fn () { writeline(self) }")

	assert.Contains(t, firstMessage(t, errs), "Invalid self expression")
}

func TestSelfInsideSelfBoundLambdaResolves(t *testing.T) {
	mustResolve(t, "let obj = { n = 1, get = fn (self) => self.n }")
}

func TestAttrSupersMustBeBound(t *testing.T) {
	_, errs := resolveSource(t, "attr A is Missing { }")

	assert.Contains(t, firstMessage(t, errs), "undefined attribute 'Missing'")
}

func TestAttrSupersResolveToDeclaration(t *testing.T) {
	mod := mustResolve(t, "attr Base { }\nattr Derived is Base { }")

	base := mod.Decls["Base"].(*ast.AttrDeclaration)
	derived := mod.Decls["Derived"].(*ast.AttrDeclaration)
	require.Len(t, derived.Attributes, 1)
	assert.Equal(t, *base.Name.Id, *derived.Attributes[0].Id)
}

func TestForLoopSyntheticBindingsResolve(t *testing.T) {
	mod := mustResolve(t, "let xs = [1, 2]\nfor v in xs { writeline(v) }")

	scoped := mod.Script[1].(*ast.Scoped)
	listDecl := scoped.Body[0].(*ast.Declaration)
	assert.NotZero(t, *listDecl.Name.Id)
}
