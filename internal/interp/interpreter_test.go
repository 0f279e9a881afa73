package interp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jvcmarcenes/wisp/internal/lexer"
	"github.com/jvcmarcenes/wisp/internal/optimizer"
	"github.com/jvcmarcenes/wisp/internal/parser"
	"github.com/jvcmarcenes/wisp/internal/resolver"
)

// run drives source through the whole pipeline and returns everything the
// program printed to stdout.
func run(t *testing.T, source string) string {
	t.Helper()
	out, _, err := runFull(t, source, "")
	require.NoError(t, err, "runtime error")
	return out
}

// runErr drives source through the pipeline expecting a runtime error.
func runErr(t *testing.T, source string) string {
	t.Helper()
	_, _, err := runFull(t, source, "")
	require.Error(t, err, "expected a runtime error")
	return err.Error()
}

func runFull(t *testing.T, source, stdin string) (stdout, stderr string, err error) {
	t.Helper()

	tokens, lexErrs := lexer.New(source, "test.wsp").ScanTokens()
	require.Nil(t, lexErrs, "lex errors")

	mod, parseErrs := parser.New(tokens, source, "test.wsp").ParseModule()
	require.Nil(t, parseErrs, "parse errors: %v", parseErrs)

	resolveErrs := resolver.New(source, "test.wsp").ResolveModule(mod)
	require.Nil(t, resolveErrs, "resolve errors: %v", resolveErrs)

	optimizer.Optimize(mod)

	var outBuf, errBuf bytes.Buffer
	i := New(source, "test.wsp", t.TempDir(),
		WithStdout(&outBuf), WithStderr(&errBuf), WithStdin(strings.NewReader(stdin)))
	_, execErr := i.Run(mod, nil)
	return outBuf.String(), errBuf.String(), execErr
}

// ============================================================
// End-to-end scenarios
// ============================================================

func TestArithmeticPrecedence(t *testing.T) {
	if got := run(t, "writeline(1 + 2 * 3)"); got != "7\n" {
		t.Errorf("expected %q, got %q", "7\n", got)
	}
}

func TestForLoopOverList(t *testing.T) {
	src := "let x = [1,2,3]\nfor v in x { write(v) }"
	if got := run(t, src); got != "123" {
		t.Errorf("expected %q, got %q", "123", got)
	}
}

func TestRecursiveFactorialThroughMain(t *testing.T) {
	src := `fn fact(n) {
	if n <= 1 { return 1 }
	return n * fact(n-1)
}
fn main() {
	writeline(fact(5))
}`
	if got := run(t, src); got != "120\n" {
		t.Errorf("expected %q, got %q", "120\n", got)
	}
}

func TestObjectMethodMutatesField(t *testing.T) {
	src := `let a = { n = 0, inc = fn (self) { self.n = self.n + 1 } }
a.inc()
a.inc()
writeline(a.n)`
	if got := run(t, src); got != "2\n" {
		t.Errorf("expected %q, got %q", "2\n", got)
	}
}

func TestTemplateInterpolation(t *testing.T) {
	src := `writeline("hello, #{"wo" + "rld"}!")`
	if got := run(t, src); got != "hello, world!\n" {
		t.Errorf("expected %q, got %q", "hello, world!\n", got)
	}
}

func TestListPushAndSize(t *testing.T) {
	src := "let xs = []\nxs.push(1)\nxs.push(2)\nwriteline(xs.size())"
	if got := run(t, src); got != "2\n" {
		t.Errorf("expected %q, got %q", "2\n", got)
	}
}

// ============================================================
// Closures and scoping
// ============================================================

func TestClosureCapturesScopeNotValue(t *testing.T) {
	src := "let x = 1\nlet f = fn () => x\nx = 2\nwriteline(f())"
	if got := run(t, src); got != "2\n" {
		t.Errorf("expected %q, got %q", "2\n", got)
	}
}

func TestCounterClosure(t *testing.T) {
	src := `fn make_counter() {
	let n = 0
	return fn () {
		n = n + 1
		return n
	}
}
let c = make_counter()
c()
c()
writeline(c())`
	if got := run(t, src); got != "3\n" {
		t.Errorf("expected %q, got %q", "3\n", got)
	}
}

func TestIndependentClosureInstances(t *testing.T) {
	src := `fn make_counter() {
	let n = 0
	return fn () {
		n = n + 1
		return n
	}
}
let a = make_counter()
let b = make_counter()
a()
a()
writeline(a() + b())`
	if got := run(t, src); got != "4\n" {
		t.Errorf("expected %q, got %q", "4\n", got)
	}
}

func TestShadowingInNestedScope(t *testing.T) {
	src := "let x = 1\n{\nlet x = 2\nwrite(x)\n}\nwrite(x)"
	if got := run(t, src); got != "21" {
		t.Errorf("expected %q, got %q", "21", got)
	}
}

// ============================================================
// Control flow
// ============================================================

func TestShortCircuitAndSkipsRhs(t *testing.T) {
	src := `let hit = false
let side_effect = fn () {
	hit = true
	return true
}
let r = false and side_effect()
writeline(hit)`
	if got := run(t, src); got != "false\n" {
		t.Errorf("expected %q, got %q", "false\n", got)
	}
}

func TestShortCircuitOrSkipsRhs(t *testing.T) {
	src := `let hit = false
let side_effect = fn () {
	hit = true
	return true
}
let r = true or side_effect()
writeline(hit)`
	if got := run(t, src); got != "false\n" {
		t.Errorf("expected %q, got %q", "false\n", got)
	}
}

func TestLogicReturnsLastEvaluatedValue(t *testing.T) {
	src := "writeline(none or 5)\nwriteline(1 and 2)\nwriteline(false and 2)"
	if got := run(t, src); got != "5\n2\nfalse\n" {
		t.Errorf("got %q", got)
	}
}

func TestBreakExitsOnlyEnclosingLoop(t *testing.T) {
	src := `let n = 0
loop {
	n = n + 1
	if n >= 3 { break }
}
writeline(n)`
	if got := run(t, src); got != "3\n" {
		t.Errorf("expected %q, got %q", "3\n", got)
	}
}

func TestContinueSkipsRestOfIteration(t *testing.T) {
	src := `for v in [1,2,3,4] {
	if v mod 2 == 0 { continue }
	write(v)
}`
	if got := run(t, src); got != "13" {
		t.Errorf("expected %q, got %q", "13", got)
	}
}

func TestReturnUnwindsNestedBlocksInsideLoop(t *testing.T) {
	src := `fn find(xs, want) {
	for v in xs {
		if v == want {
			return "found"
		}
	}
	return "missing"
}
writeline(find([1,2,3], 2))
writeline(find([1,2,3], 9))`
	if got := run(t, src); got != "found\nmissing\n" {
		t.Errorf("got %q", got)
	}
}

func TestNestedLoopsBreakInner(t *testing.T) {
	src := `let total = 0
for a in [1,2] {
	for b in [10,20,30] {
		if b == 20 { break }
		total = total + b
	}
}
writeline(total)`
	if got := run(t, src); got != "20\n" {
		t.Errorf("expected %q, got %q", "20\n", got)
	}
}

func TestExitStopsProgramCleanly(t *testing.T) {
	src := "write(1)\nexit()\nwrite(2)"
	out, _, err := runFull(t, src, "")
	require.NoError(t, err)
	if out != "1" {
		t.Errorf("expected %q, got %q", "1", out)
	}
}

func TestAbortStopsWithMessage(t *testing.T) {
	src := `write(1)
abort("boom")
write(2)`
	out, errOut, err := runFull(t, src, "")
	require.NoError(t, err)
	if out != "1" {
		t.Errorf("expected stdout %q, got %q", "1", out)
	}
	if !strings.Contains(errOut, "boom") {
		t.Errorf("expected stderr to mention boom, got %q", errOut)
	}
}

func TestHaltPropagatesOutOfNestedCalls(t *testing.T) {
	src := `fn inner() { exit() }
fn outer() {
	inner()
	write("after")
}
outer()
write("end")`
	out, _, err := runFull(t, src, "")
	require.NoError(t, err)
	if out != "" {
		t.Errorf("expected no output, got %q", out)
	}
}

// ============================================================
// Values and operators
// ============================================================

func TestStringConcatenationCoercesEitherSide(t *testing.T) {
	src := `writeline("n = " + 42)
writeline(42 + " = n")
writeline("yes: " + true)`
	if got := run(t, src); got != "n = 42\n42 = n\nyes: true\n" {
		t.Errorf("got %q", got)
	}
}

func TestEqualityAcrossTypesIsFalse(t *testing.T) {
	src := `writeline(1 == "1")
writeline(none == false)
writeline([1,2] == [1,2])
writeline([1,2] == [1,3])`
	if got := run(t, src); got != "false\nfalse\ntrue\nfalse\n" {
		t.Errorf("got %q", got)
	}
}

func TestNegativeIndexWrapsOnce(t *testing.T) {
	src := `let xs = [1,2,3]
writeline(xs[-1])
writeline(xs[5])
writeline("abc"[1])`
	if got := run(t, src); got != "3\nnone\nb\n" {
		t.Errorf("got %q", got)
	}
}

func TestIndexAssignment(t *testing.T) {
	src := "let xs = [1,2,3]\nxs[1] = 9\nxs[-1] = 7\nwriteline(xs)"
	if got := run(t, src); got != "[1, 9, 7]\n" {
		t.Errorf("got %q", got)
	}
}

func TestListAliasingSharesMutation(t *testing.T) {
	src := "let a = [1]\nlet b = a\nb.push(2)\nwriteline(a.size())"
	if got := run(t, src); got != "2\n" {
		t.Errorf("got %q", got)
	}
}

func TestCompoundAssignment(t *testing.T) {
	src := "let x = 10\nx += 5\nx -= 3\nx *= 2\nx /= 4\nwriteline(x)"
	if got := run(t, src); got != "6\n" {
		t.Errorf("got %q", got)
	}
}

func TestObjectToStringDispatch(t *testing.T) {
	src := `let o = { x = 1, to_string = fn (self) => "hi" }
writeline(o)`
	if got := run(t, src); got != "hi\n" {
		t.Errorf("got %q", got)
	}
}

func TestObjectOperatorOverload(t *testing.T) {
	src := `fn vec(x, y) {
	return {
		x, y,
		add = fn (self, other) => vec(self.x + other.x, self.y + other.y),
		to_string = fn (self) => "(#{self.x}, #{self.y})"
	}
}
writeline(vec(1, 2) + vec(3, 4))`
	if got := run(t, src); got != "(4, 6)\n" {
		t.Errorf("got %q", got)
	}
}

func TestTruthiness(t *testing.T) {
	src := `if none { write("a") } else { write("b") }
if 0 { write("c") } else { write("d") }
if "" { write("e") } else { write("f") }`
	// Only none and false are falsy; 0 and "" are truthy.
	if got := run(t, src); got != "bce" {
		t.Errorf("got %q", got)
	}
}

// ============================================================
// Attribute dispatch on primitives
// ============================================================

func TestStringAttributeMethods(t *testing.T) {
	src := `writeline("abc".size())
writeline("abc".reverse())
writeline("aBc".uppercase())
writeline("aBc".lowercase())
writeline("12.5".to_num() + 1)
writeline("ha".repeat(3))
writeline("hello".substring(1, 3))`
	want := "3\ncba\nABC\nabc\n13.5\nhahaha\nell\n"
	if got := run(t, src); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestStringToNumFailureIsErrorValue(t *testing.T) {
	src := `let n = "oops".to_num()
writeline(typeof(n))
writeline(n.message())`
	want := "error\nCannot convert to number\n"
	if got := run(t, src); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestListAttributeMethods(t *testing.T) {
	src := `let xs = [1,2,3]
writeline(xs.reverse())
writeline(xs)
writeline(xs.contains(2))
writeline(xs.contains(9))
writeline(xs.pop())
writeline(xs.size())
writeline([3,1,2].sort())
writeline(["b","a"].join("-"))`
	want := "[3, 2, 1]\n[1, 2, 3]\ntrue\nfalse\n3\n2\n[1, 2, 3]\nb-a\n"
	if got := run(t, src); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestListHigherOrderMethods(t *testing.T) {
	src := `let xs = [1,2,3,4]
writeline(xs.map(fn (v) => v * 10))
writeline(xs.filter(fn (v) => v mod 2 == 0))
writeline(xs.reduce(0, fn (acc, v) => acc + v))`
	want := "[10, 20, 30, 40]\n[2, 4]\n10\n"
	if got := run(t, src); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRangeProducesHalfOpenInterval(t *testing.T) {
	src := "for v in range(0, 4) { write(v) }"
	if got := run(t, src); got != "0123" {
		t.Errorf("got %q", got)
	}
}

func TestMathObject(t *testing.T) {
	src := `writeline(math.pow(2, 10))
writeline(math.floor(2.7))
writeline(math.abs(0 - 5))
writeline(math.max(2, 7))
writeline(math.sqrt(9))
writeline(typeof(math.sqrt(0 - 1)))`
	want := "1024\n2\n5\n7\n3\nerror\n"
	if got := run(t, src); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCharObject(t *testing.T) {
	src := `write("a")
write(char.new_line)
write(char.from_code(98))`
	if got := run(t, src); got != "a\nb" {
		t.Errorf("got %q", got)
	}
}

// ============================================================
// User-declared attributes
// ============================================================

func TestAttrConstructionAndMethodDispatch(t *testing.T) {
	src := `attr Counter {
	n = 0
	bump(self) { self.n = self.n + 1 }
}
let c = Counter()
c.bump()
c.bump()
writeline(c.n)`
	if got := run(t, src); got != "2\n" {
		t.Errorf("got %q", got)
	}
}

func TestAttrInheritanceDispatchesThroughSupers(t *testing.T) {
	src := `attr Animal {
	speak(self) { writeline("...") }
	name(self) { return "animal" }
}
attr Dog is Animal {
	speak(self) { writeline("woof") }
}
let d = Dog()
d.speak()
writeline(d.name())`
	if got := run(t, src); got != "woof\nanimal\n" {
		t.Errorf("got %q", got)
	}
}

func TestAttrStaticFields(t *testing.T) {
	src := `attr Config {
	static version = 3
}
writeline(Config.version)`
	if got := run(t, src); got != "3\n" {
		t.Errorf("got %q", got)
	}
}

func TestAttrInitRunsOnConstruction(t *testing.T) {
	src := `attr Point {
	x = 0
	y = 0
	init(self, x, y) {
		self.x = x
		self.y = y
	}
}
let p = Point(3, 4)
writeline(p.x + p.y)`
	if got := run(t, src); got != "7\n" {
		t.Errorf("got %q", got)
	}
}

// ============================================================
// Runtime errors
// ============================================================

func TestArityMismatchDoesNotExecuteBody(t *testing.T) {
	src := `fn f(a) {
	write("ran")
	return a
}
f(1, 2)`
	msg := runErr(t, src)
	if !strings.Contains(msg, "Expected 1 arguments, but got 2") {
		t.Errorf("unexpected message %q", msg)
	}

	out, _, _ := runFull(t, src, "")
	if out != "" {
		t.Errorf("body ran despite arity mismatch, output %q", out)
	}
}

func TestDivisionByZero(t *testing.T) {
	msg := runErr(t, "let x = 0\nwriteline(1 / x)")
	if !strings.Contains(msg, "Division by zero") {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestOperationNotDefined(t *testing.T) {
	msg := runErr(t, "writeline(true + 1)")
	if !strings.Contains(msg, "not defined for bool and number") {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestCallNonCallable(t *testing.T) {
	msg := runErr(t, "let x = 1\nx()")
	if !strings.Contains(msg, "Cannot call number") {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestIndexNonIndexable(t *testing.T) {
	msg := runErr(t, "let x = 1\nwriteline(x[0])")
	if !strings.Contains(msg, "Cannot index number") {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestUndefinedProperty(t *testing.T) {
	msg := runErr(t, "let o = { x = 1 }\nwriteline(o.missing)")
	if !strings.Contains(msg, "Property 'missing' is undefined") {
		t.Errorf("unexpected message %q", msg)
	}
}

// ============================================================
// Module executor
// ============================================================

func TestMainReceivesCliArguments(t *testing.T) {
	src := `fn main(args) {
	for a in args { writeline(a) }
}`
	tokens, _ := lexer.New(src, "test.wsp").ScanTokens()
	mod, parseErrs := parser.New(tokens, src, "test.wsp").ParseModule()
	require.Nil(t, parseErrs)
	require.Nil(t, resolver.New(src, "test.wsp").ResolveModule(mod))
	optimizer.Optimize(mod)

	var out bytes.Buffer
	i := New(src, "test.wsp", t.TempDir(), WithStdout(&out))
	code, err := i.Run(mod, []string{"one", "two"})
	require.NoError(t, err)
	require.Zero(t, code)
	if out.String() != "one\ntwo\n" {
		t.Errorf("got %q", out.String())
	}
}

func TestModuleWithoutMainOrScriptIsNoop(t *testing.T) {
	if got := run(t, "fn helper() { return 1 }"); got != "" {
		t.Errorf("expected no output, got %q", got)
	}
}

func TestReadConsumesLine(t *testing.T) {
	src := `let name = read()
writeline("hi " + name)`
	out, _, err := runFull(t, src, "wisp\n")
	require.NoError(t, err)
	if out != "hi wisp\n" {
		t.Errorf("got %q", out)
	}
}

func TestConstantFoldingPreservesSemantics(t *testing.T) {
	// The same program with and without the optimizer pass prints the
	// same output.
	src := `writeline(1 + 2 * 3 - (4 / 2))
writeline(!(1 > 2))
writeline(-(2 * 3))`

	tokens, _ := lexer.New(src, "test.wsp").ScanTokens()
	mod, _ := parser.New(tokens, src, "test.wsp").ParseModule()
	require.Nil(t, resolver.New(src, "test.wsp").ResolveModule(mod))

	var unoptimized bytes.Buffer
	i := New(src, "test.wsp", t.TempDir(), WithStdout(&unoptimized))
	_, err := i.Run(mod, nil)
	require.NoError(t, err)

	optimized := run(t, src)
	if unoptimized.String() != optimized {
		t.Errorf("optimizer changed semantics: %q vs %q", unoptimized.String(), optimized)
	}
}
