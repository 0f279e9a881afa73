package interp

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/jvcmarcenes/wisp/internal/ast"
	"github.com/jvcmarcenes/wisp/internal/errors"
	"github.com/jvcmarcenes/wisp/internal/token"
)

// outcomeKind classifies the result of executing a statement: normal
// completion, or one of the control-flow messages that unwind through
// enclosing blocks until a frame intercepts them.
type outcomeKind int

const (
	outNormal outcomeKind = iota
	outBreak
	outContinue
	outReturn
)

// outcome is the result of a statement. value is only meaningful for
// outReturn.
type outcome struct {
	kind  outcomeKind
	value Value
}

var normal = outcome{kind: outNormal}

// haltSignal unwinds the whole program when exit or abort is called. It
// travels as an error so it crosses call frames unconditionally, but it
// is not a diagnostic: the module runner intercepts it and reports the
// carried exit code instead.
type haltSignal struct {
	code int
}

func (h haltSignal) Error() string { return "halt" }

// IsHalt reports whether err is a program halt (exit/abort), returning
// the exit code it carries. Drivers that call into the interpreter
// outside Run (the REPL) use this to tell a clean stop from a
// diagnostic.
func IsHalt(err error) (int, bool) {
	if h, ok := err.(haltSignal); ok {
		return h.code, true
	}
	return 0, false
}

// Interpreter is the tree-walking evaluator. It owns the environment
// stack, the I/O streams the native library writes to, and the root path
// fs operations resolve relative paths against.
type Interpreter struct {
	env      *Environment
	out      io.Writer
	errOut   io.Writer
	in       *bufio.Reader
	rootPath string

	source string
	file   string

	// Trace makes each executed statement print its position first, for
	// the CLI's --trace flag.
	Trace bool

	interactive bool

	stringAttr *AttributeValue
	listAttr   *AttributeValue
	errorAttr  *AttributeValue
}

// Option adjusts an Interpreter at construction.
type Option func(*Interpreter)

// WithStdout redirects program output (write, writeline, debug).
func WithStdout(w io.Writer) Option {
	return func(i *Interpreter) { i.out = w }
}

// WithStderr redirects abort's error line.
func WithStderr(w io.Writer) Option {
	return func(i *Interpreter) { i.errOut = w }
}

// WithStdin redirects console input (read).
func WithStdin(r io.Reader) Option {
	return func(i *Interpreter) { i.in = bufio.NewReader(r) }
}

// New creates an interpreter whose fs natives resolve paths relative to
// rootPath. source and file feed runtime diagnostics.
func New(source, file, rootPath string, opts ...Option) *Interpreter {
	i := &Interpreter{
		env:      NewEnvironment(),
		out:      os.Stdout,
		errOut:   os.Stderr,
		in:       bufio.NewReader(os.Stdin),
		rootPath: rootPath,
		source:   source,
		file:     file,
	}
	for _, opt := range opts {
		opt(i)
	}
	i.installGlobals()
	return i
}

// SetSource swaps the source text runtime diagnostics quote, for
// drivers that feed the interpreter one line at a time.
func (i *Interpreter) SetSource(source string) {
	i.source = source
}

// runErrorf builds a runtime diagnostic at pos. Runtime errors surface
// as a one-entry List so every stage of the pipeline reports through
// the same type.
func (i *Interpreter) runErrorf(pos token.Position, format string, args ...interface{}) error {
	list := &errors.List{}
	list.Add(errors.New(errors.Run, pos, fmt.Sprintf(format, args...), i.source, i.file))
	return list
}

// Run executes a resolved, optimized module. Top-level declarations are
// evaluated first, binding their names in the global scope; then the
// script block runs if the module has one, otherwise a `main` function
// is looked up and invoked with the CLI arguments as a list of strings.
//
// The returned exit code is 0 on success and on clean exit(); abort()
// produces 1. A non-nil error is a runtime diagnostic.
func (i *Interpreter) Run(mod *ast.Module, args []string) (int, error) {
	i.env.Push()

	if err := i.declareModule(mod); err != nil {
		return i.finish(err)
	}

	if len(mod.Script) > 0 {
		_, err := i.execBlock(mod.Script)
		return i.finish(err)
	}

	mainDecl, ok := mod.Decls["main"]
	if !ok {
		return 0, nil
	}
	fnDecl, ok := mainDecl.(*ast.FuncDeclaration)
	if !ok {
		return i.finish(i.runErrorf(mainDecl.Pos(), "'main' is not a function"))
	}

	callee := i.env.Get(*fnDecl.Name.Id)
	fn, ok := callee.(Callable)
	if !ok {
		return i.finish(i.runErrorf(fnDecl.Pos(), "'main' is not callable"))
	}

	argList := make([]Value, len(args))
	for idx, a := range args {
		argList[idx] = NewString(a)
	}

	var callArgs []Value
	if err := fn.CheckArity(1); err == nil {
		callArgs = []Value{NewList(argList)}
	} else if err := fn.CheckArity(0); err != nil {
		return i.finish(i.runErrorf(fnDecl.Pos(), "'main' must take 0 or 1 parameters"))
	}

	_, err := fn.Call(i, fnDecl.Pos(), callArgs)
	return i.finish(err)
}

// finish folds a halt signal into an exit code and passes every other
// error through as a diagnostic.
func (i *Interpreter) finish(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	if h, ok := err.(haltSignal); ok {
		return h.code, nil
	}
	return 1, err
}

// declareModule evaluates every top-level declaration, in source order.
func (i *Interpreter) declareModule(mod *ast.Module) error {
	for _, name := range mod.Names {
		switch decl := mod.Decls[name].(type) {
		case *ast.FuncDeclaration:
			fn := i.makeFunction(decl.Name.Name, decl.Lambda)
			i.env.Define(*decl.Name.Id, fn)
		case *ast.AttrDeclaration:
			attr, err := i.makeAttribute(decl)
			if err != nil {
				return err
			}
			i.env.Define(*decl.Name.Id, attr)
		case *ast.TypeAlias:
			// Aliases have no runtime presence.
		}
	}
	return nil
}

// RunInteractive executes one REPL line's module against the persistent
// environment, echoing the value of a bare expression statement.
func (i *Interpreter) RunInteractive(mod *ast.Module) error {
	if !i.interactive {
		i.env.Push()
		i.interactive = true
	}
	if err := i.declareModule(mod); err != nil {
		return err
	}
	for _, stmt := range mod.Script {
		if es, ok := stmt.(*ast.ExprStmt); ok {
			v, err := i.evalExpr(es.Expr)
			if err != nil {
				return err
			}
			if _, isNone := v.(*NoneValue); !isNone {
				s, err := i.display(v, es.Pos())
				if err != nil {
					return err
				}
				fmt.Fprintln(i.out, s)
			}
			continue
		}
		out, err := i.execStmt(stmt)
		if err != nil {
			return err
		}
		if out.kind != outNormal {
			break
		}
	}
	return nil
}

// makeFunction builds a FunctionValue capturing the current environment.
func (i *Interpreter) makeFunction(name string, l *ast.Lambda) *FunctionValue {
	return &FunctionValue{
		Name:    name,
		Params:  l.Params,
		Body:    l.Body,
		Env:     i.env.Clone(),
		HasSelf: l.SelfBound,
	}
}
