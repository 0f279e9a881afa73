// Package resolver performs the two-phase name-resolution pass: it walks
// the parsed AST, assigns every Identifier a non-zero id via lexical
// scoping (unique among the bindings live at once; sibling scopes reuse
// ids), and validates that self/break/continue/return only
// appear where a runtime frame will actually support them.
package resolver

import (
	"fmt"

	"github.com/jvcmarcenes/wisp/internal/ast"
	"github.com/jvcmarcenes/wisp/internal/errors"
	"github.com/jvcmarcenes/wisp/internal/globalnames"
	"github.com/jvcmarcenes/wisp/internal/token"
)

type entry struct {
	id       int
	constant bool
}

type symbolTable map[string]entry

type context struct {
	inFunction    bool
	inLoop        bool
	overwriting   bool
	selfAvailable bool
}

// Resolver walks a Module (and its script Block) once, in place.
type Resolver struct {
	lastID int
	tables []symbolTable
	ctx    context
	errs   *errors.List
	source string
	file   string
}

// New creates a Resolver with the globals pre-registered in the root
// scope, seeding last_id above the highest pre-assigned global id.
func New(source, file string) *Resolver {
	root := make(symbolTable, globalnames.Count())
	for i, name := range globalnames.Names {
		root[name] = entry{id: i + 1, constant: true}
	}
	return &Resolver{
		lastID: globalnames.Count() + 1,
		tables: []symbolTable{root},
		errs:   &errors.List{},
		source: source,
		file:   file,
	}
}

func (r *Resolver) errorf(pos token.Position, format string, args ...interface{}) {
	r.errs.Add(errors.New(errors.Resolve, pos, fmt.Sprintf(format, args...), r.source, r.file))
}

func (r *Resolver) isGlobal(name string) bool {
	_, ok := r.tables[0][name]
	return ok
}

// add binds id in the current (innermost) scope, writing the assigned
// number into its shared cell. Redefining a global name is always an
// error, regardless of scope depth.
func (r *Resolver) add(id *ast.Identifier, constant bool) {
	if r.isGlobal(id.Name) {
		r.errorf(id.Pos, "Cannot redefine global constant '%s'", id.Name)
		return
	}
	*id.Id = r.lastID
	r.tables[len(r.tables)-1][id.Name] = entry{id: r.lastID, constant: constant}
	r.lastID++
}

func (r *Resolver) pushScope() {
	r.tables = append(r.tables, symbolTable{})
}

// popScope rewinds last_id by the number of names the popped scope
// introduced, keeping id space tight without requiring ids to differ
// across sibling scopes.
func (r *Resolver) popScope() {
	top := r.tables[len(r.tables)-1]
	r.lastID -= len(top)
	r.tables = r.tables[:len(r.tables)-1]
}

func (r *Resolver) lookup(name string) (entry, bool) {
	for i := len(r.tables) - 1; i >= 0; i-- {
		if e, ok := r.tables[i][name]; ok {
			return e, true
		}
	}
	return entry{}, false
}

// ResolveModule resolves every top-level declaration in one module scope
// and the script block in a scope nested inside it, returning accumulated
// diagnostics (nil if resolution succeeded).
func (r *Resolver) ResolveModule(mod *ast.Module) *errors.List {
	r.pushScope()

	// Pre-registration: every top-level name is bound before any body is
	// resolved, so mutually recursive functions/attributes can see each
	// other regardless of declaration order.
	for _, name := range mod.Names {
		r.add(mod.Idents[name], true)
	}

	for _, name := range mod.Names {
		r.resolveTopLevelBody(mod.Decls[name])
	}

	r.resolveBlock(mod.Script)

	r.popScope()

	if r.errs.HasErrors() {
		return r.errs
	}
	return nil
}

func (r *Resolver) resolveTopLevelBody(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.FuncDeclaration:
		r.resolveLambda(s.Lambda, false)
	case *ast.AttrDeclaration:
		r.resolveAttrBody(s)
	case *ast.TypeAlias:
		// No static type system: nothing further to resolve.
	}
}

func (r *Resolver) resolveAttrBody(decl *ast.AttrDeclaration) {
	for _, method := range decl.Methods {
		r.resolveLambda(method.Lambda, method.Lambda.SelfBound)
	}
	for _, field := range decl.Fields {
		if field.Expr != nil {
			r.resolveExpr(field.Expr)
		}
	}
	for _, super := range decl.Attributes {
		if e, ok := r.lookup(super.Name); ok {
			*super.Id = e.id
		} else {
			r.errorf(decl.P, "Use of undefined attribute '%s'", super.Name)
		}
	}
}

// resolveLambda pushes a parameter scope, binds params, then resolves
// the body (which pushes its own nested scope). selfAvailable tracks
// whether `self` refers to anything inside this lambda's own body —
// it is not inherited from an enclosing lambda.
func (r *Resolver) resolveLambda(l *ast.Lambda, selfAvailable bool) {
	r.pushScope()
	for _, param := range l.Params {
		r.add(param, false)
	}

	prev := r.ctx
	r.ctx.inFunction = true
	r.ctx.inLoop = false // a loop outside the lambda cannot catch its break
	r.ctx.selfAvailable = selfAvailable
	r.resolveBlock(l.Body)
	r.ctx = prev

	r.popScope()
}

func (r *Resolver) resolveBlock(block ast.Block) {
	r.pushScope()
	for _, stmt := range block {
		r.resolveStmt(stmt)
	}
	r.popScope()
}

func (r *Resolver) resolveStmt(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		r.resolveExpr(s.Expr)

	case *ast.Declaration:
		switch s.Expr.(type) {
		case *ast.Lambda:
			r.add(s.Name, s.Constant)
			r.resolveExpr(s.Expr)
		case *ast.ObjectLiteral:
			r.add(s.Name, s.Constant)
			r.resolveExpr(s.Expr)
		default:
			r.resolveExpr(s.Expr)
			r.add(s.Name, s.Constant)
		}

	case *ast.FuncDeclaration:
		r.resolveTopLevelBody(s)
	case *ast.AttrDeclaration:
		r.add(s.Name, true)
		r.resolveAttrBody(s)

	case *ast.Assignment:
		prev := r.ctx.overwriting
		r.ctx.overwriting = true
		r.resolveExpr(s.Target)
		r.ctx.overwriting = prev
		r.resolveExpr(s.Expr)

	case *ast.If:
		r.resolveExpr(s.Cond)
		r.resolveBlock(s.Then)
		if s.Else != nil {
			r.resolveBlock(s.Else)
		}

	case *ast.Loop:
		prev := r.ctx.inLoop
		r.ctx.inLoop = true
		r.resolveBlock(s.Body)
		r.ctx.inLoop = prev

	case *ast.Break:
		if !r.ctx.inLoop {
			r.errorf(s.P, "Invalid break statement")
		}
	case *ast.Continue:
		if !r.ctx.inLoop {
			r.errorf(s.P, "Invalid continue statement")
		}
	case *ast.Return:
		if !r.ctx.inFunction {
			r.errorf(s.P, "Invalid return statement")
		}
		if s.Expr != nil {
			r.resolveExpr(s.Expr)
		}

	case *ast.Scoped:
		r.resolveBlock(s.Body)

	case *ast.TypeAlias:
		// Nothing to resolve.
	}
}

func (r *Resolver) resolveExpr(expr ast.Expression) {
	switch e := expr.(type) {
	case *ast.NoneLiteral, *ast.StrLiteral, *ast.NumLiteral, *ast.BoolLiteral:
		// Leaves.

	case *ast.TemplateLiteral:
		for _, c := range e.Chunks {
			r.resolveExpr(c)
		}

	case *ast.ListLiteral:
		for _, el := range e.Elements {
			r.resolveExpr(el)
		}

	case *ast.ObjectLiteral:
		for _, f := range e.Fields {
			r.resolveExpr(f.Expr)
		}

	case *ast.Binary:
		r.resolveExpr(e.Lhs)
		r.resolveExpr(e.Rhs)
	case *ast.Unary:
		r.resolveExpr(e.Expr)
	case *ast.Logic:
		r.resolveExpr(e.Lhs)
		r.resolveExpr(e.Rhs)
	case *ast.Grouping:
		r.resolveExpr(e.Expr)

	case *ast.Variable:
		r.resolveVariable(e.Ident, e.P)

	case *ast.Lambda:
		r.resolveLambda(e, e.SelfBound)

	case *ast.Call:
		r.resolveExpr(e.Callee)
		for _, a := range e.Args {
			r.resolveExpr(a)
		}

	case *ast.Index:
		r.resolveExpr(e.Head)
		prev := r.ctx.overwriting
		r.ctx.overwriting = false
		r.resolveExpr(e.Index)
		r.ctx.overwriting = prev

	case *ast.FieldGet:
		r.resolveExpr(e.Head)

	case *ast.SelfRef:
		if !r.ctx.selfAvailable {
			r.errorf(e.P, "Invalid self expression")
		}
	}
}

// ResolveInteractive resolves mod against a persistent scope that stays
// open between calls, so a REPL can keep referring to bindings from
// earlier lines. Diagnostics are reset on each call.
func (r *Resolver) ResolveInteractive(mod *ast.Module, source string) *errors.List {
	r.errs = &errors.List{}
	r.source = source

	if len(r.tables) == 1 {
		r.pushScope()
	}

	for _, name := range mod.Names {
		r.add(mod.Idents[name], true)
	}
	for _, name := range mod.Names {
		r.resolveTopLevelBody(mod.Decls[name])
	}
	for _, stmt := range mod.Script {
		r.resolveStmt(stmt)
	}

	if r.errs.HasErrors() {
		return r.errs
	}
	return nil
}

func (r *Resolver) resolveVariable(id *ast.Identifier, pos token.Position) {
	e, ok := r.lookup(id.Name)
	if !ok {
		r.errorf(pos, "Use of undefined variable '%s'", id.Name)
		return
	}
	if r.ctx.overwriting {
		if e.id <= globalnames.Count() {
			r.errorf(pos, "Cannot assign to global constant '%s'", id.Name)
			return
		}
		if e.constant {
			r.errorf(pos, "Cannot assign to constant '%s'", id.Name)
			return
		}
	}
	*id.Id = e.id
}
