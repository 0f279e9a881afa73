// Package ast defines the typed syntax tree produced by the parser and
// mutated in place by the resolver and optimizer.
package ast

import (
	"fmt"

	"github.com/jvcmarcenes/wisp/internal/token"
)

// Identifier names a binding site. Id is a shared mutable cell: every AST
// node referring to the same binding holds a pointer to the same int, so
// the resolver's single write becomes visible through every reference.
// It is zero until the resolver assigns it.
type Identifier struct {
	Name string
	Id   *int
	Pos  token.Position
}

// NewIdentifier builds an unresolved identifier at the given position.
func NewIdentifier(name string, pos token.Position) *Identifier {
	id := 0
	return &Identifier{Name: name, Id: &id, Pos: pos}
}

// Resolved reports whether the resolver has assigned this identifier an id.
func (i *Identifier) Resolved() bool { return i.Id != nil && *i.Id != 0 }

func (i *Identifier) String() string {
	return fmt.Sprintf("%s#%d", i.Name, *i.Id)
}

// Module is the set of top-level declarations in a file, keyed by name.
// Declare fails if the name is already bound, matching the "insertion
// fails on collision" rule for the original Identifier-keyed map.
type Module struct {
	Names []string
	Decls map[string]Statement
	Idents map[string]*Identifier
	Script Block // present in script mode, nil in module mode
}

// NewModule returns an empty module.
func NewModule() *Module {
	return &Module{
		Decls:  make(map[string]Statement),
		Idents: make(map[string]*Identifier),
	}
}

// Declare adds a top-level declaration. It returns false if name is
// already bound.
func (m *Module) Declare(id *Identifier, stmt Statement) bool {
	if _, exists := m.Decls[id.Name]; exists {
		return false
	}
	m.Names = append(m.Names, id.Name)
	m.Decls[id.Name] = stmt
	m.Idents[id.Name] = id
	return true
}

// Block is an ordered sequence of statements evaluated in one scope.
type Block []Statement

// Expression is any node that evaluates to a Value.
type Expression interface {
	Pos() token.Position
	exprNode()
}

// Statement is any node executed for effect.
type Statement interface {
	Pos() token.Position
	stmtNode()
}

// --- Literals ---

type NoneLiteral struct{ P token.Position }
type StrLiteral struct {
	Value string
	P     token.Position
}
type NumLiteral struct {
	Value float64
	P     token.Position
}
type BoolLiteral struct {
	Value bool
	P     token.Position
}

// TemplateLiteral is a `"...#{expr}..."` string: an interleaving of
// literal string chunks and expressions, concatenated at evaluation.
type TemplateLiteral struct {
	Chunks []Expression // each is either a StrLiteral or a general expression
	P      token.Position
}

type ListLiteral struct {
	Elements []Expression
	P        token.Position
}

// ObjectField is one `name = expr` or bare `name` entry of an object
// literal; a bare name desugars to name = Variable(name).
type ObjectField struct {
	Name Identifier
	Expr Expression
}

type ObjectLiteral struct {
	Fields []ObjectField
	P      token.Position
}

func (n *NoneLiteral) Pos() token.Position      { return n.P }
func (n *StrLiteral) Pos() token.Position       { return n.P }
func (n *NumLiteral) Pos() token.Position       { return n.P }
func (n *BoolLiteral) Pos() token.Position      { return n.P }
func (n *TemplateLiteral) Pos() token.Position  { return n.P }
func (n *ListLiteral) Pos() token.Position      { return n.P }
func (n *ObjectLiteral) Pos() token.Position    { return n.P }
func (*NoneLiteral) exprNode()                  {}
func (*StrLiteral) exprNode()                   {}
func (*NumLiteral) exprNode()                   {}
func (*BoolLiteral) exprNode()                  {}
func (*TemplateLiteral) exprNode()              {}
func (*ListLiteral) exprNode()                  {}
func (*ObjectLiteral) exprNode()                {}

// --- Operators ---

type BinaryOp int

const (
	Add BinaryOp = iota
	Sub
	Mul
	Div
	Rem
	Equ
	Neq
	Lst
	Lse
	Grt
	Gre
)

type UnaryOp int

const (
	Not UnaryOp = iota
	Neg
)

type LogicOp int

const (
	LogicAnd LogicOp = iota
	LogicOr
)

// --- Compound expressions ---

type Binary struct {
	Lhs Expression
	Op  BinaryOp
	Rhs Expression
	P   token.Position
}

type Unary struct {
	Op   UnaryOp
	Expr Expression
	P    token.Position
}

type Logic struct {
	Lhs Expression
	Op  LogicOp
	Rhs Expression
	P   token.Position
}

type Grouping struct {
	Expr Expression
	P    token.Position
}

type Variable struct {
	Ident *Identifier
	P     token.Position
}

// Lambda is a function value literal. SelfBound is true when its parameter
// list opens with `self` (a method); self is then bound to the receiver at
// call time and is not counted among Params.
type Lambda struct {
	Params    []*Identifier
	Body      Block
	SelfBound bool
	P         token.Position
}

type Call struct {
	Callee Expression
	Args   []Expression
	P      token.Position
}

type Index struct {
	Head  Expression
	Index Expression
	P     token.Position
}

type FieldGet struct {
	Head  Expression
	Field string
	P     token.Position
}

// SelfRef is `self` inside a method body. Its value comes from the
// interpreter's call-frame (the receiver a bound method was invoked
// with), not from lexical id resolution — the resolver only validates
// that it appears somewhere a receiver will actually exist.
type SelfRef struct {
	P token.Position
}

func (n *Binary) Pos() token.Position   { return n.P }
func (n *Unary) Pos() token.Position    { return n.P }
func (n *Logic) Pos() token.Position    { return n.P }
func (n *Grouping) Pos() token.Position { return n.P }
func (n *Variable) Pos() token.Position { return n.P }
func (n *Lambda) Pos() token.Position   { return n.P }
func (n *Call) Pos() token.Position     { return n.P }
func (n *Index) Pos() token.Position    { return n.P }
func (n *FieldGet) Pos() token.Position { return n.P }
func (n *SelfRef) Pos() token.Position  { return n.P }
func (*Binary) exprNode()               {}
func (*Unary) exprNode()                {}
func (*Logic) exprNode()                {}
func (*Grouping) exprNode()             {}
func (*Variable) exprNode()             {}
func (*Lambda) exprNode()               {}
func (*Call) exprNode()                 {}
func (*Index) exprNode()                {}
func (*FieldGet) exprNode()             {}
func (*SelfRef) exprNode()              {}

// --- Statements ---

type ExprStmt struct {
	Expr Expression
	P    token.Position
}

type Declaration struct {
	Constant bool
	Name     *Identifier
	Expr     Expression
	P        token.Position
}

type FuncDeclaration struct {
	Name   *Identifier
	Lambda *Lambda
	P      token.Position
}

// AttrField is a field entry in an `attr` body: `[static] name [= expr]`.
type AttrField struct {
	Name     *Identifier
	Static   bool
	Expr     Expression // nil if uninitialized
}

type AttrDeclaration struct {
	Name       *Identifier
	Fields     []*AttrField
	Methods    []*FuncDeclaration
	Attributes []*Identifier // the `is OtherAttr` list
	P          token.Position
}

// AssignOp is the operator of an Assignment: `=` or one of the compound
// forms `+=`, `-=`, `*=`, `/=`.
type AssignOp int

const (
	AssignSet AssignOp = iota
	AssignAdd
	AssignSub
	AssignMul
	AssignDiv
)

type Assignment struct {
	Target Expression // *Variable | *Index | *FieldGet
	Op     AssignOp
	Expr   Expression
	P      token.Position
}

type If struct {
	Cond      Expression
	Then      Block
	Else      Block // nil if absent; may itself be a single If wrapped as [If] for `else if`
	P         token.Position
}

type Loop struct {
	Body Block
	P    token.Position
}

type Break struct{ P token.Position }
type Continue struct{ P token.Position }

type Return struct {
	Expr Expression // nil for bare `return`
	P    token.Position
}

type Scoped struct {
	Body Block
	P    token.Position
}

type TypeAlias struct {
	Name *Identifier
	P    token.Position
}

func (n *ExprStmt) Pos() token.Position        { return n.P }
func (n *Declaration) Pos() token.Position     { return n.P }
func (n *FuncDeclaration) Pos() token.Position { return n.P }
func (n *AttrDeclaration) Pos() token.Position { return n.P }
func (n *Assignment) Pos() token.Position      { return n.P }
func (n *If) Pos() token.Position              { return n.P }
func (n *Loop) Pos() token.Position            { return n.P }
func (n *Break) Pos() token.Position           { return n.P }
func (n *Continue) Pos() token.Position        { return n.P }
func (n *Return) Pos() token.Position          { return n.P }
func (n *Scoped) Pos() token.Position          { return n.P }
func (n *TypeAlias) Pos() token.Position       { return n.P }
func (*ExprStmt) stmtNode()                    {}
func (*Declaration) stmtNode()                 {}
func (*FuncDeclaration) stmtNode()             {}
func (*AttrDeclaration) stmtNode()              {}
func (*Assignment) stmtNode()                  {}
func (*If) stmtNode()                           {}
func (*Loop) stmtNode()                         {}
func (*Break) stmtNode()                        {}
func (*Continue) stmtNode()                     {}
func (*Return) stmtNode()                       {}
func (*Scoped) stmtNode()                       {}
func (*TypeAlias) stmtNode()                    {}
