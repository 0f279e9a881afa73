// Package parser implements the recursive-descent, precedence-climbing
// parser that turns a token stream into a Module plus optional script
// Block, recovering from syntax errors by synchronizing on statement
// boundaries the way the language's reference parser does.
package parser

import (
	"fmt"
	"strconv"

	"github.com/jvcmarcenes/wisp/internal/ast"
	"github.com/jvcmarcenes/wisp/internal/errors"
	"github.com/jvcmarcenes/wisp/internal/token"
)

// Parser consumes a flat token slice (as produced by the lexer, or by a
// nested scan of a template interpolation) and builds an AST.
type Parser struct {
	tokens []token.Token
	pos    int
	source string
	file   string
	errs   *errors.List
}

// New creates a Parser over tokens. source and file are only used to
// render diagnostics with a source-line snippet.
func New(tokens []token.Token, source, file string) *Parser {
	return &Parser{tokens: tokens, source: source, file: file, errs: &errors.List{}}
}

// parseError unwinds the current statement via panic/recover so a single
// malformed construct doesn't require threading an error return through
// every recursive-descent production.
type parseError struct {
	msg string
	pos token.Position
}

func (p *Parser) fail(pos token.Position, format string, args ...interface{}) {
	panic(parseError{msg: fmt.Sprintf(format, args...), pos: pos})
}

func (p *Parser) report(pos token.Position, msg string) {
	p.errs.Add(errors.New(errors.Parse, pos, msg, p.source, p.file))
}

// --- token stream helpers ---

func (p *Parser) at(i int) token.Token {
	idx := p.pos + i
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[idx]
}

func (p *Parser) peek() token.Token  { return p.at(0) }
func (p *Parser) atEnd() bool        { return p.peek().Type == token.EOF }
func (p *Parser) check(t token.Type) bool { return p.peek().Type == t }

func (p *Parser) advance() token.Token {
	tok := p.peek()
	if !p.atEnd() {
		p.pos++
	}
	return tok
}

func (p *Parser) match(types ...token.Type) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) expect(t token.Type, context string) token.Token {
	if p.check(t) {
		return p.advance()
	}
	tok := p.peek()
	p.fail(tok.Pos, "Expected %s %s, found '%s'", t, context, tok.String())
	return token.Token{}
}

func (p *Parser) expectIdent(context string) *ast.Identifier {
	tok := p.expect(token.IDENT, context)
	return ast.NewIdentifier(tok.Literal, tok.Pos)
}

// skipEOL consumes any number of newline tokens, which separate
// statements but carry no meaning of their own.
func (p *Parser) skipEOL() {
	for p.check(token.EOL) {
		p.advance()
	}
}

// synchronize discards tokens until the next newline, ')' or '}' so
// parsing can resume after a malformed statement.
func (p *Parser) synchronize() {
	for !p.atEnd() {
		switch p.peek().Type {
		case token.EOL, token.RPAREN, token.RBRACE:
			p.advance()
			return
		}
		p.advance()
	}
}

// --- top level ---

// ParseModule parses the whole token stream into a Module (the hoisted
// fn/attr/type declarations) plus its script Block (every other
// top-level statement, executed in order).
func (p *Parser) ParseModule() (*ast.Module, *errors.List) {
	mod := ast.NewModule()

	for {
		p.skipEOL()
		if p.atEnd() {
			break
		}
		p.parseTopLevelItem(mod)
	}

	if p.errs.HasErrors() {
		return mod, p.errs
	}
	return mod, nil
}

func (p *Parser) parseTopLevelItem(mod *ast.Module) {
	defer func() {
		if r := recover(); r != nil {
			pe, ok := r.(parseError)
			if !ok {
				panic(r)
			}
			p.report(pe.pos, pe.msg)
			p.synchronize()
		}
	}()

	switch p.peek().Type {
	case token.FN:
		if p.at(1).Type != token.IDENT {
			// `fn (...)` without a name is a lambda expression statement.
			mod.Script = append(mod.Script, p.statement())
			return
		}
		decl := p.parseFuncDeclaration()
		if !mod.Declare(decl.Name, decl) {
			p.report(decl.Name.Pos, fmt.Sprintf("'%s' is already declared", decl.Name.Name))
		}
	case token.ATTR:
		decl := p.parseAttrDeclaration()
		if !mod.Declare(decl.Name, decl) {
			p.report(decl.Name.Pos, fmt.Sprintf("'%s' is already declared", decl.Name.Name))
		}
	case token.TYPE:
		decl := p.parseTypeAlias()
		if !mod.Declare(decl.Name, decl) {
			p.report(decl.Name.Pos, fmt.Sprintf("'%s' is already declared", decl.Name.Name))
		}
	default:
		stmt := p.statement()
		mod.Script = append(mod.Script, stmt)
	}
}

// --- block-level statements ---

func (p *Parser) parseBraceBlock() ast.Block {
	p.expect(token.LBRACE, "to open block")
	var block ast.Block
	p.skipEOL()
	for !p.check(token.RBRACE) && !p.atEnd() {
		block = append(block, p.statementRecovered())
		p.skipEOL()
	}
	p.expect(token.RBRACE, "to close block")
	return block
}

func (p *Parser) statementRecovered() (stmt ast.Statement) {
	defer func() {
		if r := recover(); r != nil {
			pe, ok := r.(parseError)
			if !ok {
				panic(r)
			}
			p.report(pe.pos, pe.msg)
			p.synchronize()
			stmt = &ast.ExprStmt{Expr: &ast.NoneLiteral{P: pe.pos}, P: pe.pos}
		}
	}()
	return p.statement()
}

func (p *Parser) statement() ast.Statement {
	switch p.peek().Type {
	case token.LET:
		return p.declaration()
	case token.IF:
		return p.ifStmt()
	case token.LOOP:
		return p.loopStmt()
	case token.FOR:
		return p.forStmt()
	case token.BREAK:
		pos := p.advance().Pos
		return &ast.Break{P: pos}
	case token.CONTINUE:
		pos := p.advance().Pos
		return &ast.Continue{P: pos}
	case token.RETURN:
		return p.returnStmt()
	case token.LBRACE:
		pos := p.peek().Pos
		body := p.parseBraceBlock()
		return &ast.Scoped{Body: body, P: pos}
	default:
		return p.assignmentOrExpression()
	}
}

func (p *Parser) declaration() ast.Statement {
	pos := p.expect(token.LET, "").Pos
	constant := p.match(token.CONST)
	name := p.expectIdent("after 'let'")
	p.expect(token.ASSIGN, "after declaration name")
	expr := p.expression()
	return &ast.Declaration{Constant: constant, Name: name, Expr: expr, P: pos}
}

func (p *Parser) ifStmt() ast.Statement {
	pos := p.expect(token.IF, "").Pos
	cond := p.expression()
	then := p.parseBraceBlock()
	var elseBlock ast.Block
	if p.match(token.ELSE) {
		if p.check(token.IF) {
			elseBlock = ast.Block{p.ifStmt()}
		} else {
			elseBlock = p.parseBraceBlock()
			if elseBlock == nil {
				elseBlock = ast.Block{}
			}
		}
	}
	return &ast.If{Cond: cond, Then: then, Else: elseBlock, P: pos}
}

func (p *Parser) loopStmt() ast.Statement {
	pos := p.expect(token.LOOP, "").Pos
	body := p.parseBraceBlock()
	return &ast.Loop{Body: body, P: pos}
}

// forStmt desugars `for name in expr { body }` into a scoped block
// holding a hidden index/list/length declaration and a Loop that
// increments, bound-checks, binds the element, then runs body.
func (p *Parser) forStmt() ast.Statement {
	pos := p.expect(token.FOR, "").Pos
	elemName := p.expectIdent("after 'for'")
	p.expect(token.IN, "after for-loop variable")
	listExpr := p.expression()
	userBody := p.parseBraceBlock()

	listIdent := ast.NewIdentifier("$list", pos)
	lenIdent := ast.NewIdentifier("$len", pos)
	iIdent := ast.NewIdentifier("$i", pos)

	listDecl := &ast.Declaration{Constant: true, Name: listIdent, Expr: listExpr, P: pos}
	lenDecl := &ast.Declaration{
		Constant: true,
		Name:     lenIdent,
		Expr: &ast.Call{
			Callee: &ast.FieldGet{Head: &ast.Variable{Ident: listIdent, P: pos}, Field: "size", P: pos},
			Args:   nil,
			P:      pos,
		},
		P: pos,
	}
	iDecl := &ast.Declaration{Constant: false, Name: iIdent, Expr: &ast.NumLiteral{Value: -1, P: pos}, P: pos}

	incr := &ast.Assignment{
		Target: &ast.Variable{Ident: iIdent, P: pos},
		Op:     ast.AssignAdd,
		Expr:   &ast.NumLiteral{Value: 1, P: pos},
		P:      pos,
	}
	boundCheck := &ast.If{
		Cond: &ast.Binary{
			Lhs: &ast.Variable{Ident: iIdent, P: pos},
			Op:  ast.Gre,
			Rhs: &ast.Variable{Ident: lenIdent, P: pos},
			P:   pos,
		},
		Then: ast.Block{&ast.Break{P: pos}},
		P:    pos,
	}
	bindElem := &ast.Declaration{
		Constant: false,
		Name:     elemName,
		Expr: &ast.Index{
			Head:  &ast.Variable{Ident: listIdent, P: pos},
			Index: &ast.Variable{Ident: iIdent, P: pos},
			P:     pos,
		},
		P: pos,
	}

	loopBody := ast.Block{incr, boundCheck, bindElem}
	loopBody = append(loopBody, userBody...)

	return &ast.Scoped{
		Body: ast.Block{listDecl, lenDecl, iDecl, &ast.Loop{Body: loopBody, P: pos}},
		P:    pos,
	}
}

func (p *Parser) returnStmt() ast.Statement {
	pos := p.expect(token.RETURN, "").Pos
	if p.check(token.EOL) || p.check(token.RBRACE) || p.atEnd() {
		return &ast.Return{P: pos}
	}
	return &ast.Return{Expr: p.expression(), P: pos}
}

var assignOps = map[token.Type]ast.AssignOp{
	token.ASSIGN:   ast.AssignSet,
	token.PLUS_EQ:  ast.AssignAdd,
	token.MINUS_EQ: ast.AssignSub,
	token.STAR_EQ:  ast.AssignMul,
	token.SLASH_EQ: ast.AssignDiv,
}

func (p *Parser) assignmentOrExpression() ast.Statement {
	pos := p.peek().Pos
	expr := p.expression()

	if op, ok := assignOps[p.peek().Type]; ok {
		switch expr.(type) {
		case *ast.Variable, *ast.Index, *ast.FieldGet:
		default:
			p.fail(pos, "Invalid assignment target")
		}
		p.advance()
		rhs := p.expression()
		return &ast.Assignment{Target: expr, Op: op, Expr: rhs, P: pos}
	}

	return &ast.ExprStmt{Expr: expr, P: pos}
}

// --- top-level declarations ---

func (p *Parser) parseFuncDeclaration() *ast.FuncDeclaration {
	pos := p.expect(token.FN, "").Pos
	name := p.expectIdent("after 'fn'")
	lambda := p.lambdaTail(pos)
	return &ast.FuncDeclaration{Name: name, Lambda: lambda, P: pos}
}

func (p *Parser) parseAttrDeclaration() *ast.AttrDeclaration {
	pos := p.expect(token.ATTR, "").Pos
	name := p.expectIdent("after 'attr'")

	var supers []*ast.Identifier
	if p.match(token.IS) {
		supers = append(supers, p.expectIdent("after 'is'"))
		for p.match(token.COMMA) {
			supers = append(supers, p.expectIdent("in attribute list"))
		}
	}

	p.expect(token.LBRACE, "to open attribute body")
	p.skipEOL()

	var fields []*ast.AttrField
	var methods []*ast.FuncDeclaration

	for !p.check(token.RBRACE) && !p.atEnd() {
		static := p.match(token.STATIC)
		fname := p.expectIdent("in attribute body")

		if p.check(token.LPAREN) {
			lambda := p.lambdaTail(fname.Pos)
			methods = append(methods, &ast.FuncDeclaration{Name: fname, Lambda: lambda, P: fname.Pos})
		} else {
			p.skipTypeRestriction()
			var expr ast.Expression
			if p.match(token.ASSIGN) {
				expr = p.expression()
			}
			fields = append(fields, &ast.AttrField{Name: fname, Static: static, Expr: expr})
		}

		p.skipEOL()
	}
	p.expect(token.RBRACE, "to close attribute body")

	return &ast.AttrDeclaration{Name: name, Fields: fields, Methods: methods, Attributes: supers, P: pos}
}

// skipTypeRestriction discards an optional `: TypeName` annotation. The
// language has no static type checker wired in; restrictions are parsed
// for compatibility with object/field syntax and then ignored.
func (p *Parser) skipTypeRestriction() {
	if p.match(token.COLON) {
		p.expectIdent("as type name")
	}
}

func (p *Parser) parseTypeAlias() *ast.TypeAlias {
	pos := p.expect(token.TYPE, "").Pos
	name := p.expectIdent("after 'type'")
	if p.match(token.ASSIGN) {
		for !p.check(token.EOL) && !p.atEnd() {
			p.advance()
		}
	}
	return &ast.TypeAlias{Name: name, P: pos}
}

// --- expressions ---

func (p *Parser) expression() ast.Expression { return p.orExpr() }

func (p *Parser) orExpr() ast.Expression {
	lhs := p.andExpr()
	for p.check(token.OR) {
		pos := p.advance().Pos
		rhs := p.andExpr()
		lhs = &ast.Logic{Lhs: lhs, Op: ast.LogicOr, Rhs: rhs, P: pos}
	}
	return lhs
}

func (p *Parser) andExpr() ast.Expression {
	lhs := p.equality()
	for p.check(token.AND) {
		pos := p.advance().Pos
		rhs := p.equality()
		lhs = &ast.Logic{Lhs: lhs, Op: ast.LogicAnd, Rhs: rhs, P: pos}
	}
	return lhs
}

var equalityOps = map[token.Type]ast.BinaryOp{token.EQ: ast.Equ, token.NEQ: ast.Neq}

func (p *Parser) equality() ast.Expression {
	lhs := p.comparison()
	for {
		op, ok := equalityOps[p.peek().Type]
		if !ok {
			return lhs
		}
		pos := p.advance().Pos
		rhs := p.comparison()
		lhs = &ast.Binary{Lhs: lhs, Op: op, Rhs: rhs, P: pos}
	}
}

var comparisonOps = map[token.Type]ast.BinaryOp{
	token.LT: ast.Lst, token.LE: ast.Lse, token.GT: ast.Grt, token.GE: ast.Gre,
}

func (p *Parser) comparison() ast.Expression {
	lhs := p.additive()
	for {
		op, ok := comparisonOps[p.peek().Type]
		if !ok {
			return lhs
		}
		pos := p.advance().Pos
		rhs := p.additive()
		lhs = &ast.Binary{Lhs: lhs, Op: op, Rhs: rhs, P: pos}
	}
}

var additiveOps = map[token.Type]ast.BinaryOp{token.PLUS: ast.Add, token.MINUS: ast.Sub, token.MOD: ast.Rem}

func (p *Parser) additive() ast.Expression {
	lhs := p.multiplicative()
	for {
		op, ok := additiveOps[p.peek().Type]
		if !ok {
			return lhs
		}
		pos := p.advance().Pos
		rhs := p.multiplicative()
		lhs = &ast.Binary{Lhs: lhs, Op: op, Rhs: rhs, P: pos}
	}
}

var multiplicativeOps = map[token.Type]ast.BinaryOp{token.STAR: ast.Mul, token.SLASH: ast.Div}

func (p *Parser) multiplicative() ast.Expression {
	lhs := p.unary()
	for {
		op, ok := multiplicativeOps[p.peek().Type]
		if !ok {
			return lhs
		}
		pos := p.advance().Pos
		rhs := p.unary()
		lhs = &ast.Binary{Lhs: lhs, Op: op, Rhs: rhs, P: pos}
	}
}

func (p *Parser) unary() ast.Expression {
	switch p.peek().Type {
	case token.BANG:
		pos := p.advance().Pos
		return &ast.Unary{Op: ast.Not, Expr: p.unary(), P: pos}
	case token.MINUS:
		pos := p.advance().Pos
		return &ast.Unary{Op: ast.Neg, Expr: p.unary(), P: pos}
	}
	return p.postfix()
}

func (p *Parser) postfix() ast.Expression {
	expr := p.primary()
	for {
		switch p.peek().Type {
		case token.LPAREN:
			pos := p.advance().Pos
			args := p.parseArgs()
			p.expect(token.RPAREN, "to close call arguments")
			expr = &ast.Call{Callee: expr, Args: args, P: pos}
		case token.LBRACKET:
			pos := p.advance().Pos
			idx := p.expression()
			p.expect(token.RBRACKET, "to close index")
			expr = &ast.Index{Head: expr, Index: idx, P: pos}
		case token.DOT:
			pos := p.advance().Pos
			field := p.expect(token.IDENT, "after '.'")
			expr = &ast.FieldGet{Head: expr, Field: field.Literal, P: pos}
		default:
			return expr
		}
	}
}

func (p *Parser) parseArgs() []ast.Expression {
	var args []ast.Expression
	if p.check(token.RPAREN) {
		return args
	}
	args = append(args, p.expression())
	for p.match(token.COMMA) {
		args = append(args, p.expression())
	}
	return args
}

func (p *Parser) parseParams() []*ast.Identifier {
	var params []*ast.Identifier
	if p.check(token.RPAREN) {
		return params
	}
	params = append(params, p.expectIdent("as parameter"))
	for p.match(token.COMMA) {
		params = append(params, p.expectIdent("as parameter"))
	}
	return params
}

// lambdaTail parses `(params) { body }` or `(params) => expr`, the part
// of a lambda/method after the `fn`/name token has already been consumed.
// A leading `self` parameter marks the lambda as a method: it is not
// counted in the arity, and the interpreter binds it to the receiver at
// dispatch time.
func (p *Parser) lambdaTail(pos token.Position) *ast.Lambda {
	p.expect(token.LPAREN, "to open parameter list")
	selfBound := false
	if p.check(token.SELF) {
		p.advance()
		selfBound = true
		if !p.check(token.RPAREN) {
			p.expect(token.COMMA, "after 'self' parameter")
		}
	}
	params := p.parseParams()
	p.expect(token.RPAREN, "to close parameter list")

	if p.match(token.FAT_ARROW) {
		expr := p.expression()
		return &ast.Lambda{Params: params, Body: ast.Block{&ast.Return{Expr: expr, P: pos}}, SelfBound: selfBound, P: pos}
	}
	body := p.parseBraceBlock()
	return &ast.Lambda{Params: params, Body: body, SelfBound: selfBound, P: pos}
}

func (p *Parser) primary() ast.Expression {
	tok := p.peek()

	switch tok.Type {
	case token.NONE:
		p.advance()
		return &ast.NoneLiteral{P: tok.Pos}
	case token.TRUE:
		p.advance()
		return &ast.BoolLiteral{Value: true, P: tok.Pos}
	case token.FALSE:
		p.advance()
		return &ast.BoolLiteral{Value: false, P: tok.Pos}
	case token.NUMBER:
		p.advance()
		n, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			p.fail(tok.Pos, "Invalid number literal '%s'", tok.Literal)
		}
		return &ast.NumLiteral{Value: n, P: tok.Pos}
	case token.STRING:
		p.advance()
		return &ast.StrLiteral{Value: tok.Literal, P: tok.Pos}
	case token.TEMPLATE:
		p.advance()
		return p.buildTemplate(tok)
	case token.SELF:
		p.advance()
		return &ast.SelfRef{P: tok.Pos}
	case token.FN:
		p.advance()
		return p.lambdaTail(tok.Pos)
	case token.IDENT:
		p.advance()
		return &ast.Variable{Ident: ast.NewIdentifier(tok.Literal, tok.Pos), P: tok.Pos}
	case token.LPAREN:
		p.advance()
		expr := p.expression()
		p.expect(token.RPAREN, "to close grouped expression")
		return &ast.Grouping{Expr: expr, P: tok.Pos}
	case token.LBRACKET:
		p.advance()
		return p.listLiteral(tok.Pos)
	case token.LBRACE:
		p.advance()
		return p.objectLiteral(tok.Pos)
	}

	p.fail(tok.Pos, "Expected expression, found '%s'", tok.String())
	return nil
}

func (p *Parser) listLiteral(pos token.Position) ast.Expression {
	var elems []ast.Expression
	p.skipEOL()
	for !p.check(token.RBRACKET) && !p.atEnd() {
		elems = append(elems, p.expression())
		p.skipEOL()
		if !p.match(token.COMMA) {
			break
		}
		p.skipEOL()
	}
	p.skipEOL()
	p.expect(token.RBRACKET, "to close list literal")
	return &ast.ListLiteral{Elements: elems, P: pos}
}

func (p *Parser) objectLiteral(pos token.Position) ast.Expression {
	var fields []ast.ObjectField
	p.skipEOL()
	for !p.check(token.RBRACE) && !p.atEnd() {
		name := p.expectIdent("as object field name")
		p.skipTypeRestriction()
		var expr ast.Expression
		if p.match(token.ASSIGN) {
			expr = p.expression()
		} else {
			expr = &ast.Variable{Ident: ast.NewIdentifier(name.Name, name.Pos), P: name.Pos}
		}
		fields = append(fields, ast.ObjectField{Name: *name, Expr: expr})
		p.skipEOL()
		if !p.match(token.COMMA) {
			break
		}
		p.skipEOL()
	}
	p.skipEOL()
	p.expect(token.RBRACE, "to close object literal")
	return &ast.ObjectLiteral{Fields: fields, P: pos}
}

// buildTemplate re-parses each interpolation's token stream with a
// sub-parser, the nested-parser idiom the language uses for `#{...}`.
func (p *Parser) buildTemplate(tok token.Token) ast.Expression {
	var chunks []ast.Expression
	for _, part := range tok.Parts {
		if part.Expr == nil {
			chunks = append(chunks, &ast.StrLiteral{Value: part.Literal, P: tok.Pos})
			continue
		}
		sub := New(append(part.Expr, token.New(token.EOF, "", tok.Pos)), p.source, p.file)
		expr := sub.expression()
		for _, d := range sub.errs.Diagnostics {
			p.errs.Add(d)
		}
		chunks = append(chunks, expr)
	}
	return &ast.TemplateLiteral{Chunks: chunks, P: tok.Pos}
}
