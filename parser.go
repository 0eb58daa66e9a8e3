package main

import (
	"io"
	"log"
)

// pass selects what the shared grammar walk does at each declaration.
type pass int

const (
	// passSignatures records function headers and skips bodies.
	passSignatures pass = iota
	// passBodies checks everything and builds the tree.
	passBodies
)

// parser is the recursive-descent declaration parser. Both passes walk the
// same token slice; the symbol table carries what pass 1 learned into pass 2.
type parser struct {
	tokens Tokens
	pos    int
	pass   pass
	syms   *SymbolTable
	fn     *Symbol // function whose body is being parsed
	log    *log.Logger
}

// Parse runs both passes over tokens and returns the checked program.
func Parse(tokens Tokens, syms *SymbolTable, logger *log.Logger) (prog *Program, err error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	p := &parser{tokens: tokens, syms: syms, log: logger}
	defer recoverBailout(&err)

	p.collectSignatures()
	p.pos = 0
	p.pass = passBodies
	prog = p.parseProgram()
	p.check(p.syms.AssertAllFunctionsReturned())
	return prog, nil
}

// ============================================================================
// Token cursor

func (p *parser) tok() Token {
	return p.tokens.At(p.pos)
}

func (p *parser) peek(n int) Token {
	return p.tokens.At(p.pos + n)
}

func (p *parser) next() Token {
	t := p.tok()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return t
}

// fail aborts the parse with a diagnostic at the current token.
func (p *parser) fail(kind ErrorKind, format string, args ...any) {
	panic(bailout{newError(kind, p.tok().Pos, format, args...)})
}

// check aborts on a symbol table error, attributing it to the current token.
func (p *parser) check(err error) {
	if err == nil {
		return
	}
	cerr, ok := err.(*CompileError)
	if !ok {
		cerr = newError(ErrInternal, Position{}, "%v", err)
	}
	if !cerr.Pos.IsValid() {
		cerr.Pos = p.tok().Pos
	}
	panic(bailout{cerr})
}

// skip consumes a token of the given type or fails with a syntax error.
func (p *parser) skip(tt TokenType) Token {
	if p.tok().Type != tt {
		p.fail(ErrSyntax, "expected '%s' but got %s", tokenSpelling(tt), p.tok())
	}
	return p.next()
}

func tokenSpelling(tt TokenType) string {
	for spelling, kw := range keywords {
		if kw == tt {
			return spelling
		}
	}
	return string(tt)
}

// ============================================================================
// Pass 1: signatures

func (p *parser) collectSignatures() {
	p.skipToNextFunc()
	for {
		p.parseFuncDecl()
		if p.tok().Type == EOF {
			break
		}
	}

	main, err := p.syms.AssertFunction("main")
	if err != nil {
		panic(bailout{newError(ErrDefinition, p.tok().Pos, "missing function 'main'")})
	}
	if main.ReturnType != TypeVoid {
		panic(bailout{newError(ErrParamReturn, p.tok().Pos, "function 'main' must return void")})
	}
	if len(main.Params) != 0 {
		panic(bailout{newError(ErrParamReturn, p.tok().Pos, "function 'main' must not take parameters")})
	}
}

func (p *parser) skipToNextFunc() {
	for p.tok().Type != PUB && p.tok().Type != EOF {
		p.next()
	}
}

// ============================================================================
// Pass 2: program structure

func (p *parser) parseProgram() *Program {
	p.parseProlog()
	prog := &Program{}
	for {
		prog.Funcs = append(prog.Funcs, p.parseFuncDecl())
		if p.tok().Type == EOF {
			break
		}
	}
	p.log.Printf("pass 2: built %d function bodies", len(prog.Funcs))
	return prog
}

// parseProlog checks `const ifj = @import("ifj24.zig");`.
func (p *parser) parseProlog() {
	p.skip(CONST)
	p.skip(IFJ)
	p.skip(ASSIGN)
	p.skip(AT)
	if p.tok().Type != IDENT || p.tok().Literal != "import" {
		p.fail(ErrSyntax, "expected 'import' but got %s", p.tok())
	}
	p.next()
	p.skip(LPAREN)
	if p.tok().Type != STRING || p.tok().Literal != "ifj24.zig" {
		p.fail(ErrSyntax, "expected \"ifj24.zig\" but got %s", p.tok())
	}
	p.next()
	p.skip(RPAREN)
	p.skip(SEMICOLON)
}

// parseFuncDecl parses `pub fn name(params) type body`. In pass 1 it records
// the header and skips to the next function; in pass 2 it returns the checked
// declaration.
func (p *parser) parseFuncDecl() *FuncDecl {
	pos := p.skip(PUB).Pos
	p.skip(FN)
	if p.tok().Type != IDENT {
		p.fail(ErrSyntax, "expected function name but got %s", p.tok())
	}
	name := p.next().Literal

	if p.pass == passSignatures {
		if p.syms.Find(name) != nil {
			p.fail(ErrRedefinition, "function '%s' is already defined", name)
		}
		fn, err := p.syms.Add(name, SymFunc)
		p.check(err)
		p.skip(LPAREN)
		fn.Params = p.parseParamList()
		p.skip(RPAREN)
		fn.ReturnType = p.parseType()
		if fn.ReturnType == TypeUndefined {
			p.fail(ErrSyntax, "expected return type but got %s", p.tok())
		}
		fn.Returned = fn.ReturnType == TypeVoid
		p.log.Printf("pass 1: fn %s (%d params) %s", name, len(fn.Params), fn.ReturnType)
		p.skipToNextFunc()
		return nil
	}

	fn, err := p.syms.AssertFunction(name)
	p.check(err)
	p.fn = fn
	decl := &FuncDecl{Name: name, Params: fn.Params, ReturnType: fn.ReturnType, Pos: pos}

	p.syms.EnterScope()
	p.skip(LPAREN)
	for p.tok().Type != RPAREN {
		paramName := p.next().Literal
		if p.syms.Find(paramName) != nil {
			p.fail(ErrRedefinition, "parameter '%s' redefines an existing name", paramName)
		}
		param, err := p.syms.Add(paramName, SymConst)
		p.check(err)
		p.skip(COLON)
		param.Type = p.parseType()
		if p.tok().Type == COMMA {
			p.next()
		}
	}
	p.skip(RPAREN)
	p.parseType()

	decl.Body = p.parseBody(true)
	decl.Locals = fn.Locals
	if fn.ReturnType != TypeVoid {
		fn.Returned = terminates(decl.Body)
	}
	p.fn = nil
	return decl
}

// parseParamList parses parameter declarations up to the closing ')'.
func (p *parser) parseParamList() []Param {
	var params []Param
	if p.tok().Type == RPAREN {
		return params
	}
	for {
		if p.tok().Type != IDENT {
			p.fail(ErrSyntax, "expected parameter name but got %s", p.tok())
		}
		name := p.next().Literal
		p.skip(COLON)
		typ := p.parseType()
		if typ == TypeUndefined || typ == TypeVoid {
			p.fail(ErrSyntax, "expected parameter type but got %s", p.tok())
		}
		params = append(params, Param{Name: name, Type: typ})
		if p.tok().Type == RPAREN {
			return params
		}
		p.skip(COMMA)
	}
}

// parseType parses an optional type. It returns TypeUndefined without
// consuming anything when no type starts here.
func (p *parser) parseType() DataType {
	if p.tok().Type == VOID {
		p.next()
		return TypeVoid
	}
	nullable := false
	if p.tok().Type == QUESTION {
		nullable = true
		p.next()
	}
	var typ DataType
	switch p.tok().Type {
	case I32:
		p.next()
		typ = TypeI32
	case F64:
		p.next()
		typ = TypeF64
	case LBRACKET:
		p.next()
		p.skip(RBRACKET)
		p.skip(U8)
		typ = TypeU8
	default:
		if nullable {
			p.fail(ErrSyntax, "expected type after '?' but got %s", p.tok())
		}
		return TypeUndefined
	}
	if nullable {
		return typ.Nullable()
	}
	return typ
}

// ============================================================================
// Statements

// parseBody parses `{ stmt* }`. A body owns a scope; when the caller has
// already entered it (function parameters, unwrap bindings) entered is true.
func (p *parser) parseBody(entered bool) *Body {
	p.skip(LBRACE)
	if !entered {
		p.syms.EnterScope()
	}
	body := &Body{}
	for p.tok().Type != RBRACE {
		body.Stmts = append(body.Stmts, p.parseStatement())
	}
	p.check(p.syms.LeaveScope())
	p.next()
	return body
}

func (p *parser) parseStatement() Stmt {
	switch p.tok().Type {
	case IF:
		return p.parseIf()
	case WHILE:
		return p.parseWhile()
	case CONST, VAR:
		return p.parseVarDecl()
	case RETURN:
		return p.parseReturn()
	case IFJ:
		return p.parseCallStatement()
	case UNDERSCORE:
		p.next()
		p.skip(ASSIGN)
		expr := p.parseValue(endSemicolon)
		p.skip(SEMICOLON)
		return &VarStmt{Kind: VarDiscard, Expr: expr}
	case IDENT:
		switch p.peek(1).Type {
		case ASSIGN:
			return p.parseAssign()
		case LPAREN:
			return p.parseCallStatement()
		}
		p.next()
		p.fail(ErrSyntax, "expected '=' or '(' but got %s", p.tok())
	}
	p.fail(ErrSyntax, "expected statement but got %s", p.tok())
	return nil
}

func (p *parser) parseCallStatement() Stmt {
	call := p.parseCall()
	if call.ReturnType != TypeVoid {
		p.fail(ErrParamReturn, "result of %s is discarded", call.QualifiedName())
	}
	p.skip(SEMICOLON)
	return &CallStmt{Call: call}
}

// parseCondition parses `( expr )` and an optional `|name|` binder. A nullable
// condition requires the binder and opens the scope the binder lives in.
func (p *parser) parseCondition() (cond *Expression, unwrap bool, binding string) {
	p.skip(LPAREN)
	cond = p.parseExpression(endParen)
	if cond.Type == TypeUndefined {
		p.fail(ErrSyntax, "expected condition but got %s", p.tok())
	}
	p.skip(RPAREN)

	switch {
	case cond.Type == TypeBool:
		return cond, false, ""
	case cond.Type.IsNullable():
		p.syms.EnterScope()
		return cond, true, p.parseBinder(cond.Type.Unwrap())
	default:
		p.fail(ErrType, "condition of type %s is neither bool nor nullable", cond.Type)
		return nil, false, ""
	}
}

// parseBinder parses `|name|` or `|_|` and declares name as a constant.
func (p *parser) parseBinder(typ DataType) string {
	if p.tok().Type != PIPE {
		p.fail(ErrSemanticOther, "nullable condition requires |name| binding")
	}
	p.next()
	binding := ""
	switch p.tok().Type {
	case IDENT:
		binding = p.tok().Literal
		if p.syms.Find(binding) != nil {
			p.fail(ErrRedefinition, "binding '%s' redefines an existing name", binding)
		}
		sym, err := p.syms.Add(binding, SymConst)
		p.check(err)
		sym.Type = typ
		p.fn.AddLocal(binding)
		p.next()
	case UNDERSCORE:
		p.next()
	default:
		p.fail(ErrSyntax, "expected binding name but got %s", p.tok())
	}
	p.skip(PIPE)
	return binding
}

func (p *parser) parseIf() Stmt {
	p.skip(IF)
	stmt := &IfStmt{}
	stmt.Cond, stmt.Unwrap, stmt.Binding = p.parseCondition()
	stmt.Then = p.parseBody(stmt.Unwrap)
	if p.tok().Type != ELSE {
		p.fail(ErrSyntax, "expected 'else' but got %s", p.tok())
	}
	p.next()
	stmt.Else = p.parseBody(false)
	return stmt
}

func (p *parser) parseWhile() Stmt {
	p.skip(WHILE)
	stmt := &WhileStmt{}
	stmt.Cond, stmt.Unwrap, stmt.Binding = p.parseCondition()
	stmt.Body = p.parseBody(stmt.Unwrap)
	return stmt
}

// parseVarDecl parses `const|var name [: type] = expr;`. The name becomes
// visible after its initializer.
func (p *parser) parseVarDecl() Stmt {
	kind := SymVar
	if p.next().Type == CONST {
		kind = SymConst
	}
	switch p.tok().Type {
	case IDENT:
	case IFJ:
		p.fail(ErrRedefinition, "'ifj' cannot be redefined")
	default:
		p.fail(ErrSyntax, "expected variable name but got %s", p.tok())
	}
	nameTok := p.next()
	name := nameTok.Literal
	if p.syms.Find(name) != nil {
		panic(bailout{newError(ErrRedefinition, nameTok.Pos, "'%s' is already defined", name)})
	}

	declared := TypeUndefined
	if p.tok().Type == COLON {
		p.next()
		declared = p.parseType()
		if declared == TypeUndefined || declared == TypeVoid {
			p.fail(ErrSyntax, "expected variable type but got %s", p.tok())
		}
	}
	p.skip(ASSIGN)
	exprPos := p.tok().Pos
	expr := p.parseValue(endSemicolon)

	typ := declared
	switch {
	case declared.AcceptsNullable(expr.Type):
	case declared == TypeUndefined && (expr.Type == TypeNull || expr.Type == TypeString):
		panic(bailout{newError(ErrTypeDeduction, exprPos, "cannot infer the type of '%s' from %s", name, expr.Type)})
	case declared == TypeUndefined:
		typ = expr.Type
	case declared != expr.Type:
		panic(bailout{newError(ErrType, exprPos, "cannot initialize '%s' of type %s with %s", name, declared, expr.Type)})
	}
	p.skip(SEMICOLON)

	sym, err := p.syms.Add(name, kind)
	p.check(err)
	sym.Type = typ
	sym.Known = kind == SymConst && expr.Known
	p.fn.AddLocal(name)
	return &VarStmt{Kind: VarDeclare, Name: name, Expr: expr}
}

// parseAssign parses `name = expr;`. An assignment is a write, not a read.
func (p *parser) parseAssign() Stmt {
	name := p.next().Literal
	sym, err := p.syms.MarkModified(name)
	if err != nil {
		p.pos--
		p.check(err)
	}
	p.skip(ASSIGN)
	exprPos := p.tok().Pos
	expr := p.parseValue(endSemicolon)
	if !sym.Type.Accepts(expr.Type) {
		panic(bailout{newError(ErrType, exprPos, "cannot assign %s to '%s' of type %s", expr.Type, name, sym.Type)})
	}
	p.skip(SEMICOLON)
	return &VarStmt{Kind: VarAssign, Name: name, Expr: expr}
}

func (p *parser) parseReturn() Stmt {
	p.skip(RETURN)
	if p.fn.ReturnType == TypeVoid {
		if p.tok().Type != SEMICOLON {
			p.fail(ErrReturn, "function '%s' returns void", p.fn.Name)
		}
		p.next()
		return &ReturnStmt{}
	}

	exprPos := p.tok().Pos
	expr := p.parseExpression(endSemicolon)
	if expr.Type == TypeUndefined {
		p.fail(ErrReturn, "function '%s' must return a value of type %s", p.fn.Name, p.fn.ReturnType)
	}
	if !p.fn.ReturnType.Accepts(expr.Type) {
		panic(bailout{newError(ErrParamReturn, exprPos, "cannot return %s from function '%s' returning %s", expr.Type, p.fn.Name, p.fn.ReturnType)})
	}
	p.skip(SEMICOLON)
	return &ReturnStmt{Expr: expr}
}

// parseValue parses an expression that is stored somewhere: it must be
// non-empty, and neither a void call nor a bare comparison.
func (p *parser) parseValue(end exprEnd) *Expression {
	pos := p.tok().Pos
	expr := p.parseExpression(end)
	switch expr.Type {
	case TypeUndefined:
		p.fail(ErrSyntax, "expected expression but got %s", p.tok())
	case TypeVoid:
		panic(bailout{newError(ErrParamReturn, pos, "void value used as a value")})
	case TypeBool:
		panic(bailout{newError(ErrType, pos, "comparison result can only be used as a condition")})
	}
	return expr
}
