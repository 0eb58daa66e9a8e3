package main

// exprEnd says which tokens terminate an expression besides ';'.
type exprEnd int

const (
	// endSemicolon: only ';' ends the expression.
	endSemicolon exprEnd = iota
	// endParen: an unmatched ')' ends it (conditions).
	endParen
	// endArg: an unmatched ')' or a ',' ends it (call arguments).
	endArg
)

// precClass is the terminal class of a token in the precedence table.
type precClass int

const (
	classMul precClass = iota
	classAdd
	classOperand
	classRel
	classLParen
	classRParen
	classEnd
)

const (
	actShift  = '<'
	actReduce = '>'
	actMatch  = '='
	actError  = '-'
)

// precedenceTable[top][input] relates the topmost stack terminal to the
// incoming one.
var precedenceTable = [7][7]byte{
	//           *    +    id   rel  (    )    $
	classMul:     {'>', '>', '<', '>', '<', '>', '>'},
	classAdd:     {'<', '>', '<', '>', '<', '>', '>'},
	classOperand: {'>', '>', '-', '>', '-', '>', '>'},
	classRel:     {'<', '<', '<', '-', '<', '>', '>'},
	classLParen:  {'<', '<', '<', '<', '<', '=', '-'},
	classRParen:  {'>', '>', '-', '>', '-', '>', '>'},
	classEnd:     {'<', '<', '<', '<', '<', '-', '-'},
}

// stackEntry is a terminal or a reduced nonterminal on the parse stack.
type stackEntry struct {
	terminal bool
	class    precClass
	tok      Token
	// handle marks the terminal after which the next handle starts.
	handle  bool
	typ     DataType
	literal bool
	known   bool
	item    ExprItem // operand output for terminals of classOperand
}

// exprParser turns one expression into a typed postfix sequence. Nested call
// arguments get their own exprParser.
type exprParser struct {
	p      *parser
	end    exprEnd
	depth  int
	stack  []*stackEntry
	out    []ExprItem
	hasF64 bool
}

// parseExpression parses tokens up to (not including) the terminator chosen
// by end. An empty expression has type TypeUndefined.
func (p *parser) parseExpression(end exprEnd) *Expression {
	e := &exprParser{p: p, end: end}
	return e.parse()
}

func (e *exprParser) push(entry *stackEntry) {
	e.stack = append(e.stack, entry)
}

func (e *exprParser) pop() *stackEntry {
	top := e.stack[len(e.stack)-1]
	e.stack = e.stack[:len(e.stack)-1]
	return top
}

func (e *exprParser) top() *stackEntry {
	return e.stack[len(e.stack)-1]
}

func (e *exprParser) topTerminal() *stackEntry {
	for i := len(e.stack) - 1; i >= 0; i-- {
		if e.stack[i].terminal {
			return e.stack[i]
		}
	}
	panic("expression stack lost its bottom marker")
}

func (e *exprParser) parse() *Expression {
	e.push(&stackEntry{terminal: true, class: classEnd})
	input := e.read()

	for {
		top := e.topTerminal()
		if top.class == classEnd && input.class == classEnd {
			break
		}
		switch precedenceTable[top.class][input.class] {
		case actShift:
			top.handle = true
			e.push(input)
			input = e.read()
		case actMatch:
			e.push(input)
			input = e.read()
		case actReduce:
			e.reduce()
		default:
			e.fail(ErrSyntax, input.tok, "unexpected %s in expression", input.tok)
		}
	}

	expr := &Expression{Items: e.out, Type: TypeUndefined, Known: true}
	if final := e.top(); !final.terminal {
		expr.Type = final.typ
		expr.Known = final.known
	}
	if e.hasF64 {
		for _, item := range e.out {
			switch it := item.(type) {
			case *ValueItem:
				it.IntToFloat = it.Type == TypeI32
			case *OperatorItem:
				it.Promoted = it.Type == TypeI32
			}
		}
	}
	return expr
}

func (e *exprParser) fail(kind ErrorKind, at Token, format string, args ...any) {
	panic(bailout{newError(kind, at.Pos, format, args...)})
}

// read classifies the current token and consumes it, unless it terminates
// the expression. Identifiers followed by '(' or '.' are parsed as calls.
func (e *exprParser) read() *stackEntry {
	p := e.p
	tok := p.tok()
	entry := &stackEntry{terminal: true, tok: tok}

	switch tok.Type {
	case ASTERISK, SLASH:
		entry.class = classMul
	case PLUS, MINUS:
		entry.class = classAdd
	case LT, GT, LE, GE, EQ, NOT_EQ:
		entry.class = classRel
	case LPAREN:
		entry.class = classLParen
		e.depth++
	case RPAREN:
		switch {
		case e.depth > 0:
			entry.class = classRParen
			e.depth--
		case e.end != endSemicolon:
			entry.class = classEnd
			return entry
		default:
			e.fail(ErrSyntax, tok, "unmatched ')'")
		}
	case COMMA:
		if e.end != endArg {
			e.fail(ErrSyntax, tok, "unexpected ','")
		}
		entry.class = classEnd
		return entry
	case SEMICOLON:
		entry.class = classEnd
		return entry
	case UNDERSCORE:
		e.fail(ErrDefinition, tok, "'_' cannot be used as a value")
	case INT:
		e.operand(entry, TypeI32)
	case FLOAT:
		e.operand(entry, TypeF64)
	case STRING:
		e.operand(entry, TypeString)
	case NULL:
		e.operand(entry, TypeNull)
	case IDENT, IFJ:
		if next := p.peek(1).Type; next == LPAREN || next == DOT {
			call := p.parseCall()
			entry.class = classOperand
			entry.typ = call.ReturnType
			entry.item = &CallItem{Call: call}
			return entry
		}
		if tok.Type == IFJ {
			e.fail(ErrSyntax, tok, "expected '.' after 'ifj'")
		}
		sym, err := p.syms.MarkUsed(tok.Literal)
		if err != nil {
			p.check(err)
		}
		entry.class = classOperand
		entry.typ = sym.Type
		entry.known = sym.Known
		entry.item = &ValueItem{Token: tok, Type: sym.Type}
	default:
		e.fail(ErrSyntax, tok, "unexpected %s in expression", tok)
	}
	p.next()
	return entry
}

func (e *exprParser) operand(entry *stackEntry, typ DataType) {
	entry.class = classOperand
	entry.typ = typ
	entry.literal = true
	entry.known = true
	entry.item = &ValueItem{Token: entry.tok, Type: typ}
}

// reduce replaces the handle on top of the stack with a nonterminal.
func (e *exprParser) reduce() {
	var handle []*stackEntry
	for len(handle) < 3 && len(e.stack) > 1 {
		handle = append(handle, e.pop())
		if e.top().handle {
			break
		}
	}
	marker := e.top()
	if !marker.handle {
		e.fail(ErrSyntax, handle[0].tok, "malformed expression")
	}

	var result *stackEntry
	switch len(handle) {
	case 1:
		result = e.reduceOperand(handle[0])
	case 3:
		right, op, left := handle[0], handle[1], handle[2]
		if left.terminal && left.class == classLParen && right.terminal && right.class == classRParen && !op.terminal {
			result = op
		} else {
			result = e.reduceBinary(left, op, right)
		}
	default:
		e.fail(ErrSyntax, handle[0].tok, "malformed expression")
	}
	marker.handle = false
	e.push(result)
}

func (e *exprParser) reduceOperand(entry *stackEntry) *stackEntry {
	if !entry.terminal || entry.class != classOperand {
		e.fail(ErrSyntax, entry.tok, "expected operand but got %s", entry.tok)
	}
	if entry.typ == TypeF64 {
		e.hasF64 = true
	}
	e.out = append(e.out, entry.item)
	return &stackEntry{typ: entry.typ, literal: entry.literal, known: entry.known, tok: entry.tok}
}

func (e *exprParser) reduceBinary(left, op, right *stackEntry) *stackEntry {
	if left.terminal || right.terminal || !op.terminal || (op.class != classMul && op.class != classAdd && op.class != classRel) {
		e.fail(ErrSyntax, op.tok, "malformed expression")
	}

	var typ DataType
	if op.class == classRel {
		if left.typ == TypeBool || right.typ == TypeBool {
			e.fail(ErrSyntax, op.tok, "comparisons cannot be chained")
		}
		typ = e.relationalType(left, op, right)
	} else {
		typ = e.arithmeticType(left, op, right)
	}

	e.out = append(e.out, &OperatorItem{Op: op.tok.Type, Type: typ})
	return &stackEntry{
		typ:     typ,
		literal: left.literal && right.literal,
		known:   left.known && right.known,
		tok:     op.tok,
	}
}

// arithmeticType applies the arithmetic typing rules. Mixing f64 with i32 is
// allowed only for an i32 literal and never for division.
func (e *exprParser) arithmeticType(left, op, right *stackEntry) DataType {
	l, r := left.typ, right.typ
	switch {
	case l == TypeI32 && r == TypeI32:
		return TypeI32
	case l == TypeF64 && r == TypeF64:
		return TypeF64
	case l == TypeF64 && r == TypeI32 && right.literal && op.tok.Type != SLASH:
		return TypeF64
	case l == TypeI32 && r == TypeF64 && left.literal && op.tok.Type != SLASH:
		return TypeF64
	}
	e.fail(ErrType, op.tok, "invalid operands %s %s %s", l, op.tok.Type, r)
	return TypeUndefined
}

// relationalType applies the comparison typing rules.
func (e *exprParser) relationalType(left, op, right *stackEntry) DataType {
	l, r := left.typ, right.typ
	equality := op.tok.Type == EQ || op.tok.Type == NOT_EQ
	switch {
	case l == r && (l == TypeI32 || l == TypeF64):
		return TypeBool
	case equality && (l == TypeNullI32 || l == TypeNullF64) && r == l.Unwrap():
		return TypeBool
	case equality && (r == TypeNullI32 || r == TypeNullF64) && l == r.Unwrap():
		return TypeBool
	case equality && l == TypeNull && r.IsNullable():
		return TypeBool
	case equality && r == TypeNull && l.IsNullable():
		return TypeBool
	case l == TypeI32 && r == TypeF64 && (left.literal || left.known):
		return TypeBool
	case l == TypeF64 && r == TypeI32 && (right.literal || right.known):
		return TypeBool
	}
	e.fail(ErrType, op.tok, "cannot compare %s %s %s", l, op.tok.Type, r)
	return TypeUndefined
}
