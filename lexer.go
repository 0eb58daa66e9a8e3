package main

import (
	"strconv"
	"strings"
)

// lexer scans the whole source into a token slice up front so both parser
// passes can replay it.
type lexer struct {
	input []byte
	pos   int
	line  int
	col   int
}

// Lex scans input into tokens. The result always ends with an EOF token.
func Lex(input []byte) (Tokens, error) {
	l := &lexer{input: input, line: 1, col: 1}
	var tokens Tokens
	for {
		tok, err := l.nextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens, nil
		}
	}
}

func (l *lexer) peek(offset int) byte {
	if l.pos+offset >= len(l.input) {
		return 0
	}
	return l.input[l.pos+offset]
}

func (l *lexer) atEnd() bool {
	return l.pos >= len(l.input)
}

func (l *lexer) advance() byte {
	c := l.input[l.pos]
	l.pos++
	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return c
}

func (l *lexer) position() Position {
	return Position{Line: l.line, Column: l.col}
}

func (l *lexer) errorf(pos Position, format string, args ...any) error {
	return newError(ErrLexical, pos, format, args...)
}

func (l *lexer) skipWhitespace() {
	for !l.atEnd() {
		c := l.peek(0)
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' {
			l.advance()
		} else if c == '/' && l.peek(1) == '/' {
			l.skipLineComment()
		} else {
			return
		}
	}
}

func (l *lexer) skipLineComment() {
	for !l.atEnd() && l.peek(0) != '\n' {
		l.advance()
	}
}

func (l *lexer) nextToken() (Token, error) {
	l.skipWhitespace()
	pos := l.position()
	if l.atEnd() {
		return Token{Type: EOF, Pos: pos}, nil
	}

	c := l.peek(0)
	switch {
	case isLetter(c) || c == '_':
		return l.readIdentifier(pos), nil
	case isDigit(c):
		return l.readNumber(pos)
	case c == '"':
		return l.readString(pos)
	case c == '\\':
		if l.peek(1) != '\\' {
			return Token{}, l.errorf(pos, "unexpected '\\'")
		}
		return l.readMultilineString(pos), nil
	}

	l.advance()
	tok := Token{Pos: pos, Literal: string(c)}
	switch c {
	case '=':
		tok.Type = l.pick('=', EQ, ASSIGN)
	case '<':
		tok.Type = l.pick('=', LE, LT)
	case '>':
		tok.Type = l.pick('=', GE, GT)
	case '!':
		if l.peek(0) != '=' {
			return Token{}, l.errorf(pos, "expected '=' after '!'")
		}
		l.advance()
		tok.Type = NOT_EQ
	case '+':
		tok.Type = PLUS
	case '-':
		tok.Type = MINUS
	case '*':
		tok.Type = ASTERISK
	case '/':
		tok.Type = SLASH
	case ',':
		tok.Type = COMMA
	case ';':
		tok.Type = SEMICOLON
	case ':':
		tok.Type = COLON
	case '.':
		tok.Type = DOT
	case '(':
		tok.Type = LPAREN
	case ')':
		tok.Type = RPAREN
	case '{':
		tok.Type = LBRACE
	case '}':
		tok.Type = RBRACE
	case '[':
		tok.Type = LBRACKET
	case ']':
		tok.Type = RBRACKET
	case '|':
		tok.Type = PIPE
	case '@':
		tok.Type = AT
	case '?':
		tok.Type = QUESTION
	default:
		return Token{}, l.errorf(pos, "unexpected character %q", c)
	}
	tok.Literal = string(tok.Type)
	return tok, nil
}

// pick consumes next and returns long if the upcoming byte is next.
func (l *lexer) pick(next byte, long, short TokenType) TokenType {
	if l.peek(0) == next {
		l.advance()
		return long
	}
	return short
}

func (l *lexer) readIdentifier(pos Position) Token {
	start := l.pos
	for !l.atEnd() && (isLetter(l.peek(0)) || isDigit(l.peek(0)) || l.peek(0) == '_') {
		l.advance()
	}
	text := string(l.input[start:l.pos])
	if text == "_" {
		return Token{Type: UNDERSCORE, Literal: text, Pos: pos}
	}
	if kw, ok := keywords[text]; ok {
		return Token{Type: kw, Literal: text, Pos: pos}
	}
	return Token{Type: IDENT, Literal: text, Pos: pos}
}

func (l *lexer) readDigits() {
	for isDigit(l.peek(0)) {
		l.advance()
	}
}

func (l *lexer) readNumber(pos Position) (Token, error) {
	start := l.pos
	if l.advance() == '0' {
		if isDigit(l.peek(0)) {
			return Token{}, l.errorf(pos, "integer literal has a leading zero")
		}
	} else {
		l.readDigits()
	}

	isFloat := false
	if l.peek(0) == '.' {
		isFloat = true
		l.advance()
		if !isDigit(l.peek(0)) {
			return Token{}, l.errorf(l.position(), "expected digit after '.'")
		}
		l.readDigits()
	}
	if c := l.peek(0); c == 'e' || c == 'E' {
		isFloat = true
		l.advance()
		if c := l.peek(0); c == '+' || c == '-' {
			l.advance()
		}
		if !isDigit(l.peek(0)) {
			return Token{}, l.errorf(l.position(), "expected digit in exponent")
		}
		l.readDigits()
	}

	text := string(l.input[start:l.pos])
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Token{}, l.errorf(pos, "invalid float literal %s", text)
		}
		return Token{Type: FLOAT, Literal: text, Float: f, Pos: pos}, nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return Token{}, l.errorf(pos, "integer literal %s out of range", text)
	}
	return Token{Type: INT, Literal: text, Int: n, Pos: pos}, nil
}

func (l *lexer) readString(pos Position) (Token, error) {
	var sb strings.Builder
	l.advance() // opening quote
	for {
		if l.atEnd() {
			return Token{}, l.errorf(pos, "unterminated string literal")
		}
		escPos := l.position()
		c := l.advance()
		switch c {
		case '"':
			return Token{Type: STRING, Literal: sb.String(), Pos: pos}, nil
		case '\n':
			return Token{}, l.errorf(escPos, "newline in string literal")
		case '\\':
			b, err := l.readEscape(escPos)
			if err != nil {
				return Token{}, err
			}
			sb.WriteByte(b)
		default:
			sb.WriteByte(c)
		}
	}
}

func (l *lexer) readEscape(pos Position) (byte, error) {
	if l.atEnd() {
		return 0, l.errorf(pos, "unterminated escape sequence")
	}
	switch c := l.advance(); c {
	case '"':
		return '"', nil
	case 'n':
		return '\n', nil
	case 'r':
		return '\r', nil
	case 't':
		return '\t', nil
	case '\\':
		return '\\', nil
	case 'x':
		hi, ok1 := hexValue(l.peek(0))
		lo, ok2 := hexValue(l.peek(1))
		if !ok1 || !ok2 {
			return 0, l.errorf(pos, "invalid \\x escape")
		}
		l.advance()
		l.advance()
		return hi<<4 | lo, nil
	default:
		return 0, l.errorf(pos, "invalid escape sequence \\%c", c)
	}
}

// readMultilineString reads consecutive lines that start with \\ and joins
// their text with newlines.
func (l *lexer) readMultilineString(pos Position) Token {
	var lines []string
	for {
		l.advance()
		l.advance()
		start := l.pos
		for !l.atEnd() && l.peek(0) != '\n' {
			l.advance()
		}
		lines = append(lines, string(l.input[start:l.pos]))

		save, saveLine, saveCol := l.pos, l.line, l.col
		for !l.atEnd() && isSpace(l.peek(0)) {
			l.advance()
		}
		if l.peek(0) != '\\' || l.peek(1) != '\\' {
			l.pos, l.line, l.col = save, saveLine, saveCol
			break
		}
	}
	return Token{Type: STRING, Literal: strings.Join(lines, "\n"), Pos: pos}
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func hexValue(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
