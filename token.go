package main

import "fmt"

// TokenType represents the type of token
type TokenType string

const (
	EOF        TokenType = "EOF"
	IDENT      TokenType = "IDENT"
	INT        TokenType = "INT"
	FLOAT      TokenType = "FLOAT"
	STRING     TokenType = "STRING"
	UNDERSCORE TokenType = "_"

	// Operators
	ASSIGN   TokenType = "="
	PLUS     TokenType = "+"
	MINUS    TokenType = "-"
	ASTERISK TokenType = "*"
	SLASH    TokenType = "/"
	EQ       TokenType = "=="
	NOT_EQ   TokenType = "!="
	LT       TokenType = "<"
	GT       TokenType = ">"
	LE       TokenType = "<="
	GE       TokenType = ">="

	// Delimiters
	COMMA     TokenType = ","
	SEMICOLON TokenType = ";"
	COLON     TokenType = ":"
	DOT       TokenType = "."
	LPAREN    TokenType = "("
	RPAREN    TokenType = ")"
	LBRACE    TokenType = "{"
	RBRACE    TokenType = "}"
	LBRACKET  TokenType = "["
	RBRACKET  TokenType = "]"
	PIPE      TokenType = "|"
	AT        TokenType = "@"
	QUESTION  TokenType = "?"

	// Keywords
	CONST  TokenType = "CONST"
	ELSE   TokenType = "ELSE"
	FN     TokenType = "FN"
	IF     TokenType = "IF"
	I32    TokenType = "I32"
	F64    TokenType = "F64"
	NULL   TokenType = "NULL"
	PUB    TokenType = "PUB"
	RETURN TokenType = "RETURN"
	U8     TokenType = "U8"
	VAR    TokenType = "VAR"
	VOID   TokenType = "VOID"
	WHILE  TokenType = "WHILE"
	IFJ    TokenType = "IFJ"
)

var keywords = map[string]TokenType{
	"const":  CONST,
	"else":   ELSE,
	"fn":     FN,
	"if":     IF,
	"i32":    I32,
	"f64":    F64,
	"null":   NULL,
	"pub":    PUB,
	"return": RETURN,
	"u8":     U8,
	"var":    VAR,
	"void":   VOID,
	"while":  WHILE,
	"ifj":    IFJ,
}

// Position is a 1-based line and column in the source text.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// IsValid reports whether the position points into a source file.
func (p Position) IsValid() bool {
	return p.Line > 0
}

// Token is one lexeme of the source program.
type Token struct {
	Type TokenType
	// Identifier spelling or decoded string literal bytes.
	Literal string
	Int     int64
	Float   float64
	Pos     Position
}

func (t Token) String() string {
	switch t.Type {
	case IDENT:
		return fmt.Sprintf("identifier %q", t.Literal)
	case STRING:
		return fmt.Sprintf("string %q", t.Literal)
	case INT, FLOAT:
		return fmt.Sprintf("number %s", t.Literal)
	case EOF:
		return "end of file"
	}
	for spelling, typ := range keywords {
		if typ == t.Type {
			return fmt.Sprintf("'%s'", spelling)
		}
	}
	return fmt.Sprintf("'%s'", string(t.Type))
}

// IsKeyword reports whether the token is a reserved word.
func (t Token) IsKeyword() bool {
	_, ok := keywords[t.Literal]
	return ok && t.Type != IDENT
}

// Tokens is the indexable token sequence both parser passes replay.
// Reading past the end yields the trailing EOF token.
type Tokens []Token

// At returns the token at index i.
func (ts Tokens) At(i int) Token {
	if len(ts) == 0 {
		return Token{Type: EOF}
	}
	if i >= len(ts) {
		return ts[len(ts)-1]
	}
	return ts[i]
}
