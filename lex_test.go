package main

import (
	"testing"

	"github.com/nalgeon/be"
)

func lexOne(t *testing.T, input string) Token {
	t.Helper()
	tokens, err := Lex([]byte(input))
	be.Err(t, err, nil)
	be.Equal(t, len(tokens), 2)
	be.Equal(t, tokens[1].Type, EOF)
	return tokens[0]
}

func lexError(t *testing.T, input string) *CompileError {
	t.Helper()
	_, err := Lex([]byte(input))
	be.Err(t, err)
	cerr, ok := err.(*CompileError)
	be.True(t, ok)
	be.Equal(t, cerr.Kind, ErrLexical)
	return cerr
}

func TestIntLiteral(t *testing.T) {
	tok := lexOne(t, "12345")
	be.Equal(t, tok.Type, INT)
	be.Equal(t, tok.Literal, "12345")
	be.Equal(t, tok.Int, int64(12345))
}

func TestZeroLiteral(t *testing.T) {
	tok := lexOne(t, "0")
	be.Equal(t, tok.Type, INT)
	be.Equal(t, tok.Int, int64(0))
}

func TestFloatLiterals(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"1.5", 1.5},
		{"0.25", 0.25},
		{"2e3", 2000},
		{"2E3", 2000},
		{"1.5e-1", 0.15},
		{"3.0e+2", 300},
		{"1e007", 1e7},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tok := lexOne(t, tt.input)
			be.Equal(t, tok.Type, FLOAT)
			be.Equal(t, tok.Literal, tt.input)
			be.Equal(t, tok.Float, tt.want)
		})
	}
}

func TestBadNumbers(t *testing.T) {
	for _, input := range []string{"007", "01.5", "1.", "1.e5", "2e", "2e+", "99999999999999999999"} {
		t.Run(input, func(t *testing.T) {
			lexError(t, input)
		})
	}
}

func TestIdentifier(t *testing.T) {
	tok := lexOne(t, "foo_Bar9")
	be.Equal(t, tok.Type, IDENT)
	be.Equal(t, tok.Literal, "foo_Bar9")
}

func TestUnderscore(t *testing.T) {
	be.Equal(t, lexOne(t, "_").Type, UNDERSCORE)
	be.Equal(t, lexOne(t, "_x").Type, IDENT)
}

func TestKeywords(t *testing.T) {
	for spelling, typ := range keywords {
		t.Run(spelling, func(t *testing.T) {
			tok := lexOne(t, spelling)
			be.Equal(t, tok.Type, typ)
			be.Equal(t, tok.Literal, spelling)
			be.True(t, tok.IsKeyword())
		})
	}
	be.True(t, !lexOne(t, "constant").IsKeyword())
}

func TestOperatorsAndDelimiters(t *testing.T) {
	tests := []struct {
		input string
		typ   TokenType
	}{
		{"=", ASSIGN},
		{"==", EQ},
		{"!=", NOT_EQ},
		{"<", LT},
		{"<=", LE},
		{">", GT},
		{">=", GE},
		{"+", PLUS},
		{"-", MINUS},
		{"*", ASTERISK},
		{"/", SLASH},
		{"(", LPAREN},
		{")", RPAREN},
		{"{", LBRACE},
		{"}", RBRACE},
		{"[", LBRACKET},
		{"]", RBRACKET},
		{",", COMMA},
		{";", SEMICOLON},
		{":", COLON},
		{".", DOT},
		{"|", PIPE},
		{"@", AT},
		{"?", QUESTION},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tok := lexOne(t, tt.input)
			be.Equal(t, tok.Type, tt.typ)
			be.Equal(t, tok.Literal, tt.input)
		})
	}
}

func TestBangWithoutEquals(t *testing.T) {
	lexError(t, "!x")
}

func TestUnexpectedCharacter(t *testing.T) {
	cerr := lexError(t, "a $ b")
	be.Equal(t, cerr.Pos, Position{Line: 1, Column: 3})
}

func TestStringLiteral(t *testing.T) {
	tok := lexOne(t, `"hello"`)
	be.Equal(t, tok.Type, STRING)
	be.Equal(t, tok.Literal, "hello")
}

func TestStringEscapes(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`"a\nb"`, "a\nb"},
		{`"tab\t"`, "tab\t"},
		{`"\r"`, "\r"},
		{`"say \"hi\""`, `say "hi"`},
		{`"back\\slash"`, `back\slash`},
		{`"\x41\x6a"`, "Aj"},
		{`""`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			be.Equal(t, lexOne(t, tt.input).Literal, tt.want)
		})
	}
}

func TestBadStrings(t *testing.T) {
	for _, input := range []string{`"abc`, "\"a\nb\"", `"\q"`, `"\x4"`, `"\xZZ"`, `"abc\`} {
		t.Run(input, func(t *testing.T) {
			lexError(t, input)
		})
	}
}

func TestMultilineString(t *testing.T) {
	input := "\\\\first line\n   \\\\second \"quoted\"\n;"
	tokens, err := Lex([]byte(input))
	be.Err(t, err, nil)
	be.Equal(t, len(tokens), 3)
	be.Equal(t, tokens[0].Type, STRING)
	be.Equal(t, tokens[0].Literal, "first line\nsecond \"quoted\"")
	be.Equal(t, tokens[1].Type, SEMICOLON)
	be.Equal(t, tokens[1].Pos, Position{Line: 3, Column: 1})
}

func TestSingleBackslash(t *testing.T) {
	lexError(t, `\n`)
}

func TestCommentsAndPositions(t *testing.T) {
	input := "// header\nconst x = 1; // trailing\n  y"
	tokens, err := Lex([]byte(input))
	be.Err(t, err, nil)

	var types []TokenType
	for _, tok := range tokens {
		types = append(types, tok.Type)
	}
	be.Equal(t, types, []TokenType{CONST, IDENT, ASSIGN, INT, SEMICOLON, IDENT, EOF})
	be.Equal(t, tokens[0].Pos, Position{Line: 2, Column: 1})
	be.Equal(t, tokens[1].Pos, Position{Line: 2, Column: 7})
	be.Equal(t, tokens[5].Pos, Position{Line: 3, Column: 3})
}

func TestProlog(t *testing.T) {
	tokens, err := Lex([]byte(`const ifj = @import("ifj24.zig");`))
	be.Err(t, err, nil)

	var types []TokenType
	for _, tok := range tokens {
		types = append(types, tok.Type)
	}
	be.Equal(t, types, []TokenType{CONST, IFJ, ASSIGN, AT, IDENT, LPAREN, STRING, RPAREN, SEMICOLON, EOF})
}

func TestTypeTokens(t *testing.T) {
	tokens, err := Lex([]byte("?[]u8 ?i32"))
	be.Err(t, err, nil)

	var types []TokenType
	for _, tok := range tokens {
		types = append(types, tok.Type)
	}
	be.Equal(t, types, []TokenType{QUESTION, LBRACKET, RBRACKET, U8, QUESTION, I32, EOF})
}

func TestTokensAtClampsToEOF(t *testing.T) {
	tokens, err := Lex([]byte("x"))
	be.Err(t, err, nil)
	be.Equal(t, tokens.At(0).Type, IDENT)
	be.Equal(t, tokens.At(5).Type, EOF)
	be.Equal(t, Tokens(nil).At(0).Type, EOF)
}

func TestTokenString(t *testing.T) {
	tests := []struct {
		tok  Token
		want string
	}{
		{Token{Type: IDENT, Literal: "x"}, `identifier "x"`},
		{Token{Type: STRING, Literal: "a\n"}, `string "a\n"`},
		{Token{Type: INT, Literal: "42"}, "number 42"},
		{Token{Type: EOF}, "end of file"},
		{Token{Type: WHILE, Literal: "while"}, "'while'"},
		{Token{Type: LE, Literal: "<="}, "'<='"},
	}
	for _, tt := range tests {
		be.Equal(t, tt.tok.String(), tt.want)
	}
}
