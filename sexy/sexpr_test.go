package sexy

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestParseSymbol(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"hello", "hello"},
		{"i32", "i32"},
		{"?[]u8", "?[]u8"},
		{"_", "_"},
		{"+", "+"},
	}

	for _, test := range tests {
		result, err := Parse(test.input)
		be.Err(t, err, nil)

		be.Equal(t, result.Type, NodeSymbol)
		be.Equal(t, result.Text, test.expected)
		be.Equal(t, result.String(), test.expected)
	}
}

func TestParseString(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		output   string
	}{
		{`"hello"`, "hello", `"hello"`},
		{`"hello world"`, "hello world", `"hello world"`},
		{`""`, "", `""`},
		{`"test\"quote"`, `test"quote`, `"test\"quote"`},
		{`"test\\backslash"`, `test\backslash`, `"test\\backslash"`},
		{`"line\n"`, "line\n", `"line\n"`},
	}

	for _, test := range tests {
		result, err := Parse(test.input)
		be.Err(t, err, nil)

		be.Equal(t, result.Type, NodeString)
		be.Equal(t, result.Text, test.expected)
		be.Equal(t, result.String(), test.output)
	}
}

func TestParseNumber(t *testing.T) {
	tests := []string{"42", "0", "-123", "2.5", "1e10", "+7"}

	for _, input := range tests {
		result, err := Parse(input)
		be.Err(t, err, nil)
		be.Equal(t, result.Type, NodeNumber)
		be.Equal(t, result.Text, input)
	}
}

func TestParseEllipsis(t *testing.T) {
	result, err := Parse("...")
	be.Err(t, err, nil)
	be.Equal(t, result.Type, NodeEllipsis)
	be.Equal(t, result.String(), "...")
}

func TestParseList(t *testing.T) {
	result, err := Parse(`(expr i32 1 (var "x") (op "+"))`)
	be.Err(t, err, nil)
	be.Equal(t, result.Type, NodeList)
	be.Equal(t, len(result.Items), 5)
	be.Equal(t, result.Head(), "expr")
	be.Equal(t, result.Items[3].Head(), "var")
	be.Equal(t, result.String(), `(expr i32 1 (var "x") (op "+"))`)
}

func TestParseEmptyList(t *testing.T) {
	result, err := Parse("()")
	be.Err(t, err, nil)
	be.Equal(t, result.Type, NodeList)
	be.Equal(t, len(result.Items), 0)
	be.Equal(t, result.Head(), "")
}

func TestParseComments(t *testing.T) {
	result, err := Parse("; leading comment\n(a ; trailing\n b)")
	be.Err(t, err, nil)
	be.Equal(t, result.String(), "(a b)")
}

func TestParseWhitespaceNormalization(t *testing.T) {
	result, err := Parse("(block\n  (return)\n)")
	be.Err(t, err, nil)
	be.Equal(t, result.String(), "(block (return))")
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input string
		err   string
	}{
		{"", "unexpected end of input"},
		{"(a b", "unterminated list"},
		{")", "unexpected ')'"},
		{`"open`, "unterminated string"},
		{"a b", "expected end of input"},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			_, err := Parse(test.input)
			be.Err(t, err, test.err)
		})
	}
}
