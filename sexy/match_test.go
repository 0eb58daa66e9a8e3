package sexy

import (
	"testing"

	"github.com/nalgeon/be"
)

func mustParse(t *testing.T, input string) *Node {
	t.Helper()
	node, err := Parse(input)
	be.Err(t, err, nil)
	return node
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		actual  string
		ok      bool
	}{
		{"identical", `(expr i32 1 2 (op "+"))`, `(expr i32 1 2 (op "+"))`, true},
		{"wildcard item", `(expr _ 1)`, `(expr f64 1)`, true},
		{"wildcard list", `(block _ (return))`, `(block (var "x" (expr i32 1)) (return))`, true},
		{"ellipsis tail", `(block (var "x" ...) ...)`, `(block (var "x" (expr i32 1)) (return))`, true},
		{"ellipsis empty", `(params ...)`, `(params)`, true},
		{"ellipsis middle", `(block ... (return))`, `(block (a) (b) (return))`, true},
		{"wrong symbol", `(expr i32)`, `(expr f64)`, false},
		{"wrong length", `(block (return))`, `(block (return) (return))`, false},
		{"string vs symbol", `(var x)`, `(var "x")`, false},
		{"ellipsis no match", `(block ... (return))`, `(block (a) (b))`, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := Match(mustParse(t, test.pattern), mustParse(t, test.actual))
			if test.ok {
				be.Err(t, err, nil)
			} else {
				be.True(t, err != nil)
			}
		})
	}
}

func TestMatchReportsPath(t *testing.T) {
	err := Match(mustParse(t, `(block (return (expr i32 1)))`), mustParse(t, `(block (return (expr i32 2)))`))
	be.Err(t, err, "at root.1.1.2")
}
