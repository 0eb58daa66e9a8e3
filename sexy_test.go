package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nalgeon/be"
	"github.com/strager/ifjc/sexy"
)

func TestSexyAllTests(t *testing.T) {
	testFiles, err := filepath.Glob("test/*_test.md")
	be.Err(t, err, nil)
	be.True(t, len(testFiles) > 0)

	for _, testFile := range testFiles {
		testName := strings.TrimSuffix(filepath.Base(testFile), ".md")

		t.Run(testName, func(t *testing.T) {
			content, err := os.ReadFile(testFile)
			be.Err(t, err, nil)

			testCases, err := sexy.ExtractTestCases(string(content))
			be.Err(t, err, nil)

			for _, tc := range testCases {
				t.Run(tc.Name, func(t *testing.T) {
					runMarkdownCase(t, tc)
				})
			}
		})
	}
}

func runMarkdownCase(t *testing.T, tc sexy.TestCase) {
	src := []byte(tc.Source())
	prog, checkErr := NewCompiler(nil).Check(src)
	code, compileErr := Compile(src)

	for i, assertion := range tc.Assertions {
		t.Run("assertion_"+string(rune('a'+i)), func(t *testing.T) {
			switch assertion.Type {
			case sexy.AssertionTypeAST:
				be.Err(t, checkErr, nil)
				actual, err := sexy.Parse(caseTree(prog, tc.InputType))
				be.Err(t, err, nil)
				if err := sexy.Match(assertion.ParsedSexy, actual); err != nil {
					t.Errorf("line %d: %v", tc.Line, err)
				}

			case sexy.AssertionTypeCode:
				be.Err(t, compileErr, nil)
				if !sexy.ContainsLines(strings.Split(code, "\n"), assertion.CodeLines()) {
					t.Errorf("line %d: generated code does not contain:\n%s\n\ngot:\n%s", tc.Line, assertion.Content, code)
				}

			case sexy.AssertionTypeCompileError:
				want, ok := ParseErrorKind(strings.TrimSpace(assertion.Content))
				be.True(t, ok)
				be.Err(t, compileErr)
				be.Equal(t, KindOf(compileErr), want)
			}
		})
	}
}

// caseTree renders the whole program, or only main's body for statement
// snippets.
func caseTree(prog *Program, inputType sexy.InputType) string {
	if inputType == sexy.InputTypeMain {
		for _, fn := range prog.Funcs {
			if fn.Name == "main" {
				return bodyToSExpr(fn.Body)
			}
		}
	}
	return ToSExpr(prog)
}
