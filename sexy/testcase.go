package sexy

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// InputType represents the type of input code fence in a test
type InputType string

const (
	// InputTypeProgram is a complete source file.
	InputTypeProgram InputType = "ifj-program"
	// InputTypeMain is the body of main; Source wraps it into a program.
	InputTypeMain InputType = "ifj-main"
)

// AssertionType represents the type of assertion code fence in a test
type AssertionType string

const (
	// AssertionTypeAST is an s-expression pattern matched against the tree.
	AssertionTypeAST AssertionType = "ast"
	// AssertionTypeCode lists instruction lines that must appear, in order and
	// adjacent, in the generated code.
	AssertionTypeCode AssertionType = "ifjcode"
	// AssertionTypeCompileError names the error kind compilation must fail with.
	AssertionTypeCompileError AssertionType = "compile-error"
)

// Assertion represents a single assertion in a test
type Assertion struct {
	Type       AssertionType
	Content    string
	ParsedSexy *Node // set for AssertionTypeAST
}

// TestCase represents a complete test case extracted from Markdown
type TestCase struct {
	Name       string // heading text after "Test: "
	Line       int    // line of the heading
	Input      string
	InputType  InputType
	Assertions []Assertion
}

const mainPrologue = "const ifj = @import(\"ifj24.zig\");\npub fn main() void {\n"

// Source returns the complete program text for the test input.
func (tc *TestCase) Source() string {
	if tc.InputType == InputTypeMain {
		return mainPrologue + tc.Input + "\n}\n"
	}
	return tc.Input
}

// ExtractTestCases parses a Markdown document and extracts all test cases
func ExtractTestCases(markdownContent string) ([]TestCase, error) {
	md := goldmark.New()
	source := []byte(markdownContent)
	doc := md.Parser().Parse(text.NewReader(source))

	var testCases []TestCase
	var current *TestCase

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Heading:
			headingText := extractTextFromNode(n, source)
			if !strings.HasPrefix(headingText, "Test: ") {
				return ast.WalkContinue, nil
			}
			if current != nil {
				if err := validateTestCase(current); err != nil {
					return ast.WalkStop, err
				}
				testCases = append(testCases, *current)
			}
			current = &TestCase{
				Name: strings.TrimPrefix(headingText, "Test: "),
				Line: getLineNumber(n, source),
			}

		case *ast.FencedCodeBlock:
			language := string(n.Language(source))
			content := extractCodeBlockContent(n, source)
			lineNum := getLineNumber(n, source)

			if current == nil {
				if language != "" {
					return ast.WalkStop, fmt.Errorf("line %d: %s fence found outside of test case", lineNum, language)
				}
				return ast.WalkContinue, nil
			}

			switch {
			case isInputFence(language):
				if current.Input != "" {
					return ast.WalkStop, fmt.Errorf("line %d: multiple input fences found in test '%s'", lineNum, current.Name)
				}
				current.Input = strings.TrimRight(content, "\n")
				current.InputType = InputType(language)
			case isAssertionFence(language):
				assertion := Assertion{
					Type:    AssertionType(language),
					Content: strings.TrimRight(content, "\n"),
				}
				if assertion.Type == AssertionTypeAST {
					parsed, err := Parse(assertion.Content)
					if err != nil {
						return ast.WalkStop, fmt.Errorf("line %d: failed to parse ast assertion in test '%s': %w", lineNum, current.Name, err)
					}
					assertion.ParsedSexy = parsed
				}
				current.Assertions = append(current.Assertions, assertion)
			case language == "":
				// Plain code blocks are commentary.
			default:
				return ast.WalkStop, fmt.Errorf("line %d: unknown fence language '%s' in test '%s'", lineNum, language, current.Name)
			}
		}

		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking markdown AST: %w", err)
	}

	if current != nil {
		if err := validateTestCase(current); err != nil {
			return nil, err
		}
		testCases = append(testCases, *current)
	}
	return testCases, nil
}

// CodeLines returns the non-empty, trimmed lines of an ifjcode assertion.
func (a Assertion) CodeLines() []string {
	var lines []string
	for _, line := range strings.Split(a.Content, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// ContainsLines reports whether want appears as a contiguous run in got.
func ContainsLines(got, want []string) bool {
	if len(want) == 0 {
		return true
	}
	for start := 0; start+len(want) <= len(got); start++ {
		matched := true
		for i := range want {
			if got[start+i] != want[i] {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}
	return false
}

func extractTextFromNode(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if text, ok := n.(*ast.Text); ok {
				buf.Write(text.Segment.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func extractCodeBlockContent(codeBlock *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	for i := 0; i < codeBlock.Lines().Len(); i++ {
		line := codeBlock.Lines().At(i)
		buf.Write(line.Value(source))
	}
	return buf.String()
}

func isInputFence(language string) bool {
	return language == string(InputTypeProgram) || language == string(InputTypeMain)
}

func isAssertionFence(language string) bool {
	switch AssertionType(language) {
	case AssertionTypeAST, AssertionTypeCode, AssertionTypeCompileError:
		return true
	}
	return false
}

func validateTestCase(testCase *TestCase) error {
	if testCase.Input == "" {
		return fmt.Errorf("test '%s' has no input fence", testCase.Name)
	}
	if len(testCase.Assertions) == 0 {
		return fmt.Errorf("test '%s' has no assertion fences", testCase.Name)
	}
	return nil
}

// getLineNumber returns the 1-based line where node starts.
func getLineNumber(node ast.Node, source []byte) int {
	var startPos int
	switch {
	case node.Lines().Len() > 0:
		startPos = node.Lines().At(0).Start
	case node.HasChildren():
		if t, ok := node.FirstChild().(*ast.Text); ok {
			startPos = t.Segment.Start
		}
	}
	return bytes.Count(source[:min(startPos, len(source))], []byte("\n")) + 1
}
