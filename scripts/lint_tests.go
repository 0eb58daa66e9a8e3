// lint_tests checks the Markdown test corpus: every file must parse, test
// names must be unique within a file, and every compile-error block must
// name exactly one error kind.
//
// Usage: go run ./scripts [glob]
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/strager/ifjc/sexy"
)

var errorKinds = map[string]bool{
	"lexical": true, "syntax": true, "definition": true, "parameter-return": true,
	"redefinition": true, "return": true, "type": true, "type-deduction": true,
	"unused-variable": true, "semantic": true, "internal": true,
	"1": true, "2": true, "3": true, "4": true, "5": true, "6": true,
	"7": true, "8": true, "9": true, "10": true, "99": true,
}

type summary struct {
	cases      int
	assertions map[sexy.AssertionType]int
}

func lintFile(path string, sum *summary) []string {
	content, err := os.ReadFile(path)
	if err != nil {
		return []string{err.Error()}
	}
	cases, err := sexy.ExtractTestCases(string(content))
	if err != nil {
		return []string{fmt.Sprintf("%s: %v", path, err)}
	}

	var problems []string
	seen := map[string]int{}
	for _, tc := range cases {
		if prev, ok := seen[tc.Name]; ok {
			problems = append(problems, fmt.Sprintf("%s:%d: test %q already defined at line %d", path, tc.Line, tc.Name, prev))
		}
		seen[tc.Name] = tc.Line

		hasError := false
		for _, a := range tc.Assertions {
			sum.assertions[a.Type]++
			if a.Type != sexy.AssertionTypeCompileError {
				continue
			}
			if hasError {
				problems = append(problems, fmt.Sprintf("%s:%d: test %q has more than one compile-error block", path, tc.Line, tc.Name))
			}
			hasError = true
			if kind := strings.TrimSpace(a.Content); !errorKinds[kind] {
				problems = append(problems, fmt.Sprintf("%s:%d: unknown error kind %q", path, tc.Line, kind))
			}
		}
		if hasError && len(tc.Assertions) > 1 {
			problems = append(problems, fmt.Sprintf("%s:%d: test %q mixes compile-error with other assertions", path, tc.Line, tc.Name))
		}
	}
	sum.cases += len(cases)
	return problems
}

func main() {
	pattern := "test/*_test.md"
	if len(os.Args) > 1 {
		pattern = os.Args[1]
	}
	files, err := filepath.Glob(pattern)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "Error: no files match %s\n", pattern)
		os.Exit(1)
	}

	sum := &summary{assertions: map[sexy.AssertionType]int{}}
	var problems []string
	for _, file := range files {
		problems = append(problems, lintFile(file, sum)...)
	}

	var types []string
	for typ, n := range sum.assertions {
		types = append(types, fmt.Sprintf("%s=%d", typ, n))
	}
	sort.Strings(types)
	fmt.Printf("%d files, %d tests, assertions: %s\n", len(files), sum.cases, strings.Join(types, " "))

	for _, p := range problems {
		fmt.Fprintln(os.Stderr, p)
	}
	if len(problems) > 0 {
		os.Exit(1)
	}
}
