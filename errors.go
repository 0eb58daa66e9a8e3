package main

import (
	"errors"
	"fmt"
	"io"
)

// ErrorKind classifies a compile failure. Its value is the process exit code.
type ErrorKind int

const (
	ErrLexical        ErrorKind = 1
	ErrSyntax         ErrorKind = 2
	ErrDefinition     ErrorKind = 3
	ErrParamReturn    ErrorKind = 4
	ErrRedefinition   ErrorKind = 5
	ErrReturn         ErrorKind = 6
	ErrType           ErrorKind = 7
	ErrTypeDeduction  ErrorKind = 8
	ErrUnusedVariable ErrorKind = 9
	ErrSemanticOther  ErrorKind = 10
	ErrInternal       ErrorKind = 99
)

var errorKindNames = map[ErrorKind]string{
	ErrLexical:        "lexical",
	ErrSyntax:         "syntax",
	ErrDefinition:     "definition",
	ErrParamReturn:    "parameter-return",
	ErrRedefinition:   "redefinition",
	ErrReturn:         "return",
	ErrType:           "type",
	ErrTypeDeduction:  "type-deduction",
	ErrUnusedVariable: "unused-variable",
	ErrSemanticOther:  "semantic",
	ErrInternal:       "internal",
}

func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("error-%d", int(k))
}

// ExitCode is the process exit status reported for this kind of failure.
func (k ErrorKind) ExitCode() int {
	return int(k)
}

// ParseErrorKind accepts either a kind name ("unused-variable") or its exit
// code ("9").
func ParseErrorKind(s string) (ErrorKind, bool) {
	for kind, name := range errorKindNames {
		if name == s || fmt.Sprint(int(kind)) == s {
			return kind, true
		}
	}
	return 0, false
}

// CompileError is the single diagnostic that stops a compilation.
type CompileError struct {
	Kind ErrorKind
	Pos  Position
	Msg  string
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s error at %s: %s", e.Kind, e.Pos, e.Msg)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Msg)
}

func newError(kind ErrorKind, pos Position, format string, args ...any) *CompileError {
	return &CompileError{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// ExitCode maps err to the process exit status: 0 for nil, the error kind for
// a CompileError, and the internal-error code for anything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var cerr *CompileError
	if errors.As(err, &cerr) {
		return cerr.Kind.ExitCode()
	}
	return ErrInternal.ExitCode()
}

// KindOf returns the error kind carried by err, or ErrInternal.
func KindOf(err error) ErrorKind {
	var cerr *CompileError
	if errors.As(err, &cerr) {
		return cerr.Kind
	}
	return ErrInternal
}

// DisplayError writes a one-line diagnostic for err, prefixed by the file name.
func DisplayError(w io.Writer, filename string, err error) {
	var cerr *CompileError
	if errors.As(err, &cerr) && cerr.Pos.IsValid() {
		fmt.Fprintf(w, "%s:%s: %s error: %s\n", filename, cerr.Pos, cerr.Kind, cerr.Msg)
		return
	}
	fmt.Fprintf(w, "%s: %v\n", filename, err)
}

// bailout carries a CompileError through a panic so deeply nested parsing code
// can stop at the first violation.
type bailout struct {
	err *CompileError
}

// recoverBailout turns a bailout panic into *errp. Other panics propagate.
func recoverBailout(errp *error) {
	if r := recover(); r != nil {
		b, ok := r.(bailout)
		if !ok {
			panic(r)
		}
		*errp = b.err
	}
}
