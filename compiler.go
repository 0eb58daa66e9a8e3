package main

import (
	"io"
	"log"
	"strings"
)

// Compiler runs the whole pipeline over one source file at a time. A
// Compiler is not safe for concurrent use; create one per goroutine.
type Compiler struct {
	log  *log.Logger
	syms *SymbolTable
}

// NewCompiler returns a compiler that traces its stages to logger. A nil
// logger discards the trace.
func NewCompiler(logger *log.Logger) *Compiler {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Compiler{log: logger, syms: NewSymbolTable()}
}

// Check lexes, parses and type-checks src and returns the program tree.
func (c *Compiler) Check(src []byte) (*Program, error) {
	c.syms.Reset()

	tokens, err := Lex(src)
	if err != nil {
		return nil, err
	}
	c.log.Printf("lexed %d tokens", len(tokens))

	prog, err := Parse(tokens, c.syms, c.log)
	if err != nil {
		return nil, err
	}
	c.log.Printf("checked %d functions", len(prog.Funcs))
	return prog, nil
}

// Compile translates src into IFJcode24. On error nothing is returned.
func (c *Compiler) Compile(src []byte) (string, error) {
	prog, err := c.Check(src)
	if err != nil {
		return "", err
	}
	code, err := Generate(prog)
	if err != nil {
		return "", err
	}
	c.log.Printf("generated %d lines", strings.Count(code, "\n"))
	return code, nil
}

// Compile translates src with a fresh, silent compiler.
func Compile(src []byte) (string, error) {
	return NewCompiler(nil).Compile(src)
}
