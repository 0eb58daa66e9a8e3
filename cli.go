package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"
)

const usage = `ifjc - compiles IFJ24 programs to IFJcode24

Usage:
    ifjc < program.zig > program.code
    ifjc <command> [arguments]

Commands:
    build [-o out] [-v] [file]    Compile a file (or stdin) to IFJcode24
    check [-v] [-j N] <file>...   Type-check files without generating code
    ast [file]                    Print the checked tree as an s-expression
    tokens [file]                 Print the token stream
    eval [-v] <code>              Compile statements as the body of main
    help                          Show this help message

Without a command the program is read from stdin and the code written to
stdout. The exit status is the error kind: 1 lexical, 2 syntax, 3 undefined,
4 parameter/return, 5 redefinition, 6 return, 7 type, 8 type deduction,
9 unused variable, 10 other semantic, 99 internal.

Use "ifjc <command> -h" for more information about a command.
`

// cli bundles the process streams so commands can be run from tests.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

var usageExit = ErrInternal.ExitCode()

func (c *cli) run(args []string) int {
	if len(args) == 0 {
		return c.compile("-", "-", false)
	}

	command, rest := args[0], args[1:]
	switch command {
	case "build":
		return c.buildCommand(rest)
	case "check":
		return c.checkCommand(rest)
	case "ast":
		return c.astCommand(rest)
	case "tokens":
		return c.tokensCommand(rest)
	case "eval":
		return c.evalCommand(rest)
	case "help", "-h", "--help":
		fmt.Fprint(c.stdout, usage)
		return 0
	default:
		fmt.Fprintf(c.stderr, "Unknown command: %s\n\n", command)
		fmt.Fprint(c.stderr, usage)
		return usageExit
	}
}

func (c *cli) flagSet(name, synopsis, description string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	fs.Usage = func() {
		fmt.Fprintf(c.stderr, "Usage: ifjc %s %s\n", name, synopsis)
		fmt.Fprintf(c.stderr, "%s\n\n", description)
		fmt.Fprintf(c.stderr, "Flags:\n")
		fs.PrintDefaults()
	}
	return fs
}

func (c *cli) logger(verbose bool) *log.Logger {
	if !verbose {
		return nil
	}
	return log.New(c.stderr, "ifjc: ", 0)
}

// readSource reads a file, or stdin when name is "-".
func (c *cli) readSource(name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(c.stdin)
	}
	return os.ReadFile(name)
}

// singleInput returns the optional file argument, defaulting to stdin.
func (c *cli) singleInput(fs *flag.FlagSet) (string, bool) {
	switch fs.NArg() {
	case 0:
		return "-", true
	case 1:
		return fs.Arg(0), true
	}
	fmt.Fprintf(c.stderr, "Error: expected at most one file argument\n")
	fs.Usage()
	return "", false
}

func (c *cli) buildCommand(args []string) int {
	fs := c.flagSet("build", "[-o output] [-v] [file]", "Compile a file (or stdin) to IFJcode24")
	output := fs.String("o", "-", "Output file path (- for stdout)")
	verbose := fs.Bool("v", false, "Trace compilation stages on stderr")
	if err := fs.Parse(args); err != nil {
		return usageExit
	}
	input, ok := c.singleInput(fs)
	if !ok {
		return usageExit
	}
	return c.compile(input, *output, *verbose)
}

func (c *cli) compile(input, output string, verbose bool) int {
	src, err := c.readSource(input)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error reading %s: %v\n", input, err)
		return usageExit
	}

	code, err := NewCompiler(c.logger(verbose)).Compile(src)
	if err != nil {
		DisplayError(c.stderr, input, err)
		return ExitCode(err)
	}

	if output == "-" {
		fmt.Fprint(c.stdout, code)
		return 0
	}
	if err := os.WriteFile(output, []byte(code), 0644); err != nil {
		fmt.Fprintf(c.stderr, "Error writing %s: %v\n", output, err)
		return usageExit
	}
	return 0
}

func (c *cli) checkCommand(args []string) int {
	fs := c.flagSet("check", "[-v] [-j N] <file>...", "Type-check files without generating code")
	verbose := fs.Bool("v", false, "Trace compilation stages on stderr")
	jobs := fs.Int("j", runtime.NumCPU(), "Number of files checked at once")
	if err := fs.Parse(args); err != nil {
		return usageExit
	}
	if fs.NArg() == 0 {
		fmt.Fprintf(c.stderr, "Error: expected at least one file argument\n")
		fs.Usage()
		return usageExit
	}
	files := fs.Args()

	// Each file gets its own compiler and log buffer; output is printed in
	// argument order once every file is done.
	results := make([]error, len(files))
	traces := make([]bytes.Buffer, len(files))
	var g errgroup.Group
	g.SetLimit(max(*jobs, 1))
	for i, name := range files {
		g.Go(func() error {
			src, err := c.readSource(name)
			if err != nil {
				results[i] = err
				return nil
			}
			var logger *log.Logger
			if *verbose {
				logger = log.New(&traces[i], "ifjc: "+name+": ", 0)
			}
			_, results[i] = NewCompiler(logger).Check(src)
			return nil
		})
	}
	g.Wait()

	status := 0
	for i, name := range files {
		c.stderr.Write(traces[i].Bytes())
		if err := results[i]; err != nil {
			DisplayError(c.stderr, name, err)
			if status == 0 {
				status = ExitCode(err)
			}
			continue
		}
		fmt.Fprintf(c.stdout, "%s: ok\n", name)
	}
	return status
}

func (c *cli) astCommand(args []string) int {
	fs := c.flagSet("ast", "[file]", "Print the checked tree as an s-expression")
	if err := fs.Parse(args); err != nil {
		return usageExit
	}
	input, ok := c.singleInput(fs)
	if !ok {
		return usageExit
	}
	src, err := c.readSource(input)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error reading %s: %v\n", input, err)
		return usageExit
	}
	prog, err := NewCompiler(nil).Check(src)
	if err != nil {
		DisplayError(c.stderr, input, err)
		return ExitCode(err)
	}
	fmt.Fprintln(c.stdout, ToSExpr(prog))
	return 0
}

func (c *cli) tokensCommand(args []string) int {
	fs := c.flagSet("tokens", "[file]", "Print the token stream")
	if err := fs.Parse(args); err != nil {
		return usageExit
	}
	input, ok := c.singleInput(fs)
	if !ok {
		return usageExit
	}
	src, err := c.readSource(input)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error reading %s: %v\n", input, err)
		return usageExit
	}
	tokens, err := Lex(src)
	if err != nil {
		DisplayError(c.stderr, input, err)
		return ExitCode(err)
	}
	for _, tok := range tokens {
		fmt.Fprintf(c.stdout, "%s\t%s\n", tok.Pos, tok)
	}
	return 0
}

// evalPrologue opens the program that eval wraps its statements into.
const evalPrologue = "const ifj = @import(\"ifj24.zig\");\npub fn main() void {\n"

func (c *cli) evalCommand(args []string) int {
	fs := c.flagSet("eval", "[-v] <code>", "Compile statements as the body of main")
	verbose := fs.Bool("v", false, "Trace compilation stages on stderr")
	if err := fs.Parse(args); err != nil {
		return usageExit
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(c.stderr, "Error: expected exactly one code argument\n")
		fs.Usage()
		return usageExit
	}

	src := evalPrologue + fs.Arg(0) + "\n}\n"
	code, err := NewCompiler(c.logger(*verbose)).Compile([]byte(src))
	if err != nil {
		DisplayError(c.stderr, "<eval>", err)
		return ExitCode(err)
	}
	fmt.Fprint(c.stdout, code)
	return 0
}

func main() {
	c := &cli{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	os.Exit(c.run(os.Args[1:]))
}
