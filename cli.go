package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

func showUsage(w io.Writer) {
	fmt.Fprintf(w, `minic - A compiler for a small C subset targeting x86-64 assembly

Usage:
    minic <file>                Compile a file and print the assembly
    minic <command> [arguments]

Commands:
    build <file>    Compile a file to an assembly (.s) file
    run <file>      Compile, assemble with cc, and execute a file
    eval <code>     Compile, assemble, and execute inline code
    check <file>    Parse a file and report errors
    ast <file>      Print the parsed program as an S-expression
    help            Show this help message

Examples:
    minic prog.c > prog.s
    minic build -o prog.s prog.c
    minic run examples/fib.c
    minic eval 'int main() { return 1+2*3; }'

Use "minic <command> -h" for more information about a command.
A file named like a command is compiled by giving its path, as in ./build.
`)
}

// cli holds the streams of one invocation.
type cli struct {
	stdout io.Writer
	stderr io.Writer
}

func newFlagSet(c *cli, name, usage, description string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	fs.Usage = func() {
		fmt.Fprintf(c.stderr, "Usage: minic %s\n", usage)
		fmt.Fprintf(c.stderr, "%s\n\n", description)
		fmt.Fprintf(c.stderr, "Flags:\n")
		fs.PrintDefaults()
	}
	return fs
}

// readSource reads filename, reporting failures on stderr.
func (c *cli) readSource(filename string) (string, bool) {
	sourceBytes, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error reading file %s: %v\n", filename, err)
		return "", false
	}
	return string(sourceBytes), true
}

// compile compiles src and prints a caret diagnostic on failure. A
// non-empty filename adds a "file:line:col: kind" header to the diagnostic.
func (c *cli) compile(src, filename string, verbose bool) (string, bool) {
	asm, err := CompileWithOptions(src, CompileOptions{Verbose: verbose, Log: c.stderr})
	if err != nil {
		fmt.Fprint(c.stderr, FormatDiagnostic(src, filename, err))
		return "", false
	}
	return asm, true
}

// compileFileCommand implements "minic <file>". Errors are reported as the
// source line and a caret line only.
func (c *cli) compileFileCommand(filename string) int {
	src, ok := c.readSource(filename)
	if !ok {
		return 1
	}
	asm, ok := c.compile(src, "", false)
	if !ok {
		return 1
	}
	fmt.Fprint(c.stdout, asm)
	return 0
}

func (c *cli) buildCommand(args []string) int {
	fs := newFlagSet(c, "build", "build [-o output] [-v] <file>", "Compile a file to an assembly (.s) file")
	output := fs.String("o", "", "Output file path (default: <file>.s)")
	verbose := fs.Bool("v", false, "Show verbose compilation details")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(c.stderr, "Error: expected exactly one file argument\n")
		fs.Usage()
		return 1
	}

	filename := fs.Arg(0)
	outputFile := *output
	if outputFile == "" {
		outputFile = strings.TrimSuffix(filename, filepath.Ext(filename)) + ".s"
	}

	if *verbose {
		fmt.Fprintf(c.stderr, "Compiling %s to %s...\n", filename, outputFile)
	}

	src, ok := c.readSource(filename)
	if !ok {
		return 1
	}
	asm, ok := c.compile(src, filename, *verbose)
	if !ok {
		return 1
	}

	if err := os.WriteFile(outputFile, []byte(asm), 0644); err != nil {
		fmt.Fprintf(c.stderr, "Error writing assembly file %s: %v\n", outputFile, err)
		return 1
	}

	if *verbose {
		fmt.Fprintf(c.stderr, "Generated %s (%d bytes)\n", outputFile, len(asm))
	}
	return 0
}

func (c *cli) runCommand(args []string) int {
	fs := newFlagSet(c, "run", "run [-v] <file>", "Compile, assemble with cc, and execute a file")
	verbose := fs.Bool("v", false, "Show verbose compilation details")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(c.stderr, "Error: expected exactly one file argument\n")
		fs.Usage()
		return 1
	}

	filename := fs.Arg(0)
	src, ok := c.readSource(filename)
	if !ok {
		return 1
	}
	return c.execute(src, filename, *verbose)
}

func (c *cli) evalCommand(args []string) int {
	fs := newFlagSet(c, "eval", "eval [-v] <code>", "Compile, assemble, and execute inline code")
	verbose := fs.Bool("v", false, "Show verbose compilation details")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(c.stderr, "Error: expected exactly one code argument\n")
		fs.Usage()
		return 1
	}

	code := fs.Arg(0)
	if *verbose {
		fmt.Fprintf(c.stderr, "Evaluating: %s\n", code)
	}
	return c.execute(code, "", *verbose)
}

// execute compiles src, links it with cc and runs the result. The exit
// status of the program becomes the exit status of minic.
func (c *cli) execute(src, filename string, verbose bool) int {
	asm, ok := c.compile(src, filename, verbose)
	if !ok {
		return 1
	}

	status, err := assembleAndRun(asm, c.stdout, c.stderr)
	if err != nil {
		fmt.Fprintf(c.stderr, "Execution failed: %v\n", err)
		return 1
	}
	if verbose {
		fmt.Fprintf(c.stderr, "Exit status: %d\n", status)
	}
	return status
}

func (c *cli) checkCommand(args []string) int {
	fs := newFlagSet(c, "check", "check [-v] <file>", "Parse a file and report errors")
	verbose := fs.Bool("v", false, "Show verbose checking details")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(c.stderr, "Error: expected exactly one file argument\n")
		fs.Usage()
		return 1
	}

	filename := fs.Arg(0)
	src, ok := c.readSource(filename)
	if !ok {
		return 1
	}

	// Generation is included because it rejects programs too, for example
	// calls with more than six arguments.
	if _, ok := c.compile(src, filename, *verbose); !ok {
		return 1
	}
	fmt.Fprintf(c.stdout, "%s: no errors found\n", filename)
	return 0
}

func (c *cli) astCommand(args []string) int {
	fs := newFlagSet(c, "ast", "ast <file>", "Print the parsed program as an S-expression")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(c.stderr, "Error: expected exactly one file argument\n")
		fs.Usage()
		return 1
	}

	filename := fs.Arg(0)
	src, ok := c.readSource(filename)
	if !ok {
		return 1
	}
	prog, err := parseSource(src, CompileOptions{})
	if err != nil {
		fmt.Fprint(c.stderr, FormatDiagnostic(src, filename, err))
		return 1
	}
	fmt.Fprintln(c.stdout, ProgramToSExpr(prog))
	return 0
}

// assembleAndRun links asm into an executable with cc in a temporary
// directory and runs it, returning its exit status.
func assembleAndRun(asm string, stdout, stderr io.Writer) (int, error) {
	dir, err := os.MkdirTemp("", "minic")
	if err != nil {
		return 0, err
	}
	defer os.RemoveAll(dir)

	asmFile := filepath.Join(dir, "prog.s")
	exeFile := filepath.Join(dir, "prog")
	if err := os.WriteFile(asmFile, []byte(asm), 0644); err != nil {
		return 0, fmt.Errorf("writing assembly: %w", err)
	}

	buildOutput, err := exec.Command("cc", "-o", exeFile, asmFile).CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("cc failed: %w\nOutput: %s", err, buildOutput)
	}

	cmd := exec.Command(exeFile)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	err = cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return 0, err
	}
	return 0, nil
}

// run dispatches one command line and returns the process exit status.
func run(args []string, stdout, stderr io.Writer) int {
	c := &cli{stdout: stdout, stderr: stderr}
	if len(args) < 1 {
		showUsage(stderr)
		return 1
	}

	command := args[0]
	rest := args[1:]

	switch command {
	case "build":
		return c.buildCommand(rest)
	case "run":
		return c.runCommand(rest)
	case "eval":
		return c.evalCommand(rest)
	case "check":
		return c.checkCommand(rest)
	case "ast":
		return c.astCommand(rest)
	case "help", "-h", "--help":
		showUsage(stdout)
		return 0
	}

	if len(args) == 1 && !strings.HasPrefix(command, "-") {
		return c.compileFileCommand(command)
	}
	fmt.Fprintf(stderr, "Unknown command: %s\n\n", command)
	showUsage(stderr)
	return 1
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
