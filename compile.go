package main

import (
	"fmt"
	"io"
)

// CompileOptions controls diagnostics output of CompileWithOptions.
type CompileOptions struct {
	// Verbose writes the token count and the parsed program to Log.
	Verbose bool
	Log     io.Writer
}

// Compile translates one source file to assembly text.
func Compile(src string) (string, error) {
	return CompileWithOptions(src, CompileOptions{})
}

func CompileWithOptions(src string, opts CompileOptions) (string, error) {
	prog, err := parseSource(src, opts)
	if err != nil {
		return "", err
	}
	return Generate(prog)
}

// parseSource runs the tokenizer and parser.
func parseSource(src string, opts CompileOptions) (*Program, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	if opts.Verbose && opts.Log != nil {
		fmt.Fprintf(opts.Log, "Tokens: %d\n", len(tokens))
	}

	prog, err := ParseProgram(tokens)
	if err != nil {
		return nil, err
	}
	if opts.Verbose && opts.Log != nil {
		fmt.Fprintf(opts.Log, "AST: %s\n", ProgramToSExpr(prog))
	}
	return prog, nil
}
