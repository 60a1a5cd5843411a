package main

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a compile error.
type ErrorKind string

const (
	LexError      ErrorKind = "lex error"
	SyntaxError   ErrorKind = "syntax error"
	SemanticError ErrorKind = "semantic error"
)

// CompileError is a fatal diagnostic anchored at a byte offset of the source.
type CompileError struct {
	Kind    ErrorKind
	Pos     int // byte offset into the source
	Message string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s at offset %d: %s", e.Kind, e.Pos, e.Message)
}

// Position returns the 1-based line and column of the error in src.
func (e *CompileError) Position(src string) (line, col int) {
	pos := min(max(e.Pos, 0), len(src))
	line = 1 + strings.Count(src[:pos], "\n")
	col = pos - (strings.LastIndexByte(src[:pos], '\n') + 1) + 1
	return line, col
}

func errorAt(kind ErrorKind, pos int, format string, args ...any) *CompileError {
	return &CompileError{Kind: kind, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// failTok aborts the current compilation phase. The panic is recovered by
// catchCompileError at the package boundary.
func failTok(tok *Token, kind ErrorKind, format string, args ...any) {
	panic(errorAt(kind, tok.Pos, format, args...))
}

// catchCompileError converts a *CompileError panic into *err. Other panics
// propagate.
func catchCompileError(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if ce, ok := r.(*CompileError); ok {
		*err = ce
		return
	}
	panic(r)
}

// FormatDiagnostic renders err against src as the offending source line
// followed by a caret under the offending column:
//
//	int main() { return x; }
//	                    ^ undefined variable 'x'
//
// When filename is non-empty a "file:line:col: kind" header is prepended.
// Errors that are not compile errors render as their message.
func FormatDiagnostic(src, filename string, err error) string {
	var ce *CompileError
	if !errors.As(err, &ce) {
		return err.Error() + "\n"
	}

	line, col := ce.Position(src)
	start := 0
	if pos := min(max(ce.Pos, 0), len(src)); pos > 0 {
		start = strings.LastIndexByte(src[:pos], '\n') + 1
	}
	end := strings.IndexByte(src[start:], '\n')
	if end < 0 {
		end = len(src)
	} else {
		end += start
	}
	text := strings.TrimRight(src[start:end], "\r")

	var b strings.Builder
	if filename != "" {
		fmt.Fprintf(&b, "%s:%d:%d: %s\n", filename, line, col, ce.Kind)
	}
	b.WriteString(text)
	b.WriteByte('\n')
	for i := 0; i < col-1 && i < len(text); i++ {
		// Keep tabs so the caret lines up in a terminal.
		if text[i] == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	if col-1 > len(text) {
		b.WriteString(strings.Repeat(" ", col-1-len(text)))
	}
	b.WriteString("^ ")
	b.WriteString(ce.Message)
	b.WriteByte('\n')
	return b.String()
}
