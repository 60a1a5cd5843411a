package sexy

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// InputType represents the type of input code fence in a Sexy test
type InputType string

const (
	InputTypeCExpr    InputType = "c-expr"
	InputTypeCProgram InputType = "c-program"
)

// AssertionType represents the type of assertion code fence in a Sexy test
type AssertionType string

const (
	AssertionTypeAST          AssertionType = "ast"
	AssertionTypeExecute      AssertionType = "execute"
	AssertionTypeCompileError AssertionType = "compile-error"
	AssertionTypeAsm          AssertionType = "asm"
)

// Assertion represents a single assertion in a Sexy test
type Assertion struct {
	Type       AssertionType
	Content    string        // raw fence content
	ParsedSexy *Node         // ast: parsed pattern
	Lines      []LinePattern // asm: compiled line patterns
	Line       int           // line of the fence in the Markdown document
}

// TestCase represents a complete Sexy test case extracted from Markdown
type TestCase struct {
	Name       string // heading text after "Test: "
	Input      string
	InputType  InputType
	Assertions []Assertion
}

const testHeadingPrefix = "Test: "

type extractor struct {
	source  []byte
	cases   []TestCase
	current *TestCase
}

// ExtractTestCases parses a Markdown document and extracts all test cases.
// A test case starts at a heading "Test: <name>" and holds exactly one input
// fence (c-expr or c-program) and at least one assertion fence. Fences
// without a language are ignored; any other fence language is an error.
func ExtractTestCases(markdownContent string) ([]TestCase, error) {
	e := &extractor{source: []byte(markdownContent)}
	doc := goldmark.New().Parser().Parse(text.NewReader(e.source))

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		var err error
		switch n := node.(type) {
		case *ast.Heading:
			err = e.heading(n)
		case *ast.FencedCodeBlock:
			err = e.fence(n)
		}
		if err != nil {
			return ast.WalkStop, err
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking markdown AST: %w", err)
	}

	if err := e.finish(); err != nil {
		return nil, err
	}
	return e.cases, nil
}

func (e *extractor) heading(n *ast.Heading) error {
	headingText := extractTextFromNode(n, e.source)
	if !strings.HasPrefix(headingText, testHeadingPrefix) {
		return nil
	}
	if err := e.finish(); err != nil {
		return err
	}
	e.current = &TestCase{
		Name:       strings.TrimPrefix(headingText, testHeadingPrefix),
		Assertions: []Assertion{},
	}
	return nil
}

// finish validates and stores the test case being built, if any.
func (e *extractor) finish() error {
	if e.current == nil {
		return nil
	}
	if e.current.Input == "" {
		return fmt.Errorf("test '%s' has no input fence", e.current.Name)
	}
	if len(e.current.Assertions) == 0 {
		return fmt.Errorf("test '%s' has no assertion fences", e.current.Name)
	}
	e.cases = append(e.cases, *e.current)
	e.current = nil
	return nil
}

func (e *extractor) fence(n *ast.FencedCodeBlock) error {
	language := string(n.Language(e.source))
	lineNum := getLineNumber(n, e.source)
	if language == "" {
		return nil
	}

	known := isInputFence(language) || isAssertionFence(language)
	if e.current == nil {
		if known {
			return fmt.Errorf("line %d: %s fence found outside of test case", lineNum, language)
		}
		return fmt.Errorf("line %d: unknown fence language '%s' found outside of test case", lineNum, language)
	}
	if !known {
		return fmt.Errorf("line %d: unknown fence language '%s' in test '%s'", lineNum, language, e.current.Name)
	}

	content := strings.TrimRight(extractCodeBlockContent(n, e.source), "\n")

	if isInputFence(language) {
		if e.current.Input != "" {
			return fmt.Errorf("line %d: multiple input fences found in test '%s'", lineNum, e.current.Name)
		}
		e.current.Input = content
		e.current.InputType = InputType(language)
		return nil
	}

	assertion := Assertion{Type: AssertionType(language), Content: content, Line: lineNum}
	switch assertion.Type {
	case AssertionTypeAST:
		parsed, err := Parse(content)
		if err != nil {
			return fmt.Errorf("line %d: failed to parse Sexy assertion in test '%s': %w", lineNum, e.current.Name, err)
		}
		assertion.ParsedSexy = parsed
	case AssertionTypeAsm:
		lines, err := CompileLinePatterns(content)
		if err != nil {
			return fmt.Errorf("line %d: bad asm assertion in test '%s': %w", lineNum, e.current.Name, err)
		}
		assertion.Lines = lines
	}
	e.current.Assertions = append(e.current.Assertions, assertion)
	return nil
}

// extractTextFromNode extracts plain text content from a markdown node
func extractTextFromNode(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if t, ok := n.(*ast.Text); ok {
				buf.Write(t.Segment.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func extractCodeBlockContent(codeBlock *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	lines := codeBlock.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(source))
	}
	return buf.String()
}

func isInputFence(language string) bool {
	switch InputType(language) {
	case InputTypeCExpr, InputTypeCProgram:
		return true
	}
	return false
}

func isAssertionFence(language string) bool {
	switch AssertionType(language) {
	case AssertionTypeAST, AssertionTypeExecute, AssertionTypeCompileError, AssertionTypeAsm:
		return true
	}
	return false
}

// getLineNumber returns the 1-based line of the first content line of node.
func getLineNumber(node ast.Node, source []byte) int {
	if node.Lines().Len() == 0 {
		return 1
	}
	startPos := node.Lines().At(0).Start
	return 1 + bytes.Count(source[:min(startPos, len(source))], []byte("\n"))
}
