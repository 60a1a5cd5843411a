package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/nalgeon/be"
	"github.com/strager/minic/sexy"
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
					runSexyTestCase(t, tc)
				})
			}
		})
	}
}

// sexySource returns the program a test case compiles. Expressions become
// the return value of main.
func sexySource(tc sexy.TestCase) string {
	if tc.InputType == sexy.InputTypeCExpr {
		return "int main() { return " + tc.Input + "; }"
	}
	return tc.Input
}

func runSexyTestCase(t *testing.T, tc sexy.TestCase) {
	src := sexySource(tc)

	for i, assertion := range tc.Assertions {
		t.Run("assertion_"+string(rune('a'+i)), func(t *testing.T) {
			switch assertion.Type {
			case sexy.AssertionTypeAST:
				assertSexyAST(t, tc, assertion)

			case sexy.AssertionTypeCompileError:
				_, err := Compile(src)
				be.True(t, err != nil)
				diagnostic := FormatDiagnostic(src, "", err)
				if !strings.Contains(diagnostic, assertion.Content) {
					t.Errorf("line %d: diagnostic does not contain %q:\n%s", assertion.Line, assertion.Content, diagnostic)
				}

			case sexy.AssertionTypeAsm:
				asm := mustCompile(t, src)
				if err := sexy.MatchLines(assertion.Lines, asm); err != nil {
					t.Errorf("line %d: %v\n%s", assertion.Line, err, asm)
				}

			case sexy.AssertionTypeExecute:
				requireToolchain(t)
				expected, err := strconv.Atoi(strings.TrimSpace(assertion.Content))
				be.Err(t, err, nil)
				asm := mustCompile(t, src)
				var stdout, stderr bytes.Buffer
				status, err := assembleAndRun(asm, &stdout, &stderr)
				be.Err(t, err, nil)
				if status != expected {
					t.Errorf("line %d: exit status %d, want %d", assertion.Line, status, expected)
				}

			default:
				t.Fatalf("unknown assertion type: %s", assertion.Type)
			}
		})
	}
}

// assertSexyAST matches the parsed input against the assertion pattern. An
// expression input is matched on its own, without the wrapping function.
func assertSexyAST(t *testing.T, tc sexy.TestCase, assertion sexy.Assertion) {
	tokens, err := Tokenize(tc.Input)
	be.Err(t, err, nil)

	var actual string
	switch tc.InputType {
	case sexy.InputTypeCExpr:
		node, err := ParseExpression(tokens, nil)
		be.Err(t, err, nil)
		actual = ToSExpr(node)
	case sexy.InputTypeCProgram:
		prog, err := ParseProgram(tokens)
		be.Err(t, err, nil)
		actual = ProgramToSExpr(prog)
	default:
		t.Fatalf("unknown input type: %s", tc.InputType)
	}

	parsed, err := sexy.Parse(actual)
	be.Err(t, err, nil)
	if err := sexy.Match(assertion.ParsedSexy, parsed); err != nil {
		t.Errorf("line %d: %v\nactual: %s", assertion.Line, err, actual)
	}
}
