package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func writeSource(t *testing.T, name, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	be.Err(t, os.WriteFile(path, []byte(src), 0644), nil)
	return path
}

func runCLI(args ...string) (status int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	status = run(args, &out, &errOut)
	return status, out.String(), errOut.String()
}

func TestCLINoArguments(t *testing.T) {
	status, stdout, stderr := runCLI()
	be.Equal(t, status, 1)
	be.Equal(t, stdout, "")
	be.True(t, strings.Contains(stderr, "Usage:"))
}

func TestCLIHelp(t *testing.T) {
	status, stdout, _ := runCLI("help")
	be.Equal(t, status, 0)
	be.True(t, strings.Contains(stdout, "Commands:"))
}

func TestCLICompileFile(t *testing.T) {
	path := writeSource(t, "prog.c", "int main() { return 1+2; }")

	status, stdout, stderr := runCLI(path)
	be.Equal(t, status, 0)
	be.Equal(t, stderr, "")
	be.True(t, strings.HasPrefix(stdout, ".intel_syntax noprefix\n"))
	be.True(t, strings.Contains(stdout, "\nmain:\n"))
}

func TestCLICompileError(t *testing.T) {
	path := writeSource(t, "prog.c", "int main() { return x; }")

	status, stdout, stderr := runCLI(path)
	be.Equal(t, status, 1)
	be.Equal(t, stdout, "")
	be.Equal(t, stderr, ""+
		"int main() { return x; }\n"+
		"                    ^ undefined variable 'x'\n")
}

func TestCLICompileErrorMultiLine(t *testing.T) {
	path := writeSource(t, "prog.c", "int main() {\n  return x;\n}\n")

	status, _, stderr := runCLI(path)
	be.Equal(t, status, 1)
	be.Equal(t, stderr, ""+
		"  return x;\n"+
		"         ^ undefined variable 'x'\n")
}

func TestCLICheckErrorHasLocation(t *testing.T) {
	path := writeSource(t, "prog.c", "int main() { return x; }")

	status, _, stderr := runCLI("check", path)
	be.Equal(t, status, 1)
	be.True(t, strings.HasPrefix(stderr, path+":1:21: semantic error\n"))
}

func TestCLIFileNamedLikeCommand(t *testing.T) {
	dir := t.TempDir()
	be.Err(t, os.WriteFile(filepath.Join(dir, "build"), []byte("int main() { return 0; }"), 0644), nil)
	t.Chdir(dir)

	status, stdout, _ := runCLI("./build")
	be.Equal(t, status, 0)
	be.True(t, strings.HasPrefix(stdout, ".intel_syntax noprefix\n"))

	_, stdout, _ = runCLI("help")
	be.True(t, strings.Contains(stdout, "./build"))
}

func TestCLIMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.c")

	status, _, stderr := runCLI(path)
	be.Equal(t, status, 1)
	be.True(t, strings.Contains(stderr, "Error reading file "+path))
}

func TestCLIBuild(t *testing.T) {
	path := writeSource(t, "prog.c", "int main() { return 0; }")
	output := filepath.Join(filepath.Dir(path), "out.s")

	status, _, stderr := runCLI("build", "-o", output, path)
	be.Equal(t, status, 0)
	be.Equal(t, stderr, "")

	asm, err := os.ReadFile(output)
	be.Err(t, err, nil)
	be.True(t, strings.Contains(string(asm), ".global main"))
}

func TestCLIBuildDefaultOutput(t *testing.T) {
	path := writeSource(t, "prog.c", "int main() { return 0; }")

	status, _, stderr := runCLI("build", "-v", path)
	be.Equal(t, status, 0)
	be.True(t, strings.Contains(stderr, "Tokens: 10"))

	_, err := os.Stat(filepath.Join(filepath.Dir(path), "prog.s"))
	be.Err(t, err, nil)
}

func TestCLIBuildUsageErrors(t *testing.T) {
	status, _, stderr := runCLI("build")
	be.Equal(t, status, 1)
	be.True(t, strings.Contains(stderr, "expected exactly one file argument"))

	status, _, _ = runCLI("build", "-unknown", "prog.c")
	be.Equal(t, status, 1)
}

func TestCLICheck(t *testing.T) {
	path := writeSource(t, "ok.c", "int main() { return 0; }")
	status, stdout, _ := runCLI("check", path)
	be.Equal(t, status, 0)
	be.Equal(t, stdout, path+": no errors found\n")

	// Rejected during generation, not parsing.
	path = writeSource(t, "bad.c", "int main() { return f(1, 2, 3, 4, 5, 6, 7); }")
	status, stdout, stderr := runCLI("check", path)
	be.Equal(t, status, 1)
	be.Equal(t, stdout, "")
	be.True(t, strings.Contains(stderr, "too many arguments"))
}

func TestCLIAst(t *testing.T) {
	path := writeSource(t, "prog.c", "int main() { return 1; }")

	status, stdout, _ := runCLI("ast", path)
	be.Equal(t, status, 0)
	be.Equal(t, stdout, `(program (func "main" (params) (locals) (block (return 1))))`+"\n")
}

func TestCLIUnknownCommand(t *testing.T) {
	status, _, stderr := runCLI("frobnicate", "x")
	be.Equal(t, status, 1)
	be.True(t, strings.Contains(stderr, "Unknown command: frobnicate"))
}

func TestCLIEval(t *testing.T) {
	requireToolchain(t)

	status, _, stderr := runCLI("eval", "int main() { return 1+2*3; }")
	be.Equal(t, status, 7)
	be.Equal(t, stderr, "")
}

func TestCLIRun(t *testing.T) {
	requireToolchain(t)

	path := writeSource(t, "prog.c", "int main() { int i = 0; while (i < 5) i = i + 1; return i; }")
	status, _, _ := runCLI("run", path)
	be.Equal(t, status, 5)
}

func TestCLIEvalCompileError(t *testing.T) {
	status, _, stderr := runCLI("eval", "int main() { return 1 }")
	be.Equal(t, status, 1)
	be.True(t, strings.Contains(stderr, "^ expected ';'"))
}
