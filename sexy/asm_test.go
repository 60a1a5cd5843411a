package sexy

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

const sampleAsm = `.intel_syntax noprefix
.global main
main:
  push rbp
  mov rbp, rsp
  sub rsp, 16
  push 7
  pop rax
  jmp .Lreturn_main
.Lreturn_main:
  mov rsp, rbp
  pop rbp
  ret
`

func TestCompileLinePatterns(t *testing.T) {
	patterns, err := CompileLinePatterns("# prologue\npush rbp\n\n   mov rbp, rsp  \n")
	be.Err(t, err, nil)
	be.Equal(t, len(patterns), 2)
	be.Equal(t, patterns[0].Source, "push rbp")
	be.Equal(t, patterns[1].Source, "mov rbp, rsp")
}

func TestCompileLinePatternsInvalid(t *testing.T) {
	_, err := CompileLinePatterns("push rbp\nmov (rax")
	be.True(t, err != nil)
	be.True(t, strings.HasPrefix(err.Error(), "line 2: invalid pattern"))
}

func TestMatchLinesInOrder(t *testing.T) {
	patterns, err := CompileLinePatterns(`
push rbp
sub rsp, \d+
push 7
jmp \.Lreturn_main
\.Lreturn_main:
ret
`)
	be.Err(t, err, nil)
	be.Err(t, MatchLines(patterns, sampleAsm), nil)
}

func TestMatchLinesOutOfOrder(t *testing.T) {
	patterns, err := CompileLinePatterns("ret\npush rbp")
	be.Err(t, err, nil)
	err = MatchLines(patterns, sampleAsm)
	be.True(t, err != nil)
	be.True(t, strings.Contains(err.Error(), `"push rbp"`))
}

func TestMatchLinesWholeLine(t *testing.T) {
	// "push" alone must not match "push rbp".
	patterns, err := CompileLinePatterns("push")
	be.Err(t, err, nil)
	be.True(t, MatchLines(patterns, sampleAsm) != nil)
}

func TestCountMatches(t *testing.T) {
	patterns, err := CompileLinePatterns("pop r.*\n\\.Lreturn_main:")
	be.Err(t, err, nil)
	be.Equal(t, CountMatches(patterns[0], sampleAsm), 2)
	be.Equal(t, CountMatches(patterns[1], sampleAsm), 1)
}
