package main

import (
	"bytes"
	"fmt"
	"io"
	"math"
)

// System V integer argument registers, in order.
var argRegs = []string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"}

// codegen carries all state of one Generate call. Label numbers come from a
// single counter shared by every construct, so labels never collide within
// one output.
type codegen struct {
	buf      bytes.Buffer
	labelSeq int
	funcName string // function being generated, for its return label
}

// Generate lowers prog to x86-64 assembly in Intel syntax. Nothing is
// returned for a program that fails to generate.
func Generate(prog *Program) (asm string, err error) {
	defer catchCompileError(&err)

	g := &codegen{}
	g.program(prog)
	return g.buf.String(), nil
}

// EmitAssembly generates prog and writes it to w. w is not written to if
// generation fails.
func EmitAssembly(w io.Writer, prog *Program) error {
	asm, err := Generate(prog)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, asm)
	return err
}

func (g *codegen) emit(format string, args ...any) {
	g.buf.WriteString("  ")
	fmt.Fprintf(&g.buf, format, args...)
	g.buf.WriteByte('\n')
}

func (g *codegen) label(format string, args ...any) {
	fmt.Fprintf(&g.buf, format, args...)
	g.buf.WriteString(":\n")
}

func (g *codegen) nextLabel() int {
	seq := g.labelSeq
	g.labelSeq++
	return seq
}

func (g *codegen) fail(node *ASTNode, format string, args ...any) {
	pos := 0
	if node != nil && node.Tok != nil {
		pos = node.Tok.Pos
	}
	panic(errorAt(SemanticError, pos, format, args...))
}

func (g *codegen) program(prog *Program) {
	g.buf.WriteString(".intel_syntax noprefix\n")
	for _, fn := range prog.Functions {
		g.function(fn)
	}
}

func (g *codegen) function(fn *Function) {
	if len(fn.Params) > len(argRegs) {
		panic(errorAt(SemanticError, fn.Tok.Pos, "too many parameters: %d (at most %d are supported)", len(fn.Params), len(argRegs)))
	}
	g.funcName = fn.Name

	fmt.Fprintf(&g.buf, ".global %s\n", fn.Name)
	g.label("%s", fn.Name)

	// Prologue
	g.emit("push rbp")
	g.emit("mov rbp, rsp")
	g.emit("sub rsp, %d", fn.StackSize)

	for i, param := range fn.Params {
		g.emit("mov [rbp-%d], %s", param.Offset, argRegs[i])
	}

	for _, stmt := range fn.Body {
		g.stmt(stmt)
	}

	// Epilogue
	g.label(".Lreturn_%s", fn.Name)
	g.emit("mov rsp, rbp")
	g.emit("pop rbp")
	g.emit("ret")
}

// addr pushes the address of an lvalue.
func (g *codegen) addr(node *ASTNode) {
	switch {
	case node != nil && node.Kind == NodeIdent:
		g.emit("lea rax, [rbp-%d]", node.Var.Offset)
		g.emit("push rax")
	case node != nil && node.Kind == NodeUnary && node.Op == "*":
		g.expr(node.Children[0])
	default:
		g.fail(node, "not an lvalue")
	}
}

// load replaces the address on top of the stack with the word it points to.
func (g *codegen) load() {
	g.emit("pop rax")
	g.emit("mov rax, [rax]")
	g.emit("push rax")
}

// store pops a value and an address, stores the value and pushes it back.
func (g *codegen) store() {
	g.emit("pop rdi")
	g.emit("pop rax")
	g.emit("mov [rax], rdi")
	g.emit("push rdi")
}

// expr pushes exactly one word: the value of node.
func (g *codegen) expr(node *ASTNode) {
	if node == nil {
		g.fail(node, "missing expression")
	}

	switch node.Kind {
	case NodeInteger:
		if node.Integer >= math.MinInt32 && node.Integer <= math.MaxInt32 {
			g.emit("push %d", node.Integer)
		} else {
			g.emit("mov rax, %d", node.Integer)
			g.emit("push rax")
		}
		return
	case NodeNoop:
		g.emit("push 0")
		return
	case NodeIdent:
		g.addr(node)
		g.load()
		return
	case NodeUnary:
		switch node.Op {
		case "&":
			g.addr(node.Children[0])
		case "*":
			g.expr(node.Children[0])
			g.load()
		default:
			g.fail(node, "unsupported unary operator '%s'", node.Op)
		}
		return
	case NodeCall:
		g.call(node)
		return
	case NodeBinary:
		if node.Op == "=" {
			g.addr(node.Children[0])
			g.expr(node.Children[1])
			g.store()
			return
		}
	default:
		g.fail(node, "invalid expression")
	}

	g.expr(node.Children[0])
	g.expr(node.Children[1])
	g.emit("pop rdi")
	g.emit("pop rax")

	switch node.Op {
	case "+":
		g.emit("add rax, rdi")
	case "-":
		g.emit("sub rax, rdi")
	case "*":
		g.emit("imul rax, rdi")
	case "/":
		g.emit("cqo")
		g.emit("idiv rdi")
	case "==":
		g.compare("sete")
	case "!=":
		g.compare("setne")
	case "<":
		g.compare("setl")
	case "<=":
		g.compare("setle")
	default:
		g.fail(node, "unsupported binary operator '%s'", node.Op)
	}

	g.emit("push rax")
}

func (g *codegen) compare(set string) {
	g.emit("cmp rax, rdi")
	g.emit("%s al", set)
	g.emit("movzb rax, al")
}

// call evaluates arguments left to right, then pops them into registers in
// reverse so the first argument lands in rdi. rsp must be 16-byte aligned at
// the call instruction; pushes so far may have left it off by one word, which
// is checked at run time.
func (g *codegen) call(node *ASTNode) {
	if len(node.Children) > len(argRegs) {
		g.fail(node, "too many arguments: %d (at most %d are supported)", len(node.Children), len(argRegs))
	}
	for _, arg := range node.Children {
		g.expr(arg)
	}
	for i := len(node.Children) - 1; i >= 0; i-- {
		g.emit("pop %s", argRegs[i])
	}

	seq := g.nextLabel()
	g.emit("mov rax, rsp")
	g.emit("and rax, 15")
	g.emit("jnz .Lcall%d", seq)
	g.emit("mov rax, 0")
	g.emit("call %s", node.String)
	g.emit("jmp .Lend%d", seq)
	g.label(".Lcall%d", seq)
	g.emit("sub rsp, 8")
	g.emit("mov rax, 0")
	g.emit("call %s", node.String)
	g.emit("add rsp, 8")
	g.label(".Lend%d", seq)
	g.emit("push rax")
}

// branchIfFalse pops the condition value and jumps to target when it is 0.
func (g *codegen) branchIfFalse(cond *ASTNode, target string, seq int) {
	g.expr(cond)
	g.emit("pop rax")
	g.emit("cmp rax, 0")
	g.emit("je  %s%d", target, seq)
}

// stmt leaves the stack as it found it.
func (g *codegen) stmt(node *ASTNode) {
	if node == nil {
		g.fail(node, "missing statement")
	}

	switch node.Kind {
	case NodeExprStmt:
		if node.Children[0].Kind == NodeNoop {
			return
		}
		g.expr(node.Children[0])
		g.emit("add rsp, 8")

	case NodeReturn:
		g.expr(node.Children[0])
		g.emit("pop rax")
		g.emit("jmp .Lreturn_%s", g.funcName)

	case NodeIf:
		seq := g.nextLabel()
		if len(node.Children) > 2 {
			g.branchIfFalse(node.Children[0], ".Lelse", seq)
			g.stmt(node.Children[1])
			g.emit("jmp .Lend%d", seq)
			g.label(".Lelse%d", seq)
			g.stmt(node.Children[2])
			g.label(".Lend%d", seq)
		} else {
			g.branchIfFalse(node.Children[0], ".Lend", seq)
			g.stmt(node.Children[1])
			g.label(".Lend%d", seq)
		}

	case NodeWhile:
		seq := g.nextLabel()
		g.label(".Lbegin%d", seq)
		g.branchIfFalse(node.Children[0], ".Lend", seq)
		g.stmt(node.Children[1])
		g.emit("jmp .Lbegin%d", seq)
		g.label(".Lend%d", seq)

	case NodeFor:
		init, cond, inc, body := node.Children[0], node.Children[1], node.Children[2], node.Children[3]
		seq := g.nextLabel()
		if init != nil {
			g.stmt(init)
		}
		g.label(".Lbegin%d", seq)
		if cond != nil {
			g.branchIfFalse(cond, ".Lend", seq)
		}
		g.stmt(body)
		if inc != nil {
			g.stmt(inc)
		}
		g.emit("jmp .Lbegin%d", seq)
		g.label(".Lend%d", seq)

	case NodeBlock:
		for _, child := range node.Children {
			g.stmt(child)
		}

	default:
		g.fail(node, "invalid statement")
	}
}
