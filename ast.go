package main

import (
	"strconv"
	"strings"
)

// NodeKind represents different types of AST nodes
type NodeKind string

const (
	NodeInteger  NodeKind = "NodeInteger"
	NodeIdent    NodeKind = "NodeIdent"
	NodeBinary   NodeKind = "NodeBinary"
	NodeUnary    NodeKind = "NodeUnary"
	NodeCall     NodeKind = "NodeCall"
	NodeIf       NodeKind = "NodeIf"
	NodeWhile    NodeKind = "NodeWhile"
	NodeFor      NodeKind = "NodeFor"
	NodeBlock    NodeKind = "NodeBlock"
	NodeExprStmt NodeKind = "NodeExprStmt"
	NodeReturn   NodeKind = "NodeReturn"
	NodeNoop     NodeKind = "NodeNoop"
)

// ASTNode represents a node in the Abstract Syntax Tree
type ASTNode struct {
	Kind NodeKind
	Tok  *Token // originating token, for diagnostics

	// NodeInteger:
	Integer int64
	// NodeIdent (variable name), NodeCall (callee name):
	String string
	// NodeIdent:
	Var *Variable
	// NodeBinary: "+", "-", "*", "/", "==", "!=", "<", "<=", "="
	// NodeUnary: "&", "*"
	Op string

	// Operands, arguments or sub-statements in source order. NodeFor always
	// has four children (init, cond, inc, body); absent clauses are nil.
	Children []*ASTNode
}

// Variable is a local variable or parameter of a function.
type Variable struct {
	Name   string
	Offset int // distance below rbp
}

// Function is one function definition. Params is a prefix of Locals and
// shares its *Variable values.
type Function struct {
	Name      string
	Tok       *Token
	Params    []*Variable
	Locals    []*Variable
	Body      []*ASTNode
	StackSize int
}

// Program is a whole compilation unit in source order.
type Program struct {
	Functions []*Function
}

// ToSExpr converts an AST node to s-expression string representation
func ToSExpr(node *ASTNode) string {
	if node == nil {
		return "nil"
	}
	switch node.Kind {
	case NodeInteger:
		return strconv.FormatInt(node.Integer, 10)
	case NodeIdent:
		return "(var " + strconv.Quote(node.String) + ")"
	case NodeBinary:
		return "(binary " + strconv.Quote(node.Op) + " " + ToSExpr(node.Children[0]) + " " + ToSExpr(node.Children[1]) + ")"
	case NodeUnary:
		return "(unary " + strconv.Quote(node.Op) + " " + ToSExpr(node.Children[0]) + ")"
	case NodeCall:
		return listSExpr("call "+strconv.Quote(node.String), node.Children)
	case NodeIf:
		return listSExpr("if", node.Children)
	case NodeWhile:
		return listSExpr("while", node.Children)
	case NodeFor:
		return listSExpr("for", node.Children)
	case NodeBlock:
		return listSExpr("block", node.Children)
	case NodeExprStmt:
		return "(expr " + ToSExpr(node.Children[0]) + ")"
	case NodeReturn:
		return "(return " + ToSExpr(node.Children[0]) + ")"
	case NodeNoop:
		return "(noop)"
	default:
		return ""
	}
}

func listSExpr(head string, children []*ASTNode) string {
	var b strings.Builder
	b.WriteString("(")
	b.WriteString(head)
	for _, child := range children {
		b.WriteString(" ")
		b.WriteString(ToSExpr(child))
	}
	b.WriteString(")")
	return b.String()
}

func namesSExpr(head string, vars []*Variable) string {
	var b strings.Builder
	b.WriteString("(")
	b.WriteString(head)
	for _, v := range vars {
		b.WriteString(" ")
		b.WriteString(strconv.Quote(v.Name))
	}
	b.WriteString(")")
	return b.String()
}

// FuncToSExpr renders a function as
// (func "name" (params ...) (locals ...) (block stmts...)).
func FuncToSExpr(fn *Function) string {
	return "(func " + strconv.Quote(fn.Name) + " " +
		namesSExpr("params", fn.Params) + " " +
		namesSExpr("locals", fn.Locals) + " " +
		listSExpr("block", fn.Body) + ")"
}

// ProgramToSExpr renders a whole program as (program funcs...).
func ProgramToSExpr(prog *Program) string {
	var b strings.Builder
	b.WriteString("(program")
	for _, fn := range prog.Functions {
		b.WriteString(" ")
		b.WriteString(FuncToSExpr(fn))
	}
	b.WriteString(")")
	return b.String()
}
