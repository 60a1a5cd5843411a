// Package sexy reads S-expressions and test cases written in Markdown, and
// matches compiler output against them.
package sexy

import (
	"fmt"
	"strings"
	"unicode"
)

// NodeType represents the type of a Node
type NodeType int

const (
	NodeSymbol NodeType = iota
	NodeString
	NodeInteger
	NodeEllipsis
	NodeList
)

func (t NodeType) String() string {
	switch t {
	case NodeSymbol:
		return "symbol"
	case NodeString:
		return "string"
	case NodeInteger:
		return "integer"
	case NodeEllipsis:
		return "ellipsis"
	case NodeList:
		return "list"
	default:
		return fmt.Sprintf("NodeType(%d)", int(t))
	}
}

// Node is an S-expression datum.
type Node struct {
	Type NodeType

	// NodeSymbol, NodeString, NodeInteger
	Text string

	// NodeList
	Items []*Node
}

func (n *Node) String() string {
	switch n.Type {
	case NodeSymbol, NodeInteger:
		return n.Text
	case NodeString:
		escaped := strings.ReplaceAll(n.Text, "\\", "\\\\")
		escaped = strings.ReplaceAll(escaped, "\"", "\\\"")
		return "\"" + escaped + "\""
	case NodeEllipsis:
		return "..."
	case NodeList:
		parts := make([]string, len(n.Items))
		for i, item := range n.Items {
			parts[i] = item.String()
		}
		return "(" + strings.Join(parts, " ") + ")"
	default:
		return fmt.Sprintf("UNKNOWN_NODE_TYPE_%d", n.Type)
	}
}

func NewSymbol(name string) *Node {
	return &Node{Type: NodeSymbol, Text: name}
}

func NewString(value string) *Node {
	return &Node{Type: NodeString, Text: value}
}

func NewInteger(text string) *Node {
	return &Node{Type: NodeInteger, Text: text}
}

func NewEllipsis() *Node {
	return &Node{Type: NodeEllipsis}
}

func NewList(items []*Node) *Node {
	return &Node{Type: NodeList, Items: items}
}

// IsAtom checks if the node is an atomic value
func (n *Node) IsAtom() bool {
	return n.Type != NodeList
}

type parser struct {
	lexer        *lexer
	currentToken token
}

// Parse parses input, which must hold exactly one datum.
func Parse(input string) (*Node, error) {
	p := &parser{lexer: newLexer(input)}
	p.nextToken()

	result, err := p.parseDatum()
	if p.lexer.err != nil {
		// Lexer errors take priority because they might cause confusing parser errors.
		return nil, p.lexer.err
	}
	if err != nil {
		return nil, err
	}

	if p.currentToken.Type != tokenEOF {
		return nil, fmt.Errorf("expected EOF but got %s", p.currentToken.Type)
	}

	return result, nil
}

func (p *parser) nextToken() {
	p.currentToken = p.lexer.nextToken()
}

func (p *parser) parseDatum() (*Node, error) {
	tok := p.currentToken
	switch tok.Type {
	case tokenSymbol:
		p.nextToken()
		return NewSymbol(tok.Value), nil
	case tokenString:
		p.nextToken()
		return NewString(tok.Value), nil
	case tokenInteger:
		p.nextToken()
		return NewInteger(tok.Value), nil
	case tokenEllipsis:
		p.nextToken()
		return NewEllipsis(), nil
	case tokenLParen:
		return p.parseList()
	default:
		return nil, fmt.Errorf("unexpected token: %s", tok.Type)
	}
}

func (p *parser) parseList() (*Node, error) {
	items := []*Node{}
	p.nextToken() // consume '('

	for p.currentToken.Type != tokenRParen && p.currentToken.Type != tokenEOF {
		item, err := p.parseDatum()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if p.currentToken.Type != tokenRParen {
		return nil, fmt.Errorf("expected ')' but got %s", p.currentToken.Type)
	}
	p.nextToken() // consume ')'

	return NewList(items), nil
}

type tokenType int

const (
	tokenEOF tokenType = iota
	tokenSymbol
	tokenString
	tokenInteger
	tokenEllipsis
	tokenLParen
	tokenRParen
)

func (t tokenType) String() string {
	switch t {
	case tokenEOF:
		return "EOF"
	case tokenSymbol:
		return "symbol"
	case tokenString:
		return "string"
	case tokenInteger:
		return "integer"
	case tokenEllipsis:
		return "ellipsis"
	case tokenLParen:
		return "'('"
	case tokenRParen:
		return "')'"
	default:
		return fmt.Sprintf("unknown token %d", int(t))
	}
}

type token struct {
	Type     tokenType
	Value    string
	Position int
}

type lexer struct {
	input    string
	position int
	err      error // first error; the lexer then only returns EOF
}

func newLexer(input string) *lexer {
	return &lexer{input: input}
}

func (l *lexer) current() byte {
	if l.position >= len(l.input) {
		return 0
	}
	return l.input[l.position]
}

func (l *lexer) peekChar() byte {
	if l.position+1 >= len(l.input) {
		return 0
	}
	return l.input[l.position+1]
}

func (l *lexer) fail(format string, args ...any) token {
	if l.err == nil {
		l.err = fmt.Errorf(format, args...)
	}
	l.position = len(l.input)
	return token{Type: tokenEOF, Position: l.position}
}

func (l *lexer) readWhile(pred func(byte) bool) string {
	start := l.position
	for l.position < len(l.input) && pred(l.input[l.position]) {
		l.position++
	}
	return l.input[start:l.position]
}

func (l *lexer) readString() (string, error) {
	var b strings.Builder
	l.position++ // skip opening quote

	for l.current() != '"' && l.position < len(l.input) {
		c := l.current()
		if c == '\\' {
			l.position++
			switch l.current() {
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			default:
				return "", fmt.Errorf("invalid escape sequence: \\%c", l.current())
			}
		} else {
			b.WriteByte(c)
		}
		l.position++
	}

	if l.current() != '"' {
		return "", fmt.Errorf("unterminated string")
	}
	l.position++ // skip closing quote

	return b.String(), nil
}

func (l *lexer) nextToken() token {
	for {
		l.readWhile(isSpace)
		pos := l.position

		switch c := l.current(); {
		case l.position >= len(l.input):
			return token{Type: tokenEOF, Position: pos}
		case c == ';':
			l.readWhile(func(c byte) bool { return c != '\n' && c != '\r' })
			continue
		case c == '(':
			l.position++
			return token{Type: tokenLParen, Value: "(", Position: pos}
		case c == ')':
			l.position++
			return token{Type: tokenRParen, Value: ")", Position: pos}
		case c == '"':
			str, err := l.readString()
			if err != nil {
				return l.fail("%v", err)
			}
			return token{Type: tokenString, Value: str, Position: pos}
		case c == '.':
			if strings.HasPrefix(l.input[l.position:], "...") {
				l.position += 3
				return token{Type: tokenEllipsis, Value: "...", Position: pos}
			}
			return l.fail("unexpected character '.'")
		case isDigit(c) || ((c == '-' || c == '+') && isDigit(l.peekChar())):
			l.position++
			l.readWhile(isDigit)
			return token{Type: tokenInteger, Value: l.input[pos:l.position], Position: pos}
		case isSymbolStart(c):
			return token{Type: tokenSymbol, Value: l.readWhile(isSymbolChar), Position: pos}
		default:
			return l.fail("unexpected character '%c'", c)
		}
	}
}

func isSpace(c byte) bool {
	return unicode.IsSpace(rune(c))
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isSymbolStart(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || c == '_' || c == '-' || c == '+'
}

func isSymbolChar(c byte) bool {
	return isSymbolStart(c) || isDigit(c)
}
