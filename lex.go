package main

import "strconv"

// TokenKind is the lexical class of a token.
type TokenKind string

const (
	RESERVED TokenKind = "RESERVED" // keywords and punctuators
	IDENT    TokenKind = "IDENT"    // main, foo, _bar
	INT      TokenKind = "INT"      // 12345
	EOF      TokenKind = "EOF"
)

// Token is one lexical unit. Tokens are produced once by Tokenize and
// referenced by AST nodes for diagnostics.
type Token struct {
	Kind    TokenKind
	Literal string // exact source text
	Value   int64  // only meaningful when Kind == INT
	Pos     int    // byte offset of the first character
	Len     int
}

var keywords = map[string]bool{
	"return": true,
	"if":     true,
	"else":   true,
	"while":  true,
	"for":    true,
	"int":    true,
}

// Two-character punctuators must be tried before their one-character
// prefixes.
var punctuators2 = []string{"==", "!=", "<=", ">="}

const punctuators1 = "+-*/()<>;={},&"

type lexer struct {
	input  string
	pos    int
	tokens []Token
}

// Tokenize converts src into a token sequence terminated by an EOF token.
func Tokenize(src string) ([]Token, error) {
	l := &lexer{input: src}
	if err := l.run(); err != nil {
		return nil, err
	}
	return l.tokens, nil
}

func (l *lexer) run() error {
	for {
		if err := l.skipWhitespaceAndComments(); err != nil {
			return err
		}
		if l.pos >= len(l.input) {
			l.emit(EOF, l.pos, l.pos)
			return nil
		}

		c := l.input[l.pos]
		start := l.pos

		if isLetter(c) {
			lit := l.readIdentifier()
			if keywords[lit] {
				l.emit(RESERVED, start, l.pos)
			} else {
				l.emit(IDENT, start, l.pos)
			}
			continue
		}

		if isDigit(c) {
			lit := l.readNumber()
			val, err := strconv.ParseInt(lit, 10, 64)
			if err != nil {
				return errorAt(LexError, start, "number out of range")
			}
			l.emit(INT, start, l.pos)
			l.tokens[len(l.tokens)-1].Value = val
			continue
		}

		if l.readPunctuator() {
			l.emit(RESERVED, start, l.pos)
			continue
		}

		return errorAt(LexError, start, "invalid token")
	}
}

func (l *lexer) emit(kind TokenKind, start, end int) {
	l.tokens = append(l.tokens, Token{
		Kind:    kind,
		Literal: l.input[start:end],
		Pos:     start,
		Len:     end - start,
	})
}

func (l *lexer) peekByte(offset int) byte {
	if l.pos+offset >= len(l.input) {
		return 0
	}
	return l.input[l.pos+offset]
}

func (l *lexer) skipWhitespaceAndComments() error {
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		switch {
		case isSpace(c):
			l.pos++
		case c == '/' && l.peekByte(1) == '/':
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.pos++
			}
		case c == '/' && l.peekByte(1) == '*':
			start := l.pos
			l.pos += 2 // skip /*
			for l.pos < len(l.input) && !(l.input[l.pos] == '*' && l.peekByte(1) == '/') {
				l.pos++
			}
			if l.pos >= len(l.input) {
				return errorAt(LexError, start, "unclosed block comment")
			}
			l.pos += 2 // skip */
		default:
			return nil
		}
	}
	return nil
}

func (l *lexer) readPunctuator() bool {
	for _, p := range punctuators2 {
		if l.pos+len(p) <= len(l.input) && l.input[l.pos:l.pos+len(p)] == p {
			l.pos += len(p)
			return true
		}
	}
	for i := 0; i < len(punctuators1); i++ {
		if l.input[l.pos] == punctuators1[i] {
			l.pos++
			return true
		}
	}
	return false
}

func (l *lexer) readIdentifier() string {
	start := l.pos
	for l.pos < len(l.input) && (isLetter(l.input[l.pos]) || isDigit(l.input[l.pos])) {
		l.pos++
	}
	return l.input[start:l.pos]
}

func (l *lexer) readNumber() string {
	start := l.pos
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
	return l.input[start:l.pos]
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || c == '_'
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}
