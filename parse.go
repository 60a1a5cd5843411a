package main

// Grammar:
//
//	program    = function*
//	function   = "int" "*"* ident "(" params? ")" "{" stmt* "}"
//	params     = param ("," param)*
//	param      = "int" "*"* ident
//	stmt       = "return" expr ";"
//	           | "if" "(" expr ")" stmt ("else" stmt)?
//	           | "while" "(" expr ")" stmt
//	           | "for" "(" expr? ";" expr? ";" expr? ")" stmt
//	           | "{" stmt* "}"
//	           | expr ";"
//	expr       = assign
//	assign     = equality ("=" assign)?
//	equality   = relational (("==" | "!=") relational)*
//	relational = add (("<" | "<=" | ">" | ">=") add)*
//	add        = mul (("+" | "-") mul)*
//	mul        = unary (("*" | "/") unary)*
//	unary      = ("+" | "-" | "&" | "*")? unary | primary
//	primary    = "(" expr ")"
//	           | ident "(" (assign ("," assign)*)? ")"
//	           | "int" "*"* ident ("=" equality)?
//	           | ident
//	           | number
//
// Pointer stars in declarators are accepted and ignored: every value is a
// 64-bit word.

type parser struct {
	tokens []Token
	pos    int

	// Scope of the function being parsed.
	st        *SymbolTable
	funcNames map[string]bool
}

func newParser(tokens []Token) *parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != EOF {
		end := 0
		if len(tokens) > 0 {
			last := tokens[len(tokens)-1]
			end = last.Pos + last.Len
		}
		tokens = append(tokens[:len(tokens):len(tokens)], Token{Kind: EOF, Pos: end})
	}
	return &parser{
		tokens:    tokens,
		st:        NewSymbolTable(),
		funcNames: make(map[string]bool),
	}
}

// ParseProgram parses a whole compilation unit. On error no program is
// returned.
func ParseProgram(tokens []Token) (prog *Program, err error) {
	defer catchCompileError(&err)

	p := newParser(tokens)
	result := &Program{}
	for !p.atEOF() {
		result.Functions = append(result.Functions, p.function())
	}
	return result, nil
}

// ParseExpression parses a single expression that must span all of tokens.
// Variables are resolved and declared in st; a nil st means an empty scope.
func ParseExpression(tokens []Token, st *SymbolTable) (node *ASTNode, err error) {
	defer catchCompileError(&err)

	p := newParser(tokens)
	if st != nil {
		p.st = st
	}
	result := p.expr()
	if !p.atEOF() {
		failTok(p.peek(), SyntaxError, "expected end of input")
	}
	return result, nil
}

func (p *parser) peek() *Token {
	return &p.tokens[p.pos]
}

func (p *parser) advance() *Token {
	tok := p.peek()
	if tok.Kind != EOF {
		p.pos++
	}
	return tok
}

func (p *parser) atEOF() bool {
	return p.peek().Kind == EOF
}

// consume advances past the current token if it is the reserved word or
// punctuator op and returns it; otherwise it returns nil.
func (p *parser) consume(op string) *Token {
	tok := p.peek()
	if tok.Kind != RESERVED || tok.Literal != op {
		return nil
	}
	return p.advance()
}

func (p *parser) expect(op string) *Token {
	tok := p.consume(op)
	if tok == nil {
		failTok(p.peek(), SyntaxError, "expected '%s'", op)
	}
	return tok
}

func (p *parser) expectIdent() *Token {
	tok := p.peek()
	if tok.Kind != IDENT {
		failTok(tok, SyntaxError, "expected an identifier")
	}
	return p.advance()
}

func (p *parser) expectNumber() *Token {
	tok := p.peek()
	if tok.Kind != INT {
		failTok(tok, SyntaxError, "expected a number")
	}
	return p.advance()
}

func (p *parser) skipPointerStars() {
	for p.consume("*") != nil {
	}
}

func (p *parser) declare(tok *Token) *Variable {
	v, err := p.st.DeclareVariable(tok.Literal)
	if err != nil {
		failTok(tok, SemanticError, "%s", err.Error())
	}
	return v
}

// function = "int" "*"* ident "(" params? ")" "{" stmt* "}"
func (p *parser) function() *Function {
	p.st = NewSymbolTable()

	p.expect("int")
	p.skipPointerStars()
	nameTok := p.expectIdent()
	if p.funcNames[nameTok.Literal] {
		failTok(nameTok, SemanticError, "function '%s' already defined", nameTok.Literal)
	}
	p.funcNames[nameTok.Literal] = true

	fn := &Function{Name: nameTok.Literal, Tok: nameTok}

	p.expect("(")
	if p.consume(")") == nil {
		for {
			p.expect("int")
			p.skipPointerStars()
			fn.Params = append(fn.Params, p.declare(p.expectIdent()))
			if p.consume(")") != nil {
				break
			}
			p.expect(",")
		}
	}

	p.expect("{")
	for p.consume("}") == nil {
		fn.Body = append(fn.Body, p.stmt())
	}

	fn.Locals = p.st.Variables()
	fn.StackSize = p.st.StackSize()
	return fn
}

func (p *parser) exprStmt() *ASTNode {
	tok := p.peek()
	return &ASTNode{Kind: NodeExprStmt, Tok: tok, Children: []*ASTNode{p.expr()}}
}

func (p *parser) stmt() *ASTNode {
	if tok := p.consume("return"); tok != nil {
		node := &ASTNode{Kind: NodeReturn, Tok: tok, Children: []*ASTNode{p.expr()}}
		p.expect(";")
		return node
	}

	if tok := p.consume("if"); tok != nil {
		node := &ASTNode{Kind: NodeIf, Tok: tok}
		p.expect("(")
		cond := p.expr()
		p.expect(")")
		node.Children = []*ASTNode{cond, p.stmt()}
		if p.consume("else") != nil {
			node.Children = append(node.Children, p.stmt())
		}
		return node
	}

	if tok := p.consume("while"); tok != nil {
		p.expect("(")
		cond := p.expr()
		p.expect(")")
		return &ASTNode{Kind: NodeWhile, Tok: tok, Children: []*ASTNode{cond, p.stmt()}}
	}

	if tok := p.consume("for"); tok != nil {
		var init, cond, inc *ASTNode
		p.expect("(")
		if p.consume(";") == nil {
			init = p.exprStmt()
			p.expect(";")
		}
		if p.consume(";") == nil {
			cond = p.expr()
			p.expect(";")
		}
		if p.consume(")") == nil {
			inc = p.exprStmt()
			p.expect(")")
		}
		return &ASTNode{Kind: NodeFor, Tok: tok, Children: []*ASTNode{init, cond, inc, p.stmt()}}
	}

	if tok := p.consume("{"); tok != nil {
		node := &ASTNode{Kind: NodeBlock, Tok: tok}
		for p.consume("}") == nil {
			node.Children = append(node.Children, p.stmt())
		}
		return node
	}

	node := p.exprStmt()
	p.expect(";")
	return node
}

func newBinary(op string, lhs, rhs *ASTNode, tok *Token) *ASTNode {
	return &ASTNode{Kind: NodeBinary, Tok: tok, Op: op, Children: []*ASTNode{lhs, rhs}}
}

func newUnary(op string, operand *ASTNode, tok *Token) *ASTNode {
	return &ASTNode{Kind: NodeUnary, Tok: tok, Op: op, Children: []*ASTNode{operand}}
}

func newInteger(val int64, tok *Token) *ASTNode {
	return &ASTNode{Kind: NodeInteger, Tok: tok, Integer: val}
}

func (p *parser) expr() *ASTNode {
	return p.assign()
}

// assign is right-associative: a = b = c is a = (b = c).
func (p *parser) assign() *ASTNode {
	node := p.equality()
	if tok := p.consume("="); tok != nil {
		node = newBinary("=", node, p.assign(), tok)
	}
	return node
}

func (p *parser) equality() *ASTNode {
	node := p.relational()
	for {
		if tok := p.consume("=="); tok != nil {
			node = newBinary("==", node, p.relational(), tok)
		} else if tok := p.consume("!="); tok != nil {
			node = newBinary("!=", node, p.relational(), tok)
		} else {
			return node
		}
	}
}

// relational rewrites a > b as b < a and a >= b as b <= a.
func (p *parser) relational() *ASTNode {
	node := p.add()
	for {
		if tok := p.consume("<"); tok != nil {
			node = newBinary("<", node, p.add(), tok)
		} else if tok := p.consume("<="); tok != nil {
			node = newBinary("<=", node, p.add(), tok)
		} else if tok := p.consume(">"); tok != nil {
			node = newBinary("<", p.add(), node, tok)
		} else if tok := p.consume(">="); tok != nil {
			node = newBinary("<=", p.add(), node, tok)
		} else {
			return node
		}
	}
}

func (p *parser) add() *ASTNode {
	node := p.mul()
	for {
		if tok := p.consume("+"); tok != nil {
			node = newBinary("+", node, p.mul(), tok)
		} else if tok := p.consume("-"); tok != nil {
			node = newBinary("-", node, p.mul(), tok)
		} else {
			return node
		}
	}
}

func (p *parser) mul() *ASTNode {
	node := p.unary()
	for {
		if tok := p.consume("*"); tok != nil {
			node = newBinary("*", node, p.unary(), tok)
		} else if tok := p.consume("/"); tok != nil {
			node = newBinary("/", node, p.unary(), tok)
		} else {
			return node
		}
	}
}

func (p *parser) unary() *ASTNode {
	if p.consume("+") != nil {
		return p.unary()
	}
	if tok := p.consume("-"); tok != nil {
		return newBinary("-", newInteger(0, tok), p.unary(), tok)
	}
	if tok := p.consume("&"); tok != nil {
		return newUnary("&", p.unary(), tok)
	}
	if tok := p.consume("*"); tok != nil {
		return newUnary("*", p.unary(), tok)
	}
	return p.primary()
}

func (p *parser) primary() *ASTNode {
	if p.consume("(") != nil {
		node := p.expr()
		p.expect(")")
		return node
	}

	// Declaration, with or without initializer.
	if p.consume("int") != nil {
		p.skipPointerStars()
		tok := p.expectIdent()
		lvar := &ASTNode{Kind: NodeIdent, Tok: tok, String: tok.Literal, Var: p.declare(tok)}
		if eq := p.consume("="); eq != nil {
			return newBinary("=", lvar, p.equality(), eq)
		}
		return &ASTNode{Kind: NodeNoop, Tok: tok}
	}

	if tok := p.peek(); tok.Kind == IDENT {
		p.advance()
		if p.consume("(") != nil {
			return &ASTNode{Kind: NodeCall, Tok: tok, String: tok.Literal, Children: p.funcArgs()}
		}
		v := p.st.LookupVariable(tok.Literal)
		if v == nil {
			failTok(tok, SemanticError, "undefined variable '%s'", tok.Literal)
		}
		return &ASTNode{Kind: NodeIdent, Tok: tok, String: tok.Literal, Var: v}
	}

	if p.peek().Kind != INT {
		failTok(p.peek(), SyntaxError, "expected an expression")
	}
	tok := p.expectNumber()
	return newInteger(tok.Value, tok)
}

// funcArgs parses the arguments after "(" up to and including ")". The
// grammar places no limit on their number.
func (p *parser) funcArgs() []*ASTNode {
	if p.consume(")") != nil {
		return nil
	}
	args := []*ASTNode{p.assign()}
	for p.consume(",") != nil {
		args = append(args, p.assign())
	}
	p.expect(")")
	return args
}
