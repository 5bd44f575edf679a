// Package parser implements a recursive-descent parser with one-token
// lookahead and no backtracking. It consumes a token stream and
// produces an ordered list of ast.Function values, resolving local
// variable offsets as it goes.
package parser

import (
	"fmt"

	"github.com/kbocek/subc/ast"
	"github.com/kbocek/subc/token"
)

// Error reports a token position at which the grammar required
// something the input did not provide.
type Error struct {
	Pos int
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("parse error at offset %d: %s", e.Pos, e.Msg)
}

// Parser holds the cursor over a token stream and the variable table
// for whichever function is currently being parsed.
type Parser struct {
	tokens []token.Token
	pos    int

	// locals is reset to a fresh table at the start of each function.
	locals *ast.Locals
}

// New creates a Parser over tokens, which must end with a token.EOF.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse parses a full program: zero or more function definitions
// followed by EOF.
func Parse(tokens []token.Token) ([]*ast.Function, error) {
	return New(tokens).Parse()
}

// Parse consumes the whole token stream and returns every function it
// defines, in source order.
func (p *Parser) Parse() ([]*ast.Function, error) {
	var functions []*ast.Function

	for !p.atEOF() {
		fn, err := p.function()
		if err != nil {
			return nil, err
		}
		functions = append(functions, fn)
	}
	return functions, nil
}

// --- cursor primitives -----------------------------------------------------

func (p *Parser) cur() token.Token {
	return p.tokens[p.pos]
}

func (p *Parser) atEOF() bool {
	return p.cur().Kind == token.EOF
}

func (p *Parser) seek() {
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
}

// consume advances and returns true if the current token is a SIGN
// whose lexeme equals sign; otherwise it leaves the cursor untouched
// and returns false.
func (p *Parser) consume(sign string) bool {
	if p.cur().Kind != token.SIGN || p.cur().Lexeme != sign {
		return false
	}
	p.seek()
	return true
}

// consumeKind advances and returns (token, true) if the current token
// has the given Kind; otherwise it returns (zero value, false).
func (p *Parser) consumeKind(kind token.Kind) (token.Token, bool) {
	if p.cur().Kind != kind {
		return token.Token{}, false
	}
	tok := p.cur()
	p.seek()
	return tok, true
}

// expect advances past a SIGN with the given lexeme, or raises an
// *Error pointing at the offending token.
func (p *Parser) expect(sign string) error {
	if p.consume(sign) {
		return nil
	}
	return &Error{Pos: p.cur().Pos, Msg: fmt.Sprintf("expected '%s'", sign)}
}

// expectIdent advances past an IDENT token and returns its lexeme, or
// raises an *Error.
func (p *Parser) expectIdent() (string, error) {
	tok, ok := p.consumeKind(token.IDENT)
	if !ok {
		return "", &Error{Pos: p.cur().Pos, Msg: "expected an identifier"}
	}
	return tok.Lexeme, nil
}

// expectNumber advances past a NUM token and returns its value, or
// raises an *Error.
func (p *Parser) expectNumber() (int64, error) {
	tok, ok := p.consumeKind(token.NUM)
	if !ok {
		return 0, &Error{Pos: p.cur().Pos, Msg: "expected a number"}
	}
	return tok.Value, nil
}

// --- grammar -----------------------------------------------------------

// function = ident "(" params? ")" "{" stmt* "}"
func (p *Parser) function() (*ast.Function, error) {
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}

	if err := p.expect("("); err != nil {
		return nil, err
	}

	p.locals = ast.NewLocals()
	var params []*ast.LVar

	if !p.consume(")") {
		for {
			pname, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			if len(params) >= ast.MaxArgs {
				return nil, &Error{Pos: p.cur().Pos, Msg: "too many parameters"}
			}
			lvar := p.locals.Insert(pname)
			params = append(params, lvar)
			if !p.consume(",") {
				break
			}
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
	}

	if err := p.expect("{"); err != nil {
		return nil, err
	}

	var body []*ast.Node
	for !p.consume("}") {
		s, err := p.stmt()
		if err != nil {
			return nil, err
		}
		body = append(body, s)
	}

	return &ast.Function{
		Name:   name,
		Params: params,
		Locals: p.locals,
		Body:   body,
	}, nil
}

// stmt = "{" stmt* "}"
//      | "if" "(" expr ")" stmt ("else" stmt)?
//      | "while" "(" expr ")" stmt
//      | "for" "(" expr? ";" expr? ";" expr? ")" stmt
//      | "return" expr ";"
//      | expr ";"
func (p *Parser) stmt() (*ast.Node, error) {
	if p.consume("{") {
		var children []*ast.Node
		for !p.consume("}") {
			s, err := p.stmt()
			if err != nil {
				return nil, err
			}
			children = append(children, s)
		}
		return &ast.Node{Kind: ast.BLOCK, Children: children}, nil
	}

	if _, ok := p.consumeKind(token.IF); ok {
		return p.ifStmt()
	}

	if _, ok := p.consumeKind(token.WHILE); ok {
		return p.whileStmt()
	}

	if _, ok := p.consumeKind(token.FOR); ok {
		return p.forStmt()
	}

	if _, ok := p.consumeKind(token.RETURN); ok {
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(";"); err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.RETURN, Lhs: e}, nil
	}

	e, err := p.expr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(";"); err != nil {
		return nil, err
	}
	return e, nil
}

func (p *Parser) ifStmt() (*ast.Node, error) {
	if err := p.expect("("); err != nil {
		return nil, err
	}
	cond, err := p.expr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	then, err := p.stmt()
	if err != nil {
		return nil, err
	}

	node := &ast.Node{Kind: ast.IF, Cond: cond, Then: then}

	if _, ok := p.consumeKind(token.ELSE); ok {
		els, err := p.stmt()
		if err != nil {
			return nil, err
		}
		node.Else = els
	}
	return node, nil
}

func (p *Parser) whileStmt() (*ast.Node, error) {
	if err := p.expect("("); err != nil {
		return nil, err
	}
	cond, err := p.expr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	then, err := p.stmt()
	if err != nil {
		return nil, err
	}
	return &ast.Node{Kind: ast.WHILE, Cond: cond, Then: then}, nil
}

func (p *Parser) forStmt() (*ast.Node, error) {
	if err := p.expect("("); err != nil {
		return nil, err
	}

	node := &ast.Node{Kind: ast.FOR}

	if !p.consume(";") {
		init, err := p.expr()
		if err != nil {
			return nil, err
		}
		node.Init = init
		if err := p.expect(";"); err != nil {
			return nil, err
		}
	}

	if !p.consume(";") {
		cond, err := p.expr()
		if err != nil {
			return nil, err
		}
		node.Cond = cond
		if err := p.expect(";"); err != nil {
			return nil, err
		}
	}

	if !p.consume(")") {
		inc, err := p.expr()
		if err != nil {
			return nil, err
		}
		node.Inc = inc
		if err := p.expect(")"); err != nil {
			return nil, err
		}
	}

	then, err := p.stmt()
	if err != nil {
		return nil, err
	}
	node.Then = then
	return node, nil
}

// expr = assign
func (p *Parser) expr() (*ast.Node, error) {
	return p.assign()
}

// assign = equality ("=" assign)?   (right-associative)
func (p *Parser) assign() (*ast.Node, error) {
	node, err := p.equality()
	if err != nil {
		return nil, err
	}

	if p.consume("=") {
		rhs, err := p.assign()
		if err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.ASSIGN, Lhs: node, Rhs: rhs}, nil
	}
	return node, nil
}

// equality = relational (("==" | "!=") relational)*
func (p *Parser) equality() (*ast.Node, error) {
	node, err := p.relational()
	if err != nil {
		return nil, err
	}

	for {
		switch {
		case p.consume("=="):
			rhs, err := p.relational()
			if err != nil {
				return nil, err
			}
			node = &ast.Node{Kind: ast.EQ, Lhs: node, Rhs: rhs}
		case p.consume("!="):
			rhs, err := p.relational()
			if err != nil {
				return nil, err
			}
			node = &ast.Node{Kind: ast.NE, Lhs: node, Rhs: rhs}
		default:
			return node, nil
		}
	}
}

// relational = add (("<" | "<=" | ">" | ">=") add)*
//
// `>` and `>=` are lowered to LT/LTE with swapped operands rather than
// getting dedicated node kinds.
func (p *Parser) relational() (*ast.Node, error) {
	node, err := p.add()
	if err != nil {
		return nil, err
	}

	for {
		switch {
		case p.consume("<="):
			rhs, err := p.add()
			if err != nil {
				return nil, err
			}
			node = &ast.Node{Kind: ast.LTE, Lhs: node, Rhs: rhs}
		case p.consume(">="):
			rhs, err := p.add()
			if err != nil {
				return nil, err
			}
			node = &ast.Node{Kind: ast.LTE, Lhs: rhs, Rhs: node}
		case p.consume("<"):
			rhs, err := p.add()
			if err != nil {
				return nil, err
			}
			node = &ast.Node{Kind: ast.LT, Lhs: node, Rhs: rhs}
		case p.consume(">"):
			rhs, err := p.add()
			if err != nil {
				return nil, err
			}
			node = &ast.Node{Kind: ast.LT, Lhs: rhs, Rhs: node}
		default:
			return node, nil
		}
	}
}

// add = mul (("+" | "-") mul)*
func (p *Parser) add() (*ast.Node, error) {
	node, err := p.mul()
	if err != nil {
		return nil, err
	}

	for {
		switch {
		case p.consume("+"):
			rhs, err := p.mul()
			if err != nil {
				return nil, err
			}
			node = &ast.Node{Kind: ast.ADD, Lhs: node, Rhs: rhs}
		case p.consume("-"):
			rhs, err := p.mul()
			if err != nil {
				return nil, err
			}
			node = &ast.Node{Kind: ast.SUB, Lhs: node, Rhs: rhs}
		default:
			return node, nil
		}
	}
}

// mul = unary (("*" | "/") unary)*
func (p *Parser) mul() (*ast.Node, error) {
	node, err := p.unary()
	if err != nil {
		return nil, err
	}

	for {
		switch {
		case p.consume("*"):
			rhs, err := p.unary()
			if err != nil {
				return nil, err
			}
			node = &ast.Node{Kind: ast.MUL, Lhs: node, Rhs: rhs}
		case p.consume("/"):
			rhs, err := p.unary()
			if err != nil {
				return nil, err
			}
			node = &ast.Node{Kind: ast.DIV, Lhs: node, Rhs: rhs}
		default:
			return node, nil
		}
	}
}

// unary = "+" primary | "-" primary | primary
//
// "-x" is lowered to "0 - x"; "+x" is lowered to just "x".
func (p *Parser) unary() (*ast.Node, error) {
	if p.consume("+") {
		return p.primary()
	}
	if p.consume("-") {
		rhs, err := p.primary()
		if err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.SUB, Lhs: &ast.Node{Kind: ast.NUM, Val: 0}, Rhs: rhs}, nil
	}
	return p.primary()
}

// primary = "(" expr ")"
//         | ident ( "(" args? ")" )?
//         | num
func (p *Parser) primary() (*ast.Node, error) {
	if p.consume("(") {
		node, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		return node, nil
	}

	if tok, ok := p.consumeKind(token.IDENT); ok {
		if p.consume("(") {
			return p.funcall(tok.Lexeme)
		}
		return p.lvar(tok.Lexeme), nil
	}

	val, err := p.expectNumber()
	if err != nil {
		return nil, err
	}
	return &ast.Node{Kind: ast.NUM, Val: val}, nil
}

// lvar resolves name against the current function's variable table,
// inserting a fresh entry on first sight.
func (p *Parser) lvar(name string) *ast.Node {
	v := p.locals.Lookup(name)
	if v == nil {
		v = p.locals.Insert(name)
	}
	return &ast.Node{Kind: ast.LVAR, Offset: v.Offset}
}

// args = assign ("," assign)*   (at most ast.MaxArgs entries)
func (p *Parser) funcall(name string) (*ast.Node, error) {
	node := &ast.Node{Kind: ast.FUNCALL, FuncName: name}

	if p.consume(")") {
		return node, nil
	}

	for {
		arg, err := p.assign()
		if err != nil {
			return nil, err
		}
		if len(node.Args) >= ast.MaxArgs {
			return nil, &Error{Pos: p.cur().Pos, Msg: "too many arguments"}
		}
		node.Args = append(node.Args, arg)
		if !p.consume(",") {
			break
		}
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	return node, nil
}
