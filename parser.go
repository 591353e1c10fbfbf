// parser.go: precedence-climbing expression parser.
//
// The parser consumes a comment/newline-filtered token slice and produces a
// Node tree. Precedence, low to high:
//
//	|| ^^
//	&&
//	== != < <= > >=
//	| ^
//	&
//	<< >>
//	+ -
//	* / %
//	** (right-associative)
//	unary - + ~ !
//	primary (number, identifier, call, parenthesized expression)
//
// A malformed sequence yields a *ParseError carrying line/column; callers
// treat this as "not yet solvable" and retry on a later pass.
package mathpad

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseExpr parses the given tokens as one complete expression. Every token
// must be consumed; COMMENT/LINECOMMENT/NEWLINE/EOF tokens are filtered out
// first.
func ParseExpr(toks []Token) (Node, error) {
	p := &exprParser{toks: filterExprTokens(toks)}
	n, err := p.expression()
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		g := p.peek()
		return nil, &ParseError{Line: g.Line, Col: g.Col, Msg: fmt.Sprintf("unexpected token %q", g.Lexeme)}
	}
	return n, nil
}

func filterExprTokens(toks []Token) []Token {
	out := make([]Token, 0, len(toks))
	for _, t := range toks {
		switch t.Type {
		case COMMENT, LINECOMMENT, NEWLINE, EOF:
		default:
			out = append(out, t)
		}
	}
	return out
}

type exprParser struct {
	toks []Token
	i    int
}

func (p *exprParser) atEnd() bool { return p.i >= len(p.toks) }

func (p *exprParser) peek() Token {
	if p.atEnd() {
		if len(p.toks) == 0 {
			return Token{Type: EOF, Line: 1}
		}
		last := p.toks[len(p.toks)-1]
		return Token{Type: EOF, Line: last.Line, Col: last.Col + len(last.Lexeme)}
	}
	return p.toks[p.i]
}

func (p *exprParser) prev() Token { return p.toks[p.i-1] }

func (p *exprParser) match(tt ...TokenType) bool {
	if p.atEnd() {
		return false
	}
	for _, t := range tt {
		if p.toks[p.i].Type == t {
			p.i++
			return true
		}
	}
	return false
}

func (p *exprParser) fail(msg string) error {
	g := p.peek()
	return &ParseError{Line: g.Line, Col: g.Col, Msg: msg}
}

// ----- precedence ladder -----

func (p *exprParser) expression() (Node, error) { return p.logicalOr() }

func (p *exprParser) binaryLevel(next func() (Node, error), ops ...TokenType) (Node, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for p.match(ops...) {
		op := p.prev().Type
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = &BinaryNode{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *exprParser) logicalOr() (Node, error) {
	return p.binaryLevel(p.logicalAnd, OROR, XORXOR)
}

func (p *exprParser) logicalAnd() (Node, error) {
	return p.binaryLevel(p.comparison, ANDAND)
}

func (p *exprParser) comparison() (Node, error) {
	return p.binaryLevel(p.bitOr, EQ, NEQ, LESS, LESS_EQ, GREATER, GREATER_EQ)
}

func (p *exprParser) bitOr() (Node, error) {
	return p.binaryLevel(p.bitAnd, PIPE, CARET)
}

func (p *exprParser) bitAnd() (Node, error) {
	return p.binaryLevel(p.shift, AMP)
}

func (p *exprParser) shift() (Node, error) {
	return p.binaryLevel(p.additive, SHL, SHR)
}

func (p *exprParser) additive() (Node, error) {
	return p.binaryLevel(p.multiplicative, PLUS, MINUS)
}

func (p *exprParser) multiplicative() (Node, error) {
	return p.binaryLevel(p.power, STAR, SLASH, MOD)
}

// power is right-associative: 2**3**2 == 2**(3**2).
func (p *exprParser) power() (Node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	if p.match(POW) {
		right, err := p.power()
		if err != nil {
			return nil, err
		}
		return &BinaryNode{Op: POW, Left: left, Right: right}, nil
	}
	return left, nil
}

func (p *exprParser) unary() (Node, error) {
	if p.match(MINUS, PLUS, TILDE, BANG) {
		op := p.prev().Type
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &UnaryNode{Op: op, Operand: operand}, nil
	}
	return p.primary()
}

func (p *exprParser) primary() (Node, error) {
	switch {
	case p.match(NUMBER):
		return &NumberNode{Value: p.prev().Value}, nil

	case p.match(IDENT):
		t := p.prev()
		// word#base glued to an identifier is a base literal when the word
		// parses as digits in that base (e.g. ff#16); otherwise the hash
		// suffix has no meaning inside an expression.
		if !p.atEnd() && p.peek().Type == HASH && p.peek().Adjoined {
			if v, err := strconv.ParseUint(strings.ToLower(t.Lexeme), p.peek().Base, 64); err == nil {
				p.i++
				return &NumberNode{Value: float64(v)}, nil
			}
		}
		if p.match(LPAREN) {
			return p.callArgs(t)
		}
		return &VariableNode{Name: t.Lexeme, Line: t.Line, Col: t.Col}, nil

	case p.match(LPAREN):
		n, err := p.expression()
		if err != nil {
			return nil, err
		}
		if !p.match(RPAREN) {
			return nil, p.fail("expected ')'")
		}
		return n, nil
	}

	g := p.peek()
	if g.Type == EOF {
		return nil, p.fail("unexpected end of expression")
	}
	return nil, p.fail(fmt.Sprintf("unexpected token %q", g.Lexeme))
}

// callArgs parses the argument list after 'name('. Arguments are separated
// by ';' or ',' interchangeably.
func (p *exprParser) callArgs(name Token) (Node, error) {
	call := &CallNode{Name: name.Lexeme, Line: name.Line, Col: name.Col}
	if p.match(RPAREN) {
		return call, nil
	}
	for {
		arg, err := p.expression()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
		if p.match(SEMI, COMMA) {
			continue
		}
		if p.match(RPAREN) {
			return call, nil
		}
		return nil, p.fail("expected ';', ',' or ')' in argument list")
	}
}
