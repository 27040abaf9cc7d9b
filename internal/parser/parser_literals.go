package parser

import (
	"strconv"

	"github.com/Sir-Teo/mica/internal/ast"
	"github.com/Sir-Teo/mica/internal/token"
)

func (p *Parser) parseLiteral() (*ast.Literal, error) {
	tok := p.cur()
	switch tok.Kind {
	case token.INT:
		p.advance()
		v, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			return nil, p.errorf(errUnexpected, "malformed integer literal %q: %v", tok.Literal, err)
		}
		return &ast.Literal{Kind: ast.LitInt, Int: v, Span: tok.Span}, nil
	case token.FLOAT:
		p.advance()
		v, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return nil, p.errorf(errUnexpected, "malformed float literal %q: %v", tok.Literal, err)
		}
		return &ast.Literal{Kind: ast.LitFloat, Float: v, Span: tok.Span}, nil
	case token.STRING:
		p.advance()
		return &ast.Literal{Kind: ast.LitString, Str: tok.Literal, Span: tok.Span}, nil
	case token.TRUE:
		p.advance()
		return &ast.Literal{Kind: ast.LitBool, Bool: true, Span: tok.Span}, nil
	case token.FALSE:
		p.advance()
		return &ast.Literal{Kind: ast.LitBool, Bool: false, Span: tok.Span}, nil
	default:
		return nil, p.errorf(errUnexpected, "expected a literal, found %s", tok.Kind)
	}
}
