package parser

import (
	"unicode"

	"github.com/Sir-Teo/mica/internal/ast"
	"github.com/Sir-Teo/mica/internal/token"
)

func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}

func (p *Parser) parsePattern() (ast.Pattern, error) {
	start := p.cur().Span

	switch p.cur().Kind {
	case token.UNDERSCORE:
		p.advance()
		return &ast.WildcardPattern{Span: start}, nil

	case token.INT, token.FLOAT, token.STRING, token.TRUE, token.FALSE:
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		return &ast.LiteralPattern{Value: *lit, Span: lit.Span}, nil

	case token.LPAREN:
		p.advance()
		var items []ast.Pattern
		for !p.at(token.RPAREN) {
			item, err := p.parsePattern()
			if err != nil {
				return nil, err
			}
			items = append(items, item)
			if _, ok := p.accept(token.COMMA); !ok {
				break
			}
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return &ast.TuplePattern{Items: items, Span: token.Span{Start: start.Start, End: p.toks[p.pos-1].Span.End}}, nil

	case token.LBRACE:
		p.advance()
		var fields []ast.RecordFieldPattern
		rest := false
		for !p.at(token.RBRACE) {
			if p.at(token.DOT) && p.peek().Kind == token.DOT {
				p.advance()
				p.advance()
				rest = true
				break
			}
			nameTok, err := p.expect(token.IDENT)
			if err != nil {
				return nil, p.errorf(errPattern, "malformed record pattern: %v", err)
			}
			field := ast.RecordFieldPattern{Name: nameTok.Literal}
			if _, ok := p.accept(token.COLON); ok {
				sub, err := p.parsePattern()
				if err != nil {
					return nil, err
				}
				field.Pattern = sub
			}
			fields = append(fields, field)
			if _, ok := p.accept(token.COMMA); !ok {
				break
			}
		}
		if _, err := p.expect(token.RBRACE); err != nil {
			return nil, p.errorf(errPattern, "malformed record pattern: %v", err)
		}
		return &ast.RecordPattern{Fields: fields, Rest: rest, Span: token.Span{Start: start.Start, End: p.toks[p.pos-1].Span.End}}, nil

	case token.IDENT:
		path, err := p.parsePath()
		if err != nil {
			return nil, err
		}
		if _, ok := p.accept(token.LPAREN); ok {
			var subs []ast.Pattern
			for !p.at(token.RPAREN) {
				sub, err := p.parsePattern()
				if err != nil {
					return nil, err
				}
				subs = append(subs, sub)
				if _, ok := p.accept(token.COMMA); !ok {
					break
				}
			}
			if _, err := p.expect(token.RPAREN); err != nil {
				return nil, err
			}
			return &ast.EnumVariantPattern{Path: path, Fields: subs, Span: token.Span{Start: start.Start, End: p.toks[p.pos-1].Span.End}}, nil
		}
		if len(path.Segments) > 1 || startsUpper(path.Segments[len(path.Segments)-1]) {
			return &ast.EnumVariantPattern{Path: path, Span: path.Span}, nil
		}
		return &ast.BindingPattern{Name: path.Segments[0], Span: path.Span}, nil

	default:
		return nil, p.errorf(errPattern, "expected a pattern, found %s", p.cur().Kind)
	}
}
