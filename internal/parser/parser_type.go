package parser

import (
	"github.com/Sir-Teo/mica/internal/ast"
	"github.com/Sir-Teo/mica/internal/token"
)

// parseTypeAliasValue parses the right-hand side of `type Name = <value>`,
// which may be an ordinary TypeExpr or a Sum of one or more variants.
func (p *Parser) parseTypeAliasValue() (ast.TypeExpr, error) {
	start := p.cur().Span

	if p.at(token.IDENT) && (p.peek().Kind == token.LPAREN || p.peek().Kind == token.PIPE) {
		return p.parseSumType(start)
	}

	return p.parseTypeExpr()
}

func (p *Parser) parseSumType(start token.Span) (ast.TypeExpr, error) {
	var variants []ast.VariantType
	for {
		nameTok, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		variant := ast.VariantType{Name: nameTok.Literal}
		if _, ok := p.accept(token.LPAREN); ok {
			if !p.at(token.RPAREN) {
				for {
					field, err := p.parseTypeExpr()
					if err != nil {
						return nil, err
					}
					variant.Fields = append(variant.Fields, field)
					if _, ok := p.accept(token.COMMA); !ok {
						break
					}
				}
			}
			if _, err := p.expect(token.RPAREN); err != nil {
				return nil, err
			}
		}
		variants = append(variants, variant)
		if _, ok := p.accept(token.PIPE); !ok {
			break
		}
	}
	return &ast.TypeSum{Variants: variants, Span: token.Span{Start: start.Start, End: p.toks[p.pos-1].Span.End}}, nil
}

// parseTypeExpr parses any TypeExpr that is not a top-level Sum.
func (p *Parser) parseTypeExpr() (ast.TypeExpr, error) {
	start := p.cur().Span

	switch p.cur().Kind {
	case token.LPAREN:
		p.advance()
		if _, ok := p.accept(token.RPAREN); ok {
			return &ast.TypeUnit{Span: token.Span{Start: start.Start, End: p.toks[p.pos-1].Span.End}}, nil
		}
		var items []ast.TypeExpr
		for {
			item, err := p.parseTypeExpr()
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
		return &ast.TypeTuple{Items: items, Span: token.Span{Start: start.Start, End: p.toks[p.pos-1].Span.End}}, nil

	case token.LBRACKET:
		p.advance()
		elem, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RBRACKET); err != nil {
			return nil, err
		}
		return &ast.TypeList{Elem: elem, Span: token.Span{Start: start.Start, End: p.toks[p.pos-1].Span.End}}, nil

	case token.LBRACE:
		p.advance()
		var fields []ast.RecordFieldType
		for !p.at(token.RBRACE) {
			nameTok, err := p.expect(token.IDENT)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.COLON); err != nil {
				return nil, err
			}
			fieldTy, err := p.parseTypeExpr()
			if err != nil {
				return nil, err
			}
			fields = append(fields, ast.RecordFieldType{Name: nameTok.Literal, Type: fieldTy})
			if _, ok := p.accept(token.COMMA); !ok {
				break
			}
		}
		if _, err := p.expect(token.RBRACE); err != nil {
			return nil, err
		}
		return &ast.TypeRecord{Fields: fields, Span: token.Span{Start: start.Start, End: p.toks[p.pos-1].Span.End}}, nil

	case token.AMP:
		p.advance()
		isMut := false
		if _, ok := p.accept(token.MUT); ok {
			isMut = true
		}
		inner, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		return &ast.TypeReference{IsMut: isMut, Inner: inner, Span: token.Span{Start: start.Start, End: p.toks[p.pos-1].Span.End}}, nil

	case token.FN:
		p.advance()
		if _, err := p.expect(token.LPAREN); err != nil {
			return nil, err
		}
		var params []ast.TypeExpr
		for !p.at(token.RPAREN) {
			pty, err := p.parseTypeExpr()
			if err != nil {
				return nil, err
			}
			params = append(params, pty)
			if _, ok := p.accept(token.COMMA); !ok {
				break
			}
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		var ret ast.TypeExpr
		if _, ok := p.accept(token.ARROW); ok {
			r, err := p.parseTypeExpr()
			if err != nil {
				return nil, err
			}
			ret = r
		}
		var effects []string
		if p.at(token.BANG) {
			var err error
			effects, err = p.parseEffectRow()
			if err != nil {
				return nil, err
			}
		}
		return &ast.TypeFunction{Params: params, ReturnType: ret, EffectRow: effects, Span: token.Span{Start: start.Start, End: p.toks[p.pos-1].Span.End}}, nil

	case token.IDENT:
		if p.cur().Literal == "Self" {
			p.advance()
			return &ast.TypeSelf{Span: start}, nil
		}
		path, err := p.parsePath()
		if err != nil {
			return nil, err
		}
		if _, ok := p.accept(token.LBRACKET); ok {
			var args []ast.TypeExpr
			for !p.at(token.RBRACKET) {
				arg, err := p.parseTypeExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if _, ok := p.accept(token.COMMA); !ok {
					break
				}
			}
			if _, err := p.expect(token.RBRACKET); err != nil {
				return nil, err
			}
			return &ast.TypeGeneric{Path: path, Args: args, Span: token.Span{Start: start.Start, End: p.toks[p.pos-1].Span.End}}, nil
		}
		return &ast.TypeName{Path: path, Span: path.Span}, nil

	default:
		return nil, p.errorf(errType, "expected a type expression, found %s", p.cur().Kind)
	}
}

// parseEffectRow parses `!{ name, name, ... }`.
func (p *Parser) parseEffectRow() ([]string, error) {
	if _, err := p.expect(token.BANG); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, p.errorf(errEffectRow, "malformed effect row: %v", err)
	}
	var names []string
	for !p.at(token.RBRACE) {
		nameTok, err := p.expect(token.IDENT)
		if err != nil {
			return nil, p.errorf(errEffectRow, "malformed effect row: %v", err)
		}
		names = append(names, nameTok.Literal)
		if _, ok := p.accept(token.COMMA); !ok {
			break
		}
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, p.errorf(errEffectRow, "malformed effect row: %v", err)
	}
	return names, nil
}
