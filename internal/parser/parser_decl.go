package parser

import (
	"github.com/Sir-Teo/mica/internal/ast"
	"github.com/Sir-Teo/mica/internal/token"
)

func (p *Parser) parseTypeAlias(isPublic bool) (*ast.TypeAlias, error) {
	start := p.cur().Span
	p.advance() // type
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	params, err := p.parseBareGenericParams()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ASSIGN); err != nil {
		return nil, err
	}
	value, err := p.parseTypeAliasValue()
	if err != nil {
		return nil, err
	}
	return &ast.TypeAlias{
		IsPublic: isPublic,
		Name:     nameTok.Literal,
		Params:   params,
		Value:    value,
		Span:     token.Span{Start: start.Start, End: p.toks[p.pos-1].Span.End},
	}, nil
}

// parseBareGenericParams parses an optional `[T, U]` list of bare names,
// used by type aliases (which carry no trait bounds).
func (p *Parser) parseBareGenericParams() ([]string, error) {
	if _, ok := p.accept(token.LBRACKET); !ok {
		return nil, nil
	}
	var names []string
	for !p.at(token.RBRACKET) {
		nameTok, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		names = append(names, nameTok.Literal)
		if _, ok := p.accept(token.COMMA); !ok {
			break
		}
	}
	if _, err := p.expect(token.RBRACKET); err != nil {
		return nil, err
	}
	return names, nil
}

// parseGenericParams parses an optional `[T: Bound + Bound, U]` list used by
// function declarations.
func (p *Parser) parseGenericParams() ([]ast.GenericParam, error) {
	if _, ok := p.accept(token.LBRACKET); !ok {
		return nil, nil
	}
	var params []ast.GenericParam
	for !p.at(token.RBRACKET) {
		nameTok, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		gp := ast.GenericParam{Name: nameTok.Literal}
		if _, ok := p.accept(token.COLON); ok {
			for {
				bound, err := p.parsePath()
				if err != nil {
					return nil, err
				}
				gp.Bounds = append(gp.Bounds, bound)
				if _, ok := p.accept(token.PLUS); !ok {
					break
				}
			}
		}
		params = append(params, gp)
		if _, ok := p.accept(token.COMMA); !ok {
			break
		}
	}
	if _, err := p.expect(token.RBRACKET); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *Parser) parseParams() ([]ast.Param, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var params []ast.Param
	for !p.at(token.RPAREN) {
		mutable := false
		if _, ok := p.accept(token.MUT); ok {
			mutable = true
		}
		nameTok, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.COLON); err != nil {
			return nil, err
		}
		ty, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		params = append(params, ast.Param{Name: nameTok.Literal, Type: ty, Mutable: mutable})
		if _, ok := p.accept(token.COMMA); !ok {
			break
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *Parser) parseFunction(isPublic bool) (*ast.Function, error) {
	start := p.cur().Span
	p.advance() // fn
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	generics, err := p.parseGenericParams()
	if err != nil {
		return nil, err
	}
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	var ret ast.TypeExpr
	if _, ok := p.accept(token.ARROW); ok {
		ret, err = p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
	}
	var effects []string
	if p.at(token.BANG) {
		effects, err = p.parseEffectRow()
		if err != nil {
			return nil, err
		}
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.Function{
		IsPublic:   isPublic,
		Name:       nameTok.Literal,
		Generics:   generics,
		Params:     params,
		ReturnType: ret,
		EffectRow:  effects,
		Body:       *body,
		Span:       token.Span{Start: start.Start, End: p.toks[p.pos-1].Span.End},
	}, nil
}

func (p *Parser) parseImplBlock() (*ast.ImplBlock, error) {
	start := p.cur().Span
	p.advance() // impl
	traitPath, err := p.parsePath()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.FOR); err != nil {
		return nil, err
	}
	forType, err := p.parseTypeExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	var items []*ast.ImplItem
	for !p.at(token.RBRACE) {
		isPublic := false
		if _, ok := p.accept(token.PUB); ok {
			isPublic = true
		}
		if !p.at(token.FN) {
			return nil, p.errorf(errUnexpected, "expected 'fn' in impl block, found %s", p.cur().Kind)
		}
		fn, err := p.parseFunction(isPublic)
		if err != nil {
			return nil, err
		}
		items = append(items, &ast.ImplItem{Method: fn})
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return &ast.ImplBlock{
		TraitPath: traitPath,
		ForType:   forType,
		Items:     items,
		Span:      token.Span{Start: start.Start, End: p.toks[p.pos-1].Span.End},
	}, nil
}
