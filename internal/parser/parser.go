// Package parser is a recursive-descent, no-backtracking parser from a
// token.Token stream to a concrete ast.Module.
package parser

import (
	"github.com/Sir-Teo/mica/internal/ast"
	"github.com/Sir-Teo/mica/internal/lexer"
	"github.com/Sir-Teo/mica/internal/token"
)

// Parser holds parse state over a pre-lexed token buffer.
type Parser struct {
	toks []token.Token
	pos  int
}

// New builds a Parser over an already-lexed token stream.
func New(toks []token.Token) *Parser {
	return &Parser{toks: toks}
}

// Parse lexes (with source normalization) and parses src in one step.
func Parse(src string) (*ast.Module, error) {
	normalized := lexer.Normalize([]byte(src))
	toks, err := lexer.Tokens(string(normalized))
	if err != nil {
		return nil, err
	}
	return New(toks).ParseModule()
}

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos]
}

func (p *Parser) peekAt(offset int) token.Token {
	i := p.pos + offset
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *Parser) peek() token.Token { return p.peekAt(1) }

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) at(kind token.Kind) bool { return p.cur().Kind == kind }

func (p *Parser) accept(kind token.Kind) (token.Token, bool) {
	if p.at(kind) {
		return p.advance(), true
	}
	return token.Token{}, false
}

func (p *Parser) expect(kind token.Kind) (token.Token, error) {
	if p.at(kind) {
		return p.advance(), nil
	}
	if p.cur().Kind == token.EOF {
		return token.Token{}, p.errorf(errEOF, "expected %s but reached end of input", kind)
	}
	return token.Token{}, p.errorf(errUnexpected, "expected %s but found %s %q", kind, p.cur().Kind, p.cur().Literal)
}

// ParseModule parses a full `module <dotted>` declaration followed by items.
func (p *Parser) ParseModule() (*ast.Module, error) {
	start := p.cur().Span
	if _, err := p.expect(token.MODULE); err != nil {
		return nil, err
	}
	name, err := p.parseDottedName()
	if err != nil {
		return nil, err
	}

	var items []ast.Item
	for !p.at(token.EOF) {
		item, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return &ast.Module{
		Name:  name,
		Items: items,
		Span:  token.Span{Start: start.Start, End: p.cur().Span.End},
	}, nil
}

func (p *Parser) parseDottedName() ([]string, error) {
	first, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	names := []string{first.Literal}
	for {
		if _, ok := p.accept(token.DOT); !ok {
			break
		}
		next, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		names = append(names, next.Literal)
	}
	return names, nil
}

func (p *Parser) parsePath() (ast.Path, error) {
	start := p.cur().Span
	first, err := p.expect(token.IDENT)
	if err != nil {
		return ast.Path{}, err
	}
	segs := []string{first.Literal}
	for {
		if _, ok := p.accept(token.DOUBLECOLON); !ok {
			break
		}
		next, err := p.expect(token.IDENT)
		if err != nil {
			return ast.Path{}, err
		}
		segs = append(segs, next.Literal)
	}
	return ast.Path{Segments: segs, Span: token.Span{Start: start.Start, End: p.toks[p.pos-1].Span.End}}, nil
}

func (p *Parser) parseItem() (ast.Item, error) {
	switch p.cur().Kind {
	case token.USE:
		return p.parseUseDecl()
	case token.PUB:
		switch p.peek().Kind {
		case token.TYPE:
			p.advance()
			return p.parseTypeAlias(true)
		case token.FN:
			p.advance()
			return p.parseFunction(true)
		default:
			return nil, p.errorf(errUnexpected, "expected 'type' or 'fn' after 'pub', found %s", p.peek().Kind)
		}
	case token.TYPE:
		return p.parseTypeAlias(false)
	case token.FN:
		return p.parseFunction(false)
	case token.IMPL:
		return p.parseImplBlock()
	default:
		return nil, p.errorf(errUnexpected, "expected a module item (use/type/fn/impl), found %s", p.cur().Kind)
	}
}

func (p *Parser) parseUseDecl() (*ast.UseDecl, error) {
	start := p.cur().Span
	p.advance() // use
	path, err := p.parseDottedName()
	if err != nil {
		return nil, err
	}
	alias := ""
	if _, ok := p.accept(token.AS); ok {
		aliasTok, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		alias = aliasTok.Literal
	}
	return &ast.UseDecl{Path: path, Alias: alias, Span: token.Span{Start: start.Start, End: p.toks[p.pos-1].Span.End}}, nil
}
