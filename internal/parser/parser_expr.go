package parser

import (
	"github.com/Sir-Teo/mica/internal/ast"
	"github.com/Sir-Teo/mica/internal/token"
)

func (p *Parser) span(start token.Span) token.Span {
	return token.Span{Start: start.Start, End: p.toks[p.pos-1].Span.End}
}

func (p *Parser) parseBlock() (*ast.Block, error) {
	start := p.cur().Span
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	var stmts []ast.Stmt
	for !p.at(token.RBRACE) {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return &ast.Block{Statements: stmts, Span: p.span(start)}, nil
}

func (p *Parser) parseStmt() (ast.Stmt, error) {
	start := p.cur().Span
	switch p.cur().Kind {
	case token.LET:
		p.advance()
		mutable := false
		if _, ok := p.accept(token.MUT); ok {
			mutable = true
		}
		nameTok, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.ASSIGN); err != nil {
			return nil, err
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.LetStmt{Mutable: mutable, Name: nameTok.Literal, Value: value, Span: p.span(start)}, nil

	case token.RETURN:
		p.advance()
		if p.at(token.RBRACE) {
			return &ast.ReturnStmt{Span: p.span(start)}, nil
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.ReturnStmt{Value: value, Span: p.span(start)}, nil

	case token.BREAK:
		p.advance()
		return &ast.BreakStmt{Span: p.span(start)}, nil

	case token.CONTINUE:
		p.advance()
		return &ast.ContinueStmt{Span: p.span(start)}, nil

	default:
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.ExprStmt{Expr: expr, Span: p.span(start)}, nil
	}
}

func (p *Parser) parseExpr() (ast.Expr, error) {
	return p.parseAssignment()
}

func (p *Parser) parseAssignment() (ast.Expr, error) {
	start := p.cur().Span
	left, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if _, ok := p.accept(token.ASSIGN); ok {
		value, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		return &ast.Assignment{Target: left, Value: value, Span: p.span(start)}, nil
	}
	return left, nil
}

func (p *Parser) parseOr() (ast.Expr, error) {
	start := p.cur().Span
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.at(token.OROR) {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: ast.OpOr, Left: left, Right: right, Span: p.span(start)}
	}
	return left, nil
}

func (p *Parser) parseAnd() (ast.Expr, error) {
	start := p.cur().Span
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.at(token.ANDAND) {
		p.advance()
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: ast.OpAnd, Left: left, Right: right, Span: p.span(start)}
	}
	return left, nil
}

func (p *Parser) parseEquality() (ast.Expr, error) {
	start := p.cur().Span
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.BinaryOp
		switch p.cur().Kind {
		case token.EQ:
			op = ast.OpEq
		case token.NE:
			op = ast.OpNe
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op, Left: left, Right: right, Span: p.span(start)}
	}
}

func (p *Parser) parseRelational() (ast.Expr, error) {
	start := p.cur().Span
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.BinaryOp
		switch p.cur().Kind {
		case token.LT:
			op = ast.OpLt
		case token.LE:
			op = ast.OpLe
		case token.GT:
			op = ast.OpGt
		case token.GE:
			op = ast.OpGe
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op, Left: left, Right: right, Span: p.span(start)}
	}
}

func (p *Parser) parseAdditive() (ast.Expr, error) {
	start := p.cur().Span
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.BinaryOp
		switch p.cur().Kind {
		case token.PLUS:
			op = ast.OpAdd
		case token.MINUS:
			op = ast.OpSub
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op, Left: left, Right: right, Span: p.span(start)}
	}
}

func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	start := p.cur().Span
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.BinaryOp
		switch p.cur().Kind {
		case token.STAR:
			op = ast.OpMul
		case token.SLASH:
			op = ast.OpDiv
		case token.PERCENT:
			op = ast.OpMod
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op, Left: left, Right: right, Span: p.span(start)}
	}
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	start := p.cur().Span
	switch p.cur().Kind {
	case token.BANG:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: ast.OpNot, Expr: operand, Span: p.span(start)}, nil
	case token.MINUS:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: ast.OpNeg, Expr: operand, Span: p.span(start)}, nil
	case token.AMP:
		p.advance()
		op := ast.OpRef
		if _, ok := p.accept(token.MUT); ok {
			op = ast.OpRefMut
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: op, Expr: operand, Span: p.span(start)}, nil
	case token.AWAIT:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Await{Expr: operand, Span: p.span(start)}, nil
	case token.SPAWN:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Spawn{Expr: operand, Span: p.span(start)}, nil
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parsePostfix() (ast.Expr, error) {
	start := p.cur().Span
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.cur().Kind {
		case token.DOT:
			p.advance()
			nameTok, err := p.expect(token.IDENT)
			if err != nil {
				return nil, err
			}
			expr = &ast.Field{Expr: expr, Name: nameTok.Literal, Span: p.span(start)}
		case token.LBRACKET:
			p.advance()
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBRACKET); err != nil {
				return nil, err
			}
			expr = &ast.Index{Expr: expr, Index: idx, Span: p.span(start)}
		case token.LPAREN:
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			if pe, ok := expr.(*ast.PathExpr); ok && startsUpper(pe.Path.Segments[len(pe.Path.Segments)-1]) {
				expr = &ast.Ctor{Path: pe.Path, Args: args, Span: p.span(start)}
			} else {
				expr = &ast.Call{Callee: expr, Args: args, Span: p.span(start)}
			}
		case token.QUESTION:
			p.advance()
			expr = &ast.Try{Expr: expr, Span: p.span(start)}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parseArgs() ([]ast.Expr, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var args []ast.Expr
	for !p.at(token.RPAREN) {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if _, ok := p.accept(token.COMMA); !ok {
			break
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	start := p.cur().Span

	switch p.cur().Kind {
	case token.INT, token.FLOAT, token.STRING, token.TRUE, token.FALSE:
		return p.parseLiteral()

	case token.LPAREN:
		p.advance()
		if _, ok := p.accept(token.RPAREN); ok {
			return &ast.Literal{Kind: ast.LitUnit, Span: p.span(start)}, nil
		}
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return inner, nil

	case token.LBRACE:
		block, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return &ast.BlockExpr{Block: *block, Span: block.Span}, nil

	case token.CHAN:
		p.advance()
		if _, err := p.expect(token.LBRACKET); err != nil {
			return nil, err
		}
		elem, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RBRACKET); err != nil {
			return nil, err
		}
		var capacity ast.Expr
		if _, ok := p.accept(token.LPAREN); ok {
			if !p.at(token.RPAREN) {
				c, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				capacity = c
			}
			if _, err := p.expect(token.RPAREN); err != nil {
				return nil, err
			}
		}
		return &ast.Chan{Elem: elem, Capacity: capacity, Span: p.span(start)}, nil

	case token.IF:
		return p.parseIf()

	case token.LOOP:
		p.advance()
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return &ast.Loop{Body: *body, Span: p.span(start)}, nil

	case token.WHILE:
		p.advance()
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return &ast.While{Cond: cond, Body: *body, Span: p.span(start)}, nil

	case token.FOR:
		p.advance()
		nameTok, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.IN); err != nil {
			return nil, err
		}
		iterable, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return &ast.For{Binding: nameTok.Literal, Iterable: iterable, Body: *body, Span: p.span(start)}, nil

	case token.MATCH:
		return p.parseMatch()

	case token.USING:
		return p.parseUsing()

	case token.IDENT:
		path, err := p.parsePath()
		if err != nil {
			return nil, err
		}
		if p.at(token.LBRACE) {
			return p.parseRecordLiteral(&path, start)
		}
		return &ast.PathExpr{Path: path, Span: path.Span}, nil

	default:
		return nil, p.errorf(errUnexpected, "expected an expression, found %s", p.cur().Kind)
	}
}

func (p *Parser) parseRecordLiteral(typePath *ast.Path, start token.Span) (ast.Expr, error) {
	p.advance() // {
	var fields []ast.RecordFieldExpr
	for !p.at(token.RBRACE) {
		nameTok, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.COLON); err != nil {
			return nil, err
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		fields = append(fields, ast.RecordFieldExpr{Name: nameTok.Literal, Value: value})
		if _, ok := p.accept(token.COMMA); !ok {
			break
		}
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return &ast.Record{TypePath: typePath, Fields: fields, Span: p.span(start)}, nil
}

func (p *Parser) parseIf() (ast.Expr, error) {
	start := p.cur().Span
	p.advance() // if
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	node := &ast.If{Cond: cond, Then: *then, Span: p.span(start)}
	if _, ok := p.accept(token.ELSE); ok {
		if p.at(token.IF) {
			elseIf, err := p.parseIf()
			if err != nil {
				return nil, err
			}
			node.Else = &ast.Block{
				Statements: []ast.Stmt{&ast.ExprStmt{Expr: elseIf, Span: elseIf.Pos()}},
				Span:       elseIf.Pos(),
			}
		} else {
			elseBlock, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			node.Else = elseBlock
		}
		node.Span = p.span(start)
	}
	return node, nil
}

func (p *Parser) parseMatch() (ast.Expr, error) {
	start := p.cur().Span
	p.advance() // match
	scrutinee, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	var arms []ast.MatchArm
	for !p.at(token.RBRACE) {
		pat, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		var guard ast.Expr
		if _, ok := p.accept(token.IF); ok {
			g, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			guard = g
		}
		if _, err := p.expect(token.FATARROW); err != nil {
			return nil, err
		}
		body, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		arms = append(arms, ast.MatchArm{Pattern: pat, Guard: guard, Body: body})
		if _, ok := p.accept(token.COMMA); !ok {
			break
		}
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return &ast.Match{Scrutinee: scrutinee, Arms: arms, Span: p.span(start)}, nil
}

func (p *Parser) parseUsing() (ast.Expr, error) {
	start := p.cur().Span
	p.advance() // using
	binding := ""
	if p.at(token.IDENT) && p.peek().Kind == token.ASSIGN {
		binding = p.cur().Literal
		p.advance()
		p.advance()
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.Using{Binding: binding, Expr: expr, Body: *body, Span: p.span(start)}, nil
}
