// Package ast defines the concrete module syntax tree produced by the parser.
//
// Every node carries a token.Span. The tree is read-only once built: the
// parser is the sole producer and downstream stages (resolver, checker, HIR
// lowering) only read it.
package ast

import "github.com/Sir-Teo/mica/internal/token"

// Path is a dotted sequence of identifiers, e.g. ["option", "Some"].
type Path struct {
	Segments []string
	Span     token.Span
}

func (p Path) String() string {
	s := ""
	for i, seg := range p.Segments {
		if i > 0 {
			s += "::"
		}
		s += seg
	}
	return s
}

// Module is the root node: a dotted module name plus an ordered item list.
type Module struct {
	Name  []string
	Items []Item
	Span  token.Span
}

// Item is any top-level declaration.
type Item interface {
	itemNode()
	Pos() token.Span
}

// UseDecl imports another module path, optionally under an alias.
type UseDecl struct {
	Path  []string
	Alias string // empty if none given
	Span  token.Span
}

func (*UseDecl) itemNode()          {}
func (d *UseDecl) Pos() token.Span  { return d.Span }

// TypeAlias declares `type Name[params] = value` (optionally `pub`).
type TypeAlias struct {
	IsPublic bool
	Name     string
	Params   []string
	Value    TypeExpr
	Span     token.Span
}

func (*TypeAlias) itemNode()         {}
func (t *TypeAlias) Pos() token.Span { return t.Span }

// GenericParam is a generic type parameter with optional trait bounds.
type GenericParam struct {
	Name   string
	Bounds []Path
}

// Param is one function parameter.
type Param struct {
	Name    string
	Type    TypeExpr
	Mutable bool
}

// Function declares `fn name(params) -> ret !{effects} { body }`.
type Function struct {
	IsPublic   bool
	Name       string
	Generics   []GenericParam
	Params     []Param
	ReturnType TypeExpr // nil if absent
	EffectRow  []string // ordered, as written
	Body       Block
	Span       token.Span
}

func (*Function) itemNode()         {}
func (f *Function) Pos() token.Span { return f.Span }

// ImplItem is a method declared inside an impl block; it shares Function's shape.
type ImplItem struct {
	Method *Function
}

// ImplBlock declares `impl Trait for Type { fn ... }`.
type ImplBlock struct {
	TraitPath Path
	ForType   TypeExpr
	Items     []*ImplItem
	Span      token.Span
}

func (*ImplBlock) itemNode()         {}
func (i *ImplBlock) Pos() token.Span { return i.Span }

// Block is an ordered sequence of statements.
type Block struct {
	Statements []Stmt
	Span       token.Span
}

// Stmt is any statement inside a Block.
type Stmt interface {
	stmtNode()
	Pos() token.Span
}

// LetStmt binds a (possibly mutable) local.
type LetStmt struct {
	Mutable bool
	Name    string
	Value   Expr
	Span    token.Span
}

func (*LetStmt) stmtNode()         {}
func (s *LetStmt) Pos() token.Span { return s.Span }

// ExprStmt wraps a bare expression statement.
type ExprStmt struct {
	Expr Expr
	Span token.Span
}

func (*ExprStmt) stmtNode()         {}
func (s *ExprStmt) Pos() token.Span { return s.Span }

// ReturnStmt is `return expr?`.
type ReturnStmt struct {
	Value Expr // nil if bare `return`
	Span  token.Span
}

func (*ReturnStmt) stmtNode()         {}
func (s *ReturnStmt) Pos() token.Span { return s.Span }

// BreakStmt is `break`.
type BreakStmt struct{ Span token.Span }

func (*BreakStmt) stmtNode()         {}
func (s *BreakStmt) Pos() token.Span { return s.Span }

// ContinueStmt is `continue`.
type ContinueStmt struct{ Span token.Span }

func (*ContinueStmt) stmtNode()         {}
func (s *ContinueStmt) Pos() token.Span { return s.Span }
