package ast

import "github.com/Sir-Teo/mica/internal/token"

// Pattern is the sum of all match/let-binding pattern forms.
type Pattern interface {
	patternNode()
	Pos() token.Span
}

// WildcardPattern is `_`.
type WildcardPattern struct{ Span token.Span }

func (*WildcardPattern) patternNode()     {}
func (p *WildcardPattern) Pos() token.Span { return p.Span }

// BindingPattern binds the scrutinee to Name.
type BindingPattern struct {
	Name string
	Span token.Span
}

func (*BindingPattern) patternNode()     {}
func (p *BindingPattern) Pos() token.Span { return p.Span }

// LiteralPattern matches an exact literal value.
type LiteralPattern struct {
	Value Literal
	Span  token.Span
}

func (*LiteralPattern) patternNode()     {}
func (p *LiteralPattern) Pos() token.Span { return p.Span }

// TuplePattern is `(p, q, ...)`.
type TuplePattern struct {
	Items []Pattern
	Span  token.Span
}

func (*TuplePattern) patternNode()     {}
func (p *TuplePattern) Pos() token.Span { return p.Span }

// RecordFieldPattern is one named field in a RecordPattern.
type RecordFieldPattern struct {
	Name    string
	Pattern Pattern // nil means shorthand `name` binds `name`
}

// RecordPattern is `{ f, f: p, .. }`.
type RecordPattern struct {
	Fields []RecordFieldPattern
	Rest   bool // true if `..` was present
	Span   token.Span
}

func (*RecordPattern) patternNode()     {}
func (p *RecordPattern) Pos() token.Span { return p.Span }

// EnumVariantPattern is `Path(sub, ...)`.
type EnumVariantPattern struct {
	Path   Path
	Fields []Pattern
	Span   token.Span
}

func (*EnumVariantPattern) patternNode()     {}
func (p *EnumVariantPattern) Pos() token.Span { return p.Span }
