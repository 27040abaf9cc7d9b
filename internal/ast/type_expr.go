package ast

import "github.com/Sir-Teo/mica/internal/token"

// TypeExpr is the sum of all surface type syntax forms.
type TypeExpr interface {
	typeExprNode()
	Pos() token.Span
}

// TypeName is a bare or qualified type name with no arguments.
type TypeName struct {
	Path Path
	Span token.Span
}

func (*TypeName) typeExprNode()      {}
func (t *TypeName) Pos() token.Span  { return t.Span }

// TypeGeneric is `Name[arg, ...]`.
type TypeGeneric struct {
	Path Path
	Args []TypeExpr
	Span token.Span
}

func (*TypeGeneric) typeExprNode()     {}
func (t *TypeGeneric) Pos() token.Span { return t.Span }

// RecordFieldType is one named field of a record type.
type RecordFieldType struct {
	Name string
	Type TypeExpr
}

// TypeRecord is `{ f: T, ... }`.
type TypeRecord struct {
	Fields []RecordFieldType
	Span   token.Span
}

func (*TypeRecord) typeExprNode()     {}
func (t *TypeRecord) Pos() token.Span { return t.Span }

// VariantType is one constructor of a sum type.
type VariantType struct {
	Name   string
	Fields []TypeExpr
}

// TypeSum is `A(fields) | B | ...`.
type TypeSum struct {
	Variants []VariantType
	Span     token.Span
}

func (*TypeSum) typeExprNode()     {}
func (t *TypeSum) Pos() token.Span { return t.Span }

// TypeList is `[T]`.
type TypeList struct {
	Elem TypeExpr
	Span token.Span
}

func (*TypeList) typeExprNode()     {}
func (t *TypeList) Pos() token.Span { return t.Span }

// TypeTuple is `(T, U, ...)`.
type TypeTuple struct {
	Items []TypeExpr
	Span  token.Span
}

func (*TypeTuple) typeExprNode()     {}
func (t *TypeTuple) Pos() token.Span { return t.Span }

// TypeReference is `&T` or `&mut T`.
type TypeReference struct {
	IsMut bool
	Inner TypeExpr
	Span  token.Span
}

func (*TypeReference) typeExprNode()     {}
func (t *TypeReference) Pos() token.Span { return t.Span }

// TypeFunction is `fn(params) -> ret !{effects}` used as a type.
type TypeFunction struct {
	Params     []TypeExpr
	ReturnType TypeExpr
	EffectRow  []string
	Span       token.Span
}

func (*TypeFunction) typeExprNode()     {}
func (t *TypeFunction) Pos() token.Span { return t.Span }

// TypeSelf is the `Self` placeholder type used inside impl blocks.
type TypeSelf struct{ Span token.Span }

func (*TypeSelf) typeExprNode()     {}
func (t *TypeSelf) Pos() token.Span { return t.Span }

// TypeUnit is `()`.
type TypeUnit struct{ Span token.Span }

func (*TypeUnit) typeExprNode()     {}
func (t *TypeUnit) Pos() token.Span { return t.Span }
