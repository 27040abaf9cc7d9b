// Package checker implements exhaustiveness checking for sum-type matches
// and a structural, unknown-tolerant type/effect checker.
package checker

import (
	"strings"

	"github.com/Sir-Teo/mica/internal/ast"
)

// TypeRepr is the checker's own notion of a type, distinct from the IR
// builder's interned TypeTable: it exists only to drive structural
// compatibility checks over the AST.
type TypeRepr interface {
	reprNode()
	String() string
}

type TUnit struct{}

func (TUnit) reprNode()     {}
func (TUnit) String() string { return "Unit" }

type PrimitiveKind int

const (
	PrimInt PrimitiveKind = iota
	PrimFloat
	PrimBool
	PrimString
)

func (p PrimitiveKind) String() string {
	switch p {
	case PrimInt:
		return "Int"
	case PrimFloat:
		return "Float"
	case PrimBool:
		return "Bool"
	case PrimString:
		return "String"
	default:
		return "?"
	}
}

type TPrimitive struct{ Kind PrimitiveKind }

func (TPrimitive) reprNode()          {}
func (t TPrimitive) String() string   { return t.Kind.String() }

// TNamed is a (possibly generic) reference to a declared type alias.
type TNamed struct {
	Path string
	Args []TypeRepr
}

func (TNamed) reprNode() {}
func (t TNamed) String() string {
	if len(t.Args) == 0 {
		return t.Path
	}
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return t.Path + "[" + strings.Join(parts, ", ") + "]"
}

type TTuple struct{ Items []TypeRepr }

func (TTuple) reprNode() {}
func (t TTuple) String() string {
	parts := make([]string, len(t.Items))
	for i, it := range t.Items {
		parts[i] = it.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

type TList struct{ Elem TypeRepr }

func (TList) reprNode()        {}
func (t TList) String() string { return "[" + t.Elem.String() + "]" }

type RecordField struct {
	Name string
	Type TypeRepr
}

type TRecord struct{ Fields []RecordField }

func (TRecord) reprNode() {}
func (t TRecord) String() string {
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		parts[i] = f.Name + ": " + f.Type.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

type TFunction struct {
	Params  []TypeRepr
	Ret     TypeRepr
	Effects []string
}

func (TFunction) reprNode() {}
func (t TFunction) String() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.String()
	}
	return "fn(" + strings.Join(parts, ", ") + ") -> " + t.Ret.String()
}

// TGeneric is an unbound generic type parameter; compatible with anything.
type TGeneric struct{ Name string }

func (TGeneric) reprNode()          {}
func (t TGeneric) String() string   { return t.Name }

// TUnknown is inserted liberally so the checker never panics.
type TUnknown struct{}

func (TUnknown) reprNode()          {}
func (TUnknown) String() string     { return "Unknown" }

func isUnknown(t TypeRepr) bool {
	_, ok := t.(TUnknown)
	return ok
}

func isGeneric(t TypeRepr) bool {
	_, ok := t.(TGeneric)
	return ok
}

// typesCompatible is reflexive and structural; Unknown and Generic(_) are
// compatible with anything. Function compatibility includes exact effect
// list equality.
func typesCompatible(expected, actual TypeRepr) bool {
	if isUnknown(expected) || isUnknown(actual) || isGeneric(expected) || isGeneric(actual) {
		return true
	}
	switch e := expected.(type) {
	case TUnit:
		_, ok := actual.(TUnit)
		return ok
	case TPrimitive:
		a, ok := actual.(TPrimitive)
		return ok && a.Kind == e.Kind
	case TNamed:
		a, ok := actual.(TNamed)
		if !ok || a.Path != e.Path || len(a.Args) != len(e.Args) {
			return false
		}
		for i := range e.Args {
			if !typesCompatible(e.Args[i], a.Args[i]) {
				return false
			}
		}
		return true
	case TTuple:
		a, ok := actual.(TTuple)
		if !ok || len(a.Items) != len(e.Items) {
			return false
		}
		for i := range e.Items {
			if !typesCompatible(e.Items[i], a.Items[i]) {
				return false
			}
		}
		return true
	case TList:
		a, ok := actual.(TList)
		return ok && typesCompatible(e.Elem, a.Elem)
	case TRecord:
		a, ok := actual.(TRecord)
		if !ok || len(a.Fields) != len(e.Fields) {
			return false
		}
		for i := range e.Fields {
			if e.Fields[i].Name != a.Fields[i].Name || !typesCompatible(e.Fields[i].Type, a.Fields[i].Type) {
				return false
			}
		}
		return true
	case TFunction:
		a, ok := actual.(TFunction)
		if !ok || len(a.Params) != len(e.Params) {
			return false
		}
		for i := range e.Params {
			if !typesCompatible(e.Params[i], a.Params[i]) {
				return false
			}
		}
		if !typesCompatible(e.Ret, a.Ret) {
			return false
		}
		return stringsEqual(e.Effects, a.Effects)
	default:
		return false
	}
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func primitiveByName(name string) (PrimitiveKind, bool) {
	switch name {
	case "Int":
		return PrimInt, true
	case "Float":
		return PrimFloat, true
	case "Bool":
		return PrimBool, true
	case "String":
		return PrimString, true
	default:
		return 0, false
	}
}

// astTypeToRepr converts a parsed TypeExpr into a TypeRepr. generics names
// any type parameter in scope, which converts to TGeneric instead of TNamed.
func astTypeToRepr(t ast.TypeExpr, generics map[string]bool) TypeRepr {
	if t == nil {
		return TUnknown{}
	}
	switch ty := t.(type) {
	case *ast.TypeUnit:
		return TUnit{}
	case *ast.TypeSelf:
		return TNamed{Path: "Self"}
	case *ast.TypeName:
		name := ty.Path.String()
		if len(ty.Path.Segments) == 1 && generics[ty.Path.Segments[0]] {
			return TGeneric{Name: name}
		}
		if prim, ok := primitiveByName(name); ok {
			return TPrimitive{Kind: prim}
		}
		return TNamed{Path: name}
	case *ast.TypeGeneric:
		args := make([]TypeRepr, len(ty.Args))
		for i, a := range ty.Args {
			args[i] = astTypeToRepr(a, generics)
		}
		return TNamed{Path: ty.Path.String(), Args: args}
	case *ast.TypeRecord:
		fields := make([]RecordField, len(ty.Fields))
		for i, f := range ty.Fields {
			fields[i] = RecordField{Name: f.Name, Type: astTypeToRepr(f.Type, generics)}
		}
		return TRecord{Fields: fields}
	case *ast.TypeList:
		return TList{Elem: astTypeToRepr(ty.Elem, generics)}
	case *ast.TypeTuple:
		items := make([]TypeRepr, len(ty.Items))
		for i, it := range ty.Items {
			items[i] = astTypeToRepr(it, generics)
		}
		return TTuple{Items: items}
	case *ast.TypeReference:
		return astTypeToRepr(ty.Inner, generics)
	case *ast.TypeFunction:
		params := make([]TypeRepr, len(ty.Params))
		for i, p := range ty.Params {
			params[i] = astTypeToRepr(p, generics)
		}
		ret := TypeRepr(TUnit{})
		if ty.ReturnType != nil {
			ret = astTypeToRepr(ty.ReturnType, generics)
		}
		return TFunction{Params: params, Ret: ret, Effects: ty.EffectRow}
	default:
		return TUnknown{}
	}
}

func literalType(l *ast.Literal) TypeRepr {
	switch l.Kind {
	case ast.LitInt:
		return TPrimitive{Kind: PrimInt}
	case ast.LitFloat:
		return TPrimitive{Kind: PrimFloat}
	case ast.LitBool:
		return TPrimitive{Kind: PrimBool}
	case ast.LitString:
		return TPrimitive{Kind: PrimString}
	default:
		return TUnit{}
	}
}
