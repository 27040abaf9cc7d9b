// Package hir defines the tiny call-oriented intermediate form produced by
// lowering a parsed module. Every surface expression form collapses to one
// of a handful of HExpr shapes; control flow, assignment, and the various
// prefix/postfix operators all become HCall with a synthetic HFuncRef, so
// the next stage (the typed IR builder) only has to special-case a single
// method name ("if") instead of re-deriving control flow from syntax.
package hir

import "github.com/Sir-Teo/mica/internal/ast"

// HModule is the lowered form of an ast.Module.
type HModule struct {
	Name  []string
	Items []HItem
}

// HItem is either a lowered function or a passthrough type alias name (kept
// so the IR builder's pre-pass can still see every declared alias without
// re-walking the original AST).
type HItem interface{ hItem() }

// HParam is one lowered function parameter. The type is carried through
// unlowered so the IR builder's pre-pass can intern it; the checker already
// validated it against the body.
type HParam struct {
	Name string
	Type ast.TypeExpr
}

// HFunction is a lowered function. ReturnType is nil when none was declared;
// EffectRow is the declared capability names in source order.
type HFunction struct {
	Name       string
	Params     []HParam
	ReturnType ast.TypeExpr
	EffectRow  []string
	Body       HBlock
}

func (HFunction) hItem() {}

// HTypeAlias carries the declaration's name, generic arity, and right-hand
// side forward. The value is passed through unlowered (TypeExpr has no HIR
// form of its own); the IR builder's pre-pass interns it.
type HTypeAlias struct {
	Name   string
	Params []string
	Value  ast.TypeExpr
}

func (HTypeAlias) hItem() {}

// HBlock is an ordered sequence of lowered statements.
type HBlock struct {
	Stmts []HStmt
}

// HStmt is any lowered statement.
type HStmt interface{ hStmt() }

type HLet struct {
	Name  string
	Value HExpr
}

func (HLet) hStmt() {}

type HExprStmt struct{ Value HExpr }

func (HExprStmt) hStmt() {}

// HReturn is `return expr?`; Value is nil for a bare `return`.
type HReturn struct{ Value HExpr }

func (HReturn) hStmt() {}

// HExpr is the sum of lowered expression forms.
type HExpr interface{ hExpr() }

type HLiteral struct{ Lit ast.Literal }

func (HLiteral) hExpr() {}

// HPath is also used as the synthetic "variable reference" form: a
// single-segment Path stands in for what the teacher's original called Var.
type HPath struct{ Path ast.Path }

func (HPath) hExpr() {}

type HBinary struct {
	Op    ast.BinaryOp
	Left  HExpr
	Right HExpr
}

func (HBinary) hExpr() {}

type HBlockExpr struct{ Block HBlock }

func (HBlockExpr) hExpr() {}

// HRecord mirrors ast.Record: an optional type path plus ordered fields,
// each already lowered.
type HRecordField struct {
	Name  string
	Value HExpr
}

type HRecord struct {
	TypePath *ast.Path
	Fields   []HRecordField
}

func (HRecord) hExpr() {}

// HCall is every other expression form, desugared to a call against a
// HFuncRef with a fixed operand order per case (see lowerExpr in lower.go).
type HCall struct {
	Func HFuncRef
	Args []HExpr
}

func (HCall) hExpr() {}

// HFuncRef is a tagged union: a free function reference by path, or a
// desugared method/operator name whose receiver (if any) is the first
// operand in Args.
type HFuncRef interface{ hFuncRef() }

type HFuncRefFunction struct{ Path ast.Path }

func (HFuncRefFunction) hFuncRef() {}

type HFuncRefMethod struct{ Name string }

func (HFuncRefMethod) hFuncRef() {}
