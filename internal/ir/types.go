// Package ir defines the typed, SSA-with-phi intermediate representation
// produced from a lowered module, plus the builder that constructs it.
//
// Unlike hir.HExpr (a tree of calls), ir.Function is a list of basic blocks
// of flat instructions ending in an explicit terminator: every value has a
// stable ValueID, every block a stable BlockID, and every instruction's
// static type is resolved eagerly against an interned TypeTable rather than
// left for a later pass to infer.
package ir

import "github.com/Sir-Teo/mica/internal/ast"

// ValueID names an SSA value, unique within its owning Function.
type ValueID uint32

// BlockID names a basic block, unique within its owning Function.
type BlockID uint32

// TypeID names an entry in a TypeTable.
type TypeID uint32

// EffectID names an entry in an EffectTable.
type EffectID uint32

// Module is a lowered, typed program: one function list plus the type and
// effect tables every TypeID/EffectID in it is interned against.
type Module struct {
	Name      []string
	Functions []Function
	Types     *TypeTable
	Effects   *EffectTable
}

// Param is one function parameter: its declared type and the SSA value that
// holds its argument on entry.
type Param struct {
	Name  string
	Type  TypeID
	Value ValueID
}

// Function is a lowered function body as a control-flow graph of blocks.
// Blocks[0] is always the entry block.
type Function struct {
	Name      string
	Params    []Param
	RetType   TypeID
	Blocks    []BasicBlock
	EffectRow []EffectID
}

// BasicBlock is a straight-line instruction sequence ending in exactly one
// Terminator.
type BasicBlock struct {
	ID           BlockID
	Instructions []Instruction
	Terminator   Terminator
}

// Instruction is one SSA definition: an id, its static type, the capability
// effects it incurs, and the operation that produces it.
type Instruction struct {
	ID      ValueID
	Type    TypeID
	Effects []EffectID
	Kind    InstKind
}

// InstKind is the sum of instruction operations.
type InstKind interface{ instKind() }

type InstLiteral struct{ Lit ast.Literal }

func (InstLiteral) instKind() {}

type InstBinary struct {
	Op  ast.BinaryOp
	Lhs ValueID
	Rhs ValueID
}

func (InstBinary) instKind() {}

type InstCall struct {
	Func FuncRef
	Args []ValueID
}

func (InstCall) instKind() {}

// InstRecordField is one (name, value) pair of a record construction, in the
// order the interned RecordType declares (unknown field names are dropped,
// since the checker already flagged them).
type InstRecordField struct {
	Name  string
	Value ValueID
}

type InstRecord struct {
	TypePath *ast.Path
	Fields   []InstRecordField
}

func (InstRecord) instKind() {}

// InstPath is an unresolved path reference: emitted only when a multi-segment
// or out-of-scope path could not be resolved to a local SSA value.
type InstPath struct{ Path ast.Path }

func (InstPath) instKind() {}

// InstPhiIncoming is one (predecessor block, value) edge feeding a Phi.
type InstPhiIncoming struct {
	Block BlockID
	Value ValueID
}

type InstPhi struct{ Incomings []InstPhiIncoming }

func (InstPhi) instKind() {}

// Terminator is the sum of block-ending control transfers.
type Terminator interface{ terminator() }

// TermReturn is `return value?`; Value is the zero ValueID with HasValue
// false for a bare return.
type TermReturn struct {
	Value    ValueID
	HasValue bool
}

func (TermReturn) terminator() {}

type TermBranch struct {
	Cond      ValueID
	ThenBlock BlockID
	ElseBlock BlockID
}

func (TermBranch) terminator() {}

type TermJump struct{ Target BlockID }

func (TermJump) terminator() {}

// FuncRef is either a resolved free-function path or an unresolved method
// name carried over from hir.HFuncRef.
type FuncRef interface{ funcRef() }

type FuncRefFunction struct{ Path ast.Path }

func (FuncRefFunction) funcRef() {}

type FuncRefMethod struct{ Name string }

func (FuncRefMethod) funcRef() {}

// RecordField is one field of an interned RecordType: its name, type, and
// byte offset under natural alignment.
type RecordField struct {
	Name   string
	Type   TypeID
	Offset uint32
}

// FieldByName returns the field with the given name, or (zero, false).
func (r RecordType) FieldByName(name string) (RecordField, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return RecordField{}, false
}

// RecordType is a structural or named record layout: ordered fields plus the
// overall size and alignment computed from them.
type RecordType struct {
	Name   string // empty if anonymous
	Fields []RecordField
	Size   uint32
	Align  uint32
}

// TypeKind tags the shape of a Type.
type TypeKind int

const (
	KUnit TypeKind = iota
	KInt
	KFloat
	KBool
	KString
	KNamed
	KRecord
	KUnknown
)

// Type is one interned entry of a TypeTable. Only the fields relevant to Kind
// are populated: NamedName for KNamed, Record for KRecord.
type Type struct {
	Kind      TypeKind
	NamedName string
	Record    RecordType
}
