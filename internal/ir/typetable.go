package ir

import (
	"strconv"
	"strings"

	"github.com/Sir-Teo/mica/internal/ast"
)

// TypeTable interns every Type that appears in a Module behind a stable
// TypeID, so two structurally equal types (including two anonymous records
// with the same field layout) always share one id.
//
// Go slices aren't comparable, so Type can't be a map key the way the
// grounding Rust source uses directly (a derive(Hash) enum). TypeTable keys
// its dedup index on a canonical string built from each Type's shape
// instead; the entries slice remains the source of truth, the key is only a
// lookup aid.
type TypeTable struct {
	entries []Type
	index   map[string]TypeID
	named   map[string]TypeID
	unknown TypeID
}

// NewTypeTable returns a table pre-seeded with Unknown and the five built-in
// primitive types, matching what every Module's TypeTable starts with.
func NewTypeTable() *TypeTable {
	t := &TypeTable{index: map[string]TypeID{}, named: map[string]TypeID{}}
	t.unknown = t.insertRaw(Type{Kind: KUnknown})
	for name, ty := range map[string]Type{
		"Unit":   {Kind: KUnit},
		"Int":    {Kind: KInt},
		"Float":  {Kind: KFloat},
		"Bool":   {Kind: KBool},
		"String": {Kind: KString},
	} {
		id := t.insertRaw(ty)
		t.named[name] = id
	}
	return t
}

// Unknown returns the table's single Unknown type id.
func (t *TypeTable) Unknown() TypeID { return t.unknown }

// Get returns the interned Type for id.
func (t *TypeTable) Get(id TypeID) Type { return t.entries[int(id)] }

// TypeEntry is one (id, type) pair returned by Entries.
type TypeEntry struct {
	ID   TypeID
	Type Type
}

// Entries returns every interned (TypeID, Type) pair in insertion order.
func (t *TypeTable) Entries() []TypeEntry {
	out := make([]TypeEntry, len(t.entries))
	for i, ty := range t.entries {
		out[i] = TypeEntry{ID: TypeID(i), Type: ty}
	}
	return out
}

// LookupNamed returns the id bound to a declared name, if any.
func (t *TypeTable) LookupNamed(name string) (TypeID, bool) {
	id, ok := t.named[name]
	return id, ok
}

// DefineAlias binds name to an existing TypeID (from a non-record type alias
// declaration).
func (t *TypeTable) DefineAlias(name string, id TypeID) {
	t.named[name] = id
}

// Intern returns the id for ty, inserting a new entry only if no
// structurally-equal one already exists.
func (t *TypeTable) Intern(ty Type) TypeID {
	key := typeKey(ty)
	if id, ok := t.index[key]; ok {
		return id
	}
	return t.insertRaw(ty)
}

func (t *TypeTable) insertRaw(ty Type) TypeID {
	key := typeKey(ty)
	if id, ok := t.index[key]; ok {
		return id
	}
	id := TypeID(len(t.entries))
	switch ty.Kind {
	case KNamed:
		t.named[ty.NamedName] = id
	case KRecord:
		if ty.Record.Name != "" {
			t.named[ty.Record.Name] = id
		}
	}
	t.index[key] = id
	t.entries = append(t.entries, ty)
	return id
}

// typeKey renders a Type into a canonical string solely for dedup lookup.
func typeKey(ty Type) string {
	switch ty.Kind {
	case KNamed:
		return "named:" + ty.NamedName
	case KRecord:
		var b strings.Builder
		b.WriteString("record:")
		b.WriteString(ty.Record.Name)
		for _, f := range ty.Record.Fields {
			b.WriteByte('|')
			b.WriteString(f.Name)
			b.WriteByte(':')
			b.WriteString(strconv.FormatUint(uint64(f.Type), 10))
		}
		return b.String()
	default:
		return "prim:" + strconv.Itoa(int(ty.Kind))
	}
}

// InternTypeExpr resolves a surface TypeExpr to a TypeID, following the same
// rules the checker uses for the structural parts it cares about: a bare
// name resolves against declared aliases first, then the five built-ins,
// else becomes a fresh Named(name); records are interned structurally;
// everything without a faithful static representation (references, sums,
// tuples beyond unit, Self) becomes Unknown.
func (t *TypeTable) InternTypeExpr(expr ast.TypeExpr) TypeID {
	switch e := expr.(type) {
	case nil:
		return t.unknown
	case *ast.TypeUnit:
		return t.Intern(Type{Kind: KUnit})
	case *ast.TypeName:
		return t.internName(e.Path.String())
	case *ast.TypeGeneric:
		return t.internName(e.Path.String())
	case *ast.TypeRecord:
		return t.InternRecord("", e.Fields)
	case *ast.TypeTuple:
		if len(e.Items) == 0 {
			return t.Intern(Type{Kind: KUnit})
		}
		return t.unknown
	case *ast.TypeFunction:
		return t.InternTypeExpr(e.ReturnType)
	case *ast.TypeList:
		return t.InternTypeExpr(e.Elem)
	default:
		// TypeReference, TypeSum, TypeSelf: no faithful static representation.
		return t.unknown
	}
}

func (t *TypeTable) internName(name string) TypeID {
	if id, ok := t.LookupNamed(name); ok {
		return id
	}
	return t.Intern(builtinOrNamed(name))
}

func builtinOrNamed(name string) Type {
	switch name {
	case "Unit":
		return Type{Kind: KUnit}
	case "Int":
		return Type{Kind: KInt}
	case "Float":
		return Type{Kind: KFloat}
	case "Bool":
		return Type{Kind: KBool}
	case "String":
		return Type{Kind: KString}
	default:
		return Type{Kind: KNamed, NamedName: name}
	}
}

// InternRecord computes a natural-alignment layout for fields and interns
// the resulting RecordType, optionally under name.
func (t *TypeTable) InternRecord(name string, fields []ast.RecordFieldType) TypeID {
	layout := make([]RecordField, 0, len(fields))
	var offset, align uint32 = 0, 1
	for _, f := range fields {
		fieldTy := t.InternTypeExpr(f.Type)
		fieldAlign := t.AlignOf(fieldTy)
		fieldSize := t.SizeOf(fieldTy)
		offset = alignTo(offset, fieldAlign)
		layout = append(layout, RecordField{Name: f.Name, Type: fieldTy, Offset: offset})
		offset += fieldSize
		if fieldAlign > align {
			align = fieldAlign
		}
	}
	size := alignTo(offset, align)
	return t.Intern(Type{Kind: KRecord, Record: RecordType{Name: name, Fields: layout, Size: size, Align: align}})
}

// SizeOf returns ty's size in bytes under the table's natural-alignment
// layout rules.
func (t *TypeTable) SizeOf(ty TypeID) uint32 {
	switch got := t.Get(ty); got.Kind {
	case KUnit:
		return 0
	case KBool:
		return 1
	case KRecord:
		return got.Record.Size
	default: // Int, Float, String, Named, Unknown
		return 8
	}
}

// AlignOf returns ty's alignment in bytes.
func (t *TypeTable) AlignOf(ty TypeID) uint32 {
	switch got := t.Get(ty); got.Kind {
	case KUnit, KBool:
		return 1
	case KRecord:
		return got.Record.Align
	default:
		return 8
	}
}

func alignTo(value, align uint32) uint32 {
	if align <= 1 {
		return value
	}
	return ((value + align - 1) / align) * align
}

// TypeOfLiteral maps a literal kind to its static Type.
func TypeOfLiteral(lit ast.Literal) Type {
	switch lit.Kind {
	case ast.LitInt:
		return Type{Kind: KInt}
	case ast.LitFloat:
		return Type{Kind: KFloat}
	case ast.LitBool:
		return Type{Kind: KBool}
	case ast.LitString:
		return Type{Kind: KString}
	default:
		return Type{Kind: KUnit}
	}
}
