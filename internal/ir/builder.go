package ir

import (
	"fmt"

	"github.com/Sir-Teo/mica/internal/ast"
	"github.com/Sir-Teo/mica/internal/hir"
)

// LowerModule builds a typed SSA Module from a lowered HModule. Type aliases
// are interned before any function body is lowered, so forward references to
// a type declared later in the file still resolve. Function signatures have
// no such pre-pass: they are registered one function at a time as each body
// is lowered, so a call to a function declared later in the file resolves
// against whatever signature (if any) has been registered so far, not its
// final one.
func LowerModule(m hir.HModule) Module {
	ml := newModuleLower(m.Name)
	for _, it := range m.Items {
		if alias, ok := it.(hir.HTypeAlias); ok {
			ml.pushTypeAlias(alias)
		}
	}
	for _, it := range m.Items {
		if fn, ok := it.(hir.HFunction); ok {
			ml.pushFunction(fn)
		}
	}
	return ml.finish()
}

// functionSignature is what a caller needs to know about a callee before its
// own body has been lowered: its return type and required capabilities.
type functionSignature struct {
	retType TypeID
	effects []EffectID
}

type moduleLower struct {
	name               []string
	functions          []Function
	types              *TypeTable
	effects            *EffectTable
	functionSignatures map[string]functionSignature
}

func newModuleLower(name []string) *moduleLower {
	return &moduleLower{
		name:               name,
		types:              NewTypeTable(),
		effects:            NewEffectTable(),
		functionSignatures: map[string]functionSignature{},
	}
}

func (ml *moduleLower) pushTypeAlias(alias hir.HTypeAlias) {
	if len(alias.Params) != 0 {
		return
	}
	if rec, ok := alias.Value.(*ast.TypeRecord); ok {
		ml.types.InternRecord(alias.Name, rec.Fields)
		return
	}
	id := ml.types.InternTypeExpr(alias.Value)
	ml.types.DefineAlias(alias.Name, id)
}

func (ml *moduleLower) pushFunction(fn hir.HFunction) {
	retType := ml.types.Unknown()
	if fn.ReturnType != nil {
		retType = ml.types.InternTypeExpr(fn.ReturnType)
	}

	effectRow := make([]EffectID, len(fn.EffectRow))
	for i, name := range fn.EffectRow {
		effectRow[i] = ml.effects.Intern(name)
	}

	ml.functionSignatures[fn.Name] = functionSignature{retType: retType, effects: effectRow}

	fl := newFunctionLower(fn.Name, retType, effectRow, ml.types, ml.functionSignatures)
	for _, p := range fn.Params {
		fl.pushParam(p)
	}
	fl.lowerBlock(fn.Body)
	lowered := fl.finish()

	// A lowered body may narrow Unknown to something concrete (or the
	// reverse, via a conflicting return); republish the signature so a
	// caller appearing later in the file sees the final type.
	ml.functionSignatures[fn.Name] = functionSignature{retType: lowered.RetType, effects: lowered.EffectRow}
	ml.functions = append(ml.functions, lowered)
}

func (ml *moduleLower) finish() Module {
	return Module{Name: ml.name, Functions: ml.functions, Types: ml.types, Effects: ml.effects}
}

// blockBuilder accumulates one basic block's instructions until a terminator
// is set, then freezes into a BasicBlock.
type blockBuilder struct {
	id           BlockID
	instructions []Instruction
	terminator   Terminator
}

func newBlockBuilder(id BlockID) *blockBuilder {
	return &blockBuilder{id: id}
}

func (b *blockBuilder) hasTerminator() bool { return b.terminator != nil }

func (b *blockBuilder) setTerminator(t Terminator) { b.terminator = t }

func (b *blockBuilder) pushInstruction(inst Instruction) {
	b.instructions = append(b.instructions, inst)
}

func (b *blockBuilder) finish() BasicBlock {
	term := b.terminator
	if term == nil {
		term = TermReturn{}
	}
	return BasicBlock{ID: b.id, Instructions: b.instructions, Terminator: term}
}

// functionLower builds one Function's control-flow graph, allocating values
// and blocks in strictly increasing order as it walks the lowered body.
type functionLower struct {
	name         string
	params       []Param
	nextValue    uint32
	nextBlock    uint32
	currentBlock *blockBuilder
	blocks       []BasicBlock
	scopes       []map[string]ValueID
	valueTypes   map[ValueID]TypeID
	retType      TypeID
	effectRow    []EffectID
	types        *TypeTable
	unknown      TypeID
	functions    map[string]functionSignature
}

func newFunctionLower(name string, retType TypeID, effectRow []EffectID, types *TypeTable, functions map[string]functionSignature) *functionLower {
	return &functionLower{
		name:         name,
		nextValue:    0,
		nextBlock:    1,
		currentBlock: newBlockBuilder(0),
		scopes:       []map[string]ValueID{{}},
		valueTypes:   map[ValueID]TypeID{},
		retType:      retType,
		effectRow:    effectRow,
		types:        types,
		unknown:      types.Unknown(),
		functions:    functions,
	}
}

func (f *functionLower) finish() Function {
	if !f.currentBlock.hasTerminator() {
		unit, unitTy := f.emitLiteral(ast.Literal{Kind: ast.LitUnit})
		f.currentBlock.setTerminator(TermReturn{Value: unit, HasValue: true})
		f.mergeReturnType(unitTy)
	}
	f.blocks = append(f.blocks, f.currentBlock.finish())
	return Function{
		Name:      f.name,
		Params:    f.params,
		RetType:   f.retType,
		Blocks:    f.blocks,
		EffectRow: f.effectRow,
	}
}

func (f *functionLower) pushParam(p hir.HParam) {
	id := f.allocValue()
	ty := f.types.InternTypeExpr(p.Type)
	f.valueTypes[id] = ty
	f.scopes[len(f.scopes)-1][p.Name] = id
	f.params = append(f.params, Param{Name: p.Name, Type: ty, Value: id})
}

func (f *functionLower) lowerBlock(block hir.HBlock) {
	f.withScope(func() {
		for i, stmt := range block.Stmts {
			if f.currentBlock.hasTerminator() {
				break
			}
			isLast := i+1 == len(block.Stmts)
			if isLast {
				if es, ok := stmt.(hir.HExprStmt); ok {
					f.lowerReturn(es.Value, true)
					break
				}
			}
			f.lowerStmt(stmt)
		}
	})
}

func (f *functionLower) lowerStmt(stmt hir.HStmt) {
	switch s := stmt.(type) {
	case hir.HLet:
		val, ty := f.lowerExpr(s.Value)
		f.define(s.Name, val, ty)
	case hir.HExprStmt:
		f.lowerExpr(s.Value)
	case hir.HReturn:
		f.lowerReturn(s.Value, s.Value != nil)
	}
}

// lowerReturn lowers a return statement, or (via hasExpr) a trailing tail
// expression that implicitly becomes the block's return value.
func (f *functionLower) lowerReturn(expr hir.HExpr, hasExpr bool) {
	if f.currentBlock.hasTerminator() {
		return
	}
	var valueID ValueID
	hasValue := false
	if hasExpr && expr != nil {
		id, ty := f.lowerExpr(expr)
		valueID, hasValue = id, true
		f.mergeReturnType(ty)
	} else {
		unitTy := f.types.Intern(Type{Kind: KUnit})
		f.mergeReturnType(unitTy)
	}
	f.currentBlock.setTerminator(TermReturn{Value: valueID, HasValue: hasValue})
}

func (f *functionLower) lowerExpr(e hir.HExpr) (ValueID, TypeID) {
	switch ex := e.(type) {
	case hir.HLiteral:
		return f.emitLiteral(ex.Lit)

	case hir.HPath:
		if len(ex.Path.Segments) == 1 {
			if id, ok := f.lookup(ex.Path.Segments[0]); ok {
				return id, f.typeOfValue(id)
			}
		}
		return f.emitInstruction(InstPath{Path: ex.Path}, f.unknown, nil)

	case hir.HCall:
		if method, ok := ex.Func.(hir.HFuncRefMethod); ok && method.Name == "if" {
			return f.lowerIfCall(ex.Args)
		}
		args := make([]ValueID, len(ex.Args))
		for i, a := range ex.Args {
			id, _ := f.lowerExpr(a)
			args[i] = id
		}
		var ref FuncRef
		switch fn := ex.Func.(type) {
		case hir.HFuncRefFunction:
			ref = FuncRefFunction{Path: fn.Path}
		case hir.HFuncRefMethod:
			ref = FuncRefMethod{Name: fn.Name}
		}
		effects := f.lookupEffects(ref)
		retTy := f.lookupReturnType(ref)
		return f.emitInstruction(InstCall{Func: ref, Args: args}, retTy, effects)

	case hir.HBinary:
		lhsID, lhsTy := f.lowerExpr(ex.Left)
		rhsID, _ := f.lowerExpr(ex.Right)
		rhsTy := f.typeOfValue(rhsID)
		ty := f.unknown
		if lhsTy != f.unknown && lhsTy == rhsTy {
			ty = lhsTy
		}
		return f.emitInstruction(InstBinary{Op: ex.Op, Lhs: lhsID, Rhs: rhsID}, ty, nil)

	case hir.HBlockExpr:
		return f.lowerBlockExpr(ex.Block)

	case hir.HRecord:
		lowered := make([]InstRecordField, len(ex.Fields))
		for i, fld := range ex.Fields {
			id, _ := f.lowerExpr(fld.Value)
			lowered[i] = InstRecordField{Name: fld.Name, Value: id}
		}
		ty := f.unknown
		if ex.TypePath != nil {
			if id, ok := f.lookupType(*ex.TypePath); ok {
				ty = id
			}
		}
		reordered := f.reorderRecordFields(ty, lowered)
		return f.emitInstruction(InstRecord{TypePath: ex.TypePath, Fields: reordered}, ty, nil)

	default:
		panic(fmt.Sprintf("ir: unhandled HExpr %T", e))
	}
}

// typeOfValue looks up a previously recorded value's type, defaulting to
// Unknown (mirrors the grounding source's fallback for a stale/absent id).
func (f *functionLower) typeOfValue(id ValueID) TypeID {
	if ty, ok := f.valueTypes[id]; ok {
		return ty
	}
	return f.unknown
}

func (f *functionLower) lowerBlockExpr(block hir.HBlock) (ValueID, TypeID) {
	var resultID ValueID
	resultTy := f.unknown
	haveResult := false
	f.withScope(func() {
		for _, stmt := range block.Stmts {
			switch s := stmt.(type) {
			case hir.HLet:
				val, ty := f.lowerExpr(s.Value)
				f.define(s.Name, val, ty)
			case hir.HExprStmt:
				resultID, resultTy = f.lowerExpr(s.Value)
				haveResult = true
			case hir.HReturn:
				f.lowerReturn(s.Value, s.Value != nil)
			}
			if f.currentBlock.hasTerminator() {
				break
			}
		}
	})
	if haveResult {
		return resultID, resultTy
	}
	// A block whose only statement was a return (or an empty block) leaves
	// nothing to hand back as a value. If that return already terminated the
	// block, there is no live point left to emit into; report the implicit
	// Unit without touching the block. Reaching this as a live value (e.g.
	// the result of an empty `{}` block) still emits the Unit literal.
	if f.currentBlock.hasTerminator() {
		return 0, f.types.Intern(Type{Kind: KUnit})
	}
	return f.emitLiteral(ast.Literal{Kind: ast.LitUnit})
}

func (f *functionLower) emitLiteral(lit ast.Literal) (ValueID, TypeID) {
	ty := f.types.Intern(TypeOfLiteral(lit))
	return f.emitInstruction(InstLiteral{Lit: lit}, ty, nil)
}

func (f *functionLower) emitInstruction(kind InstKind, ty TypeID, effects []EffectID) (ValueID, TypeID) {
	if f.currentBlock.hasTerminator() {
		panic("ir: attempted to emit instruction after block was terminated")
	}
	id := f.allocValue()
	f.valueTypes[id] = ty
	f.currentBlock.pushInstruction(Instruction{ID: id, Type: ty, Effects: effects, Kind: kind})
	return id, ty
}

// lowerIfCall implements SSA if-lowering: the current block branches to
// fresh then/else blocks, each arm lowers in its own scope into its own
// block, and (for any arm that didn't already terminate, e.g. via a nested
// return) jumps to a shared merge block where a Phi joins the two arm
// values.
func (f *functionLower) lowerIfCall(args []hir.HExpr) (ValueID, TypeID) {
	if len(args) < 2 {
		panic("ir: if call expected at least a condition and a then branch")
	}
	cond := args[0]
	thenBranch := args[1]
	var elseBranch hir.HExpr
	if len(args) > 2 {
		elseBranch = args[2]
	}

	condValue, _ := f.lowerExpr(cond)

	thenBlock := f.allocBlock()
	thenBlockID := thenBlock.id
	elseBlock := f.allocBlock()
	elseBlockID := elseBlock.id
	mergeBlock := f.allocBlock()
	mergeBlockID := mergeBlock.id

	f.currentBlock.setTerminator(TermBranch{Cond: condValue, ThenBlock: thenBlockID, ElseBlock: elseBlockID})

	previous := f.switchBlock(thenBlock)
	f.blocks = append(f.blocks, previous.finish())

	var thenValue ValueID
	var thenTy TypeID
	f.withScope(func() { thenValue, thenTy = f.lowerExpr(thenBranch) })
	if !f.currentBlock.hasTerminator() {
		f.currentBlock.setTerminator(TermJump{Target: mergeBlockID})
	}
	previousThen := f.switchBlock(elseBlock)
	f.blocks = append(f.blocks, previousThen.finish())

	var elseValue ValueID
	var elseTy TypeID
	if elseBranch != nil {
		f.withScope(func() { elseValue, elseTy = f.lowerExpr(elseBranch) })
	} else {
		elseValue, elseTy = f.emitLiteral(ast.Literal{Kind: ast.LitUnit})
	}
	if !f.currentBlock.hasTerminator() {
		f.currentBlock.setTerminator(TermJump{Target: mergeBlockID})
	}
	previousElse := f.switchBlock(mergeBlock)
	f.blocks = append(f.blocks, previousElse.finish())

	ty := f.joinTypes(thenTy, elseTy)
	return f.emitInstruction(InstPhi{Incomings: []InstPhiIncoming{
		{Block: thenBlockID, Value: thenValue},
		{Block: elseBlockID, Value: elseValue},
	}}, ty, nil)
}

func (f *functionLower) define(name string, value ValueID, ty TypeID) {
	if _, ok := f.valueTypes[value]; !ok {
		f.valueTypes[value] = ty
	}
	f.scopes[len(f.scopes)-1][name] = value
}

func (f *functionLower) lookup(name string) (ValueID, bool) {
	for i := len(f.scopes) - 1; i >= 0; i-- {
		if id, ok := f.scopes[i][name]; ok {
			return id, true
		}
	}
	return 0, false
}

func (f *functionLower) lookupEffects(ref FuncRef) []EffectID {
	fn, ok := ref.(FuncRefFunction)
	if !ok || len(fn.Path.Segments) != 1 {
		return nil
	}
	sig, ok := f.functions[fn.Path.Segments[0]]
	if !ok {
		return nil
	}
	return sig.effects
}

func (f *functionLower) lookupReturnType(ref FuncRef) TypeID {
	fn, ok := ref.(FuncRefFunction)
	if !ok || len(fn.Path.Segments) != 1 {
		return f.unknown
	}
	sig, ok := f.functions[fn.Path.Segments[0]]
	if !ok {
		return f.unknown
	}
	return sig.retType
}

func (f *functionLower) lookupType(path ast.Path) (TypeID, bool) {
	if len(path.Segments) != 1 {
		return 0, false
	}
	return f.types.LookupNamed(path.Segments[0])
}

// reorderRecordFields reorders emitted (name, value) pairs to match the
// interned RecordType's declared field order, silently dropping any name the
// record type doesn't declare (the checker already flagged it).
func (f *functionLower) reorderRecordFields(ty TypeID, values []InstRecordField) []InstRecordField {
	got := f.types.Get(ty)
	if got.Kind != KRecord {
		return values
	}
	out := make([]InstRecordField, 0, len(got.Record.Fields))
	for _, field := range got.Record.Fields {
		for _, v := range values {
			if v.Name == field.Name {
				out = append(out, InstRecordField{Name: field.Name, Value: v.Value})
				break
			}
		}
	}
	return out
}

func (f *functionLower) withScope(body func()) {
	f.scopes = append(f.scopes, map[string]ValueID{})
	body()
	f.scopes = f.scopes[:len(f.scopes)-1]
}

// mergeReturnType narrows the function's inferred return type across every
// return site: the first concrete type wins, a later Unknown is ignored, and
// a later type that disagrees with what's already settled collapses the
// whole function's return type to Unknown.
func (f *functionLower) mergeReturnType(ty TypeID) {
	if f.retType == f.unknown {
		f.retType = ty
		return
	}
	if ty == f.unknown {
		return
	}
	if f.retType != ty {
		f.retType = f.unknown
	}
}

func (f *functionLower) allocValue() ValueID {
	id := ValueID(f.nextValue)
	f.nextValue++
	return id
}

func (f *functionLower) allocBlock() *blockBuilder {
	id := BlockID(f.nextBlock)
	f.nextBlock++
	return newBlockBuilder(id)
}

func (f *functionLower) switchBlock(next *blockBuilder) *blockBuilder {
	previous := f.currentBlock
	f.currentBlock = next
	return previous
}

// joinTypes is the SSA phi join: identical types join to themselves, either
// side being Unknown joins to the other side, and two structurally different
// concrete types join to Unknown.
func (f *functionLower) joinTypes(lhs, rhs TypeID) TypeID {
	if lhs == rhs {
		return lhs
	}
	if lhs == f.unknown {
		return rhs
	}
	if rhs == f.unknown {
		return lhs
	}
	return f.unknown
}
