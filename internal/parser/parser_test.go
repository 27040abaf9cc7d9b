package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sir-Teo/mica/internal/ast"
	"github.com/Sir-Teo/mica/internal/parser"
)

func parseOK(t *testing.T, src string) *ast.Module {
	t.Helper()
	m, err := parser.Parse(src)
	require.NoError(t, err)
	require.NotNil(t, m)
	return m
}

func TestParseModuleHeaderAndDottedName(t *testing.T) {
	m := parseOK(t, `module app.core
fn main() -> Int { return 0 }`)
	assert.Equal(t, []string{"app", "core"}, m.Name)
	require.Len(t, m.Items, 1)
}

func TestParseSumTypeAlias(t *testing.T) {
	m := parseOK(t, `module m
pub type Option[T] = Some(T) | None`)
	alias, ok := m.Items[0].(*ast.TypeAlias)
	require.True(t, ok)
	assert.True(t, alias.IsPublic)
	assert.Equal(t, "Option", alias.Name)
	assert.Equal(t, []string{"T"}, alias.Params)
	sum, ok := alias.Value.(*ast.TypeSum)
	require.True(t, ok)
	require.Len(t, sum.Variants, 2)
	assert.Equal(t, "Some", sum.Variants[0].Name)
	assert.Equal(t, "None", sum.Variants[1].Name)
}

func TestParseRecordTypeAlias(t *testing.T) {
	m := parseOK(t, `module m
type Point = { x: Int, y: Int }`)
	alias := m.Items[0].(*ast.TypeAlias)
	rec, ok := alias.Value.(*ast.TypeRecord)
	require.True(t, ok)
	require.Len(t, rec.Fields, 2)
	assert.Equal(t, "x", rec.Fields[0].Name)
}

func TestParseFunctionSignatureWithEffectsAndGenerics(t *testing.T) {
	m := parseOK(t, `module m
pub fn read[T: Show](path: String) -> T !{io, fs} {
    return path
}`)
	fn := m.Items[0].(*ast.Function)
	assert.True(t, fn.IsPublic)
	assert.Equal(t, "read", fn.Name)
	require.Len(t, fn.Generics, 1)
	assert.Equal(t, "T", fn.Generics[0].Name)
	assert.Equal(t, []string{"io", "fs"}, fn.EffectRow)
	require.Len(t, fn.Params, 1)
	assert.Equal(t, "path", fn.Params[0].Name)
}

func TestParseImplBlock(t *testing.T) {
	m := parseOK(t, `module m
impl Show for Point {
    fn show(self: Point) -> String { return "pt" }
}`)
	impl := m.Items[0].(*ast.ImplBlock)
	assert.Equal(t, "Show", impl.TraitPath.String())
	require.Len(t, impl.Items, 1)
	assert.Equal(t, "show", impl.Items[0].Method.Name)
}

func TestParseCtorVsCallDisambiguation(t *testing.T) {
	m := parseOK(t, `module m
fn f() -> Int {
    let a = Some(1)
    let b = compute(1, 2)
    return 0
}`)
	fn := m.Items[0].(*ast.Function)
	letA := fn.Body.Statements[0].(*ast.LetStmt)
	_, isCtor := letA.Value.(*ast.Ctor)
	assert.True(t, isCtor, "Some(1) should parse as Ctor")

	letB := fn.Body.Statements[1].(*ast.LetStmt)
	_, isCall := letB.Value.(*ast.Call)
	assert.True(t, isCall, "compute(1, 2) should parse as Call")
}

func TestParseRecordLiteralRequiresTypePath(t *testing.T) {
	m := parseOK(t, `module m
fn f() -> Int {
    let p = Point { x: 1, y: 2 }
    let b = { 1 }
    return 0
}`)
	fn := m.Items[0].(*ast.Function)
	letP := fn.Body.Statements[0].(*ast.LetStmt)
	rec, ok := letP.Value.(*ast.Record)
	require.True(t, ok)
	require.NotNil(t, rec.TypePath)
	assert.Equal(t, "Point", rec.TypePath.String())

	letB := fn.Body.Statements[1].(*ast.LetStmt)
	_, isBlock := letB.Value.(*ast.BlockExpr)
	assert.True(t, isBlock, "bare { ... } must parse as a Block expression")
}

func TestParseMatchWithGuardAndVariantPattern(t *testing.T) {
	m := parseOK(t, `module m
fn f(x: Option[Int]) -> Int {
    match x {
        Some(n) if n > 0 => n,
        Some(n) => 0,
        None => 0,
    }
    return 0
}`)
	fn := m.Items[0].(*ast.Function)
	exprStmt := fn.Body.Statements[0].(*ast.ExprStmt)
	match, ok := exprStmt.Expr.(*ast.Match)
	require.True(t, ok)
	require.Len(t, match.Arms, 3)
	assert.NotNil(t, match.Arms[0].Guard)
	variant, ok := match.Arms[0].Pattern.(*ast.EnumVariantPattern)
	require.True(t, ok)
	assert.Equal(t, "Some", variant.Path.String())
}

func TestParseElseIfChain(t *testing.T) {
	m := parseOK(t, `module m
fn f(x: Int) -> Int {
    if x == 0 {
        return 0
    } else if x == 1 {
        return 1
    } else {
        return 2
    }
}`)
	fn := m.Items[0].(*ast.Function)
	stmt := fn.Body.Statements[0].(*ast.ExprStmt)
	outer := stmt.Expr.(*ast.If)
	require.NotNil(t, outer.Else)
	require.Len(t, outer.Else.Statements, 1)
	inner, ok := outer.Else.Statements[0].(*ast.ExprStmt)
	require.True(t, ok)
	_, isIf := inner.Expr.(*ast.If)
	assert.True(t, isIf, "else-if must desugar to a nested If wrapped in a Block")
}

func TestParseForWhileLoop(t *testing.T) {
	m := parseOK(t, `module m
fn f() -> Int {
    for x in xs {
        continue
    }
    while true {
        break
    }
    loop {
        break
    }
    return 0
}`)
	fn := m.Items[0].(*ast.Function)
	require.Len(t, fn.Body.Statements, 4)
	forStmt := fn.Body.Statements[0].(*ast.ExprStmt)
	_, isFor := forStmt.Expr.(*ast.For)
	assert.True(t, isFor)
	whileStmt := fn.Body.Statements[1].(*ast.ExprStmt)
	_, isWhile := whileStmt.Expr.(*ast.While)
	assert.True(t, isWhile)
	loopStmt := fn.Body.Statements[2].(*ast.ExprStmt)
	_, isLoop := loopStmt.Expr.(*ast.Loop)
	assert.True(t, isLoop)
}

func TestParseTryPostfixOperator(t *testing.T) {
	m := parseOK(t, `module m
fn f() -> Int {
    let v = risky()?
    return v
}`)
	fn := m.Items[0].(*ast.Function)
	let := fn.Body.Statements[0].(*ast.LetStmt)
	_, ok := let.Value.(*ast.Try)
	assert.True(t, ok)
}

func TestParseUsingWithAndWithoutBinding(t *testing.T) {
	m := parseOK(t, `module m
fn f() -> Int {
    using f = openFile() {
        return 1
    }
    using lockGuard() {
        return 2
    }
    return 0
}`)
	fn := m.Items[0].(*ast.Function)
	withBinding := fn.Body.Statements[0].(*ast.ExprStmt).Expr.(*ast.Using)
	assert.Equal(t, "f", withBinding.Binding)
	withoutBinding := fn.Body.Statements[1].(*ast.ExprStmt).Expr.(*ast.Using)
	assert.Equal(t, "", withoutBinding.Binding)
}

func TestParseChanExpression(t *testing.T) {
	m := parseOK(t, `module m
fn f() -> Int {
    let c = chan[Int](8)
    return 0
}`)
	fn := m.Items[0].(*ast.Function)
	let := fn.Body.Statements[0].(*ast.LetStmt)
	ch, ok := let.Value.(*ast.Chan)
	require.True(t, ok)
	require.NotNil(t, ch.Capacity)
}

func TestParseSpawnAwait(t *testing.T) {
	m := parseOK(t, `module m
fn f() -> Int {
    let h = spawn compute()
    let v = await h
    return 0
}`)
	fn := m.Items[0].(*ast.Function)
	let0 := fn.Body.Statements[0].(*ast.LetStmt)
	_, isSpawn := let0.Value.(*ast.Spawn)
	assert.True(t, isSpawn)
	let1 := fn.Body.Statements[1].(*ast.LetStmt)
	_, isAwait := let1.Value.(*ast.Await)
	assert.True(t, isAwait)
}

func TestParseBinaryPrecedence(t *testing.T) {
	m := parseOK(t, `module m
fn f() -> Int {
    let v = 1 + 2 * 3
    return v
}`)
	fn := m.Items[0].(*ast.Function)
	let := fn.Body.Statements[0].(*ast.LetStmt)
	bin, ok := let.Value.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, ast.OpAdd, bin.Op)
	rhs, ok := bin.Right.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, ast.OpMul, rhs.Op)
}

func TestParseFieldAndIndexPostfix(t *testing.T) {
	m := parseOK(t, `module m
fn f() -> Int {
    let v = items[0].value
    return v
}`)
	fn := m.Items[0].(*ast.Function)
	let := fn.Body.Statements[0].(*ast.LetStmt)
	field, ok := let.Value.(*ast.Field)
	require.True(t, ok)
	assert.Equal(t, "value", field.Name)
	_, isIndex := field.Expr.(*ast.Index)
	assert.True(t, isIndex)
}

func TestParseAssignmentExpression(t *testing.T) {
	m := parseOK(t, `module m
fn f() -> Int {
    x = 5
    return x
}`)
	fn := m.Items[0].(*ast.Function)
	stmt := fn.Body.Statements[0].(*ast.ExprStmt)
	_, ok := stmt.Expr.(*ast.Assignment)
	assert.True(t, ok)
}

func TestParseErrorOnMissingParamType(t *testing.T) {
	_, err := parser.Parse(`module m
fn f(x: ) -> Int { return x }`)
	require.Error(t, err)
}

func TestParseRecordPatternWithRest(t *testing.T) {
	m := parseOK(t, `module m
fn f(p: Point) -> Int {
    match p {
        { x: a, .. } => a,
    }
    return 0
}`)
	fn := m.Items[0].(*ast.Function)
	match := fn.Body.Statements[0].(*ast.ExprStmt).Expr.(*ast.Match)
	rec, ok := match.Arms[0].Pattern.(*ast.RecordPattern)
	require.True(t, ok)
	assert.True(t, rec.Rest)
}
