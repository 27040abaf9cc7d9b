package resolver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sir-Teo/mica/internal/ast"
	"github.com/Sir-Teo/mica/internal/parser"
	"github.com/Sir-Teo/mica/internal/resolver"
)

func mustParse(t *testing.T, src string) *resolver.Resolved {
	t.Helper()
	m, err := parser.Parse(src)
	require.NoError(t, err)
	return resolver.Resolve(m)
}

// TestScenarioS5UnwrapOption exercises S5 and P3: resolving `Some(v)`
// inside a match arm must come back as kind=Variant with parent "Option".
func TestScenarioS5UnwrapOption(t *testing.T) {
	res := mustParse(t, `module demo
type Option[T]=Some(T)|None
fn unwrap(o: Option[Int]) -> Int { match o { Some(v) => v, None => 0 } }`)

	require.Contains(t, res.ADTs, "Option")
	assert.Equal(t, []string{"Some", "None"}, res.ADTs["Option"])

	var foundSome bool
	for _, rp := range res.ResolvedPaths {
		if len(rp.Segments) == 1 && rp.Segments[0] == "Some" && rp.Kind == resolver.PathVariant {
			require.NotNil(t, rp.Resolved)
			cat, ok := rp.Resolved.Category.(resolver.CategoryVariant)
			require.True(t, ok)
			assert.Equal(t, "Option", cat.Parent)
			foundSome = true
		}
	}
	assert.True(t, foundSome, "expected a resolved Variant path for Some")

	var foundV bool
	for _, sym := range res.Symbols {
		if sym.Name == "v" && sym.Scope == "fn:unwrap" {
			_, ok := sym.Category.(resolver.CategoryLocalBinding)
			require.True(t, ok)
			foundV = true
		}
	}
	assert.True(t, foundV, "expected a LocalBinding symbol v in function scope fn:unwrap")
}

func TestDuplicateTypeDefinitionDiagnostic(t *testing.T) {
	res := mustParse(t, `module m
type A = { x: Int }
type A = { y: Int }`)
	require.NotEmpty(t, res.Diagnostics)
	assert.Equal(t, "RES001", res.Diagnostics[0].Code)
}

func TestDuplicateImportAliasDiagnostic(t *testing.T) {
	res := mustParse(t, `module m
use a.b as x
use c.d as x
fn f() -> Int { return 0 }`)
	var found bool
	for _, d := range res.Diagnostics {
		if d.Code == "RES003" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestCapabilityBindingFromFunctionEffectRow(t *testing.T) {
	res := mustParse(t, `module m
fn f(io: IoCap) -> Int !{io} { return 0 }`)
	require.Len(t, res.Capabilities, 1)
	assert.Equal(t, "io", res.Capabilities[0].Name)
	scope, ok := res.Capabilities[0].Scope.(resolver.ScopeFunction)
	require.True(t, ok)
	assert.Equal(t, "f", scope.Name)
}

func TestCapabilityBindingFromFunctionTypeExpr(t *testing.T) {
	res := mustParse(t, `module m
fn apply(cb: fn(Int) -> Int !{io}) -> Int { return 0 }`)
	require.Len(t, res.Capabilities, 1)
	assert.Equal(t, "io", res.Capabilities[0].Name)
}

func TestVariantExportedAndQualifiedLookup(t *testing.T) {
	res := mustParse(t, `module m
pub type Option[T] = Some(T) | None
fn f(o: Option[Int]) -> Int { match o { Option::Some(v) => v, None => 0 } }`)
	var sawQualified bool
	for _, rp := range res.ResolvedPaths {
		if len(rp.Segments) == 2 && rp.Segments[0] == "Option" && rp.Segments[1] == "Some" {
			require.NotNil(t, rp.Resolved)
			cat := rp.Resolved.Category.(resolver.CategoryVariant)
			assert.Equal(t, "Option", cat.Parent)
			sawQualified = true
		}
	}
	assert.True(t, sawQualified)
}

func TestDuplicateFunctionDefinitionDiagnostic(t *testing.T) {
	res := mustParse(t, `module m
fn f() -> Int { return 0 }
fn f() -> Int { return 1 }`)
	require.NotEmpty(t, res.Diagnostics)
	assert.Equal(t, "RES002", res.Diagnostics[0].Code)
}

func TestAmbiguousWorkspacePrefixDiagnostic(t *testing.T) {
	a, err := parser.Parse(`module app
pub fn x() -> Int { return 1 }`)
	require.NoError(t, err)
	b, err := parser.Parse(`module app.sub
pub fn x() -> Int { return 2 }`)
	require.NoError(t, err)
	c, err := parser.Parse(`module app.main
fn f() -> Int { return app::sub::x() }`)
	require.NoError(t, err)

	graph := resolver.NewModuleGraph([]*ast.Module{a, b, c})
	res := resolver.ResolveWithWorkspace(c, graph)
	var found bool
	for _, d := range res.Diagnostics {
		if d.Code == "RES005" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestModuleGraphCrossModuleLookup(t *testing.T) {
	a, err := parser.Parse(`module app.util
pub fn helper() -> Int { return 1 }`)
	require.NoError(t, err)
	b, err := parser.Parse(`module app.main
fn f() -> Int { return util.helper() }`)
	require.NoError(t, err)

	graph := resolver.NewModuleGraph([]*ast.Module{a, b})
	sym, ok := graph.Lookup([]string{"app", "util", "helper"}, resolver.PathValue)
	require.True(t, ok)
	assert.Equal(t, "helper", sym.Name)
}
