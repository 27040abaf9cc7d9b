package irtext_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/Sir-Teo/mica/internal/hir"
	"github.com/Sir-Teo/mica/internal/ir"
	"github.com/Sir-Teo/mica/internal/irtext"
	"github.com/Sir-Teo/mica/internal/parser"
)

func lowerToIR(t *testing.T, src string) ir.Module {
	t.Helper()
	m, err := parser.Parse(src)
	require.NoError(t, err)
	return ir.LowerModule(hir.LowerModule(m))
}

// TestRenderSimpleFunction grounds the plainest shape: one function, one
// block, a literal instruction, and a return terminator carrying a value.
func TestRenderSimpleFunction(t *testing.T) {
	mod := lowerToIR(t, `module demo
fn f() -> Int { return 1 }`)
	out := irtext.Render(mod)
	want := "module demo\n\nfn f() -> Int\n  block 0:\n    %0 = 1 : Int\n    return %0\n"
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("unexpected render (-want +got):\n%s", diff)
	}
}

// TestRenderOmitsUnitReturnArrow grounds the arrow-suppression rule: a
// function whose return type is Unit renders no `-> T` suffix at all.
func TestRenderOmitsUnitReturnArrow(t *testing.T) {
	mod := lowerToIR(t, `module demo
fn f() { let x = 1 }`)
	out := irtext.Render(mod)
	require.Contains(t, out, "fn f()\n")
	require.NotContains(t, out, "->")
}

// TestRenderEffectRowAndParams grounds parameter rendering and the
// `!{eff, ...}` suffix for a declared effect row.
func TestRenderEffectRowAndParams(t *testing.T) {
	mod := lowerToIR(t, `module demo
fn f(io: IoCap, n: Int) -> Int !{io} { return n }`)
	out := irtext.Render(mod)
	require.Contains(t, out, "fn f(io: IoCap, n: Int) -> Int !{io}\n")
}

// TestRenderBranchAndPhi grounds the multi-block, branch-and-phi shape
// produced by an if expression used as a value.
func TestRenderBranchAndPhi(t *testing.T) {
	mod := lowerToIR(t, `module demo
fn f(x: Bool) -> Int {
  let v = if x { 1 } else { 2 }
  return v
}`)
	out := irtext.Render(mod)
	require.Contains(t, out, "block 0:")
	require.Contains(t, out, "block 1:")
	require.Contains(t, out, "block 2:")
	require.Contains(t, out, "block 3:")
	require.Contains(t, out, "branch %")
	require.Contains(t, out, "phi {")
	require.Contains(t, out, "jump bb")
}

// TestRenderCallAndRecord grounds the call and record rendering forms,
// including the function-reference path with its segments joined by "::".
func TestRenderCallAndRecord(t *testing.T) {
	mod := lowerToIR(t, `module demo
type Point = { x: Int, y: Int }
fn origin() -> Point { return Point { x: 0, y: 0 } }
fn dist(p: Point) -> Int { return origin() }`)
	out := irtext.Render(mod)
	require.Contains(t, out, "record Point { x: %")
	require.Contains(t, out, "call origin()")
}
