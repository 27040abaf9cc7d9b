package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sir-Teo/mica/internal/hir"
	"github.com/Sir-Teo/mica/internal/ir"
	"github.com/Sir-Teo/mica/internal/parser"
)

// TestAnalyzeFunctionPurityNoCallsIsPure grounds the baseline: a
// function with no capability-bearing calls is entirely one pure region.
func TestAnalyzeFunctionPurityNoCallsIsPure(t *testing.T) {
	mod := lowerToIR(t, `module demo
fn f(a: Int, b: Int) -> Int { return a + b }`)
	fn := firstIRFunc(t, mod, "f")
	report := ir.AnalyzeFunctionPurity(fn)
	assert.True(t, report.IsBlockPure(fn.Blocks[0].ID))
	assert.Empty(t, report.EffectfulInstructions)
	require.Len(t, report.Regions(), 1)
	assert.Equal(t, []ir.BlockID{fn.Blocks[0].ID}, report.Regions()[0])
}

// TestAnalyzeFunctionPurityCallWithEffectsIsEffectful grounds the simplest
// effectful case: a Call instruction carrying a non-empty effect list marks
// its own block effectful regardless of its FuncRef shape.
func TestAnalyzeFunctionPurityCallWithEffectsIsEffectful(t *testing.T) {
	mod := lowerToIR(t, `module demo
fn g(io: IoCap) -> Int !{io} { return 1 }
fn f(io: IoCap) -> Int !{io} { return g(io) }`)
	fn := firstIRFunc(t, mod, "f")
	report := ir.AnalyzeFunctionPurity(fn)
	assert.False(t, report.IsBlockPure(fn.Blocks[0].ID))

	var callID ir.ValueID
	for _, inst := range fn.Blocks[0].Instructions {
		if _, ok := inst.Kind.(ir.InstCall); ok {
			callID = inst.ID
		}
	}
	assert.True(t, report.IsInstructionEffectful(callID))
	assert.Empty(t, report.Regions())
}

// TestAnalyzeFunctionPurityUnresolvedMethodCallIsEffectful grounds the
// conservative rule for a Call with no effect metadata: it's pure only when
// resolved to a Function reference; an unresolved Method reference (e.g. a
// receiver method call whose target type isn't known at this stage) stays
// effectful.
func TestAnalyzeFunctionPurityUnresolvedMethodCallIsEffectful(t *testing.T) {
	mod := lowerToIR(t, `module demo
type V = { x: Int }
fn f(a: V, b: V) -> V { return a.add(b) }`)
	fn := firstIRFunc(t, mod, "f")
	report := ir.AnalyzeFunctionPurity(fn)
	assert.False(t, report.IsBlockPure(fn.Blocks[0].ID))
}

// TestAnalyzeFunctionPurityResolvedFunctionCallWithNoEffectsIsPure grounds
// the other side of that same rule: a Call resolved to a Function reference
// with an empty effect list (e.g. calling a capability-free sibling) is
// pure.
func TestAnalyzeFunctionPurityResolvedFunctionCallWithNoEffectsIsPure(t *testing.T) {
	mod := lowerToIR(t, `module demo
fn double(n: Int) -> Int { return n + n }
fn f(n: Int) -> Int { return double(n) }`)
	fn := firstIRFunc(t, mod, "f")
	report := ir.AnalyzeFunctionPurity(fn)
	assert.True(t, report.IsBlockPure(fn.Blocks[0].ID))
	require.Len(t, report.Regions(), 1)
}

// TestAnalyzeFunctionPurityRegionsSpanBranchAndJumpEdges grounds the region
// flood-fill: an if/else whose arms are both pure (no effectful calls) forms
// one connected pure region across the branch and both jump edges into the
// merge block, even though the entry block's own Branch terminator doesn't
// disqualify it.
func TestAnalyzeFunctionPurityRegionsSpanBranchAndJumpEdges(t *testing.T) {
	mod := lowerToIR(t, `module demo
fn f(x: Bool) -> Int {
  let v = if x { 1 } else { 2 }
  return v
}`)
	fn := firstIRFunc(t, mod, "f")
	report := ir.AnalyzeFunctionPurity(fn)
	for _, b := range fn.Blocks {
		assert.True(t, report.IsBlockPure(b.ID), "block %d should be pure", b.ID)
	}
	require.Len(t, report.Regions(), 1)
	assert.Len(t, report.Regions()[0], len(fn.Blocks))
}

// TestAnalyzeFunctionPurityEffectfulArmIsolatesRestOfGraph grounds partial
// effectfulness: when one arm of an if calls an effectful sibling, only
// that arm's block is marked effectful; the entry and the other arm still
// form their own pure region(s), disconnected from the effectful block.
func TestAnalyzeFunctionPurityEffectfulArmIsolatesRestOfGraph(t *testing.T) {
	mod := lowerToIR(t, `module demo
fn g(io: IoCap) -> Int !{io} { return 1 }
fn f(io: IoCap, x: Bool) -> Int !{io} {
  if x { return g(io) } else { return 2 }
}`)
	fn := firstIRFunc(t, mod, "f")
	report := ir.AnalyzeFunctionPurity(fn)

	thenBlock := fn.Blocks[1]
	elseBlock := fn.Blocks[2]
	assert.False(t, report.IsBlockPure(thenBlock.ID))
	assert.True(t, report.IsBlockPure(elseBlock.ID))
}
