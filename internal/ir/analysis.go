package ir

import "sort"

// BlockPurity classifies one basic block as a whole.
type BlockPurity int

const (
	BlockPure BlockPurity = iota
	BlockEffectful
)

// PurityReport is the result of AnalyzeFunctionPurity: which blocks and
// instructions are effect-free, and how the pure blocks cluster into
// connected "pure regions" a later optimization pass could treat as a unit
// (e.g. safe to reorder or hoist as a whole).
type PurityReport struct {
	PureBlocks            map[BlockID]bool
	EffectfulInstructions map[ValueID]bool
	PureRegions           [][]BlockID
	BlockEffects          map[BlockID]BlockPurity
}

// IsBlockPure reports whether id was classified pure.
func (r PurityReport) IsBlockPure(id BlockID) bool { return r.PureBlocks[id] }

// IsInstructionEffectful reports whether id was classified effectful.
func (r PurityReport) IsInstructionEffectful(id ValueID) bool { return r.EffectfulInstructions[id] }

// Regions returns the connected components of pure blocks, each sorted by
// BlockID and the region list itself ordered by each region's first block.
func (r PurityReport) Regions() [][]BlockID { return r.PureRegions }

// AnalyzeFunctionPurity walks every block of fn once, classifying each
// instruction and block, then unions adjacent pure blocks (via Branch/Jump
// edges) into pure regions via an undirected flood fill.
//
// An instruction is effectful if it carries a non-empty effect list, or if
// it's a Call with no effect metadata whose FuncRef is an unresolved Method
// reference (a resolved Function reference with no declared effects is
// presumed pure). Every other instruction kind is pure. A block is pure iff
// every instruction in it is pure and its terminator is one of
// Return/Branch/Jump — all three currently qualify, leaving room for a
// future terminator kind to be marked otherwise without disturbing this
// rule.
func AnalyzeFunctionPurity(fn Function) PurityReport {
	pureBlocks := map[BlockID]bool{}
	effectfulInsts := map[ValueID]bool{}
	blockEffects := map[BlockID]BlockPurity{}
	adjacency := map[BlockID]map[BlockID]bool{}

	ensure := func(id BlockID) map[BlockID]bool {
		if adjacency[id] == nil {
			adjacency[id] = map[BlockID]bool{}
		}
		return adjacency[id]
	}

	for _, block := range fn.Blocks {
		ensure(block.ID)
	}

	for _, block := range fn.Blocks {
		blockPure := true
		for _, inst := range block.Instructions {
			effectful := len(inst.Effects) > 0
			if !effectful {
				if call, ok := inst.Kind.(InstCall); ok {
					_, isMethod := call.Func.(FuncRefMethod)
					effectful = isMethod
				}
			}
			if effectful {
				blockPure = false
				effectfulInsts[inst.ID] = true
			}
		}

		if !isPureTerminator(block.Terminator) {
			blockPure = false
		}

		if blockPure {
			blockEffects[block.ID] = BlockPure
			pureBlocks[block.ID] = true
		} else {
			blockEffects[block.ID] = BlockEffectful
		}

		switch term := block.Terminator.(type) {
		case TermBranch:
			ensure(block.ID)[term.ThenBlock] = true
			ensure(block.ID)[term.ElseBlock] = true
			ensure(term.ThenBlock)[block.ID] = true
			ensure(term.ElseBlock)[block.ID] = true
		case TermJump:
			ensure(block.ID)[term.Target] = true
			ensure(term.Target)[block.ID] = true
		case TermReturn:
			// no edges
		}
	}

	var sortedPure []BlockID
	for id := range pureBlocks {
		sortedPure = append(sortedPure, id)
	}
	sort.Slice(sortedPure, func(i, j int) bool { return sortedPure[i] < sortedPure[j] })

	visited := map[BlockID]bool{}
	var regions [][]BlockID
	for _, blockID := range sortedPure {
		if visited[blockID] {
			continue
		}
		visited[blockID] = true
		stack := []BlockID{blockID}
		var region []BlockID
		for len(stack) > 0 {
			current := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			region = append(region, current)
			for neighbor := range adjacency[current] {
				if pureBlocks[neighbor] && !visited[neighbor] {
					visited[neighbor] = true
					stack = append(stack, neighbor)
				}
			}
		}
		sort.Slice(region, func(i, j int) bool { return region[i] < region[j] })
		regions = append(regions, region)
	}

	return PurityReport{
		PureBlocks:            pureBlocks,
		EffectfulInstructions: effectfulInsts,
		PureRegions:           regions,
		BlockEffects:          blockEffects,
	}
}

func isPureTerminator(t Terminator) bool {
	switch t.(type) {
	case TermReturn, TermBranch, TermJump:
		return true
	default:
		return false
	}
}
