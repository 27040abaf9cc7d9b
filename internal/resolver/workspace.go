package resolver

import (
	"strings"

	"github.com/Sir-Teo/mica/internal/ast"
	"github.com/Sir-Teo/mica/internal/errors"
)

// ModuleGraph collects every module's exports keyed by its dotted name, and
// resolves cross-module paths by trying every module whose name is a prefix
// of the path's segments.
type ModuleGraph struct {
	exports map[string]*ModuleSymbols // dotted module name -> its collected exports
}

// NewModuleGraph builds a graph from a set of parsed modules, collecting each
// one's symbols.
func NewModuleGraph(modules []*ast.Module) *ModuleGraph {
	g := &ModuleGraph{exports: map[string]*ModuleSymbols{}}
	for _, m := range modules {
		g.exports[strings.Join(m.Name, ".")] = CollectModuleSymbols(m)
	}
	return g
}

// Lookup resolves a path against every module whose dotted name is a prefix
// of path's segments. Per the Open Question resolution, if more than one
// module prefix resolves the path (one module nested inside another, both
// exporting the same remainder name) that is an ambiguity and is rejected
// rather than the original's silent longest-prefix-wins pick.
func (g *ModuleGraph) Lookup(segments []string, kind PathKind) (Symbol, bool) {
	sym, ok, _ := g.lookupWithDiagnostic(segments, kind)
	return sym, ok
}

// lookupWithDiagnostic is Lookup plus a RES005 Diagnostic when more than one
// module prefix resolves the same path.
func (g *ModuleGraph) lookupWithDiagnostic(segments []string, kind PathKind) (Symbol, bool, *Diagnostic) {
	type candidate struct {
		prefixLen int
		modName   string
		sym       Symbol
	}
	var matches []candidate

	for modName, ms := range g.exports {
		prefix := strings.Split(modName, ".")
		if len(prefix) >= len(segments) {
			continue
		}
		if !hasPrefix(segments, prefix) {
			continue
		}
		remainder := segments[len(prefix):]
		if sym, ok := lookupExported(ms, remainder, kind); ok {
			matches = append(matches, candidate{prefixLen: len(prefix), modName: modName, sym: sym})
		}
	}
	if len(matches) == 0 {
		return Symbol{}, false, nil
	}
	if len(matches) > 1 {
		diag := &Diagnostic{
			Code:    errors.RES005,
			Message: "ambiguous workspace path " + strings.Join(segments, ".") + ": both " + matches[0].modName + " and " + matches[1].modName + " resolve it",
		}
		return Symbol{}, false, diag
	}

	longest := matches[0]
	return longest.sym, true, nil
}

// ResolveModules runs Resolver over every module with this graph as the
// fallback for module-qualified paths, returning a map keyed by dotted name.
func (g *ModuleGraph) ResolveModules(modules []*ast.Module) map[string]*Resolved {
	out := make(map[string]*Resolved, len(modules))
	for _, m := range modules {
		out[strings.Join(m.Name, ".")] = ResolveWithWorkspace(m, g)
	}
	return out
}

func hasPrefix(segments, prefix []string) bool {
	if len(prefix) > len(segments) {
		return false
	}
	for i, p := range prefix {
		if segments[i] != p {
			return false
		}
	}
	return true
}

func lookupExported(ms *ModuleSymbols, remainder []string, kind PathKind) (Symbol, bool) {
	if len(remainder) == 0 {
		return Symbol{}, false
	}
	key := kind.String() + "/" + remainder[len(remainder)-1]
	sym, ok := ms.exports[key]
	return sym, ok
}
