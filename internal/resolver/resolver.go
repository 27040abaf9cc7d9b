package resolver

import (
	"github.com/Sir-Teo/mica/internal/ast"
)

// Resolver walks a single module's AST over a stack of scope layers rooted
// at the module scope produced by ModuleSymbols.
type Resolver struct {
	ms           *ModuleSymbols
	workspace    *ModuleGraph
	valueStack   []map[string]Symbol
	typeStack    []map[string]Symbol
	resolved     []ResolvedPath
	capabilities []CapabilityBinding
	diagnostics  []Diagnostic
	capScope     CapabilityScope
	symbols      []Symbol
	scope        string // e.g. "module", "fn:add", "type:Box"
}

// Resolve runs full name/scope/capability resolution over m, producing an
// immutable Resolved. The AST itself is never mutated (I4).
func Resolve(m *ast.Module) *Resolved {
	return ResolveWithWorkspace(m, nil)
}

// ResolveWithWorkspace is Resolve with a ModuleGraph fallback for
// module-qualified paths this module's own scope cannot satisfy.
func ResolveWithWorkspace(m *ast.Module, ws *ModuleGraph) *Resolved {
	ms := CollectModuleSymbols(m)
	r := &Resolver{ms: ms, workspace: ws, scope: "module"}

	for _, item := range m.Items {
		switch it := item.(type) {
		case *ast.TypeAlias:
			r.resolveTypeAlias(it)
		case *ast.Function:
			r.resolveFunction(it)
		case *ast.ImplBlock:
			for _, item := range it.Items {
				r.resolveFunction(item.Method)
			}
		}
	}

	diags := append([]Diagnostic{}, ms.diagnostics...)
	diags = append(diags, r.diagnostics...)

	symbols := append([]Symbol{}, ms.symbols...)
	symbols = append(symbols, r.symbols...)

	return &Resolved{
		ModulePath:    m.Name,
		ADTs:          ms.adts,
		VariantToADT:  ms.variantToADT,
		Imports:       ms.imports,
		Symbols:       symbols,
		ResolvedPaths: r.resolved,
		Capabilities:  r.capabilities,
		Diagnostics:   diags,
	}
}

func (r *Resolver) pushScope() {
	r.valueStack = append(r.valueStack, map[string]Symbol{})
	r.typeStack = append(r.typeStack, map[string]Symbol{})
}

func (r *Resolver) popScope() {
	r.valueStack = r.valueStack[:len(r.valueStack)-1]
	r.typeStack = r.typeStack[:len(r.typeStack)-1]
}

// bindValue binds sym into the innermost scope layer and, stamped with the
// resolver's current scope, records it in the output symbol table (the
// ground-truth resolver pushes every ValueParam/LocalBinding into
// self.resolved.symbols the same way).
func (r *Resolver) bindValue(name string, sym Symbol) {
	sym.Scope = r.scope
	r.valueStack[len(r.valueStack)-1][name] = sym
	r.symbols = append(r.symbols, sym)
}

func (r *Resolver) bindType(name string, sym Symbol) {
	sym.Scope = r.scope
	r.typeStack[len(r.typeStack)-1][name] = sym
	r.symbols = append(r.symbols, sym)
}

func (r *Resolver) lookupValue(name string) (Symbol, bool) {
	for i := len(r.valueStack) - 1; i >= 0; i-- {
		if sym, ok := r.valueStack[i][name]; ok {
			return sym, true
		}
	}
	for _, sym := range r.ms.symbols {
		if sym.Namespace == PathValue && sym.Name == name {
			return sym, true
		}
	}
	return Symbol{}, false
}

func (r *Resolver) lookupType(name string) (Symbol, bool) {
	for i := len(r.typeStack) - 1; i >= 0; i-- {
		if sym, ok := r.typeStack[i][name]; ok {
			return sym, true
		}
	}
	for _, sym := range r.ms.symbols {
		if sym.Namespace == PathType && sym.Name == name {
			return sym, true
		}
	}
	return Symbol{}, false
}

func (r *Resolver) resolveVariantFromSegments(segs []string) (*Symbol, bool) {
	name := segs[len(segs)-1]
	parents := r.ms.variantToADT[name]
	if len(parents) == 0 {
		return nil, false
	}
	if len(segs) >= 2 {
		qualifier := segs[len(segs)-2]
		for _, p := range parents {
			if p == qualifier {
				return &Symbol{Name: name, Category: CategoryVariant{Parent: p}, Namespace: PathVariant}, true
			}
		}
	}
	return &Symbol{Name: name, Category: CategoryVariant{Parent: parents[0]}, Namespace: PathVariant}, true
}

// expandAlias rewrites a path's leading segment through a known import alias
// to the alias's full target module path, so `util::helper` (with `use
// app.util as util` in scope) reaches the workspace as the segments
// app, util, helper.
func (r *Resolver) expandAlias(segs []string) []string {
	if len(segs) < 2 {
		return segs
	}
	for _, sym := range r.ms.symbols {
		if sym.Name != segs[0] {
			continue
		}
		alias, ok := sym.Category.(CategoryImportAlias)
		if !ok {
			continue
		}
		target := make([]string, 0, len(segs)+1)
		for _, part := range splitTarget(alias.Target) {
			target = append(target, part)
		}
		return append(target, segs[1:]...)
	}
	return segs
}

func splitTarget(target string) []string {
	var parts []string
	cur := ""
	for _, r := range target {
		if r == '.' {
			parts = append(parts, cur)
			cur = ""
			continue
		}
		cur += string(r)
	}
	parts = append(parts, cur)
	return parts
}

func (r *Resolver) resolveTypePathSegments(segs []string) ResolvedPath {
	if sym, ok := r.lookupType(segs[0]); ok && len(segs) == 1 {
		return ResolvedPath{Segments: segs, Kind: PathType, Resolved: &sym}
	}
	if len(segs) == 2 {
		if sym, ok := r.resolveVariantFromSegments(segs); ok {
			return ResolvedPath{Segments: segs, Kind: PathVariant, Resolved: sym}
		}
	}
	if r.workspace != nil {
		sym, ok, diag := r.workspace.lookupWithDiagnostic(r.expandAlias(segs), PathType)
		if ok {
			return ResolvedPath{Segments: segs, Kind: PathType, Resolved: &sym}
		}
		if diag != nil {
			r.diagnostics = append(r.diagnostics, *diag)
		}
	}
	return ResolvedPath{Segments: segs, Kind: PathType, Resolved: nil}
}

func (r *Resolver) resolveValuePathSegments(segs []string) ResolvedPath {
	if len(segs) >= 2 {
		if sym, ok := r.resolveVariantFromSegments(segs); ok {
			return ResolvedPath{Segments: segs, Kind: PathVariant, Resolved: sym}
		}
	}
	if len(segs) == 1 {
		if sym, ok := r.lookupValue(segs[0]); ok {
			return ResolvedPath{Segments: segs, Kind: PathValue, Resolved: &sym}
		}
		if sym, ok := r.resolveVariantFromSegments(segs); ok {
			return ResolvedPath{Segments: segs, Kind: PathVariant, Resolved: sym}
		}
	}
	if r.workspace != nil {
		sym, ok, diag := r.workspace.lookupWithDiagnostic(r.expandAlias(segs), PathValue)
		if ok {
			return ResolvedPath{Segments: segs, Kind: PathValue, Resolved: &sym}
		}
		if diag != nil {
			r.diagnostics = append(r.diagnostics, *diag)
		}
	}
	return ResolvedPath{Segments: segs, Kind: PathValue, Resolved: nil}
}

func (r *Resolver) recordPath(rp ResolvedPath) {
	r.resolved = append(r.resolved, rp)
}

func (r *Resolver) recordCapability(name string) {
	r.capabilities = append(r.capabilities, CapabilityBinding{Name: name, Scope: r.capScope})
}

// --- Type alias declarations -------------------------------------------------

func (r *Resolver) resolveTypeAlias(t *ast.TypeAlias) {
	prevScope := r.scope
	r.scope = "type:" + t.Name
	r.capScope = ScopeTypeAlias{Name: t.Name}
	r.pushScope()
	for _, param := range t.Params {
		r.bindType(param, Symbol{Name: param, Category: CategoryTypeParam{}, Namespace: PathType})
	}
	r.walkType(t.Value)
	r.popScope()
	r.scope = prevScope
}

// --- Functions ---------------------------------------------------------------

func (r *Resolver) resolveFunction(f *ast.Function) {
	prevScope := r.scope
	r.scope = "fn:" + f.Name
	r.capScope = ScopeFunction{Name: f.Name}
	r.pushScope()
	for _, g := range f.Generics {
		r.bindType(g.Name, Symbol{Name: g.Name, Category: CategoryTypeParam{}, Namespace: PathType})
	}
	for _, p := range f.Params {
		r.bindValue(p.Name, Symbol{Name: p.Name, Category: CategoryValueParam{}, Namespace: PathValue})
		r.walkType(p.Type)
	}
	if f.ReturnType != nil {
		r.walkType(f.ReturnType)
	}
	for _, eff := range f.EffectRow {
		r.recordCapability(eff)
	}
	r.walkBlock(&f.Body)
	r.popScope()
	r.scope = prevScope
}

// --- Types ---------------------------------------------------------------

func (r *Resolver) walkType(t ast.TypeExpr) {
	switch ty := t.(type) {
	case *ast.TypeName:
		r.recordPath(r.resolveTypePathSegments(ty.Path.Segments))
	case *ast.TypeGeneric:
		r.recordPath(r.resolveTypePathSegments(ty.Path.Segments))
		for _, arg := range ty.Args {
			r.walkType(arg)
		}
	case *ast.TypeRecord:
		for _, f := range ty.Fields {
			r.walkType(f.Type)
		}
	case *ast.TypeSum:
		for _, v := range ty.Variants {
			for _, f := range v.Fields {
				r.walkType(f)
			}
		}
	case *ast.TypeList:
		r.walkType(ty.Elem)
	case *ast.TypeTuple:
		for _, item := range ty.Items {
			r.walkType(item)
		}
	case *ast.TypeReference:
		r.walkType(ty.Inner)
	case *ast.TypeFunction:
		for _, p := range ty.Params {
			r.walkType(p)
		}
		if ty.ReturnType != nil {
			r.walkType(ty.ReturnType)
		}
		for _, eff := range ty.EffectRow {
			r.recordCapability(eff)
		}
	case *ast.TypeSelf, *ast.TypeUnit:
		// no path to resolve
	}
}

// --- Blocks & statements ------------------------------------------------

func (r *Resolver) walkBlock(b *ast.Block) {
	r.pushScope()
	for _, stmt := range b.Statements {
		r.walkStmt(stmt)
	}
	r.popScope()
}

func (r *Resolver) walkStmt(s ast.Stmt) {
	switch st := s.(type) {
	case *ast.LetStmt:
		r.walkExpr(st.Value)
		r.bindValue(st.Name, Symbol{Name: st.Name, Category: CategoryLocalBinding{}, Namespace: PathValue})
	case *ast.ExprStmt:
		r.walkExpr(st.Expr)
	case *ast.ReturnStmt:
		if st.Value != nil {
			r.walkExpr(st.Value)
		}
	case *ast.BreakStmt, *ast.ContinueStmt:
		// nothing to resolve
	}
}

// --- Expressions ----------------------------------------------------------

func (r *Resolver) walkExpr(e ast.Expr) {
	switch ex := e.(type) {
	case *ast.Literal:
		// nothing to resolve
	case *ast.PathExpr:
		r.recordPath(r.resolveValuePathSegments(ex.Path.Segments))
	case *ast.Binary:
		r.walkExpr(ex.Left)
		r.walkExpr(ex.Right)
	case *ast.Unary:
		r.walkExpr(ex.Expr)
	case *ast.Call:
		r.walkExpr(ex.Callee)
		for _, a := range ex.Args {
			r.walkExpr(a)
		}
	case *ast.Ctor:
		r.recordPath(r.resolveValuePathSegments(ex.Path.Segments))
		for _, a := range ex.Args {
			r.walkExpr(a)
		}
	case *ast.Record:
		if ex.TypePath != nil {
			r.recordPath(r.resolveTypePathSegments(ex.TypePath.Segments))
		}
		for _, f := range ex.Fields {
			r.walkExpr(f.Value)
		}
	case *ast.Field:
		r.walkExpr(ex.Expr)
	case *ast.Index:
		r.walkExpr(ex.Expr)
		r.walkExpr(ex.Index)
	case *ast.Cast:
		r.walkExpr(ex.Expr)
		r.walkType(ex.Type)
	case *ast.If:
		r.walkExpr(ex.Cond)
		r.walkBlock(&ex.Then)
		if ex.Else != nil {
			r.walkBlock(ex.Else)
		}
	case *ast.Match:
		r.walkExpr(ex.Scrutinee)
		for _, arm := range ex.Arms {
			r.pushScope()
			r.walkPattern(arm.Pattern)
			if arm.Guard != nil {
				r.walkExpr(arm.Guard)
			}
			r.walkExpr(arm.Body)
			r.popScope()
		}
	case *ast.For:
		r.walkExpr(ex.Iterable)
		r.pushScope()
		r.bindValue(ex.Binding, Symbol{Name: ex.Binding, Category: CategoryLocalBinding{}, Namespace: PathValue})
		r.walkBlock(&ex.Body)
		r.popScope()
	case *ast.While:
		r.walkExpr(ex.Cond)
		r.walkBlock(&ex.Body)
	case *ast.Loop:
		r.walkBlock(&ex.Body)
	case *ast.Assignment:
		r.walkExpr(ex.Target)
		r.walkExpr(ex.Value)
	case *ast.Spawn:
		r.walkExpr(ex.Expr)
	case *ast.Await:
		r.walkExpr(ex.Expr)
	case *ast.Chan:
		r.walkType(ex.Elem)
		if ex.Capacity != nil {
			r.walkExpr(ex.Capacity)
		}
	case *ast.Using:
		r.walkExpr(ex.Expr)
		r.pushScope()
		if ex.Binding != "" {
			r.bindValue(ex.Binding, Symbol{Name: ex.Binding, Category: CategoryLocalBinding{}, Namespace: PathValue})
		}
		r.walkBlock(&ex.Body)
		r.popScope()
	case *ast.Try:
		r.walkExpr(ex.Expr)
	case *ast.BlockExpr:
		r.walkBlock(&ex.Block)
	}
}

// --- Patterns ---------------------------------------------------------------

func (r *Resolver) walkPattern(p ast.Pattern) {
	switch pat := p.(type) {
	case *ast.WildcardPattern, *ast.LiteralPattern:
		// nothing to bind
	case *ast.BindingPattern:
		r.bindValue(pat.Name, Symbol{Name: pat.Name, Category: CategoryLocalBinding{}, Namespace: PathValue})
	case *ast.TuplePattern:
		for _, item := range pat.Items {
			r.walkPattern(item)
		}
	case *ast.RecordPattern:
		for _, f := range pat.Fields {
			if f.Pattern == nil {
				r.bindValue(f.Name, Symbol{Name: f.Name, Category: CategoryLocalBinding{}, Namespace: PathValue})
				continue
			}
			r.walkPattern(f.Pattern)
		}
	case *ast.EnumVariantPattern:
		r.recordPath(r.resolveValuePathSegments(pat.Path.Segments))
		for _, sub := range pat.Fields {
			r.walkPattern(sub)
		}
	}
}
