package resolver

import (
	"sort"
	"strings"

	"github.com/Sir-Teo/mica/internal/ast"
	"github.com/Sir-Teo/mica/internal/errors"
)

// ModuleSymbols is the per-module symbol collection pass (layer 1 of 4.C).
type ModuleSymbols struct {
	modulePath   []string
	adts         map[string][]string
	variantToADT map[string][]string
	imports      []Import
	symbols      []Symbol
	exports      map[string]Symbol
	seen         map[string]bool
	diagnostics  []Diagnostic
}

func moduleQualifiedName(modulePath []string, parts ...string) string {
	prefix := strings.Join(modulePath, ".")
	suffix := strings.Join(parts, "::")
	if prefix == "" {
		return suffix
	}
	return prefix + "::" + suffix
}

func dedupKey(scope, namespace, name string) string {
	return scope + "/" + namespace + "/" + name
}

// CollectModuleSymbols walks every item of m and builds its symbol table.
func CollectModuleSymbols(m *ast.Module) *ModuleSymbols {
	c := &ModuleSymbols{
		modulePath:   m.Name,
		adts:         map[string][]string{},
		variantToADT: map[string][]string{},
		exports:      map[string]Symbol{},
		seen:         map[string]bool{},
	}
	for _, item := range m.Items {
		switch it := item.(type) {
		case *ast.UseDecl:
			c.collectUse(it)
		case *ast.TypeAlias:
			c.collectTypeAlias(it)
		case *ast.Function:
			c.collectFunction(it)
		case *ast.ImplBlock:
			c.collectImplBlock(it)
		}
	}
	return c
}

func (c *ModuleSymbols) insert(sym Symbol) {
	key := dedupKey(sym.Scope, sym.Namespace.String(), sym.Name)
	if c.seen[key] {
		code := errors.RES001
		switch sym.Category.(type) {
		case CategoryFunction:
			code = errors.RES002
		case CategoryImportAlias:
			code = errors.RES003
		}
		c.diagnostics = append(c.diagnostics, Diagnostic{
			Code:    code,
			Message: "duplicate definition of " + sym.Name + " in scope " + sym.Scope,
		})
		return
	}
	c.seen[key] = true
	c.symbols = append(c.symbols, sym)
}

func (c *ModuleSymbols) exportIfPublic(sym Symbol, isPublic bool) {
	if !isPublic {
		return
	}
	c.exports[sym.Namespace.String()+"/"+sym.Name] = sym
}

func (c *ModuleSymbols) collectUse(u *ast.UseDecl) {
	name := u.Alias
	if name == "" {
		name = u.Path[len(u.Path)-1]
	}
	target := strings.Join(u.Path, ".")
	for _, ns := range []PathKind{PathValue, PathType} {
		c.insert(Symbol{Name: name, Category: CategoryImportAlias{Target: target}, Scope: "module", Namespace: ns})
	}
	c.imports = append(c.imports, Import{Path: u.Path, Alias: u.Alias})
}

func (c *ModuleSymbols) collectTypeAlias(t *ast.TypeAlias) {
	c.insert(Symbol{
		Name:      t.Name,
		Category:  CategoryType{IsPublic: t.IsPublic, Params: t.Params},
		Scope:     "module",
		Namespace: PathType,
	})
	c.exportIfPublic(Symbol{Name: t.Name, Category: CategoryType{IsPublic: t.IsPublic, Params: t.Params}, Namespace: PathType}, t.IsPublic)

	sum, ok := t.Value.(*ast.TypeSum)
	if !ok {
		return
	}
	var variantNames []string
	for _, v := range sum.Variants {
		variantNames = append(variantNames, v.Name)
		c.variantToADT[v.Name] = append(c.variantToADT[v.Name], t.Name)

		shortName := v.Name
		typeQualified := t.Name + "::" + v.Name
		moduleQualified := moduleQualifiedName(c.modulePath, t.Name, v.Name)

		for _, qualified := range []string{shortName, typeQualified, moduleQualified} {
			c.insert(Symbol{
				Name:      qualified,
				Category:  CategoryVariant{Parent: t.Name},
				Scope:     "module",
				Namespace: PathVariant,
			})
		}
		if t.IsPublic {
			c.exports[PathVariant.String()+"/"+shortName] = Symbol{Name: shortName, Category: CategoryVariant{Parent: t.Name}, Namespace: PathVariant}
		}
	}
	c.adts[t.Name] = variantNames
}

func (c *ModuleSymbols) collectFunction(f *ast.Function) {
	sym := Symbol{Name: f.Name, Category: CategoryFunction{IsPublic: f.IsPublic}, Scope: "module", Namespace: PathValue}
	c.insert(sym)
	c.exportIfPublic(sym, f.IsPublic)
}

func (c *ModuleSymbols) collectImplBlock(i *ast.ImplBlock) {
	for _, item := range i.Items {
		fn := item.Method
		sym := Symbol{Name: fn.Name, Category: CategoryFunction{IsPublic: fn.IsPublic}, Scope: "module", Namespace: PathValue}
		c.insert(sym)
		c.exportIfPublic(sym, fn.IsPublic)
	}
}

// ExportedNames returns every exported symbol, sorted for determinism.
func (c *ModuleSymbols) ExportedNames() []string {
	names := make([]string, 0, len(c.exports))
	for k := range c.exports {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
