package checker

import (
	"strings"

	"github.com/Sir-Teo/mica/internal/ast"
)

// ParamSig is one function parameter's checker-level signature.
type ParamSig struct {
	Name string
	Type TypeRepr
}

// FunctionSig is a function's checker-level signature.
type FunctionSig struct {
	Params       []ParamSig
	ReturnType   TypeRepr
	HasReturn    bool
	FunctionType TFunction
	Effects      []string
}

// VariantInfo is a registered sum-type variant, keyed under three names
// (short, type-qualified, module-fully-qualified).
type VariantInfo struct {
	Name       string
	Parent     string
	Fields     []TypeRepr
	ParentType TypeRepr
}

func moduleQualified(modulePath []string, parts ...string) string {
	prefix := strings.Join(modulePath, ".")
	suffix := strings.Join(parts, "::")
	if prefix == "" {
		return suffix
	}
	return prefix + "::" + suffix
}

func functionSig(f *ast.Function) FunctionSig {
	generics := map[string]bool{}
	for _, g := range f.Generics {
		generics[g.Name] = true
	}
	params := make([]ParamSig, len(f.Params))
	paramTypes := make([]TypeRepr, len(f.Params))
	for i, p := range f.Params {
		pt := astTypeToRepr(p.Type, generics)
		params[i] = ParamSig{Name: p.Name, Type: pt}
		paramTypes[i] = pt
	}
	ret := TypeRepr(TUnit{})
	hasReturn := f.ReturnType != nil
	if hasReturn {
		ret = astTypeToRepr(f.ReturnType, generics)
	}
	return FunctionSig{
		Params:       params,
		ReturnType:   ret,
		HasReturn:    hasReturn,
		FunctionType: TFunction{Params: paramTypes, Ret: ret, Effects: f.EffectRow},
		Effects:      f.EffectRow,
	}
}

// collectFunctionSigs walks every top-level Function and ImplBlock method.
func collectFunctionSigs(m *ast.Module) map[string]FunctionSig {
	sigs := map[string]FunctionSig{}
	for _, item := range m.Items {
		switch it := item.(type) {
		case *ast.Function:
			sigs[it.Name] = functionSig(it)
		case *ast.ImplBlock:
			for _, im := range it.Items {
				sigs[im.Method.Name] = functionSig(im.Method)
			}
		}
	}
	return sigs
}

// collectVariantRegistry registers every sum-type alias's variants under
// three keys with their field TypeReprs and parent TypeRepr.
func collectVariantRegistry(m *ast.Module) map[string]VariantInfo {
	variants := map[string]VariantInfo{}
	for _, item := range m.Items {
		alias, ok := item.(*ast.TypeAlias)
		if !ok {
			continue
		}
		sum, ok := alias.Value.(*ast.TypeSum)
		if !ok {
			continue
		}
		generics := map[string]bool{}
		for _, p := range alias.Params {
			generics[p] = true
		}
		parentType := TNamed{Path: alias.Name}
		for _, v := range sum.Variants {
			fields := make([]TypeRepr, len(v.Fields))
			for i, f := range v.Fields {
				fields[i] = astTypeToRepr(f, generics)
			}
			info := VariantInfo{Name: v.Name, Parent: alias.Name, Fields: fields, ParentType: parentType}
			variants[v.Name] = info
			variants[alias.Name+"::"+v.Name] = info
			variants[moduleQualified(m.Name, alias.Name, v.Name)] = info
		}
	}
	return variants
}

// collectRecordAliasFields maps a non-sum record type alias's name to its
// field TypeRecord, used when checking Record literals.
func collectRecordAliasFields(m *ast.Module) map[string]TRecord {
	out := map[string]TRecord{}
	for _, item := range m.Items {
		alias, ok := item.(*ast.TypeAlias)
		if !ok {
			continue
		}
		rec, ok := alias.Value.(*ast.TypeRecord)
		if !ok {
			continue
		}
		generics := map[string]bool{}
		for _, p := range alias.Params {
			generics[p] = true
		}
		repr := astTypeToRepr(rec, generics).(TRecord)
		out[alias.Name] = repr
	}
	return out
}

// collectADTs maps a sum-type alias name to its ordered variant names.
func collectADTs(m *ast.Module) map[string][]string {
	adts := map[string][]string{}
	for _, item := range m.Items {
		alias, ok := item.(*ast.TypeAlias)
		if !ok {
			continue
		}
		sum, ok := alias.Value.(*ast.TypeSum)
		if !ok {
			continue
		}
		names := make([]string, len(sum.Variants))
		for i, v := range sum.Variants {
			names[i] = v.Name
		}
		adts[alias.Name] = names
	}
	return adts
}

// variantToADT maps a variant name to its candidate parent ADT names.
func variantToADTMap(adts map[string][]string) map[string][]string {
	out := map[string][]string{}
	for adt, variants := range adts {
		for _, v := range variants {
			out[v] = append(out[v], adt)
		}
	}
	return out
}
