package checker

import (
	"github.com/Sir-Teo/mica/internal/ast"
)

// CheckResult is the full output of checking one module: structural type
// diagnostics plus exhaustiveness diagnostics, kept separate from the
// resolver's own diagnostics (§7: Resolver and Checker each collect their
// own, neither ever aborts the pipeline).
type CheckResult struct {
	Diagnostics []Diagnostic
}

// funcCtx carries the per-function state threaded through expression
// checking: the declared effect row (for capability-as-parameter checks),
// the in-scope parameter names, and the declared return type.
type funcCtx struct {
	name              string
	effectRow         map[string]bool
	paramNames        map[string]bool
	declaredReturn    TypeRepr
	hasDeclaredReturn bool
	generics          map[string]bool
	sigs              map[string]FunctionSig
	variants          map[string]VariantInfo
	recordAliases     map[string]TRecord
	diagnostics       *[]Diagnostic
}

func (c *funcCtx) report(code, message string) {
	*c.diagnostics = append(*c.diagnostics, Diagnostic{Code: code, Message: message})
}

// CheckModule runs exhaustiveness and structural type checking over every
// function and impl method in m.
func CheckModule(m *ast.Module) CheckResult {
	var diags []Diagnostic
	diags = append(diags, CheckExhaustiveness(m)...)

	sigs := collectFunctionSigs(m)
	variants := collectVariantRegistry(m)
	recordAliases := collectRecordAliasFields(m)

	for _, item := range m.Items {
		switch it := item.(type) {
		case *ast.Function:
			diags = append(diags, checkFunction(it, sigs, variants, recordAliases)...)
		case *ast.ImplBlock:
			for _, im := range it.Items {
				diags = append(diags, checkFunction(im.Method, sigs, variants, recordAliases)...)
			}
		}
	}
	return CheckResult{Diagnostics: diags}
}

func checkFunction(f *ast.Function, sigs map[string]FunctionSig, variants map[string]VariantInfo, recordAliases map[string]TRecord) []Diagnostic {
	var diags []Diagnostic
	generics := map[string]bool{}
	for _, g := range f.Generics {
		generics[g.Name] = true
	}
	paramNames := map[string]bool{}
	for _, p := range f.Params {
		paramNames[p.Name] = true
	}

	// 1. duplicate capability names in the effect row
	seenEffect := map[string]bool{}
	effectRow := map[string]bool{}
	for _, eff := range f.EffectRow {
		if seenEffect[eff] {
			diags = append(diags, Diagnostic{Code: codeDuplicateCapability, Message: "duplicate capability " + eff + " in effect row of " + f.Name})
		}
		seenEffect[eff] = true
		effectRow[eff] = true
	}

	// 2. each declared capability must name an in-scope parameter
	for _, eff := range f.EffectRow {
		if !paramNames[eff] {
			diags = append(diags, Diagnostic{Code: codeUndeclaredCapability, Message: "capability " + eff + " in " + f.Name + " has no matching parameter"})
		}
	}

	sig := sigs[f.Name]
	ctx := &funcCtx{
		name:              f.Name,
		effectRow:         effectRow,
		paramNames:        paramNames,
		declaredReturn:    sig.ReturnType,
		hasDeclaredReturn: sig.HasReturn,
		generics:          generics,
		sigs:              sigs,
		variants:          variants,
		recordAliases:     recordAliases,
		diagnostics:       &diags,
	}

	// 3. bind parameters, then check the body block
	e := newEnv()
	for i, p := range f.Params {
		e.bind(p.Name, sig.Params[i].Type)
	}
	bodyType := checkBlock(&f.Body, e, ctx)

	// 4. the block's value must be compatible with the declared return type
	if ctx.hasDeclaredReturn && !typesCompatible(ctx.declaredReturn, bodyType) {
		ctx.report(codeReturnTypeMismatch, "function "+f.Name+" body type "+bodyType.String()+" is not compatible with declared return type "+ctx.declaredReturn.String())
	}

	return diags
}

func checkBlock(b *ast.Block, e *env, ctx *funcCtx) TypeRepr {
	e.push()
	defer e.pop()

	var last TypeRepr = TUnit{}
	lastIsExpr := false
	for _, stmt := range b.Statements {
		switch st := stmt.(type) {
		case *ast.LetStmt:
			t := checkExpr(st.Value, e, ctx)
			e.bind(st.Name, t)
			lastIsExpr = false
		case *ast.ExprStmt:
			last = checkExpr(st.Expr, e, ctx)
			lastIsExpr = true
		case *ast.ReturnStmt:
			var t TypeRepr = TUnit{}
			if st.Value != nil {
				t = checkExpr(st.Value, e, ctx)
			}
			// 5. explicit returns against the declared return type
			if !ctx.hasDeclaredReturn {
				ctx.report(codeReturnTypeMismatch, "return in "+ctx.name+" which has no declared return type")
			} else if !typesCompatible(ctx.declaredReturn, t) {
				ctx.report(codeReturnTypeMismatch, "return type "+t.String()+" is not compatible with declared return type "+ctx.declaredReturn.String()+" in "+ctx.name)
			}
			lastIsExpr = false
		case *ast.BreakStmt, *ast.ContinueStmt:
			lastIsExpr = false
		}
	}
	if !lastIsExpr {
		return TUnit{}
	}
	return last
}
