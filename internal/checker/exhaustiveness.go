package checker

import (
	"sort"
	"strings"

	"github.com/Sir-Teo/mica/internal/ast"
)

const (
	codeNonExhaustive    = "CHK001"
	codeForeignVariant   = "CHK010"
)

// CheckExhaustiveness walks every Match in every function/impl method body
// and reports a diagnostic for each one that omits a reachable ADT variant
// and carries no wildcard/binding catch-all arm.
func CheckExhaustiveness(m *ast.Module) []Diagnostic {
	adts := collectADTs(m)
	v2a := variantToADTMap(adts)
	var diags []Diagnostic
	walkModuleMatches(m, func(match *ast.Match) {
		diags = append(diags, checkMatchExhaustive(match, adts, v2a)...)
	})
	return diags
}

func walkModuleMatches(m *ast.Module, visit func(*ast.Match)) {
	for _, item := range m.Items {
		switch it := item.(type) {
		case *ast.Function:
			walkBlockMatches(&it.Body, visit)
		case *ast.ImplBlock:
			for _, im := range it.Items {
				walkBlockMatches(&im.Method.Body, visit)
			}
		}
	}
}

func walkBlockMatches(b *ast.Block, visit func(*ast.Match)) {
	for _, stmt := range b.Statements {
		switch st := stmt.(type) {
		case *ast.LetStmt:
			walkExprMatches(st.Value, visit)
		case *ast.ExprStmt:
			walkExprMatches(st.Expr, visit)
		case *ast.ReturnStmt:
			if st.Value != nil {
				walkExprMatches(st.Value, visit)
			}
		}
	}
}

func walkExprMatches(e ast.Expr, visit func(*ast.Match)) {
	switch ex := e.(type) {
	case *ast.Match:
		visit(ex)
		walkExprMatches(ex.Scrutinee, visit)
		for _, arm := range ex.Arms {
			if arm.Guard != nil {
				walkExprMatches(arm.Guard, visit)
			}
			walkExprMatches(arm.Body, visit)
		}
	case *ast.Binary:
		walkExprMatches(ex.Left, visit)
		walkExprMatches(ex.Right, visit)
	case *ast.Unary:
		walkExprMatches(ex.Expr, visit)
	case *ast.Call:
		walkExprMatches(ex.Callee, visit)
		for _, a := range ex.Args {
			walkExprMatches(a, visit)
		}
	case *ast.Ctor:
		for _, a := range ex.Args {
			walkExprMatches(a, visit)
		}
	case *ast.Record:
		for _, f := range ex.Fields {
			walkExprMatches(f.Value, visit)
		}
	case *ast.Field:
		walkExprMatches(ex.Expr, visit)
	case *ast.Index:
		walkExprMatches(ex.Expr, visit)
		walkExprMatches(ex.Index, visit)
	case *ast.Cast:
		walkExprMatches(ex.Expr, visit)
	case *ast.If:
		walkExprMatches(ex.Cond, visit)
		walkBlockMatches(&ex.Then, visit)
		if ex.Else != nil {
			walkBlockMatches(ex.Else, visit)
		}
	case *ast.For:
		walkExprMatches(ex.Iterable, visit)
		walkBlockMatches(&ex.Body, visit)
	case *ast.While:
		walkExprMatches(ex.Cond, visit)
		walkBlockMatches(&ex.Body, visit)
	case *ast.Loop:
		walkBlockMatches(&ex.Body, visit)
	case *ast.Assignment:
		walkExprMatches(ex.Target, visit)
		walkExprMatches(ex.Value, visit)
	case *ast.Spawn:
		walkExprMatches(ex.Expr, visit)
	case *ast.Await:
		walkExprMatches(ex.Expr, visit)
	case *ast.Chan:
		if ex.Capacity != nil {
			walkExprMatches(ex.Capacity, visit)
		}
	case *ast.Using:
		walkExprMatches(ex.Expr, visit)
		walkBlockMatches(&ex.Body, visit)
	case *ast.Try:
		walkExprMatches(ex.Expr, visit)
	case *ast.BlockExpr:
		walkBlockMatches(&ex.Block, visit)
	}
}

func checkMatchExhaustive(match *ast.Match, adts map[string][]string, v2a map[string][]string) []Diagnostic {
	for _, arm := range match.Arms {
		switch arm.Pattern.(type) {
		case *ast.WildcardPattern, *ast.BindingPattern:
			return nil // total
		}
	}

	seen := map[string]bool{}
	var order []string
	for _, arm := range match.Arms {
		variant, ok := arm.Pattern.(*ast.EnumVariantPattern)
		if !ok {
			continue
		}
		name := variant.Path.Segments[len(variant.Path.Segments)-1]
		if !seen[name] {
			seen[name] = true
			order = append(order, name)
		}
	}
	if len(order) == 0 {
		return nil
	}

	// Find candidate ADTs common to every seen variant.
	var commonADTs []string
	for _, adt := range v2a[order[0]] {
		coversAll := true
		for _, name := range order {
			if !contains(v2a[name], adt) {
				coversAll = false
				break
			}
		}
		if coversAll {
			commonADTs = append(commonADTs, adt)
		}
	}

	if len(commonADTs) == 0 {
		return []Diagnostic{{
			Code:    codeForeignVariant,
			Message: "match arm references a variant from a foreign ADT: " + strings.Join(order, ", "),
		}}
	}

	adt := commonADTs[0]
	allVariants := adts[adt]
	var missing []string
	for _, v := range allVariants {
		if !seen[v] {
			missing = append(missing, v)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return []Diagnostic{{
		Code:    codeNonExhaustive,
		Message: "non-exhaustive match for " + adt + ": missing variants " + strings.Join(missing, ", "),
	}}
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
