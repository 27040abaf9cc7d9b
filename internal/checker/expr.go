package checker

import (
	"strconv"

	"github.com/Sir-Teo/mica/internal/ast"
)

func checkExpr(expr ast.Expr, e *env, ctx *funcCtx) TypeRepr {
	switch ex := expr.(type) {
	case *ast.Literal:
		return literalType(ex)

	case *ast.PathExpr:
		name := ex.Path.String()
		if t, ok := e.lookup(ex.Path.Segments[0]); ok && len(ex.Path.Segments) == 1 {
			return t
		}
		if sig, ok := ctx.sigs[name]; ok {
			return sig.FunctionType
		}
		return TUnknown{}

	case *ast.Binary:
		return checkBinary(ex, e, ctx)

	case *ast.Unary:
		operand := checkExpr(ex.Expr, e, ctx)
		switch ex.Op {
		case ast.OpNot:
			boolTy := TPrimitive{Kind: PrimBool}
			if !typesCompatible(boolTy, operand) {
				ctx.report(codeBadOperand, "operator '!' in "+ctx.name+" expects Bool but found "+operand.String())
			}
			return boolTy
		default:
			return operand
		}

	case *ast.Call:
		return checkCall(ex, e, ctx)

	case *ast.Ctor:
		return checkCtor(ex, e, ctx)

	case *ast.Record:
		return checkRecord(ex, e, ctx)

	case *ast.Field:
		base := checkExpr(ex.Expr, e, ctx)
		return fieldType(base, ex.Name, ctx)

	case *ast.Index:
		base := checkExpr(ex.Expr, e, ctx)
		checkExpr(ex.Index, e, ctx)
		if lst, ok := base.(TList); ok {
			return lst.Elem
		}
		return TUnknown{}

	case *ast.Cast:
		checkExpr(ex.Expr, e, ctx)
		return astTypeToRepr(ex.Type, ctx.generics)

	case *ast.If:
		condTy := checkExpr(ex.Cond, e, ctx)
		if !typesCompatible(TPrimitive{Kind: PrimBool}, condTy) {
			ctx.report(codeBadOperand, "if condition in "+ctx.name+" is "+condTy.String()+" but must be Bool")
		}
		thenTy := checkBlock(&ex.Then, e, ctx)
		if ex.Else != nil {
			elseTy := checkBlock(ex.Else, e, ctx)
			if !typesCompatible(thenTy, elseTy) {
				ctx.report(codeBadOperand, "if/else arms have incompatible types "+thenTy.String()+" and "+elseTy.String())
			}
		}
		return thenTy

	case *ast.Match:
		return checkMatch(ex, e, ctx)

	case *ast.For:
		checkExpr(ex.Iterable, e, ctx)
		e.push()
		e.bind(ex.Binding, TUnknown{})
		checkBlock(&ex.Body, e, ctx)
		e.pop()
		return TUnit{}

	case *ast.While:
		checkExpr(ex.Cond, e, ctx)
		checkBlock(&ex.Body, e, ctx)
		return TUnit{}

	case *ast.Loop:
		checkBlock(&ex.Body, e, ctx)
		return TUnit{}

	case *ast.Assignment:
		checkExpr(ex.Target, e, ctx)
		checkExpr(ex.Value, e, ctx)
		return TUnit{}

	case *ast.Spawn:
		checkExpr(ex.Expr, e, ctx)
		return TUnknown{}

	case *ast.Await:
		return checkExpr(ex.Expr, e, ctx)

	case *ast.Chan:
		elem := astTypeToRepr(ex.Elem, ctx.generics)
		if ex.Capacity != nil {
			checkExpr(ex.Capacity, e, ctx)
		}
		return TNamed{Path: "Chan", Args: []TypeRepr{elem}}

	case *ast.Using:
		checkExpr(ex.Expr, e, ctx)
		e.push()
		if ex.Binding != "" {
			e.bind(ex.Binding, TUnknown{})
		}
		result := checkBlock(&ex.Body, e, ctx)
		e.pop()
		return result

	case *ast.Try:
		return checkExpr(ex.Expr, e, ctx)

	case *ast.BlockExpr:
		return checkBlock(&ex.Block, e, ctx)

	default:
		return TUnknown{}
	}
}

func checkBinary(ex *ast.Binary, e *env, ctx *funcCtx) TypeRepr {
	left := checkExpr(ex.Left, e, ctx)
	right := checkExpr(ex.Right, e, ctx)
	switch ex.Op {
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod:
		if !typesCompatible(left, right) {
			ctx.report(codeBadOperand, "operand types "+left.String()+" and "+right.String()+" are not compatible")
		}
		return left
	case ast.OpEq, ast.OpNe:
		return TPrimitive{Kind: PrimBool}
	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		return TPrimitive{Kind: PrimBool}
	case ast.OpAnd, ast.OpOr:
		boolTy := TPrimitive{Kind: PrimBool}
		if !typesCompatible(boolTy, left) || !typesCompatible(boolTy, right) {
			ctx.report(codeBadOperand, "&&/|| operands must be compatible with Bool")
		}
		return boolTy
	default:
		return TUnknown{}
	}
}

func checkCall(ex *ast.Call, e *env, ctx *funcCtx) TypeRepr {
	calleeTy := checkExpr(ex.Callee, e, ctx)
	var args []TypeRepr
	for _, a := range ex.Args {
		args = append(args, checkExpr(a, e, ctx))
	}
	fn, ok := calleeTy.(TFunction)
	if !ok {
		ctx.report(codeTypeMismatch, "call target is not a function")
		return TUnknown{}
	}
	if len(fn.Params) != len(args) {
		ctx.report(codeBadArity, "call expects "+strconv.Itoa(len(fn.Params))+" arguments, got "+strconv.Itoa(len(args)))
	} else {
		for i, p := range fn.Params {
			if !typesCompatible(p, args[i]) {
				ctx.report(codeBadOperand, "argument "+strconv.Itoa(i)+" type "+args[i].String()+" is not compatible with parameter type "+p.String())
			}
		}
	}
	for _, eff := range fn.Effects {
		if !ctx.effectRow[eff] {
			ctx.report(codeCalleeEffectMissing, "callee requires capability "+eff+" not present in "+ctx.name+"'s effect row")
		} else if !ctx.paramNames[eff] {
			ctx.report(codeUndeclaredCapability, "capability "+eff+" has no matching in-scope parameter in "+ctx.name)
		}
	}
	return fn.Ret
}

func checkCtor(ex *ast.Ctor, e *env, ctx *funcCtx) TypeRepr {
	var args []TypeRepr
	for _, a := range ex.Args {
		args = append(args, checkExpr(a, e, ctx))
	}
	name := ex.Path.String()
	info, ok := ctx.variants[name]
	if !ok {
		ok = false
		if len(ex.Path.Segments) > 0 {
			info, ok = ctx.variants[ex.Path.Segments[len(ex.Path.Segments)-1]]
		}
	}
	if !ok {
		ctx.report(codeUnknownVariant, "unknown variant/constructor "+name)
		return TUnknown{}
	}
	if len(info.Fields) != len(args) {
		ctx.report(codeBadArity, "constructor "+name+" expects "+strconv.Itoa(len(info.Fields))+" fields, got "+strconv.Itoa(len(args)))
	} else {
		for i, f := range info.Fields {
			if !typesCompatible(f, args[i]) {
				ctx.report(codeBadOperand, "constructor "+name+" field "+strconv.Itoa(i)+" type mismatch")
			}
		}
	}
	return info.ParentType
}

func checkRecord(ex *ast.Record, e *env, ctx *funcCtx) TypeRepr {
	fieldTypes := make(map[string]TypeRepr, len(ex.Fields))
	for _, f := range ex.Fields {
		fieldTypes[f.Name] = checkExpr(f.Value, e, ctx)
	}
	if ex.TypePath == nil {
		return TUnknown{}
	}
	name := ex.TypePath.String()
	rec, ok := ctx.recordAliases[name]
	if !ok {
		ctx.report(codeUnknownVariant, "unknown record type "+name)
		return TUnknown{}
	}
	for _, declared := range rec.Fields {
		actual, given := fieldTypes[declared.Name]
		if !given {
			continue // a declared field missing from the literal is not reported
		}
		if !typesCompatible(declared.Type, actual) {
			ctx.report(codeBadOperand, "record field "+declared.Name+" type mismatch in "+name)
		}
	}
	return TNamed{Path: name}
}

func fieldType(base TypeRepr, name string, ctx *funcCtx) TypeRepr {
	switch b := base.(type) {
	case TRecord:
		for _, f := range b.Fields {
			if f.Name == name {
				return f.Type
			}
		}
	case TNamed:
		if rec, ok := ctx.recordAliases[b.Path]; ok {
			for _, f := range rec.Fields {
				if f.Name == name {
					return f.Type
				}
			}
		}
	}
	return TUnknown{}
}

func checkMatch(ex *ast.Match, e *env, ctx *funcCtx) TypeRepr {
	scrutTy := checkExpr(ex.Scrutinee, e, ctx)
	var result TypeRepr = TUnknown{}
	first := true
	for _, arm := range ex.Arms {
		e.push()
		bindPattern(arm.Pattern, scrutTy, e, ctx)
		if arm.Guard != nil {
			guardTy := checkExpr(arm.Guard, e, ctx)
			if !typesCompatible(TPrimitive{Kind: PrimBool}, guardTy) {
				ctx.report(codeBadOperand, "match guard in "+ctx.name+" has type "+guardTy.String()+" but must be Bool")
			}
		}
		bodyTy := checkExpr(arm.Body, e, ctx)
		e.pop()
		if first {
			result = bodyTy
			first = false
			continue
		}
		if !typesCompatible(result, bodyTy) {
			ctx.report(codeBadOperand, "match arms have incompatible types")
		}
	}
	return result
}

func bindPattern(p ast.Pattern, scrutTy TypeRepr, e *env, ctx *funcCtx) {
	switch pat := p.(type) {
	case *ast.WildcardPattern, *ast.LiteralPattern:
		// nothing to bind
	case *ast.BindingPattern:
		e.bind(pat.Name, scrutTy)
	case *ast.TuplePattern:
		tup, ok := scrutTy.(TTuple)
		for i, item := range pat.Items {
			var itemTy TypeRepr = TUnknown{}
			if ok && i < len(tup.Items) {
				itemTy = tup.Items[i]
			}
			bindPattern(item, itemTy, e, ctx)
		}
	case *ast.RecordPattern:
		rec, ok := scrutTy.(TRecord)
		if !ok {
			if named, isNamed := scrutTy.(TNamed); isNamed {
				if r, known := ctx.recordAliases[named.Path]; known {
					rec, ok = r, true
				}
			}
		}
		byName := map[string]TypeRepr{}
		if ok {
			for _, f := range rec.Fields {
				byName[f.Name] = f.Type
			}
		}
		for _, f := range pat.Fields {
			fieldTy := byName[f.Name]
			if fieldTy == nil {
				fieldTy = TUnknown{}
			}
			if f.Pattern == nil {
				e.bind(f.Name, fieldTy)
				continue
			}
			bindPattern(f.Pattern, fieldTy, e, ctx)
		}
	case *ast.EnumVariantPattern:
		name := pat.Path.String()
		info, ok := ctx.variants[name]
		if !ok && len(pat.Path.Segments) > 0 {
			info, ok = ctx.variants[pat.Path.Segments[len(pat.Path.Segments)-1]]
		}
		for i, sub := range pat.Fields {
			var fieldTy TypeRepr = TUnknown{}
			if ok && i < len(info.Fields) {
				fieldTy = info.Fields[i]
			}
			bindPattern(sub, fieldTy, e, ctx)
		}
	}
}

