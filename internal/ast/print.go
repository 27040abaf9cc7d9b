package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Print renders a Module into a stable, human-readable form used by golden
// tests. It is a test/debugging aid, not the (out-of-scope) pretty-printer
// collaborator — it makes no attempt at reformatting source-faithfully.
func Print(m *Module) string {
	var b strings.Builder
	fmt.Fprintf(&b, "module %s\n", strings.Join(m.Name, "."))
	for _, item := range m.Items {
		printItem(&b, item)
	}
	return b.String()
}

func printItem(b *strings.Builder, item Item) {
	switch it := item.(type) {
	case *UseDecl:
		fmt.Fprintf(b, "use %s", strings.Join(it.Path, "."))
		if it.Alias != "" {
			fmt.Fprintf(b, " as %s", it.Alias)
		}
		b.WriteByte('\n')
	case *TypeAlias:
		printTypeAlias(b, it)
	case *Function:
		printFunction(b, it)
	case *ImplBlock:
		fmt.Fprintf(b, "impl %s for %s\n", it.TraitPath.String(), printType(it.ForType))
		for _, m := range it.Items {
			printFunction(b, m.Method)
		}
	}
}

func printTypeAlias(b *strings.Builder, t *TypeAlias) {
	vis := ""
	if t.IsPublic {
		vis = "pub "
	}
	name := t.Name
	if len(t.Params) > 0 {
		name += "[" + strings.Join(t.Params, ", ") + "]"
	}
	fmt.Fprintf(b, "%stype %s = %s\n", vis, name, printType(t.Value))
}

func printFunction(b *strings.Builder, f *Function) {
	vis := ""
	if f.IsPublic {
		vis = "pub "
	}
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = fmt.Sprintf("%s: %s", p.Name, printType(p.Type))
	}
	ret := ""
	if f.ReturnType != nil {
		ret = " -> " + printType(f.ReturnType)
	}
	eff := ""
	if len(f.EffectRow) > 0 {
		eff = " !{" + strings.Join(f.EffectRow, ", ") + "}"
	}
	fmt.Fprintf(b, "%sfn %s(%s)%s%s\n", vis, f.Name, strings.Join(params, ", "), ret, eff)
}

func printType(t TypeExpr) string {
	switch ty := t.(type) {
	case *TypeName:
		return ty.Path.String()
	case *TypeGeneric:
		args := make([]string, len(ty.Args))
		for i, a := range ty.Args {
			args[i] = printType(a)
		}
		return ty.Path.String() + "[" + strings.Join(args, ", ") + "]"
	case *TypeRecord:
		parts := make([]string, len(ty.Fields))
		for i, f := range ty.Fields {
			parts[i] = fmt.Sprintf("%s: %s", f.Name, printType(f.Type))
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	case *TypeSum:
		parts := make([]string, len(ty.Variants))
		for i, v := range ty.Variants {
			if len(v.Fields) == 0 {
				parts[i] = v.Name
				continue
			}
			fields := make([]string, len(v.Fields))
			for j, f := range v.Fields {
				fields[j] = printType(f)
			}
			parts[i] = v.Name + "(" + strings.Join(fields, ", ") + ")"
		}
		return strings.Join(parts, " | ")
	case *TypeList:
		return "[" + printType(ty.Elem) + "]"
	case *TypeTuple:
		parts := make([]string, len(ty.Items))
		for i, it := range ty.Items {
			parts[i] = printType(it)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case *TypeReference:
		if ty.IsMut {
			return "&mut " + printType(ty.Inner)
		}
		return "&" + printType(ty.Inner)
	case *TypeFunction:
		params := make([]string, len(ty.Params))
		for i, p := range ty.Params {
			params[i] = printType(p)
		}
		ret := ""
		if ty.ReturnType != nil {
			ret = " -> " + printType(ty.ReturnType)
		}
		eff := ""
		if len(ty.EffectRow) > 0 {
			eff = " !{" + strings.Join(ty.EffectRow, ", ") + "}"
		}
		return "fn(" + strings.Join(params, ", ") + ")" + ret + eff
	case *TypeSelf:
		return "Self"
	case *TypeUnit:
		return "()"
	default:
		return "<?>"
	}
}

// PrintLiteral renders a Literal's value, used by printers and error messages.
func PrintLiteral(l *Literal) string {
	switch l.Kind {
	case LitInt:
		return strconv.FormatInt(l.Int, 10)
	case LitFloat:
		return strconv.FormatFloat(l.Float, 'g', -1, 64)
	case LitBool:
		return strconv.FormatBool(l.Bool)
	case LitString:
		return strconv.Quote(l.Str)
	default:
		return "()"
	}
}
