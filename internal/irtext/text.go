// Package irtext renders a Module into the stable, test-oriented textual IR
// form described by the external interface grammar: one `module <dotted>`
// header, then one function block per function with its parameters, return
// type, effect row, basic blocks, typed instructions, and terminator.
//
// Back-ends consume the structured ir.Module, never this text; it exists so
// golden-file tests can assert IR shape without hand-walking instructions.
package irtext

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Sir-Teo/mica/internal/ast"
	"github.com/Sir-Teo/mica/internal/ir"
)

// Render renders every function of m, separated by a blank line.
func Render(m ir.Module) string {
	var b strings.Builder
	fmt.Fprintf(&b, "module %s\n", strings.Join(m.Name, "."))
	for _, fn := range m.Functions {
		b.WriteString("\n")
		renderFunction(&b, m, fn)
	}
	return b.String()
}

func renderFunction(b *strings.Builder, m ir.Module, fn ir.Function) {
	fmt.Fprintf(b, "fn %s(", fn.Name)
	for i, p := range fn.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(b, "%s: %s", p.Name, formatType(m.Types.Get(p.Type)))
	}
	b.WriteString(")")

	retTy := m.Types.Get(fn.RetType)
	if retTy.Kind != ir.KUnit {
		fmt.Fprintf(b, " -> %s", formatType(retTy))
	}
	if len(fn.EffectRow) > 0 {
		names := make([]string, len(fn.EffectRow))
		for i, id := range fn.EffectRow {
			names[i] = m.Effects.Name(id)
		}
		fmt.Fprintf(b, " !{%s}", strings.Join(names, ", "))
	}
	b.WriteString("\n")

	for _, block := range fn.Blocks {
		fmt.Fprintf(b, "  block %d:\n", block.ID)
		for _, inst := range block.Instructions {
			ty := m.Types.Get(inst.Type)
			fmt.Fprintf(b, "    %%%d = %s : %s\n", inst.ID, formatInst(m, inst), formatType(ty))
		}
		fmt.Fprintf(b, "    %s\n", formatTerminator(block))
	}
}

func formatInst(m ir.Module, inst ir.Instruction) string {
	switch k := inst.Kind.(type) {
	case ir.InstLiteral:
		return formatLiteral(k.Lit)

	case ir.InstBinary:
		return fmt.Sprintf("%s %%%d, %%%d", k.Op, k.Lhs, k.Rhs)

	case ir.InstCall:
		name := formatFuncRef(k.Func)
		parts := make([]string, len(k.Args))
		for i, a := range k.Args {
			parts[i] = "%" + strconv.FormatUint(uint64(a), 10)
		}
		return fmt.Sprintf("call %s(%s)", name, strings.Join(parts, ", "))

	case ir.InstRecord:
		parts := make([]string, len(k.Fields))
		for i, f := range k.Fields {
			parts[i] = fmt.Sprintf("%s: %%%d", f.Name, f.Value)
		}
		body := strings.Join(parts, ", ")
		if k.TypePath != nil {
			return fmt.Sprintf("record %s { %s }", k.TypePath.String(), body)
		}
		return fmt.Sprintf("record { %s }", body)

	case ir.InstPath:
		return "path " + k.Path.String()

	case ir.InstPhi:
		parts := make([]string, len(k.Incomings))
		for i, in := range k.Incomings {
			parts[i] = fmt.Sprintf("bb%d: %%%d", in.Block, in.Value)
		}
		return fmt.Sprintf("phi { %s }", strings.Join(parts, ", "))

	default:
		return fmt.Sprintf("<unknown inst %T>", k)
	}
}

func formatFuncRef(ref ir.FuncRef) string {
	switch r := ref.(type) {
	case ir.FuncRefFunction:
		return r.Path.String()
	case ir.FuncRefMethod:
		return r.Name
	default:
		return "<unknown>"
	}
}

func formatTerminator(block ir.BasicBlock) string {
	switch t := block.Terminator.(type) {
	case ir.TermReturn:
		if t.HasValue {
			return fmt.Sprintf("return %%%d", t.Value)
		}
		return "return"
	case ir.TermBranch:
		return fmt.Sprintf("branch %%%d -> bb%d, bb%d", t.Cond, t.ThenBlock, t.ElseBlock)
	case ir.TermJump:
		return fmt.Sprintf("jump bb%d", t.Target)
	default:
		return fmt.Sprintf("<unknown terminator %T>", t)
	}
}

func formatLiteral(lit ast.Literal) string {
	switch lit.Kind {
	case ast.LitInt:
		return strconv.FormatInt(lit.Int, 10)
	case ast.LitFloat:
		return strconv.FormatFloat(lit.Float, 'g', -1, 64)
	case ast.LitBool:
		return strconv.FormatBool(lit.Bool)
	case ast.LitString:
		return strconv.Quote(lit.Str)
	case ast.LitUnit:
		return "()"
	default:
		return "()"
	}
}

func formatType(ty ir.Type) string {
	switch ty.Kind {
	case ir.KUnit:
		return "Unit"
	case ir.KInt:
		return "Int"
	case ir.KFloat:
		return "Float"
	case ir.KBool:
		return "Bool"
	case ir.KString:
		return "String"
	case ir.KNamed:
		return ty.NamedName
	case ir.KRecord:
		return formatRecordType(ty.Record)
	case ir.KUnknown:
		return "_"
	default:
		return "_"
	}
}

func formatRecordType(r ir.RecordType) string {
	if r.Name != "" {
		return r.Name
	}
	parts := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		parts[i] = f.Name + ": " + strconv.Itoa(int(f.Type))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
