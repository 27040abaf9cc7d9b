package main

import (
	"fmt"
	"os"

	"github.com/Sir-Teo/mica/internal/ast"
	"github.com/Sir-Teo/mica/internal/backend"
	"github.com/Sir-Teo/mica/internal/checker"
	"github.com/Sir-Teo/mica/internal/hir"
	"github.com/Sir-Teo/mica/internal/ir"
	"github.com/Sir-Teo/mica/internal/irtext"
	"github.com/Sir-Teo/mica/internal/lexer"
	"github.com/Sir-Teo/mica/internal/parser"
	"github.com/Sir-Teo/mica/internal/resolver"
)

// parseOrDie lexes and parses src, printing a single "error: <message>" line
// and exiting non-zero on failure, per the propagation policy for Lex/Parse
// errors (they abort the pipeline rather than collect as diagnostics).
func parseOrDie(src string) *ast.Module {
	m, err := parser.Parse(src)
	if err != nil {
		if le, ok := err.(*lexer.Error); ok {
			fail("%s", le.Report().Render())
		}
		if pe, ok := err.(*parser.Error); ok {
			fail("%s", pe.Report().Render())
		}
		fail("%v", err)
	}
	return m
}

func runTokens(src string) {
	toks, err := lexer.Tokens(string(lexer.Normalize([]byte(src))))
	if err != nil {
		if le, ok := err.(*lexer.Error); ok {
			fail("%s", le.Report().Render())
		}
		fail("%v", err)
	}
	for _, tok := range toks {
		fmt.Printf("%-14s %-20q @%s\n", tok.Kind, tok.Literal, tok.Span)
	}
}

func runAST(src string, pretty bool) {
	m := parseOrDie(src)
	if pretty {
		for _, item := range m.Items {
			fmt.Printf("%+v\n", item)
		}
		return
	}
	fmt.Printf("%+v\n", m)
}

func runCheck(src string) {
	m := parseOrDie(src)
	result := checker.CheckModule(m)
	printDiagnostics("check", len(result.Diagnostics) == 0)
	for _, d := range result.Diagnostics {
		fmt.Printf("  %s %s: %s\n", yellow("["+d.Code+"]"), d.Span, d.Message)
	}
}

func runResolve(src string) {
	m := parseOrDie(src)
	resolved := resolver.Resolve(m)
	printDiagnostics("resolve", len(resolved.Diagnostics) == 0)
	for _, d := range resolved.Diagnostics {
		fmt.Printf("  %s %s: %s\n", yellow("["+d.Code+"]"), d.Span, d.Message)
	}
}

func runLower(src string) {
	m := parseOrDie(src)
	h := hir.LowerModule(m)
	fmt.Printf("%+v\n", h)
}

func runIR(src string) {
	m := parseOrDie(src)
	h := hir.LowerModule(m)
	lowered := ir.LowerModule(h)
	fmt.Print(irtext.Render(lowered))
}

// textBackend renders a module's IR text as its "compiled" output; it
// stands in for a concrete backend since only the shared Backend interface
// is in scope here, not a full native/LLVM emitter.
type textBackend struct{}

func (textBackend) Compile(module ir.Module, _ backend.BackendOptions) (string, error) {
	return irtext.Render(module), nil
}

func runLLVM(src string) {
	m := parseOrDie(src)
	h := hir.LowerModule(m)
	lowered := ir.LowerModule(h)
	_, err := backend.Run[string](llvmBackend{}, lowered, backend.BackendOptions{})
	if err != nil {
		fail("%s", err)
	}
}

// llvmBackend reports every compile as unsupported: LLVM emission is out of
// scope beyond the shared Backend interface.
type llvmBackend struct{}

func (llvmBackend) Compile(ir.Module, backend.BackendOptions) (string, error) {
	return "", backend.Unsupported("LLVM backend is not implemented; only the Backend interface is provided")
}

func runBuild(src, out string) {
	m := parseOrDie(src)
	h := hir.LowerModule(m)
	lowered := ir.LowerModule(h)
	output, err := backend.Run[string](textBackend{}, lowered, backend.BackendOptions{})
	if err != nil {
		fail("%s", err)
	}
	writeOutput(output, out)
}

func runRun(src, out string) {
	m := parseOrDie(src)
	h := hir.LowerModule(m)
	lowered := ir.LowerModule(h)
	output, err := backend.Run[string](textBackend{}, lowered, backend.BackendOptions{})
	if err != nil {
		fail("%s", err)
	}
	writeOutput(output, out)
	fmt.Println(yellow("note: execution requires a configured backend; compiled output above"))
}

func writeOutput(output, out string) {
	if out == "" {
		fmt.Print(output)
		return
	}
	if err := os.WriteFile(out, []byte(output), 0o644); err != nil {
		fail("cannot write %q: %v", out, err)
	}
}

func printDiagnostics(stage string, clean bool) {
	if clean {
		fmt.Printf("%s %s: no diagnostics\n", green("✓"), stage)
		return
	}
	fmt.Printf("%s %s: diagnostics found\n", cyan("→"), stage)
}
