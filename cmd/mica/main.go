// Command mica is the thin CLI driver over the core pipeline: it parses
// flags, reads a single source file, calls the appropriate core query
// function, and renders the result. It adds no semantics of its own.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func main() {
	var (
		tokensFlag  = flag.Bool("tokens", false, "print the token stream")
		astFlag     = flag.Bool("ast", false, "print the parsed AST")
		prettyFlag  = flag.Bool("pretty", false, "print the AST one item per line (used with -ast)")
		checkFlag   = flag.Bool("check", false, "run the checker and print its diagnostics")
		resolveFlag = flag.Bool("resolve", false, "run the resolver and print its diagnostics")
		lowerFlag   = flag.Bool("lower", false, "lower to HIR and print it")
		irFlag      = flag.Bool("ir", false, "lower to IR and print its textual rendering")
		llvmFlag    = flag.Bool("llvm", false, "compile via the LLVM backend (unsupported: interface only)")
		buildFlag   = flag.Bool("build", false, "compile via the text backend")
		runFlag     = flag.Bool("run", false, "compile and execute (execution requires a configured backend)")
		outFlag     = flag.String("out", "", "output path for -build/-run")
		versionFlag = flag.Bool("version", false, "print version information")
	)
	flag.Parse()

	if *versionFlag {
		fmt.Printf("%s (dev)\n", bold("mica"))
		return
	}

	if flag.NArg() == 0 {
		printHelp()
		return
	}

	if flag.Arg(0) == "repl" {
		runRepl()
		return
	}

	path := flag.Arg(0)
	src, err := os.ReadFile(path)
	if err != nil {
		fail("cannot read %q: %v", path, err)
	}

	switch {
	case *tokensFlag:
		runTokens(string(src))
	case *astFlag:
		runAST(string(src), *prettyFlag)
	case *checkFlag:
		runCheck(string(src))
	case *resolveFlag:
		runResolve(string(src))
	case *lowerFlag:
		runLower(string(src))
	case *irFlag:
		runIR(string(src))
	case *llvmFlag:
		runLLVM(string(src))
	case *buildFlag:
		runBuild(string(src), *outFlag)
	case *runFlag:
		runRun(string(src), *outFlag)
	default:
		printHelp()
	}
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", red("error:"), fmt.Sprintf(format, args...))
	os.Exit(1)
}

func printHelp() {
	fmt.Println(bold("mica - a small effect-tracking language toolchain"))
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  mica [flags] <file>")
	fmt.Println("  mica repl")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Printf("  %s       print the token stream\n", cyan("-tokens"))
	fmt.Printf("  %s          print the parsed AST (-pretty for one item per line)\n", cyan("-ast"))
	fmt.Printf("  %s        run the checker\n", cyan("-check"))
	fmt.Printf("  %s      run the resolver\n", cyan("-resolve"))
	fmt.Printf("  %s        lower to HIR\n", cyan("-lower"))
	fmt.Printf("  %s           lower to IR and print its text form\n", cyan("-ir"))
	fmt.Printf("  %s         compile via the LLVM backend (unsupported)\n", cyan("-llvm"))
	fmt.Printf("  %s        compile via the text backend (-out P)\n", cyan("-build"))
	fmt.Printf("  %s          compile and execute (-out P)\n", cyan("-run"))
}
