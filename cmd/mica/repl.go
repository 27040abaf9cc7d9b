package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/Sir-Teo/mica/internal/checker"
	"github.com/Sir-Teo/mica/internal/hir"
	"github.com/Sir-Teo/mica/internal/ir"
	"github.com/Sir-Teo/mica/internal/irtext"
	"github.com/Sir-Teo/mica/internal/parser"
)

// runRepl runs the pipeline incrementally over each line entered, printing
// the resulting diagnostics or IR text. It adds no new semantics beyond
// what -check/-ir already expose; it only loops.
func runRepl() {
	line := liner.NewLiner()
	defer line.Close()
	line.SetMultiLineMode(true)

	historyFile := filepath.Join(os.TempDir(), ".mica_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			_, _ = line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Printf("%s\n", bold("mica repl"))
	fmt.Println("Type :quit to exit, :help for commands.")

	for {
		input, err := line.Prompt("mica> ")
		if err != nil {
			fmt.Println()
			return
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		switch input {
		case ":quit", ":q":
			return
		case ":help", ":h":
			fmt.Println(":quit        exit the repl")
			fmt.Println(":ir <src>    lower a one-line snippet to IR text")
			continue
		}

		if strings.HasPrefix(input, ":ir ") {
			evalIR(strings.TrimPrefix(input, ":ir "))
			continue
		}

		evalCheck(input)
	}
}

func evalCheck(src string) {
	m, err := parser.Parse(src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", red("error:"), err)
		return
	}
	result := checker.CheckModule(m)
	if len(result.Diagnostics) == 0 {
		fmt.Println(green("ok"))
		return
	}
	for _, d := range result.Diagnostics {
		fmt.Printf("%s %s\n", yellow("["+d.Code+"]"), d.Message)
	}
}

func evalIR(src string) {
	m, err := parser.Parse(src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", red("error:"), err)
		return
	}
	lowered := ir.LowerModule(hir.LowerModule(m))
	fmt.Print(irtext.Render(lowered))
}
