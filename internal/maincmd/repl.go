package maincmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/peterh/liner"

	"github.com/CabooseLang/Caboose/lang/vm"
	"github.com/mna/mainer"
)

const historyFileName = ".caboose_history"

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, historyFileName)
}

// runREPL implements spec.md §6's interactive mode: read a line, interpret
// it, repeat; persist line history across sessions; Ctrl-C prints a
// farewell and exits 0 rather than propagating the interrupt as an error.
func runREPL(ctx context.Context, stdio mainer.Stdio) int {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	if path := historyPath(); path != "" {
		if f, err := os.Open(path); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}

	machine := vm.New(stdio.Stdout, stdio.Stderr)

	fmt.Fprintln(stdio.Stdout, "Caboose REPL. Press Ctrl-C to exit.")
	for ctx.Err() == nil {
		text, err := line.Prompt("> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(stdio.Stdout, "goodbye.")
				saveHistory(line)
				return ExitOK
			}
			fmt.Fprintln(stdio.Stderr, err)
			saveHistory(line)
			return ExitRuntime
		}
		if text == "" {
			continue
		}
		line.AppendHistory(text)

		if err := machine.Interpret(text); err != nil {
			// Errors are already printed to stdio.Stderr by vm.Interpret;
			// the REPL just keeps going instead of exiting on a bad line.
			continue
		}
	}
	fmt.Fprintln(stdio.Stdout, "\ngoodbye.")
	saveHistory(line)
	return ExitOK
}

func saveHistory(line *liner.State) {
	path := historyPath()
	if path == "" {
		return
	}
	f, err := os.Create(path)
	if err != nil {
		return
	}
	defer f.Close()
	line.WriteHistory(f)
}

// runFile implements spec.md §6's file mode: read the script, interpret it,
// and map the failure kind to the exit codes the spec prescribes.
func runFile(stdio mainer.Stdio, path string) int {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "caboose: %s\n", err)
		return ExitUsage
	}

	machine := vm.New(stdio.Stdout, stdio.Stderr)
	err = machine.Interpret(string(src))
	if err == nil {
		return ExitOK
	}

	var compileErrs *vm.CompileErrors
	if errors.As(err, &compileErrs) {
		return ExitCompile
	}
	var runtimeErr *vm.RuntimeError
	if errors.As(err, &runtimeErr) {
		return ExitRuntime
	}
	fmt.Fprintln(stdio.Stderr, err)
	return ExitRuntime
}
