// Package maincmd wires Caboose's command-line surface: zero or one
// positional script argument, dispatching to the REPL or to a file run.
package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"
)

const binName = "caboose"

var shortUsage = fmt.Sprintf(`usage: %s [script]
       %[1]s -h|--help
       %[1]s -v|--version

With no script argument, starts an interactive REPL. With one, reads the
file as source and runs it, exiting 65 on a compile error, 70 on a runtime
error, 0 on success.
`, binName)

// Cmd is the mainer.Parser target: one positional script path, plus the
// usual --help/--version flags every teacher CLI in this family exposes.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	args []string
}

func (c *Cmd) SetArgs(args []string)          { c.args = args }
func (c *Cmd) SetFlags(flags map[string]bool) {}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) > 1 {
		return fmt.Errorf("too many arguments")
	}
	return nil
}

// Exit codes follow spec.md §6: 64 for a usage error, 65 for a compile
// error, 70 for a runtime error, 0 for success.
const (
	ExitUsage   = 64
	ExitCompile = 65
	ExitRuntime = 70
	ExitOK      = 0
)

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{EnvVars: false}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.ExitCode(ExitUsage)
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, shortUsage)
		return mainer.ExitCode(ExitOK)
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.ExitCode(ExitOK)
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)

	if len(c.args) == 0 {
		return mainer.ExitCode(runREPL(ctx, stdio))
	}
	return mainer.ExitCode(runFile(stdio, c.args[0]))
}
