package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/wisp/lang/compiler"
	"github.com/mna/wisp/lang/value"
	"github.com/mna/wisp/lang/vm"
)

func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	for _, path := range args {
		if err := c.runFile(stdio, path); err != nil {
			return err
		}
	}
	return nil
}

func (c *Cmd) runFile(stdio mainer.Stdio, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	interner := value.NewInterner()
	fn, err := compiler.Compile(string(src), interner)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	m := vm.New(interner, stdio.Stdout, stdio.Stderr, vm.WithGCThreshold(c.tunables.GCThreshold))
	m.RegisterStdlib()
	if _, err := m.Interpret(fn); err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		fmt.Fprintln(stdio.Stderr, "globals at time of error:")
		m.DumpGlobals(stdio.Stderr)
		return err
	}
	return nil
}
