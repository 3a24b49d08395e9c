package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/wisp/lang/compiler"
	"github.com/mna/wisp/lang/value"
)

func (c *Cmd) Compile(ctx context.Context, stdio mainer.Stdio, args []string) error {
	for _, path := range args {
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			return err
		}
		fn, err := compiler.Compile(string(src), value.NewInterner())
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			return err
		}
		value.Disassemble(stdio.Stdout, &fn.Chunk, path)
	}
	return nil
}
