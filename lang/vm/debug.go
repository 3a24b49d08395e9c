package vm

import (
	"fmt"
	"io"

	"golang.org/x/exp/slices"

	"github.com/mna/wisp/lang/value"
)

// GlobalNames reports every currently defined global, sorted, for diagnostics.
func (m *Machine) GlobalNames() []string {
	names := make([]string, 0, 16)
	m.globals.Each(func(k *value.String, _ value.Value) {
		names = append(names, k.Go())
	})
	slices.Sort(names)
	return names
}

// DumpGlobals writes the sorted global name list to w, one per line — the
// backing implementation of the "run" command's post-mortem globals dump on
// an unhandled runtime error.
func (m *Machine) DumpGlobals(w io.Writer) {
	for _, n := range m.GlobalNames() {
		fmt.Fprintln(w, n)
	}
}
