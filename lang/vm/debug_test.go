package vm_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mna/wisp/lang/compiler"
	"github.com/mna/wisp/lang/value"
	"github.com/mna/wisp/lang/vm"
)

func TestGlobalNamesSortedAfterDefinitions(t *testing.T) {
	interner := value.NewInterner()
	fn, err := compiler.Compile(`var zebra = 1; var apple = 2;`, interner)
	assert.NoError(t, err)

	var out bytes.Buffer
	m := vm.New(interner, &out, &out)
	_, err = m.Interpret(fn)
	assert.NoError(t, err)

	assert.Equal(t, []string{"apple", "zebra"}, m.GlobalNames())

	var dump bytes.Buffer
	m.DumpGlobals(&dump)
	assert.Equal(t, "apple\nzebra\n", dump.String())
}
