package vm_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mna/wisp/lang/value"
	"github.com/mna/wisp/lang/vm"
)

func TestRegisterStdlibExposesClock(t *testing.T) {
	var out bytes.Buffer
	m := vm.New(value.NewInterner(), &out, &out)
	m.RegisterStdlib()
	assert.Contains(t, m.NativeNames(), "clock")
}

func TestNativeClockIsCallableAndReturnsNumber(t *testing.T) {
	out, err := run(t, `print clock() > 0;`)
	assert.NoError(t, err)
	assert.Equal(t, "true\n", out)
}
