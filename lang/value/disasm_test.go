package value_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kylelemons/godebug/diff"
	"github.com/stretchr/testify/assert"

	"github.com/mna/wisp/lang/opcode"
	"github.com/mna/wisp/lang/value"
)

func buildSampleChunk() *value.Chunk {
	var c value.Chunk
	idx := c.AddConstant(value.Number(1))
	c.WriteOp(opcode.CONSTANT, 1)
	c.Write(byte(idx), 1)
	c.WriteOp(opcode.PRINT, 1)
	c.WriteOp(opcode.NULL, 2)
	c.WriteOp(opcode.RETURN, 2)
	return &c
}

// TestDisassembleIsDeterministic guards the property the "compile" CLI
// subcommand depends on: disassembling the same chunk twice must produce
// byte-identical listings. The line-by-line diff (rather than a single
// equality assertion) is what actually surfaces a regression's location when
// this fails on a larger chunk.
func TestDisassembleIsDeterministic(t *testing.T) {
	c := buildSampleChunk()

	var first, second bytes.Buffer
	value.Disassemble(&first, c, "sample")
	value.Disassemble(&second, c, "sample")

	if patch := diff.Diff(first.String(), second.String()); patch != "" {
		t.Errorf("disassembly is not deterministic:\n%s", patch)
	}
}

func TestDisassembleListsEveryInstruction(t *testing.T) {
	c := buildSampleChunk()

	var buf bytes.Buffer
	value.Disassemble(&buf, c, "sample")
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "== sample ==\n"))
	for _, want := range []string{"CONSTANT", "PRINT", "NULL", "RETURN", "'1'"} {
		assert.Contains(t, out, want)
	}
	assert.Equal(t, 5, strings.Count(out, "\n")) // header + 4 instructions
}
