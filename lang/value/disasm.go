package value

import (
	"fmt"
	"io"

	"github.com/mna/wisp/lang/opcode"
)

// Disassemble writes a human-readable listing of every instruction in c to
// w, labelled with name. It is used by tests and by the "compile" CLI
// subcommand, never by the VM itself.
func Disassemble(w io.Writer, c *Chunk, name string) {
	fmt.Fprintf(w, "== %s ==\n", name)
	for offset := 0; offset < c.Len(); {
		offset = DisassembleInstruction(w, c, offset)
	}
}

// DisassembleInstruction writes one instruction starting at offset and
// returns the offset of the next instruction.
func DisassembleInstruction(w io.Writer, c *Chunk, offset int) int {
	fmt.Fprintf(w, "%04d ", offset)
	if offset > 0 && c.Lines[offset] == c.Lines[offset-1] {
		fmt.Fprint(w, "   | ")
	} else {
		fmt.Fprintf(w, "%4d ", c.Lines[offset])
	}

	op := opcode.Op(c.Code[offset])
	switch op {
	case opcode.CONSTANT, opcode.GET_GLOBAL, opcode.DEFINE_GLOBAL, opcode.SET_GLOBAL,
		opcode.GET_PROPERTY, opcode.SET_PROPERTY, opcode.GET_SUPER,
		opcode.CLASS, opcode.METHOD:
		return constantInstruction(w, op, c, offset)
	case opcode.GET_LOCAL, opcode.SET_LOCAL, opcode.GET_UPVALUE, opcode.SET_UPVALUE,
		opcode.CALL, opcode.ARRAY:
		return byteInstruction(w, op, c, offset)
	case opcode.INVOKE, opcode.SUPER_INVOKE:
		return invokeInstruction(w, op, c, offset)
	case opcode.JUMP, opcode.JUMP_IF_FALSE:
		return jumpInstruction(w, op, 1, c, offset)
	case opcode.LOOP:
		return jumpInstruction(w, op, -1, c, offset)
	case opcode.CLOSURE:
		return closureInstruction(w, c, offset)
	default:
		return simpleInstruction(w, op, offset)
	}
}

func simpleInstruction(w io.Writer, op opcode.Op, offset int) int {
	fmt.Fprintf(w, "%s\n", op)
	return offset + 1
}

func byteInstruction(w io.Writer, op opcode.Op, c *Chunk, offset int) int {
	slot := c.Code[offset+1]
	fmt.Fprintf(w, "%-16s %4d\n", op, slot)
	return offset + 2
}

func constantInstruction(w io.Writer, op opcode.Op, c *Chunk, offset int) int {
	idx := c.Code[offset+1]
	fmt.Fprintf(w, "%-16s %4d '%s'\n", op, idx, c.Constants[idx].String())
	return offset + 2
}

func invokeInstruction(w io.Writer, op opcode.Op, c *Chunk, offset int) int {
	idx := c.Code[offset+1]
	argc := c.Code[offset+2]
	fmt.Fprintf(w, "%-16s (%d args) %4d '%s'\n", op, argc, idx, c.Constants[idx].String())
	return offset + 3
}

func jumpInstruction(w io.Writer, op opcode.Op, sign int, c *Chunk, offset int) int {
	jump := int(c.Code[offset+1])<<8 | int(c.Code[offset+2])
	fmt.Fprintf(w, "%-16s %4d -> %d\n", op, offset, offset+3+sign*jump)
	return offset + 3
}

func closureInstruction(w io.Writer, c *Chunk, offset int) int {
	offset++
	constant := c.Code[offset]
	offset++
	fmt.Fprintf(w, "%-16s %4d '%s'\n", opcode.CLOSURE, constant, c.Constants[constant].String())

	fn, ok := c.Constants[constant].AsObject().(*Function)
	if ok {
		for j := 0; j < fn.UpvalueCount; j++ {
			isLocal := c.Code[offset]
			idx := c.Code[offset+1]
			offset += 2
			kind := "upvalue"
			if isLocal != 0 {
				kind = "local"
			}
			fmt.Fprintf(w, "%04d      |                     %s %d\n", offset-2, kind, idx)
		}
	}
	return offset
}
