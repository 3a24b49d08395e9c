package value

import "github.com/mna/wisp/lang/opcode"

// Chunk is a function's compiled body: a bytecode stream, a parallel
// line-number table of equal length used for runtime error reporting, and a
// constant pool. Constant-pool indices fit in one byte, so a single Chunk may
// hold at most 256 distinct constants (spec.md §3, §4.1.3).
type Chunk struct {
	Code      []byte
	Lines     []int
	Constants []Value
}

// MaxConstants is the number of distinct constants a single Chunk may hold.
const MaxConstants = 256

// Write appends a raw byte to the chunk's code stream, recording line as the
// source line that produced it.
func (c *Chunk) Write(b byte, line int) int {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
	return len(c.Code) - 1
}

// WriteOp appends an opcode byte.
func (c *Chunk) WriteOp(op opcode.Op, line int) int {
	return c.Write(byte(op), line)
}

// AddConstant appends v to the constant pool and returns its index. The
// caller is responsible for checking MaxConstants before emitting a CONSTANT
// instruction that references it; AddConstant itself never fails; duplicate
// elision is not performed (spec.md §4.1.3).
func (c *Chunk) AddConstant(v Value) int {
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}

// Len returns the number of bytes in the code stream.
func (c *Chunk) Len() int { return len(c.Code) }

// LineAt returns the source line recorded for the instruction starting at
// offset pc.
func (c *Chunk) LineAt(pc int) int {
	if pc < 0 || pc >= len(c.Lines) {
		if len(c.Lines) == 0 {
			return 0
		}
		return c.Lines[len(c.Lines)-1]
	}
	return c.Lines[pc]
}
