package object

import "github.com/CabooseLang/Caboose/lang/chunk"

// Chunk is a linear bytecode buffer: a byte stream, a parallel per-byte line
// table (spec.md §3's "every byte offset emitted into code has a parallel
// entry in lines" invariant) and a constant pool. Code and Lines grow
// together via Go's append, which already gives the amortized-doubling
// growth spec.md §4.2 describes hand-rolling in C — reimplementing that
// growth policy here would just be a slower reinvention of what the
// language already guarantees, so this is the one place Chunk deliberately
// leans on the standard library instead of a pack dependency.
type Chunk struct {
	Code      []byte
	Lines     []int32
	Constants []Value
}

// Write appends a single instruction byte (an opcode or an operand byte) at
// the given source line.
func (c *Chunk) Write(b byte, line int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, int32(line))
}

// WriteOp is a typed convenience wrapper over Write for opcodes.
func (c *Chunk) WriteOp(op chunk.OpCode, line int) {
	c.Write(byte(op), line)
}

// AddConstant appends v unconditionally (no deduplication, matching
// spec.md §4.2) and returns its index. Callers must verify the index still
// fits in a single operand byte before emitting an OP_CONSTANT-family
// instruction.
func (c *Chunk) AddConstant(v Value) int {
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}
