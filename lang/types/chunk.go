package types

// Chunk is the compiled unit described in spec.md §3: an ordered
// instruction sequence, a de-duplicated constant pool, a parallel line
// table, and a metadata map parsed from any file-scope `@meta` blocks.
type Chunk struct {
	Code      []Instruction
	Constants []Value
	Lines     []int // same length as Code
	Metadata  map[string]Value
}

// AddConstant interns v into the constant pool, returning the index of an
// existing equal entry if one is present (spec.md §3's constant-pool
// invariant) or appending a new one.
func (c *Chunk) AddConstant(v Value) int {
	for i, existing := range c.Constants {
		if Equal(existing, v) {
			return i
		}
	}
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}

// Emit appends an instruction at the given source line and returns its
// index in Code.
func (c *Chunk) Emit(op OpCode, operand int, line int) int {
	c.Code = append(c.Code, Instruction{Op: op, Operand: operand})
	c.Lines = append(c.Lines, line)
	return len(c.Code) - 1
}

// EmitNames is like Emit but also records CALL_KW's keyword-argument
// names.
func (c *Chunk) EmitNames(op OpCode, operand int, names []string, line int) int {
	c.Code = append(c.Code, Instruction{Op: op, Operand: operand, Names: names})
	c.Lines = append(c.Lines, line)
	return len(c.Code) - 1
}

// PatchJump sets the operand of the jump instruction at idx to target,
// called once the target offset is known (spec.md §4.3: "all jump operands
// are absolute offsets into the current chunk's code, patched
// post-emission").
func (c *Chunk) PatchJump(idx, target int) {
	c.Code[idx].Operand = target
}
