// Package disasm implements a human-readable textual dump of a compiled
// program, ported from original_source/disassembler.py's Disassembler
// class. It is write-only: unlike nenuphar's lang/compiler/asm.go (which
// round-trips an assembly-format program back into a *Program for tests),
// this package only ever writes, since nothing in this tree needs to
// parse disassembly back into a Chunk.
package disasm

import (
	"fmt"
	"io"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/mna/tickscript/lang/types"
)

// Disassemble writes a disassembly of top (named "Main") to w, followed by
// one recursive "Function NAME" section per entry of functions, mirroring
// disassembler.py's disassemble(chunk, functions, name="Main"). Functions
// are visited in sorted name order so the listing is reproducible across
// runs, since Go's map iteration order is not.
func Disassemble(w io.Writer, top *types.Chunk, functions map[string]*types.FunctionObject) error {
	d := &dis{w: w}
	d.section(top, "Main")

	names := maps.Keys(functions)
	slices.Sort(names)
	for _, name := range names {
		if d.err != nil {
			break
		}
		d.writef("\n")
		d.section(functions[name].Chunk, "Function "+name)
	}
	return d.err
}

type dis struct {
	w   io.Writer
	err error
}

func (d *dis) writef(format string, args ...any) {
	if d.err != nil {
		return
	}
	_, err := fmt.Fprintf(d.w, format, args...)
	if err != nil {
		d.err = err
	}
}

func (d *dis) section(c *types.Chunk, name string) {
	d.writef("=== Disassembly: %s ===\n", name)
	if c == nil || len(c.Code) == 0 {
		d.writef("Empty chunk.\n")
		return
	}
	for ip := range c.Code {
		d.instruction(c, ip)
	}
}

// instruction writes the ip-th instruction of c, annotating its operand
// the way disassembler.py's disassemble_instruction special-cases each
// opcode group: a resolved constant-pool value for PUSH_CONST/
// DEFINE_GLOBAL/GET_GLOBAL/SET_GLOBAL and for the attribute name of
// GET_ATTR/SET_ATTR, a jump target for JUMP/LOOP/JUMP_IF_FALSE/etc, a bare
// index for GET_LOCAL/SET_LOCAL, an arg count for CALL, and a generic
// fallback (raw operand or nothing) for everything else.
func (d *dis) instruction(c *types.Chunk, ip int) {
	in := c.Code[ip]
	prefix := fmt.Sprintf("%04d  %-15s", ip, in.Op.String())

	switch in.Op {
	case types.OpPushConst, types.OpDefineGlobal, types.OpGetGlobal, types.OpSetGlobal, types.OpSetGlobalPop:
		d.writef("%s %04d (%s)\n", prefix, in.Operand, constString(c, in.Operand))

	case types.OpJump, types.OpLoop, types.OpJumpIfFalse, types.OpJumpIfTrue, types.OpJumpIfFalsePop, types.OpJumpIfTruePop, types.OpForIter:
		d.writef("%s %04d (target: %04d)\n", prefix, in.Operand, in.Operand)

	case types.OpGetLocal, types.OpSetLocal, types.OpSetLocalPop:
		d.writef("%s %04d\n", prefix, in.Operand)

	case types.OpCall:
		d.writef("%s %04d (args)\n", prefix, in.Operand)

	case types.OpCallKw:
		d.writef("%s %04d (args, kw: %v)\n", prefix, in.Operand, in.Names)

	case types.OpGetAttr, types.OpSetAttr, types.OpSetAttrFast, types.OpSetAttrPop, types.OpIncGlobal, types.OpAddGlobal:
		d.writef("%s %04d (attr: %s)\n", prefix, in.Operand, constString(c, in.Operand))

	case types.OpBuildList, types.OpBuildMap:
		d.writef("%s %04d (count)\n", prefix, in.Operand)

	default:
		if in.Operand != 0 || opHasZeroOperand(in.Op) {
			d.writef("%s\n", prefix)
		} else {
			d.writef("%s %04d\n", prefix, in.Operand)
		}
	}
}

// opHasZeroOperand reports whether op never carries a meaningful operand,
// so the generic fallback omits it even when Operand happens to be 0 (the
// Go encoding always stores an int, unlike the Python original's `None`).
func opHasZeroOperand(op types.OpCode) bool {
	switch op {
	case types.OpPushTrue, types.OpPushFalse, types.OpPop,
		types.OpAdd, types.OpSub, types.OpMul, types.OpDiv,
		types.OpEqual, types.OpNotEqual, types.OpGreater, types.OpGreaterEqual, types.OpLess, types.OpLessEqual,
		types.OpNot, types.OpNegate,
		types.OpReturn, types.OpReturnNone, types.OpYield,
		types.OpGetIter, types.OpIndexGet, types.OpIndexSet:
		return true
	}
	return false
}

func constString(c *types.Chunk, idx int) string {
	if idx < 0 || idx >= len(c.Constants) {
		return "?"
	}
	return c.Constants[idx].String()
}
