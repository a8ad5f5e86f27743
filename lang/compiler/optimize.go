package compiler

import "github.com/mna/tickscript/lang/types"

// optimize runs the peephole pass over chunk in place, grounded on
// original_source/compiler/compiler.py's `_optimize_chunk`: it fuses the
// naive two-instruction sequences the emitter above produces into their
// single-opcode forms, then retargets every jump operand through the
// resulting compaction map, chains jump-to-jump sequences, and advances a
// fused conditional-pop jump's target past a now-redundant landing POP.
func optimize(chunk *types.Chunk) {
	oldToNew := make([]int, len(chunk.Code)+1)
	var newCode []types.Instruction
	var newLines []int

	i := 0
	for i < len(chunk.Code) {
		oldToNew[i] = len(newCode)
		cur := chunk.Code[i]

		if i+1 < len(chunk.Code) {
			next := chunk.Code[i+1]
			if fused, ok := fusePair(chunk, cur, next); ok {
				newCode = append(newCode, fused)
				newLines = append(newLines, chunk.Lines[i])
				oldToNew[i+1] = len(newCode) - 1
				i += 2
				continue
			}
		}

		newCode = append(newCode, cur)
		newLines = append(newLines, chunk.Lines[i])
		i++
	}
	oldToNew[len(chunk.Code)] = len(newCode)

	for idx := range newCode {
		if newCode[idx].Op.IsJump() {
			newCode[idx].Operand = oldToNew[newCode[idx].Operand]
		}
	}

	chainJumps(newCode)
	advancePastLandingPop(newCode)

	chunk.Code = newCode
	chunk.Lines = newLines
}

// fusePair recognizes the handful of two-instruction shapes the naive
// emitter produces and returns their single-opcode replacement.
func fusePair(chunk *types.Chunk, cur, next types.Instruction) (types.Instruction, bool) {
	switch {
	case cur.Op == types.OpSetLocal && next.Op == types.OpPop:
		return types.Instruction{Op: types.OpSetLocalPop, Operand: cur.Operand}, true
	case cur.Op == types.OpSetGlobal && next.Op == types.OpPop:
		return types.Instruction{Op: types.OpSetGlobalPop, Operand: cur.Operand}, true
	case cur.Op == types.OpJumpIfFalse && next.Op == types.OpPop:
		return types.Instruction{Op: types.OpJumpIfFalsePop, Operand: cur.Operand}, true
	case cur.Op == types.OpJumpIfTrue && next.Op == types.OpPop:
		return types.Instruction{Op: types.OpJumpIfTruePop, Operand: cur.Operand}, true
	case cur.Op == types.OpPushConst && next.Op == types.OpReturn:
		if isNullConstant(chunk, cur.Operand) {
			return types.Instruction{Op: types.OpReturnNone}, true
		}
	}
	return types.Instruction{}, false
}

func isNullConstant(chunk *types.Chunk, idx int) bool {
	if idx < 0 || idx >= len(chunk.Constants) {
		return false
	}
	_, ok := chunk.Constants[idx].(types.Null)
	return ok
}

// chainJumps collapses a jump whose target is itself an unconditional JUMP
// into a direct jump to that JUMP's own target, following the chain to its
// end (bounded to avoid looping on a cycle, which a well-formed program
// never produces).
func chainJumps(code []types.Instruction) {
	for idx := range code {
		if !code[idx].Op.IsJump() {
			continue
		}
		target := code[idx].Operand
		for steps := 0; steps < len(code); steps++ {
			if target < 0 || target >= len(code) || code[target].Op != types.OpJump {
				break
			}
			next := code[target].Operand
			if next == target {
				break
			}
			target = next
		}
		code[idx].Operand = target
	}
}

// advancePastLandingPop skips a JUMP_IF_FALSE_POP/JUMP_IF_TRUE_POP target
// past a POP it lands on: that POP existed to discard the condition value
// on the path these fused opcodes no longer leave it for.
func advancePastLandingPop(code []types.Instruction) {
	for idx := range code {
		op := code[idx].Op
		if op != types.OpJumpIfFalsePop && op != types.OpJumpIfTruePop {
			continue
		}
		t := code[idx].Operand
		if t >= 0 && t < len(code) && code[t].Op == types.OpPop {
			code[idx].Operand = t + 1
		}
	}
}
