package types

// OpCode identifies a bytecode instruction, per the table in spec.md §4.3.
type OpCode uint8

//nolint:revive
const (
	OpPushConst OpCode = iota
	OpPushTrue
	OpPushFalse
	OpPop

	OpDefineGlobal
	OpGetGlobal
	OpSetGlobal
	OpSetGlobalPop

	OpGetLocal
	OpSetLocal
	OpSetLocalPop

	OpGetAttr
	OpSetAttr
	OpSetAttrFast
	OpSetAttrPop

	OpAdd
	OpSub
	OpMul
	OpDiv

	OpEqual
	OpNotEqual
	OpGreater
	OpGreaterEqual
	OpLess
	OpLessEqual

	OpNot
	OpNegate

	OpJump
	OpLoop
	OpJumpIfFalse
	OpJumpIfTrue
	OpJumpIfFalsePop
	OpJumpIfTruePop

	OpCall
	OpCallKw

	OpReturn
	OpReturnNone
	OpYield

	OpBuildList
	OpBuildMap
	OpGetIter
	OpForIter

	OpIndexGet
	OpIndexSet

	OpIncGlobal
	OpAddGlobal

	maxOpCode
)

var opcodeNames = [...]string{
	OpPushConst:      "PUSH_CONST",
	OpPushTrue:       "PUSH_TRUE",
	OpPushFalse:      "PUSH_FALSE",
	OpPop:            "POP",
	OpDefineGlobal:   "DEFINE_GLOBAL",
	OpGetGlobal:      "GET_GLOBAL",
	OpSetGlobal:      "SET_GLOBAL",
	OpSetGlobalPop:   "SET_GLOBAL_POP",
	OpGetLocal:       "GET_LOCAL",
	OpSetLocal:       "SET_LOCAL",
	OpSetLocalPop:    "SET_LOCAL_POP",
	OpGetAttr:        "GET_ATTR",
	OpSetAttr:        "SET_ATTR",
	OpSetAttrFast:    "SET_ATTR_FAST",
	OpSetAttrPop:     "SET_ATTR_POP",
	OpAdd:            "ADD",
	OpSub:            "SUB",
	OpMul:            "MUL",
	OpDiv:            "DIV",
	OpEqual:          "EQUAL",
	OpNotEqual:       "NOT_EQUAL",
	OpGreater:        "GREATER",
	OpGreaterEqual:   "GREATER_EQUAL",
	OpLess:           "LESS",
	OpLessEqual:      "LESS_EQUAL",
	OpNot:            "NOT",
	OpNegate:         "NEGATE",
	OpJump:           "JUMP",
	OpLoop:           "LOOP",
	OpJumpIfFalse:    "JUMP_IF_FALSE",
	OpJumpIfTrue:     "JUMP_IF_TRUE",
	OpJumpIfFalsePop: "JUMP_IF_FALSE_POP",
	OpJumpIfTruePop:  "JUMP_IF_TRUE_POP",
	OpCall:           "CALL",
	OpCallKw:         "CALL_KW",
	OpReturn:         "RETURN",
	OpReturnNone:     "RETURN_NONE",
	OpYield:          "YIELD",
	OpBuildList:      "BUILD_LIST",
	OpBuildMap:       "BUILD_MAP",
	OpGetIter:        "GET_ITER",
	OpForIter:        "FOR_ITER",
	OpIndexGet:       "INDEX_GET",
	OpIndexSet:       "INDEX_SET",
	OpIncGlobal:      "INC_GLOBAL",
	OpAddGlobal:      "ADD_GLOBAL",
}

func (op OpCode) String() string {
	if op < maxOpCode {
		return opcodeNames[op]
	}
	return "ILLEGAL_OP"
}

// IsJump reports whether op's operand is a target offset into the owning
// chunk's code, the set of opcodes the peephole optimizer's jump-target
// retargeting pass (and the cache format's validator) must track.
func (op OpCode) IsJump() bool {
	switch op {
	case OpJump, OpLoop, OpJumpIfFalse, OpJumpIfTrue, OpJumpIfFalsePop, OpJumpIfTruePop, OpForIter:
		return true
	}
	return false
}

// Instruction is one (op, operand) pair of a Chunk's code, plus the
// keyword-argument names CALL_KW needs alongside its argc operand.
type Instruction struct {
	Op      OpCode
	Operand int
	// Names holds CALL_KW's keyword-argument names, in the order their
	// values were pushed; nil for every other opcode.
	Names []string
}
