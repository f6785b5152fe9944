package il

import (
	"fmt"

	"github.com/d5/tengo/v2/parser"
)

// Flow classifies how an opcode transfers control.
type Flow uint8

const (
	FlowNext   Flow = iota // falls through to the next instruction
	FlowBranch             // conditional jump, falls through otherwise
	FlowJump               // unconditional jump
	FlowExit               // leaves the routine
)

// OpcodeInfo describes the stack behaviour of one opcode.
type OpcodeInfo struct {
	Pops   int
	Pushes int
	Flow   Flow
	// Variable computes pops and pushes from the operands when the opcode's
	// stack effect depends on them.
	Variable func(operands []int) (pops, pushes int)
}

var opcodeTable = map[parser.Opcode]OpcodeInfo{
	parser.OpConstant:    {Pushes: 1},
	parser.OpBComplement: {Pops: 1, Pushes: 1},
	parser.OpPop:         {Pops: 1},
	parser.OpTrue:        {Pushes: 1},
	parser.OpFalse:       {Pushes: 1},
	parser.OpEqual:       {Pops: 2, Pushes: 1},
	parser.OpNotEqual:    {Pops: 2, Pushes: 1},
	parser.OpMinus:       {Pops: 1, Pushes: 1},
	parser.OpLNot:        {Pops: 1, Pushes: 1},
	parser.OpJumpFalsy:   {Pops: 1, Flow: FlowBranch},
	// && and || pop their left operand only when falling through.
	parser.OpAndJump: {Pops: 1, Flow: FlowBranch},
	parser.OpOrJump:  {Pops: 1, Flow: FlowBranch},
	parser.OpJump:    {Flow: FlowJump},
	parser.OpNull:    {Pushes: 1},
	parser.OpArray: {Variable: func(ops []int) (int, int) {
		return ops[0], 1
	}},
	parser.OpMap: {Variable: func(ops []int) (int, int) {
		return ops[0], 1
	}},
	parser.OpError:      {Pops: 1, Pushes: 1},
	parser.OpImmutable:  {Pops: 1, Pushes: 1},
	parser.OpIndex:      {Pops: 2, Pushes: 1},
	parser.OpSliceIndex: {Pops: 3, Pushes: 1},
	parser.OpCall: {Variable: func(ops []int) (int, int) {
		return ops[0] + 1, 1
	}},
	parser.OpReturn: {Variable: func(ops []int) (int, int) {
		return ops[0], 0
	}, Flow: FlowExit},
	parser.OpGetGlobal: {Pushes: 1},
	parser.OpSetGlobal: {Pops: 1},
	parser.OpSetSelGlobal: {Variable: func(ops []int) (int, int) {
		return ops[1] + 1, 0
	}},
	parser.OpGetLocal:    {Pushes: 1},
	parser.OpSetLocal:    {Pops: 1},
	parser.OpDefineLocal: {Pops: 1},
	parser.OpSetSelLocal: {Variable: func(ops []int) (int, int) {
		return ops[1] + 1, 0
	}},
	parser.OpGetFreePtr:  {Pushes: 1},
	parser.OpGetFree:     {Pushes: 1},
	parser.OpSetFree:     {Pops: 1},
	parser.OpGetLocalPtr: {Pushes: 1},
	parser.OpSetSelFree: {Variable: func(ops []int) (int, int) {
		return ops[1] + 1, 0
	}},
	parser.OpGetBuiltin: {Pushes: 1},
	parser.OpClosure: {Variable: func(ops []int) (int, int) {
		return ops[1], 1
	}},
	parser.OpIteratorInit:  {Pops: 1, Pushes: 1},
	parser.OpIteratorNext:  {Pops: 1, Pushes: 1},
	parser.OpIteratorKey:   {Pops: 1, Pushes: 1},
	parser.OpIteratorValue: {Pops: 1, Pushes: 1},
	parser.OpBinaryOp:      {Pops: 2, Pushes: 1},
	parser.OpSuspend:       {Flow: FlowExit},
}

// Info returns the stack description of op.
func Info(op parser.Opcode) (OpcodeInfo, bool) {
	info, ok := opcodeTable[op]
	return info, ok
}

// OpName returns the mnemonic tengo uses for op.
func OpName(op parser.Opcode) string {
	if int(op) < len(parser.OpcodeNames) && parser.OpcodeNames[op] != "" {
		return parser.OpcodeNames[op]
	}
	return fmt.Sprintf("UNKNOWN_%02X", op)
}

func isJump(op parser.Opcode) bool {
	switch op {
	case parser.OpJump, parser.OpJumpFalsy, parser.OpAndJump, parser.OpOrJump:
		return true
	}
	return false
}
