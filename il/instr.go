package il

import (
	"github.com/d5/tengo/v2/parser"
)

// Instr is one decoded instruction. Jump operands are held as a pointer to
// the target instruction so the body can be edited freely and re-encoded.
type Instr struct {
	Op       parser.Opcode
	Operands []int
	Target   *Instr
	Pos      parser.Pos

	body *Body
}

// NewInstr builds a detached instruction. Jumps must set Target before the
// instruction is inserted.
func NewInstr(op parser.Opcode, operands ...int) *Instr {
	return &Instr{Op: op, Operands: append([]int(nil), operands...)}
}

// LoadLocal loads local slot i. Inside a routine slot 0 is the first
// parameter.
func LoadLocal(i int) *Instr { return NewInstr(parser.OpGetLocal, i) }

// LoadFree loads captured variable i of a closure.
func LoadFree(i int) *Instr { return NewInstr(parser.OpGetFree, i) }

// LoadGlobal loads global slot i.
func LoadGlobal(i int) *Instr { return NewInstr(parser.OpGetGlobal, i) }

// LoadConst loads constant i.
func LoadConst(i int) *Instr { return NewInstr(parser.OpConstant, i) }

// Operand returns operand i, or -1 when the instruction has fewer operands.
func (in *Instr) Operand(i int) int {
	if in == nil || i < 0 || i >= len(in.Operands) {
		return -1
	}
	return in.Operands[i]
}

// StackEffect reports how many values the instruction pops and pushes when
// it falls through.
func (in *Instr) StackEffect() (pops, pushes int) {
	info, ok := Info(in.Op)
	if !ok {
		return 0, 0
	}
	if info.Variable != nil {
		return info.Variable(in.Operands)
	}
	return info.Pops, info.Pushes
}

// Flow reports the control-flow class of the instruction.
func (in *Instr) Flow() Flow {
	info, _ := Info(in.Op)
	return info.Flow
}

// Index returns the position of the instruction in its body, or -1.
func (in *Instr) Index() int {
	if in == nil || in.body == nil {
		return -1
	}
	return in.body.indexOf(in)
}

// Prev returns the instruction before this one.
func (in *Instr) Prev() *Instr {
	idx := in.Index()
	if idx <= 0 {
		return nil
	}
	return in.body.Instrs[idx-1]
}

// Next returns the instruction after this one.
func (in *Instr) Next() *Instr {
	idx := in.Index()
	if idx < 0 || idx+1 >= len(in.body.Instrs) {
		return nil
	}
	return in.body.Instrs[idx+1]
}

// Body returns the body the instruction belongs to.
func (in *Instr) Body() *Body {
	return in.body
}

func (in *Instr) size() int {
	n := 1
	for _, w := range parser.OpcodeOperands[in.Op] {
		n += w
	}
	return n
}
