package il

import (
	"errors"
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/parser"
)

var (
	ErrMalformed  = errors.New("il: malformed instruction stream")
	ErrDangling   = errors.New("il: jump target outside body")
	ErrOperand    = errors.New("il: operand out of range")
	ErrNoAnalysis = errors.New("il: expression spans control flow")
)

// Pool gives a body access to the constants and globals of the unit the
// routine was compiled in.
type Pool interface {
	Constant(idx int) tengo.Object
	// AddConstant interns obj and returns its index. Adding the same object
	// twice returns the same index.
	AddConstant(obj tengo.Object) int
	GlobalName(idx int) (string, bool)
}

// Body is an editable view of one compiled routine.
type Body struct {
	Name   string
	Instrs []*Instr

	pool Pool
}

// Decode splits fn's instruction stream into instructions and links every
// jump to the instruction it targets.
func Decode(name string, fn *tengo.CompiledFunction, pool Pool) (*Body, error) {
	if fn == nil {
		return nil, fmt.Errorf("il: decode %s: nil function", name)
	}

	b := &Body{Name: name, pool: pool}
	ins := fn.Instructions
	at := make(map[int]*Instr, len(ins)/2)

	for i := 0; i < len(ins); {
		op := ins[i]
		if int(op) >= len(parser.OpcodeOperands) {
			return nil, fmt.Errorf("il: decode %s: opcode %d at %d: %w", name, op, i, ErrMalformed)
		}
		widths := parser.OpcodeOperands[op]
		size := 1
		for _, w := range widths {
			size += w
		}
		if i+size > len(ins) {
			return nil, fmt.Errorf("il: decode %s: truncated %s at %d: %w", name, OpName(op), i, ErrMalformed)
		}
		operands, _ := parser.ReadOperands(widths, ins[i+1:])
		in := &Instr{Op: op, Operands: operands, Pos: fn.SourceMap[i], body: b}
		at[i] = in
		b.Instrs = append(b.Instrs, in)
		i += size
	}

	for _, in := range b.Instrs {
		if !isJump(in.Op) {
			continue
		}
		target, ok := at[in.Operands[0]]
		if !ok {
			return nil, fmt.Errorf("il: decode %s: %s to %d: %w", name, OpName(in.Op), in.Operands[0], ErrDangling)
		}
		in.Target = target
	}
	return b, nil
}

// Encode lays the instructions out again, recomputing jump offsets and the
// source map.
func (b *Body) Encode() ([]byte, map[int]parser.Pos, error) {
	offsets := make(map[*Instr]int, len(b.Instrs))
	size := 0
	for _, in := range b.Instrs {
		offsets[in] = size
		size += in.size()
	}

	out := make([]byte, 0, size)
	sourceMap := make(map[int]parser.Pos)
	for i, in := range b.Instrs {
		operands := in.Operands
		if isJump(in.Op) {
			off, ok := offsets[in.Target]
			if in.Target == nil || !ok {
				return nil, nil, fmt.Errorf("il: encode %s: %s at %d: %w", b.Name, OpName(in.Op), i, ErrDangling)
			}
			operands = []int{off}
		}
		widths := parser.OpcodeOperands[in.Op]
		if len(operands) != len(widths) {
			return nil, nil, fmt.Errorf("il: encode %s: %s at %d wants %d operands, has %d: %w",
				b.Name, OpName(in.Op), i, len(widths), len(operands), ErrOperand)
		}
		for j, w := range widths {
			if operands[j] < 0 || (w < 4 && operands[j] >= 1<<(8*w)) {
				return nil, nil, fmt.Errorf("il: encode %s: %s at %d operand %d=%d: %w",
					b.Name, OpName(in.Op), i, j, operands[j], ErrOperand)
			}
		}
		if in.Pos != parser.NoPos {
			sourceMap[len(out)] = in.Pos
		}
		out = append(out, tengo.MakeInstruction(in.Op, operands...)...)
	}
	return out, sourceMap, nil
}

// Apply encodes the body into fn.
func (b *Body) Apply(fn *tengo.CompiledFunction) error {
	ins, sourceMap, err := b.Encode()
	if err != nil {
		return err
	}
	fn.Instructions = ins
	fn.SourceMap = sourceMap
	return nil
}

// Len returns the number of instructions.
func (b *Body) Len() int { return len(b.Instrs) }

// At returns instruction i, or nil when out of range.
func (b *Body) At(i int) *Instr {
	if i < 0 || i >= len(b.Instrs) {
		return nil
	}
	return b.Instrs[i]
}

// Pool returns the constant pool the body resolves operands against.
func (b *Body) Pool() Pool { return b.pool }

// Constant resolves the constant loaded by an OpConstant instruction.
func (b *Body) Constant(in *Instr) tengo.Object {
	if b.pool == nil || in == nil || in.Op != parser.OpConstant {
		return nil
	}
	return b.pool.Constant(in.Operands[0])
}

// Intern adds obj to the pool and returns an instruction loading it.
func (b *Body) Intern(obj tengo.Object) (*Instr, error) {
	if b.pool == nil {
		return nil, fmt.Errorf("il: %s: no constant pool", b.Name)
	}
	return LoadConst(b.pool.AddConstant(obj)), nil
}

func (b *Body) indexOf(in *Instr) int {
	for i, x := range b.Instrs {
		if x == in {
			return i
		}
	}
	return -1
}

// insert splices ins in before position idx. With takeLabels, jumps that
// targeted the instruction previously at idx land on the first inserted
// instruction instead.
func (b *Body) insert(idx int, takeLabels bool, ins ...*Instr) {
	if len(ins) == 0 {
		return
	}
	if takeLabels && idx < len(b.Instrs) {
		b.retarget(b.Instrs[idx], ins[0])
	}
	for _, in := range ins {
		in.body = b
	}
	b.Instrs = append(b.Instrs[:idx], append(append([]*Instr(nil), ins...), b.Instrs[idx:]...)...)
}

// remove deletes the instruction at idx. Jumps into it move to its
// successor.
func (b *Body) remove(idx int) *Instr {
	removed := b.Instrs[idx]
	var next *Instr
	if idx+1 < len(b.Instrs) {
		next = b.Instrs[idx+1]
	}
	b.retarget(removed, next)
	b.Instrs = append(b.Instrs[:idx], b.Instrs[idx+1:]...)
	removed.body = nil
	return removed
}

func (b *Body) retarget(from, to *Instr) {
	for _, in := range b.Instrs {
		if in.Target == from {
			in.Target = to
		}
	}
}

// retargetWithin moves jumps located in [lo, hi) from one target to
// another. Jumps elsewhere keep their target.
func (b *Body) retargetWithin(lo, hi int, from, to *Instr) {
	for i := lo; i < hi && i < len(b.Instrs); i++ {
		if in := b.Instrs[i]; in.Target == from {
			in.Target = to
		}
	}
}

// targets returns, for every instruction that is a jump target, the jumps
// that land on it.
func (b *Body) targets() map[*Instr][]*Instr {
	out := make(map[*Instr][]*Instr)
	for _, in := range b.Instrs {
		if in.Target != nil {
			out[in.Target] = append(out[in.Target], in)
		}
	}
	return out
}
