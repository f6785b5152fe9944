package il

import (
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/parser"
)

// CallSite is the shape of one OpCall: the expression producing the callee
// followed by the argument expressions.
type CallSite struct {
	Call *Instr
	// Name is the global, builtin or member the callee is read from. It is
	// empty when the callee is computed.
	Name string
	// Receiver names the global a member is selected from. It is empty for
	// plain calls and for members of locals or computed values.
	Receiver string
	Member   bool
	NumArgs  int
	Spread   bool

	calleeStart   int // first instruction of the callee expression
	selector      int // selector constant, member calls only
	receiverStart int // first instruction of the receiver, member calls only
	argsStart     int
}

// CalleeStart returns the index of the first instruction of the callee.
func (s *CallSite) CalleeStart() int { return s.calleeStart }

// ArgsStart returns the index of the first instruction of the arguments.
func (s *CallSite) ArgsStart() int { return s.argsStart }

// CallSite analyses the OpCall in. It fails when the instruction is not a call
// or when its operands cannot be delimited without crossing control flow.
func (b *Body) CallSite(in *Instr) (*CallSite, error) {
	idx := b.indexOf(in)
	if idx < 0 || in.Op != parser.OpCall {
		return nil, fmt.Errorf("il: %s: not a call instruction", b.Name)
	}

	site := &CallSite{
		Call:     in,
		NumArgs:  in.Operands[0],
		Spread:   in.Operands[1] != 0,
		selector: -1,
	}

	targets := b.targets()
	argsStart := idx
	if site.NumArgs > 0 {
		start, err := b.exprStart(idx, site.NumArgs, targets)
		if err != nil {
			return nil, err
		}
		argsStart = start
	}
	calleeStart, err := b.exprStart(argsStart, 1, targets)
	if err != nil {
		return nil, err
	}
	site.argsStart = argsStart
	site.calleeStart = calleeStart

	last := b.Instrs[argsStart-1]
	switch last.Op {
	case parser.OpGetGlobal:
		if b.pool != nil {
			site.Name, _ = b.pool.GlobalName(last.Operands[0])
		}
	case parser.OpGetBuiltin:
		site.Name = builtinName(last.Operands[0])
	case parser.OpIndex:
		sel := b.Instrs[argsStart-2]
		name, ok := b.constString(sel)
		if !ok {
			break
		}
		site.Member = true
		site.Name = name
		site.selector = argsStart - 2
		recvStart, err := b.exprStart(site.selector, 1, targets)
		if err != nil {
			return nil, err
		}
		site.receiverStart = recvStart
		if recvStart == site.selector-1 {
			if recv := b.Instrs[recvStart]; recv.Op == parser.OpGetGlobal && b.pool != nil {
				site.Receiver, _ = b.pool.GlobalName(recv.Operands[0])
			}
		}
	}
	return site, nil
}

// exprStart walks back from end to the first instruction of the values
// expressions that leave values on the stack just before end.
func (b *Body) exprStart(end, values int, targets map[*Instr][]*Instr) (int, error) {
	need := values
	var entered []*Instr
	for i := end - 1; i >= 0; i-- {
		in := b.Instrs[i]
		switch in.Flow() {
		case FlowJump, FlowExit:
			return -1, fmt.Errorf("il: %s: %s at %d: %w", b.Name, OpName(in.Op), i, ErrNoAnalysis)
		case FlowBranch:
			// && and || leave one value when they land inside the span.
			t := b.indexOf(in.Target)
			if in.Op == parser.OpJumpFalsy || t <= i || t > end {
				return -1, fmt.Errorf("il: %s: %s at %d: %w", b.Name, OpName(in.Op), i, ErrNoAnalysis)
			}
		}

		pops, pushes := in.StackEffect()
		need -= pushes
		if need < 0 {
			return -1, fmt.Errorf("il: %s: %s at %d: %w", b.Name, OpName(in.Op), i, ErrNoAnalysis)
		}
		need += pops
		if need == 0 && !b.shortCircuitInto(i, end) {
			// Only the first instruction may be entered from outside.
			for _, target := range entered {
				for _, from := range targets[target] {
					if j := b.indexOf(from); j < i || j >= end {
						return -1, fmt.Errorf("il: %s: jump from %d into expression: %w", b.Name, j, ErrNoAnalysis)
					}
				}
			}
			return i, nil
		}
		if len(targets[in]) > 0 {
			entered = append(entered, in)
		}
	}
	return -1, fmt.Errorf("il: %s: stack underflow before %d: %w", b.Name, end, ErrNoAnalysis)
}

// shortCircuitInto reports whether an && or || before i lands inside
// (i, end], which makes the instructions from i on its right-hand side.
func (b *Body) shortCircuitInto(i, end int) bool {
	for j := 0; j < i; j++ {
		in := b.Instrs[j]
		if in.Op != parser.OpAndJump && in.Op != parser.OpOrJump {
			continue
		}
		if t := b.indexOf(in.Target); t > i && t <= end {
			return true
		}
	}
	return false
}

func (b *Body) constString(in *Instr) (string, bool) {
	s, ok := b.Constant(in).(*tengo.String)
	if !ok {
		return "", false
	}
	return s.Value, true
}

func builtinName(idx int) string {
	fns := tengo.GetAllBuiltinFunctions()
	if idx < 0 || idx >= len(fns) {
		return ""
	}
	return fns[idx].Name
}
