package il

import (
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/parser"
)

// All replaces every remaining occurrence.
const All = -1

// ReplaceCall rewrites calls matched by pred, starting at the cursor, into
// calls of repl. A plain call f(a) becomes repl(a, ctx...), and so does a
// call on a global such as the module call geom.min(a). A call on any other receiver
// keeps it: r.m(a) becomes repl(r, a, ctx...). The context instructions are
// copied in front of each rewritten call and must each push one value.
//
// With count >= 0 exactly count calls must be found; a shortfall is a
// *PatternError. With All every match is replaced and none is an error.
// The cursor ends behind the last rewritten call.
func ReplaceCall(c *Cursor, pred Predicate, repl tengo.Object, count int, context ...*Instr) (int, error) {
	b := c.Body()
	replaced := 0
	for count < 0 || replaced < count {
		idx, ok := c.FindNext(pred)
		if !ok {
			if count < 0 {
				break
			}
			return replaced, &PatternError{Body: b.Name, Pattern: pred.Name, From: c.Index()}
		}
		call := b.Instrs[idx]
		if call.Op != parser.OpCall {
			return replaced, fmt.Errorf("il: %s: %s matched %s, not a call", b.Name, pred.Name, OpName(call.Op))
		}
		site, err := b.CallSite(call)
		if err != nil {
			return replaced, err
		}
		if site.Spread && len(context) > 0 {
			return replaced, fmt.Errorf("il: %s: %s: context after a spread argument", b.Name, pred.Name)
		}
		load, err := b.Intern(repl)
		if err != nil {
			return replaced, err
		}

		numArgs := site.NumArgs + len(context)
		if site.Member && site.Receiver == "" {
			// drop `.name`, the receiver becomes the first argument
			load.Pos = b.Instrs[site.selector+1].Pos
			b.remove(site.selector + 1)
			b.remove(site.selector)
			b.insert(site.receiverStart, true, load)
			numArgs++
		} else {
			load.Pos = b.Instrs[site.argsStart-1].Pos
			for i := site.argsStart - 1; i >= site.calleeStart; i-- {
				b.remove(i)
			}
			b.insert(site.calleeStart, true, load)
		}
		if numArgs > 255 {
			return replaced, fmt.Errorf("il: %s: %s: too many arguments: %w", b.Name, pred.Name, ErrOperand)
		}

		at := b.indexOf(call)
		if len(context) > 0 {
			ctx := cloneAll(context)
			b.insert(at, false, ctx...)
			// an && or || in the last argument lands on the call
			b.retargetWithin(b.indexOf(load), at, call, ctx[0])
		}
		call.Operands[0] = numArgs
		c.SetIndex(b.indexOf(call) + 1)
		replaced++
	}
	return replaced, nil
}

// WrapValue passes the value produced just before the cursor through repl:
// `v` becomes repl(v, ctx...). The cursor ends behind the new call.
func WrapValue(c *Cursor, repl tengo.Object, context ...*Instr) error {
	b := c.Body()
	end := c.Index()
	start, err := b.exprStart(end, 1, b.targets())
	if err != nil {
		return err
	}
	load, err := b.Intern(repl)
	if err != nil {
		return err
	}
	tail := append(cloneAll(context), NewInstr(parser.OpCall, 1+len(context), 0))
	if p := b.Instrs[end-1].Pos; p != parser.NoPos {
		tail[len(tail)-1].Pos = p
	}
	next := b.At(end)
	b.insert(end, false, tail...)
	if next != nil {
		b.retargetWithin(start, end, next, tail[0])
	}
	b.insert(start, true, load)
	c.SetIndex(end + 1 + len(tail))
	return nil
}

// ReplaceStrings swaps string constants loaded by the body. It returns the
// number of loads rewritten.
func ReplaceStrings(b *Body, replacements map[string]string) int {
	n := 0
	for _, in := range b.Instrs {
		s, ok := b.constString(in)
		if !ok {
			continue
		}
		to, ok := replacements[s]
		if !ok || to == s {
			continue
		}
		in.Operands[0] = b.pool.AddConstant(&tengo.String{Value: to})
		n++
	}
	return n
}

// Patch is a declarative call replacement: every call matched by Predicate
// (or Count of them) is routed through Replacement.
type Patch struct {
	Predicate   Predicate
	Replacement tengo.Object
	Count       int
	Context     []*Instr
}

// Apply runs the patch over the whole body.
func (p Patch) Apply(b *Body) error {
	_, err := ReplaceCall(NewCursor(b), p.Predicate, p.Replacement, p.Count, p.Context...)
	return err
}

func cloneAll(ins []*Instr) []*Instr {
	out := make([]*Instr, 0, len(ins))
	for _, in := range ins {
		out = append(out, &Instr{Op: in.Op, Operands: append([]int(nil), in.Operands...), Target: in.Target, Pos: in.Pos})
	}
	return out
}
