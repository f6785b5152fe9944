package il

import (
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/parser"
	"github.com/d5/tengo/v2/token"
)

// Dump disassembles the body, one line per instruction, resolving jump
// targets, constants, globals and builtins.
func Dump(b *Body) []string {
	index := make(map[*Instr]int, len(b.Instrs))
	for i, in := range b.Instrs {
		index[in] = i
	}
	lines := make([]string, 0, len(b.Instrs))
	for i, in := range b.Instrs {
		lines = append(lines, fmt.Sprintf("%04d %-9s %s", i, OpName(in.Op), b.operandText(in, index)))
	}
	return lines
}

// DumpString is Dump joined with newlines, prefixed by the body name.
func DumpString(b *Body) string {
	var sb strings.Builder
	sb.WriteString(b.Name)
	sb.WriteString(":\n")
	for _, line := range Dump(b) {
		sb.WriteString("  ")
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (b *Body) operandText(in *Instr, index map[*Instr]int) string {
	switch {
	case isJump(in.Op):
		if t, ok := index[in.Target]; ok {
			return fmt.Sprintf("-> %04d", t)
		}
		return "-> ?"
	case in.Op == parser.OpConstant:
		return fmt.Sprintf("%d (%s)", in.Operands[0], constText(b.Constant(in)))
	case in.Op == parser.OpGetGlobal || in.Op == parser.OpSetGlobal:
		if b.pool != nil {
			if name, ok := b.pool.GlobalName(in.Operands[0]); ok {
				return fmt.Sprintf("%d (%s)", in.Operands[0], name)
			}
		}
	case in.Op == parser.OpGetBuiltin:
		return fmt.Sprintf("%d (%s)", in.Operands[0], builtinName(in.Operands[0]))
	case in.Op == parser.OpBinaryOp:
		return token.Token(in.Operands[0]).String()
	}
	parts := make([]string, 0, len(in.Operands))
	for _, o := range in.Operands {
		parts = append(parts, fmt.Sprint(o))
	}
	return strings.Join(parts, " ")
}

func constText(obj tengo.Object) string {
	switch v := obj.(type) {
	case nil:
		return "?"
	case *tengo.String:
		return fmt.Sprintf("%q", v.Value)
	case *tengo.CompiledFunction:
		return fmt.Sprintf("fn/%d", v.NumParameters)
	case *tengo.UserFunction:
		return "host " + v.Name
	default:
		return v.String()
	}
}
