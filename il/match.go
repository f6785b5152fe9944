package il

import (
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/parser"
)

// Predicate matches a single instruction. Name is used in diagnostics.
type Predicate struct {
	Name  string
	Match func(in *Instr) bool
}

// MatchAny matches every instruction.
var MatchAny = Predicate{Name: "any", Match: func(*Instr) bool { return true }}

func MatchOp(op parser.Opcode) Predicate {
	return Predicate{
		Name:  OpName(op),
		Match: func(in *Instr) bool { return in.Op == op },
	}
}

func MatchConstString(s string) Predicate {
	return Predicate{
		Name: fmt.Sprintf("const %q", s),
		Match: func(in *Instr) bool {
			v, ok := in.body.Constant(in).(*tengo.String)
			return ok && v.Value == s
		},
	}
}

func MatchConstFloat(f float64) Predicate {
	return Predicate{
		Name: fmt.Sprintf("const %g", f),
		Match: func(in *Instr) bool {
			v, ok := in.body.Constant(in).(*tengo.Float)
			return ok && v.Value == f
		},
	}
}

func MatchConstInt(n int64) Predicate {
	return Predicate{
		Name: fmt.Sprintf("const %d", n),
		Match: func(in *Instr) bool {
			v, ok := in.body.Constant(in).(*tengo.Int)
			return ok && v.Value == n
		},
	}
}

func MatchGetGlobal(name string) Predicate {
	return Predicate{
		Name: "global " + name,
		Match: func(in *Instr) bool {
			if in.Op != parser.OpGetGlobal || in.body.pool == nil {
				return false
			}
			got, ok := in.body.pool.GlobalName(in.Operands[0])
			return ok && got == name
		},
	}
}

func MatchGetLocal(i int) Predicate {
	return Predicate{
		Name:  fmt.Sprintf("local %d", i),
		Match: func(in *Instr) bool { return in.Op == parser.OpGetLocal && in.Operands[0] == i },
	}
}

func MatchGetFree(i int) Predicate {
	return Predicate{
		Name:  fmt.Sprintf("free %d", i),
		Match: func(in *Instr) bool { return in.Op == parser.OpGetFree && in.Operands[0] == i },
	}
}

func MatchBuiltin(name string) Predicate {
	return Predicate{
		Name: "builtin " + name,
		Match: func(in *Instr) bool {
			return in.Op == parser.OpGetBuiltin && builtinName(in.Operands[0]) == name
		},
	}
}

// MatchField matches the OpIndex of a selector read such as `x.name`.
func MatchField(name string) Predicate {
	return Predicate{
		Name: "field " + name,
		Match: func(in *Instr) bool {
			if in.Op != parser.OpIndex {
				return false
			}
			got, ok := in.body.constString(in.Prev())
			return ok && got == name
		},
	}
}

// MatchCall matches a call whose callee is the global or builtin name.
func MatchCall(name string) Predicate {
	return Predicate{
		Name: "call " + name,
		Match: func(in *Instr) bool {
			site, ok := callSite(in)
			return ok && !site.Member && site.Name == name
		},
	}
}

// MatchMethodCall matches `receiver.name(...)` for any arity. An empty
// receiver accepts any receiver expression, which is how calls on locals
// and parameters are matched.
func MatchMethodCall(receiver, name string) Predicate {
	label := "call " + name
	if receiver != "" {
		label = "call " + receiver + "." + name
	}
	return Predicate{
		Name: label,
		Match: func(in *Instr) bool {
			site, ok := callSite(in)
			if !ok || !site.Member || site.Name != name {
				return false
			}
			return receiver == "" || site.Receiver == receiver
		},
	}
}

// MatchCallArgs narrows p to calls that pass exactly n arguments.
func MatchCallArgs(p Predicate, n int) Predicate {
	return Predicate{
		Name: fmt.Sprintf("%s/%d", p.Name, n),
		Match: func(in *Instr) bool {
			return in.Op == parser.OpCall && in.Operands[0] == n && p.Match(in)
		},
	}
}

func callSite(in *Instr) (*CallSite, bool) {
	if in.Op != parser.OpCall || in.body == nil {
		return nil, false
	}
	site, err := in.body.CallSite(in)
	if err != nil {
		return nil, false
	}
	return site, true
}
