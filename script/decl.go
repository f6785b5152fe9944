package script

import (
	"fmt"
	"sort"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/parser"
)

type DeclKind int

const (
	// KindRoutine is a function bound to a top-level global.
	KindRoutine DeclKind = iota
	// KindResumable is a parameterless function literal returned by its
	// enclosing routine. The host resumes it once per frame.
	KindResumable
	// KindLambda is any other nested function literal.
	KindLambda
)

func (k DeclKind) String() string {
	switch k {
	case KindRoutine:
		return "routine"
	case KindResumable:
		return "resumable"
	case KindLambda:
		return "lambda"
	}
	return fmt.Sprintf("DeclKind(%d)", int(k))
}

// Decl is one function declared by a unit. Nested declarations are named
// after their outermost routine: "<dash>d__0" for a resumable body,
// "<dash>b__1" for any other literal.
type Decl struct {
	Name  string
	Kind  DeclKind
	Outer *Decl
	Fn    *tengo.CompiledFunction

	nested []*Decl
}

// Nested returns the declarations directly inside d, in source order.
func (d *Decl) Nested() []*Decl {
	return append([]*Decl(nil), d.nested...)
}

// Routine returns the top-level routine name.
func (u *Unit) Routine(name string) (*Decl, bool) {
	d, ok := u.decls[name]
	if !ok || d.Kind != KindRoutine {
		return nil, false
	}
	return d, true
}

// Decl returns any declaration by name.
func (u *Unit) Decl(name string) (*Decl, bool) {
	d, ok := u.decls[name]
	return d, ok
}

// Decls returns every declaration of the unit: routines in global order,
// each followed by its nested declarations.
func (u *Unit) Decls() []*Decl {
	return append([]*Decl(nil), u.ordered...)
}

func (u *Unit) index() {
	u.decls = make(map[string]*Decl)
	u.byFn = make(map[*tengo.CompiledFunction]*Decl)
	u.ordered = nil

	slots := make([]int, 0, len(u.globalNames))
	for idx := range u.globalNames {
		slots = append(slots, idx)
	}
	sort.Ints(slots)

	for _, idx := range slots {
		fn, ok := u.globals[idx].(*tengo.CompiledFunction)
		if !ok {
			continue
		}
		if _, seen := u.byFn[fn]; seen {
			continue
		}
		d := &Decl{Name: u.globalNames[idx], Kind: KindRoutine, Fn: fn}
		u.add(d)
		ordinal := 0
		u.indexNested(d, d, &ordinal)
	}
}

func (u *Unit) add(d *Decl) {
	u.decls[d.Name] = d
	u.byFn[d.Fn] = d
	u.ordered = append(u.ordered, d)
}

// indexNested walks fn's instructions for function literals it loads.
func (u *Unit) indexNested(root, outer *Decl, ordinal *int) {
	ins := outer.Fn.Instructions
	for i := 0; i < len(ins); {
		op := ins[i]
		operands, read := parser.ReadOperands(parser.OpcodeOperands[op], ins[i+1:])
		next := i + 1 + read
		if op == parser.OpConstant || op == parser.OpClosure {
			fn, ok := u.Constant(operands[0]).(*tengo.CompiledFunction)
			if ok {
				if _, seen := u.byFn[fn]; !seen {
					kind := KindLambda
					if fn.NumParameters == 0 && next < len(ins) && ins[next] == parser.OpReturn && ins[next+1] == 1 {
						kind = KindResumable
					}
					tag := "b"
					if kind == KindResumable {
						tag = "d"
					}
					d := &Decl{
						Name:  fmt.Sprintf("<%s>%s__%d", root.Name, tag, *ordinal),
						Kind:  kind,
						Outer: outer,
						Fn:    fn,
					}
					*ordinal++
					outer.nested = append(outer.nested, d)
					u.add(d)
					u.indexNested(root, d, ordinal)
				}
			}
		}
		i = next
	}
}

// ResumablePrefix is the name prefix of the resumable bodies synthesized for
// routine.
func ResumablePrefix(routine string) string {
	return "<" + routine + ">d__"
}

// IsResumableOf reports whether name is a resumable body of routine.
func IsResumableOf(name, routine string) bool {
	return strings.HasPrefix(name, ResumablePrefix(routine))
}
