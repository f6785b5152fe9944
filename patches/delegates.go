// Package patches declares the hooks that make the host's player and seeker
// scripts follow the gravity controller, and the host functions those hooks
// route calls through.
package patches

import (
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/parser"
	"github.com/d5/tengo/v2/token"
	"github.com/milk9111/gravityhelper/actor"
	"github.com/milk9111/gravityhelper/ecs"
	"github.com/milk9111/gravityhelper/gravity"
	"github.com/milk9111/gravityhelper/il"
	"github.com/milk9111/gravityhelper/script"
)

// Predicates for the shapes patches look for in host routines.
var (
	Addition     = binaryOp("add", token.Add)
	Subtraction  = binaryOp("sub", token.Sub)
	UnitY        = il.MatchMethodCall("geom", "unit_y")
	Min          = il.MatchMethodCall("geom", "min")
	Max          = il.MatchMethodCall("geom", "max")
	Sign         = il.MatchMethodCall("geom", "sign")
	Bottom       = il.MatchMethodCall("", "bottom")
	Top          = il.MatchMethodCall("", "top")
	BottomCenter = il.MatchCall("feet")
	MoveV        = il.MatchMethodCall("", "move_v")
	Aim          = il.MatchMethodCall("", "aim")
	Position     = il.MatchMethodCall("", "position")
	VecAdd       = il.MatchMethodCall("geom", "add")
)

func binaryOp(name string, tok token.Token) il.Predicate {
	return il.Predicate{
		Name: name,
		Match: func(in *il.Instr) bool {
			return in.Op == parser.OpBinaryOp && token.Token(in.Operand(0)) == tok
		},
	}
}

// Delegates builds the host functions patched calls are routed through.
// Functions taking `self` resolve the actor's effective gravity; the others
// use the global mode.
type Delegates struct {
	controller *gravity.Controller
}

func NewDelegates(c *gravity.Controller) *Delegates {
	return &Delegates{controller: c}
}

func (d *Delegates) inverted() bool {
	return d.controller.Mode().IsInverted()
}

func (d *Delegates) invertedFor(self tengo.Object) bool {
	id, ok := actor.EntityID(self)
	if !ok {
		return d.inverted()
	}
	return d.controller.ShouldInvert(ecs.Entity(id))
}

// InvertFloat negates its argument under inverted gravity.
func (d *Delegates) InvertFloat() *tengo.UserFunction {
	return script.Func("invert_float", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		v, ok := script.ToFloat(args[0])
		if !ok {
			return nil, tengo.ErrInvalidArgumentType{Name: "first", Expected: "float", Found: args[0].TypeName()}
		}
		if d.inverted() {
			v = -v
		}
		return script.Float(v), nil
	})
}

// InvertVec mirrors the y component of its argument under inverted gravity.
func (d *Delegates) InvertVec() *tengo.UserFunction {
	return script.Func("invert_vec", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		return flipVec(args[0], d.inverted())
	})
}

// UnitY replaces geom.unit_y(self): the unit vector towards self's floor.
func (d *Delegates) UnitY() *tengo.UserFunction {
	return script.Func("unit_y_for", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		if d.invertedFor(args[0]) {
			return script.Vec(0, -1), nil
		}
		return script.Vec(0, 1), nil
	})
}

// InvertArgFor replaces self.<method>(v) with a call passing -v when self's
// gravity is inverted.
func (d *Delegates) InvertArgFor(method string) *tengo.UserFunction {
	return script.Func("invert_"+method, func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 2 {
			return nil, tengo.ErrWrongNumArguments
		}
		v, ok := script.ToFloat(args[1])
		if !ok {
			return nil, tengo.ErrInvalidArgumentType{Name: "second", Expected: "float", Found: args[1].TypeName()}
		}
		if d.invertedFor(args[0]) {
			v = -v
		}
		return callMember(args[0], method, script.Float(v))
	})
}

// InvertResultFor replaces self.<method>() with its vector result mirrored
// on y when self's gravity is inverted.
func (d *Delegates) InvertResultFor(method string) *tengo.UserFunction {
	return script.Func("invert_"+method, func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		res, err := callMember(args[0], method)
		if err != nil {
			return nil, err
		}
		return flipVec(res, d.invertedFor(args[0]))
	})
}

// SwapFor replaces self.<normal>() with self.<inverted>() while self's
// gravity is inverted, e.g. bottom and top.
func (d *Delegates) SwapFor(normal, inverted string) *tengo.UserFunction {
	return script.Func(normal+"_or_"+inverted, func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		if d.invertedFor(args[0]) {
			return callMember(args[0], inverted)
		}
		return callMember(args[0], normal)
	})
}

// MirrorAbout wraps a position computed relative to an anchor actor:
// mirror(v, anchor) reflects v across the anchor's horizontal centre line
// while the anchor's gravity is inverted.
func (d *Delegates) MirrorAbout() *tengo.UserFunction {
	return script.Func("mirror_about", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 2 {
			return nil, tengo.ErrWrongNumArguments
		}
		x, y, ok := script.ToVec(args[0])
		if !ok {
			return nil, tengo.ErrInvalidArgumentType{Name: "first", Expected: "vec", Found: args[0].TypeName()}
		}
		if !d.invertedFor(args[1]) {
			return args[0], nil
		}
		res, err := callMember(args[1], "center_y")
		if err != nil {
			return nil, err
		}
		cy, ok := script.ToFloat(res)
		if !ok {
			return nil, fmt.Errorf("patches: center_y returned %s", res.TypeName())
		}
		return script.Vec(x, 2*cy-y), nil
	})
}

func flipVec(obj tengo.Object, inverted bool) (tengo.Object, error) {
	x, y, ok := script.ToVec(obj)
	if !ok {
		return nil, tengo.ErrInvalidArgumentType{Name: "first", Expected: "vec", Found: obj.TypeName()}
	}
	if !inverted {
		return obj, nil
	}
	return script.Vec(x, -y), nil
}

func callMember(self tengo.Object, name string, args ...tengo.Object) (tengo.Object, error) {
	member, err := self.IndexGet(&tengo.String{Value: name})
	if err != nil {
		return nil, err
	}
	fn, ok := member.(*tengo.UserFunction)
	if !ok {
		return nil, fmt.Errorf("patches: %s is %s, not a host function", name, member.TypeName())
	}
	return fn.Call(args...)
}
