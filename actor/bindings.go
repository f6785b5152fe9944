package actor

import (
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/milk9111/gravityhelper/script"
)

// Clock supplies the frame delta to scripts.
type Clock func() float64

// Bindings builds the `self` object player routines receive. The "id" entry
// carries the owning entity so host functions can find it again.
func Bindings(p *Player, id int64, dt Clock) *tengo.ImmutableMap {
	getter := func(name string, fn func() tengo.Object) *tengo.UserFunction {
		return script.Func(name, func(args ...tengo.Object) (tengo.Object, error) {
			if len(args) != 0 {
				return nil, tengo.ErrWrongNumArguments
			}
			return fn(), nil
		})
	}
	float1 := func(name string, fn func(v float64) tengo.Object) *tengo.UserFunction {
		return script.Func(name, func(args ...tengo.Object) (tengo.Object, error) {
			if len(args) != 1 {
				return nil, tengo.ErrWrongNumArguments
			}
			v, ok := script.ToFloat(args[0])
			if !ok {
				return nil, tengo.ErrInvalidArgumentType{Name: "first", Expected: "float", Found: args[0].TypeName()}
			}
			return fn(v), nil
		})
	}

	return &tengo.ImmutableMap{Value: map[string]tengo.Object{
		"id": &tengo.Int{Value: id},
		"dt": getter("dt", func() tengo.Object { return script.Float(dt()) }),

		"position": getter("position", func() tengo.Object { return script.Vec(p.X, p.Y) }),
		"top":      getter("top", func() tengo.Object { return script.Float(p.Top()) }),
		"bottom":   getter("bottom", func() tengo.Object { return script.Float(p.Bottom()) }),
		"center_x": getter("center_x", func() tengo.Object { return script.Float(p.Hitbox().CenterX()) }),
		"center_y": getter("center_y", func() tengo.Object { return script.Float(p.Hitbox().CenterY()) }),

		"speed_x": getter("speed_x", func() tengo.Object { return script.Float(p.SpeedX) }),
		"speed_y": getter("speed_y", func() tengo.Object { return script.Float(p.SpeedY) }),
		"set_speed": script.Func("set_speed", func(args ...tengo.Object) (tengo.Object, error) {
			if len(args) != 2 {
				return nil, tengo.ErrWrongNumArguments
			}
			x, okX := script.ToFloat(args[0])
			y, okY := script.ToFloat(args[1])
			if !okX || !okY {
				return nil, fmt.Errorf("set_speed: want two numbers")
			}
			p.SpeedX, p.SpeedY = x, y
			if x != 0 {
				p.Facing = script.Sign(x)
			}
			return tengo.UndefinedValue, nil
		}),

		"on_ground": getter("on_ground", func() tengo.Object { return script.Bool(p.onGround) }),
		"set_on_ground": script.Func("set_on_ground", func(args ...tengo.Object) (tengo.Object, error) {
			if len(args) != 1 {
				return nil, tengo.ErrWrongNumArguments
			}
			p.onGround = !args[0].IsFalsy()
			return tengo.UndefinedValue, nil
		}),
		"move_h": float1("move_h", func(dx float64) tengo.Object { return script.Bool(p.MoveH(dx)) }),
		"move_v": float1("move_v", func(dy float64) tengo.Object { return script.Bool(p.MoveV(dy)) }),
		"collide_at": script.Func("collide_at", func(args ...tengo.Object) (tengo.Object, error) {
			if len(args) != 1 {
				return nil, tengo.ErrWrongNumArguments
			}
			x, y, ok := script.ToVec(args[0])
			if !ok {
				return nil, tengo.ErrInvalidArgumentType{Name: "first", Expected: "vec", Found: args[0].TypeName()}
			}
			return script.Bool(p.CollideAt(x, y)), nil
		}),

		"input_x":      getter("input_x", func() tengo.Object { return script.Float(p.Input.MoveX) }),
		"input_y":      getter("input_y", func() tengo.Object { return script.Float(p.Input.MoveY) }),
		"jump_held":    getter("jump_held", func() tengo.Object { return script.Bool(p.Input.Jump) }),
		"jump_pressed": getter("jump_pressed", func() tengo.Object { return script.Bool(p.Input.JumpPressed) }),
		"dash_pressed": getter("dash_pressed", func() tengo.Object { return script.Bool(p.Input.DashPressed) }),
		"aim": getter("aim", func() tengo.Object {
			x, y := script.Sign(p.Input.MoveX), script.Sign(p.Input.MoveY)
			if x == 0 && y == 0 {
				x = p.Facing
			}
			return script.Vec(x, y)
		}),
		"facing": getter("facing", func() tengo.Object { return script.Float(p.Facing) }),

		"timer": script.Func("timer", func(args ...tengo.Object) (tengo.Object, error) {
			t, err := timerArg(p, args, 1)
			if err != nil {
				return nil, err
			}
			return script.Float(float64(*t)), nil
		}),
		"set_timer": script.Func("set_timer", func(args ...tengo.Object) (tengo.Object, error) {
			t, err := timerArg(p, args, 2)
			if err != nil {
				return nil, err
			}
			v, ok := script.ToFloat(args[1])
			if !ok {
				return nil, tengo.ErrInvalidArgumentType{Name: "second", Expected: "float", Found: args[1].TypeName()}
			}
			*t = float32(max(0, v))
			return tengo.UndefinedValue, nil
		}),
		"var_jump_speed": getter("var_jump_speed", func() tengo.Object { return script.Float(float64(p.varJumpSpeed)) }),
		"set_var_jump_speed": float1("set_var_jump_speed", func(v float64) tengo.Object {
			p.varJumpSpeed = float32(v)
			return tengo.UndefinedValue
		}),
		"launched": getter("launched", func() tengo.Object { return script.Bool(p.launched) }),

		"dashes": getter("dashes", func() tengo.Object { return &tengo.Int{Value: int64(p.Dashes)} }),
		"use_dash": getter("use_dash", func() tengo.Object {
			if p.Dashes <= 0 {
				return tengo.FalseValue
			}
			p.Dashes--
			return tengo.TrueValue
		}),
		"refill_dash": getter("refill_dash", func() tengo.Object { return script.Bool(p.RefillDash()) }),
		"state":       getter("state", func() tengo.Object { return &tengo.String{Value: p.State} }),
		"set_state": script.Func("set_state", func(args ...tengo.Object) (tengo.Object, error) {
			if len(args) != 1 {
				return nil, tengo.ErrWrongNumArguments
			}
			p.State = script.ObjectAsString(args[0])
			return tengo.UndefinedValue, nil
		}),
	}}
}

func timerArg(p *Player, args []tengo.Object, n int) (*float32, error) {
	if len(args) != n {
		return nil, tengo.ErrWrongNumArguments
	}
	name := script.ObjectAsString(args[0])
	t, ok := p.timer(name)
	if !ok {
		return nil, fmt.Errorf("actor: unknown timer %q", name)
	}
	return t, nil
}

// EntityID reads the "id" entry of a bindings object.
func EntityID(self tengo.Object) (int64, bool) {
	m, ok := self.(*tengo.ImmutableMap)
	if !ok {
		return 0, false
	}
	id, ok := m.Value["id"].(*tengo.Int)
	if !ok {
		return 0, false
	}
	return id.Value, true
}

// PointBindings builds `self` for script-driven props that only have a
// position, such as seekers.
func PointBindings(x, y *float64, id int64, dt Clock) *tengo.ImmutableMap {
	return &tengo.ImmutableMap{Value: map[string]tengo.Object{
		"id": &tengo.Int{Value: id},
		"dt": script.Func("dt", func(args ...tengo.Object) (tengo.Object, error) {
			return script.Float(dt()), nil
		}),
		"position": script.Func("position", func(args ...tengo.Object) (tengo.Object, error) {
			return script.Vec(*x, *y), nil
		}),
		"set_position": script.Func("set_position", func(args ...tengo.Object) (tengo.Object, error) {
			if len(args) != 1 {
				return nil, tengo.ErrWrongNumArguments
			}
			vx, vy, ok := script.ToVec(args[0])
			if !ok {
				return nil, tengo.ErrInvalidArgumentType{Name: "first", Expected: "vec", Found: args[0].TypeName()}
			}
			*x, *y = vx, vy
			return tengo.UndefinedValue, nil
		}),
	}}
}
