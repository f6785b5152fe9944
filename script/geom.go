package script

import (
	"math"

	"github.com/d5/tengo/v2"
)

// Geom returns the vector helpers host scripts reach through the `geom`
// global. Vectors are [x, y] arrays with y growing downwards.
func Geom() *tengo.ImmutableMap {
	return &tengo.ImmutableMap{Value: map[string]tengo.Object{
		"vec": Func("vec", func(args ...tengo.Object) (tengo.Object, error) {
			x, y, err := floats2("vec", args)
			if err != nil {
				return nil, err
			}
			return Vec(x, y), nil
		}),
		"add": Func("add", func(args ...tengo.Object) (tengo.Object, error) {
			ax, ay, bx, by, err := vecs2("add", args)
			if err != nil {
				return nil, err
			}
			return Vec(ax+bx, ay+by), nil
		}),
		"sub": Func("sub", func(args ...tengo.Object) (tengo.Object, error) {
			ax, ay, bx, by, err := vecs2("sub", args)
			if err != nil {
				return nil, err
			}
			return Vec(ax-bx, ay-by), nil
		}),
		"scale": Func("scale", func(args ...tengo.Object) (tengo.Object, error) {
			if len(args) != 2 {
				return nil, tengo.ErrWrongNumArguments
			}
			x, y, ok := ToVec(args[0])
			if !ok {
				return nil, badArg("first", "vec", args[0])
			}
			k, ok := ToFloat(args[1])
			if !ok {
				return nil, badArg("second", "float", args[1])
			}
			return Vec(x*k, y*k), nil
		}),
		"normalize": Func("normalize", func(args ...tengo.Object) (tengo.Object, error) {
			x, y, err := vec1("normalize", args)
			if err != nil {
				return nil, err
			}
			l := math.Hypot(x, y)
			if l == 0 {
				return Vec(0, 0), nil
			}
			return Vec(x/l, y/l), nil
		}),
		"unit_x": Func("unit_x", func(args ...tengo.Object) (tengo.Object, error) {
			return Vec(1, 0), nil
		}),
		"unit_y": Func("unit_y", func(args ...tengo.Object) (tengo.Object, error) {
			return Vec(0, 1), nil
		}),
		"x": Func("x", func(args ...tengo.Object) (tengo.Object, error) {
			x, _, err := vec1("x", args)
			return Float(x), err
		}),
		"y": Func("y", func(args ...tengo.Object) (tengo.Object, error) {
			_, y, err := vec1("y", args)
			return Float(y), err
		}),
		"min": Func("min", func(args ...tengo.Object) (tengo.Object, error) {
			a, b, err := floats2("min", args)
			if err != nil {
				return nil, err
			}
			return Float(math.Min(a, b)), nil
		}),
		"max": Func("max", func(args ...tengo.Object) (tengo.Object, error) {
			a, b, err := floats2("max", args)
			if err != nil {
				return nil, err
			}
			return Float(math.Max(a, b)), nil
		}),
		"sign": Func("sign", func(args ...tengo.Object) (tengo.Object, error) {
			if len(args) != 1 {
				return nil, tengo.ErrWrongNumArguments
			}
			v, ok := ToFloat(args[0])
			if !ok {
				return nil, badArg("first", "float", args[0])
			}
			return Float(Sign(v)), nil
		}),
		"abs": Func("abs", func(args ...tengo.Object) (tengo.Object, error) {
			if len(args) != 1 {
				return nil, tengo.ErrWrongNumArguments
			}
			v, ok := ToFloat(args[0])
			if !ok {
				return nil, badArg("first", "float", args[0])
			}
			return Float(math.Abs(v)), nil
		}),
		"approach": Func("approach", func(args ...tengo.Object) (tengo.Object, error) {
			if len(args) != 3 {
				return nil, tengo.ErrWrongNumArguments
			}
			var v [3]float64
			for i, a := range args {
				f, ok := ToFloat(a)
				if !ok {
					return nil, badArg("argument", "float", a)
				}
				v[i] = f
			}
			return Float(Approach(v[0], v[1], v[2])), nil
		}),
	}}
}

// Sign returns -1, 0 or 1.
func Sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// Approach moves v towards target by at most step.
func Approach(v, target, step float64) float64 {
	if v < target {
		return math.Min(v+step, target)
	}
	return math.Max(v-step, target)
}

func floats2(name string, args []tengo.Object) (float64, float64, error) {
	if len(args) != 2 {
		return 0, 0, tengo.ErrWrongNumArguments
	}
	a, ok := ToFloat(args[0])
	if !ok {
		return 0, 0, badArg("first", "float", args[0])
	}
	b, ok := ToFloat(args[1])
	if !ok {
		return 0, 0, badArg("second", "float", args[1])
	}
	return a, b, nil
}

func vec1(name string, args []tengo.Object) (float64, float64, error) {
	if len(args) != 1 {
		return 0, 0, tengo.ErrWrongNumArguments
	}
	x, y, ok := ToVec(args[0])
	if !ok {
		return 0, 0, badArg("first", "vec", args[0])
	}
	return x, y, nil
}

func vecs2(name string, args []tengo.Object) (ax, ay, bx, by float64, err error) {
	if len(args) != 2 {
		return 0, 0, 0, 0, tengo.ErrWrongNumArguments
	}
	var ok bool
	if ax, ay, ok = ToVec(args[0]); !ok {
		return 0, 0, 0, 0, badArg("first", "vec", args[0])
	}
	if bx, by, ok = ToVec(args[1]); !ok {
		return 0, 0, 0, 0, badArg("second", "vec", args[1])
	}
	return ax, ay, bx, by, nil
}

func badArg(name, expected string, found tengo.Object) error {
	typ := "undefined"
	if found != nil {
		typ = found.TypeName()
	}
	return tengo.ErrInvalidArgumentType{Name: name, Expected: expected, Found: typ}
}
