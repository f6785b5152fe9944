package script

import (
	"strings"

	"github.com/d5/tengo/v2"
)

// Vec builds the [x, y] array scripts use for vectors.
func Vec(x, y float64) *tengo.Array {
	return &tengo.Array{Value: []tengo.Object{&tengo.Float{Value: x}, &tengo.Float{Value: y}}}
}

// ToVec reads an [x, y] array.
func ToVec(obj tengo.Object) (x, y float64, ok bool) {
	var items []tengo.Object
	switch v := obj.(type) {
	case *tengo.Array:
		items = v.Value
	case *tengo.ImmutableArray:
		items = v.Value
	default:
		return 0, 0, false
	}
	if len(items) != 2 {
		return 0, 0, false
	}
	x, okX := tengo.ToFloat64(items[0])
	y, okY := tengo.ToFloat64(items[1])
	return x, y, okX && okY
}

// ToFloat reads an int or float.
func ToFloat(obj tengo.Object) (float64, bool) {
	if obj == nil {
		return 0, false
	}
	return tengo.ToFloat64(obj)
}

func Float(v float64) tengo.Object {
	return &tengo.Float{Value: v}
}

func Bool(v bool) tengo.Object {
	if v {
		return tengo.TrueValue
	}
	return tengo.FalseValue
}

// Func wraps a host function.
func Func(name string, fn tengo.CallableFunc) *tengo.UserFunction {
	return &tengo.UserFunction{Name: name, Value: fn}
}

func ObjectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}

// ObjectToAny converts script values back to plain Go values.
func ObjectToAny(obj tengo.Object) any {
	if obj == nil {
		return nil
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	case *tengo.Int:
		return int(v.Value)
	case *tengo.Float:
		return v.Value
	case *tengo.Bool:
		return !v.IsFalsy()
	case *tengo.Array:
		out := make([]any, 0, len(v.Value))
		for _, item := range v.Value {
			out = append(out, ObjectToAny(item))
		}
		return out
	case *tengo.Map:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = ObjectToAny(item)
		}
		return out
	case *tengo.ImmutableMap:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = ObjectToAny(item)
		}
		return out
	case *tengo.Undefined:
		return nil
	default:
		return v.String()
	}
}
