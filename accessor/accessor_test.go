package accessor

import (
	"errors"
	"reflect"
	"testing"
)

type body struct {
	Speed     float64
	grace     float32
	launched  bool
	onLanding func(n int) int
	dashes    int
}

func (b *body) Refill(n int) int {
	b.dashes += n
	return b.dashes
}

func (b *body) Sum(xs ...int) int {
	t := 0
	for _, x := range xs {
		t += x
	}
	return t
}

func TestResolveIsCached(t *testing.T) {
	a, err := Resolve(reflect.TypeFor[body](), "grace")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	b, err := Resolve(reflect.TypeFor[*body](), "grace")
	if err != nil {
		t.Fatalf("resolve pointer owner: %v", err)
	}
	if a != b {
		t.Fatalf("second resolution returned a new member")
	}
	if a.Kind() != KindField || a.Type().Kind() != reflect.Float32 {
		t.Fatalf("grace resolved as %s %s", a.Kind(), a.Type())
	}
}

func TestUnexportedFieldGetSet(t *testing.T) {
	cases := []struct {
		name  string
		field string
		set   any
		want  any
	}{
		{"float_converts", "grace", 0.25, float32(0.25)},
		{"bool", "launched", true, true},
		{"exported", "Speed", 185, 185.0},
		{"int_from_float", "dashes", 2.0, 2},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b := &body{}
			m := MustResolve(reflect.TypeFor[body](), c.field)
			if err := m.Set(b, c.set); err != nil {
				t.Fatalf("set: %v", err)
			}
			got, err := m.Get(b)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if got != c.want {
				t.Fatalf("got %v (%T), want %v (%T)", got, got, c.want, c.want)
			}
		})
	}
}

func TestSetRejectsWrongTypes(t *testing.T) {
	m := MustResolve(reflect.TypeFor[body](), "launched")
	if err := m.Set(&body{}, 1.0); err == nil {
		t.Fatalf("float assigned to bool")
	}
	if err := m.Set(body{}, true); !errors.Is(err, ErrNotPointer) {
		t.Fatalf("value receiver: %v", err)
	}
}

func TestInvoke(t *testing.T) {
	b := &body{dashes: 1}

	out, err := MustResolve(reflect.TypeFor[body](), "Refill").Invoke(b, 2)
	if err != nil {
		t.Fatalf("refill: %v", err)
	}
	if out[0] != 3 || b.dashes != 3 {
		t.Fatalf("refill returned %v, dashes %d", out, b.dashes)
	}

	out, err = MustResolve(reflect.TypeFor[body](), "Sum").Invoke(b, 1, 2, 3)
	if err != nil || out[0] != 6 {
		t.Fatalf("sum = %v, %v", out, err)
	}

	b.onLanding = func(n int) int { return n * 10 }
	out, err = MustResolve(reflect.TypeFor[body](), "onLanding").Invoke(b, 4)
	if err != nil || out[0] != 40 {
		t.Fatalf("onLanding = %v, %v", out, err)
	}

	if _, err := MustResolve(reflect.TypeFor[body](), "Refill").Invoke(b); err == nil {
		t.Fatalf("missing argument accepted")
	}
	if _, err := MustResolve(reflect.TypeFor[body](), "dashes").Invoke(b); !errors.Is(err, ErrNotFunc) {
		t.Fatalf("field invoke: %v", err)
	}
}

func TestResolutionFailureIsFatalAtFirstUse(t *testing.T) {
	if _, err := Resolve(reflect.TypeFor[body](), "missing"); err == nil {
		t.Fatalf("missing member resolved")
	}

	lazy := LazyOf[body]("wallBoostTimer")
	defer func() {
		r := recover()
		re, ok := r.(*ResolutionError)
		if !ok {
			t.Fatalf("recovered %v, want *ResolutionError", r)
		}
		if re.Member != "wallBoostTimer" {
			t.Fatalf("error names %q", re.Member)
		}
	}()
	lazy.Member()
}

func TestTypedField(t *testing.T) {
	grace := NewField[body, float32]("grace")
	b := &body{grace: 0.1}
	grace.Set(b, 0)
	if got := grace.Get(b); got != 0 {
		t.Fatalf("grace = %v", got)
	}

	wrong := NewField[body, string]("grace")
	defer func() {
		if _, ok := recover().(*ResolutionError); !ok {
			t.Fatalf("mismatched field type did not panic with *ResolutionError")
		}
	}()
	wrong.Get(b)
}
