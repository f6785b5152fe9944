package script

import (
	"errors"
	"testing"

	"github.com/d5/tengo/v2"
)

const testSrc = `
counter := 0

add := func(a, b) {
	return a + b
}

bump := func() {
	counter += 1
	return counter
}

countdown := func(n) {
	return func() {
		n -= 1
		return n > 0
	}
}

stop := func() {
	return func() {
		return false
	}
}

apply := func(x) {
	double := func(y) { return y * 2 }
	return double(x)
}

scaled := func(v) {
	return geom.scale(v, factor)
}
`

func loadTestUnit(t *testing.T) *Unit {
	t.Helper()
	u, err := Load("test", []byte(testSrc), Env{
		"geom":   Geom(),
		"factor": &tengo.Float{Value: 2},
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return u
}

func TestUnitInvoke(t *testing.T) {
	u := loadTestUnit(t)

	cases := []struct {
		name    string
		routine string
		args    []tengo.Object
		want    any
	}{
		{"add", "add", []tengo.Object{&tengo.Int{Value: 2}, &tengo.Int{Value: 3}}, 5},
		{"nested_lambda", "apply", []tengo.Object{&tengo.Int{Value: 4}}, 8},
		{"env_module", "scaled", []tengo.Object{Vec(1, -2)}, []any{2.0, -4.0}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			res, err := u.Invoke(c.routine, c.args...)
			if err != nil {
				t.Fatalf("invoke: %v", err)
			}
			got := ObjectToAny(res)
			switch want := c.want.(type) {
			case []any:
				arr, ok := got.([]any)
				if !ok || len(arr) != len(want) {
					t.Fatalf("expected %v, got %v", want, got)
				}
				for i := range want {
					if arr[i] != want[i] {
						t.Fatalf("expected %v, got %v", want, got)
					}
				}
			default:
				if got != want {
					t.Fatalf("expected %v, got %v", want, got)
				}
			}
		})
	}
}

func TestUnitGlobalsPersistAcrossCalls(t *testing.T) {
	u := loadTestUnit(t)
	for i := 1; i <= 3; i++ {
		res, err := u.Invoke("bump")
		if err != nil {
			t.Fatalf("bump: %v", err)
		}
		if n, _ := ToFloat(res); int(n) != i {
			t.Fatalf("bump %d returned %v", i, res)
		}
	}
	v, ok := u.Get("counter")
	if !ok {
		t.Fatalf("counter global missing")
	}
	if n, _ := ToFloat(v); n != 3 {
		t.Fatalf("expected counter 3, got %v", v)
	}
}

func TestUnitDeclarations(t *testing.T) {
	u := loadTestUnit(t)

	cases := []struct {
		name  string
		kind  DeclKind
		outer string
	}{
		{"add", KindRoutine, ""},
		{"countdown", KindRoutine, ""},
		{"<countdown>d__0", KindResumable, "countdown"},
		{"<stop>d__0", KindResumable, "stop"},
		{"<apply>b__0", KindLambda, "apply"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d, ok := u.Decl(c.name)
			if !ok {
				t.Fatalf("declaration %s not indexed", c.name)
			}
			if d.Kind != c.kind {
				t.Fatalf("expected kind %s, got %s", c.kind, d.Kind)
			}
			if c.outer == "" {
				if d.Outer != nil {
					t.Fatalf("routine should have no outer declaration")
				}
				return
			}
			if d.Outer == nil || d.Outer.Name != c.outer {
				t.Fatalf("expected outer %s, got %+v", c.outer, d.Outer)
			}
		})
	}

	if _, ok := u.Routine("<countdown>d__0"); ok {
		t.Fatalf("nested declaration must not resolve as a routine")
	}
	if !IsResumableOf("<countdown>d__0", "countdown") || IsResumableOf("<countdown>d__0", "count") {
		t.Fatalf("resumable prefix matching is wrong")
	}
}

func TestCoroutineRunsUntilFalsy(t *testing.T) {
	u := loadTestUnit(t)
	co, err := u.Start("countdown", &tengo.Int{Value: 3})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if co.Decl() == nil || co.Decl().Name != "<countdown>d__0" {
		t.Fatalf("coroutine not traced to its resumable body: %+v", co.Decl())
	}
	want := []bool{true, true, false, false}
	for i, w := range want {
		got, err := co.Resume()
		if err != nil {
			t.Fatalf("resume %d: %v", i, err)
		}
		if got != w {
			t.Fatalf("resume %d: expected %v, got %v", i, w, got)
		}
	}
	if !co.Done() {
		t.Fatalf("coroutine should be done")
	}
}

func TestCoroutineRebindsToDeclarationBody(t *testing.T) {
	u := loadTestUnit(t)
	co, err := u.Start("countdown", &tengo.Int{Value: 10})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if running, _ := co.Resume(); !running {
		t.Fatalf("expected coroutine to keep running")
	}

	decl := co.Decl()
	stop, _ := u.Decl("<stop>d__0")
	original := decl.Fn.Instructions
	decl.Fn.Instructions = stop.Fn.Instructions
	if running, _ := co.Resume(); running {
		t.Fatalf("swapped body should stop the coroutine")
	}

	decl.Fn.Instructions = original
	co2, _ := u.Start("countdown", &tengo.Int{Value: 10})
	if running, _ := co2.Resume(); !running {
		t.Fatalf("restored body should keep running")
	}
}

func TestStartNonResumable(t *testing.T) {
	u := loadTestUnit(t)
	co, err := u.Start("bump")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !co.Done() {
		t.Fatalf("routine returning a value should finish immediately")
	}
	if running, err := co.Resume(); running || err != nil {
		t.Fatalf("resume of finished coroutine: %v %v", running, err)
	}
}

func TestAddConstantInterns(t *testing.T) {
	u := loadTestUnit(t)
	before := len(u.bytecode.Constants)
	fn := Func("truthy", func(args ...tengo.Object) (tengo.Object, error) { return tengo.TrueValue, nil })

	a := u.AddConstant(fn)
	b := u.AddConstant(fn)
	if a != b {
		t.Fatalf("expected same index, got %d and %d", a, b)
	}
	if a != before {
		t.Fatalf("expected new constant at %d, got %d", before, a)
	}
	if u.Constant(a) != fn {
		t.Fatalf("constant %d is not the interned function", a)
	}
}

func TestUnitErrors(t *testing.T) {
	u := loadTestUnit(t)
	if _, err := u.Invoke("missing"); !errors.Is(err, ErrUnknownRoutine) {
		t.Fatalf("expected ErrUnknownRoutine, got %v", err)
	}
	if err := u.Set("missing", tengo.TrueValue); !errors.Is(err, ErrUnknownGlobal) {
		t.Fatalf("expected ErrUnknownGlobal, got %v", err)
	}

	c, err := Compile("raw", []byte(`f := func() { return 1 }`), nil)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if _, err := c.Call(tengo.UndefinedValue); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("expected ErrNotLoaded, got %v", err)
	}

	if _, err := Compile("bad", []byte(`f := func( {`), nil); err == nil {
		t.Fatalf("expected parse error")
	}
}
