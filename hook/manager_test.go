package hook_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/d5/tengo/v2"
	"github.com/milk9111/gravityhelper/hook"
	"github.com/milk9111/gravityhelper/il"
	"github.com/milk9111/gravityhelper/script"
	"github.com/tliron/commonlog"
	"github.com/tliron/commonlog/simple"
)

const actorSrc = `
land := func(self) {
	return self.bottom() + self.offset()
}

dash := func(self) {
	n := 0
	return func() {
		n += 1
		self.step(self.bottom())
		return n < 3
	}
}
`

type fixture struct {
	unit  *script.Unit
	self  *tengo.ImmutableMap
	steps []int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	u, err := script.Load("actor", []byte(actorSrc), nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	f := &fixture{unit: u}
	f.self = &tengo.ImmutableMap{Value: map[string]tengo.Object{
		"bottom": constFunc("bottom", 10),
		"top":    constFunc("top", -10),
		"offset": constFunc("offset", 1),
		"step": script.Func("step", func(args ...tengo.Object) (tengo.Object, error) {
			v, _ := args[0].(*tengo.Int)
			f.steps = append(f.steps, v.Value)
			return tengo.UndefinedValue, nil
		}),
	}}
	return f
}

func constFunc(name string, v int64) *tengo.UserFunction {
	return script.Func(name, func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Int{Value: v}, nil
	})
}

func (f *fixture) land(t *testing.T) int64 {
	t.Helper()
	res, err := f.unit.Invoke("land", f.self)
	if err != nil {
		t.Fatalf("land: %v", err)
	}
	n, ok := res.(*tengo.Int)
	if !ok {
		t.Fatalf("land returned %s", res.TypeName())
	}
	return n.Value
}

// replaceMember routes every self.<member>() call through a host function
// returning v.
func replaceMember(member string, v int64) hook.Manipulator {
	return hook.Patches(il.Patch{
		Predicate:   il.MatchMethodCall("", member),
		Replacement: constFunc("replaced_"+member, v),
		Count:       il.All,
	})
}

func TestInstallIsIdempotent(t *testing.T) {
	f := newFixture(t)
	m, err := hook.NewManager(hook.NewCatalog(f.unit), hook.Hook{
		Name:       "flip",
		Target:     hook.Routine("actor", "land"),
		Manipulate: replaceMember("bottom", -10),
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	first, err := m.Install("flip")
	if err != nil {
		t.Fatalf("install: %v", err)
	}
	decl, _ := f.unit.Routine("land")
	patched := decl.Fn.Instructions

	second, err := m.Install("flip")
	if err != nil {
		t.Fatalf("second install: %v", err)
	}
	if first != second {
		t.Fatalf("second install returned a new handle")
	}
	if &decl.Fn.Instructions[0] != &patched[0] {
		t.Fatalf("second install rewrote the routine again")
	}
	if got := f.land(t); got != -9 {
		t.Fatalf("land = %d, want -9", got)
	}
}

func TestUninstallRestoresOriginal(t *testing.T) {
	f := newFixture(t)
	decl, _ := f.unit.Routine("land")
	original := append([]byte(nil), decl.Fn.Instructions...)

	m, _ := hook.NewManager(hook.NewCatalog(f.unit), hook.Hook{
		Name:       "flip",
		Target:     hook.Routine("actor", "land"),
		Manipulate: replaceMember("bottom", -10),
	})

	h, err := m.Install("flip")
	if err != nil {
		t.Fatalf("install: %v", err)
	}
	m.Uninstall(h)
	m.Uninstall(h)

	if h.Installed() || m.Installed("flip") {
		t.Fatalf("hook still reported installed")
	}
	if !bytes.Equal(decl.Fn.Instructions, original) {
		t.Fatalf("instructions not restored")
	}
	if m.Trampolines() != 0 {
		t.Fatalf("trampolines = %d, want 0", m.Trampolines())
	}
	if got := f.land(t); got != 11 {
		t.Fatalf("land = %d, want 11", got)
	}

	if _, err := m.Install("flip"); err != nil {
		t.Fatalf("reinstall: %v", err)
	}
	if got := f.land(t); got != -9 {
		t.Fatalf("land after reinstall = %d, want -9", got)
	}
}

func TestLayeredHooksRebuildOnUninstall(t *testing.T) {
	f := newFixture(t)
	m, _ := hook.NewManager(hook.NewCatalog(f.unit),
		hook.Hook{Name: "flip", Target: hook.Routine("actor", "land"), Manipulate: replaceMember("bottom", -10)},
		hook.Hook{Name: "zero", Target: hook.Routine("actor", "land"), Manipulate: replaceMember("offset", 0)},
	)
	if err := m.InstallAll(); err != nil {
		t.Fatalf("install all: %v", err)
	}
	if m.Trampolines() != 1 {
		t.Fatalf("trampolines = %d, want 1", m.Trampolines())
	}
	if got := f.land(t); got != -10 {
		t.Fatalf("land = %d, want -10", got)
	}

	flip, _ := m.Handle("flip")
	m.Uninstall(flip)
	if !m.Installed("zero") {
		t.Fatalf("zero dropped with flip")
	}
	if got := f.land(t); got != 10 {
		t.Fatalf("land = %d, want 10", got)
	}

	m.UninstallAll()
	if got := f.land(t); got != 11 {
		t.Fatalf("land = %d, want 11", got)
	}
}

func TestInstallFailures(t *testing.T) {
	f := newFixture(t)
	decl, _ := f.unit.Routine("land")
	before := decl.Fn.Instructions

	m, _ := hook.NewManager(hook.NewCatalog(f.unit),
		hook.Hook{
			Name:   "panics",
			Target: hook.Routine("actor", "land"),
			Manipulate: func(b *il.Body) error {
				b.At(1000).Op = 0
				return nil
			},
		},
		hook.Hook{
			Name:   "missing_pattern",
			Target: hook.Routine("actor", "land"),
			Manipulate: hook.Patches(il.Patch{
				Predicate:   il.MatchMethodCall("", "climb"),
				Replacement: constFunc("climb", 0),
				Count:       1,
			}),
		},
		hook.Hook{
			Name:       "optional_resumable",
			Target:     hook.Resumable("actor", "land"),
			Manipulate: replaceMember("bottom", 0),
			Optional:   true,
		},
		hook.Hook{Name: "flip", Target: hook.Routine("actor", "land"), Manipulate: replaceMember("bottom", -10)},
	)

	err := m.InstallAll()
	if err == nil {
		t.Fatalf("install all succeeded, want errors")
	}
	if !errors.Is(err, il.ErrPatternNotFound) {
		t.Fatalf("error %v does not wrap ErrPatternNotFound", err)
	}
	if errors.Is(err, hook.ErrRoutineNotFound) {
		t.Fatalf("optional hook reported: %v", err)
	}
	var hookErr *hook.Error
	if !errors.As(err, &hookErr) {
		t.Fatalf("error %v is not a *hook.Error", err)
	}

	for _, name := range []string{"panics", "missing_pattern", "optional_resumable"} {
		if m.Installed(name) {
			t.Errorf("%s installed", name)
		}
	}
	if !m.Installed("flip") {
		t.Fatalf("flip not installed after earlier failures")
	}
	if &decl.Fn.Instructions[0] == &before[0] {
		t.Fatalf("flip did not rewrite the routine")
	}
	if got := f.land(t); got != -9 {
		t.Fatalf("land = %d, want -9", got)
	}
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	b := simple.NewBackend()
	b.Buffered = false
	b.Configure(1, nil)
	b.Writer = &buf
	commonlog.SetBackend(b)
	t.Cleanup(func() { commonlog.SetBackend(nil) })
	return &buf
}

func TestDirectInstallLogsFailureByName(t *testing.T) {
	f := newFixture(t)
	m, _ := hook.NewManager(hook.NewCatalog(f.unit),
		hook.Hook{
			Name:   "missing_pattern",
			Target: hook.Routine("actor", "land"),
			Manipulate: hook.Patches(il.Patch{
				Predicate:   il.MatchMethodCall("", "climb"),
				Replacement: constFunc("climb", 0),
				Count:       1,
			}),
		},
		hook.Hook{
			Name:       "optional_resumable",
			Target:     hook.Resumable("actor", "land"),
			Manipulate: replaceMember("bottom", 0),
			Optional:   true,
		},
	)

	tests := []struct {
		name string
		want string
	}{
		{"missing_pattern", "hook: missing_pattern not installed"},
		{"optional_resumable", "hook: optional optional_resumable skipped"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			buf := captureLog(t)
			if _, err := m.Install(tc.name); err == nil {
				t.Fatalf("install succeeded")
			}
			if !bytes.Contains(buf.Bytes(), []byte(tc.want)) {
				t.Fatalf("log %q lacks %q", buf.String(), tc.want)
			}
		})
	}
}

func TestUnknownHookAndDuplicates(t *testing.T) {
	f := newFixture(t)
	h := hook.Hook{Name: "flip", Target: hook.Routine("actor", "land"), Manipulate: replaceMember("bottom", 0)}
	if _, err := hook.NewManager(hook.NewCatalog(f.unit), h, h); !errors.Is(err, hook.ErrDuplicateHook) {
		t.Fatalf("duplicate declaration: %v", err)
	}

	m, _ := hook.NewManager(hook.NewCatalog(f.unit), h)
	if _, err := m.Install("nope"); !errors.Is(err, hook.ErrUnknownHook) {
		t.Fatalf("unknown hook: %v", err)
	}
	m.Uninstall(nil)
}

func TestResumableHookAppliesMidSuspension(t *testing.T) {
	f := newFixture(t)
	m, _ := hook.NewManager(hook.NewCatalog(f.unit), hook.Hook{
		Name:       "dash_flip",
		Target:     hook.Resumable("actor", "dash"),
		Manipulate: replaceMember("bottom", -10),
	})

	co, err := f.unit.Start("dash", f.self)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if co.Decl() == nil {
		t.Fatalf("coroutine not traced to its body")
	}

	step := func(wantRunning bool) {
		t.Helper()
		running, err := co.Resume()
		if err != nil {
			t.Fatalf("resume: %v", err)
		}
		if running != wantRunning {
			t.Fatalf("running = %v, want %v", running, wantRunning)
		}
	}

	step(true)
	h, err := m.Install("dash_flip")
	if err != nil {
		t.Fatalf("install: %v", err)
	}
	step(true)
	m.Uninstall(h)
	step(false)

	want := []int64{10, -10, 10}
	if len(f.steps) != len(want) {
		t.Fatalf("steps = %v, want %v", f.steps, want)
	}
	for i := range want {
		if f.steps[i] != want[i] {
			t.Fatalf("steps = %v, want %v", f.steps, want)
		}
	}
}

func TestLocate(t *testing.T) {
	f := newFixture(t)
	c := hook.NewCatalog(f.unit)

	d, err := c.Locate("actor", "dash")
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if d.Name != "<dash>d__0" || d.Kind != script.KindResumable {
		t.Fatalf("located %s (%s)", d.Name, d.Kind)
	}

	if _, err := c.Locate("actor", "land"); !errors.Is(err, hook.ErrRoutineNotFound) {
		t.Fatalf("land: %v", err)
	}
	if _, err := c.Locate("ghost", "dash"); !errors.Is(err, hook.ErrUnitNotFound) {
		t.Fatalf("ghost: %v", err)
	}
	if names := c.Names(); len(names) != 1 || names[0] != "actor" {
		t.Fatalf("names = %v", names)
	}
}
