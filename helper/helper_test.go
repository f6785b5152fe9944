package helper_test

import (
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/milk9111/gravityhelper/actor"
	"github.com/milk9111/gravityhelper/ecs"
	"github.com/milk9111/gravityhelper/ecs/component"
	"github.com/milk9111/gravityhelper/ecs/system"
	"github.com/milk9111/gravityhelper/gravity"
	"github.com/milk9111/gravityhelper/helper"
	"github.com/milk9111/gravityhelper/hook"
	"github.com/milk9111/gravityhelper/il"
	"github.com/milk9111/gravityhelper/patches"
	"github.com/milk9111/gravityhelper/prefabs"
)

func embeddedOptions() helper.Options {
	return helper.Options{
		Prefabs: &prefabs.Source{FS: prefabs.Embedded()},
		Level:   "intro",
		Input:   system.NewScriptedInput(),
	}
}

func load(t *testing.T) *helper.Module {
	t.Helper()
	m, err := helper.Load(embeddedOptions())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	t.Cleanup(m.Unload)
	return m
}

func player(t *testing.T, w *ecs.World) *actor.Player {
	t.Helper()
	var found *actor.Player
	ecs.ForEach(w, component.PlayerComponent.Kind(), func(_ ecs.Entity, p *component.Player) {
		found = p.Actor
	})
	if found == nil {
		t.Fatalf("level has no player")
	}
	return found
}

func TestLoadInstallsHooksAndBuildsLevel(t *testing.T) {
	m := load(t)
	if m.HookErrors != nil {
		t.Fatalf("hook errors on the shipped scripts: %v", m.HookErrors)
	}
	for _, name := range []string{patches.PlayerUnitY, patches.PlayerMoveV, patches.PlayerFeet, patches.PlayerDash} {
		if !m.Manager.Installed(name) {
			t.Fatalf("hook %s not installed", name)
		}
	}
	if len(ecs.Entities(m.World)) == 0 {
		t.Fatalf("level built no entities")
	}
	for range 30 {
		if err := m.Update(); err != nil {
			t.Fatalf("update: %v", err)
		}
	}
	if !player(t, m.World).OnGround() {
		t.Fatalf("player not standing on the floor")
	}
}

func TestInvertedPlayerFallsToCeiling(t *testing.T) {
	m := load(t)
	m.Controller.SetGravity(gravity.Inverted, false)
	for range 120 {
		if err := m.Update(); err != nil {
			t.Fatalf("update: %v", err)
		}
	}
	p := player(t, m.World)
	if p.Top() != 8 {
		t.Fatalf("player top = %v, want 8 (ceiling)", p.Top())
	}
	if !p.OnGround() {
		t.Fatalf("player on the ceiling is not grounded")
	}
}

func TestUnloadLeavesNothing(t *testing.T) {
	m, err := helper.Load(embeddedOptions())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := m.Update(); err != nil {
		t.Fatalf("update: %v", err)
	}

	m.Unload()
	if m.Loaded() {
		t.Fatalf("module still loaded")
	}
	if n := m.Manager.Trampolines(); n != 0 {
		t.Fatalf("%d routines still patched", n)
	}
	if n := len(ecs.Entities(m.World)); n != 0 {
		t.Fatalf("%d entities survived unload", n)
	}
	if n := m.Controller.Movers(); n != 0 {
		t.Fatalf("%d movers still tracked", n)
	}
	if err := m.Update(); !errors.Is(err, helper.ErrUnloaded) {
		t.Fatalf("update after unload: err = %v", err)
	}
	m.Unload()
}

func TestLoadRunsDegradedWhenRequiredHookCannotInstall(t *testing.T) {
	fsys := fstest.MapFS{}
	err := fs.WalkDir(prefabs.Embedded(), ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(prefabs.Embedded(), path)
		fsys[path] = &fstest.MapFile{Data: data}
		return err
	})
	if err != nil {
		t.Fatalf("copy prefabs: %v", err)
	}
	fsys["scripts/player.tengo"] = &fstest.MapFile{Data: []byte(`
update := func(self) { return "normal" }
feet := func(self) { return geom.vec(0, 0) }
dash := func(self) { return func() { return false } }
`)}

	m, err := helper.Load(helper.Options{
		Prefabs: &prefabs.Source{FS: fsys},
		Level:   "intro",
		Input:   system.NewScriptedInput(),
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	defer m.Unload()

	if !errors.Is(m.HookErrors, il.ErrPatternNotFound) {
		t.Fatalf("hook errors %v do not report the missing patterns", m.HookErrors)
	}
	var hookErr *hook.Error
	if !errors.As(m.HookErrors, &hookErr) {
		t.Fatalf("hook errors %v carry no hook name", m.HookErrors)
	}
	for _, name := range []string{patches.PlayerUnitY, patches.PlayerMoveV, patches.PlayerDash} {
		if m.Manager.Installed(name) {
			t.Errorf("%s installed on a reshaped script", name)
		}
	}
	if !m.Manager.Installed(patches.SeekerRegenerate) {
		t.Fatalf("seeker hook not installed")
	}
	for range 10 {
		if err := m.Update(); err != nil {
			t.Fatalf("update: %v", err)
		}
	}
}

func TestLoadUnknownLevel(t *testing.T) {
	opts := embeddedOptions()
	opts.Level = "missing"
	if _, err := helper.Load(opts); err == nil {
		t.Fatalf("load of a missing level succeeded")
	}
}

func TestHostReloadSwapsModule(t *testing.T) {
	h, err := helper.NewHost(embeddedOptions(), false)
	if err != nil {
		t.Fatalf("new host: %v", err)
	}
	old := h.Module()
	old.Controller.SetGravity(gravity.Inverted, false)

	if err := h.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if old.Loaded() {
		t.Fatalf("old module still loaded after reload")
	}
	next := h.Module()
	if next == old || !next.Loaded() {
		t.Fatalf("reload did not produce a fresh module")
	}
	if next.Controller.Mode() != gravity.Normal {
		t.Fatalf("gravity %s survived reload", next.Controller.Mode())
	}
	if err := h.Update(); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if next.Loaded() {
		t.Fatalf("close left the module loaded")
	}
}
