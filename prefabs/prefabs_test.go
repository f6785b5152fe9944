package prefabs

import (
	"image/color"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"testing/fstest"
	"time"

	"github.com/milk9111/gravityhelper/gravity"
)

func testSource(dir string) *Source {
	return &Source{Dir: dir, FS: fstest.MapFS{
		"spring.yaml":             {Data: []byte("orientation: ceiling\ngravity: inverted\nplayer_can_use: true\nsize: {width: 16, height: 6}\nsprite: {color: \"#ff000080\"}\n")},
		"gravity_controller.yaml": {Data: []byte("behavior:\n  switch_cooldown: -2\n  dash_to_toggle: true\n")},
		"scripts/player.tengo":    {Data: []byte("update := func(self) {}\n")},
		"scripts/notes.txt":       {Data: []byte("ignored")},
	}}
}

func TestLoadSpecFrom(t *testing.T) {
	spec, err := LoadSpecFrom[SpringSpec](testSource(""), "prefabs/spring.yaml")
	if err != nil {
		t.Fatalf("load spring: %v", err)
	}
	if spec.Orientation != "ceiling" || spec.Gravity != gravity.Inverted {
		t.Fatalf("unexpected spring spec %+v", spec)
	}
	if spec.Cooldown != nil {
		t.Fatalf("expected unset cooldown, got %v", *spec.Cooldown)
	}
	if want := (color.RGBA{R: 255, A: 128}); spec.Sprite.Color.RGBA != want {
		t.Fatalf("expected color %v, got %v", want, spec.Sprite.Color.RGBA)
	}

	if _, err := LoadSpecFrom[SpringSpec](testSource(""), "missing.yaml"); err == nil {
		t.Fatalf("expected error for missing prefab")
	}
}

func TestOverlayKeepsUnsetFields(t *testing.T) {
	base := RefillSpec{Charges: 1, RefillsDash: true, RespawnTime: 2.5, Size: SizeSpec{Width: 8, Height: 8}}
	got, err := Overlay(base, map[string]any{"one_use": true, "charges": 2})
	if err != nil {
		t.Fatalf("overlay: %v", err)
	}
	if !got.OneUse || got.Charges != 2 {
		t.Fatalf("expected props applied, got %+v", got)
	}
	if !got.RefillsDash || got.RespawnTime != 2.5 || got.Size.Width != 8 {
		t.Fatalf("expected base fields kept, got %+v", got)
	}

	if _, err := Overlay(base, map[string]any{"charges": "many"}); err == nil {
		t.Fatalf("expected error for bad prop type")
	}
}

func TestLoadGravityConfigClamps(t *testing.T) {
	cfg, err := LoadGravityConfig(testSource(""))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Behavior.SwitchCooldown != 0 {
		t.Fatalf("expected clamped switch cooldown, got %v", cfg.Behavior.SwitchCooldown)
	}
	if !cfg.Behavior.DashToToggle || cfg.Behavior.SpringCooldown != gravity.DefaultSpringCooldown {
		t.Fatalf("expected overrides over defaults, got %+v", cfg.Behavior)
	}
}

func TestScriptsAndPaths(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "scripts"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "scripts", "seeker.tengo"), []byte("x := 1"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "scripts", "player.tengo"), []byte("from disk"), 0o644); err != nil {
		t.Fatal(err)
	}
	src := testSource(dir)

	names, err := src.Scripts()
	if err != nil {
		t.Fatalf("scripts: %v", err)
	}
	slices.Sort(names)
	if !slices.Equal(names, []string{"player", "seeker"}) {
		t.Fatalf("unexpected scripts %v", names)
	}

	data, err := src.LoadScript("player")
	if err != nil || string(data) != "from disk" {
		t.Fatalf("expected disk override, got %q %v", data, err)
	}

	tests := map[string]string{
		"player":                       "scripts/player.tengo",
		"player.tengo":                 "scripts/player.tengo",
		"scripts/player.tengo":         "scripts/player.tengo",
		"prefabs/scripts/player.tengo": "scripts/player.tengo",
	}
	for in, want := range tests {
		if got := cleanScriptPath(in); got != want {
			t.Fatalf("cleanScriptPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEmbeddedPrefabsParse(t *testing.T) {
	src := &Source{FS: Embedded()}
	if _, err := LoadGravityConfig(src); err != nil {
		t.Fatalf("gravity config: %v", err)
	}
	if _, err := LoadSpecFrom[PlayerSpec](src, "player.yaml"); err != nil {
		t.Fatalf("player: %v", err)
	}
	if _, err := LoadSpecFrom[SpringSpec](src, "spring.yaml"); err != nil {
		t.Fatalf("spring: %v", err)
	}
	if _, err := LoadSpecFrom[RefillSpec](src, "refill.yaml"); err != nil {
		t.Fatalf("refill: %v", err)
	}
	if _, err := LoadSpecFrom[HoldableSpec](src, "holdable.yaml"); err != nil {
		t.Fatalf("holdable: %v", err)
	}
	if _, err := LoadSpecFrom[SeekerSpec](src, "seeker.yaml"); err != nil {
		t.Fatalf("seeker: %v", err)
	}
}

func TestWatcherReportsScriptChanges(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("watcher: %v", err)
	}
	defer w.Close()

	file := filepath.Join(dir, "player.tengo")
	if err := os.WriteFile(file, []byte("x := 1"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case name := <-w.Events:
		if name != file {
			t.Fatalf("expected %s, got %s", file, name)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for watch event")
	}
}
