package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    func(c Config) bool
		wantErr bool
	}{
		{
			name: "empty keeps defaults",
			data: "",
			want: func(c Config) bool {
				return c.Window.Width == 960 && c.Game.Level == "intro" && c.Prefabs.Dir == "prefabs"
			},
		},
		{
			name: "overrides",
			data: `
[window]
width = 640
title = "flip"

[game]
level = "flipper"
hot-reload = true

[log]
verbosity = 2
file = "run.log"
`,
			want: func(c Config) bool {
				return c.Window.Width == 640 && c.Window.Height == 540 && c.Window.Title == "flip" &&
					c.Game.Level == "flipper" && c.Game.HotReload && c.Log.Verbosity == 2 && c.Log.File == "run.log"
			},
		},
		{
			name: "invalid values clamp",
			data: "[window]\nwidth = -1\n[log]\nverbosity = -3\n[game]\nlevel = \"\"\n",
			want: func(c Config) bool { return c.Window.Width == 960 && c.Log.Verbosity == 0 && c.Game.Level == "intro" },
		},
		{name: "unknown key", data: "[window]\ndepth = 3\n", wantErr: true},
		{name: "malformed", data: "[window\n", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.data))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse succeeded, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if !tt.want(cfg) {
				t.Fatalf("unexpected config %+v", cfg)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(filepath.Join(dir, "missing.toml"))
	if err != nil {
		t.Fatalf("Load missing: %v", err)
	}
	if cfg.Path != "" || cfg.Window.Title != "gravityhelper" {
		t.Fatalf("missing file did not yield defaults: %+v", cfg)
	}

	path := filepath.Join(dir, DefaultPath)
	if err := os.WriteFile(path, []byte("[prefabs]\ndir = \"\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Path != path || cfg.Prefabs.Dir != "" || cfg.Prefabs.LevelsDir != "levels" {
		t.Fatalf("unexpected config %+v", cfg)
	}

	if err := os.WriteFile(path, []byte("nonsense"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("Load of a malformed file succeeded")
	}
}
