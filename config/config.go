// Package config handles the config.toml application configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
)

const DefaultPath = "config.toml"

type Config struct {
	Window  Window  `toml:"window"`
	Log     Log     `toml:"log"`
	Game    Game    `toml:"game"`
	Prefabs Prefabs `toml:"prefabs"`

	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-"`
}

type Window struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
}

type Log struct {
	// Verbosity follows commonlog: 0 is errors only, each step adds a level.
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

type Game struct {
	Level     string `toml:"level"`
	HotReload bool   `toml:"hot-reload"`
	Debug     bool   `toml:"debug"`
}

type Prefabs struct {
	// Dir overrides embedded prefabs and scripts. Empty disables overrides.
	Dir       string `toml:"dir"`
	LevelsDir string `toml:"levels-dir"`
}

func Default() Config {
	return Config{
		Window:  Window{Width: 960, Height: 540, Title: "gravityhelper"},
		Log:     Log{Verbosity: 1},
		Game:    Game{Level: "intro"},
		Prefabs: Prefabs{Dir: "prefabs", LevelsDir: "levels"},
	}
}

// Parse reads data over the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("config: unknown keys %v", undecoded)
	}
	cfg.clamp()
	return cfg, nil
}

// Load reads path. A missing file yields the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: cannot read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%w (%s)", err, path)
	}
	cfg.Path = path
	return cfg, nil
}

func (c *Config) clamp() {
	def := Default()
	if c.Window.Width <= 0 {
		c.Window.Width = def.Window.Width
	}
	if c.Window.Height <= 0 {
		c.Window.Height = def.Window.Height
	}
	if c.Window.Title == "" {
		c.Window.Title = def.Window.Title
	}
	c.Log.Verbosity = max(0, c.Log.Verbosity)
	if c.Game.Level == "" {
		c.Game.Level = def.Game.Level
	}
}
