// Package levels holds the yaml scene layouts.
package levels

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed *.yaml
var LevelsFS embed.FS

// Dir is checked for a level file before the embedded copy.
var Dir = "levels"

type Level struct {
	Name     string   `yaml:"name"`
	Width    float64  `yaml:"width"`
	Height   float64  `yaml:"height"`
	Solids   []Box    `yaml:"solids"`
	Entities []Entity `yaml:"entities"`
}

type Box struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"w"`
	Height float64 `yaml:"h"`
}

// Entity places a prefab. Props override prefab fields by yaml key.
type Entity struct {
	Type  string         `yaml:"type"`
	X     float64        `yaml:"x"`
	Y     float64        `yaml:"y"`
	Props map[string]any `yaml:"props,omitempty"`
}

// Clamp drops negative sizes and positions to zero.
func (l *Level) Clamp() {
	l.Width = max(0, l.Width)
	l.Height = max(0, l.Height)
	for i := range l.Solids {
		s := &l.Solids[i]
		s.X, s.Y = max(0, s.X), max(0, s.Y)
		s.Width, s.Height = max(0, s.Width), max(0, s.Height)
	}
	for i := range l.Entities {
		e := &l.Entities[i]
		e.X, e.Y = max(0, e.X), max(0, e.Y)
	}
}

// Parse decodes and clamps a level.
func Parse(data []byte) (*Level, error) {
	var lvl Level
	if err := yaml.Unmarshal(data, &lvl); err != nil {
		return nil, fmt.Errorf("levels: unmarshal: %w", err)
	}
	lvl.Clamp()
	return &lvl, nil
}

// Load reads a level by name, from Dir if present, else from the embedded
// set.
func Load(name string) (*Level, error) {
	file := name
	if filepath.Ext(file) == "" {
		file += ".yaml"
	}
	file = strings.TrimPrefix(filepath.ToSlash(file), "levels/")
	if Dir != "" {
		if data, err := os.ReadFile(filepath.Join(Dir, filepath.FromSlash(file))); err == nil {
			return parseNamed(name, data)
		}
	}
	return LoadLevelFromFS(LevelsFS, file)
}

func LoadLevelFromFS(fsys fs.FS, name string) (*Level, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("levels: read %s: %w", name, err)
	}
	return parseNamed(name, data)
}

func parseNamed(name string, data []byte) (*Level, error) {
	lvl, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, name)
	}
	if lvl.Name == "" {
		lvl.Name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	}
	return lvl, nil
}
