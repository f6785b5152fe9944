// Package prefabs holds the scene's yaml prefabs and tengo scripts. Files
// are embedded; a copy on disk under Dir takes precedence so content can be
// edited and reloaded while the game runs.
package prefabs

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

//go:embed *.yaml scripts/*.tengo
var embedded embed.FS

// Source resolves prefab and script names, preferring files under Dir.
type Source struct {
	Dir string
	FS  fs.FS
}

// Default is the source the package-level helpers use.
var Default = &Source{Dir: "prefabs", FS: embedded}

// Embedded returns the prefabs compiled into the binary.
func Embedded() fs.FS { return embedded }

// SetDir changes the disk override directory of Default. An empty dir
// disables disk overrides.
func SetDir(dir string) { Default.Dir = dir }

func Load(name string) ([]byte, error)       { return Default.Load(name) }
func LoadScript(name string) ([]byte, error) { return Default.LoadScript(name) }

func (s *Source) Load(name string) ([]byte, error) {
	return s.read(cleanPrefabPath(name))
}

func (s *Source) LoadScript(name string) ([]byte, error) {
	return s.read(cleanScriptPath(name))
}

func (s *Source) read(clean string) ([]byte, error) {
	if clean == "" {
		return nil, fmt.Errorf("prefabs: empty name")
	}
	if s.Dir != "" {
		if data, err := os.ReadFile(s.diskPath(clean)); err == nil {
			return data, nil
		}
	}
	if s.FS == nil {
		return nil, fmt.Errorf("prefabs: %s: %w", clean, fs.ErrNotExist)
	}
	return fs.ReadFile(s.FS, clean)
}

// Scripts lists the script names the source knows, without extension.
func (s *Source) Scripts() ([]string, error) {
	seen := make(map[string]bool)
	var names []string
	add := func(file string) {
		if filepath.Ext(file) != ".tengo" {
			return
		}
		name := strings.TrimSuffix(filepath.Base(file), ".tengo")
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	if s.FS != nil {
		entries, err := fs.ReadDir(s.FS, "scripts")
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("prefabs: list scripts: %w", err)
		}
		for _, e := range entries {
			add(e.Name())
		}
	}
	if s.Dir != "" {
		entries, _ := os.ReadDir(filepath.Join(s.Dir, "scripts"))
		for _, e := range entries {
			add(e.Name())
		}
	}
	return names, nil
}

func (s *Source) ModTime(name string) (time.Time, bool) {
	if s.Dir == "" {
		return time.Time{}, false
	}
	info, err := os.Stat(s.diskPath(cleanPrefabPath(name)))
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

func (s *Source) diskPath(clean string) string {
	return filepath.Join(s.Dir, filepath.FromSlash(clean))
}

func cleanPrefabPath(path string) string {
	if path == "" {
		return ""
	}
	s := filepath.ToSlash(path)
	if after, ok := strings.CutPrefix(s, "prefabs/"); ok {
		return after
	}
	return s
}

func cleanScriptPath(path string) string {
	if path == "" {
		return ""
	}

	s := filepath.ToSlash(path)

	if after, ok := strings.CutPrefix(s, "prefabs/scripts/"); ok {
		s = after
	}

	if after, ok := strings.CutPrefix(s, "prefabs/"); ok {
		s = after
	}

	if after, ok := strings.CutPrefix(s, "scripts/"); ok {
		s = after
	}

	if filepath.Ext(s) == "" {
		s += ".tengo"
	}

	return fmt.Sprintf("scripts/%s", s)
}
