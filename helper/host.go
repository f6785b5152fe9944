package helper

import (
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/gravityhelper/levels"
	"github.com/milk9111/gravityhelper/prefabs"
)

// Host keeps the current module and swaps it for a fresh one when watched
// content changes. Reloading happens on the caller's goroutine between
// frames.
type Host struct {
	opts    Options
	module  *Module
	watcher *prefabs.Watcher
}

// NewHost loads the first module. With hotReload the prefab and level
// directories that exist on disk are watched.
func NewHost(opts Options, hotReload bool) (*Host, error) {
	m, err := Load(opts)
	if err != nil {
		return nil, err
	}
	h := &Host{opts: opts, module: m}
	if hotReload {
		h.watch()
	}
	return h, nil
}

func (h *Host) watch() {
	src := h.opts.Prefabs
	if src == nil {
		src = prefabs.Default
	}
	var dirs []string
	for _, dir := range []string{src.Dir, levels.Dir} {
		if dir == "" {
			continue
		}
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			dirs = append(dirs, dir)
		}
	}
	if len(dirs) == 0 {
		log.Warningf("helper: hot reload: no content directories on disk")
		return
	}
	w, err := prefabs.NewWatcher(dirs...)
	if err != nil {
		log.Warningf("helper: hot reload disabled: %v", err)
		return
	}
	h.watcher = w
	log.Infof("helper: watching %v", dirs)
}

func (h *Host) Module() *Module { return h.module }

// Reload builds a new module and, once it loaded, unloads the old one. A
// failed reload keeps the current module running.
func (h *Host) Reload() error {
	next, err := Load(h.opts)
	if err != nil {
		log.Errorf("helper: reload failed, keeping current module: %v", err)
		return err
	}
	h.module.Unload()
	h.module = next
	return nil
}

// Update reloads if watched files changed, then runs one frame.
func (h *Host) Update() error {
	if h.watcher != nil {
		if changed := h.watcher.Drain(); len(changed) > 0 {
			log.Infof("helper: reloading after changes to %v", changed)
			_ = h.Reload()
		}
	}
	return h.module.Update()
}

func (h *Host) Draw(screen *ebiten.Image) {
	h.module.Draw(screen)
}

// Close stops watching and unloads the module.
func (h *Host) Close() error {
	var err error
	if h.watcher != nil {
		err = h.watcher.Close()
		h.watcher = nil
	}
	h.module.Unload()
	return err
}
