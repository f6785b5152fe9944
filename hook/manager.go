package hook

import (
	"errors"
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/parser"
	"github.com/milk9111/gravityhelper/il"
	"github.com/milk9111/gravityhelper/script"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("gravityhelper.hook")

// Handle is a live installation of a hook.
type Handle struct {
	hook      *Hook
	tramp     *trampoline
	installed bool
}

func (h *Handle) Name() string    { return h.hook.Name }
func (h *Handle) Installed() bool { return h != nil && h.installed }

// trampoline owns one patched routine: the pristine body and the hooks
// currently layered on it, in install order.
type trampoline struct {
	unit      *script.Unit
	decl      *script.Decl
	original  []byte
	sourceMap map[int]parser.Pos
	active    []*Handle
}

// Manager installs and uninstalls declared hooks by logical name.
type Manager struct {
	catalog *Catalog
	hooks   map[string]*Hook
	order   []string
	live    map[string]*Handle
	tramps  map[*tengo.CompiledFunction]*trampoline
}

func NewManager(catalog *Catalog, hooks ...Hook) (*Manager, error) {
	m := &Manager{
		catalog: catalog,
		hooks:   make(map[string]*Hook),
		live:    make(map[string]*Handle),
		tramps:  make(map[*tengo.CompiledFunction]*trampoline),
	}
	for _, h := range hooks {
		if err := m.Declare(h); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Declare registers a hook without installing it.
func (m *Manager) Declare(h Hook) error {
	if h.Name == "" || h.Manipulate == nil {
		return fmt.Errorf("hook: declaration needs a name and a manipulator")
	}
	if _, ok := m.hooks[h.Name]; ok {
		return fmt.Errorf("hook: %s: %w", h.Name, ErrDuplicateHook)
	}
	hk := h
	m.hooks[h.Name] = &hk
	m.order = append(m.order, h.Name)
	return nil
}

// Install applies the hook called name. Installing an installed hook
// returns the existing handle.
func (m *Manager) Install(name string) (*Handle, error) {
	h, err := m.install(name)
	if err != nil {
		if hk, ok := m.hooks[name]; ok && hk.Optional {
			log.Warningf("hook: optional %s skipped: %v", name, err)
		} else {
			log.Errorf("hook: %s not installed: %v", name, err)
		}
	}
	return h, err
}

func (m *Manager) install(name string) (*Handle, error) {
	if h, ok := m.live[name]; ok {
		return h, nil
	}
	hk, ok := m.hooks[name]
	if !ok {
		return nil, fmt.Errorf("hook: %s: %w", name, ErrUnknownHook)
	}

	unit, decl, err := hk.Target.resolve(m.catalog)
	if err != nil {
		return nil, &Error{Hook: name, Target: hk.Target, Err: err}
	}

	t, ok := m.tramps[decl.Fn]
	if !ok {
		t = &trampoline{
			unit:      unit,
			decl:      decl,
			original:  decl.Fn.Instructions,
			sourceMap: decl.Fn.SourceMap,
		}
	}
	if err := rewrite(t, hk); err != nil {
		return nil, &Error{Hook: name, Target: hk.Target, Err: err}
	}

	h := &Handle{hook: hk, tramp: t, installed: true}
	t.active = append(t.active, h)
	m.tramps[decl.Fn] = t
	m.live[name] = h
	log.Infof("hook: installed %s on %s", name, hk.Target)
	return h, nil
}

// Uninstall removes the hook. The routine is rebuilt from its pristine body
// with the remaining hooks, or restored outright when none remain.
// Uninstalling twice is a no-op.
func (m *Manager) Uninstall(h *Handle) {
	if h == nil || !h.installed {
		return
	}
	h.installed = false
	delete(m.live, h.hook.Name)

	t := h.tramp
	for i, a := range t.active {
		if a == h {
			t.active = append(t.active[:i], t.active[i+1:]...)
			break
		}
	}

	t.decl.Fn.Instructions = t.original
	t.decl.Fn.SourceMap = t.sourceMap
	kept := t.active[:0]
	for _, a := range t.active {
		if err := rewrite(t, a.hook); err != nil {
			// A hook that only matched on top of the removed one goes too.
			log.Errorf("hook: %s dropped while rebuilding %s: %v", a.hook.Name, a.hook.Target, err)
			a.installed = false
			delete(m.live, a.hook.Name)
			continue
		}
		kept = append(kept, a)
	}
	t.active = kept
	if len(t.active) == 0 {
		delete(m.tramps, t.decl.Fn)
	}
	log.Infof("hook: uninstalled %s", h.hook.Name)
}

// InstallAll installs every declared hook in declaration order. A failing
// hook does not stop the others. Failures of required hooks are returned
// joined; optional ones are logged and skipped.
func (m *Manager) InstallAll() error {
	var errs []error
	for _, name := range m.order {
		if _, err := m.Install(name); err != nil && !m.hooks[name].Optional {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// UninstallAll removes every installed hook, newest first.
func (m *Manager) UninstallAll() {
	for i := len(m.order) - 1; i >= 0; i-- {
		if h, ok := m.live[m.order[i]]; ok {
			m.Uninstall(h)
		}
	}
}

// Handle returns the live handle for name.
func (m *Manager) Handle(name string) (*Handle, bool) {
	h, ok := m.live[name]
	return h, ok
}

func (m *Manager) Installed(name string) bool {
	_, ok := m.live[name]
	return ok
}

// Trampolines reports how many routines are currently patched.
func (m *Manager) Trampolines() int {
	return len(m.tramps)
}

// rewrite decodes the routine's current body, runs the hook's manipulator
// and writes the result back. Panics are turned into errors so a broken
// hook cannot take the host down.
func rewrite(t *trampoline, hk *Hook) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("hook: %s: manipulator panicked: %v", hk.Name, r)
		}
	}()

	body, err := il.Decode(t.decl.Name, t.decl.Fn, t.unit)
	if err != nil {
		return err
	}
	if err := hk.Manipulate(body); err != nil {
		return err
	}
	if log.AllowLevel(commonlog.Debug) {
		log.Debugf("hook: %s patched\n%s", hk.Name, il.DumpString(body))
	}
	return body.Apply(t.decl.Fn)
}
