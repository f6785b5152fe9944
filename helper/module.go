// Package helper owns the module lifecycle. Load builds a fresh controller,
// compiles the scripts, installs every declared hook and populates a world;
// Unload tears all of it down again.
package helper

import (
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/gravityhelper/actor"
	"github.com/milk9111/gravityhelper/ecs"
	"github.com/milk9111/gravityhelper/ecs/entity"
	"github.com/milk9111/gravityhelper/ecs/system"
	"github.com/milk9111/gravityhelper/gravity"
	"github.com/milk9111/gravityhelper/hook"
	"github.com/milk9111/gravityhelper/levels"
	"github.com/milk9111/gravityhelper/patches"
	"github.com/milk9111/gravityhelper/prefabs"
	"github.com/milk9111/gravityhelper/script"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("gravityhelper.helper")

const (
	// FrameDelta is the fixed simulation step.
	FrameDelta   = 1.0 / 60
	DefaultLevel = "intro"
)

var ErrUnloaded = errors.New("helper: module unloaded")

type Options struct {
	// Prefabs defaults to prefabs.Default.
	Prefabs *prefabs.Source
	Level   string
	// Input defaults to the keyboard.
	Input system.InputSource
	Debug bool
}

// Module is one loaded instance of the gravity helper and the scene it
// drives.
type Module struct {
	Controller *gravity.Controller
	Catalog    *hook.Catalog
	Manager    *hook.Manager
	World      *ecs.World
	Level      *levels.Level
	// HookErrors holds the joined install failures of required hooks. The
	// module still runs; the features those hooks carry are degraded.
	HookErrors error

	scheduler *ecs.Scheduler
	physics   *system.PhysicsSystem
	loaded    bool
}

// Load builds a module. A hook that does not install degrades the module
// and is reported in HookErrors; any other failure leaves nothing behind.
func Load(opts Options) (*Module, error) {
	src := opts.Prefabs
	if src == nil {
		src = prefabs.Default
	}

	cfg, err := prefabs.LoadGravityConfig(src)
	if err != nil {
		return nil, err
	}
	controller := gravity.NewController(cfg.Behavior, cfg.Momentum)

	units, err := loadUnits(src)
	if err != nil {
		return nil, err
	}
	catalog := hook.NewCatalog(units...)

	manager, err := hook.NewManager(catalog, patches.Hooks(patches.NewDelegates(controller))...)
	if err != nil {
		return nil, err
	}
	hookErrs := manager.InstallAll()
	if hookErrs != nil {
		log.Errorf("helper: running degraded: %v", hookErrs)
	}

	name := opts.Level
	if name == "" {
		name = DefaultLevel
	}
	lvl, err := levels.Load(name)
	if err != nil {
		manager.UninstallAll()
		return nil, err
	}

	world := ecs.NewWorld()
	world.SetDelta(FrameDelta)
	ctx := &entity.Context{World: world, Solids: actor.NewSolids(), Prefabs: src}
	if err := entity.BuildLevel(ctx, lvl); err != nil {
		manager.UninstallAll()
		return nil, err
	}

	physics := system.NewPhysicsSystem(controller)
	m := &Module{
		Controller: controller,
		Catalog:    catalog,
		Manager:    manager,
		World:      world,
		Level:      lvl,
		HookErrors: hookErrs,
		physics:    physics,
		loaded:     true,
		scheduler: ecs.NewScheduler(
			system.NewInputSystem(opts.Input),
			system.NewGravitySystem(controller),
			system.NewPlayerSystem(catalog, controller),
			system.NewSpringSystem(controller),
			system.NewRefillSystem(),
			system.NewHoldableSystem(controller),
			system.NewSeekerSystem(catalog),
			physics,
			system.NewListenerSystem(controller),
			system.NewRenderSystem(controller, physics, opts.Debug),
		),
	}
	log.Infof("helper: loaded level %s with %d units", lvl.Name, len(units))
	return m, nil
}

func loadUnits(src *prefabs.Source) ([]*script.Unit, error) {
	names, err := src.Scripts()
	if err != nil {
		return nil, err
	}
	env := script.Env{"geom": script.Geom()}
	units := make([]*script.Unit, 0, len(names))
	for _, name := range names {
		data, err := src.LoadScript(name)
		if err != nil {
			return nil, fmt.Errorf("helper: read script %s: %w", name, err)
		}
		u, err := script.Load(name, data, env)
		if err != nil {
			return nil, fmt.Errorf("helper: load script %s: %w", name, err)
		}
		units = append(units, u)
	}
	return units, nil
}

func (m *Module) Loaded() bool { return m != nil && m.loaded }

// Update advances the scene by one frame.
func (m *Module) Update() error {
	if !m.Loaded() {
		return ErrUnloaded
	}
	m.scheduler.Update(m.World)
	return nil
}

func (m *Module) Draw(screen *ebiten.Image) {
	if !m.Loaded() {
		return
	}
	m.scheduler.Draw(m.World, screen)
}

// Unload removes every hook and destroys the scene. Calling it twice is a
// no-op.
func (m *Module) Unload() {
	if !m.Loaded() {
		return
	}
	m.Manager.UninstallAll()
	ecs.Clear(m.World)
	m.Controller.Listeners().Compact()
	m.loaded = false
	log.Infof("helper: unloaded level %s", m.Level.Name)
}

func (m *Module) Physics() *system.PhysicsSystem { return m.physics }
