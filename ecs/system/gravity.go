package system

import (
	"github.com/milk9111/gravityhelper/ecs"
	"github.com/milk9111/gravityhelper/ecs/component"
	"github.com/milk9111/gravityhelper/gravity"
)

// GravitySystem opens each frame: it captures the controller snapshot,
// advances the controller's cooldowns and fires timed toggles. It must run
// before any system that reads or requests gravity.
type GravitySystem struct {
	controller *gravity.Controller
}

func NewGravitySystem(c *gravity.Controller) *GravitySystem {
	return &GravitySystem{controller: c}
}

func (s *GravitySystem) Update(w *ecs.World) {
	if s == nil || s.controller == nil || w == nil {
		return
	}
	s.controller.BeginFrame()
	dt := w.Delta()
	s.controller.Tick(dt)

	ecs.ForEach(w, component.GravityTimerComponent.Kind(), func(e ecs.Entity, t *component.GravityTimer) {
		if t.Interval <= 0 {
			return
		}
		if t.Source == nil {
			t.Source = s.controller.NewSource("timer", 0)
		}
		t.Elapsed += dt
		if t.Elapsed < t.Interval {
			return
		}
		t.Elapsed -= t.Interval
		s.controller.Request(t.Source, gravity.Request{Mode: gravity.Toggle, Momentum: true, Origin: e})
	})
}
