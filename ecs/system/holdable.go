package system

import (
	"github.com/milk9111/gravityhelper/actor"
	"github.com/milk9111/gravityhelper/ecs"
	"github.com/milk9111/gravityhelper/ecs/component"
	"github.com/milk9111/gravityhelper/gravity"
)

// HoldableSystem lets the player pick up and carry holdables. With
// switch_on_holdables set, a held item sees the player's gravity and keeps
// it for holdable_reset_time after being dropped.
type HoldableSystem struct {
	controller *gravity.Controller
	carried    ecs.Entity
}

func NewHoldableSystem(c *gravity.Controller) *HoldableSystem {
	return &HoldableSystem{controller: c}
}

func (s *HoldableSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	pe, p, ok := ecs.First(w, component.PlayerComponent.Kind())
	if !ok || p.Actor == nil {
		return
	}
	if s.carried != ecs.NoEntity && !ecs.IsAlive(w, s.carried) {
		s.carried = ecs.NoEntity
	}
	behavior := s.controller.Behavior()
	a := p.Actor

	ecs.ForEach2(w, component.HoldableComponent.Kind(), component.TransformComponent.Kind(), func(he ecs.Entity, h *component.Holdable, t *component.Transform) {
		width, height := holdableSize(w, he)
		if !h.Held {
			box := actor.Rect{X: t.X, Y: t.Y, Width: width, Height: height}
			if a.Input.Grab && s.carried == ecs.NoEntity && a.Hitbox().Intersects(box) {
				h.Held = true
				s.carried = he
			}
			return
		}

		mode := s.controller.Effective(pe)
		if !a.Input.Grab {
			h.Held = false
			s.carried = ecs.NoEntity
			if behavior.SwitchOnHoldables {
				s.controller.OverrideFor(he, mode, behavior.HoldableResetTime)
			}
			if pb, ok := ecs.Get(w, he, component.PhysicsBodyComponent.Kind()); ok && pb.Body != nil {
				vx, vy := a.Velocity()
				if mode.IsInverted() {
					vy = -vy
				}
				pb.Body.SetVelocity(vx, vy)
			}
			return
		}

		if behavior.SwitchOnHoldables {
			s.controller.SetOverride(he, mode)
		}
		hb := a.Hitbox()
		t.X = hb.CenterX() - width/2
		t.Y = hb.Top() - height
		if mode.IsInverted() {
			t.Y = hb.Bottom()
		}
		if pb, ok := ecs.Get(w, he, component.PhysicsBodyComponent.Kind()); ok && pb.Body != nil {
			placeBody(pb, t)
			pb.Body.SetVelocity(0, 0)
		}
	})
}

func holdableSize(w *ecs.World, e ecs.Entity) (float64, float64) {
	if pb, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind()); ok {
		return pb.Width, pb.Height
	}
	if sp, ok := ecs.Get(w, e, component.SpriteComponent.Kind()); ok {
		return sp.Width, sp.Height
	}
	return 0, 0
}
