package system

import (
	"github.com/milk9111/gravityhelper/ecs"
	"github.com/milk9111/gravityhelper/ecs/component"
)

// lowStamina is the stamina below which a stamina refill counts as used.
const lowStamina = 20.0

// RefillSystem runs each refill's idle, consumed and respawning states.
type RefillSystem struct{}

func NewRefillSystem() *RefillSystem {
	return &RefillSystem{}
}

func (s *RefillSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	ecs.ForEach2(w, component.RefillComponent.Kind(), component.TransformComponent.Kind(), func(re ecs.Entity, r *component.Refill, t *component.Transform) {
		switch r.State {
		case component.RefillIdle:
			box := r.Box.Offset(t.X, t.Y)
			ecs.ForEach(w, component.PlayerComponent.Kind(), func(pe ecs.Entity, p *component.Player) {
				if r.State != component.RefillIdle || p.Actor == nil || !p.Actor.Hitbox().Intersects(box) {
					return
				}
				if !use(r, p) {
					return
				}
				r.State = component.RefillConsumed
				r.Timer = r.RespawnTime
				setHidden(w, re, true)
				w.Events().Push(ecs.Event{Kind: ecs.EventRefillUsed, Entity: re, Data: pe})
			})
		case component.RefillConsumed:
			if r.OneUse {
				ecs.DestroyEntity(w, re)
				return
			}
			r.State = component.RefillRespawning
		case component.RefillRespawning:
			r.Timer = max(0, r.Timer-w.Delta())
			if r.Timer > 0 {
				return
			}
			r.State = component.RefillIdle
			setHidden(w, re, false)
			w.Events().Push(ecs.Event{Kind: ecs.EventRefillRespawn, Entity: re})
		}
	})
}

// use hands the refill's charges to the player. It reports false when the
// player had nothing to gain, leaving the refill in place.
func use(r *component.Refill, p *component.Player) bool {
	used := false
	if p.GravityCharges < r.Charges {
		p.GravityCharges = r.Charges
		used = true
	}
	if r.RefillsDash {
		out := playerRefillDash.Invoke(p.Actor)
		if refilled, _ := out[0].(bool); refilled {
			used = true
		}
	}
	if r.RefillsStamina && p.Actor.Stamina < lowStamina {
		playerRefillStamina.Invoke(p.Actor)
		used = true
	}
	return used
}

func setHidden(w *ecs.World, e ecs.Entity, hidden bool) {
	if sp, ok := ecs.Get(w, e, component.SpriteComponent.Kind()); ok {
		sp.Hidden = hidden
	}
}
