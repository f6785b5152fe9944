package system

import (
	"reflect"

	"github.com/milk9111/gravityhelper/accessor"
	"github.com/milk9111/gravityhelper/actor"
	"github.com/milk9111/gravityhelper/ecs"
	"github.com/milk9111/gravityhelper/ecs/component"
	"github.com/milk9111/gravityhelper/gravity"
)

const (
	springBounceSpeed = 185.0
	springSideSpeed   = 240.0
	springSideLift    = 140.0
)

var (
	playerRefillDash    = accessor.LazyOf[actor.Player]("RefillDash")
	playerRefillStamina = accessor.LazyOf[actor.Player]("RefillStamina")
	playerOnGround      = accessor.NewField[actor.Player, bool]("onGround")
)

// SpringSystem bounces players off springs. A spring with a gravity mode
// sets it first, debounced by the spring's own cooldown, so the bounce is
// computed in the player's new frame.
type SpringSystem struct {
	controller *gravity.Controller
	bound      *ecs.World
}

func NewSpringSystem(c *gravity.Controller) *SpringSystem {
	return &SpringSystem{controller: c}
}

func (s *SpringSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	s.bind(w)

	ecs.ForEach2(w, component.SpringComponent.Kind(), component.TransformComponent.Kind(), func(se ecs.Entity, sp *component.Spring, st *component.Transform) {
		if !sp.PlayerCanUse {
			return
		}
		if sp.Source == nil {
			cd := sp.Cooldown
			if cd < 0 {
				cd = s.controller.Behavior().SpringCooldown
			}
			sp.Source = s.controller.NewSource("spring", cd)
		}
		box := sp.Box.Offset(st.X, st.Y)
		ecs.ForEach(w, component.PlayerComponent.Kind(), func(pe ecs.Entity, p *component.Player) {
			if p.Actor == nil || !p.Actor.Hitbox().Intersects(box) {
				return
			}
			s.touch(w, se, sp, pe, p.Actor)
		})
	})
}

func (s *SpringSystem) bind(w *ecs.World) {
	if s.bound == w {
		return
	}
	s.bound = w
	ecs.OnDestroy(w, func(w *ecs.World, e ecs.Entity) {
		if sp, ok := ecs.Get(w, e, component.SpringComponent.Kind()); ok && sp.Source != nil {
			s.controller.RemoveSource(sp.Source)
			sp.Source = nil
		}
	})
}

// movingAway reports whether the player already leaves the spring faster
// than it would push. Vertical checks use world velocity.
func movingAway(o component.Orientation, a *actor.Player, inverted bool) bool {
	vy := a.SpeedY
	if inverted {
		vy = -vy
	}
	switch o {
	case component.OrientationFloor:
		return vy < 0
	case component.OrientationCeiling:
		return vy > 0
	case component.OrientationWallLeft:
		return a.SpeedX > springSideSpeed
	case component.OrientationWallRight:
		return a.SpeedX < -springSideSpeed
	}
	return true
}

func (s *SpringSystem) touch(w *ecs.World, se ecs.Entity, sp *component.Spring, pe ecs.Entity, a *actor.Player) {
	if movingAway(sp.Orientation, a, s.controller.ShouldInvert(pe)) {
		return
	}
	if sp.Gravity != gravity.None {
		s.controller.Request(sp.Source, gravity.Request{Mode: sp.Gravity, Momentum: true, Origin: se})
	}
	s.bounce(sp.Orientation, a, s.controller.ShouldInvert(pe))
	w.Events().Push(ecs.Event{Kind: ecs.EventSpringBounce, Entity: se, Data: pe})
}

// bounce launches the player away from the spring. Speeds are local, so a
// world-space push is flipped for an inverted player. A push towards the
// player's own floor is an inverted bounce and clears the movement state the
// momentum policy names.
func (s *SpringSystem) bounce(o component.Orientation, a *actor.Player, inverted bool) {
	switch o {
	case component.OrientationFloor, component.OrientationCeiling:
		vy := -springBounceSpeed
		if o == component.OrientationCeiling {
			vy = springBounceSpeed
		}
		if inverted {
			vy = -vy
		}
		if vy > 0 {
			s.controller.BoundPolicy(reflect.TypeOf(a)).Reset(a)
		}
		a.SpeedX = 0
		a.SpeedY = vy
	case component.OrientationWallLeft:
		a.SpeedX = springSideSpeed
		a.SpeedY = -springSideLift
		a.Facing = 1
	case component.OrientationWallRight:
		a.SpeedX = -springSideSpeed
		a.SpeedY = -springSideLift
		a.Facing = -1
	}
	playerOnGround.Set(a, false)
	playerRefillDash.Invoke(a)
	playerRefillStamina.Invoke(a)
}
