package system

import (
	"github.com/milk9111/gravityhelper/ecs"
	"github.com/milk9111/gravityhelper/ecs/component"
	"github.com/milk9111/gravityhelper/gravity"
	"github.com/milk9111/gravityhelper/script"
)

// PlayerSystem drives the player script: the "update" routine each frame,
// or one step of the "dash" routine while a dash is running.
type PlayerSystem struct {
	units      Units
	controller *gravity.Controller
	dashSource *gravity.Source
	bound      *ecs.World
}

func NewPlayerSystem(units Units, c *gravity.Controller) *PlayerSystem {
	return &PlayerSystem{
		units:      units,
		controller: c,
		dashSource: c.NewSource("dash", 0),
	}
}

func (s *PlayerSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	u, ok := s.units.Unit(playerUnit)
	if !ok {
		return
	}
	s.bind(w)

	ecs.ForEach(w, component.PlayerComponent.Kind(), func(e ecs.Entity, p *component.Player) {
		if p.Actor == nil || p.Self == nil {
			return
		}
		s.controller.Track(e, p.Actor)
		if in, ok := ecs.Get(w, e, component.InputComponent.Kind()); ok {
			p.Actor.Input = *in
		}

		if !p.Dash.Done() {
			if _, err := p.Dash.Resume(); err != nil {
				log.Errorf("player: entity=%d dash error: %v", e.ID(), err)
			}
		} else {
			res, err := u.Invoke("update", p.Self)
			if err != nil {
				log.Errorf("player: entity=%d update error: %v", e.ID(), err)
				return
			}
			if script.ObjectAsString(res) == "start_dash" {
				s.startDash(w, u, e, p)
			}
		}

		s.land(w, u, e, p)
		if t, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok {
			t.X, t.Y = p.Actor.X, p.Actor.Y
		}
	})
}

func (s *PlayerSystem) bind(w *ecs.World) {
	if s.bound == w {
		return
	}
	s.bound = w
	ecs.OnDestroy(w, func(w *ecs.World, e ecs.Entity) {
		if p, ok := ecs.Get(w, e, component.PlayerComponent.Kind()); ok && p.Actor != nil {
			p.Dash.Cancel()
			s.controller.Untrack(p.Actor)
			s.controller.ClearOverride(e)
		}
	})
}

// startDash starts the dash routine and runs its first step. A gravity
// charge picked up from a refill is spent on a toggle unless the switch
// cooldown drops it; without one, dash_to_toggle asks for an ordinary
// debounced toggle.
func (s *PlayerSystem) startDash(w *ecs.World, u *script.Unit, e ecs.Entity, p *component.Player) {
	co, err := u.Start("dash", p.Self)
	if err != nil {
		log.Errorf("player: entity=%d dash start error: %v", e.ID(), err)
		return
	}
	p.Dash = co
	w.Events().Push(ecs.Event{Kind: ecs.EventDashStarted, Entity: e})

	switch {
	case p.GravityCharges > 0:
		if s.controller.Request(nil, gravity.Request{Mode: gravity.Toggle, Momentum: true, Origin: e}) {
			p.GravityCharges--
		}
	case s.controller.Behavior().DashToToggle:
		s.controller.RequestToggle(s.dashSource)
	}

	if _, err := co.Resume(); err != nil {
		log.Errorf("player: entity=%d dash error: %v", e.ID(), err)
	}
}

func (s *PlayerSystem) land(w *ecs.World, u *script.Unit, e ecs.Entity, p *component.Player) {
	onGround := p.Actor.OnGround()
	defer func() { p.WasOnGround = onGround }()
	if !onGround || p.WasOnGround {
		return
	}
	res, err := u.Invoke("feet", p.Self)
	if err != nil {
		log.Errorf("player: entity=%d feet error: %v", e.ID(), err)
		return
	}
	x, y, ok := script.ToVec(res)
	if !ok {
		return
	}
	w.Events().Push(ecs.Event{Kind: ecs.EventLanded, Entity: e, Data: [2]float64{x, y}})
}
