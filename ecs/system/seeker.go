package system

import (
	"github.com/milk9111/gravityhelper/ecs"
	"github.com/milk9111/gravityhelper/ecs/component"
)

// seekerRest is the pause between two regenerate runs.
const seekerRest = 0.75

// SeekerSystem runs each seeker's regenerate routine, one step per frame,
// with a rest between runs.
type SeekerSystem struct {
	units Units
}

func NewSeekerSystem(units Units) *SeekerSystem {
	return &SeekerSystem{units: units}
}

func (s *SeekerSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	u, ok := s.units.Unit(seekerUnit)
	if !ok {
		return
	}
	_, p, ok := ecs.First(w, component.PlayerComponent.Kind())
	if !ok || p.Self == nil {
		return
	}

	ecs.ForEach(w, component.SeekerComponent.Kind(), func(e ecs.Entity, sk *component.Seeker) {
		defer func() {
			if t, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok {
				t.X, t.Y = sk.X, sk.Y
			}
		}()

		if !sk.Routine.Done() {
			running, err := sk.Routine.Resume()
			if err != nil {
				log.Errorf("seeker: entity=%d regenerate error: %v", e.ID(), err)
			}
			if !running {
				sk.Rest = seekerRest
			}
			return
		}

		sk.Rest = max(0, sk.Rest-w.Delta())
		if sk.Rest > 0 {
			return
		}
		co, err := u.Start("regenerate_routine", sk.Self, p.Self)
		if err != nil {
			log.Errorf("seeker: entity=%d regenerate start error: %v", e.ID(), err)
			sk.Rest = seekerRest
			return
		}
		sk.Routine = co
	})
}
