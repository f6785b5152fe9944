package system

import (
	"github.com/milk9111/gravityhelper/ecs"
	"github.com/milk9111/gravityhelper/ecs/component"
	"github.com/milk9111/gravityhelper/gravity"
)

// ListenerSystem attaches a controller listener for every GravityListener
// component and detaches it when the entity is destroyed.
type ListenerSystem struct {
	controller *gravity.Controller
	bound      *ecs.World
}

func NewListenerSystem(c *gravity.Controller) *ListenerSystem {
	return &ListenerSystem{controller: c}
}

func (s *ListenerSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	s.bind(w)
	ecs.ForEach(w, component.GravityListenerComponent.Kind(), func(e ecs.Entity, gl *component.GravityListener) {
		if gl.Listener != nil {
			return
		}
		gl.Listener = gravity.NewListener(func(ch gravity.Change) {
			s.onChange(w, e, ch)
		})
		s.controller.Listeners().Attach(gl.Listener)
		s.onChange(w, e, gravity.Change{Mode: s.controller.Mode(), Previous: s.controller.Mode()})
	})
}

func (s *ListenerSystem) bind(w *ecs.World) {
	if s.bound == w {
		return
	}
	s.bound = w
	ecs.OnDestroy(w, func(w *ecs.World, e ecs.Entity) {
		if gl, ok := ecs.Get(w, e, component.GravityListenerComponent.Kind()); ok && gl.Listener != nil {
			s.controller.Listeners().Detach(gl.Listener)
			gl.Listener = nil
		}
	})
}

func (s *ListenerSystem) onChange(w *ecs.World, e ecs.Entity, ch gravity.Change) {
	gl, ok := ecs.Get(w, e, component.GravityListenerComponent.Kind())
	if !ok {
		return
	}
	if gl.FlipSprite {
		if sp, ok := ecs.Get(w, e, component.SpriteComponent.Kind()); ok {
			sp.FlipY = s.controller.ShouldInvert(e)
		}
	}
	if gl.Emit && ch.Mode != ch.Previous {
		w.Events().Push(ecs.Event{Kind: ecs.EventGravityChanged, Entity: e, Data: ch})
	}
}
