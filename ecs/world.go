// Package ecs is the host scene runtime: a sparse-set entity/component world
// driven by an ordered list of systems.
package ecs

import (
	"github.com/milk9111/gravityhelper/ecs/component"
)

// World owns entities, their components and the per-frame event queue.
type World struct {
	entities  entityStore
	stores    map[component.ComponentID]*SparseSet
	onDestroy []func(*World, Entity)
	events    EventQueue
	dt        float64
	frame     uint64
}

// NewWorld creates an empty world stepping at 60 frames per second.
func NewWorld() *World {
	return &World{
		stores: make(map[component.ComponentID]*SparseSet),
		dt:     1.0 / 60.0,
	}
}

// CreateEntity allocates a new entity.
func CreateEntity(w *World) Entity {
	return w.entities.create()
}

// DestroyEntity runs the destroy callbacks and then drops every component of
// e. It returns false for dead handles.
func DestroyEntity(w *World, e Entity) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	for _, fn := range w.onDestroy {
		fn(w, e)
	}
	for _, s := range w.stores {
		s.Remove(e)
	}
	return w.entities.destroy(e)
}

func IsAlive(w *World, e Entity) bool {
	return w != nil && w.entities.isAlive(e)
}

// Entities lists the live entities in id order.
func Entities(w *World) []Entity {
	if w == nil {
		return nil
	}
	out := make([]Entity, 0, w.entities.count)
	w.entities.each(func(e Entity) { out = append(out, e) })
	return out
}

// Clear destroys every live entity.
func Clear(w *World) {
	for _, e := range Entities(w) {
		DestroyEntity(w, e)
	}
}

// OnDestroy registers fn to run for each destroyed entity while its
// components are still readable.
func OnDestroy(w *World, fn func(*World, Entity)) {
	if w == nil || fn == nil {
		return
	}
	w.onDestroy = append(w.onDestroy, fn)
}

// Events returns the world event queue.
func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}

// Delta is the simulated time of one frame in seconds.
func (w *World) Delta() float64 { return w.dt }

func (w *World) SetDelta(dt float64) {
	if dt > 0 {
		w.dt = dt
	}
}

func (w *World) Frame() uint64 { return w.frame }

func (w *World) store(id component.ComponentID, create bool) *SparseSet {
	s, ok := w.stores[id]
	if !ok && create {
		s = &SparseSet{}
		w.stores[id] = s
	}
	return s
}
