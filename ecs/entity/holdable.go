package entity

import (
	"github.com/milk9111/gravityhelper/ecs"
	"github.com/milk9111/gravityhelper/ecs/component"
	"github.com/milk9111/gravityhelper/levels"
	"github.com/milk9111/gravityhelper/prefabs"
)

func NewHoldable(ctx *Context, at levels.Entity) (ecs.Entity, error) {
	spec, err := loadSpec[prefabs.HoldableSpec](ctx, "holdable.yaml", at.Props)
	if err != nil {
		return ecs.NoEntity, err
	}
	b := newBuilder(ctx.World)
	add(b, component.HoldableComponent.Kind(), &component.Holdable{})
	add(b, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{
		Width:        spec.Size.Width,
		Height:       spec.Size.Height,
		Mass:         max(0, spec.Mass),
		Friction:     max(0, spec.Friction),
		Elasticity:   max(0, spec.Elasticity),
		GravityScale: max(0, spec.GravityScale),
	})
	add(b, component.TransformComponent.Kind(), &component.Transform{X: at.X, Y: at.Y})
	add(b, component.SpriteComponent.Kind(), sprite(spec.Size, spec.Sprite))
	add(b, component.GravityListenerComponent.Kind(), listener(spec.Listener))
	return b.done()
}
