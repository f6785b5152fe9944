package entity

import (
	"github.com/milk9111/gravityhelper/actor"
	"github.com/milk9111/gravityhelper/ecs"
	"github.com/milk9111/gravityhelper/ecs/component"
	"github.com/milk9111/gravityhelper/levels"
	"github.com/milk9111/gravityhelper/prefabs"
)

func NewSeeker(ctx *Context, at levels.Entity) (ecs.Entity, error) {
	spec, err := loadSpec[prefabs.SeekerSpec](ctx, "seeker.yaml", at.Props)
	if err != nil {
		return ecs.NoEntity, err
	}
	w := ctx.World
	b := newBuilder(w)
	sk := &component.Seeker{X: at.X, Y: at.Y}
	sk.Self = actor.PointBindings(&sk.X, &sk.Y, int64(b.e), w.Delta)

	add(b, component.SeekerComponent.Kind(), sk)
	add(b, component.TransformComponent.Kind(), &component.Transform{X: at.X, Y: at.Y})
	add(b, component.SpriteComponent.Kind(), sprite(spec.Size, spec.Sprite))
	add(b, component.GravityListenerComponent.Kind(), listener(spec.Listener))
	return b.done()
}
