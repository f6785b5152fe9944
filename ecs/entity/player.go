package entity

import (
	"github.com/milk9111/gravityhelper/actor"
	"github.com/milk9111/gravityhelper/ecs"
	"github.com/milk9111/gravityhelper/ecs/component"
	"github.com/milk9111/gravityhelper/levels"
	"github.com/milk9111/gravityhelper/prefabs"
)

func NewPlayer(ctx *Context, at levels.Entity) (ecs.Entity, error) {
	spec, err := loadSpec[prefabs.PlayerSpec](ctx, "player.yaml", at.Props)
	if err != nil {
		return ecs.NoEntity, err
	}
	w := ctx.World
	b := newBuilder(w)

	a := actor.NewPlayer(at.X, at.Y, spec.Size.Width, spec.Size.Height, ctx.Solids)
	a.MaxDashes = max(1, spec.MaxDashes)
	a.Dashes = a.MaxDashes

	add(b, component.PlayerTagComponent.Kind(), &component.PlayerTag{})
	add(b, component.PlayerComponent.Kind(), &component.Player{
		Actor: a,
		Self:  actor.Bindings(a, int64(b.e), w.Delta),
	})
	add(b, component.InputComponent.Kind(), &actor.Input{})
	add(b, component.TransformComponent.Kind(), &component.Transform{X: at.X, Y: at.Y})
	add(b, component.SpriteComponent.Kind(), sprite(spec.Size, spec.Sprite))
	add(b, component.GravityListenerComponent.Kind(), listener(spec.Listener))
	return b.done()
}
