package entity

import (
	"github.com/milk9111/gravityhelper/actor"
	"github.com/milk9111/gravityhelper/ecs"
	"github.com/milk9111/gravityhelper/ecs/component"
	"github.com/milk9111/gravityhelper/levels"
	"github.com/milk9111/gravityhelper/prefabs"
)

func NewRefill(ctx *Context, at levels.Entity) (ecs.Entity, error) {
	spec, err := loadSpec[prefabs.RefillSpec](ctx, "refill.yaml", at.Props)
	if err != nil {
		return ecs.NoEntity, err
	}
	b := newBuilder(ctx.World)
	add(b, component.RefillComponent.Kind(), &component.Refill{
		Charges:        max(0, spec.Charges),
		OneUse:         spec.OneUse,
		RefillsDash:    spec.RefillsDash,
		RefillsStamina: spec.RefillsStamina,
		RespawnTime:    max(0, spec.RespawnTime),
		Box:            actor.Rect{Width: spec.Size.Width, Height: spec.Size.Height},
	})
	add(b, component.TransformComponent.Kind(), &component.Transform{X: at.X, Y: at.Y})
	add(b, component.SpriteComponent.Kind(), sprite(spec.Size, spec.Sprite))
	return b.done()
}
