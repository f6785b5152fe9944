package entity

import (
	"fmt"

	"github.com/milk9111/gravityhelper/actor"
	"github.com/milk9111/gravityhelper/ecs"
	"github.com/milk9111/gravityhelper/ecs/component"
	"github.com/milk9111/gravityhelper/levels"
	"github.com/milk9111/gravityhelper/prefabs"
)

func NewSpring(ctx *Context, at levels.Entity) (ecs.Entity, error) {
	spec, err := loadSpec[prefabs.SpringSpec](ctx, "spring.yaml", at.Props)
	if err != nil {
		return ecs.NoEntity, err
	}
	o, err := parseOrientation(spec.Orientation)
	if err != nil {
		return ecs.NoEntity, err
	}
	cooldown := -1.0
	if spec.Cooldown != nil {
		cooldown = max(0, *spec.Cooldown)
	}

	b := newBuilder(ctx.World)
	add(b, component.SpringComponent.Kind(), &component.Spring{
		Orientation:  o,
		Gravity:      spec.Gravity,
		Cooldown:     cooldown,
		PlayerCanUse: spec.PlayerCanUse,
		Box:          actor.Rect{Width: spec.Size.Width, Height: spec.Size.Height},
	})
	add(b, component.TransformComponent.Kind(), &component.Transform{X: at.X, Y: at.Y})
	add(b, component.SpriteComponent.Kind(), sprite(spec.Size, spec.Sprite))
	return b.done()
}

func parseOrientation(s string) (component.Orientation, error) {
	switch o := component.Orientation(s); o {
	case component.OrientationFloor, component.OrientationCeiling, component.OrientationWallLeft, component.OrientationWallRight:
		return o, nil
	case "":
		return component.OrientationFloor, nil
	}
	return "", fmt.Errorf("unknown spring orientation %q", s)
}
