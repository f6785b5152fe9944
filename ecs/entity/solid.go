package entity

import (
	"image/color"

	"github.com/milk9111/gravityhelper/actor"
	"github.com/milk9111/gravityhelper/ecs"
	"github.com/milk9111/gravityhelper/ecs/component"
	"github.com/milk9111/gravityhelper/levels"
	"github.com/milk9111/gravityhelper/prefabs"
)

var solidColor = color.RGBA{R: 70, G: 70, B: 90, A: 255}

// NewSolid adds a static box the player collides with and loose bodies rest
// on.
func NewSolid(ctx *Context, box levels.Box) (ecs.Entity, error) {
	ctx.Solids.Add(actor.Rect{X: box.X, Y: box.Y, Width: box.Width, Height: box.Height})

	b := newBuilder(ctx.World)
	add(b, component.SolidTagComponent.Kind(), &component.SolidTag{})
	add(b, component.TransformComponent.Kind(), &component.Transform{X: box.X, Y: box.Y})
	add(b, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{Width: box.Width, Height: box.Height, Friction: 0.8, Static: true})
	add(b, component.SpriteComponent.Kind(), sprite(prefabs.SizeSpec{Width: box.Width, Height: box.Height}, prefabs.SpriteSpec{Color: prefabs.YAMLColor{RGBA: solidColor}}))
	return b.done()
}

// NewGravityTimer adds a timed gravity toggle. Its position is unused.
func NewGravityTimer(ctx *Context, at levels.Entity) (ecs.Entity, error) {
	spec, err := prefabs.Overlay(prefabs.GravityTimerSpec{Interval: 1}, at.Props)
	if err != nil {
		return ecs.NoEntity, err
	}
	b := newBuilder(ctx.World)
	add(b, component.GravityTimerComponent.Kind(), &component.GravityTimer{Interval: max(0, spec.Interval)})
	return b.done()
}
