package system

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/gravityhelper/ecs"
	"github.com/milk9111/gravityhelper/ecs/component"
	"github.com/milk9111/gravityhelper/gravity"
)

// feetMarker is the height of the strip marking which side of a sprite is
// its floor.
const feetMarker = 2.0

// RenderSystem draws every sprite as a filled box. It has no Update work.
type RenderSystem struct {
	controller *gravity.Controller
	physics    *PhysicsSystem
	debug      bool
}

func NewRenderSystem(c *gravity.Controller, physics *PhysicsSystem, debug bool) *RenderSystem {
	return &RenderSystem{controller: c, physics: physics, debug: debug}
}

func (r *RenderSystem) Update(w *ecs.World) {}

func (r *RenderSystem) Draw(w *ecs.World, screen *ebiten.Image) {
	if r == nil || w == nil || screen == nil {
		return
	}

	ecs.ForEach2(w, component.TransformComponent.Kind(), component.SpriteComponent.Kind(), func(e ecs.Entity, t *component.Transform, s *component.Sprite) {
		if s.Hidden || s.Width <= 0 || s.Height <= 0 {
			return
		}
		x, y := float32(t.X), float32(t.Y)
		wdt, hgt := float32(s.Width), float32(s.Height)
		vector.FillRect(screen, x, y, wdt, hgt, s.Color, false)

		feetY := y + hgt - feetMarker
		if s.FlipY {
			feetY = y
		}
		vector.FillRect(screen, x, feetY, wdt, feetMarker, color.RGBA{R: 255, G: 255, B: 255, A: 200}, false)
	})

	if !r.debug {
		return
	}
	if r.physics != nil {
		DrawPhysicsDebug(r.physics.Space(), screen)
	}
	DrawGravityDebug(r.controller, w, screen)
}
