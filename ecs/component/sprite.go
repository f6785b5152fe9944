package component

import "image/color"

// Sprite is the debug box drawn for an entity.
type Sprite struct {
	Width  float64
	Height float64
	Color  color.RGBA
	FlipY  bool
	Hidden bool
}

var SpriteComponent = NewComponent[Sprite]()
