package component

import (
	"github.com/milk9111/gravityhelper/actor"
	"github.com/milk9111/gravityhelper/gravity"
)

type Orientation string

const (
	OrientationFloor     Orientation = "floor"
	OrientationCeiling   Orientation = "ceiling"
	OrientationWallLeft  Orientation = "wall_left"
	OrientationWallRight Orientation = "wall_right"
)

// Spring bounces the player and sets gravity when off cooldown.
type Spring struct {
	Orientation  Orientation
	Gravity      gravity.Mode
	Cooldown     float64
	PlayerCanUse bool
	Box          actor.Rect
	Source       *gravity.Source
}

var SpringComponent = NewComponent[Spring]()
