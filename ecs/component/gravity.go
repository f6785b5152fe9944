package component

import "github.com/milk9111/gravityhelper/gravity"

// GravityTimer toggles gravity every Interval seconds.
type GravityTimer struct {
	Interval float64
	Elapsed  float64
	Source   *gravity.Source
}

var GravityTimerComponent = NewComponent[GravityTimer]()

// GravityListener reacts to gravity changes on behalf of its entity.
type GravityListener struct {
	Listener   *gravity.Listener
	FlipSprite bool
	Emit       bool
}

var GravityListenerComponent = NewComponent[GravityListener]()

// Holdable is an item the player can carry. While held it follows the
// player's gravity; after release it keeps that gravity for a while.
type Holdable struct {
	Held bool
}

var HoldableComponent = NewComponent[Holdable]()
