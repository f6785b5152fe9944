package component

import (
	"github.com/d5/tengo/v2"
	"github.com/milk9111/gravityhelper/script"
)

// Seeker hovers near the player, driven by its script routine.
type Seeker struct {
	X, Y    float64
	Self    *tengo.ImmutableMap
	Routine *script.Coroutine
	// Rest counts down between routine runs.
	Rest float64
}

var SeekerComponent = NewComponent[Seeker]()
