package component

import (
	"github.com/d5/tengo/v2"
	"github.com/milk9111/gravityhelper/actor"
	"github.com/milk9111/gravityhelper/script"
)

// Player ties the host actor to its script state.
type Player struct {
	Actor *actor.Player
	Self  *tengo.ImmutableMap
	Dash  *script.Coroutine
	// GravityCharges are spent by the next dash to flip gravity.
	GravityCharges int
	WasOnGround    bool
}

var PlayerComponent = NewComponent[Player]()
