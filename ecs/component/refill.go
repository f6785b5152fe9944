package component

import "github.com/milk9111/gravityhelper/actor"

type RefillState int

const (
	RefillIdle RefillState = iota
	RefillConsumed
	RefillRespawning
)

func (s RefillState) String() string {
	switch s {
	case RefillConsumed:
		return "consumed"
	case RefillRespawning:
		return "respawning"
	}
	return "idle"
}

// Refill hands out gravity charges that the player's next dash spends.
type Refill struct {
	Charges        int
	OneUse         bool
	RefillsDash    bool
	RefillsStamina bool
	RespawnTime    float64
	Box            actor.Rect

	State RefillState
	Timer float64
}

var RefillComponent = NewComponent[Refill]()
