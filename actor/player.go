// Package actor holds the host's movable actors. Their movement rules live
// in scripts; the Go side only provides state, collision and bindings.
package actor

import "math"

const (
	MaxStamina = 110.0

	StateNormal = "normal"
	StateDash   = "dash"
)

// Input is the per-frame control state the player reads.
type Input struct {
	MoveX, MoveY float64
	Jump         bool
	JumpPressed  bool
	DashPressed  bool
	Grab         bool
}

// Player is the host player. Speeds are in the player's own frame: positive
// SpeedY moves towards the floor the player stands on.
type Player struct {
	X, Y      float64
	SpeedX    float64
	SpeedY    float64
	Facing    float64
	Dashes    int
	MaxDashes int
	Stamina   float64
	State     string
	Input     Input
	Solids    *Solids

	onGround          bool
	varJumpTimer      float32
	varJumpSpeed      float32
	jumpGraceTimer    float32
	dashCooldownTimer float32
	dashAttackTimer   float32
	wallSlideTimer    float32
	launched          bool
	autoJump          bool
	hitbox            Rect
	remX, remY        float64
}

func NewPlayer(x, y, width, height float64, solids *Solids) *Player {
	return &Player{
		X:         x,
		Y:         y,
		Facing:    1,
		Dashes:    1,
		MaxDashes: 1,
		Stamina:   MaxStamina,
		State:     StateNormal,
		Solids:    solids,
		hitbox:    Rect{Width: width, Height: height},
	}
}

// Hitbox is the player's collider in world space.
func (p *Player) Hitbox() Rect {
	return p.hitbox.Offset(p.X, p.Y)
}

func (p *Player) Top() float64    { return p.Hitbox().Top() }
func (p *Player) Bottom() float64 { return p.Hitbox().Bottom() }
func (p *Player) OnGround() bool  { return p.onGround }

// CollideAt reports whether the hitbox moved by (dx, dy) overlaps a solid.
func (p *Player) CollideAt(dx, dy float64) bool {
	return p.Solids.Collide(p.Hitbox().Offset(dx, dy))
}

// MoveH moves by whole pixels, carrying the fraction to the next call. It
// stops at the first solid and reports whether one was hit.
func (p *Player) MoveH(dx float64) bool {
	return p.move(&p.X, &p.remX, dx, 1, 0)
}

func (p *Player) MoveV(dy float64) bool {
	return p.move(&p.Y, &p.remY, dy, 0, 1)
}

func (p *Player) move(pos, rem *float64, d, ax, ay float64) bool {
	*rem += d
	n := math.Round(*rem)
	if n == 0 {
		return false
	}
	*rem -= n
	step := math.Copysign(1, n)
	for ; n != 0; n -= step {
		if p.CollideAt(ax*step, ay*step) {
			*rem = 0
			return true
		}
		*pos += step
	}
	return false
}

// RefillDash restores dashes and reports whether any were missing.
func (p *Player) RefillDash() bool {
	if p.Dashes >= p.MaxDashes {
		return false
	}
	p.Dashes = p.MaxDashes
	return true
}

func (p *Player) RefillStamina() {
	p.Stamina = MaxStamina
}

func (p *Player) Velocity() (float64, float64) { return p.SpeedX, p.SpeedY }

func (p *Player) SetVelocity(x, y float64) {
	p.SpeedX, p.SpeedY = x, y
}

func (p *Player) Instance() any { return p }

// timer returns the named movement timer.
func (p *Player) timer(name string) (*float32, bool) {
	switch name {
	case "varJumpTimer":
		return &p.varJumpTimer, true
	case "jumpGraceTimer":
		return &p.jumpGraceTimer, true
	case "dashCooldownTimer":
		return &p.dashCooldownTimer, true
	case "dashAttackTimer":
		return &p.dashAttackTimer, true
	case "wallSlideTimer":
		return &p.wallSlideTimer, true
	}
	return nil, false
}
