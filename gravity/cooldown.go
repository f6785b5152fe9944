package gravity

// Cooldown is a countdown window that keeps a trigger from firing again
// before Duration has elapsed. Remaining never goes below zero.
type Cooldown struct {
	Duration  float64
	Remaining float64
}

func NewCooldown(duration float64) Cooldown {
	return Cooldown{Duration: max(0, duration)}
}

// Reset starts the window again.
func (c *Cooldown) Reset() {
	c.Remaining = max(0, c.Duration)
}

// Tick advances the window by dt seconds.
func (c *Cooldown) Tick(dt float64) {
	if dt <= 0 || c.Remaining == 0 {
		return
	}
	c.Remaining = max(0, c.Remaining-dt)
}

func (c *Cooldown) Clear() { c.Remaining = 0 }

func (c Cooldown) Ready() bool { return c.Remaining == 0 }
