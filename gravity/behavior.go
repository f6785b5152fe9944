package gravity

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

const (
	DefaultSwitchCooldown    = 1.0
	DefaultSpringCooldown    = 0.5
	DefaultHoldableResetTime = 2.0
)

// Behavior configures how scene content may change gravity.
type Behavior struct {
	SwitchCooldown    float64 `yaml:"switch_cooldown"`
	SpringCooldown    float64 `yaml:"spring_cooldown"`
	HoldableResetTime float64 `yaml:"holdable_reset_time"`
	SwitchOnHoldables bool    `yaml:"switch_on_holdables"`
	DashToToggle      bool    `yaml:"dash_to_toggle"`
	Initial           Mode    `yaml:"initial"`
}

func DefaultBehavior() Behavior {
	return Behavior{
		SwitchCooldown:    DefaultSwitchCooldown,
		SpringCooldown:    DefaultSpringCooldown,
		HoldableResetTime: DefaultHoldableResetTime,
		SwitchOnHoldables: true,
		Initial:           Normal,
	}
}

// Clamp drops negative durations to zero and makes the initial mode a
// concrete direction.
func (b *Behavior) Clamp() {
	b.SwitchCooldown = max(0, b.SwitchCooldown)
	b.SpringCooldown = max(0, b.SpringCooldown)
	b.HoldableResetTime = max(0, b.HoldableResetTime)
	if !b.Initial.Concrete() {
		b.Initial = Normal
	}
}

// Config is the controller's yaml document.
type Config struct {
	Behavior Behavior       `yaml:"behavior"`
	Momentum MomentumPolicy `yaml:"momentum"`
}

func DefaultConfig() Config {
	return Config{Behavior: DefaultBehavior(), Momentum: DefaultMomentumPolicy()}
}

// ParseConfig reads a controller config over the defaults. Keys missing from
// data keep their default values.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("gravity: parse config: %w", err)
	}
	cfg.Behavior.Clamp()
	cfg.Momentum.Clamp()
	return cfg, nil
}
