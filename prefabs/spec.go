package prefabs

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/milk9111/gravityhelper/gravity"
	"gopkg.in/yaml.v3"
)

// LoadSpec reads a yaml prefab into T.
func LoadSpec[T any](filename string) (T, error) {
	return LoadSpecFrom[T](Default, filename)
}

func LoadSpecFrom[T any](src *Source, filename string) (T, error) {
	var zero T
	data, err := src.Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// Overlay decodes props over base, so keys missing from props keep the
// base value. Level entities use it to tweak a prefab.
func Overlay[T any](base T, props map[string]any) (T, error) {
	if len(props) == 0 {
		return base, nil
	}
	b, err := yaml.Marshal(props)
	if err != nil {
		return base, err
	}
	out := base
	if err := yaml.Unmarshal(b, &out); err != nil {
		return base, err
	}
	return out, nil
}

// LoadGravityConfig reads gravity_controller.yaml over the built-in
// defaults.
func LoadGravityConfig(src *Source) (gravity.Config, error) {
	data, err := src.Load("gravity_controller.yaml")
	if err != nil {
		return gravity.Config{}, fmt.Errorf("prefabs: load gravity_controller.yaml: %w", err)
	}
	cfg, err := gravity.ParseConfig(data)
	if err != nil {
		return gravity.Config{}, fmt.Errorf("prefabs: gravity_controller.yaml: %w", err)
	}
	return cfg, nil
}

type SizeSpec struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type SpriteSpec struct {
	Color YAMLColor `yaml:"color"`
}

type ListenerSpec struct {
	FlipSprite bool `yaml:"flip_sprite"`
	Emit       bool `yaml:"emit"`
}

type PlayerSpec struct {
	Name      string       `yaml:"name"`
	Size      SizeSpec     `yaml:"size"`
	MaxDashes int          `yaml:"max_dashes"`
	Sprite    SpriteSpec   `yaml:"sprite"`
	Listener  ListenerSpec `yaml:"listener"`
}

type SpringSpec struct {
	Name        string       `yaml:"name"`
	Orientation string       `yaml:"orientation"`
	Gravity     gravity.Mode `yaml:"gravity"`
	// Cooldown falls back to the controller's spring_cooldown when unset.
	Cooldown     *float64   `yaml:"cooldown"`
	PlayerCanUse bool       `yaml:"player_can_use"`
	Size         SizeSpec   `yaml:"size"`
	Sprite       SpriteSpec `yaml:"sprite"`
}

type RefillSpec struct {
	Name           string     `yaml:"name"`
	Charges        int        `yaml:"charges"`
	OneUse         bool       `yaml:"one_use"`
	RefillsDash    bool       `yaml:"refills_dash"`
	RefillsStamina bool       `yaml:"refills_stamina"`
	RespawnTime    float64    `yaml:"respawn_time"`
	Size           SizeSpec   `yaml:"size"`
	Sprite         SpriteSpec `yaml:"sprite"`
}

type HoldableSpec struct {
	Name         string       `yaml:"name"`
	Size         SizeSpec     `yaml:"size"`
	Mass         float64      `yaml:"mass"`
	Friction     float64      `yaml:"friction"`
	Elasticity   float64      `yaml:"elasticity"`
	GravityScale float64      `yaml:"gravity_scale"`
	Sprite       SpriteSpec   `yaml:"sprite"`
	Listener     ListenerSpec `yaml:"listener"`
}

type SeekerSpec struct {
	Name     string       `yaml:"name"`
	Size     SizeSpec     `yaml:"size"`
	Sprite   SpriteSpec   `yaml:"sprite"`
	Listener ListenerSpec `yaml:"listener"`
}

type GravityTimerSpec struct {
	Interval float64 `yaml:"interval"`
}

type YAMLColor struct {
	color.RGBA
}

func (c YAMLColor) MarshalYAML() (any, error) {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A), nil
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}
	rgba, err := ParseHexColor(value.Value)
	if err != nil {
		return err
	}
	c.RGBA = rgba
	return nil
}

// ParseHexColor parses "#rrggbb" or "#rrggbbaa".
func ParseHexColor(v string) (color.RGBA, error) {
	s := strings.TrimPrefix(strings.TrimSpace(v), "#")
	if len(s) != 6 && len(s) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid color format: %q", v)
	}
	parse := func(start int) (uint8, error) {
		n, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(n), err
	}
	r, err := parse(0)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("parse red component: %w", err)
	}
	g, err := parse(2)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("parse green component: %w", err)
	}
	b, err := parse(4)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("parse blue component: %w", err)
	}
	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("parse alpha component: %w", err)
		}
	}
	return color.RGBA{R: r, G: g, B: b, A: a}, nil
}
