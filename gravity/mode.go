package gravity

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Mode is a gravity direction, or a request to flip it.
type Mode int

const (
	None Mode = iota
	Normal
	Inverted
	Toggle
)

var modeNames = [...]string{
	None:     "none",
	Normal:   "normal",
	Inverted: "inverted",
	Toggle:   "toggle",
}

func (m Mode) String() string {
	if m < None || m > Toggle {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for m, name := range modeNames {
		if s == name {
			return Mode(m), nil
		}
	}
	return None, fmt.Errorf("gravity: unknown mode %q", s)
}

// Resolve turns a request into a concrete direction relative to current.
// None resolves to current.
func (m Mode) Resolve(current Mode) Mode {
	switch m {
	case Normal, Inverted:
		return m
	case Toggle:
		if current == Inverted {
			return Normal
		}
		return Inverted
	}
	return current
}

func (m Mode) IsInverted() bool { return m == Inverted }

// Concrete reports whether m is a direction rather than a request.
func (m Mode) Concrete() bool { return m == Normal || m == Inverted }

func (m Mode) MarshalYAML() (any, error) {
	return m.String(), nil
}

func (m *Mode) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseMode(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*m = parsed
	return nil
}
