package hook

import (
	"errors"
	"fmt"

	"github.com/milk9111/gravityhelper/il"
	"github.com/milk9111/gravityhelper/script"
)

var (
	ErrUnknownHook   = errors.New("hook: unknown hook")
	ErrDuplicateHook = errors.New("hook: duplicate hook")
)

// Manipulator rewrites a decoded routine body. Returning an error, or
// panicking, leaves the routine untouched.
type Manipulator func(b *il.Body) error

// Hook declares one rewrite of a host routine under a logical name.
type Hook struct {
	Name       string
	Target     Target
	Manipulate Manipulator
	// Optional hooks that cannot be installed are skipped with a warning
	// instead of being reported as load errors.
	Optional bool
}

// Patches builds a manipulator applying each patch in turn.
func Patches(patches ...il.Patch) Manipulator {
	return func(b *il.Body) error {
		for _, p := range patches {
			if err := p.Apply(b); err != nil {
				return err
			}
		}
		return nil
	}
}

// Target identifies the routine body a hook rewrites.
type Target struct {
	Unit    string
	Routine string
	// Resumable selects the resumable body synthesized for Routine.
	Resumable bool
	// Decl names a nested declaration directly, e.g. "<dash>b__1".
	Decl string
}

// Routine targets a top-level routine.
func Routine(unit, name string) Target {
	return Target{Unit: unit, Routine: name}
}

// Resumable targets the body resumed each frame for routine.
func Resumable(unit, routine string) Target {
	return Target{Unit: unit, Routine: routine, Resumable: true}
}

// Nested targets a nested declaration by its synthesized name.
func Nested(unit, decl string) Target {
	return Target{Unit: unit, Decl: decl}
}

func (t Target) String() string {
	switch {
	case t.Decl != "":
		return t.Unit + "." + t.Decl
	case t.Resumable:
		return t.Unit + "." + script.ResumablePrefix(t.Routine) + "*"
	}
	return t.Unit + "." + t.Routine
}

func (t Target) resolve(c *Catalog) (*script.Unit, *script.Decl, error) {
	u, ok := c.Unit(t.Unit)
	if !ok {
		return nil, nil, fmt.Errorf("hook: %s: %w", t.Unit, ErrUnitNotFound)
	}
	switch {
	case t.Decl != "":
		d, ok := u.Decl(t.Decl)
		if !ok {
			return nil, nil, fmt.Errorf("hook: %s: %w", t, ErrRoutineNotFound)
		}
		return u, d, nil
	case t.Resumable:
		d, err := Locate(u, t.Routine)
		return u, d, err
	}
	d, ok := u.Routine(t.Routine)
	if !ok {
		return nil, nil, fmt.Errorf("hook: %s: %w", t, ErrRoutineNotFound)
	}
	return u, d, nil
}

// Error reports a hook that could not be installed.
type Error struct {
	Hook   string
	Target Target
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("hook %s on %s: %v", e.Hook, e.Target, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
