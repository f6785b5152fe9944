package hook

import (
	"errors"
	"fmt"
	"sort"

	"github.com/milk9111/gravityhelper/script"
)

// ErrRoutineNotFound reports that a routine or its resumable body does not
// exist in the unit. Callers treat it as optional unless told otherwise.
var ErrRoutineNotFound = errors.New("hook: routine not found")

var ErrUnitNotFound = errors.New("hook: unit not found")

// Catalog maps unit names to the currently loaded units. Targets resolve
// against it at install time, so a reloaded unit is picked up by the next
// install.
type Catalog struct {
	units map[string]*script.Unit
}

func NewCatalog(units ...*script.Unit) *Catalog {
	c := &Catalog{units: make(map[string]*script.Unit, len(units))}
	for _, u := range units {
		c.Put(u)
	}
	return c
}

// Put adds or replaces a unit under its name.
func (c *Catalog) Put(u *script.Unit) {
	if u != nil {
		c.units[u.Name] = u
	}
}

func (c *Catalog) Unit(name string) (*script.Unit, bool) {
	u, ok := c.units[name]
	return u, ok
}

// Names returns the unit names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.units))
	for n := range c.units {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Locate returns the resumable body synthesized for routine in the unit
// named unitName.
func (c *Catalog) Locate(unitName, routine string) (*script.Decl, error) {
	u, ok := c.Unit(unitName)
	if !ok {
		return nil, fmt.Errorf("hook: %s: %w", unitName, ErrUnitNotFound)
	}
	return Locate(u, routine)
}

// Locate scans the nested declarations of u for the resumable body behind
// routine. The body, not the routine, is what runs on each resumption.
func Locate(u *script.Unit, routine string) (*script.Decl, error) {
	for _, d := range u.Decls() {
		if d.Kind == script.KindResumable && script.IsResumableOf(d.Name, routine) {
			return d, nil
		}
	}
	return nil, fmt.Errorf("hook: %s.%s: no resumable body: %w", u.Name, routine, ErrRoutineNotFound)
}
