// Package gravity owns the global gravity direction: the mode, the cooldowns
// that debounce changes to it, per-object overrides and the listeners told
// about each change.
package gravity

import (
	"reflect"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("gravityhelper.gravity")

// Request asks for a gravity change.
type Request struct {
	Mode     Mode
	Momentum bool
	Origin   any
}

// Source is a trigger with its own debounce window, such as a spring or a
// refill. The controller ticks its cooldown.
type Source struct {
	Name     string
	Cooldown Cooldown
}

// Snapshot is the gravity state captured at the start of a frame.
type Snapshot struct {
	Mode             Mode
	Frame            uint64
	ChangedThisFrame bool
}

type tracked struct {
	owner any
	mover Mover
}

type override struct {
	mode   Mode
	window *Cooldown
}

// Controller is the single writer of gravity state.
type Controller struct {
	behavior  Behavior
	policy    MomentumPolicy
	mode      Mode
	switchCD  Cooldown
	sources   []*Source
	overrides map[any]*override
	movers    []tracked
	bound     map[reflect.Type]*BoundPolicy
	listeners Registry

	frame    uint64
	changed  bool
	snapshot Snapshot
}

func NewController(b Behavior, p MomentumPolicy) *Controller {
	b.Clamp()
	p.Clamp()
	c := &Controller{
		behavior:  b,
		policy:    p,
		mode:      b.Initial,
		switchCD:  NewCooldown(b.SwitchCooldown),
		overrides: make(map[any]*override),
		bound:     make(map[reflect.Type]*BoundPolicy),
	}
	c.snapshot = Snapshot{Mode: c.mode}
	return c
}

func (c *Controller) Behavior() Behavior       { return c.behavior }
func (c *Controller) Policy() MomentumPolicy   { return c.policy }
func (c *Controller) Mode() Mode               { return c.mode }
func (c *Controller) SwitchCooldown() Cooldown { return c.switchCD }
func (c *Controller) Listeners() *Registry     { return &c.listeners }

// SetGravity changes the global mode. See Apply.
func (c *Controller) SetGravity(mode Mode, momentum bool) bool {
	return c.Apply(Request{Mode: mode, Momentum: momentum})
}

// Apply resolves the request against the current mode and, if that changes
// it, applies momentum to the tracked movers whose effective mode flipped,
// restarts the switch cooldown and broadcasts before returning. It reports
// whether the mode changed. Apply is not debounced; see Request.
func (c *Controller) Apply(req Request) bool {
	next := req.Mode.Resolve(c.mode)
	if next == c.mode {
		return false
	}
	var before []Mode
	if req.Momentum {
		before = make([]Mode, len(c.movers))
		for i, t := range c.movers {
			before[i] = c.Effective(t.owner)
		}
	}
	prev := c.mode
	c.mode = next
	c.changed = true
	for i, t := range c.movers[:len(before)] {
		if c.Effective(t.owner) != before[i] {
			c.boundFor(t.mover).Apply(t.mover)
		}
	}
	c.switchCD.Reset()
	log.Debugf("gravity: %s -> %s frame=%d momentum=%t", prev, next, c.frame, req.Momentum)
	c.listeners.Broadcast(Change{
		Mode:     next,
		Previous: prev,
		Momentum: req.Momentum,
		Origin:   req.Origin,
		Frame:    c.frame,
	})
	return true
}

// RequestToggle flips gravity on behalf of src. src may be nil.
func (c *Controller) RequestToggle(src *Source) bool {
	return c.request(src, Request{Mode: Toggle, Momentum: true, Origin: src})
}

// Request applies req on behalf of src. It is dropped while src's cooldown
// runs, and a toggle is also dropped while the global switch cooldown runs.
// Touch triggers such as springs use it to set a fixed mode.
func (c *Controller) Request(src *Source, req Request) bool {
	if req.Origin == nil && src != nil {
		req.Origin = src
	}
	return c.request(src, req)
}

func (c *Controller) request(src *Source, req Request) bool {
	if src != nil && !src.Cooldown.Ready() {
		return false
	}
	if req.Mode == Toggle && !c.switchCD.Ready() {
		return false
	}
	if !c.Apply(req) {
		return false
	}
	if src != nil {
		src.Cooldown.Reset()
	}
	return true
}

// NewSource registers a trigger whose cooldown the controller ticks.
func (c *Controller) NewSource(name string, cooldown float64) *Source {
	s := &Source{Name: name, Cooldown: NewCooldown(cooldown)}
	c.sources = append(c.sources, s)
	return s
}

func (c *Controller) RemoveSource(s *Source) {
	for i, x := range c.sources {
		if x == s {
			c.sources = append(c.sources[:i], c.sources[i+1:]...)
			return
		}
	}
}

// Tick advances every cooldown the controller owns by dt seconds. Timed
// overrides whose window runs out are cleared.
func (c *Controller) Tick(dt float64) {
	c.switchCD.Tick(dt)
	for _, s := range c.sources {
		s.Cooldown.Tick(dt)
	}
	for obj, o := range c.overrides {
		if o.window == nil {
			continue
		}
		o.window.Tick(dt)
		if o.window.Ready() {
			delete(c.overrides, obj)
		}
	}
}

// BeginFrame captures the snapshot read by the frame about to run.
func (c *Controller) BeginFrame() Snapshot {
	c.frame++
	c.snapshot = Snapshot{Mode: c.mode, Frame: c.frame, ChangedThisFrame: c.changed}
	c.changed = false
	return c.snapshot
}

func (c *Controller) Snapshot() Snapshot { return c.snapshot }

// SetOverride makes obj resolve to mode regardless of the global mode until
// cleared. None means obj ignores gravity direction and stays Normal; Toggle
// means obj always sees the opposite of the global mode.
func (c *Controller) SetOverride(obj any, mode Mode) {
	c.overrides[obj] = &override{mode: mode}
}

// OverrideFor sets an override that lasts duration seconds.
func (c *Controller) OverrideFor(obj any, mode Mode, duration float64) {
	w := NewCooldown(duration)
	w.Reset()
	if w.Ready() {
		delete(c.overrides, obj)
		return
	}
	c.overrides[obj] = &override{mode: mode, window: &w}
}

func (c *Controller) ClearOverride(obj any) {
	delete(c.overrides, obj)
}

func (c *Controller) Override(obj any) (Mode, bool) {
	o, ok := c.overrides[obj]
	if !ok {
		return None, false
	}
	return o.mode, true
}

// Effective resolves the mode obj should see.
func (c *Controller) Effective(obj any) Mode {
	o, ok := c.overrides[obj]
	if !ok {
		return c.mode
	}
	switch o.mode {
	case None:
		return Normal
	case Toggle:
		return Toggle.Resolve(c.mode)
	}
	return o.mode
}

// ShouldInvert reports whether obj currently sees inverted gravity.
func (c *Controller) ShouldInvert(obj any) bool {
	return c.Effective(obj) == Inverted
}

// Track adds a mover to receive momentum changes. The mover follows the
// effective mode of owner; a nil owner follows the global mode.
func (c *Controller) Track(owner any, m Mover) {
	for i, x := range c.movers {
		if x.mover == m {
			c.movers[i].owner = owner
			return
		}
	}
	c.movers = append(c.movers, tracked{owner: owner, mover: m})
}

func (c *Controller) Untrack(m Mover) {
	for i, x := range c.movers {
		if x.mover == m {
			c.movers = append(c.movers[:i], c.movers[i+1:]...)
			return
		}
	}
}

func (c *Controller) Movers() int { return len(c.movers) }

// BoundPolicy returns the momentum policy bound to owner, binding it on
// first use.
func (c *Controller) BoundPolicy(owner reflect.Type) *BoundPolicy {
	if owner != nil && owner.Kind() == reflect.Pointer {
		owner = owner.Elem()
	}
	b, ok := c.bound[owner]
	if !ok {
		if owner == nil || owner.Kind() != reflect.Struct {
			b = &BoundPolicy{policy: c.policy}
		} else {
			b, _ = c.policy.Bind(owner)
		}
		c.bound[owner] = b
	}
	return b
}

func (c *Controller) boundFor(m Mover) *BoundPolicy {
	if in, ok := m.(Instanced); ok {
		return c.BoundPolicy(reflect.TypeOf(in.Instance()))
	}
	return c.BoundPolicy(nil)
}
