package gravity

import (
	"math"
	"reflect"
	"testing"
)

func newTestController() (*Controller, *[]Change) {
	c := NewController(DefaultBehavior(), DefaultMomentumPolicy())
	var got []Change
	l := NewListener(func(ch Change) { got = append(got, ch) })
	c.Listeners().Attach(l)
	// keep l reachable for the registry's weak pointer
	c.Track(nil, &keepAlive{l: l})
	return c, &got
}

type keepAlive struct {
	l *Listener
}

func (*keepAlive) Velocity() (float64, float64) { return 0, 0 }
func (*keepAlive) SetVelocity(float64, float64) {}

func TestToggleScenario(t *testing.T) {
	c, changes := newTestController()

	if !c.RequestToggle(nil) {
		t.Fatalf("t=0: toggle rejected")
	}
	if c.Mode() != Inverted || c.SwitchCooldown().Remaining != 1.0 {
		t.Fatalf("t=0: mode %s cooldown %v", c.Mode(), c.SwitchCooldown().Remaining)
	}

	c.Tick(0.5)
	if c.RequestToggle(nil) {
		t.Fatalf("t=0.5: toggle accepted during cooldown")
	}
	if c.Mode() != Inverted {
		t.Fatalf("t=0.5: mode %s", c.Mode())
	}

	c.Tick(0.6)
	if c.SwitchCooldown().Remaining != 0 {
		t.Fatalf("t=1.1: cooldown %v, want 0", c.SwitchCooldown().Remaining)
	}
	if !c.RequestToggle(nil) || c.Mode() != Normal {
		t.Fatalf("t=1.1: mode %s, want normal", c.Mode())
	}
	if len(*changes) != 2 {
		t.Fatalf("broadcasts = %d, want 2", len(*changes))
	}
}

func TestResolvedModeIsNeverToggle(t *testing.T) {
	c, _ := newTestController()
	for _, m := range []Mode{Toggle, None, Inverted, Toggle, Toggle, Normal, None} {
		c.SetGravity(m, true)
		if !c.Mode().Concrete() {
			t.Fatalf("after %s mode is %s", m, c.Mode())
		}
	}
}

func TestSetCurrentModeIsIdempotent(t *testing.T) {
	c, changes := newTestController()
	c.Tick(10)

	if c.SetGravity(Normal, true) {
		t.Fatalf("setting the current mode reported a change")
	}
	if len(*changes) != 0 {
		t.Fatalf("broadcast on no-op")
	}
	if !c.SwitchCooldown().Ready() {
		t.Fatalf("cooldown reset on no-op")
	}
}

func TestSourceCooldownDebounces(t *testing.T) {
	b := DefaultBehavior()
	b.SwitchCooldown = 0
	c := NewController(b, DefaultMomentumPolicy())
	spring := c.NewSource("spring", 0.5)

	if !c.RequestToggle(spring) {
		t.Fatalf("first toggle rejected")
	}
	if spring.Cooldown.Remaining != 0.5 {
		t.Fatalf("source cooldown %v", spring.Cooldown.Remaining)
	}
	if c.RequestToggle(spring) {
		t.Fatalf("second toggle for the same event accepted")
	}
	if !c.RequestToggle(nil) {
		t.Fatalf("unrelated toggle rejected with zero switch cooldown")
	}

	c.Tick(0.25)
	c.Tick(0.25)
	if !spring.Cooldown.Ready() {
		t.Fatalf("source cooldown %v after its duration", spring.Cooldown.Remaining)
	}

	if !c.Request(spring, Request{Mode: Inverted}) {
		t.Fatalf("set inverted rejected")
	}
	if c.Request(c.NewSource("other", 0), Request{Mode: Inverted}) {
		t.Fatalf("setting the current mode reported a change")
	}
}

func TestToggleRequestsHonourSwitchCooldown(t *testing.T) {
	c, changes := newTestController()
	timer := c.NewSource("timer", 0)

	if !c.Request(timer, Request{Mode: Toggle, Momentum: true}) || c.Mode() != Inverted {
		t.Fatalf("first toggle rejected, mode %s", c.Mode())
	}
	c.Tick(0.25)
	if c.Request(timer, Request{Mode: Toggle, Momentum: true}) {
		t.Fatalf("timed toggle accepted during switch cooldown")
	}
	if c.Request(nil, Request{Mode: Toggle}) {
		t.Fatalf("sourceless toggle accepted during switch cooldown")
	}
	if c.Mode() != Inverted || len(*changes) != 1 {
		t.Fatalf("mode %s after %d broadcasts", c.Mode(), len(*changes))
	}

	// a fixed mode is debounced by its source only
	if !c.Request(c.NewSource("spring", 0.5), Request{Mode: Normal}) {
		t.Fatalf("set normal rejected during switch cooldown")
	}

	c.Tick(1)
	if !c.Request(timer, Request{Mode: Toggle}) || c.Mode() != Inverted {
		t.Fatalf("toggle rejected after the switch cooldown, mode %s", c.Mode())
	}
}

func TestTickNeverNegative(t *testing.T) {
	cases := []struct {
		name  string
		ticks []float64
	}{
		{"exact", []float64{0.25, 0.25, 0.25, 0.25}},
		{"overshoot", []float64{0.3, 0.3, 0.3, 0.3}},
		{"one_big", []float64{5}},
		{"with_negative_dt", []float64{-1, 0.6, 0.6}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cd := NewCooldown(1)
			cd.Reset()
			prev := cd.Remaining
			for _, dt := range tc.ticks {
				cd.Tick(dt)
				if cd.Remaining < 0 || cd.Remaining > prev {
					t.Fatalf("remaining %v after %v (was %v)", cd.Remaining, dt, prev)
				}
				prev = cd.Remaining
			}
			if cd.Remaining != 0 {
				t.Fatalf("remaining %v, want exactly 0", cd.Remaining)
			}
		})
	}

	if cd := NewCooldown(-3); cd.Duration != 0 {
		t.Fatalf("negative duration kept: %v", cd.Duration)
	}
}

func TestEffectiveOverrides(t *testing.T) {
	c := NewController(DefaultBehavior(), DefaultMomentumPolicy())
	a, b, h := "a", "b", "holdable"

	c.SetOverride(a, None)
	c.SetOverride(b, Toggle)
	c.OverrideFor(h, Inverted, 2)
	c.SetGravity(Inverted, false)

	cases := []struct {
		obj  any
		want Mode
	}{
		{a, Normal},
		{b, Normal},
		{h, Inverted},
		{"plain", Inverted},
	}
	for _, tc := range cases {
		if got := c.Effective(tc.obj); got != tc.want {
			t.Fatalf("effective(%v) = %s, want %s", tc.obj, got, tc.want)
		}
	}

	c.SetGravity(Normal, false)
	if got := c.Effective(h); got != Inverted {
		t.Fatalf("holdable override lost: %s", got)
	}
	c.Tick(1.5)
	if _, ok := c.Override(h); !ok {
		t.Fatalf("holdable override cleared early")
	}
	c.Tick(0.5)
	if _, ok := c.Override(h); ok {
		t.Fatalf("holdable override survived its window")
	}
	if got := c.Effective(h); got != Normal {
		t.Fatalf("effective(holdable) = %s after reset", got)
	}

	c.ClearOverride(b)
	if c.ShouldInvert(b) {
		t.Fatalf("cleared override still applied")
	}
}

func TestSnapshotPerFrame(t *testing.T) {
	c := NewController(DefaultBehavior(), DefaultMomentumPolicy())
	s := c.BeginFrame()
	if s.Frame != 1 || s.ChangedThisFrame || s.Mode != Normal {
		t.Fatalf("first snapshot %+v", s)
	}
	c.SetGravity(Inverted, false)
	if c.Snapshot().Mode != Normal {
		t.Fatalf("snapshot changed mid-frame")
	}
	s = c.BeginFrame()
	if !s.ChangedThisFrame || s.Mode != Inverted {
		t.Fatalf("second snapshot %+v", s)
	}
	if s = c.BeginFrame(); s.ChangedThisFrame {
		t.Fatalf("change reported twice")
	}
}

type host struct {
	vx, vy         float64
	jumpGraceTimer float32
	varJumpTimer   float32
	wallSlideTimer float32
	launched       bool
}

func (h *host) Velocity() (float64, float64) { return h.vx, h.vy }
func (h *host) SetVelocity(x, y float64)     { h.vx, h.vy = x, y }
func (h *host) Instance() any                { return h }

func TestMomentumPolicy(t *testing.T) {
	c := NewController(DefaultBehavior(), DefaultMomentumPolicy())
	h := &host{vx: 30, vy: 120, jumpGraceTimer: 0.1, varJumpTimer: 0.2, launched: true}
	c.Track(nil, h)
	c.Track(nil, h)
	if c.Movers() != 1 {
		t.Fatalf("movers = %d", c.Movers())
	}

	c.SetGravity(Inverted, true)
	if h.vx != 30 || h.vy != -120 {
		t.Fatalf("velocity = (%v, %v)", h.vx, h.vy)
	}
	if h.jumpGraceTimer != 0 || h.varJumpTimer != 0 || h.launched {
		t.Fatalf("fields not reset: %+v", h)
	}
	if math.Abs(float64(h.wallSlideTimer)-1.2) > 1e-6 {
		t.Fatalf("wallSlideTimer = %v", h.wallSlideTimer)
	}

	c.SetGravity(Normal, false)
	if h.vy != -120 {
		t.Fatalf("momentum applied without the flag")
	}

	c.Untrack(h)
	c.SetGravity(Inverted, true)
	if h.vy != -120 {
		t.Fatalf("untracked mover changed")
	}
}

type worldBody struct {
	vx, vy float64
}

func (b *worldBody) Velocity() (float64, float64) { return b.vx, b.vy }
func (b *worldBody) SetVelocity(x, y float64)     { b.vx, b.vy = x, y }
func (*worldBody) WorldFrame() bool               { return true }

func TestMomentumFollowsEffectiveMode(t *testing.T) {
	tests := []struct {
		name     string
		override []Mode
		mover    Mover
		wantVY   float64
	}{
		{name: "global", mover: &host{vy: 120}, wantVY: -120},
		{name: "pinned normal", override: []Mode{Normal}, mover: &host{vy: 120}, wantVY: 120},
		{name: "ignores gravity", override: []Mode{None}, mover: &host{vy: 120}, wantVY: 120},
		{name: "opposite of global", override: []Mode{Toggle}, mover: &host{vy: 120}, wantVY: -120},
		{name: "world frame body", mover: &worldBody{vy: 120}, wantVY: 120},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := NewController(DefaultBehavior(), DefaultMomentumPolicy())
			owner := "entity"
			for _, m := range tc.override {
				c.SetOverride(owner, m)
			}
			m := tc.mover
			c.Track(owner, m)

			c.SetGravity(Inverted, true)
			if _, vy := m.Velocity(); vy != tc.wantVY {
				t.Fatalf("vy = %v, want %v", vy, tc.wantVY)
			}
		})
	}
}

func TestPolicyBindDropsMissingFields(t *testing.T) {
	_, missing := DefaultMomentumPolicy().Bind(reflect.TypeFor[host]())
	want := []string{"dashAttackTimer", "gliderBoostTimer", "varJumpSpeed", "wallBoostTimer"}
	if !reflect.DeepEqual(missing, want) {
		t.Fatalf("missing = %v, want %v", missing, want)
	}
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
behavior:
  switch_cooldown: -2
  dash_to_toggle: true
  initial: inverted
momentum:
  speed_y_scale: 0.5
  fields:
    - field: launched
      value: false
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	b := cfg.Behavior
	if b.SwitchCooldown != 0 || b.SpringCooldown != DefaultSpringCooldown || !b.DashToToggle || !b.SwitchOnHoldables {
		t.Fatalf("behavior = %+v", b)
	}
	if b.Initial != Inverted {
		t.Fatalf("initial = %s", b.Initial)
	}
	if !cfg.Momentum.InvertSpeedY || cfg.Momentum.SpeedYScale != 0.5 || len(cfg.Momentum.Fields) != 1 {
		t.Fatalf("momentum = %+v", cfg.Momentum)
	}

	if _, err := ParseConfig([]byte("behavior:\n  initial: sideways\n")); err == nil {
		t.Fatalf("unknown mode accepted")
	}
}
