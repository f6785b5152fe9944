package entity

import (
	"strings"
	"testing"

	"github.com/milk9111/gravityhelper/actor"
	"github.com/milk9111/gravityhelper/ecs"
	"github.com/milk9111/gravityhelper/ecs/component"
	"github.com/milk9111/gravityhelper/gravity"
	"github.com/milk9111/gravityhelper/levels"
	"github.com/milk9111/gravityhelper/prefabs"
)

func newContext() *Context {
	return &Context{World: ecs.NewWorld(), Prefabs: &prefabs.Source{FS: prefabs.Embedded()}}
}

func TestBuildIntroLevel(t *testing.T) {
	levels.Dir = ""
	lvl, err := levels.Load("intro")
	if err != nil {
		t.Fatalf("load level: %v", err)
	}
	ctx := newContext()
	if err := BuildLevel(ctx, lvl); err != nil {
		t.Fatalf("build level: %v", err)
	}
	w := ctx.World

	counts := []struct {
		name string
		got  int
		want int
	}{
		{"players", ecs.Count(w, component.PlayerComponent.Kind()), 1},
		{"springs", ecs.Count(w, component.SpringComponent.Kind()), 3},
		{"refills", ecs.Count(w, component.RefillComponent.Kind()), 2},
		{"holdables", ecs.Count(w, component.HoldableComponent.Kind()), 1},
		{"seekers", ecs.Count(w, component.SeekerComponent.Kind()), 1},
		{"solids", ecs.Count(w, component.SolidTagComponent.Kind()), len(lvl.Solids)},
	}
	for _, c := range counts {
		if c.got != c.want {
			t.Fatalf("expected %d %s, got %d", c.want, c.name, c.got)
		}
	}
	if len(ctx.Solids.Rects()) != len(lvl.Solids) {
		t.Fatalf("expected solids registered for collision")
	}

	pe, p, _ := ecs.First(w, component.PlayerComponent.Kind())
	if id, ok := actor.EntityID(p.Self); !ok || ecs.Entity(id) != pe {
		t.Fatalf("expected the bindings to carry the entity id, got %d", id)
	}
	if p.Actor.OnGround() {
		t.Fatalf("expected ground state to be unknown before the first update")
	}
	if !p.Actor.CollideAt(0, 1) {
		t.Fatalf("expected the player to spawn standing on the floor")
	}

	var ceiling *component.Spring
	ecs.ForEach(w, component.SpringComponent.Kind(), func(_ ecs.Entity, sp *component.Spring) {
		if sp.Orientation == component.OrientationCeiling {
			ceiling = sp
		}
	})
	if ceiling == nil || ceiling.Gravity != gravity.Inverted || ceiling.Cooldown != 1 {
		t.Fatalf("expected the ceiling spring to set inverted gravity with the prefab cooldown, got %+v", ceiling)
	}
}

func TestBuildEntityErrorsLeaveNothing(t *testing.T) {
	tests := []struct {
		name string
		spec levels.Entity
		want string
	}{
		{name: "unknown type", spec: levels.Entity{Type: "lava"}, want: "unknown type"},
		{name: "bad orientation", spec: levels.Entity{Type: "spring", Props: map[string]any{"orientation": "diagonal"}}, want: "orientation"},
		{name: "bad prop", spec: levels.Entity{Type: "refill", Props: map[string]any{"charges": "lots"}}, want: "props"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := newContext()
			_, err := BuildEntity(ctx, tc.spec)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
			if n := len(ecs.Entities(ctx.World)); n != 0 {
				t.Fatalf("expected no entities left, got %d", n)
			}
		})
	}
}

func TestBuildLevelRollsBack(t *testing.T) {
	ctx := newContext()
	lvl := &levels.Level{
		Name:   "broken",
		Solids: []levels.Box{{Width: 10, Height: 10}},
		Entities: []levels.Entity{
			{Type: "refill"},
			{Type: "lava"},
		},
	}
	if err := BuildLevel(ctx, lvl); err == nil {
		t.Fatalf("expected error")
	}
	if n := len(ecs.Entities(ctx.World)); n != 0 {
		t.Fatalf("expected rollback, got %d entities", n)
	}
}

func TestSpringCooldownFallsBackToBehavior(t *testing.T) {
	ctx := newContext()
	e, err := NewSpring(ctx, levels.Entity{Type: "spring", Props: map[string]any{"cooldown": nil}})
	if err != nil {
		t.Fatalf("spring: %v", err)
	}
	sp, _ := ecs.Get(ctx.World, e, component.SpringComponent.Kind())
	if sp.Cooldown >= 0 {
		t.Fatalf("expected the spring to defer to the controller cooldown, got %v", sp.Cooldown)
	}
}
