// Package entity builds scene entities from yaml prefabs and level layouts.
package entity

import (
	"fmt"
	"sort"

	"github.com/milk9111/gravityhelper/actor"
	"github.com/milk9111/gravityhelper/ecs"
	"github.com/milk9111/gravityhelper/ecs/component"
	"github.com/milk9111/gravityhelper/levels"
	"github.com/milk9111/gravityhelper/prefabs"
)

// Context carries what builders need beyond the world.
type Context struct {
	World   *ecs.World
	Solids  *actor.Solids
	Prefabs *prefabs.Source
}

type buildFn func(ctx *Context, spec levels.Entity) (ecs.Entity, error)

var registry = map[string]buildFn{
	"player":        NewPlayer,
	"spring":        NewSpring,
	"refill":        NewRefill,
	"holdable":      NewHoldable,
	"seeker":        NewSeeker,
	"gravity_timer": NewGravityTimer,
}

// Types lists the entity types levels may place.
func Types() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuildEntity builds one level entity. A failed build leaves nothing in the
// world.
func BuildEntity(ctx *Context, spec levels.Entity) (ecs.Entity, error) {
	if ctx == nil || ctx.World == nil {
		return ecs.NoEntity, fmt.Errorf("build entity: world is nil")
	}
	builder, ok := registry[spec.Type]
	if !ok {
		return ecs.NoEntity, fmt.Errorf("build entity: unknown type %q", spec.Type)
	}
	e, err := builder(ctx, spec)
	if err != nil {
		return ecs.NoEntity, fmt.Errorf("build entity: %s: %w", spec.Type, err)
	}
	return e, nil
}

// BuildLevel adds the level's solids and entities to the world. On error
// every entity built so far is destroyed again.
func BuildLevel(ctx *Context, lvl *levels.Level) error {
	if ctx.Solids == nil {
		ctx.Solids = actor.NewSolids()
	}
	var built []ecs.Entity
	fail := func(err error) error {
		for _, e := range built {
			ecs.DestroyEntity(ctx.World, e)
		}
		return fmt.Errorf("build level %s: %w", lvl.Name, err)
	}

	for _, box := range lvl.Solids {
		e, err := NewSolid(ctx, box)
		if err != nil {
			return fail(err)
		}
		built = append(built, e)
	}
	for _, spec := range lvl.Entities {
		e, err := BuildEntity(ctx, spec)
		if err != nil {
			return fail(err)
		}
		built = append(built, e)
	}
	return nil
}

// builder collects the components of one entity and destroys it if any add
// fails.
type builder struct {
	w   *ecs.World
	e   ecs.Entity
	err error
}

func newBuilder(w *ecs.World) *builder {
	return &builder{w: w, e: ecs.CreateEntity(w)}
}

func add[T any](b *builder, kind component.ComponentKind[T], v *T) {
	if b.err != nil {
		return
	}
	if err := ecs.Add(b.w, b.e, kind, v); err != nil {
		b.err = fmt.Errorf("add %s: %w", kind.Name(), err)
	}
}

func (b *builder) done() (ecs.Entity, error) {
	if b.err != nil {
		ecs.DestroyEntity(b.w, b.e)
		return ecs.NoEntity, b.err
	}
	return b.e, nil
}

func sprite(size prefabs.SizeSpec, spec prefabs.SpriteSpec) *component.Sprite {
	return &component.Sprite{Width: size.Width, Height: size.Height, Color: spec.Color.RGBA}
}

func listener(spec prefabs.ListenerSpec) *component.GravityListener {
	return &component.GravityListener{FlipSprite: spec.FlipSprite, Emit: spec.Emit}
}

func loadSpec[T any](ctx *Context, file string, props map[string]any) (T, error) {
	src := ctx.Prefabs
	if src == nil {
		src = prefabs.Default
	}
	base, err := prefabs.LoadSpecFrom[T](src, file)
	if err != nil {
		return base, err
	}
	spec, err := prefabs.Overlay(base, props)
	if err != nil {
		return spec, fmt.Errorf("props: %w", err)
	}
	return spec, nil
}
