package patches

import (
	"fmt"

	"github.com/d5/tengo/v2/parser"
	"github.com/milk9111/gravityhelper/hook"
	"github.com/milk9111/gravityhelper/il"
)

// Hook names.
const (
	PlayerUnitY      = "player.unit_y"
	PlayerMoveV      = "player.move_v"
	PlayerFeet       = "player.feet"
	PlayerDash       = "player.dash"
	SeekerRegenerate = "seeker.regenerate"
)

// Hooks returns every hook this package declares, bound to d.
func Hooks(d *Delegates) []hook.Hook {
	return []hook.Hook{
		{
			Name:   PlayerUnitY,
			Target: hook.Routine("player", "update"),
			Manipulate: hook.Patches(il.Patch{
				Predicate:   UnitY,
				Replacement: d.UnitY(),
				Count:       1,
				// self is the routine's first parameter
				Context: []*il.Instr{il.LoadLocal(0)},
			}),
		},
		{
			Name:   PlayerMoveV,
			Target: hook.Routine("player", "update"),
			Manipulate: hook.Patches(il.Patch{
				Predicate:   MoveV,
				Replacement: d.InvertArgFor("move_v"),
				Count:       1,
			}),
		},
		{
			Name:   PlayerFeet,
			Target: hook.Routine("player", "feet"),
			Manipulate: hook.Patches(il.Patch{
				Predicate:   Bottom,
				Replacement: d.SwapFor("bottom", "top"),
				Count:       il.All,
			}),
		},
		{
			Name:   PlayerDash,
			Target: hook.Resumable("player", "dash"),
			Manipulate: hook.Patches(
				il.Patch{Predicate: Aim, Replacement: d.InvertResultFor("aim"), Count: 1},
				il.Patch{Predicate: MoveV, Replacement: d.InvertArgFor("move_v"), Count: 1},
			),
		},
		{
			Name:       SeekerRegenerate,
			Target:     hook.Resumable("seeker", "regenerate_routine"),
			Manipulate: mirrorGoal(d),
			Optional:   true,
		},
	}
}

// mirrorGoal wraps the first geom.add result, the hover goal, in
// MirrorAbout with the actor whose position() feeds it as the anchor.
func mirrorGoal(d *Delegates) hook.Manipulator {
	return func(b *il.Body) error {
		c := il.NewCursor(b)
		idx, ok := c.FindNext(Position)
		if !ok {
			return &il.PatternError{Body: b.Name, Pattern: Position.Name}
		}
		site, err := b.CallSite(b.At(idx))
		if err != nil {
			return err
		}
		anchor := b.At(site.CalleeStart())
		if anchor.Op != parser.OpGetFree && anchor.Op != parser.OpGetLocal {
			return fmt.Errorf("patches: %s: anchor loaded by %s", b.Name, il.OpName(anchor.Op))
		}
		if err := c.GotoNext(il.After, VecAdd); err != nil {
			return err
		}
		return il.WrapValue(c, d.MirrorAbout(), il.NewInstr(anchor.Op, anchor.Operands...))
	}
}
