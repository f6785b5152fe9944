package il

import "strings"

// MoveType says where a successful search leaves the cursor.
type MoveType int

const (
	// Before leaves the cursor in front of the first matched instruction.
	Before MoveType = iota
	// After leaves the cursor behind the last matched instruction.
	After
)

// Cursor is a position between two instructions of a body. Index 0 is in
// front of the first instruction, Len() is behind the last.
type Cursor struct {
	body  *Body
	index int
}

func NewCursor(b *Body) *Cursor {
	return &Cursor{body: b}
}

func (c *Cursor) Body() *Body { return c.body }
func (c *Cursor) Index() int  { return c.index }

// SetIndex moves the cursor, clamping to the body.
func (c *Cursor) SetIndex(i int) {
	if i < 0 {
		i = 0
	}
	if i > len(c.body.Instrs) {
		i = len(c.body.Instrs)
	}
	c.index = i
}

// Skip moves the cursor n instructions forward (or back for negative n).
func (c *Cursor) Skip(n int) { c.SetIndex(c.index + n) }

// Next returns the instruction right after the cursor.
func (c *Cursor) Next() *Instr { return c.body.At(c.index) }

// Prev returns the instruction right before the cursor.
func (c *Cursor) Prev() *Instr { return c.body.At(c.index - 1) }

// FindNext returns the index of the first run of instructions at or after
// the cursor that satisfies preds in order.
func (c *Cursor) FindNext(preds ...Predicate) (int, bool) {
	if len(preds) == 0 {
		return -1, false
	}
	for i := c.index; i+len(preds) <= len(c.body.Instrs); i++ {
		if c.matchAt(i, preds) {
			return i, true
		}
	}
	return -1, false
}

// FindPrev returns the index of the last run of instructions starting
// before the cursor that satisfies preds in order.
func (c *Cursor) FindPrev(preds ...Predicate) (int, bool) {
	if len(preds) == 0 {
		return -1, false
	}
	for i := c.index - 1; i >= 0; i-- {
		if i+len(preds) > len(c.body.Instrs) {
			continue
		}
		if c.matchAt(i, preds) {
			return i, true
		}
	}
	return -1, false
}

func (c *Cursor) TryGotoNext(move MoveType, preds ...Predicate) bool {
	i, ok := c.FindNext(preds...)
	if !ok {
		return false
	}
	c.land(i, len(preds), move)
	return true
}

func (c *Cursor) TryGotoPrev(move MoveType, preds ...Predicate) bool {
	i, ok := c.FindPrev(preds...)
	if !ok {
		return false
	}
	c.land(i, len(preds), move)
	return true
}

// GotoNext is TryGotoNext that reports a miss as a *PatternError.
func (c *Cursor) GotoNext(move MoveType, preds ...Predicate) error {
	if !c.TryGotoNext(move, preds...) {
		return c.notFound(preds)
	}
	return nil
}

// GotoPrev is TryGotoPrev that reports a miss as a *PatternError.
func (c *Cursor) GotoPrev(move MoveType, preds ...Predicate) error {
	if !c.TryGotoPrev(move, preds...) {
		return c.notFound(preds)
	}
	return nil
}

// Emit inserts instructions at the cursor and moves behind them. Jumps to
// the instruction after the cursor keep pointing at it.
func (c *Cursor) Emit(ins ...*Instr) {
	c.body.insert(c.index, false, ins...)
	c.index += len(ins)
}

// EmitLabeled is Emit, except jumps that targeted the instruction after the
// cursor now land on the first emitted instruction.
func (c *Cursor) EmitLabeled(ins ...*Instr) {
	c.body.insert(c.index, true, ins...)
	c.index += len(ins)
}

// Remove deletes the instruction after the cursor.
func (c *Cursor) Remove() *Instr {
	if c.index >= len(c.body.Instrs) {
		return nil
	}
	return c.body.remove(c.index)
}

func (c *Cursor) matchAt(i int, preds []Predicate) bool {
	for k, p := range preds {
		if p.Match == nil || !p.Match(c.body.Instrs[i+k]) {
			return false
		}
	}
	return true
}

func (c *Cursor) land(i, n int, move MoveType) {
	if move == After {
		c.index = i + n
		return
	}
	c.index = i
}

func (c *Cursor) notFound(preds []Predicate) error {
	return &PatternError{Body: c.body.Name, Pattern: describe(preds), From: c.index}
}

func describe(preds []Predicate) string {
	names := make([]string, 0, len(preds))
	for _, p := range preds {
		names = append(names, p.Name)
	}
	return strings.Join(names, ", ")
}
