package script

import (
	"github.com/d5/tengo/v2"
)

// Coroutine drives a routine that spans several frames. The routine returns
// a parameterless closure; each Resume calls it once and the coroutine ends
// when it returns a falsy value.
type Coroutine struct {
	unit    *Unit
	routine string
	decl    *Decl
	inst    *tengo.CompiledFunction
	done    bool
}

// Start invokes routine and captures the body it returns. A routine that
// returns anything other than a function finishes immediately.
func (u *Unit) Start(routine string, args ...tengo.Object) (*Coroutine, error) {
	res, err := u.Invoke(routine, args...)
	if err != nil {
		return nil, err
	}
	co := &Coroutine{unit: u, routine: routine}
	inst, ok := res.(*tengo.CompiledFunction)
	if !ok {
		co.done = true
		return co, nil
	}
	co.inst = inst
	co.decl = u.resumableFor(routine, inst)
	return co, nil
}

// Resume advances the coroutine by one step and reports whether it is still
// running. The closure is rebound to its declaration's current body first,
// so patches installed or removed since the last step take effect.
func (c *Coroutine) Resume() (bool, error) {
	if c == nil || c.done {
		return false, nil
	}
	if c.decl != nil {
		c.inst.Instructions = c.decl.Fn.Instructions
		c.inst.SourceMap = c.decl.Fn.SourceMap
		c.inst.NumLocals = c.decl.Fn.NumLocals
	}
	res, err := c.unit.Call(c.inst)
	if err != nil {
		c.done = true
		return false, err
	}
	if res.IsFalsy() {
		c.done = true
		return false, nil
	}
	return true, nil
}

func (c *Coroutine) Done() bool { return c == nil || c.done }

// Cancel stops the coroutine without running it again.
func (c *Coroutine) Cancel() {
	if c != nil {
		c.done = true
	}
}

func (c *Coroutine) Routine() string { return c.routine }

// Decl returns the resumable declaration backing the coroutine, or nil when
// the returned closure could not be traced back to one.
func (c *Coroutine) Decl() *Decl { return c.decl }

func (u *Unit) resumableFor(routine string, inst *tengo.CompiledFunction) *Decl {
	var candidates []*Decl
	for _, d := range u.ordered {
		if d.Kind == KindResumable && IsResumableOf(d.Name, routine) {
			candidates = append(candidates, d)
		}
	}
	// A fresh closure shares its instruction slice with the declaration.
	for _, d := range candidates {
		if sameInstructions(d.Fn.Instructions, inst.Instructions) {
			return d
		}
	}
	if len(candidates) == 1 {
		return candidates[0]
	}
	log.Warningf("script: unit=%s routine=%s: resumable body not traced", u.Name, routine)
	return nil
}

func sameInstructions(a, b []byte) bool {
	return len(a) == len(b) && len(a) > 0 && &a[0] == &b[0]
}
