package gravity

import "weak"

// Change describes one transition of the global mode.
type Change struct {
	Mode     Mode
	Previous Mode
	Momentum bool
	Origin   any
	Frame    uint64
}

// Listener receives mode changes. The registry only holds it weakly; the
// owner keeps it alive.
type Listener struct {
	OnChange func(Change)
	disabled bool
}

func NewListener(fn func(Change)) *Listener {
	return &Listener{OnChange: fn}
}

func (l *Listener) SetEnabled(enabled bool) { l.disabled = !enabled }
func (l *Listener) Enabled() bool           { return !l.disabled }

type registration struct {
	ptr      weak.Pointer[Listener]
	detached bool
}

// Registry delivers changes to listeners in the order they were attached.
type Registry struct {
	entries      []*registration
	broadcasting int
}

// Attach adds l. Attaching an attached listener does nothing.
func (r *Registry) Attach(l *Listener) bool {
	if l == nil || r.find(l) != nil {
		return false
	}
	r.entries = append(r.entries, &registration{ptr: weak.Make(l)})
	return true
}

// Detach removes l. During a broadcast the entry is only marked, so the
// listeners not yet visited are unaffected.
func (r *Registry) Detach(l *Listener) bool {
	e := r.find(l)
	if e == nil {
		return false
	}
	e.detached = true
	if r.broadcasting == 0 {
		r.Compact()
	}
	return true
}

// Broadcast delivers ch to every live, enabled listener attached before the
// call and returns how many received it.
func (r *Registry) Broadcast(ch Change) int {
	r.broadcasting++
	defer func() {
		r.broadcasting--
		if r.broadcasting == 0 {
			r.Compact()
		}
	}()

	delivered := 0
	for _, e := range r.entries[:len(r.entries):len(r.entries)] {
		if e.detached {
			continue
		}
		l := e.ptr.Value()
		if l == nil || l.disabled || l.OnChange == nil {
			continue
		}
		l.OnChange(ch)
		delivered++
	}
	return delivered
}

// Len counts attached listeners that are still alive.
func (r *Registry) Len() int {
	n := 0
	for _, e := range r.entries {
		if !e.detached && e.ptr.Value() != nil {
			n++
		}
	}
	return n
}

// Compact drops detached and collected entries.
func (r *Registry) Compact() {
	kept := r.entries[:0]
	for _, e := range r.entries {
		if !e.detached && e.ptr.Value() != nil {
			kept = append(kept, e)
		}
	}
	clear(r.entries[len(kept):])
	r.entries = kept
}

func (r *Registry) find(l *Listener) *registration {
	p := weak.Make(l)
	for _, e := range r.entries {
		if !e.detached && e.ptr == p {
			return e
		}
	}
	return nil
}
