package ecs

// EventKind names an event type.
type EventKind string

const (
	EventGravityChanged EventKind = "gravity_changed"
	EventSpringBounce   EventKind = "spring_bounce"
	EventRefillUsed     EventKind = "refill_used"
	EventRefillRespawn  EventKind = "refill_respawned"
	EventDashStarted    EventKind = "dash_started"
	EventLanded         EventKind = "landed"
)

// Event is a generic ECS event payload.
type Event struct {
	Kind   EventKind
	Entity Entity
	Data   any
}

// EventQueue is a FIFO of events raised during a frame. It is cleared when
// the frame ends.
type EventQueue struct {
	items []Event
}

func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

// Peek returns the queued events of kind without removing them.
func (q *EventQueue) Peek(kind EventKind) []Event {
	if q == nil {
		return nil
	}
	var out []Event
	for _, evt := range q.items {
		if evt.Kind == kind {
			out = append(out, evt)
		}
	}
	return out
}

func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}

func (q *EventQueue) flush() {
	if q == nil {
		return
	}
	q.items = nil
}
