package memory

import (
	"context"
	"slices"

	"restoledger/internal/domain/events"
)

// EventRecorder implements events.Publisher. Recorded events are part of the
// store state and disappear with a rolled back transaction.
type EventRecorder struct{ s *Store }

var _ events.Publisher = (*EventRecorder)(nil)

func (r *EventRecorder) Publish(ctx context.Context, event events.Event) error {
	defer r.s.write(ctx)()
	r.s.st.events = append(r.s.st.events, event)
	return nil
}

// All returns the recorded events in publish order.
func (r *EventRecorder) All() []events.Event {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return slices.Clone(r.s.st.events)
}

// OfType returns the recorded events of one type.
func (r *EventRecorder) OfType(eventType string) []events.Event {
	var out []events.Event
	for _, e := range r.All() {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}
