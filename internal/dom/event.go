package dom

import "context"

// Event types dispatched by this package.
const (
	EventDOMContentLoaded = "DOMContentLoaded"
	EventSubmit           = "submit"
	EventClick            = "click"
)

// Listener handles a dispatched event.
type Listener func(ctx context.Context, e *Event)

// Event is a dispatched DOM event.
type Event struct {
	// Type is the event type, e.g. "submit".
	Type string

	// Target is the element the event was dispatched on; nil for document events.
	Target *Element

	defaultPrevented bool
}

// NewEvent creates an event of the given type targeting target.
func NewEvent(eventType string, target *Element) *Event {
	return &Event{Type: eventType, Target: target}
}

// PreventDefault cancels the event's default action.
func (e *Event) PreventDefault() {
	e.defaultPrevented = true
}

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

// listenerSet is an ordered event-type to listeners map.
type listenerSet map[string][]Listener

func (s listenerSet) add(eventType string, l Listener) {
	s[eventType] = append(s[eventType], l)
}

// dispatch calls the listeners registered for e.Type in registration order.
// Listeners added during dispatch are not called for the current event.
func (s listenerSet) dispatch(ctx context.Context, e *Event) {
	listeners := append([]Listener(nil), s[e.Type]...)
	for _, l := range listeners {
		l(ctx, e)
	}
}
