package device

import "github.com/castgo/castv2/pkg/wire"

// EventTag discriminates the variant carried by an Event.
type EventTag uint8

const (
	// EventStatusUpdated fires whenever a fresh RECEIVER_STATUS replaces
	// the cached status (spec.md §4.6).
	EventStatusUpdated EventTag = iota

	// EventLaunchFailed fires on an inbound LAUNCH_ERROR. Additive to
	// spec.md's single StatusUpdated variant (see SPEC_FULL.md §3).
	EventLaunchFailed
)

// Event is one domain event surfaced to the host via Device.Events.
type Event struct {
	Tag         EventTag
	LaunchError *wire.LaunchErrorPayload
}

// MaxEventQueueSize bounds the Device event queue (spec.md §3 invariant,
// property #6): the oldest entries are evicted once this is exceeded.
const MaxEventQueueSize = 500

// eventQueue is a bounded FIFO with head-drop-on-overflow, implemented as
// a deque with an explicit trim on push (spec.md §9 re-architecture
// guidance).
type eventQueue struct {
	events []Event
}

func (q *eventQueue) push(e Event) {
	q.events = append(q.events, e)
	if overflow := len(q.events) - MaxEventQueueSize; overflow > 0 {
		q.events = q.events[overflow:]
	}
}

func (q *eventQueue) drain() []Event {
	out := q.events
	q.events = nil
	return out
}
