package events

// EventKind represents the type of domain event produced by the capture
// layer.
type EventKind string

const (
	EventItemCaptured EventKind = "item_captured"
)

// Event carries only the item id; consumers query the full record from
// storage.
type Event struct {
	Kind   EventKind
	ItemID string
}

// Bus is a lightweight in-process pub-sub implementation backed by a
// buffered channel.
type Bus struct {
	ch chan Event
}

// NewBus creates a bus with the given buffer size.
func NewBus(buffer int) *Bus {
	return &Bus{ch: make(chan Event, buffer)}
}

// Publish attempts to enqueue the event without blocking.
// Returns true if published, false if the buffer is full. A dropped
// event is harmless: the inbox worker's poll tick picks the item up.
func (b *Bus) Publish(evt Event) bool {
	select {
	case b.ch <- evt:
		return true
	default:
		return false
	}
}

// Subscribe returns a read-only channel for consumers.
func (b *Bus) Subscribe() <-chan Event {
	return b.ch
}
