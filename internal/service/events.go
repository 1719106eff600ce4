package service

import "sync"

// EventType defines the type of event
type EventType string

const (
	EventOperatorAdded           EventType = "operator_added"
	EventOperatorDeleted         EventType = "operator_deleted"
	EventOperatorPropertyChanged EventType = "operator_property_changed"
	EventLinkAdded               EventType = "link_added"
	EventLinkDeleted             EventType = "link_deleted"
	EventExecuteStarted          EventType = "execute_started"
	EventExecuteEnded            EventType = "execute_ended"
	EventCatalogReloaded         EventType = "catalog_reloaded"
	EventWorkflowImported        EventType = "workflow_imported"
)

// Event represents an event that occurred in the system
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload,omitempty"`
}

// EventName names the SSE event the hub sends this as
func (e Event) EventName() string { return string(e.Type) }

// EventBus fans events out to channel subscribers
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[chan<- Event]struct{}
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[chan<- Event]struct{}),
	}
}

// Subscribe adds a subscriber and returns a function that removes it
func (eb *EventBus) Subscribe(ch chan<- Event) func() {
	eb.mu.Lock()
	eb.subscribers[ch] = struct{}{}
	eb.mu.Unlock()
	return func() {
		eb.mu.Lock()
		delete(eb.subscribers, ch)
		eb.mu.Unlock()
	}
}

// Publish sends an event to all subscribers without blocking
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	for ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber is slow, skip
		}
	}
}
