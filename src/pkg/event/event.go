// Package event handles change notifications without direct dependency
// between the tree engine and its observers.
package event

import (
	"context"
	"sync"

	"powertree/local-app/src/pkg/log"
)

// EventType represents the type of event
type EventType int

const (
	// TreeChanged is published after a mutation has been applied and the
	// tree recomputed, and after every drag release.
	TreeChanged EventType = iota
	// TreeReplaced is published when the whole tree was swapped by an
	// import, a quick-cache load, undo or redo.
	TreeReplaced
	SelectionChanged
	DisplayChanged
)

func (t EventType) String() string {
	switch t {
	case TreeChanged:
		return "TreeChanged"
	case TreeReplaced:
		return "TreeReplaced"
	case SelectionChanged:
		return "SelectionChanged"
	case DisplayChanged:
		return "DisplayChanged"
	default:
		return "Unknown"
	}
}

// Event represents an event with its type and associated data
type Event struct {
	Type EventType
	Data interface{}
}

// EventHandler is a function type for event handlers
type EventHandler func(Event)

// EventManager manages event subscriptions and publications
type EventManager struct {
	subscribers map[EventType][]EventHandler
	mu          sync.RWMutex
	logger      *log.Logger
}

// NewEventManager creates a new EventManager instance
func NewEventManager(logger *log.Logger) *EventManager {
	return &EventManager{
		subscribers: make(map[EventType][]EventHandler),
		logger:      logger,
	}
}

// Subscribe adds a new event handler for a specific event type
func (em *EventManager) Subscribe(eventType EventType, handler EventHandler) {
	em.mu.Lock()
	defer em.mu.Unlock()
	em.subscribers[eventType] = append(em.subscribers[eventType], handler)
}

// Publish calls every handler subscribed to the event type, in
// subscription order, before returning. A panicking handler is logged and
// does not stop the remaining handlers.
func (em *EventManager) Publish(event Event) {
	em.mu.RLock()
	handlers := append([]EventHandler(nil), em.subscribers[event.Type]...)
	em.mu.RUnlock()

	for _, handler := range handlers {
		em.dispatch(handler, event)
	}
}

func (em *EventManager) dispatch(h EventHandler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			em.logger.Error(context.Background(), "Panic in event handler", log.Fields{
				"event": event.Type.String(),
				"panic": r,
			})
		}
	}()
	h(event)
}
