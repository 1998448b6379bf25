package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/rtCamp/next-crm/internal/domain/events"
	"github.com/rtCamp/next-crm/internal/domain/models"
	"github.com/rtCamp/next-crm/internal/domain/ports"
)

// EventType is an alias to the domain type
type EventType = events.EventType

// RecordEventPayload is published for record lifecycle events
type RecordEventPayload struct {
	Doctype     string              `json:"doctype"`
	Name        string              `json:"name"`
	CurrentUser *models.UserSession `json:"current_user,omitempty"`
}

// ConversionEventPayload is published once a lead was carried over to an opportunity
type ConversionEventPayload struct {
	Lead        string              `json:"lead"`
	Opportunity string              `json:"opportunity"`
	CurrentUser *models.UserSession `json:"current_user,omitempty"`
}

// EventHandler is a function that handles an event.
type EventHandler = ports.EventHandler

type subscription struct {
	id      uint64
	handler EventHandler
}

// EventBus is an in-process publish-subscribe bus.
// It implements ports.EventPublisher.
type EventBus struct {
	handlers map[EventType][]subscription
	nextID   uint64
	mu       sync.RWMutex
}

var _ ports.EventPublisher = (*EventBus)(nil)

// NewEventBus creates a new EventBus instance
func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[EventType][]subscription),
	}
}

// Subscribe registers a handler for a specific event type
// Returns an unsubscribe function
func (eb *EventBus) Subscribe(eventType EventType, handler EventHandler) func() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.nextID++
	id := eb.nextID
	eb.handlers[eventType] = append(eb.handlers[eventType], subscription{id: id, handler: handler})

	return func() {
		eb.mu.Lock()
		defer eb.mu.Unlock()

		subs := eb.handlers[eventType]
		for i, s := range subs {
			if s.id == id {
				eb.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
	}
}

// Publish runs every handler of eventType in registration order and stops at the first error
func (eb *EventBus) Publish(ctx context.Context, eventType EventType, payload interface{}) error {
	eb.mu.RLock()
	subs := append([]subscription(nil), eb.handlers[eventType]...)
	eb.mu.RUnlock()

	for _, s := range subs {
		if err := s.handler(ctx, payload); err != nil {
			return fmt.Errorf("EventBus handler error for %s: %w", eventType, err)
		}
	}

	return nil
}
