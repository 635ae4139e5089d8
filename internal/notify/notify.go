package notify

import (
	"context"
	"time"

	"github.com/google/uuid"

	"halo-summarizer/internal/llm"
)

// EventType enumerates messages sent to other components.
type EventType string

const (
	EventSettingsUpdated EventType = "settings.updated"
)

// Event tells listeners that something they cache has changed.
type Event struct {
	ID       uuid.UUID        `json:"id"`
	Type     EventType        `json:"type"`
	Provider llm.ProviderName `json:"provider,omitempty"`
	At       time.Time        `json:"at"`
}

// NewEvent stamps a fresh ID and time.
func NewEvent(t EventType, provider llm.ProviderName) Event {
	return Event{ID: uuid.New(), Type: t, Provider: provider, At: time.Now().UTC()}
}

// Notifier delivers events. Delivery is best-effort.
type Notifier interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }
