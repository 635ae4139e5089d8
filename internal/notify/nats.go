package notify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const subjectPrefix = "halo.events."

// Publisher is the subset of *nats.Conn the notifier needs.
type Publisher interface {
	Publish(subject string, data []byte) error
	Drain() error
}

// NewNATS constructs a NATS-backed notifier.
func NewNATS(log *slog.Logger, conn Publisher) Notifier {
	return &natsNotifier{log: log, conn: conn}
}

// ConnectNATS dials url and wraps the connection.
func ConnectNATS(log *slog.Logger, url string) (Notifier, error) {
	nc, err := nats.Connect(url, nats.Name("halo-summarizer"))
	if err != nil {
		return nil, err
	}
	return NewNATS(log, nc), nil
}

type natsNotifier struct {
	log  *slog.Logger
	conn Publisher
}

// Subject is where events of type t are published.
func Subject(t EventType) string {
	return subjectPrefix + string(t)
}

func (n *natsNotifier) Publish(_ context.Context, event Event) error {
	if event.Type == "" {
		return errors.New("event type required")
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := n.conn.Publish(Subject(event.Type), body); err != nil {
		return err
	}
	n.log.Debug("event published", "id", event.ID, "type", event.Type)
	return nil
}

func (n *natsNotifier) Close() error {
	return n.conn.Drain()
}
