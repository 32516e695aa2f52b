package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/docmake/internal/logfields"
)

// BuildEvent is published after each watch-mode rebuild so downstream
// consumers (dashboards, notifiers) can react without polling.
type BuildEvent struct {
	BuildID    string    `json:"build_id"`
	Target     string    `json:"target"`
	Mode       string    `json:"mode,omitempty"`
	Outcome    string    `json:"outcome"`
	Warnings   int       `json:"warnings"`
	DurationMS int64     `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

// Publisher publishes build events to NATS JetStream.
type Publisher struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	subject string
}

// NewPublisher connects to NATS. Callers should treat a nil Publisher as
// "events disabled" and skip publishing.
func NewPublisher(url, subject string) (*Publisher, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	slog.Info("NATS publisher initialized", logfields.URL(url), slog.String("subject", subject))
	return &Publisher{conn: conn, js: js, subject: subject}, nil
}

// Publish sends a build event. Failures are logged, not fatal: event delivery
// never blocks or breaks a build.
func (p *Publisher) Publish(event BuildEvent) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	event.Timestamp = time.Now()
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("Failed to marshal build event", logfields.Error(err))
		return
	}
	if _, err := p.js.Publish(ctx, p.subject, data); err != nil {
		slog.Warn("Failed to publish build event", logfields.Error(err))
		return
	}
	slog.Debug("Published build event", logfields.BuildID(event.BuildID), logfields.Outcome(event.Outcome))
}

// Close closes the NATS connection.
func (p *Publisher) Close() {
	if p != nil && p.conn != nil {
		p.conn.Close()
	}
}
