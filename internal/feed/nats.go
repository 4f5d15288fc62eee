package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/catlink/internal/config"
	cerrors "git.home.luguber.info/inful/catlink/internal/errors"
)

// NATSPublisher publishes mention events to a JetStream subject.
type NATSPublisher struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	subject string
}

// NewNATSPublisher connects to NATS and prepares the JetStream context for
// mention event publishing.
func NewNATSPublisher(cfg *config.EventsConfig) (*NATSPublisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("events config is required")
	}
	if !cfg.Enabled {
		return nil, fmt.Errorf("event publishing is disabled")
	}

	conn, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	slog.Info("NATS publisher initialized for mention events",
		"url", cfg.NATSURL,
		"subject", cfg.Subject)

	return &NATSPublisher{
		conn:    conn,
		js:      js,
		subject: cfg.Subject,
	}, nil
}

// PublishMention publishes a mention event.
func (p *NATSPublisher) PublishMention(event *MentionEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = p.js.Publish(ctx, p.subject, data)
	if err != nil {
		return cerrors.EventPublishError(p.subject, err).Build()
	}

	slog.Debug("Published mention event",
		"thread_id", event.ThreadID,
		"field_value", event.FieldValue)

	return nil
}

// Close closes the NATS connection.
func (p *NATSPublisher) Close() error {
	if p.conn != nil {
		p.conn.Close()
	}
	return nil
}
