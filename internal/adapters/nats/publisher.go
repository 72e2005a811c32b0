package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/samirrijal/ecobin/internal/core/domain"
)

// Subjects and streams used by the service.
const (
	StreamSubmissions      = "SUBMISSIONS"
	SubjectBinSubmitted    = "ecobin.submissions.bin"
	SubjectCatalogChanged  = "ecobin.catalog.changed"
	reviewerDurable        = "bin-reviewer"
	submissionsSubjectWild = "ecobin.submissions.>"
)

// Connect opens a NATS connection that keeps retrying in the background.
func Connect(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("ecobin"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}

// EnsureStreams creates or updates the JetStream streams the service uses.
func EnsureStreams(js nats.JetStreamContext) error {
	streams := []nats.StreamConfig{
		{
			Name:      StreamSubmissions,
			Subjects:  []string{submissionsSubjectWild},
			Retention: nats.WorkQueuePolicy,
			MaxAge:    7 * 24 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist, try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				return fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}
	return nil
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := Connect(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	if err := EnsureStreams(js); err != nil {
		return nil, err
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishBinSubmitted queues a bin submission for review. The submission id
// is used as the message id so retried publishes are deduplicated.
func (p *Publisher) PublishBinSubmitted(ctx context.Context, event *domain.BinSubmittedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectBinSubmitted, data, nats.Context(ctx), nats.MsgId(event.SubmissionID))
	return err
}

// PublishCatalogChanged tells every API instance to drop its cached catalog.
func (p *Publisher) PublishCatalogChanged(ctx context.Context) error {
	if err := p.conn.Publish(SubjectCatalogChanged, nil); err != nil {
		return err
	}
	return p.conn.FlushWithContext(ctx)
}

// Conn exposes the underlying connection for health checks.
func (p *Publisher) Conn() *nats.Conn { return p.conn }

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}
