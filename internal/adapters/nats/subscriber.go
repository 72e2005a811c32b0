package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/samirrijal/ecobin/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber connects to NATS for consuming events.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := Connect(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeBinSubmitted consumes queued bin submissions with a durable
// consumer. Failed handlers are redelivered up to three times.
func (s *Subscriber) SubscribeBinSubmitted(ctx context.Context, handler func(ctx context.Context, event *domain.BinSubmittedEvent) error) error {
	if err := EnsureStreams(s.js); err != nil {
		return err
	}
	sub, err := s.js.Subscribe(SubjectBinSubmitted, func(msg *nats.Msg) {
		var event domain.BinSubmittedEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			slog.Error("decode bin submission event", "error", err)
			_ = msg.Term()
			return
		}
		if err := handler(ctx, &event); err != nil {
			slog.Warn("bin submission handler failed", "submission_id", event.SubmissionID, "error", err)
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable(reviewerDurable),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// SubscribeCatalogChanged listens for catalog change broadcasts.
func (s *Subscriber) SubscribeCatalogChanged(ctx context.Context, handler func(ctx context.Context) error) error {
	sub, err := s.conn.Subscribe(SubjectCatalogChanged, func(msg *nats.Msg) {
		if err := handler(ctx); err != nil {
			slog.Warn("catalog change handler failed", "error", err)
		}
	})
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
