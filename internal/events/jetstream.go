package events

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/feral-file/ff-crowdfund/internal/adapter"
	"github.com/feral-file/ff-crowdfund/internal/domain"
	"github.com/feral-file/ff-crowdfund/internal/logger"
)

// SUBJECT_PREFIX prefixes every published subject: crowdfund.<event_type>
const SUBJECT_PREFIX = "crowdfund"

// Config holds the configuration for NATS JetStream connection
type Config struct {
	URL            string
	StreamName     string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectionName string
	// MaxAge bounds how long the stream retains events, unlimited when zero
	MaxAge time.Duration
}

// Publisher is a Sink that can be closed
type Publisher interface {
	Sink
	Close()
}

type publisher struct {
	nc    adapter.NatsConn
	js    adapter.JetStream
	codec adapter.Codec
}

// NewPublisher connects to NATS, ensures the event stream exists and returns a JetStream sink
func NewPublisher(ctx context.Context, cfg Config, natsJS adapter.NatsJetStream, codec adapter.Codec) (Publisher, error) {
	opts := []nats.Option{
		nats.Name(cfg.ConnectionName),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Error(err, zap.String("message", "Disconnected from NATS"))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("Reconnected to NATS", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}

	nc, js, err := natsJS.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS and create JetStream: %w", err)
	}

	err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     cfg.StreamName,
		Subjects: []string{SUBJECT_PREFIX + ".>"},
		Storage:  jetstream.FileStorage,
		MaxAge:   cfg.MaxAge,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create stream %s: %w", cfg.StreamName, err)
	}

	return &publisher{
		nc:    nc,
		js:    js,
		codec: codec,
	}, nil
}

// Publish publishes a ledger event to NATS JetStream.
// The event id is the message id so redeliveries are deduplicated by the server.
func (p *publisher) Publish(ctx context.Context, event domain.Event) error {
	logger.DebugCtx(ctx, "Publishing Nats event", zap.String("event_id", event.ID), zap.String("event_type", string(event.Type)))

	data, err := p.codec.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = p.js.Publish(ctx, Subject(event.Type), data, jetstream.WithMsgID(event.ID))
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// Subject returns the NATS subject of an event type
func Subject(eventType domain.EventType) string {
	// Format: crowdfund.{event_type}
	// e.g., crowdfund.project_funded, crowdfund.refund_failed
	return fmt.Sprintf("%s.%s", SUBJECT_PREFIX, eventType)
}

// Close closes the NATS connection
func (p *publisher) Close() {
	if p.nc == nil {
		return
	}

	p.nc.Close()
}
