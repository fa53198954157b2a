// Package publisher stamps and forwards audit events to a store.
package publisher

import (
	"context"
	"log/slog"

	audit "certportal/pkg/platform/audit"
	"certportal/pkg/requestcontext"
)

// Publisher enriches events with request metadata before persisting them.
// Emission is synchronous so the outbox row shares the caller's transaction.
type Publisher struct {
	store  audit.Store
	logger *slog.Logger
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit persists the event. Missing timestamp, category and request id are
// filled from the context.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if err := p.store.Append(ctx, event); err != nil {
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "failed to persist audit event",
				"action", event.Action,
				"certificate_id", event.CertificateID,
				"error", err,
			)
		}
		return err
	}
	return nil
}
