// Package relay moves audit events from the transactional outbox to the
// message broker. Delivery is at least once: entries are marked processed
// only after the broker acknowledges them.
package relay

import (
	"context"
	"log/slog"
	"time"

	audit "certportal/pkg/platform/audit"
	txcontext "certportal/pkg/platform/tx"
)

const (
	defaultInterval  = 2 * time.Second
	defaultBatchSize = 100
)

// Outbox is the durable queue of unrelayed events.
type Outbox interface {
	FetchPending(ctx context.Context, limit int) ([]audit.OutboxEntry, error)
	MarkProcessed(ctx context.Context, ids []string, at time.Time) error
}

// Producer publishes a batch and returns once the broker has acknowledged
// every entry.
type Producer interface {
	Publish(ctx context.Context, entries []audit.OutboxEntry) error
}

// Relay polls the outbox and forwards batches to the producer.
type Relay struct {
	outbox    Outbox
	producer  Producer
	tx        txcontext.Runner
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
	metrics   *Metrics
}

type Option func(*Relay)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		r.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(r *Relay) {
		r.metrics = m
	}
}

// WithTxRunner holds the fetched rows locked until they are marked.
func WithTxRunner(runner txcontext.Runner) Option {
	return func(r *Relay) {
		r.tx = runner
	}
}

func WithInterval(d time.Duration) Option {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

func WithBatchSize(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

func New(outbox Outbox, producer Producer, opts ...Option) *Relay {
	r := &Relay{
		outbox:    outbox,
		producer:  producer,
		tx:        txcontext.Inline{},
		interval:  defaultInterval,
		batchSize: defaultBatchSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run relays until ctx is cancelled. Failed batches are logged and retried
// on the next tick.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		r.drainBacklog(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// drainBacklog keeps relaying while batches come back full.
func (r *Relay) drainBacklog(ctx context.Context) {
	for ctx.Err() == nil {
		n, err := r.Drain(ctx)
		if err != nil {
			if ctx.Err() == nil {
				r.logger.ErrorContext(ctx, "audit relay batch failed", "error", err)
			}
			return
		}
		if n < r.batchSize {
			return
		}
	}
}

// Drain relays one batch and reports how many entries were published.
func (r *Relay) Drain(ctx context.Context) (int, error) {
	var relayed int
	err := r.tx.RunInTx(ctx, func(ctx context.Context) error {
		entries, err := r.outbox.FetchPending(ctx, r.batchSize)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		if err := r.producer.Publish(ctx, entries); err != nil {
			return err
		}
		ids := make([]string, 0, len(entries))
		for _, e := range entries {
			ids = append(ids, e.ID)
		}
		if err := r.outbox.MarkProcessed(ctx, ids, time.Now()); err != nil {
			return err
		}
		relayed = len(entries)
		return nil
	})
	if err != nil {
		if r.metrics != nil {
			r.metrics.IncrementFailure()
		}
		return 0, err
	}
	if relayed > 0 {
		if r.metrics != nil {
			r.metrics.AddRelayed(relayed)
		}
		r.logger.DebugContext(ctx, "audit events relayed", "count", relayed)
	}
	return relayed, nil
}
