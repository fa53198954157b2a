// Package memory keeps audit events in process. It doubles as the outbox the
// relay drains when no database is configured.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	audit "certportal/pkg/platform/audit"
)

type record struct {
	event     audit.Event
	entry     audit.OutboxEntry
	processed bool
}

// Store holds events in append order.
type Store struct {
	mu      sync.RWMutex
	records []*record
	now     func() time.Time
}

func New() *Store {
	return &Store{now: time.Now}
}

func (s *Store) Append(_ context.Context, event audit.Event) error {
	entry, err := audit.NewOutboxEntry(event, s.now())
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, &record{event: event, entry: entry})
	return nil
}

// ListByCertificate returns the certificate's events in emission order.
func (s *Store) ListByCertificate(_ context.Context, certificateID string) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []audit.Event
	for _, r := range s.records {
		if r.event.CertificateID == certificateID {
			out = append(out, r.event)
		}
	}
	return out, nil
}

// FetchPending returns up to limit unrelayed entries, oldest first.
func (s *Store) FetchPending(_ context.Context, limit int) ([]audit.OutboxEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []audit.OutboxEntry
	for _, r := range s.records {
		if len(out) >= limit {
			break
		}
		if !r.processed {
			out = append(out, r.entry)
		}
	}
	return out, nil
}

// MarkProcessed flags entries as relayed. Unknown ids are ignored.
func (s *Store) MarkProcessed(_ context.Context, ids []string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if slices.Contains(ids, r.entry.ID) {
			r.processed = true
		}
	}
	return nil
}

// Pending counts entries not yet relayed.
func (s *Store) Pending() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, r := range s.records {
		if !r.processed {
			n++
		}
	}
	return n
}
