package adminclient

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

var ErrInFlight = errors.New("operation already in flight")

// OpID names a status change for one certificate.
func OpID(verb, certID string) string {
	return verb + ":" + certID
}

// SetStatusAll applies status to every certificate with at most limit
// requests in flight. Each certificate is tracked separately and a failure
// does not stop the others; the joined error lists every failure.
func (c *Client) SetStatusAll(ctx context.Context, tracker *Tracker, certIDs []string, status string, limit int) error {
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	errs := make([]error, len(certIDs))
	for i, certID := range certIDs {
		g.Go(func() error {
			errs[i] = tracker.Do(ctx, OpID("status", certID), func(ctx context.Context) error {
				_, err := c.SetStatus(ctx, certID, status)
				return err
			})
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}
