package adminclient

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker(t *testing.T) {
	t.Run("unknown operation is idle", func(t *testing.T) {
		assert.Equal(t, PhaseIdle, NewTracker().State("status:x").Phase)
	})

	t.Run("records success and failure independently", func(t *testing.T) {
		tr := NewTracker()
		boom := errors.New("boom")

		require.NoError(t, tr.Do(t.Context(), "status:a", func(context.Context) error { return nil }))
		require.ErrorIs(t, tr.Do(t.Context(), "status:b", func(context.Context) error { return boom }), boom)

		a, b := tr.State("status:a"), tr.State("status:b")
		assert.Equal(t, PhaseSucceeded, a.Phase)
		assert.NoError(t, a.Err)
		assert.Equal(t, PhaseFailed, b.Phase)
		assert.ErrorIs(t, b.Err, boom)
		assert.False(t, b.EndedAt.Before(b.StartedAt))
		assert.Len(t, tr.Snapshot(), 2)
	})

	t.Run("rejects a duplicate while running", func(t *testing.T) {
		tr := NewTracker()
		release := make(chan struct{})
		started := make(chan struct{})
		done := make(chan error, 1)
		go func() {
			done <- tr.Do(t.Context(), "status:a", func(context.Context) error {
				close(started)
				<-release
				return nil
			})
		}()
		<-started

		assert.Equal(t, PhaseRunning, tr.State("status:a").Phase)
		assert.ErrorIs(t, tr.Do(t.Context(), "status:a", func(context.Context) error { return nil }), ErrInFlight)

		close(release)
		require.NoError(t, <-done)
		assert.Equal(t, PhaseSucceeded, tr.State("status:a").Phase)
	})

	t.Run("reset returns to idle", func(t *testing.T) {
		tr := NewTracker()
		_ = tr.Do(t.Context(), "status:a", func(context.Context) error { return errors.New("x") })
		tr.Reset("status:a")
		assert.Equal(t, PhaseIdle, tr.State("status:a").Phase)
		assert.Empty(t, tr.Failed())
	})
}
