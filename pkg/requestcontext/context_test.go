package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	id "certportal/pkg/domain"
)

func TestNowFallsBackToWallClock(t *testing.T) {
	before := time.Now()
	got := Now(context.Background())
	assert.False(t, got.Before(before))

	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, fixed, Now(WithTime(context.Background(), fixed)))
}

func TestCallerCanView(t *testing.T) {
	owner := id.LearnerID(7)

	assert.True(t, Caller{Admin: true}.CanView(owner))
	assert.True(t, Caller{LearnerID: owner}.CanView(owner))
	assert.False(t, Caller{LearnerID: 8}.CanView(owner))
	assert.False(t, Principal(context.Background()).CanView(owner))
}
