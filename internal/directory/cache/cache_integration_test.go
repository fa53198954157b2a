//go:build integration

package cache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certportal/internal/certificate/models"
	id "certportal/pkg/domain"
	"certportal/pkg/testutil/containers"
)

type countingDirectory struct {
	learnerCalls atomic.Int32
}

func (d *countingDirectory) Learners(_ context.Context, ids []id.LearnerID) (map[id.LearnerID]models.Learner, error) {
	d.learnerCalls.Add(1)
	out := map[id.LearnerID]models.Learner{}
	for _, l := range ids {
		out[l] = models.Learner{ID: l, Username: "learner-" + l.String()}
	}
	return out, nil
}

func (d *countingDirectory) Courses(context.Context, []id.CourseID) (map[id.CourseID]models.Course, error) {
	return map[id.CourseID]models.Course{}, nil
}

func TestCached_ServesSecondReadFromRedis(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	rc := containers.NewRedisContainer(t)
	inner := &countingDirectory{}
	c := New(inner, rc.Client, time.Minute)
	ctx := context.Background()

	first, err := c.Learners(ctx, []id.LearnerID{1, 2})
	require.NoError(t, err)
	second, err := c.Learners(ctx, []id.LearnerID{2, 1})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), inner.learnerCalls.Load())

	_, err = c.Learners(ctx, []id.LearnerID{1, 3})
	require.NoError(t, err)
	assert.Equal(t, int32(2), inner.learnerCalls.Load(), "only the miss goes to the directory")
}

func TestCached_FallsThroughAfterEviction(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	rc := containers.NewRedisContainer(t)
	inner := &countingDirectory{}
	c := New(inner, rc.Client, time.Minute)
	ctx := context.Background()

	_, err := c.Learners(ctx, []id.LearnerID{5})
	require.NoError(t, err)
	rc.Reset(t)
	_, err = c.Learners(ctx, []id.LearnerID{5})
	require.NoError(t, err)

	assert.Equal(t, int32(2), inner.learnerCalls.Load())
}
