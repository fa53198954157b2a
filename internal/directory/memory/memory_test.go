package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certportal/internal/certificate/models"
	id "certportal/pkg/domain"
)

func TestDirectory_MissingEntriesAreAbsent(t *testing.T) {
	d := New()
	d.PutLearner(models.Learner{ID: 1, Username: "ada"})
	d.PutCourse(models.Course{ID: 5, Title: "Go"})

	learners, err := d.Learners(context.Background(), []id.LearnerID{1, 2})
	require.NoError(t, err)
	assert.Len(t, learners, 1)
	assert.Equal(t, "ada", learners[1].Username)

	courses, err := d.Courses(context.Background(), []id.CourseID{4, 5})
	require.NoError(t, err)
	assert.Len(t, courses, 1)
	assert.Equal(t, "Go", courses[5].Title)
}

func TestSeeded(t *testing.T) {
	d := Seeded()
	learners, err := d.Learners(context.Background(), []id.LearnerID{7})
	require.NoError(t, err)
	assert.NotEmpty(t, learners[7].Email)
}
