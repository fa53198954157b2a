//go:build integration

package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"certportal/internal/directory/postgres"
	id "certportal/pkg/domain"
	"certportal/pkg/testutil/containers"
)

type DirectorySuite struct {
	suite.Suite
	postgres  *containers.PostgresContainer
	directory *postgres.Directory
}

func TestDirectorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(DirectorySuite))
}

func (s *DirectorySuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.directory = postgres.New(s.postgres.DB)
}

func (s *DirectorySuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.Truncate(ctx))
	_, err := s.postgres.DB.ExecContext(ctx, `
		INSERT INTO learners (id, username, email) VALUES (1, 'ada', 'ada@example.edu'), (2, 'grace', 'grace@example.edu');
		INSERT INTO courses (id, title) VALUES (10, 'Go Fundamentals');
	`)
	s.Require().NoError(err)
}

func (s *DirectorySuite) TestBatchLookup() {
	ctx := context.Background()
	learners, err := s.directory.Learners(ctx, []id.LearnerID{1, 2, 3, 1})
	s.Require().NoError(err)
	s.Len(learners, 2)
	s.Equal("grace@example.edu", learners[2].Email)

	courses, err := s.directory.Courses(ctx, []id.CourseID{10, 11})
	s.Require().NoError(err)
	s.Len(courses, 1)
	s.Equal("Go Fundamentals", courses[10].Title)
}

func (s *DirectorySuite) TestEmptyInputSkipsQuery() {
	learners, err := s.directory.Learners(context.Background(), nil)
	s.Require().NoError(err)
	s.Empty(learners)
}
