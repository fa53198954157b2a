// Package views joins certificates with directory data into display
// projections.
package views

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"certportal/internal/certificate/metrics"
	"certportal/internal/certificate/models"
	"certportal/internal/directory"
	id "certportal/pkg/domain"
	dErrors "certportal/pkg/domain-errors"
)

// Assembler builds CertificateViews. Learners and courses are fetched
// concurrently in one batch per request.
type Assembler struct {
	directory directory.Directory
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type Option func(*Assembler)

func WithLogger(logger *slog.Logger) Option {
	return func(a *Assembler) {
		a.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Assembler) {
		a.metrics = m
	}
}

func New(dir directory.Directory, opts ...Option) *Assembler {
	a := &Assembler{directory: dir, logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// One assembles the view for a single certificate.
func (a *Assembler) One(ctx context.Context, cert *models.Certificate) (*models.CertificateView, error) {
	out, err := a.Many(ctx, []*models.Certificate{cert})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// Many assembles views in input order. Missing directory entries render with
// a placeholder name and are logged.
func (a *Assembler) Many(ctx context.Context, certs []*models.Certificate) ([]*models.CertificateView, error) {
	learnerIDs := make([]id.LearnerID, 0, len(certs))
	courseIDs := make([]id.CourseID, 0, len(certs))
	for _, c := range certs {
		learnerIDs = append(learnerIDs, c.LearnerID)
		courseIDs = append(courseIDs, c.CourseID)
	}

	var (
		learners map[id.LearnerID]models.Learner
		courses  map[id.CourseID]models.Course
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		learners, err = a.directory.Learners(gctx, directory.Unique(learnerIDs))
		return err
	})
	g.Go(func() error {
		var err error
		courses, err = a.directory.Courses(gctx, directory.Unique(courseIDs))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "directory unavailable")
	}

	out := make([]*models.CertificateView, 0, len(certs))
	for _, c := range certs {
		learner, ok := learners[c.LearnerID]
		if !ok {
			learner = PlaceholderLearner(c.LearnerID)
			a.missing(ctx, "learner", c)
		}
		course, ok := courses[c.CourseID]
		if !ok {
			course = PlaceholderCourse(c.CourseID)
			a.missing(ctx, "course", c)
		}
		out = append(out, models.NewView(c, learner, course))
	}
	return out, nil
}

// PlaceholderLearner stands in for a learner the directory no longer knows.
func PlaceholderLearner(learner id.LearnerID) models.Learner {
	return models.Learner{ID: learner, Username: fmt.Sprintf("Learner #%d", int64(learner))}
}

// PlaceholderCourse stands in for a course the directory no longer knows.
func PlaceholderCourse(course id.CourseID) models.Course {
	return models.Course{ID: course, Title: fmt.Sprintf("Course #%d", int64(course))}
}

func (a *Assembler) missing(ctx context.Context, kind string, c *models.Certificate) {
	a.logger.WarnContext(ctx, "directory entry missing, using placeholder",
		"kind", kind,
		"certificate_id", c.ID.String(),
		"learner_id", int64(c.LearnerID),
		"course_id", int64(c.CourseID),
	)
	if a.metrics != nil {
		a.metrics.IncrementPlaceholder(kind)
	}
}
