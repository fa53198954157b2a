package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"certportal/internal/certificate/metrics"
	"certportal/internal/certificate/models"
	id "certportal/pkg/domain"
	dErrors "certportal/pkg/domain-errors"
	"certportal/pkg/platform/audit"
	"certportal/pkg/platform/sentinel"
	txcontext "certportal/pkg/platform/tx"
	"certportal/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,Directory,AuditPublisher

// Store persists certificates. Implementations return sentinel errors.
type Store interface {
	Create(ctx context.Context, c *models.Certificate) error
	FindByID(ctx context.Context, certID id.CertificateID) (*models.Certificate, error)
	List(ctx context.Context) ([]*models.Certificate, error)
	Execute(ctx context.Context, certID id.CertificateID, fn func(*models.Certificate) error) (*models.Certificate, error)
	Delete(ctx context.Context, certID id.CertificateID) error
}

// Directory resolves learners and courses. Missing entries are absent from the
// returned maps.
type Directory interface {
	Learners(ctx context.Context, ids []id.LearnerID) (map[id.LearnerID]models.Learner, error)
	Courses(ctx context.Context, ids []id.CourseID) (map[id.CourseID]models.Course, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service is the certificate lifecycle controller.
type Service struct {
	store          Store
	directory      Directory
	tx             txcontext.Runner
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTxRunner sets the unit-of-work runner. Defaults to running inline.
func WithTxRunner(r txcontext.Runner) Option {
	return func(s *Service) {
		s.tx = r
	}
}

// New constructs a Service.
func New(store Store, directory Directory, opts ...Option) *Service {
	s := &Service{
		store:     store,
		directory: directory,
		tx:        txcontext.Inline{},
		tracer:    otel.Tracer("certportal/certificate"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create pairs a learner with a course. The learner and course must exist in
// the directory; the pair must not already have a certificate.
func (s *Service) Create(ctx context.Context, cmd models.CreateCommand) (_ *models.Certificate, err error) {
	ctx, span := s.tracer.Start(ctx, "certificate.Create", trace.WithAttributes(
		attribute.Int64("learner_id", int64(cmd.LearnerID)),
		attribute.Int64("course_id", int64(cmd.CourseID)),
	))
	defer func() { endSpan(span, err) }()

	if err := s.ensureEnrollable(ctx, cmd.LearnerID, cmd.CourseID); err != nil {
		return nil, err
	}

	cert, err := models.NewCertificate(id.NewCertificateID(), cmd.LearnerID, cmd.CourseID, cmd.Status, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, dErrors.MessageOf(err))
		}
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Create(ctx, cert); err != nil {
			return err
		}
		if err := s.emit(ctx, audit.EventCertificateCreated, cert, "", cert.Status); err != nil {
			return err
		}
		if cert.IsApproved() {
			return s.emit(ctx, audit.EventCertificateApproved, cert, models.StatusPending, cert.Status)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			s.incrementConflict()
			return nil, dErrors.New(dErrors.CodeConflict, "a certificate already exists for this learner and course")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create certificate")
	}

	s.logAudit(ctx, string(audit.EventCertificateCreated),
		"certificate_id", cert.ID.String(),
		"learner_id", int64(cert.LearnerID),
		"course_id", int64(cert.CourseID),
		"status", cert.Status,
	)
	s.incrementCreated()
	if cert.IsApproved() {
		s.incrementTransition(models.TransitionApproved)
	}
	return cert, nil
}

// SetStatus applies an admin status edit under a row lock. Both directions
// are allowed; the issue date is stamped once on first approval.
func (s *Service) SetStatus(ctx context.Context, certID id.CertificateID, change models.StatusChange) (_ *models.Certificate, err error) {
	ctx, span := s.tracer.Start(ctx, "certificate.SetStatus", trace.WithAttributes(
		attribute.String("certificate_id", certID.String()),
		attribute.String("status", string(change.Status)),
	))
	defer func() { endSpan(span, err) }()

	now := requestcontext.Now(ctx)
	if err := change.Validate(now); err != nil {
		return nil, err
	}

	var (
		from       models.Status
		transition models.Transition
	)

	var updated *models.Certificate
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var execErr error
		updated, execErr = s.store.Execute(ctx, certID, func(c *models.Certificate) error {
			if err := c.CanSetStatus(change.Status, change.IssuedAt, now); err != nil {
				return err
			}
			from = c.Status
			transition = c.ApplyStatus(change.Status, change.IssuedAt, now)
			return nil
		})
		if execErr != nil {
			return execErr
		}
		switch transition {
		case models.TransitionApproved:
			return s.emit(ctx, audit.EventCertificateApproved, updated, from, updated.Status)
		case models.TransitionReverted:
			return s.emit(ctx, audit.EventCertificateReverted, updated, from, updated.Status)
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "certificate not found")
		case dErrors.HasCode(err, dErrors.CodeValidation):
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update certificate")
	}

	if transition != models.TransitionNone {
		s.logAudit(ctx, "certificate_"+string(transition),
			"certificate_id", certID.String(),
			"from_status", from,
			"to_status", updated.Status,
		)
		s.incrementTransition(transition)
	}
	return updated, nil
}

// Delete removes a certificate unconditionally.
func (s *Service) Delete(ctx context.Context, certID id.CertificateID) (err error) {
	ctx, span := s.tracer.Start(ctx, "certificate.Delete", trace.WithAttributes(
		attribute.String("certificate_id", certID.String()),
	))
	defer func() { endSpan(span, err) }()

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		existing, err := s.store.FindByID(ctx, certID)
		if err != nil {
			return err
		}
		if err := s.store.Delete(ctx, certID); err != nil {
			return err
		}
		return s.emit(ctx, audit.EventCertificateDeleted, existing, existing.Status, "")
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "certificate not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete certificate")
	}

	s.logAudit(ctx, string(audit.EventCertificateDeleted), "certificate_id", certID.String())
	s.incrementDeleted()
	return nil
}

// Get returns a certificate if the caller may see it. Learners asking for
// someone else's certificate get not found.
func (s *Service) Get(ctx context.Context, certID id.CertificateID) (*models.Certificate, error) {
	cert, err := s.store.FindByID(ctx, certID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "certificate not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load certificate")
	}
	if !requestcontext.Principal(ctx).CanView(cert.LearnerID) {
		return nil, dErrors.New(dErrors.CodeNotFound, "certificate not found")
	}
	return cert, nil
}

func (s *Service) List(ctx context.Context) ([]*models.Certificate, error) {
	certs, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list certificates")
	}
	return certs, nil
}

// RecordExport emits the operations audit event for a served PDF. It runs
// outside any transaction; failures are logged and swallowed.
func (s *Service) RecordExport(ctx context.Context, cert *models.Certificate) {
	if err := s.emit(ctx, audit.EventCertificateExported, cert, cert.Status, cert.Status); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to record export", "certificate_id", cert.ID.String(), "error", err)
	}
}

func (s *Service) ensureEnrollable(ctx context.Context, learner id.LearnerID, course id.CourseID) error {
	if !learner.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "userId must be a positive integer")
	}
	if !course.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "courseId must be a positive integer")
	}
	learners, err := s.directory.Learners(ctx, []id.LearnerID{learner})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "learner directory unavailable")
	}
	if _, ok := learners[learner]; !ok {
		return dErrors.New(dErrors.CodeValidation, "unknown learner")
	}
	courses, err := s.directory.Courses(ctx, []id.CourseID{course})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "course directory unavailable")
	}
	if _, ok := courses[course]; !ok {
		return dErrors.New(dErrors.CodeValidation, "unknown course")
	}
	return nil
}

func (s *Service) emit(ctx context.Context, event audit.AuditEvent, c *models.Certificate, from, to models.Status) error {
	if s.auditPublisher == nil {
		return nil
	}
	actor := "admin"
	if caller := requestcontext.Principal(ctx); !caller.Admin && caller.LearnerID.IsValid() {
		actor = caller.LearnerID.String()
	}
	return s.auditPublisher.Emit(ctx, audit.Event{
		Action:        string(event),
		CertificateID: c.ID.String(),
		LearnerID:     int64(c.LearnerID),
		CourseID:      int64(c.CourseID),
		FromStatus:    string(from),
		ToStatus:      string(to),
		ActorID:       actor,
	})
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	}
	span.End()
}
