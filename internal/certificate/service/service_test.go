package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"certportal/internal/certificate/models"
	"certportal/internal/certificate/service/mocks"
	id "certportal/pkg/domain"
	dErrors "certportal/pkg/domain-errors"
	"certportal/pkg/platform/audit"
	"certportal/pkg/platform/sentinel"
	"certportal/pkg/requestcontext"
)

// =============================================================================
// Certificate Service Test Suite
// =============================================================================
// Unit tests cover error translation, directory validation and audit emission
// with mocked collaborators. Lifecycle scenarios run against the memory store
// in lifecycle_test.go.

type ServiceSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	store     *mocks.MockStore
	directory *mocks.MockDirectory
	publisher *mocks.MockAuditPublisher
	service   *Service
	ctx       context.Context
	now       time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockStore(s.ctrl)
	s.directory = mocks.NewMockDirectory(s.ctrl)
	s.publisher = mocks.NewMockAuditPublisher(s.ctrl)
	s.service = New(s.store, s.directory,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithAuditPublisher(s.publisher),
	)
	s.now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.ctx = requestcontext.WithPrincipal(s.ctx, requestcontext.Caller{Admin: true})
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceSuite) expectKnown(learner id.LearnerID, course id.CourseID) {
	s.directory.EXPECT().Learners(gomock.Any(), []id.LearnerID{learner}).
		Return(map[id.LearnerID]models.Learner{learner: {ID: learner, Username: "ada"}}, nil)
	s.directory.EXPECT().Courses(gomock.Any(), []id.CourseID{course}).
		Return(map[id.CourseID]models.Course{course: {ID: course, Title: "Go"}}, nil)
}

func (s *ServiceSuite) pending(learner id.LearnerID, course id.CourseID) *models.Certificate {
	c, err := models.NewCertificate(id.NewCertificateID(), learner, course, models.StatusPending, s.now.Add(-time.Hour))
	s.Require().NoError(err)
	return c
}

func (s *ServiceSuite) TestCreate() {
	s.Run("persists pending certificate and emits created event", func() {
		s.expectKnown(7, 3)
		s.store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e audit.Event) error {
			s.Equal(string(audit.EventCertificateCreated), e.Action)
			s.Equal(int64(7), e.LearnerID)
			s.Equal("admin", e.ActorID)
			return nil
		})

		cert, err := s.service.Create(s.ctx, models.CreateCommand{LearnerID: 7, CourseID: 3})
		s.Require().NoError(err)
		s.Equal(models.StatusPending, cert.Status)
		s.Nil(cert.IssuedAt)
		s.Equal(s.now, cert.CreatedAt)
	})

	s.Run("approved at creation stamps issue date and emits both events", func() {
		s.expectKnown(7, 4)
		s.store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		var actions []string
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Times(2).DoAndReturn(func(_ context.Context, e audit.Event) error {
			actions = append(actions, e.Action)
			return nil
		})

		cert, err := s.service.Create(s.ctx, models.CreateCommand{LearnerID: 7, CourseID: 4, Status: models.StatusApproved})
		s.Require().NoError(err)
		s.Require().NotNil(cert.IssuedAt)
		s.Equal(s.now, *cert.IssuedAt)
		s.Equal([]string{string(audit.EventCertificateCreated), string(audit.EventCertificateApproved)}, actions)
	})

	s.Run("duplicate pair maps to conflict", func() {
		s.expectKnown(7, 3)
		s.store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(sentinel.ErrAlreadyUsed)

		_, err := s.service.Create(s.ctx, models.CreateCommand{LearnerID: 7, CourseID: 3})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("missing ids are validation errors without directory calls", func() {
		_, err := s.service.Create(s.ctx, models.CreateCommand{LearnerID: 0, CourseID: 3})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		_, err = s.service.Create(s.ctx, models.CreateCommand{LearnerID: 7})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown learner is a validation error", func() {
		s.directory.EXPECT().Learners(gomock.Any(), []id.LearnerID{99}).Return(map[id.LearnerID]models.Learner{}, nil)

		_, err := s.service.Create(s.ctx, models.CreateCommand{LearnerID: 99, CourseID: 3})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown course is a validation error", func() {
		s.directory.EXPECT().Learners(gomock.Any(), gomock.Any()).
			Return(map[id.LearnerID]models.Learner{7: {ID: 7}}, nil)
		s.directory.EXPECT().Courses(gomock.Any(), []id.CourseID{404}).Return(nil, nil)

		_, err := s.service.Create(s.ctx, models.CreateCommand{LearnerID: 7, CourseID: 404})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("directory failure is unavailable", func() {
		s.directory.EXPECT().Learners(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused"))

		_, err := s.service.Create(s.ctx, models.CreateCommand{LearnerID: 7, CourseID: 3})
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	})

	s.Run("audit failure aborts the create", func() {
		s.expectKnown(8, 3)
		s.store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("outbox down"))

		_, err := s.service.Create(s.ctx, models.CreateCommand{LearnerID: 8, CourseID: 3})
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

// executeWith runs the real callback against c, the way a store would.
func executeWith(c *models.Certificate) func(context.Context, id.CertificateID, func(*models.Certificate) error) (*models.Certificate, error) {
	return func(_ context.Context, _ id.CertificateID, fn func(*models.Certificate) error) (*models.Certificate, error) {
		working := *c
		if err := fn(&working); err != nil {
			return nil, err
		}
		return &working, nil
	}
}

func (s *ServiceSuite) TestSetStatus() {
	s.Run("approving emits approved event with from and to", func() {
		c := s.pending(7, 3)
		s.store.EXPECT().Execute(gomock.Any(), c.ID, gomock.Any()).DoAndReturn(executeWith(c))
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e audit.Event) error {
			s.Equal(string(audit.EventCertificateApproved), e.Action)
			s.Equal("pending", e.FromStatus)
			s.Equal("approved", e.ToStatus)
			return nil
		})

		updated, err := s.service.SetStatus(s.ctx, c.ID, models.StatusChange{Status: models.StatusApproved})
		s.Require().NoError(err)
		s.Require().NotNil(updated.IssuedAt)
		s.Equal(s.now, *updated.IssuedAt)
	})

	s.Run("no-op status edit emits nothing", func() {
		c := s.pending(7, 3)
		s.store.EXPECT().Execute(gomock.Any(), c.ID, gomock.Any()).DoAndReturn(executeWith(c))

		updated, err := s.service.SetStatus(s.ctx, c.ID, models.StatusChange{Status: models.StatusPending})
		s.Require().NoError(err)
		s.Nil(updated.IssuedAt)
	})

	s.Run("unknown status rejected before touching the store", func() {
		_, err := s.service.SetStatus(s.ctx, id.NewCertificateID(), models.StatusChange{Status: "revoked"})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("future issuedAt rejected", func() {
		future := s.now.Add(time.Hour)
		_, err := s.service.SetStatus(s.ctx, id.NewCertificateID(), models.StatusChange{Status: models.StatusApproved, IssuedAt: &future})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown id is not found", func() {
		s.store.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrNotFound)

		_, err := s.service.SetStatus(s.ctx, id.NewCertificateID(), models.StatusChange{Status: models.StatusApproved})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestDelete() {
	s.Run("deletes and emits deleted event", func() {
		c := s.pending(7, 3)
		s.store.EXPECT().FindByID(gomock.Any(), c.ID).Return(c, nil)
		s.store.EXPECT().Delete(gomock.Any(), c.ID).Return(nil)
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e audit.Event) error {
			s.Equal(string(audit.EventCertificateDeleted), e.Action)
			s.Equal(c.ID.String(), e.CertificateID)
			return nil
		})

		s.NoError(s.service.Delete(s.ctx, c.ID))
	})

	s.Run("unknown id is not found", func() {
		s.store.EXPECT().FindByID(gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrNotFound)
		err := s.service.Delete(s.ctx, id.NewCertificateID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestGet() {
	c := s.pending(7, 3)

	s.Run("owner can read", func() {
		s.store.EXPECT().FindByID(gomock.Any(), c.ID).Return(c, nil)
		ctx := requestcontext.WithPrincipal(context.Background(), requestcontext.Caller{LearnerID: 7})
		got, err := s.service.Get(ctx, c.ID)
		s.Require().NoError(err)
		s.Equal(c.ID, got.ID)
	})

	s.Run("other learner gets not found", func() {
		s.store.EXPECT().FindByID(gomock.Any(), c.ID).Return(c, nil)
		ctx := requestcontext.WithPrincipal(context.Background(), requestcontext.Caller{LearnerID: 8})
		_, err := s.service.Get(ctx, c.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("store failure is internal", func() {
		s.store.EXPECT().FindByID(gomock.Any(), c.ID).Return(nil, errors.New("db down"))
		_, err := s.service.Get(s.ctx, c.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}
