package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"certportal/internal/certificate/models"
	id "certportal/pkg/domain"
	"certportal/pkg/platform/sentinel"
)

type pairKey struct {
	learner id.LearnerID
	course  id.CourseID
}

// InMemory keeps certificates in maps guarded by one mutex. The pair index
// gives the same uniqueness guarantee as the postgres constraint.
type InMemory struct {
	mu    sync.RWMutex
	byID  map[id.CertificateID]*models.Certificate
	pairs map[pairKey]id.CertificateID
}

func New() *InMemory {
	return &InMemory{
		byID:  make(map[id.CertificateID]*models.Certificate),
		pairs: make(map[pairKey]id.CertificateID),
	}
}

// Create inserts c or returns sentinel.ErrAlreadyUsed when the pair is taken.
func (s *InMemory) Create(_ context.Context, c *models.Certificate) error {
	key := pairKey{learner: c.LearnerID, course: c.CourseID}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.pairs[key]; taken {
		return sentinel.ErrAlreadyUsed
	}
	if _, taken := s.byID[c.ID]; taken {
		return sentinel.ErrAlreadyUsed
	}
	stored := *c
	s.byID[c.ID] = &stored
	s.pairs[key] = c.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, certID id.CertificateID) (*models.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[certID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := *c
	return &out, nil
}

// List returns every certificate, oldest first.
func (s *InMemory) List(_ context.Context) ([]*models.Certificate, error) {
	s.mu.RLock()
	out := make([]*models.Certificate, 0, len(s.byID))
	for _, c := range s.byID {
		cp := *c
		out = append(out, &cp)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b *models.Certificate) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return out, nil
}

// Execute runs fn against a copy of the certificate under the write lock and
// stores the result only when fn succeeds.
func (s *InMemory) Execute(_ context.Context, certID id.CertificateID, fn func(*models.Certificate) error) (*models.Certificate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.byID[certID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	working := *current
	if err := fn(&working); err != nil {
		return nil, err
	}
	s.byID[certID] = &working
	out := working
	return &out, nil
}

func (s *InMemory) Delete(_ context.Context, certID id.CertificateID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[certID]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.pairs, pairKey{learner: c.LearnerID, course: c.CourseID})
	delete(s.byID, certID)
	return nil
}
