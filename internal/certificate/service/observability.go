package service

import (
	"context"

	"certportal/internal/certificate/models"
	"certportal/pkg/requestcontext"
)

func (s *Service) logAudit(ctx context.Context, event string, attrs ...any) {
	if s.logger == nil {
		return
	}
	args := append(attrs,
		"log_type", "audit",
		"event", event,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.logger.InfoContext(ctx, event, args...)
}

func (s *Service) incrementCreated() {
	if s.metrics != nil {
		s.metrics.IncrementCreated()
	}
}

func (s *Service) incrementDeleted() {
	if s.metrics != nil {
		s.metrics.IncrementDeleted()
	}
}

func (s *Service) incrementConflict() {
	if s.metrics != nil {
		s.metrics.IncrementConflict()
	}
}

func (s *Service) incrementTransition(t models.Transition) {
	if s.metrics != nil {
		s.metrics.IncrementTransition(string(t))
	}
}
