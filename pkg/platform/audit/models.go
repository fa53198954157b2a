package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose.
type EventCategory string

const (
	// CategoryCompliance covers credential issuance history: creation, approval,
	// reversal and deletion of certificates. Long retention.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers routine activity such as exports.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category      EventCategory
	Timestamp     time.Time
	CertificateID string
	LearnerID     int64
	CourseID      int64
	Action        string
	FromStatus    string
	ToStatus      string
	RequestID     string
	// ActorID identifies who performed the action ("admin" or a learner id).
	ActorID string
}

type AuditEvent string

const (
	EventCertificateCreated  AuditEvent = "certificate_created"
	EventCertificateApproved AuditEvent = "certificate_approved"
	EventCertificateReverted AuditEvent = "certificate_reverted"
	EventCertificateDeleted  AuditEvent = "certificate_deleted"
	EventCertificateExported AuditEvent = "certificate_exported"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventCertificateCreated:  CategoryCompliance,
	EventCertificateApproved: CategoryCompliance,
	EventCertificateReverted: CategoryCompliance,
	EventCertificateDeleted:  CategoryCompliance,
	EventCertificateExported: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events. Postgres implementations join the transaction
// carried in ctx (see pkg/platform/tx).
type Store interface {
	Append(ctx context.Context, event Event) error
}
