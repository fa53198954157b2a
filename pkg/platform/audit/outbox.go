package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AggregateCertificate is the outbox aggregate type for every certificate event.
const AggregateCertificate = "certificate"

// OutboxEntry is a persisted event waiting to be relayed to the broker.
type OutboxEntry struct {
	ID          string
	AggregateID string
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
}

// Payload is the JSON body published for each event.
type Payload struct {
	ID            string `json:"id"`
	Category      string `json:"category"`
	Timestamp     string `json:"timestamp"`
	CertificateID string `json:"certificate_id"`
	LearnerID     int64  `json:"learner_id,omitempty"`
	CourseID      int64  `json:"course_id,omitempty"`
	Action        string `json:"action"`
	FromStatus    string `json:"from_status,omitempty"`
	ToStatus      string `json:"to_status,omitempty"`
	RequestID     string `json:"request_id,omitempty"`
	ActorID       string `json:"actor_id,omitempty"`
}

// NewOutboxEntry assigns the event an id and encodes its payload. A zero
// timestamp is replaced with now.
func NewOutboxEntry(event Event, now time.Time) (OutboxEntry, error) {
	at := event.Timestamp
	if at.IsZero() {
		at = now
	}
	at = at.UTC()

	category := event.Category
	if category == "" {
		category = AuditEvent(event.Action).Category()
	}

	entryID := uuid.NewString()
	body, err := json.Marshal(Payload{
		ID:            entryID,
		Category:      string(category),
		Timestamp:     at.Format(time.RFC3339Nano),
		CertificateID: event.CertificateID,
		LearnerID:     event.LearnerID,
		CourseID:      event.CourseID,
		Action:        event.Action,
		FromStatus:    event.FromStatus,
		ToStatus:      event.ToStatus,
		RequestID:     event.RequestID,
		ActorID:       event.ActorID,
	})
	if err != nil {
		return OutboxEntry{}, fmt.Errorf("marshal audit payload: %w", err)
	}
	return OutboxEntry{
		ID:          entryID,
		AggregateID: event.CertificateID,
		EventType:   event.Action,
		Payload:     body,
		CreatedAt:   at,
	}, nil
}
