package models

import (
	"time"

	id "certportal/pkg/domain"
	dErrors "certportal/pkg/domain-errors"
)

// Status is the certificate lifecycle position.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
)

func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusApproved
}

func (s Status) String() string { return string(s) }

// ParseStatus accepts the two wire values exactly.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "status must be one of: pending, approved")
	}
	return s, nil
}

// Certificate is the aggregate root for a learner's course certificate.
//
// Invariants:
//   - At most one certificate per (LearnerID, CourseID); enforced by the store
//   - IssuedAt is set at most once, on the first transition into approved,
//     and is never cleared or refreshed afterwards
//   - A certificate that has never been approved has no IssuedAt
//
// Reverting to pending keeps IssuedAt. Re-approving does not move it.
type Certificate struct {
	ID        id.CertificateID `json:"id"`
	LearnerID id.LearnerID     `json:"userId"`
	CourseID  id.CourseID      `json:"courseId"`
	Status    Status           `json:"status"`
	IssuedAt  *time.Time       `json:"issuedAt"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// Transition describes what ApplyStatus did, for audit and metrics.
type Transition string

const (
	TransitionNone     Transition = "none"
	TransitionApproved Transition = "approved"
	TransitionReverted Transition = "reverted"
)

// NewCertificate builds a certificate for a learner/course pairing. An empty
// status means pending; approved at creation applies the issuance rule.
func NewCertificate(certID id.CertificateID, learner id.LearnerID, course id.CourseID, status Status, now time.Time) (*Certificate, error) {
	if certID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "certificate id is required")
	}
	if !learner.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "learner id must be positive")
	}
	if !course.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "course id must be positive")
	}
	if status == "" {
		status = StatusPending
	}
	if !status.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "status must be one of: pending, approved")
	}

	c := &Certificate{
		ID:        certID,
		LearnerID: learner,
		CourseID:  course,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if status == StatusApproved {
		c.ApplyStatus(StatusApproved, nil, now)
	}
	return c, nil
}

func (c *Certificate) IsApproved() bool { return c.Status == StatusApproved }

// IsIssued reports whether the certificate has ever been approved.
func (c *Certificate) IsIssued() bool { return c.IssuedAt != nil }

// CanSetStatus validates a requested status change. Both directions are
// allowed. An explicit issue date must not lie in the future, and when it
// would be stamped it must not precede the certificate's creation.
func (c *Certificate) CanSetStatus(status Status, issuedAt *time.Time, now time.Time) error {
	if err := (StatusChange{Status: status, IssuedAt: issuedAt}).Validate(now); err != nil {
		return err
	}
	if issuedAt != nil && !c.IsIssued() && status == StatusApproved && issuedAt.Before(c.CreatedAt) {
		return dErrors.New(dErrors.CodeValidation, "issuedAt cannot be earlier than the certificate's creation")
	}
	return nil
}

// ApplyStatus moves the certificate to status. IssuedAt is stamped only when
// it is absent and the new status is approved; an explicit issuedAt is used
// in that case and ignored otherwise. Call CanSetStatus first.
func (c *Certificate) ApplyStatus(status Status, issuedAt *time.Time, now time.Time) Transition {
	if !c.IsIssued() && status == StatusApproved {
		stamp := now
		if issuedAt != nil {
			stamp = *issuedAt
		}
		stamp = stamp.UTC()
		c.IssuedAt = &stamp
	}

	transition := TransitionNone
	switch {
	case c.Status != StatusApproved && status == StatusApproved:
		transition = TransitionApproved
	case c.Status == StatusApproved && status == StatusPending:
		transition = TransitionReverted
	}
	c.Status = status
	c.UpdatedAt = now
	return transition
}

// CanExport gates document export on approval.
func (c *Certificate) CanExport() error {
	if !c.IsApproved() {
		return dErrors.New(dErrors.CodePreconditionFailed, "certificate is awaiting approval")
	}
	return nil
}
