package models

import (
	"time"

	id "certportal/pkg/domain"
	dErrors "certportal/pkg/domain-errors"
)

// Learner is the directory projection needed for rendering.
type Learner struct {
	ID       id.LearnerID `json:"id"`
	Username string       `json:"username"`
	Email    string       `json:"email"`
}

// Course is the directory projection needed for rendering.
type Course struct {
	ID    id.CourseID `json:"id"`
	Title string      `json:"title"`
}

// CertificateView joins a certificate with its learner and course for display.
type CertificateView struct {
	ID          id.CertificateID `json:"id"`
	LearnerID   id.LearnerID     `json:"userId"`
	CourseID    id.CourseID      `json:"courseId"`
	Status      Status           `json:"status"`
	Username    string           `json:"username"`
	Email       string           `json:"email"`
	CourseTitle string           `json:"courseTitle"`
	IssuedAt    *time.Time       `json:"issuedAt"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// NewView assembles the read projection.
func NewView(c *Certificate, learner Learner, course Course) *CertificateView {
	return &CertificateView{
		ID:          c.ID,
		LearnerID:   c.LearnerID,
		CourseID:    c.CourseID,
		Status:      c.Status,
		Username:    learner.Username,
		Email:       learner.Email,
		CourseTitle: course.Title,
		IssuedAt:    c.IssuedAt,
		CreatedAt:   c.CreatedAt,
	}
}

func (v *CertificateView) IsApproved() bool { return v.Status == StatusApproved }

// CanExport mirrors Certificate.CanExport for the projection.
func (v *CertificateView) CanExport() error {
	if !v.IsApproved() {
		return dErrors.New(dErrors.CodePreconditionFailed, "certificate is awaiting approval")
	}
	return nil
}

// CreateCommand pairs a learner with a course.
type CreateCommand struct {
	LearnerID id.LearnerID
	CourseID  id.CourseID
	Status    Status
}

// StatusChange is an admin status edit.
type StatusChange struct {
	Status   Status
	IssuedAt *time.Time
}

// Validate checks the requested status and rejects issue dates in the future.
func (c StatusChange) Validate(now time.Time) error {
	if !c.Status.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "status must be one of: pending, approved")
	}
	if c.IssuedAt != nil && c.IssuedAt.After(now) {
		return dErrors.New(dErrors.CodeValidation, "issuedAt cannot be in the future")
	}
	return nil
}
