package handler

import (
	"time"

	"certportal/internal/certificate/models"
)

// CertificateResponse is the admin representation of a certificate.
type CertificateResponse struct {
	ID          string     `json:"id"`
	UserID      int64      `json:"userId"`
	CourseID    int64      `json:"courseId"`
	Status      string     `json:"status"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	CourseTitle string     `json:"courseTitle"`
	IssuedAt    *time.Time `json:"issuedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// LearnerCertificateResponse is what GET /certificates/{id} returns. It is
// exactly the data the certificate layout consumes.
type LearnerCertificateResponse struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	CourseTitle string     `json:"courseTitle"`
	IssuedAt    *time.Time `json:"issuedAt"`
}

func FromView(v *models.CertificateView) *CertificateResponse {
	return &CertificateResponse{
		ID:          v.ID.String(),
		UserID:      int64(v.LearnerID),
		CourseID:    int64(v.CourseID),
		Status:      string(v.Status),
		Username:    v.Username,
		Email:       v.Email,
		CourseTitle: v.CourseTitle,
		IssuedAt:    v.IssuedAt,
		CreatedAt:   v.CreatedAt,
	}
}

func FromViews(views []*models.CertificateView) []*CertificateResponse {
	out := make([]*CertificateResponse, 0, len(views))
	for _, v := range views {
		out = append(out, FromView(v))
	}
	return out
}

func LearnerFromView(v *models.CertificateView) *LearnerCertificateResponse {
	return &LearnerCertificateResponse{
		ID:          v.ID.String(),
		Status:      string(v.Status),
		Username:    v.Username,
		Email:       v.Email,
		CourseTitle: v.CourseTitle,
		IssuedAt:    v.IssuedAt,
	}
}
