package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"certportal/internal/certificate/models"
	id "certportal/pkg/domain"
	dErrors "certportal/pkg/domain-errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names so messages match the request body.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// CreateCertificateRequest is the body for POST /certificates.
type CreateCertificateRequest struct {
	UserID   int64  `json:"userId" validate:"required,gt=0"`
	CourseID int64  `json:"courseId" validate:"required,gt=0"`
	Status   string `json:"status" validate:"omitempty,oneof=pending approved"`
}

// Validate normalizes and validates the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *CreateCertificateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Status = strings.ToLower(strings.TrimSpace(r.Status))
	return structError(validate.Struct(r))
}

func (r *CreateCertificateRequest) Command() models.CreateCommand {
	status := models.StatusPending
	if r.Status != "" {
		status = models.Status(r.Status)
	}
	return models.CreateCommand{
		LearnerID: id.LearnerID(r.UserID),
		CourseID:  id.CourseID(r.CourseID),
		Status:    status,
	}
}

// UpdateStatusRequest is the body for PUT /certificates/{id}.
type UpdateStatusRequest struct {
	Status   string     `json:"status" validate:"required,oneof=pending approved"`
	IssuedAt *time.Time `json:"issuedAt"`
}

// Validate normalizes and validates the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *UpdateStatusRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Status = strings.ToLower(strings.TrimSpace(r.Status))
	return structError(validate.Struct(r))
}

func (r *UpdateStatusRequest) Change() models.StatusChange {
	return models.StatusChange{Status: models.Status(r.Status), IssuedAt: r.IssuedAt}
}

// structError turns the first validator failure into a validation error
// naming the offending field.
func structError(err error) error {
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) || len(fields) == 0 {
		return dErrors.Wrap(err, dErrors.CodeValidation, "invalid request")
	}
	fe := fields[0]
	switch fe.Tag() {
	case "required":
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s is required", fe.Field()))
	case "gt":
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s must be a positive integer", fe.Field()))
	case "oneof":
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", ")))
	default:
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s is invalid", fe.Field()))
	}
}
