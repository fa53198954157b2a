package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certportal/internal/certificate/models"
	id "certportal/pkg/domain"
	dErrors "certportal/pkg/domain-errors"
)

func TestCreateCertificateRequest(t *testing.T) {
	t.Run("status defaults to pending", func(t *testing.T) {
		req := &CreateCertificateRequest{UserID: 4, CourseID: 9}
		require.NoError(t, req.Validate())

		assert.Equal(t, models.CreateCommand{
			LearnerID: id.LearnerID(4),
			CourseID:  id.CourseID(9),
			Status:    models.StatusPending,
		}, req.Command())
	})

	t.Run("status is normalized", func(t *testing.T) {
		req := &CreateCertificateRequest{UserID: 4, CourseID: 9, Status: "  Approved "}
		require.NoError(t, req.Validate())
		assert.Equal(t, models.StatusApproved, req.Command().Status)
	})

	t.Run("nil request", func(t *testing.T) {
		var req *CreateCertificateRequest
		assert.True(t, dErrors.HasCode(req.Validate(), dErrors.CodeBadRequest))
	})

	t.Run("first failing field is reported", func(t *testing.T) {
		err := (&CreateCertificateRequest{}).Validate()
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Equal(t, "userId is required", dErrors.MessageOf(err))
	})
}

func TestUpdateStatusRequest(t *testing.T) {
	t.Run("carries the explicit issue date", func(t *testing.T) {
		at := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
		req := &UpdateStatusRequest{Status: "approved", IssuedAt: &at}
		require.NoError(t, req.Validate())

		change := req.Change()
		assert.Equal(t, models.StatusApproved, change.Status)
		assert.Equal(t, &at, change.IssuedAt)
	})

	t.Run("status is required", func(t *testing.T) {
		err := (&UpdateStatusRequest{}).Validate()
		assert.Equal(t, "status is required", dErrors.MessageOf(err))
	})

	t.Run("unknown status", func(t *testing.T) {
		err := (&UpdateStatusRequest{Status: "rejected"}).Validate()
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Equal(t, "status must be one of: pending, approved", dErrors.MessageOf(err))
	})
}
