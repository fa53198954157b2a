package memory

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "certportal/pkg/platform/audit"
)

func TestListByCertificateKeepsOrder(t *testing.T) {
	s := New()
	ctx := t.Context()
	require.NoError(t, s.Append(ctx, audit.Event{CertificateID: "a", Action: string(audit.EventCertificateCreated)}))
	require.NoError(t, s.Append(ctx, audit.Event{CertificateID: "b", Action: string(audit.EventCertificateCreated)}))
	require.NoError(t, s.Append(ctx, audit.Event{CertificateID: "a", Action: string(audit.EventCertificateApproved)}))

	events, err := s.ListByCertificate(ctx, "a")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, string(audit.EventCertificateCreated), events[0].Action)
	assert.Equal(t, string(audit.EventCertificateApproved), events[1].Action)

	none, err := s.ListByCertificate(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestOutbox(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	s := New()
	s.now = func() time.Time { return fixed }
	ctx := t.Context()

	for _, action := range []audit.AuditEvent{
		audit.EventCertificateCreated,
		audit.EventCertificateApproved,
		audit.EventCertificateExported,
	} {
		require.NoError(t, s.Append(ctx, audit.Event{
			CertificateID: "cert-1",
			LearnerID:     7,
			Action:        string(action),
		}))
	}

	batch, err := s.FetchPending(ctx, 2)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, "cert-1", batch[0].AggregateID)
	assert.Equal(t, string(audit.EventCertificateCreated), batch[0].EventType)
	assert.Equal(t, fixed, batch[0].CreatedAt)

	var payload audit.Payload
	require.NoError(t, json.Unmarshal(batch[0].Payload, &payload))
	assert.Equal(t, batch[0].ID, payload.ID)
	assert.Equal(t, string(audit.CategoryCompliance), payload.Category)
	assert.EqualValues(t, 7, payload.LearnerID)

	require.NoError(t, s.MarkProcessed(ctx, []string{batch[0].ID, batch[1].ID}, fixed))
	assert.Equal(t, 1, s.Pending())

	rest, err := s.FetchPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, string(audit.EventCertificateExported), rest[0].EventType)

	events, err := s.ListByCertificate(ctx, "cert-1")
	require.NoError(t, err)
	assert.Len(t, events, 3, "relaying does not hide history")
}
