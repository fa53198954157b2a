package postgres

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certportal/internal/certificate/models"
)

// fakeRow scans fixed column values in SELECT order.
type fakeRow struct {
	id       string
	status   string
	issuedAt sql.NullTime
	created  time.Time
}

func (r fakeRow) Scan(dest ...any) error {
	*dest[0].(*string) = r.id
	*dest[1].(*int64) = 7
	*dest[2].(*int64) = 3
	*dest[3].(*string) = r.status
	*dest[4].(*sql.NullTime) = r.issuedAt
	*dest[5].(*time.Time) = r.created
	*dest[6].(*time.Time) = r.created
	return nil
}

func TestScanCertificate(t *testing.T) {
	created := time.Date(2026, 2, 1, 8, 0, 0, 0, time.FixedZone("CET", 3600))
	row := fakeRow{
		id:       "3f2b8c1e-6d4a-4e7b-9a10-2c5d8e7f6a01",
		status:   "approved",
		issuedAt: sql.NullTime{Time: created.Add(time.Hour), Valid: true},
		created:  created,
	}

	t.Run("maps columns", func(t *testing.T) {
		c, err := scanCertificate(row)
		require.NoError(t, err)
		assert.Equal(t, row.id, c.ID.String())
		assert.Equal(t, models.StatusApproved, c.Status)
		require.NotNil(t, c.IssuedAt)
		assert.Equal(t, time.UTC, c.IssuedAt.Location())
		assert.Equal(t, time.UTC, c.CreatedAt.Location())
	})

	t.Run("unknown status is refused", func(t *testing.T) {
		bad := row
		bad.status = "archived"
		c, err := scanCertificate(bad)
		assert.Nil(t, c)
		assert.ErrorContains(t, err, `unknown status "archived"`)
	})

	t.Run("malformed id is refused", func(t *testing.T) {
		bad := row
		bad.id = "42"
		_, err := scanCertificate(bad)
		assert.ErrorContains(t, err, "parse certificate id")
	})
}
