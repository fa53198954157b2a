package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"certportal/internal/certificate/models"
	id "certportal/pkg/domain"
	"certportal/pkg/platform/sentinel"
	txcontext "certportal/pkg/platform/tx"
)

const uniqueViolation = "23505"

// PostgresStore persists certificates in the certificates table. Every method
// joins the transaction carried in ctx when there is one.
type PostgresStore struct {
	db *sql.DB
}

func New(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const selectColumns = `id, user_id, course_id, status, issued_at, created_at, updated_at`

// Create inserts c in a single statement. The (user_id, course_id) unique
// constraint decides races; losers get sentinel.ErrAlreadyUsed.
func (s *PostgresStore) Create(ctx context.Context, c *models.Certificate) error {
	query := `
		INSERT INTO certificates (id, user_id, course_id, status, issued_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		c.ID.String(), int64(c.LearnerID), int64(c.CourseID), string(c.Status),
		c.IssuedAt, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert certificate: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, certID id.CertificateID) (*models.Certificate, error) {
	query := `SELECT ` + selectColumns + ` FROM certificates WHERE id = $1`
	c, err := scanCertificate(s.execer(ctx).QueryRowContext(ctx, query, certID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find certificate: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Certificate, error) {
	query := `SELECT ` + selectColumns + ` FROM certificates ORDER BY created_at, id`
	rows, err := s.execer(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	defer rows.Close()

	out := []*models.Certificate{}
	for rows.Next() {
		c, err := scanCertificate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan certificate: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate certificates: %w", err)
	}
	return out, nil
}

// Execute locks the row with SELECT ... FOR UPDATE, applies fn and writes the
// result back. Without a transaction in ctx it opens and commits its own.
func (s *PostgresStore) Execute(ctx context.Context, certID id.CertificateID, fn func(*models.Certificate) error) (*models.Certificate, error) {
	if _, ok := txcontext.From(ctx); ok {
		return s.execute(ctx, certID, fn)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	c, err := s.execute(txcontext.WithTx(ctx, tx), certID, fn)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) execute(ctx context.Context, certID id.CertificateID, fn func(*models.Certificate) error) (*models.Certificate, error) {
	exec := s.execer(ctx)

	query := `SELECT ` + selectColumns + ` FROM certificates WHERE id = $1 FOR UPDATE`
	c, err := scanCertificate(exec.QueryRowContext(ctx, query, certID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("lock certificate: %w", err)
	}

	if err := fn(c); err != nil {
		return nil, err
	}

	update := `
		UPDATE certificates
		SET status = $2, issued_at = $3, updated_at = $4
		WHERE id = $1
	`
	if _, err := exec.ExecContext(ctx, update, certID.String(), string(c.Status), c.IssuedAt, c.UpdatedAt); err != nil {
		return nil, fmt.Errorf("update certificate: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) Delete(ctx context.Context, certID id.CertificateID) error {
	res, err := s.execer(ctx).ExecContext(ctx, `DELETE FROM certificates WHERE id = $1`, certID.String())
	if err != nil {
		return fmt.Errorf("delete certificate: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete certificate rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCertificate(row scanner) (*models.Certificate, error) {
	var (
		c        models.Certificate
		rawID    string
		learner  int64
		course   int64
		status   string
		issuedAt sql.NullTime
	)
	if err := row.Scan(&rawID, &learner, &course, &status, &issuedAt, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	certID, err := id.ParseCertificateID(rawID)
	if err != nil {
		return nil, fmt.Errorf("parse certificate id: %w", err)
	}
	c.ID = certID
	c.LearnerID = id.LearnerID(learner)
	c.CourseID = id.CourseID(course)
	c.Status, err = models.ParseStatus(status)
	if err != nil {
		return nil, fmt.Errorf("certificate %s: unknown status %q: %w", rawID, status, err)
	}
	if issuedAt.Valid {
		t := issuedAt.Time.UTC()
		c.IssuedAt = &t
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return &c, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
