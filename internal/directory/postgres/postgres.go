package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"certportal/internal/certificate/models"
	"certportal/internal/directory"
	id "certportal/pkg/domain"
)

// Directory reads learners and courses from tables maintained by the
// enrolment system.
type Directory struct {
	db *sql.DB
}

func New(db *sql.DB) *Directory {
	return &Directory{db: db}
}

func (d *Directory) Learners(ctx context.Context, ids []id.LearnerID) (map[id.LearnerID]models.Learner, error) {
	ids = directory.Unique(ids)
	out := make(map[id.LearnerID]models.Learner, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	raw := make([]int64, len(ids))
	for i, v := range ids {
		raw[i] = int64(v)
	}
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, username, email FROM learners WHERE id = ANY($1)`, pq.Array(raw))
	if err != nil {
		return nil, fmt.Errorf("query learners: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			learnerID int64
			l         models.Learner
		)
		if err := rows.Scan(&learnerID, &l.Username, &l.Email); err != nil {
			return nil, fmt.Errorf("scan learner: %w", err)
		}
		l.ID = id.LearnerID(learnerID)
		out[l.ID] = l
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate learners: %w", err)
	}
	return out, nil
}

func (d *Directory) Courses(ctx context.Context, ids []id.CourseID) (map[id.CourseID]models.Course, error) {
	ids = directory.Unique(ids)
	out := make(map[id.CourseID]models.Course, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	raw := make([]int64, len(ids))
	for i, v := range ids {
		raw[i] = int64(v)
	}
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, title FROM courses WHERE id = ANY($1)`, pq.Array(raw))
	if err != nil {
		return nil, fmt.Errorf("query courses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			courseID int64
			c        models.Course
		)
		if err := rows.Scan(&courseID, &c.Title); err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		c.ID = id.CourseID(courseID)
		out[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate courses: %w", err)
	}
	return out, nil
}
