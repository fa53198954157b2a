// Package directory resolves learners and courses for certificate views. The
// directory is owned by another system and is read-only here.
package directory

import (
	"context"

	"certportal/internal/certificate/models"
	id "certportal/pkg/domain"
)

// Directory looks up learners and courses in bulk. Entries that do not exist
// are simply absent from the returned maps.
type Directory interface {
	Learners(ctx context.Context, ids []id.LearnerID) (map[id.LearnerID]models.Learner, error)
	Courses(ctx context.Context, ids []id.CourseID) (map[id.CourseID]models.Course, error)
}

// Unique drops duplicate and non-positive ids, keeping first-seen order.
func Unique[T interface {
	~int64
	IsValid() bool
}](ids []T) []T {
	seen := make(map[T]struct{}, len(ids))
	out := make([]T, 0, len(ids))
	for _, v := range ids {
		if !v.IsValid() {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
