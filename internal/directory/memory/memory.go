package memory

import (
	"context"
	"sync"

	"certportal/internal/certificate/models"
	id "certportal/pkg/domain"
)

// Directory is a seeded in-process directory for local runs and tests.
type Directory struct {
	mu       sync.RWMutex
	learners map[id.LearnerID]models.Learner
	courses  map[id.CourseID]models.Course
}

func New() *Directory {
	return &Directory{
		learners: make(map[id.LearnerID]models.Learner),
		courses:  make(map[id.CourseID]models.Course),
	}
}

func (d *Directory) PutLearner(l models.Learner) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.learners[l.ID] = l
}

func (d *Directory) PutCourse(c models.Course) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.courses[c.ID] = c
}

func (d *Directory) Learners(_ context.Context, ids []id.LearnerID) (map[id.LearnerID]models.Learner, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[id.LearnerID]models.Learner, len(ids))
	for _, l := range ids {
		if v, ok := d.learners[l]; ok {
			out[l] = v
		}
	}
	return out, nil
}

func (d *Directory) Courses(_ context.Context, ids []id.CourseID) (map[id.CourseID]models.Course, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[id.CourseID]models.Course, len(ids))
	for _, c := range ids {
		if v, ok := d.courses[c]; ok {
			out[c] = v
		}
	}
	return out, nil
}
