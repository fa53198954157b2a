package memory

import "certportal/internal/certificate/models"

// Seeded returns a directory with a handful of demo learners and courses.
func Seeded() *Directory {
	d := New()
	for _, l := range []models.Learner{
		{ID: 1, Username: "Ada Lovelace", Email: "ada@example.edu"},
		{ID: 2, Username: "Grace Hopper", Email: "grace@example.edu"},
		{ID: 3, Username: "Alan Turing", Email: "alan@example.edu"},
		{ID: 7, Username: "Katherine Johnson", Email: "katherine@example.edu"},
	} {
		d.PutLearner(l)
	}
	for _, c := range []models.Course{
		{ID: 1, Title: "Foundations of Clinical Ethics"},
		{ID: 2, Title: "Advanced Pharmacology Update"},
		{ID: 3, Title: "Evidence-Based Practice in Community Health Nursing: Assessment, Planning and Evaluation"},
	} {
		d.PutCourse(c)
	}
	return d
}
