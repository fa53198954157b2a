package testutil

import (
	"net/http"

	id "certportal/pkg/domain"
	"certportal/pkg/requestcontext"
)

// AsAdmin marks the request as coming from an admin caller, as the admin
// token middleware would.
func AsAdmin(req *http.Request) *http.Request {
	ctx := requestcontext.WithPrincipal(req.Context(), requestcontext.Caller{Admin: true})
	return req.WithContext(ctx)
}

// AsLearner marks the request as coming from the given learner, as the bearer
// token middleware would.
func AsLearner(req *http.Request, learner id.LearnerID) *http.Request {
	ctx := requestcontext.WithPrincipal(req.Context(), requestcontext.Caller{LearnerID: learner})
	return req.WithContext(ctx)
}
