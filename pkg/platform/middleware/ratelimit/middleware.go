package ratelimit

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"certportal/pkg/platform/httputil"
	"certportal/pkg/requestcontext"
)

// KeyFunc names the bucket a request is counted against.
type KeyFunc func(r *http.Request) string

// ByCaller keys learners by id, admins on one shared bucket and anything
// else by remote address.
func ByCaller(r *http.Request) string {
	c := requestcontext.Principal(r.Context())
	switch {
	case c.Admin:
		return "admin"
	case c.LearnerID.IsValid():
		return "learner:" + c.LearnerID.String()
	default:
		return "addr:" + r.RemoteAddr
	}
}

// Middleware rejects requests over the window's limit with 429.
func Middleware(w *Window, key KeyFunc, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			k := key(r)
			result := w.Allow(k)

			rw.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			rw.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			rw.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

			if !result.Allowed {
				retry := int(math.Ceil(result.RetryAfter.Seconds()))
				rw.Header().Set("Retry-After", strconv.Itoa(max(retry, 1)))
				logger.WarnContext(r.Context(), "rate limit exceeded",
					"key", k,
					"path", r.URL.Path,
					"request_id", requestcontext.RequestID(r.Context()),
				)
				httputil.WriteJSON(rw, http.StatusTooManyRequests, map[string]string{
					"error":             "rate_limit_exceeded",
					"error_description": "too many requests, try again later",
				})
				return
			}
			next.ServeHTTP(rw, r)
		})
	}
}
