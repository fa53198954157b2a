package admin

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	dErrors "certportal/pkg/domain-errors"
	"certportal/pkg/platform/httputil"
	request "certportal/pkg/platform/middleware/request"
	"certportal/pkg/requestcontext"
)

// HeaderAdminToken carries the shared admin secret.
const HeaderAdminToken = "X-Admin-Token"

// IsAdminRequest reports whether r presents the expected admin token.
func IsAdminRequest(r *http.Request, expectedToken string) bool {
	token := r.Header.Get(HeaderAdminToken)
	if token == "" || expectedToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) == 1
}

// RequireAdminToken rejects requests without the admin token and marks the
// rest as admin callers.
func RequireAdminToken(expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if !IsAdminRequest(r, expectedToken) {
				logger.WarnContext(ctx, "admin token mismatch",
					"request_id", request.GetRequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "admin token required"))
				return
			}
			ctx = requestcontext.WithPrincipal(ctx, requestcontext.Caller{Admin: true})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
