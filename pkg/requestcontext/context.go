// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// Middleware sets these values; services read them without importing net/http.
//
//	requestID := requestcontext.RequestID(ctx)
//	now := requestcontext.Now(ctx)
//	principal := requestcontext.Principal(ctx)
package requestcontext

import (
	"context"
	"time"

	id "certportal/pkg/domain"
)

type (
	principalKey   struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Exported context keys for direct use in tests that need context.WithValue.
var (
	ContextKeyPrincipal   = principalKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// Caller identifies who is making the request. Admin callers authenticate with the
// admin token; learners with a bearer token whose subject is their learner id.
type Caller struct {
	Admin     bool
	LearnerID id.LearnerID
}

// CanView reports whether the caller may read a certificate owned by learner.
func (c Caller) CanView(learner id.LearnerID) bool {
	return c.Admin || (c.LearnerID.IsValid() && c.LearnerID == learner)
}

// Principal retrieves the authenticated caller. The zero Caller can view nothing.
func Principal(ctx context.Context) Caller {
	if c, ok := ctx.Value(ContextKeyPrincipal).(Caller); ok {
		return c
	}
	return Caller{}
}

// WithPrincipal injects the authenticated caller into the context.
func WithPrincipal(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, ContextKeyPrincipal, c)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (workers, CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
// Useful for service unit tests that don't run the HTTP middleware chain.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
