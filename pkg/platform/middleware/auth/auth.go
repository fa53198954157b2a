package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	id "certportal/pkg/domain"
	dErrors "certportal/pkg/domain-errors"
	"certportal/pkg/platform/httputil"
	"certportal/pkg/platform/middleware/admin"
	request "certportal/pkg/platform/middleware/request"
	"certportal/pkg/requestcontext"
)

// JWTValidator resolves a bearer token into the learner it was issued to.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims represents the claims we expect from the external auth service.
type JWTClaims struct {
	LearnerID id.LearnerID
	JTI       string
}

var ErrInvalidToken = errors.New("invalid token")

// HMACValidator validates HS256 tokens whose subject is the learner id.
type HMACValidator struct {
	key    []byte
	issuer string
	leeway time.Duration
}

func NewHMACValidator(signingKey, issuer string) *HMACValidator {
	return &HMACValidator{key: []byte(signingKey), issuer: issuer, leeway: 30 * time.Second}
}

func (v *HMACValidator) ValidateToken(tokenString string) (*JWTClaims, error) {
	if len(v.key) == 0 {
		return nil, fmt.Errorf("%w: no signing key configured", ErrInvalidToken)
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(v.leeway),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	learnerID, err := id.ParseLearnerID(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: subject is not a learner id", ErrInvalidToken)
	}
	return &JWTClaims{LearnerID: learnerID, JTI: claims.ID}, nil
}

// RequireCaller admits admin-token requests as admins and bearer-token requests
// as the learner named in the token. Everything else gets 401.
func RequireCaller(adminToken string, validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := request.GetRequestID(ctx)

			if admin.IsAdminRequest(r, adminToken) {
				ctx = requestcontext.WithPrincipal(ctx, requestcontext.Caller{Admin: true})
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Missing or invalid Authorization header"))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired token"))
				return
			}

			ctx = requestcontext.WithPrincipal(ctx, requestcontext.Caller{LearnerID: claims.LearnerID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
