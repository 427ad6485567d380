package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/nutrieve/nutrieve/pkg/auth"
	"github.com/nutrieve/nutrieve/pkg/logger"
	"github.com/nutrieve/nutrieve/pkg/response"
)

// Authenticator resolves a bearer token to the calling user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (auth.Principal, error)
}

type principalKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p auth.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromCtx returns the caller stored by Auth.
func PrincipalFromCtx(ctx context.Context) (auth.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(auth.Principal)
	return p, ok
}

// UserIDFromCtx returns the caller's user id, or 0 for anonymous requests.
func UserIDFromCtx(ctx context.Context) uint {
	p, _ := PrincipalFromCtx(ctx)
	return p.UserID
}

// RoleFromCtx returns the caller's role.
func RoleFromCtx(ctx context.Context) (string, bool) {
	p, ok := PrincipalFromCtx(ctx)
	if !ok {
		return "", false
	}
	return p.Role, true
}

// Auth rejects requests without a valid "Authorization: Bearer <token>"
// header. Each rejection reason gets its own message.
func Auth(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				response.Unauthorized(w, "Authorization header is required")
				return
			}

			scheme, token, ok := strings.Cut(header, " ")
			token = strings.TrimSpace(token)
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				response.Unauthorized(w, "Invalid authorization header format")
				return
			}

			p, err := a.Authenticate(r.Context(), token)
			if err != nil {
				msg, known := tokenErrorMessage(err)
				if !known {
					logger.WithCtx(r.Context()).Error("authenticate token", "error", err)
					response.Error(w, http.StatusInternalServerError, "Internal server error")
					return
				}
				response.Unauthorized(w, msg)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

func tokenErrorMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token has expired", true
	case errors.Is(err, auth.ErrMissingSubject):
		return "Token is missing a subject", true
	case errors.Is(err, auth.ErrUnknownSubject):
		return "User not found or inactive", true
	case errors.Is(err, auth.ErrInvalidToken):
		return "Invalid token", true
	}
	return "", false
}
