// Package middleware resolves bearer tokens into request users.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/DevSidd2006/learnquest/internal/httpjson"
	"github.com/DevSidd2006/learnquest/internal/logger"
	"github.com/DevSidd2006/learnquest/internal/models"
)

// SessionValidator turns a token into the user it belongs to.
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (*models.User, error)
}

type ctxKey int

const (
	userKey ctxKey = iota
	tokenKey
)

type AuthMiddleware struct {
	log       *logger.Logger
	validator SessionValidator
}

func NewAuthMiddleware(log *logger.Logger, validator SessionValidator) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("middleware", "auth"), validator: validator}
}

// OptionalAuth attaches the user when the request carries a valid token.
// Missing or invalid tokens fall through as guest requests.
func (am *AuthMiddleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := BearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}
		user, err := am.validator.ValidateSession(r.Context(), token)
		if err != nil {
			am.log.Debug("token ignored, continuing as guest", "error", err)
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user, token)))
	})
}

// RequireAuth rejects requests without a valid token with 401. A user already
// attached by OptionalAuth is not validated twice.
func (am *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFromContext(r.Context()); ok {
			next.ServeHTTP(w, r)
			return
		}
		token := BearerToken(r)
		if token == "" {
			httpjson.Write(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
			return
		}
		user, err := am.validator.ValidateSession(r.Context(), token)
		if err != nil {
			httpjson.Write(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid or expired session"})
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user, token)))
	})
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func WithUser(ctx context.Context, user *models.User, token string) context.Context {
	ctx = context.WithValue(ctx, userKey, user)
	return context.WithValue(ctx, tokenKey, token)
}

func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok && u != nil
}

// UserID returns the authenticated user's id, or nil for guests.
func UserID(ctx context.Context) *string {
	if u, ok := UserFromContext(ctx); ok {
		id := u.ID
		return &id
	}
	return nil
}

// Token returns the bearer token that authenticated the request.
func Token(ctx context.Context) string {
	t, _ := ctx.Value(tokenKey).(string)
	return t
}
