package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"quizapi/internal/domain"
	"quizapi/internal/http/response"
	"quizapi/internal/observability"
	"quizapi/internal/repository"
	"quizapi/internal/security"
	"quizapi/internal/service"
)

type contextKey string

const (
	ClaimsContextKey contextKey = "claims"
	UserContextKey   contextKey = "user"
)

// Auth requires a valid, unrevoked access token belonging to an
// existing active user. Every failure mode maps to the same 401 so
// responses do not leak why validation failed, with two exceptions
// that get their own message: a wrong token kind and a deactivated
// account.
func Auth(tokens *service.TokenService, users repository.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, claims, err := resolveUser(r, tokens, users)
			if err != nil {
				if errors.Is(err, service.ErrInvalidTokenKind) {
					response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", service.ErrInvalidTokenKind.Error(), nil)
					return
				}
				if errors.Is(err, service.ErrAccountDisabled) {
					response.Error(w, r, http.StatusUnauthorized, "ACCOUNT_DISABLED", service.ErrAccountDisabled.Error(), nil)
					return
				}
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", service.ErrInvalidToken.Error(), nil)
				return
			}
			ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
			ctx = context.WithValue(ctx, UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth attaches the user when a valid token is presented and
// silently continues without one on any failure.
func OptionalAuth(tokens *service.TokenService, users repository.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, claims, err := resolveUser(r, tokens, users)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
			ctx = context.WithValue(ctx, UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireActive rejects deactivated accounts. Auth already refuses
// them, so this is a backstop for handlers reached through other
// gates.
func RequireActive(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok || !user.IsActive {
			response.Error(w, r, http.StatusBadRequest, "INACTIVE_USER", service.ErrInactiveUser.Error(), nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin runs after Auth and gates the admin surface.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok || !user.IsAdmin {
			response.Error(w, r, http.StatusForbidden, "ADMIN_REQUIRED", service.ErrAdminRequired.Error(), nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func resolveUser(r *http.Request, tokens *service.TokenService, users repository.UserRepository) (*domain.User, *security.Claims, error) {
	raw := bearerToken(r)
	if raw == "" {
		observability.RecordAccessTokenValidation(r.Context(), "missing")
		return nil, nil, service.ErrInvalidToken
	}
	claims, err := tokens.Verify(raw, security.TokenKindAccess)
	if err != nil {
		observability.RecordAccessTokenValidation(r.Context(), "invalid")
		return nil, nil, err
	}
	userID, err := claims.UserID()
	if err != nil {
		observability.RecordAccessTokenValidation(r.Context(), "invalid")
		return nil, nil, service.ErrInvalidToken
	}
	user, err := users.FindByID(userID)
	if err != nil {
		observability.RecordAccessTokenValidation(r.Context(), "unknown_user")
		return nil, nil, service.ErrInvalidToken
	}
	if !user.IsActive {
		observability.RecordAccessTokenValidation(r.Context(), "inactive")
		return nil, nil, service.ErrAccountDisabled
	}
	observability.RecordAccessTokenValidation(r.Context(), "valid")
	return user, claims, nil
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

func ClaimsFromContext(ctx context.Context) (*security.Claims, bool) {
	c, ok := ctx.Value(ClaimsContextKey).(*security.Claims)
	return c, ok
}

func UserFromContext(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(UserContextKey).(*domain.User)
	return u, ok
}
