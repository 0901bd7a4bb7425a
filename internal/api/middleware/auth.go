package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/avdeev/events-manager/internal/domain"
	"github.com/avdeev/events-manager/internal/service"
	"github.com/google/uuid"
)

type contextKey string

const userKey contextKey = "user"

// Auth verifies the bearer token and attaches the resolved, non-deleted user
// to the request context. Accounts soft-deleted after token issuance fail to
// resolve and are rejected.
func Auth(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, "Authorization header required")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				unauthorized(w, "Invalid authorization header")
				return
			}

			claims, err := authService.ValidateToken(parts[1])
			if err != nil {
				slog.Debug("token validation failed", slog.String("error", err.Error()))
				unauthorized(w, "Invalid token")
				return
			}

			sub, ok := claims["sub"].(string)
			if !ok {
				unauthorized(w, "Invalid token claims")
				return
			}

			userID, err := uuid.Parse(sub)
			if err != nil {
				unauthorized(w, "Invalid token claims")
				return
			}

			user, err := authService.GetActiveUser(r.Context(), userID)
			if err != nil {
				unauthorized(w, "Invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser returns the authenticated user attached by Auth.
func GetUser(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userKey).(*domain.User)
	return user, ok
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
