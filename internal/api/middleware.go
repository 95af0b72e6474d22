package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/dkazakov/invest-aggregator/internal/models"
)

type contextKey string

const userContextKey contextKey = "user"

// authMiddleware resolves the acting user from the bearer session token and
// stores it on the request context.
func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respondJSON(w, http.StatusUnauthorized, map[string]string{
				"status":  "error",
				"message": "User not authenticated",
			})
			return
		}

		user, err := h.users.GetUserByAPIToken(token)
		if err != nil {
			respondJSON(w, http.StatusUnauthorized, map[string]string{
				"status":  "error",
				"message": "User not authenticated",
			})
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userFrom(r *http.Request) *models.User {
	user, _ := r.Context().Value(userContextKey).(*models.User)
	return user
}
