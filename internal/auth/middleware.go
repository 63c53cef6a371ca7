// Package auth verifies the caller's JWT and injects the user id into the
// request context. Every /api route runs behind this middleware, so the
// matching pipeline can assume an authenticated user id is always present.
package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type ctxKey struct{}

// UserID returns the authenticated user id stored by Middleware.
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(ctxKey{}).(int64)
	return id, ok
}

// WithUserID returns a context carrying the given user id. Exported for
// handler tests that bypass the HTTP middleware.
func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// Middleware returns an http middleware that validates the Authorization
// bearer token with the given HMAC secret and stores the user_id claim in
// the request context. Requests without a valid token get 401.
func Middleware(secret string) func(http.Handler) http.Handler {
	key := []byte(secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				unauthorized(w, "missing bearer token")
				return
			}

			token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return key, nil
			})
			if err != nil || !token.Valid {
				unauthorized(w, "invalid token")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				unauthorized(w, "invalid token claims")
				return
			}

			// user_id is a JSON number; MapClaims decodes it as float64.
			rawID, ok := claims["user_id"].(float64)
			if !ok {
				unauthorized(w, "token missing user_id claim")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), int64(rawID))))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
