package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"clicksolver/matching-service/internal/auth"
)

const secret = "test-secret"

func signedToken(t *testing.T, claims jwt.MapClaims, key string) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return raw
}

func serve(authHeader string) (*httptest.ResponseRecorder, int64, bool) {
	var (
		gotID int64
		gotOK bool
	)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, gotOK = auth.UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/getNearbyWorker", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	auth.Middleware(secret)(next).ServeHTTP(rec, req)
	return rec, gotID, gotOK
}

func TestMiddleware_ValidToken(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"user_id": 7}, secret)

	rec, id, ok := serve("Bearer " + token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !ok || id != 7 {
		t.Errorf("UserID = (%d, %v), want (7, true)", id, ok)
	}
}

func TestMiddleware_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not a bearer token", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
		{"wrong secret", "Bearer " + signedToken(t, jwt.MapClaims{"user_id": 7}, "other-secret")},
		{"missing user_id claim", "Bearer " + signedToken(t, jwt.MapClaims{"sub": "x"}, secret)},
	}
	for _, c := range cases {
		rec, _, ok := serve(c.header)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", c.name, rec.Code)
		}
		if ok {
			t.Errorf("%s: user id reached the handler", c.name)
		}
	}
}

func TestWithUserID_RoundTrip(t *testing.T) {
	ctx := auth.WithUserID(httptest.NewRequest(http.MethodGet, "/", nil).Context(), 12)
	id, ok := auth.UserID(ctx)
	if !ok || id != 12 {
		t.Errorf("UserID = (%d, %v), want (12, true)", id, ok)
	}
}
