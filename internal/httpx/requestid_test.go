package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"clicksolver/matching-service/internal/httpx"
)

func TestWithRequestID_AssignsID(t *testing.T) {
	var got string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = httpx.RequestID(r.Context())
	})

	rec := httptest.NewRecorder()
	httpx.WithRequestID(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if got == "" {
		t.Error("no request id in context")
	}
	if rec.Header().Get("X-Request-Id") != got {
		t.Errorf("header %q does not match context id %q", rec.Header().Get("X-Request-Id"), got)
	}
}

func TestWithRequestID_HonorsIncomingHeader(t *testing.T) {
	var got string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = httpx.RequestID(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "upstream-id")
	httpx.WithRequestID(next).ServeHTTP(httptest.NewRecorder(), req)

	if got != "upstream-id" {
		t.Errorf("request id = %q, want upstream-id", got)
	}
}
