// HTTP transport for the matching pipeline.
//
// Route:
//
//	POST /api/getNearbyWorker → run the booking pipeline for the
//	                            authenticated user
//
// Authentication happens upstream in the auth middleware; handlers read
// the user id from the request context.
package matching

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"clicksolver/matching-service/internal/auth"
)

// Handler exposes the Service over HTTP.
type Handler struct {
	svc *Service
}

// NewHandler returns a configured Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the matching routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/getNearbyWorker", h.getNearbyWorker)
}

func (h *Handler) getNearbyWorker(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := auth.UserID(r.Context())
	if !ok {
		jsonError(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	var req BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	result, err := h.svc.BookNearbyWorkers(r.Context(), userID, &req)
	if err != nil {
		var ve *ValidationError
		switch {
		case errors.As(err, &ve):
			jsonError(w, ve.Msg, http.StatusBadRequest)
		case errors.Is(err, ErrNoUserLocation):
			jsonError(w, "no location on file for user", http.StatusNotFound)
		default:
			log.Printf("[matching] getNearbyWorker error: %v", err)
			jsonError(w, "server error", http.StatusInternalServerError)
		}
		return
	}

	// The token is the caller's handle on the booking; informational
	// outcomes (no match, no nearby) return a plain message instead.
	if result.Token != "" {
		jsonOK(w, result.Token)
		return
	}
	jsonOK(w, result.Message)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
