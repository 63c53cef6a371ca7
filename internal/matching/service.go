// Package matching implements the nearby-worker booking pipeline: record
// the booking, match verified workers by skill, keep the ones within the
// search radius, record one notification per worker, and push a job alert
// to their registered devices.
package matching

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
	"log/slog"
	"math/big"
	"strconv"
	"time"
)

// ─── Outcomes ────────────────────────────────────────────────────────────────

// Outcome classifies how far the pipeline got. Every outcome is a success
// from the caller's point of view; only store/transport failures are errors.
type Outcome string

const (
	// OutcomeMatched: notifications recorded and a push dispatched.
	OutcomeMatched Outcome = "matched"
	// OutcomeNoMatch: booking recorded, but no verified worker covers the
	// requested sub-services.
	OutcomeNoMatch Outcome = "no_match"
	// OutcomeNoNearby: candidates existed but none within the radius.
	OutcomeNoNearby Outcome = "no_nearby"
	// OutcomeNoEndpoints: notifications recorded, but no worker has a
	// registered device. The booking token is still returned.
	OutcomeNoEndpoints Outcome = "no_endpoints"
)

// BookingResult is what the handler turns into the HTTP response.
type BookingResult struct {
	Outcome   Outcome
	BookingID int64

	// Token is the opaque base64 booking handle; set whenever the booking
	// row exists and notifications were recorded (or no push was needed).
	Token string

	// Message is the informational text for the no_match / no_nearby
	// outcomes.
	Message string

	// Notified / Failed count per-device push outcomes; internal
	// bookkeeping only, never an error.
	Notified int
	Failed   int
}

// ─── Service ─────────────────────────────────────────────────────────────────

// Service wires the pipeline's ports together. It holds no mutable state;
// one call to BookNearbyWorkers processes one request end to end.
type Service struct {
	store     Store
	locations LocationStore
	push      PushSender
	radiusKm  float64
}

// NewService returns a configured Service.
func NewService(store Store, locations LocationStore, push PushSender, radiusKm float64) *Service {
	return &Service{store: store, locations: locations, push: push, radiusKm: radiusKm}
}

// BookNearbyWorkers runs the full pipeline for one authenticated user.
//
// The booking row is never rolled back once inserted: an empty candidate
// or nearby set still leaves the booking as the record of the request.
// Offer redemption and push dispatch are best-effort; their failures are
// logged and never affect the committed booking or notifications.
func (s *Service) BookNearbyWorkers(ctx context.Context, userID int64, req *BookingRequest) (*BookingResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	serviceJSON, err := req.ServiceJSON()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	// Stage 1: booking insert + skill match, one transaction.
	match, err := s.store.CreateBookingAndMatch(ctx, BookingRecord{
		UserID:         userID,
		CreatedAt:      now,
		Area:           req.Area,
		Pincode:        req.Pincode,
		City:           req.City,
		AlternateName:  req.AlternateName,
		AlternatePhone: req.AlternatePhoneNumber,
		ServiceJSON:    serviceJSON,
		ServiceNames:   req.ServiceNames(),
	})
	if err != nil {
		return nil, err
	}

	if len(match.WorkerIDs) == 0 {
		return &BookingResult{
			Outcome:   OutcomeNoMatch,
			BookingID: match.BookingID,
			Message:   "No workers match the requested subservices",
		}, nil
	}

	// Stage 2: point-in-time position snapshot + radius filter.
	positions, err := s.locations.Positions(ctx, match.WorkerIDs)
	if err != nil {
		return nil, fmt.Errorf("worker positions: %w", err)
	}

	nearby := FilterNearby(match.UserLocation, match.WorkerIDs, positions, s.radiusKm)
	if len(nearby) == 0 {
		return &BookingResult{
			Outcome:   OutcomeNoNearby,
			BookingID: match.BookingID,
			Message:   fmt.Sprintf("No workers found within %g km radius", s.radiusKm),
		}, nil
	}

	// Stage 3: notification rows + token lookup, one transaction.
	pin, err := newPin()
	if err != nil {
		return nil, err
	}

	batch := NotificationBatch{
		BookingID:   match.BookingID,
		UserID:      userID,
		Origin:      match.UserLocation,
		CreatedAt:   now,
		Pin:         pin,
		WorkerIDs:   nearby,
		ServiceJSON: serviceJSON,
		Discount:    req.Discount,
		TotalCost:   req.TotalCost(),
		TipAmount:   req.TipAmount,
	}
	if req.Offer != nil {
		batch.OfferCode = &req.Offer.OfferCode
	}

	tokens, err := s.store.RecordNotifications(ctx, batch)
	if err != nil {
		return nil, err
	}

	// Stage 4: offer redemption, best-effort from here on.
	if req.Offer != nil {
		if err := s.store.MarkOfferApplied(ctx, userID, req.Offer.OfferCode); err != nil {
			slog.Warn("mark offer applied failed", "userId", userID, "offerCode", req.Offer.OfferCode, "err", err)
		}
	}

	result := &BookingResult{
		Outcome:   OutcomeMatched,
		BookingID: match.BookingID,
		Token:     EncodeBookingToken(match.BookingID),
	}

	if len(tokens) == 0 {
		result.Outcome = OutcomeNoEndpoints
		result.Message = "No registered devices for the notified workers"
		return result, nil
	}

	// Stage 5: single multicast push; prune dead tokens.
	msg := buildJobAlert(result.Token, serviceJSON, req.LocationSummary(), batch.TotalCost, now)
	result.Notified, result.Failed = s.dispatch(ctx, tokens, msg)

	return result, nil
}

// dispatch sends the multicast once and classifies per-token outcomes,
// deleting tokens the transport reports as permanently unregistered.
// Failures here never surface to the caller.
func (s *Service) dispatch(ctx context.Context, tokens []string, msg PushMessage) (sent, failed int) {
	results, err := s.push.SendMulticast(ctx, tokens, msg)
	if err != nil {
		slog.Warn("push multicast failed", "tokens", len(tokens), "err", err)
		return 0, len(tokens)
	}

	for _, r := range results {
		if r.Err == nil {
			sent++
			continue
		}
		failed++
		slog.Warn("push send failed", "token", r.Token, "err", r.Err)

		if r.Unregistered {
			if err := s.store.DeleteEndpoint(ctx, r.Token); err != nil {
				slog.Warn("delete stale fcm token failed", "token", r.Token, "err", err)
			}
		}
	}

	log.Printf("[matching] push summary: %d sent, %d failed", sent, failed)
	return sent, failed
}

// ─── Booking token ───────────────────────────────────────────────────────────

// EncodeBookingToken turns a booking id into the opaque handle shared by
// the HTTP response, the push data payload and the acceptance deep link.
func EncodeBookingToken(bookingID int64) string {
	return base64.StdEncoding.EncodeToString([]byte(strconv.FormatInt(bookingID, 10)))
}

// newPin generates the 4-digit verification code shared by every
// notification of one booking. Uniqueness is scoped to the booking, so
// collisions across bookings are fine.
func newPin() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", fmt.Errorf("generate pin: %w", err)
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}

// ─── Sentinel errors ─────────────────────────────────────────────────────────

// ErrNoUserLocation is returned when the user has no location on file;
// no booking row is created in that case.
var ErrNoUserLocation = fmt.Errorf("no location on file for user")

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }
