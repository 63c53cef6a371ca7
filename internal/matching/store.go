package matching

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ─── Store records ───────────────────────────────────────────────────────────

// BookingRecord is the durable usernotifications row inserted for one request.
// Coordinates are resolved from the user's last known location inside the
// same transaction, so a booking never exists without them.
type BookingRecord struct {
	UserID         int64
	CreatedAt      time.Time
	Area           string
	Pincode        string
	City           string
	AlternateName  string
	AlternatePhone string
	ServiceJSON    string
	ServiceNames   []string
}

// MatchResult is what the booking transaction hands to the proximity filter.
type MatchResult struct {
	BookingID    int64
	WorkerIDs    []int64
	UserLocation Coordinates
}

// NotificationBatch describes the per-worker notification rows inserted for
// one booking. Every row shares the same pin.
type NotificationBatch struct {
	BookingID   int64
	UserID      int64
	Origin      Coordinates
	CreatedAt   time.Time
	Pin         string
	WorkerIDs   []int64
	ServiceJSON string
	Discount    float64
	TotalCost   float64
	TipAmount   float64
	OfferCode   *string
}

// ─── Ports ───────────────────────────────────────────────────────────────────

// Store is the transactional persistence port of the matching pipeline.
type Store interface {
	// CreateBookingAndMatch atomically resolves the user's location,
	// inserts the booking row anchored to it, and returns the verified
	// workers whose skills cover every requested sub-service. Returns
	// ErrNoUserLocation (and inserts nothing) when the user has no
	// location on file. An empty WorkerIDs slice is not an error: the
	// booking is committed regardless.
	CreateBookingAndMatch(ctx context.Context, b BookingRecord) (*MatchResult, error)

	// RecordNotifications atomically inserts one notification row per
	// worker in the batch and returns the FCM tokens registered to those
	// workers. An empty token list is not an error.
	RecordNotifications(ctx context.Context, batch NotificationBatch) ([]string, error)

	// MarkOfferApplied flips the status of the matching offers_used entry
	// to "applied", leaving every other entry untouched. No-op when no
	// entry matches.
	MarkOfferApplied(ctx context.Context, userID int64, offerCode string) error

	// DeleteEndpoint removes an FCM token reported as permanently
	// unregistered.
	DeleteEndpoint(ctx context.Context, token string) error
}

// LocationStore is the external live-position snapshot port.
type LocationStore interface {
	// Positions returns current coordinates for exactly the given worker
	// ids in one batched lookup. Ids without a position are absent from
	// the map.
	Positions(ctx context.Context, workerIDs []int64) (map[int64]Coordinates, error)
}

// ─── PGStore ─────────────────────────────────────────────────────────────────

// PGStore implements Store on a pgx connection pool.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore returns a Store backed by the given pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// CreateBookingAndMatch runs the booking insert and skill match in one
// transaction.
func (s *PGStore) CreateBookingAndMatch(ctx context.Context, b BookingRecord) (*MatchResult, error) {
	var res MatchResult

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`SELECT ul.latitude, ul.longitude
			 FROM "user" u
			 JOIN userlocation ul ON ul.user_id = u.user_id
			 WHERE u.user_id = $1`,
			b.UserID,
		).Scan(&res.UserLocation.Latitude, &res.UserLocation.Longitude)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNoUserLocation
		}
		if err != nil {
			return fmt.Errorf("resolve user location: %w", err)
		}

		err = tx.QueryRow(ctx,
			`INSERT INTO usernotifications (
			   user_id, longitude, latitude, created_at,
			   area, pincode, city, alternate_name,
			   alternate_phone_number, service_booked
			 )
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::jsonb)
			 RETURNING user_notification_id`,
			b.UserID, res.UserLocation.Longitude, res.UserLocation.Latitude, b.CreatedAt,
			b.Area, b.Pincode, b.City, b.AlternateName,
			b.AlternatePhone, b.ServiceJSON,
		).Scan(&res.BookingID)
		if err != nil {
			return fmt.Errorf("insert booking: %w", err)
		}

		rows, err := tx.Query(ctx,
			`SELECT ws.worker_id
			 FROM workerskills ws
			 JOIN workersverified wv ON wv.worker_id = ws.worker_id
			 WHERE $1::text[] <@ ws.subservices
			   AND wv.no_due = TRUE
			 GROUP BY ws.worker_id`,
			b.ServiceNames,
		)
		if err != nil {
			return fmt.Errorf("match workers: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				return fmt.Errorf("scan worker id: %w", err)
			}
			res.WorkerIDs = append(res.WorkerIDs, id)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// RecordNotifications bulk-inserts the notification rows and resolves the
// workers' FCM tokens in one transaction.
func (s *PGStore) RecordNotifications(ctx context.Context, batch NotificationBatch) ([]string, error) {
	var tokens []string

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO notifications (
			   user_notification_id, user_id, worker_id,
			   longitude, latitude, created_at, pin, service_booked,
			   discount, coupons_applied, total_cost, tip_amount
			 )
			 SELECT $1, $2, w.worker_id,
			        $3, $4, $5, $6, $7::jsonb,
			        $8, $9, $10, $11
			 FROM UNNEST($12::bigint[]) AS w(worker_id)`,
			batch.BookingID, batch.UserID,
			batch.Origin.Longitude, batch.Origin.Latitude, batch.CreatedAt, batch.Pin, batch.ServiceJSON,
			batch.Discount, batch.OfferCode, batch.TotalCost, batch.TipAmount,
			batch.WorkerIDs,
		)
		if err != nil {
			return fmt.Errorf("insert notifications: %w", err)
		}

		rows, err := tx.Query(ctx,
			`SELECT fcm_token FROM fcm WHERE worker_id = ANY($1::bigint[])`,
			batch.WorkerIDs,
		)
		if err != nil {
			return fmt.Errorf("resolve fcm tokens: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				return fmt.Errorf("scan fcm token: %w", err)
			}
			tokens = append(tokens, t)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

// MarkOfferApplied rewrites the user's offers_used jsonb array, flipping
// only the entry whose offer_code matches. Entries that do not match are
// carried over byte-for-byte.
func (s *PGStore) MarkOfferApplied(ctx context.Context, userID int64, offerCode string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE "user"
		 SET offers_used = (
		   SELECT jsonb_agg(
		     CASE
		       WHEN elem->>'offer_code' = $1
		         THEN elem || '{"status":"applied"}'
		       ELSE elem
		     END
		   )
		   FROM jsonb_array_elements("user".offers_used) elem
		 )
		 WHERE user_id = $2
		   AND offers_used IS NOT NULL`,
		offerCode, userID,
	)
	if err != nil {
		return fmt.Errorf("mark offer applied: %w", err)
	}
	return nil
}

// DeleteEndpoint removes a dead FCM token by value.
func (s *PGStore) DeleteEndpoint(ctx context.Context, token string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM fcm WHERE fcm_token = $1`, token)
	if err != nil {
		return fmt.Errorf("delete fcm token: %w", err)
	}
	return nil
}
