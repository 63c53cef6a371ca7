// clicksolver-matching-service
//
// Matches a user's service booking against nearby verified workers and
// pushes job alerts to their devices:
//   - getNearbyWorker(booking) — record booking, match by skills,
//     filter by 2 km radius, record notifications, multicast FCM push
//
// Postgres owns bookings/notifications/FCM tokens; Redis holds the live
// worker position GEO set; FCM is the push transport.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"clicksolver/matching-service/internal/auth"
	"clicksolver/matching-service/internal/config"
	"clicksolver/matching-service/internal/db"
	"clicksolver/matching-service/internal/httpx"
	"clicksolver/matching-service/internal/matching"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	if err := godotenv.Load(); err != nil {
		log.Println("[matching-service] No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[matching-service] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	log.Println("[matching-service] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[matching-service] PostgreSQL: %v", err)
	}
	defer pool.Close()
	log.Println("[matching-service] PostgreSQL connected ✓")

	// ── Redis ────────────────────────────────────────────────────────────────
	log.Println("[matching-service] Connecting to Redis…")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("[matching-service] Redis: %v", err)
	}
	defer rdb.Close()
	log.Println("[matching-service] Redis connected ✓")

	// ── Firebase Cloud Messaging ─────────────────────────────────────────────
	fcmClient, err := db.NewMessagingClient(ctx, cfg.FirebaseCredentialsFile)
	if err != nil {
		log.Fatalf("[matching-service] FCM: %v", err)
	}
	log.Println("[matching-service] FCM client ready ✓")

	// ── Pipeline wiring ──────────────────────────────────────────────────────
	svc := matching.NewService(
		matching.NewPGStore(pool),
		matching.NewRedisLocationStore(rdb, cfg.WorkerGeoKey),
		matching.NewFCMSender(fcmClient),
		cfg.SearchRadiusKm,
	)

	// ── HTTP server ──────────────────────────────────────────────────────────
	api := http.NewServeMux()
	matching.NewHandler(svc).RegisterRoutes(api)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.Handle("/api/", httpx.WithRequestID(auth.Middleware(cfg.JWTSecret)(api)))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Printf("[matching-service] v%s listening on :%s (radius %g km)", version, cfg.Port, cfg.SearchRadiusKm)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[matching-service] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[matching-service] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[matching-service] Shutdown error: %v", err)
	}
	log.Println("[matching-service] Stopped.")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "matching-service",
		"version": version,
	})
}
