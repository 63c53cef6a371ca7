// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits with an error.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all runtime configuration for the matching service.
type Config struct {
	Port                    string
	DatabaseURL             string
	RedisURL                string
	JWTSecret               string
	FirebaseCredentialsFile string

	// WorkerGeoKey is the Redis GEO set holding live worker positions.
	WorkerGeoKey string

	// SearchRadiusKm bounds how far from the user a worker may be
	// and still receive a job alert.
	SearchRadiusKm float64
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	credFile := os.Getenv("FIREBASE_CREDENTIALS_FILE")
	if credFile == "" {
		return nil, fmt.Errorf("FIREBASE_CREDENTIALS_FILE is required")
	}

	port := os.Getenv("MATCHING_PORT")
	if port == "" {
		port = "8083"
	}

	geoKey := os.Getenv("WORKER_GEO_KEY")
	if geoKey == "" {
		geoKey = "workers:geo"
	}

	radius := 2.0
	if raw := os.Getenv("SEARCH_RADIUS_KM"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("SEARCH_RADIUS_KM must be a positive number, got %q", raw)
		}
		radius = parsed
	}

	return &Config{
		Port:                    port,
		DatabaseURL:             dbURL,
		RedisURL:                redisURL,
		JWTSecret:               jwtSecret,
		FirebaseCredentialsFile: credFile,
		WorkerGeoKey:            geoKey,
		SearchRadiusKm:          radius,
	}, nil
}
