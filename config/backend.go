package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Backend endpoints for the business API and the receipt extraction service.
// Both default to local development ports.

func GetBackendBaseURL() string {
	base := strings.TrimSpace(os.Getenv("BACKEND_API_BASE_URL"))
	if base == "" {
		base = "http://localhost:8080"
	}
	return strings.TrimRight(base, "/")
}

func GetScanBaseURL() string {
	base := strings.TrimSpace(os.Getenv("SCAN_API_BASE_URL"))
	if base == "" {
		base = "http://localhost:5001"
	}
	return strings.TrimRight(base, "/")
}

func GetAPIToken() string {
	return strings.TrimSpace(os.Getenv("API_TOKEN"))
}

// GetCacheLifespan is the TTL for warm job-list pages mirrored into Redis.
// CACHE_LIFESPAN is in hours.
func GetCacheLifespan() time.Duration {
	lifespan, err := strconv.Atoi(os.Getenv("CACHE_LIFESPAN"))
	if err != nil {
		lifespan = 1
	}
	return time.Duration(lifespan) * time.Hour
}
