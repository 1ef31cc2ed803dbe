package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	GeminiKey     string
	GeminiModel   string
	GeminiBaseURL string

	PlacesKey      string
	PlacesBaseURL  string
	PlacesRPS      int
	MapsBrowserKey string

	ResolveConcurrency int
	Workers            int
	CacheTTL           time.Duration
	SessionTTL         time.Duration
	RequestTimeout     time.Duration
	CORSOrigins        []string
}

func Load() Config {
	// .env is optional; real env vars win.
	_ = godotenv.Load()

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	mapsKey := env("GOOGLE_MAPS_API_KEY", "")
	c := Config{
		AppEnv:             env("APP_ENV", "prod"),
		HTTPAddr:           env("HTTP_ADDR", ":8080"),
		MetricsAddr:        env("METRICS_ADDR", ""),
		MySQLDSN:           env("MYSQL_DSN", "root:root@tcp(localhost:3306)/wayfinder?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:          env("REDIS_ADDR", ""),
		RedisPass:          env("REDIS_PASSWORD", ""),
		RedisDB:            atoi("REDIS_DB", 0),
		GeminiKey:          env("GOOGLE_AI_STUDIO_API_KEY", ""),
		GeminiModel:        env("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiBaseURL:      env("GEMINI_BASE_URL", ""),
		PlacesKey:          env("GOOGLE_PLACES_API_KEY", mapsKey),
		PlacesBaseURL:      env("PLACES_BASE_URL", "https://maps.googleapis.com/maps/api"),
		PlacesRPS:          atoi("PLACES_RPS", 10),
		MapsBrowserKey:     mapsKey,
		ResolveConcurrency: atoi("RESOLVE_CONCURRENCY", 4),
		Workers:            atoi("INGEST_WORKERS", 8),
		CacheTTL:           time.Duration(atoi("CACHE_TTL_SECONDS", 3600)) * time.Second,
		SessionTTL:         time.Duration(atoi("SESSION_TTL_SECONDS", 1800)) * time.Second,
		RequestTimeout:     time.Duration(atoi("REQUEST_TIMEOUT_SECONDS", 30)) * time.Second,
		CORSOrigins:        splitList(env("CORS_ORIGINS", "*")),
	}
	return c
}

// Warnings lists settings the API server can start without but will fail
// requests on. Callers log them once their logger is configured.
func (c Config) Warnings() []string {
	var out []string
	if c.GeminiKey == "" {
		out = append(out, "GOOGLE_AI_STUDIO_API_KEY is empty")
	}
	if c.PlacesKey == "" {
		out = append(out, "GOOGLE_PLACES_API_KEY and GOOGLE_MAPS_API_KEY are empty")
	}
	return out
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
