package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string

	LLMProvider       string
	GeminiAPIKey      string
	GeminiModel       string
	GeminiBackend     string
	GoogleProject     string
	GoogleLocation    string
	OpenAIAPIKey      string
	OpenAIModel       string
	LLMRetryAttempts  int
	LLMRetryBaseDelay time.Duration

	AnalyzeTimeout  time.Duration
	DiscoverTimeout time.Duration
	JobsTimeout     time.Duration
	MinResumeChars  int
	MaxExtractChars int
	MaxUploadBytes  int64

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string
	GCSBucket       string
	GCSPrefix       string

	BigQueryProject     string
	BigQueryDataset     string
	BigQueryTable       string
	BigQueryCredentials string
	JobsMaxLimit        int

	HistoryStore        string
	DatabaseURL         string
	FirestoreProject    string
	FirestoreCollection string

	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience; existing variables win.
	_ = godotenv.Load(existing(".env", "cmd/.env")...)

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")
	history := normalizeHistoryStore(getEnv("HISTORY_STORE", "memory"))
	if history == "postgres" && dbURL == "" {
		log.Printf("HISTORY_STORE=postgres requires DATABASE_URL")
	}

	return Config{
		Port:            getEnv("PORT", "4000"),
		Env:             env,
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),

		LLMProvider:       normalizeProvider(getEnv("LLM_PROVIDER", "gemini")),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiBackend:     strings.ToLower(getEnv("GEMINI_BACKEND", "gemini")),
		GoogleProject:     getEnv("GOOGLE_CLOUD_PROJECT", ""),
		GoogleLocation:    getEnv("GOOGLE_CLOUD_LOCATION", "us-central1"),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:       getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMRetryAttempts:  getInt("LLM_RETRY_ATTEMPTS", 2),
		LLMRetryBaseDelay: getDuration("LLM_RETRY_BASE_DELAY", 300*time.Millisecond),

		AnalyzeTimeout:  getDuration("ANALYZE_TIMEOUT", 60*time.Second),
		DiscoverTimeout: getDuration("DISCOVER_TIMEOUT", 120*time.Second),
		JobsTimeout:     getDuration("JOBS_TIMEOUT", 30*time.Second),
		MinResumeChars:  getInt("MIN_RESUME_CHARS", 50),
		MaxExtractChars: getInt("MAX_EXTRACT_CHARS", 100_000),
		MaxUploadBytes:  int64(getInt("MAX_UPLOAD_BYTES", 10<<20)),

		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:   getEnv("LOCAL_STORE_DIR", "./uploads"),
		AWSRegion:       getEnv("AWS_REGION", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:     getEnv("SSE_KMS_KEY_ID", ""),
		GCSBucket:       getEnv("GCS_BUCKET", ""),
		GCSPrefix:       getEnv("GCS_PREFIX", ""),

		BigQueryProject:     getEnv("BIGQUERY_PROJECT_ID", ""),
		BigQueryDataset:     getEnv("BIGQUERY_DATASET", ""),
		BigQueryTable:       getEnv("BIGQUERY_TABLE", ""),
		BigQueryCredentials: getEnv("BIGQUERY_CREDENTIALS_JSON", ""),
		JobsMaxLimit:        getInt("JOBS_MAX_LIMIT", 100),

		HistoryStore:        history,
		DatabaseURL:         dbURL,
		FirestoreProject:    getEnv("FIRESTORE_PROJECT_ID", getEnv("GOOGLE_CLOUD_PROJECT", "")),
		FirestoreCollection: getEnv("FIRESTORE_COLLECTION", "analyses"),

		RateLimitRPS:   getFloat("RATE_LIMIT_RPS", 2),
		RateLimitBurst: getInt("RATE_LIMIT_BURST", 10),
	}
}

func existing(paths ...string) []string {
	var out []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		// godotenv.Load with no arguments would fall back to ".env" and report its absence.
		return []string{os.DevNull}
	}
	return out
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("invalid %s=%q, using %d", key, raw, def)
		return def
	}
	return v
}

func getFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("invalid %s=%q, using %v", key, raw, def)
		return def
	}
	return v
}

func getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		log.Printf("invalid %s=%q, using %s", key, raw, def)
		return def
	}
	return v
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	case "gcs":
		return "gcs"
	default:
		return "local"
	}
}

func normalizeHistoryStore(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "postgres", "pg":
		return "postgres"
	case "firestore":
		return "firestore"
	case "none", "off":
		return "none"
	default:
		return "memory"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "openai":
		return "openai"
	default:
		return "gemini"
	}
}
