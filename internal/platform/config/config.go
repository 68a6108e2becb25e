package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates all runtime configuration, loaded once at startup.
type Config struct {
	Server   Server
	Postgres Postgres
	Redis    Redis
	Kafka    Kafka
	Match    Match
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
	JWTSigningKey   string
	JWTIssuer       string
	JWTAudience     string
	TokenTTL        time.Duration
	AdminEmail      string
	AdminPassword   string
}

// Postgres holds the database connection settings. An empty URL means the
// service runs on in-memory stores.
type Postgres struct {
	URL string
}

// Redis holds cache connection settings. An empty URL disables caching.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// DuplicateScoreTTL bounds how long a cached duplicate scan result is
	// served before candidates are re-scored.
	DuplicateScoreTTL time.Duration
}

// Kafka holds audit event publishing settings. Empty brokers disable the
// Kafka publisher and audit events stay on the in-process store only.
type Kafka struct {
	Brokers         []string
	ComplianceTopic string
	OpsTopic        string
}

// Match tunes the duplicate detection engine.
type Match struct {
	// Threshold is the composite score at or above which two identities are
	// flagged as probable duplicates.
	Threshold float64

	// ScanConcurrency bounds how many candidates are scored in parallel
	// during a duplicate scan.
	ScanConcurrency int
}

// FromEnv builds the full configuration from environment variables so main
// stays lean. Every value has a development-friendly default.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:            envString("HIRELINE_ADDR", ":8080"),
			ShutdownTimeout: envDuration("HIRELINE_SHUTDOWN_TIMEOUT", 10*time.Second),
			RequestTimeout:  envDuration("HIRELINE_REQUEST_TIMEOUT", 30*time.Second),
			JWTSigningKey:   envString("HIRELINE_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			JWTIssuer:       envString("HIRELINE_JWT_ISSUER", "hireline"),
			JWTAudience:     envString("HIRELINE_JWT_AUDIENCE", "hireline-api"),
			TokenTTL:        envDuration("HIRELINE_TOKEN_TTL", time.Hour),
			AdminEmail:      envString("HIRELINE_ADMIN_EMAIL", "admin@hireline.local"),
			AdminPassword:   envString("HIRELINE_ADMIN_PASSWORD", "admin-change-me"),
		},
		Postgres: Postgres{
			URL: os.Getenv("HIRELINE_POSTGRES_URL"),
		},
		Redis: Redis{
			URL:               os.Getenv("HIRELINE_REDIS_URL"),
			PoolSize:          envInt("HIRELINE_REDIS_POOL_SIZE", 10),
			MinIdleConns:      envInt("HIRELINE_REDIS_MIN_IDLE", 2),
			DialTimeout:       envDuration("HIRELINE_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:       envDuration("HIRELINE_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout:      envDuration("HIRELINE_REDIS_WRITE_TIMEOUT", 3*time.Second),
			DuplicateScoreTTL: envDuration("HIRELINE_DUPLICATE_SCORE_TTL", 5*time.Minute),
		},
		Kafka: Kafka{
			Brokers:         envList("HIRELINE_KAFKA_BROKERS"),
			ComplianceTopic: envString("HIRELINE_KAFKA_COMPLIANCE_TOPIC", "hireline.audit.compliance"),
			OpsTopic:        envString("HIRELINE_KAFKA_OPS_TOPIC", "hireline.audit.ops"),
		},
		Match: Match{
			Threshold:       envFloat("HIRELINE_MATCH_THRESHOLD", 83),
			ScanConcurrency: envInt("HIRELINE_MATCH_SCAN_CONCURRENCY", 8),
		},
	}
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
