package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr           string
	Environment    string
	LogLevel       string
	PolicyFile     string
	MaxUploadBytes int64
	RequestTimeout time.Duration

	Redis    RedisConfig
	Database DatabaseConfig
	Kafka    KafkaConfig
	OCR      OCRConfig
}

// RedisConfig configures the OCR result cache. An empty URL disables it.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CacheTTL     time.Duration
}

// DatabaseConfig configures the policy profile store. An empty URL keeps
// profiles in memory.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// KafkaConfig configures audit publishing. Empty brokers write audit events
// to the log only.
type KafkaConfig struct {
	Brokers string
	Topic   string
}

// OCRConfig selects and configures the recognition engine.
type OCRConfig struct {
	Engine        string
	TesseractPath string
	Language      string
	OpenAIKey     string
	OpenAIModel   string
	Timeout       time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:           envString("DOCVERIFY_ADDR", ":8080"),
		Environment:    envString("ENVIRONMENT", "development"),
		LogLevel:       envString("LOG_LEVEL", "info"),
		PolicyFile:     os.Getenv("POLICY_FILE"),
		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 32<<20),
		RequestTimeout: envDuration("REQUEST_TIMEOUT", 2*time.Minute),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			CacheTTL:     envDuration("OCR_CACHE_TTL", 24*time.Hour),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers: os.Getenv("KAFKA_BROKERS"),
			Topic:   envString("AUDIT_TOPIC", "docverify.audit"),
		},
		OCR: OCRConfig{
			Engine:        strings.ToLower(envString("OCR_ENGINE", "tesseract")),
			TesseractPath: envString("TESSERACT_PATH", "tesseract"),
			Language:      envString("TESSERACT_LANG", "eng"),
			OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
			OpenAIModel:   os.Getenv("OPENAI_MODEL"),
			Timeout:       envDuration("OCR_TIMEOUT", 30*time.Second),
		},
	}
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// envDuration ignores unparsable values and keeps the fallback.
func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
