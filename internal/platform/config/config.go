// Package config builds the process configuration from environment
// variables so main stays lean.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string
}

// Model points at one ONNX model on disk.
type Model struct {
	Path       string
	LabelsPath string
}

// Inference captures the local model and OCR runtime configuration.
type Inference struct {
	OrtLibraryPath string
	DocumentModel  Model
	OriginModel    Model
	OCRLanguages   []string
	TessdataPrefix string
}

// RedisConfig captures Redis connection settings. An empty URL disables
// Redis and the service falls back to in-memory stores.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig captures the audit event broker settings. Empty brokers
// disable Kafka publishing.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// Resolution captures pipeline tuning knobs.
type Resolution struct {
	PathTimeout  time.Duration
	RecordTTL    time.Duration
	DocumentRoot string
}

// Config is the full process configuration.
type Config struct {
	Server      Server
	Inference   Inference
	Redis       RedisConfig
	Kafka       KafkaConfig
	Resolution  Resolution
	PostgresDSN string
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:          envDefault("VERIDOC_ADDR", ":8080"),
			JWTSigningKey: envDefault("VERIDOC_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			JWTIssuer:     envDefault("VERIDOC_JWT_ISSUER", "veridoc"),
			JWTAudience:   envDefault("VERIDOC_JWT_AUDIENCE", "veridoc-admin"),
		},
		Inference: Inference{
			OrtLibraryPath: os.Getenv("VERIDOC_ORT_LIBRARY"),
			DocumentModel: Model{
				Path:       os.Getenv("VERIDOC_DOCUMENT_MODEL"),
				LabelsPath: os.Getenv("VERIDOC_DOCUMENT_LABELS"),
			},
			OriginModel: Model{
				Path:       os.Getenv("VERIDOC_ORIGIN_MODEL"),
				LabelsPath: os.Getenv("VERIDOC_ORIGIN_LABELS"),
			},
			OCRLanguages:   splitList(envDefault("VERIDOC_OCR_LANGUAGES", "spa,eng")),
			TessdataPrefix: os.Getenv("VERIDOC_TESSDATA_PREFIX"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("VERIDOC_REDIS_URL"),
			PoolSize:     envInt("VERIDOC_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("VERIDOC_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("VERIDOC_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("VERIDOC_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("VERIDOC_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(os.Getenv("VERIDOC_KAFKA_BROKERS")),
			Topic:   envDefault("VERIDOC_KAFKA_AUDIT_TOPIC", "veridoc.audit"),
		},
		Resolution: Resolution{
			PathTimeout:  envDuration("VERIDOC_PATH_TIMEOUT", 10*time.Second),
			RecordTTL:    envDuration("VERIDOC_RECORD_TTL", 24*time.Hour),
			DocumentRoot: envDefault("VERIDOC_DOCUMENT_ROOT", "/var/lib/veridoc/documents"),
		},
		PostgresDSN: os.Getenv("VERIDOC_POSTGRES_DSN"),
	}
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
