package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	strutil "certportal/pkg/platform/strings"
)

// DirectoryMode selects the learner/course directory backend.
type DirectoryMode string

const (
	DirectoryMemory   DirectoryMode = "memory"
	DirectoryPostgres DirectoryMode = "postgres"
	DirectoryHTTP     DirectoryMode = "http"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	DatabaseURL   string
	AdminAPIToken string
	JWTSigningKey string
	LogFormat     string
	LogLevel      string

	// RenderRateLimit caps preview and export requests per caller per minute.
	// Zero disables the limit.
	RenderRateLimit int

	Redis       RedisConfig
	Kafka       KafkaConfig
	Directory   DirectoryConfig
	Institution Institution
}

// RedisConfig configures the directory cache connection. An empty URL disables it.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the audit outbox relay. No brokers disables it.
type KafkaConfig struct {
	Brokers      []string
	AuditTopic   string
	PollInterval time.Duration
	BatchSize    int
}

type DirectoryConfig struct {
	Mode     DirectoryMode
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// Institution is the branding printed on every certificate.
type Institution struct {
	Name     string
	Subtitle string
	Contact  string
}

// FromEnv builds a Server config from environment variables so main stays lean.
// A .env file in the working directory is loaded first when present; real
// environment variables take precedence.
func FromEnv() (Server, error) {
	_ = godotenv.Load()

	cfg := Server{
		Addr:          getEnv("CERTPORTAL_ADDR", ":8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		AdminAPIToken: os.Getenv("ADMIN_API_TOKEN"),
		JWTSigningKey: os.Getenv("JWT_SIGNING_KEY"),
		LogFormat:     getEnv("LOG_FORMAT", "json"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:      strutil.SplitList(os.Getenv("KAFKA_BROKERS"), ","),
			AuditTopic:   getEnv("AUDIT_TOPIC", "certportal.audit"),
			PollInterval: time.Second,
			BatchSize:    100,
		},
		Directory: DirectoryConfig{
			Mode:    DirectoryMode(getEnv("DIRECTORY_MODE", string(DirectoryMemory))),
			BaseURL: os.Getenv("DIRECTORY_BASE_URL"),
			Timeout: 5 * time.Second,
		},
		Institution: Institution{
			Name:     getEnv("INSTITUTION_NAME", "Continuing Education Institute"),
			Subtitle: getEnv("INSTITUTION_SUBTITLE", "Professional Development Program"),
			Contact:  getEnv("INSTITUTION_CONTACT", "registrar@example.edu"),
		},
	}

	ttl, err := time.ParseDuration(getEnv("DIRECTORY_CACHE_TTL", "5m"))
	if err != nil {
		return Server{}, fmt.Errorf("parse DIRECTORY_CACHE_TTL: %w", err)
	}
	cfg.Directory.CacheTTL = ttl

	if raw := os.Getenv("REDIS_POOL_SIZE"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return Server{}, fmt.Errorf("invalid REDIS_POOL_SIZE %q", raw)
		}
		cfg.Redis.PoolSize = n
	}

	cfg.RenderRateLimit = 30
	if raw := os.Getenv("RENDER_RATE_LIMIT"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return Server{}, fmt.Errorf("invalid RENDER_RATE_LIMIT %q", raw)
		}
		cfg.RenderRateLimit = n
	}

	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate rejects combinations the server cannot start with.
func (c Server) Validate() error {
	if c.AdminAPIToken == "" {
		return fmt.Errorf("ADMIN_API_TOKEN is required")
	}
	switch c.Directory.Mode {
	case DirectoryMemory:
	case DirectoryPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DIRECTORY_MODE=postgres requires DATABASE_URL")
		}
	case DirectoryHTTP:
		if c.Directory.BaseURL == "" {
			return fmt.Errorf("DIRECTORY_MODE=http requires DIRECTORY_BASE_URL")
		}
	default:
		return fmt.Errorf("unknown DIRECTORY_MODE %q", c.Directory.Mode)
	}
	if len(c.Kafka.Brokers) > 0 && c.DatabaseURL == "" {
		return fmt.Errorf("KAFKA_BROKERS requires DATABASE_URL for the audit outbox")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
