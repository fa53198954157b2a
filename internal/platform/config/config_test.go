package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("ADMIN_API_TOKEN", "secret")
	t.Setenv("CERTPORTAL_ADDR", "")
	t.Setenv("DIRECTORY_MODE", "")
	t.Setenv("DIRECTORY_CACHE_TTL", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("RENDER_RATE_LIMIT", "")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 30, cfg.RenderRateLimit)
	assert.Equal(t, DirectoryMemory, cfg.Directory.Mode)
	assert.Equal(t, 5*time.Minute, cfg.Directory.CacheTTL)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.NotEmpty(t, cfg.Institution.Name)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("ADMIN_API_TOKEN", "secret")
	t.Setenv("CERTPORTAL_ADDR", ":9090")
	t.Setenv("DATABASE_URL", "postgres://localhost/certportal")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092,")
	t.Setenv("DIRECTORY_MODE", "postgres")
	t.Setenv("DIRECTORY_CACHE_TTL", "30s")
	t.Setenv("INSTITUTION_NAME", "Northwind Academy")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, DirectoryPostgres, cfg.Directory.Mode)
	assert.Equal(t, 30*time.Second, cfg.Directory.CacheTTL)
	assert.Equal(t, "Northwind Academy", cfg.Institution.Name)
}

func TestFromEnv_RenderRateLimit(t *testing.T) {
	t.Setenv("ADMIN_API_TOKEN", "secret")
	t.Setenv("DIRECTORY_MODE", "")
	t.Setenv("KAFKA_BROKERS", "")

	t.Setenv("RENDER_RATE_LIMIT", "0")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Zero(t, cfg.RenderRateLimit)

	t.Setenv("RENDER_RATE_LIMIT", "-1")
	_, err = FromEnv()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Server{AdminAPIToken: "secret", Directory: DirectoryConfig{Mode: DirectoryMemory}}
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		mutate func(*Server)
	}{
		{"missing admin token", func(s *Server) { s.AdminAPIToken = "" }},
		{"unknown directory mode", func(s *Server) { s.Directory.Mode = "ldap" }},
		{"postgres directory without database", func(s *Server) { s.Directory.Mode = DirectoryPostgres }},
		{"http directory without base url", func(s *Server) { s.Directory.Mode = DirectoryHTTP }},
		{"kafka without database", func(s *Server) { s.Kafka.Brokers = []string{"b:9092"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
