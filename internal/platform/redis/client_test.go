package redis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certportal/internal/platform/config"
)

func TestOptions(t *testing.T) {
	t.Run("config overrides library defaults", func(t *testing.T) {
		opts, err := Options(config.RedisConfig{
			URL:          "redis://:secret@cache.internal:6380/2",
			PoolSize:     16,
			MinIdleConns: 2,
			ReadTimeout:  750 * time.Millisecond,
		})
		require.NoError(t, err)
		assert.Equal(t, "cache.internal:6380", opts.Addr)
		assert.Equal(t, "secret", opts.Password)
		assert.Equal(t, 2, opts.DB)
		assert.Equal(t, 16, opts.PoolSize)
		assert.Equal(t, 2, opts.MinIdleConns)
		assert.Equal(t, 750*time.Millisecond, opts.ReadTimeout)
	})

	t.Run("zero values keep what the URL gives", func(t *testing.T) {
		opts, err := Options(config.RedisConfig{URL: "redis://localhost:6379?dial_timeout=3s"})
		require.NoError(t, err)
		assert.Equal(t, 3*time.Second, opts.DialTimeout)
		assert.Zero(t, opts.PoolSize)
	})

	t.Run("bad url", func(t *testing.T) {
		_, err := Options(config.RedisConfig{URL: "http://localhost"})
		assert.ErrorContains(t, err, "parse redis URL")
	})
}

func TestNewWithoutURLIsDisabled(t *testing.T) {
	c, err := New(t.Context(), config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, c)
}
