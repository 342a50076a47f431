package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_PASSWORD", "postgres")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 7, cfg.Trust.ReturnPeriodDays)
	assert.Equal(t, 30, cfg.Trust.RateLimit)
	assert.Equal(t, time.Minute, cfg.Trust.RateLimitWindow)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:8080"}, cfg.Server.AllowOrigins)
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RETURN_PERIOD_DAYS", "14")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("RATE_LIMIT_WINDOW_SEC", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 14, cfg.Trust.ReturnPeriodDays)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 5*time.Second, cfg.Trust.RateLimitWindow)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name   string
		env    map[string]string
		errMsg string
	}{
		{name: "missing jwt secret", env: map[string]string{"JWT_SECRET": "", "DB_PASSWORD": "x"}, errMsg: "missing jwt secret"},
		{name: "missing db password", env: map[string]string{"JWT_SECRET": "x", "DB_PASSWORD": ""}, errMsg: "missing database password"},
		{name: "bad return period", env: map[string]string{"JWT_SECRET": "x", "DB_PASSWORD": "x", "RETURN_PERIOD_DAYS": "0"}, errMsg: "RETURN_PERIOD_DAYS"},
		{name: "non numeric redis db", env: map[string]string{"JWT_SECRET": "x", "DB_PASSWORD": "x", "REDIS_DB": "one"}, errMsg: "invalid REDIS_DB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
