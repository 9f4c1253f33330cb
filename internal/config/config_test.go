package config

import (
	"testing"
	"time"

	"github.com/Freeeeeet/slot_planner/internal/model"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "3000", cfg.AppPort)
	assert.Equal(t, ":3000", cfg.Addr())
	assert.Equal(t, BackendJSON, cfg.StorageBackend)
	assert.Equal(t, model.ModeWeekKeyed, cfg.StorageMode)
	assert.Equal(t, model.PolicyUpsert, cfg.ReservationPolicy)
	assert.False(t, cfg.LegacyMonthDefault)
	assert.True(t, cfg.MigrationsAuto)
	assert.Equal(t, 5*time.Minute, cfg.BoardCacheTTL)
	assert.Equal(t, 30*time.Second, cfg.HealthInterval)
	assert.Equal(t, 200, cfg.RateLimitPerMin)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ENV", "Production")
	t.Setenv("APP_PORT", ":8080")
	t.Setenv("STORAGE_BACKEND", "postgres")
	t.Setenv("STORAGE_MODE", "date-keyed")
	t.Setenv("RESERVATION_POLICY", "create-only")
	t.Setenv("LEGACY_MONTH_DEFAULT", "true")
	t.Setenv("DATABASE_URL", "postgres://planner@localhost/planner")
	t.Setenv("BOARD_CACHE_TTL", "90s")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, BackendPostgres, cfg.StorageBackend)
	assert.Equal(t, model.ModeDateKeyed, cfg.StorageMode)
	assert.Equal(t, model.PolicyCreateOnly, cfg.ReservationPolicy)
	assert.True(t, cfg.LegacyMonthDefault)
	assert.Equal(t, "postgres://planner@localhost/planner", cfg.DBDSN)
	assert.Equal(t, 90*time.Second, cfg.BoardCacheTTL)
}

func TestLoadAcceptsPortAlias(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("PORT", "4100")

	cfg, err := load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "4100", cfg.AppPort)

	t.Setenv("APP_PORT", "5000")
	cfg, err = load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "5000", cfg.AppPort)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unknown backend", "STORAGE_BACKEND", "sqlite"},
		{"unknown mode", "STORAGE_MODE", "monthly"},
		{"unknown policy", "RESERVATION_POLICY", "first-wins"},
		{"negative rate", "RATE_LIMIT_PER_MIN", "-1"},
		{"postgres without dsn", "STORAGE_BACKEND", "postgres"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DB_DSN", "")
			t.Setenv("DATABASE_URL", "")
			t.Setenv(tt.key, tt.val)

			_, err := load(viper.New())
			assert.Error(t, err)
		})
	}
}
