package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DEMO_EMAIL", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "sqlite", cfg.DatabaseType)
	assert.Equal(t, "demo@demo.com", cfg.DemoEmail)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, 30*24*time.Hour, cfg.TokenTTL)
	assert.True(t, cfg.SeedDemo)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_TYPE", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/bably")
	t.Setenv("APP_HOST", "https://bably.example.com/")
	t.Setenv("DEMO_EMAIL", "Demo@Example.com")
	t.Setenv("BCRYPT_COST", "4")

	cfg := Load()

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "postgres", cfg.DatabaseType)
	assert.Equal(t, "https://bably.example.com", cfg.AppHost)
	assert.Equal(t, "demo@example.com", cfg.DemoEmail)
	assert.Equal(t, 4, cfg.BcryptCost)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			DatabaseType:    "sqlite",
			SecretKey:       "secret",
			SESFromEmail:    "noreply@bably.test",
			BeamsInstanceID: "instance",
			BeamsSecretKey:  "beams-secret",
			DemoTimezone:    "UTC",
			BcryptCost:      12,
		}
	}

	t.Run("complete config passes", func(t *testing.T) {
		require.NoError(t, valid().Validate())
	})

	t.Run("missing keys are all reported", func(t *testing.T) {
		cfg := valid()
		cfg.SecretKey = ""
		cfg.BeamsSecretKey = ""

		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SECRET_KEY")
		assert.Contains(t, err.Error(), "BEAMS_SECRET_KEY")
	})

	t.Run("non-sqlite needs a url", func(t *testing.T) {
		cfg := valid()
		cfg.DatabaseType = "mysql"

		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DATABASE_URL")
	})

	t.Run("bad timezone", func(t *testing.T) {
		cfg := valid()
		cfg.DemoTimezone = "Mars/Olympus"
		assert.Error(t, cfg.Validate())
	})
}
