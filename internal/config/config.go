package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	ServerPort string

	DatabaseType string
	DatabaseURL  string
	DatabasePath string

	SecretKey  string
	TokenTTL   time.Duration
	BcryptCost int

	AppHost string

	AWSRegion    string
	SESFromEmail string
	SESFromName  string

	BeamsInstanceID string
	BeamsSecretKey  string

	DemoEmail    string
	DemoTimezone string
	SeedDemo     bool

	LogLevel string
	Debug    bool
}

// Load reads configuration from an optional .env file and the environment.
func Load() *Config {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	return &Config{
		ServerPort:      v.GetString("PORT"),
		DatabaseType:    strings.ToLower(v.GetString("DB_TYPE")),
		DatabaseURL:     v.GetString("DATABASE_URL"),
		DatabasePath:    v.GetString("DB_PATH"),
		SecretKey:       v.GetString("SECRET_KEY"),
		TokenTTL:        v.GetDuration("TOKEN_TTL"),
		BcryptCost:      v.GetInt("BCRYPT_COST"),
		AppHost:         strings.TrimSuffix(v.GetString("APP_HOST"), "/"),
		AWSRegion:       v.GetString("AWS_REGION"),
		SESFromEmail:    v.GetString("SES_FROM_EMAIL"),
		SESFromName:     v.GetString("SES_FROM_NAME"),
		BeamsInstanceID: v.GetString("BEAMS_INSTANCE_ID"),
		BeamsSecretKey:  v.GetString("BEAMS_SECRET_KEY"),
		DemoEmail:       strings.ToLower(v.GetString("DEMO_EMAIL")),
		DemoTimezone:    v.GetString("DEMO_TIMEZONE"),
		SeedDemo:        v.GetBool("SEED_DEMO"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		Debug:           v.GetBool("DEBUG"),
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_TYPE", "sqlite")
	v.SetDefault("DB_PATH", "./bably.db")
	v.SetDefault("TOKEN_TTL", 30*24*time.Hour)
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("APP_HOST", "http://localhost:3000")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("SES_FROM_NAME", "Bably Team")
	v.SetDefault("DEMO_EMAIL", "demo@demo.com")
	v.SetDefault("DEMO_TIMEZONE", "UTC")
	v.SetDefault("SEED_DEMO", true)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DEBUG", false)
}

// Validate reports every missing setting the server cannot start without.
func (c *Config) Validate() error {
	var missing []string
	if c.SecretKey == "" {
		missing = append(missing, "SECRET_KEY")
	}
	if c.SESFromEmail == "" {
		missing = append(missing, "SES_FROM_EMAIL")
	}
	if c.BeamsInstanceID == "" {
		missing = append(missing, "BEAMS_INSTANCE_ID")
	}
	if c.BeamsSecretKey == "" {
		missing = append(missing, "BEAMS_SECRET_KEY")
	}
	if c.DatabaseType != "sqlite" && c.DatabaseType != "sqlite3" && c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if _, err := time.LoadLocation(c.DemoTimezone); err != nil {
		return fmt.Errorf("invalid DEMO_TIMEZONE %q: %w", c.DemoTimezone, err)
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return errors.New("BCRYPT_COST must be between 4 and 31")
	}
	return nil
}

// Location returns the zone used to anchor demo data.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.DemoTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
