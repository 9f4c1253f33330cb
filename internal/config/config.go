package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Freeeeeet/slot_planner/internal/model"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendJSON     = "json"
	BackendPostgres = "postgres"
)

type Config struct {
	Environment        string                `mapstructure:"ENV"`
	LogLevel           string                `mapstructure:"LOG_LEVEL"`
	AppPort            string                `mapstructure:"APP_PORT"`
	StorageBackend     string                `mapstructure:"STORAGE_BACKEND"`
	StorageMode        model.ReservationMode `mapstructure:"STORAGE_MODE"`
	ReservationPolicy  model.WritePolicy     `mapstructure:"RESERVATION_POLICY"`
	LegacyMonthDefault bool                  `mapstructure:"LEGACY_MONTH_DEFAULT"`
	DataDir            string                `mapstructure:"DATA_DIR"`
	DBDSN              string                `mapstructure:"DB_DSN"`
	MigrationsAuto     bool                  `mapstructure:"MIGRATIONS_AUTO"`
	StaticDir          string                `mapstructure:"STATIC_DIR"`
	BoardCacheTTL      time.Duration         `mapstructure:"BOARD_CACHE_TTL"`
	RateLimitPerMin    int                   `mapstructure:"RATE_LIMIT_PER_MIN"`
	HealthInterval     time.Duration         `mapstructure:"HEALTH_INTERVAL"`
}

// Load читает .env (если есть), затем config.yaml и переменные окружения
func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	} else {
		log.Println("Loaded configuration from .env file")
	}

	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("APP_PORT", "3000")
	v.SetDefault("STORAGE_BACKEND", BackendJSON)
	v.SetDefault("STORAGE_MODE", string(model.ModeWeekKeyed))
	v.SetDefault("RESERVATION_POLICY", string(model.PolicyUpsert))
	v.SetDefault("LEGACY_MONTH_DEFAULT", false)
	v.SetDefault("DATA_DIR", "data")
	v.SetDefault("DB_DSN", "")
	v.SetDefault("MIGRATIONS_AUTO", true)
	v.SetDefault("STATIC_DIR", "")
	v.SetDefault("BOARD_CACHE_TTL", "5m")
	v.SetDefault("RATE_LIMIT_PER_MIN", 200)
	v.SetDefault("HEALTH_INTERVAL", "30s")

	// DATABASE_URL принимается как синоним DB_DSN
	if err := v.BindEnv("DB_DSN", "DB_DSN", "DATABASE_URL"); err != nil {
		return nil, fmt.Errorf("bind DB_DSN: %w", err)
	}
	// PORT принимается как синоним APP_PORT
	if err := v.BindEnv("APP_PORT", "APP_PORT", "PORT"); err != nil {
		return nil, fmt.Errorf("bind APP_PORT: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Printf("Config loaded: backend=%s mode=%s policy=%s\n",
		cfg.StorageBackend, cfg.StorageMode, cfg.ReservationPolicy)

	return cfg, nil
}

func (c *Config) normalize() {
	c.Environment = strings.ToLower(strings.TrimSpace(c.Environment))
	c.StorageBackend = strings.ToLower(strings.TrimSpace(c.StorageBackend))
	c.StorageMode = model.ReservationMode(strings.ToLower(strings.TrimSpace(string(c.StorageMode))))
	c.ReservationPolicy = model.WritePolicy(strings.ToLower(strings.TrimSpace(string(c.ReservationPolicy))))
	c.AppPort = strings.TrimPrefix(strings.TrimSpace(c.AppPort), ":")
}

// Validate проверяет перечислимые значения и обязательные поля
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendJSON:
		if c.DataDir == "" {
			return fmt.Errorf("DATA_DIR is required for the json backend")
		}
	case BackendPostgres:
		if c.DBDSN == "" {
			return fmt.Errorf("DB_DSN is required but not set")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q (want json or postgres)", c.StorageBackend)
	}

	switch c.StorageMode {
	case model.ModeDateKeyed, model.ModeWeekKeyed:
	default:
		return fmt.Errorf("unknown STORAGE_MODE %q (want date-keyed or week-keyed)", c.StorageMode)
	}

	switch c.ReservationPolicy {
	case model.PolicyUpsert, model.PolicyCreateOnly:
	default:
		return fmt.Errorf("unknown RESERVATION_POLICY %q (want upsert or create-only)", c.ReservationPolicy)
	}

	if c.RateLimitPerMin < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MIN must not be negative")
	}

	return nil
}

// Addr адрес HTTP-сервера
func (c *Config) Addr() string {
	return ":" + c.AppPort
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
