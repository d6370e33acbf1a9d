package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

type Config struct {
	Env                string
	Port               int
	StoreDriver        string
	Postgres           PostgresConfig
	SQLitePath         string
	GeoIPPath          string
	ActiveWindow       time.Duration
	TopPagesLimit      int
	CORSAllowedOrigins []string
}

type PostgresConfig struct {
	User     string
	Password string
	Host     string
	Port     string
	DB       string
	SSLMode  string
}

func (p PostgresConfig) ConnString() string {
	return fmt.Sprintf("user=%s password=%s host=%s port=%s dbname=%s sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DB, p.SSLMode)
}

// Load reads the configuration from the environment, after loading a .env
// file from the working directory if there is one.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env file: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds the configuration from getenv.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	port, err := positiveInt(get("PORT", "8080"), "PORT")
	if err != nil {
		return nil, err
	}
	windowMinutes, err := positiveInt(get("ACTIVE_WINDOW_MINUTES", "5"), "ACTIVE_WINDOW_MINUTES")
	if err != nil {
		return nil, err
	}
	topPages, err := positiveInt(get("TOP_PAGES_LIMIT", "5"), "TOP_PAGES_LIMIT")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Env:         get("ENV", "development"),
		Port:        port,
		StoreDriver: strings.ToLower(get("STORE_DRIVER", DriverSQLite)),
		Postgres: PostgresConfig{
			User:     get("POSTGRES_USER", "postgres"),
			Password: getenv("POSTGRES_PASSWORD"),
			Host:     get("POSTGRES_HOST", "localhost"),
			Port:     get("POSTGRES_PORT", "5432"),
			DB:       get("POSTGRES_DB", "analytics"),
			SSLMode:  get("POSTGRES_SSLMODE", "disable"),
		},
		SQLitePath:    get("SQLITE_PATH", "analytics.db"),
		GeoIPPath:     getenv("GEOIP_DB_PATH"),
		ActiveWindow:  time.Duration(windowMinutes) * time.Minute,
		TopPagesLimit: topPages,
	}

	for _, origin := range strings.Split(get("CORS_ALLOWED_ORIGINS", "*"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	switch cfg.StoreDriver {
	case DriverPostgres, DriverSQLite, DriverMemory:
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}

	return cfg, nil
}

func positiveInt(raw, name string) (int, error) {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", name, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be greater than zero", name)
	}
	return v, nil
}
