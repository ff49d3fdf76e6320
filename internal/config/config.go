package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	HandoffModeTransaction  = "transaction"
	HandoffModeCompensating = "compensating"
)

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	DB       string
	Password string
	SSLMode  string
}

// DSN builds the postgres connection string used by both sqlx and GORM.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", p.User, p.Password, p.Host, p.Port, p.DB, p.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Enabled reports whether outgoing email is configured.
func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.From != ""
}

type Config struct {
	AppEnv   string
	HTTPAddr string
	// PublicBaseURL prefixes the intake links handed out to admins.
	PublicBaseURL string

	// DBDriver is "postgres" or "sqlite".
	DBDriver   string
	Postgres   PostgresConfig
	SQLitePath string

	// CacheDriver is "redis" or "memory".
	CacheDriver string
	Redis       RedisConfig

	JWTSecret        string
	IntakeLinkSecret string
	CronSecret       string

	AMQPURL string
	SMTP    SMTPConfig

	HandoffMode     string
	RetentionMonths int
	SweepInterval   time.Duration

	PublicIntakeRPS   float64
	PublicIntakeBurst int

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Load reads configuration from the environment. A .env file is loaded first
// when present; variables already set in the environment win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	cfg := &Config{
		AppEnv:        getEnv("APP_ENV", "development"),
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		PublicBaseURL: strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),
		DBDriver:      getEnv("DB_DRIVER", "postgres"),
		Postgres: PostgresConfig{
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnv("PG_PORT", "5432"),
			User:     os.Getenv("PG_USER"),
			DB:       os.Getenv("PG_DB"),
			Password: os.Getenv("PG_PASSWORD"),
			SSLMode:  getEnv("PG_SSLMODE", "disable"),
		},
		SQLitePath:  getEnv("SQLITE_PATH", "soultrack.db"),
		CacheDriver: getEnv("CACHE_DRIVER", "memory"),
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		JWTSecret:        os.Getenv("JWT_SECRET"),
		IntakeLinkSecret: os.Getenv("INTAKE_LINK_SECRET"),
		CronSecret:       os.Getenv("CRON_SECRET"),
		AMQPURL:          os.Getenv("AMQP_URL"),
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASS"),
			From:     os.Getenv("SMTP_FROM"),
		},
		HandoffMode: getEnv("HANDOFF_MODE", HandoffModeTransaction),
	}

	var err error
	if cfg.Redis.DB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.SMTP.Port, err = getInt("SMTP_PORT", 587); err != nil {
		return nil, err
	}
	if cfg.RetentionMonths, err = getInt("RETENTION_MONTHS", 3); err != nil {
		return nil, err
	}
	if cfg.PublicIntakeBurst, err = getInt("PUBLIC_INTAKE_BURST", 5); err != nil {
		return nil, err
	}
	if cfg.SweepInterval, err = getDuration("SWEEP_INTERVAL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ReadTimeout, err = getDuration("HTTP_READ_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.WriteTimeout, err = getDuration("HTTP_WRITE_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	rps := getEnv("PUBLIC_INTAKE_RPS", "1")
	if cfg.PublicIntakeRPS, err = strconv.ParseFloat(rps, 64); err != nil {
		return nil, fmt.Errorf("invalid PUBLIC_INTAKE_RPS %q: %w", rps, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that have no safe default.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.IntakeLinkSecret == "" {
		c.IntakeLinkSecret = c.JWTSecret
	}
	if c.DBDriver != "postgres" && c.DBDriver != "sqlite" {
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.HandoffMode != HandoffModeTransaction && c.HandoffMode != HandoffModeCompensating {
		return fmt.Errorf("unsupported HANDOFF_MODE %q", c.HandoffMode)
	}
	if c.RetentionMonths <= 0 {
		return fmt.Errorf("RETENTION_MONTHS must be positive, got %d", c.RetentionMonths)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}
