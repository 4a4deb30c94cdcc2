package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Env        string           `yaml:"env"`
	HTTP       HTTPConfig       `yaml:"http"`
	Log        LogConfig        `yaml:"log"`
	Redis      RedisConfig      `yaml:"redis"`
	Auth       AuthConfig       `yaml:"auth"`
	AccountAPI AccountAPIConfig `yaml:"account_api"`
	Metering   MeteringConfig   `yaml:"metering"`
}

type HTTPConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AuthConfig struct {
	JWTSecret    string        `yaml:"jwt_secret"`
	JWTAccessTTL time.Duration `yaml:"jwt_access_ttl"`
	// AdminIDs and FriendIDs map specific telegram accounts onto the
	// unlimited roles at login.
	AdminIDs  []int64 `yaml:"admin_ids"`
	FriendIDs []int64 `yaml:"friend_ids"`
}

// AccountAPIConfig points at the remote account service that owns durable
// tariff, usage and points state.
type AccountAPIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

type MeteringConfig struct {
	Tariffs           []TariffConfig  `yaml:"tariffs"`
	PointsCosts       PointsCosts     `yaml:"points_costs"`
	Retry             RetryConfig     `yaml:"retry"`
	ReconcileInterval time.Duration   `yaml:"reconcile_interval"`
	SessionTTL        time.Duration   `yaml:"session_ttl"`
	SessionSweep      time.Duration   `yaml:"session_sweep"`
	RateLimits        RateLimitConfig `yaml:"rate_limits"`
	DefaultTimezone   string          `yaml:"default_timezone"`
}

type TariffConfig struct {
	Type                 string `yaml:"type"`
	DailyGenerationLimit int    `yaml:"daily_generation_limit"`
	DailyImageLimit      int    `yaml:"daily_image_limit"`
	PointsCost           int    `yaml:"points_cost"`
}

// PointsCosts are the per-action prices charged when an attempt is billed
// against the points ledger instead of a daily quota.
type PointsCosts struct {
	Generation int `yaml:"generation"`
	Image      int `yaml:"image"`
}

type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
}

type RateLimitConfig struct {
	AttemptsPerMinute int `yaml:"attempts_per_minute"`
	AttemptsPer10Sec  int `yaml:"attempts_per_10sec"`
}

func Default() Config {
	return Config{
		Env: "dev",
		HTTP: HTTPConfig{
			Addr:         ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  30 * time.Second,
		},
		Log: LogConfig{Level: "debug"},
		Redis: RedisConfig{
			Addr: "localhost:6379",
			DB:   0,
		},
		Auth: AuthConfig{
			JWTSecret:    "change-me",
			JWTAccessTTL: 15 * time.Minute,
		},
		AccountAPI: AccountAPIConfig{
			BaseURL: "http://localhost:9090",
			Timeout: 10 * time.Second,
		},
		Metering: MeteringConfig{
			Tariffs: []TariffConfig{
				{Type: "basic", DailyGenerationLimit: 6, DailyImageLimit: 3, PointsCost: 400},
				{Type: "standard", DailyGenerationLimit: 15, DailyImageLimit: 8, PointsCost: 900},
				{Type: "premium", DailyGenerationLimit: 40, DailyImageLimit: 20, PointsCost: 1900},
			},
			PointsCosts: PointsCosts{
				Generation: 8,
				Image:      15,
			},
			Retry: RetryConfig{
				MaxAttempts:  4,
				InitialDelay: 500 * time.Millisecond,
				MaxDelay:     8 * time.Second,
			},
			ReconcileInterval: 5 * time.Minute,
			SessionTTL:        12 * time.Hour,
			SessionSweep:      30 * time.Minute,
			RateLimits: RateLimitConfig{
				AttemptsPerMinute: 30,
				AttemptsPer10Sec:  8,
			},
			DefaultTimezone: "UTC",
		},
	}
}

func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromYAML(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadFromYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("unmarshal config yaml: %w", err)
	}

	return nil
}

func validate(cfg Config) error {
	if cfg.Env != "prod" {
		return nil
	}
	if cfg.Auth.JWTSecret == "" || cfg.Auth.JWTSecret == "change-me" {
		return fmt.Errorf("auth.jwt_secret must be set in production")
	}
	if strings.TrimSpace(cfg.AccountAPI.BaseURL) == "" {
		return fmt.Errorf("account_api.base_url must be set in production")
	}
	return nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.Env = v
	}

	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if err := overrideDuration("HTTP_READ_TIMEOUT", &cfg.HTTP.ReadTimeout); err != nil {
		return err
	}
	if err := overrideDuration("HTTP_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout); err != nil {
		return err
	}
	if err := overrideDuration("HTTP_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout); err != nil {
		return err
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if err := overrideInt("REDIS_DB", &cfg.Redis.DB); err != nil {
		return err
	}

	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if err := overrideDuration("JWT_ACCESS_TTL", &cfg.Auth.JWTAccessTTL); err != nil {
		return err
	}

	if v := os.Getenv("ACCOUNT_API_BASE_URL"); v != "" {
		cfg.AccountAPI.BaseURL = v
	}
	if v := os.Getenv("ACCOUNT_API_TOKEN"); v != "" {
		cfg.AccountAPI.Token = v
	}
	if err := overrideDuration("ACCOUNT_API_TIMEOUT", &cfg.AccountAPI.Timeout); err != nil {
		return err
	}

	if err := overrideInt("RETRY_MAX_ATTEMPTS", &cfg.Metering.Retry.MaxAttempts); err != nil {
		return err
	}
	if err := overrideDuration("RETRY_INITIAL_DELAY", &cfg.Metering.Retry.InitialDelay); err != nil {
		return err
	}
	if err := overrideDuration("RECONCILE_INTERVAL", &cfg.Metering.ReconcileInterval); err != nil {
		return err
	}
	if err := overrideDuration("SESSION_TTL", &cfg.Metering.SessionTTL); err != nil {
		return err
	}

	return nil
}

func overrideDuration(key string, target *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("parse %s duration: %w", key, err)
	}
	*target = d
	return nil
}

func overrideInt(key string, target *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("parse %s int: %w", key, err)
	}
	*target = n
	return nil
}
