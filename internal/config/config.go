package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	Port    int    `yaml:"port"`
	GinMode string `yaml:"gin_mode"`
	BaseURL string `yaml:"base_url"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	AccessSecret  string `yaml:"access_secret"`
	RefreshSecret string `yaml:"refresh_secret"`
	Issuer        string `yaml:"issuer"`
	AccessTTL     string `yaml:"access_ttl"`
	RefreshTTL    string `yaml:"refresh_ttl"`
}

type AuthConfig struct {
	EmailVerificationRequired bool   `yaml:"email_verification_required"`
	VerificationTTL           string `yaml:"verification_ttl"`
	PasswordResetTTL          string `yaml:"password_reset_ttl"`
	LoginMaxAttempts          int    `yaml:"login_max_attempts"`
	LoginLockout              string `yaml:"login_lockout"`
	LoginAttemptWindow        string `yaml:"login_attempt_window"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type RateLimitConfig struct {
	AuthMax int    `yaml:"auth_max"`
	Window  string `yaml:"window"`
}

type CleanupConfig struct {
	Interval         string `yaml:"interval"`
	SessionRetention string `yaml:"session_retention"`
}

type CasbinConfig struct {
	ModelPath string `yaml:"model_path"`
}

type ConfigFile struct {
	App       AppConfig       `yaml:"app"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	JWT       JWTConfig       `yaml:"jwt"`
	Auth      AuthConfig      `yaml:"auth"`
	SMTP      SMTPConfig      `yaml:"smtp"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
	Cleanup   CleanupConfig   `yaml:"cleanup"`
	Casbin    CasbinConfig    `yaml:"casbin"`
}

// Config is the resolved runtime configuration.
type Config struct {
	Port    string
	GinMode string
	BaseURL string

	DSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTAccessSecret  string
	JWTRefreshSecret string
	JWTIssuer        string
	AccessTTL        time.Duration
	RefreshTTL       time.Duration

	EmailVerificationRequired bool
	VerificationTTL           time.Duration
	PasswordResetTTL          time.Duration
	LoginMaxAttempts          int
	LoginLockout              time.Duration
	LoginAttemptWindow        time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	RateLimitAuthMax int
	RateLimitWindow  time.Duration

	CleanupInterval  time.Duration
	SessionRetention time.Duration

	CasbinModelPath string
}

// minSecretBytes is the minimum entropy accepted for a JWT signing secret.
const minSecretBytes = 32

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// Load reads config/config.yml, applies environment overrides for secrets
// and connection strings, and validates the result.
func Load() (*Config, error) {
	return LoadFrom(env("CONFIG_PATH", "config/config.yml"))
}

// LoadFrom loads configuration from an explicit file path.
func LoadFrom(path string) (*Config, error) {
	file, err := loadConfigFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:    env("PORT", strconv.Itoa(file.App.Port)),
		GinMode: env("GIN_MODE", file.App.GinMode),
		BaseURL: env("APP_BASE_URL", file.App.BaseURL),

		DSN: env("DATABASE_DSN", file.Database.DSN),

		RedisAddr:     env("REDIS_ADDR", file.Redis.Addr),
		RedisPassword: env("REDIS_PASSWORD", file.Redis.Password),
		RedisDB:       file.Redis.DB,

		JWTAccessSecret:  env("JWT_ACCESS_SECRET", file.JWT.AccessSecret),
		JWTRefreshSecret: env("JWT_REFRESH_SECRET", file.JWT.RefreshSecret),
		JWTIssuer:        file.JWT.Issuer,

		EmailVerificationRequired: file.Auth.EmailVerificationRequired,
		LoginMaxAttempts:          file.Auth.LoginMaxAttempts,

		SMTPHost:     env("SMTP_HOST", file.SMTP.Host),
		SMTPPort:     envInt("SMTP_PORT", file.SMTP.Port),
		SMTPUsername: env("SMTP_USERNAME", file.SMTP.Username),
		SMTPPassword: env("SMTP_PASSWORD", file.SMTP.Password),
		SMTPFrom:     env("SMTP_FROM", file.SMTP.From),

		RateLimitAuthMax: file.RateLimit.AuthMax,

		CasbinModelPath: file.Casbin.ModelPath,
	}

	durations := []struct {
		name  string
		value string
		def   time.Duration
		out   *time.Duration
	}{
		{"jwt.access_ttl", file.JWT.AccessTTL, 15 * time.Minute, &cfg.AccessTTL},
		{"jwt.refresh_ttl", file.JWT.RefreshTTL, 7 * 24 * time.Hour, &cfg.RefreshTTL},
		{"auth.verification_ttl", file.Auth.VerificationTTL, time.Hour, &cfg.VerificationTTL},
		{"auth.password_reset_ttl", file.Auth.PasswordResetTTL, 30 * time.Minute, &cfg.PasswordResetTTL},
		{"auth.login_lockout", file.Auth.LoginLockout, 15 * time.Minute, &cfg.LoginLockout},
		{"auth.login_attempt_window", file.Auth.LoginAttemptWindow, 15 * time.Minute, &cfg.LoginAttemptWindow},
		{"ratelimit.window", file.RateLimit.Window, 15 * time.Minute, &cfg.RateLimitWindow},
		{"cleanup.interval", file.Cleanup.Interval, time.Hour, &cfg.CleanupInterval},
		{"cleanup.session_retention", file.Cleanup.SessionRetention, 30 * 24 * time.Hour, &cfg.SessionRetention},
	}
	for _, d := range durations {
		if d.value == "" {
			*d.out = d.def
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.name, err)
		}
		*d.out = parsed
	}

	if cfg.LoginMaxAttempts == 0 {
		cfg.LoginMaxAttempts = 5
	}
	if cfg.RateLimitAuthMax == 0 {
		cfg.RateLimitAuthMax = 120
	}
	if cfg.Port == "" || cfg.Port == "0" {
		cfg.Port = "8080"
	}
	if cfg.CasbinModelPath == "" {
		cfg.CasbinModelPath = "config/casbin_model.conf"
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate rejects configurations that would run with weak secrets or
// missing stores.
func (c *Config) validate() error {
	if c.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if len(c.JWTAccessSecret) < minSecretBytes {
		return fmt.Errorf("jwt.access_secret must be at least %d bytes", minSecretBytes)
	}
	if len(c.JWTRefreshSecret) < minSecretBytes {
		return fmt.Errorf("jwt.refresh_secret must be at least %d bytes", minSecretBytes)
	}
	if c.JWTAccessSecret == c.JWTRefreshSecret {
		return fmt.Errorf("jwt access and refresh secrets must differ")
	}
	if c.EmailVerificationRequired && c.SMTPHost == "" {
		return fmt.Errorf("smtp.host is required when auth.email_verification_required is true")
	}
	return nil
}

func loadConfigFile(path string) (*ConfigFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	var file ConfigFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("could not parse config yaml: %w", err)
	}
	return &file, nil
}
