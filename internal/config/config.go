// Package config loads the API settings from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// MinJWTSecretLength is the minimum accepted length of JWT_SECRET in bytes.
const MinJWTSecretLength = 32

// ErrWeakJWTSecret is returned when JWT_SECRET is shorter than MinJWTSecretLength.
var ErrWeakJWTSecret = errors.New("JWT_SECRET must be at least 32 bytes")

// Config is populated from environment variables by Load.
type Config struct {
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
	// Empty disables Redis; rate limits and lockout then live in process memory.
	RedisURL string `env:"REDIS_URL"`

	JWTSecret     string `env:"JWT_SECRET,required,notEmpty"`
	JWTExpiration int64  `env:"JWT_EXPIRATION" envDefault:"86400"` // seconds

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	RateLimitEnabled   bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitUserRPM   int  `env:"RATE_LIMIT_USER_RPM" envDefault:"120"`
	RateLimitUserBurst int  `env:"RATE_LIMIT_USER_BURST" envDefault:"30"`
	RateLimitAuthRPS   int  `env:"RATE_LIMIT_AUTH_RPS" envDefault:"5"`
	RateLimitAuthBurst int  `env:"RATE_LIMIT_AUTH_BURST" envDefault:"10"`

	LoginMaxAttempts int           `env:"LOGIN_MAX_ATTEMPTS" envDefault:"5"`
	LoginLockout     time.Duration `env:"LOGIN_LOCKOUT" envDefault:"15m"`

	// e.g. "https://app.alphabank.com.br,*.alphabank.com.br"
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`

	// Exporter settings come from the OTEL_* and HONEYCOMB_* variables.
	OTelEnabled     bool   `env:"OTEL_ENABLED" envDefault:"false"`
	OTelServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"alphabank-api"`
}

// IsDevelopment reports whether APP_ENV is "development".
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// TokenTTL returns the configured token lifetime.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTExpiration) * time.Second
}

// GetCORSAllowedOrigins returns the configured origins without blanks.
func (c *Config) GetCORSAllowedOrigins() []string {
	var out []string
	for _, origin := range c.CORSAllowedOrigins {
		if o := strings.TrimSpace(origin); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Validate checks cross-field constraints env tags cannot express. All
// problems are reported together.
func (c *Config) Validate() error {
	var errs []error
	if len(c.JWTSecret) < MinJWTSecretLength {
		errs = append(errs, ErrWeakJWTSecret)
	}
	if c.JWTExpiration <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRATION must be positive"))
	}
	if c.AppPort < 0 || c.AppPort > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT %d out of range", c.AppPort))
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.LogFormat))
	}
	if c.RateLimitEnabled && (c.RateLimitUserRPM <= 0 || c.RateLimitAuthRPS <= 0) {
		errs = append(errs, errors.New("rate limits must be positive when RATE_LIMIT_ENABLED is set"))
	}
	if c.LoginMaxAttempts <= 0 {
		errs = append(errs, errors.New("LOGIN_MAX_ATTEMPTS must be positive"))
	}
	if c.MaxRequestBodySize <= 0 {
		errs = append(errs, errors.New("MAX_REQUEST_BODY_SIZE must be positive"))
	}
	return errors.Join(errs...)
}

// Load reads a .env file when present, then the environment, which takes
// precedence. It fails on missing required variables or invalid values.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
