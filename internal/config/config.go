// Package config loads service configuration from an optional file and the environment.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Setting keys. Each is also read from the environment variable of the same name.
const (
	KeyDatabaseURL        = "DATABASE_URL"
	KeyPort               = "PORT"
	KeyLogLevel           = "LOG_LEVEL"
	KeyLogFormat          = "LOG_FORMAT"
	KeyRedisAddr          = "REDIS_ADDR"
	KeyCORSAllowedOrigins = "CORS_ALLOWED_ORIGINS"
	KeyJWTSecret          = "JWT_SECRET"
	KeyJWTExpirationHours = "JWT_EXPIRATION_HOURS"
	KeyJWTIssuer          = "JWT_ISSUER"
	KeyBcryptCost         = "BCRYPT_COST"
	KeyPasswordPepper     = "PASSWORD_PEPPER"
)

// Config is the service configuration shared by every command.
type Config struct {
	DatabaseURL        string
	Port               string
	LogLevel           string
	LogFormat          string
	RedisAddr          string // empty disables the shared rate-limit backend
	CORSAllowedOrigins []string
	JWT                JWTConfig
	Password           PasswordConfig
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyPort, "8080")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "json")
	v.SetDefault(KeyCORSAllowedOrigins, "*")
	v.SetDefault(KeyJWTExpirationHours, "24")
	v.SetDefault(KeyJWTIssuer, "job-search-tracker")
	v.SetDefault(KeyBcryptCost, "12")
}

// Load reads configuration from path (YAML, JSON or .env; skipped when empty)
// with environment variables taking precedence, then validates it.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	expiration, err := intSetting(v, KeyJWTExpirationHours)
	if err != nil {
		return nil, err
	}
	cost, err := intSetting(v, KeyBcryptCost)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL:        v.GetString(KeyDatabaseURL),
		Port:               v.GetString(KeyPort),
		LogLevel:           strings.ToLower(v.GetString(KeyLogLevel)),
		LogFormat:          strings.ToLower(v.GetString(KeyLogFormat)),
		RedisAddr:          v.GetString(KeyRedisAddr),
		CORSAllowedOrigins: splitList(v.GetString(KeyCORSAllowedOrigins)),
		JWT: JWTConfig{
			Secret:          v.GetString(KeyJWTSecret),
			ExpirationHours: expiration,
			Issuer:          v.GetString(KeyJWTIssuer),
		},
		Password: PasswordConfig{
			BcryptCost: cost,
			Pepper:     v.GetString(KeyPasswordPepper),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks value ranges. Secrets and the database URL are checked by
// the commands that need them.
func (c *Config) Validate() error {
	var errs []error
	if _, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Errorf("%s must be numeric, got %q", KeyPort, c.Port))
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("%s must be json or console, got %q", KeyLogFormat, c.LogFormat))
	}
	if c.JWT.ExpirationHours < 1 {
		errs = append(errs, fmt.Errorf("%s must be at least 1 hour, got: %d", KeyJWTExpirationHours, c.JWT.ExpirationHours))
	}
	if err := c.Password.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// RequireDatabase returns an error when no database URL is configured.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("%s is required but not set", KeyDatabaseURL)
	}
	return nil
}

func intSetting(v *viper.Viper, key string) (int, error) {
	raw := strings.TrimSpace(v.GetString(key))
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q is not an integer", key, raw)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
