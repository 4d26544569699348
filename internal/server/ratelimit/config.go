package ratelimit

import (
	"net/http"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // exact path, or a prefix when it ends with "/"
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// LoadConfig reads RATE_LIMIT_* settings from the environment.
func LoadConfig() *Config {
	v := viper.New()
	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("RATE_LIMIT_DEFAULT_LIMIT", 1000)
	v.SetDefault("RATE_LIMIT_DEFAULT_WINDOW", time.Minute)
	v.SetDefault("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute)
	v.AutomaticEnv()

	if !v.GetBool("RATE_LIMIT_ENABLED") {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    v.GetInt("RATE_LIMIT_DEFAULT_LIMIT"),
		DefaultWindow:   v.GetDuration("RATE_LIMIT_DEFAULT_WINDOW"),
		CleanupInterval: v.GetDuration("RATE_LIMIT_CLEANUP_INTERVAL"),
		Whitelist:       parseIPList(v.GetString("RATE_LIMIT_WHITELIST")),
		Blacklist:       parseIPList(v.GetString("RATE_LIMIT_BLACKLIST")),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	writes := func(path string) []EndpointConfig {
		var out []EndpointConfig
		for _, m := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
			out = append(out, EndpointConfig{Path: path, Method: m, Limit: 100, Window: time.Minute, Burst: 10})
		}
		return out
	}

	configs := []EndpointConfig{
		// Credential endpoints
		{Path: "/auth/register", Method: http.MethodPost, Limit: 20, Window: time.Hour, Burst: 5},
		{Path: "/auth/login", Method: http.MethodPost, Limit: 10, Window: time.Minute, Burst: 5},
		{Path: "/auth/password", Method: http.MethodPut, Limit: 10, Window: time.Minute, Burst: 3},

		// Aggregations read every position of the user
		{Path: "/statistics/", Method: http.MethodGet, Limit: 120, Window: time.Minute, Burst: 30},

		{Path: "/positions", Method: http.MethodPost, Limit: 100, Window: time.Minute, Burst: 10},
	}
	configs = append(configs, writes("/positions/")...)
	configs = append(configs, writes("/interviews/")...)
	return configs
}

// parseIPList parses a comma-separated list of IP addresses into a map.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
