package ratelimit

import (
	"strings"
)

// unlimited marks endpoints exempt from rate limiting.
var unlimited = &EndpointConfig{Limit: 0}

// exempt reports whether path is an operational endpoint that is never throttled.
func exempt(path string) bool {
	return path == "/health" || strings.HasPrefix(path, "/health/") || path == "/metrics"
}

// MatchEndpoint matches a request path and method to an endpoint configuration.
// Exact matches win over prefix matches; nil means no rule applies.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if exempt(path) {
		return unlimited
	}

	for i := range configs {
		config := &configs[i]
		if config.Path == path && config.Method == method {
			return config
		}
	}

	var best *EndpointConfig
	for i := range configs {
		config := &configs[i]
		if config.Method != method || !strings.HasSuffix(config.Path, "/") || !strings.HasPrefix(path, config.Path) {
			continue
		}
		if best == nil || len(config.Path) > len(best.Path) {
			best = config
		}
	}
	return best
}
