// Package ratelimit throttles API clients per endpoint, either in process
// with token buckets or across instances with a Redis fixed window.
package ratelimit

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Store tracks request counts for a key under an endpoint rule.
type Store interface {
	Take(ctx context.Context, key string, rule EndpointConfig) (Info, error)
}

// Limiter decides whether a client request may proceed.
type Limiter struct {
	config *Config
	store  Store
	logger *zap.Logger
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithStore replaces the default in-memory store.
func WithStore(s Store) Option {
	return func(l *Limiter) { l.store = s }
}

// WithLogger reports store failures to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Limiter) { l.logger = logger }
}

// DefaultConfig is used when NewLimiter is given a nil config.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		Whitelist:       make(map[string]bool),
		Blacklist:       make(map[string]bool),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// NewLimiter creates a new rate limiter with the given configuration.
func NewLimiter(config *Config, opts ...Option) *Limiter {
	if config == nil {
		config = DefaultConfig()
	}
	l := &Limiter{config: config, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	if l.store == nil {
		l.store = NewMemoryStore(config.CleanupInterval)
	}
	return l
}

// Allow checks if a request from the given client is allowed for the specified endpoint.
// Store failures let the request through.
func (l *Limiter) Allow(ctx context.Context, clientID, path, method string) (bool, Info) {
	unlimited := Info{Allowed: true}

	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, unlimited
	}
	if l.config.Blacklist[clientID] {
		return false, Info{}
	}

	rule := MatchEndpoint(path, method, l.config.EndpointConfigs)
	if rule == nil {
		rule = &EndpointConfig{
			Path:   "*",
			Limit:  l.config.DefaultLimit,
			Window: l.config.DefaultWindow,
			Burst:  l.config.DefaultLimit,
		}
	}
	if rule.Limit <= 0 {
		return true, unlimited
	}

	// One bucket per client and rule, so prefix rules share a bucket.
	key := clientID + ":" + rule.Method + ":" + rule.Path
	info, err := l.store.Take(ctx, key, *rule)
	if err != nil {
		l.logger.Warn("rate limit store unavailable, allowing request",
			zap.String("client", clientID), zap.String("path", path), zap.Error(err))
		return true, unlimited
	}
	return info.Allowed, info
}

// Stop releases background resources held by the store.
func (l *Limiter) Stop() {
	if s, ok := l.store.(interface{ Stop() }); ok {
		s.Stop()
	}
}
