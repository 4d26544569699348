package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type bucket struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// MemoryStore keeps one token bucket per key in process.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	idleTTL time.Duration
	now     func() time.Time

	ticker *time.Ticker
	stop   chan struct{}
	once   sync.Once
}

// NewMemoryStore creates a MemoryStore. Buckets idle for an hour are evicted
// every cleanupInterval; a non-positive interval disables eviction.
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	s := &MemoryStore{
		buckets: make(map[string]*bucket),
		idleTTL: time.Hour,
		now:     time.Now,
	}
	if cleanupInterval > 0 {
		s.ticker = time.NewTicker(cleanupInterval)
		s.stop = make(chan struct{})
		go s.cleanup()
	}
	return s
}

// Take consumes one token from key's bucket.
func (s *MemoryStore) Take(_ context.Context, key string, rule EndpointConfig) (Info, error) {
	now := s.now()
	perSecond := float64(rule.Limit) / rule.Window.Seconds()
	burst := rule.Burst
	if burst <= 0 {
		burst = rule.Limit
	}

	s.mu.Lock()
	b, ok := s.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
		s.buckets[key] = b
	}
	b.lastAccess = now
	s.mu.Unlock()

	allowed := b.limiter.AllowN(now, 1)
	tokens := b.limiter.TokensAt(now)

	info := Info{
		Allowed:   allowed,
		Limit:     rule.Limit,
		Remaining: max(0, int(tokens)),
		ResetTime: now.Add(secondsToDuration((float64(burst) - tokens) / perSecond)),
	}
	if !allowed {
		info.RetryAfter = secondsToDuration((1 - tokens) / perSecond)
	}
	return info, nil
}

func secondsToDuration(s float64) time.Duration {
	if s <= 0 {
		return 0
	}
	return time.Duration(s * float64(time.Second))
}

func (s *MemoryStore) cleanup() {
	for {
		select {
		case <-s.ticker.C:
			s.evictIdle()
		case <-s.stop:
			return
		}
	}
}

// evictIdle removes buckets that have not been used within idleTTL.
func (s *MemoryStore) evictIdle() {
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()
	for key, b := range s.buckets {
		if b.lastAccess.Before(cutoff) {
			delete(s.buckets, key)
		}
	}
}

// Len returns the number of live buckets.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

// Stop stops the cleanup goroutine.
func (s *MemoryStore) Stop() {
	s.once.Do(func() {
		if s.ticker != nil {
			s.ticker.Stop()
			close(s.stop)
		}
	})
}
