package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
	mu       sync.Mutex
}

// MemoryStore keeps one token bucket per client key. Stale entries are
// evicted by a background sweep.
type MemoryStore struct {
	cfg      Config
	limiters map[string]*clientLimiter
	mu       sync.RWMutex
}

func NewMemoryStore(cfg Config) *MemoryStore {
	s := &MemoryStore{
		cfg:      cfg.withDefaults(),
		limiters: make(map[string]*clientLimiter),
	}

	go s.cleanup()

	return s
}

func (s *MemoryStore) Allow(_ context.Context, key string) (Decision, error) {
	s.mu.RLock()
	cl, exists := s.limiters[key]
	s.mu.RUnlock()

	if !exists {
		s.mu.Lock()
		cl, exists = s.limiters[key]
		if !exists {
			cl = &clientLimiter{
				limiter:  rate.NewLimiter(rate.Limit(s.cfg.RPS), s.cfg.Burst),
				lastSeen: time.Now(),
			}
			s.limiters[key] = cl
		}
		s.mu.Unlock()
	}

	cl.mu.Lock()
	cl.lastSeen = time.Now()
	cl.mu.Unlock()

	if !cl.limiter.Allow() {
		return Decision{Allowed: false, RetryAfter: time.Second}, nil
	}

	remaining := int(cl.limiter.Tokens())
	if remaining < 0 {
		remaining = 0
	}
	return Decision{Allowed: true, Remaining: remaining}, nil
}

func (s *MemoryStore) cleanup() {
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	defer ticker.Stop()
	for range ticker.C {
		s.mu.Lock()
		now := time.Now()
		for key, cl := range s.limiters {
			cl.mu.Lock()
			lastSeen := cl.lastSeen
			cl.mu.Unlock()
			if now.Sub(lastSeen) > s.cfg.MaxAge {
				delete(s.limiters, key)
			}
		}
		s.mu.Unlock()
	}
}
