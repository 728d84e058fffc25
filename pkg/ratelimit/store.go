package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of checking one request against the limit.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Store tracks request counts per client key. Implementations: in-process
// token buckets, or Redis fixed windows shared across replicas.
type Store interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

type Config struct {
	RPS             float64
	Burst           int
	Window          time.Duration
	CleanupInterval time.Duration
	MaxAge          time.Duration
}

func DefaultConfig() Config {
	return Config{
		RPS:             10.0,
		Burst:           20,
		Window:          time.Second,
		CleanupInterval: 5 * time.Minute,
		MaxAge:          10 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.RPS <= 0 {
		c.RPS = def.RPS
	}
	if c.Burst < 1 {
		c.Burst = def.Burst
	}
	if c.Window <= 0 {
		c.Window = def.Window
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = def.CleanupInterval
	}
	if c.MaxAge <= 0 {
		c.MaxAge = def.MaxAge
	}
	return c
}
