// Package cache is the read-through cache fronting catalog, cart and order
// reads. Entries always carry an expiry; an expired entry reads as a miss.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned when a key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Cache stores opaque serialized payloads. DelPrefix exists because mutations
// cannot predict exactly which cached listings they affect; invalidating the
// whole prefix trades hit-rate for correctness.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	DelPrefix(ctx context.Context, prefix string) error
	Keys(ctx context.Context) ([]string, error)
}
