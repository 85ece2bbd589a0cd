// Package kv provides the small "get/set by key with TTL" storage the bot
// keeps per-sender state in. Backends are interchangeable behind Store.
package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key is absent or expired.
var ErrNotFound = errors.New("kv: key not found")

// Store is a byte-valued key/value store with per-key expiry. A ttl <= 0
// means the key never expires.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// SetNX writes only when the key is absent or expired and reports whether it wrote.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}

// Sweeper is implemented by backends without native expiry.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

func expiry(now time.Time, ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return now.Add(ttl)
}
