// Package cache provides key/value cache backends and the Store used by
// models to cache query results.
package cache

import (
	"context"
	"errors"
	"time"
)

// Backend is implemented by every cache backend
type Backend interface {
	// Get returns the value stored at key or an ErrCacheMiss
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key. A zero ttl uses the backend default,
	// a negative ttl never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error

	// Clear removes every key owned by the backend
	Clear(ctx context.Context) error

	// Exists reports whether key holds an unexpired value
	Exists(ctx context.Context, key string) (bool, error)

	Close() error
}

// Config holds settings shared by all backends
type Config struct {
	// DefaultTTL applies when Set is called with a zero ttl
	DefaultTTL time.Duration
	// Prefix namespaces every key
	Prefix string
}

// DefaultConfig returns the configuration used when none is given
func DefaultConfig() Config {
	return Config{
		DefaultTTL: 300 * time.Second,
		Prefix:     "helium:",
	}
}

// ErrCacheMiss is returned when a key is absent or expired
type ErrCacheMiss struct {
	Key string
}

func (e ErrCacheMiss) Error() string {
	return "cache miss: " + e.Key
}

// IsCacheMiss reports whether err is a cache miss
func IsCacheMiss(err error) bool {
	var miss ErrCacheMiss
	return errors.As(err, &miss)
}
