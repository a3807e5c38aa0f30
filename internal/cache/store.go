package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Store serialises values as JSON on top of a Backend
type Store struct {
	backend Backend
	logger  *zap.Logger
}

// NewStore wraps backend. A nil logger discards output.
func NewStore(backend Backend, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{backend: backend, logger: logger}
}

// Backend returns the underlying backend
func (s *Store) Backend() Backend {
	return s.backend
}

// WriteCache stores data under key for ttl
func (s *Store) WriteCache(ctx context.Context, key string, data any, ttl time.Duration) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", key, err)
	}
	if err := s.backend.Set(ctx, key, payload, ttl); err != nil {
		return fmt.Errorf("write cache entry %s: %w", key, err)
	}
	return nil
}

// ReadCache decodes the value at key into dst. Numbers decoded into interface
// values are json.Number so integers keep their precision.
func (s *Store) ReadCache(ctx context.Context, key string, dst any) error {
	payload, err := s.backend.Get(ctx, key)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	return nil
}

// HasExpired reports whether key holds no live value. Backend errors count as expired.
func (s *Store) HasExpired(ctx context.Context, key string) bool {
	ok, err := s.backend.Exists(ctx, key)
	if err != nil {
		s.logger.Debug("cache exists check failed", zap.String("key", key), zap.Error(err))
		return true
	}
	return !ok
}

// Close closes the backend
func (s *Store) Close() error {
	return s.backend.Close()
}
