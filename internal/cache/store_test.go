package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingBackend struct {
	*MemoryCache
}

func (failingBackend) Exists(context.Context, string) (bool, error) {
	return false, errors.New("backend down")
}

func TestStore_WriteRead(t *testing.T) {
	s := NewStore(NewMemoryCache(DefaultConfig()), nil)
	defer s.Close()
	ctx := context.Background()

	assert.True(t, s.HasExpired(ctx, "rows"))

	rows := []map[string]any{{"id": int64(9007199254740993), "name": "ada"}}
	require.NoError(t, s.WriteCache(ctx, "rows", rows, time.Minute))
	assert.False(t, s.HasExpired(ctx, "rows"))

	var got []map[string]any
	require.NoError(t, s.ReadCache(ctx, "rows", &got))
	assert.Equal(t, []map[string]any{{"id": json.Number("9007199254740993"), "name": "ada"}}, got)
}

func TestStore_ReadMissAndDecodeError(t *testing.T) {
	mem := NewMemoryCache(DefaultConfig())
	s := NewStore(mem, nil)
	defer s.Close()
	ctx := context.Background()

	var dst map[string]any
	assert.True(t, IsCacheMiss(s.ReadCache(ctx, "none", &dst)))

	require.NoError(t, mem.Set(ctx, "bad", []byte("{"), 0))
	err := s.ReadCache(ctx, "bad", &dst)
	require.Error(t, err)
	assert.False(t, IsCacheMiss(err))
}

func TestStore_BackendErrorIsExpired(t *testing.T) {
	s := NewStore(failingBackend{NewMemoryCache(DefaultConfig())}, nil)
	defer s.Close()

	assert.True(t, s.HasExpired(context.Background(), "anything"))
	assert.NotNil(t, s.Backend())
}
