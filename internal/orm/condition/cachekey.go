package condition

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// CacheKey returns a stable hash of the canonical encoding of q. Map keys are
// encoded in sorted order, so logically identical queries hash identically.
func CacheKey(q *Query) (string, error) {
	data, err := json.Marshal(q)
	if err != nil {
		return "", fmt.Errorf("encode query for cache key: %w", err)
	}
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:]), nil
}
