package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrCorrupt marks an entry that exists but no longer decodes, usually left
// behind by an older release with a different shape.
var ErrCorrupt = errors.New("cache entry corrupt")

// GetJSON decodes the entry at key into a T. A corrupt entry is deleted so
// the next fill replaces it.
func GetJSON[T any](ctx context.Context, p Provider, key string) (T, error) {
	var zero T
	raw, err := p.Get(ctx, key)
	if err != nil {
		return zero, err
	}
	var value T
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		_ = p.Delete(ctx, key) //nolint:errcheck // the entry is already unusable
		return zero, fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	return value, nil
}

// SetJSON encodes value and stores it at key for ttl.
func SetJSON[T any](ctx context.Context, p Provider, key string, value T, ttl time.Duration) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return p.Set(ctx, key, string(encoded), ttl)
}
