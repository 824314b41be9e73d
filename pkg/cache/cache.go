// Package cache stores layout results and rendered frames.
//
// Three backends implement [Cache]:
//
//   - [FileCache] keeps msgpack-encoded entries under a directory, for the CLI.
//   - [RedisCache] shares entries between graphview servers.
//   - [NullCache] disables caching.
//
// Keys come from a [Keyer] so every caller derives them the same way:
//
//	k := cache.NewDefaultKeyer()
//	key := k.LayoutKey(cache.Hash(doc), cache.LayoutKeyOpts{Engine: "dot"})
//	data, hit, err := c.Get(ctx, key)
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry. A miss is (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Clear removes every entry the cache owns.
	Clear(ctx context.Context) error
	Close() error
}
