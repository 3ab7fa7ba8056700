// Package store provides the flat key-value namespace that backs all
// Printwise site state: the user set, the current-session keys, theme
// preference, contact history, and the page-access log. Every key carries
// the application prefix so Printwise data can coexist with anything else
// living in the same Redis instance.
//
// There is deliberately no transaction across related keys. Callers that
// persist multiple keys (e.g. the user repository writing the current-user
// snapshot, session token, and login time) perform independent writes, and
// a failure between them can leave the keys inconsistent. Readers treat
// malformed or missing values identically, so the worst case degrades to
// "acts as if nothing was stored".
package store

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
)

// DefaultPrefix is the application prefix applied to every key unless the
// configuration overrides it.
const DefaultPrefix = "printwise_"

// probeKey is the throwaway key used by the availability check.
const probeKey = "availability_probe"

// Store is a prefix-scoped view of a Redis keyspace. All values are plain
// strings; structured state is JSON-encoded by the owning repository.
type Store struct {
	rdb    *redis.Client
	prefix string
}

// New creates a Store over the given Redis client. An empty prefix falls
// back to DefaultPrefix.
func New(rdb *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{rdb: rdb, prefix: prefix}
}

// Prefix returns the application prefix this store is scoped to.
func (s *Store) Prefix() string {
	return s.prefix
}

// key maps a logical name to its prefixed Redis key.
func (s *Store) key(name string) string {
	return s.prefix + name
}

// Get reads the value stored under the given logical key. The second return
// is false when the key is absent.
func (s *Store) Get(ctx context.Context, name string) (string, bool, error) {
	val, err := s.rdb.Get(ctx, s.key(name)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading key %q: %w", name, err)
	}
	return val, true, nil
}

// Set writes a value under the given logical key. Values persist until
// explicitly deleted; no TTL is applied.
func (s *Store) Set(ctx context.Context, name, value string) error {
	if err := s.rdb.Set(ctx, s.key(name), value, 0).Err(); err != nil {
		return fmt.Errorf("writing key %q: %w", name, err)
	}
	return nil
}

// Delete removes the given logical key. Deleting an absent key is not an
// error.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := s.rdb.Del(ctx, s.key(name)).Err(); err != nil {
		return fmt.Errorf("deleting key %q: %w", name, err)
	}
	return nil
}

// Available probes the store with a trivial write+delete. It returns false
// when the store rejects writes (connection down, read-only replica, out of
// memory with noeviction).
func (s *Store) Available(ctx context.Context) bool {
	k := s.key(probeKey)
	if err := s.rdb.Set(ctx, k, "1", 0).Err(); err != nil {
		return false
	}
	// Best effort -- a failed delete leaves a one-byte key behind.
	_ = s.rdb.Del(ctx, k).Err()
	return true
}

// Keys enumerates every logical key under the application prefix, sorted
// for deterministic output.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	raw, err := s.scan(ctx, s.prefix+"*")
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(raw))
	for _, k := range raw {
		names = append(names, strings.TrimPrefix(k, s.prefix))
	}
	sort.Strings(names)
	return names, nil
}

// scan collects all keys matching the given pattern using cursor-based
// SCAN so large keyspaces never block the server the way KEYS would.
func (s *Store) scan(ctx context.Context, pattern string) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)
	for {
		batch, next, err := s.rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, fmt.Errorf("scanning keys %q: %w", pattern, err)
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}
