// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
)

// Revalidation windows.
const (
	TTLShort  = 60 * time.Second
	TTLMedium = 5 * time.Minute
	TTLLong   = time.Hour
)

// Invalidation tags.
const (
	TagPosts      = "posts"
	TagCategories = "categories"
	TagSettings   = "settings"
)

// Named cache keys.
const (
	KeyHomepage     = "homepage"
	KeyCategoryTree = "category-tree"
	KeySiteSettings = "site-settings"
	KeyPostsSearch  = "posts-search"
)

// Backend stores encoded query results. Implementations must be safe for
// concurrent use.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags []string) error
	InvalidateTag(ctx context.Context, tag string) error
}

// Options controls how long a result lives and which tags can evict it.
type Options struct {
	TTL  time.Duration
	Tags []string
}

// Cache is the cross-request query cache. A nil *Cache is valid and
// caches nothing.
type Cache struct {
	backend Backend
}

// New wraps a backend.
func New(backend Backend) *Cache {
	return &Cache{backend: backend}
}

// Key builds a stable cache key from a name and its arguments. Arguments are
// hashed so keys stay short regardless of input.
func Key(name string, args ...any) string {
	if len(args) == 0 {
		return name
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprint(a)
	}
	sum := blake2b.Sum256([]byte(strings.Join(parts, "\x00")))
	return name + ":" + hex.EncodeToString(sum[:12])
}

// Query returns the cached result for key or computes it with fn. Identical
// calls within one request scope share a single execution. Backend failures
// are logged and bypassed; only fn's error is returned.
func Query[T any](ctx context.Context, c *Cache, key string, opts Options, fn func(context.Context) (T, error)) (T, error) {
	return Memoize(ctx, key, func(ctx context.Context) (T, error) {
		if c == nil || c.backend == nil {
			return fn(ctx)
		}
		return load(ctx, c, key, opts, fn)
	})
}

func load[T any](ctx context.Context, c *Cache, key string, opts Options, fn func(context.Context) (T, error)) (T, error) {
	raw, ok, err := c.backend.Get(ctx, key)
	if err != nil {
		slog.Warn("cache get error", "key", key, "error", err)
	}
	if ok {
		var v T
		err := json.Unmarshal(raw, &v)
		if err == nil {
			slog.Debug("cache hit", "key", key)
			return v, nil
		}
		slog.Warn("cache decode error", "key", key, "error", err)
	}

	v, err := fn(ctx)
	if err != nil {
		return v, err
	}

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = TTLShort
	}
	encoded, err := json.Marshal(v)
	if err != nil {
		slog.Warn("cache encode error", "key", key, "error", err)
		return v, nil
	}
	if err := c.backend.Set(ctx, key, encoded, ttl, opts.Tags); err != nil {
		slog.Warn("cache set error", "key", key, "error", err)
	}
	return v, nil
}

// Invalidate drops every entry carrying one of tags and clears the current
// request's memo so later reads in the same request see fresh data.
func (c *Cache) Invalidate(ctx context.Context, tags ...string) {
	if s := scopeFrom(ctx); s != nil {
		s.reset()
	}
	if c == nil || c.backend == nil {
		return
	}
	for _, tag := range tags {
		if err := c.backend.InvalidateTag(ctx, tag); err != nil {
			slog.Warn("cache invalidate error", "tag", tag, "error", err)
			continue
		}
		slog.Debug("cache tag invalidated", "tag", tag)
	}
}
