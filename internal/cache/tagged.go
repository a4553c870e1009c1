// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// tagged.go stores query results in Valkey. Each tag is a Valkey set holding
// the keys written under it, so invalidating a tag deletes every member.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// queryKeyPrefix is the Valkey key prefix for cached query results.
	queryKeyPrefix = "query:"
	// tagKeyPrefix is the Valkey key prefix for tag membership sets.
	tagKeyPrefix = "cachetag:"
)

// ValkeyBackend keeps query results in Valkey so every process shares them.
type ValkeyBackend struct {
	client *redis.Client
}

// NewValkeyBackend wraps a connected Valkey client.
func NewValkeyBackend(client *redis.Client) *ValkeyBackend {
	return &ValkeyBackend{client: client}
}

func (v *ValkeyBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := v.client.Get(ctx, queryKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("valkey get: %w", err)
	}
	return val, true, nil
}

func (v *ValkeyBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags []string) error {
	_, err := v.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, queryKeyPrefix+key, value, ttl)
		for _, tag := range tags {
			pipe.SAdd(ctx, tagKeyPrefix+tag, queryKeyPrefix+key)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("valkey set: %w", err)
	}
	return nil
}

func (v *ValkeyBackend) InvalidateTag(ctx context.Context, tag string) error {
	setKey := tagKeyPrefix + tag
	members, err := v.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return fmt.Errorf("valkey tag members: %w", err)
	}
	keys := append(members, setKey)
	if err := v.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("valkey tag delete: %w", err)
	}
	slog.Debug("valkey tag cleared", "tag", tag, "entries", len(members))
	return nil
}

// Flush removes every cached query and tag set by scanning their prefixes.
func (v *ValkeyBackend) Flush(ctx context.Context) error {
	var deleted int
	for _, pattern := range []string{queryKeyPrefix + "*", tagKeyPrefix + "*"} {
		var cursor uint64
		for {
			keys, next, err := v.client.Scan(ctx, cursor, pattern, 100).Result()
			if err != nil {
				return fmt.Errorf("valkey scan: %w", err)
			}
			if len(keys) > 0 {
				if err := v.client.Del(ctx, keys...).Err(); err != nil {
					return fmt.Errorf("valkey bulk delete: %w", err)
				}
				deleted += len(keys)
			}
			cursor = next
			if cursor == 0 {
				break
			}
		}
	}
	if deleted > 0 {
		slog.Info("query cache fully cleared", "deleted", deleted)
	}
	return nil
}
