// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"fmt"
	"slices"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMemoryEntries is the capacity used when none is configured.
const DefaultMemoryEntries = 500

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
	tags      []string
}

// MemoryBackend is an in-process LRU for single-instance deployments and tests.
type MemoryBackend struct {
	entries *lru.Cache[string, memoryEntry]
	now     func() time.Time
}

// NewMemoryBackend creates an LRU holding at most size entries.
func NewMemoryBackend(size int) (*MemoryBackend, error) {
	if size <= 0 {
		size = DefaultMemoryEntries
	}
	l, err := lru.New[string, memoryEntry](size)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}
	return &MemoryBackend{entries: l, now: time.Now}, nil
}

func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	e, ok := m.entries.Get(key)
	if !ok {
		return nil, false, nil
	}
	if m.now().After(e.expiresAt) {
		m.entries.Remove(key)
		return nil, false, nil
	}
	return e.data, true, nil
}

func (m *MemoryBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration, tags []string) error {
	m.entries.Add(key, memoryEntry{
		data:      value,
		expiresAt: m.now().Add(ttl),
		tags:      slices.Clone(tags),
	})
	return nil
}

func (m *MemoryBackend) InvalidateTag(_ context.Context, tag string) error {
	for _, key := range m.entries.Keys() {
		e, ok := m.entries.Peek(key)
		if ok && slices.Contains(e.tags, tag) {
			m.entries.Remove(key)
		}
	}
	return nil
}

// Len reports how many entries are held, expired or not.
func (m *MemoryBackend) Len() int {
	return m.entries.Len()
}
