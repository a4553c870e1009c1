// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

type scopeKey struct{}

type memoResult struct {
	val any
	err error
}

// scope memoizes results for the lifetime of one request.
type scope struct {
	group singleflight.Group

	mu      sync.Mutex
	results map[string]memoResult
	gen     uint64
}

// WithRequestScope returns a context whose Memoize calls are deduplicated
// until the context is discarded.
func WithRequestScope(ctx context.Context) context.Context {
	return context.WithValue(ctx, scopeKey{}, &scope{results: make(map[string]memoResult)})
}

func scopeFrom(ctx context.Context) *scope {
	s, _ := ctx.Value(scopeKey{}).(*scope)
	return s
}

func (s *scope) lookup(key string) (memoResult, bool, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.results[key]
	return r, ok, s.gen
}

func (s *scope) store(key string, gen uint64, r memoResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen == s.gen {
		s.results[key] = r
	}
}

func (s *scope) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = make(map[string]memoResult)
	s.gen++
}

// Memoize runs fn at most once per key within the request scope carried by
// ctx; concurrent callers wait for the first. Without a scope fn simply runs.
func Memoize[T any](ctx context.Context, key string, fn func(context.Context) (T, error)) (T, error) {
	s := scopeFrom(ctx)
	if s == nil {
		return fn(ctx)
	}

	if r, ok, _ := s.lookup(key); ok {
		return typed[T](key, r)
	}

	flightKey := fmt.Sprintf("%s\x00%T", key, *new(T))
	v, err, _ := s.group.Do(flightKey, func() (any, error) {
		r, ok, gen := s.lookup(key)
		if ok {
			return r.val, r.err
		}
		val, err := fn(ctx)
		s.store(key, gen, memoResult{val: val, err: err})
		return val, err
	})
	return typed[T](key, memoResult{val: v, err: err})
}

func typed[T any](key string, r memoResult) (T, error) {
	var zero T
	if r.err != nil {
		return zero, r.err
	}
	if r.val == nil {
		return zero, nil
	}
	v, ok := r.val.(T)
	if !ok {
		return zero, fmt.Errorf("memoized value for %q has type %T", key, r.val)
	}
	return v, nil
}
