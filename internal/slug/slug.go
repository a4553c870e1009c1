// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation from arbitrary strings
// and a collision-avoiding suffix search.
package slug

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// MaxAttempts bounds the suffix search in Unique.
const MaxAttempts = 1000

// ErrExhausted is returned when Unique runs out of attempts.
var ErrExhausted = errors.New("slug: no free candidate found")

var (
	// nonWord matches anything that isn't a word character, whitespace, or hyphen.
	nonWord = regexp.MustCompile(`[^\w\s-]`)
	// separators collapses runs of whitespace, underscores and hyphens.
	separators = regexp.MustCompile(`[\s_-]+`)
)

// Generate creates a URL-friendly slug from the given string.
// Example: "Hello, World! 2026" → "hello-world-2026"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = nonWord.ReplaceAllString(result, "")
	result = separators.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// FromTitle slugs a post title, falling back to a time-based placeholder
// when the title has no usable characters.
func FromTitle(title string, now time.Time) string {
	if s := Generate(title); s != "" {
		return s
	}
	return fmt.Sprintf("post-%d", now.UnixMilli())
}

// ExistsFunc reports whether a slug is already taken.
type ExistsFunc func(ctx context.Context, candidate string) (bool, error)

// Unique returns base, or base-2, base-3, ... whichever is first free.
// A candidate equal to exclude is treated as free so a record can keep its
// own slug on update.
func Unique(ctx context.Context, base, exclude string, exists ExistsFunc) (string, error) {
	candidate := base
	for n := 2; n < MaxAttempts+2; n++ {
		if exclude != "" && candidate == exclude {
			return candidate, nil
		}
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("checking slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
	return "", fmt.Errorf("%w for %q", ErrExhausted, base)
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Tag derives a tag's slug from its display name. Tags keep every character
// except whitespace, which becomes a hyphen, so "Go Modules" and "go modules"
// share one tag.
func Tag(name string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}
