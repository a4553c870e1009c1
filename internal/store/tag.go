// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"inkwell/internal/models"
)

// TagStore reads tags. Tags are written only through PostStore.
type TagStore struct {
	db *sql.DB
}

// NewTagStore returns a new TagStore.
func NewTagStore(db *sql.DB) *TagStore {
	return &TagStore{db: db}
}

// WithCounts returns tags used by at least one post, most used first.
// Drafts count toward the total.
func (s *TagStore) WithCounts(ctx context.Context) ([]models.TagCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.name, t.slug, COUNT(pt.post_id) AS n
		FROM tags t
		JOIN post_tags pt ON pt.tag_id = t.id
		GROUP BY t.id
		HAVING COUNT(pt.post_id) > 0
		ORDER BY n DESC, t.name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	items := []models.TagCount{}
	for rows.Next() {
		var tc models.TagCount
		if err := rows.Scan(&tc.Name, &tc.Slug, &tc.Count); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		items = append(items, tc)
	}
	return items, rows.Err()
}

// Names returns every tag name, alphabetically.
func (s *TagStore) Names(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM tags ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tag names: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan tag name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// FindBySlug retrieves a tag. Returns nil if not found.
func (s *TagStore) FindBySlug(ctx context.Context, tagSlug string) (*models.Tag, error) {
	var t models.Tag
	err := s.db.QueryRowContext(ctx, `SELECT id, name, slug FROM tags WHERE slug = $1`, tagSlug).
		Scan(&t.ID, &t.Name, &t.Slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find tag by slug: %w", err)
	}
	return &t, nil
}
