// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"inkwell/internal/models"
	"inkwell/internal/slug"
)

// PostStore handles all post-related database operations, including the
// post_tags join rows.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

// PostFilter narrows a post listing. Zero values mean "no filter".
type PostFilter struct {
	IncludeDrafts bool
	CategorySlug  string
	TagSlug       string
	Limit         int
	Offset        int
}

func (f PostFilter) where() (string, []any) {
	var conds []string
	var args []any
	if !f.IncludeDrafts {
		conds = append(conds, "p.published")
	}
	if f.CategorySlug != "" {
		args = append(args, f.CategorySlug)
		conds = append(conds, fmt.Sprintf("c.slug = $%d", len(args)))
	}
	if f.TagSlug != "" {
		args = append(args, f.TagSlug)
		conds = append(conds, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM post_tags fpt JOIN tags ft ON ft.id = fpt.tag_id
			WHERE fpt.post_id = p.id AND ft.slug = $%d)`, len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// previewSelect joins everything a listing needs. Tags are aggregated into
// a JSON array ordered by name.
const previewSelect = `
	SELECT p.id, p.slug, p.title, p.created_at, p.excerpt, p.cover_image, p.published,
	       p.content, p.category_id, p.updated_at,
	       c.name, c.slug, u.name,
	       COALESCE((
	           SELECT json_agg(json_build_object('name', t.name, 'slug', t.slug) ORDER BY t.name)
	           FROM post_tags pt JOIN tags t ON t.id = pt.tag_id
	           WHERE pt.post_id = p.id
	       ), '[]'::json)
	FROM posts p
	JOIN categories c ON c.id = p.category_id
	JOIN users u ON u.id = p.author_id`

func scanDetail(row scanner) (*models.PostDetail, error) {
	var (
		d        models.PostDetail
		tagsJSON []byte
	)
	err := row.Scan(
		&d.ID, &d.Slug, &d.Title, &d.Date, &d.Excerpt, &d.CoverImage, &d.Published,
		&d.Content, &d.CategoryID, &d.UpdatedAt,
		&d.Category.Name, &d.Category.Slug, &d.Author,
		&tagsJSON,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(tagsJSON, &d.Tags); err != nil {
		return nil, fmt.Errorf("decode post tags: %w", err)
	}
	if d.Tags == nil {
		d.Tags = []models.TagRef{}
	}
	d.ReadingTime = models.ReadingTime(d.Content)
	return &d, nil
}

// List returns previews matching f, newest first.
func (s *PostStore) List(ctx context.Context, f PostFilter) ([]models.PostPreview, error) {
	where, args := f.where()
	query := previewSelect + where + ` ORDER BY p.created_at DESC, p.id`
	if f.Limit > 0 {
		args = append(args, f.Limit, f.Offset)
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	items := []models.PostPreview{}
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		items = append(items, d.PostPreview)
	}
	return items, rows.Err()
}

// Count returns how many posts match f. Limit and Offset are ignored.
func (s *PostStore) Count(ctx context.Context, f PostFilter) (int, error) {
	where, args := f.where()
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM posts p
		JOIN categories c ON c.id = p.category_id`+where, args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}

// FindBySlug retrieves a post with its body, drafts included. Returns nil if
// not found.
func (s *PostStore) FindBySlug(ctx context.Context, postSlug string) (*models.PostDetail, error) {
	d, err := scanDetail(s.db.QueryRowContext(ctx, previewSelect+` WHERE p.slug = $1`, postSlug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by slug: %w", err)
	}
	return d, nil
}

const postColumns = `id, title, slug, content, excerpt, cover_image, published, author_id, category_id, created_at, updated_at`

func scanPost(row scanner) (*models.Post, error) {
	var p models.Post
	err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Content, &p.Excerpt, &p.CoverImage,
		&p.Published, &p.AuthorID, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindRow returns the bare posts row for slug. Returns nil if not found.
func (s *PostStore) FindRow(ctx context.Context, postSlug string) (*models.Post, error) {
	p, err := scanPost(s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE slug = $1`, postSlug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post row: %w", err)
	}
	return p, nil
}

// SlugExists reports whether any post, draft or not, uses slug.
func (s *PostStore) SlugExists(ctx context.Context, postSlug string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM posts WHERE slug = $1)`, postSlug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check post slug: %w", err)
	}
	return exists, nil
}

// Create inserts a post and links its tags in one transaction. A slug that
// was taken after the uniqueness check fails with ErrConflict.
func (s *PostStore) Create(ctx context.Context, p *models.Post, tags []string) (*models.Post, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	created, err := scanPost(tx.QueryRowContext(ctx, `
		INSERT INTO posts (title, slug, content, excerpt, cover_image, published, author_id, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+postColumns,
		p.Title, p.Slug, p.Content, p.Excerpt, p.CoverImage, p.Published, p.AuthorID, p.CategoryID,
	))
	if err != nil {
		return nil, classify("create post", err)
	}

	if err := linkTags(ctx, tx, created.ID, tags); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create post: %w", err)
	}
	return created, nil
}

// Update rewrites the post row identified by p.ID and replaces its whole tag
// set in the same transaction. Returns nil if the post no longer exists.
func (s *PostStore) Update(ctx context.Context, p *models.Post, tags []string) (*models.Post, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	updated, err := scanPost(tx.QueryRowContext(ctx, `
		UPDATE posts SET
			title = $1, slug = $2, content = $3, excerpt = $4, cover_image = $5,
			published = $6, category_id = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING `+postColumns,
		p.Title, p.Slug, p.Content, p.Excerpt, p.CoverImage, p.Published, p.CategoryID, p.ID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("update post", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM post_tags WHERE post_id = $1`, p.ID); err != nil {
		return nil, fmt.Errorf("clear post tags: %w", err)
	}
	if err := linkTags(ctx, tx, p.ID, tags); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update post: %w", err)
	}
	return updated, nil
}

// linkTags finds or creates each named tag by slug and links it to the post.
// Blank names are skipped and names sharing a slug collapse into one link.
func linkTags(ctx context.Context, tx *sql.Tx, postID uuid.UUID, names []string) error {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		tagSlug := slug.Tag(name)
		if tagSlug == "" || seen[tagSlug] {
			continue
		}
		seen[tagSlug] = true

		var tagID uuid.UUID
		err := tx.QueryRowContext(ctx, `
			INSERT INTO tags (name, slug) VALUES ($1, $2)
			ON CONFLICT (slug) DO UPDATE SET slug = EXCLUDED.slug
			RETURNING id
		`, name, tagSlug).Scan(&tagID)
		if err != nil {
			return fmt.Errorf("upsert tag %q: %w", tagSlug, err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO post_tags (post_id, tag_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, postID, tagID); err != nil {
			return fmt.Errorf("link tag %q: %w", tagSlug, err)
		}
	}
	return nil
}

// Delete removes a post by slug; its tag links cascade. Reports whether a
// row was deleted.
func (s *PostStore) Delete(ctx context.Context, postSlug string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE slug = $1`, postSlug)
	if err != nil {
		return false, fmt.Errorf("delete post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete post rows: %w", err)
	}
	return n > 0, nil
}

// SearchIndex returns the slim projection of every published post, newest
// first.
func (s *PostStore) SearchIndex(ctx context.Context) ([]models.SearchPost, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.slug, p.title, p.excerpt, c.name, c.slug,
		       COALESCE((
		           SELECT json_agg(t.name ORDER BY t.name)
		           FROM post_tags pt JOIN tags t ON t.id = pt.tag_id
		           WHERE pt.post_id = p.id
		       ), '[]'::json)
		FROM posts p
		JOIN categories c ON c.id = p.category_id
		WHERE p.published
		ORDER BY p.created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	defer rows.Close()

	items := []models.SearchPost{}
	for rows.Next() {
		var (
			sp       models.SearchPost
			tagsJSON []byte
		)
		if err := rows.Scan(&sp.Slug, &sp.Title, &sp.Excerpt, &sp.CategoryName, &sp.CategorySlug, &tagsJSON); err != nil {
			return nil, fmt.Errorf("scan search post: %w", err)
		}
		if err := json.Unmarshal(tagsJSON, &sp.Tags); err != nil {
			return nil, fmt.Errorf("decode search tags: %w", err)
		}
		items = append(items, sp)
	}
	return items, rows.Err()
}
