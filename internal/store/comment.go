// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

// CommentStore manages post comments.
type CommentStore struct {
	db *sql.DB
}

// NewCommentStore returns a new CommentStore.
func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

const commentColumns = `id, content, post_slug, user_id, author_name, author_image,
	author_role, author_github_username, created_at, updated_at`

func scanComment(row scanner) (*models.Comment, error) {
	var c models.Comment
	err := row.Scan(
		&c.ID, &c.Content, &c.PostSlug, &c.UserID, &c.Name, &c.Image,
		&c.Role, &c.GithubUsername, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CommentStore) query(ctx context.Context, op, query string, args ...any) ([]models.Comment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	items := []models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// ListByPost returns a post's comments, newest first.
func (s *CommentStore) ListByPost(ctx context.Context, postSlug string) ([]models.Comment, error) {
	return s.query(ctx, "list comments",
		`SELECT `+commentColumns+` FROM comments WHERE post_slug = $1 ORDER BY created_at DESC`, postSlug)
}

// Recent returns the latest comments across all posts.
func (s *CommentStore) Recent(ctx context.Context, limit int) ([]models.Comment, error) {
	return s.query(ctx, "list recent comments",
		`SELECT `+commentColumns+` FROM comments ORDER BY created_at DESC LIMIT $1`, limit)
}

// FindByID retrieves a comment. Returns nil if not found.
func (s *CommentStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	c, err := scanComment(s.db.QueryRowContext(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find comment: %w", err)
	}
	return c, nil
}

// Create inserts a comment together with its author snapshot.
func (s *CommentStore) Create(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	created, err := scanComment(s.db.QueryRowContext(ctx, `
		INSERT INTO comments (content, post_slug, user_id, author_name, author_image, author_role, author_github_username)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+commentColumns,
		c.Content, c.PostSlug, c.UserID, c.Name, c.Image, c.Role, c.GithubUsername,
	))
	if err != nil {
		return nil, classify("create comment", err)
	}
	return created, nil
}

// UpdateContent changes only the comment body. Returns nil if not found.
func (s *CommentStore) UpdateContent(ctx context.Context, id uuid.UUID, content string) (*models.Comment, error) {
	c, err := scanComment(s.db.QueryRowContext(ctx, `
		UPDATE comments SET content = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+commentColumns,
		content, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return c, nil
}

// Delete removes a comment. Reports whether a row was deleted.
func (s *CommentStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete comment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete comment rows: %w", err)
	}
	return n > 0, nil
}

// Count returns the total number of comments.
func (s *CommentStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM comments`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count comments: %w", err)
	}
	return n, nil
}
