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

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, slug, description, parent_id, created_at, updated_at`

// categoryWithCount selects every category column plus its live post count,
// drafts included.
const categoryWithCount = `
	SELECT c.id, c.name, c.slug, c.description, c.parent_id, c.created_at, c.updated_at,
	       (SELECT COUNT(*) FROM posts p WHERE p.category_id = c.id) AS post_count
	FROM categories c`

// scanCategory scans a row into a Category struct.
func scanCategory(row scanner) (*models.Category, error) {
	var c models.Category
	err := row.Scan(
		&c.ID, &c.Name, &c.Slug, &c.Description,
		&c.ParentID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func scanCategoryWithCount(row scanner) (*models.Category, error) {
	var c models.Category
	err := row.Scan(
		&c.ID, &c.Name, &c.Slug, &c.Description,
		&c.ParentID, &c.CreatedAt, &c.UpdatedAt, &c.PostCount,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CategoryStore) listWhere(ctx context.Context, op, where string, args ...any) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, categoryWithCount+where+` ORDER BY LOWER(c.name) COLLATE "C", c.name COLLATE "C"`, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	items := []models.Category{}
	for rows.Next() {
		c, err := scanCategoryWithCount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// List returns all categories ordered by name, with post counts.
func (s *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	return s.listWhere(ctx, "list categories", "")
}

// Roots returns categories without a parent, ordered by name.
func (s *CategoryStore) Roots(ctx context.Context) ([]models.Category, error) {
	return s.listWhere(ctx, "list root categories", ` WHERE c.parent_id IS NULL`)
}

// Children returns the direct children of a category, ordered by name.
func (s *CategoryStore) Children(ctx context.Context, parentID uuid.UUID) ([]models.Category, error) {
	return s.listWhere(ctx, "list child categories", ` WHERE c.parent_id = $1`, parentID)
}

// Tree returns root categories with one level of children embedded.
func (s *CategoryStore) Tree(ctx context.Context) ([]models.Category, error) {
	flat, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return models.BuildCategoryTree(flat), nil
}

// FindBySlug retrieves a category with its post count and parent reference.
// Returns nil if not found.
func (s *CategoryStore) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var (
		c                      models.Category
		parentID               uuid.NullUUID
		parentName, parentSlug sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT c.id, c.name, c.slug, c.description, c.parent_id, c.created_at, c.updated_at,
		       (SELECT COUNT(*) FROM posts p WHERE p.category_id = c.id),
		       parent.id, parent.name, parent.slug
		FROM categories c
		LEFT JOIN categories parent ON parent.id = c.parent_id
		WHERE c.slug = $1
	`, slug).Scan(
		&c.ID, &c.Name, &c.Slug, &c.Description, &c.ParentID, &c.CreatedAt, &c.UpdatedAt,
		&c.PostCount, &parentID, &parentName, &parentSlug,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	if parentID.Valid {
		pid := parentID.UUID
		c.Parent = &models.CategoryRef{ID: &pid, Name: parentName.String, Slug: parentSlug.String}
	}
	return &c, nil
}

// FindByID retrieves a category with its post count. Returns nil if not found.
func (s *CategoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	c, err := scanCategoryWithCount(s.db.QueryRowContext(ctx, categoryWithCount+` WHERE c.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// CountChildren returns how many categories name id as their parent.
func (s *CategoryStore) CountChildren(ctx context.Context, id uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories WHERE parent_id = $1`, id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count child categories: %w", err)
	}
	return n, nil
}

// Create inserts a new category and returns it.
func (s *CategoryStore) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO categories (name, slug, description, parent_id)
		VALUES ($1, $2, $3, $4)
		RETURNING `+categoryColumns,
		c.Name, c.Slug, c.Description, c.ParentID,
	)
	result, err := scanCategory(row)
	if err != nil {
		return nil, classify("create category", err)
	}
	return result, nil
}

// Update writes every editable column of c. Returns nil if the row is gone.
func (s *CategoryStore) Update(ctx context.Context, c *models.Category) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE categories SET
			name = $1, slug = $2, description = $3, parent_id = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING `+categoryColumns,
		c.Name, c.Slug, c.Description, c.ParentID, c.ID,
	)
	result, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("update category", err)
	}
	return result, nil
}

// Delete removes a category by ID. Categories still referenced by posts or
// children fail with ErrInUse.
func (s *CategoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return classify("delete category", err)
	}
	return nil
}
