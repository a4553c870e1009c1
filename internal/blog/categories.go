// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/slug"
	"inkwell/internal/store"
)

// Categories serves category reads and guarded admin mutations.
type Categories struct {
	repo  CategoryRepo
	cache *cache.Cache
}

// NewCategories wires the category service.
func NewCategories(repo CategoryRepo, c *cache.Cache) *Categories {
	return &Categories{repo: repo, cache: c}
}

// categoryTags covers post counts as well as category rows.
var categoryTags = []string{cache.TagCategories, cache.TagPosts}

// List returns every category with its post count, or only roots.
func (s *Categories) List(ctx context.Context, rootOnly bool) ([]models.Category, error) {
	key := cache.Key("categories", rootOnly)
	return cache.Query(ctx, s.cache, key, cache.Options{TTL: cache.TTLShort, Tags: categoryTags},
		func(ctx context.Context) ([]models.Category, error) {
			if rootOnly {
				return s.repo.Roots(ctx)
			}
			return s.repo.List(ctx)
		})
}

// Tree returns roots with one level of children, both ordered by name.
func (s *Categories) Tree(ctx context.Context) ([]models.Category, error) {
	return cache.Query(ctx, s.cache, cache.KeyCategoryTree, cache.Options{TTL: cache.TTLShort, Tags: categoryTags},
		func(ctx context.Context) ([]models.Category, error) {
			flat, err := s.repo.List(ctx)
			if err != nil {
				return nil, err
			}
			return models.BuildCategoryTree(flat), nil
		})
}

// GetBySlug returns a category with its parent reference and post count.
func (s *Categories) GetBySlug(ctx context.Context, categorySlug string) (*models.Category, error) {
	c, err := cache.Memoize(ctx, cache.Key("category", categorySlug), func(ctx context.Context) (*models.Category, error) {
		return s.repo.FindBySlug(ctx, categorySlug)
	})
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fail(ErrNotFound, "Category not found")
	}
	return c, nil
}

// Children returns the direct children of a category.
func (s *Categories) Children(ctx context.Context, parentID uuid.UUID) ([]models.Category, error) {
	return s.repo.Children(ctx, parentID)
}

// CategoryInput is the payload for creating a category.
type CategoryInput struct {
	Name        string
	Slug        string
	Description *string
	ParentID    *uuid.UUID
}

// Create adds a category. Name and slug are required; a parent must exist
// and be a root so the tree stays one level deep.
func (s *Categories) Create(ctx context.Context, actor *Actor, in CategoryInput) (*models.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	categorySlug := slug.Generate(in.Slug)
	if name == "" || categorySlug == "" {
		return nil, fail(ErrValidation, "Name and slug are required")
	}

	c := &models.Category{
		Name:        name,
		Slug:        categorySlug,
		Description: blankToNil(in.Description),
	}
	if in.ParentID != nil {
		if err := s.checkParent(ctx, uuid.Nil, *in.ParentID); err != nil {
			return nil, err
		}
		c.ParentID = in.ParentID
	}

	created, err := s.repo.Create(ctx, c)
	if errors.Is(err, store.ErrConflict) {
		return nil, fail(ErrConflict, "A category with this slug already exists")
	}
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, cache.TagCategories, cache.TagPosts)
	slog.Info("category created", "slug", created.Slug)
	return created, nil
}

// Update applies a partial change to a category.
func (s *Categories) Update(ctx context.Context, actor *Actor, id uuid.UUID, patch models.CategoryPatch) (*models.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fail(ErrNotFound, "Category not found")
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fail(ErrValidation, "Name and slug are required")
		}
		c.Name = name
	}
	if patch.Slug != nil {
		categorySlug := slug.Generate(*patch.Slug)
		if categorySlug == "" {
			return nil, fail(ErrValidation, "Name and slug are required")
		}
		c.Slug = categorySlug
	}
	if patch.Description != nil {
		c.Description = blankToNil(patch.Description)
	}
	switch {
	case patch.ClearParent:
		c.ParentID = nil
	case patch.ParentID != nil:
		if err := s.checkParent(ctx, id, *patch.ParentID); err != nil {
			return nil, err
		}
		children, err := s.repo.CountChildren(ctx, id)
		if err != nil {
			return nil, err
		}
		if children > 0 {
			return nil, fail(ErrValidation, "A category with subcategories cannot become a subcategory")
		}
		c.ParentID = patch.ParentID
	}

	updated, err := s.repo.Update(ctx, c)
	if errors.Is(err, store.ErrConflict) {
		return nil, fail(ErrConflict, "A category with this slug already exists")
	}
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, fail(ErrNotFound, "Category not found")
	}

	s.cache.Invalidate(ctx, cache.TagCategories, cache.TagPosts)
	slog.Info("category updated", "id", id, "slug", updated.Slug)
	return updated, nil
}

// Delete removes a category that has no posts and no subcategories.
func (s *Categories) Delete(ctx context.Context, actor *Actor, id uuid.UUID) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return fail(ErrNotFound, "Category not found")
	}
	if c.PostCount > 0 {
		return fail(ErrHasDependents, "Cannot delete category with %d posts. Move or delete the posts first.", c.PostCount)
	}
	children, err := s.repo.CountChildren(ctx, id)
	if err != nil {
		return err
	}
	if children > 0 {
		return fail(ErrHasDependents, "Cannot delete category with %d subcategories. Move or delete them first.", children)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrInUse) {
			return fail(ErrHasDependents, "Cannot delete a category that still has posts or subcategories.")
		}
		return err
	}

	s.cache.Invalidate(ctx, cache.TagCategories, cache.TagPosts)
	slog.Info("category deleted", "id", id, "slug", c.Slug)
	return nil
}

// checkParent validates a prospective parent for category self (uuid.Nil
// when creating).
func (s *Categories) checkParent(ctx context.Context, self, parentID uuid.UUID) error {
	if parentID == self {
		return fail(ErrValidation, "A category cannot be its own parent")
	}
	parent, err := s.repo.FindByID(ctx, parentID)
	if err != nil {
		return err
	}
	if parent == nil {
		return fail(ErrValidation, "Parent category not found")
	}
	if !parent.IsRoot() {
		return fail(ErrValidation, "Parent category must be a top-level category")
	}
	return nil
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
