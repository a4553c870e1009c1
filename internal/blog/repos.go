// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package blog implements the blog's business rules on top of the stores:
// category guards, post slug rules, comment authorization, the settings
// singleton and sign-in role elevation. Reads go through the query cache and
// mutations invalidate it.
package blog

import (
	"context"

	"github.com/google/uuid"

	"inkwell/internal/models"
	"inkwell/internal/store"
)

// CategoryRepo is the category persistence the services need.
type CategoryRepo interface {
	List(ctx context.Context) ([]models.Category, error)
	Roots(ctx context.Context) ([]models.Category, error)
	Children(ctx context.Context, parentID uuid.UUID) ([]models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	CountChildren(ctx context.Context, id uuid.UUID) (int, error)
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
	Update(ctx context.Context, c *models.Category) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PostRepo is the post persistence the services need.
type PostRepo interface {
	List(ctx context.Context, f store.PostFilter) ([]models.PostPreview, error)
	Count(ctx context.Context, f store.PostFilter) (int, error)
	FindBySlug(ctx context.Context, slug string) (*models.PostDetail, error)
	FindRow(ctx context.Context, slug string) (*models.Post, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, p *models.Post, tags []string) (*models.Post, error)
	Update(ctx context.Context, p *models.Post, tags []string) (*models.Post, error)
	Delete(ctx context.Context, slug string) (bool, error)
	SearchIndex(ctx context.Context) ([]models.SearchPost, error)
}

// TagRepo is the tag persistence the services need.
type TagRepo interface {
	WithCounts(ctx context.Context) ([]models.TagCount, error)
	Names(ctx context.Context) ([]string, error)
	FindBySlug(ctx context.Context, slug string) (*models.Tag, error)
}

// CommentRepo is the comment persistence the services need.
type CommentRepo interface {
	ListByPost(ctx context.Context, postSlug string) ([]models.Comment, error)
	Recent(ctx context.Context, limit int) ([]models.Comment, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	Create(ctx context.Context, c *models.Comment) (*models.Comment, error)
	UpdateContent(ctx context.Context, id uuid.UUID, content string) (*models.Comment, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	Count(ctx context.Context) (int, error)
}

// SettingsRepo is the settings persistence the services need.
type SettingsRepo interface {
	Find(ctx context.Context) (*models.SiteSettings, error)
	Create(ctx context.Context) (*models.SiteSettings, error)
	Save(ctx context.Context, v models.SiteSettings) (*models.SiteSettings, error)
}

// UserRepo is the user persistence the services need.
type UserRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpsertFromOAuth(ctx context.Context, p models.OAuthProfile) (*models.User, error)
	PromoteToAdmin(ctx context.Context, id uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	Count(ctx context.Context) (int, error)
}

// Renderer turns a Markdown post body into HTML.
type Renderer interface {
	Render(source string) (string, error)
}
