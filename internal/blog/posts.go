// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/slug"
	"inkwell/internal/store"
)

// Posts serves post listings and admin post mutations.
type Posts struct {
	repo       PostRepo
	tags       TagRepo
	categories *Categories
	settings   *Settings
	cache      *cache.Cache
	renderer   Renderer
	now        func() time.Time
}

// NewPosts wires the post service.
func NewPosts(repo PostRepo, tags TagRepo, categories *Categories, settings *Settings, c *cache.Cache, renderer Renderer) *Posts {
	return &Posts{
		repo:       repo,
		tags:       tags,
		categories: categories,
		settings:   settings,
		cache:      c,
		renderer:   renderer,
		now:        time.Now,
	}
}

var postTags = []string{cache.TagPosts}

// list is the single entry point for unpaginated listings. Public listings
// are cached across requests; listings with drafts are only memoized for the
// current request.
func (s *Posts) list(ctx context.Context, f store.PostFilter) ([]models.PostPreview, error) {
	key := cache.Key("posts", f.IncludeDrafts, f.CategorySlug, f.TagSlug, f.Limit, f.Offset)
	load := func(ctx context.Context) ([]models.PostPreview, error) {
		return s.repo.List(ctx, f)
	}
	if f.IncludeDrafts {
		return cache.Memoize(ctx, key, load)
	}
	return cache.Query(ctx, s.cache, key, cache.Options{TTL: cache.TTLShort, Tags: postTags}, load)
}

// List returns every post, newest first. Drafts are included only when
// includeDrafts is set.
func (s *Posts) List(ctx context.Context, includeDrafts bool) ([]models.PostPreview, error) {
	return s.list(ctx, store.PostFilter{IncludeDrafts: includeDrafts})
}

// ListByTag returns the posts carrying a tag.
func (s *Posts) ListByTag(ctx context.Context, tagSlug string, includeDrafts bool) ([]models.PostPreview, error) {
	return s.list(ctx, store.PostFilter{IncludeDrafts: includeDrafts, TagSlug: tagSlug})
}

// ListByCategory returns every post in a category.
func (s *Posts) ListByCategory(ctx context.Context, categorySlug string, includeDrafts bool) ([]models.PostPreview, error) {
	return s.list(ctx, store.PostFilter{IncludeDrafts: includeDrafts, CategorySlug: categorySlug})
}

// ListByCategoryPaginated returns one page of a category's posts. The window
// is only fetched when page lies within the counted total.
func (s *Posts) ListByCategoryPaginated(ctx context.Context, categorySlug string, page, perPage int, includeDrafts bool) (models.Page[models.PostPreview], error) {
	page, perPage = models.NormalizePage(page, perPage)

	if _, err := s.categories.GetBySlug(ctx, categorySlug); err != nil {
		return models.Page[models.PostPreview]{}, err
	}

	f := store.PostFilter{IncludeDrafts: includeDrafts, CategorySlug: categorySlug}
	total, err := s.repo.Count(ctx, f)
	if err != nil {
		return models.Page[models.PostPreview]{}, err
	}
	if page > models.TotalPages(total, perPage) {
		return models.NewPage[models.PostPreview](nil, total, page, perPage), nil
	}

	f.Limit = perPage
	f.Offset = models.Offset(page, perPage)
	items, err := s.list(ctx, f)
	if err != nil {
		return models.Page[models.PostPreview]{}, err
	}
	return models.NewPage(items, total, page, perPage), nil
}

// Get returns a post with its Markdown body. Drafts are reported as not
// found unless includeDrafts is set.
func (s *Posts) Get(ctx context.Context, postSlug string, includeDrafts bool) (*models.PostDetail, error) {
	p, err := cache.Memoize(ctx, cache.Key("post", postSlug), func(ctx context.Context) (*models.PostDetail, error) {
		return s.repo.FindBySlug(ctx, postSlug)
	})
	if err != nil {
		return nil, err
	}
	if p == nil || (!p.Published && !includeDrafts) {
		return nil, fail(ErrNotFound, "Post not found")
	}
	return p, nil
}

// Content returns the rendered HTML body of a post.
func (s *Posts) Content(ctx context.Context, postSlug string, includeDrafts bool) (string, error) {
	p, err := s.Get(ctx, postSlug, includeDrafts)
	if err != nil {
		return "", err
	}
	html, err := s.renderer.Render(p.Content)
	if err != nil {
		return "", fmt.Errorf("render post %q: %w", postSlug, err)
	}
	return html, nil
}

// Tag returns a tag by slug.
func (s *Posts) Tag(ctx context.Context, tagSlug string) (*models.Tag, error) {
	t, err := s.tags.FindBySlug(ctx, tagSlug)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fail(ErrNotFound, "Tag not found")
	}
	return t, nil
}

// Tags returns the tags in use, most used first.
func (s *Posts) Tags(ctx context.Context) ([]models.TagCount, error) {
	return cache.Query(ctx, s.cache, cache.Key("tags"), cache.Options{TTL: cache.TTLShort, Tags: postTags},
		s.tags.WithCounts)
}

// TagNames returns every known tag name, used to steer metadata generation
// toward existing tags.
func (s *Posts) TagNames(ctx context.Context) ([]string, error) {
	return s.tags.Names(ctx)
}

// SearchIndex returns the slim projection of published posts used by the
// client-side search.
func (s *Posts) SearchIndex(ctx context.Context) ([]models.SearchPost, error) {
	return cache.Query(ctx, s.cache, cache.KeyPostsSearch, cache.Options{TTL: cache.TTLShort, Tags: postTags},
		s.repo.SearchIndex)
}

// Archive groups posts by publication month, newest first.
func (s *Posts) Archive(ctx context.Context, includeDrafts bool) ([]models.ArchiveMonth, error) {
	posts, err := s.List(ctx, includeDrafts)
	if err != nil {
		return nil, err
	}
	return models.GroupByMonth(posts), nil
}

// Homepage returns the landing page aggregate.
func (s *Posts) Homepage(ctx context.Context) (*models.Homepage, error) {
	opts := cache.Options{
		TTL:  cache.TTLShort,
		Tags: []string{cache.TagPosts, cache.TagCategories, cache.TagSettings},
	}
	return cache.Query(ctx, s.cache, cache.KeyHomepage, opts, func(ctx context.Context) (*models.Homepage, error) {
		var home models.Homepage
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			settings, err := s.settings.Get(gctx)
			if err != nil {
				return err
			}
			home.Settings = *settings
			return nil
		})
		g.Go(func() error {
			var err error
			home.RecentPosts, err = s.list(gctx, store.PostFilter{Limit: models.HomepageRecentPosts})
			return err
		})
		g.Go(func() error {
			var err error
			home.Categories, err = s.categories.Tree(gctx)
			return err
		})
		g.Go(func() error {
			var err error
			home.Tags, err = s.Tags(gctx)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return &home, nil
	})
}

// PostInput is the payload for creating or updating a post. A nil Published
// creates a draft. On update a nil Title, Slug, Content, CategoryID or
// Published keeps the stored value, and Excerpt, CoverImage and Tags always
// replace what is stored.
type PostInput struct {
	Title      *string
	Slug       *string
	Content    *string
	Excerpt    string
	CoverImage *string
	CategoryID *uuid.UUID
	Published  *bool
	Tags       []string
}

// Create adds a post authored by the actor. The slug comes from the input or
// the title and is made unique with a numeric suffix.
func (s *Posts) Create(ctx context.Context, actor *Actor, in PostInput) (*models.Post, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(deref(in.Title))
	if title == "" {
		return nil, fail(ErrValidation, "Title is required")
	}
	if in.CategoryID == nil || *in.CategoryID == uuid.Nil {
		return nil, fail(ErrValidation, "Category is required")
	}
	if err := s.checkCategory(ctx, *in.CategoryID); err != nil {
		return nil, err
	}

	base := slug.Generate(deref(in.Slug))
	if base == "" {
		base = slug.FromTitle(title, s.now())
	}
	postSlug, err := s.uniqueSlug(ctx, base, "")
	if err != nil {
		return nil, err
	}

	p := &models.Post{
		Title:      title,
		Slug:       postSlug,
		Content:    deref(in.Content),
		Excerpt:    strings.TrimSpace(in.Excerpt),
		CoverImage: blankToNil(in.CoverImage),
		Published:  in.Published != nil && *in.Published,
		AuthorID:   actor.UserID,
		CategoryID: *in.CategoryID,
	}
	created, err := s.repo.Create(ctx, p, in.Tags)
	if errors.Is(err, store.ErrConflict) {
		return nil, fail(ErrConflict, "A post with this slug already exists")
	}
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, cache.TagPosts)
	slog.Info("post created", "slug", created.Slug, "published", created.Published)
	return created, nil
}

// Update changes the post stored under postSlug. A published post keeps its
// slug. A draft keeps its slug when none is sent; a sent slug is normalized,
// regenerated from the title when blank, and made unique excluding the post
// itself.
func (s *Posts) Update(ctx context.Context, actor *Actor, postSlug string, in PostInput) (*models.Post, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	p, err := s.repo.FindRow(ctx, postSlug)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fail(ErrNotFound, "Post not found")
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, fail(ErrValidation, "Title is required")
		}
		p.Title = title
	}

	requested := slug.Generate(deref(in.Slug))
	if p.Published {
		if requested != "" && requested != p.Slug {
			return nil, fail(ErrValidation, "Cannot change the slug of a published post")
		}
	} else if in.Slug != nil {
		if requested == "" {
			requested = slug.FromTitle(p.Title, s.now())
		}
		next, err := s.uniqueSlug(ctx, requested, p.Slug)
		if err != nil {
			return nil, err
		}
		p.Slug = next
	}

	if in.Content != nil {
		p.Content = *in.Content
	}
	if in.CategoryID != nil && *in.CategoryID != p.CategoryID {
		if err := s.checkCategory(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
		p.CategoryID = *in.CategoryID
	}
	p.Excerpt = strings.TrimSpace(in.Excerpt)
	p.CoverImage = blankToNil(in.CoverImage)
	if in.Published != nil {
		p.Published = *in.Published
	}

	updated, err := s.repo.Update(ctx, p, in.Tags)
	if errors.Is(err, store.ErrConflict) {
		return nil, fail(ErrConflict, "A post with this slug already exists")
	}
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, fail(ErrNotFound, "Post not found")
	}

	s.cache.Invalidate(ctx, cache.TagPosts)
	slog.Info("post updated", "slug", updated.Slug, "previous", postSlug, "published", updated.Published)
	return updated, nil
}

// Delete removes a post and its tag links.
func (s *Posts) Delete(ctx context.Context, actor *Actor, postSlug string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	ok, err := s.repo.Delete(ctx, postSlug)
	if err != nil {
		return err
	}
	if !ok {
		return fail(ErrNotFound, "Post not found")
	}

	s.cache.Invalidate(ctx, cache.TagPosts)
	slog.Info("post deleted", "slug", postSlug)
	return nil
}

func (s *Posts) checkCategory(ctx context.Context, id uuid.UUID) error {
	c, err := s.categories.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return fail(ErrValidation, "Category not found")
	}
	return nil
}

func (s *Posts) uniqueSlug(ctx context.Context, base, exclude string) (string, error) {
	out, err := slug.Unique(ctx, base, exclude, s.repo.SlugExists)
	if errors.Is(err, slug.ErrExhausted) {
		return "", fail(ErrConflict, "A post with this slug already exists")
	}
	return out, err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
