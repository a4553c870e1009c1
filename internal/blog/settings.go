// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"context"
	"errors"
	"log/slog"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/store"
)

// Settings serves the site settings singleton.
type Settings struct {
	repo  SettingsRepo
	cache *cache.Cache
}

// NewSettings wires the settings service.
func NewSettings(repo SettingsRepo, c *cache.Cache) *Settings {
	return &Settings{repo: repo, cache: c}
}

// Get returns the settings row, creating it with defaults on first use.
func (s *Settings) Get(ctx context.Context) (*models.SiteSettings, error) {
	opts := cache.Options{TTL: cache.TTLShort, Tags: []string{cache.TagSettings}}
	return cache.Query(ctx, s.cache, cache.KeySiteSettings, opts, s.getOrCreate)
}

func (s *Settings) getOrCreate(ctx context.Context) (*models.SiteSettings, error) {
	v, err := s.repo.Find(ctx)
	if err != nil {
		return nil, err
	}
	if v != nil {
		return v, nil
	}

	v, err = s.repo.Create(ctx)
	if err == nil {
		slog.Info("site settings created with defaults")
		return v, nil
	}
	if !errors.Is(err, store.ErrConflict) {
		return nil, err
	}

	// Another caller created the row first.
	v, err = s.repo.Find(ctx)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, errors.New("site settings missing after concurrent create")
	}
	return v, nil
}

// Update applies a partial change. Admin only.
func (s *Settings) Update(ctx context.Context, actor *Actor, patch models.SiteSettingsPatch) (*models.SiteSettings, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.Apply(ctx, patch)
}

// Apply upserts patch over the current settings (or the defaults) without an
// authorization check. The init-settings command uses it directly.
func (s *Settings) Apply(ctx context.Context, patch models.SiteSettingsPatch) (*models.SiteSettings, error) {
	current, err := s.repo.Find(ctx)
	if err != nil {
		return nil, err
	}
	next := models.DefaultSiteSettings()
	if current != nil {
		next = *current
	}
	patch.Apply(&next)

	saved, err := s.repo.Save(ctx, next)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cache.TagSettings)
	slog.Info("site settings updated", "title", saved.SiteTitle)
	return saved, nil
}
