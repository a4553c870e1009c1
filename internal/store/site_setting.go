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

// SiteSettingStore manages the singleton site settings row.
type SiteSettingStore struct {
	db *sql.DB
}

// NewSiteSettingStore returns a new SiteSettingStore backed by the given database.
func NewSiteSettingStore(db *sql.DB) *SiteSettingStore {
	return &SiteSettingStore{db: db}
}

const settingsColumns = `id, site_title, site_description, home_hero_title, home_hero_subtitle,
	about_title, about_subtitle, about_content, github_url, linkedin_url,
	email_address, footer_text, updated_at`

func scanSettings(row scanner) (*models.SiteSettings, error) {
	var s models.SiteSettings
	err := row.Scan(
		&s.ID, &s.SiteTitle, &s.SiteDescription, &s.HomeHeroTitle, &s.HomeHeroSubtitle,
		&s.AboutTitle, &s.AboutSubtitle, &s.AboutContent, &s.GithubURL, &s.LinkedinURL,
		&s.EmailAddress, &s.FooterText, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Find returns the settings row. Returns nil if it has not been created.
func (s *SiteSettingStore) Find(ctx context.Context) (*models.SiteSettings, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+settingsColumns+` FROM site_settings WHERE id = $1`, models.SiteSettingsID)
	settings, err := scanSettings(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find site settings: %w", err)
	}
	return settings, nil
}

// Create inserts the row with column defaults. A concurrent creator that got
// there first surfaces as ErrConflict.
func (s *SiteSettingStore) Create(ctx context.Context) (*models.SiteSettings, error) {
	row := s.db.QueryRowContext(ctx, `INSERT INTO site_settings (id) VALUES ($1) RETURNING `+settingsColumns, models.SiteSettingsID)
	settings, err := scanSettings(row)
	if err != nil {
		return nil, classify("create site settings", err)
	}
	return settings, nil
}

// Save upserts every field of v into the singleton row.
func (s *SiteSettingStore) Save(ctx context.Context, v models.SiteSettings) (*models.SiteSettings, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO site_settings (
			id, site_title, site_description, home_hero_title, home_hero_subtitle,
			about_title, about_subtitle, about_content, github_url, linkedin_url,
			email_address, footer_text
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			site_title = EXCLUDED.site_title,
			site_description = EXCLUDED.site_description,
			home_hero_title = EXCLUDED.home_hero_title,
			home_hero_subtitle = EXCLUDED.home_hero_subtitle,
			about_title = EXCLUDED.about_title,
			about_subtitle = EXCLUDED.about_subtitle,
			about_content = EXCLUDED.about_content,
			github_url = EXCLUDED.github_url,
			linkedin_url = EXCLUDED.linkedin_url,
			email_address = EXCLUDED.email_address,
			footer_text = EXCLUDED.footer_text,
			updated_at = NOW()
		RETURNING `+settingsColumns,
		models.SiteSettingsID, v.SiteTitle, v.SiteDescription, v.HomeHeroTitle, v.HomeHeroSubtitle,
		v.AboutTitle, v.AboutSubtitle, v.AboutContent, v.GithubURL, v.LinkedinURL,
		v.EmailAddress, v.FooterText,
	)
	settings, err := scanSettings(row)
	if err != nil {
		return nil, fmt.Errorf("save site settings: %w", err)
	}
	return settings, nil
}
