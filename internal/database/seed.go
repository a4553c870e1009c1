// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// seedCategory is one of the starter categories created on an empty database.
type seedCategory struct {
	name        string
	slug        string
	description string
}

var defaultCategories = []seedCategory{
	{"Development", "development", "Programming, coding, and software development"},
	{"Tutorial", "tutorial", "Step-by-step guides and tutorials"},
	{"Review", "review", "Product and technology reviews"},
	{"Life", "life", "Personal stories and daily life"},
}

// Seed populates an empty database with starter categories and the default
// settings row. Existing rows are never touched.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}

	if count == 0 {
		for _, c := range defaultCategories {
			_, err := db.Exec(`
				INSERT INTO categories (name, slug, description)
				VALUES ($1, $2, $3)
				ON CONFLICT (slug) DO NOTHING
			`, c.name, c.slug, c.description)
			if err != nil {
				return fmt.Errorf("seed insert category %s: %w", c.slug, err)
			}
		}
		slog.Info("database seeded with default categories", "count", len(defaultCategories))
	} else {
		slog.Info("categories already seeded, skipping")
	}

	if _, err := db.Exec(`INSERT INTO site_settings (id) VALUES ('default') ON CONFLICT (id) DO NOTHING`); err != nil {
		return fmt.Errorf("seed insert settings: %w", err)
	}

	return nil
}
