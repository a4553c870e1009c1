package database

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSeedIdempotent(t *testing.T) {
	db, err := Connect(testDSN())
	if err != nil {
		t.Skipf("skipping: DB not available: %v", err)
	}
	defer db.Close()

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	// Seed only creates data when tables are empty, so calling it twice is
	// safe even with other packages sharing the database.
	if err := Seed(db); err != nil {
		t.Fatalf("first Seed: %v", err)
	}
	if err := Seed(db); err != nil {
		t.Fatalf("second Seed: %v", err)
	}

	var categoryCount int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&categoryCount); err != nil {
		t.Fatalf("count categories: %v", err)
	}
	if categoryCount < 1 {
		t.Errorf("expected at least 1 category, got %d", categoryCount)
	}

	var settingsCount int
	if err := db.QueryRow("SELECT COUNT(*) FROM site_settings WHERE id = 'default'").Scan(&settingsCount); err != nil {
		t.Fatalf("count settings: %v", err)
	}
	if settingsCount != 1 {
		t.Errorf("expected exactly 1 settings row, got %d", settingsCount)
	}
}

func TestParseSettings(t *testing.T) {
	doc := []byte(`
siteTitle: "Bboddo's Factory"
footerText: ""
aboutContent: |
  ## Hello
  Multi-line markdown.
`)
	patch, err := ParseSettings(doc)
	if err != nil {
		t.Fatalf("ParseSettings: %v", err)
	}
	if patch.SiteTitle == nil || *patch.SiteTitle != "Bboddo's Factory" {
		t.Errorf("SiteTitle = %v", patch.SiteTitle)
	}
	if patch.FooterText == nil || *patch.FooterText != "" {
		t.Errorf("FooterText should be set to empty, got %v", patch.FooterText)
	}
	if patch.AboutContent == nil || *patch.AboutContent != "## Hello\nMulti-line markdown.\n" {
		t.Errorf("AboutContent = %q", *patch.AboutContent)
	}
	if patch.GithubURL != nil {
		t.Errorf("GithubURL should be untouched, got %q", *patch.GithubURL)
	}
}

func TestParseSettings_UnknownKey(t *testing.T) {
	if _, err := ParseSettings([]byte("siteTitel: typo\n")); err == nil {
		t.Error("expected an error for an unknown key")
	}
}

func TestLoadSettingsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("emailAddress: hi@example.com\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	patch, err := LoadSettingsFile(path)
	if err != nil {
		t.Fatalf("LoadSettingsFile: %v", err)
	}
	if patch.EmailAddress == nil || *patch.EmailAddress != "hi@example.com" {
		t.Errorf("EmailAddress = %v", patch.EmailAddress)
	}

	if _, err := LoadSettingsFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
