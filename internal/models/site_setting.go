// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// SiteSettingsID is the primary key of the single settings row.
const SiteSettingsID = "default"

// SiteSettings is the singleton row holding free-form site text.
type SiteSettings struct {
	ID               string    `json:"id" yaml:"-"`
	SiteTitle        string    `json:"siteTitle" yaml:"siteTitle"`
	SiteDescription  string    `json:"siteDescription" yaml:"siteDescription"`
	HomeHeroTitle    string    `json:"homeHeroTitle" yaml:"homeHeroTitle"`
	HomeHeroSubtitle string    `json:"homeHeroSubtitle" yaml:"homeHeroSubtitle"`
	AboutTitle       string    `json:"aboutTitle" yaml:"aboutTitle"`
	AboutSubtitle    string    `json:"aboutSubtitle" yaml:"aboutSubtitle"`
	AboutContent     string    `json:"aboutContent" yaml:"aboutContent"`
	GithubURL        string    `json:"githubUrl" yaml:"githubUrl"`
	LinkedinURL      string    `json:"linkedinUrl" yaml:"linkedinUrl"`
	EmailAddress     string    `json:"emailAddress" yaml:"emailAddress"`
	FooterText       string    `json:"footerText" yaml:"footerText"`
	UpdatedAt        time.Time `json:"updatedAt" yaml:"-"`
}

// DefaultSiteSettings returns the values a freshly created row starts with.
// They mirror the column defaults in the migration.
func DefaultSiteSettings() SiteSettings {
	return SiteSettings{
		ID:               SiteSettingsID,
		SiteTitle:        "My Blog",
		SiteDescription:  "A blog about technology, development, and everything in between.",
		HomeHeroTitle:    "Welcome to My Blog",
		HomeHeroSubtitle: "A modern blog about technology, development, and everything in between.",
		AboutTitle:       "About",
		AboutSubtitle:    "",
		AboutContent:     "",
		GithubURL:        "",
		LinkedinURL:      "",
		EmailAddress:     "",
		FooterText:       "",
	}
}

// SiteSettingsPatch holds a partial settings update. Nil fields are left alone.
type SiteSettingsPatch struct {
	SiteTitle        *string `json:"siteTitle" yaml:"siteTitle"`
	SiteDescription  *string `json:"siteDescription" yaml:"siteDescription"`
	HomeHeroTitle    *string `json:"homeHeroTitle" yaml:"homeHeroTitle"`
	HomeHeroSubtitle *string `json:"homeHeroSubtitle" yaml:"homeHeroSubtitle"`
	AboutTitle       *string `json:"aboutTitle" yaml:"aboutTitle"`
	AboutSubtitle    *string `json:"aboutSubtitle" yaml:"aboutSubtitle"`
	AboutContent     *string `json:"aboutContent" yaml:"aboutContent"`
	GithubURL        *string `json:"githubUrl" yaml:"githubUrl"`
	LinkedinURL      *string `json:"linkedinUrl" yaml:"linkedinUrl"`
	EmailAddress     *string `json:"emailAddress" yaml:"emailAddress"`
	FooterText       *string `json:"footerText" yaml:"footerText"`
}

// Apply copies every non-nil patch field onto s.
func (p SiteSettingsPatch) Apply(s *SiteSettings) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&s.SiteTitle, p.SiteTitle)
	set(&s.SiteDescription, p.SiteDescription)
	set(&s.HomeHeroTitle, p.HomeHeroTitle)
	set(&s.HomeHeroSubtitle, p.HomeHeroSubtitle)
	set(&s.AboutTitle, p.AboutTitle)
	set(&s.AboutSubtitle, p.AboutSubtitle)
	set(&s.AboutContent, p.AboutContent)
	set(&s.GithubURL, p.GithubURL)
	set(&s.LinkedinURL, p.LinkedinURL)
	set(&s.EmailAddress, p.EmailAddress)
	set(&s.FooterText, p.FooterText)
}
