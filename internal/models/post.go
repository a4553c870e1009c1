// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// wordsPerMinute is the reading speed used for ReadingTime.
const wordsPerMinute = 200

// Post is a row of the posts table. Content is stored as Markdown.
type Post struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
	Content    string    `json:"content"`
	Excerpt    string    `json:"excerpt"`
	CoverImage *string   `json:"coverImage,omitempty"`
	Published  bool      `json:"published"`
	AuthorID   uuid.UUID `json:"authorId"`
	CategoryID uuid.UUID `json:"categoryId"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Tag is a free-form label shared between posts.
type Tag struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// TagRef is the projection of a tag embedded in post views.
type TagRef struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// TagCount is a tag annotated with the number of posts using it.
type TagCount struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}

// PostPreview is the listing view of a post: everything but the body,
// plus the computed reading time.
type PostPreview struct {
	ID          uuid.UUID   `json:"id"`
	Slug        string      `json:"slug"`
	Title       string      `json:"title"`
	Date        time.Time   `json:"date"`
	Excerpt     string      `json:"excerpt"`
	Tags        []TagRef    `json:"tags"`
	Category    CategoryRef `json:"category"`
	Author      string      `json:"author,omitempty"`
	CoverImage  *string     `json:"coverImage,omitempty"`
	ReadingTime string      `json:"readingTime"`
	Published   bool        `json:"published"`
}

// PostDetail is a single post with its Markdown body.
type PostDetail struct {
	PostPreview
	Content    string    `json:"content"`
	CategoryID uuid.UUID `json:"categoryId"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// SearchPost is the slim projection served to the client-side search index.
type SearchPost struct {
	Slug         string   `json:"slug"`
	Title        string   `json:"title"`
	Excerpt      string   `json:"excerpt"`
	CategoryName string   `json:"categoryName"`
	CategorySlug string   `json:"categorySlug"`
	Tags         []string `json:"tags"`
}

// ArchiveMonth groups posts published in the same calendar month.
type ArchiveMonth struct {
	Year  int           `json:"year"`
	Month time.Month    `json:"month"`
	Posts []PostPreview `json:"posts"`
}

// ReadingTime estimates how long content takes to read, e.g. "3 min read".
// Anything non-empty rounds up to at least one minute.
func ReadingTime(content string) string {
	words := len(strings.Fields(content))
	if words == 0 {
		return "1 min read"
	}
	minutes := int(math.Ceil(float64(words) / wordsPerMinute))
	return fmt.Sprintf("%d min read", minutes)
}

// GroupByMonth buckets previews by year and month, preserving input order
// (callers pass newest first).
func GroupByMonth(posts []PostPreview) []ArchiveMonth {
	var months []ArchiveMonth
	for _, p := range posts {
		d := p.Date.UTC()
		n := len(months)
		if n > 0 && months[n-1].Year == d.Year() && months[n-1].Month == d.Month() {
			months[n-1].Posts = append(months[n-1].Posts, p)
			continue
		}
		months = append(months, ArchiveMonth{Year: d.Year(), Month: d.Month(), Posts: []PostPreview{p}})
	}
	return months
}
