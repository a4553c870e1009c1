// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"inkwell/internal/slug"
)

// MaxExcerptLength is the longest excerpt kept, in runes. Longer ones are
// cut and suffixed with "...".
const MaxExcerptLength = 160

// ErrInvalidResponse is returned when the model answer does not contain the
// expected JSON object.
var ErrInvalidResponse = errors.New("ai: invalid metadata response")

// Metadata is the generated excerpt, slug and tag suggestion for a post.
type Metadata struct {
	Excerpt string   `json:"excerpt"`
	Slug    string   `json:"slug"`
	Tags    []string `json:"tags"`
}

const metadataSystemPrompt = "You are a helpful assistant that generates blog metadata in JSON format."

const metadataPrompt = `You are a technical blog metadata generator. Analyze the following blog post content and generate:
1. A concise excerpt (100-160 characters) that summarizes the main point
2. An SEO-friendly URL slug (English only, lowercase, hyphen-separated)
3. 3-5 broad category tags (prefer general topics over specific versions or features)

Excerpt Guidelines:
- Write a COMPLETE sentence or phrase (do NOT truncate with "...")
- Length: 100-160 characters
- If the natural sentence is longer, rephrase to fit within the limit
- DO NOT add ellipsis (...) - system will handle truncation if needed

Slug Guidelines:
- Use ONLY English words
- Use lowercase with hyphens (e.g., "go-concurrency-patterns")
- Keep it short (3-6 words maximum)
- Focus on main keywords from the title/content

Tag Guidelines:
- Use BROAD categories (e.g., "React" instead of "React Hooks" or "React 18")
- Avoid version numbers (e.g., "Go" instead of "Go 1.25")
- Prefer general frameworks/languages over specific features
- Limit to 3-5 tags maximum
- Reuse existing tags when possible

Existing tags: %s

Blog post content:
%s

Respond ONLY with valid JSON in this exact format (no markdown, no code blocks):
{"excerpt":"your excerpt here","slug":"your-slug-here","tags":["tag1","tag2","tag3"]}`

// MetadataPrompt builds the user prompt for content, steering the model
// toward existingTags.
func MetadataPrompt(content string, existingTags []string) string {
	tags := "none"
	if len(existingTags) > 0 {
		tags = strings.Join(existingTags, ", ")
	}
	return fmt.Sprintf(metadataPrompt, tags, content)
}

// GenerateMetadata asks p for an excerpt, slug and tags for content.
func GenerateMetadata(ctx context.Context, p Provider, content string, existingTags []string) (*Metadata, error) {
	text, err := p.Generate(ctx, metadataSystemPrompt, MetadataPrompt(content, existingTags))
	if err != nil {
		return nil, err
	}

	m, err := ParseMetadata(text)
	if err != nil {
		slog.Warn("metadata response rejected", "provider", p.Name(), "error", err)
		return nil, err
	}
	return m, nil
}

// ParseMetadata extracts the outermost JSON object from a model answer and
// normalizes it: the excerpt is required and capped, the slug is re-slugged
// and blank tags are dropped.
func ParseMetadata(text string) (*Metadata, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: no JSON object found", ErrInvalidResponse)
	}

	var raw struct {
		Excerpt string    `json:"excerpt"`
		Slug    string    `json:"slug"`
		Tags    *[]string `json:"tags"`
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	excerpt := strings.TrimSpace(raw.Excerpt)
	if excerpt == "" || raw.Tags == nil {
		return nil, fmt.Errorf("%w: excerpt and tags are required", ErrInvalidResponse)
	}

	tags := make([]string, 0, len(*raw.Tags))
	for _, t := range *raw.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	return &Metadata{
		Excerpt: truncateExcerpt(excerpt),
		Slug:    slug.Generate(raw.Slug),
		Tags:    tags,
	}, nil
}

func truncateExcerpt(s string) string {
	r := []rune(s)
	if len(r) <= MaxExcerptLength {
		return s
	}
	return string(r[:MaxExcerptLength-3]) + "..."
}
