// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// AuthorSnapshot captures who wrote a comment at the moment it was created.
// It is never refreshed from the user row afterwards.
type AuthorSnapshot struct {
	Name           string  `json:"authorName"`
	Image          *string `json:"authorImage"`
	Role           Role    `json:"authorRole"`
	GithubUsername *string `json:"authorGithubUsername"`
}

// Comment belongs to a post by slug. UserID is the ownership reference used
// for authorization and becomes nil when the author's account is deleted.
type Comment struct {
	ID       uuid.UUID  `json:"id"`
	Content  string     `json:"content"`
	PostSlug string     `json:"postSlug"`
	UserID   *uuid.UUID `json:"userId"`
	AuthorSnapshot
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsOrphaned reports whether the authoring account no longer exists.
func (c *Comment) IsOrphaned() bool {
	return c.UserID == nil
}

// OwnedBy reports whether userID authored the comment.
func (c *Comment) OwnedBy(userID uuid.UUID) bool {
	return c.UserID != nil && *c.UserID == userID
}
