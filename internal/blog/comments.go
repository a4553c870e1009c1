// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"context"
	"html"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"inkwell/internal/models"
)

// MaxCommentLength caps a comment body after sanitizing.
const MaxCommentLength = 5000

// Comments serves per-post comment threads with ownership rules.
type Comments struct {
	repo   CommentRepo
	posts  *Posts
	policy *bluemonday.Policy
}

// NewComments wires the comment service.
func NewComments(repo CommentRepo, posts *Posts) *Comments {
	return &Comments{repo: repo, posts: posts, policy: bluemonday.StrictPolicy()}
}

// List returns a post's comments, newest first.
func (s *Comments) List(ctx context.Context, postSlug string) ([]models.Comment, error) {
	if strings.TrimSpace(postSlug) == "" {
		return nil, fail(ErrValidation, "postSlug is required")
	}
	return s.repo.ListByPost(ctx, postSlug)
}

// Create adds a comment to a visible post, capturing the actor's identity.
func (s *Comments) Create(ctx context.Context, actor *Actor, postSlug, content string) (*models.Comment, error) {
	if actor == nil {
		return nil, fail(ErrUnauthenticated, "Unauthorized")
	}
	body, err := s.clean(content)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(postSlug) == "" {
		return nil, fail(ErrValidation, "postSlug is required")
	}
	if _, err := s.posts.Get(ctx, postSlug, actor.IsAdmin()); err != nil {
		return nil, err
	}

	userID := actor.UserID
	created, err := s.repo.Create(ctx, &models.Comment{
		Content:        body,
		PostSlug:       postSlug,
		UserID:         &userID,
		AuthorSnapshot: actor.snapshot(),
	})
	if err != nil {
		return nil, err
	}
	slog.Info("comment created", "id", created.ID, "post", postSlug, "user", userID)
	return created, nil
}

// Update replaces a comment's content. Only its author may edit it.
func (s *Comments) Update(ctx context.Context, actor *Actor, id uuid.UUID, content string) (*models.Comment, error) {
	c, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !CanEditComment(actor, c) {
		return nil, fail(ErrForbidden, "You can only edit your own comments")
	}
	body, err := s.clean(content)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateContent(ctx, id, body)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, fail(ErrNotFound, "Comment not found")
	}
	return updated, nil
}

// Delete removes a comment. Its author or an admin may delete it.
func (s *Comments) Delete(ctx context.Context, actor *Actor, id uuid.UUID) error {
	c, err := s.load(ctx, actor, id)
	if err != nil {
		return err
	}
	if !CanDeleteComment(actor, c) {
		return fail(ErrForbidden, "You can only delete your own comments")
	}

	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fail(ErrNotFound, "Comment not found")
	}
	slog.Info("comment deleted", "id", id, "by", actor.UserID, "admin", actor.IsAdmin())
	return nil
}

// load resolves the comment for a mutation. Authentication is checked first
// and a missing comment is reported before ownership is evaluated.
func (s *Comments) load(ctx context.Context, actor *Actor, id uuid.UUID) (*models.Comment, error) {
	if actor == nil {
		return nil, fail(ErrUnauthenticated, "Unauthorized")
	}
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fail(ErrNotFound, "Comment not found")
	}
	return c, nil
}

// clean strips markup from a comment body. The policy escapes what it keeps,
// so entities are decoded back; the JSON layer and the UI escape on output.
func (s *Comments) clean(content string) (string, error) {
	body := strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(content)))
	if body == "" {
		return "", fail(ErrValidation, "Content is required")
	}
	if len([]rune(body)) > MaxCommentLength {
		return "", fail(ErrValidation, "Comment must be at most %d characters", MaxCommentLength)
	}
	return body, nil
}

// CanEditComment reports whether actor may edit c. Admins get no exception.
func CanEditComment(actor *Actor, c *models.Comment) bool {
	return actor != nil && c.OwnedBy(actor.UserID)
}

// CanDeleteComment reports whether actor may delete c.
func CanDeleteComment(actor *Actor, c *models.Comment) bool {
	return actor != nil && (c.OwnedBy(actor.UserID) || actor.IsAdmin())
}
