// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"context"

	"golang.org/x/sync/errgroup"

	"inkwell/internal/models"
	"inkwell/internal/store"
)

// RecentCommentsOnDashboard is how many comments the admin dashboard shows.
const RecentCommentsOnDashboard = 10

// Dashboard aggregates admin statistics.
type Dashboard struct {
	posts    PostRepo
	users    UserRepo
	comments CommentRepo
}

// NewDashboard wires the dashboard service.
func NewDashboard(posts PostRepo, users UserRepo, comments CommentRepo) *Dashboard {
	return &Dashboard{posts: posts, users: users, comments: comments}
}

// Stats counts posts (drafts included), users and comments, and returns the
// latest comments. Admin only.
func (s *Dashboard) Stats(ctx context.Context, actor *Actor) (*models.DashboardStats, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	var stats models.DashboardStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats.Posts, err = s.posts.Count(gctx, store.PostFilter{IncludeDrafts: true})
		return err
	})
	g.Go(func() error {
		var err error
		stats.Users, err = s.users.Count(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		stats.Comments, err = s.comments.Count(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		stats.RecentComments, err = s.comments.Recent(gctx, RecentCommentsOnDashboard)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}
