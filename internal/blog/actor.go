// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"github.com/google/uuid"

	"inkwell/internal/models"
)

// Actor is the signed-in user performing an operation. A nil *Actor is an
// anonymous visitor.
type Actor struct {
	UserID         uuid.UUID
	Name           string
	Image          *string
	Role           models.Role
	GithubUsername *string
}

// ActorFromUser builds an actor from a user row.
func ActorFromUser(u *models.User) *Actor {
	if u == nil {
		return nil
	}
	return &Actor{
		UserID:         u.ID,
		Name:           u.Name,
		Image:          u.Image,
		Role:           u.Role,
		GithubUsername: u.GithubUsername,
	}
}

// IsAdmin is safe to call on a nil actor.
func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == models.RoleAdmin
}

// snapshot captures the actor's public identity for a new comment.
func (a *Actor) snapshot() models.AuthorSnapshot {
	return models.AuthorSnapshot{
		Name:           a.Name,
		Image:          a.Image,
		Role:           a.Role,
		GithubUsername: a.GithubUsername,
	}
}

func requireAdmin(a *Actor) error {
	if a == nil {
		return fail(ErrUnauthenticated, "Unauthorized")
	}
	if !a.IsAdmin() {
		return fail(ErrForbidden, "Forbidden")
	}
	return nil
}
