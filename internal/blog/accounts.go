// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"inkwell/internal/models"
	"inkwell/internal/store"
)

// Accounts handles sign-in and admin user management.
type Accounts struct {
	repo   UserRepo
	admins map[string]bool
}

// NewAccounts wires the account service. adminEmails is the allow-list of
// addresses granted the admin role at sign-in, matched case-insensitively.
func NewAccounts(repo UserRepo, adminEmails []string) *Accounts {
	admins := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		if e = normalizeEmail(e); e != "" {
			admins[e] = true
		}
	}
	return &Accounts{repo: repo, admins: admins}
}

// IsAdminEmail reports whether email is on the allow-list.
func (s *Accounts) IsAdminEmail(email string) bool {
	return s.admins[normalizeEmail(email)]
}

// SignIn records a successful OAuth authentication and elevates the user to
// admin when the email is allow-listed. Roles are never downgraded here.
func (s *Accounts) SignIn(ctx context.Context, p models.OAuthProfile) (*models.User, error) {
	p.Email = normalizeEmail(p.Email)
	if p.Email == "" {
		return nil, fail(ErrValidation, "The identity provider did not return an email address")
	}

	u, err := s.repo.UpsertFromOAuth(ctx, p)
	if err != nil {
		return nil, err
	}

	if s.IsAdminEmail(p.Email) && !u.IsAdmin() {
		if _, err := s.repo.PromoteToAdmin(ctx, u.ID); err != nil {
			return nil, err
		}
		u.Role = models.RoleAdmin
		slog.Info("user promoted to admin", "user", u.ID, "email", u.Email)
	}

	slog.Info("user signed in", "user", u.ID, "provider", p.Provider, "role", u.Role)
	return u, nil
}

// User returns a user by ID, or nil if the account is gone.
func (s *Accounts) User(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.repo.FindByID(ctx, id)
}

// Users lists every account. Admin only.
func (s *Accounts) Users(ctx context.Context, actor *Actor) ([]models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.repo.List(ctx)
}

// DeleteUser removes an account. Its comments stay, orphaned. Admin only;
// admins cannot delete themselves.
func (s *Accounts) DeleteUser(ctx context.Context, actor *Actor, id uuid.UUID) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if id == actor.UserID {
		return fail(ErrValidation, "You cannot delete your own account")
	}

	ok, err := s.repo.Delete(ctx, id)
	if errors.Is(err, store.ErrInUse) {
		return fail(ErrConflict, "This user still authors posts. Reassign or delete them first.")
	}
	if err != nil {
		return err
	}
	if !ok {
		return fail(ErrNotFound, "User not found")
	}
	slog.Info("user deleted", "user", id, "by", actor.UserID)
	return nil
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
