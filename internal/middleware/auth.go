// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"inkwell/internal/blog"
	"inkwell/internal/models"
	"inkwell/internal/session"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// SessionKey is the context key for the session data.
	SessionKey contextKey = "session"
)

// UserLookup resolves the current user row for a session.
type UserLookup interface {
	User(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// LoadSession retrieves the session from Valkey and stores it in the
// request context. The user row is re-read so a deleted account signs out
// and a role change takes effect on the next request. It does NOT enforce
// authentication.
func LoadSession(store *session.Store, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, err := store.Get(r.Context(), r)
			if err != nil {
				slog.Warn("session load failed", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if data == nil {
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.User(r.Context(), data.UserID)
			if err != nil {
				slog.Error("session user lookup failed", "error", err, "user_id", data.UserID)
				next.ServeHTTP(w, r)
				return
			}
			if user == nil {
				if err := store.Destroy(r.Context(), w, r); err != nil {
					slog.Warn("session destroy failed", "error", err)
				}
				next.ServeHTTP(w, r)
				return
			}

			if user.Role != data.Role || user.Name != data.Name {
				fresh := session.FromUser(user)
				fresh.CreatedAt = data.CreatedAt
				if err := store.Update(r.Context(), r, fresh); err != nil {
					slog.Warn("session refresh failed", "error", err)
				}
				data = fresh
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), SessionKey, data)))
		})
	}
}

// RequireAuth answers 401 for requests without a session.
// Must be applied after LoadSession in the middleware chain.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if SessionFromCtx(r.Context()) == nil {
			jsonError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin answers 401 without a session and 403 for non-admins.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := SessionFromCtx(r.Context())
		if sess == nil {
			jsonError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if sess.Role != models.RoleAdmin {
			jsonError(w, http.StatusForbidden, "Forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SessionFromCtx extracts the session data from the request context.
// Returns nil if no session is loaded (user is not authenticated).
func SessionFromCtx(ctx context.Context) *session.Data {
	data, _ := ctx.Value(SessionKey).(*session.Data)
	return data
}

// ActorFromCtx returns the signed-in actor, or nil for anonymous requests.
func ActorFromCtx(ctx context.Context) *blog.Actor {
	sess := SessionFromCtx(ctx)
	if sess == nil {
		return nil
	}
	return &blog.Actor{
		UserID:         sess.UserID,
		Name:           sess.Name,
		Image:          sess.Image,
		Role:           sess.Role,
		GithubUsername: sess.GithubUsername,
	}
}

// WithSession returns a copy of ctx carrying data. Used by tests and by
// handlers that establish a session mid-request.
func WithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, SessionKey, data)
}
