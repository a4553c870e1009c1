// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// inkwell server. Routes are split into public reads, authenticated
// comment writes, admin mutations and the OAuth flow.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"inkwell/internal/handlers"
	"inkwell/internal/middleware"
	"inkwell/internal/session"
)

// Options tunes the middleware stack.
type Options struct {
	// TrustedOrigins are accepted as Origin on unsafe requests in addition
	// to the request's own host.
	TrustedOrigins []string
	// HSTS adds Strict-Transport-Security to every response.
	HSTS bool
	// CommentLimiter throttles comment creation. Nil disables throttling.
	CommentLimiter *middleware.RateLimiter
	// MetadataLimiter throttles AI metadata generation. Nil disables throttling.
	MetadataLimiter *middleware.RateLimiter
}

// New creates and returns the configured chi router with all middleware
// and route groups wired up.
func New(
	sessions *session.Store,
	users middleware.UserLookup,
	public *handlers.Public,
	admin *handlers.Admin,
	auth *handlers.Auth,
	opts Options,
) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders(opts.HSTS))
	r.Use(middleware.RequestScope)
	r.Use(middleware.LoadSession(sessions, users))
	r.Use(middleware.CSRF(opts.TrustedOrigins...))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/health", public.Health)

	// OAuth flow.
	r.Route("/auth", func(r chi.Router) {
		r.Get("/{provider}/login", auth.Login)
		r.Get("/{provider}/callback", auth.Callback)
		r.Post("/logout", auth.Logout)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/session", auth.Session)
		r.Get("/auth/providers", auth.Providers)
		r.Get("/home", public.Home)

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", public.Categories)
			r.Get("/tree", public.CategoryTree)
			r.Get("/{category}", public.Category)
			r.Get("/{category}/posts", public.CategoryPosts)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Post("/", admin.CategoryCreate)
				r.Put("/{category}", admin.CategoryUpdate)
				r.Delete("/{category}", admin.CategoryDelete)
			})
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", public.Posts)
			r.Get("/search", public.Search)
			r.Get("/archive", public.Archive)
			r.Get("/{slug}", public.Post)
			r.Get("/{slug}/content", public.PostContent)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Post("/", admin.PostCreate)
				r.Put("/{slug}", admin.PostUpdate)
				r.Delete("/{slug}", admin.PostDelete)
			})
		})

		r.Route("/tags", func(r chi.Router) {
			r.Get("/", public.Tags)
			r.Get("/{slug}/posts", public.TagPosts)
		})

		r.Route("/comments", func(r chi.Router) {
			r.Get("/", public.Comments)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.With(limit(opts.CommentLimiter)).Post("/", public.CommentCreate)
				r.Put("/{id}", public.CommentUpdate)
				r.Delete("/{id}", public.CommentDelete)
			})
		})

		r.Get("/settings", public.Settings)
		r.With(middleware.RequireAdmin).Put("/settings", admin.SettingsUpdate)

		// Admin-only tools.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Get("/admin/stats", admin.Stats)
			r.Get("/admin/users", admin.Users)
			r.Delete("/admin/users/{id}", admin.UserDelete)
			r.With(limit(opts.MetadataLimiter)).Post("/generate-metadata", admin.GenerateMetadata)
			r.Post("/upload", admin.Upload)
		})
	})

	return r
}

// limit returns the limiter's middleware, or a pass-through when rl is nil.
func limit(rl *middleware.RateLimiter) func(http.Handler) http.Handler {
	if rl == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return rl.Middleware
}

func writeStatus(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + msg + `"}`))
}
