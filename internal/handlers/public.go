// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"inkwell/internal/blog"
	"inkwell/internal/middleware"
)

// Public serves the read side of the site plus comment posting. Admins
// calling these endpoints also see drafts.
type Public struct {
	categories *blog.Categories
	posts      *blog.Posts
	comments   *blog.Comments
	settings   *blog.Settings
	validate   *validator.Validate
}

// NewPublic creates the public handler group.
func NewPublic(categories *blog.Categories, posts *blog.Posts, comments *blog.Comments, settings *blog.Settings) *Public {
	return &Public{
		categories: categories,
		posts:      posts,
		comments:   comments,
		settings:   settings,
		validate:   newValidator(),
	}
}

// Health reports liveness.
func (p *Public) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, envelope{"status": "ok"})
}

// Home returns the landing page aggregate.
func (p *Public) Home(w http.ResponseWriter, r *http.Request) {
	home, err := p.posts.Homepage(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, home)
}

// --- Categories ---

// Categories lists categories; ?rootOnly=true limits it to top-level ones.
func (p *Public) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := p.categories.List(r.Context(), r.URL.Query().Get("rootOnly") == "true")
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

// CategoryTree returns root categories with their children.
func (p *Public) CategoryTree(w http.ResponseWriter, r *http.Request) {
	tree, err := p.categories.Tree(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

// Category returns one category by slug with its parent and post count.
func (p *Public) Category(w http.ResponseWriter, r *http.Request) {
	cat, err := p.categories.GetBySlug(r.Context(), chi.URLParam(r, "category"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// CategoryPosts returns one page of a category's posts.
func (p *Public) CategoryPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("perPage"))

	result, err := p.posts.ListByCategoryPaginated(r.Context(), chi.URLParam(r, "category"),
		page, perPage, isAdmin(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// --- Posts ---

// Posts lists posts newest first.
func (p *Public) Posts(w http.ResponseWriter, r *http.Request) {
	posts, err := p.posts.List(r.Context(), isAdmin(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"posts": posts})
}

// Search returns the client-side search index.
func (p *Public) Search(w http.ResponseWriter, r *http.Request) {
	posts, err := p.posts.SearchIndex(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"posts": posts})
}

// Archive returns posts grouped by month.
func (p *Public) Archive(w http.ResponseWriter, r *http.Request) {
	months, err := p.posts.Archive(r.Context(), isAdmin(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"archive": months})
}

// Post returns a single post.
func (p *Public) Post(w http.ResponseWriter, r *http.Request) {
	post, err := p.posts.Get(r.Context(), chi.URLParam(r, "slug"), isAdmin(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"post": post})
}

// PostContent returns the rendered HTML body of a post.
func (p *Public) PostContent(w http.ResponseWriter, r *http.Request) {
	html, err := p.posts.Content(r.Context(), chi.URLParam(r, "slug"), isAdmin(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"html": html})
}

// --- Tags ---

// Tags lists tags that have posts, most used first.
func (p *Public) Tags(w http.ResponseWriter, r *http.Request) {
	tags, err := p.posts.Tags(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"tags": tags})
}

// TagPosts returns a tag and its posts.
func (p *Public) TagPosts(w http.ResponseWriter, r *http.Request) {
	tagSlug := chi.URLParam(r, "slug")
	tag, err := p.posts.Tag(r.Context(), tagSlug)
	if err != nil {
		writeError(w, r, err)
		return
	}
	posts, err := p.posts.ListByTag(r.Context(), tagSlug, isAdmin(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"tag": tag, "posts": posts})
}

// --- Settings ---

// Settings returns the site settings, creating the defaults on first use.
func (p *Public) Settings(w http.ResponseWriter, r *http.Request) {
	s, err := p.settings.Get(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// --- Comments ---

type commentCreateRequest struct {
	PostSlug string `json:"postSlug" validate:"required,max=300"`
	Content  string `json:"content" validate:"required"`
}

type commentUpdateRequest struct {
	Content string `json:"content" validate:"required"`
}

// Comments lists a post's comments newest first.
func (p *Public) Comments(w http.ResponseWriter, r *http.Request) {
	comments, err := p.comments.List(r.Context(), r.URL.Query().Get("postSlug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"comments": comments})
}

// CommentCreate adds a comment as the signed-in user.
func (p *Public) CommentCreate(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromCtx(r.Context())
	if actor == nil {
		writeErrorMsg(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req commentCreateRequest
	if err := decodeJSON(w, r, p.validate, &req); err != nil {
		writeError(w, r, err)
		return
	}

	c, err := p.comments.Create(r.Context(), actor, req.PostSlug, req.Content)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{"comment": c})
}

// CommentUpdate edits the caller's own comment.
func (p *Public) CommentUpdate(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromCtx(r.Context())
	if actor == nil {
		writeErrorMsg(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, ok := parseIDParam(w, r, "id", "Comment not found")
	if !ok {
		return
	}

	var req commentUpdateRequest
	if err := decodeJSON(w, r, p.validate, &req); err != nil {
		writeError(w, r, err)
		return
	}

	c, err := p.comments.Update(r.Context(), actor, id, req.Content)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"comment": c})
}

// CommentDelete removes a comment owned by the caller, or any comment for
// admins.
func (p *Public) CommentDelete(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromCtx(r.Context())
	if actor == nil {
		writeErrorMsg(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, ok := parseIDParam(w, r, "id", "Comment not found")
	if !ok {
		return
	}
	if err := p.comments.Delete(r.Context(), actor, id); err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w)
}

func isAdmin(r *http.Request) bool {
	return middleware.ActorFromCtx(r.Context()).IsAdmin()
}

// parseIDParam reads a UUID route parameter. A malformed id cannot match
// any row, so it is answered with notFound.
func parseIDParam(w http.ResponseWriter, r *http.Request, name, notFound string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeErrorMsg(w, http.StatusNotFound, notFound)
		return uuid.Nil, false
	}
	return id, true
}
