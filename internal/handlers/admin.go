// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"inkwell/internal/ai"
	"inkwell/internal/blog"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/storage"
)

// TagNamer lists every tag name for the metadata prompt.
type TagNamer interface {
	TagNames(ctx context.Context) ([]string, error)
}

// Admin groups the admin-only HTTP handlers.
type Admin struct {
	categories *blog.Categories
	posts      *blog.Posts
	settings   *blog.Settings
	accounts   *blog.Accounts
	dashboard  *blog.Dashboard
	storage    *storage.Client // nil when object storage is not configured
	ai         *ai.Registry
	tags       TagNamer
	validate   *validator.Validate
}

// NewAdmin creates the admin handler group. storage may be nil.
func NewAdmin(
	categories *blog.Categories,
	posts *blog.Posts,
	settings *blog.Settings,
	accounts *blog.Accounts,
	dashboard *blog.Dashboard,
	storageClient *storage.Client,
	aiRegistry *ai.Registry,
) *Admin {
	return &Admin{
		categories: categories,
		posts:      posts,
		settings:   settings,
		accounts:   accounts,
		dashboard:  dashboard,
		storage:    storageClient,
		ai:         aiRegistry,
		tags:       posts,
		validate:   newValidator(),
	}
}

// --- Categories ---

type categoryCreateRequest struct {
	Name        string  `json:"name" validate:"max=100"`
	Slug        string  `json:"slug" validate:"max=100"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	ParentID    *string `json:"parentId"`
}

type categoryUpdateRequest struct {
	Name        *string      `json:"name" validate:"omitempty,max=100"`
	Slug        *string      `json:"slug" validate:"omitempty,max=100"`
	Description *string      `json:"description" validate:"omitempty,max=1000"`
	ParentID    optionalUUID `json:"parentId"`
}

// CategoryCreate adds a category.
func (a *Admin) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	var req categoryCreateRequest
	if err := decodeJSON(w, r, a.validate, &req); err != nil {
		writeError(w, r, err)
		return
	}
	parentID, err := parseOptionalID(req.ParentID, "parentId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	cat, err := a.categories.Create(r.Context(), middleware.ActorFromCtx(r.Context()), blog.CategoryInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		ParentID:    parentID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, cat)
}

// CategoryUpdate applies a partial update. "parentId": null moves the
// category to the top level; omitting it keeps the current parent.
func (a *Admin) CategoryUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "category", "Category not found")
	if !ok {
		return
	}
	var req categoryUpdateRequest
	if err := decodeJSON(w, r, a.validate, &req); err != nil {
		writeError(w, r, err)
		return
	}

	patch := models.CategoryPatch{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
	}
	if req.ParentID.Set {
		patch.ParentID = req.ParentID.Value
		patch.ClearParent = req.ParentID.Value == nil
	}

	cat, err := a.categories.Update(r.Context(), middleware.ActorFromCtx(r.Context()), id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// CategoryDelete removes an empty category.
func (a *Admin) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "category", "Category not found")
	if !ok {
		return
	}
	if err := a.categories.Delete(r.Context(), middleware.ActorFromCtx(r.Context()), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w)
}

// --- Posts ---

type postRequest struct {
	Title      *string  `json:"title" validate:"omitempty,max=300"`
	Slug       *string  `json:"slug" validate:"omitempty,max=300"`
	Content    *string  `json:"content" validate:"omitempty,max=200000"`
	Excerpt    string   `json:"excerpt" validate:"max=1000"`
	CoverImage *string  `json:"coverImage" validate:"omitempty,max=2048"`
	CategoryID *string  `json:"categoryId"`
	Published  *bool    `json:"published"`
	Tags       []string `json:"tags" validate:"max=50,dive,max=64"`
}

func (req *postRequest) input() (blog.PostInput, error) {
	categoryID, err := parseOptionalID(req.CategoryID, "categoryId")
	if err != nil {
		return blog.PostInput{}, err
	}
	return blog.PostInput{
		Title:      req.Title,
		Slug:       req.Slug,
		Content:    req.Content,
		Excerpt:    req.Excerpt,
		CoverImage: req.CoverImage,
		CategoryID: categoryID,
		Published:  req.Published,
		Tags:       req.Tags,
	}, nil
}

// PostCreate adds a post authored by the caller.
func (a *Admin) PostCreate(w http.ResponseWriter, r *http.Request) {
	a.savePost(w, r, "")
}

// PostUpdate replaces a post's fields. Tags are always replaced.
func (a *Admin) PostUpdate(w http.ResponseWriter, r *http.Request) {
	a.savePost(w, r, chi.URLParam(r, "slug"))
}

func (a *Admin) savePost(w http.ResponseWriter, r *http.Request, postSlug string) {
	var req postRequest
	if err := decodeJSON(w, r, a.validate, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(w, r, err)
		return
	}

	actor := middleware.ActorFromCtx(r.Context())
	if postSlug == "" {
		post, err := a.posts.Create(r.Context(), actor, in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, envelope{"post": post})
		return
	}

	post, err := a.posts.Update(r.Context(), actor, postSlug, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"post": post})
}

// PostDelete removes a post with its tag links.
func (a *Admin) PostDelete(w http.ResponseWriter, r *http.Request) {
	err := a.posts.Delete(r.Context(), middleware.ActorFromCtx(r.Context()), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w)
}

// --- Settings ---

type settingsRequest struct {
	SiteTitle        *string `json:"siteTitle" validate:"omitempty,max=200"`
	SiteDescription  *string `json:"siteDescription" validate:"omitempty,max=1000"`
	HomeHeroTitle    *string `json:"homeHeroTitle" validate:"omitempty,max=200"`
	HomeHeroSubtitle *string `json:"homeHeroSubtitle" validate:"omitempty,max=1000"`
	AboutTitle       *string `json:"aboutTitle" validate:"omitempty,max=200"`
	AboutSubtitle    *string `json:"aboutSubtitle" validate:"omitempty,max=1000"`
	AboutContent     *string `json:"aboutContent" validate:"omitempty,max=100000"`
	GithubURL        *string `json:"githubUrl" validate:"omitempty,max=500"`
	LinkedinURL      *string `json:"linkedinUrl" validate:"omitempty,max=500"`
	EmailAddress     *string `json:"emailAddress" validate:"omitempty,max=320"`
	FooterText       *string `json:"footerText" validate:"omitempty,max=1000"`
}

// SettingsUpdate upserts the site settings.
func (a *Admin) SettingsUpdate(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := decodeJSON(w, r, a.validate, &req); err != nil {
		writeError(w, r, err)
		return
	}

	s, err := a.settings.Update(r.Context(), middleware.ActorFromCtx(r.Context()), models.SiteSettingsPatch(req))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"settings": s})
}

// --- Dashboard and users ---

// Stats returns the dashboard counters and recent comments.
func (a *Admin) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.dashboard.Stats(r.Context(), middleware.ActorFromCtx(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Users lists every account.
func (a *Admin) Users(w http.ResponseWriter, r *http.Request) {
	users, err := a.accounts.Users(r.Context(), middleware.ActorFromCtx(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"users": users})
}

// UserDelete removes an account. The user's comments stay, orphaned.
func (a *Admin) UserDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "User not found")
	if !ok {
		return
	}
	if err := a.accounts.DeleteUser(r.Context(), middleware.ActorFromCtx(r.Context()), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w)
}
