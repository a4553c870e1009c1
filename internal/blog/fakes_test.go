// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/cache"
	"inkwell/internal/markdown"
	"inkwell/internal/models"
	"inkwell/internal/slug"
	"inkwell/internal/store"
)

// memDB is an in-memory stand-in for the Postgres stores. It enforces the
// same unique and foreign key rules the schema does.
type memDB struct {
	mu         sync.Mutex
	clock      time.Time
	categories map[uuid.UUID]models.Category
	posts      map[uuid.UUID]memPost
	comments   map[uuid.UUID]models.Comment
	users      map[uuid.UUID]models.User
	settings   *models.SiteSettings

	postListCalls int
	// beforeSettingsCreate runs just before a settings insert, outside the lock.
	beforeSettingsCreate func()
}

type memPost struct {
	models.Post
	tags []string
}

func newMemDB() *memDB {
	return &memDB{
		clock:      time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		categories: make(map[uuid.UUID]models.Category),
		posts:      make(map[uuid.UUID]memPost),
		comments:   make(map[uuid.UUID]models.Comment),
		users:      make(map[uuid.UUID]models.User),
	}
}

// tick advances the fake clock so creation order is strict.
func (db *memDB) tick() time.Time {
	db.clock = db.clock.Add(time.Hour)
	return db.clock
}

// --- categories ---

type memCategories struct{ db *memDB }

func (r memCategories) withCount(c models.Category) models.Category {
	c.PostCount = 0
	for _, p := range r.db.posts {
		if p.CategoryID == c.ID {
			c.PostCount++
		}
	}
	return c
}

func (r memCategories) filter(keep func(models.Category) bool) []models.Category {
	out := []models.Category{}
	for _, c := range r.db.categories {
		if keep(c) {
			out = append(out, r.withCount(c))
		}
	}
	models.SortByName(out)
	return out
}

func (r memCategories) List(context.Context) ([]models.Category, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.filter(func(models.Category) bool { return true }), nil
}

func (r memCategories) Roots(context.Context) ([]models.Category, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.filter(func(c models.Category) bool { return c.ParentID == nil }), nil
}

func (r memCategories) Children(_ context.Context, parentID uuid.UUID) ([]models.Category, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.filter(func(c models.Category) bool { return c.ParentID != nil && *c.ParentID == parentID }), nil
}

func (r memCategories) FindBySlug(_ context.Context, s string) (*models.Category, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, c := range r.db.categories {
		if c.Slug != s {
			continue
		}
		c = r.withCount(c)
		if c.ParentID != nil {
			parent := r.db.categories[*c.ParentID]
			c.Parent = &models.CategoryRef{ID: &parent.ID, Name: parent.Name, Slug: parent.Slug}
		}
		return &c, nil
	}
	return nil, nil
}

func (r memCategories) FindByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.categories[id]
	if !ok {
		return nil, nil
	}
	c = r.withCount(c)
	return &c, nil
}

func (r memCategories) CountChildren(_ context.Context, id uuid.UUID) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	n := 0
	for _, c := range r.db.categories {
		if c.ParentID != nil && *c.ParentID == id {
			n++
		}
	}
	return n, nil
}

func (r memCategories) slugTaken(s string, self uuid.UUID) bool {
	for _, c := range r.db.categories {
		if c.Slug == s && c.ID != self {
			return true
		}
	}
	return false
}

func (r memCategories) Create(_ context.Context, c *models.Category) (*models.Category, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.slugTaken(c.Slug, uuid.Nil) {
		return nil, store.ErrConflict
	}
	row := *c
	row.ID = uuid.New()
	row.CreatedAt = r.db.tick()
	row.UpdatedAt = row.CreatedAt
	r.db.categories[row.ID] = row
	return &row, nil
}

func (r memCategories) Update(_ context.Context, c *models.Category) (*models.Category, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.categories[c.ID]; !ok {
		return nil, nil
	}
	if r.slugTaken(c.Slug, c.ID) {
		return nil, store.ErrConflict
	}
	row := *c
	row.Children, row.Parent, row.PostCount = nil, nil, 0
	row.UpdatedAt = r.db.tick()
	r.db.categories[row.ID] = row
	return &row, nil
}

func (r memCategories) Delete(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, c := range r.db.categories {
		if c.ParentID != nil && *c.ParentID == id {
			return store.ErrInUse
		}
	}
	for _, p := range r.db.posts {
		if p.CategoryID == id {
			return store.ErrInUse
		}
	}
	delete(r.db.categories, id)
	return nil
}

// --- posts ---

type memPosts struct{ db *memDB }

func (r memPosts) preview(p memPost) models.PostPreview {
	cat := r.db.categories[p.CategoryID]
	tags := []models.TagRef{}
	for _, name := range p.tags {
		tags = append(tags, models.TagRef{Name: name, Slug: slug.Tag(name)})
	}
	return models.PostPreview{
		ID:          p.ID,
		Slug:        p.Slug,
		Title:       p.Title,
		Date:        p.CreatedAt,
		Excerpt:     p.Excerpt,
		Tags:        tags,
		Category:    models.CategoryRef{Name: cat.Name, Slug: cat.Slug},
		Author:      r.db.users[p.AuthorID].Name,
		CoverImage:  p.CoverImage,
		ReadingTime: models.ReadingTime(p.Content),
		Published:   p.Published,
	}
}

func (r memPosts) matching(f store.PostFilter) []memPost {
	var out []memPost
	for _, p := range r.db.posts {
		if !f.IncludeDrafts && !p.Published {
			continue
		}
		if f.CategorySlug != "" && r.db.categories[p.CategoryID].Slug != f.CategorySlug {
			continue
		}
		if f.TagSlug != "" {
			found := false
			for _, name := range p.tags {
				found = found || slug.Tag(name) == f.TagSlug
			}
			if !found {
				continue
			}
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r memPosts) List(_ context.Context, f store.PostFilter) ([]models.PostPreview, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.postListCalls++
	rows := r.matching(f)
	if f.Offset > 0 {
		rows = rows[min(f.Offset, len(rows)):]
	}
	if f.Limit > 0 {
		rows = rows[:min(f.Limit, len(rows))]
	}
	out := []models.PostPreview{}
	for _, p := range rows {
		out = append(out, r.preview(p))
	}
	return out, nil
}

func (r memPosts) Count(_ context.Context, f store.PostFilter) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return len(r.matching(f)), nil
}

func (r memPosts) bySlug(s string) (memPost, bool) {
	for _, p := range r.db.posts {
		if p.Slug == s {
			return p, true
		}
	}
	return memPost{}, false
}

func (r memPosts) FindBySlug(_ context.Context, s string) (*models.PostDetail, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.bySlug(s)
	if !ok {
		return nil, nil
	}
	return &models.PostDetail{
		PostPreview: r.preview(p),
		Content:     p.Content,
		CategoryID:  p.CategoryID,
		UpdatedAt:   p.UpdatedAt,
	}, nil
}

func (r memPosts) FindRow(_ context.Context, s string) (*models.Post, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.bySlug(s)
	if !ok {
		return nil, nil
	}
	row := p.Post
	return &row, nil
}

func (r memPosts) SlugExists(_ context.Context, s string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	_, ok := r.bySlug(s)
	return ok, nil
}

func (r memPosts) checkRefs(p *models.Post) error {
	if _, ok := r.db.categories[p.CategoryID]; !ok {
		return store.ErrInUse
	}
	if other, ok := r.bySlug(p.Slug); ok && other.ID != p.ID {
		return store.ErrConflict
	}
	return nil
}

func dedupeTags(names []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[slug.Tag(n)] {
			continue
		}
		seen[slug.Tag(n)] = true
		out = append(out, n)
	}
	return out
}

func (r memPosts) Create(_ context.Context, p *models.Post, tags []string) (*models.Post, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.checkRefs(p); err != nil {
		return nil, err
	}
	row := *p
	row.ID = uuid.New()
	row.CreatedAt = r.db.tick()
	row.UpdatedAt = row.CreatedAt
	r.db.posts[row.ID] = memPost{Post: row, tags: dedupeTags(tags)}
	return &row, nil
}

func (r memPosts) Update(_ context.Context, p *models.Post, tags []string) (*models.Post, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.posts[p.ID]; !ok {
		return nil, nil
	}
	if err := r.checkRefs(p); err != nil {
		return nil, err
	}
	row := *p
	row.UpdatedAt = r.db.tick()
	r.db.posts[row.ID] = memPost{Post: row, tags: dedupeTags(tags)}
	return &row, nil
}

func (r memPosts) Delete(_ context.Context, s string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.bySlug(s)
	if !ok {
		return false, nil
	}
	delete(r.db.posts, p.ID)
	return true, nil
}

func (r memPosts) SearchIndex(context.Context) ([]models.SearchPost, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []models.SearchPost{}
	for _, p := range r.matching(store.PostFilter{}) {
		cat := r.db.categories[p.CategoryID]
		out = append(out, models.SearchPost{
			Slug:         p.Slug,
			Title:        p.Title,
			Excerpt:      p.Excerpt,
			CategoryName: cat.Name,
			CategorySlug: cat.Slug,
			Tags:         append([]string{}, p.tags...),
		})
	}
	return out, nil
}

// --- tags ---

type memTags struct{ db *memDB }

func (r memTags) WithCounts(context.Context) ([]models.TagCount, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	counts := map[string]*models.TagCount{}
	for _, p := range r.db.posts {
		for _, name := range p.tags {
			s := slug.Tag(name)
			if counts[s] == nil {
				counts[s] = &models.TagCount{Name: name, Slug: s}
			}
			counts[s].Count++
		}
	}
	out := []models.TagCount{}
	for _, tc := range counts {
		out = append(out, *tc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r memTags) Names(ctx context.Context) ([]string, error) {
	counts, _ := r.WithCounts(ctx)
	names := []string{}
	for _, tc := range counts {
		names = append(names, tc.Name)
	}
	sort.Strings(names)
	return names, nil
}

func (r memTags) FindBySlug(ctx context.Context, s string) (*models.Tag, error) {
	counts, _ := r.WithCounts(ctx)
	for _, tc := range counts {
		if tc.Slug == s {
			return &models.Tag{ID: uuid.New(), Name: tc.Name, Slug: tc.Slug}, nil
		}
	}
	return nil, nil
}

// --- comments ---

type memComments struct{ db *memDB }

func (r memComments) sorted(keep func(models.Comment) bool) []models.Comment {
	out := []models.Comment{}
	for _, c := range r.db.comments {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r memComments) ListByPost(_ context.Context, postSlug string) ([]models.Comment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.sorted(func(c models.Comment) bool { return c.PostSlug == postSlug }), nil
}

func (r memComments) Recent(_ context.Context, limit int) ([]models.Comment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := r.sorted(func(models.Comment) bool { return true })
	return out[:min(limit, len(out))], nil
}

func (r memComments) FindByID(_ context.Context, id uuid.UUID) (*models.Comment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.comments[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r memComments) Create(_ context.Context, c *models.Comment) (*models.Comment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	row := *c
	row.ID = uuid.New()
	row.CreatedAt = r.db.tick()
	row.UpdatedAt = row.CreatedAt
	r.db.comments[row.ID] = row
	return &row, nil
}

func (r memComments) UpdateContent(_ context.Context, id uuid.UUID, content string) (*models.Comment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.comments[id]
	if !ok {
		return nil, nil
	}
	c.Content = content
	c.UpdatedAt = r.db.tick()
	r.db.comments[id] = c
	return &c, nil
}

func (r memComments) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	_, ok := r.db.comments[id]
	delete(r.db.comments, id)
	return ok, nil
}

func (r memComments) Count(context.Context) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return len(r.db.comments), nil
}

// --- settings ---

type memSettings struct{ db *memDB }

func (r memSettings) Find(context.Context) (*models.SiteSettings, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.settings == nil {
		return nil, nil
	}
	v := *r.db.settings
	return &v, nil
}

func (r memSettings) Create(context.Context) (*models.SiteSettings, error) {
	if hook := r.db.beforeSettingsCreate; hook != nil {
		hook()
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.settings != nil {
		return nil, store.ErrConflict
	}
	v := models.DefaultSiteSettings()
	v.UpdatedAt = r.db.tick()
	r.db.settings = &v
	out := v
	return &out, nil
}

func (r memSettings) Save(_ context.Context, v models.SiteSettings) (*models.SiteSettings, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	v.ID = models.SiteSettingsID
	v.UpdatedAt = r.db.tick()
	r.db.settings = &v
	out := v
	return &out, nil
}

// --- users ---

type memUsers struct{ db *memDB }

func (r memUsers) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r memUsers) List(context.Context) ([]models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []models.User{}
	for _, u := range r.db.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memUsers) UpsertFromOAuth(_ context.Context, p models.OAuthProfile) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var u models.User
	for _, existing := range r.db.users {
		if existing.Email == p.Email {
			u = existing
		}
	}
	if u.ID == uuid.Nil {
		u = models.User{ID: uuid.New(), Email: p.Email, Role: models.RoleUser, CreatedAt: r.db.tick()}
	}
	if p.Name != "" {
		u.Name = p.Name
	}
	if p.Image != "" {
		img := p.Image
		u.Image = &img
	}
	u.GithubUsername = nil
	if p.Provider == models.ProviderGitHub && p.Login != "" {
		login := p.Login
		u.GithubUsername = &login
	}
	u.UpdatedAt = r.db.tick()
	r.db.users[u.ID] = u
	return &u, nil
}

func (r memUsers) PromoteToAdmin(_ context.Context, id uuid.UUID) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok || u.Role == models.RoleAdmin {
		return false, nil
	}
	u.Role = models.RoleAdmin
	r.db.users[id] = u
	return true, nil
}

func (r memUsers) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.users[id]; !ok {
		return false, nil
	}
	for _, p := range r.db.posts {
		if p.AuthorID == id {
			return false, store.ErrInUse
		}
	}
	for cid, c := range r.db.comments {
		if c.OwnedBy(id) {
			c.UserID = nil
			r.db.comments[cid] = c
		}
	}
	delete(r.db.users, id)
	return true, nil
}

func (r memUsers) Count(context.Context) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return len(r.db.users), nil
}

// --- wiring ---

type testEnv struct {
	db         *memDB
	cache      *cache.Cache
	categories *Categories
	posts      *Posts
	comments   *Comments
	settings   *Settings
	accounts   *Accounts
	dashboard  *Dashboard

	admin *Actor
	alice *Actor
	bob   *Actor
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	backend, err := cache.NewMemoryBackend(100)
	if err != nil {
		t.Fatalf("NewMemoryBackend: %v", err)
	}
	db := newMemDB()
	c := cache.New(backend)

	e := &testEnv{db: db, cache: c}
	e.settings = NewSettings(memSettings{db}, c)
	e.categories = NewCategories(memCategories{db}, c)
	e.posts = NewPosts(memPosts{db}, memTags{db}, e.categories, e.settings, c, markdown.Renderer{})
	e.posts.now = func() time.Time { return time.UnixMilli(1767225600000) }
	e.comments = NewComments(memComments{db}, e.posts)
	e.accounts = NewAccounts(memUsers{db}, []string{"Admin@Example.com"})
	e.dashboard = NewDashboard(memPosts{db}, memUsers{db}, memComments{db})

	e.admin = e.signIn(t, "admin@example.com", "Ada Admin", "ada")
	e.alice = e.signIn(t, "alice@example.com", "Alice", "alice")
	e.bob = e.signIn(t, "bob@example.com", "Bob", "")
	return e
}

func (e *testEnv) signIn(t *testing.T, email, name, login string) *Actor {
	t.Helper()
	provider := models.ProviderGoogle
	if login != "" {
		provider = models.ProviderGitHub
	}
	u, err := e.accounts.SignIn(context.Background(), models.OAuthProfile{
		Provider: provider, Email: email, Name: name, Login: login,
	})
	if err != nil {
		t.Fatalf("SignIn(%s): %v", email, err)
	}
	return ActorFromUser(u)
}

func (e *testEnv) mustCategory(t *testing.T, name, s string, parent *uuid.UUID) *models.Category {
	t.Helper()
	c, err := e.categories.Create(context.Background(), e.admin, CategoryInput{Name: name, Slug: s, ParentID: parent})
	if err != nil {
		t.Fatalf("create category %q: %v", name, err)
	}
	return c
}

func (e *testEnv) mustPost(t *testing.T, title string, categoryID uuid.UUID, published bool, tags ...string) *models.Post {
	t.Helper()
	content := "Some words for " + title
	p, err := e.posts.Create(context.Background(), e.admin, PostInput{
		Title:      &title,
		Content:    &content,
		CategoryID: &categoryID,
		Published:  &published,
		Tags:       tags,
	})
	if err != nil {
		t.Fatalf("create post %q: %v", title, err)
	}
	return p
}

func ptr[T any](v T) *T { return &v }
