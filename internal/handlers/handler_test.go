// handler_test.go provides shared test infrastructure for handler tests.
// Integration tests are skipped when PostgreSQL or Valkey are unavailable.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"inkwell/internal/ai"
	"inkwell/internal/blog"
	"inkwell/internal/cache"
	"inkwell/internal/database"
	"inkwell/internal/markdown"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/session"
	"inkwell/internal/store"
)

// mockAIProvider implements ai.Provider for handler tests.
type mockAIProvider struct {
	name     string
	response string
	err      error
	lastUser string
}

func (m *mockAIProvider) Name() string { return m.name }
func (m *mockAIProvider) Generate(_ context.Context, _, user string) (string, error) {
	m.lastUser = user
	return m.response, m.err
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "inkwell")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "inkwell")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:     envOr("VALKEY_HOST", "localhost") + ":" + envOr("VALKEY_PORT", "6379"),
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		client.FlushDB(ctx)
		client.Close()
	})
	return client
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB       *sql.DB
	Sessions *session.Store
	Accounts *blog.Accounts
	Posts    *blog.Posts
	Admin    *Admin
	Auth     *Auth
	Public   *Public
	AI       *mockAIProvider
}

// newTestEnv wires the real stores and services against the test database.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	c := cache.New(cache.NewValkeyBackend(vk))
	sessions := session.NewStore(vk, false)

	settings := blog.NewSettings(store.NewSiteSettingStore(db), c)
	categories := blog.NewCategories(store.NewCategoryStore(db), c)
	posts := blog.NewPosts(store.NewPostStore(db), store.NewTagStore(db), categories, settings, c, markdown.Renderer{})
	comments := blog.NewComments(store.NewCommentStore(db), posts)
	accounts := blog.NewAccounts(store.NewUserStore(db), []string{"handler-admin@inkwell.test"})
	dashboard := blog.NewDashboard(store.NewPostStore(db), store.NewUserStore(db), store.NewCommentStore(db))

	mock := &mockAIProvider{name: "test", response: `{"excerpt":"E","slug":"s","tags":["go"]}`}
	registry := ai.NewRegistry("test", nil)
	registry.Register("test", mock)

	return &testEnv{
		DB:       db,
		Sessions: sessions,
		Accounts: accounts,
		Posts:    posts,
		Admin:    NewAdmin(categories, posts, settings, accounts, dashboard, nil, registry),
		Auth:     NewAuth(sessions, accounts, "http://localhost:8080", nil, false),
		Public:   NewPublic(categories, posts, comments, settings),
		AI:       mock,
	}
}

// signIn creates (or reuses) a user through the OAuth sign-in path and
// returns its session payload. The user is removed when the test ends.
func (e *testEnv) signIn(t *testing.T, email, name string) *session.Data {
	t.Helper()
	u, err := e.Accounts.SignIn(context.Background(), models.OAuthProfile{
		Provider: models.ProviderGoogle, Email: email, Name: name,
	})
	if err != nil {
		t.Fatalf("SignIn(%s): %v", email, err)
	}
	t.Cleanup(func() {
		e.DB.Exec("DELETE FROM posts WHERE author_id = $1", u.ID)
		e.DB.Exec("DELETE FROM users WHERE id = $1", u.ID)
	})
	return session.FromUser(u)
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// asUser attaches a session (and a fresh request cache scope) to r.
func asUser(r *http.Request, sess *session.Data) *http.Request {
	ctx := cache.WithRequestScope(r.Context())
	if sess != nil {
		ctx = middleware.WithSession(ctx, sess)
	}
	return r.WithContext(ctx)
}

// anonymousSession is a session for a user id that has no row.
func anonymousSession(role models.Role) *session.Data {
	return &session.Data{UserID: uuid.New(), Name: "Ghost", Role: role}
}
