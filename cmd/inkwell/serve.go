// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"inkwell/internal/ai"
	"inkwell/internal/blog"
	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/handlers"
	"inkwell/internal/markdown"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/router"
	"inkwell/internal/session"
	"inkwell/internal/storage"
	"inkwell/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server.

Pending migrations are applied on start. In development an empty database
is seeded with starter categories. The server drains in-flight requests
on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		seed, _ := cmd.Flags().GetBool("seed")
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return serve(cfg, seed || cfg.IsDev())
	},
}

func init() {
	serveCmd.Flags().Bool("seed", false, "Seed starter categories into an empty database")
	rootCmd.AddCommand(serveCmd)
}

func serve(cfg *config.Config, seed bool) error {
	slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr(), "site_url", cfg.SiteURL)

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if seed {
		if err := database.Seed(db); err != nil {
			return err
		}
	}

	// Valkey backs both the query cache and the session store.
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		return err
	}
	defer valkeyClient.Close()

	sessionStore := session.NewStore(valkeyClient, cfg.SecureCookies())
	queryCache, err := newQueryCache(cfg, valkeyClient)
	if err != nil {
		return err
	}

	// Data stores.
	userStore := store.NewUserStore(db)
	postStore := store.NewPostStore(db)
	commentStore := store.NewCommentStore(db)

	// Services.
	settings := blog.NewSettings(store.NewSiteSettingStore(db), queryCache)
	categories := blog.NewCategories(store.NewCategoryStore(db), queryCache)
	posts := blog.NewPosts(postStore, store.NewTagStore(db), categories, settings, queryCache, markdown.Renderer{})
	comments := blog.NewComments(commentStore, posts)
	accounts := blog.NewAccounts(userStore, cfg.AdminEmails)
	dashboard := blog.NewDashboard(postStore, userStore, commentStore)

	// S3-compatible object storage is optional; uploads answer 503 without it.
	storageClient, err := storage.New(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicURL)
	if err != nil {
		return fmt.Errorf("init s3 storage: %w", err)
	}
	if storageClient != nil {
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured, uploads disabled")
	}

	aiRegistry := ai.NewRegistry(cfg.AIProvider, map[string]ai.ProviderConfig{
		"grok":   {APIKey: cfg.GrokKey, Model: cfg.GrokModel, BaseURL: cfg.GrokBaseURL},
		"openai": {APIKey: cfg.OpenAIKey, Model: cfg.OpenAIModel, BaseURL: cfg.OpenAIBaseURL},
		"claude": {APIKey: cfg.ClaudeKey, Model: cfg.ClaudeModel, BaseURL: cfg.ClaudeBaseURL},
	})
	slog.Info("ai providers initialized", "active", aiRegistry.ActiveName(), "available", aiRegistry.Available())

	publicHandlers := handlers.NewPublic(categories, posts, comments, settings)
	adminHandlers := handlers.NewAdmin(categories, posts, settings, accounts, dashboard, storageClient, aiRegistry)
	authHandlers := handlers.NewAuth(sessionStore, accounts, cfg.SiteURL, map[models.OAuthProvider]handlers.OAuthCredentials{
		models.ProviderGitHub: {ClientID: cfg.GitHubClientID, ClientSecret: cfg.GitHubClientSecret},
		models.ProviderGoogle: {ClientID: cfg.GoogleClientID, ClientSecret: cfg.GoogleClientSecret},
	}, cfg.SecureCookies())

	r := router.New(sessionStore, accounts, publicHandlers, adminHandlers, authHandlers, router.Options{
		TrustedOrigins:  append([]string{cfg.SiteURL}, cfg.TrustedOrigins...),
		HSTS:            cfg.SecureCookies(),
		CommentLimiter:  middleware.NewRateLimiter(10, time.Minute),
		MetadataLimiter: middleware.NewRateLimiter(10, time.Minute),
	})

	// WriteTimeout must accommodate the metadata endpoint, which waits on
	// an LLM response.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	}

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// newQueryCache picks the query cache backend. The memory backend suits a
// single instance; several instances must share Valkey so invalidations
// reach all of them.
func newQueryCache(cfg *config.Config, client *redis.Client) (*cache.Cache, error) {
	if cfg.CacheBackend == "memory" {
		backend, err := cache.NewMemoryBackend(cache.DefaultMemoryEntries)
		if err != nil {
			return nil, fmt.Errorf("init memory cache: %w", err)
		}
		slog.Info("query cache in memory", "entries", cache.DefaultMemoryEntries)
		return cache.New(backend), nil
	}
	return cache.New(cache.NewValkeyBackend(client)), nil
}
