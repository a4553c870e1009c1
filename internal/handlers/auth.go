// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"

	"inkwell/internal/blog"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/session"
)

const (
	// stateCookieName holds the OAuth state between login and callback.
	stateCookieName = "inkwell_oauth_state"
	stateMaxAge     = 10 * 60

	githubAPI         = "https://api.github.com"
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// OAuthCredentials are the client credentials for one provider.
type OAuthCredentials struct {
	ClientID     string
	ClientSecret string
}

// Auth groups the sign-in, sign-out and session handlers.
type Auth struct {
	sessions  *session.Store
	accounts  *blog.Accounts
	providers map[models.OAuthProvider]*oauth2.Config
	secure    bool

	githubAPI         string
	googleUserInfoURL string
}

// NewAuth creates the auth handler group. Providers with an empty client ID
// are left out. siteURL is the public base URL used for callbacks.
func NewAuth(sessions *session.Store, accounts *blog.Accounts, siteURL string, creds map[models.OAuthProvider]OAuthCredentials, secure bool) *Auth {
	siteURL = strings.TrimRight(siteURL, "/")
	a := &Auth{
		sessions:          sessions,
		accounts:          accounts,
		providers:         make(map[models.OAuthProvider]*oauth2.Config),
		secure:            secure,
		githubAPI:         githubAPI,
		googleUserInfoURL: googleUserInfoURL,
	}

	for provider, c := range creds {
		if c.ClientID == "" {
			continue
		}
		cfg := &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURL:  fmt.Sprintf("%s/auth/%s/callback", siteURL, provider),
		}
		switch provider {
		case models.ProviderGitHub:
			cfg.Endpoint = github.Endpoint
			cfg.Scopes = []string{"read:user", "user:email"}
		case models.ProviderGoogle:
			cfg.Endpoint = google.Endpoint
			cfg.Scopes = []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			}
		default:
			slog.Warn("unknown oauth provider ignored", "provider", provider)
			continue
		}
		a.providers[provider] = cfg
	}
	return a
}

// Providers lists the configured sign-in providers.
func (a *Auth) Providers(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(a.providers))
	for _, p := range []models.OAuthProvider{models.ProviderGitHub, models.ProviderGoogle} {
		if _, ok := a.providers[p]; ok {
			names = append(names, string(p))
		}
	}
	writeJSON(w, http.StatusOK, envelope{"providers": names})
}

// Login redirects to the provider's consent screen.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	cfg, ok := a.providers[models.OAuthProvider(chi.URLParam(r, "provider"))]
	if !ok {
		writeErrorMsg(w, http.StatusNotFound, "Unknown sign-in provider")
		return
	}

	state, err := generateState()
	if err != nil {
		slog.Error("oauth state generation failed", "error", err)
		writeErrorMsg(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/auth",
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   stateMaxAge,
	})
	http.Redirect(w, r, cfg.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// Callback completes the code exchange, signs the user in and starts a
// session.
func (a *Auth) Callback(w http.ResponseWriter, r *http.Request) {
	provider := models.OAuthProvider(chi.URLParam(r, "provider"))
	cfg, ok := a.providers[provider]
	if !ok {
		writeErrorMsg(w, http.StatusNotFound, "Unknown sign-in provider")
		return
	}

	cookie, err := r.Cookie(stateCookieName)
	state := r.URL.Query().Get("state")
	if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(state)) != 1 {
		writeErrorMsg(w, http.StatusBadRequest, "Invalid OAuth state")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/auth",
		HttpOnly: true,
		Secure:   a.secure,
		MaxAge:   -1,
	})

	if e := r.URL.Query().Get("error"); e != "" {
		writeErrorMsg(w, http.StatusBadRequest, "Sign-in was cancelled")
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		writeErrorMsg(w, http.StatusBadRequest, "Missing authorization code")
		return
	}

	token, err := cfg.Exchange(r.Context(), code)
	if err != nil {
		slog.Error("oauth exchange failed", "provider", provider, "error", err)
		writeErrorMsg(w, http.StatusBadGateway, "Sign-in failed")
		return
	}

	client := cfg.Client(r.Context(), token)
	var profile *models.OAuthProfile
	switch provider {
	case models.ProviderGitHub:
		profile, err = a.githubProfile(r.Context(), client)
	case models.ProviderGoogle:
		profile, err = a.googleProfile(r.Context(), client)
	}
	if err != nil {
		slog.Error("oauth profile fetch failed", "provider", provider, "error", err)
		writeErrorMsg(w, http.StatusBadGateway, "Sign-in failed")
		return
	}

	user, err := a.accounts.SignIn(r.Context(), *profile)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if _, err := a.sessions.Create(r.Context(), w, session.FromUser(user)); err != nil {
		slog.Error("session create failed", "error", err)
		writeErrorMsg(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	slog.Info("user signed in", "user_id", user.ID, "provider", provider, "role", user.Role)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout destroys the session.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Error("session destroy failed", "error", err)
	}
	writeSuccess(w)
}

// Session returns the signed-in user, or null.
func (a *Auth) Session(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, envelope{"user": middleware.SessionFromCtx(r.Context())})
}

type githubUser struct {
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

func (a *Auth) githubProfile(ctx context.Context, client *http.Client) (*models.OAuthProfile, error) {
	var u githubUser
	if err := getJSON(ctx, client, a.githubAPI+"/user", &u); err != nil {
		return nil, err
	}

	email := u.Email
	if email == "" {
		// Private emails are only listed on the emails endpoint.
		var emails []githubEmail
		if err := getJSON(ctx, client, a.githubAPI+"/user/emails", &emails); err != nil {
			return nil, err
		}
		for _, e := range emails {
			if e.Primary && e.Verified {
				email = e.Email
				break
			}
		}
	}
	if email == "" {
		return nil, errors.New("github: no verified primary email")
	}

	name := u.Name
	if name == "" {
		name = u.Login
	}
	return &models.OAuthProfile{
		Provider: models.ProviderGitHub,
		Email:    email,
		Name:     name,
		Image:    u.AvatarURL,
		Login:    u.Login,
	}, nil
}

type googleUser struct {
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func (a *Auth) googleProfile(ctx context.Context, client *http.Client) (*models.OAuthProfile, error) {
	var u googleUser
	if err := getJSON(ctx, client, a.googleUserInfoURL, &u); err != nil {
		return nil, err
	}
	if u.Email == "" || !u.VerifiedEmail {
		return nil, errors.New("google: email not verified")
	}
	name := u.Name
	if name == "" {
		name, _, _ = strings.Cut(u.Email, "@")
	}
	return &models.OAuthProfile{
		Provider: models.ProviderGoogle,
		Email:    u.Email,
		Name:     name,
		Image:    u.Picture,
	}, nil
}

func getJSON(ctx context.Context, client *http.Client, url string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("get %s: status %d: %s", url, resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
