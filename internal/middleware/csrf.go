// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"net/url"
	"strings"
)

// CSRF rejects cross-site state-changing requests. Browsers send Origin on
// every POST, PUT, PATCH and DELETE; a request whose Origin (or Referer,
// when Origin is absent) does not match the request host or one of the
// trusted origins is refused with 403. Requests that carry neither header
// come from non-browser clients and are let through, since the session
// cookie is SameSite=Lax.
func CSRF(trusted ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(trusted))
	for _, o := range trusted {
		if o = normalizeOrigin(o); o != "" {
			allowed[o] = true
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			if r.Header.Get("Sec-Fetch-Site") == "same-origin" {
				next.ServeHTTP(w, r)
				return
			}

			origin := r.Header.Get("Origin")
			if origin == "" {
				origin = r.Header.Get("Referer")
			}
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			o := normalizeOrigin(origin)
			if o == "" || (!allowed[o] && !sameHost(o, r.Host)) {
				jsonError(w, http.StatusForbidden, "Cross-site request rejected")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// normalizeOrigin reduces a URL to scheme://host in lowercase.
func normalizeOrigin(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Scheme + "://" + u.Host)
}

func sameHost(origin, host string) bool {
	_, h, ok := strings.Cut(origin, "://")
	return ok && strings.EqualFold(h, host)
}
