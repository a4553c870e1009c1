// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the JSON HTTP API. Handlers decode and
// validate the request, call a blog service with the signed-in actor and
// map service errors onto status codes.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"inkwell/internal/blog"
)

type envelope map[string]any

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", "error", err)
	}
}

func writeErrorMsg(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{"error": msg})
}

// statusFor maps a service error kind to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, blog.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, blog.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, blog.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, blog.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, blog.ErrConflict), errors.Is(err, blog.ErrHasDependents):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with the caller-facing message of err. Internal errors
// are logged and reported as a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var bad *errBadRequest
	if errors.As(err, &bad) {
		writeErrorMsg(w, http.StatusBadRequest, bad.msg)
		return
	}

	status := statusFor(err)
	msg := blog.Message(err)
	if status == http.StatusInternalServerError || msg == "" {
		slog.Error("request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
		)
		writeErrorMsg(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeErrorMsg(w, status, msg)
}

func writeSuccess(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, envelope{"success": true})
}
