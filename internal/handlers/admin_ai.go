// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"inkwell/internal/ai"
)

type metadataRequest struct {
	Content string `json:"content" validate:"required,max=200000"`
}

// GenerateMetadata asks the active AI provider for an excerpt, slug and
// tags for a draft body. Existing tag names are offered so the model can
// reuse them.
func (a *Admin) GenerateMetadata(w http.ResponseWriter, r *http.Request) {
	var req metadataRequest
	if err := decodeJSON(w, r, a.validate, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if a.ai == nil {
		writeErrorMsg(w, http.StatusServiceUnavailable, "AI provider is not configured")
		return
	}
	provider, err := a.ai.Active()
	if err != nil {
		writeErrorMsg(w, http.StatusServiceUnavailable, "AI provider is not configured")
		return
	}

	tags, err := a.tags.TagNames(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	meta, err := ai.GenerateMetadata(r.Context(), provider, req.Content, tags)
	if err != nil {
		slog.Error("metadata generation failed", "provider", provider.Name(), "error", err)
		writeErrorMsg(w, http.StatusBadGateway, "Failed to generate metadata")
		return
	}

	writeJSON(w, http.StatusOK, meta)
}
