// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"inkwell/internal/storage"
)

// multipartOverhead is the slack allowed on top of the file for form
// boundaries and headers.
const multipartOverhead = 1 << 20

// Upload stores an image from the multipart field "file" and returns its
// public URL.
func (a *Admin) Upload(w http.ResponseWriter, r *http.Request) {
	if a.storage == nil {
		writeErrorMsg(w, http.StatusServiceUnavailable, "Object storage is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxUploadSize+multipartOverhead)
	if err := r.ParseMultipartForm(storage.MaxUploadSize); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeErrorMsg(w, http.StatusBadRequest, storage.ErrTooLarge.Error())
			return
		}
		writeErrorMsg(w, http.StatusBadRequest, storage.ErrEmpty.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeErrorMsg(w, http.StatusBadRequest, storage.ErrEmpty.Error())
		return
	}
	defer file.Close()

	url, err := a.storage.UploadImage(r.Context(), header.Filename, file)
	switch {
	case errors.Is(err, storage.ErrEmpty), errors.Is(err, storage.ErrNotImage), errors.Is(err, storage.ErrTooLarge):
		writeErrorMsg(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		slog.Error("upload failed", "error", err, "filename", header.Filename)
		writeErrorMsg(w, http.StatusInternalServerError, "Failed to upload file")
		return
	}

	slog.Info("image uploaded", "url", url, "size", header.Size)
	writeJSON(w, http.StatusOK, envelope{"url": url})
}
