package httpapi

import (
	"io"
	"net/http"
	"strings"

	"github.com/kiwabc123/supply-admin/internal/audit"
	"github.com/kiwabc123/supply-admin/internal/blob"
)

const maxUploadBytes = 5 << 20

// handleUpload accepts a multipart file and stores it in the blob store.
// Reachable only through requireRole, so the caller is already verified.
func (a *API) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if a.blobs == nil {
		writeError(w, r, http.StatusServiceUnavailable, "uploads are not configured")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid multipart body")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "could not read file")
		return
	}
	if len(data) > maxUploadBytes {
		writeError(w, r, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		writeError(w, r, http.StatusBadRequest, "only image uploads are accepted")
		return
	}

	scope := strings.TrimSpace(r.FormValue("scope"))
	if scope == "" {
		scope = "products"
	}
	owner := strings.TrimSpace(r.FormValue("owner_id"))
	if owner == "" {
		writeError(w, r, http.StatusBadRequest, "owner_id field is required")
		return
	}

	key := blob.ObjectKey(scope, owner, header.Filename)
	url, err := a.blobs.Upload(r.Context(), key, data, contentType)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "upload failed")
		return
	}

	_ = audit.LogEvent(r.Context(), "blob.upload", map[string]any{
		"key":   key,
		"bytes": len(data),
	})
	writeJSON(w, http.StatusCreated, map[string]any{
		"key": key,
		"url": url,
	})
}
