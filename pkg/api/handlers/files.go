package handlers

import (
	"io"
	"net/http"
	"path"
	"strconv"

	"github.com/fastfile/fastfile/pkg/api/middleware"
	"github.com/fastfile/fastfile/pkg/files"
)

// FileHandler handles file API endpoints. The target path always arrives in
// the "path" query parameter, user-relative and slash-separated; the service
// layer rejects anything that escapes the user's subtree.
type FileHandler struct {
	files          *files.Service
	maxUploadBytes int64
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(fileSvc *files.Service, maxUploadBytes int64) *FileHandler {
	return &FileHandler{files: fileSvc, maxUploadBytes: maxUploadBytes}
}

// Upload handles POST /api/v1/files.
// Streams the request body to the path in the "path" query parameter.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "Authentication required")
		return
	}

	relPath := r.URL.Query().Get("path")
	if relPath == "" {
		BadRequest(w, "Query parameter 'path' is required")
		return
	}

	body := http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	defer body.Close()

	info, err := h.files.Upload(r.Context(), claims.UserID, relPath, body, r.ContentLength)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteJSONCreated(w, info)
}

// List handles GET /api/v1/files.
// Lists the directory in the "path" query parameter, defaulting to the root.
func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "Authentication required")
		return
	}

	infos, err := h.files.List(r.Context(), claims.UserID, r.URL.Query().Get("path"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteJSONOK(w, infos)
}

// Search handles GET /api/v1/files/search?name=<substring>.
func (h *FileHandler) Search(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "Authentication required")
		return
	}

	infos, err := h.files.Search(r.Context(), claims.UserID, r.URL.Query().Get("name"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteJSONOK(w, infos)
}

// Download handles GET /api/v1/files/download.
// Streams the file in the "path" query parameter.
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "Authentication required")
		return
	}

	relPath := r.URL.Query().Get("path")
	if relPath == "" {
		BadRequest(w, "Query parameter 'path' is required")
		return
	}

	reader, info, err := h.files.Download(r.Context(), claims.UserID, relPath)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	defer reader.Close()

	serveFileStream(w, info.Name(), info.Size(), reader)
}

// Mkdir handles POST /api/v1/files/directories.
type MkdirRequest struct {
	Path string `json:"path"`
}

func (h *FileHandler) Mkdir(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "Authentication required")
		return
	}

	var req MkdirRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	info, err := h.files.Mkdir(r.Context(), claims.UserID, req.Path)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteJSONCreated(w, info)
}

// Delete handles DELETE /api/v1/files.
// Removes the entry in the "path" query parameter; "recursive=true" takes a
// whole directory subtree. Links for the deleted paths go with them.
func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "Authentication required")
		return
	}

	relPath := r.URL.Query().Get("path")
	if relPath == "" {
		BadRequest(w, "Query parameter 'path' is required")
		return
	}

	recursive, _ := strconv.ParseBool(r.URL.Query().Get("recursive"))

	var err error
	if recursive {
		err = h.files.DeleteRecursive(r.Context(), claims.UserID, relPath)
	} else {
		err = h.files.Delete(r.Context(), claims.UserID, relPath)
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteNoContent(w)
}

// serveFileStream writes a download response with attachment headers.
func serveFileStream(w http.ResponseWriter, name string, size int64, reader io.Reader) {
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+path.Base(name)+`"`)
	if size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}
	_, _ = io.Copy(w, reader)
}
