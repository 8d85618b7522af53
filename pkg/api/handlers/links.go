package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fastfile/fastfile/pkg/api/middleware"
	"github.com/fastfile/fastfile/pkg/links"
)

// LinkHandler handles link-sharing API endpoints.
type LinkHandler struct {
	links *links.Service
}

// NewLinkHandler creates a new LinkHandler.
func NewLinkHandler(linkSvc *links.Service) *LinkHandler {
	return &LinkHandler{links: linkSvc}
}

// CreateLinkRequest is the request body for POST /api/v1/links.
// Public links ignore Viewers; private links require at least one viewer.
type CreateLinkRequest struct {
	Path    string   `json:"path"`
	Public  bool     `json:"public"`
	Viewers []string `json:"viewers,omitempty"`
}

// UpdateViewersRequest is the request body for PUT /api/v1/links/{token}/viewers.
type UpdateViewersRequest struct {
	Viewers []string `json:"viewers"`
}

// Create handles POST /api/v1/links.
// Mints a share link for one of the requester's files. Creating a link for a
// path that already has one returns the existing link unchanged.
func (h *LinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "Authentication required")
		return
	}

	var req CreateLinkRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.Path == "" {
		BadRequest(w, "Field 'path' is required")
		return
	}

	var (
		info *links.LinkInfo
		err  error
	)
	if req.Public {
		info, err = h.links.CreateLink(r.Context(), claims.UserID, req.Path, true)
	} else {
		if len(req.Viewers) == 0 {
			BadRequest(w, "Private links need at least one viewer")
			return
		}
		info, err = h.links.CreatePrivateLink(r.Context(), claims.UserID, req.Path, req.Viewers)
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteJSONCreated(w, info)
}

// Get handles GET /api/v1/links/{token}.
// Public links resolve for any authenticated user; private links only for
// the owner or a granted viewer.
func (h *LinkHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "Authentication required")
		return
	}

	info, err := h.links.Lookup(r.Context(), chi.URLParam(r, "token"), claims.UserID, claims.Email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteJSONOK(w, info)
}

// Download handles GET /api/v1/links/{token}/download.
// Streams the linked file under the same access rules as Get.
func (h *LinkHandler) Download(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "Authentication required")
		return
	}

	reader, info, err := h.links.Download(r.Context(), chi.URLParam(r, "token"), claims.UserID, claims.Email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	defer reader.Close()

	serveFileStream(w, info.Name(), info.Size(), reader)
}

// UpdateViewers handles PUT /api/v1/links/{token}/viewers.
// Replaces the viewer set of a private link. Owner-only.
func (h *LinkHandler) UpdateViewers(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "Authentication required")
		return
	}

	var req UpdateViewersRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	info, err := h.links.UpdateViewers(r.Context(), chi.URLParam(r, "token"), claims.UserID, req.Viewers)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteJSONOK(w, info)
}

// Delete handles DELETE /api/v1/links/{token}.
// Removes a link and all its viewer grants. Owner-only.
func (h *LinkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "Authentication required")
		return
	}

	if err := h.links.RemoveLink(r.Context(), chi.URLParam(r, "token"), claims.UserID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteNoContent(w)
}

// List handles GET /api/v1/links.
// Lists the requester's own links, stale ones included.
func (h *LinkHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "Authentication required")
		return
	}

	infos, err := h.links.MyLinks(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteJSONOK(w, infos)
}

// SharedWithMe handles GET /api/v1/links/shared-with-me.
// Lists links whose viewer grants include the requester's email.
func (h *LinkHandler) SharedWithMe(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "Authentication required")
		return
	}

	infos, err := h.links.SharedToMe(r.Context(), claims.Email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteJSONOK(w, infos)
}
