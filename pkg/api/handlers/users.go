package handlers

import (
	"net/http"

	"github.com/fastfile/fastfile/pkg/api/middleware"
	"github.com/fastfile/fastfile/pkg/users"
)

// UserHandler handles account API endpoints.
type UserHandler struct {
	users *users.Service
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userSvc *users.Service) *UserHandler {
	return &UserHandler{users: userSvc}
}

// Profile handles GET /api/v1/users/me.
// Returns the account with storage usage recomputed from disk.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "Authentication required")
		return
	}

	user, err := h.users.Profile(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteJSONOK(w, userToResponse(user))
}

// Delete handles DELETE /api/v1/users/me.
// Removes the account, all its links and grants, and its files. Tokens for
// the account stop working as soon as the user row is gone.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "Authentication required")
		return
	}

	if err := h.users.Delete(r.Context(), claims.UserID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteNoContent(w)
}
