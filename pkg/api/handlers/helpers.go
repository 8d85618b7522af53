package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fastfile/fastfile/internal/logger"
	"github.com/fastfile/fastfile/pkg/models"
)

// decodeJSONBody decodes a JSON request body into the provided pointer.
// Returns true if successful, false if decoding fails (error response is written automatically).
func decodeJSONBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		BadRequest(w, "Invalid request body")
		return false
	}
	return true
}

// writeServiceError maps service-layer sentinel errors onto problem
// responses. Every handler funnels its non-nil errors through here so the
// status mapping lives in one place:
//
//	ErrInvalidArgument, ErrInvalidPath  -> 400
//	ErrInvalidCredentials              -> 401
//	ErrForbidden                       -> 403
//	not-found sentinels                -> 404
//	ErrDuplicate*, ErrFileExists       -> 409
//	ErrQuotaExceeded                   -> 413
//	anything else                      -> 500 (logged, detail withheld)
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidArgument), errors.Is(err, models.ErrInvalidPath):
		BadRequest(w, err.Error())
	case errors.Is(err, models.ErrInvalidCredentials):
		Unauthorized(w, "Invalid username or password")
	case errors.Is(err, models.ErrForbidden):
		Forbidden(w, "You do not have access to this resource")
	case errors.Is(err, models.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, models.ErrLinkNotFound):
		NotFound(w, "Link not found")
	case errors.Is(err, models.ErrFileNotFound):
		NotFound(w, "File not found")
	case errors.Is(err, models.ErrDuplicateUser):
		Conflict(w, "Username or email already in use")
	case errors.Is(err, models.ErrDuplicateLink), errors.Is(err, models.ErrFileExists):
		Conflict(w, err.Error())
	case errors.Is(err, models.ErrQuotaExceeded):
		WriteProblem(w, http.StatusRequestEntityTooLarge, "Quota Exceeded", "Storage quota exceeded")
	default:
		logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		InternalServerError(w, "Internal error")
	}
}
