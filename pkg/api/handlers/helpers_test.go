package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fastfile/fastfile/pkg/models"
)

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{models.ErrInvalidArgument, http.StatusBadRequest},
		{models.ErrInvalidPath, http.StatusBadRequest},
		{models.ErrInvalidCredentials, http.StatusUnauthorized},
		{models.ErrForbidden, http.StatusForbidden},
		{models.ErrUserNotFound, http.StatusNotFound},
		{models.ErrLinkNotFound, http.StatusNotFound},
		{models.ErrFileNotFound, http.StatusNotFound},
		{models.ErrDuplicateUser, http.StatusConflict},
		{models.ErrDuplicateLink, http.StatusConflict},
		{models.ErrFileExists, http.StatusConflict},
		{models.ErrQuotaExceeded, http.StatusRequestEntityTooLarge},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.err.Error(), func(t *testing.T) {
			req := httptest.NewRequest("GET", "/test", nil)
			w := httptest.NewRecorder()

			writeServiceError(w, req, tc.err)

			if w.Code != tc.status {
				t.Errorf("Expected status %d, got %d", tc.status, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != ContentTypeProblemJSON {
				t.Errorf("Expected Content-Type %s, got %s", ContentTypeProblemJSON, ct)
			}

			var problem Problem
			if err := json.NewDecoder(w.Body).Decode(&problem); err != nil {
				t.Fatalf("Failed to decode problem: %v", err)
			}
			if problem.Status != tc.status {
				t.Errorf("Expected problem status %d, got %d", tc.status, problem.Status)
			}
		})
	}
}

func TestWriteServiceError_WrappedError(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	writeServiceError(w, req, fmt.Errorf("mint link: %w", models.ErrFileNotFound))

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestWriteServiceError_InternalHidesDetail(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	writeServiceError(w, req, errors.New("dsn=postgres://secret"))

	var problem Problem
	if err := json.NewDecoder(w.Body).Decode(&problem); err != nil {
		t.Fatalf("Failed to decode problem: %v", err)
	}
	if strings.Contains(problem.Detail, "secret") {
		t.Errorf("Expected internal detail to be withheld, got %q", problem.Detail)
	}
}

func TestDecodeJSONBody(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	t.Run("valid body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/test", strings.NewReader(`{"name":"x"}`))
		w := httptest.NewRecorder()

		var p payload
		if !decodeJSONBody(w, req, &p) {
			t.Fatal("Expected decode to succeed")
		}
		if p.Name != "x" {
			t.Errorf("Expected name 'x', got '%s'", p.Name)
		}
	})

	t.Run("malformed body writes 400", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/test", strings.NewReader(`{"name":`))
		w := httptest.NewRecorder()

		var p payload
		if decodeJSONBody(w, req, &p) {
			t.Fatal("Expected decode to fail")
		}
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
	})
}
