// Package storage provides FastFile's on-disk file layer: safe resolution of
// user-supplied paths into each user's storage subtree, and the filesystem
// operations (upload, walk, search, delete, streaming) the services build on.
package storage

import (
	"path/filepath"
	"strings"

	"github.com/fastfile/fastfile/pkg/models"
)

// Resolver maps user-relative paths to absolute on-disk locations under a
// per-user root. Resolution is pure: it performs no filesystem I/O, so it is
// safe to call before any existence check or store lookup.
type Resolver struct {
	root string
}

// NewResolver creates a Resolver over the given storage root. The root is
// cleaned to an absolute form once so every resolved path shares the same
// canonical prefix.
func NewResolver(root string) (*Resolver, error) {
	if root == "" {
		return nil, models.ErrInvalidPath
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	return &Resolver{root: filepath.Clean(abs)}, nil
}

// Root returns the storage root all user subtrees live under.
func (r *Resolver) Root() string {
	return r.root
}

// UserRoot returns the absolute root of one user's storage subtree.
func (r *Resolver) UserRoot(userID string) string {
	return filepath.Join(r.root, userID)
}

// Resolve maps a user-relative path to an absolute location inside the
// user's subtree. It rejects NUL bytes, absolute paths, and any path that
// would escape the subtree after normalization.
func (r *Resolver) Resolve(userID, relPath string) (string, error) {
	if userID == "" || strings.ContainsRune(userID, 0) || strings.ContainsAny(userID, "/\\") {
		return "", models.ErrInvalidPath
	}
	if strings.ContainsRune(relPath, 0) {
		return "", models.ErrInvalidPath
	}
	if filepath.IsAbs(relPath) || strings.HasPrefix(relPath, "/") || strings.HasPrefix(relPath, "\\") {
		return "", models.ErrInvalidPath
	}

	userRoot := r.UserRoot(userID)
	joined := filepath.Clean(filepath.Join(userRoot, filepath.FromSlash(relPath)))

	if !isWithin(userRoot, joined) {
		return "", models.ErrInvalidPath
	}

	return joined, nil
}

// Rel converts an absolute path inside the user's subtree back to the
// user-relative form used in API responses (slash-separated).
func (r *Resolver) Rel(userID, absPath string) (string, error) {
	userRoot := r.UserRoot(userID)
	if !isWithin(userRoot, absPath) {
		return "", models.ErrInvalidPath
	}
	rel, err := filepath.Rel(userRoot, absPath)
	if err != nil {
		return "", models.ErrInvalidPath
	}
	return filepath.ToSlash(rel), nil
}

// isWithin reports whether candidate is root itself or lives under it.
func isWithin(root, candidate string) bool {
	root = filepath.Clean(root)
	candidate = filepath.Clean(candidate)
	if root == candidate {
		return true
	}
	sep := string(filepath.Separator)
	if !strings.HasSuffix(root, sep) {
		root += sep
	}
	return strings.HasPrefix(candidate, root)
}
