// Package files implements per-user file operations: upload with quota
// enforcement, listing, search, download, directory management, and deletion
// with link cascade cleanup.
package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fastfile/fastfile/internal/logger"
	"github.com/fastfile/fastfile/pkg/links"
	"github.com/fastfile/fastfile/pkg/models"
	"github.com/fastfile/fastfile/pkg/storage"
	"github.com/fastfile/fastfile/pkg/store"
)

// Quota resolves a storage tier name to its byte limit.
type Quota interface {
	Limit(tier string) int64
}

// Service implements file operations for a single storage root. Every path
// it accepts is user-relative; the resolver maps it into the user's subtree
// and rejects escapes before any disk access happens.
type Service struct {
	store    store.UserStore
	links    *links.Service
	resolver *storage.Resolver
	fs       *storage.Filesystem
	quota    Quota
}

// NewService creates a file Service.
func NewService(s store.UserStore, linkSvc *links.Service, resolver *storage.Resolver, fs *storage.Filesystem, quota Quota) *Service {
	return &Service{store: s, links: linkSvc, resolver: resolver, fs: fs, quota: quota}
}

// Upload stores content at the user-relative path, creating parent
// directories as needed. An existing entry at the path is never overwritten.
//
// declaredSize is the client-declared content length, checked against the
// tier quota before any bytes hit the disk. The quota is re-checked against
// actual usage after the write, so an understated declaration still cannot
// push the user over the limit.
func (s *Service) Upload(ctx context.Context, userID, relPath string, content io.Reader, declaredSize int64) (*storage.FileInfo, error) {
	absPath, err := s.resolver.Resolve(userID, relPath)
	if err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	limit := s.quota.Limit(string(user.GetTier()))
	if declaredSize > 0 && user.UsedStorage+declaredSize > limit {
		return nil, models.ErrQuotaExceeded
	}

	written, err := s.fs.Save(absPath, content)
	if err != nil {
		return nil, err
	}

	used, err := s.recomputeUsage(ctx, userID)
	if err != nil {
		return nil, err
	}
	if used > limit {
		// The declared size lied. Roll the write back.
		if delErr := s.fs.Delete(absPath); delErr != nil {
			logger.Error("failed to roll back over-quota upload", "path", absPath, "error", delErr)
		} else if _, err := s.recomputeUsage(ctx, userID); err != nil {
			logger.Warn("failed to recompute usage after rollback", "user_id", userID, "error", err)
		}
		return nil, models.ErrQuotaExceeded
	}

	logger.Debug("file uploaded", "user_id", userID, "path", relPath, "bytes", written)
	return s.fileInfo(userID, absPath)
}

// Stat returns metadata for a single entry.
func (s *Service) Stat(ctx context.Context, userID, relPath string) (*storage.FileInfo, error) {
	absPath, err := s.resolver.Resolve(userID, relPath)
	if err != nil {
		return nil, err
	}
	return s.fileInfo(userID, absPath)
}

// List returns the immediate children of a directory, files and
// subdirectories alike. Listing the user root of an account that has not
// uploaded anything yet returns an empty slice.
func (s *Service) List(ctx context.Context, userID, relPath string) ([]storage.FileInfo, error) {
	absPath, err := s.resolver.Resolve(userID, relPath)
	if err != nil {
		return nil, err
	}

	entries, err := s.fs.List(absPath)
	if err != nil {
		if errors.Is(err, models.ErrFileNotFound) && isUserRoot(relPath) {
			return []storage.FileInfo{}, nil
		}
		return nil, err
	}

	infos := make([]storage.FileInfo, 0, len(entries))
	for _, entry := range entries {
		info, err := s.fileInfo(userID, filepath.Join(absPath, entry.Name()))
		if err != nil {
			return nil, err
		}
		infos = append(infos, *info)
	}
	return infos, nil
}

// Search returns every entry under the user's subtree whose name contains
// the given substring. An empty pattern is rejected rather than matching
// everything.
func (s *Service) Search(ctx context.Context, userID, name string) ([]storage.FileInfo, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: search pattern is required", models.ErrInvalidArgument)
	}

	root := s.resolver.UserRoot(userID)
	matches, err := s.fs.Search(root, name)
	if err != nil {
		if errors.Is(err, models.ErrFileNotFound) {
			return []storage.FileInfo{}, nil
		}
		return nil, err
	}

	infos := make([]storage.FileInfo, 0, len(matches))
	for _, match := range matches {
		info, err := s.fileInfo(userID, match)
		if err != nil {
			return nil, err
		}
		infos = append(infos, *info)
	}
	return infos, nil
}

// Download opens the user's file for reading. The caller owns the returned
// reader and must close it.
func (s *Service) Download(ctx context.Context, userID, relPath string) (io.ReadCloser, os.FileInfo, error) {
	absPath, err := s.resolver.Resolve(userID, relPath)
	if err != nil {
		return nil, nil, err
	}
	return s.fs.Open(absPath)
}

// Mkdir creates a directory (and any missing parents) in the user's subtree.
func (s *Service) Mkdir(ctx context.Context, userID, relPath string) (*storage.FileInfo, error) {
	if isUserRoot(relPath) {
		return nil, fmt.Errorf("%w: directory path is required", models.ErrInvalidArgument)
	}

	absPath, err := s.resolver.Resolve(userID, relPath)
	if err != nil {
		return nil, err
	}
	if s.fs.Exists(absPath) {
		return nil, models.ErrFileExists
	}
	if err := s.fs.MkdirAll(absPath); err != nil {
		return nil, err
	}
	return s.fileInfo(userID, absPath)
}

// Delete removes a single file or an empty directory, deleting any links
// bound to the path first so a link never outlives its target. Directories
// with children need DeleteRecursive.
func (s *Service) Delete(ctx context.Context, userID, relPath string) error {
	if isUserRoot(relPath) {
		return fmt.Errorf("%w: cannot delete the storage root", models.ErrInvalidArgument)
	}

	absPath, err := s.resolver.Resolve(userID, relPath)
	if err != nil {
		return err
	}
	info, err := s.fs.Stat(absPath)
	if err != nil {
		return err
	}
	if info.IsDir() {
		// Reject before the link cascade runs, so a doomed delete cannot
		// take the directory's own link with it.
		entries, err := s.fs.List(absPath)
		if err != nil {
			return err
		}
		if len(entries) > 0 {
			return fmt.Errorf("%w: directory is not empty, delete it recursively", models.ErrInvalidArgument)
		}
	}

	if err := s.links.OnFileDeleted(ctx, absPath); err != nil {
		return fmt.Errorf("failed to remove links: %w", err)
	}
	if err := s.fs.Delete(absPath); err != nil {
		return err
	}

	_, err = s.recomputeUsage(ctx, userID)
	return err
}

// DeleteRecursive removes a directory subtree along with every link bound to
// a path inside it. The user root itself is off limits; deleting the whole
// account goes through the user service.
func (s *Service) DeleteRecursive(ctx context.Context, userID, relPath string) error {
	if isUserRoot(relPath) {
		return fmt.Errorf("%w: cannot delete the storage root", models.ErrInvalidArgument)
	}

	absPath, err := s.resolver.Resolve(userID, relPath)
	if err != nil {
		return err
	}
	if !s.fs.Exists(absPath) {
		return models.ErrFileNotFound
	}

	if err := s.links.OnSubtreeDeleted(ctx, absPath); err != nil {
		return fmt.Errorf("failed to remove links: %w", err)
	}
	if err := s.fs.DeleteRecursive(absPath); err != nil {
		return err
	}

	_, err = s.recomputeUsage(ctx, userID)
	return err
}

// Usage returns the user's current storage consumption in bytes, recomputed
// from disk and persisted.
func (s *Service) Usage(ctx context.Context, userID string) (int64, error) {
	return s.recomputeUsage(ctx, userID)
}

// recomputeUsage walks the user's subtree, persists the total, and returns it.
func (s *Service) recomputeUsage(ctx context.Context, userID string) (int64, error) {
	used, err := s.fs.UsageBytes(s.resolver.UserRoot(userID))
	if err != nil {
		return 0, fmt.Errorf("failed to compute storage usage: %w", err)
	}
	if err := s.store.UpdateUsedStorage(ctx, userID, used); err != nil {
		return 0, err
	}
	return used, nil
}

// fileInfo builds the API-facing view of one on-disk entry.
func (s *Service) fileInfo(userID, absPath string) (*storage.FileInfo, error) {
	info, err := s.fs.Stat(absPath)
	if err != nil {
		return nil, err
	}
	rel, err := s.resolver.Rel(userID, absPath)
	if err != nil {
		return nil, err
	}
	return &storage.FileInfo{
		Name:    info.Name(),
		Path:    rel,
		Size:    info.Size(),
		Dir:     info.IsDir(),
		ModTime: info.ModTime(),
	}, nil
}

// isUserRoot reports whether the user-relative path refers to the subtree
// root itself.
func isUserRoot(relPath string) bool {
	trimmed := strings.Trim(strings.TrimSpace(relPath), "/")
	return trimmed == "" || trimmed == "."
}
