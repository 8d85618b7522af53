package links

import (
	"context"

	"github.com/fastfile/fastfile/internal/logger"
)

// Cascade cleanup. The file and user services call these before committing
// the corresponding filesystem change so a failed cleanup aborts the whole
// operation instead of leaving dangling links.

// OnFileDeleted removes all links (and their viewer grants) bound to the
// deleted path. Safe to call for paths that never had a link.
func (s *Service) OnFileDeleted(ctx context.Context, absPath string) error {
	return s.store.DeleteLinksByPath(ctx, absPath)
}

// OnSubtreeDeleted removes all links under a directory subtree, covering
// every file the recursive delete is about to take with it.
func (s *Service) OnSubtreeDeleted(ctx context.Context, absPath string) error {
	return s.store.DeleteLinksByPathPrefix(ctx, absPath)
}

// OnUserDeleted removes every link the user owns, grants included. Called
// before the user row and storage subtree are removed so no link ever
// references a deleted owner.
func (s *Service) OnUserDeleted(ctx context.Context, userID string) error {
	if err := s.store.DeleteLinksByOwner(ctx, userID); err != nil {
		return err
	}
	logger.Debug("removed links for deleted user", "user_id", userID)
	return nil
}
