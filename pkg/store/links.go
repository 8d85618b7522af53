package store

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/fastfile/fastfile/pkg/models"
)

// ============================================
// FILE LINK OPERATIONS
// ============================================

func (s *GORMStore) GetLink(ctx context.Context, token string) (*models.FileLink, error) {
	return getByField[models.FileLink](s.db, ctx, "token", token, models.ErrLinkNotFound)
}

// GetLinkWithViewers loads a link together with its viewer grants, ordered by
// grant insertion (autoincrement ID).
func (s *GORMStore) GetLinkWithViewers(ctx context.Context, token string) (*models.FileLink, error) {
	link, err := s.GetLink(ctx, token)
	if err != nil {
		return nil, err
	}
	viewers, err := s.GetLinkViewers(ctx, token)
	if err != nil {
		return nil, err
	}
	link.Viewers = viewers
	return link, nil
}

func (s *GORMStore) GetLinkByPath(ctx context.Context, path string) (*models.FileLink, error) {
	return getByField[models.FileLink](s.db, ctx, "path", path, models.ErrLinkNotFound)
}

// CreateLink persists a link and, for private links, its initial viewer
// grants in one transaction. A unique-constraint violation (token collision
// or a concurrent link on the same path) surfaces as ErrDuplicateLink with
// nothing persisted.
func (s *GORMStore) CreateLink(ctx context.Context, link *models.FileLink, viewerEmails []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Viewers").Create(link).Error; err != nil {
			if isUniqueConstraintError(err) {
				return models.ErrDuplicateLink
			}
			return err
		}

		for _, email := range viewerEmails {
			viewer := models.LinkViewer{LinkToken: link.Token, Email: email}
			if err := tx.Create(&viewer).Error; err != nil {
				if isUniqueConstraintError(err) {
					return models.ErrDuplicateLink
				}
				return err
			}
		}

		return nil
	})
}

func (s *GORMStore) ListLinksByOwner(ctx context.Context, ownerID string) ([]*models.FileLink, error) {
	links, err := listByField[models.FileLink](s.db, ctx, "owner_id", ownerID, "created_at, token")
	if err != nil {
		return nil, err
	}
	for _, link := range links {
		if link.Public {
			continue
		}
		viewers, err := s.GetLinkViewers(ctx, link.Token)
		if err != nil {
			return nil, err
		}
		link.Viewers = viewers
	}
	return links, nil
}

// ListLinksByViewerEmail returns all links that have a viewer grant for the
// given email, in grant order.
func (s *GORMStore) ListLinksByViewerEmail(ctx context.Context, email string) ([]*models.FileLink, error) {
	var links []*models.FileLink
	err := s.db.WithContext(ctx).
		Joins("JOIN link_viewers ON link_viewers.link_token = file_links.token").
		Where("link_viewers.email = ?", email).
		Order("link_viewers.id").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	return links, nil
}

func (s *GORMStore) GetLinkViewers(ctx context.Context, token string) ([]models.LinkViewer, error) {
	var viewers []models.LinkViewer
	err := s.db.WithContext(ctx).
		Where("link_token = ?", token).
		Order("id").
		Find(&viewers).Error
	if err != nil {
		return nil, err
	}
	return viewers, nil
}

// ReconcileLinkViewers applies a precomputed viewer delta atomically:
// removals first, then additions in input order. Either the whole delta
// commits or none of it does.
func (s *GORMStore) ReconcileLinkViewers(ctx context.Context, token string, toRemove, toAdd []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var link models.FileLink
		if err := tx.Where("token = ?", token).First(&link).Error; err != nil {
			return convertNotFoundError(err, models.ErrLinkNotFound)
		}

		if len(toRemove) > 0 {
			if err := tx.Where("link_token = ? AND email IN ?", token, toRemove).
				Delete(&models.LinkViewer{}).Error; err != nil {
				return err
			}
		}

		for _, email := range toAdd {
			viewer := models.LinkViewer{LinkToken: token, Email: email}
			if err := tx.Create(&viewer).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// DeleteLink removes a link and its viewer grants.
func (s *GORMStore) DeleteLink(ctx context.Context, token string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var link models.FileLink
		if err := tx.Where("token = ?", token).First(&link).Error; err != nil {
			return convertNotFoundError(err, models.ErrLinkNotFound)
		}

		if err := tx.Where("link_token = ?", token).Delete(&models.LinkViewer{}).Error; err != nil {
			return err
		}

		return tx.Delete(&link).Error
	})
}

// DeleteLinksByPath removes all links bound to exactly the given path,
// grants first. Deleting zero links is not an error: most file deletions
// have no link attached.
func (s *GORMStore) DeleteLinksByPath(ctx context.Context, path string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteLinksWhere(tx, "path = ?", path)
	})
}

// DeleteLinksByPathPrefix removes all links whose path is the given prefix
// or lives under it. Used when a directory subtree is deleted recursively.
// The prefix is a filesystem path, so LIKE metacharacters in it ("_", "%",
// "\") are escaped to match literally.
func (s *GORMStore) DeleteLinksByPathPrefix(ctx context.Context, prefix string) error {
	pattern := likeEscaper.Replace(prefix) + "/%"
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteLinksWhere(tx, `path = ? OR path LIKE ? ESCAPE '\'`, prefix, pattern)
	})
}

// likeEscaper escapes LIKE metacharacters for use under ESCAPE '\'.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// DeleteLinksByOwner removes all links owned by a user, grants first.
func (s *GORMStore) DeleteLinksByOwner(ctx context.Context, ownerID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteLinksWhere(tx, "owner_id = ?", ownerID)
	})
}

// deleteLinksWhere deletes all links matching the condition along with their
// viewer grants, inside the caller's transaction. The token list and both
// deletes see the same transaction snapshot, so a link created concurrently
// is either fully present or fully absent afterwards.
func deleteLinksWhere(tx *gorm.DB, query string, args ...any) error {
	var tokens []string
	if err := tx.Model(&models.FileLink{}).Where(query, args...).Pluck("token", &tokens).Error; err != nil {
		return err
	}
	if len(tokens) == 0 {
		return nil
	}

	if err := tx.Where("link_token IN ?", tokens).Delete(&models.LinkViewer{}).Error; err != nil {
		return err
	}

	return tx.Where("token IN ?", tokens).Delete(&models.FileLink{}).Error
}
