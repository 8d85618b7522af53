// Package links implements FastFile's file-link sharing core: minting share
// tokens bound to on-disk paths, managing viewer grants on private links,
// authorizing every mutation and read, and cascading link cleanup when files
// or users disappear.
package links

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/fastfile/fastfile/internal/logger"
	"github.com/fastfile/fastfile/pkg/models"
	"github.com/fastfile/fastfile/pkg/storage"
	"github.com/fastfile/fastfile/pkg/store"
)

// tokenAttempts bounds token regeneration on unique-constraint collisions.
// Five misses in a 128-bit space means the store is broken, not unlucky.
const tokenAttempts = 5

// Filesystem is the slice of the storage layer the link service needs.
type Filesystem interface {
	Exists(path string) bool
	Stat(path string) (os.FileInfo, error)
	Open(path string) (*os.File, os.FileInfo, error)
}

// Service implements the link lifecycle over a LinkStore and the filesystem.
type Service struct {
	store    store.LinkStore
	resolver *storage.Resolver
	fs       Filesystem
}

// NewService creates a link Service.
func NewService(s store.LinkStore, resolver *storage.Resolver, fs Filesystem) *Service {
	return &Service{store: s, resolver: resolver, fs: fs}
}

// LinkInfo is the API-facing view of a link: the token, its owner-relative
// path, visibility, the viewer emails (private links), and metadata of the
// target file when it still exists on disk.
type LinkInfo struct {
	Token     string            `json:"token"`
	Path      string            `json:"path"`
	Public    bool              `json:"public"`
	OwnerID   string            `json:"owner_id"`
	CreatedAt time.Time         `json:"created_at"`
	Viewers   []string          `json:"viewers,omitempty"`
	File      *storage.FileInfo `json:"file,omitempty"`
}

// CreateLink mints a public or private link for the owner's file at relPath.
//
// If a link already exists for the resolved path it is returned as-is,
// regardless of requested visibility (one link per path). If the target does
// not exist on disk, CreateLink fails with ErrFileNotFound: an expected
// outcome, not a fault. Token collisions are retried with fresh tokens.
func (s *Service) CreateLink(ctx context.Context, ownerID, relPath string, public bool) (*LinkInfo, error) {
	return s.create(ctx, ownerID, relPath, public, nil)
}

// CreatePrivateLink mints a private link with an initial viewer set. Input
// emails are de-duplicated, preserving first-occurrence order.
func (s *Service) CreatePrivateLink(ctx context.Context, ownerID, relPath string, emails []string) (*LinkInfo, error) {
	return s.create(ctx, ownerID, relPath, false, dedupe(emails))
}

func (s *Service) create(ctx context.Context, ownerID, relPath string, public bool, viewerEmails []string) (*LinkInfo, error) {
	absPath, err := s.resolver.Resolve(ownerID, relPath)
	if err != nil {
		return nil, err
	}

	if existing, err := s.store.GetLinkByPath(ctx, absPath); err == nil {
		return s.infoWithViewers(ctx, existing)
	} else if !errors.Is(err, models.ErrLinkNotFound) {
		return nil, err
	}

	if !s.fs.Exists(absPath) {
		return nil, models.ErrFileNotFound
	}

	for attempt := 0; attempt < tokenAttempts; attempt++ {
		link := &models.FileLink{
			Token:   uuid.New().String(),
			OwnerID: ownerID,
			Path:    absPath,
			Public:  public,
		}

		err := s.store.CreateLink(ctx, link, viewerEmails)
		if err == nil {
			return s.infoWithViewers(ctx, link)
		}
		if !errors.Is(err, models.ErrDuplicateLink) {
			return nil, err
		}

		// The constraint hit is either a token collision (retry with a fresh
		// token) or a concurrent link on the same path (return it).
		if existing, pathErr := s.store.GetLinkByPath(ctx, absPath); pathErr == nil {
			return s.infoWithViewers(ctx, existing)
		}
	}

	logger.Error("link token generation exhausted", "path", absPath, "attempts", tokenAttempts)
	return nil, models.ErrLinkExhausted
}

// UpdateViewers replaces a private link's viewer set with the given emails.
//
// The delta against the current grant set is computed once and applied in a
// single transaction; removed emails keep no grants, retained grants keep
// their original order, and additions append in input order. An empty email
// list is rejected: clearing a viewer set is not a supported update.
func (s *Service) UpdateViewers(ctx context.Context, token, requesterID string, emails []string) (*LinkInfo, error) {
	link, err := s.store.GetLink(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwner(link, requesterID); err != nil {
		return nil, err
	}
	if link.Public {
		return nil, models.ErrInvalidArgument
	}

	newEmails := dedupe(emails)
	if len(newEmails) == 0 {
		return nil, models.ErrInvalidArgument
	}

	existing, err := s.store.GetLinkViewers(ctx, token)
	if err != nil {
		return nil, err
	}

	toRemove, toAdd := viewerDelta(existing, newEmails)
	if len(toRemove) > 0 || len(toAdd) > 0 {
		if err := s.store.ReconcileLinkViewers(ctx, token, toRemove, toAdd); err != nil {
			return nil, err
		}
	}

	updated, err := s.store.GetLinkWithViewers(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.linkInfo(updated)
}

// RemoveLink deletes a link and its viewer grants. Owner-only.
func (s *Service) RemoveLink(ctx context.Context, token, requesterID string) error {
	link, err := s.store.GetLink(ctx, token)
	if err != nil {
		return err
	}
	if err := authorizeOwner(link, requesterID); err != nil {
		return err
	}
	return s.store.DeleteLink(ctx, token)
}

// Lookup returns the link metadata visible to the requester. Private links
// require the requester to be the owner or a granted viewer. A link whose
// target has been deleted out-of-band reports ErrFileNotFound.
func (s *Service) Lookup(ctx context.Context, token, requesterID, requesterEmail string) (*LinkInfo, error) {
	link, err := s.store.GetLinkWithViewers(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := authorizeRead(link, requesterID, requesterEmail); err != nil {
		return nil, err
	}

	info, err := s.linkInfo(link)
	if err != nil {
		return nil, err
	}
	if info.File == nil {
		// Stale link: the row outlived its file.
		return nil, models.ErrFileNotFound
	}
	return info, nil
}

// Download opens the linked file for streaming, under the same authorization
// rules as Lookup. The caller owns the returned ReadCloser.
func (s *Service) Download(ctx context.Context, token, requesterID, requesterEmail string) (io.ReadCloser, os.FileInfo, error) {
	link, err := s.store.GetLinkWithViewers(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	if err := authorizeRead(link, requesterID, requesterEmail); err != nil {
		return nil, nil, err
	}
	return s.fs.Open(link.Path)
}

// MyLinks lists the requester's own links. Links whose target no longer
// exists are still listed, with no file metadata attached.
func (s *Service) MyLinks(ctx context.Context, ownerID string) ([]*LinkInfo, error) {
	links, err := s.store.ListLinksByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.linkInfos(links)
}

// SharedToMe lists links that grant the given email viewer access.
func (s *Service) SharedToMe(ctx context.Context, email string) ([]*LinkInfo, error) {
	links, err := s.store.ListLinksByViewerEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.linkInfos(links)
}

// infoWithViewers loads the grant set for private links and builds the
// API-facing view.
func (s *Service) infoWithViewers(ctx context.Context, link *models.FileLink) (*LinkInfo, error) {
	if !link.Public {
		viewers, err := s.store.GetLinkViewers(ctx, link.Token)
		if err != nil {
			return nil, err
		}
		link.Viewers = viewers
	}
	return s.linkInfo(link)
}

func (s *Service) linkInfos(links []*models.FileLink) ([]*LinkInfo, error) {
	infos := make([]*LinkInfo, 0, len(links))
	for _, link := range links {
		info, err := s.linkInfo(link)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func (s *Service) linkInfo(link *models.FileLink) (*LinkInfo, error) {
	relPath, err := s.resolver.Rel(link.OwnerID, link.Path)
	if err != nil {
		return nil, err
	}

	info := &LinkInfo{
		Token:     link.Token,
		Path:      relPath,
		Public:    link.Public,
		OwnerID:   link.OwnerID,
		CreatedAt: link.CreatedAt,
		Viewers:   link.ViewerEmails(),
	}

	if stat, err := s.fs.Stat(link.Path); err == nil {
		info.File = &storage.FileInfo{
			Name:    stat.Name(),
			Path:    relPath,
			Size:    stat.Size(),
			Dir:     stat.IsDir(),
			ModTime: stat.ModTime(),
		}
	} else if !errors.Is(err, models.ErrFileNotFound) {
		return nil, err
	}

	return info, nil
}

// dedupe removes duplicate emails, preserving first-occurrence order.
func dedupe(emails []string) []string {
	seen := make(map[string]struct{}, len(emails))
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		if e == "" {
			continue
		}
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}

// viewerDelta computes the two-set difference between the current grant set
// and the desired email set: grants to remove and emails to add, exact
// case-sensitive match. Additions come back in desired-set order.
func viewerDelta(existing []models.LinkViewer, desired []string) (toRemove, toAdd []string) {
	current := make(map[string]struct{}, len(existing))
	for _, v := range existing {
		current[v.Email] = struct{}{}
	}
	want := make(map[string]struct{}, len(desired))
	for _, e := range desired {
		want[e] = struct{}{}
	}

	for _, v := range existing {
		if _, ok := want[v.Email]; !ok {
			toRemove = append(toRemove, v.Email)
		}
	}
	for _, e := range desired {
		if _, ok := current[e]; !ok {
			toAdd = append(toAdd, e)
		}
	}
	return toRemove, toAdd
}
