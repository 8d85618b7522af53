package store

import (
	"context"
	"time"

	"github.com/fastfile/fastfile/pkg/models"
)

// UserStore defines user persistence operations.
type UserStore interface {
	GetUser(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) (string, error)
	DeleteUser(ctx context.Context, id string) error
	UpdateUsedStorage(ctx context.Context, id string, used int64) error
	UpdateLastLogin(ctx context.Context, username string, timestamp time.Time) error
	ValidateCredentials(ctx context.Context, username, password string) (*models.User, error)
}

// LinkStore defines file-link persistence operations.
//
// Mutations that touch a link together with its viewer grants (creation with
// grants, viewer reconciliation, every delete variant) run inside a single
// database transaction so a failure never leaves a partially applied state.
type LinkStore interface {
	GetLink(ctx context.Context, token string) (*models.FileLink, error)
	GetLinkWithViewers(ctx context.Context, token string) (*models.FileLink, error)
	GetLinkByPath(ctx context.Context, path string) (*models.FileLink, error)
	CreateLink(ctx context.Context, link *models.FileLink, viewerEmails []string) error
	ListLinksByOwner(ctx context.Context, ownerID string) ([]*models.FileLink, error)
	ListLinksByViewerEmail(ctx context.Context, email string) ([]*models.FileLink, error)
	GetLinkViewers(ctx context.Context, token string) ([]models.LinkViewer, error)
	ReconcileLinkViewers(ctx context.Context, token string, toRemove, toAdd []string) error
	DeleteLink(ctx context.Context, token string) error
	DeleteLinksByPath(ctx context.Context, path string) error
	DeleteLinksByPathPrefix(ctx context.Context, prefix string) error
	DeleteLinksByOwner(ctx context.Context, ownerID string) error
}

// Store is the full persistence interface implemented by GORMStore.
type Store interface {
	UserStore
	LinkStore
	Close() error
}

// Compile-time check that GORMStore satisfies Store.
var _ Store = (*GORMStore)(nil)
