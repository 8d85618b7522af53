// Package users implements account lifecycle: registration, authentication,
// profile reads, and full account deletion with storage and link cleanup.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fastfile/fastfile/internal/logger"
	"github.com/fastfile/fastfile/pkg/links"
	"github.com/fastfile/fastfile/pkg/models"
	"github.com/fastfile/fastfile/pkg/storage"
	"github.com/fastfile/fastfile/pkg/store"
)

// Service implements account operations over a UserStore and the storage
// layer. Link cleanup on account deletion goes through the link service so
// viewer grants are removed in the same transaction as the links.
type Service struct {
	store    store.UserStore
	links    *links.Service
	resolver *storage.Resolver
	fs       *storage.Filesystem
}

// NewService creates a user Service.
func NewService(s store.UserStore, linkSvc *links.Service, resolver *storage.Resolver, fs *storage.Filesystem) *Service {
	return &Service{store: s, links: linkSvc, resolver: resolver, fs: fs}
}

// RegisterInput carries the fields for creating a new account.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Tier      string
}

// Register creates a new account and its storage root.
//
// Username and email must be unique; a clash surfaces as ErrDuplicateUser.
// The tier defaults to free when empty and is rejected when unknown.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", models.ErrInvalidArgument)
	}

	tier := models.StorageTier(strings.ToLower(in.Tier))
	if in.Tier == "" {
		tier = models.TierFree
	}
	if !tier.IsValid() {
		return nil, fmt.Errorf("%w: unknown tier %q", models.ErrInvalidArgument, in.Tier)
	}

	hash, err := models.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hash,
		Tier:         string(tier),
	}

	id, err := s.store.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := s.fs.MkdirAll(s.resolver.UserRoot(id)); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}

	logger.Info("user registered", "user_id", id, "username", user.Username, "tier", tier)
	return user, nil
}

// Authenticate validates credentials and records the login time.
// Wrong password and unknown username both surface as ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.store.ValidateCredentials(ctx, username, password)
	if err != nil {
		return nil, err
	}

	// Non-critical: a failed timestamp update must not fail the login.
	if err := s.store.UpdateLastLogin(ctx, user.Username, time.Now()); err != nil {
		logger.Warn("failed to update last login time", "username", user.Username, "error", err)
	}

	return user, nil
}

// Get returns the account with the given ID.
func (s *Service) Get(ctx context.Context, id string) (*models.User, error) {
	return s.store.GetUserByID(ctx, id)
}

// GetByUsername returns the account with the given username.
func (s *Service) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.store.GetUser(ctx, username)
}

// Profile returns the account with its storage usage recomputed from disk.
// The recomputed value is persisted so the stored counter cannot drift.
func (s *Service) Profile(ctx context.Context, id string) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	used, err := s.fs.UsageBytes(s.resolver.UserRoot(id))
	if err != nil {
		return nil, fmt.Errorf("failed to compute storage usage: %w", err)
	}

	if used != user.UsedStorage {
		if err := s.store.UpdateUsedStorage(ctx, id, used); err != nil {
			logger.Warn("failed to persist storage usage", "user_id", id, "error", err)
		}
		user.UsedStorage = used
	}

	return user, nil
}

// Delete removes the account, every link it owns (grants included), and its
// entire storage subtree. Links go first so no link ever points at a file
// the user can no longer reach; the user row goes last so a mid-way failure
// leaves a retryable account rather than an orphaned one.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.store.GetUserByID(ctx, id); err != nil {
		return err
	}

	if err := s.links.OnUserDeleted(ctx, id); err != nil {
		return fmt.Errorf("failed to remove links: %w", err)
	}

	if err := s.fs.DeleteRecursive(s.resolver.UserRoot(id)); err != nil && !errors.Is(err, models.ErrFileNotFound) {
		return fmt.Errorf("failed to remove storage: %w", err)
	}

	if err := s.store.DeleteUser(ctx, id); err != nil {
		return err
	}

	logger.Info("user deleted", "user_id", id)
	return nil
}
