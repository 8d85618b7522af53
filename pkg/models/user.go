package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// StorageTier identifies the account tier a user is on. Tiers map to byte
// quotas configured at startup; the tier name is what gets persisted.
type StorageTier string

const (
	// TierFree is the default tier for new accounts.
	TierFree StorageTier = "free"

	// TierPremium is the paid tier with a larger quota.
	TierPremium StorageTier = "premium"
)

// IsValid checks if the tier is a known StorageTier.
func (t StorageTier) IsValid() bool {
	return t == TierFree || t == TierPremium
}

// User represents a FastFile account.
//
// The user's files live on disk under <storage root>/<user ID>; UsedStorage
// caches the byte total of that subtree and is recomputed after uploads and
// deletes. Email doubles as the identity viewer grants are matched against.
type User struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	Username     string     `gorm:"uniqueIndex;not null;size:255" json:"username"`
	Email        string     `gorm:"uniqueIndex;not null;size:255" json:"email"`
	FirstName    string     `gorm:"size:255" json:"first_name,omitempty"`
	LastName     string     `gorm:"size:255" json:"last_name,omitempty"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Tier         string     `gorm:"default:free;size:50" json:"tier"`
	UsedStorage  int64      `gorm:"default:0" json:"used_storage"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

// TableName returns the table name for User.
func (User) TableName() string {
	return "users"
}

// GetTier returns the user's tier, defaulting to free for unknown values.
func (u *User) GetTier() StorageTier {
	t := StorageTier(u.Tier)
	if !t.IsValid() {
		return TierFree
	}
	return t
}

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword verifies a plaintext password against a bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
