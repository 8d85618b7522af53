package models

import "time"

// FileLink is a share token bound to one filesystem path.
//
// Token, OwnerID, Path and Public are write-once: after creation the only
// mutable state attached to a link is its viewer set. A path holds at most
// one link (path-unique index); repeated creation for the same path returns
// the existing row instead of erroring.
//
// The viewer association exists for schema migration and response rendering;
// code paths that reason about the grant set load it explicitly through the
// store rather than traversing the object graph.
type FileLink struct {
	Token     string    `gorm:"primaryKey;size:36" json:"token"`
	OwnerID   string    `gorm:"not null;size:36;index" json:"owner_id"`
	Path      string    `gorm:"uniqueIndex;not null;size:1024" json:"path"`
	Public    bool      `gorm:"not null" json:"public"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Viewers []LinkViewer `gorm:"foreignKey:LinkToken;references:Token" json:"viewers,omitempty"`
}

// TableName returns the table name for FileLink.
func (FileLink) TableName() string {
	return "file_links"
}

// ViewerEmails returns the emails of the loaded viewer grants, in grant order.
func (l *FileLink) ViewerEmails() []string {
	emails := make([]string, len(l.Viewers))
	for i, v := range l.Viewers {
		emails[i] = v.Email
	}
	return emails
}

// LinkViewer grants one email address access to one private link.
//
// The (link_token, email) unique index keeps the grant set duplicate-free;
// the autoincrement ID preserves insertion order for deterministic listings.
// Grants are owned by their link: deleting a link deletes its grants.
type LinkViewer struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"-"`
	LinkToken string `gorm:"not null;size:36;uniqueIndex:idx_link_viewer_email" json:"-"`
	Email     string `gorm:"not null;size:255;uniqueIndex:idx_link_viewer_email;index" json:"email"`
}

// TableName returns the table name for LinkViewer.
func (LinkViewer) TableName() string {
	return "link_viewers"
}
