package links

import "github.com/fastfile/fastfile/pkg/models"

// authorizeOwner admits only the link's owner. Cross-owner attempts get
// ErrForbidden rather than ErrLinkNotFound: revealing that the link exists
// is intentional here.
func authorizeOwner(link *models.FileLink, requesterID string) error {
	if link.OwnerID != requesterID {
		return models.ErrForbidden
	}
	return nil
}

// authorizeRead admits anyone for public links; for private links the
// requester must be the owner or hold a viewer grant for their email.
// The link's viewer grants must already be loaded.
func authorizeRead(link *models.FileLink, requesterID, requesterEmail string) error {
	if link.Public {
		return nil
	}
	if link.OwnerID == requesterID {
		return nil
	}
	for _, v := range link.Viewers {
		if v.Email == requesterEmail {
			return nil
		}
	}
	return models.ErrForbidden
}
