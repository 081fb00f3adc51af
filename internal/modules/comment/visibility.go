package comment

import (
	"github.com/raline/core/internal/models"
	"github.com/raline/core/internal/pkg/identity"
)

// Visibility is the read predicate in data form: a row is visible when its
// status is in Statuses, or when OwnerUID authored it. Both the SQL store
// and the in-memory store interpret the same value, so every query variant
// shares one filter.
type Visibility struct {
	Statuses []models.CommentStatus
	OwnerUID *uint
}

// VisibleTo builds the predicate for a viewer. Anonymous callers see only
// approved comments; logged-in users additionally see their own rows in any
// state; admins see everything except deleted rows.
func VisibleTo(viewer *identity.Identity) Visibility {
	switch {
	case viewer.IsAdmin():
		return Visibility{Statuses: []models.CommentStatus{
			models.CommentApproved,
			models.CommentWaiting,
			models.CommentSpam,
		}}
	case viewer != nil:
		uid := viewer.UID
		return Visibility{
			Statuses: []models.CommentStatus{models.CommentApproved},
			OwnerUID: &uid,
		}
	default:
		return Visibility{Statuses: []models.CommentStatus{models.CommentApproved}}
	}
}

// Matches evaluates the predicate against a single row.
func (v Visibility) Matches(c *models.CommentModel) bool {
	for _, s := range v.Statuses {
		if c.Status == s {
			return true
		}
	}
	return v.OwnerUID != nil && c.UserID != nil && *c.UserID == *v.OwnerUID
}
