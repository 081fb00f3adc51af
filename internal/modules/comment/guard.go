package comment

import (
	"net/http"

	"github.com/raline/core/internal/models"
	"github.com/raline/core/internal/pkg/identity"
)

// allowedTransition reports whether a moderation move is legal. Anything
// may be deleted; waiting comments get approved or junked; approved and
// spam flip between each other on admin review.
func allowedTransition(from, to models.CommentStatus) bool {
	if to == models.CommentDeleted || from == to {
		return true
	}
	switch from {
	case models.CommentWaiting:
		return to == models.CommentApproved || to == models.CommentSpam
	case models.CommentApproved:
		return to == models.CommentSpam
	case models.CommentSpam:
		return to == models.CommentApproved
	}
	return false
}

// authorizeUpdate maps an update request to the column set the caller may
// touch. Like/unlike is open to everyone and handled outside the returned
// fields. Owners may edit their content; admins may edit everything
// including sticky and status; anyone else must send nothing but like.
func authorizeUpdate(viewer *identity.Identity, row *models.CommentModel, req *UpdateCommentReq) (map[string]interface{}, error) {
	fields := make(map[string]interface{})
	if req.Comment != nil {
		fields["content"] = *req.Comment
	}
	if req.Link != nil {
		fields["link"] = *req.Link
	}
	if req.Mail != nil {
		fields["mail"] = *req.Mail
	}
	if req.Nick != nil {
		fields["nick"] = *req.Nick
	}
	if req.Sticky != nil {
		fields["sticky"] = *req.Sticky
	}
	if req.Status != nil {
		to, ok := models.ParseCommentStatus(*req.Status)
		if !ok {
			return nil, rejection(http.StatusBadRequest, "unknown status "+*req.Status)
		}
		fields["status"] = to
	}

	if viewer.IsAdmin() {
		if to, ok := fields["status"]; ok && !allowedTransition(row.Status, to.(models.CommentStatus)) {
			return nil, rejection(http.StatusBadRequest, "invalid status transition")
		}
		return fields, nil
	}

	if viewer.Owns(row.UserID) {
		for col := range fields {
			if col != "content" {
				return nil, errForbidden
			}
		}
		return fields, nil
	}

	if len(fields) > 0 {
		return nil, errForbidden
	}
	return fields, nil
}

// authorizeDelete allows removal by the comment's owner or an admin.
func authorizeDelete(viewer *identity.Identity, row *models.CommentModel) error {
	if viewer.IsAdmin() || viewer.Owns(row.UserID) {
		return nil
	}
	return errForbidden
}
