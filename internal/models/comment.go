package models

import "time"

// CommentStatus represents the moderation state of a comment.
type CommentStatus string

const (
	CommentApproved CommentStatus = "approved"
	CommentWaiting  CommentStatus = "waiting"
	CommentSpam     CommentStatus = "spam"
	CommentDeleted  CommentStatus = "deleted"
)

// ParseCommentStatus maps a wire value to a CommentStatus.
func ParseCommentStatus(s string) (CommentStatus, bool) {
	switch CommentStatus(s) {
	case CommentApproved, CommentWaiting, CommentSpam, CommentDeleted:
		return CommentStatus(s), true
	}
	return "", false
}

// CommentModel is a single comment row. Threading is two levels deep:
// a root has Rid == nil, a reply carries the root's id in Rid and the
// directly answered comment's id in Pid.
type CommentModel struct {
	ID        uint          `json:"id"         gorm:"primaryKey;autoIncrement"`
	UserID    *uint         `json:"user_id"    gorm:"index"`
	Content   string        `json:"content"    gorm:"type:text;not null"`
	IP        string        `json:"ip"         gorm:"type:varchar(100)"`
	Link      *string       `json:"link"`
	Mail      *string       `json:"mail"       gorm:"index"`
	Nick      *string       `json:"nick"`
	Pid       *uint         `json:"pid"`
	Rid       *uint         `json:"rid"        gorm:"index"`
	Sticky    bool          `json:"sticky"     gorm:"default:false"`
	Star      int           `json:"star"       gorm:"default:0"`
	Status    CommentStatus `json:"status"     gorm:"type:varchar(20);index;default:approved"`
	UA        string        `json:"ua"         gorm:"type:varchar(512)"`
	URL       string        `json:"url"        gorm:"type:varchar(255);index;not null"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func (CommentModel) TableName() string { return "comments" }

// IsRoot reports whether the comment starts a thread.
func (c *CommentModel) IsRoot() bool { return c.Rid == nil }
