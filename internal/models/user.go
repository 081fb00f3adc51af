package models

import "time"

// User types as surfaced in JWT claims and comment decoration.
const (
	UserTypeAdmin  = "administrator"
	UserTypeNormal = "guest"
)

// UserModel represents a registered commenter or site administrator.
type UserModel struct {
	ID          uint      `json:"id"           gorm:"primaryKey;autoIncrement"`
	DisplayName string    `json:"display_name" gorm:"type:varchar(100);not null"`
	Email       string    `json:"email"        gorm:"type:varchar(255);uniqueIndex;not null"`
	Password    string    `json:"-"            gorm:"type:varchar(255);not null"`
	Type        string    `json:"type"         gorm:"type:varchar(20);default:guest"`
	URL         *string   `json:"url"`
	Avatar      *string   `json:"avatar"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (UserModel) TableName() string { return "users" }

// IsAdmin reports whether the user is an administrator.
func (u *UserModel) IsAdmin() bool { return u.Type == UserTypeAdmin }
