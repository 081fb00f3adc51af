package models

import "time"

// PageViewModel counts article page views per path.
type PageViewModel struct {
	ID        uint      `json:"id"         gorm:"primaryKey;autoIncrement"`
	Path      string    `json:"path"       gorm:"type:varchar(255);uniqueIndex;not null"`
	Times     int       `json:"times"      gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PageViewModel) TableName() string { return "page_views" }
