package models

import "time"

var CenterTypes = []string{"hospital", "clinic", "pharmacy", "laboratory", "other"}
var CenterStatuses = []string{"active", "inactive", "pending"}

// Center is a registered health facility.
type Center struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Email       string    `gorm:"size:255" json:"email"`
	Phone       string    `gorm:"size:20" json:"phone"`
	Type        string    `gorm:"size:32;index" json:"type"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	Status      string    `gorm:"size:32;default:active;index" json:"status"`
	Address     string    `gorm:"type:text" json:"address"`
	Description string    `gorm:"type:text" json:"description"`
	IsVerified  bool      `gorm:"default:false;index" json:"is_verified"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	User *User `json:"user,omitempty"`

	// Attachments are keyed by owner kind + ref id, not a database FK; the
	// handlers load them explicitly. See attachments.go.
	Images []Image `gorm:"-" json:"images,omitempty"`
	Files  []File  `gorm:"-" json:"files,omitempty"`
}

func (Center) LogName() string { return "center" }

func ValidCenterType(t string) bool {
	for _, v := range CenterTypes {
		if v == t {
			return true
		}
	}
	return false
}

func ValidCenterStatus(s string) bool {
	for _, v := range CenterStatuses {
		if v == s {
			return true
		}
	}
	return false
}
