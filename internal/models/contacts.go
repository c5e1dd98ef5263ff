package models

import "time"

// Contact is an emergency contact reached when its owner broadcasts an SOS.
type Contact struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Phone        string    `gorm:"size:20;not null" json:"phone"`
	Email        string    `gorm:"size:255" json:"email"`
	Relationship string    `gorm:"size:64" json:"relationship"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	User *User `json:"user,omitempty"`
}

func (Contact) LogName() string { return "contact" }
