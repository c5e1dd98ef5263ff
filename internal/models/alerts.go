package models

import "time"

// Alert statuses in lifecycle order.
const (
	AlertPending  = "pending"
	AlertActive   = "active"
	AlertSent     = "sent"
	AlertResolved = "resolved"
)

// Alert is a user-initiated SOS with the reporter's last known position.
type Alert struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	Name        string     `gorm:"size:255;not null" json:"name"`
	Status      string     `gorm:"size:32;default:pending;index" json:"status"`
	Message     string     `gorm:"type:text" json:"message"`
	InitiatedAt *time.Time `gorm:"index" json:"initiated_at"`
	Lat         *float64   `json:"lat"`
	Lng         *float64   `json:"lng"`
	Accuracy    *float64   `json:"accuracy"` // meters
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	User *User `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

func (Alert) LogName() string { return "alert" }
