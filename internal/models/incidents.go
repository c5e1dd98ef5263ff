package models

import "time"

var IncidentTypes = []string{"accident", "crime", "natural_disaster", "health_emergency", "other"}
var IncidentStatuses = []string{"reported", "investigating", "resolved", "closed"}

// Incident is a reported real-world event, distinct from a personal SOS.
type Incident struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Type      string    `gorm:"size:32;index" json:"type"`
	Area      string    `gorm:"size:255;index" json:"area"`
	Details   string    `gorm:"type:text" json:"details"`
	Status    string    `gorm:"size:32;default:reported;index" json:"status"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Severity  *int      `json:"severity"` // 1..5, optional
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `json:"user,omitempty"`
}

func (Incident) LogName() string { return "incident" }

func ValidIncidentType(t string) bool {
	for _, v := range IncidentTypes {
		if v == t {
			return true
		}
	}
	return false
}

func ValidIncidentStatus(s string) bool {
	for _, v := range IncidentStatuses {
		if v == s {
			return true
		}
	}
	return false
}
