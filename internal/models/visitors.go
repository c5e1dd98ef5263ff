package models

import "time"

// Visitor records basic client analytics for the public APK download.
type Visitor struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	IP             string    `gorm:"size:45;index" json:"ip"`
	DeviceOS       string    `gorm:"size:255;index" json:"device_os"`
	DeviceType     string    `gorm:"size:255;index" json:"device_type"`
	Browser        string    `gorm:"size:255;index" json:"browser"`
	BrowserVersion string    `gorm:"size:255" json:"browser_version"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
