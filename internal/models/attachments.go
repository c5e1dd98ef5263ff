package models

import "time"

// Owner kinds for attachment rows. The original schema used a free-form
// "type" string; this enumerates the kinds the application actually writes
// and validates them before persisting.
const (
	OwnerCenter = "center"
	OwnerAPK    = "apk"
)

var ownerKinds = []string{OwnerCenter, OwnerAPK}

func ValidOwnerKind(k string) bool {
	for _, v := range ownerKinds {
		if v == k {
			return true
		}
	}
	return false
}

// File is a generic stored document owned by another record.
type File struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	RefID     uint      `gorm:"index" json:"ref_id"`
	FilePath  string    `gorm:"size:255;not null" json:"file_path"`
	OwnerKind string    `gorm:"column:type;size:32;index" json:"type"`
	Status    string    `gorm:"size:32;default:active;index" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (File) LogName() string { return "file" }

// Image is a stored picture owned by another record.
type Image struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	RefID     uint      `gorm:"index" json:"ref_id"`
	ImagePath string    `gorm:"size:255;not null" json:"image_path"`
	OwnerKind string    `gorm:"column:type;size:32;index" json:"type"`
	Status    string    `gorm:"size:32;default:active;index" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Image) LogName() string { return "image" }
