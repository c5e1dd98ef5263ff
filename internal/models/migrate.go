package models

import "gorm.io/gorm"

// Migrate creates or updates every table the application owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Alert{},
		&Center{},
		&Incident{},
		&Contact{},
		&File{},
		&Image{},
		&ActivityLog{},
		&ApiToken{},
		&Visitor{},
	)
}
