package models

import (
	"time"

	"gorm.io/gorm"
)

// ActivityLog is an append-only audit row. Subject is the record affected,
// causer the actor performing the change.
type ActivityLog struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	LogName     string         `gorm:"size:64;default:default;index" json:"log_name"`
	Description string         `gorm:"type:text" json:"description"`
	SubjectType string         `gorm:"size:64;index:idx_activity_subject" json:"subject_type"`
	SubjectID   uint           `gorm:"index:idx_activity_subject" json:"subject_id"`
	CauserType  string         `gorm:"size:64;index:idx_activity_causer" json:"causer_type"`
	CauserID    uint           `gorm:"index:idx_activity_causer" json:"causer_id"`
	Event       string         `gorm:"size:32;index" json:"event"`
	Properties  map[string]any `gorm:"serializer:json" json:"properties"`
	BatchUUID   string         `gorm:"size:36" json:"batch_uuid"`
	IPAddress   string         `gorm:"size:45" json:"ip_address"`
	UserAgent   string         `gorm:"size:255" json:"user_agent"`
	Location    string         `gorm:"size:255" json:"location"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}

// ActivityLogFilter narrows the audit listing.
type ActivityLogFilter struct {
	Search  string // substring of description
	Event   string
	LogName string
	Page    int
	PerPage int
}

// QueryActivityLogs returns a filtered, newest-first page plus the total.
func QueryActivityLogs(db *gorm.DB, f ActivityLogFilter) ([]ActivityLog, int64, error) {
	q := db.Model(&ActivityLog{})
	if f.Search != "" {
		q = q.Where("description LIKE ?", "%"+f.Search+"%")
	}
	if f.Event != "" {
		q = q.Where("event = ?", f.Event)
	}
	if f.LogName != "" {
		q = q.Where("log_name = ?", f.LogName)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if f.PerPage <= 0 {
		f.PerPage = 10
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	var logs []ActivityLog
	err := q.Order("created_at DESC").
		Offset((f.Page - 1) * f.PerPage).
		Limit(f.PerPage).
		Find(&logs).Error
	return logs, total, err
}

// DistinctActivityValues lists the distinct values of an enumerable audit
// column (event, log_name) for filter dropdowns.
func DistinctActivityValues(db *gorm.DB, column string) ([]string, error) {
	var values []string
	err := db.Model(&ActivityLog{}).Distinct(column).
		Where(column + " <> ''").Pluck(column, &values).Error
	return values, err
}

// PruneActivityLogs deletes audit rows older than the retention window.
func PruneActivityLogs(db *gorm.DB, olderThan time.Time) (int64, error) {
	res := db.Where("created_at < ?", olderThan).Delete(&ActivityLog{})
	return res.RowsAffected, res.Error
}
