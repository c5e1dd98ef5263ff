package geo

import (
	"time"

	"gorm.io/gorm"

	"github.com/cresszm/cress/internal/models"
)

// Bounds is a map viewport. North/South bound latitude, East/West longitude.
type Bounds struct {
	North float64 `form:"north" json:"north"`
	South float64 `form:"south" json:"south"`
	East  float64 `form:"east" json:"east"`
	West  float64 `form:"west" json:"west"`
}

type pointRow struct {
	Lat      float64
	Lng      float64
	Severity *float64
}

func rowsToPoints(rows []pointRow) []Point {
	points := make([]Point, len(rows))
	for i, r := range rows {
		points[i] = Point{Lat: r.Lat, Lng: r.Lng, Severity: r.Severity}
	}
	return points
}

func boundsScope(q *gorm.DB, b *Bounds) *gorm.DB {
	if b == nil {
		return q
	}
	return q.Where("lat BETWEEN ? AND ?", b.South, b.North).
		Where("lng BETWEEN ? AND ?", b.West, b.East)
}

// AlertPoints fetches located alert coordinates inside the window and
// optional viewport.
func AlertPoints(db *gorm.DB, cutoff time.Time, b *Bounds) ([]Point, error) {
	var rows []pointRow
	q := db.Model(&models.Alert{}).
		Select("lat, lng").
		Where("created_at >= ?", cutoff).
		Where("lat IS NOT NULL AND lng IS NOT NULL")
	if err := boundsScope(q, b).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rowsToPoints(rows), nil
}

// IncidentPoints fetches incident coordinates plus severity inside the
// window and optional viewport.
func IncidentPoints(db *gorm.DB, cutoff time.Time, b *Bounds) ([]Point, error) {
	var rows []pointRow
	q := db.Model(&models.Incident{}).
		Select("lat, lng, severity").
		Where("created_at >= ?", cutoff).
		Where("lat IS NOT NULL AND lng IS NOT NULL")
	if err := boundsScope(q, b).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rowsToPoints(rows), nil
}

func CountSince(db *gorm.DB, model any, cutoff time.Time) (int64, error) {
	var n int64
	err := db.Model(model).Where("created_at >= ?", cutoff).Count(&n).Error
	return n, err
}

func CountAll(db *gorm.DB, model any) (int64, error) {
	var n int64
	err := db.Model(model).Count(&n).Error
	return n, err
}

// RecentPoints pulls the latest located alerts and incidents, used for the
// map page's default center.
func RecentPoints(db *gorm.DB, limit int) ([]Point, error) {
	var rows []pointRow
	err := db.Model(&models.Alert{}).
		Select("lat, lng").
		Where("lat IS NOT NULL AND lng IS NOT NULL").
		Order("created_at DESC").Limit(limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	var incidentRows []pointRow
	err = db.Model(&models.Incident{}).
		Select("lat, lng").
		Where("lat IS NOT NULL AND lng IS NOT NULL").
		Order("created_at DESC").Limit(limit).Scan(&incidentRows).Error
	if err != nil {
		return nil, err
	}
	return rowsToPoints(append(rows, incidentRows...)), nil
}
