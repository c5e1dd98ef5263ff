// Package geo implements the danger-zone aggregation: heatmap weighting,
// grid clustering and hotspot scoring over alert and incident coordinates.
package geo

import (
	"math"
	"time"
)

// Time ranges accepted by the map endpoints.
const (
	Range24h = "24h"
	Range7d  = "7d"
	Range30d = "30d"
	RangeAll = "all"
)

func ValidTimeRange(r string) bool {
	switch r {
	case Range24h, Range7d, Range30d, RangeAll:
		return true
	}
	return false
}

// CutoffDate maps a time range onto the earliest timestamp included in it.
// Unknown ranges mean "all" and map to the Unix epoch.
func CutoffDate(rng string, now time.Time) time.Time {
	switch rng {
	case Range24h:
		return now.Add(-24 * time.Hour)
	case Range7d:
		return now.AddDate(0, 0, -7)
	case Range30d:
		return now.AddDate(0, 0, -30)
	default:
		return time.Unix(0, 0)
	}
}

// Weight computes a heatmap point's intensity: base weight per record type,
// scaled by the point count and a severity factor normalized against the
// 1..5 severity scale. A missing severity contributes factor 1.
func Weight(count int, typ string, severity *float64) float64 {
	base := 2.0
	if typ == "alert" {
		base = 1.0
	}
	factor := 1.0
	if severity != nil {
		factor = *severity / 5
	}
	return base * float64(count) * factor
}

// GridSize picks the clustering grid for a zoom level; finer grids at higher
// zoom. The value is the multiplier applied before flooring, so 100 means
// cells of 0.01 degrees.
func GridSize(zoom int) float64 {
	switch {
	case zoom >= 15:
		return 100
	case zoom >= 10:
		return 50
	default:
		return 20
	}
}

// SnapToGrid buckets a coordinate onto the cell origin for the given grid.
func SnapToGrid(coord, grid float64) float64 {
	return math.Floor(coord*grid) / grid
}

// DensityLevel classifies how busy the returned point set is, with the
// threshold scaled to the visible area. Counts exactly at a boundary resolve
// to the lower level.
func DensityLevel(pointCount, zoom int) string {
	threshold := 50
	switch {
	case zoom >= 15:
		threshold = 10
	case zoom >= 10:
		threshold = 30
	}
	switch {
	case pointCount > threshold*3:
		return "high"
	case pointCount > threshold:
		return "medium"
	default:
		return "low"
	}
}

// RoundCoord rounds to the given number of decimal places. Heatmap points
// use 4 places, hotspots 3.
func RoundCoord(v float64, places int) float64 {
	scale := math.Pow10(places)
	return math.Round(v*scale) / scale
}
