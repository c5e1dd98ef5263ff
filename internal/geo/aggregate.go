package geo

import "sort"

// Point is a raw coordinate pulled from the alerts or incidents table.
type Point struct {
	Lat      float64
	Lng      float64
	Severity *float64 // incidents only
}

// HeatPoint is one weighted heatmap entry.
type HeatPoint struct {
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Weight float64 `json:"weight"`
	Type   string  `json:"type"`
}

// Cluster is one grid cell with its point count.
type Cluster struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Count    int     `json:"count"`
	Severity *int    `json:"severity,omitempty"` // max severity, incidents only
	Type     string  `json:"type"`
}

type cell struct{ lat, lng float64 }

// AggregateHeatmap groups points at 4-decimal precision and weights each
// group. Incident groups average severity, with NULL severities counted
// as 3; alert groups carry no severity factor.
func AggregateHeatmap(points []Point, typ string) []HeatPoint {
	counts := make(map[cell]int)
	severitySums := make(map[cell]float64)
	for _, p := range points {
		k := cell{RoundCoord(p.Lat, 4), RoundCoord(p.Lng, 4)}
		counts[k]++
		sev := 3.0
		if p.Severity != nil {
			sev = *p.Severity
		}
		severitySums[k] += sev
	}

	out := make([]HeatPoint, 0, len(counts))
	for k, count := range counts {
		var severity *float64
		if typ == "incident" {
			avg := severitySums[k] / float64(count)
			severity = &avg
		}
		out = append(out, HeatPoint{
			Lat:    k.lat,
			Lng:    k.lng,
			Weight: Weight(count, typ, severity),
			Type:   typ,
		})
	}
	sortByCoord(out, func(h HeatPoint) (float64, float64) { return h.Lat, h.Lng })
	return out
}

// AggregateClusters buckets points onto the zoom-appropriate grid and counts
// each cell. Incident cells also report the maximum severity seen.
func AggregateClusters(points []Point, grid float64, typ string) []Cluster {
	counts := make(map[cell]int)
	maxSeverity := make(map[cell]int)
	for _, p := range points {
		k := cell{SnapToGrid(p.Lat, grid), SnapToGrid(p.Lng, grid)}
		counts[k]++
		if p.Severity != nil && int(*p.Severity) > maxSeverity[k] {
			maxSeverity[k] = int(*p.Severity)
		}
	}

	out := make([]Cluster, 0, len(counts))
	for k, count := range counts {
		c := Cluster{Lat: k.lat, Lng: k.lng, Count: count, Type: typ}
		if typ == "incident" {
			if max, ok := maxSeverity[k]; ok && max > 0 {
				sev := max
				c.Severity = &sev
			}
		}
		out = append(out, c)
	}
	sortByCoord(out, func(c Cluster) (float64, float64) { return c.Lat, c.Lng })
	return out
}

// Hotspot is a 3-decimal cell ranked by combined activity; incidents count
// double.
type Hotspot struct {
	Coordinates [2]float64 `json:"coordinates"`
	Score       int        `json:"score"`
	Incidents   int        `json:"incidents"`
	Alerts      int        `json:"alerts"`
}

// TopHotspots merges per-cell incident and alert counts, scores each cell as
// 2*incidents + alerts and returns the highest-scoring cells.
func TopHotspots(incidents, alerts []Point, limit int) []Hotspot {
	incidentCounts := make(map[cell]int)
	for _, p := range incidents {
		incidentCounts[cell{RoundCoord(p.Lat, 3), RoundCoord(p.Lng, 3)}]++
	}
	alertCounts := make(map[cell]int)
	for _, p := range alerts {
		alertCounts[cell{RoundCoord(p.Lat, 3), RoundCoord(p.Lng, 3)}]++
	}

	// Hotspots are seeded from incident cells, matching the original
	// ranking which joined alerts onto grouped incidents.
	out := make([]Hotspot, 0, len(incidentCounts))
	for k, inc := range incidentCounts {
		al := alertCounts[k]
		out = append(out, Hotspot{
			Coordinates: [2]float64{k.lat, k.lng},
			Score:       inc*2 + al,
			Incidents:   inc,
			Alerts:      al,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].Coordinates[0] != out[j].Coordinates[0] {
			return out[i].Coordinates[0] < out[j].Coordinates[0]
		}
		return out[i].Coordinates[1] < out[j].Coordinates[1]
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// DefaultCenter averages the supplied points, falling back to central Lusaka
// when there is no data.
func DefaultCenter(points []Point) (lat, lng float64) {
	if len(points) == 0 {
		return -15.3875, 28.3228
	}
	for _, p := range points {
		lat += p.Lat
		lng += p.Lng
	}
	n := float64(len(points))
	return lat / n, lng / n
}

func sortByCoord[T any](items []T, key func(T) (float64, float64)) {
	sort.Slice(items, func(i, j int) bool {
		li, gi := key(items[i])
		lj, gj := key(items[j])
		if li != lj {
			return li < lj
		}
		return gi < gj
	})
}
