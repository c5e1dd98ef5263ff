package geo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCutoffDate(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, now.Add(-24*time.Hour), CutoffDate(Range24h, now))
	assert.Equal(t, now.AddDate(0, 0, -7), CutoffDate(Range7d, now))
	assert.Equal(t, now.AddDate(0, 0, -30), CutoffDate(Range30d, now))
	assert.Equal(t, time.Unix(0, 0), CutoffDate(RangeAll, now))
	assert.Equal(t, time.Unix(0, 0), CutoffDate("bogus", now))
}

func TestWeight(t *testing.T) {
	// alert, count 4, no severity: 1 * 4 * 1
	assert.Equal(t, 4.0, Weight(4, "alert", nil))

	// incident, count 3, severity 5: 2 * 3 * (5/5)
	sev := 5.0
	assert.Equal(t, 6.0, Weight(3, "incident", &sev))

	// severity scales down
	low := 2.5
	assert.Equal(t, 1.0, Weight(1, "incident", &low))
}

func TestGridSize(t *testing.T) {
	cases := []struct {
		zoom int
		want float64
	}{
		{16, 100},
		{15, 100}, // boundary resolves to the finer grid
		{12, 50},
		{10, 50}, // boundary resolves to the finer grid
		{9, 20},
		{5, 20},
		{1, 20},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, GridSize(tc.zoom), "zoom %d", tc.zoom)
	}
}

func TestSnapToGrid(t *testing.T) {
	assert.InDelta(t, -15.39, SnapToGrid(-15.3875, 100), 1e-9)
	assert.InDelta(t, 28.32, SnapToGrid(28.3228, 100), 1e-9)
	assert.InDelta(t, 28.3, SnapToGrid(28.3228, 20), 1e-9)
}

func TestDensityLevel(t *testing.T) {
	// zoom >= 15: threshold 10
	assert.Equal(t, "low", DensityLevel(10, 16))   // exactly at threshold
	assert.Equal(t, "medium", DensityLevel(11, 16))
	assert.Equal(t, "medium", DensityLevel(30, 16)) // exactly 3x threshold stays medium
	assert.Equal(t, "high", DensityLevel(31, 16))

	// zoom >= 10: threshold 30
	assert.Equal(t, "low", DensityLevel(30, 12))
	assert.Equal(t, "medium", DensityLevel(31, 12))
	assert.Equal(t, "high", DensityLevel(91, 12))

	// low zoom: threshold 50
	assert.Equal(t, "low", DensityLevel(49, 5))
	assert.Equal(t, "medium", DensityLevel(51, 5))
}

func TestAggregateHeatmap(t *testing.T) {
	sev5 := 5.0
	points := []Point{
		{Lat: -15.38751, Lng: 28.32281},
		{Lat: -15.38749, Lng: 28.32279}, // same 4-dp cell
		{Lat: -14.0, Lng: 27.0},
	}

	heat := AggregateHeatmap(points, "alert")
	assert.Len(t, heat, 2)
	var clustered HeatPoint
	for _, h := range heat {
		if h.Weight > 1 {
			clustered = h
		}
		assert.Equal(t, "alert", h.Type)
	}
	assert.Equal(t, 2.0, clustered.Weight)
	assert.InDelta(t, -15.3875, clustered.Lat, 1e-9)

	// incident severity averaging: NULL counts as 3
	incidents := []Point{
		{Lat: 1.00001, Lng: 2.00001, Severity: &sev5},
		{Lat: 1.00001, Lng: 2.00001}, // nil -> 3
	}
	heat = AggregateHeatmap(incidents, "incident")
	assert.Len(t, heat, 1)
	// 2 * 2 * ((5+3)/2 / 5) = 3.2
	assert.InDelta(t, 3.2, heat[0].Weight, 1e-9)
}

func TestAggregateClusters(t *testing.T) {
	sev2, sev4 := 2.0, 4.0
	points := []Point{
		{Lat: -15.381, Lng: 28.321, Severity: &sev2},
		{Lat: -15.389, Lng: 28.329, Severity: &sev4}, // same 0.05-degree cell at grid 20
		{Lat: -10.0, Lng: 25.0},
	}

	clusters := AggregateClusters(points, 20, "incident")
	assert.Len(t, clusters, 2)
	var dense Cluster
	for _, c := range clusters {
		if c.Count == 2 {
			dense = c
		}
	}
	assert.Equal(t, 2, dense.Count)
	if assert.NotNil(t, dense.Severity) {
		assert.Equal(t, 4, *dense.Severity)
	}

	// alert clusters never carry severity
	alerts := AggregateClusters(points, 20, "alert")
	for _, c := range alerts {
		assert.Nil(t, c.Severity)
	}
}

func TestTopHotspots(t *testing.T) {
	incidents := []Point{
		{Lat: 1.0001, Lng: 2.0001},
		{Lat: 1.0001, Lng: 2.0001},
		{Lat: 5.0, Lng: 6.0},
	}
	alerts := []Point{
		{Lat: 1.0001, Lng: 2.0001},
		{Lat: 9.0, Lng: 9.0}, // alert-only cell never becomes a hotspot
	}

	spots := TopHotspots(incidents, alerts, 5)
	assert.Len(t, spots, 2)
	assert.Equal(t, 5, spots[0].Score) // 2 incidents * 2 + 1 alert
	assert.Equal(t, 2, spots[0].Incidents)
	assert.Equal(t, 1, spots[0].Alerts)
	assert.Equal(t, [2]float64{1.0, 2.0}, spots[0].Coordinates)
	assert.Equal(t, 2, spots[1].Score)

	// limit applies after ranking
	spots = TopHotspots(incidents, alerts, 1)
	assert.Len(t, spots, 1)
	assert.Equal(t, 5, spots[0].Score)
}

func TestDefaultCenter(t *testing.T) {
	lat, lng := DefaultCenter(nil)
	assert.InDelta(t, -15.3875, lat, 1e-9)
	assert.InDelta(t, 28.3228, lng, 1e-9)

	lat, lng = DefaultCenter([]Point{{Lat: 2, Lng: 4}, {Lat: 4, Lng: 8}})
	assert.Equal(t, 3.0, lat)
	assert.Equal(t, 6.0, lng)
}
