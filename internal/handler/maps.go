package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cresszm/cress/internal/geo"
	"github.com/cresszm/cress/internal/models"
	"github.com/cresszm/cress/pkg/logger"
	"github.com/cresszm/cress/pkg/response"
)

const dangerZoneStatsCacheKey = "danger_zones:stats"

// mapLayers parses the layers[] selection; only the alert layer when
// unspecified.
func mapLayers(c *gin.Context) (alerts, incidents bool, invalid string) {
	values := c.QueryArray("layers[]")
	if len(values) == 0 {
		values = c.QueryArray("layers")
	}
	if len(values) == 0 {
		return true, false, ""
	}
	for _, v := range values {
		switch v {
		case "alerts":
			alerts = true
		case "incidents":
			incidents = true
		default:
			return false, false, v
		}
	}
	return alerts, incidents, ""
}

// mapBounds reads an optional viewport from the query string. The viewport
// only applies when all four edges are present.
func mapBounds(c *gin.Context) *geo.Bounds {
	if c.Query("north") == "" || c.Query("south") == "" || c.Query("east") == "" || c.Query("west") == "" {
		return nil
	}
	var b geo.Bounds
	if err := c.ShouldBindQuery(&b); err != nil {
		return nil
	}
	return &b
}

// DangerZonesIndex serves the map page payload: recent activity and the
// initial center.
func (h *Handlers) DangerZonesIndex(c *gin.Context) {
	points, err := geo.RecentPoints(h.db, 100)
	if err != nil {
		response.Fail(c, "could not load map data", nil)
		return
	}
	lat, lng := geo.DefaultCenter(points)
	c.JSON(http.StatusOK, gin.H{
		"center":       gin.H{"lat": lat, "lng": lng},
		"point_count":  len(points),
		"default_zoom": 13,
	})
}

// DangerZonesHeatmap returns weighted heat points for the selected time
// range, layers and viewport.
func (h *Handlers) DangerZonesHeatmap(c *gin.Context) {
	timeRange := c.DefaultQuery("time_range", geo.Range7d)
	if !geo.ValidTimeRange(timeRange) {
		response.ValidationError(c, fieldErrors{"time_range": {"The selected time_range is invalid."}})
		return
	}
	wantAlerts, wantIncidents, invalid := mapLayers(c)
	if invalid != "" {
		response.ValidationError(c, fieldErrors{"layers": {"The selected layers are invalid."}})
		return
	}
	zoom := 12
	if z, err := strconv.Atoi(c.Query("zoom")); err == nil && z > 0 {
		zoom = z
	}
	bounds := mapBounds(c)
	cutoff := geo.CutoffDate(timeRange, time.Now())

	var heat []geo.HeatPoint
	alertCount, incidentCount := 0, 0
	if wantAlerts {
		points, err := geo.AlertPoints(h.db, cutoff, bounds)
		if err != nil {
			response.Fail(c, "could not load heatmap data", nil)
			return
		}
		alertCount = len(points)
		heat = append(heat, geo.AggregateHeatmap(points, "alert")...)
	}
	if wantIncidents {
		points, err := geo.IncidentPoints(h.db, cutoff, bounds)
		if err != nil {
			response.Fail(c, "could not load heatmap data", nil)
			return
		}
		incidentCount = len(points)
		heat = append(heat, geo.AggregateHeatmap(points, "incident")...)
	}

	layers := []string{}
	if wantAlerts {
		layers = append(layers, "alerts")
	}
	if wantIncidents {
		layers = append(layers, "incidents")
	}

	// Density reflects the grouped heat points, not the raw row count.
	c.JSON(http.StatusOK, gin.H{
		"data": heat,
		"stats": gin.H{
			"total_points":   len(heat),
			"alert_count":    alertCount,
			"incident_count": incidentCount,
			"density_level":  geo.DensityLevel(len(heat), zoom),
		},
		"meta": gin.H{
			"time_range":     timeRange,
			"cutoff_date":    cutoff.Format(time.RFC3339),
			"layers":         layers,
			"bounds_applied": bounds != nil,
		},
	})
}

// DangerZonesClusters buckets the viewport's points onto a zoom-dependent
// grid. Bounds and zoom are required here; there is no default viewport.
func (h *Handlers) DangerZonesClusters(c *gin.Context) {
	errs := fieldErrors{}
	bounds := mapBounds(c)
	if bounds == nil {
		errs.add("bounds", "The bounds fields are required.")
	}
	zoom, zoomErr := strconv.Atoi(c.Query("zoom"))
	if zoomErr != nil || zoom <= 0 {
		errs.add("zoom", "The zoom field is required.")
	}
	timeRange := c.DefaultQuery("time_range", geo.Range7d)
	if !geo.ValidTimeRange(timeRange) {
		errs.add("time_range", "The selected time_range is invalid.")
	}
	if errs.any() {
		response.ValidationError(c, errs)
		return
	}

	cutoff := geo.CutoffDate(timeRange, time.Now())
	grid := geo.GridSize(zoom)

	alertPoints, err := geo.AlertPoints(h.db, cutoff, bounds)
	if err != nil {
		response.Fail(c, "could not load cluster data", nil)
		return
	}
	incidentPoints, err := geo.IncidentPoints(h.db, cutoff, bounds)
	if err != nil {
		response.Fail(c, "could not load cluster data", nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"clusters": gin.H{
			"alerts":    geo.AggregateClusters(alertPoints, grid, "alert"),
			"incidents": geo.AggregateClusters(incidentPoints, grid, "incident"),
		},
		"grid_size": grid,
		"zoom":      zoom,
	})
}

// DangerZonesStats serves headline counts and the ranked hotspots. The
// payload changes slowly, so it is cached briefly.
func (h *Handlers) DangerZonesStats(c *gin.Context) {
	if h.cache != nil {
		if cached, ok := h.cache.Get(c.Request.Context(), dangerZoneStatsCacheKey); ok {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	now := time.Now()
	dayAgo := now.Add(-24 * time.Hour)
	weekAgo := now.AddDate(0, 0, -7)

	alerts24h, _ := geo.CountSince(h.db, &models.Alert{}, dayAgo)
	incidents24h, _ := geo.CountSince(h.db, &models.Incident{}, dayAgo)
	alerts7d, _ := geo.CountSince(h.db, &models.Alert{}, weekAgo)
	incidents7d, _ := geo.CountSince(h.db, &models.Incident{}, weekAgo)
	alertsTotal, _ := geo.CountAll(h.db, &models.Alert{})
	incidentsTotal, _ := geo.CountAll(h.db, &models.Incident{})

	// Hotspots rank over the full history, not the 7-day window.
	epoch := geo.CutoffDate(geo.RangeAll, now)
	incidentPoints, err := geo.IncidentPoints(h.db, epoch, nil)
	if err != nil {
		response.Fail(c, "could not load danger zone stats", nil)
		return
	}
	alertPoints, err := geo.AlertPoints(h.db, epoch, nil)
	if err != nil {
		response.Fail(c, "could not load danger zone stats", nil)
		return
	}

	payload := map[string]any{
		"alerts": gin.H{
			"last_24h": alerts24h,
			"last_7d":  alerts7d,
			"total":    alertsTotal,
		},
		"incidents": gin.H{
			"last_24h": incidents24h,
			"last_7d":  incidents7d,
			"total":    incidentsTotal,
		},
		"hotspots":   geo.TopHotspots(incidentPoints, alertPoints, 5),
		"updated_at": now.Format(time.RFC3339),
	}

	if h.cache != nil {
		if err := h.cache.Set(c.Request.Context(), dangerZoneStatsCacheKey, payload, time.Minute); err != nil {
			logger.Warn("could not cache danger zone stats", zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, payload)
}
