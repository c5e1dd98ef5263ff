package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/host"
	"go.uber.org/zap"

	"github.com/cresszm/cress/internal/models"
	"github.com/cresszm/cress/pkg/logger"
)

const dashboardCacheKey = "dashboard:summary"

type trendPoint struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// Dashboard is the landing page payload: headline counts, host uptime, the
// last week's alert trend, a month of signups and the freshest audit entries.
func (h *Handlers) Dashboard(c *gin.Context) {
	if h.cache != nil {
		if cached, ok := h.cache.Get(c.Request.Context(), dashboardCacheKey); ok {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var totalUsers int64
	h.db.Model(&models.User{}).Count(&totalUsers)

	var activeAlerts int64
	h.db.Model(&models.Alert{}).
		Where("status IN ?", []string{models.AlertActive, models.AlertPending, models.AlertSent}).
		Where("created_at >= ?", now.Add(-24*time.Hour)).
		Count(&activeAlerts)

	var incidentsToday int64
	h.db.Model(&models.Incident{}).Where("created_at >= ?", startOfDay).Count(&incidentsToday)

	uptime, err := host.Uptime()
	if err != nil {
		logger.Warn("could not read host uptime", zap.Error(err))
	}

	alertTrend := h.dailyCounts(&models.Alert{}, startOfDay.AddDate(0, 0, -6), 7)
	userGrowth := h.dailyCounts(&models.User{}, startOfDay.AddDate(0, 0, -29), 30)

	var recent []models.ActivityLog
	h.db.Order("created_at DESC").Limit(5).Find(&recent)

	payload := map[string]any{
		"total_users":       totalUsers,
		"active_alerts":     activeAlerts,
		"incidents_today":   incidentsToday,
		"uptime_seconds":    uptime,
		"alert_trend":       alertTrend,
		"user_growth":       userGrowth,
		"recent_activities": recent,
	}

	if h.cache != nil {
		if err := h.cache.Set(c.Request.Context(), dashboardCacheKey, payload, 30*time.Second); err != nil {
			logger.Warn("could not cache dashboard summary", zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, payload)
}

// dailyCounts buckets created_at per calendar day over the window, filling
// zero days so charts stay continuous. Bucketing happens in Go to keep the
// query portable across drivers.
func (h *Handlers) dailyCounts(model any, from time.Time, days int) []trendPoint {
	var rows []struct{ CreatedAt time.Time }
	h.db.Model(model).Select("created_at").Where("created_at >= ?", from).Scan(&rows)

	counts := make(map[string]int64, days)
	for _, r := range rows {
		counts[r.CreatedAt.Format("2006-01-02")]++
	}

	out := make([]trendPoint, 0, days)
	for i := 0; i < days; i++ {
		day := from.AddDate(0, 0, i).Format("2006-01-02")
		out = append(out, trendPoint{Date: day, Count: counts[day]})
	}
	return out
}
