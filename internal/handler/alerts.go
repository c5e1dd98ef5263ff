package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cresszm/cress/internal/models"
	"github.com/cresszm/cress/pkg/logger"
	"github.com/cresszm/cress/pkg/metrics"
	"github.com/cresszm/cress/pkg/notification"
	"github.com/cresszm/cress/pkg/response"
	"github.com/cresszm/cress/pkg/util"
)

func validAlertStatus(s string) bool {
	switch s {
	case models.AlertPending, models.AlertActive, models.AlertSent, models.AlertResolved:
		return true
	}
	return false
}

// ListAlerts supports search, status and initiated_at range filters.
func (h *Handlers) ListAlerts(c *gin.Context) {
	q := h.db.Model(&models.Alert{})
	if search := c.Query("search"); search != "" {
		q = q.Where("name LIKE ?", "%"+search+"%")
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if from, to := c.Query("date_from"), c.Query("date_to"); from != "" && to != "" {
		q = q.Where("initiated_at BETWEEN ? AND ?", from, to)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		response.Fail(c, "could not list alerts", nil)
		return
	}
	pageNum, perPage := pagination(c, 15)
	var alerts []models.Alert
	if err := q.Order("created_at DESC").Offset((pageNum - 1) * perPage).Limit(perPage).Find(&alerts).Error; err != nil {
		response.Fail(c, "could not list alerts", nil)
		return
	}
	c.JSON(http.StatusOK, page{Data: alerts, Total: total, Page: pageNum, PerPage: perPage})
}

type createAlertRequest struct {
	Name     string   `json:"name"`
	Status   string   `json:"status"`
	Message  string   `json:"message"`
	Lat      *float64 `json:"lat"`
	Lng      *float64 `json:"lng"`
	Accuracy *float64 `json:"accuracy"`
}

// CreateAlertWeb raises an SOS for the signed-in user. The stored row always
// belongs to the caller; status defaults to pending.
func (h *Handlers) CreateAlertWeb(c *gin.Context) {
	var req createAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "invalid request body", nil)
		return
	}

	errs := fieldErrors{}
	if req.Name == "" {
		errs.add("name", "The name field is required.")
	}
	if req.Message == "" {
		errs.add("message", "The message field is required.")
	}
	if req.Lat == nil {
		errs.add("lat", "The lat field is required.")
	}
	if req.Lng == nil {
		errs.add("lng", "The lng field is required.")
	}
	if req.Status != "" && !validAlertStatus(req.Status) {
		errs.add("status", "The selected status is invalid.")
	}
	if errs.any() {
		response.ValidationError(c, errs)
		return
	}

	user := models.CurrentUser(c)
	now := time.Now()
	alert := models.Alert{
		UserID:      user.ID,
		Name:        req.Name,
		Status:      req.Status,
		Message:     req.Message,
		InitiatedAt: &now,
		Lat:         req.Lat,
		Lng:         req.Lng,
		Accuracy:    req.Accuracy,
	}
	if alert.Status == "" {
		alert.Status = models.AlertPending
	}
	if err := h.orm(c).Create(&alert).Error; err != nil {
		response.Fail(c, "could not create alert", nil)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Alert created successfully", "alert": alert})
}

func (h *Handlers) GetAlertWeb(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		response.NotFound(c, "Alert not found")
		return
	}
	var alert models.Alert
	if err := h.db.Preload("User").First(&alert, id).Error; err != nil {
		response.NotFound(c, "Alert not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"alert": alert})
}

type updateAlertRequest struct {
	Status   *string  `json:"status"`
	Message  *string  `json:"message"`
	Lat      *float64 `json:"lat"`
	Lng      *float64 `json:"lng"`
	Accuracy *float64 `json:"accuracy"`
}

func (r updateAlertRequest) changes() map[string]interface{} {
	updates := map[string]interface{}{}
	if r.Status != nil {
		updates["status"] = *r.Status
	}
	if r.Message != nil {
		updates["message"] = *r.Message
	}
	if r.Lat != nil {
		updates["lat"] = *r.Lat
	}
	if r.Lng != nil {
		updates["lng"] = *r.Lng
	}
	if r.Accuracy != nil {
		updates["accuracy"] = *r.Accuracy
	}
	return updates
}

func (h *Handlers) UpdateAlertWeb(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		response.NotFound(c, "Alert not found")
		return
	}
	var alert models.Alert
	if err := h.db.First(&alert, id).Error; err != nil {
		response.NotFound(c, "Alert not found")
		return
	}

	var req updateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "invalid request body", nil)
		return
	}
	if req.Status != nil && !validAlertStatus(*req.Status) {
		response.ValidationError(c, fieldErrors{"status": {"The selected status is invalid."}})
		return
	}

	if updates := req.changes(); len(updates) > 0 {
		if err := h.orm(c).Model(&alert).Updates(updates).Error; err != nil {
			response.Fail(c, "could not update alert", nil)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Alert updated successfully", "alert": alert})
}

func (h *Handlers) DeleteAlertWeb(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		response.NotFound(c, "Alert not found")
		return
	}
	var alert models.Alert
	if err := h.db.First(&alert, id).Error; err != nil {
		response.NotFound(c, "Alert not found")
		return
	}
	if err := h.orm(c).Delete(&alert).Error; err != nil {
		response.Fail(c, "could not delete alert", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Alert deleted successfully"})
}

// AlertStats reports totals by status plus today/this-week volumes.
func (h *Handlers) AlertStats(c *gin.Context) {
	count := func(q ...interface{}) int64 {
		var n int64
		db := h.db.Model(&models.Alert{})
		if len(q) > 0 {
			db = db.Where(q[0], q[1:]...)
		}
		db.Count(&n)
		return n
	}

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7 // weeks start on Monday
	}
	startOfWeek := startOfDay.AddDate(0, 0, -(weekday - 1))

	c.JSON(http.StatusOK, gin.H{
		"total":    count(),
		"active":   count("status = ?", models.AlertActive),
		"resolved": count("status = ?", models.AlertResolved),
		"pending":  count("status = ?", models.AlertPending),
		"today":    count("initiated_at >= ?", startOfDay),
		"week":     count("initiated_at BETWEEN ? AND ?", startOfWeek, startOfWeek.AddDate(0, 0, 7)),
	})
}

// broadcastFailure reports one contact that could not be notified.
type broadcastFailure struct {
	ContactID uint   `json:"contact_id"`
	Name      string `json:"name"`
	Error     string `json:"error"`
}

// SendAlert mails every emergency contact of the alert's owner. Failures are
// collected per recipient instead of aborting the loop, and the response
// reports partial completion.
func (h *Handlers) SendAlert(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		response.NotFound(c, "Alert not found")
		return
	}
	var alert models.Alert
	if err := h.db.Preload("User").First(&alert, id).Error; err != nil {
		response.NotFound(c, "Alert not found")
		return
	}

	var contacts []models.Contact
	if err := h.db.Where("user_id = ?", alert.UserID).Find(&contacts).Error; err != nil {
		response.Fail(c, "could not load contacts", nil)
		return
	}
	if len(contacts) == 0 {
		response.Fail(c, "No emergency contacts to notify", nil)
		return
	}

	data := notification.AlertMailData{
		Alert:   alert.Name,
		Message: alert.Message,
	}
	if alert.User != nil {
		data.Name = alert.User.Name
		data.Email = alert.User.Email
		data.Phone = alert.User.Phone
	}
	if alert.Lat != nil {
		data.Lat = *alert.Lat
	}
	if alert.Lng != nil {
		data.Lng = *alert.Lng
	}

	sent := 0
	var failed []broadcastFailure
	for _, contact := range contacts {
		if contact.Email == "" {
			failed = append(failed, broadcastFailure{ContactID: contact.ID, Name: contact.Name, Error: "no email address"})
			metrics.ObserveBroadcast(false)
			continue
		}
		if err := notification.SendAlertMessage(h.mailer, contact.Email, data); err != nil {
			logger.Warn("alert mail failed",
				zap.Uint("alert_id", alert.ID),
				zap.Uint("contact_id", contact.ID),
				zap.Error(err))
			failed = append(failed, broadcastFailure{ContactID: contact.ID, Name: contact.Name, Error: err.Error()})
			metrics.ObserveBroadcast(false)
			continue
		}
		sent++
		metrics.ObserveBroadcast(true)
	}

	if sent > 0 {
		if err := h.orm(c).Model(&alert).Updates(map[string]interface{}{"status": models.AlertSent}).Error; err != nil {
			logger.Warn("could not mark alert sent", zap.Uint("alert_id", alert.ID), zap.Error(err))
		}
		util.Sig().Emit(models.SigAlertSent, &alert, sent)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Alert broadcast completed",
		"sent":    sent,
		"failed":  failed,
	})
}

// ---- JSON API ----

func (h *Handlers) APIListAlerts(c *gin.Context) {
	var alerts []models.Alert
	if err := h.db.Preload("User").Find(&alerts).Error; err != nil {
		response.Fail(c, "could not list alerts", nil)
		return
	}
	response.Success(c, "", alerts)
}

func (h *Handlers) APIGetAlert(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		response.NotFound(c, "Alert not found")
		return
	}
	var alert models.Alert
	if err := h.db.Preload("User").First(&alert, id).Error; err != nil {
		response.NotFound(c, "Alert not found")
		return
	}
	response.Success(c, "", alert)
}

type apiCreateAlertRequest struct {
	Name        string     `json:"name"`
	Message     string     `json:"message"`
	InitiatedAt *time.Time `json:"initiated_at"`
	Lat         *float64   `json:"lat"`
	Lng         *float64   `json:"lng"`
	Accuracy    *float64   `json:"accuracy"`
}

func (h *Handlers) APICreateAlert(c *gin.Context) {
	var req apiCreateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "invalid request body", nil)
		return
	}
	if req.Name == "" {
		response.ValidationError(c, fieldErrors{"name": {"The name field is required."}})
		return
	}

	user := models.CurrentUser(c)
	alert := models.Alert{
		UserID:      user.ID,
		Name:        req.Name,
		Status:      models.AlertPending,
		Message:     req.Message,
		InitiatedAt: req.InitiatedAt,
		Lat:         req.Lat,
		Lng:         req.Lng,
		Accuracy:    req.Accuracy,
	}
	if alert.InitiatedAt == nil {
		now := time.Now()
		alert.InitiatedAt = &now
	}
	if err := h.orm(c).Create(&alert).Error; err != nil {
		response.Fail(c, "could not create alert", nil)
		return
	}
	response.Success(c, "Alert created successfully", alert)
}

func (h *Handlers) APIUpdateAlert(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		response.NotFound(c, "Alert not found")
		return
	}
	var alert models.Alert
	if err := h.db.First(&alert, id).Error; err != nil {
		response.NotFound(c, "Alert not found")
		return
	}
	var req updateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "invalid request body", nil)
		return
	}
	if req.Status != nil && !validAlertStatus(*req.Status) {
		response.ValidationError(c, fieldErrors{"status": {"The selected status is invalid."}})
		return
	}
	if updates := req.changes(); len(updates) > 0 {
		if err := h.orm(c).Model(&alert).Updates(updates).Error; err != nil {
			response.Fail(c, "could not update alert", nil)
			return
		}
	}
	response.Success(c, "Alert updated successfully", alert)
}

func (h *Handlers) APIDeleteAlert(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		response.NotFound(c, "Alert not found")
		return
	}
	var alert models.Alert
	if err := h.db.First(&alert, id).Error; err != nil {
		response.NotFound(c, "Alert not found")
		return
	}
	if err := h.orm(c).Delete(&alert).Error; err != nil {
		response.Fail(c, "could not delete alert", nil)
		return
	}
	response.Success(c, "Alert deleted successfully", nil)
}
