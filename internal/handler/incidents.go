package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cresszm/cress/internal/models"
	"github.com/cresszm/cress/pkg/response"
)

// incidentScope restricts non-admin callers to their own reports.
func (h *Handlers) incidentScope(c *gin.Context) *gorm.DB {
	q := h.db.Model(&models.Incident{})
	user := models.CurrentUser(c)
	if user != nil && !user.IsAdmin() {
		q = q.Where("user_id = ?", user.ID)
	}
	return q
}

// ListIncidents filters by search text, type and status; regular users only
// see incidents they reported.
func (h *Handlers) ListIncidents(c *gin.Context) {
	q := h.incidentScope(c)
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		q = q.Where("name LIKE ? OR area LIKE ? OR details LIKE ?", like, like, like)
	}
	if t := c.Query("type"); t != "" {
		q = q.Where("type = ?", t)
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		response.Fail(c, "could not list incidents", nil)
		return
	}
	pageNum, perPage := pagination(c, 15)
	var incidents []models.Incident
	if err := q.Order("created_at DESC").Offset((pageNum - 1) * perPage).Limit(perPage).Find(&incidents).Error; err != nil {
		response.Fail(c, "could not list incidents", nil)
		return
	}
	c.JSON(http.StatusOK, page{Data: incidents, Total: total, Page: pageNum, PerPage: perPage})
}

// IncidentStats summarizes report volumes; scoped like the listing.
func (h *Handlers) IncidentStats(c *gin.Context) {
	count := func(scope func(*gorm.DB) *gorm.DB) int64 {
		var n int64
		scope(h.incidentScope(c)).Count(&n)
		return n
	}
	all := func(q *gorm.DB) *gorm.DB { return q }

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	type typeCount struct {
		Type  string `json:"type"`
		Count int64  `json:"count"`
	}
	var byType []typeCount
	h.incidentScope(c).Select("type, COUNT(*) AS count").Group("type").Scan(&byType)

	c.JSON(http.StatusOK, gin.H{
		"total":         count(all),
		"reported":      count(func(q *gorm.DB) *gorm.DB { return q.Where("status = ?", "reported") }),
		"investigating": count(func(q *gorm.DB) *gorm.DB { return q.Where("status = ?", "investigating") }),
		"resolved":      count(func(q *gorm.DB) *gorm.DB { return q.Where("status = ?", "resolved") }),
		"today":         count(func(q *gorm.DB) *gorm.DB { return q.Where("created_at >= ?", startOfDay) }),
		"week":          count(func(q *gorm.DB) *gorm.DB { return q.Where("created_at >= ?", startOfDay.AddDate(0, 0, -7)) }),
		"by_type":       byType,
	})
}

type incidentRequest struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Area     string  `json:"area"`
	Details  string  `json:"details"`
	Status   string  `json:"status"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Severity *int    `json:"severity"`
}

func (r incidentRequest) validate() fieldErrors {
	errs := fieldErrors{}
	if r.Name == "" {
		errs.add("name", "The name field is required.")
	}
	if r.Type == "" || !models.ValidIncidentType(r.Type) {
		errs.add("type", "The selected type is invalid.")
	}
	if r.Status != "" && !models.ValidIncidentStatus(r.Status) {
		errs.add("status", "The selected status is invalid.")
	}
	if r.Severity != nil && (*r.Severity < 1 || *r.Severity > 5) {
		errs.add("severity", "The severity field must be between 1 and 5.")
	}
	return errs
}

func (h *Handlers) CreateIncidentWeb(c *gin.Context) {
	var req incidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "invalid request body", nil)
		return
	}
	if errs := req.validate(); errs.any() {
		response.ValidationError(c, errs)
		return
	}

	user := models.CurrentUser(c)
	incident := models.Incident{
		UserID:   user.ID,
		Name:     req.Name,
		Type:     req.Type,
		Area:     req.Area,
		Details:  req.Details,
		Status:   req.Status,
		Lat:      req.Lat,
		Lng:      req.Lng,
		Severity: req.Severity,
	}
	if incident.Status == "" {
		incident.Status = "reported"
	}
	if err := h.orm(c).Create(&incident).Error; err != nil {
		response.Fail(c, "could not create incident", nil)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Incident reported successfully", "incident": incident})
}

// findScopedIncident loads an incident the caller may act on.
func (h *Handlers) findScopedIncident(c *gin.Context) (*models.Incident, bool) {
	id, ok := pathID(c)
	if !ok {
		response.NotFound(c, "Incident not found")
		return nil, false
	}
	var incident models.Incident
	if err := h.incidentScope(c).Preload("User").First(&incident, "incidents.id = ?", id).Error; err != nil {
		response.NotFound(c, "Incident not found")
		return nil, false
	}
	return &incident, true
}

func (h *Handlers) GetIncidentWeb(c *gin.Context) {
	incident, ok := h.findScopedIncident(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"incident": incident})
}

type updateIncidentRequest struct {
	Name     *string  `json:"name"`
	Type     *string  `json:"type"`
	Area     *string  `json:"area"`
	Details  *string  `json:"details"`
	Status   *string  `json:"status"`
	Lat      *float64 `json:"lat"`
	Lng      *float64 `json:"lng"`
	Severity *int     `json:"severity"`
}

func (r updateIncidentRequest) validate() fieldErrors {
	errs := fieldErrors{}
	if r.Type != nil && !models.ValidIncidentType(*r.Type) {
		errs.add("type", "The selected type is invalid.")
	}
	if r.Status != nil && !models.ValidIncidentStatus(*r.Status) {
		errs.add("status", "The selected status is invalid.")
	}
	if r.Severity != nil && (*r.Severity < 1 || *r.Severity > 5) {
		errs.add("severity", "The severity field must be between 1 and 5.")
	}
	return errs
}

func (r updateIncidentRequest) changes() map[string]interface{} {
	updates := map[string]interface{}{}
	if r.Name != nil {
		updates["name"] = *r.Name
	}
	if r.Type != nil {
		updates["type"] = *r.Type
	}
	if r.Area != nil {
		updates["area"] = *r.Area
	}
	if r.Details != nil {
		updates["details"] = *r.Details
	}
	if r.Status != nil {
		updates["status"] = *r.Status
	}
	if r.Lat != nil {
		updates["lat"] = *r.Lat
	}
	if r.Lng != nil {
		updates["lng"] = *r.Lng
	}
	if r.Severity != nil {
		updates["severity"] = *r.Severity
	}
	return updates
}

func (h *Handlers) UpdateIncidentWeb(c *gin.Context) {
	incident, ok := h.findScopedIncident(c)
	if !ok {
		return
	}
	var req updateIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "invalid request body", nil)
		return
	}
	if errs := req.validate(); errs.any() {
		response.ValidationError(c, errs)
		return
	}
	if updates := req.changes(); len(updates) > 0 {
		if err := h.orm(c).Model(incident).Updates(updates).Error; err != nil {
			response.Fail(c, "could not update incident", nil)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Incident updated successfully", "incident": incident})
}

func (h *Handlers) DeleteIncidentWeb(c *gin.Context) {
	incident, ok := h.findScopedIncident(c)
	if !ok {
		return
	}
	if err := h.orm(c).Delete(incident).Error; err != nil {
		response.Fail(c, "could not delete incident", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Incident deleted successfully"})
}

// UpdateIncidentStatus is the quick status transition used by the listing UI.
func (h *Handlers) UpdateIncidentStatus(c *gin.Context) {
	incident, ok := h.findScopedIncident(c)
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" form:"status"`
	}
	if err := c.ShouldBind(&req); err != nil || !models.ValidIncidentStatus(req.Status) {
		response.ValidationError(c, fieldErrors{"status": {"The selected status is invalid."}})
		return
	}
	if err := h.orm(c).Model(incident).Updates(map[string]interface{}{"status": req.Status}).Error; err != nil {
		response.Fail(c, "could not update incident", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Incident status updated successfully", "incident": incident})
}

// ---- JSON API ----

func (h *Handlers) APIListIncidents(c *gin.Context) {
	var incidents []models.Incident
	if err := h.db.Preload("User").Find(&incidents).Error; err != nil {
		response.Fail(c, "could not list incidents", nil)
		return
	}
	response.Success(c, "", incidents)
}

func (h *Handlers) APIGetIncident(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		response.NotFound(c, "Incident not found")
		return
	}
	var incident models.Incident
	if err := h.db.Preload("User").First(&incident, id).Error; err != nil {
		response.NotFound(c, "Incident not found")
		return
	}
	response.Success(c, "", incident)
}

type apiCreateIncidentRequest struct {
	incidentRequest
	UserID uint `json:"user_id"`
}

func (h *Handlers) APICreateIncident(c *gin.Context) {
	var req apiCreateIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "invalid request body", nil)
		return
	}
	errs := req.validate()
	if req.UserID == 0 {
		errs.add("user_id", "The user_id field is required.")
	} else {
		var n int64
		h.db.Model(&models.User{}).Where("id = ?", req.UserID).Count(&n)
		if n == 0 {
			errs.add("user_id", "The selected user_id is invalid.")
		}
	}
	if errs.any() {
		response.ValidationError(c, errs)
		return
	}

	incident := models.Incident{
		UserID:   req.UserID,
		Name:     req.Name,
		Type:     req.Type,
		Area:     req.Area,
		Details:  req.Details,
		Status:   req.Status,
		Lat:      req.Lat,
		Lng:      req.Lng,
		Severity: req.Severity,
	}
	if incident.Status == "" {
		incident.Status = "reported"
	}
	if err := h.orm(c).Create(&incident).Error; err != nil {
		response.Fail(c, "could not create incident", nil)
		return
	}
	response.Success(c, "Incident created successfully", incident)
}

func (h *Handlers) APIUpdateIncident(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		response.NotFound(c, "Incident not found")
		return
	}
	var incident models.Incident
	if err := h.db.First(&incident, id).Error; err != nil {
		response.NotFound(c, "Incident not found")
		return
	}
	var req updateIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "invalid request body", nil)
		return
	}
	if errs := req.validate(); errs.any() {
		response.ValidationError(c, errs)
		return
	}
	if updates := req.changes(); len(updates) > 0 {
		if err := h.orm(c).Model(&incident).Updates(updates).Error; err != nil {
			response.Fail(c, "could not update incident", nil)
			return
		}
	}
	response.Success(c, "Incident updated successfully", incident)
}

func (h *Handlers) APIDeleteIncident(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		response.NotFound(c, "Incident not found")
		return
	}
	var incident models.Incident
	if err := h.db.First(&incident, id).Error; err != nil {
		response.NotFound(c, "Incident not found")
		return
	}
	if err := h.orm(c).Delete(&incident).Error; err != nil {
		response.Fail(c, "could not delete incident", nil)
		return
	}
	response.Success(c, "Incident deleted successfully", nil)
}
