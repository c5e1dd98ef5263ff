package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cresszm/cress/internal/models"
	"github.com/cresszm/cress/pkg/response"
)

// loadCenterAttachments pulls the center's images and files by owner kind.
func (h *Handlers) loadCenterAttachments(center *models.Center) {
	h.db.Where("type = ? AND ref_id = ?", models.OwnerCenter, center.ID).Find(&center.Images)
	h.db.Where("type = ? AND ref_id = ?", models.OwnerCenter, center.ID).Find(&center.Files)
}

// ListCenters filters the directory by search text, status, type and
// verification state.
func (h *Handlers) ListCenters(c *gin.Context) {
	q := h.db.Model(&models.Center{})
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		q = q.Where("name LIKE ? OR address LIKE ?", like, like)
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if t := c.Query("type"); t != "" {
		q = q.Where("type = ?", t)
	}
	if v := c.Query("verified"); v != "" {
		q = q.Where("is_verified = ?", v == "1" || v == "true")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		response.Fail(c, "could not list health centers", nil)
		return
	}
	pageNum, perPage := pagination(c, 15)
	var centers []models.Center
	if err := q.Order("created_at DESC").Offset((pageNum - 1) * perPage).Limit(perPage).Find(&centers).Error; err != nil {
		response.Fail(c, "could not list health centers", nil)
		return
	}
	c.JSON(http.StatusOK, page{Data: centers, Total: total, Page: pageNum, PerPage: perPage})
}

// CenterStats summarizes the directory for the admin dashboard cards.
func (h *Handlers) CenterStats(c *gin.Context) {
	count := func(q ...interface{}) int64 {
		var n int64
		db := h.db.Model(&models.Center{})
		if len(q) > 0 {
			db = db.Where(q[0], q[1:]...)
		}
		db.Count(&n)
		return n
	}
	c.JSON(http.StatusOK, gin.H{
		"total":      count(),
		"verified":   count("is_verified = ?", true),
		"hospitals":  count("type = ?", "hospital"),
		"clinics":    count("type = ?", "clinic"),
		"pharmacies": count("type = ?", "pharmacy"),
	})
}

type centerRequest struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Phone       string  `json:"phone"`
	Type        string  `json:"type"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Status      string  `json:"status"`
	Address     string  `json:"address"`
	Description string  `json:"description"`
}

func (r centerRequest) validate() fieldErrors {
	errs := fieldErrors{}
	if r.Name == "" {
		errs.add("name", "The name field is required.")
	}
	if r.Type == "" || !models.ValidCenterType(r.Type) {
		errs.add("type", "The selected type is invalid.")
	}
	if r.Status != "" && !models.ValidCenterStatus(r.Status) {
		errs.add("status", "The selected status is invalid.")
	}
	if r.Email != "" && !validEmail(r.Email) {
		errs.add("email", "The email field must be a valid email address.")
	}
	return errs
}

func (h *Handlers) CreateCenterWeb(c *gin.Context) {
	var req centerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "invalid request body", nil)
		return
	}
	if errs := req.validate(); errs.any() {
		response.ValidationError(c, errs)
		return
	}

	user := models.CurrentUser(c)
	center := models.Center{
		UserID:      user.ID,
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Type:        req.Type,
		Lat:         req.Lat,
		Lng:         req.Lng,
		Status:      req.Status,
		Address:     req.Address,
		Description: req.Description,
	}
	if center.Status == "" {
		center.Status = "active"
	}
	if err := h.orm(c).Create(&center).Error; err != nil {
		response.Fail(c, "could not create health center", nil)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Health center created successfully", "center": center})
}

func (h *Handlers) GetCenterWeb(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		response.NotFound(c, "Health center not found")
		return
	}
	var center models.Center
	if err := h.db.Preload("User").First(&center, id).Error; err != nil {
		response.NotFound(c, "Health center not found")
		return
	}
	h.loadCenterAttachments(&center)
	c.JSON(http.StatusOK, gin.H{"center": center})
}

type updateCenterRequest struct {
	Name        *string  `json:"name"`
	Email       *string  `json:"email"`
	Phone       *string  `json:"phone"`
	Type        *string  `json:"type"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
	Status      *string  `json:"status"`
	Address     *string  `json:"address"`
	Description *string  `json:"description"`
}

func (r updateCenterRequest) validate() fieldErrors {
	errs := fieldErrors{}
	if r.Type != nil && !models.ValidCenterType(*r.Type) {
		errs.add("type", "The selected type is invalid.")
	}
	if r.Status != nil && !models.ValidCenterStatus(*r.Status) {
		errs.add("status", "The selected status is invalid.")
	}
	if r.Email != nil && *r.Email != "" && !validEmail(*r.Email) {
		errs.add("email", "The email field must be a valid email address.")
	}
	return errs
}

func (r updateCenterRequest) changes() map[string]interface{} {
	updates := map[string]interface{}{}
	if r.Name != nil {
		updates["name"] = *r.Name
	}
	if r.Email != nil {
		updates["email"] = *r.Email
	}
	if r.Phone != nil {
		updates["phone"] = *r.Phone
	}
	if r.Type != nil {
		updates["type"] = *r.Type
	}
	if r.Lat != nil {
		updates["lat"] = *r.Lat
	}
	if r.Lng != nil {
		updates["lng"] = *r.Lng
	}
	if r.Status != nil {
		updates["status"] = *r.Status
	}
	if r.Address != nil {
		updates["address"] = *r.Address
	}
	if r.Description != nil {
		updates["description"] = *r.Description
	}
	return updates
}

func (h *Handlers) UpdateCenterWeb(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		response.NotFound(c, "Health center not found")
		return
	}
	var center models.Center
	if err := h.db.First(&center, id).Error; err != nil {
		response.NotFound(c, "Health center not found")
		return
	}
	var req updateCenterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "invalid request body", nil)
		return
	}
	if errs := req.validate(); errs.any() {
		response.ValidationError(c, errs)
		return
	}
	if updates := req.changes(); len(updates) > 0 {
		if err := h.orm(c).Model(&center).Updates(updates).Error; err != nil {
			response.Fail(c, "could not update health center", nil)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Health center updated successfully", "center": center})
}

func (h *Handlers) DeleteCenterWeb(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		response.NotFound(c, "Health center not found")
		return
	}
	var center models.Center
	if err := h.db.First(&center, id).Error; err != nil {
		response.NotFound(c, "Health center not found")
		return
	}
	if err := h.orm(c).Delete(&center).Error; err != nil {
		response.Fail(c, "could not delete health center", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Health center deleted successfully"})
}

// ToggleCenterVerification flips the verified flag.
func (h *Handlers) ToggleCenterVerification(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		response.NotFound(c, "Health center not found")
		return
	}
	var center models.Center
	if err := h.db.First(&center, id).Error; err != nil {
		response.NotFound(c, "Health center not found")
		return
	}
	if err := h.orm(c).Model(&center).Updates(map[string]interface{}{"is_verified": !center.IsVerified}).Error; err != nil {
		response.Fail(c, "could not update health center", nil)
		return
	}
	center.IsVerified = !center.IsVerified
	c.JSON(http.StatusOK, gin.H{"message": "Verification status updated", "is_verified": center.IsVerified})
}

// ---- JSON API ----

func (h *Handlers) APIListCenters(c *gin.Context) {
	var centers []models.Center
	if err := h.db.Preload("User").Find(&centers).Error; err != nil {
		response.Fail(c, "could not list health centers", nil)
		return
	}
	response.Success(c, "", centers)
}

func (h *Handlers) APIGetCenter(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		response.NotFound(c, "Health center not found")
		return
	}
	var center models.Center
	if err := h.db.Preload("User").First(&center, id).Error; err != nil {
		response.NotFound(c, "Health center not found")
		return
	}
	h.loadCenterAttachments(&center)
	response.Success(c, "", center)
}

// APISearchCenters matches the filter text against the identifying columns.
func (h *Handlers) APISearchCenters(c *gin.Context) {
	like := "%" + c.Param("filter") + "%"
	var centers []models.Center
	err := h.db.
		Where("name LIKE ? OR email LIKE ? OR phone LIKE ? OR address LIKE ? OR description LIKE ?",
			like, like, like, like, like).
		Find(&centers).Error
	if err != nil {
		response.Fail(c, "could not search health centers", nil)
		return
	}
	response.Success(c, "", centers)
}

func (h *Handlers) APICreateCenter(c *gin.Context) {
	var req centerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "invalid request body", nil)
		return
	}
	if errs := req.validate(); errs.any() {
		response.ValidationError(c, errs)
		return
	}
	user := models.CurrentUser(c)
	center := models.Center{
		UserID:      user.ID,
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Type:        req.Type,
		Lat:         req.Lat,
		Lng:         req.Lng,
		Status:      req.Status,
		Address:     req.Address,
		Description: req.Description,
	}
	if center.Status == "" {
		center.Status = "active"
	}
	if err := h.orm(c).Create(&center).Error; err != nil {
		response.Fail(c, "could not create health center", nil)
		return
	}
	response.Success(c, "Health center created successfully", center)
}

func (h *Handlers) APIUpdateCenter(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		response.NotFound(c, "Health center not found")
		return
	}
	var center models.Center
	if err := h.db.First(&center, id).Error; err != nil {
		response.NotFound(c, "Health center not found")
		return
	}
	var req updateCenterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "invalid request body", nil)
		return
	}
	if errs := req.validate(); errs.any() {
		response.ValidationError(c, errs)
		return
	}
	if updates := req.changes(); len(updates) > 0 {
		if err := h.orm(c).Model(&center).Updates(updates).Error; err != nil {
			response.Fail(c, "could not update health center", nil)
			return
		}
	}
	response.Success(c, "Health center updated successfully", center)
}

// APIDeleteCenterByName removes the center matching the given name exactly.
func (h *Handlers) APIDeleteCenterByName(c *gin.Context) {
	var center models.Center
	if err := h.db.Where("name = ?", c.Param("name")).First(&center).Error; err != nil {
		response.NotFound(c, "Health center not found")
		return
	}
	if err := h.orm(c).Delete(&center).Error; err != nil {
		response.Fail(c, "could not delete health center", nil)
		return
	}
	response.Success(c, "Health center deleted successfully", nil)
}

func (h *Handlers) APIDeleteCenter(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		response.NotFound(c, "Health center not found")
		return
	}
	var center models.Center
	if err := h.db.First(&center, id).Error; err != nil {
		response.NotFound(c, "Health center not found")
		return
	}
	if err := h.orm(c).Delete(&center).Error; err != nil {
		response.Fail(c, "could not delete health center", nil)
		return
	}
	response.Success(c, "Health center deleted successfully", nil)
}
