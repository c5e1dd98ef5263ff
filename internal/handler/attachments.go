package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/cresszm/cress/internal/models"
	"github.com/cresszm/cress/pkg/response"
)

type attachmentRequest struct {
	Name      string `json:"name"`
	RefID     uint   `json:"ref_id"`
	Path      string `json:"path"`
	OwnerKind string `json:"type"`
	Status    string `json:"status"`
}

func (r attachmentRequest) validate() fieldErrors {
	errs := fieldErrors{}
	if r.Name == "" {
		errs.add("name", "The name field is required.")
	}
	if r.Path == "" {
		errs.add("path", "The path field is required.")
	}
	if !models.ValidOwnerKind(r.OwnerKind) {
		errs.add("type", "The selected type is invalid.")
	}
	return errs
}

// ---- files ----

func (h *Handlers) APIListFiles(c *gin.Context) {
	var files []models.File
	if err := h.db.Find(&files).Error; err != nil {
		response.Fail(c, "could not list files", nil)
		return
	}
	response.Success(c, "", files)
}

func (h *Handlers) APIGetFile(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		response.NotFound(c, "File not found")
		return
	}
	var file models.File
	if err := h.db.First(&file, id).Error; err != nil {
		response.NotFound(c, "File not found")
		return
	}
	response.Success(c, "", file)
}

func (h *Handlers) APICreateFile(c *gin.Context) {
	var req attachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "invalid request body", nil)
		return
	}
	if errs := req.validate(); errs.any() {
		response.ValidationError(c, errs)
		return
	}
	file := models.File{
		Name:      req.Name,
		RefID:     req.RefID,
		FilePath:  req.Path,
		OwnerKind: req.OwnerKind,
		Status:    req.Status,
	}
	if file.Status == "" {
		file.Status = "active"
	}
	if err := h.orm(c).Create(&file).Error; err != nil {
		response.Fail(c, "could not create file", nil)
		return
	}
	response.Success(c, "File created successfully", file)
}

func (h *Handlers) APIUpdateFile(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		response.NotFound(c, "File not found")
		return
	}
	var file models.File
	if err := h.db.First(&file, id).Error; err != nil {
		response.NotFound(c, "File not found")
		return
	}

	var req struct {
		Name   *string `json:"name"`
		RefID  *uint   `json:"ref_id"`
		Path   *string `json:"path"`
		Status *string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "invalid request body", nil)
		return
	}
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.RefID != nil {
		updates["ref_id"] = *req.RefID
	}
	if req.Path != nil {
		updates["file_path"] = *req.Path
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if len(updates) > 0 {
		if err := h.orm(c).Model(&file).Updates(updates).Error; err != nil {
			response.Fail(c, "could not update file", nil)
			return
		}
	}
	response.Success(c, "File updated successfully", file)
}

func (h *Handlers) APIDeleteFile(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		response.NotFound(c, "File not found")
		return
	}
	var file models.File
	if err := h.db.First(&file, id).Error; err != nil {
		response.NotFound(c, "File not found")
		return
	}
	if err := h.orm(c).Delete(&file).Error; err != nil {
		response.Fail(c, "could not delete file", nil)
		return
	}
	response.Success(c, "File deleted successfully", nil)
}

// ---- images ----

func (h *Handlers) APIListImages(c *gin.Context) {
	var images []models.Image
	if err := h.db.Find(&images).Error; err != nil {
		response.Fail(c, "could not list images", nil)
		return
	}
	response.Success(c, "", images)
}

func (h *Handlers) APIGetImage(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		response.NotFound(c, "Image not found")
		return
	}
	var image models.Image
	if err := h.db.First(&image, id).Error; err != nil {
		response.NotFound(c, "Image not found")
		return
	}
	response.Success(c, "", image)
}

func (h *Handlers) APICreateImage(c *gin.Context) {
	var req attachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "invalid request body", nil)
		return
	}
	if errs := req.validate(); errs.any() {
		response.ValidationError(c, errs)
		return
	}
	image := models.Image{
		Name:      req.Name,
		RefID:     req.RefID,
		ImagePath: req.Path,
		OwnerKind: req.OwnerKind,
		Status:    req.Status,
	}
	if image.Status == "" {
		image.Status = "active"
	}
	if err := h.orm(c).Create(&image).Error; err != nil {
		response.Fail(c, "could not create image", nil)
		return
	}
	response.Success(c, "Image created successfully", image)
}

func (h *Handlers) APIUpdateImage(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		response.NotFound(c, "Image not found")
		return
	}
	var image models.Image
	if err := h.db.First(&image, id).Error; err != nil {
		response.NotFound(c, "Image not found")
		return
	}

	var req struct {
		Name   *string `json:"name"`
		RefID  *uint   `json:"ref_id"`
		Path   *string `json:"path"`
		Status *string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "invalid request body", nil)
		return
	}
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.RefID != nil {
		updates["ref_id"] = *req.RefID
	}
	if req.Path != nil {
		updates["image_path"] = *req.Path
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if len(updates) > 0 {
		if err := h.orm(c).Model(&image).Updates(updates).Error; err != nil {
			response.Fail(c, "could not update image", nil)
			return
		}
	}
	response.Success(c, "Image updated successfully", image)
}

func (h *Handlers) APIDeleteImage(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		response.NotFound(c, "Image not found")
		return
	}
	var image models.Image
	if err := h.db.First(&image, id).Error; err != nil {
		response.NotFound(c, "Image not found")
		return
	}
	if err := h.orm(c).Delete(&image).Error; err != nil {
		response.Fail(c, "could not delete image", nil)
		return
	}
	response.Success(c, "Image deleted successfully", nil)
}
