package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mssola/user_agent"
	"go.uber.org/zap"

	"github.com/cresszm/cress/internal/models"
	"github.com/cresszm/cress/pkg/config"
	"github.com/cresszm/cress/pkg/logger"
	"github.com/cresszm/cress/pkg/response"
)

// UploadAPK replaces the published mobile build. Only one APK is live at a
// time; the previous object and its row are removed after the new one lands.
func (h *Handlers) UploadAPK(c *gin.Context) {
	name := c.PostForm("name")
	fileHeader, err := c.FormFile("apk_file")

	errs := fieldErrors{}
	if name == "" {
		errs.add("name", "The name field is required.")
	} else if len(name) > 100 {
		errs.add("name", "The name field must not be greater than 100 characters.")
	}
	if err != nil {
		errs.add("apk_file", "The apk_file field is required.")
	} else {
		ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
		if ext != ".apk" && ext != ".zip" {
			errs.add("apk_file", "The apk_file field must be a file of type: apk, zip.")
		}
		maxBytes := int64(config.GlobalConfig.APKMaxSizeMB) * 1024 * 1024
		if fileHeader.Size > maxBytes {
			errs.add("apk_file", fmt.Sprintf("The apk_file field must not be greater than %d megabytes.", config.GlobalConfig.APKMaxSizeMB))
		}
	}
	if errs.any() {
		response.ValidationError(c, errs)
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		response.Fail(c, "could not read upload", nil)
		return
	}
	defer src.Close()

	key := "apks/" + name + ".apk"
	if err := h.store.Write(key, src, fileHeader.Size); err != nil {
		logger.Error("apk store failed", zap.String("key", key), zap.Error(err))
		response.Fail(c, "could not store upload", nil)
		return
	}

	// Retire every previous build so exactly one row survives. When the new
	// upload reuses the same key the object was already overwritten, so only
	// the row is removed.
	var previous []models.File
	h.db.Where("type = ?", models.OwnerAPK).Find(&previous)
	for _, old := range previous {
		if old.FilePath != key {
			if err := h.store.Delete(old.FilePath); err != nil {
				logger.Warn("could not delete old apk object", zap.String("key", old.FilePath), zap.Error(err))
			}
		}
		if err := h.orm(c).Delete(&old).Error; err != nil {
			logger.Warn("could not delete old apk row", zap.Uint("id", old.ID), zap.Error(err))
		}
	}

	file := models.File{
		Name:      name,
		FilePath:  key,
		OwnerKind: models.OwnerAPK,
		Status:    "active",
	}
	if err := h.orm(c).Create(&file).Error; err != nil {
		response.Fail(c, "could not record upload", nil)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "APK uploaded successfully", "file": file})
}

// DownloadAPK streams the live build and records the visit for download
// analytics. It is the only unauthenticated file route.
func (h *Handlers) DownloadAPK(c *gin.Context) {
	var file models.File
	err := h.db.
		Where("type = ? AND status = ?", models.OwnerAPK, "active").
		Order("created_at DESC").
		First(&file).Error
	if err != nil {
		response.NotFound(c, "No APK available for download")
		return
	}

	obj, size, err := h.store.Read(file.FilePath)
	if err != nil {
		logger.Error("apk read failed", zap.String("key", file.FilePath), zap.Error(err))
		response.NotFound(c, "No APK available for download")
		return
	}
	defer obj.Close()

	h.recordVisitor(c)

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name+".apk"))
	c.DataFromReader(http.StatusOK, size, "application/vnd.android.package-archive", obj, nil)
}

// recordVisitor parses the user agent into a download analytics row. Failures
// never interfere with the download itself.
func (h *Handlers) recordVisitor(c *gin.Context) {
	ua := user_agent.New(c.Request.UserAgent())
	browser, version := ua.Browser()
	deviceType := "desktop"
	if ua.Mobile() {
		deviceType = "mobile"
	} else if ua.Bot() {
		deviceType = "bot"
	}
	visitor := models.Visitor{
		IP:             c.ClientIP(),
		DeviceOS:       ua.OS(),
		DeviceType:     deviceType,
		Browser:        browser,
		BrowserVersion: version,
	}
	if err := h.db.Create(&visitor).Error; err != nil {
		logger.Warn("could not record visitor", zap.Error(err))
	}
}
