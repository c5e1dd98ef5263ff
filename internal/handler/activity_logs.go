package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cresszm/cress/internal/models"
	"github.com/cresszm/cress/pkg/response"
)

// ListActivityLogs is the admin audit trail with search and the dropdown
// values used to filter it.
func (h *Handlers) ListActivityLogs(c *gin.Context) {
	pageNum, perPage := pagination(c, 10)
	logs, total, err := models.QueryActivityLogs(h.db, models.ActivityLogFilter{
		Search:  c.Query("search"),
		Event:   c.Query("event"),
		LogName: c.Query("log_name"),
		Page:    pageNum,
		PerPage: perPage,
	})
	if err != nil {
		response.Fail(c, "could not list activity logs", nil)
		return
	}

	events, _ := models.DistinctActivityValues(h.db, "event")
	logNames, _ := models.DistinctActivityValues(h.db, "log_name")

	c.JSON(http.StatusOK, gin.H{
		"data":      logs,
		"total":     total,
		"page":      pageNum,
		"per_page":  perPage,
		"events":    events,
		"log_names": logNames,
	})
}
