package handlers

import (
	"net/mail"
	"strconv"

	"github.com/gin-gonic/gin"
)

// fieldErrors accumulates 422-style field-level validation messages.
type fieldErrors map[string][]string

func (f fieldErrors) add(field, message string) {
	f[field] = append(f[field], message)
}

func (f fieldErrors) any() bool { return len(f) > 0 }

func validEmail(s string) bool {
	_, err := mail.ParseAddress(s)
	return err == nil
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// page is the list-response envelope used by paginated endpoints.
type page struct {
	Data    any   `json:"data"`
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
}

func pagination(c *gin.Context, defaultPerPage int) (pageNum, perPage int) {
	pageNum, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if pageNum < 1 {
		pageNum = 1
	}
	perPage, _ = strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(defaultPerPage)))
	if perPage < 1 || perPage > 100 {
		perPage = defaultPerPage
	}
	return pageNum, perPage
}
