package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the JSON API response shape: {status, message, data}.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func Success(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Envelope{Status: "success", Message: message, Data: data})
}

func Created(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, Envelope{Status: "success", Message: message, Data: data})
}

func Fail(c *gin.Context, message string, data any) {
	c.JSON(http.StatusBadRequest, Envelope{Status: "error", Message: message, Data: data})
}

func FailWithCode(c *gin.Context, code int, message string, data any) {
	c.JSON(code, Envelope{Status: "error", Message: message, Data: data})
}

func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	FailWithCode(c, http.StatusNotFound, message, nil)
}

func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Unauthorized"
	}
	FailWithCode(c, http.StatusUnauthorized, message, nil)
}

// ValidationError returns 422 with field-level messages.
func ValidationError(c *gin.Context, errs map[string][]string) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"status": "error", "message": "The given data was invalid.", "errors": errs})
}
