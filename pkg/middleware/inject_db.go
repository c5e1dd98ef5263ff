package middleware

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// DbField is the gin context key holding the request-scoped *gorm.DB.
const DbField = "db"

// InjectDB puts the singleton DB on every request context.
func InjectDB(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(DbField, db)
		c.Next()
	}
}
