package audit

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cresszm/cress/internal/models"
)

// Middleware stamps the request context with the acting user and request
// metadata so gorm callbacks can attribute writes. It must run after
// authentication and before any handler touching the database.
func Middleware(geo *GeoIP) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := Actor{
			IP:        c.ClientIP(),
			UserAgent: c.GetHeader("User-Agent"),
			BatchUUID: uuid.NewString(),
		}
		if user := models.CurrentUser(c); user != nil {
			actor.ID = user.ID
			actor.Type = "user"
		}
		actor.Location = geo.City(actor.IP)

		c.Request = c.Request.WithContext(WithActor(c.Request.Context(), actor))
		c.Next()
	}
}
