package models

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cresszm/cress/pkg/util"
)

// ApiToken is a bearer credential issued from email+password.
type ApiToken struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"not null;index" json:"user_id"`
	Name       string     `gorm:"size:255" json:"name"`
	Token      string     `gorm:"size:64;uniqueIndex;not null" json:"-"`
	LastUsedAt *time.Time `json:"last_used_at"`
	CreatedAt  time.Time  `json:"created_at"`

	User *User `json:"user,omitempty"`
}

// IssueToken creates a fresh token for the user.
func IssueToken(db *gorm.DB, user *User) (*ApiToken, error) {
	token := &ApiToken{
		UserID: user.ID,
		Name:   user.Name,
		Token:  util.RandomToken(32),
	}
	if err := db.Create(token).Error; err != nil {
		return nil, err
	}
	return token, nil
}

const tokenField = "api_token"

// CurrentToken returns the token record authenticating this request, if any.
func CurrentToken(c *gin.Context) *ApiToken {
	if v, ok := c.Get(tokenField); ok {
		if t, ok := v.(*ApiToken); ok {
			return t
		}
	}
	return nil
}

// TokenRequired authenticates API requests via "Authorization: Bearer <token>".
func TokenRequired(c *gin.Context) {
	header := c.GetHeader("Authorization")
	raw := strings.TrimPrefix(header, "Bearer ")
	if raw == "" || raw == header {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Unauthorized", "data": nil})
		return
	}
	db := c.MustGet("db").(*gorm.DB)
	var token ApiToken
	if err := db.Preload("User").Where("token = ?", raw).First(&token).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Unauthorized", "data": nil})
		return
	}
	now := time.Now()
	db.Model(&token).Update("last_used_at", now)
	c.Set(tokenField, &token)
	c.Set(UserField, token.User)
	c.Next()
}
