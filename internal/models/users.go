package models

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleUser      = "user"

	StatusActive    = "active"
	StatusPending   = "pending"
	StatusSuspended = "suspended"
	StatusRejected  = "rejected"
	StatusBanned    = "banned"
)

// Gin context / session keys.
const (
	UserField     = "user"
	SessionUserID = "user_id"
)

// Signal names emitted by the model layer.
const (
	SigUserCreate = "user.create"
	SigAlertSent  = "alert.sent"
)

type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"size:255;not null" json:"name"`
	Email        string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255" json:"-"`
	Role         string `gorm:"size:32;default:user;index" json:"role"`
	Status       string `gorm:"size:32;default:pending;index" json:"status"`
	Phone        string `gorm:"size:20" json:"phone"`
	Sex          string `gorm:"size:16" json:"sex"`
	Address      string `gorm:"size:255" json:"address"`
	Town         string `gorm:"size:255" json:"town"`
	Country      string `gorm:"size:255" json:"country"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Contacts  []Contact  `gorm:"constraint:OnDelete:CASCADE" json:"contacts,omitempty"`
	Alerts    []Alert    `gorm:"constraint:OnDelete:CASCADE" json:"alerts,omitempty"`
	Incidents []Incident `gorm:"constraint:OnDelete:CASCADE" json:"incidents,omitempty"`
}

func (User) LogName() string { return "user" }

func (u *User) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plain)) == nil
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

func GetUserByEmail(db *gorm.DB, email string) (*User, error) {
	var u User
	if err := db.Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// CurrentUser returns the authenticated user placed on the context by
// AuthRequired or TokenRequired, or nil.
func CurrentUser(c *gin.Context) *User {
	if v, ok := c.Get(UserField); ok {
		if u, ok := v.(*User); ok {
			return u
		}
	}
	return nil
}

// AuthRequired guards session routes. Unauthenticated requests are sent to
// the login page.
func AuthRequired(c *gin.Context) {
	sess := sessions.Default(c)
	uid, ok := sess.Get(SessionUserID).(uint)
	if !ok {
		c.Redirect(http.StatusFound, "/auth/login")
		c.Abort()
		return
	}
	db := c.MustGet("db").(*gorm.DB)
	var user User
	if err := db.First(&user, uid).Error; err != nil {
		sess.Clear()
		_ = sess.Save()
		c.Redirect(http.StatusFound, "/auth/login")
		c.Abort()
		return
	}
	c.Set(UserField, &user)
	c.Next()
}

// CheckUserStatus flushes the session and bounces suspended, rejected or
// banned accounts back to login. Admins are exempt.
func CheckUserStatus(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil || user.IsAdmin() || user.Status == StatusActive || user.Status == StatusPending {
		c.Next()
		return
	}
	var message string
	switch user.Status {
	case StatusSuspended:
		message = "Your account is suspended. Please contact support."
	case StatusRejected:
		message = "Your account application was rejected."
	case StatusBanned:
		message = "Your account has been banned."
	default:
		message = "Your account is not active. Kindly contact support."
	}
	sess := sessions.Default(c)
	sess.Clear()
	sess.AddFlash(message, "error")
	_ = sess.Save()
	c.Redirect(http.StatusFound, "/auth/login")
	c.Abort()
}

// AdminRequired redirects non-admin users to the dashboard with a flash
// error instead of serving the protected data.
func AdminRequired(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil || !user.IsAdmin() {
		sess := sessions.Default(c)
		sess.AddFlash("You do not have permission to access this page.", "error")
		_ = sess.Save()
		c.Redirect(http.StatusFound, "/dashboard")
		c.Abort()
		return
	}
	c.Next()
}
