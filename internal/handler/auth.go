package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/cresszm/cress/internal/models"
	"github.com/cresszm/cress/pkg/response"
	"github.com/cresszm/cress/pkg/util"
)

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Sex      string `json:"sex"`
	Address  string `json:"address"`
	Town     string `json:"town"`
	Country  string `json:"country"`
}

func (h *Handlers) handleUserSignup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "invalid request body", nil)
		return
	}

	errs := fieldErrors{}
	if req.Name == "" {
		errs.add("name", "The name field is required.")
	}
	if !validEmail(req.Email) {
		errs.add("email", "The email must be a valid email address.")
	}
	if len(req.Password) < 8 {
		errs.add("password", "The password must be at least 8 characters.")
	}
	if errs.any() {
		response.ValidationError(c, errs)
		return
	}

	if _, err := models.GetUserByEmail(h.db, req.Email); err == nil {
		errs.add("email", "The email has already been taken.")
		response.ValidationError(c, errs)
		return
	}

	user := models.User{
		Name:    req.Name,
		Email:   req.Email,
		Role:    models.RoleUser,
		Status:  models.StatusPending,
		Phone:   req.Phone,
		Sex:     req.Sex,
		Address: req.Address,
		Town:    req.Town,
		Country: req.Country,
	}
	if err := user.SetPassword(req.Password); err != nil {
		response.Fail(c, "could not hash password", nil)
		return
	}
	if err := h.orm(c).Create(&user).Error; err != nil {
		response.Fail(c, "could not create user", nil)
		return
	}
	util.Sig().Emit(models.SigUserCreate, &user)

	sess := sessions.Default(c)
	sess.Set(models.SessionUserID, user.ID)
	_ = sess.Save()

	response.Created(c, "User registered successfully", user)
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handlers) handleUserSignin(c *gin.Context) {
	var req signinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "invalid request body", nil)
		return
	}

	user, err := models.GetUserByEmail(h.db, req.Email)
	if err != nil || !user.CheckPassword(req.Password) {
		response.ValidationError(c, fieldErrors{
			"email": {"The provided credentials do not match our records."},
		})
		return
	}

	sess := sessions.Default(c)
	sess.Set(models.SessionUserID, user.ID)
	_ = sess.Save()

	response.Success(c, "Signed in", user)
}

// handleLoginPage surfaces any flash errors queued by the status or role
// middleware. The SPA renders the actual form.
func (h *Handlers) handleLoginPage(c *gin.Context) {
	sess := sessions.Default(c)
	flashes := sess.Flashes("error")
	_ = sess.Save()
	c.JSON(http.StatusOK, gin.H{"errors": flashes})
}

func (h *Handlers) handleUserLogout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	_ = sess.Save()
	c.Redirect(http.StatusFound, "/auth/login")
}

// ---- API token auth ----

func (h *Handlers) CreateToken(c *gin.Context) {
	var req signinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "invalid request body", nil)
		return
	}
	errs := fieldErrors{}
	if !validEmail(req.Email) {
		errs.add("email", "The email must be a valid email address.")
	}
	if req.Password == "" {
		errs.add("password", "The password field is required.")
	}
	if errs.any() {
		response.ValidationError(c, errs)
		return
	}

	user, err := models.GetUserByEmail(h.db, req.Email)
	if err != nil || !user.CheckPassword(req.Password) {
		c.JSON(http.StatusOK, gin.H{
			"message": "The provided credentials do not match our records.",
			"success": false,
			"errors": gin.H{
				"email": []string{"The provided credentials do not match our records."},
			},
		})
		return
	}

	token, err := models.IssueToken(h.orm(c), user)
	if err != nil {
		response.Fail(c, "could not issue token", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   "Bearer " + token.Token,
		"user":    user,
	})
}

func (h *Handlers) VerifyToken(c *gin.Context) {
	response.Success(c, "Token valid", models.CurrentUser(c))
}

func (h *Handlers) DeleteToken(c *gin.Context) {
	token := models.CurrentToken(c)
	success := false
	if token != nil && h.orm(c).Delete(token).Error == nil {
		success = true
	}
	c.JSON(http.StatusOK, gin.H{"success": success})
}
