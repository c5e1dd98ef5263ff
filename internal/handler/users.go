package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/cresszm/cress/internal/models"
	"github.com/cresszm/cress/pkg/response"
)

func validRole(r string) bool {
	switch r {
	case models.RoleAdmin, models.RoleModerator, models.RoleUser:
		return true
	}
	return false
}

func validUserStatus(s string) bool {
	switch s {
	case models.StatusActive, models.StatusPending, models.StatusSuspended, models.StatusRejected, models.StatusBanned:
		return true
	}
	return false
}

// ListUsers is the admin directory with name/email search.
func (h *Handlers) ListUsers(c *gin.Context) {
	q := h.db.Model(&models.User{})
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		q = q.Where("name LIKE ? OR email LIKE ?", like, like)
	}
	if role := c.Query("role"); role != "" {
		q = q.Where("role = ?", role)
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		response.Fail(c, "could not list users", nil)
		return
	}
	pageNum, perPage := pagination(c, 10)
	var users []models.User
	if err := q.Order("created_at DESC").Offset((pageNum - 1) * perPage).Limit(perPage).Find(&users).Error; err != nil {
		response.Fail(c, "could not list users", nil)
		return
	}
	c.JSON(http.StatusOK, page{Data: users, Total: total, Page: pageNum, PerPage: perPage})
}

func (h *Handlers) GetUserWeb(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		response.NotFound(c, "User not found")
		return
	}
	var user models.User
	if err := h.db.Preload("Contacts").First(&user, id).Error; err != nil {
		response.NotFound(c, "User not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateUserStatus moves an account through the moderation lifecycle. Web
// callers get a flash + redirect like the rest of the admin screens.
func (h *Handlers) UpdateUserStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		response.NotFound(c, "User not found")
		return
	}
	var user models.User
	if err := h.db.First(&user, id).Error; err != nil {
		response.NotFound(c, "User not found")
		return
	}

	var req struct {
		Status string `json:"status" form:"status"`
	}
	if err := c.ShouldBind(&req); err != nil || !validUserStatus(req.Status) {
		response.ValidationError(c, fieldErrors{"status": {"The selected status is invalid."}})
		return
	}
	if err := h.orm(c).Model(&user).Updates(map[string]interface{}{"status": req.Status}).Error; err != nil {
		response.Fail(c, "could not update user status", nil)
		return
	}

	session := sessions.Default(c)
	session.AddFlash("User status updated successfully", "success")
	_ = session.Save()
	c.JSON(http.StatusOK, gin.H{"message": "User status updated successfully", "user": user})
}

func (h *Handlers) UpdateUserRole(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		response.NotFound(c, "User not found")
		return
	}
	var user models.User
	if err := h.db.First(&user, id).Error; err != nil {
		response.NotFound(c, "User not found")
		return
	}

	var req struct {
		Role string `json:"role" form:"role"`
	}
	if err := c.ShouldBind(&req); err != nil || !validRole(req.Role) {
		response.ValidationError(c, fieldErrors{"role": {"The selected role is invalid."}})
		return
	}

	// The last admin cannot demote themselves to a lockout.
	actor := models.CurrentUser(c)
	if actor != nil && actor.ID == user.ID && user.Role == models.RoleAdmin && req.Role != models.RoleAdmin {
		var admins int64
		h.db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&admins)
		if admins <= 1 {
			response.ValidationError(c, fieldErrors{"role": {"Cannot demote the only administrator."}})
			return
		}
	}

	if err := h.orm(c).Model(&user).Updates(map[string]interface{}{"role": req.Role}).Error; err != nil {
		response.Fail(c, "could not update user role", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User role updated successfully", "user": user})
}

// ---- JSON API ----

func (h *Handlers) APIListUsers(c *gin.Context) {
	var users []models.User
	if err := h.db.Preload("Contacts").Preload("Alerts").Preload("Incidents").Find(&users).Error; err != nil {
		response.Fail(c, "could not list users", nil)
		return
	}
	response.Success(c, "", users)
}

func (h *Handlers) APIGetUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		response.NotFound(c, "User not found")
		return
	}
	var user models.User
	if err := h.db.Preload("Contacts").Preload("Alerts").Preload("Incidents").First(&user, id).Error; err != nil {
		response.NotFound(c, "User not found")
		return
	}
	response.Success(c, "", user)
}

type apiCreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
	Status   string `json:"status"`
}

func (h *Handlers) APICreateUser(c *gin.Context) {
	var req apiCreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "invalid request body", nil)
		return
	}

	errs := fieldErrors{}
	if req.Name == "" {
		errs.add("name", "The name field is required.")
	}
	if !validEmail(req.Email) {
		errs.add("email", "The email field must be a valid email address.")
	}
	if len(req.Password) < 8 {
		errs.add("password", "The password field must be at least 8 characters.")
	}
	if req.Role != "" && !validRole(req.Role) {
		errs.add("role", "The selected role is invalid.")
	}
	if req.Status != "" && !validUserStatus(req.Status) {
		errs.add("status", "The selected status is invalid.")
	}
	if req.Email != "" {
		if existing, _ := models.GetUserByEmail(h.db, req.Email); existing != nil {
			errs.add("email", "The email has already been taken.")
		}
	}
	if errs.any() {
		response.ValidationError(c, errs)
		return
	}

	user := models.User{
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Role:   req.Role,
		Status: req.Status,
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if user.Status == "" {
		user.Status = models.StatusPending
	}
	if err := user.SetPassword(req.Password); err != nil {
		response.Fail(c, "could not create user", nil)
		return
	}
	if err := h.orm(c).Create(&user).Error; err != nil {
		response.Fail(c, "could not create user", nil)
		return
	}
	response.Success(c, "User created successfully", user)
}

type apiUpdateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Phone    *string `json:"phone"`
	Role     *string `json:"role"`
	Status   *string `json:"status"`
}

func (h *Handlers) APIUpdateUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		response.NotFound(c, "User not found")
		return
	}
	var user models.User
	if err := h.db.First(&user, id).Error; err != nil {
		response.NotFound(c, "User not found")
		return
	}

	var req apiUpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "invalid request body", nil)
		return
	}

	errs := fieldErrors{}
	if req.Email != nil && !validEmail(*req.Email) {
		errs.add("email", "The email field must be a valid email address.")
	}
	if req.Password != nil && len(*req.Password) < 8 {
		errs.add("password", "The password field must be at least 8 characters.")
	}
	if req.Role != nil && !validRole(*req.Role) {
		errs.add("role", "The selected role is invalid.")
	}
	if req.Status != nil && !validUserStatus(*req.Status) {
		errs.add("status", "The selected status is invalid.")
	}
	if req.Email != nil && *req.Email != user.Email {
		if existing, _ := models.GetUserByEmail(h.db, *req.Email); existing != nil {
			errs.add("email", "The email has already been taken.")
		}
	}
	if errs.any() {
		response.ValidationError(c, errs)
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Role != nil {
		updates["role"] = *req.Role
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.Password != nil {
		tmp := models.User{}
		if err := tmp.SetPassword(*req.Password); err != nil {
			response.Fail(c, "could not update user", nil)
			return
		}
		updates["password_hash"] = tmp.PasswordHash
	}

	if len(updates) > 0 {
		if err := h.orm(c).Model(&user).Updates(updates).Error; err != nil {
			response.Fail(c, "could not update user", nil)
			return
		}
	}
	response.Success(c, "User updated successfully", user)
}

func (h *Handlers) APIDeleteUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		response.NotFound(c, "User not found")
		return
	}
	var user models.User
	if err := h.db.First(&user, id).Error; err != nil {
		response.NotFound(c, "User not found")
		return
	}
	if err := h.orm(c).Delete(&user).Error; err != nil {
		response.Fail(c, "could not delete user", nil)
		return
	}
	response.Success(c, "User deleted successfully", nil)
}
