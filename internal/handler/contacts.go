package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/cresszm/cress/internal/models"
	"github.com/cresszm/cress/pkg/response"
)

func (h *Handlers) APIListContacts(c *gin.Context) {
	var contacts []models.Contact
	if err := h.db.Preload("User").Find(&contacts).Error; err != nil {
		response.Fail(c, "could not list contacts", nil)
		return
	}
	response.Success(c, "", contacts)
}

func (h *Handlers) APIGetContact(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		response.NotFound(c, "Contact not found")
		return
	}
	var contact models.Contact
	if err := h.db.Preload("User").First(&contact, id).Error; err != nil {
		response.NotFound(c, "Contact not found")
		return
	}
	response.Success(c, "", contact)
}

type contactRequest struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Relationship string `json:"relationship"`
}

func (h *Handlers) APICreateContact(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "invalid request body", nil)
		return
	}

	errs := fieldErrors{}
	if req.Name == "" {
		errs.add("name", "The name field is required.")
	}
	if req.Phone == "" {
		errs.add("phone", "The phone field is required.")
	}
	if req.Email != "" && !validEmail(req.Email) {
		errs.add("email", "The email field must be a valid email address.")
	}
	if errs.any() {
		response.ValidationError(c, errs)
		return
	}

	user := models.CurrentUser(c)
	contact := models.Contact{
		UserID:       user.ID,
		Name:         req.Name,
		Phone:        req.Phone,
		Email:        req.Email,
		Relationship: req.Relationship,
	}
	if err := h.orm(c).Create(&contact).Error; err != nil {
		response.Fail(c, "could not create contact", nil)
		return
	}
	response.Success(c, "Contact created successfully", contact)
}

type updateContactRequest struct {
	Name         *string `json:"name"`
	Phone        *string `json:"phone"`
	Email        *string `json:"email"`
	Relationship *string `json:"relationship"`
}

func (h *Handlers) APIUpdateContact(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		response.NotFound(c, "Contact not found")
		return
	}
	var contact models.Contact
	if err := h.db.First(&contact, id).Error; err != nil {
		response.NotFound(c, "Contact not found")
		return
	}

	var req updateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "invalid request body", nil)
		return
	}
	if req.Email != nil && *req.Email != "" && !validEmail(*req.Email) {
		response.ValidationError(c, fieldErrors{"email": {"The email field must be a valid email address."}})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Relationship != nil {
		updates["relationship"] = *req.Relationship
	}
	if len(updates) > 0 {
		if err := h.orm(c).Model(&contact).Updates(updates).Error; err != nil {
			response.Fail(c, "could not update contact", nil)
			return
		}
	}
	response.Success(c, "Contact updated successfully", contact)
}

func (h *Handlers) APIDeleteContact(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		response.NotFound(c, "Contact not found")
		return
	}
	var contact models.Contact
	if err := h.db.First(&contact, id).Error; err != nil {
		response.NotFound(c, "Contact not found")
		return
	}
	if err := h.orm(c).Delete(&contact).Error; err != nil {
		response.Fail(c, "could not delete contact", nil)
		return
	}
	response.Success(c, "Contact deleted successfully", nil)
}
