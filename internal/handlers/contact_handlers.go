package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"procurement-service/internal/models"
	"procurement-service/internal/repository"
)

// ContactHandler manages the authenticated user's delivery contacts.
type ContactHandler struct {
	users  *repository.UserRepository
	logger *logrus.Logger
}

func NewContactHandler(users *repository.UserRepository, logger *logrus.Logger) *ContactHandler {
	return &ContactHandler{users: users, logger: logger}
}

// GetContacts lists the user's contacts.
// @Summary List contacts
// @Tags Contacts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.DataResponse
// @Router /user/contact [get]
func (h *ContactHandler) GetContacts(c *gin.Context) {
	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusForbidden, models.Fail("Log in required"))
		return
	}

	contacts, err := h.users.GetContacts(c.Request.Context(), userID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list contacts")
		c.JSON(http.StatusInternalServerError, models.Fail("Failed to list contacts"))
		return
	}

	c.JSON(http.StatusOK, models.DataResponse{Status: true, Data: contacts})
}

// CreateContact adds a contact.
// @Summary Add contact
// @Tags Contacts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateContactRequest true "Contact data"
// @Success 200 {object} models.StatusResponse
// @Failure 400 {object} models.StatusResponse
// @Router /user/contact [post]
func (h *ContactHandler) CreateContact(c *gin.Context) {
	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusForbidden, models.Fail("Log in required"))
		return
	}

	var req models.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("All required fields must be provided"))
		return
	}

	if _, err := h.users.CreateContact(c.Request.Context(), userID, &req); err != nil {
		h.logger.WithError(err).Error("Failed to create contact")
		c.JSON(http.StatusInternalServerError, models.Fail("Failed to create contact"))
		return
	}

	c.JSON(http.StatusOK, models.OK())
}

// UpdateContact applies a partial update to one of the user's contacts.
// @Summary Update contact
// @Tags Contacts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.UpdateContactRequest true "Contact id and fields to change"
// @Success 200 {object} models.StatusResponse
// @Failure 400 {object} models.StatusResponse
// @Router /user/contact [put]
func (h *ContactHandler) UpdateContact(c *gin.Context) {
	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusForbidden, models.Fail("Log in required"))
		return
	}

	var req models.UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("Contact id is required"))
		return
	}

	contactID, err := uuid.Parse(req.ID)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("Invalid contact id"))
		return
	}

	contact, err := h.users.GetContact(c.Request.Context(), userID, contactID)
	if err != nil {
		c.JSON(http.StatusNotFound, models.Fail("Contact not found"))
		return
	}

	if err := h.users.UpdateContact(c.Request.Context(), contact, &req); err != nil {
		h.logger.WithError(err).Error("Failed to update contact")
		c.JSON(http.StatusInternalServerError, models.Fail("Failed to update contact"))
		return
	}

	c.JSON(http.StatusOK, models.OK())
}

// DeleteContacts removes contacts by a comma-separated id list.
// @Summary Delete contacts
// @Tags Contacts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.DeleteContactsRequest true "Comma-separated contact ids"
// @Success 200 {object} models.StatusResponse
// @Failure 400 {object} models.StatusResponse
// @Router /user/contact [delete]
func (h *ContactHandler) DeleteContacts(c *gin.Context) {
	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusForbidden, models.Fail("Log in required"))
		return
	}

	var req models.DeleteContactsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("Items list is required"))
		return
	}

	ids, ok := parseIDList(req.Items)
	if !ok {
		c.JSON(http.StatusBadRequest, models.Fail("Invalid contact id list"))
		return
	}

	if _, err := h.users.DeleteContacts(c.Request.Context(), userID, ids); err != nil {
		h.logger.WithError(err).Error("Failed to delete contacts")
		c.JSON(http.StatusInternalServerError, models.Fail("Failed to delete contacts"))
		return
	}

	c.JSON(http.StatusOK, models.OK())
}
