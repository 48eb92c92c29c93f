package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"procurement-service/internal/events"
	"procurement-service/internal/middleware"
	"procurement-service/internal/models"
	"procurement-service/internal/repository"
)

// AuthHandler serves registration, login and account management.
type AuthHandler struct {
	users     *repository.UserRepository
	sink      events.Sink
	logger    *logrus.Logger
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthHandler(users *repository.UserRepository, sink events.Sink, logger *logrus.Logger, jwtSecret string, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		users:     users,
		sink:      sink,
		logger:    logger,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

// Register creates an inactive account and mails a confirmation token.
// @Summary Register account
// @Description Create a new account; a confirmation token is emailed
// @Tags User
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Account data"
// @Success 200 {object} models.StatusResponse
// @Failure 400 {object} models.StatusResponse
// @Router /user/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("All required fields must be provided"))
		return
	}

	if _, err := h.users.GetUserByEmail(c.Request.Context(), req.Email); err == nil {
		c.JSON(http.StatusBadRequest, models.Fail("A user with this email already exists"))
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), &req)
	if err != nil {
		h.logger.WithError(err).Error("Failed to create user")
		c.JSON(http.StatusInternalServerError, models.Fail("Failed to create user"))
		return
	}

	token, err := h.users.CreateToken(c.Request.Context(), user.ID, models.TokenKindConfirmEmail)
	if err != nil {
		h.logger.WithError(err).Error("Failed to create confirmation token")
		c.JSON(http.StatusInternalServerError, models.Fail("Failed to create confirmation token"))
		return
	}

	h.sink.Notify(events.Event{
		Kind:      events.UserRegistered,
		Recipient: user.Email,
		Subject:   "Confirm your registration",
		Body:      fmt.Sprintf("Your confirmation token: %s", token.Key),
		Payload:   map[string]interface{}{"user_id": user.ID.String(), "email": user.Email},
	})

	c.JSON(http.StatusOK, models.OK())
}

// Confirm activates an account using the emailed token.
// @Summary Confirm email
// @Tags User
// @Accept json
// @Produce json
// @Param request body models.ConfirmRequest true "Email and token"
// @Success 200 {object} models.StatusResponse
// @Failure 400 {object} models.StatusResponse
// @Router /user/register/confirm [post]
func (h *AuthHandler) Confirm(c *gin.Context) {
	var req models.ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("Email and token are required"))
		return
	}

	token, err := h.users.GetToken(c.Request.Context(), req.Email, req.Token, models.TokenKindConfirmEmail)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("Invalid email or token"))
		return
	}

	if err := h.users.ActivateUser(c.Request.Context(), token.User); err != nil {
		h.logger.WithError(err).Error("Failed to activate user")
		c.JSON(http.StatusInternalServerError, models.Fail("Failed to activate account"))
		return
	}
	if err := h.users.DeleteToken(c.Request.Context(), token); err != nil {
		h.logger.WithError(err).Warn("Failed to delete consumed token")
	}

	c.JSON(http.StatusOK, models.OK())
}

// Login checks credentials and returns a bearer token.
// @Summary Log in
// @Tags User
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} models.TokenResponse
// @Failure 401 {object} models.StatusResponse
// @Router /user/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("Email and password are required"))
		return
	}

	user, err := h.users.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil || !h.users.VerifyPassword(user, req.Password) {
		c.JSON(http.StatusUnauthorized, models.Fail("Invalid email or password"))
		return
	}
	if !user.IsActive {
		c.JSON(http.StatusForbidden, models.Fail("Account is not confirmed"))
		return
	}

	signed, err := middleware.IssueToken(h.jwtSecret, h.tokenTTL, user)
	if err != nil {
		h.logger.WithError(err).Error("Failed to sign token")
		c.JSON(http.StatusInternalServerError, models.Fail("Failed to sign token"))
		return
	}

	c.JSON(http.StatusOK, models.TokenResponse{Status: true, Token: signed})
}

// GetDetails returns the authenticated user's profile with contacts.
// @Summary Get account details
// @Tags User
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.DataResponse
// @Router /user/details [get]
func (h *AuthHandler) GetDetails(c *gin.Context) {
	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusForbidden, models.Fail("Log in required"))
		return
	}

	user, err := h.users.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, models.Fail("User not found"))
		return
	}

	c.JSON(http.StatusOK, models.DataResponse{Status: true, Data: user})
}

// UpdateDetails applies a partial profile update.
// @Summary Update account details
// @Tags User
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.UpdateAccountRequest true "Fields to change"
// @Success 200 {object} models.StatusResponse
// @Router /user/details [post]
func (h *AuthHandler) UpdateDetails(c *gin.Context) {
	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusForbidden, models.Fail("Log in required"))
		return
	}

	var req models.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("Invalid request body"))
		return
	}

	user, err := h.users.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, models.Fail("User not found"))
		return
	}

	if err := h.users.UpdateUser(c.Request.Context(), user, &req); err != nil {
		h.logger.WithError(err).Error("Failed to update user")
		c.JSON(http.StatusInternalServerError, models.Fail("Failed to update account"))
		return
	}

	c.JSON(http.StatusOK, models.OK())
}

// RequestPasswordReset mails a reset token. Responds with success even for
// unknown emails so the endpoint cannot be used to probe accounts.
// @Summary Request password reset
// @Tags User
// @Accept json
// @Produce json
// @Param request body models.PasswordResetRequest true "Account email"
// @Success 200 {object} models.StatusResponse
// @Router /user/password/reset [post]
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req models.PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("Email is required"))
		return
	}

	user, err := h.users.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			h.logger.WithError(err).Error("Failed to look up user for password reset")
		}
		c.JSON(http.StatusOK, models.OK())
		return
	}

	token, err := h.users.CreateToken(c.Request.Context(), user.ID, models.TokenKindPasswordReset)
	if err != nil {
		h.logger.WithError(err).Error("Failed to create reset token")
		c.JSON(http.StatusInternalServerError, models.Fail("Failed to create reset token"))
		return
	}

	h.sink.Notify(events.Event{
		Kind:      events.UserPasswordReset,
		Recipient: user.Email,
		Subject:   "Password reset",
		Body:      fmt.Sprintf("Your password reset token: %s", token.Key),
		Payload:   map[string]interface{}{"user_id": user.ID.String(), "email": user.Email},
	})

	c.JSON(http.StatusOK, models.OK())
}

// ConfirmPasswordReset sets a new password using the emailed token.
// @Summary Confirm password reset
// @Tags User
// @Accept json
// @Produce json
// @Param request body models.PasswordResetConfirmRequest true "Email, token and new password"
// @Success 200 {object} models.StatusResponse
// @Failure 400 {object} models.StatusResponse
// @Router /user/password/reset/confirm [post]
func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	var req models.PasswordResetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("Email, token and password are required"))
		return
	}

	token, err := h.users.GetToken(c.Request.Context(), req.Email, req.Token, models.TokenKindPasswordReset)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("Invalid email or token"))
		return
	}

	if err := h.users.SetPassword(c.Request.Context(), token.User, req.Password); err != nil {
		h.logger.WithError(err).Error("Failed to set password")
		c.JSON(http.StatusInternalServerError, models.Fail("Failed to set password"))
		return
	}
	if err := h.users.DeleteToken(c.Request.Context(), token); err != nil {
		h.logger.WithError(err).Warn("Failed to delete consumed token")
	}

	c.JSON(http.StatusOK, models.OK())
}
