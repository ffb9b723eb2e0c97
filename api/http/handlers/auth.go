package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/dkrasnov87/shoply/api/http/presenter"
	"github.com/dkrasnov87/shoply/pkg/auth"
	"github.com/dkrasnov87/shoply/pkg/security/jwt"
)

// AuthHandler adapts the credential use case to HTTP. The session credential
// travels in an httpOnly cookie whose attributes depend on the environment.
type AuthHandler struct {
	useCase    auth.CredentialUseCase
	cookieTTL  time.Duration
	production bool
}

func NewAuthHandler(useCase auth.CredentialUseCase, cookieTTL time.Duration, production bool) *AuthHandler {
	return &AuthHandler{useCase: useCase, cookieTTL: cookieTTL, production: production}
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Signup handles account registration.
// @Summary Register user
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body signupRequest true "registration payload"
// @Success 201 {object} auth.SanitizedUser
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 409 {object} presenter.ErrorResponse
// @Router  /auth/signup [post]
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return presenter.Error(c, http.StatusBadRequest, "email and password are required")
	}

	result, err := h.useCase.Signup(c.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		return h.respondError(c, err)
	}
	h.setSessionCookie(c, result.Token)
	return presenter.JSON(c, http.StatusCreated, result.User)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles credential login.
// @Summary Login
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body loginRequest true "login payload"
// @Success 200 {object} auth.SanitizedUser
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Router  /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return presenter.Error(c, http.StatusBadRequest, "email and password are required")
	}

	result, err := h.useCase.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		h.clearSessionCookie(c)
		return h.respondError(c, err)
	}
	h.setSessionCookie(c, result.Token)
	return presenter.JSON(c, http.StatusOK, result.User)
}

type verifyOtpRequest struct {
	UserID string `json:"userId"`
	Otp    string `json:"otp"`
}

// VerifyOtp checks the submitted code and marks the account verified.
// @Summary Verify OTP
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body verifyOtpRequest true "verification payload"
// @Success 200 {object} auth.SanitizedUser
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /auth/verify-otp [post]
func (h *AuthHandler) VerifyOtp(c *fiber.Ctx) error {
	var req verifyOtpRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil || req.Otp == "" {
		return presenter.Error(c, http.StatusBadRequest, "userId and otp are required")
	}

	user, err := h.useCase.VerifyOtp(c.Context(), userID, req.Otp)
	if err != nil {
		return h.respondError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, user)
}

type resendOtpRequest struct {
	UserID string `json:"userId"`
}

// ResendOtp issues a fresh code, replacing any outstanding one.
// @Summary Resend OTP
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body resendOtpRequest true "resend payload"
// @Success 201 {object} presenter.MessageResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /auth/resend-otp [post]
func (h *AuthHandler) ResendOtp(c *fiber.Ctx) error {
	var req resendOtpRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "userId is required")
	}

	if err := h.useCase.ResendOtp(c.Context(), userID); err != nil {
		return h.respondError(c, err)
	}
	return presenter.Message(c, http.StatusCreated, "OTP sent")
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword mails a reset link to a registered address.
// @Summary Request password reset
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body forgotPasswordRequest true "forgot-password payload"
// @Success 200 {object} presenter.MessageResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req forgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	if strings.TrimSpace(req.Email) == "" {
		return presenter.Error(c, http.StatusBadRequest, "email is required")
	}

	email, err := h.useCase.ForgotPassword(c.Context(), req.Email)
	if err != nil {
		return h.respondError(c, err)
	}
	return presenter.Message(c, http.StatusOK, "Password reset link sent to "+email)
}

type resetPasswordRequest struct {
	UserID   string `json:"userId"`
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ResetPassword redeems a reset token and stores the new password.
// @Summary Reset password
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body resetPasswordRequest true "reset payload"
// @Success 200 {object} presenter.MessageResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil || req.Token == "" || req.Password == "" {
		return presenter.Error(c, http.StatusBadRequest, "userId, token and password are required")
	}

	if err := h.useCase.ResetPassword(c.Context(), userID, req.Token, req.Password); err != nil {
		return h.respondError(c, err)
	}
	return presenter.Message(c, http.StatusOK, "Password updated successfully")
}

// Logout clears the session cookie. Credentials are stateless, so there is
// nothing to revoke server-side.
// @Summary Logout
// @Tags    auth
// @Produce json
// @Success 200 {object} presenter.MessageResponse
// @Router  /auth/logout [get]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.clearSessionCookie(c)
	return presenter.Message(c, http.StatusOK, "Logout successful")
}

// CheckAuth returns the current user for an authenticated request.
// @Summary Current user
// @Tags    auth
// @Produce json
// @Success 200 {object} auth.SanitizedUser
// @Failure 401 {object} presenter.ErrorResponse
// @Security BearerAuth
// @Router  /auth/check-auth [get]
func (h *AuthHandler) CheckAuth(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, "not authenticated")
	}
	user, err := h.useCase.CheckAuth(c.Context(), userID)
	if err != nil {
		return h.respondError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, user)
}

// currentUserID reads the subject the JWT middleware stored in locals.
func currentUserID(c *fiber.Ctx) (uuid.UUID, error) {
	raw, _ := c.Locals("userId").(string)
	return uuid.Parse(raw)
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, token string) {
	sameSite := fiber.CookieSameSiteLaxMode
	if h.production {
		sameSite = fiber.CookieSameSiteNoneMode
	}
	c.Cookie(&fiber.Cookie{
		Name:     jwt.CookieName,
		Value:    token,
		Expires:  time.Now().Add(h.cookieTTL),
		HTTPOnly: true,
		Secure:   h.production,
		SameSite: sameSite,
	})
}

func (h *AuthHandler) clearSessionCookie(c *fiber.Ctx) {
	sameSite := fiber.CookieSameSiteLaxMode
	if h.production {
		sameSite = fiber.CookieSameSiteNoneMode
	}
	c.Cookie(&fiber.Cookie{
		Name:     jwt.CookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.production,
		SameSite: sameSite,
	})
}

// respondError maps domain errors onto HTTP statuses. Raw dependency errors
// never reach the client.
func (h *AuthHandler) respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, auth.ErrUserAlreadyExists):
		return presenter.Error(c, http.StatusConflict, "user already exists")
	case errors.Is(err, auth.ErrInvalidCredentials):
		return presenter.Error(c, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, auth.ErrNotFound):
		return presenter.Error(c, http.StatusNotFound, "not found")
	case errors.Is(err, auth.ErrNoActiveOtp):
		return presenter.Error(c, http.StatusNotFound, "otp not found")
	case errors.Is(err, auth.ErrOtpExpired):
		return presenter.Error(c, http.StatusBadRequest, "otp has expired")
	case errors.Is(err, auth.ErrInvalidOtp):
		return presenter.Error(c, http.StatusBadRequest, "otp is invalid")
	case errors.Is(err, auth.ErrResetTokenExpired):
		return presenter.Error(c, http.StatusNotFound, "reset link has expired")
	case errors.Is(err, auth.ErrInvalidResetToken):
		return presenter.Error(c, http.StatusNotFound, "reset link is not valid")
	case errors.Is(err, auth.ErrUnavailable):
		return presenter.Error(c, http.StatusServiceUnavailable, "temporarily unavailable, please retry")
	default:
		return presenter.Error(c, http.StatusInternalServerError, "something went wrong, please try again later")
	}
}
