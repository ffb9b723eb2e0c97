package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/dkrasnov87/shoply/api/http/presenter"
	"github.com/dkrasnov87/shoply/pkg/auth"
)

// UserHandler serves the profile routes. Output is always sanitized.
type UserHandler struct {
	repo auth.UserRepository
}

func NewUserHandler(repo auth.UserRepository) *UserHandler {
	return &UserHandler{repo: repo}
}

// GetByID returns a user's profile.
// @Summary Get user
// @Tags    users
// @Produce json
// @Param   id path string true "user id"
// @Success 200 {object} auth.SanitizedUser
// @Failure 404 {object} presenter.ErrorResponse
// @Security BearerAuth
// @Router  /users/{id} [get]
func (h *UserHandler) GetByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid user id")
	}
	user, err := h.repo.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			return presenter.Error(c, http.StatusNotFound, "user not found")
		}
		return presenter.Error(c, http.StatusInternalServerError, "failed to fetch user")
	}
	return presenter.JSON(c, http.StatusOK, user.Sanitize())
}

type updateUserRequest struct {
	Name string `json:"name"`
}

// UpdateByID updates mutable profile fields. Only the authenticated user may
// update their own record.
// @Summary Update user
// @Tags    users
// @Accept  json
// @Produce json
// @Param   id path string true "user id"
// @Param   input body updateUserRequest true "profile payload"
// @Success 200 {object} auth.SanitizedUser
// @Failure 403 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Security BearerAuth
// @Router  /users/{id} [patch]
func (h *UserHandler) UpdateByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid user id")
	}
	callerID, err := currentUserID(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, "not authenticated")
	}
	isAdmin, _ := c.Locals("isAdmin").(bool)
	if callerID != id && !isAdmin {
		return presenter.Error(c, http.StatusForbidden, "cannot update another user")
	}

	var req updateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	if strings.TrimSpace(req.Name) == "" {
		return presenter.Error(c, http.StatusBadRequest, "name is required")
	}

	user, err := h.repo.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			return presenter.Error(c, http.StatusNotFound, "user not found")
		}
		return presenter.Error(c, http.StatusInternalServerError, "failed to fetch user")
	}
	user.Name = strings.TrimSpace(req.Name)
	updated, err := h.repo.Update(c.Context(), user)
	if err != nil {
		return presenter.Error(c, http.StatusInternalServerError, "failed to update user")
	}
	return presenter.JSON(c, http.StatusOK, updated.Sanitize())
}
