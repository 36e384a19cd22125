package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/tuitionlab/tuition-platform/internal/service"
)

// RegisterUserRequest — тело POST /api/users.
type RegisterUserRequest struct {
	Email        string `json:"email" validate:"required,email"`
	DisplayName  string `json:"displayName"`
	ContactPhone string `json:"contactPhone"`
}

// SetRoleRequest — тело PUT /api/users/role.
type SetRoleRequest struct {
	Email    string `json:"email" validate:"required,email"`
	RoleCode string `json:"roleCode" validate:"required,oneof=admin manager coordinator tutor parent student"`
}

// UpdateProfileRequest — тело PUT /api/users/profile.
type UpdateProfileRequest struct {
	Email        string `json:"email" validate:"required,email"`
	DisplayName  string `json:"displayName"`
	ContactPhone string `json:"contactPhone"`
}

// ProfileResponse — профиль в формате API.
type ProfileResponse struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName,omitempty"`
	ContactPhone string `json:"contactPhone,omitempty"`
	RoleCode     string `json:"roleCode,omitempty"`
}

func toProfileResponse(p *service.Profile) ProfileResponse {
	return ProfileResponse{
		ID:           p.User.ID.String(),
		Email:        p.User.Email,
		DisplayName:  p.User.DisplayName,
		ContactPhone: p.User.ContactPhone,
		RoleCode:     p.Role,
	}
}

// POST /api/users
func (h *Handler) RegisterUser(c *fiber.Ctx) error {
	var req RegisterUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return validationResponse(c, err)
	}

	profile, err := h.identitySvc.RegisterUser(c.UserContext(), req.Email, req.DisplayName, req.ContactPhone)
	if err != nil {
		return identityError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toProfileResponse(profile))
}

// PUT /api/users/role
func (h *Handler) SetRole(c *fiber.Ctx) error {
	var req SetRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return validationResponse(c, err)
	}

	profile, err := h.identitySvc.SetRole(c.UserContext(), req.Email, req.RoleCode)
	if err != nil {
		return identityError(c, err)
	}
	return c.JSON(toProfileResponse(profile))
}

// PUT /api/users/profile
func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return validationResponse(c, err)
	}

	profile, err := h.identitySvc.UpdateProfile(c.UserContext(), req.Email, req.DisplayName, req.ContactPhone)
	if err != nil {
		return identityError(c, err)
	}
	return c.JSON(toProfileResponse(profile))
}

// GET /api/users/profile?email=
func (h *Handler) GetProfile(c *fiber.Ctx) error {
	profile, err := h.identitySvc.GetProfile(c.UserContext(), c.Query("email"))
	if err != nil {
		return identityError(c, err)
	}
	return c.JSON(toProfileResponse(profile))
}

func identityError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrEmailRequired), errors.Is(err, service.ErrRoleRequired):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}
