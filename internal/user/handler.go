package user

import (
	"github.com/Kyz7/storefront/internal/auth"
	"github.com/Kyz7/storefront/internal/middleware"
	"github.com/Kyz7/storefront/internal/response"
	"github.com/Kyz7/storefront/internal/role"
	"github.com/Kyz7/storefront/internal/validation"
	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	svc      *Service
	resolver *middleware.Resolver
}

func NewHandler(svc *Service, resolver *middleware.Resolver) *Handler {
	return &Handler{svc: svc, resolver: resolver}
}

func (h *Handler) CreateUser(c *fiber.Ctx) error {
	var body CreateUserInput
	if err := validation.Bind(c, &body); err != nil {
		return response.FromError(c, err)
	}

	u, err := h.svc.CreateUser(c.UserContext(), body)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, u, "User created successfully")
}

func (h *Handler) ListUsers(c *fiber.Ctx) error {
	users, err := h.svc.ListUsers(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, users, "Users retrieved successfully")
}

func (h *Handler) Me(c *fiber.Ctx) error {
	u, err := h.svc.GetUser(c.UserContext(), auth.CurrentUser(c).ID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, u, "User retrieved successfully")
}

func (h *Handler) Detail(c *fiber.Ctx) error {
	detail, err := h.svc.Detail(c.UserContext(), auth.CurrentUser(c).ID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, detail, "User retrieved successfully")
}

func (h *Handler) CreateProfile(c *fiber.Ctx) error {
	var body ProfileInput
	if err := validation.Bind(c, &body); err != nil {
		return response.FromError(c, err)
	}
	if err := middleware.SelfOr(c, h.resolver.Required(role.PermUserUpdate), body.UserID); err != nil {
		return response.FromError(c, err)
	}

	profile, err := h.svc.CreateProfile(c.UserContext(), body)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, profile, "Profile created successfully")
}

func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	id, err := response.ParseID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var body ProfilePatch
	if err := validation.Bind(c, &body); err != nil {
		return response.FromError(c, err)
	}

	profile, err := h.svc.GetProfile(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	if err := middleware.SelfOr(c, h.resolver.Required(role.PermUserUpdate), profile.UserID); err != nil {
		return response.FromError(c, err)
	}

	profile, err = h.svc.UpdateProfile(c.UserContext(), id, body)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, profile, "Profile updated successfully")
}
