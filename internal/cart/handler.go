package cart

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

func (h *Handler) Add(c *fiber.Ctx) error {
	var body AddInput
	if err := validation.Bind(c, &body); err != nil {
		return response.FromError(c, err)
	}
	if err := middleware.SelfOr(c, h.resolver.Required(role.PermUpdateUserCart), body.UserID); err != nil {
		return response.FromError(c, err)
	}

	item, err := h.svc.Add(c.UserContext(), body.UserID, body.ProductID, body.Quantity)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, item, "Cart item added successfully")
}

// Update changes a row in the cart of the user named by :id.
func (h *Handler) Update(c *fiber.Ctx) error {
	userID, err := response.ParseID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var body Patch
	if err := validation.Bind(c, &body); err != nil {
		return response.FromError(c, err)
	}
	if err := middleware.SelfOr(c, h.resolver.Required(role.PermUpdateUserCart), userID); err != nil {
		return response.FromError(c, err)
	}

	item, err := h.svc.Update(c.UserContext(), userID, body)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, item, "Cart item updated successfully")
}

func (h *Handler) List(c *fiber.Ctx) error {
	items, err := h.svc.List(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, items, "Cart items retrieved successfully")
}

func (h *Handler) Self(c *fiber.Ctx) error {
	items, err := h.svc.ForUser(c.UserContext(), auth.CurrentUser(c).ID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, items, "Cart items retrieved successfully")
}

func (h *Handler) SelfTotal(c *fiber.Ctx) error {
	userID := auth.CurrentUser(c).ID
	total, err := h.svc.Total(c.UserContext(), userID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, fiber.Map{"user_id": userID, "total": total}, "Cart total calculated")
}
