package order

import (
	"github.com/Kyz7/storefront/internal/metrics"
	"github.com/Kyz7/storefront/internal/middleware"
	"github.com/Kyz7/storefront/internal/response"
	"github.com/Kyz7/storefront/internal/role"
	"github.com/Kyz7/storefront/internal/validation"
	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	svc      *Service
	resolver *middleware.Resolver
	metrics  *metrics.Metrics
}

func NewHandler(svc *Service, resolver *middleware.Resolver, m *metrics.Metrics) *Handler {
	return &Handler{svc: svc, resolver: resolver, metrics: m}
}

// Place lets users order for themselves; ordering for someone else needs list-all-orders.
func (h *Handler) Place(c *fiber.Ctx) error {
	var body PlaceInput
	if err := validation.Bind(c, &body); err != nil {
		return response.FromError(c, err)
	}
	if err := middleware.SelfOr(c, h.resolver.Required(role.PermListAllOrders), body.UserID); err != nil {
		return response.FromError(c, err)
	}

	order, err := h.svc.Place(c.UserContext(), body)
	if err != nil {
		return response.FromError(c, err)
	}
	h.metrics.ObserveOrder()
	return response.Created(c, order, "Order placed successfully")
}

func (h *Handler) List(c *fiber.Ctx) error {
	var filter Filter
	if err := validation.Query(c, &filter); err != nil {
		return response.FromError(c, err)
	}

	orders, err := h.svc.List(c.UserContext(), filter)
	if err != nil {
		return response.FromError(c, err)
	}

	offset, limit := filter.page()
	meta := &response.Meta{Offset: offset, Limit: limit, Count: len(orders)}
	return response.SuccessWithMeta(c, orders, meta, "Orders retrieved successfully")
}

func (h *Handler) ForUser(c *fiber.Ctx) error {
	userID, err := response.ParseID(c, "user_id")
	if err != nil {
		return response.FromError(c, err)
	}
	if err := middleware.SelfOr(c, h.resolver.Required(role.PermListAllOrders), userID); err != nil {
		return response.FromError(c, err)
	}

	orders, err := h.svc.ForUser(c.UserContext(), userID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, orders, "Orders retrieved successfully")
}

func (h *Handler) Update(c *fiber.Ctx) error {
	id, err := response.ParseID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var body Patch
	if err := validation.Bind(c, &body); err != nil {
		return response.FromError(c, err)
	}

	order, err := h.svc.UpdateStatus(c.UserContext(), id, body)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, order, "Order updated successfully")
}

func (h *Handler) Stats(c *fiber.Ctx) error {
	stats, err := h.svc.Stats(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, stats, "Order stats retrieved successfully")
}

func (h *Handler) UserStats(c *fiber.Ctx) error {
	stats, err := h.svc.UserStats(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, stats, "User order stats retrieved successfully")
}
