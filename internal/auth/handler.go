package auth

import (
	"github.com/Kyz7/storefront/internal/metrics"
	"github.com/Kyz7/storefront/internal/response"
	"github.com/Kyz7/storefront/internal/validation"
	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	svc     *Service
	metrics *metrics.Metrics
}

func NewHandler(svc *Service, m *metrics.Metrics) *Handler {
	return &Handler{svc: svc, metrics: m}
}

type loginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// Login accepts JSON or form-encoded credentials.
func (h *Handler) Login(c *fiber.Ctx) error {
	var body loginRequest
	if err := validation.Bind(c, &body); err != nil {
		return response.FromError(c, err)
	}

	token, err := h.svc.Login(c.UserContext(), body.Username, body.Password)
	if err != nil {
		h.metrics.ObserveLogin(false)
		return response.FromError(c, err)
	}

	h.metrics.ObserveLogin(true)
	return response.Success(c, token, "Login successful")
}
