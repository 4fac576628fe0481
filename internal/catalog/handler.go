package catalog

import (
	"github.com/Kyz7/storefront/internal/response"
	"github.com/Kyz7/storefront/internal/validation"
	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) CreateCategory(c *fiber.Ctx) error {
	var body struct {
		Name string `json:"name" validate:"required,max=255"`
	}
	if err := validation.Bind(c, &body); err != nil {
		return response.FromError(c, err)
	}

	category, err := h.svc.CreateCategory(c.UserContext(), body.Name)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, category, "Category created successfully")
}

func (h *Handler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.svc.ListCategories(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, categories, "Categories retrieved successfully")
}

func (h *Handler) UpdateCategory(c *fiber.Ctx) error {
	id, err := response.ParseID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var body CategoryPatch
	if err := validation.Bind(c, &body); err != nil {
		return response.FromError(c, err)
	}

	category, err := h.svc.UpdateCategory(c.UserContext(), id, body)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, category, "Category updated successfully")
}

func (h *Handler) DeleteCategory(c *fiber.Ctx) error {
	id, err := response.ParseID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.svc.DeleteCategory(c.UserContext(), id); err != nil {
		return response.FromError(c, err)
	}
	return response.NoContent(c)
}

func (h *Handler) CreateProduct(c *fiber.Ctx) error {
	var body ProductInput
	if err := validation.Bind(c, &body); err != nil {
		return response.FromError(c, err)
	}

	product, err := h.svc.CreateProduct(c.UserContext(), body)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, product, "Product created successfully")
}

func (h *Handler) UpdateProduct(c *fiber.Ctx) error {
	id, err := response.ParseID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var body ProductPatch
	if err := validation.Bind(c, &body); err != nil {
		return response.FromError(c, err)
	}

	product, err := h.svc.UpdateProduct(c.UserContext(), id, body)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, product, "Product updated successfully")
}

func (h *Handler) DeleteProduct(c *fiber.Ctx) error {
	id, err := response.ParseID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.svc.DeleteProduct(c.UserContext(), id); err != nil {
		return response.FromError(c, err)
	}
	return response.NoContent(c)
}

// ListProducts accepts name, price, in_stock, offset and limit query parameters.
func (h *Handler) ListProducts(c *fiber.Ctx) error {
	var filter ProductFilter
	if err := validation.Query(c, &filter); err != nil {
		return response.FromError(c, err)
	}

	products, err := h.svc.ListProducts(c.UserContext(), filter)
	if err != nil {
		return response.FromError(c, err)
	}

	offset, limit := filter.page()
	meta := &response.Meta{Offset: offset, Limit: limit, Count: len(products)}
	return response.SuccessWithMeta(c, products, meta, "Products retrieved successfully")
}
