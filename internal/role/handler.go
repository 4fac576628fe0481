package role

import (
	"github.com/Kyz7/storefront/internal/apperror"
	"github.com/Kyz7/storefront/internal/middleware"
	"github.com/Kyz7/storefront/internal/response"
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

func (h *Handler) CreateRole(c *fiber.Ctx) error {
	var body RoleInput
	if err := validation.Bind(c, &body); err != nil {
		return response.FromError(c, err)
	}

	role, err := h.svc.CreateRole(c.UserContext(), body)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, role, "Role created successfully")
}

func (h *Handler) ListRoles(c *fiber.Ctx) error {
	roles, err := h.svc.ListRoles(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, roles, "Roles retrieved successfully")
}

func (h *Handler) UpdateRolePermissions(c *fiber.Ctx) error {
	id, err := response.ParseID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var body struct {
		PermissionIDs []uint `json:"permissions" validate:"required"`
	}
	if err := validation.Bind(c, &body); err != nil {
		return response.FromError(c, err)
	}

	role, err := h.svc.UpdateRolePermissions(c.UserContext(), id, body.PermissionIDs)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, role, "Role permissions updated successfully")
}

func (h *Handler) DeleteRole(c *fiber.Ctx) error {
	id, err := response.ParseID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.svc.DeleteRole(c.UserContext(), id); err != nil {
		return response.FromError(c, err)
	}
	return response.NoContent(c)
}

func (h *Handler) CreatePermission(c *fiber.Ctx) error {
	var body struct {
		DisplayName string `json:"display_name" validate:"required,max=255"`
	}
	if err := validation.Bind(c, &body); err != nil {
		return response.FromError(c, err)
	}

	perm, err := h.svc.CreatePermission(c.UserContext(), body.DisplayName)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, perm, "Permission created successfully")
}

func (h *Handler) ListPermissions(c *fiber.Ctx) error {
	perms, err := h.svc.ListPermissions(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, perms, "Permissions retrieved successfully")
}

func (h *Handler) AssignRoles(c *fiber.Ctx) error {
	var body struct {
		UserID  uint   `json:"user_id" validate:"required"`
		RoleIDs []uint `json:"role_ids"`
	}
	if err := validation.Bind(c, &body); err != nil {
		return response.FromError(c, err)
	}

	links, report, err := h.svc.AssignRoles(c.UserContext(), body.UserID, body.RoleIDs)
	if err != nil {
		return response.FromError(c, err)
	}
	if !report.Empty() {
		return response.FromError(c, apperror.ErrNotFound.WithMessage("Role assignment failed").WithDetails(report))
	}
	return response.Success(c, links, "Roles assigned successfully")
}

// UserRoles is open to the user themselves or holders of list-all-role.
func (h *Handler) UserRoles(c *fiber.Ctx) error {
	id, err := response.ParseID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	if err := middleware.SelfOr(c, h.resolver.Required(PermListAllRole), id); err != nil {
		return response.FromError(c, err)
	}

	user, err := h.svc.UserRoles(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, user, "User roles retrieved successfully")
}
