package role

import (
	"context"

	"github.com/Kyz7/storefront/internal/apperror"
	"github.com/Kyz7/storefront/internal/models"
	"github.com/Kyz7/storefront/internal/sanitize"
	"github.com/gosimple/slug"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type RoleInput struct {
	Name          string `json:"name" validate:"required,max=100"`
	DisplayName   string `json:"display_name" validate:"required,max=255"`
	PermissionIDs []uint `json:"permissions"`
}

// AssignmentErrors lists every problem found while validating a role
// assignment. It is empty when the assignment was applied.
type AssignmentErrors struct {
	Users []uint `json:"users,omitempty"`
	Roles []uint `json:"roles,omitempty"`
}

func (e AssignmentErrors) Empty() bool {
	return len(e.Users) == 0 && len(e.Roles) == 0
}

// CreatePermission derives the permission name from displayName and rejects
// a name that is already taken.
func (s *Service) CreatePermission(ctx context.Context, displayName string) (*models.Permission, error) {
	displayName = sanitize.Text(displayName)
	name := slug.Make(displayName)
	if name == "" {
		return nil, apperror.Validation(map[string]string{"display_name": "display_name must contain letters or digits"})
	}

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.Permission{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, errors.Wrap(err, "check permission name")
	}
	if count > 0 {
		return nil, apperror.Conflict("Permission %q already exists", name)
	}

	perm := models.Permission{Name: name, DisplayName: displayName}
	if err := db.Create(&perm).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("Permission %q already exists", name)
		}
		return nil, errors.Wrap(err, "create permission")
	}
	return &perm, nil
}

func (s *Service) ListPermissions(ctx context.Context) ([]models.Permission, error) {
	var perms []models.Permission
	if err := s.db.WithContext(ctx).Order("id").Find(&perms).Error; err != nil {
		return nil, errors.Wrap(err, "list permissions")
	}
	return perms, nil
}

// SetRolePermissions replaces every permission link of roleID with
// permissionIDs. It must run inside the caller's transaction; an unknown
// permission id aborts with NotFound.
func SetRolePermissions(tx *gorm.DB, roleID uint, permissionIDs []uint) error {
	ids := unique(permissionIDs)

	if len(ids) > 0 {
		var found []uint
		if err := tx.Model(&models.Permission{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
			return errors.Wrap(err, "load permissions")
		}
		if missing := difference(ids, found); len(missing) > 0 {
			return apperror.NotFound("Permission").WithDetails(map[string][]uint{"permissions": missing})
		}
	}

	if err := tx.Where("role_id = ?", roleID).Delete(&models.RolePermission{}).Error; err != nil {
		return errors.Wrap(err, "clear role permissions")
	}
	if len(ids) == 0 {
		return nil
	}

	links := make([]models.RolePermission, 0, len(ids))
	for _, id := range ids {
		links = append(links, models.RolePermission{RoleID: roleID, PermissionID: id})
	}
	if err := tx.Create(&links).Error; err != nil {
		return errors.Wrap(err, "link role permissions")
	}
	return nil
}

func (s *Service) CreateRole(ctx context.Context, in RoleInput) (*models.Role, error) {
	role := models.Role{Name: sanitize.Text(in.Name), DisplayName: sanitize.Text(in.DisplayName)}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Role{}).Where("name = ?", role.Name).Count(&count).Error; err != nil {
			return errors.Wrap(err, "check role name")
		}
		if count > 0 {
			return apperror.Conflict("Role with this name already exists")
		}

		if err := tx.Create(&role).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperror.Conflict("Role with this name already exists")
			}
			return errors.Wrap(err, "create role")
		}
		return SetRolePermissions(tx, role.ID, in.PermissionIDs)
	})
	if err != nil {
		return nil, err
	}

	return s.GetRole(ctx, role.ID)
}

// UpdateRolePermissions replaces the role's permission set in one transaction.
func (s *Service) UpdateRolePermissions(ctx context.Context, roleID uint, permissionIDs []uint) (*models.Role, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&models.Role{}, roleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("Role")
			}
			return errors.Wrap(err, "load role")
		}
		return SetRolePermissions(tx, roleID, permissionIDs)
	})
	if err != nil {
		return nil, err
	}

	return s.GetRole(ctx, roleID)
}

func (s *Service) DeleteRole(ctx context.Context, roleID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&models.Role{}, roleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("Role")
			}
			return errors.Wrap(err, "load role")
		}
		if err := tx.Where("role_id = ?", roleID).Delete(&models.RolePermission{}).Error; err != nil {
			return errors.Wrap(err, "clear role permissions")
		}
		if err := tx.Where("role_id = ?", roleID).Delete(&models.UserRole{}).Error; err != nil {
			return errors.Wrap(err, "clear role members")
		}
		return tx.Delete(&models.Role{}, roleID).Error
	})
}

// AssignRoles replaces the user's roles with roleIDs. Missing users or roles
// are collected into the returned report instead of failing fast; nothing is
// written unless the report is empty.
func (s *Service) AssignRoles(ctx context.Context, userID uint, roleIDs []uint) ([]models.UserRole, AssignmentErrors, error) {
	var report AssignmentErrors
	db := s.db.WithContext(ctx)
	ids := unique(roleIDs)

	var users int64
	if err := db.Model(&models.User{}).Where("id = ?", userID).Count(&users).Error; err != nil {
		return nil, report, errors.Wrap(err, "check user")
	}
	if users == 0 {
		report.Users = []uint{userID}
	}

	if len(ids) > 0 {
		var found []uint
		if err := db.Model(&models.Role{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
			return nil, report, errors.Wrap(err, "load roles")
		}
		report.Roles = difference(ids, found)
	}

	if !report.Empty() {
		return nil, report, nil
	}

	links := make([]models.UserRole, 0, len(ids))
	for _, id := range ids {
		links = append(links, models.UserRole{UserID: userID, RoleID: id})
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.UserRole{}).Error; err != nil {
			return errors.Wrap(err, "clear user roles")
		}
		if len(links) == 0 {
			return nil
		}
		return errors.Wrap(tx.Create(&links).Error, "link user roles")
	})
	if err != nil {
		return nil, report, err
	}
	return links, report, nil
}

func (s *Service) GetRole(ctx context.Context, roleID uint) (*models.Role, error) {
	var role models.Role
	err := s.db.WithContext(ctx).Preload("Permissions").First(&role, roleID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("Role")
	}
	if err != nil {
		return nil, errors.Wrap(err, "get role")
	}
	return &role, nil
}

func (s *Service) ListRoles(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	if err := s.db.WithContext(ctx).Preload("Permissions").Order("id").Find(&roles).Error; err != nil {
		return nil, errors.Wrap(err, "list roles")
	}
	return roles, nil
}

// UserRoles returns the user with roles and their permissions loaded.
func (s *Service) UserRoles(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Preload("Roles.Permissions").First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("User")
	}
	if err != nil {
		return nil, errors.Wrap(err, "get user roles")
	}
	return &user, nil
}

func unique(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// difference returns the ids in want that are absent from have, in want's order.
func difference(want, have []uint) []uint {
	present := make(map[uint]struct{}, len(have))
	for _, id := range have {
		present[id] = struct{}{}
	}
	var missing []uint
	for _, id := range want {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
