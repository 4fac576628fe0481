package role

import (
	"context"
	"sort"

	"github.com/Kyz7/storefront/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// DefaultRoles are created by SeedDefaultRoles. A nil permission list means
// every permission in Catalog.
var DefaultRoles = []struct {
	Name        string
	DisplayName string
	Permissions []string
}{
	{Name: "admin", DisplayName: "Administrator", Permissions: nil},
	{Name: "catalog-manager", DisplayName: "Catalog Manager", Permissions: []string{
		PermCreateProduct, PermUpdateProduct, PermDeleteProduct, PermListAllProducts,
		PermCreateCategory, PermUpdateCategory, PermDeleteCategory, PermListAllCategory,
	}},
	{Name: "support", DisplayName: "Customer Support", Permissions: []string{
		PermListAllUsers, PermListAllUserCart, PermUpdateUserCart, PermListAllOrders, PermUpdateOrder,
	}},
}

// SyncPermissions inserts every Catalog permission that does not exist yet
// and returns how many were created.
func SyncPermissions(ctx context.Context, db *gorm.DB) (int, error) {
	names := make([]string, 0, len(Catalog))
	for name := range Catalog {
		names = append(names, name)
	}
	sort.Strings(names)

	var existing []string
	if err := db.WithContext(ctx).Model(&models.Permission{}).Where("name IN ?", names).Pluck("name", &existing).Error; err != nil {
		return 0, errors.Wrap(err, "load permissions")
	}
	have := make(map[string]bool, len(existing))
	for _, name := range existing {
		have[name] = true
	}

	var missing []models.Permission
	for _, name := range names {
		if !have[name] {
			missing = append(missing, models.Permission{Name: name, DisplayName: Catalog[name]})
		}
	}
	if len(missing) == 0 {
		return 0, nil
	}
	if err := db.WithContext(ctx).Create(&missing).Error; err != nil {
		return 0, errors.Wrap(err, "create permissions")
	}
	return len(missing), nil
}

// SeedDefaultRoles creates DefaultRoles that are not present. Existing roles
// are left untouched.
func SeedDefaultRoles(ctx context.Context, db *gorm.DB) error {
	for _, def := range DefaultRoles {
		var count int64
		if err := db.WithContext(ctx).Model(&models.Role{}).Where("name = ?", def.Name).Count(&count).Error; err != nil {
			return errors.Wrap(err, "check role")
		}
		if count > 0 {
			continue
		}

		query := db.WithContext(ctx).Model(&models.Permission{})
		if def.Permissions != nil {
			query = query.Where("name IN ?", def.Permissions)
		}
		var ids []uint
		if err := query.Pluck("id", &ids).Error; err != nil {
			return errors.Wrap(err, "load permission ids")
		}

		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			role := models.Role{Name: def.Name, DisplayName: def.DisplayName}
			if err := tx.Create(&role).Error; err != nil {
				return err
			}
			return SetRolePermissions(tx, role.ID, ids)
		})
		if err != nil {
			return errors.Wrapf(err, "seed role %s", def.Name)
		}
	}
	return nil
}
