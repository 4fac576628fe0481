package role_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/Kyz7/storefront/internal/apperror"
	"github.com/Kyz7/storefront/internal/models"
	"github.com/Kyz7/storefront/internal/role"
	"github.com/Kyz7/storefront/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func permissionIDs(t *testing.T, db *gorm.DB, names ...string) []uint {
	var perms []models.Permission
	require.NoError(t, db.Where("name IN ?", names).Find(&perms).Error)
	require.Len(t, perms, len(names))

	byName := make(map[string]uint, len(perms))
	for _, p := range perms {
		byName[p.Name] = p.ID
	}
	ids := make([]uint, 0, len(names))
	for _, name := range names {
		ids = append(ids, byName[name])
	}
	return ids
}

func TestSeed(t *testing.T) {
	db := testutils.TestDB(t)
	ctx := context.Background()

	t.Run("Success - Sync creates the catalog once", func(t *testing.T) {
		added, err := role.SyncPermissions(ctx, db)
		require.NoError(t, err)
		assert.Equal(t, len(role.Catalog), added)

		added, err = role.SyncPermissions(ctx, db)
		require.NoError(t, err)
		assert.Zero(t, added)
	})

	t.Run("Success - Default roles are idempotent", func(t *testing.T) {
		require.NoError(t, role.SeedDefaultRoles(ctx, db))
		require.NoError(t, role.SeedDefaultRoles(ctx, db))

		var roles int64
		db.Model(&models.Role{}).Count(&roles)
		assert.Equal(t, int64(len(role.DefaultRoles)), roles)

		var admin models.Role
		require.NoError(t, db.Preload("Permissions").Where("name = ?", "admin").First(&admin).Error)
		assert.Len(t, admin.Permissions, len(role.Catalog))
	})
}

func TestCreatePermission(t *testing.T) {
	db := testutils.TestDB(t)
	svc := role.NewService(db)
	ctx := context.Background()

	t.Run("Success - Name is the slug of the display name", func(t *testing.T) {
		perm, err := svc.CreatePermission(ctx, "Refund Order")
		require.NoError(t, err)
		assert.Equal(t, "refund-order", perm.Name)
		assert.Equal(t, "Refund Order", perm.DisplayName)
	})

	t.Run("Error - Slug already taken", func(t *testing.T) {
		_, err := svc.CreatePermission(ctx, "refund  ORDER")
		assert.ErrorIs(t, err, apperror.ErrConflict)
	})

	t.Run("Error - Nothing to slugify", func(t *testing.T) {
		_, err := svc.CreatePermission(ctx, "!!!")
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})

	t.Run("Success - Catalog names round-trip through slugging", func(t *testing.T) {
		for name, display := range role.Catalog {
			if name == "refund-order" {
				continue
			}
			perm, err := svc.CreatePermission(ctx, display)
			require.NoError(t, err)
			assert.Equal(t, name, perm.Name)
		}
	})
}

func TestRoles(t *testing.T) {
	db := testutils.TestDB(t)
	svc := role.NewService(db)
	ctx := context.Background()

	_, err := role.SyncPermissions(ctx, db)
	require.NoError(t, err)
	ids := permissionIDs(t, db, role.PermCreateProduct, role.PermUpdateProduct, role.PermDeleteProduct)

	var editor *models.Role

	t.Run("Success - Create role with permissions", func(t *testing.T) {
		editor, err = svc.CreateRole(ctx, role.RoleInput{Name: "editor", DisplayName: "Editor", PermissionIDs: ids[:2]})
		require.NoError(t, err)
		require.Len(t, editor.Permissions, 2)

		names := []string{editor.Permissions[0].Name, editor.Permissions[1].Name}
		assert.ElementsMatch(t, []string{role.PermCreateProduct, role.PermUpdateProduct}, names)
	})

	t.Run("Error - Duplicate role name", func(t *testing.T) {
		_, err := svc.CreateRole(ctx, role.RoleInput{Name: "editor", DisplayName: "Editor again"})
		assert.ErrorIs(t, err, apperror.ErrConflict)
	})

	t.Run("Error - Unknown permission leaves nothing behind", func(t *testing.T) {
		_, err := svc.CreateRole(ctx, role.RoleInput{Name: "broken", DisplayName: "Broken", PermissionIDs: []uint{ids[0], 9999}})
		assert.ErrorIs(t, err, apperror.ErrNotFound)

		var count int64
		db.Model(&models.Role{}).Where("name = ?", "broken").Count(&count)
		assert.Zero(t, count)
	})

	t.Run("Success - Update replaces the whole permission set", func(t *testing.T) {
		updated, err := svc.UpdateRolePermissions(ctx, editor.ID, []uint{ids[2]})
		require.NoError(t, err)
		require.Len(t, updated.Permissions, 1)
		assert.Equal(t, role.PermDeleteProduct, updated.Permissions[0].Name)
	})

	t.Run("Error - Update unknown role", func(t *testing.T) {
		_, err := svc.UpdateRolePermissions(ctx, 9999, ids)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("Success - Delete role drops its links", func(t *testing.T) {
		member := testutils.CreateTestUser(t, db, "member", "password123", false)
		_, report, err := svc.AssignRoles(ctx, member.ID, []uint{editor.ID})
		require.NoError(t, err)
		require.True(t, report.Empty())

		require.NoError(t, svc.DeleteRole(ctx, editor.ID))

		var links int64
		db.Model(&models.UserRole{}).Where("role_id = ?", editor.ID).Count(&links)
		assert.Zero(t, links)
		db.Model(&models.RolePermission{}).Where("role_id = ?", editor.ID).Count(&links)
		assert.Zero(t, links)

		assert.ErrorIs(t, svc.DeleteRole(ctx, editor.ID), apperror.ErrNotFound)
	})
}

func TestAssignRoles(t *testing.T) {
	db := testutils.TestDB(t)
	testutils.CreateTestRoles(t, db)
	svc := role.NewService(db)
	ctx := context.Background()

	var roles []models.Role
	require.NoError(t, db.Order("id").Find(&roles).Error)
	require.Len(t, roles, 3)

	target := testutils.CreateTestUser(t, db, "target", "password123", false)

	t.Run("Success - Assign two roles", func(t *testing.T) {
		links, report, err := svc.AssignRoles(ctx, target.ID, []uint{roles[0].ID, roles[1].ID})
		require.NoError(t, err)
		assert.True(t, report.Empty())
		assert.Len(t, links, 2)
	})

	t.Run("Error - One unknown role changes nothing", func(t *testing.T) {
		links, report, err := svc.AssignRoles(ctx, target.ID, []uint{roles[2].ID, 9999})
		require.NoError(t, err)
		assert.Nil(t, links)
		assert.Equal(t, []uint{9999}, report.Roles)
		assert.Empty(t, report.Users)

		got, err := svc.UserRoles(ctx, target.ID)
		require.NoError(t, err)
		assert.Len(t, got.Roles, 2)
	})

	t.Run("Error - Unknown user and role are both reported", func(t *testing.T) {
		_, report, err := svc.AssignRoles(ctx, 9999, []uint{8888})
		require.NoError(t, err)
		assert.Equal(t, []uint{9999}, report.Users)
		assert.Equal(t, []uint{8888}, report.Roles)
	})

	t.Run("Success - Assignment replaces previous roles", func(t *testing.T) {
		_, report, err := svc.AssignRoles(ctx, target.ID, []uint{roles[2].ID, roles[2].ID})
		require.NoError(t, err)
		require.True(t, report.Empty())

		got, err := svc.UserRoles(ctx, target.ID)
		require.NoError(t, err)
		require.Len(t, got.Roles, 1)
		assert.Equal(t, "support", got.Roles[0].Name)
		assert.NotEmpty(t, got.Roles[0].Permissions)
	})

	t.Run("Success - Empty list clears roles", func(t *testing.T) {
		_, report, err := svc.AssignRoles(ctx, target.ID, nil)
		require.NoError(t, err)
		require.True(t, report.Empty())

		got, err := svc.UserRoles(ctx, target.ID)
		require.NoError(t, err)
		assert.Empty(t, got.Roles)
	})
}

func TestRoleRoutes(t *testing.T) {
	ta := testutils.SetupTestApp(t)
	admin := testutils.CreateTestUserWithRole(t, ta.DB, "admin", "password123", "admin")
	support := testutils.CreateTestUserWithRole(t, ta.DB, "support", "password123", "support")
	adminToken := testutils.GetAuthToken(t, admin)

	t.Run("Success - Create permission", func(t *testing.T) {
		body := map[string]interface{}{"display_name": "Export Reports"}
		resp, err := testutils.MakeRequest(ta.App, "POST", "/users/permissions/create", body, adminToken)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.Code)
	})

	t.Run("Error - Duplicate permission", func(t *testing.T) {
		body := map[string]interface{}{"display_name": "Export reports"}
		resp, err := testutils.MakeRequest(ta.App, "POST", "/users/permissions/create", body, adminToken)
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, resp.Code)
		testutils.AssertError(t, resp, "CONFLICT")
	})

	t.Run("Error - Support cannot create roles", func(t *testing.T) {
		body := map[string]interface{}{"name": "x", "display_name": "X"}
		resp, err := testutils.MakeRequest(ta.App, "POST", "/users/roles/create", body, testutils.GetAuthToken(t, support))
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("Error - Assignment report", func(t *testing.T) {
		body := map[string]interface{}{"user_id": support.ID, "role_ids": []uint{9999}}
		resp, err := testutils.MakeRequest(ta.App, "POST", "/users/assign-role", body, adminToken)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		require.NotNil(t, result.Error)
		details := result.Error.Details.(map[string]interface{})
		assert.Equal(t, []interface{}{float64(9999)}, details["roles"])
	})

	t.Run("Success - Users can read their own roles", func(t *testing.T) {
		resp, err := testutils.MakeRequest(ta.App, "GET", "/users/user-roles/"+testutils.ID(support.ID), nil, testutils.GetAuthToken(t, support))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.Code)
	})

	t.Run("Error - Users cannot read other users' roles", func(t *testing.T) {
		resp, err := testutils.MakeRequest(ta.App, "GET", "/users/user-roles/"+testutils.ID(admin.ID), nil, testutils.GetAuthToken(t, support))
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("Success - Delete role", func(t *testing.T) {
		var r models.Role
		require.NoError(t, ta.DB.Where("name = ?", "catalog-manager").First(&r).Error)

		resp, err := testutils.MakeRequest(ta.App, "DELETE", "/users/roles/delete/"+testutils.ID(r.ID), nil, adminToken)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.Code)
	})
}
