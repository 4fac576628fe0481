package catalog_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/Kyz7/storefront/internal/apperror"
	"github.com/Kyz7/storefront/internal/catalog"
	"github.com/Kyz7/storefront/internal/models"
	"github.com/Kyz7/storefront/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }
func intPtr(v int) *int       { return &v }
func boolPtr(v bool) *bool    { return &v }
func strPtr(v string) *string { return &v }

func TestCategories(t *testing.T) {
	db := testutils.TestDB(t)
	svc := catalog.NewService(db)
	ctx := context.Background()

	t.Run("Success - Slugs get a numeric suffix on collision", func(t *testing.T) {
		var slugs []string
		for i := 0; i < 3; i++ {
			category, err := svc.CreateCategory(ctx, "Summer Shoes")
			require.NoError(t, err)
			slugs = append(slugs, category.Slug)
		}
		assert.Equal(t, []string{"summer-shoes", "summer-shoes-1", "summer-shoes-2"}, slugs)
	})

	t.Run("Success - Update with the same name keeps identity", func(t *testing.T) {
		created, err := svc.CreateCategory(ctx, "Hats")
		require.NoError(t, err)
		before, err := svc.GetCategory(ctx, created.ID)
		require.NoError(t, err)

		after, err := svc.UpdateCategory(ctx, created.ID, catalog.CategoryPatch{Name: strPtr("Hats")})
		require.NoError(t, err)

		assert.Equal(t, before.ID, after.ID)
		assert.Equal(t, "hats", after.Slug)
		assert.Equal(t, before.CreatedAt.Unix(), after.CreatedAt.Unix())
	})

	t.Run("Success - Rename re-derives the slug", func(t *testing.T) {
		created, err := svc.CreateCategory(ctx, "Caps")
		require.NoError(t, err)

		after, err := svc.UpdateCategory(ctx, created.ID, catalog.CategoryPatch{Name: strPtr("Summer Shoes")})
		require.NoError(t, err)
		assert.Equal(t, "summer-shoes-3", after.Slug)
	})

	t.Run("Error - Name without letters", func(t *testing.T) {
		_, err := svc.CreateCategory(ctx, "???")
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})

	t.Run("Success - Delete unlinks products", func(t *testing.T) {
		category, err := svc.CreateCategory(ctx, "Temporary")
		require.NoError(t, err)
		product, err := svc.CreateProduct(ctx, catalog.ProductInput{Name: "Temp Item", Price: 10, CategoryIDs: []uint{category.ID}})
		require.NoError(t, err)

		require.NoError(t, svc.DeleteCategory(ctx, category.ID))

		got, err := svc.GetProduct(ctx, product.ID)
		require.NoError(t, err)
		assert.Empty(t, got.Categories)

		assert.ErrorIs(t, svc.DeleteCategory(ctx, category.ID), apperror.ErrNotFound)
	})
}

func TestProducts(t *testing.T) {
	db := testutils.TestDB(t)
	svc := catalog.NewService(db)
	ctx := context.Background()

	shoes, err := svc.CreateCategory(ctx, "Shoes")
	require.NoError(t, err)
	sale, err := svc.CreateCategory(ctx, "Sale")
	require.NoError(t, err)

	var runner *models.Product

	t.Run("Success - Create with categories", func(t *testing.T) {
		runner, err = svc.CreateProduct(ctx, catalog.ProductInput{
			Name:          "Trail Runner",
			Price:         120,
			TotalQuantity: 3,
			CategoryIDs:   []uint{shoes.ID, sale.ID},
		})
		require.NoError(t, err)

		assert.Equal(t, "trail-runner", runner.Slug)
		assert.True(t, runner.InStock)
		assert.Len(t, runner.Categories, 2)
	})

	t.Run("Error - Unknown category", func(t *testing.T) {
		_, err := svc.CreateProduct(ctx, catalog.ProductInput{Name: "Ghost", CategoryIDs: []uint{9999}})
		assert.ErrorIs(t, err, apperror.ErrNotFound)

		var count int64
		db.Model(&models.Product{}).Where("name = ?", "Ghost").Count(&count)
		assert.Zero(t, count)
	})

	t.Run("Success - Partial update", func(t *testing.T) {
		updated, err := svc.UpdateProduct(ctx, runner.ID, catalog.ProductPatch{TotalQuantity: int64Ptr(0)})
		require.NoError(t, err)

		assert.Equal(t, int64(120), updated.Price)
		assert.Equal(t, "Trail Runner", updated.Name)
		assert.False(t, updated.InStock)
		assert.Len(t, updated.Categories, 2)
	})

	t.Run("Success - Replace categories", func(t *testing.T) {
		updated, err := svc.UpdateProduct(ctx, runner.ID, catalog.ProductPatch{CategoryIDs: &[]uint{sale.ID}})
		require.NoError(t, err)
		require.Len(t, updated.Categories, 1)
		assert.Equal(t, sale.ID, updated.Categories[0].ID)

		var links int64
		db.Table("product_categories").Where("product_id = ?", runner.ID).Count(&links)
		assert.Equal(t, int64(1), links)
	})

	t.Run("Success - Rename updates the slug", func(t *testing.T) {
		updated, err := svc.UpdateProduct(ctx, runner.ID, catalog.ProductPatch{Name: strPtr("Road Runner")})
		require.NoError(t, err)
		assert.Equal(t, "road-runner", updated.Slug)
	})

	t.Run("Success - Soft delete hides the product but keeps the slug", func(t *testing.T) {
		doomed, err := svc.CreateProduct(ctx, catalog.ProductInput{Name: "Old Boot", Price: 5, TotalQuantity: 1})
		require.NoError(t, err)

		require.NoError(t, svc.DeleteProduct(ctx, doomed.ID))
		_, err = svc.GetProduct(ctx, doomed.ID)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
		assert.ErrorIs(t, svc.DeleteProduct(ctx, doomed.ID), apperror.ErrNotFound)

		again, err := svc.CreateProduct(ctx, catalog.ProductInput{Name: "Old Boot", Price: 5})
		require.NoError(t, err)
		assert.Equal(t, "old-boot-1", again.Slug)
	})
}

func TestListProducts(t *testing.T) {
	db := testutils.TestDB(t)
	svc := catalog.NewService(db)
	ctx := context.Background()

	for _, p := range []catalog.ProductInput{
		{Name: "Red Shirt", Price: 20, TotalQuantity: 5},
		{Name: "Blue Shirt", Price: 35, TotalQuantity: 0},
		{Name: "Red Scarf", Price: 15, TotalQuantity: 2},
		{Name: "Green Hat", Price: 50, TotalQuantity: 1},
	} {
		_, err := svc.CreateProduct(ctx, p)
		require.NoError(t, err)
	}

	names := func(products []models.Product) []string {
		out := make([]string, 0, len(products))
		for _, p := range products {
			out = append(out, p.Name)
		}
		return out
	}

	t.Run("Success - Name is a case-insensitive substring", func(t *testing.T) {
		products, err := svc.ListProducts(ctx, catalog.ProductFilter{Name: "SHIRT"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Red Shirt", "Blue Shirt"}, names(products))
	})

	t.Run("Success - Price is an upper bound", func(t *testing.T) {
		products, err := svc.ListProducts(ctx, catalog.ProductFilter{Price: int64Ptr(20)})
		require.NoError(t, err)
		assert.Equal(t, []string{"Red Shirt", "Red Scarf"}, names(products))
	})

	t.Run("Success - In stock only", func(t *testing.T) {
		products, err := svc.ListProducts(ctx, catalog.ProductFilter{InStock: boolPtr(true)})
		require.NoError(t, err)
		assert.Len(t, products, 3)
		for _, p := range products {
			assert.True(t, p.InStock)
		}
	})

	t.Run("Success - in_stock=false does not filter", func(t *testing.T) {
		products, err := svc.ListProducts(ctx, catalog.ProductFilter{InStock: boolPtr(false)})
		require.NoError(t, err)
		assert.Len(t, products, 4)
	})

	t.Run("Success - Filters combine", func(t *testing.T) {
		products, err := svc.ListProducts(ctx, catalog.ProductFilter{Name: "red", Price: int64Ptr(18), InStock: boolPtr(true)})
		require.NoError(t, err)
		assert.Equal(t, []string{"Red Scarf"}, names(products))
	})

	t.Run("Success - Pagination", func(t *testing.T) {
		products, err := svc.ListProducts(ctx, catalog.ProductFilter{Offset: intPtr(1), Limit: intPtr(2)})
		require.NoError(t, err)
		assert.Equal(t, []string{"Blue Shirt", "Red Scarf"}, names(products))
	})
}

func TestSeed(t *testing.T) {
	db := testutils.TestDB(t)
	svc := catalog.NewService(db)

	require.NoError(t, svc.Seed(context.Background(), 3, 10))

	var categories, products, links int64
	db.Model(&models.Category{}).Count(&categories)
	db.Model(&models.Product{}).Count(&products)
	db.Table("product_categories").Count(&links)
	assert.Equal(t, int64(3), categories)
	assert.Equal(t, int64(10), products)
	assert.Equal(t, int64(10), links)
}

func TestCatalogRoutes(t *testing.T) {
	ta := testutils.SetupTestApp(t)
	manager := testutils.CreateTestUserWithRole(t, ta.DB, "manager", "password123", "catalog-manager")
	shopper := testutils.CreateTestUser(t, ta.DB, "shopper", "password123", false)
	managerToken := testutils.GetAuthToken(t, manager)
	shopperToken := testutils.GetAuthToken(t, shopper)

	var productID uint

	t.Run("Success - Manager creates a product", func(t *testing.T) {
		body := map[string]interface{}{"name": "Desk Lamp", "price": 40, "total_quantity": 2}
		resp, err := testutils.MakeRequest(ta.App, "POST", "/product/create", body, managerToken)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		data := result.Data.(map[string]interface{})
		assert.Equal(t, "desk-lamp", data["slug"])
		assert.Equal(t, true, data["in_stock"])
		productID = uint(data["id"].(float64))
	})

	t.Run("Error - Shopper cannot create products", func(t *testing.T) {
		body := map[string]interface{}{"name": "Chair", "price": 40}
		resp, err := testutils.MakeRequest(ta.App, "POST", "/product/create", body, shopperToken)
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.Code)
		testutils.AssertError(t, resp, "FORBIDDEN")
	})

	t.Run("Error - Negative price", func(t *testing.T) {
		body := map[string]interface{}{"name": "Chair", "price": -1}
		resp, err := testutils.MakeRequest(ta.App, "POST", "/product/create", body, managerToken)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		testutils.AssertError(t, resp, "VALIDATION_ERROR")
	})

	t.Run("Success - Anyone signed in can browse", func(t *testing.T) {
		resp, err := testutils.MakeRequest(ta.App, "GET", "/product/get/all?name=lamp&in_stock=true&limit=5", nil, shopperToken)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		assert.Len(t, result.Data.([]interface{}), 1)
		require.NotNil(t, result.Meta)
		assert.Equal(t, 5, result.Meta.Limit)
		assert.Equal(t, 1, result.Meta.Count)
	})

	t.Run("Error - Limit above the maximum", func(t *testing.T) {
		resp, err := testutils.MakeRequest(ta.App, "GET", "/product/get/all?limit=500", nil, shopperToken)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("Success - Patch price", func(t *testing.T) {
		resp, err := testutils.MakeRequest(ta.App, "PATCH", "/product/update/"+testutils.ID(productID), map[string]interface{}{"price": 45}, managerToken)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.Code)
	})

	t.Run("Success - Delete", func(t *testing.T) {
		resp, err := testutils.MakeRequest(ta.App, "DELETE", "/product/delete/"+testutils.ID(productID), nil, managerToken)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.Code)
	})

	t.Run("Error - Delete missing product", func(t *testing.T) {
		resp, err := testutils.MakeRequest(ta.App, "DELETE", "/product/delete/"+testutils.ID(productID), nil, managerToken)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("Error - Non-numeric id", func(t *testing.T) {
		resp, err := testutils.MakeRequest(ta.App, "DELETE", "/product/delete/abc", nil, managerToken)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})
}
