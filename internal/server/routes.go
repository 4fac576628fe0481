package server

import (
	"time"

	"github.com/Kyz7/storefront/internal/auth"
	"github.com/Kyz7/storefront/internal/cart"
	"github.com/Kyz7/storefront/internal/catalog"
	"github.com/Kyz7/storefront/internal/middleware"
	"github.com/Kyz7/storefront/internal/order"
	"github.com/Kyz7/storefront/internal/role"
	"github.com/Kyz7/storefront/internal/user"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func SetupRoutes(app *fiber.App, deps Deps) {
	db := deps.DB
	resolver := middleware.NewResolver(db)
	authSvc := auth.NewService(db, auth.NewTokenManager(deps.Config))

	authHandler := auth.NewHandler(authSvc, deps.Metrics)
	userHandler := user.NewHandler(user.NewService(db, resolver), resolver)
	roleHandler := role.NewHandler(role.NewService(db), resolver)
	cartHandler := cart.NewHandler(cart.NewService(db), resolver)
	catalogHandler := catalog.NewHandler(catalog.NewService(db))
	orderHandler := order.NewHandler(order.NewService(db, deps.Notifier), resolver, deps.Metrics)

	protected := auth.JWTProtected(authSvc)
	guard := func(names ...string) fiber.Handler {
		return middleware.PermissionProtected(resolver.Required(names...))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Storefront API is running",
		})
	})
	if deps.Metrics != nil {
		app.Get("/metrics", deps.Metrics.Handler())
	}

	// ==========================================
	// AUTH
	// ==========================================
	authGroup := app.Group("/auth")
	authGroup.Post("/login", limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}), authHandler.Login)

	// ==========================================
	// USERS, ROLES, PERMISSIONS
	// ==========================================
	users := app.Group("/users", protected)
	users.Post("/create", guard(role.PermUserCreate), userHandler.CreateUser)
	users.Get("/list", guard(role.PermListAllUsers), userHandler.ListUsers)
	users.Get("/self/me", userHandler.Me)
	users.Get("/self/detail", userHandler.Detail)

	users.Post("/roles/create", guard(role.PermCreateRole), roleHandler.CreateRole)
	users.Get("/roles/get", guard(role.PermListAllRole), roleHandler.ListRoles)
	users.Put("/roles/update/:id", guard(role.PermUpdateRole), roleHandler.UpdateRolePermissions)
	users.Delete("/roles/delete/:id", guard(role.PermDeleteRole), roleHandler.DeleteRole)
	users.Post("/permissions/create", guard(role.PermCreatePermission, role.PermCreateRole), roleHandler.CreatePermission)
	users.Get("/permissions/get", guard(role.PermListAllRole), roleHandler.ListPermissions)
	users.Post("/assign-role", guard(role.PermAssignUserRole), roleHandler.AssignRoles)
	users.Get("/user-roles/:id", roleHandler.UserRoles)

	users.Post("/profile/create", userHandler.CreateProfile)
	users.Patch("/profile/update/:id", userHandler.UpdateProfile)

	// ==========================================
	// CART
	// ==========================================
	users.Post("/cart/create", cartHandler.Add)
	users.Patch("/cart/update/:id", cartHandler.Update)
	users.Get("/cart/get/all", guard(role.PermListAllUserCart), cartHandler.List)
	users.Get("/cart/get/self", cartHandler.Self)
	users.Get("/cart/total/self", cartHandler.SelfTotal)

	// ==========================================
	// CATALOG
	// ==========================================
	products := app.Group("/product", protected)
	products.Post("/categories/create", guard(role.PermCreateCategory), catalogHandler.CreateCategory)
	products.Get("/categories/get", catalogHandler.ListCategories)
	products.Put("/categories/update/:id", guard(role.PermUpdateCategory), catalogHandler.UpdateCategory)
	products.Delete("/categories/delete/:id", guard(role.PermDeleteCategory), catalogHandler.DeleteCategory)

	products.Post("/create", guard(role.PermCreateProduct), catalogHandler.CreateProduct)
	products.Get("/get/all", catalogHandler.ListProducts)
	products.Patch("/update/:id", guard(role.PermUpdateProduct), catalogHandler.UpdateProduct)
	products.Delete("/delete/:id", guard(role.PermDeleteProduct), catalogHandler.DeleteProduct)

	// ==========================================
	// ORDERS
	// ==========================================
	orders := app.Group("/orders", protected)
	orders.Post("/create", orderHandler.Place)
	orders.Get("/get/all", guard(role.PermListAllOrders), orderHandler.List)
	orders.Get("/get/:user_id", orderHandler.ForUser)
	orders.Get("/stats", guard(role.PermListAllOrders), orderHandler.Stats)
	orders.Get("/user-stats", guard(role.PermListAllOrders), orderHandler.UserStats)
	orders.Patch("/update/:id", guard(role.PermUpdateOrder), orderHandler.Update)
}
