package role

// Permission names checked by route guards. Each is the slug of its display
// name, so CreatePermission("Create Product") yields PermCreateProduct.
const (
	PermUserCreate       = "user-create"
	PermUserUpdate       = "user-update"
	PermListAllUsers     = "list-all-users"
	PermCreateProduct    = "create-product"
	PermUpdateProduct    = "update-product"
	PermDeleteProduct    = "delete-product"
	PermListAllProducts  = "list-all-products"
	PermCreateCategory   = "create-category"
	PermUpdateCategory   = "update-category"
	PermDeleteCategory   = "delete-category"
	PermListAllCategory  = "list-all-category"
	PermListAllUserCart  = "list-all-user-cart"
	PermUpdateUserCart   = "update-user-cart"
	PermCreateRole       = "create-role"
	PermUpdateRole       = "update-role"
	PermDeleteRole       = "delete-role"
	PermListAllRole      = "list-all-role"
	PermAssignUserRole   = "assign-user-role"
	PermCreatePermission = "create-permission"
	PermListAllOrders    = "list-all-orders"
	PermUpdateOrder      = "update-order"
)

// Catalog maps every built-in permission name to its display name.
var Catalog = map[string]string{
	PermUserCreate:       "User Create",
	PermUserUpdate:       "User Update",
	PermListAllUsers:     "List All Users",
	PermCreateProduct:    "Create Product",
	PermUpdateProduct:    "Update Product",
	PermDeleteProduct:    "Delete Product",
	PermListAllProducts:  "List All Products",
	PermCreateCategory:   "Create Category",
	PermUpdateCategory:   "Update Category",
	PermDeleteCategory:   "Delete Category",
	PermListAllCategory:  "List All Category",
	PermListAllUserCart:  "List All User Cart",
	PermUpdateUserCart:   "Update User Cart",
	PermCreateRole:       "Create Role",
	PermUpdateRole:       "Update Role",
	PermDeleteRole:       "Delete Role",
	PermListAllRole:      "List All Role",
	PermAssignUserRole:   "Assign User Role",
	PermCreatePermission: "Create Permission",
	PermListAllOrders:    "List All Orders",
	PermUpdateOrder:      "Update Order",
}
