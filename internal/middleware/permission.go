package middleware

import (
	"context"

	"github.com/Kyz7/storefront/internal/apperror"
	"github.com/Kyz7/storefront/internal/auth"
	"github.com/Kyz7/storefront/internal/models"
	"github.com/Kyz7/storefront/internal/response"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Resolver answers permission questions with a single join over the link
// tables instead of walking user.Roles[].Permissions.
type Resolver struct {
	db *gorm.DB
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// Granted returns the set of permission names held through any of the user's roles.
func (r *Resolver) Granted(ctx context.Context, userID uint) (map[string]struct{}, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Table("permissions").
		Distinct("permissions.name").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN user_roles ON user_roles.role_id = role_permissions.role_id").
		Where("user_roles.user_id = ?", userID).
		Pluck("permissions.name", &names).Error
	if err != nil {
		return nil, errors.Wrap(err, "resolve permissions")
	}

	granted := make(map[string]struct{}, len(names))
	for _, name := range names {
		granted[name] = struct{}{}
	}
	return granted, nil
}

// Guard passes a user holding any one of its permission names.
type Guard struct {
	resolver *Resolver
	names    []string
}

func (r *Resolver) Required(names ...string) Guard {
	return Guard{resolver: r, names: names}
}

// Check returns nil when user may pass, ErrForbidden otherwise. Superusers
// always pass.
func (g Guard) Check(ctx context.Context, user *models.User) error {
	if user == nil {
		return apperror.ErrUnauthenticated
	}
	if user.IsSuperuser {
		return nil
	}

	granted, err := g.resolver.Granted(ctx, user.ID)
	if err != nil {
		return err
	}
	for _, name := range g.names {
		if _, ok := granted[name]; ok {
			return nil
		}
	}
	return apperror.ErrForbidden
}

func PermissionProtected(guard Guard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := guard.Check(c.UserContext(), auth.CurrentUser(c)); err != nil {
			return response.FromError(c, err)
		}
		return c.Next()
	}
}

// SelfOr lets the current user act on their own record, otherwise defers to guard.
func SelfOr(c *fiber.Ctx, guard Guard, targetUserID uint) error {
	user := auth.CurrentUser(c)
	if user != nil && user.ID == targetUserID {
		return nil
	}
	return guard.Check(c.UserContext(), user)
}
