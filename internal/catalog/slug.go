package catalog

import (
	"fmt"

	"github.com/Kyz7/storefront/internal/apperror"
	"github.com/gosimple/slug"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// UniqueSlug slugifies base and appends -1, -2, ... until no row of model
// other than excludeID uses it. Soft-deleted rows still hold their slug.
func UniqueSlug(db *gorm.DB, model interface{}, base string, excludeID uint) (string, error) {
	root := slug.Make(base)
	if root == "" {
		return "", apperror.Validation(map[string]string{"name": "name must contain letters or digits"})
	}

	candidate := root
	for i := 1; ; i++ {
		query := db.Unscoped().Model(model).Where("slug = ?", candidate)
		if excludeID != 0 {
			query = query.Where("id <> ?", excludeID)
		}

		var count int64
		if err := query.Count(&count).Error; err != nil {
			return "", errors.Wrap(err, "check slug")
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", root, i)
	}
}
