package catalog

import (
	"context"
	"strings"

	"github.com/Kyz7/storefront/internal/apperror"
	"github.com/Kyz7/storefront/internal/models"
	"github.com/Kyz7/storefront/internal/sanitize"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultLimit = 100
	MaxLimit     = 100
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type CategoryPatch struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=255"`
}

type ProductInput struct {
	Name          string `json:"name" validate:"required,max=255"`
	Price         int64  `json:"price" validate:"gte=0"`
	TotalQuantity int64  `json:"total_quantity" validate:"gte=0"`
	CategoryIDs   []uint `json:"categories"`
}

type ProductPatch struct {
	Name          *string `json:"name" validate:"omitempty,min=1,max=255"`
	Price         *int64  `json:"price" validate:"omitempty,gte=0"`
	TotalQuantity *int64  `json:"total_quantity" validate:"omitempty,gte=0"`
	CategoryIDs   *[]uint `json:"categories"`
}

// ProductFilter narrows ListProducts. Every set field is ANDed together.
type ProductFilter struct {
	Name    string `query:"name"`
	Price   *int64 `query:"price" validate:"omitempty,gte=0"`
	InStock *bool  `query:"in_stock"`
	Offset  *int   `query:"offset" validate:"omitempty,gte=0"`
	Limit   *int   `query:"limit" validate:"omitempty,gte=1,lte=100"`
}

func (f ProductFilter) page() (offset, limit int) {
	offset, limit = 0, DefaultLimit
	if f.Offset != nil {
		offset = *f.Offset
	}
	if f.Limit != nil {
		limit = *f.Limit
	}
	return offset, limit
}

func (s *Service) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	db := s.db.WithContext(ctx)
	name = sanitize.Text(name)

	slug, err := UniqueSlug(db, &models.Category{}, name, 0)
	if err != nil {
		return nil, err
	}

	category := models.Category{Name: name, Slug: slug}
	if err := db.Create(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("Category slug %q already exists", slug)
		}
		return nil, errors.Wrap(err, "create category")
	}
	return &category, nil
}

func (s *Service) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	err := s.db.WithContext(ctx).First(&category, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("Category")
	}
	if err != nil {
		return nil, errors.Wrap(err, "get category")
	}
	return &category, nil
}

// UpdateCategory applies the patch and re-derives the slug from the
// resulting name, ignoring the category's own current slug.
func (s *Service) UpdateCategory(ctx context.Context, id uint, patch CategoryPatch) (*models.Category, error) {
	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	if patch.Name != nil {
		category.Name = sanitize.Text(*patch.Name)
	}
	slug, err := UniqueSlug(db, &models.Category{}, category.Name, category.ID)
	if err != nil {
		return nil, err
	}
	category.Slug = slug

	err = db.Model(category).Updates(map[string]interface{}{"name": category.Name, "slug": category.Slug}).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("Category slug %q already exists", slug)
		}
		return nil, errors.Wrap(err, "update category")
	}
	return s.GetCategory(ctx, id)
}

func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.WithContext(ctx).Order("id").Find(&categories).Error; err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	return categories, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id uint) error {
	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(category).Association("Products").Clear(); err != nil {
			return errors.Wrap(err, "unlink category products")
		}
		return errors.Wrap(tx.Delete(category).Error, "delete category")
	})
}

func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	var product models.Product

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		categories, err := loadCategories(tx, in.CategoryIDs)
		if err != nil {
			return err
		}

		name := sanitize.Text(in.Name)
		slug, err := UniqueSlug(tx, &models.Product{}, name, 0)
		if err != nil {
			return err
		}

		product = models.Product{
			Name:          name,
			Slug:          slug,
			Price:         in.Price,
			TotalQuantity: in.TotalQuantity,
			Categories:    categories,
		}
		if err := tx.Omit("Categories.*").Create(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperror.Conflict("Product slug %q already exists", slug)
			}
			return errors.Wrap(err, "create product")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, product.ID)
}

func (s *Service) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).Preload("Categories").First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("Product")
	}
	if err != nil {
		return nil, errors.Wrap(err, "get product")
	}
	return &product, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id uint, patch ProductPatch) (*models.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{}
		if patch.Name != nil {
			name := sanitize.Text(*patch.Name)
			slug, err := UniqueSlug(tx, &models.Product{}, name, product.ID)
			if err != nil {
				return err
			}
			updates["name"] = name
			updates["slug"] = slug
		}
		if patch.Price != nil {
			updates["price"] = *patch.Price
		}
		if patch.TotalQuantity != nil {
			updates["total_quantity"] = *patch.TotalQuantity
		}
		if len(updates) > 0 {
			if err := tx.Model(product).Omit(clause.Associations).Updates(updates).Error; err != nil {
				return errors.Wrap(err, "update product")
			}
		}

		if patch.CategoryIDs != nil {
			categories, err := loadCategories(tx, *patch.CategoryIDs)
			if err != nil {
				return err
			}
			if err := tx.Model(product).Association("Categories").Replace(categories); err != nil {
				return errors.Wrap(err, "replace product categories")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, id)
}

// DeleteProduct soft-deletes the product. Orders keep their link to it.
func (s *Service) DeleteProduct(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Product{}, id)
	if result.Error != nil {
		return errors.Wrap(result.Error, "delete product")
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("Product")
	}
	return nil
}

func (s *Service) ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	query := s.db.WithContext(ctx).Model(&models.Product{})

	if filter.Name != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filter.Name)+"%")
	}
	if filter.Price != nil {
		query = query.Where("price <= ?", *filter.Price)
	}
	if filter.InStock != nil && *filter.InStock {
		query = query.Where("total_quantity > 0")
	}

	offset, limit := filter.page()
	var products []models.Product
	err := query.Preload("Categories").Order("id").Offset(offset).Limit(limit).Find(&products).Error
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	return products, nil
}

func loadCategories(tx *gorm.DB, ids []uint) ([]models.Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var categories []models.Category
	if err := tx.Where("id IN ?", ids).Find(&categories).Error; err != nil {
		return nil, errors.Wrap(err, "load categories")
	}

	found := make(map[uint]bool, len(categories))
	for _, c := range categories {
		found[c.ID] = true
	}
	var missing []uint
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, apperror.NotFound("Category").WithDetails(map[string][]uint{"categories": missing})
	}
	return categories, nil
}
