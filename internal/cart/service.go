package cart

import (
	"context"

	"github.com/Kyz7/storefront/internal/apperror"
	"github.com/Kyz7/storefront/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type AddInput struct {
	UserID    uint `json:"user_id" validate:"required"`
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity" validate:"gt=0"`
}

// Patch updates a cart row. ProductID selects which of the user's rows to
// change; without it the user's oldest row is used.
type Patch struct {
	ProductID *uint `json:"product_id"`
	Quantity  *int  `json:"quantity" validate:"omitempty,gt=0"`
}

func (s *Service) Add(ctx context.Context, userID, productID uint, quantity int) (*models.CartItem, error) {
	if quantity <= 0 {
		return nil, apperror.Validation(map[string]string{"quantity": "quantity must be greater than 0"})
	}

	db := s.db.WithContext(ctx)
	if err := exists(db, &models.User{}, userID, "User"); err != nil {
		return nil, err
	}
	if err := exists(db, &models.Product{}, productID, "Product"); err != nil {
		return nil, err
	}

	item := models.CartItem{UserID: userID, ProductID: productID, Quantity: quantity}
	if err := db.Create(&item).Error; err != nil {
		return nil, errors.Wrap(err, "add cart item")
	}
	return s.get(ctx, item.ID)
}

func (s *Service) Update(ctx context.Context, userID uint, patch Patch) (*models.CartItem, error) {
	db := s.db.WithContext(ctx)

	query := db.Where("user_id = ?", userID)
	if patch.ProductID != nil {
		query = query.Where("product_id = ?", *patch.ProductID)
	}

	var item models.CartItem
	err := query.Order("id").First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("Cart item")
	}
	if err != nil {
		return nil, errors.Wrap(err, "find cart item")
	}

	if patch.Quantity != nil {
		if *patch.Quantity <= 0 {
			return nil, apperror.Validation(map[string]string{"quantity": "quantity must be greater than 0"})
		}
		if err := db.Model(&item).Update("quantity", *patch.Quantity).Error; err != nil {
			return nil, errors.Wrap(err, "update cart item")
		}
	}
	return s.get(ctx, item.ID)
}

// Total sums quantity * price over the user's cart, 0 when the cart is empty.
func (s *Service) Total(ctx context.Context, userID uint) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).
		Table("cart_items").
		Select("COALESCE(SUM(cart_items.quantity * products.price), 0)").
		Joins("JOIN products ON products.id = cart_items.product_id AND products.deleted_at IS NULL").
		Where("cart_items.user_id = ?", userID).
		Scan(&total).Error
	if err != nil {
		return 0, errors.Wrap(err, "cart total")
	}
	return total, nil
}

// List and ForUser skip rows whose product was deleted, matching Total.
func (s *Service) List(ctx context.Context) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := s.listed(ctx).Order("cart_items.id").Find(&items).Error; err != nil {
		return nil, errors.Wrap(err, "list cart items")
	}
	return items, nil
}

func (s *Service) ForUser(ctx context.Context, userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := s.listed(ctx).Where("cart_items.user_id = ?", userID).Order("cart_items.id").Find(&items).Error; err != nil {
		return nil, errors.Wrap(err, "list user cart")
	}
	return items, nil
}

func (s *Service) get(ctx context.Context, id uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := s.preload(ctx).First(&item, id).Error; err != nil {
		return nil, errors.Wrap(err, "get cart item")
	}
	return &item, nil
}

func (s *Service) preload(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("User").
		Preload("Product", func(db *gorm.DB) *gorm.DB { return db.Unscoped() })
}

func (s *Service) listed(ctx context.Context) *gorm.DB {
	return s.preload(ctx).
		Joins("JOIN products ON products.id = cart_items.product_id AND products.deleted_at IS NULL")
}

func exists(db *gorm.DB, model interface{}, id uint, resource string) error {
	var count int64
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return errors.Wrapf(err, "check %s", resource)
	}
	if count == 0 {
		return apperror.NotFound(resource)
	}
	return nil
}
