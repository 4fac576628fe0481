package order

import (
	"context"
	"time"

	"github.com/Kyz7/storefront/internal/apperror"
	"github.com/Kyz7/storefront/internal/mail"
	"github.com/Kyz7/storefront/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const (
	DefaultLimit = 100
	dateLayout   = "2006-01-02"
)

type Service struct {
	db       *gorm.DB
	notifier mail.Notifier
}

func NewService(db *gorm.DB, notifier mail.Notifier) *Service {
	return &Service{db: db, notifier: notifier}
}

// PlaceInput describes a new order. Payment fields are stored as given.
type PlaceInput struct {
	UserID        uint                 `json:"user_id" validate:"required"`
	ProductIDs    []uint               `json:"product_ids" validate:"required,min=1"`
	PaymentMethod models.PaymentMethod `json:"payment_method" validate:"max=50"`
	PaymentStatus models.PaymentStatus `json:"payment_status" validate:"max=50"`
}

type Patch struct {
	Status        *models.OrderStatus   `json:"status" validate:"omitempty,oneof=Received 'On The Way' Delivered Cancelled"`
	PaymentMethod *models.PaymentMethod `json:"payment_method" validate:"omitempty,max=50"`
	PaymentStatus *models.PaymentStatus `json:"payment_status" validate:"omitempty,max=50"`
}

type Filter struct {
	Status        string `query:"status" validate:"omitempty,oneof=Received 'On The Way' Delivered Cancelled"`
	PaymentMethod string `query:"payment_method" validate:"omitempty,oneof='Cash On Delivery' Card Online"`
	PaymentStatus string `query:"payment_status" validate:"omitempty,oneof=Pending Paid Failed Refunded"`
	OrderedOn     string `query:"ordered_on" validate:"omitempty,datetime=2006-01-02"`
	Product       string `query:"product"`
	Offset        *int   `query:"offset" validate:"omitempty,gte=0"`
	Limit         *int   `query:"limit" validate:"omitempty,gte=1,lte=100"`
}

func (f Filter) page() (offset, limit int) {
	offset, limit = 0, DefaultLimit
	if f.Offset != nil {
		offset = *f.Offset
	}
	if f.Limit != nil {
		limit = *f.Limit
	}
	return offset, limit
}

type UserStat struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Count    int64  `json:"count"`
}

// Place creates an order in status Received linked to every product in
// in.ProductIDs that exists. Unknown ids are skipped.
func (s *Service) Place(ctx context.Context, in PlaceInput) (*models.Order, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, in.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("User")
	}
	if err != nil {
		return nil, errors.Wrap(err, "load user")
	}

	order := models.Order{
		UserID:        in.UserID,
		Status:        models.StatusReceived,
		PaymentMethod: in.PaymentMethod,
		PaymentStatus: in.PaymentStatus,
		OrderedOn:     time.Now(),
	}
	if order.PaymentMethod == "" {
		order.PaymentMethod = models.PaymentCashOnDelivery
	}
	if order.PaymentStatus == "" {
		order.PaymentStatus = models.PaymentPending
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(in.ProductIDs) > 0 {
			if err := tx.Where("id IN ?", in.ProductIDs).Order("id").Find(&order.Products).Error; err != nil {
				return errors.Wrap(err, "load products")
			}
		}
		return errors.Wrap(tx.Omit("Products.*").Create(&order).Error, "create order")
	})
	if err != nil {
		return nil, err
	}

	placed, err := s.Get(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.OrderPlaced(ctx, &user, placed)
	}
	return placed, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := s.preload(ctx).First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("Order")
	}
	if err != nil {
		return nil, errors.Wrap(err, "get order")
	}
	return &order, nil
}

func (s *Service) List(ctx context.Context, filter Filter) ([]models.Order, error) {
	query := s.preload(ctx)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PaymentMethod != "" {
		query = query.Where("payment_method = ?", filter.PaymentMethod)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.OrderedOn != "" {
		day, err := time.ParseInLocation(dateLayout, filter.OrderedOn, time.Local)
		if err != nil {
			return nil, apperror.Validation(map[string]string{"ordered_on": "ordered_on must match " + dateLayout})
		}
		query = query.Where("ordered_on >= ? AND ordered_on < ?", day, day.AddDate(0, 0, 1))
	}
	if filter.Product != "" {
		query = query.Where(
			"EXISTS (SELECT 1 FROM order_products JOIN products ON products.id = order_products.product_id"+
				" WHERE order_products.order_id = orders.id AND products.name = ?)",
			filter.Product,
		)
	}

	offset, limit := filter.page()
	var orders []models.Order
	if err := query.Order("id").Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return orders, nil
}

func (s *Service) ForUser(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	if err := s.preload(ctx).Where("user_id = ?", userID).Order("id").Find(&orders).Error; err != nil {
		return nil, errors.Wrap(err, "list user orders")
	}
	return orders, nil
}

// UpdateStatus writes any of the patch fields. Status moves are not
// restricted to a transition table.
func (s *Service) UpdateStatus(ctx context.Context, id uint, patch Patch) (*models.Order, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.Status != nil {
		updates["status"] = *patch.Status
	}
	if patch.PaymentMethod != nil {
		updates["payment_method"] = *patch.PaymentMethod
	}
	if patch.PaymentStatus != nil {
		updates["payment_status"] = *patch.PaymentStatus
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&models.Order{ID: order.ID}).Updates(updates).Error; err != nil {
			return nil, errors.Wrap(err, "update order")
		}
	}
	return s.Get(ctx, id)
}

// Stats counts orders per status. Every status is present, zero when unused.
func (s *Service) Stats(ctx context.Context) (map[models.OrderStatus]int64, error) {
	var rows []struct {
		Status models.OrderStatus
		Count  int64
	}
	err := s.db.WithContext(ctx).Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "order stats")
	}

	stats := make(map[models.OrderStatus]int64, len(models.OrderStatuses))
	for _, status := range models.OrderStatuses {
		stats[status] = 0
	}
	for _, row := range rows {
		stats[row.Status] = row.Count
	}
	return stats, nil
}

// UserStats counts orders per user, busiest first.
func (s *Service) UserStats(ctx context.Context) ([]UserStat, error) {
	var stats []UserStat
	err := s.db.WithContext(ctx).Model(&models.Order{}).
		Select("orders.user_id AS user_id, users.username AS username, COUNT(orders.id) AS count").
		Joins("JOIN users ON users.id = orders.user_id").
		Group("orders.user_id, users.username").
		Order("count DESC, orders.user_id").
		Scan(&stats).Error
	if err != nil {
		return nil, errors.Wrap(err, "user order stats")
	}
	return stats, nil
}

func (s *Service) preload(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("User").
		Preload("Products", func(db *gorm.DB) *gorm.DB { return db.Unscoped().Order("products.id") })
}
