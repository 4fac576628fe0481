package models

import (
	"time"
)

type OrderStatus string

const (
	StatusReceived  OrderStatus = "Received"
	StatusOnTheWay  OrderStatus = "On The Way"
	StatusDelivered OrderStatus = "Delivered"
	StatusCancelled OrderStatus = "Cancelled"
)

// OrderStatuses lists every status in display order.
var OrderStatuses = []OrderStatus{StatusReceived, StatusOnTheWay, StatusDelivered, StatusCancelled}

type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "Cash On Delivery"
	PaymentCard           PaymentMethod = "Card"
	PaymentOnline         PaymentMethod = "Online"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "Pending"
	PaymentPaid     PaymentStatus = "Paid"
	PaymentFailed   PaymentStatus = "Failed"
	PaymentRefunded PaymentStatus = "Refunded"
)

type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	User      *User     `json:"user,omitempty"`
	ProductID uint      `gorm:"index;not null" json:"product_id"`
	Product   *Product  `json:"product,omitempty"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Order struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	UserID        uint          `gorm:"index;not null" json:"user_id"`
	User          *User         `json:"user,omitempty"`
	Products      []Product     `gorm:"many2many:order_products" json:"products"`
	Status        OrderStatus   `gorm:"size:20;index;not null" json:"status"`
	PaymentMethod PaymentMethod `gorm:"size:50" json:"payment_method"`
	PaymentStatus PaymentStatus `gorm:"size:50" json:"payment_status"`
	OrderedOn     time.Time     `gorm:"index" json:"ordered_on"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
