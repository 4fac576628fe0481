package models

import (
	"time"

	"gorm.io/gorm"
)

type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Slug      string    `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Products  []Product `gorm:"many2many:product_categories" json:"products,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Product struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Name          string         `gorm:"size:255;not null" json:"name"`
	Slug          string         `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Price         int64          `gorm:"not null;default:0" json:"price"`
	TotalQuantity int64          `gorm:"not null;default:0" json:"total_quantity"`
	InStock       bool           `gorm:"-" json:"in_stock"`
	Categories    []Category     `gorm:"many2many:product_categories" json:"categories,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *Product) AfterFind(tx *gorm.DB) error {
	p.InStock = p.TotalQuantity >= 1
	return nil
}

func (p *Product) AfterSave(tx *gorm.DB) error {
	p.InStock = p.TotalQuantity >= 1
	return nil
}
