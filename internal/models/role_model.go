package models

import (
	"time"
)

type Role struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"size:100;uniqueIndex;not null" json:"name"`
	DisplayName string       `gorm:"size:255" json:"display_name"`
	Permissions []Permission `gorm:"many2many:role_permissions" json:"permissions"`
	Users       []User       `gorm:"many2many:user_roles" json:"-"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

type Permission struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;uniqueIndex;not null" json:"name"`
	DisplayName string    `gorm:"size:255" json:"display_name"`
	Roles       []Role    `gorm:"many2many:role_permissions" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserRole is the user_roles link row. It is registered as the join table of
// User.Roles so link replacement can delete and insert rows directly.
type UserRole struct {
	UserID uint `gorm:"primaryKey" json:"user_id"`
	RoleID uint `gorm:"primaryKey" json:"role_id"`
}

func (UserRole) TableName() string { return "user_roles" }

// RolePermission is the role_permissions link row.
type RolePermission struct {
	RoleID       uint `gorm:"primaryKey" json:"role_id"`
	PermissionID uint `gorm:"primaryKey" json:"permission_id"`
}

func (RolePermission) TableName() string { return "role_permissions" }
