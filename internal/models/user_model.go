package models

import (
	"time"

	"gorm.io/datatypes"
)

type User struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"size:255;index" json:"name"`
	Email       string     `gorm:"size:255" json:"email"`
	Username    string     `gorm:"size:255;uniqueIndex;not null" json:"username"`
	Age         *int       `gorm:"index" json:"age"`
	Password    string     `gorm:"column:hashed_password;size:255;not null" json:"-"`
	IsActive    bool       `gorm:"not null" json:"is_active"`
	IsArchived  bool       `gorm:"not null" json:"is_archived"`
	IsSuperuser bool       `gorm:"not null" json:"is_superuser"`
	Profile     *Profile   `gorm:"constraint:OnDelete:CASCADE" json:"profile,omitempty"`
	Roles       []Role     `gorm:"many2many:user_roles" json:"roles,omitempty"`
	CartItems   []CartItem `json:"-"`
	Orders      []Order    `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Active reports whether the account may log in.
func (u *User) Active() bool {
	return u.IsActive && !u.IsArchived
}

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

type Profile struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	UserID    uint            `gorm:"uniqueIndex;not null" json:"user_id"`
	User      *User           `json:"user,omitempty"`
	Gender    *Gender         `gorm:"size:10" json:"gender"`
	DOB       *datatypes.Date `gorm:"column:dob" json:"dob"`
	Address   *string         `json:"address"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
