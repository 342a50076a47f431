package domain

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User accounts are issued by the auth service. This module reads them and
// maintains the phone column.
type User struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	FullName  string  `gorm:"column:full_name;not null" json:"full_name"`
	Email     string  `gorm:"column:email;unique;not null" json:"email"`
	Phone     *string `gorm:"column:phone;uniqueIndex" json:"phone,omitempty"`
	Role      string  `gorm:"column:role;default:customer" json:"role"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// PhoneOrEmpty dereferences Phone.
func (u User) PhoneOrEmpty() string {
	if u.Phone == nil {
		return ""
	}
	return *u.Phone
}
