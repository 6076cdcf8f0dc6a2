package models

import (
	"time"

	"gorm.io/gorm"
)

// User is a staff account. PinHash is a bcrypt hash of the staff PIN.
type User struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Username  string         `json:"username" gorm:"unique;not null"`
	FullName  string         `json:"full_name"`
	PinHash   string         `json:"-" gorm:"not null"`
	Role      string         `json:"role" gorm:"default:'cashier'"` // admin, manager, cashier, kitchen
	IsActive  bool           `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

type UserRole string

const (
	Admin   UserRole = "admin"
	Manager UserRole = "manager"
	Cashier UserRole = "cashier"
	Kitchen UserRole = "kitchen"
)
