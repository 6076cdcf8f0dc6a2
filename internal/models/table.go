package models

import "time"

type Table struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Number    int       `json:"number" gorm:"uniqueIndex;not null"`
	Capacity  int       `json:"capacity" gorm:"not null"`
	Status    string    `json:"status" gorm:"not null;default:'AVAILABLE'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName keeps clear of the reserved word.
func (Table) TableName() string { return "dining_tables" }

type TableStatus string

const (
	TableAvailable TableStatus = "AVAILABLE"
	TableOccupied  TableStatus = "OCCUPIED"
	TableReserved  TableStatus = "RESERVED"
)
