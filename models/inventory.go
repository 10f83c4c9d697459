package models

import (
	"time"

	"github.com/google/uuid"
)

type InventoryStatus string

const (
	InventoryAvailable InventoryStatus = "available"
	InventoryInUse     InventoryStatus = "in_use"
)

func (s InventoryStatus) Valid() bool {
	return s == InventoryAvailable || s == InventoryInUse
}

type InventoryItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string          `gorm:"size:255;not null" json:"name"`
	Quantity  int             `gorm:"not null;default:0;check:quantity >= 0" json:"quantity"`
	Status    InventoryStatus `gorm:"type:varchar(20);not null;default:'available'" json:"status"`
	Notes     *string         `gorm:"type:text" json:"notes"`
	CreatedBy uuid.UUID       `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (InventoryItem) TableName() string { return "inventory" }
