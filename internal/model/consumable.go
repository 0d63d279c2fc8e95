package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ConsumableStatus enum constants, derived from quantity, reserved and safety stock
const (
	ConsumableInStock    = "in-stock"
	ConsumableLowStock   = "low-stock"
	ConsumableOutOfStock = "out-of-stock"
	ConsumableReserved   = "reserved"
)

// Consumable is a stock-counted item
type Consumable struct {
	Base
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	CategoryID  string          `gorm:"type:varchar(64);index" json:"category_id"`
	Unit        string          `gorm:"type:varchar(20)" json:"unit"`
	Quantity    int64           `gorm:"not null;default:0" json:"quantity"`
	Reserved    int64           `gorm:"not null;default:0" json:"reserved"`
	SafetyStock int64           `gorm:"not null;default:0" json:"safety_stock"`
	Status      string          `gorm:"type:varchar(20);not null;default:'out-of-stock';index" json:"status"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"unit_price"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

// DeriveConsumableStatus computes the stock status for the given totals
func DeriveConsumableStatus(quantity, reserved, safetyStock int64) string {
	switch {
	case quantity <= 0:
		return ConsumableOutOfStock
	case reserved > 0 && reserved >= quantity:
		return ConsumableReserved
	case quantity <= safetyStock:
		return ConsumableLowStock
	default:
		return ConsumableInStock
	}
}

// ConsumableOperation records a signed stock movement (stock card line).
// QuantityAfter/ReservedAfter are stamped when the movement is applied.
type ConsumableOperation struct {
	Base
	ConsumableID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"consumable_id"`
	Type          ActionType     `gorm:"type:varchar(30);not null" json:"type"`
	Status        string         `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	QuantityDelta int64          `gorm:"not null;default:0" json:"quantity_delta"`
	ReservedDelta int64          `gorm:"not null;default:0" json:"reserved_delta"`
	QuantityAfter *int64         `json:"quantity_after,omitempty"`
	ReservedAfter *int64         `json:"reserved_after,omitempty"`
	Actor         string         `gorm:"type:varchar(64)" json:"actor"`
	Description   string         `gorm:"type:text" json:"description"`
	Metadata      datatypes.JSON `gorm:"type:json" json:"metadata,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}
