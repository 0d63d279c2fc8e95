package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AssetStatus enum constants
const (
	AssetStatusIdle        = "idle"
	AssetStatusInUse       = "in-use"
	AssetStatusMaintenance = "maintenance"
	AssetStatusRetired     = "retired"
)

// OperationStatus enum constants shared by asset and consumable operations
const (
	OperationPending   = "pending"
	OperationDone      = "done"
	OperationCancelled = "cancelled"
)

// Asset is a tracked, individually identifiable item
type Asset struct {
	Base
	Name          string          `gorm:"type:varchar(255);not null" json:"name"`
	CategoryID    string          `gorm:"type:varchar(64);index" json:"category_id"`
	Status        string          `gorm:"type:varchar(20);not null;default:'idle';index" json:"status"`
	OwnerID       string          `gorm:"type:varchar(64)" json:"owner_id"`
	Location      string          `gorm:"type:varchar(255)" json:"location"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"purchase_price"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

// Operation is the pending side-effect payload for an asset action
type Operation struct {
	Base
	AssetID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"asset_id"`
	Type        ActionType     `gorm:"type:varchar(30);not null" json:"type"`
	Status      string         `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Actor       string         `gorm:"type:varchar(64)" json:"actor"`
	Description string         `gorm:"type:text" json:"description"`
	Metadata    datatypes.JSON `gorm:"type:json" json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
