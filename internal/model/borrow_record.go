package model

import (
	"time"

	"github.com/google/uuid"
)

// BorrowStatus enum constants
const (
	BorrowActive   = "active"
	BorrowReturned = "returned"
)

// BorrowRecord tracks who holds an asset after an approved borrow operation
type BorrowRecord struct {
	Base
	AssetID           uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_borrow_asset_op" json:"asset_id"`
	BorrowOperationID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_borrow_asset_op" json:"borrow_operation_id"`
	ReturnOperationID *uuid.UUID `gorm:"type:uuid" json:"return_operation_id,omitempty"`
	Borrower          string     `gorm:"type:varchar(255)" json:"borrower"`
	PlannedReturnAt   *time.Time `gorm:"index" json:"planned_return_at,omitempty"`
	ReturnedAt        *time.Time `json:"returned_at,omitempty"`
	Status            string     `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	OverdueNotifiedAt *time.Time `json:"overdue_notified_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
