package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ApprovalStatus enum constants. Pending is the only non-terminal state.
const (
	ApprovalPending   = "pending"
	ApprovalApproved  = "approved"
	ApprovalRejected  = "rejected"
	ApprovalCancelled = "cancelled"
)

// IsTerminalApprovalStatus reports whether no further transition is allowed out of status
func IsTerminalApprovalStatus(status string) bool {
	return status != ApprovalPending
}

// ApprovalRequest gates one lifecycle action until an approver decides on it.
// Only after approval are the linked operation's side effects applied.
type ApprovalRequest struct {
	Base
	AssetID               *uuid.UUID     `gorm:"type:uuid;index" json:"asset_id,omitempty"`
	ConsumableID          *uuid.UUID     `gorm:"type:uuid;index" json:"consumable_id,omitempty"`
	OperationID           *uuid.UUID     `gorm:"type:uuid;index" json:"operation_id,omitempty"`
	ConsumableOperationID *uuid.UUID     `gorm:"type:uuid;index" json:"consumable_operation_id,omitempty"`
	Type                  ActionType     `gorm:"type:varchar(30);not null;index" json:"type"`
	Status                string         `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Title                 string         `gorm:"type:varchar(255);not null" json:"title"`
	Reason                string         `gorm:"type:text" json:"reason,omitempty"`
	ApplicantID           string         `gorm:"type:varchar(64);not null;index" json:"applicant_id"`
	ApplicantName         string         `gorm:"type:varchar(255)" json:"applicant_name"`
	ApproverID            *string        `gorm:"type:varchar(64);index" json:"approver_id,omitempty"`
	ApproverName          *string        `gorm:"type:varchar(255)" json:"approver_name,omitempty"`
	Result                *string        `gorm:"type:text" json:"result,omitempty"`
	ExternalTodoID        *string        `gorm:"type:varchar(128)" json:"external_todo_id,omitempty"`
	Metadata              datatypes.JSON `gorm:"type:json" json:"metadata,omitempty"` // template snapshot of the originating operation
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
	CompletedAt           *time.Time     `json:"completed_at,omitempty"`
}
