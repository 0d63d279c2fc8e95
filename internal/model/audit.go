package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	ActionCreateAsset      = "CREATE_ASSET"
	ActionCreateConsumable = "CREATE_CONSUMABLE"
	ActionUpdateConfig     = "UPDATE_ACTION_CONFIG"
	ActionUpsertRole       = "UPSERT_ROLE"

	// Approval workflow actions
	ActionCreateApprovalRequest = "CREATE_APPROVAL_REQUEST"
	ActionApproveRequest        = "APPROVE_REQUEST"
	ActionRejectRequest         = "REJECT_REQUEST"
	ActionCancelRequest         = "CANCEL_REQUEST"
	ActionApplyOperation        = "APPLY_OPERATION"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	Base
	UserID     string         `gorm:"type:varchar(64);index" json:"user_id"` // empty for automated jobs
	UserName   string         `gorm:"type:varchar(255)" json:"user_name,omitempty"`
	Action     string         `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string         `gorm:"type:varchar(64);index" json:"entity_id"`
	EntityName string         `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    datatypes.JSON `gorm:"type:json" json:"details"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
}
