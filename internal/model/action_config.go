package model

import (
	"time"

	"gorm.io/datatypes"
)

// ApproverType tells the resolver where the default approver comes from
type ApproverType string

const (
	ApproverTypeNone ApproverType = "none"
	ApproverTypeUser ApproverType = "user"
	ApproverTypeRole ApproverType = "role"
)

// ActionConfig is the per action-type approval policy.
// Rows are seeded once and only ever updated.
type ActionConfig struct {
	ActionType          ActionType                  `gorm:"type:varchar(30);primaryKey" json:"action_type"`
	RequiresApproval    bool                        `gorm:"not null;default:false" json:"requires_approval"`
	DefaultApproverType ApproverType                `gorm:"type:varchar(10);not null;default:'none'" json:"default_approver_type"`
	DefaultApproverRefs datatypes.JSONSlice[string] `gorm:"type:json" json:"default_approver_refs"` // role id, or user ids
	AllowOverride       bool                        `gorm:"not null" json:"allow_override"`
	Metadata            datatypes.JSON              `gorm:"type:json" json:"metadata,omitempty"`
	CreatedAt           time.Time                   `json:"created_at"`
	UpdatedAt           time.Time                   `json:"updated_at"`
}

// FirstRef returns the first non-empty default approver reference
func (c ActionConfig) FirstRef() (string, bool) {
	for _, ref := range c.DefaultApproverRefs {
		if ref != "" {
			return ref, true
		}
	}
	return "", false
}
