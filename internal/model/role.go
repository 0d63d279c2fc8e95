package model

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Role is a named group of approver candidates, e.g. "ROLE-1" -> ["U1", "U2"].
// Membership is maintained outside the approval engine; the resolver only reads it.
type Role struct {
	ID        string                      `gorm:"type:varchar(64);primaryKey" json:"id"`
	Name      string                      `gorm:"type:varchar(100);not null" json:"name"`
	Scope     string                      `gorm:"type:varchar(50);index" json:"scope"`
	Members   datatypes.JSONSlice[string] `gorm:"type:json" json:"members"`
	CreatedAt time.Time                   `json:"created_at"`
	UpdatedAt time.Time                   `json:"updated_at"`
}

// NormalizeMembers trims ids and drops blanks and duplicates, keeping first-seen order
func NormalizeMembers(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
