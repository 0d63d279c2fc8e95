package model

import "strings"

// ActionType is the closed set of business operations routed through approval.
type ActionType string

const (
	ActionPurchase    ActionType = "purchase"
	ActionInbound     ActionType = "inbound"
	ActionReceive     ActionType = "receive"
	ActionBorrow      ActionType = "borrow"
	ActionReturn      ActionType = "return"
	ActionMaintenance ActionType = "maintenance"
	ActionDispose     ActionType = "dispose"
	ActionOutbound    ActionType = "outbound"
	ActionReserve     ActionType = "reserve"
	ActionRelease     ActionType = "release"
	ActionAdjust      ActionType = "adjust"
	ActionOther       ActionType = "other"

	// ActionGeneric marks approvals that are not tied to an asset or consumable operation.
	ActionGeneric ActionType = "generic"
)

// AllActionTypes lists every configurable action type in display order.
// ActionGeneric is not configurable; generic approvals use the "other" config.
var AllActionTypes = []ActionType{
	ActionPurchase,
	ActionInbound,
	ActionReceive,
	ActionBorrow,
	ActionReturn,
	ActionMaintenance,
	ActionDispose,
	ActionOutbound,
	ActionReserve,
	ActionRelease,
	ActionAdjust,
	ActionOther,
}

// ParseActionType normalizes s and reports whether it names a configurable action type
func ParseActionType(s string) (ActionType, bool) {
	t := ActionType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllActionTypes {
		if t == known {
			return t, true
		}
	}
	return "", false
}

// ConfigType returns the action type whose ActionConfig governs t
func (t ActionType) ConfigType() ActionType {
	if t == ActionGeneric {
		return ActionOther
	}
	return t
}

// Valid reports whether t is a known action type, generic included
func (t ActionType) Valid() bool {
	if t == ActionGeneric {
		return true
	}
	_, ok := ParseActionType(string(t))
	return ok
}
