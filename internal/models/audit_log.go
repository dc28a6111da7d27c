package models

import "time"

// AuditLog records who moved what through the workflow. Transitions on
// jobs and unit entries append one row each; the dispute trail on a
// receipt is reconstructed from these plus the entry's own fields.
type AuditLog struct {
	ID         int       `json:"id" db:"id"`
	UserID     int       `json:"user_id" db:"user_id"`
	ActionType string    `json:"action_type" db:"action_type"`
	TargetType string    `json:"target_type" db:"target_type"`
	TargetID   *int      `json:"target_id,omitempty" db:"target_id"`
	FromStatus *string   `json:"from_status,omitempty" db:"from_status"`
	ToStatus   *string   `json:"to_status,omitempty" db:"to_status"`
	Description string   `json:"description" db:"description"`
	IPAddress  *string   `json:"ip_address,omitempty" db:"ip_address"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Action type constants
const (
	ActionTransition = "TRANSITION"
	ActionAssign     = "ASSIGN"
	ActionCreate     = "CREATE"
	ActionAdjust     = "ADJUST"
	ActionDispute    = "DISPUTE"
	ActionDelete     = "DELETE"
)
