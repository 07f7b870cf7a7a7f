package entities

import "time"

// Audit actions recorded against a character.
const (
	ActionCreate       = "create"
	ActionSetAttribute = "set_attribute"
	ActionAdjust       = "adjust_attribute"
	ActionMoney        = "money"
	ActionAddItem      = "add_item"
	ActionRemoveItem   = "remove_item"
	ActionApplyEffect  = "apply_effect"
	ActionExpire       = "expire_effects"
	ActionDispel       = "dispel_effect"
)

// AuditEntry represents a logged change to a character sheet.
type AuditEntry struct {
	ID          int64          `json:"id"`
	CharacterID int64          `json:"character_id"`
	Action      string         `json:"action"`
	Details     map[string]any `json:"details,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}
