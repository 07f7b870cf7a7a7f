package entities

import "errors"

// Expected, recoverable conditions reported by the domain services.
// Callers match them with errors.Is.
var (
	ErrDuplicateCharacter   = errors.New("character already exists")
	ErrCharacterNotFound    = errors.New("character not found")
	ErrAttributeNotFound    = errors.New("attribute not found")
	ErrNotNumeric           = errors.New("attribute is not numeric")
	ErrValueOutOfRange      = errors.New("attribute value out of range")
	ErrItemNotFound         = errors.New("item not found")
	ErrInsufficientQuantity = errors.New("insufficient quantity")
	ErrInvalidQuantity      = errors.New("quantity must be at least 1")
	ErrInvalidDuration      = errors.New("duration must be at least 1")
	ErrNPCNotFound          = errors.New("npc not found")
	ErrEmptyTracker         = errors.New("initiative tracker is empty")
	ErrCombatantNotFound    = errors.New("combatant not found")
)
