package entities

import "time"

// StatusEffect is one timed effect instance on a character.
// The same effect name may be applied several times; each row expires on its own.
type StatusEffect struct {
	ID             int64     `json:"id"`
	CharacterID    int64     `json:"character_id"`
	Name           string    `json:"name"`
	NormalizedName string    `json:"normalized_name"`
	Duration       int       `json:"duration"` // Turns remaining
	CasterID       string    `json:"caster_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
