package entities

import "time"

// NPC is a non-player character owned by a user.
// Stats are opaque to the core and stored as a blob.
type NPC struct {
	ID             int64          `json:"id"`
	OwnerID        string         `json:"owner_id"`
	Name           string         `json:"name"`
	NormalizedName string         `json:"normalized_name"`
	Stats          map[string]any `json:"stats"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}
