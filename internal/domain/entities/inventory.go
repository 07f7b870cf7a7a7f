package entities

// InventoryItem is a stack of one item on a character.
// Name is stored folded and is unique per character.
type InventoryItem struct {
	CharacterID int64  `json:"character_id"`
	Name        string `json:"name"`
	Quantity    int    `json:"quantity"`
	Description string `json:"description,omitempty"`
}
