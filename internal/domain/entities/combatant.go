package entities

// Combatant is one entry in a session's initiative order.
type Combatant struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Initiative int    `json:"initiative"`
	PlayerID   string `json:"player_id,omitempty"` // Linked player, empty for monsters
}
