package ports

import (
	"context"

	"github.com/ersonp/sheetkeeper/internal/domain/entities"
)

// RelationalDB defines the interface for the persistence collaborator.
// Text keys are matched on their folded form; deleting a character
// cascades to its attributes, inventory, effects and audit log.
type RelationalDB interface {
	// EnsureSchema creates the database schema if it doesn't exist.
	EnsureSchema(ctx context.Context) error

	// Close closes the database connection.
	Close() error

	// Character operations

	// CreateCharacter inserts a character and its attributes in one transaction.
	// Returns entities.ErrDuplicateCharacter if the identity is already taken.
	// On success the character's ID and CreatedAt are set.
	CreateCharacter(ctx context.Context, character *entities.Character, attrs []entities.Attribute) error

	// FindCharacter finds a character by identity (case-insensitive).
	// Returns nil if not found.
	FindCharacter(ctx context.Context, identity entities.Identity) (*entities.Character, error)

	// FindCharacterByID finds a character by its ID. Returns nil if not found.
	FindCharacterByID(ctx context.Context, id int64) (*entities.Character, error)

	// ListCharacters lists an owner's characters in a system, ordered by campaign and name.
	ListCharacters(ctx context.Context, ownerID, system string) ([]entities.Character, error)

	// DeleteCharacter deletes a character and everything attached to it.
	DeleteCharacter(ctx context.Context, id int64) error

	// Attribute operations

	// ListAttributes lists a character's attributes in insertion order.
	ListAttributes(ctx context.Context, characterID int64) ([]entities.Attribute, error)

	// FindAttribute finds an attribute by folded name. Returns nil if not found.
	FindAttribute(ctx context.Context, characterID int64, name string) (*entities.Attribute, error)

	// UpdateAttribute sets an existing attribute's value.
	// Returns false if the character has no attribute with that name.
	UpdateAttribute(ctx context.Context, characterID int64, name, value string) (bool, error)

	// Economy & inventory operations

	// AdjustMoney adds amount to the balance and returns the new balance.
	AdjustMoney(ctx context.Context, characterID int64, amount float64) (float64, error)

	// FindItem finds an inventory stack by folded name. Returns nil if not found.
	FindItem(ctx context.Context, characterID int64, name string) (*entities.InventoryItem, error)

	// SaveItem inserts a new inventory stack.
	SaveItem(ctx context.Context, item *entities.InventoryItem) error

	// UpdateItemQuantity sets the quantity of an existing stack.
	UpdateItemQuantity(ctx context.Context, characterID int64, name string, quantity int) error

	// DeleteItem removes an inventory stack.
	DeleteItem(ctx context.Context, characterID int64, name string) error

	// ListItems lists a character's inventory ordered by item name.
	ListItems(ctx context.Context, characterID int64) ([]entities.InventoryItem, error)

	// Status effect operations

	// SaveEffect inserts a new effect instance. On success the ID is set.
	SaveEffect(ctx context.Context, effect *entities.StatusEffect) error

	// ListEffects lists a character's effects in application order.
	ListEffects(ctx context.Context, characterID int64) ([]entities.StatusEffect, error)

	// AdvanceEffects decrements every effect of a character by one turn,
	// deletes the ones that reached zero and returns their names in application order.
	AdvanceEffects(ctx context.Context, characterID int64) ([]string, error)

	// DeleteEffects deletes every instance of an effect by folded name and
	// returns how many were removed.
	DeleteEffects(ctx context.Context, characterID int64, name string) (int, error)

	// NPC operations

	// SaveNPC inserts or replaces an NPC keyed by owner and folded name.
	SaveNPC(ctx context.Context, npc *entities.NPC) error

	// FindNPC finds an NPC by owner and name. Returns nil if not found.
	FindNPC(ctx context.Context, ownerID, name string) (*entities.NPC, error)

	// ListNPCs lists an owner's NPCs ordered by name.
	ListNPCs(ctx context.Context, ownerID string) ([]entities.NPC, error)

	// DeleteNPC deletes an NPC. Returns entities.ErrNPCNotFound if absent.
	DeleteNPC(ctx context.Context, ownerID, name string) error

	// LogAction logs an action to a character's audit log.
	LogAction(ctx context.Context, characterID int64, action string, details map[string]any) error

	// FindAuditLog finds audit log entries for a character, newest first.
	FindAuditLog(ctx context.Context, characterID int64, limit int) ([]entities.AuditEntry, error)
}
