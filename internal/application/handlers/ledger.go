package handlers

import (
	"context"

	"github.com/ersonp/sheetkeeper/internal/domain/entities"
	"github.com/ersonp/sheetkeeper/internal/domain/services"
)

// LedgerHandler handles money and inventory use cases.
type LedgerHandler struct {
	characters *services.CharacterService
	ledger     *services.LedgerService
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(characters *services.CharacterService, ledger *services.LedgerService) *LedgerHandler {
	return &LedgerHandler{
		characters: characters,
		ledger:     ledger,
	}
}

// HandleMoney adds a signed amount to the balance and returns the new balance.
func (h *LedgerHandler) HandleMoney(ctx context.Context, identity entities.Identity, amount float64) (float64, error) {
	id, err := h.characters.Resolve(ctx, identity)
	if err != nil {
		return 0, err
	}
	return h.ledger.AdjustMoney(ctx, id, amount)
}

// HandleAddItem adds quantity units of an item and returns the resulting stack.
func (h *LedgerHandler) HandleAddItem(ctx context.Context, identity entities.Identity, name string, quantity int, description string) (*entities.InventoryItem, error) {
	id, err := h.characters.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}
	return h.ledger.AddItem(ctx, id, name, quantity, description)
}

// HandleRemoveItem removes quantity units of an item and returns what is left.
func (h *LedgerHandler) HandleRemoveItem(ctx context.Context, identity entities.Identity, name string, quantity int) (int, error) {
	id, err := h.characters.Resolve(ctx, identity)
	if err != nil {
		return 0, err
	}
	return h.ledger.RemoveItem(ctx, id, name, quantity)
}

// HandleListItems returns a character's inventory sorted by item name.
func (h *LedgerHandler) HandleListItems(ctx context.Context, identity entities.Identity) ([]entities.InventoryItem, error) {
	id, err := h.characters.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}
	return h.ledger.ListInventory(ctx, id)
}
