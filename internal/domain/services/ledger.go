package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ersonp/sheetkeeper/internal/domain/entities"
	"github.com/ersonp/sheetkeeper/internal/domain/ports"
)

// LedgerService manages a character's money and inventory.
type LedgerService struct {
	relationalDB ports.RelationalDB
	locks        *CharacterLocks
	logger       *slog.Logger
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(relationalDB ports.RelationalDB, locks *CharacterLocks, logger *slog.Logger) *LedgerService {
	return &LedgerService{
		relationalDB: relationalDB,
		locks:        orNewLocks(locks),
		logger:       orDiscard(logger),
	}
}

// AdjustMoney adds a signed amount to the balance and returns the new balance.
// Balances may go negative.
func (s *LedgerService) AdjustMoney(ctx context.Context, id int64, amount float64) (float64, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	balance, err := s.relationalDB.AdjustMoney(ctx, id, amount)
	if err != nil {
		return 0, fmt.Errorf("adjusting money: %w", err)
	}

	s.logger.Debug("money adjusted", "id", id, "amount", amount, "balance", balance)
	recordAudit(ctx, s.relationalDB, s.logger, id, entities.ActionMoney, map[string]any{
		"amount":  amount,
		"balance": balance,
	})
	return balance, nil
}

// AddItem adds quantity of an item. An existing stack accumulates and keeps
// its description; otherwise a new stack is created.
func (s *LedgerService) AddItem(ctx context.Context, id int64, name string, quantity int, description string) (*entities.InventoryItem, error) {
	if quantity < 1 {
		return nil, entities.ErrInvalidQuantity
	}
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("item name is required")
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	if err := requireCharacter(ctx, s.relationalDB, id); err != nil {
		return nil, err
	}

	item, err := s.relationalDB.FindItem(ctx, id, name)
	if err != nil {
		return nil, fmt.Errorf("finding item: %w", err)
	}

	if item != nil {
		item.Quantity += quantity
		if err := s.relationalDB.UpdateItemQuantity(ctx, id, item.Name, item.Quantity); err != nil {
			return nil, fmt.Errorf("updating item: %w", err)
		}
	} else {
		item = &entities.InventoryItem{
			CharacterID: id,
			Name:        entities.NormalizeName(name),
			Quantity:    quantity,
			Description: strings.TrimSpace(description),
		}
		if err := s.relationalDB.SaveItem(ctx, item); err != nil {
			return nil, fmt.Errorf("saving item: %w", err)
		}
	}

	s.logger.Debug("item added", "id", id, "item", item.Name, "quantity", item.Quantity)
	recordAudit(ctx, s.relationalDB, s.logger, id, entities.ActionAddItem, map[string]any{
		"item":     item.Name,
		"added":    quantity,
		"quantity": item.Quantity,
	})
	return item, nil
}

// RemoveItem removes quantity of an item and returns what is left.
// The stack is deleted when it reaches zero.
func (s *LedgerService) RemoveItem(ctx context.Context, id int64, name string, quantity int) (int, error) {
	if quantity < 1 {
		return 0, entities.ErrInvalidQuantity
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	item, err := s.relationalDB.FindItem(ctx, id, name)
	if err != nil {
		return 0, fmt.Errorf("finding item: %w", err)
	}
	if item == nil {
		return 0, fmt.Errorf("%w: %s", entities.ErrItemNotFound, entities.NormalizeName(name))
	}
	if quantity > item.Quantity {
		return 0, fmt.Errorf("%w: have %d %s, asked for %d", entities.ErrInsufficientQuantity, item.Quantity, item.Name, quantity)
	}

	remaining := item.Quantity - quantity
	if remaining == 0 {
		err = s.relationalDB.DeleteItem(ctx, id, item.Name)
	} else {
		err = s.relationalDB.UpdateItemQuantity(ctx, id, item.Name, remaining)
	}
	if err != nil {
		return 0, fmt.Errorf("removing item: %w", err)
	}

	s.logger.Debug("item removed", "id", id, "item", item.Name, "remaining", remaining)
	recordAudit(ctx, s.relationalDB, s.logger, id, entities.ActionRemoveItem, map[string]any{
		"item":      item.Name,
		"removed":   quantity,
		"remaining": remaining,
	})
	return remaining, nil
}

// ListInventory returns a character's items sorted by name.
func (s *LedgerService) ListInventory(ctx context.Context, id int64) ([]entities.InventoryItem, error) {
	items, err := s.relationalDB.ListItems(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	return items, nil
}
