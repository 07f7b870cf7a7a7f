// Package handlers contains application use case handlers.
//
// Handlers are keyed by the identity tuple a user types, resolve it to a
// character ID and then call the domain services.
package handlers

import (
	"context"
	"fmt"

	"github.com/ersonp/sheetkeeper/internal/domain/entities"
	"github.com/ersonp/sheetkeeper/internal/domain/services"
)

// DefaultHistoryLimit caps history output when no limit is given.
const DefaultHistoryLimit = 20

// CharacterHandler handles character sheet use cases.
type CharacterHandler struct {
	characters *services.CharacterService
}

// NewCharacterHandler creates a new character handler.
func NewCharacterHandler(characters *services.CharacterService) *CharacterHandler {
	return &CharacterHandler{
		characters: characters,
	}
}

// HandleCreate creates a character with the given starting attributes.
func (h *CharacterHandler) HandleCreate(ctx context.Context, identity entities.Identity, attrs []entities.Attribute) (*entities.Character, error) {
	return h.characters.Create(ctx, identity, attrs)
}

// HandleView returns the full sheet for a character.
func (h *CharacterHandler) HandleView(ctx context.Context, identity entities.Identity) (*entities.Sheet, error) {
	id, err := h.characters.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}
	return h.characters.GetSheet(ctx, id)
}

// HandleEdit replaces an attribute value. Unknown attributes are reported
// as entities.ErrAttributeNotFound.
func (h *CharacterHandler) HandleEdit(ctx context.Context, identity entities.Identity, name, value string) error {
	id, err := h.characters.Resolve(ctx, identity)
	if err != nil {
		return err
	}

	updated, err := h.characters.SetAttribute(ctx, id, name, value)
	if err != nil {
		return err
	}
	if !updated {
		return fmt.Errorf("%w: %s", entities.ErrAttributeNotFound, name)
	}
	return nil
}

// HandleModify applies a signed delta to a numeric attribute.
func (h *CharacterHandler) HandleModify(ctx context.Context, identity entities.Identity, name string, delta int) (services.Adjustment, error) {
	id, err := h.characters.Resolve(ctx, identity)
	if err != nil {
		return services.Adjustment{}, err
	}
	return h.characters.AdjustNumericAttribute(ctx, id, name, delta)
}

// HandleList lists an owner's characters in a system.
func (h *CharacterHandler) HandleList(ctx context.Context, ownerID, system string) ([]entities.Character, error) {
	return h.characters.List(ctx, ownerID, system)
}

// HandleDelete deletes a character and everything attached to it.
func (h *CharacterHandler) HandleDelete(ctx context.Context, identity entities.Identity) error {
	id, err := h.characters.Resolve(ctx, identity)
	if err != nil {
		return err
	}
	return h.characters.Delete(ctx, id)
}

// HandleHistory returns a character's most recent audit entries.
// A non-positive limit falls back to DefaultHistoryLimit.
func (h *CharacterHandler) HandleHistory(ctx context.Context, identity entities.Identity, limit int) ([]entities.AuditEntry, error) {
	id, err := h.characters.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return h.characters.History(ctx, id, limit)
}
