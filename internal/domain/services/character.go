package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/ersonp/sheetkeeper/internal/domain/entities"
	"github.com/ersonp/sheetkeeper/internal/domain/ports"
)

// Adjustment is the outcome of a numeric attribute change.
type Adjustment struct {
	Old int `json:"old"`
	New int `json:"new"`
}

// CharacterService manages character sheets and their attributes.
type CharacterService struct {
	relationalDB ports.RelationalDB
	locks        *CharacterLocks
	logger       *slog.Logger
}

// NewCharacterService creates a new CharacterService.
// Services that mutate the same characters must share locks.
func NewCharacterService(relationalDB ports.RelationalDB, locks *CharacterLocks, logger *slog.Logger) *CharacterService {
	return &CharacterService{
		relationalDB: relationalDB,
		locks:        orNewLocks(locks),
		logger:       orDiscard(logger),
	}
}

// Resolve returns the ID of the character named by identity.
func (s *CharacterService) Resolve(ctx context.Context, identity entities.Identity) (int64, error) {
	c, err := s.relationalDB.FindCharacter(ctx, identity)
	if err != nil {
		return 0, fmt.Errorf("finding character: %w", err)
	}
	if c == nil {
		return 0, entities.ErrCharacterNotFound
	}
	return c.ID, nil
}

// Create creates a character with its initial attributes.
// Attributes not supplied are simply absent from the sheet.
func (s *CharacterService) Create(ctx context.Context, identity entities.Identity, attrs []entities.Attribute) (*entities.Character, error) {
	if strings.TrimSpace(identity.Name) == "" {
		return nil, errors.New("character name is required")
	}

	c := &entities.Character{
		OwnerID:  identity.OwnerID,
		System:   identity.System,
		Campaign: identity.Campaign,
		Name:     identity.Name,
	}
	if err := s.relationalDB.CreateCharacter(ctx, c, attrs); err != nil {
		return nil, fmt.Errorf("creating character: %w", err)
	}

	s.logger.Debug("character created", "id", c.ID, "name", c.Name, "system", c.System, "campaign", c.Campaign)
	s.audit(ctx, c.ID, entities.ActionCreate, map[string]any{"attributes": len(entities.NormalizeAttributes(attrs))})
	return c, nil
}

// GetSheet returns a character with all of its attributes.
func (s *CharacterService) GetSheet(ctx context.Context, id int64) (*entities.Sheet, error) {
	c, err := s.relationalDB.FindCharacterByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding character: %w", err)
	}
	if c == nil {
		return nil, entities.ErrCharacterNotFound
	}

	attrs, err := s.relationalDB.ListAttributes(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("listing attributes: %w", err)
	}

	return &entities.Sheet{Character: *c, Attributes: attrs}, nil
}

// SetAttribute overwrites an existing attribute. It reports false, with no
// error, when the character has no attribute by that name.
func (s *CharacterService) SetAttribute(ctx context.Context, id int64, name, value string) (bool, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	updated, err := s.relationalDB.UpdateAttribute(ctx, id, name, value)
	if err != nil {
		return false, fmt.Errorf("updating attribute: %w", err)
	}
	if updated {
		s.logger.Debug("attribute set", "id", id, "attribute", entities.NormalizeName(name))
		s.audit(ctx, id, entities.ActionSetAttribute, map[string]any{
			"attribute": entities.NormalizeName(name),
			"value":     value,
		})
	}
	return updated, nil
}

// AdjustNumericAttribute adds delta to an integer attribute.
// The stored value is left untouched when it is not an integer or the
// result would overflow.
func (s *CharacterService) AdjustNumericAttribute(ctx context.Context, id int64, name string, delta int) (Adjustment, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	attr, err := s.relationalDB.FindAttribute(ctx, id, name)
	if err != nil {
		return Adjustment{}, fmt.Errorf("finding attribute: %w", err)
	}
	if attr == nil {
		return Adjustment{}, fmt.Errorf("%w: %s", entities.ErrAttributeNotFound, entities.NormalizeName(name))
	}

	old, err := strconv.Atoi(strings.TrimSpace(attr.Value))
	if err != nil {
		return Adjustment{}, fmt.Errorf("%w: %s=%q", entities.ErrNotNumeric, attr.Name, attr.Value)
	}

	if (delta > 0 && old > math.MaxInt-delta) || (delta < 0 && old < math.MinInt-delta) {
		return Adjustment{}, fmt.Errorf("%w: %s %d%+d", entities.ErrValueOutOfRange, attr.Name, old, delta)
	}

	adj := Adjustment{Old: old, New: old + delta}
	updated, err := s.relationalDB.UpdateAttribute(ctx, id, attr.Name, strconv.Itoa(adj.New))
	if err != nil {
		return Adjustment{}, fmt.Errorf("updating attribute: %w", err)
	}
	if !updated {
		return Adjustment{}, fmt.Errorf("%w: %s", entities.ErrAttributeNotFound, attr.Name)
	}

	s.logger.Debug("attribute adjusted", "id", id, "attribute", attr.Name, "old", adj.Old, "new", adj.New)
	s.audit(ctx, id, entities.ActionAdjust, map[string]any{
		"attribute": attr.Name,
		"old":       adj.Old,
		"new":       adj.New,
	})
	return adj, nil
}

// List returns an owner's characters in a system, ordered by campaign and name.
func (s *CharacterService) List(ctx context.Context, ownerID, system string) ([]entities.Character, error) {
	characters, err := s.relationalDB.ListCharacters(ctx, ownerID, system)
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	return characters, nil
}

// Delete removes a character together with its attributes, inventory,
// effects and history.
func (s *CharacterService) Delete(ctx context.Context, id int64) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	if err := s.relationalDB.DeleteCharacter(ctx, id); err != nil {
		return fmt.Errorf("deleting character: %w", err)
	}
	s.logger.Debug("character deleted", "id", id)
	return nil
}

// History returns a character's audit trail, newest first.
// A limit of zero returns everything.
func (s *CharacterService) History(ctx context.Context, id int64, limit int) ([]entities.AuditEntry, error) {
	entries, err := s.relationalDB.FindAuditLog(ctx, id, limit)
	if err != nil {
		return nil, fmt.Errorf("finding audit log: %w", err)
	}
	return entries, nil
}

func (s *CharacterService) audit(ctx context.Context, id int64, action string, details map[string]any) {
	recordAudit(ctx, s.relationalDB, s.logger, id, action, details)
}

// recordAudit appends to the audit log. The mutation it describes has
// already been committed, so a failure here is logged and not returned.
func recordAudit(ctx context.Context, db ports.RelationalDB, logger *slog.Logger, id int64, action string, details map[string]any) {
	if err := db.LogAction(ctx, id, action, details); err != nil {
		logger.Warn("recording audit entry failed", "id", id, "action", action, "error", err)
	}
}

// requireCharacter returns ErrCharacterNotFound when id does not exist.
func requireCharacter(ctx context.Context, db ports.RelationalDB, id int64) error {
	c, err := db.FindCharacterByID(ctx, id)
	if err != nil {
		return fmt.Errorf("finding character: %w", err)
	}
	if c == nil {
		return entities.ErrCharacterNotFound
	}
	return nil
}

func orNewLocks(locks *CharacterLocks) *CharacterLocks {
	if locks == nil {
		return NewCharacterLocks()
	}
	return locks
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}
