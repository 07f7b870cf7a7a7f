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

// EffectService tracks timed status effects on characters.
// Effects stack: applying the same name twice gives two independent instances.
type EffectService struct {
	relationalDB ports.RelationalDB
	locks        *CharacterLocks
	logger       *slog.Logger
}

// NewEffectService creates a new EffectService.
func NewEffectService(relationalDB ports.RelationalDB, locks *CharacterLocks, logger *slog.Logger) *EffectService {
	return &EffectService{
		relationalDB: relationalDB,
		locks:        orNewLocks(locks),
		logger:       orDiscard(logger),
	}
}

// Apply adds a new effect instance lasting duration turns.
func (s *EffectService) Apply(ctx context.Context, id int64, name string, duration int, casterID string) (*entities.StatusEffect, error) {
	if duration < 1 {
		return nil, entities.ErrInvalidDuration
	}
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("effect name is required")
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	if err := requireCharacter(ctx, s.relationalDB, id); err != nil {
		return nil, err
	}

	effect := &entities.StatusEffect{
		CharacterID: id,
		Name:        name,
		Duration:    duration,
		CasterID:    casterID,
	}
	if err := s.relationalDB.SaveEffect(ctx, effect); err != nil {
		return nil, fmt.Errorf("saving effect: %w", err)
	}

	s.logger.Debug("effect applied", "id", id, "effect", effect.Name, "duration", duration)
	recordAudit(ctx, s.relationalDB, s.logger, id, entities.ActionApplyEffect, map[string]any{
		"effect":   effect.Name,
		"duration": duration,
	})
	return effect, nil
}

// List returns a character's active effects in the order they were applied.
func (s *EffectService) List(ctx context.Context, id int64) ([]entities.StatusEffect, error) {
	effects, err := s.relationalDB.ListEffects(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("listing effects: %w", err)
	}
	return effects, nil
}

// AdvanceTurn ticks every effect on a character down by one turn and returns
// the names of those that expired, in application order.
func (s *EffectService) AdvanceTurn(ctx context.Context, id int64) ([]string, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	expired, err := s.relationalDB.AdvanceEffects(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("advancing effects: %w", err)
	}

	if len(expired) > 0 {
		s.logger.Debug("effects expired", "id", id, "effects", expired)
		recordAudit(ctx, s.relationalDB, s.logger, id, entities.ActionExpire, map[string]any{
			"effects": expired,
		})
	}
	return expired, nil
}

// Remove dispels every instance of an effect and returns how many were removed.
func (s *EffectService) Remove(ctx context.Context, id int64, name string) (int, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	removed, err := s.relationalDB.DeleteEffects(ctx, id, name)
	if err != nil {
		return 0, fmt.Errorf("removing effect: %w", err)
	}

	if removed > 0 {
		s.logger.Debug("effect dispelled", "id", id, "effect", entities.NormalizeName(name), "removed", removed)
		recordAudit(ctx, s.relationalDB, s.logger, id, entities.ActionDispel, map[string]any{
			"effect":  entities.NormalizeName(name),
			"removed": removed,
		})
	}
	return removed, nil
}
