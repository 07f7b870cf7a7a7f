package handlers

import (
	"context"

	"github.com/ersonp/sheetkeeper/internal/domain/entities"
	"github.com/ersonp/sheetkeeper/internal/domain/services"
)

// EffectHandler handles status effect use cases.
type EffectHandler struct {
	characters *services.CharacterService
	effects    *services.EffectService
}

// NewEffectHandler creates a new effect handler.
func NewEffectHandler(characters *services.CharacterService, effects *services.EffectService) *EffectHandler {
	return &EffectHandler{
		characters: characters,
		effects:    effects,
	}
}

// TickResult reports the effects that ran out on one character.
type TickResult struct {
	Identity entities.Identity
	Expired  []string
}

// HandleApply applies a new effect instance lasting duration turns.
func (h *EffectHandler) HandleApply(ctx context.Context, identity entities.Identity, name string, duration int, casterID string) (*entities.StatusEffect, error) {
	id, err := h.characters.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}
	return h.effects.Apply(ctx, id, name, duration, casterID)
}

// HandleList returns the active effects on a character.
func (h *EffectHandler) HandleList(ctx context.Context, identity entities.Identity) ([]entities.StatusEffect, error) {
	id, err := h.characters.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}
	return h.effects.List(ctx, id)
}

// HandleTick advances one turn for each character and reports what expired.
// It stops at the first character that cannot be resolved or advanced.
func (h *EffectHandler) HandleTick(ctx context.Context, identities ...entities.Identity) ([]TickResult, error) {
	results := make([]TickResult, 0, len(identities))
	for _, identity := range identities {
		id, err := h.characters.Resolve(ctx, identity)
		if err != nil {
			return results, err
		}

		expired, err := h.effects.AdvanceTurn(ctx, id)
		if err != nil {
			return results, err
		}
		results = append(results, TickResult{Identity: identity, Expired: expired})
	}
	return results, nil
}

// HandleDispel removes every stack of the named effect.
func (h *EffectHandler) HandleDispel(ctx context.Context, identity entities.Identity, name string) (int, error) {
	id, err := h.characters.Resolve(ctx, identity)
	if err != nil {
		return 0, err
	}
	return h.effects.Remove(ctx, id, name)
}
