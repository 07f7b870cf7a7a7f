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

// ErrGeneratorUnavailable is returned by Generate when no generator is configured.
var ErrGeneratorUnavailable = errors.New("npc generation is not configured (set OPENAI_API_KEY)")

// NPCService manages an owner's non-player characters.
type NPCService struct {
	relationalDB ports.RelationalDB
	generator    ports.NPCGenerator
	logger       *slog.Logger
}

// NewNPCService creates a new NPCService. generator may be nil.
func NewNPCService(relationalDB ports.RelationalDB, generator ports.NPCGenerator, logger *slog.Logger) *NPCService {
	return &NPCService{
		relationalDB: relationalDB,
		generator:    generator,
		logger:       orDiscard(logger),
	}
}

// Save stores an NPC, replacing any NPC of the same owner and name.
func (s *NPCService) Save(ctx context.Context, ownerID, name string, stats map[string]any) (*entities.NPC, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("npc name is required")
	}

	npc := &entities.NPC{
		OwnerID: ownerID,
		Name:    name,
		Stats:   stats,
	}
	if err := s.relationalDB.SaveNPC(ctx, npc); err != nil {
		return nil, fmt.Errorf("saving npc: %w", err)
	}

	s.logger.Debug("npc saved", "owner", npc.OwnerID, "npc", npc.Name, "stats", len(npc.Stats))
	return npc, nil
}

// Get returns an NPC by owner and name.
func (s *NPCService) Get(ctx context.Context, ownerID, name string) (*entities.NPC, error) {
	npc, err := s.relationalDB.FindNPC(ctx, ownerID, name)
	if err != nil {
		return nil, fmt.Errorf("finding npc: %w", err)
	}
	if npc == nil {
		return nil, fmt.Errorf("%w: %s", entities.ErrNPCNotFound, strings.TrimSpace(name))
	}
	return npc, nil
}

// List returns an owner's NPCs ordered by name.
func (s *NPCService) List(ctx context.Context, ownerID string) ([]entities.NPC, error) {
	npcs, err := s.relationalDB.ListNPCs(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing npcs: %w", err)
	}
	return npcs, nil
}

// Delete removes an NPC.
func (s *NPCService) Delete(ctx context.Context, ownerID, name string) error {
	if err := s.relationalDB.DeleteNPC(ctx, ownerID, name); err != nil {
		return fmt.Errorf("deleting npc: %w", err)
	}
	s.logger.Debug("npc deleted", "owner", ownerID, "npc", name)
	return nil
}

// Generate asks the generator for a stat block and saves the result.
func (s *NPCService) Generate(ctx context.Context, ownerID, name, prompt string) (*entities.NPC, error) {
	if s.generator == nil {
		return nil, ErrGeneratorUnavailable
	}
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("npc name is required")
	}

	stats, err := s.generator.GenerateStats(ctx, strings.TrimSpace(name), prompt)
	if err != nil {
		return nil, fmt.Errorf("generating npc stats: %w", err)
	}
	if len(stats) == 0 {
		return nil, fmt.Errorf("generating npc stats: generator returned no stats for %s", name)
	}

	return s.Save(ctx, ownerID, name, stats)
}
