package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ersonp/sheetkeeper/internal/domain/entities"
	"github.com/ersonp/sheetkeeper/internal/domain/services"
)

// NPCHandler handles NPC use cases.
type NPCHandler struct {
	npcs *services.NPCService
}

// NewNPCHandler creates a new NPC handler.
func NewNPCHandler(npcs *services.NPCService) *NPCHandler {
	return &NPCHandler{
		npcs: npcs,
	}
}

// HandleSave stores an NPC from "key=value" stat pairs.
func (h *NPCHandler) HandleSave(ctx context.Context, ownerID, name string, pairs []string) (*entities.NPC, error) {
	stats, err := ParseStats(pairs)
	if err != nil {
		return nil, err
	}
	return h.npcs.Save(ctx, ownerID, name, stats)
}

// HandleView returns one NPC.
func (h *NPCHandler) HandleView(ctx context.Context, ownerID, name string) (*entities.NPC, error) {
	return h.npcs.Get(ctx, ownerID, name)
}

// HandleList returns all of an owner's NPCs.
func (h *NPCHandler) HandleList(ctx context.Context, ownerID string) ([]entities.NPC, error) {
	return h.npcs.List(ctx, ownerID)
}

// HandleDelete removes an NPC.
func (h *NPCHandler) HandleDelete(ctx context.Context, ownerID, name string) error {
	return h.npcs.Delete(ctx, ownerID, name)
}

// HandleGenerate asks the configured generator for a stat block and saves it.
func (h *NPCHandler) HandleGenerate(ctx context.Context, ownerID, name, prompt string) (*entities.NPC, error) {
	return h.npcs.Generate(ctx, ownerID, name, prompt)
}

// ParseStats turns "key=value" pairs into a stat map. Integer values are
// stored as ints, everything else as text. Later keys win.
func ParseStats(pairs []string) (map[string]any, error) {
	stats := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid stat %q (expected key=value)", pair)
		}

		value = strings.TrimSpace(value)
		if n, err := strconv.Atoi(value); err == nil {
			stats[key] = n
			continue
		}
		stats[key] = value
	}
	return stats, nil
}
