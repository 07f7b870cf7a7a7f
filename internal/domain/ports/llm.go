// Package ports defines interfaces for external service communication.
package ports

import "context"

// NPCGenerator defines the interface for generating NPC stat blocks.
type NPCGenerator interface {
	// GenerateStats returns a stat map for an NPC described by prompt.
	GenerateStats(ctx context.Context, name, prompt string) (map[string]any, error)
}
