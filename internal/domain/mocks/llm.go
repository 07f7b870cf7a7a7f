// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"
)

// NPCGenerator is a mock implementation of ports.NPCGenerator.
type NPCGenerator struct {
	// GenerateStats return values
	Stats       map[string]any
	GenerateErr error

	// Recorded arguments of the last call
	LastName   string
	LastPrompt string
	Calls      int
}

// GenerateStats returns the configured stats or error.
func (m *NPCGenerator) GenerateStats(_ context.Context, name, prompt string) (map[string]any, error) {
	m.Calls++
	m.LastName = name
	m.LastPrompt = prompt
	if m.GenerateErr != nil {
		return nil, m.GenerateErr
	}
	return m.Stats, nil
}
