package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/sheetkeeper/internal/domain/entities"
	"github.com/ersonp/sheetkeeper/internal/domain/mocks"
)

func TestNPCService_SaveGetList(t *testing.T) {
	svc := NewNPCService(mocks.NewRelationalDB(), nil, nil)
	ctx := context.Background()

	_, err := svc.Save(ctx, "u1", "Goblin", map[string]any{"pv": 7})
	require.NoError(t, err)
	_, err = svc.Save(ctx, "u1", "Aranha Gigante", map[string]any{"pv": 20})
	require.NoError(t, err)

	npc, err := svc.Get(ctx, "u1", "GOBLIN")
	require.NoError(t, err)
	assert.Equal(t, "Goblin", npc.Name)
	assert.Equal(t, 7, npc.Stats["pv"])

	list, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Aranha Gigante", list[0].Name)

	others, err := svc.List(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestNPCService_SaveReplaces(t *testing.T) {
	svc := NewNPCService(mocks.NewRelationalDB(), nil, nil)
	ctx := context.Background()

	first, err := svc.Save(ctx, "u1", "Goblin", map[string]any{"pv": 7})
	require.NoError(t, err)
	second, err := svc.Save(ctx, "u1", "goblin", map[string]any{"pv": 9})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	npc, err := svc.Get(ctx, "u1", "Goblin")
	require.NoError(t, err)
	assert.Equal(t, 9, npc.Stats["pv"])
}

func TestNPCService_NotFound(t *testing.T) {
	svc := NewNPCService(mocks.NewRelationalDB(), nil, nil)
	ctx := context.Background()

	_, err := svc.Get(ctx, "u1", "Ghost")
	require.ErrorIs(t, err, entities.ErrNPCNotFound)

	err = svc.Delete(ctx, "u1", "Ghost")
	require.ErrorIs(t, err, entities.ErrNPCNotFound)

	_, err = svc.Save(ctx, "u1", " ", nil)
	require.Error(t, err)
}

func TestNPCService_Generate(t *testing.T) {
	t.Run("saves generated stats", func(t *testing.T) {
		gen := &mocks.NPCGenerator{Stats: map[string]any{"pv": 45, "ca": 17}}
		svc := NewNPCService(mocks.NewRelationalDB(), gen, nil)

		npc, err := svc.Generate(context.Background(), "u1", " Capitão Orc ", "líder brutal de um bando")
		require.NoError(t, err)
		assert.Equal(t, "Capitão Orc", npc.Name)
		assert.Equal(t, 45, npc.Stats["pv"])
		assert.Equal(t, "Capitão Orc", gen.LastName)
		assert.Equal(t, "líder brutal de um bando", gen.LastPrompt)

		stored, err := svc.Get(context.Background(), "u1", "capitão orc")
		require.NoError(t, err)
		assert.Equal(t, npc.ID, stored.ID)
	})

	t.Run("generator error", func(t *testing.T) {
		gen := &mocks.NPCGenerator{GenerateErr: errors.New("rate limited")}
		db := mocks.NewRelationalDB()
		svc := NewNPCService(db, gen, nil)

		_, err := svc.Generate(context.Background(), "u1", "Orc", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate limited")
		assert.Empty(t, db.NPCs)
	})

	t.Run("empty stats", func(t *testing.T) {
		svc := NewNPCService(mocks.NewRelationalDB(), &mocks.NPCGenerator{}, nil)

		_, err := svc.Generate(context.Background(), "u1", "Orc", "")
		require.Error(t, err)
	})

	t.Run("no generator", func(t *testing.T) {
		svc := NewNPCService(mocks.NewRelationalDB(), nil, nil)

		_, err := svc.Generate(context.Background(), "u1", "Orc", "")
		require.ErrorIs(t, err, ErrGeneratorUnavailable)
	})
}
