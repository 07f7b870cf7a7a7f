package handlers

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/sheetkeeper/internal/domain/dice"
	"github.com/ersonp/sheetkeeper/internal/domain/entities"
	"github.com/ersonp/sheetkeeper/internal/domain/services"
)

func newTestInitiativeHandler() *InitiativeHandler {
	return NewInitiativeHandler(services.NewInitiativeTracker(nil), dice.NewRoller(rand.New(rand.NewSource(7))))
}

func TestInitiativeHandler_Flow(t *testing.T) {
	handler := newTestInitiativeHandler()

	for _, c := range []struct {
		name  string
		value int
	}{
		{"Aria", 10}, {"Bram", 20}, {"Goblin", 5},
	} {
		_, err := handler.HandleAdd("g1", c.name, c.value, "")
		require.NoError(t, err)
	}

	var acted []string
	for i := 0; i < 4; i++ {
		turn, err := handler.HandleNext("g1")
		require.NoError(t, err)
		acted = append(acted, turn.Combatant.Name)
	}
	assert.Equal(t, []string{"Bram", "Aria", "Goblin", "Bram"}, acted)

	require.NoError(t, handler.HandleRemove("g1", "goblin"))

	order, err := handler.HandleView("g1")
	require.NoError(t, err)
	assert.Len(t, order.Combatants, 2)
	assert.Equal(t, "Bram", order.Combatants[order.Active].Name)

	assert.True(t, handler.HandleClear("g1"))
	assert.False(t, handler.HandleClear("g1"))

	_, err = handler.HandleNext("g1")
	require.ErrorIs(t, err, entities.ErrEmptyTracker)
}

func TestInitiativeHandler_HandleRoll(t *testing.T) {
	handler := newTestInitiativeHandler()

	c, result, err := handler.HandleRoll("g1", "Aria", 3, "u1")
	require.NoError(t, err)

	require.Len(t, result.Rolls, 1)
	assert.GreaterOrEqual(t, result.Rolls[0], 1)
	assert.LessOrEqual(t, result.Rolls[0], InitiativeDie)
	assert.Equal(t, result.Rolls[0]+3, result.Total)
	assert.Equal(t, result.Total, c.Initiative)
	assert.Equal(t, "u1", c.PlayerID)

	_, _, err = handler.HandleRoll("g1", " ", 0, "")
	require.Error(t, err)
}
