package handlers

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/sheetkeeper/internal/domain/dice"
)

func TestDiceHandler_Handle(t *testing.T) {
	handler := NewDiceHandler(dice.NewRoller(rand.New(rand.NewSource(1))))

	results, err := handler.Handle("2d6+3", "d20")
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Len(t, results[0].Rolls, 2)
	assert.Equal(t, results[0].Rolls[0]+results[0].Rolls[1]+3, results[0].Total)
	assert.Equal(t, "1d20", results[1].Notation)
}

func TestDiceHandler_Handle_Errors(t *testing.T) {
	handler := NewDiceHandler(dice.NewRoller(rand.New(rand.NewSource(1))))

	tests := []struct {
		name      string
		notations []string
		wantErr   error
	}{
		{name: "bad grammar", notations: []string{"d6", "2d6x"}, wantErr: dice.ErrInvalidNotation},
		{name: "zero dice", notations: []string{"0d6"}, wantErr: dice.ErrCountOutOfRange},
		{name: "huge die", notations: []string{"1d1001"}, wantErr: dice.ErrFacesOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := handler.Handle(tt.notations...)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, results)
		})
	}
}
