package handlers

import (
	"github.com/ersonp/sheetkeeper/internal/domain/dice"
)

// DiceHandler handles dice rolls.
type DiceHandler struct {
	roller *dice.Roller
}

// NewDiceHandler creates a new dice handler.
func NewDiceHandler(roller *dice.Roller) *DiceHandler {
	return &DiceHandler{
		roller: roller,
	}
}

// Handle rolls each notation in order. Nothing is rolled if any notation
// is invalid.
func (h *DiceHandler) Handle(notations ...string) ([]dice.Result, error) {
	specs := make([]dice.Spec, 0, len(notations))
	for _, n := range notations {
		spec, err := dice.Parse(n)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}

	results := make([]dice.Result, len(specs))
	for i, spec := range specs {
		results[i] = h.roller.RollSpec(spec)
	}
	return results, nil
}
