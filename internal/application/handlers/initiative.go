package handlers

import (
	"github.com/ersonp/sheetkeeper/internal/domain/dice"
	"github.com/ersonp/sheetkeeper/internal/domain/entities"
	"github.com/ersonp/sheetkeeper/internal/domain/services"
)

// InitiativeDie is rolled when a combatant joins with a modifier instead of
// a fixed initiative value.
const InitiativeDie = 20

// InitiativeHandler handles combat order use cases for one process.
type InitiativeHandler struct {
	tracker *services.InitiativeTracker
	roller  *dice.Roller
}

// NewInitiativeHandler creates a new initiative handler.
func NewInitiativeHandler(tracker *services.InitiativeTracker, roller *dice.Roller) *InitiativeHandler {
	return &InitiativeHandler{
		tracker: tracker,
		roller:  roller,
	}
}

// HandleAdd adds a combatant with a fixed initiative value.
func (h *InitiativeHandler) HandleAdd(session, name string, initiative int, playerID string) (entities.Combatant, error) {
	return h.tracker.AddCombatant(session, name, initiative, playerID)
}

// HandleRoll rolls 1d20 plus modifier and adds the combatant with the total.
func (h *InitiativeHandler) HandleRoll(session, name string, modifier int, playerID string) (entities.Combatant, dice.Result, error) {
	result := h.roller.RollSpec(dice.Spec{Count: 1, Faces: InitiativeDie, Modifier: modifier})

	c, err := h.tracker.AddCombatant(session, name, result.Total, playerID)
	if err != nil {
		return entities.Combatant{}, dice.Result{}, err
	}
	return c, result, nil
}

// HandleNext advances the turn cursor.
func (h *InitiativeHandler) HandleNext(session string) (services.Turn, error) {
	return h.tracker.NextTurn(session)
}

// HandleView returns the current order.
func (h *InitiativeHandler) HandleView(session string) (services.Order, error) {
	return h.tracker.View(session)
}

// HandleRemove drops a combatant by name.
func (h *InitiativeHandler) HandleRemove(session, name string) error {
	return h.tracker.RemoveCombatant(session, name)
}

// HandleClear ends combat for the session. It reports whether there was
// anything to clear.
func (h *InitiativeHandler) HandleClear(session string) bool {
	return h.tracker.Clear(session)
}
