package services

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/ersonp/sheetkeeper/internal/domain/entities"
)

// Turn is the combatant whose turn it now is.
type Turn struct {
	Combatant entities.Combatant
	Index     int // Position in the current order
	Round     int // 1 on the first pass through the order
}

// Order is a snapshot of a session's initiative order.
type Order struct {
	Combatants []entities.Combatant
	Active     int // Index of the acting combatant, -1 when no one is acting
	Round      int
}

// InitiativeTracker keeps one combat order per session in memory.
// Sessions are independent: each has its own lock, and the registry lock is
// held only to look sessions up, never while a session is being mutated.
//
// Lifecycle per session: absent (Empty), present with Active == -1
// (Populated), present with a turn cursor (Active).
type InitiativeTracker struct {
	mu       sync.Mutex
	sessions map[string]*initiativeSession
	logger   *slog.Logger
}

type initiativeSession struct {
	mu         sync.Mutex
	combatants []entities.Combatant
	turn       int  // -1 before the first NextTurn
	pending    bool // combatant at turn was handed the turn and has not been announced
	round      int
	removed    bool // set once the session has left the registry
}

// NewInitiativeTracker creates an empty tracker.
func NewInitiativeTracker(logger *slog.Logger) *InitiativeTracker {
	return &InitiativeTracker{
		sessions: make(map[string]*initiativeSession),
		logger:   orDiscard(logger),
	}
}

// AddCombatant adds a combatant and re-sorts the order by initiative,
// highest first. Ties keep insertion order. If a turn is in progress the
// cursor stays on the combatant who was acting.
func (t *InitiativeTracker) AddCombatant(session, name string, initiative int, playerID string) (entities.Combatant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return entities.Combatant{}, errors.New("combatant name is required")
	}

	c := entities.Combatant{
		ID:         uuid.New().String(),
		Name:       name,
		Initiative: initiative,
		PlayerID:   strings.TrimSpace(playerID),
	}

	s := t.acquire(session, true)
	defer s.mu.Unlock()

	actingID := ""
	if s.turn >= 0 {
		actingID = s.combatants[s.turn].ID
	}

	s.combatants = append(s.combatants, c)
	sort.SliceStable(s.combatants, func(i, j int) bool {
		return s.combatants[i].Initiative > s.combatants[j].Initiative
	})

	if actingID != "" {
		s.turn = indexOfID(s.combatants, actingID)
	}

	t.logger.Debug("combatant added", "session", session, "combatant", c.Name, "initiative", initiative)
	return c, nil
}

// NextTurn advances the cursor, wrapping to the top of the order and
// starting a new round after the last combatant. A turn handed over by
// RemoveCombatant is announced first without advancing.
func (t *InitiativeTracker) NextTurn(session string) (Turn, error) {
	s := t.acquire(session, false)
	if s == nil {
		return Turn{}, entities.ErrEmptyTracker
	}
	defer s.mu.Unlock()

	n := len(s.combatants)
	if n == 0 {
		return Turn{}, entities.ErrEmptyTracker
	}

	switch {
	case s.pending:
		s.pending = false
	case s.turn < 0:
		s.turn = 0
		if s.round == 0 {
			s.round = 1
		}
	default:
		s.turn = (s.turn + 1) % n
		if s.turn == 0 {
			s.round++
		}
	}

	return Turn{
		Combatant: s.combatants[s.turn],
		Index:     s.turn,
		Round:     s.round,
	}, nil
}

// View returns a copy of the session's order.
func (t *InitiativeTracker) View(session string) (Order, error) {
	s := t.acquire(session, false)
	if s == nil {
		return Order{Active: -1}, entities.ErrEmptyTracker
	}
	defer s.mu.Unlock()

	return Order{
		Combatants: append([]entities.Combatant(nil), s.combatants...),
		Active:     s.turn,
		Round:      s.round,
	}, nil
}

// RemoveCombatant removes the first combatant matching name.
// Removing the acting combatant hands the next turn to whoever followed it.
// The session is dropped when its last combatant leaves.
func (t *InitiativeTracker) RemoveCombatant(session, name string) error {
	s := t.acquire(session, false)
	if s == nil {
		return fmt.Errorf("%w: %s", entities.ErrCombatantNotFound, name)
	}
	defer s.mu.Unlock()

	key := entities.NormalizeName(name)
	idx := -1
	for i, c := range s.combatants {
		if entities.NormalizeName(c.Name) == key {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", entities.ErrCombatantNotFound, name)
	}

	s.combatants = append(s.combatants[:idx], s.combatants[idx+1:]...)
	switch {
	case s.turn < 0:
	case idx < s.turn:
		s.turn--
	case idx == s.turn:
		// The follower slides into the acting slot; removing the last in
		// the order wraps to the top of the next round.
		if idx == len(s.combatants) {
			s.turn = 0
			s.round++
		}
		s.pending = true
	}

	if len(s.combatants) == 0 {
		t.drop(session, s)
	}

	t.logger.Debug("combatant removed", "session", session, "combatant", name)
	return nil
}

// Clear discards the session's order. It reports whether one existed.
func (t *InitiativeTracker) Clear(session string) bool {
	s := t.acquire(session, false)
	if s == nil {
		return false
	}
	defer s.mu.Unlock()

	t.drop(session, s)
	t.logger.Debug("initiative cleared", "session", session)
	return true
}

// acquire returns the session locked, creating it when create is set.
// It returns nil when the session is absent and create is false.
func (t *InitiativeTracker) acquire(session string, create bool) *initiativeSession {
	for {
		t.mu.Lock()
		s, ok := t.sessions[session]
		if !ok {
			if !create {
				t.mu.Unlock()
				return nil
			}
			s = &initiativeSession{turn: -1}
			t.sessions[session] = s
		}
		t.mu.Unlock()

		s.mu.Lock()
		if !s.removed {
			return s
		}
		// Dropped while we waited; look it up again.
		s.mu.Unlock()
	}
}

// drop removes a session from the registry. Caller must hold s.mu.
func (t *InitiativeTracker) drop(session string, s *initiativeSession) {
	s.removed = true
	t.mu.Lock()
	if t.sessions[session] == s {
		delete(t.sessions, session)
	}
	t.mu.Unlock()
}

func indexOfID(combatants []entities.Combatant, id string) int {
	for i, c := range combatants {
		if c.ID == id {
			return i
		}
	}
	return -1
}
