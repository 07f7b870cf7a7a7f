package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ersonp/sheetkeeper/internal/domain/entities"
)

// RelationalDB is an in-memory implementation of ports.RelationalDB.
// Setting Err makes every method fail with it.
type RelationalDB struct {
	mu sync.Mutex

	Characters map[int64]*entities.Character
	Attributes map[int64][]entities.Attribute
	Items      map[int64][]entities.InventoryItem
	Effects    map[int64][]entities.StatusEffect
	NPCs       map[string]*entities.NPC // key: owner + "\x00" + folded name
	Audit      []entities.AuditEntry

	nextID int64
	Err    error
}

// NewRelationalDB creates a new mock RelationalDB.
func NewRelationalDB() *RelationalDB {
	return &RelationalDB{
		Characters: make(map[int64]*entities.Character),
		Attributes: make(map[int64][]entities.Attribute),
		Items:      make(map[int64][]entities.InventoryItem),
		Effects:    make(map[int64][]entities.StatusEffect),
		NPCs:       make(map[string]*entities.NPC),
	}
}

func (m *RelationalDB) newID() int64 {
	m.nextID++
	return m.nextID
}

// EnsureSchema creates the database schema if it doesn't exist.
func (m *RelationalDB) EnsureSchema(_ context.Context) error {
	return m.Err
}

// Close closes the database connection.
func (m *RelationalDB) Close() error {
	return nil
}

// Character methods.

// CreateCharacter inserts a character and its attributes.
func (m *RelationalDB) CreateCharacter(_ context.Context, c *entities.Character, attrs []entities.Attribute) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}

	key := c.Identity().Normalized()
	if m.findLocked(key) != nil {
		return entities.ErrDuplicateCharacter
	}

	c.ID = m.newID()
	c.OwnerID = key.OwnerID
	c.System = key.System
	c.Campaign = key.Campaign
	c.Name = strings.TrimSpace(c.Name)
	c.NormalizedName = key.Name
	c.CreatedAt = time.Now()

	stored := *c
	m.Characters[c.ID] = &stored

	normalized := entities.NormalizeAttributes(attrs)
	for i := range normalized {
		normalized[i].CharacterID = c.ID
	}
	m.Attributes[c.ID] = normalized
	return nil
}

func (m *RelationalDB) findLocked(key entities.Identity) *entities.Character {
	for _, c := range m.Characters {
		if c.OwnerID == key.OwnerID && c.System == key.System &&
			c.Campaign == key.Campaign && c.NormalizedName == key.Name {
			return c
		}
	}
	return nil
}

// FindCharacter finds a character by identity.
func (m *RelationalDB) FindCharacter(_ context.Context, identity entities.Identity) (*entities.Character, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	c := m.findLocked(identity.Normalized())
	if c == nil {
		return nil, nil
	}
	found := *c
	return &found, nil
}

// FindCharacterByID finds a character by its ID.
func (m *RelationalDB) FindCharacterByID(_ context.Context, id int64) (*entities.Character, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	c, ok := m.Characters[id]
	if !ok {
		return nil, nil
	}
	found := *c
	return &found, nil
}

// ListCharacters lists an owner's characters in a system.
func (m *RelationalDB) ListCharacters(_ context.Context, ownerID, system string) ([]entities.Character, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	system = entities.NormalizeName(system)
	result := make([]entities.Character, 0)
	for _, c := range m.Characters {
		if c.OwnerID == entities.NormalizeName(ownerID) && c.System == system {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Campaign != result[j].Campaign {
			return result[i].Campaign < result[j].Campaign
		}
		return result[i].NormalizedName < result[j].NormalizedName
	})
	return result, nil
}

// DeleteCharacter deletes a character and its dependents.
func (m *RelationalDB) DeleteCharacter(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Characters[id]; !ok {
		return entities.ErrCharacterNotFound
	}
	delete(m.Characters, id)
	delete(m.Attributes, id)
	delete(m.Items, id)
	delete(m.Effects, id)

	kept := m.Audit[:0]
	for _, e := range m.Audit {
		if e.CharacterID != id {
			kept = append(kept, e)
		}
	}
	m.Audit = kept
	return nil
}

// Attribute methods.

// ListAttributes lists a character's attributes in insertion order.
func (m *RelationalDB) ListAttributes(_ context.Context, characterID int64) ([]entities.Attribute, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]entities.Attribute{}, m.Attributes[characterID]...), nil
}

// FindAttribute finds an attribute by folded name.
func (m *RelationalDB) FindAttribute(_ context.Context, characterID int64, name string) (*entities.Attribute, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	key := entities.NormalizeName(name)
	for _, a := range m.Attributes[characterID] {
		if a.Name == key {
			found := a
			return &found, nil
		}
	}
	return nil, nil
}

// UpdateAttribute sets an existing attribute's value.
func (m *RelationalDB) UpdateAttribute(_ context.Context, characterID int64, name, value string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	key := entities.NormalizeName(name)
	attrs := m.Attributes[characterID]
	for i := range attrs {
		if attrs[i].Name == key {
			attrs[i].Value = value
			return true, nil
		}
	}
	return false, nil
}

// Economy & inventory methods.

// AdjustMoney adds amount to the balance and returns the new balance.
func (m *RelationalDB) AdjustMoney(_ context.Context, characterID int64, amount float64) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	c, ok := m.Characters[characterID]
	if !ok {
		return 0, entities.ErrCharacterNotFound
	}
	c.Money += amount
	return c.Money, nil
}

// FindItem finds an inventory stack by folded name.
func (m *RelationalDB) FindItem(_ context.Context, characterID int64, name string) (*entities.InventoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	key := entities.NormalizeName(name)
	for _, item := range m.Items[characterID] {
		if item.Name == key {
			found := item
			return &found, nil
		}
	}
	return nil, nil
}

// SaveItem inserts a new inventory stack.
func (m *RelationalDB) SaveItem(_ context.Context, item *entities.InventoryItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	stored := *item
	stored.Name = entities.NormalizeName(item.Name)
	m.Items[item.CharacterID] = append(m.Items[item.CharacterID], stored)
	return nil
}

// UpdateItemQuantity sets the quantity of an existing stack.
func (m *RelationalDB) UpdateItemQuantity(_ context.Context, characterID int64, name string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	key := entities.NormalizeName(name)
	items := m.Items[characterID]
	for i := range items {
		if items[i].Name == key {
			items[i].Quantity = quantity
			return nil
		}
	}
	return entities.ErrItemNotFound
}

// DeleteItem removes an inventory stack.
func (m *RelationalDB) DeleteItem(_ context.Context, characterID int64, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	key := entities.NormalizeName(name)
	items := m.Items[characterID]
	for i := range items {
		if items[i].Name == key {
			m.Items[characterID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return entities.ErrItemNotFound
}

// ListItems lists a character's inventory ordered by item name.
func (m *RelationalDB) ListItems(_ context.Context, characterID int64) ([]entities.InventoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	result := append([]entities.InventoryItem{}, m.Items[characterID]...)
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// Status effect methods.

// SaveEffect inserts a new effect instance.
func (m *RelationalDB) SaveEffect(_ context.Context, effect *entities.StatusEffect) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	effect.ID = m.newID()
	effect.Name = strings.TrimSpace(effect.Name)
	effect.NormalizedName = entities.NormalizeName(effect.Name)
	if effect.CreatedAt.IsZero() {
		effect.CreatedAt = time.Now()
	}
	m.Effects[effect.CharacterID] = append(m.Effects[effect.CharacterID], *effect)
	return nil
}

// ListEffects lists a character's effects in application order.
func (m *RelationalDB) ListEffects(_ context.Context, characterID int64) ([]entities.StatusEffect, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]entities.StatusEffect{}, m.Effects[characterID]...), nil
}

// AdvanceEffects decrements effects and removes the expired ones.
func (m *RelationalDB) AdvanceEffects(_ context.Context, characterID int64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	expired := make([]string, 0)
	kept := make([]entities.StatusEffect, 0, len(m.Effects[characterID]))
	for _, e := range m.Effects[characterID] {
		e.Duration--
		if e.Duration <= 0 {
			expired = append(expired, e.Name)
			continue
		}
		kept = append(kept, e)
	}
	m.Effects[characterID] = kept
	return expired, nil
}

// DeleteEffects deletes every instance of an effect by folded name.
func (m *RelationalDB) DeleteEffects(_ context.Context, characterID int64, name string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	key := entities.NormalizeName(name)
	kept := make([]entities.StatusEffect, 0, len(m.Effects[characterID]))
	removed := 0
	for _, e := range m.Effects[characterID] {
		if e.NormalizedName == key {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	m.Effects[characterID] = kept
	return removed, nil
}

// NPC methods.

func npcKey(ownerID, name string) string {
	return entities.NormalizeName(ownerID) + "\x00" + entities.NormalizeName(name)
}

// SaveNPC inserts or replaces an NPC.
func (m *RelationalDB) SaveNPC(_ context.Context, npc *entities.NPC) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	key := npcKey(npc.OwnerID, npc.Name)
	now := time.Now()
	if existing, ok := m.NPCs[key]; ok {
		npc.ID = existing.ID
		npc.CreatedAt = existing.CreatedAt
	} else {
		npc.ID = m.newID()
		npc.CreatedAt = now
	}
	npc.OwnerID = entities.NormalizeName(npc.OwnerID)
	npc.Name = strings.TrimSpace(npc.Name)
	npc.NormalizedName = entities.NormalizeName(npc.Name)
	npc.UpdatedAt = now
	if npc.Stats == nil {
		npc.Stats = map[string]any{}
	}
	stored := *npc
	m.NPCs[key] = &stored
	return nil
}

// FindNPC finds an NPC by owner and name.
func (m *RelationalDB) FindNPC(_ context.Context, ownerID, name string) (*entities.NPC, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	npc, ok := m.NPCs[npcKey(ownerID, name)]
	if !ok {
		return nil, nil
	}
	found := *npc
	return &found, nil
}

// ListNPCs lists an owner's NPCs ordered by name.
func (m *RelationalDB) ListNPCs(_ context.Context, ownerID string) ([]entities.NPC, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	result := make([]entities.NPC, 0)
	for _, npc := range m.NPCs {
		if npc.OwnerID == entities.NormalizeName(ownerID) {
			result = append(result, *npc)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].NormalizedName < result[j].NormalizedName
	})
	return result, nil
}

// DeleteNPC deletes an NPC.
func (m *RelationalDB) DeleteNPC(_ context.Context, ownerID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	key := npcKey(ownerID, name)
	if _, ok := m.NPCs[key]; !ok {
		return entities.ErrNPCNotFound
	}
	delete(m.NPCs, key)
	return nil
}

// Audit log methods.

// LogAction logs an action to a character's audit log.
func (m *RelationalDB) LogAction(_ context.Context, characterID int64, action string, details map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Audit = append(m.Audit, entities.AuditEntry{
		ID:          m.newID(),
		CharacterID: characterID,
		Action:      action,
		Details:     details,
		CreatedAt:   time.Now(),
	})
	return nil
}

// FindAuditLog finds audit log entries for a character, newest first.
func (m *RelationalDB) FindAuditLog(_ context.Context, characterID int64, limit int) ([]entities.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	result := make([]entities.AuditEntry, 0)
	for i := len(m.Audit) - 1; i >= 0; i-- {
		if m.Audit[i].CharacterID != characterID {
			continue
		}
		result = append(result, m.Audit[i])
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

// Actions returns the audit actions recorded for a character, oldest first.
func (m *RelationalDB) Actions(characterID int64) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	actions := make([]string, 0)
	for _, e := range m.Audit {
		if e.CharacterID == characterID {
			actions = append(actions, e.Action)
		}
	}
	return actions
}
