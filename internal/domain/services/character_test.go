package services

import (
	"context"
	"errors"
	"math"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/sheetkeeper/internal/domain/entities"
	"github.com/ersonp/sheetkeeper/internal/domain/mocks"
)

var ariaIdentity = entities.Identity{OwnerID: "u1", System: "Tormenta20", Campaign: "Camp1", Name: "Aria"}

// newTestCharacterService returns a service over a fresh mock database.
func newTestCharacterService() (*CharacterService, *mocks.RelationalDB) {
	db := mocks.NewRelationalDB()
	return NewCharacterService(db, NewCharacterLocks(), nil), db
}

// createAria creates the default test character and returns its ID.
func createAria(t *testing.T, svc *CharacterService, attrs ...entities.Attribute) int64 {
	t.Helper()
	c, err := svc.Create(context.Background(), ariaIdentity, attrs)
	require.NoError(t, err)
	return c.ID
}

func TestCharacterService_Create(t *testing.T) {
	svc, db := newTestCharacterService()
	ctx := context.Background()

	c, err := svc.Create(ctx, ariaIdentity, []entities.Attribute{
		{Name: "PV", Value: "30"},
		{Name: "Classe", Value: "Guerreira"},
	})
	require.NoError(t, err)

	assert.NotZero(t, c.ID)
	assert.Equal(t, "tormenta20", c.System)
	assert.Equal(t, "camp1", c.Campaign)
	assert.Equal(t, "Aria", c.Name)
	assert.Equal(t, []string{entities.ActionCreate}, db.Actions(c.ID))
}

func TestCharacterService_Create_Duplicate(t *testing.T) {
	svc, _ := newTestCharacterService()
	ctx := context.Background()
	createAria(t, svc)

	dup := ariaIdentity
	dup.Name = "ARIA"
	dup.System = "TORMENTA20"

	_, err := svc.Create(ctx, dup, nil)
	require.ErrorIs(t, err, entities.ErrDuplicateCharacter)
}

func TestCharacterService_Create_EmptyName(t *testing.T) {
	svc, _ := newTestCharacterService()

	identity := ariaIdentity
	identity.Name = "   "
	_, err := svc.Create(context.Background(), identity, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
}

func TestCharacterService_Create_Concurrent(t *testing.T) {
	svc, _ := newTestCharacterService()
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	created, duplicates := 0, 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(ctx, ariaIdentity, nil)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, entities.ErrDuplicateCharacter):
				duplicates++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, 9, duplicates)
}

func TestCharacterService_Resolve(t *testing.T) {
	svc, _ := newTestCharacterService()
	ctx := context.Background()
	id := createAria(t, svc)

	tests := []struct {
		name     string
		identity entities.Identity
		wantErr  error
	}{
		{name: "exact", identity: ariaIdentity},
		{name: "case-insensitive", identity: entities.Identity{OwnerID: "u1", System: "TORMENTA20", Campaign: "camp1", Name: "aria"}},
		{name: "surrounding whitespace", identity: entities.Identity{OwnerID: "u1", System: " tormenta20 ", Campaign: "camp1", Name: " Aria "}},
		{name: "other owner", identity: entities.Identity{OwnerID: "u2", System: "tormenta20", Campaign: "camp1", Name: "Aria"}, wantErr: entities.ErrCharacterNotFound},
		{name: "other campaign", identity: entities.Identity{OwnerID: "u1", System: "tormenta20", Campaign: "camp2", Name: "Aria"}, wantErr: entities.ErrCharacterNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Resolve(ctx, tt.identity)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, id, got)
		})
	}
}

func TestCharacterService_GetSheet(t *testing.T) {
	svc, _ := newTestCharacterService()
	ctx := context.Background()
	id := createAria(t, svc, entities.Attribute{Name: "PV", Value: "30"}, entities.Attribute{Name: "pv", Value: "31"})

	sheet, err := svc.GetSheet(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Aria", sheet.Character.Name)
	assert.Zero(t, sheet.Character.Money)
	require.Len(t, sheet.Attributes, 1)

	value, ok := sheet.Attribute("PV")
	assert.True(t, ok)
	assert.Equal(t, "31", value)

	_, ok = sheet.Attribute("Mana")
	assert.False(t, ok, "unsupplied template attributes are absent")

	_, err = svc.GetSheet(ctx, id+100)
	require.ErrorIs(t, err, entities.ErrCharacterNotFound)
}

func TestCharacterService_SetAttribute(t *testing.T) {
	svc, db := newTestCharacterService()
	ctx := context.Background()
	id := createAria(t, svc, entities.Attribute{Name: "Classe", Value: "Guerreira"})

	updated, err := svc.SetAttribute(ctx, id, "CLASSE", "Paladina")
	require.NoError(t, err)
	assert.True(t, updated)

	sheet, err := svc.GetSheet(ctx, id)
	require.NoError(t, err)
	value, _ := sheet.Attribute("classe")
	assert.Equal(t, "Paladina", value)

	updated, err = svc.SetAttribute(ctx, id, "Mana", "10")
	require.NoError(t, err)
	assert.False(t, updated, "unknown attribute is reported, not created")

	assert.Equal(t, []string{entities.ActionCreate, entities.ActionSetAttribute}, db.Actions(id))
}

func TestCharacterService_AdjustNumericAttribute(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		attr     string
		delta    int
		expected Adjustment
		stored   string
		wantErr  error
	}{
		{name: "reduce", value: "30", attr: "PV", delta: -15, expected: Adjustment{Old: 30, New: 15}, stored: "15"},
		{name: "increase", value: "30", attr: "pv", delta: 5, expected: Adjustment{Old: 30, New: 35}, stored: "35"},
		{name: "below zero allowed", value: "3", attr: "PV", delta: -10, expected: Adjustment{Old: 3, New: -7}, stored: "-7"},
		{name: "whitespace and sign", value: " +4 ", attr: "PV", delta: 1, expected: Adjustment{Old: 4, New: 5}, stored: "5"},
		{name: "not numeric", value: "Guerreiro", attr: "PV", delta: 1, wantErr: entities.ErrNotNumeric, stored: "Guerreiro"},
		{name: "decimal is not numeric", value: "1.5", attr: "PV", delta: 1, wantErr: entities.ErrNotNumeric, stored: "1.5"},
		{name: "missing attribute", value: "30", attr: "Mana", delta: 1, wantErr: entities.ErrAttributeNotFound, stored: "30"},
		{name: "overflow", value: strconv.Itoa(math.MaxInt), attr: "PV", delta: 1, wantErr: entities.ErrValueOutOfRange, stored: strconv.Itoa(math.MaxInt)},
		{name: "underflow", value: strconv.Itoa(math.MinInt + 2), attr: "PV", delta: -3, wantErr: entities.ErrValueOutOfRange, stored: strconv.Itoa(math.MinInt + 2)},
		{name: "up to the limit", value: strconv.Itoa(math.MaxInt - 1), attr: "PV", delta: 1, expected: Adjustment{Old: math.MaxInt - 1, New: math.MaxInt}, stored: strconv.Itoa(math.MaxInt)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestCharacterService()
			ctx := context.Background()
			id := createAria(t, svc, entities.Attribute{Name: "PV", Value: tt.value})

			adj, err := svc.AdjustNumericAttribute(ctx, id, tt.attr, tt.delta)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, adj)
			}

			sheet, err := svc.GetSheet(ctx, id)
			require.NoError(t, err)
			value, _ := sheet.Attribute("PV")
			assert.Equal(t, tt.stored, value)
		})
	}
}

func TestCharacterService_AdjustNumericAttribute_NoLostUpdates(t *testing.T) {
	svc, _ := newTestCharacterService()
	ctx := context.Background()
	id := createAria(t, svc, entities.Attribute{Name: "PV", Value: "0"})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AdjustNumericAttribute(ctx, id, "PV", 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	sheet, err := svc.GetSheet(ctx, id)
	require.NoError(t, err)
	value, _ := sheet.Attribute("PV")
	assert.Equal(t, "50", value)
}

func TestCharacterService_List(t *testing.T) {
	svc, _ := newTestCharacterService()
	ctx := context.Background()

	for _, identity := range []entities.Identity{
		{OwnerID: "u1", System: "tormenta20", Campaign: "beta", Name: "Zed"},
		{OwnerID: "u1", System: "tormenta20", Campaign: "alpha", Name: "Mira"},
		{OwnerID: "u1", System: "ordem paranormal", Campaign: "alpha", Name: "Dante"},
	} {
		_, err := svc.Create(ctx, identity, nil)
		require.NoError(t, err)
	}

	list, err := svc.List(ctx, "u1", "Tormenta20")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Mira", list[0].Name)
	assert.Equal(t, "Zed", list[1].Name)
}

func TestCharacterService_Delete(t *testing.T) {
	svc, db := newTestCharacterService()
	ctx := context.Background()
	id := createAria(t, svc, entities.Attribute{Name: "PV", Value: "30"})

	require.NoError(t, svc.Delete(ctx, id))

	_, err := svc.Resolve(ctx, ariaIdentity)
	require.ErrorIs(t, err, entities.ErrCharacterNotFound)
	assert.Empty(t, db.Actions(id))

	err = svc.Delete(ctx, id)
	require.ErrorIs(t, err, entities.ErrCharacterNotFound)
}

func TestCharacterService_History(t *testing.T) {
	svc, _ := newTestCharacterService()
	ctx := context.Background()
	id := createAria(t, svc, entities.Attribute{Name: "PV", Value: "30"})

	_, err := svc.AdjustNumericAttribute(ctx, id, "PV", -5)
	require.NoError(t, err)

	entries, err := svc.History(ctx, id, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, entities.ActionAdjust, entries[0].Action)
	assert.Equal(t, 25, entries[0].Details["new"])
	assert.Equal(t, entities.ActionCreate, entries[1].Action)

	entries, err = svc.History(ctx, id, 1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCharacterService_StorageErrorsPropagate(t *testing.T) {
	svc, db := newTestCharacterService()
	ctx := context.Background()
	id := createAria(t, svc, entities.Attribute{Name: "PV", Value: "30"})

	boom := errors.New("disk on fire")
	db.Err = boom

	_, err := svc.Resolve(ctx, ariaIdentity)
	require.ErrorIs(t, err, boom)

	_, err = svc.AdjustNumericAttribute(ctx, id, "PV", 1)
	require.ErrorIs(t, err, boom)

	_, err = svc.SetAttribute(ctx, id, "PV", "1")
	require.ErrorIs(t, err, boom)
}
