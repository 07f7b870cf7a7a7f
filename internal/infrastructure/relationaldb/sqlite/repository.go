// Package sqlite provides a SQLite implementation of the RelationalDB interface.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ersonp/sheetkeeper/internal/domain/entities"
	"github.com/ersonp/sheetkeeper/internal/infrastructure/config"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// timeNow returns the current time (can be mocked in tests).
var timeNow = time.Now

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Repository implements ports.RelationalDB using SQLite.
type Repository struct {
	db   *sql.DB
	path string
}

// NewRepository creates a new SQLite repository.
func NewRepository(cfg config.SQLiteConfig) (*Repository, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// One connection: pragmas are per connection, ":memory:" databases are
	// per connection, and SQLite serializes writers anyway.
	db.SetMaxOpenConns(1)

	// Enable foreign keys for cascade deletes
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Set busy timeout to avoid "database is locked" errors
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	return &Repository{
		db:   db,
		path: cfg.Path,
	}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Path returns the database file path.
func (r *Repository) Path() string {
	return r.path
}

// EnsureSchema creates the database schema if it doesn't exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	schema := `
	-- Character sheets (system and campaign are stored folded)
	CREATE TABLE IF NOT EXISTS characters (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		owner_id TEXT NOT NULL,
		system TEXT NOT NULL,
		campaign TEXT NOT NULL,
		name TEXT NOT NULL,
		normalized_name TEXT NOT NULL,
		money REAL NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(owner_id, system, campaign, normalized_name)
	);
	CREATE INDEX IF NOT EXISTS idx_characters_owner ON characters(owner_id, system);

	-- Sheet attributes (name is folded)
	CREATE TABLE IF NOT EXISTS attributes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		character_id INTEGER NOT NULL REFERENCES characters(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		value TEXT,
		UNIQUE(character_id, name)
	);

	-- Inventory stacks (one row per folded item name)
	CREATE TABLE IF NOT EXISTS inventory (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		character_id INTEGER NOT NULL REFERENCES characters(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity >= 1),
		description TEXT,
		UNIQUE(character_id, name)
	);

	-- Status effects (stacking, no uniqueness)
	CREATE TABLE IF NOT EXISTS status_effects (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		character_id INTEGER NOT NULL REFERENCES characters(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		normalized_name TEXT NOT NULL,
		duration INTEGER NOT NULL,
		caster_id TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_status_effects_character ON status_effects(character_id);

	-- NPCs (stats are an opaque JSON blob)
	CREATE TABLE IF NOT EXISTS npcs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		owner_id TEXT NOT NULL,
		name TEXT NOT NULL,
		normalized_name TEXT NOT NULL,
		stats TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(owner_id, normalized_name)
	);

	-- Audit log (tracks sheet mutations)
	CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		character_id INTEGER NOT NULL REFERENCES characters(id) ON DELETE CASCADE,
		action TEXT NOT NULL,
		details TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_audit_log_character ON audit_log(character_id);
	`

	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// CreateCharacter inserts a character and its attributes in one transaction.
// The duplicate check runs inside the same transaction as the inserts.
func (r *Repository) CreateCharacter(ctx context.Context, character *entities.Character, attrs []entities.Attribute) (err error) {
	identity := character.Identity().Normalized()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var existingID int64
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM characters
		WHERE owner_id = ? AND system = ? AND campaign = ? AND normalized_name = ?
	`, identity.OwnerID, identity.System, identity.Campaign, identity.Name).Scan(&existingID)
	switch {
	case err == nil:
		return entities.ErrDuplicateCharacter
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("checking existing character: %w", err)
	}

	createdAt := timeNow()
	result, err := tx.ExecContext(ctx, `
		INSERT INTO characters (owner_id, system, campaign, name, normalized_name, money, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		identity.OwnerID,
		identity.System,
		identity.Campaign,
		strings.TrimSpace(character.Name),
		identity.Name,
		character.Money,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("inserting character: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading character id: %w", err)
	}

	for _, attr := range entities.NormalizeAttributes(attrs) {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO attributes (character_id, name, value) VALUES (?, ?, ?)`,
			id, attr.Name, attr.Value,
		); err != nil {
			return fmt.Errorf("inserting attribute %s: %w", attr.Name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing character: %w", err)
	}

	character.ID = id
	character.OwnerID = identity.OwnerID
	character.System = identity.System
	character.Campaign = identity.Campaign
	character.Name = strings.TrimSpace(character.Name)
	character.NormalizedName = identity.Name
	character.CreatedAt = createdAt
	return nil
}

// FindCharacter finds a character by identity (case-insensitive).
func (r *Repository) FindCharacter(ctx context.Context, identity entities.Identity) (*entities.Character, error) {
	key := identity.Normalized()
	query := `
		SELECT id, owner_id, system, campaign, name, normalized_name, money, created_at
		FROM characters
		WHERE owner_id = ? AND system = ? AND campaign = ? AND normalized_name = ?
	`
	row := r.db.QueryRowContext(ctx, query, key.OwnerID, key.System, key.Campaign, key.Name)

	character, err := scanCharacter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return character, nil
}

// FindCharacterByID finds a character by its ID.
func (r *Repository) FindCharacterByID(ctx context.Context, id int64) (*entities.Character, error) {
	query := `
		SELECT id, owner_id, system, campaign, name, normalized_name, money, created_at
		FROM characters
		WHERE id = ?
	`
	character, err := scanCharacter(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return character, nil
}

// ListCharacters lists an owner's characters in a system.
func (r *Repository) ListCharacters(ctx context.Context, ownerID, system string) ([]entities.Character, error) {
	query := `
		SELECT id, owner_id, system, campaign, name, normalized_name, money, created_at
		FROM characters
		WHERE owner_id = ? AND system = ?
		ORDER BY campaign ASC, normalized_name ASC
	`
	rows, err := r.db.QueryContext(ctx, query, entities.NormalizeName(ownerID), entities.NormalizeName(system))
	if err != nil {
		return nil, fmt.Errorf("querying characters: %w", err)
	}
	defer rows.Close()

	characters := make([]entities.Character, 0, 16)
	for rows.Next() {
		character, err := scanCharacter(rows)
		if err != nil {
			return nil, err
		}
		characters = append(characters, *character)
	}
	return characters, rows.Err()
}

// DeleteCharacter deletes a character; dependents go with it via ON DELETE CASCADE.
func (r *Repository) DeleteCharacter(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM characters WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting character: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return entities.ErrCharacterNotFound
	}
	return nil
}

// scanCharacter scans a character row.
func scanCharacter(row scanner) (*entities.Character, error) {
	var c entities.Character
	err := row.Scan(
		&c.ID,
		&c.OwnerID,
		&c.System,
		&c.Campaign,
		&c.Name,
		&c.NormalizedName,
		&c.Money,
		&c.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning character: %w", err)
	}
	return &c, nil
}

// ListAttributes lists a character's attributes in insertion order.
func (r *Repository) ListAttributes(ctx context.Context, characterID int64) ([]entities.Attribute, error) {
	query := `
		SELECT character_id, name, value
		FROM attributes
		WHERE character_id = ?
		ORDER BY id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, characterID)
	if err != nil {
		return nil, fmt.Errorf("querying attributes: %w", err)
	}
	defer rows.Close()

	attrs := make([]entities.Attribute, 0, 16)
	for rows.Next() {
		var attr entities.Attribute
		var value sql.NullString
		if err := rows.Scan(&attr.CharacterID, &attr.Name, &value); err != nil {
			return nil, fmt.Errorf("scanning attribute: %w", err)
		}
		attr.Value = value.String
		attrs = append(attrs, attr)
	}
	return attrs, rows.Err()
}

// FindAttribute finds an attribute by folded name.
func (r *Repository) FindAttribute(ctx context.Context, characterID int64, name string) (*entities.Attribute, error) {
	query := `
		SELECT character_id, name, value
		FROM attributes
		WHERE character_id = ? AND name = ?
	`
	var attr entities.Attribute
	var value sql.NullString
	err := r.db.QueryRowContext(ctx, query, characterID, entities.NormalizeName(name)).
		Scan(&attr.CharacterID, &attr.Name, &value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning attribute: %w", err)
	}
	attr.Value = value.String
	return &attr, nil
}

// UpdateAttribute sets an existing attribute's value.
func (r *Repository) UpdateAttribute(ctx context.Context, characterID int64, name, value string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE attributes SET value = ? WHERE character_id = ? AND name = ?`,
		value, characterID, entities.NormalizeName(name),
	)
	if err != nil {
		return false, fmt.Errorf("updating attribute: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading updated rows: %w", err)
	}
	return rows > 0, nil
}

// AdjustMoney adds amount to the balance and returns the new balance.
func (r *Repository) AdjustMoney(ctx context.Context, characterID int64, amount float64) (float64, error) {
	var balance float64
	err := r.db.QueryRowContext(ctx,
		`UPDATE characters SET money = money + ? WHERE id = ? RETURNING money`,
		amount, characterID,
	).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, entities.ErrCharacterNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("adjusting money: %w", err)
	}
	return balance, nil
}

// FindItem finds an inventory stack by folded name.
func (r *Repository) FindItem(ctx context.Context, characterID int64, name string) (*entities.InventoryItem, error) {
	query := `
		SELECT character_id, name, quantity, description
		FROM inventory
		WHERE character_id = ? AND name = ?
	`
	item, err := scanItem(r.db.QueryRowContext(ctx, query, characterID, entities.NormalizeName(name)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// SaveItem inserts a new inventory stack.
func (r *Repository) SaveItem(ctx context.Context, item *entities.InventoryItem) error {
	query := `
		INSERT INTO inventory (character_id, name, quantity, description)
		VALUES (?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		item.CharacterID,
		entities.NormalizeName(item.Name),
		item.Quantity,
		item.Description,
	)
	if err != nil {
		return fmt.Errorf("saving item: %w", err)
	}
	return nil
}

// UpdateItemQuantity sets the quantity of an existing stack.
func (r *Repository) UpdateItemQuantity(ctx context.Context, characterID int64, name string, quantity int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE inventory SET quantity = ? WHERE character_id = ? AND name = ?`,
		quantity, characterID, entities.NormalizeName(name),
	)
	if err != nil {
		return fmt.Errorf("updating item quantity: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return entities.ErrItemNotFound
	}
	return nil
}

// DeleteItem removes an inventory stack.
func (r *Repository) DeleteItem(ctx context.Context, characterID int64, name string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM inventory WHERE character_id = ? AND name = ?`,
		characterID, entities.NormalizeName(name),
	)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return entities.ErrItemNotFound
	}
	return nil
}

// ListItems lists a character's inventory ordered by item name.
func (r *Repository) ListItems(ctx context.Context, characterID int64) ([]entities.InventoryItem, error) {
	query := `
		SELECT character_id, name, quantity, description
		FROM inventory
		WHERE character_id = ?
		ORDER BY name ASC
	`
	rows, err := r.db.QueryContext(ctx, query, characterID)
	if err != nil {
		return nil, fmt.Errorf("querying inventory: %w", err)
	}
	defer rows.Close()

	items := make([]entities.InventoryItem, 0, 16)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// scanItem scans an inventory row.
func scanItem(row scanner) (*entities.InventoryItem, error) {
	var item entities.InventoryItem
	var description sql.NullString
	err := row.Scan(&item.CharacterID, &item.Name, &item.Quantity, &description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning item: %w", err)
	}
	item.Description = description.String
	return &item, nil
}

// SaveEffect inserts a new effect instance.
func (r *Repository) SaveEffect(ctx context.Context, effect *entities.StatusEffect) error {
	if effect.CreatedAt.IsZero() {
		effect.CreatedAt = timeNow()
	}
	effect.Name = strings.TrimSpace(effect.Name)
	effect.NormalizedName = entities.NormalizeName(effect.Name)

	var casterID sql.NullString
	if effect.CasterID != "" {
		casterID = sql.NullString{String: effect.CasterID, Valid: true}
	}

	query := `
		INSERT INTO status_effects (character_id, name, normalized_name, duration, caster_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		effect.CharacterID,
		effect.Name,
		effect.NormalizedName,
		effect.Duration,
		casterID,
		effect.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving effect: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading effect id: %w", err)
	}
	effect.ID = id
	return nil
}

// ListEffects lists a character's effects in application order.
func (r *Repository) ListEffects(ctx context.Context, characterID int64) ([]entities.StatusEffect, error) {
	query := `
		SELECT id, character_id, name, normalized_name, duration, caster_id, created_at
		FROM status_effects
		WHERE character_id = ?
		ORDER BY id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, characterID)
	if err != nil {
		return nil, fmt.Errorf("querying effects: %w", err)
	}
	defer rows.Close()

	effects := make([]entities.StatusEffect, 0, 16)
	for rows.Next() {
		var e entities.StatusEffect
		var casterID sql.NullString
		if err := rows.Scan(
			&e.ID,
			&e.CharacterID,
			&e.Name,
			&e.NormalizedName,
			&e.Duration,
			&casterID,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning effect: %w", err)
		}
		e.CasterID = casterID.String
		effects = append(effects, e)
	}
	return effects, rows.Err()
}

// AdvanceEffects decrements all effects of a character by one turn and
// removes the expired ones. The whole step runs in one transaction.
func (r *Repository) AdvanceEffects(ctx context.Context, characterID int64) (expired []string, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`UPDATE status_effects SET duration = duration - 1 WHERE character_id = ?`,
		characterID,
	); err != nil {
		return nil, fmt.Errorf("decrementing effects: %w", err)
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT name FROM status_effects WHERE character_id = ? AND duration <= 0 ORDER BY id ASC`,
		characterID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying expired effects: %w", err)
	}
	expired = make([]string, 0, 4)
	for rows.Next() {
		var name string
		if err = rows.Scan(&name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning expired effect: %w", err)
		}
		expired = append(expired, name)
	}
	if err = rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating expired effects: %w", err)
	}
	rows.Close()

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM status_effects WHERE character_id = ? AND duration <= 0`,
		characterID,
	); err != nil {
		return nil, fmt.Errorf("deleting expired effects: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing effects: %w", err)
	}
	return expired, nil
}

// DeleteEffects deletes every instance of an effect by folded name.
func (r *Repository) DeleteEffects(ctx context.Context, characterID int64, name string) (int, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM status_effects WHERE character_id = ? AND normalized_name = ?`,
		characterID, entities.NormalizeName(name),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting effects: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading deleted rows: %w", err)
	}
	return int(rows), nil
}

// SaveNPC inserts or replaces an NPC keyed by owner and folded name.
func (r *Repository) SaveNPC(ctx context.Context, npc *entities.NPC) error {
	stats := npc.Stats
	if stats == nil {
		stats = map[string]any{}
	}
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshaling npc stats: %w", err)
	}

	now := timeNow()
	if npc.CreatedAt.IsZero() {
		npc.CreatedAt = now
	}
	npc.UpdatedAt = now
	npc.OwnerID = entities.NormalizeName(npc.OwnerID)
	npc.Name = strings.TrimSpace(npc.Name)
	npc.NormalizedName = entities.NormalizeName(npc.Name)

	query := `
		INSERT INTO npcs (owner_id, name, normalized_name, stats, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(owner_id, normalized_name) DO UPDATE SET
			name = excluded.name,
			stats = excluded.stats,
			updated_at = excluded.updated_at
		RETURNING id
	`
	err = r.db.QueryRowContext(ctx, query,
		npc.OwnerID,
		npc.Name,
		npc.NormalizedName,
		string(data),
		npc.CreatedAt,
		npc.UpdatedAt,
	).Scan(&npc.ID)
	if err != nil {
		return fmt.Errorf("saving npc: %w", err)
	}
	return nil
}

// FindNPC finds an NPC by owner and name.
func (r *Repository) FindNPC(ctx context.Context, ownerID, name string) (*entities.NPC, error) {
	query := `
		SELECT id, owner_id, name, normalized_name, stats, created_at, updated_at
		FROM npcs
		WHERE owner_id = ? AND normalized_name = ?
	`
	npc, err := scanNPC(r.db.QueryRowContext(ctx, query, entities.NormalizeName(ownerID), entities.NormalizeName(name)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return npc, nil
}

// ListNPCs lists an owner's NPCs ordered by name.
func (r *Repository) ListNPCs(ctx context.Context, ownerID string) ([]entities.NPC, error) {
	query := `
		SELECT id, owner_id, name, normalized_name, stats, created_at, updated_at
		FROM npcs
		WHERE owner_id = ?
		ORDER BY normalized_name ASC
	`
	rows, err := r.db.QueryContext(ctx, query, entities.NormalizeName(ownerID))
	if err != nil {
		return nil, fmt.Errorf("querying npcs: %w", err)
	}
	defer rows.Close()

	npcs := make([]entities.NPC, 0, 16)
	for rows.Next() {
		npc, err := scanNPC(rows)
		if err != nil {
			return nil, err
		}
		npcs = append(npcs, *npc)
	}
	return npcs, rows.Err()
}

// DeleteNPC deletes an NPC by owner and name.
func (r *Repository) DeleteNPC(ctx context.Context, ownerID, name string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM npcs WHERE owner_id = ? AND normalized_name = ?`,
		entities.NormalizeName(ownerID), entities.NormalizeName(name),
	)
	if err != nil {
		return fmt.Errorf("deleting npc: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return entities.ErrNPCNotFound
	}
	return nil
}

// scanNPC scans an NPC row and decodes its stats blob.
func scanNPC(row scanner) (*entities.NPC, error) {
	var npc entities.NPC
	var stats string
	err := row.Scan(
		&npc.ID,
		&npc.OwnerID,
		&npc.Name,
		&npc.NormalizedName,
		&stats,
		&npc.CreatedAt,
		&npc.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning npc: %w", err)
	}
	if err := json.Unmarshal([]byte(stats), &npc.Stats); err != nil {
		return nil, fmt.Errorf("unmarshaling npc stats: %w", err)
	}
	return &npc, nil
}

// LogAction logs an action to a character's audit log.
func (r *Repository) LogAction(ctx context.Context, characterID int64, action string, details map[string]any) error {
	var detailsJSON sql.NullString
	if details != nil {
		data, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("marshaling details: %w", err)
		}
		detailsJSON = sql.NullString{String: string(data), Valid: true}
	}

	query := `INSERT INTO audit_log (character_id, action, details, created_at) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, characterID, action, detailsJSON, timeNow())
	if err != nil {
		return fmt.Errorf("logging action: %w", err)
	}
	return nil
}

// FindAuditLog finds audit log entries for a character, newest first.
// A limit of zero or less returns every entry.
func (r *Repository) FindAuditLog(ctx context.Context, characterID int64, limit int) ([]entities.AuditEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	query := `
		SELECT id, character_id, action, details, created_at
		FROM audit_log
		WHERE character_id = ?
		ORDER BY id DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, characterID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying audit log: %w", err)
	}
	defer rows.Close()

	entries := make([]entities.AuditEntry, 0, 16)
	for rows.Next() {
		var entry entities.AuditEntry
		var details sql.NullString

		if err := rows.Scan(
			&entry.ID,
			&entry.CharacterID,
			&entry.Action,
			&details,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}

		if details.Valid && details.String != "" {
			if err := json.Unmarshal([]byte(details.String), &entry.Details); err != nil {
				return nil, fmt.Errorf("unmarshaling details: %w", err)
			}
		}

		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
