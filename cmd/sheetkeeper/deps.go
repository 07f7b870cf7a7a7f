package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ersonp/sheetkeeper/internal/application/handlers"
	"github.com/ersonp/sheetkeeper/internal/domain/dice"
	"github.com/ersonp/sheetkeeper/internal/domain/ports"
	"github.com/ersonp/sheetkeeper/internal/domain/services"
	"github.com/ersonp/sheetkeeper/internal/infrastructure/config"
	llm "github.com/ersonp/sheetkeeper/internal/infrastructure/llm/openai"
	"github.com/ersonp/sheetkeeper/internal/infrastructure/relationaldb/sqlite"
)

// Deps holds high-level dependencies for commands.
// Only handlers are exposed - services and repositories are internal.
type Deps struct {
	Config     *config.Config
	Systems    *config.SystemsConfig
	Owner      string
	Logger     *slog.Logger
	Characters *handlers.CharacterHandler
	Ledger     *handlers.LedgerHandler
	Effects    *handlers.EffectHandler
	NPCs       *handlers.NPCHandler
	Import     *handlers.ImportHandler
	Dice       *handlers.DiceHandler
	Initiative *handlers.InitiativeHandler
}

// withDeps loads config and builds dependencies, then calls the provided function.
// It handles cleanup automatically.
func withDeps(fn func(*Deps) error) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	systems, err := config.LoadSystems(cwd)
	if err != nil {
		return fmt.Errorf("loading systems: %w", err)
	}

	logger, err := newLogger(cfg.Log, globalLogLevel, os.Stderr)
	if err != nil {
		return err
	}

	relationalDB, err := openRelationalDB(cfg.SQLite.Path)
	if err != nil {
		return err
	}
	defer relationalDB.Close()

	if err := relationalDB.EnsureSchema(context.Background()); err != nil {
		return fmt.Errorf("ensuring sqlite schema: %w", err)
	}

	roller, err := dice.NewSeededRoller()
	if err != nil {
		return fmt.Errorf("creating dice roller: %w", err)
	}

	deps := buildDeps(cfg, systems, logger, relationalDB, newNPCGenerator(cfg.LLM, logger), roller)
	return fn(deps)
}

// buildDeps wires services and handlers around an open database.
func buildDeps(cfg *config.Config, systems *config.SystemsConfig, logger *slog.Logger, relationalDB ports.RelationalDB, generator ports.NPCGenerator, roller *dice.Roller) *Deps {
	locks := services.NewCharacterLocks()
	characterService := services.NewCharacterService(relationalDB, locks, logger)
	ledgerService := services.NewLedgerService(relationalDB, locks, logger)
	effectService := services.NewEffectService(relationalDB, locks, logger)
	npcService := services.NewNPCService(relationalDB, generator, logger)

	owner := cfg.OwnerID
	if globalOwner != "" {
		owner = globalOwner
	}

	return &Deps{
		Config:     cfg,
		Systems:    systems,
		Owner:      owner,
		Logger:     logger,
		Characters: handlers.NewCharacterHandler(characterService),
		Ledger:     handlers.NewLedgerHandler(characterService, ledgerService),
		Effects:    handlers.NewEffectHandler(characterService, effectService),
		NPCs:       handlers.NewNPCHandler(npcService),
		Import:     handlers.NewImportHandler(services.NewImportService(characterService, ledgerService)),
		Dice:       handlers.NewDiceHandler(roller),
		Initiative: handlers.NewInitiativeHandler(services.NewInitiativeTracker(logger), roller),
	}
}

// openRelationalDB opens the SQLite database, creating its directory first.
func openRelationalDB(path string) (ports.RelationalDB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	repo, err := sqlite.NewRepository(config.SQLiteConfig{Path: path})
	if err != nil {
		return nil, fmt.Errorf("creating sqlite repository: %w", err)
	}
	return repo, nil
}

// newNPCGenerator returns the OpenAI generator when an API key is configured.
// The interface stays nil otherwise so the NPC service can report it.
func newNPCGenerator(cfg config.LLMConfig, logger *slog.Logger) ports.NPCGenerator {
	if cfg.APIKey == "" {
		return nil
	}

	client, err := llm.NewClient(cfg)
	if err != nil {
		logger.Warn("npc generation disabled", "error", err)
		return nil
	}
	return client
}

// newLogger builds the slog logger described by cfg. A non-empty level
// overrides the configured one.
func newLogger(cfg config.LogConfig, level string, w io.Writer) (*slog.Logger, error) {
	if level == "" {
		level = cfg.Level
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(cfg.Format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q (valid: text, json)", cfg.Format)
	}
}
