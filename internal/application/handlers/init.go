package handlers

import (
	"context"
	"fmt"

	"github.com/ersonp/sheetkeeper/internal/domain/ports"
	"github.com/ersonp/sheetkeeper/internal/infrastructure/config"
)

// DBOpener opens the relational database stored at path.
type DBOpener func(path string) (ports.RelationalDB, error)

// InitHandler handles workspace initialization.
type InitHandler struct {
	openDB DBOpener
}

// NewInitHandler creates a new init handler. openDB may be nil, in which
// case no database is created.
func NewInitHandler(openDB DBOpener) *InitHandler {
	return &InitHandler{
		openDB: openDB,
	}
}

// InitResult contains the result of initialization.
type InitResult struct {
	ConfigPath   string
	SystemsPath  string
	DatabasePath string
}

// Handle writes the default config and system templates, then creates the
// database schema.
func (h *InitHandler) Handle(ctx context.Context, basePath string) (*InitResult, error) {
	if config.Exists(basePath) {
		return nil, fmt.Errorf("sheetkeeper already initialized in %s", basePath)
	}

	if err := config.WriteDefault(basePath); err != nil {
		return nil, fmt.Errorf("writing default config: %w", err)
	}

	if err := config.DefaultSystems().Save(basePath); err != nil {
		return nil, fmt.Errorf("writing systems file: %w", err)
	}

	cfg, err := config.Load(basePath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if h.openDB != nil {
		db, err := h.openDB(cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()

		if err := db.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}

	return &InitResult{
		ConfigPath:   config.ConfigFilePath(basePath),
		SystemsPath:  config.SystemsFilePath(basePath),
		DatabasePath: cfg.SQLite.Path,
	}, nil
}
