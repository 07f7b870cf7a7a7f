// Package main provides the entry point for the sheetkeeper CLI application.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	version        = "0.1.0-dev"
	globalOwner    string
	globalLogLevel string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// A missing .env is normal; anything else is worth reporting.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	rootCmd := newRootCmd()
	return rootCmd.ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "sheetkeeper",
		Short:         "Tabletop RPG character sheets, inventory, effects, initiative and dice",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&globalOwner, "owner", "u", "", "Owner ID to act as (default from config)")
	rootCmd.PersistentFlags().StringVar(&globalLogLevel, "log-level", "", "Log level: debug, info, warn, error (default from config)")

	rootCmd.AddCommand(
		newInitCmd(),
		newSystemsCmd(),
		newCharacterCmd(),
		newMoneyCmd(),
		newItemCmd(),
		newEffectCmd(),
		newNPCCmd(),
		newRollCmd(),
		newImportCmd(),
		newExportCmd(),
		newPlayCmd(),
	)

	return rootCmd
}
