package main

import (
	"fmt"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/eventhub-api/internal/database"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := database.Connect(cfg); err != nil {
		return err
	}
	defer database.Close(database.DB)

	if err := database.Migrate(database.DB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	slog.Info("migration completed")
	return nil
}

func runRevokeAll(cmd *cobra.Command, args []string) error {
	userID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", args[0], err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := database.Connect(cfg); err != nil {
		return err
	}
	defer database.Close(database.DB)

	stack, err := newAuthStack(cfg, database.DB, nil)
	if err != nil {
		return err
	}
	if err := stack.auth.RevokeAll(cmd.Context(), userID); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "revoked all refresh tokens for %s\n", userID)
	return nil
}
