package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "eventhub-api",
		Short:         "Eventhub authentication and session API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server (default)",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update database tables and exit",
			RunE:  runMigrate,
		},
		&cobra.Command{
			Use:   "revoke-all <user-id>",
			Short: "Revoke every refresh token of a user",
			Args:  cobra.ExactArgs(1),
			RunE:  runRevokeAll,
		},
	)

	if err := root.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
