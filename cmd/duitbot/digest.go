package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/adikusuma/duitbot/internal/budget"
	"github.com/adikusuma/duitbot/internal/digest"
	"github.com/adikusuma/duitbot/internal/storage"
)

func digestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "digest",
		Short: "Compose and send the daily digest to all users",
		Long: `Run one digest pass: for every user with spending today, compose
the nightly summary and deliver it. Point a scheduler (cron, systemd
timer) at this command around 21:00 local time.`,
		RunE: runDigest,
	}
}

func runDigest(cmd *cobra.Command, _ []string) error {
	dbPath, err := databasePath()
	if err != nil {
		return err
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(cmd.Context()); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	composer := digest.NewComposer(store, budget.NewManager(store, slog.Default()), stdoutNotifier{}, slog.Default())

	slog.Info("Broadcasting daily digest")
	if err := composer.Broadcast(cmd.Context()); err != nil {
		return fmt.Errorf("digest broadcast failed: %w", err)
	}
	slog.Info("Digest broadcast complete")
	return nil
}

// stdoutNotifier prints digests to stdout. A real deployment swaps in a
// messenger-backed service.Notifier here.
type stdoutNotifier struct{}

func (stdoutNotifier) Send(_ context.Context, externalID, message string) error {
	fmt.Printf("--- digest for %s ---\n%s\n\n", externalID, message)
	return nil
}
