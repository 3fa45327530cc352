package cmd

import (
	"context"
	"fmt"

	"cycle-count/core/config"
	"cycle-count/core/logger"
	"cycle-count/core/storage"
	"cycle-count/core/store"
	countmodels "cycle-count/feature/count/models"
	"cycle-count/feature/report"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// reportCmd exports the active session's discrepancy table to object
// storage.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Export the completed session's discrepancy report",
	Long: `Export the active session's discrepancy table to object storage as CSV.

The session must be signed off; an unfinished session is refused.`,
	RunE: runReport,
}

func init() {
	RootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Open the session store
	sessionStore, err := store.New(cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}

	payload, err := sessionStore.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if payload == nil {
		return fmt.Errorf("no session to export")
	}

	session, err := countmodels.Decode(payload)
	if err != nil {
		return fmt.Errorf("stored session unreadable: %w", err)
	}

	// Connect to storage
	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to connect to storage: %w", err)
	}

	exporter := report.NewExporter(client, cfg.Storage.Bucket, l)
	key, err := exporter.Export(ctx, session)
	if err != nil {
		return err
	}

	l.Info("Report exported",
		zap.String("session_id", session.ID),
		zap.String("object", key),
	)
	return nil
}
