package main

import (
	"fmt"
	"os"

	"github.com/haimn-support/job-search-tracker-api/internal/importer"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	importFile        string
	importUser        string
	importConcurrency int
	importDryRun      bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Bulk-import positions and interviews from a JSON file",
	Long: `Validate a JSON import document against the import schema and create its
positions and interviews for one user.`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "Path to the import document (required)")
	importCmd.Flags().StringVar(&importUser, "user", "", "User ID or account email (required unless --dry-run)")
	importCmd.Flags().IntVar(&importConcurrency, "concurrency", importer.DefaultConcurrency, "Positions written in parallel")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Validate the document without writing it")

	if err := importCmd.MarkFlagRequired("file"); err != nil {
		panic(fmt.Sprintf("failed to mark file flag as required: %v", err))
	}
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, _ []string) error {
	raw, err := os.ReadFile(importFile)
	if err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}
	doc, err := importer.Parse(raw)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if importDryRun {
		interviews := 0
		for _, p := range doc.Positions {
			interviews += len(p.Interviews)
		}
		fmt.Fprintf(out, "Valid: %d positions, %d interviews\n", len(doc.Positions), interviews)
		return nil
	}
	if importUser == "" {
		return fmt.Errorf("--user is required")
	}

	cfg, logger, err := loadRuntime()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	database, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	userID, err := resolveUser(ctx, database, importUser)
	if err != nil {
		return err
	}

	result, err := importer.New(database, logger, importConcurrency).Import(ctx, userID, doc)
	if err != nil {
		logger.Error("import stopped",
			zap.Int("positions", result.Positions),
			zap.Int("interviews", result.Interviews),
			zap.Error(err),
		)
		return err
	}
	return printJSON(out, result)
}
