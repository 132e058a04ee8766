package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/archie/internal/core/domain"
)

var updateCmd = &cobra.Command{
	Use:   "update <file.csv>",
	Short: "Apply document metadata updates from a CSV file",
	Long: `Reads document records from a CSV file whose header names index fields
(id is required), writes the fields present on each record to the index, and
moves each document's original, thumbnail and text artifacts into the
repository named by its access rights.

The index is committed once, after every record has been processed. An
aborted run commits nothing; artifacts already moved stay where they are.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}
	if svc.Update == nil || svc.OpenRecords == nil {
		return errors.New("update service not configured")
	}

	src, closeSrc, err := svc.OpenRecords(args[0])
	if err != nil {
		return fmt.Errorf("open %s: %w", args[0], err)
	}
	defer func() { _ = closeSrc() }()

	// Ctrl-C interrupts the batch before its commit
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	cmd.Printf("Updating documents from %s...\n", args[0])
	report, err := svc.Update.RunSource(ctx, src)
	printReport(cmd, report)
	if err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	return nil
}

// printReport writes a run summary and its warnings.
func printReport(cmd *cobra.Command, r *domain.BatchReport) {
	if r == nil {
		return
	}
	cmd.Printf("Run %s %s: %d processed, %d skipped, %d artifacts moved\n",
		r.RunID, r.State, r.Processed, r.Skipped, r.Moved)
	if len(r.Warnings) > 0 {
		cmd.Printf("%d warnings:\n", len(r.Warnings))
		for _, w := range r.Warnings {
			cmd.Printf("  %s\n", w)
		}
	}
}
