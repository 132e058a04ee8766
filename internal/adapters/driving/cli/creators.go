package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var fixCreatorsCmd = &cobra.Command{
	Use:   "fix-creators <file.csv>",
	Short: "Correct creator values across the index",
	Long: `Reads creator corrections from a CSV file with the columns

  existing, new, delete, copy to description

and applies each to every document whose only creator is the existing value.
Documents with several creators are reported and left alone.`,
	Args: cobra.ExactArgs(1),
	RunE: runFixCreators,
}

func init() {
	rootCmd.AddCommand(fixCreatorsCmd)
}

func runFixCreators(cmd *cobra.Command, args []string) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}
	if svc.Creators == nil || svc.ReadFixes == nil {
		return errors.New("creator service not configured")
	}

	fixes, err := svc.ReadFixes(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	cmd.Printf("Applying %d creator corrections...\n", len(fixes))
	report, err := svc.Creators.Fix(ctx, fixes)
	printReport(cmd, report)
	if err != nil {
		return fmt.Errorf("fix-creators failed: %w", err)
	}
	return nil
}
