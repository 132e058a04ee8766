package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent batch runs",
	RunE:  runRuns,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one batch run with its warnings",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

func init() {
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "Number of runs to list (0 for all)")
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}
	if svc.History == nil {
		return errors.New("run history not configured")
	}

	reports, err := svc.History.Runs(cmd.Context(), runsLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(reports) == 0 {
		cmd.Println("No runs recorded.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "RUN\tJOB\tSTATE\tPROCESSED\tSKIPPED\tMOVED\tSTARTED")
	for _, r := range reports {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			r.RunID, r.Job, r.State, r.Processed, r.Skipped, r.Moved,
			r.StartedAt.Local().Format(time.DateTime))
	}
	return w.Flush()
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}
	if svc.History == nil {
		return errors.New("run history not configured")
	}

	r, err := svc.History.Run(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("show run: %w", err)
	}

	printReport(cmd, r)
	cmd.Printf("Job:      %s\n", r.Job)
	cmd.Printf("Started:  %s\n", r.StartedAt.Local().Format(time.DateTime))
	if !r.FinishedAt.IsZero() {
		cmd.Printf("Finished: %s (%s)\n", r.FinishedAt.Local().Format(time.DateTime),
			r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
	}
	if r.Error != "" {
		cmd.Printf("Error:    %s\n", r.Error)
	}
	return nil
}
