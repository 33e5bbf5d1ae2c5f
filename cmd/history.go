package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent training runs and recognition events from the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runHistory(cmd.Context())
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "Number of rows to show per table")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(ctx context.Context) error {
	if DB == nil {
		return fail("History is unavailable", errNoDatabase)
	}
	if historyLimit < 1 {
		return fail("Invalid --limit", fmt.Errorf("must be >= 1, got %d", historyLimit))
	}

	runs, err := DB.ListTrainingRuns(ctx, historyLimit)
	if err != nil {
		return fail("Failed to list training runs", err)
	}
	events, err := DB.RecentEvents(ctx, historyLimit)
	if err != nil {
		return fail("Failed to list recognition events", err)
	}

	if len(runs) == 0 {
		fmt.Println("No training runs recorded.")
	} else {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "RUN\tPEOPLE\tIMAGES\tSKIPPED\tMODEL\tCREATED")
		fmt.Fprintln(w, "---\t------\t------\t-------\t-----\t-------")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\t%s\n", r.ID.String()[:8], r.People, r.Images, r.Skipped, r.ModelPath, r.CreatedAt.Local().Format("2006-01-02 15:04"))
		}
		w.Flush()
	}
	fmt.Println()

	if len(events) == 0 {
		fmt.Println("No recognition events recorded.")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "SESSION\tNAME\tLABEL\tDISTANCE\tSTATUS\tBOX\tTIME")
	fmt.Fprintln(w, "-------\t----\t-----\t--------\t------\t---\t----")
	for _, e := range events {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.1f\t%s\t%v\t%s\n", e.SessionID.String()[:8], e.Name, e.Label, e.Distance, e.Status, e.Box, e.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	}
	w.Flush()
	return nil
}
