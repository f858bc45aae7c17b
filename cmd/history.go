package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/pr-portfolio/internal/history"
	"github.com/naka-gawa/pr-portfolio/internal/ui"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Shows recent pipeline runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()
		if cfg.History.Path == "" {
			return errors.New("history is disabled (set PORTFOLIO_HISTORY_PATH or --history)")
		}
		limit, _ := cmd.Flags().GetInt("limit")

		store, err := history.Open(cfg.History.Path, log)
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.Recent(cmd.Context(), limit)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "STARTED\tSTATUS\tDURATION\tPRS\tSKIPPED\tERROR")
		for _, r := range runs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
				r.StartedAt.Local().Format(time.DateTime),
				r.Status,
				r.Duration().Round(time.Millisecond),
				r.Counts.Total,
				r.Skipped,
				ui.Truncate(r.Error, 60),
			)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().String("history", "", "SQLite file recording every run")
	historyCmd.Flags().IntP("limit", "n", 10, "Number of runs to show")
}
