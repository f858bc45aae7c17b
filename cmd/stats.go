package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/pr-portfolio/internal/domain"
)

type statsOutput struct {
	LastUpdated   string                `json:"lastUpdated"`
	TotalCount    int                   `json:"totalCount"`
	Counts        domain.StatusCounts   `json:"counts"`
	Summary       domain.SizeSummary    `json:"summary"`
	Organizations []domain.Organization `json:"orgs"`
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Prints the aggregates of the stored snapshot as JSON",
	Long:  `Prints the status breakdown, size summary and per-organization counts of the stored snapshot in JSON format.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		snap, err := loadSnapshot(cfg)
		if err != nil {
			return err
		}

		// Marshal the results into a pretty-printed JSON string.
		jsonData, err := json.MarshalIndent(statsOutput{
			LastUpdated:   snap.LastUpdated,
			TotalCount:    snap.TotalCount,
			Counts:        snap.Counts,
			Summary:       snap.Summary,
			Organizations: snap.Organizations,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results to JSON: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().String("dir", "", "Directory the snapshot is read from")
}
