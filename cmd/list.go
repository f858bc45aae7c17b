package cmd

import (
	"github.com/spf13/cobra"

	"github.com/naka-gawa/pr-portfolio/internal/query"
	"github.com/naka-gawa/pr-portfolio/internal/ui"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists pull requests from the stored snapshot",
	Long: `Lists the pull requests of the stored snapshot, newest first, filtered by status,
organization and free text, one page at a time.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		status, _ := cmd.Flags().GetString("status")
		status, err = query.ParseStatus(status)
		if err != nil {
			return err
		}
		org, _ := cmd.Flags().GetString("org")
		search, _ := cmd.Flags().GetString("search")
		page, _ := cmd.Flags().GetInt("page")
		size, _ := cmd.Flags().GetInt("size")

		snap, err := loadSnapshot(cfg)
		if err != nil {
			return err
		}
		log.Debugw("snapshot loaded", "dir", cfg.Snapshot.Dir, "prs", len(snap.PullRequests), "lastUpdated", snap.LastUpdated)

		browser := query.NewBrowser(snap.PullRequests, size)
		browser.SetStatus(status)
		browser.SetOrg(org)
		browser.SetSearch(search)
		browser.SetPage(page)
		return ui.RenderPullRequests(cmd.OutOrStdout(), browser.View())
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().String("dir", "", "Directory the snapshot is read from")
	listCmd.Flags().StringP("status", "s", query.All, "Status filter: all, open, merged or closed")
	listCmd.Flags().String("org", query.All, "Organization (owner handle) filter")
	listCmd.Flags().StringP("search", "q", "", "Case-insensitive search over title, repository, owner and #number")
	listCmd.Flags().IntP("page", "p", 1, "Page number")
	listCmd.Flags().Int("size", query.DefaultPageSize, "Pull requests per page")
}
