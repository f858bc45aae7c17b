// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/naka-gawa/pr-portfolio/internal/config"
	"github.com/naka-gawa/pr-portfolio/internal/domain"
	"github.com/naka-gawa/pr-portfolio/internal/logger"
	"github.com/naka-gawa/pr-portfolio/internal/snapshot"
)

var rootCmd = &cobra.Command{
	Use:   "pr-portfolio",
	Short: "A CLI tool to build a pull request portfolio snapshot.",
	Long: `pr-portfolio collects every pull request a GitHub user has authored,
aggregates them per organization and status, and writes a snapshot that a
static portfolio page can import, together with a social preview image.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
}

// setup loads configuration and builds the logger for cmd.
func setup(cmd *cobra.Command) (*config.Config, *zap.SugaredLogger, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	verbose, _ := cmd.Flags().GetBool("verbose")
	log, err := logger.New(cfg.Logging.Level, verbose)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// loadSnapshot reads the snapshot in the format cfg writes it in.
func loadSnapshot(cfg *config.Config) (*domain.Snapshot, error) {
	format, err := snapshot.ParseFormat(cfg.Snapshot.Format)
	if err != nil {
		return nil, err
	}
	return snapshot.Load(cfg.Snapshot.Dir, format)
}
