package cmd

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/naka-gawa/pr-portfolio/internal/config"
	"github.com/naka-gawa/pr-portfolio/internal/gateway"
	"github.com/naka-gawa/pr-portfolio/internal/history"
	"github.com/naka-gawa/pr-portfolio/internal/preview"
	"github.com/naka-gawa/pr-portfolio/internal/snapshot"
	"github.com/naka-gawa/pr-portfolio/internal/usecase"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetches all pull requests of a user and writes the snapshot",
	Long: `Fetches the complete pull request history of the configured user, aggregates it
and atomically replaces the snapshot artifacts. A preview image is rendered afterwards
unless disabled. Nothing is written when fetching fails.`,
	RunE: runFetch,
}

func runFetch(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	if err := cfg.RequireFetch(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	pipeline, gw, cleanup, err := buildPipeline(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := gw.CheckRateLimit(ctx); err != nil {
		log.Warnw("rate limit preflight failed", "error", err)
	}

	snap, report, err := pipeline.Run(ctx)
	if err != nil {
		log.Errorw("run failed", "run", report.ID, "error", err)
		return err
	}
	log.Infow("run complete",
		"run", report.ID,
		"prs", snap.TotalCount,
		"orgs", len(snap.Organizations),
		"skipped", report.Skipped,
		"defaulted", report.DefaultedStatus,
		"duration", report.Duration().Round(time.Millisecond),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "%d pull requests (%d open, %d merged, %d closed) across %d organizations, updated %s\n",
		snap.Counts.Total, snap.Counts.Open, snap.Counts.Merged, snap.Counts.Closed, len(snap.Organizations), snap.LastUpdated)
	return nil
}

// buildPipeline wires the gateway, writer, preview renderer and history store described by cfg.
func buildPipeline(cfg *config.Config, log *zap.SugaredLogger) (*usecase.Pipeline, *gateway.GitHubGateway, func(), error) {
	gw, err := gateway.NewGitHubGateway(cfg.GitHub.Token, gateway.Options{
		Subject:        cfg.Subject.Handle,
		PageSize:       cfg.Fetch.PageSize,
		GraphQLURL:     cfg.GitHub.GraphQLURL,
		RESTBaseURL:    cfg.GitHub.RESTBaseURL,
		RateLimitSleep: cfg.Fetch.RateLimitSleep,
	}, log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create GitHub gateway: %w", err)
	}
	source := gateway.WithRetry(gw, gateway.RetryPolicy{
		Timeout:         cfg.Fetch.Timeout,
		MaxRetries:      uint64(cfg.Fetch.Retries),
		InitialInterval: time.Second,
	}, log)

	format, err := snapshot.ParseFormat(cfg.Snapshot.Format)
	if err != nil {
		return nil, nil, nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, nil, err
	}

	opts := []usecase.Option{
		usecase.WithSubject(cfg.Subject.Handle),
		usecase.WithTimestampFormat(loc, cfg.Snapshot.TimeLayout),
	}
	if cfg.Preview.Enabled {
		renderer := preview.NewRenderer(preview.Options{
			Subject:   cfg.Subject.Handle,
			Title:     cfg.Preview.Title,
			AvatarURL: cfg.AvatarURL(),
			Path:      cfg.Preview.Path,
			FontPaths: cfg.Preview.FontPaths,
			FontURL:   cfg.Preview.FontURL,
		}, preview.HTTPAvatarSource{Client: &http.Client{Timeout: cfg.Fetch.Timeout}}, log)
		opts = append(opts, usecase.WithPreview(renderer))
	}

	cleanup := func() {}
	if cfg.History.Path != "" {
		store, err := history.Open(cfg.History.Path, log)
		if err != nil {
			return nil, nil, nil, err
		}
		cleanup = func() {
			if err := store.Close(); err != nil {
				log.Warnw("failed to close history database", "error", err)
			}
		}
		opts = append(opts, usecase.WithRecorder(store))
	}

	writer := snapshot.NewWriter(cfg.Snapshot.Dir, format, log)
	p := usecase.NewPipeline(source, usecase.NewNormalizer(cfg.Avatar.Template), writer, log, opts...)
	return p, gw, cleanup, nil
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().StringP("user", "u", "", "GitHub user whose pull requests are collected")
	fetchCmd.Flags().StringP("out", "o", "", "Directory the snapshot artifacts are written to")
	fetchCmd.Flags().String("format", "", "Snapshot format: json or ts")
	fetchCmd.Flags().Bool("preview", true, "Render the preview image after writing the snapshot")
	fetchCmd.Flags().String("history", "", "SQLite file recording every run (disabled when empty)")
}
