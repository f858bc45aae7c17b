package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/naka-gawa/pr-portfolio/internal/gateway"
	"github.com/naka-gawa/pr-portfolio/internal/snapshot"
	"github.com/naka-gawa/pr-portfolio/internal/usecase"
)

// Config holds application configuration.
type Config struct {
	Subject  SubjectConfig  `mapstructure:"subject"`
	GitHub   GitHubConfig   `mapstructure:"github"`
	Fetch    FetchConfig    `mapstructure:"fetch"`
	Avatar   AvatarConfig   `mapstructure:"avatar"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
	Preview  PreviewConfig  `mapstructure:"preview"`
	History  HistoryConfig  `mapstructure:"history"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// RequireFetch ensures the fields needed to query the API are present.
func (c Config) RequireFetch() error {
	if strings.TrimSpace(c.Subject.Handle) == "" {
		return errors.New("subject.handle is required")
	}
	if c.GitHub.Token == "" {
		return errors.New("a GitHub token is required (set GITHUB_TOKEN or log in with gh)")
	}
	return nil
}

// Validate ensures values are in range.
func (c Config) Validate() error {
	if c.Fetch.PageSize < 1 || c.Fetch.PageSize > gateway.MaxPageSize {
		return fmt.Errorf("fetch.page_size must be between 1 and %d, got %d", gateway.MaxPageSize, c.Fetch.PageSize)
	}
	if c.Fetch.Timeout <= 0 {
		return errors.New("fetch.timeout must be positive")
	}
	if c.Fetch.Retries < 0 {
		return errors.New("fetch.retries must not be negative")
	}
	if !strings.Contains(c.Avatar.Template, usecase.OwnerPlaceholder) {
		return fmt.Errorf("avatar.template must contain %s", usecase.OwnerPlaceholder)
	}
	if _, err := snapshot.ParseFormat(c.Snapshot.Format); err != nil {
		return err
	}
	if _, err := time.LoadLocation(c.Snapshot.Timezone); err != nil {
		return fmt.Errorf("invalid snapshot.timezone: %w", err)
	}
	if c.Preview.Enabled && c.Preview.Path == "" {
		return errors.New("preview.path is required when preview is enabled")
	}
	return nil
}

// Location resolves Snapshot.Timezone.
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Snapshot.Timezone)
}

// AvatarURL returns the synthesized avatar of the subject.
func (c Config) AvatarURL() string {
	return usecase.AvatarURL(c.Avatar.Template, c.Subject.Handle)
}

// SubjectConfig names whose pull requests are collected.
type SubjectConfig struct {
	Handle string `mapstructure:"handle"`
}

// GitHubConfig contains API endpoints and credentials.
type GitHubConfig struct {
	Token       string `mapstructure:"token"`
	Host        string `mapstructure:"host"`
	GraphQLURL  string `mapstructure:"graphql_url"`
	RESTBaseURL string `mapstructure:"rest_base_url"`
}

// FetchConfig controls paging and retry behavior.
type FetchConfig struct {
	PageSize       int           `mapstructure:"page_size"`
	Timeout        time.Duration `mapstructure:"timeout"`
	Retries        int           `mapstructure:"retries"`
	RateLimitSleep time.Duration `mapstructure:"rate_limit_sleep"`
}

// AvatarConfig contains the owner avatar URL template.
type AvatarConfig struct {
	Template string `mapstructure:"template"`
}

// SnapshotConfig describes where and how artifacts are written.
type SnapshotConfig struct {
	Dir        string `mapstructure:"dir"`
	Format     string `mapstructure:"format"`
	Timezone   string `mapstructure:"timezone"`
	TimeLayout string `mapstructure:"time_layout"`
}

// PreviewConfig contains preview image options.
type PreviewConfig struct {
	Enabled   bool     `mapstructure:"enabled"`
	Path      string   `mapstructure:"path"`
	Title     string   `mapstructure:"title"`
	FontPaths []string `mapstructure:"font_paths"`
	FontURL   string   `mapstructure:"font_url"`
}

// HistoryConfig locates the run ledger. An empty path disables it.
type HistoryConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig contains logger preferences.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}
