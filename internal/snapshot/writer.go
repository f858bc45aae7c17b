// Package snapshot persists pipeline snapshots as artifacts the presentation layer
// can import, and loads them back.
package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/pr-portfolio/internal/domain"
)

// Format selects how artifacts are encoded.
type Format string

const (
	FormatJSON       Format = "json"
	FormatTypeScript Format = "ts"
)

// Artifact base names. The extension follows the format.
const (
	PullRequestsName  = "prs"
	OrganizationsName = "orgs"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatTypeScript:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown snapshot format %q (want %q or %q)", s, FormatJSON, FormatTypeScript)
}

type artifact struct {
	name   string
	encode func(*domain.Snapshot) ([]byte, error)
}

// Writer writes the pull request and organization artifacts of a snapshot into a directory.
type Writer struct {
	dir    string
	format Format
	logger *zap.SugaredLogger
}

// NewWriter creates a Writer for dir.
func NewWriter(dir string, format Format, logger *zap.SugaredLogger) *Writer {
	return &Writer{dir: dir, format: format, logger: logger}
}

// Paths returns the artifact paths Write produces.
func (w *Writer) Paths() []string {
	paths := make([]string, 0, 2)
	for _, a := range w.artifacts() {
		paths = append(paths, filepath.Join(w.dir, a.name))
	}
	return paths
}

func (w *Writer) artifacts() []artifact {
	ext := "." + string(w.format)
	if w.format == FormatTypeScript {
		return []artifact{
			{name: PullRequestsName + ext, encode: encodePullRequestsTS},
			{name: OrganizationsName + ext, encode: encodeOrganizationsTS},
		}
	}
	return []artifact{
		{name: PullRequestsName + ext, encode: encodePullRequestsJSON},
		{name: OrganizationsName + ext, encode: encodeOrganizationsJSON},
	}
}

// Write encodes both artifacts into pending temporary files and only replaces the
// existing artifacts once both have been staged. A failure before that point leaves
// the previous artifacts untouched.
func (w *Writer) Write(ctx context.Context, snap *domain.Snapshot) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	artifacts := w.artifacts()
	pending := make([]*renameio.PendingFile, len(artifacts))
	defer func() {
		for _, pf := range pending {
			if pf != nil {
				_ = pf.Cleanup()
			}
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	for i, a := range artifacts {
		g.Go(func() error {
			data, err := a.encode(snap)
			if err != nil {
				return fmt.Errorf("failed to encode %s: %w", a.name, err)
			}
			if err := gctx.Err(); err != nil {
				return err
			}
			pf, err := renameio.NewPendingFile(filepath.Join(w.dir, a.name), renameio.WithPermissions(0o644))
			if err != nil {
				return fmt.Errorf("failed to stage %s: %w", a.name, err)
			}
			pending[i] = pf
			if _, err := pf.Write(data); err != nil {
				return fmt.Errorf("failed to stage %s: %w", a.name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for i, pf := range pending {
		if err := pf.CloseAtomicallyReplace(); err != nil {
			return fmt.Errorf("failed to replace %s: %w", artifacts[i].name, err)
		}
		w.logger.Debugw("artifact written", "path", filepath.Join(w.dir, artifacts[i].name))
	}
	return nil
}
