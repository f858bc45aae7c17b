package preview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/golang/freetype/truetype"
	"go.uber.org/zap"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// ErrNoFont is returned when no provider in the chain yields a usable font.
var ErrNoFont = errors.New("no usable font found")

// FontProvider supplies raw TrueType font bytes.
type FontProvider interface {
	Name() string
	Load(ctx context.Context) ([]byte, error)
}

// FileFont reads a font from the local filesystem.
type FileFont struct {
	Path string
}

func (f FileFont) Name() string { return "file:" + f.Path }

func (f FileFont) Load(_ context.Context) ([]byte, error) {
	return os.ReadFile(f.Path)
}

// RemoteFont downloads a font over HTTP.
type RemoteFont struct {
	URL    string
	Client *http.Client
}

func (f RemoteFont) Name() string { return "remote:" + f.URL }

func (f RemoteFont) Load(ctx context.Context) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch font: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch font: %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// EmbeddedFont returns the Go fonts compiled into the binary. It never fails.
type EmbeddedFont struct {
	Bold bool
}

func (f EmbeddedFont) Name() string {
	if f.Bold {
		return "embedded:gobold"
	}
	return "embedded:goregular"
}

func (f EmbeddedFont) Load(_ context.Context) ([]byte, error) {
	if f.Bold {
		return gobold.TTF, nil
	}
	return goregular.TTF, nil
}

// DefaultProviders builds the lookup order: configured paths, then the optional
// remote URL, then the embedded font.
func DefaultProviders(paths []string, remoteURL string, bold bool) []FontProvider {
	providers := make([]FontProvider, 0, len(paths)+2)
	for _, p := range paths {
		providers = append(providers, FileFont{Path: p})
	}
	if remoteURL != "" {
		providers = append(providers, RemoteFont{URL: remoteURL})
	}
	return append(providers, EmbeddedFont{Bold: bold})
}

// ResolveFont returns the first font in providers that loads and parses.
func ResolveFont(ctx context.Context, providers []FontProvider, logger *zap.SugaredLogger) (*truetype.Font, error) {
	for _, p := range providers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := p.Load(ctx)
		if err != nil {
			logger.Debugw("font provider unavailable", "provider", p.Name(), "error", err)
			continue
		}
		f, err := truetype.Parse(data)
		if err != nil {
			logger.Debugw("font provider returned unparsable data", "provider", p.Name(), "error", err)
			continue
		}
		logger.Debugw("font resolved", "provider", p.Name())
		return f, nil
	}
	return nil, ErrNoFont
}
