// Package preview draws the social preview image summarizing a snapshot.
package preview

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/google/renameio/v2"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	xdraw "golang.org/x/image/draw"

	"github.com/naka-gawa/pr-portfolio/internal/domain"
)

// Image dimensions.
const (
	Width  = 1200
	Height = 630
)

// DefaultTitle is drawn under the subject handle.
const DefaultTitle = "GitHub PR Portfolio"

const (
	padding    = 60.0
	avatarSize = 100.0
)

var (
	gradientStops = []string{"#1a1a2e", "#16213e", "#0f3460"}
	accentColor   = "#4a9eff"
	labelColor    = "#8b9dc3"
	footerColor   = "#6b7280"
	statusColors  = map[domain.Status]string{
		domain.StatusOpen:   "#22c55e",
		domain.StatusMerged: "#a855f7",
		domain.StatusClosed: "#ef4444",
	}
)

// Options configures a Renderer.
type Options struct {
	Subject   string
	Title     string
	AvatarURL string
	Path      string
	FontPaths []string
	FontURL   string
}

// Renderer writes a PNG preview to Options.Path.
type Renderer struct {
	opts    Options
	avatars AvatarSource
	regular []FontProvider
	bold    []FontProvider
	logger  *zap.SugaredLogger
}

// NewRenderer creates a Renderer. A nil avatars source draws a placeholder instead of the avatar.
func NewRenderer(opts Options, avatars AvatarSource, logger *zap.SugaredLogger) *Renderer {
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}
	return &Renderer{
		opts:    opts,
		avatars: avatars,
		regular: DefaultProviders(opts.FontPaths, opts.FontURL, false),
		bold:    DefaultProviders(opts.FontPaths, opts.FontURL, true),
		logger:  logger,
	}
}

// Render draws the summary for counts and atomically replaces the image on disk.
func (r *Renderer) Render(ctx context.Context, counts domain.StatusCounts, lastUpdated string) error {
	regular, err := ResolveFont(ctx, r.regular, r.logger)
	if err != nil {
		return fmt.Errorf("failed to resolve font: %w", err)
	}
	bold, err := ResolveFont(ctx, r.bold, r.logger)
	if err != nil {
		return fmt.Errorf("failed to resolve font: %w", err)
	}

	var avatar image.Image
	if r.avatars != nil && r.opts.AvatarURL != "" {
		avatar, err = r.avatars.Fetch(ctx, r.opts.AvatarURL)
		if err != nil {
			r.logger.Warnw("avatar unavailable, drawing placeholder", "url", r.opts.AvatarURL, "error", err)
			avatar = nil
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	dc := gg.NewContext(Width, Height)
	r.draw(dc, faces{regular: regular, bold: bold}, avatar, counts, lastUpdated)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return fmt.Errorf("failed to encode preview: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(r.opts.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create preview directory: %w", err)
	}
	if err := renameio.WriteFile(r.opts.Path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write preview: %w", err)
	}
	r.logger.Debugw("preview written", "path", r.opts.Path)
	return nil
}

type faces struct {
	regular *truetype.Font
	bold    *truetype.Font
}

func (f faces) face(size float64, bold bool) font.Face {
	src := f.regular
	if bold {
		src = f.bold
	}
	return truetype.NewFace(src, &truetype.Options{Size: size})
}

func (r *Renderer) draw(dc *gg.Context, f faces, avatar image.Image, counts domain.StatusCounts, lastUpdated string) {
	grad := gg.NewLinearGradient(0, 0, Width, Height)
	for i, stop := range gradientStops {
		grad.AddColorStop(float64(i)/float64(len(gradientStops)-1), hexColor(stop))
	}
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, Width, Height)
	dc.Fill()

	// Header
	cx, cy := padding+avatarSize/2, padding+avatarSize/2
	drawAvatar(dc, avatar, cx, cy)

	textX := padding + avatarSize + 24
	dc.SetFontFace(f.face(48, true))
	dc.SetColor(color.White)
	dc.DrawStringAnchored(r.opts.Subject, textX, cy-18, 0, 0.5)
	dc.SetFontFace(f.face(28, false))
	dc.SetHexColor(labelColor)
	dc.DrawStringAnchored(r.opts.Title, textX, cy+26, 0, 0.5)

	// Stats panel
	panelY := padding + avatarSize + 40
	panelH := Height - panelY - padding - 64
	dc.SetRGBA(1, 1, 1, 0.1)
	dc.DrawRoundedRectangle(padding, panelY, Width-2*padding, panelH, 20)
	dc.Fill()

	x := padding + 40
	y := panelY + 40 + 18
	dc.SetFontFace(f.face(36, true))
	x = drawLabel(dc, "Total PRs:", x, y, labelColor) + 12
	drawLabel(dc, strconv.Itoa(counts.Total), x, y, accentColor)

	x = padding + 40
	y += 36 + 24 + 14
	for _, s := range []struct {
		label  string
		status domain.Status
		n      int
	}{
		{"Open:", domain.StatusOpen, counts.Open},
		{"Merged:", domain.StatusMerged, counts.Merged},
		{"Closed:", domain.StatusClosed, counts.Closed},
	} {
		c := statusColors[s.status]
		dc.SetHexColor(c)
		dc.DrawCircle(x+8, y, 8)
		dc.Fill()
		x += 16 + 8

		dc.SetFontFace(f.face(28, false))
		x = drawLabel(dc, s.label, x, y, labelColor) + 8
		dc.SetFontFace(f.face(28, true))
		x = drawLabel(dc, strconv.Itoa(s.n), x, y, c) + 40
	}

	// Footer
	dc.SetFontFace(f.face(24, false))
	dc.SetHexColor(footerColor)
	dc.DrawStringAnchored("Last updated: "+lastUpdated, Width/2, Height-padding-12, 0.5, 0.5)
}

// drawLabel draws s vertically centered on y and returns the x where it ends.
func drawLabel(dc *gg.Context, s string, x, y float64, hex string) float64 {
	dc.SetHexColor(hex)
	dc.DrawStringAnchored(s, x, y, 0, 0.5)
	w, _ := dc.MeasureString(s)
	return x + w
}

func drawAvatar(dc *gg.Context, avatar image.Image, cx, cy float64) {
	r := avatarSize / 2
	if avatar == nil {
		dc.SetRGBA(74.0/255, 158.0/255, 1, 0.3)
		dc.DrawCircle(cx, cy, r)
		dc.Fill()
	} else {
		scaled := image.NewRGBA(image.Rect(0, 0, int(avatarSize), int(avatarSize)))
		xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), avatar, avatar.Bounds(), xdraw.Over, nil)
		dc.Push()
		dc.DrawCircle(cx, cy, r)
		dc.Clip()
		dc.DrawImage(scaled, int(cx-r), int(cy-r))
		dc.ResetClip()
		dc.Pop()
	}
	dc.SetHexColor(accentColor)
	dc.SetLineWidth(4)
	dc.DrawCircle(cx, cy, r)
	dc.Stroke()
}

func hexColor(s string) color.RGBA {
	var c color.RGBA
	c.A = 0xff
	_, _ = fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B)
	return c
}
