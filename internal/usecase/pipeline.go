package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/naka-gawa/pr-portfolio/internal/domain"
	"github.com/naka-gawa/pr-portfolio/internal/gateway"
)

// Stages reported in StageError.
const (
	StageFetch = "fetch"
	StageWrite = "write"
)

// DefaultTimeLayout is the textual layout of the capture timestamp.
const DefaultTimeLayout = "2006-01-02 15:04:05"

// SnapshotWriter persists a snapshot.
type SnapshotWriter interface {
	Write(ctx context.Context, snap *domain.Snapshot) error
}

// PreviewRenderer draws the summary image for a snapshot.
type PreviewRenderer interface {
	Render(ctx context.Context, counts domain.StatusCounts, lastUpdated string) error
}

// RunRecorder stores the outcome of a run.
type RunRecorder interface {
	Record(ctx context.Context, report *domain.RunReport) error
}

// StageError is a fatal pipeline error tagged with the stage it happened in.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// FormatTimestamp renders t in loc using layout.
func FormatTimestamp(t time.Time, loc *time.Location, layout string) string {
	return t.In(loc).Format(layout)
}

// Pipeline runs one complete fetch, aggregate and write cycle.
type Pipeline struct {
	source     gateway.PageSource
	normalizer *Normalizer
	writer     SnapshotWriter
	preview    PreviewRenderer
	recorder   RunRecorder
	logger     *zap.SugaredLogger
	now        func() time.Time
	location   *time.Location
	layout     string
	subject    string
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithPreview renders a preview image after every successful write.
func WithPreview(r PreviewRenderer) Option {
	return func(p *Pipeline) { p.preview = r }
}

// WithRecorder stores every run report, successful or not.
func WithRecorder(r RunRecorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithTimestampFormat sets the zone and layout of the textual capture timestamp.
func WithTimestampFormat(loc *time.Location, layout string) Option {
	return func(p *Pipeline) {
		p.location = loc
		p.layout = layout
	}
}

// WithSubject names the user whose pull requests are collected, for reporting.
func WithSubject(handle string) Option {
	return func(p *Pipeline) { p.subject = handle }
}

// NewPipeline creates a new Pipeline instance.
func NewPipeline(source gateway.PageSource, normalizer *Normalizer, writer SnapshotWriter, logger *zap.SugaredLogger, opts ...Option) *Pipeline {
	p := &Pipeline{
		source:     source,
		normalizer: normalizer,
		writer:     writer,
		logger:     logger,
		now:        time.Now,
		location:   time.UTC,
		layout:     DefaultTimeLayout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes the pipeline. Either the snapshot is written in full or the run fails
// with a *StageError and nothing is written. The report is returned in both cases.
func (p *Pipeline) Run(ctx context.Context) (*domain.Snapshot, *domain.RunReport, error) {
	capturedAt := p.now()
	report := &domain.RunReport{
		ID:        uuid.NewString(),
		Subject:   p.subject,
		StartedAt: capturedAt,
	}

	snap, err := p.run(ctx, capturedAt, report)
	report.FinishedAt = p.now()
	if err != nil {
		report.Status = domain.RunFailed
		report.Error = err.Error()
		var se *StageError
		if errors.As(err, &se) {
			report.Stage = se.Stage
		}
		snap = nil
	} else {
		report.Status = domain.RunSucceeded
	}

	if p.recorder != nil {
		// Cancelled runs are recorded too.
		if rerr := p.recorder.Record(context.WithoutCancel(ctx), report); rerr != nil {
			p.logger.Warnw("failed to record run history", "error", rerr)
		}
	}
	return snap, report, err
}

func (p *Pipeline) run(ctx context.Context, capturedAt time.Time, report *domain.RunReport) (*domain.Snapshot, error) {
	p.logger.Infow("[1/4] Fetching pull requests...", "subject", p.subject)
	prs, err := p.collect(ctx, report)
	if err != nil {
		return nil, &StageError{Stage: StageFetch, Err: err}
	}
	if report.Skipped > 0 {
		p.logger.Warnw("records skipped", "count", report.Skipped)
	}
	if report.DefaultedStatus > 0 {
		p.logger.Warnw("records with unrecognized state treated as open", "count", report.DefaultedStatus)
	}

	p.logger.Infow("[2/4] Aggregating pull requests...", "count", len(prs))
	snap := Aggregate(prs, FormatTimestamp(capturedAt, p.location, p.layout), capturedAt)
	report.Counts = snap.Counts
	report.Organizations = len(snap.Organizations)
	p.logger.Infow("Aggregation complete.", "prs", snap.TotalCount, "organizations", len(snap.Organizations))

	p.logger.Infow("[3/4] Writing snapshot...")
	if err := p.writer.Write(ctx, snap); err != nil {
		return nil, &StageError{Stage: StageWrite, Err: err}
	}

	if p.preview != nil {
		p.logger.Infow("[4/4] Rendering preview image...")
		if err := p.preview.Render(ctx, snap.Counts, snap.LastUpdated); err != nil {
			report.PreviewFailed = true
			p.logger.Warnw("preview rendering failed, continuing without it", "error", err)
		}
	}
	return snap, nil
}

// collect drains the page iterator and normalizes every record in arrival order.
func (p *Pipeline) collect(ctx context.Context, report *domain.RunReport) ([]domain.PullRequest, error) {
	it := gateway.NewPageIterator(p.source, p.logger)
	prs := make([]domain.PullRequest, 0)
	for it.Next(ctx) {
		for _, raw := range it.Records() {
			pr, defaulted, err := p.normalizer.Normalize(raw)
			if err != nil {
				report.Skipped++
				p.logger.Debugw("skipping record", "error", err)
				continue
			}
			if defaulted {
				report.DefaultedStatus++
				p.logger.Warnw("unrecognized pull request state", "state", raw.State, "id", pr.ID)
			}
			prs = append(prs, pr)
		}
	}
	report.Fetched = it.Fetched()
	if err := it.Err(); err != nil {
		return nil, err
	}
	return prs, nil
}
