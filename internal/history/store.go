// Package history keeps an append-only ledger of pipeline runs in SQLite.
package history

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/naka-gawa/pr-portfolio/internal/domain"
)

// ErrInvalidLimit is returned by Recent for non-positive limits.
var ErrInvalidLimit = errors.New("limit must be positive")

// runModel is the GORM model for the runs table.
type runModel struct {
	ID              string    `gorm:"primaryKey"`
	Subject         string    `gorm:"not null;index:idx_subject"`
	StartedAt       time.Time `gorm:"not null;index:idx_started_at"`
	FinishedAt      time.Time `gorm:"not null"`
	Status          string    `gorm:"not null;check:status IN ('succeeded','failed')"`
	Stage           string    `gorm:"not null;default:''"`
	Error           string    `gorm:"not null;default:''"`
	Fetched         int       `gorm:"not null;default:0"`
	Skipped         int       `gorm:"not null;default:0"`
	DefaultedStatus int       `gorm:"not null;default:0"`
	PreviewFailed   bool      `gorm:"not null;default:false"`
	Total           int       `gorm:"not null;default:0"`
	Open            int       `gorm:"not null;default:0"`
	Merged          int       `gorm:"not null;default:0"`
	Closed          int       `gorm:"not null;default:0"`
	Organizations   int       `gorm:"not null;default:0"`
}

// TableName specifies the table name for GORM
func (runModel) TableName() string { return "runs" }

func toModel(r *domain.RunReport) runModel {
	return runModel{
		ID:              r.ID,
		Subject:         r.Subject,
		StartedAt:       r.StartedAt.UTC(),
		FinishedAt:      r.FinishedAt.UTC(),
		Status:          string(r.Status),
		Stage:           r.Stage,
		Error:           r.Error,
		Fetched:         r.Fetched,
		Skipped:         r.Skipped,
		DefaultedStatus: r.DefaultedStatus,
		PreviewFailed:   r.PreviewFailed,
		Total:           r.Counts.Total,
		Open:            r.Counts.Open,
		Merged:          r.Counts.Merged,
		Closed:          r.Counts.Closed,
		Organizations:   r.Organizations,
	}
}

func (m runModel) toDomain() domain.RunReport {
	return domain.RunReport{
		ID:              m.ID,
		Subject:         m.Subject,
		StartedAt:       m.StartedAt.UTC(),
		FinishedAt:      m.FinishedAt.UTC(),
		Status:          domain.RunStatus(m.Status),
		Stage:           m.Stage,
		Error:           m.Error,
		Fetched:         m.Fetched,
		Skipped:         m.Skipped,
		DefaultedStatus: m.DefaultedStatus,
		PreviewFailed:   m.PreviewFailed,
		Counts: domain.StatusCounts{
			Total:  m.Total,
			Open:   m.Open,
			Merged: m.Merged,
			Closed: m.Closed,
		},
		Organizations: m.Organizations,
	}
}

// Store records run reports.
type Store struct {
	db *gorm.DB
}

// Open opens or creates the ledger at path.
func Open(path string, logger *zap.SugaredLogger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
		Logger:  newGormLogger(logger),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	applyPragmas(db, logger)

	if err := db.AutoMigrate(&runModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate history schema: %w", err)
	}
	return &Store{db: db}, nil
}

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
}

// applyPragmas tunes the connection. The ledger still works with SQLite defaults, so
// failures are only logged.
func applyPragmas(db *gorm.DB, logger *zap.SugaredLogger) {
	for _, p := range pragmas {
		if err := db.Exec(p).Error; err != nil {
			logger.Warnw("failed to apply sqlite pragma", "pragma", p, "error", err)
		}
	}
}

// Record appends report to the ledger.
func (s *Store) Record(ctx context.Context, report *domain.RunReport) error {
	m := toModel(report)
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("failed to record run %s: %w", report.ID, err)
	}
	return nil
}

// Recent returns up to limit reports, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]domain.RunReport, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	var models []runModel
	err := s.db.WithContext(ctx).
		Order("started_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	reports := make([]domain.RunReport, 0, len(models))
	for _, m := range models {
		reports = append(reports, m.toDomain())
	}
	return reports, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
