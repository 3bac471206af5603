package repository

import (
	"context"
	"errors"

	"github.com/RMahshie/alloptic/pkg/models"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a report or its results do not exist
var ErrNotFound = errors.New("not found")

// ErrNotPending is returned when a report job can no longer be claimed for processing
var ErrNotPending = errors.New("report is not pending")

// ReportRepository defines the interface for report job operations
type ReportRepository interface {
	Create(ctx context.Context, job *models.ReportJob) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ReportJob, error)
	List(ctx context.Context, limit int) ([]*models.ReportJob, error)
	ClaimPending(ctx context.Context, id uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, progress int) error
	UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error
	StoreResults(ctx context.Context, results *models.ReportResults) error
	GetResults(ctx context.Context, reportID uuid.UUID) (*models.ReportResults, error)
}

// RunRecord is one locally computed alloy, kept by the CLI
type RunRecord struct {
	ID         string  `db:"id"`
	Alloy      string  `db:"alloy"`
	Method     string  `db:"method"`
	Fraction   float64 `db:"fraction"`
	Samples    int     `db:"samples"`
	Unresolved int     `db:"unresolved"`
	OutputDir  string  `db:"output_dir"`
	CreatedAt  string  `db:"created_at"`
}

// HistoryRepository defines the interface for the local run history
type HistoryRepository interface {
	Record(ctx context.Context, run *RunRecord) error
	Recent(ctx context.Context, limit int) ([]RunRecord, error)
	Close() error
}
