package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/RMahshie/alloptic/internal/repository"
	"github.com/RMahshie/alloptic/pkg/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PostgresReportRepository implements ReportRepository for PostgreSQL
type PostgresReportRepository struct {
	db *sql.DB
}

// NewPostgresReportRepository creates a new PostgreSQL report repository
func NewPostgresReportRepository(db *sql.DB) repository.ReportRepository {
	return &PostgresReportRepository{db: db}
}

const schema = `
CREATE TABLE IF NOT EXISTS reports (
	id UUID PRIMARY KEY,
	method TEXT NOT NULL,
	fraction DOUBLE PRECISION NOT NULL,
	phase_a TEXT NOT NULL,
	phase_b TEXT NOT NULL,
	spectrum_a_key TEXT,
	spectrum_b_key TEXT,
	status TEXT NOT NULL DEFAULT 'pending',
	progress INTEGER NOT NULL DEFAULT 0,
	error_message TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	completed_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS report_results (
	id UUID PRIMARY KEY,
	report_id UUID NOT NULL UNIQUE REFERENCES reports(id) ON DELETE CASCADE,
	alloy TEXT NOT NULL,
	report JSONB NOT NULL,
	artifacts TEXT[] NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at DESC);
`

// Migrate creates the report tables if they do not exist
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate report schema: %w", err)
	}
	return nil
}

// Create inserts a new report job, assigning ID and timestamps when unset
func (r *PostgresReportRepository) Create(ctx context.Context, job *models.ReportJob) error {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	if job.Status == "" {
		job.Status = models.StatusPending
	}
	now := time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	if job.UpdatedAt.IsZero() {
		job.UpdatedAt = now
	}

	query := `
		INSERT INTO reports (id, method, fraction, phase_a, phase_b, spectrum_a_key, spectrum_b_key, status, progress, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.ExecContext(ctx, query,
		job.ID,
		job.Method,
		job.Fraction,
		job.PhaseA,
		job.PhaseB,
		job.SpectrumAKey,
		job.SpectrumBKey,
		job.Status,
		job.Progress,
		job.CreatedAt,
		job.UpdatedAt)

	return err
}

const selectReport = `
	SELECT id, method, fraction, phase_a, phase_b, spectrum_a_key, spectrum_b_key,
	       status, progress, error_message, created_at, updated_at, completed_at
	FROM reports`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*models.ReportJob, error) {
	var job models.ReportJob
	var keyA, keyB, errorMsg sql.NullString
	var completedAt sql.NullTime

	err := row.Scan(
		&job.ID,
		&job.Method,
		&job.Fraction,
		&job.PhaseA,
		&job.PhaseB,
		&keyA,
		&keyB,
		&job.Status,
		&job.Progress,
		&errorMsg,
		&job.CreatedAt,
		&job.UpdatedAt,
		&completedAt)
	if err != nil {
		return nil, err
	}

	if keyA.Valid {
		job.SpectrumAKey = &keyA.String
	}
	if keyB.Valid {
		job.SpectrumBKey = &keyB.String
	}
	if errorMsg.Valid {
		job.ErrorMsg = &errorMsg.String
	}
	if completedAt.Valid {
		job.CompletedAt = &completedAt.Time
	}
	return &job, nil
}

// GetByID retrieves a report job by ID
func (r *PostgresReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ReportJob, error) {
	job, err := scanReport(r.db.QueryRowContext(ctx, selectReport+` WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return job, err
}

// List returns the most recent report jobs
func (r *PostgresReportRepository) List(ctx context.Context, limit int) ([]*models.ReportJob, error) {
	rows, err := r.db.QueryContext(ctx, selectReport+` ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*models.ReportJob
	for rows.Next() {
		job, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// UpdateStatus updates the status and progress of a report job
func (r *PostgresReportRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, progress int) error {
	query := `
		UPDATE reports
		SET status = $1, progress = $2, updated_at = NOW(),
		    completed_at = CASE WHEN $1 = 'completed' THEN NOW() ELSE completed_at END
		WHERE id = $3`

	_, err := r.db.ExecContext(ctx, query, status, progress, id)
	return err
}

// ClaimPending moves a pending job to processing. Only one caller can claim a
// job; the others get repository.ErrNotPending.
func (r *PostgresReportRepository) ClaimPending(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE reports
		SET status = 'processing', progress = 0, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to claim report: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to claim report: %w", err)
	}
	if n == 0 {
		return repository.ErrNotPending
	}
	return nil
}

// UpdateError marks a report job failed with the given message
func (r *PostgresReportRepository) UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error {
	query := `
		UPDATE reports
		SET status = 'failed', error_message = $1, updated_at = NOW()
		WHERE id = $2`

	_, err := r.db.ExecContext(ctx, query, errorMsg, id)
	return err
}

// StoreResults stores the computed report of a job
func (r *PostgresReportRepository) StoreResults(ctx context.Context, results *models.ReportResults) error {
	if results.ID == "" {
		results.ID = uuid.New().String()
	}
	if results.CreatedAt.IsZero() {
		results.CreatedAt = time.Now().UTC()
	}

	report, err := json.Marshal(results.Report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	query := `
		INSERT INTO report_results (id, report_id, alloy, report, artifacts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = r.db.ExecContext(ctx, query,
		results.ID,
		results.ReportID,
		results.Alloy,
		string(report),
		pq.Array(results.Artifacts),
		results.CreatedAt)

	return err
}

// GetResults retrieves the stored results of a report job
func (r *PostgresReportRepository) GetResults(ctx context.Context, reportID uuid.UUID) (*models.ReportResults, error) {
	query := `
		SELECT id, report_id, alloy, report, artifacts, created_at
		FROM report_results
		WHERE report_id = $1`

	var results models.ReportResults
	var report []byte

	err := r.db.QueryRowContext(ctx, query, reportID).Scan(
		&results.ID,
		&results.ReportID,
		&results.Alloy,
		&report,
		pq.Array(&results.Artifacts),
		&results.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	results.Report = &models.AlloyReport{}
	if err := json.Unmarshal(report, results.Report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}

	return &results, nil
}
