package processing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/RMahshie/alloptic/internal/alloy"
	"github.com/RMahshie/alloptic/internal/export"
	"github.com/RMahshie/alloptic/internal/observability"
	"github.com/RMahshie/alloptic/internal/repository"
	"github.com/RMahshie/alloptic/internal/storage"
	"github.com/RMahshie/alloptic/internal/tabular"
	"github.com/RMahshie/alloptic/pkg/models"
)

type ProcessingService interface {
	ProcessReport(ctx context.Context, reportID uuid.UUID) error
}

type processingService struct {
	s3         storage.S3Service
	repository repository.ReportRepository
	alloy      *alloy.Service
	chart      bool
}

func NewProcessingService(s3Service storage.S3Service, repo repository.ReportRepository, alloySvc *alloy.Service, chart bool) ProcessingService {
	return &processingService{
		s3:         s3Service,
		repository: repo,
		alloy:      alloySvc,
		chart:      chart,
	}
}

// ProcessReport runs one report job end to end. Problems with the job's own
// inputs mark it failed and return nil; repository and storage write errors
// are returned.
func (s *processingService) ProcessReport(ctx context.Context, reportID uuid.UUID) error {
	// Step 1: Update to processing status
	if err := s.repository.UpdateStatus(ctx, reportID, models.StatusProcessing, 10); err != nil {
		return err
	}

	// Step 2: Get job details
	job, err := s.repository.GetByID(ctx, reportID)
	if err != nil {
		return err
	}
	if job.SpectrumAKey == nil || job.SpectrumBKey == nil {
		return s.fail(ctx, reportID, "Report has no uploaded spectra")
	}

	// Step 3: Download both spectra
	if err := s.repository.UpdateStatus(ctx, reportID, models.StatusProcessing, 20); err != nil {
		return err
	}

	var rawA, rawB []byte
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rawA, err = s.s3.DownloadFile(gctx, *job.SpectrumAKey)
		return err
	})
	g.Go(func() error {
		var err error
		rawB, err = s.s3.DownloadFile(gctx, *job.SpectrumBKey)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Str("reportID", job.ID).Msg("Spectrum download failed")
		return s.fail(ctx, reportID, "Failed to download spectrum")
	}

	// Step 4: Parse spectra
	if err := s.repository.UpdateStatus(ctx, reportID, models.StatusProcessing, 40); err != nil {
		return err
	}
	a, err := tabular.ReadSpectrum(bytes.NewReader(rawA))
	if err != nil {
		return s.fail(ctx, reportID, fmt.Sprintf("Invalid spectrum for %s: %v", job.PhaseA, err))
	}
	b, err := tabular.ReadSpectrum(bytes.NewReader(rawB))
	if err != nil {
		return s.fail(ctx, reportID, fmt.Sprintf("Invalid spectrum for %s: %v", job.PhaseB, err))
	}

	// Step 5: Compute the report
	if err := s.repository.UpdateStatus(ctx, reportID, models.StatusProcessing, 60); err != nil {
		return err
	}
	cfg := alloy.Config{Method: job.Method, Fraction: job.Fraction, PhaseA: job.PhaseA, PhaseB: job.PhaseB}
	start := time.Now()
	report, err := s.alloy.Compute(cfg, a, b)
	if err != nil {
		observability.RecordReport(job.Method, 0, time.Since(start), false)
		return s.fail(ctx, reportID, fmt.Sprintf("Report computation failed: %v", err))
	}
	observability.RecordReport(job.Method, len(report.Unresolved), time.Since(start), true)

	// Step 6: Render and upload result files
	if err := s.repository.UpdateStatus(ctx, reportID, models.StatusProcessing, 80); err != nil {
		return err
	}
	artifacts, err := export.Render(report, export.Options{Chart: s.chart})
	if err != nil {
		return s.fail(ctx, reportID, fmt.Sprintf("Failed to render results: %v", err))
	}
	keys := make([]string, 0, len(artifacts))
	for _, artifact := range artifacts {
		key := storage.ResultKey(job.ID, artifact.Name)
		if err := s.s3.UploadFile(ctx, key, artifact.ContentType, artifact.Data); err != nil {
			s.removeUploaded(ctx, keys)
			return err
		}
		keys = append(keys, key)
	}

	// Step 7: Store results
	if err := s.repository.UpdateStatus(ctx, reportID, models.StatusProcessing, 90); err != nil {
		return err
	}
	results := &models.ReportResults{
		ID:        uuid.New().String(),
		ReportID:  job.ID,
		Alloy:     report.Alloy,
		Report:    report,
		Artifacts: keys,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repository.StoreResults(ctx, results); err != nil {
		s.removeUploaded(ctx, keys)
		return err
	}

	// Step 8: Mark complete
	if err := s.repository.UpdateStatus(ctx, reportID, models.StatusCompleted, 100); err != nil {
		return err
	}

	log.Info().
		Str("reportID", job.ID).
		Str("alloy", report.Alloy).
		Int("artifacts", len(keys)).
		Msg("Report completed")
	return nil
}

// removeUploaded deletes result files of a run whose results were not stored.
func (s *processingService) removeUploaded(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.s3.DeleteFile(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Failed to remove partial result file")
		}
	}
}

// fail records msg on the job. Only a failure to record it is returned.
func (s *processingService) fail(ctx context.Context, reportID uuid.UUID, msg string) error {
	log.Warn().Str("reportID", reportID.String()).Str("reason", msg).Msg("Report failed")
	if err := s.repository.UpdateError(ctx, reportID, msg); err != nil {
		return errors.Join(errors.New(msg), err)
	}
	return nil
}
