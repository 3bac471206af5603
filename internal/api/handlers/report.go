package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RMahshie/alloptic/internal/alloy"
	"github.com/RMahshie/alloptic/internal/mixing"
	"github.com/RMahshie/alloptic/internal/observability"
	"github.com/RMahshie/alloptic/internal/processing"
	"github.com/RMahshie/alloptic/internal/repository"
	"github.com/RMahshie/alloptic/internal/storage"
	"github.com/RMahshie/alloptic/pkg/models"
	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ReportHandler handles alloy report HTTP requests
type ReportHandler struct {
	repo          repository.ReportRepository
	s3Service     storage.S3Service
	processingSvc processing.ProcessingService
	alloySvc      *alloy.Service
}

// NewReportHandler creates a new report handler
func NewReportHandler(repo repository.ReportRepository, s3Service storage.S3Service, processingSvc processing.ProcessingService, alloySvc *alloy.Service) *ReportHandler {
	return &ReportHandler{
		repo:          repo,
		s3Service:     s3Service,
		processingSvc: processingSvc,
		alloySvc:      alloySvc,
	}
}

// Mix computes a report synchronously from inline spectra
func (h *ReportHandler) Mix(ctx context.Context, req *models.MixRequest) (*models.MixResponse, error) {
	cfg := alloy.FromParams(req.Body.MixParams)
	log.Info().Str("method", cfg.Method).Float64("fraction", cfg.Fraction).Msg("Mix request received")

	if err := req.Body.SpectrumA.Validate(); err != nil {
		return nil, huma.Error422UnprocessableEntity("Invalid spectrum for phase A: "+err.Error(), err)
	}
	if err := req.Body.SpectrumB.Validate(); err != nil {
		return nil, huma.Error422UnprocessableEntity("Invalid spectrum for phase B: "+err.Error(), err)
	}

	start := time.Now()
	report, err := h.alloySvc.Compute(cfg, req.Body.SpectrumA, req.Body.SpectrumB)
	if err != nil {
		observability.RecordReport(cfg.Method, 0, time.Since(start), false)
		return nil, computeError(err)
	}
	observability.RecordReport(cfg.Method, len(report.Unresolved), time.Since(start), true)

	return &models.MixResponse{Body: report}, nil
}

// computeError maps the report error taxonomy onto HTTP statuses
func computeError(err error) error {
	var unsupported *mixing.UnsupportedMethodError
	var fraction *alloy.FractionRangeError
	var mismatch *models.DataMismatchError

	switch {
	case errors.As(err, &unsupported), errors.As(err, &fraction), errors.Is(err, alloy.ErrMissingLabel):
		return huma.Error400BadRequest(err.Error(), err)
	case errors.As(err, &mismatch):
		return huma.Error422UnprocessableEntity(err.Error(), err)
	default:
		return huma.Error500InternalServerError("Failed to compute report", err)
	}
}

// CreateReport creates a new report job and returns upload URLs for both spectra
func (h *ReportHandler) CreateReport(ctx context.Context, req *models.CreateReportRequest) (*models.CreateReportResponse, error) {
	cfg := alloy.FromParams(req.Body)
	if err := cfg.Validate(); err != nil {
		return nil, huma.Error400BadRequest(err.Error(), err)
	}

	reportID := uuid.New()
	keyA := storage.SpectrumKey(reportID.String(), "a")
	keyB := storage.SpectrumKey(reportID.String(), "b")
	log.Info().Str("reportID", reportID.String()).Str("alloy", cfg.Label()).Msg("Creating new report")

	uploadA, err := h.s3Service.GenerateUploadURL(ctx, keyA, storage.ContentTypeText)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to prepare upload. Please try again.", err)
	}
	uploadB, err := h.s3Service.GenerateUploadURL(ctx, keyB, storage.ContentTypeText)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to prepare upload. Please try again.", err)
	}

	now := time.Now()
	job := &models.ReportJob{
		ID:           reportID.String(),
		Method:       cfg.Method,
		Fraction:     cfg.Fraction,
		PhaseA:       cfg.PhaseA,
		PhaseB:       cfg.PhaseB,
		SpectrumAKey: &keyA,
		SpectrumBKey: &keyB,
		Status:       models.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.repo.Create(ctx, job); err != nil {
		return nil, huma.Error500InternalServerError("Failed to create report", err)
	}

	log.Info().Str("reportID", job.ID).Msg("Report created, returning upload URLs")
	return &models.CreateReportResponse{
		Body: models.CreateReportResponseBody{
			ID:         job.ID,
			UploadURLA: uploadA,
			UploadURLB: uploadB,
			ExpiresIn:  int(storage.UploadURLExpiry.Seconds()),
		},
	}, nil
}

// GetReportStatus returns the current status of a report job
func (h *ReportHandler) GetReportStatus(ctx context.Context, req *models.GetReportStatusRequest) (*models.GetReportStatusResponse, error) {
	reportID, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid report ID", err)
	}

	job, err := h.repo.GetByID(ctx, reportID)
	if err != nil {
		return nil, huma.Error404NotFound("Report not found", err)
	}

	message := statusMessage(job.Status, job.Progress)
	if job.Status == models.StatusFailed && job.ErrorMsg != nil {
		message = *job.ErrorMsg
	}

	var resultsID *string
	if job.Status == models.StatusCompleted {
		results, err := h.repo.GetResults(ctx, reportID)
		if err == nil && results != nil {
			resultsID = &results.ID
		}
	}

	return &models.GetReportStatusResponse{
		Body: models.GetReportStatusResponseBody{
			ID:        job.ID,
			Status:    job.Status,
			Progress:  job.Progress,
			Message:   message,
			ResultsID: resultsID,
		},
	}, nil
}

// GetReportResults returns the computed report of a completed job
func (h *ReportHandler) GetReportResults(ctx context.Context, req *models.GetReportResultsRequest) (*models.GetReportResultsResponse, error) {
	reportID, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid report ID", err)
	}

	job, err := h.repo.GetByID(ctx, reportID)
	if err != nil {
		return nil, huma.Error404NotFound("Report not found", err)
	}

	if job.Status != models.StatusCompleted {
		return nil, huma.Error409Conflict("Report not yet completed",
			fmt.Errorf("report status is %s", job.Status))
	}

	results, err := h.repo.GetResults(ctx, reportID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to get results", err)
	}

	return &models.GetReportResultsResponse{
		Body: models.GetReportResultsResponseBody{
			ID:        results.ID,
			Report:    results.Report,
			Artifacts: results.Artifacts,
			Downloads: h.downloadURLs(ctx, results.Artifacts),
			CreatedAt: results.CreatedAt,
		},
	}, nil
}

// downloadURLs signs a download URL per artifact. Keys that fail to sign are left out.
func (h *ReportHandler) downloadURLs(ctx context.Context, keys []string) map[string]string {
	if len(keys) == 0 {
		return nil
	}
	urls := make(map[string]string, len(keys))
	for _, key := range keys {
		url, err := h.s3Service.GenerateDownloadURL(ctx, key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Failed to sign download URL")
			continue
		}
		urls[key] = url
	}
	return urls
}

// ListReports returns the most recent report jobs
func (h *ReportHandler) ListReports(ctx context.Context, req *models.ListReportsRequest) (*models.ListReportsResponse, error) {
	jobs, err := h.repo.List(ctx, req.Limit)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to list reports", err)
	}
	if jobs == nil {
		jobs = []*models.ReportJob{}
	}
	resp := &models.ListReportsResponse{}
	resp.Body.Reports = jobs
	return resp, nil
}

// StartProcessing starts processing the uploaded spectra of a report job
func (h *ReportHandler) StartProcessing(ctx context.Context, req *models.StartProcessingRequest) (*models.StartProcessingResponse, error) {
	log.Info().Str("reportID", req.ID).Msg("Processing start request received")
	reportID, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid report ID", err)
	}

	job, err := h.repo.GetByID(ctx, reportID)
	if err != nil {
		return nil, huma.Error404NotFound("Report not found", err)
	}
	if job.Status != models.StatusPending {
		return nil, huma.Error409Conflict("Report already processed",
			fmt.Errorf("report status is %s", job.Status))
	}
	if err := h.repo.ClaimPending(ctx, reportID); err != nil {
		if errors.Is(err, repository.ErrNotPending) {
			return nil, huma.Error409Conflict("Report already processed", err)
		}
		return nil, huma.Error500InternalServerError("Failed to start processing", err)
	}

	// Start processing in background (don't wait for completion)
	go func() {
		err := h.processingSvc.ProcessReport(context.Background(), reportID)
		if err != nil {
			log.Error().Err(err).Str("reportID", reportID.String()).Msg("Processing failed")
			if err := h.repo.UpdateError(context.Background(), reportID, fmt.Sprintf("Processing failed: %v", err)); err != nil {
				log.Warn().Err(err).Str("reportID", reportID.String()).Msg("Failed to record processing error")
			}
		}
	}()

	resp := &models.StartProcessingResponse{}
	resp.Body.Message = "Processing started successfully"
	return resp, nil
}

// statusMessage creates a human-readable status message
func statusMessage(status string, progress int) string {
	switch status {
	case models.StatusPending:
		return "Waiting for spectrum uploads..."
	case models.StatusProcessing:
		if progress < 40 {
			return "Downloading spectra..."
		} else if progress < 80 {
			return "Mixing dielectric functions..."
		} else {
			return "Exporting results..."
		}
	case models.StatusCompleted:
		return "Report complete!"
	case models.StatusFailed:
		return "Report failed."
	default:
		return "Unknown status"
	}
}
