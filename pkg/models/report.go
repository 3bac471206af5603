package models

import (
	"time"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Body struct {
		Status  string    `json:"status" example:"healthy" doc:"Service health status"`
		Version string    `json:"version" example:"1.0.0" doc:"API version"`
		Time    time.Time `json:"time" doc:"Current server time"`
	}
}

// MixParams are the alloy parameters shared by every request that computes a report
type MixParams struct {
	Method   string  `json:"method" enum:"average,refractive,bruggeman" required:"true" doc:"Mixing model"`
	Fraction float64 `json:"fraction" minimum:"0" maximum:"1" doc:"Atomic fraction of phase B"`
	PhaseA   string  `json:"phase_a" minLength:"1" maxLength:"32" required:"true" doc:"Label of phase A (e.g. Au)"`
	PhaseB   string  `json:"phase_b" minLength:"1" maxLength:"32" required:"true" doc:"Label of phase B (e.g. Ag)"`
}

// MixRequestBody carries the alloy parameters and both spectra inline
type MixRequestBody struct {
	MixParams
	SpectrumA Spectrum `json:"spectrum_a" required:"true" doc:"Dielectric spectrum of phase A"`
	SpectrumB Spectrum `json:"spectrum_b" required:"true" doc:"Dielectric spectrum of phase B"`
}

// MixRequest computes a report synchronously from inline spectra
type MixRequest struct {
	Body MixRequestBody
}

// MixResponse returns the computed report
type MixResponse struct {
	Body *AlloyReport
}

// CreateReportRequest represents a request to create a new report job
type CreateReportRequest struct {
	Body MixParams
}

// CreateReportResponseBody is the body of the create report response
type CreateReportResponseBody struct {
	ID         string `json:"id" doc:"Report unique identifier"`
	UploadURLA string `json:"upload_url_a" doc:"Pre-signed S3 URL for the phase A spectrum file"`
	UploadURLB string `json:"upload_url_b" doc:"Pre-signed S3 URL for the phase B spectrum file"`
	ExpiresIn  int    `json:"expires_in" doc:"URL expiration time in seconds"`
}

// CreateReportResponse represents the response from creating a report job
type CreateReportResponse struct {
	Body CreateReportResponseBody
}

// GetReportStatusRequest represents a request to get report status
type GetReportStatusRequest struct {
	ID string `path:"id" doc:"Report ID"`
}

// GetReportStatusResponseBody is the body of the status response
type GetReportStatusResponseBody struct {
	ID        string  `json:"id" doc:"Report ID"`
	Status    string  `json:"status" enum:"pending,processing,completed,failed" doc:"Report status"`
	Progress  int     `json:"progress" minimum:"0" maximum:"100" doc:"Processing progress percentage"`
	Message   string  `json:"message,omitempty" doc:"Human-readable status message"`
	ResultsID *string `json:"results_id,omitempty" doc:"Results ID when the report completes"`
}

// GetReportStatusResponse represents the current status of a report job
type GetReportStatusResponse struct {
	Body GetReportStatusResponseBody
}

// GetReportResultsRequest represents a request to get report results
type GetReportResultsRequest struct {
	ID string `path:"id" doc:"Report ID"`
}

// GetReportResultsResponseBody is the body of the results response
type GetReportResultsResponseBody struct {
	ID        string            `json:"id" doc:"Results ID"`
	Report    *AlloyReport      `json:"report" doc:"Computed alloy report"`
	Artifacts []string          `json:"artifacts,omitempty" doc:"Object keys of the exported tables"`
	Downloads map[string]string `json:"downloads,omitempty" doc:"Pre-signed download URL per artifact key"`
	CreatedAt time.Time         `json:"created_at" doc:"Results creation timestamp"`
}

// GetReportResultsResponse represents the complete report results
type GetReportResultsResponse struct {
	Body GetReportResultsResponseBody
}

// ListReportsRequest represents a request to list recent report jobs
type ListReportsRequest struct {
	Limit int `query:"limit" default:"20" minimum:"1" maximum:"100" doc:"Maximum number of reports"`
}

// ListReportsResponse lists report jobs, newest first
type ListReportsResponse struct {
	Body struct {
		Reports []*ReportJob `json:"reports" doc:"Report jobs"`
	}
}

// StartProcessingRequest represents a request to start processing uploaded spectra
type StartProcessingRequest struct {
	ID string `path:"id" doc:"Report ID"`
}

// StartProcessingResponse represents the response from starting processing
type StartProcessingResponse struct {
	Body struct {
		Message string `json:"message" doc:"Confirmation message"`
	}
}

// Report statuses
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// ReportJob represents one requested alloy computation (for internal use)
type ReportJob struct {
	ID           string     `json:"id" db:"id"`
	Method       string     `json:"method" db:"method"`
	Fraction     float64    `json:"fraction" db:"fraction"`
	PhaseA       string     `json:"phase_a" db:"phase_a"`
	PhaseB       string     `json:"phase_b" db:"phase_b"`
	SpectrumAKey *string    `json:"spectrum_a_key,omitempty" db:"spectrum_a_key"`
	SpectrumBKey *string    `json:"spectrum_b_key,omitempty" db:"spectrum_b_key"`
	Status       string     `json:"status" db:"status"`
	Progress     int        `json:"progress" db:"progress"`
	ErrorMsg     *string    `json:"error_message,omitempty" db:"error_message"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// ReportResults represents the stored outcome of a report job
type ReportResults struct {
	ID        string       `json:"id"`
	ReportID  string       `json:"report_id"`
	Alloy     string       `json:"alloy"`
	Report    *AlloyReport `json:"report"`
	Artifacts []string     `json:"artifacts,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}
