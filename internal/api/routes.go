package api

import (
	"net/http"

	"github.com/RMahshie/alloptic/internal/alloy"
	"github.com/RMahshie/alloptic/internal/api/handlers"
	"github.com/RMahshie/alloptic/internal/processing"
	"github.com/RMahshie/alloptic/internal/repository"
	"github.com/RMahshie/alloptic/internal/storage"
	"github.com/danielgtaylor/huma/v2"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(api huma.API, s3Service storage.S3Service, reportRepo repository.ReportRepository, processingSvc processing.ProcessingService, alloySvc *alloy.Service) {
	reportHandler := handlers.NewReportHandler(reportRepo, s3Service, processingSvc, alloySvc)

	huma.Register(api, huma.Operation{
		OperationID: "mix",
		Method:      http.MethodPost,
		Path:        "/api/mix",
		Summary:     "Mix two phases",
		Description: "Computes the optical report of a binary alloy from inline dielectric spectra",
		Tags:        []string{"Mixing"},
	}, reportHandler.Mix)

	huma.Register(api, huma.Operation{
		OperationID: "createReport",
		Method:      http.MethodPost,
		Path:        "/api/reports",
		Summary:     "Create a new report",
		Description: "Creates a report job and returns upload URLs for both phase spectra",
		Tags:        []string{"Reports"},
	}, reportHandler.CreateReport)

	huma.Register(api, huma.Operation{
		OperationID: "listReports",
		Method:      http.MethodGet,
		Path:        "/api/reports",
		Summary:     "List reports",
		Description: "Returns the most recent report jobs",
		Tags:        []string{"Reports"},
	}, reportHandler.ListReports)

	huma.Register(api, huma.Operation{
		OperationID: "getReportStatus",
		Method:      http.MethodGet,
		Path:        "/api/reports/{id}/status",
		Summary:     "Get report status",
		Description: "Returns the current status and progress of a report job",
		Tags:        []string{"Reports"},
	}, reportHandler.GetReportStatus)

	huma.Register(api, huma.Operation{
		OperationID: "getReportResults",
		Method:      http.MethodGet,
		Path:        "/api/reports/{id}/results",
		Summary:     "Get report results",
		Description: "Returns the computed alloy report and the keys of its exported files",
		Tags:        []string{"Reports"},
	}, reportHandler.GetReportResults)

	huma.Register(api, huma.Operation{
		OperationID: "startProcessing",
		Method:      http.MethodPost,
		Path:        "/api/reports/{id}/process",
		Summary:     "Start processing report",
		Description: "Starts processing the uploaded spectra of a report job",
		Tags:        []string{"Reports"},
	}, reportHandler.StartProcessing)
}
