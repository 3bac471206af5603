package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/RMahshie/alloptic/internal/alloy"
	"github.com/RMahshie/alloptic/internal/repository"
	"github.com/RMahshie/alloptic/pkg/models"
	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockReportRepository implements repository.ReportRepository for testing
type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) Create(ctx context.Context, job *models.ReportJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ReportJob, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.ReportJob), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReportRepository) List(ctx context.Context, limit int) ([]*models.ReportJob, error) {
	args := m.Called(ctx, limit)
	if v := args.Get(0); v != nil {
		return v.([]*models.ReportJob), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReportRepository) ClaimPending(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReportRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, progress int) error {
	args := m.Called(ctx, id, status, progress)
	return args.Error(0)
}

func (m *MockReportRepository) UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error {
	args := m.Called(ctx, id, errorMsg)
	return args.Error(0)
}

func (m *MockReportRepository) StoreResults(ctx context.Context, results *models.ReportResults) error {
	args := m.Called(ctx, results)
	return args.Error(0)
}

func (m *MockReportRepository) GetResults(ctx context.Context, reportID uuid.UUID) (*models.ReportResults, error) {
	args := m.Called(ctx, reportID)
	if v := args.Get(0); v != nil {
		return v.(*models.ReportResults), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockS3Service implements storage.S3Service for testing
type MockS3Service struct {
	mock.Mock
}

func (m *MockS3Service) GenerateUploadURL(ctx context.Context, key string, contentType string) (string, error) {
	args := m.Called(ctx, key, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockS3Service) GenerateDownloadURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockS3Service) DownloadFile(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockS3Service) UploadFile(ctx context.Context, key string, contentType string, data []byte) error {
	args := m.Called(ctx, key, contentType, data)
	return args.Error(0)
}

func (m *MockS3Service) DeleteFile(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockProcessingService implements processing.ProcessingService for testing
type MockProcessingService struct {
	mock.Mock
}

func (m *MockProcessingService) ProcessReport(ctx context.Context, reportID uuid.UUID) error {
	args := m.Called(ctx, reportID)
	return args.Error(0)
}

type mocks struct {
	repo *MockReportRepository
	s3   *MockS3Service
	proc *MockProcessingService
}

func newHandler() (*ReportHandler, mocks) {
	m := mocks{repo: &MockReportRepository{}, s3: &MockS3Service{}, proc: &MockProcessingService{}}
	return NewReportHandler(m.repo, m.s3, m.proc, alloy.NewService(nil)), m
}

func (m mocks) assert(t *testing.T) {
	m.repo.AssertExpectations(t)
	m.s3.AssertExpectations(t)
	m.proc.AssertExpectations(t)
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var se huma.StatusError
	require.True(t, errors.As(err, &se), "expected huma status error, got %v", err)
	return se.GetStatus()
}

func mixBody(method string, fraction float64) models.MixRequestBody {
	return models.MixRequestBody{
		MixParams: models.MixParams{Method: method, Fraction: fraction, PhaseA: "Au", PhaseB: "Ag"},
		SpectrumA: models.Spectrum{Energies: []float64{1, 2}, EpsRe: []float64{2, 3}, EpsIm: []float64{0.1, 0.2}},
		SpectrumB: models.Spectrum{Energies: []float64{1, 2}, EpsRe: []float64{2.5, 3.5}, EpsIm: []float64{0.3, 0.1}},
	}
}

func TestMix(t *testing.T) {
	handler, m := newHandler()

	resp, err := handler.Mix(context.Background(), &models.MixRequest{Body: mixBody("average", 0.4)})
	require.NoError(t, err)
	require.NotNil(t, resp.Body)

	assert.Equal(t, "Au0.6Ag0.4", resp.Body.Alloy)
	assert.InDeltaSlice(t, []float64{2.2, 3.2}, resp.Body.EpsRe, 1e-12)
	assert.InDeltaSlice(t, []float64{0.18, 0.16}, resp.Body.EpsIm, 1e-12)
	assert.Len(t, resp.Body.ReflectivityByWavelength, 2)
	m.assert(t)
}

func TestMix_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       func() models.MixRequestBody
		wantStatus int
	}{
		{
			name:       "unsupported method",
			body:       func() models.MixRequestBody { return mixBody("maxwell-garnett", 0.4) },
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "fraction out of range",
			body:       func() models.MixRequestBody { return mixBody("average", 1.5) },
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "grid mismatch",
			body: func() models.MixRequestBody {
				b := mixBody("bruggeman", 0.4)
				b.SpectrumB = models.Spectrum{Energies: []float64{1}, EpsRe: []float64{2.5}, EpsIm: []float64{0.3}}
				return b
			},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "malformed spectrum",
			body: func() models.MixRequestBody {
				b := mixBody("average", 0.4)
				b.SpectrumA.EpsIm = []float64{0.1}
				return b
			},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "zero energy",
			body: func() models.MixRequestBody {
				b := mixBody("average", 0.4)
				b.SpectrumA.Energies = []float64{0, 2}
				b.SpectrumB.Energies = []float64{0, 2}
				return b
			},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "missing label",
			body: func() models.MixRequestBody {
				b := mixBody("average", 0.4)
				b.PhaseB = ""
				return b
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := newHandler()
			_, err := handler.Mix(context.Background(), &models.MixRequest{Body: tt.body()})
			require.Error(t, err)
			assert.Equal(t, tt.wantStatus, statusOf(t, err))
		})
	}
}

func TestCreateReport(t *testing.T) {
	tests := []struct {
		name       string
		params     models.MixParams
		mockSetup  func(mocks)
		wantStatus int
	}{
		{
			name:   "valid report",
			params: models.MixParams{Method: "bruggeman", Fraction: 0.25, PhaseA: "Cu", PhaseB: "Zn"},
			mockSetup: func(m mocks) {
				m.s3.On("GenerateUploadURL", mock.Anything, mock.MatchedBy(func(key string) bool {
					return strings.HasSuffix(key, "/a.dat")
				}), "text/plain").Return("https://example.com/upload-a", nil)
				m.s3.On("GenerateUploadURL", mock.Anything, mock.MatchedBy(func(key string) bool {
					return strings.HasSuffix(key, "/b.dat")
				}), "text/plain").Return("https://example.com/upload-b", nil)
				m.repo.On("Create", mock.Anything, mock.MatchedBy(func(job *models.ReportJob) bool {
					return job.Status == models.StatusPending &&
						job.Method == "bruggeman" &&
						job.SpectrumAKey != nil && job.SpectrumBKey != nil
				})).Return(nil)
			},
		},
		{
			name:       "invalid fraction",
			params:     models.MixParams{Method: "average", Fraction: -0.1, PhaseA: "Cu", PhaseB: "Zn"},
			mockSetup:  func(mocks) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "upload URL failure",
			params: models.MixParams{Method: "average", Fraction: 0.5, PhaseA: "Cu", PhaseB: "Zn"},
			mockSetup: func(m mocks) {
				m.s3.On("GenerateUploadURL", mock.Anything, mock.Anything, "text/plain").Return("", assert.AnError)
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:   "repository failure",
			params: models.MixParams{Method: "average", Fraction: 0.5, PhaseA: "Cu", PhaseB: "Zn"},
			mockSetup: func(m mocks) {
				m.s3.On("GenerateUploadURL", mock.Anything, mock.Anything, "text/plain").Return("https://example.com/upload", nil)
				m.repo.On("Create", mock.Anything, mock.Anything).Return(assert.AnError)
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, m := newHandler()
			tt.mockSetup(m)

			resp, err := handler.CreateReport(context.Background(), &models.CreateReportRequest{Body: tt.params})

			if tt.wantStatus != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantStatus, statusOf(t, err))
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, resp.Body.ID)
				assert.Equal(t, "https://example.com/upload-a", resp.Body.UploadURLA)
				assert.Equal(t, "https://example.com/upload-b", resp.Body.UploadURLB)
				assert.Equal(t, 900, resp.Body.ExpiresIn) // 15 minutes in seconds
			}
			m.assert(t)
		})
	}
}

func TestGetReportStatus(t *testing.T) {
	id := uuid.New()
	errMsg := "Failed to download spectrum"

	tests := []struct {
		name        string
		job         *models.ReportJob
		repoErr     error
		results     *models.ReportResults
		wantStatus  int
		wantMessage string
		wantResults bool
	}{
		{
			name:        "processing",
			job:         &models.ReportJob{ID: id.String(), Status: models.StatusProcessing, Progress: 60},
			wantMessage: "Mixing dielectric functions...",
		},
		{
			name:        "completed",
			job:         &models.ReportJob{ID: id.String(), Status: models.StatusCompleted, Progress: 100},
			results:     &models.ReportResults{ID: "results-1"},
			wantMessage: "Report complete!",
			wantResults: true,
		},
		{
			name:        "failed",
			job:         &models.ReportJob{ID: id.String(), Status: models.StatusFailed, ErrorMsg: &errMsg},
			wantMessage: errMsg,
		},
		{
			name:       "not found",
			repoErr:    repository.ErrNotFound,
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, m := newHandler()
			m.repo.On("GetByID", mock.Anything, id).Return(tt.job, tt.repoErr)
			if tt.results != nil {
				m.repo.On("GetResults", mock.Anything, id).Return(tt.results, nil)
			}

			resp, err := handler.GetReportStatus(context.Background(), &models.GetReportStatusRequest{ID: id.String()})

			if tt.wantStatus != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantStatus, statusOf(t, err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.job.Status, resp.Body.Status)
			assert.Equal(t, tt.wantMessage, resp.Body.Message)
			if tt.wantResults {
				require.NotNil(t, resp.Body.ResultsID)
				assert.Equal(t, "results-1", *resp.Body.ResultsID)
			} else {
				assert.Nil(t, resp.Body.ResultsID)
			}
			m.assert(t)
		})
	}
}

func TestGetReportStatus_InvalidID(t *testing.T) {
	handler, _ := newHandler()
	_, err := handler.GetReportStatus(context.Background(), &models.GetReportStatusRequest{ID: "not-a-uuid"})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

func TestGetReportResults(t *testing.T) {
	id := uuid.New()

	t.Run("completed", func(t *testing.T) {
		handler, m := newHandler()
		created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		m.repo.On("GetByID", mock.Anything, id).Return(&models.ReportJob{ID: id.String(), Status: models.StatusCompleted}, nil)
		m.repo.On("GetResults", mock.Anything, id).Return(&models.ReportResults{
			ID:        "results-1",
			ReportID:  id.String(),
			Report:    &models.AlloyReport{Alloy: "Cu0.75Zn0.25"},
			Artifacts: []string{"reports/x/reflectivity_Cu0.75Zn0.25.dat"},
			CreatedAt: created,
		}, nil)
		m.s3.On("GenerateDownloadURL", mock.Anything, "reports/x/reflectivity_Cu0.75Zn0.25.dat").
			Return("https://s3.example.com/signed", nil)

		resp, err := handler.GetReportResults(context.Background(), &models.GetReportResultsRequest{ID: id.String()})
		require.NoError(t, err)
		assert.Equal(t, "results-1", resp.Body.ID)
		assert.Equal(t, "Cu0.75Zn0.25", resp.Body.Report.Alloy)
		assert.Len(t, resp.Body.Artifacts, 1)
		assert.Equal(t, "https://s3.example.com/signed", resp.Body.Downloads["reports/x/reflectivity_Cu0.75Zn0.25.dat"])
		assert.Equal(t, created, resp.Body.CreatedAt)
		m.assert(t)
	})

	t.Run("not completed", func(t *testing.T) {
		handler, m := newHandler()
		m.repo.On("GetByID", mock.Anything, id).Return(&models.ReportJob{ID: id.String(), Status: models.StatusProcessing}, nil)

		_, err := handler.GetReportResults(context.Background(), &models.GetReportResultsRequest{ID: id.String()})
		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, statusOf(t, err))
		m.repo.AssertNotCalled(t, "GetResults", mock.Anything, mock.Anything)
	})
}

func TestListReports(t *testing.T) {
	handler, m := newHandler()
	m.repo.On("List", mock.Anything, 20).Return(nil, nil)

	resp, err := handler.ListReports(context.Background(), &models.ListReportsRequest{Limit: 20})
	require.NoError(t, err)
	assert.NotNil(t, resp.Body.Reports)
	assert.Empty(t, resp.Body.Reports)
	m.assert(t)
}

func TestStartProcessing(t *testing.T) {
	id := uuid.New()
	handler, m := newHandler()

	done := make(chan struct{})
	m.repo.On("GetByID", mock.Anything, id).Return(&models.ReportJob{ID: id.String(), Status: models.StatusPending}, nil)
	m.repo.On("ClaimPending", mock.Anything, id).Return(nil)
	m.proc.On("ProcessReport", mock.Anything, id).Return(nil).Run(func(mock.Arguments) { close(done) })

	resp, err := handler.StartProcessing(context.Background(), &models.StartProcessingRequest{ID: id.String()})
	require.NoError(t, err)
	assert.Equal(t, "Processing started successfully", resp.Body.Message)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("processing was not started")
	}
	m.assert(t)
}

func TestStartProcessing_NotFound(t *testing.T) {
	id := uuid.New()
	handler, m := newHandler()
	m.repo.On("GetByID", mock.Anything, id).Return(nil, repository.ErrNotFound)

	_, err := handler.StartProcessing(context.Background(), &models.StartProcessingRequest{ID: id.String()})
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
	m.proc.AssertNotCalled(t, "ProcessReport", mock.Anything, mock.Anything)
}

func TestStartProcessing_NotPending(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name      string
		status    string
		mockSetup func(mocks)
	}{
		{name: "completed", status: models.StatusCompleted},
		{name: "failed", status: models.StatusFailed},
		{name: "processing", status: models.StatusProcessing},
		{
			name:   "claimed concurrently",
			status: models.StatusPending,
			mockSetup: func(m mocks) {
				m.repo.On("ClaimPending", mock.Anything, id).Return(repository.ErrNotPending)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, m := newHandler()
			m.repo.On("GetByID", mock.Anything, id).Return(&models.ReportJob{ID: id.String(), Status: tt.status}, nil)
			if tt.mockSetup != nil {
				tt.mockSetup(m)
			}

			_, err := handler.StartProcessing(context.Background(), &models.StartProcessingRequest{ID: id.String()})
			require.Error(t, err)
			assert.Equal(t, http.StatusConflict, statusOf(t, err))
			m.proc.AssertNotCalled(t, "ProcessReport", mock.Anything, mock.Anything)
			m.repo.AssertExpectations(t)
		})
	}
}

func TestStartProcessing_RecordsProcessingError(t *testing.T) {
	id := uuid.New()
	handler, m := newHandler()

	done := make(chan struct{})
	m.repo.On("GetByID", mock.Anything, id).Return(&models.ReportJob{ID: id.String(), Status: models.StatusPending}, nil)
	m.repo.On("ClaimPending", mock.Anything, id).Return(nil)
	m.proc.On("ProcessReport", mock.Anything, id).Return(assert.AnError)
	m.repo.On("UpdateError", mock.Anything, id, mock.MatchedBy(func(msg string) bool {
		return strings.HasPrefix(msg, "Processing failed: ")
	})).Return(assert.AnError).Run(func(mock.Arguments) { close(done) })

	_, err := handler.StartProcessing(context.Background(), &models.StartProcessingRequest{ID: id.String()})
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("processing error was not recorded")
	}
	m.assert(t)
}
