package app

import (
	"bytes"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cdsearch/internal/config"
	"cdsearch/internal/services"
	handlers "cdsearch/internal/transport/http"
)

var _ handlers.AnalysisServiceInterface = (*services.AnalysisService)(nil)

func newTestApp(t *testing.T) *Application {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{}
	cfg.Server.Port = 8080
	cfg.Server.ReadTimeout = 30 * time.Second
	cfg.Ingest.MaxUploadBytes = 1 << 20
	cfg.Datasets.MaxDatasets = 4
	cfg.Security.RateLimit.Enabled = false

	app := &Application{
		Config:          cfg,
		Logger:          logger,
		AnalysisService: services.NewAnalysisService(cfg.Datasets.MaxDatasets, logger),
		HealthService:   services.NewHealthService(Version),
	}
	app.setupRouter()
	app.createServer()
	return app
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(t)

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
	assert.Contains(t, rec.Body.String(), Version)
}

func TestUnknownRouteReturnsProblem(t *testing.T) {
	app := newTestApp(t)

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")
}

func TestRequestIDPropagation(t *testing.T) {
	app := newTestApp(t)

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/healthz", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestUploadThroughRouter(t *testing.T) {
	app := newTestApp(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "listings.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte("ADDRESS,YEAR,LISTING\n12 Oak St,1990,Acme Hardware\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/datasets", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "12 Oak St")
}

func TestServerConfiguration(t *testing.T) {
	app := newTestApp(t)

	assert.Equal(t, ":8080", app.Server.Addr)
	assert.NotNil(t, app.Server.Handler)
}
