package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"cdsearch/internal/directory"
	apierrors "cdsearch/internal/errors"
	"cdsearch/internal/ingest"
	"cdsearch/internal/services"
	"cdsearch/pkg/contracts/domain"
)

// AnalysisHandler handles dataset upload, compilation, and report requests
// with RFC 7807 compliant errors.
type AnalysisHandler struct {
	service        AnalysisServiceInterface
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
	validator      *validator.Validate
	maxUploadBytes int64
}

// NewAnalysisHandler creates an analysis handler. maxUploadBytes bounds the
// multipart upload size accepted by CreateDataset.
func NewAnalysisHandler(service AnalysisServiceInterface, maxUploadBytes int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AnalysisHandler {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &AnalysisHandler{
		service:        service,
		logger:         logger.With(slog.String("component", "analysis_handler")),
		errorHandler:   errorHandler,
		validator:      v,
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns the dataset routes.
func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/", h.CreateDataset)

	r.Route("/{datasetID}", func(r chi.Router) {
		r.Use(h.DatasetCtx)
		r.Get("/", h.GetDataset)
		r.Get("/addresses", h.GetAddresses)
		r.Post("/subject", h.CompileSubject)
		r.Post("/adjoining", h.CompileAdjoining)
		r.Post("/report/subject", h.SubjectReport)
		r.Post("/report/adjoining", h.AdjoiningReport)
	})

	return r
}

// DatasetCtx validates the dataset ID path parameter.
func (h *AnalysisHandler) DatasetCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "datasetID") == "" {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("datasetID", "Dataset ID is required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SubjectRequest selects subject property addresses to compile.
type SubjectRequest struct {
	Addresses []string `json:"addresses" validate:"required,min=1,dive,required"`
}

// AdjoiningSelection is one adjoining property selection in a request.
type AdjoiningSelection struct {
	Address   string `json:"address" validate:"required"`
	Direction string `json:"direction"`
}

// AdjoiningRequest selects adjoining properties to compile.
type AdjoiningRequest struct {
	Selections []AdjoiningSelection `json:"selections" validate:"required,min=1,dive"`
}

// DatasetResponse is the JSON shape returned for a stored dataset.
type DatasetResponse struct {
	ID          string              `json:"id"`
	Filename    string              `json:"filename"`
	RecordCount int                 `json:"record_count"`
	Dropped     directory.DropStats `json:"dropped_rows"`
	Addresses   []string            `json:"addresses"`
	UploadedAt  time.Time           `json:"uploaded_at"`
}

func datasetResponse(ds *services.Dataset) DatasetResponse {
	return DatasetResponse{
		ID:          ds.ID,
		Filename:    ds.Filename,
		RecordCount: ds.RowCount,
		Dropped:     ds.Dropped,
		Addresses:   ds.Addresses,
		UploadedAt:  ds.UploadedAt,
	}
}

// CreateDataset handles POST /api/datasets. The directory export is uploaded
// as a multipart form file under the "file" field.
func (h *AnalysisHandler) CreateDataset(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.errorHandler.HandleError(w, r, apierrors.ErrUploadTooLarge)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "Upload must include a file field"))
		return
	}
	defer file.Close()

	ds, err := h.service.CreateDataset(r.Context(), header.Filename, file)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, datasetResponse(ds))
}

// GetDataset handles GET /api/datasets/{datasetID}.
func (h *AnalysisHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	ds, err := h.service.Dataset(r.Context(), chi.URLParam(r, "datasetID"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, datasetResponse(ds))
}

// GetAddresses handles GET /api/datasets/{datasetID}/addresses. It returns
// the distinct addresses of the dataset in street order, for populating
// selection pickers.
func (h *AnalysisHandler) GetAddresses(w http.ResponseWriter, r *http.Request) {
	ds, err := h.service.Dataset(r.Context(), chi.URLParam(r, "datasetID"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"dataset_id": ds.ID,
		"addresses":  ds.Addresses,
	})
}

// CompileSubject handles POST /api/datasets/{datasetID}/subject.
func (h *AnalysisHandler) CompileSubject(w http.ResponseWriter, r *http.Request) {
	var req SubjectRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	histories, err := h.service.CompileSubject(r.Context(), chi.URLParam(r, "datasetID"), req.Addresses)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"histories": histories,
	})
}

// CompileAdjoining handles POST /api/datasets/{datasetID}/adjoining.
func (h *AnalysisHandler) CompileAdjoining(w http.ResponseWriter, r *http.Request) {
	selections, ok := h.decodeSelections(w, r)
	if !ok {
		return
	}

	histories, err := h.service.CompileAdjoining(r.Context(), chi.URLParam(r, "datasetID"), selections)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"histories": histories,
	})
}

// SubjectReport handles POST /api/datasets/{datasetID}/report/subject and
// streams the report workbook as a download.
func (h *AnalysisHandler) SubjectReport(w http.ResponseWriter, r *http.Request) {
	var req SubjectRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	data, err := h.service.SubjectReport(r.Context(), chi.URLParam(r, "datasetID"), req.Addresses)
	if err != nil {
		h.handleReportError(w, r, err)
		return
	}

	h.writeWorkbook(w, r, "subject_property_history.xlsx", data)
}

// AdjoiningReport handles POST /api/datasets/{datasetID}/report/adjoining.
func (h *AnalysisHandler) AdjoiningReport(w http.ResponseWriter, r *http.Request) {
	selections, ok := h.decodeSelections(w, r)
	if !ok {
		return
	}

	data, err := h.service.AdjoiningReport(r.Context(), chi.URLParam(r, "datasetID"), selections)
	if err != nil {
		h.handleReportError(w, r, err)
		return
	}

	h.writeWorkbook(w, r, "adjoining_property_history.xlsx", data)
}

func (h *AnalysisHandler) decodeSelections(w http.ResponseWriter, r *http.Request) ([]domain.Selection, bool) {
	var req AdjoiningRequest
	if !h.decodeAndValidate(w, r, &req) {
		return nil, false
	}

	selections := make([]domain.Selection, 0, len(req.Selections))
	for _, sel := range req.Selections {
		dir, err := domain.ParseDirection(sel.Direction)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("direction",
				fmt.Sprintf("Unknown direction %q for %s", sel.Direction, sel.Address)))
			return nil, false
		}
		selections = append(selections, domain.Selection{Address: sel.Address, Direction: dir})
	}
	return selections, true
}

func (h *AnalysisHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation(verrs[0].Field(), verrs[0].Error()))
		} else {
			h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		}
		return false
	}
	return true
}

func (h *AnalysisHandler) writeWorkbook(w http.ResponseWriter, r *http.Request, filename string, data []byte) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to write report response",
			slog.String("error", err.Error()))
	}
}

// handleReportError is handleServiceError with a report-specific fallback:
// once the dataset resolved, anything that goes wrong is a rendering failure.
func (h *AnalysisHandler) handleReportError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, services.ErrDatasetNotFound) {
		h.errorHandler.HandleError(w, r, apierrors.ErrDatasetNotFound)
		return
	}

	h.logger.ErrorContext(r.Context(), "Report rendering failed",
		slog.String("error", err.Error()))
	h.errorHandler.HandleError(w, r, apierrors.ErrReportFailed)
}

// handleServiceError maps service and pipeline errors to API errors before
// delegating to the RFC 7807 error handler.
func (h *AnalysisHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var schemaErr *directory.SchemaError
	switch {
	case errors.Is(err, services.ErrDatasetNotFound):
		h.errorHandler.HandleError(w, r, apierrors.ErrDatasetNotFound)
	case errors.Is(err, ingest.ErrUnsupportedFormat):
		h.errorHandler.HandleError(w, r, apierrors.ErrUnsupportedFormat)
	case errors.As(err, &schemaErr):
		h.errorHandler.HandleError(w, r, apierrors.InvalidSchemaError(schemaErr.Missing))
	default:
		h.logger.ErrorContext(r.Context(), "Service call failed",
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
	}
}
