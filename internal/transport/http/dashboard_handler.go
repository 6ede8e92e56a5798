package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"costlens/internal/analytics"
	apierrors "costlens/internal/errors"
	"costlens/internal/services"
)

// dateLayout is the wire format for filter date bounds.
const dateLayout = "2006-01-02"

// ConstraintsRequest is the JSON body accepted by the summary, rows and
// client-report endpoints. All fields are optional; absent fields mean
// "no restriction".
type ConstraintsRequest struct {
	DateFrom  string   `json:"date_from,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DateTo    string   `json:"date_to,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Providers []string `json:"providers,omitempty" validate:"omitempty,dive,min=1"`
	Resources []string `json:"resources,omitempty" validate:"omitempty,dive,min=1"`
}

// DashboardHandler handles dataset and dashboard HTTP requests with
// RFC 7807 compliance.
type DashboardHandler struct {
	service        DashboardServiceInterface
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
	validate       *validator.Validate
	maxUploadBytes int64
	previewRows    int
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(service DashboardServiceInterface, maxUploadBytes int64, previewRows int, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:        service,
		logger:         logger.With(slog.String("component", "dashboard_handler")),
		errorHandler:   errorHandler,
		validate:       validator.New(),
		maxUploadBytes: maxUploadBytes,
		previewRows:    previewRows,
	}
}

// Routes returns the dashboard routes with proper Chi patterns.
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Route("/dataset", func(r chi.Router) {
		r.Post("/", h.UploadDataset)
		r.Get("/", h.GetDatasetInfo)
		r.Get("/preview", h.GetPreview)
	})

	r.Route("/dashboard", func(r chi.Router) {
		r.Post("/summary", h.GetSummary)
		r.Post("/rows", h.GetRows)
	})

	r.Route("/clients", func(r chi.Router) {
		r.Get("/", h.SearchClients)
		r.Post("/{client}/report", h.GetClientReport)
	})

	return r
}

// UploadDataset handles POST /api/dataset. The body is a multipart
// form with a single "file" field; the filename drives format
// dispatch. An unrecognized extension still succeeds: the service
// installs an empty table and the response carries a warning.
func (h *DashboardHandler) UploadDataset(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.errorHandler.HandleError(w, r, apierrors.ErrPayloadTooLarge)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusBadRequest,
			"INVALID_REQUEST",
			"Expected a multipart form with a 'file' field",
			map[string]interface{}{"error": err.Error()},
		))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "A 'file' form field is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusBadRequest,
			"INVALID_REQUEST",
			"Failed to read uploaded file",
			map[string]interface{}{"error": err.Error()},
		))
		return
	}

	h.logger.InfoContext(r.Context(), "dataset upload received",
		slog.String("request_id", reqID),
		slog.String("filename", header.Filename),
		slog.Int("bytes", len(data)),
	)

	info, err := h.service.LoadDataset(r.Context(), data, header.Filename)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "dataset load failed",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
			slog.String("filename", header.Filename),
		)

		if errors.Is(err, services.ErrDatasetDecode) {
			h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
				http.StatusUnprocessableEntity,
				"DATASET_DECODE_FAILED",
				fmt.Sprintf("Failed to decode '%s'", header.Filename),
				map[string]interface{}{"error": err.Error()},
			))
			return
		}

		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   info,
	})
}

// GetDatasetInfo handles GET /api/dataset.
func (h *DashboardHandler) GetDatasetInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.DatasetInfo(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   info,
	})
}

// GetPreview handles GET /api/dataset/preview?limit=N.
func (h *DashboardHandler) GetPreview(w http.ResponseWriter, r *http.Request) {
	limit := h.previewRows
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 || n > 1000 {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("limit", "Limit must be a number between 1 and 1000"))
			return
		}
		limit = n
	}

	preview, err := h.service.Preview(r.Context(), limit)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   preview,
	})
}

// GetSummary handles POST /api/dashboard/summary.
func (h *DashboardHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	c, ok := h.decodeConstraints(w, r)
	if !ok {
		return
	}

	summary, err := h.service.Summary(r.Context(), c)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   summary,
	})
}

// GetRows handles POST /api/dashboard/rows.
func (h *DashboardHandler) GetRows(w http.ResponseWriter, r *http.Request) {
	c, ok := h.decodeConstraints(w, r)
	if !ok {
		return
	}

	rows, err := h.service.FilteredRows(r.Context(), c)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   rows,
		"count":  len(rows.Rows),
	})
}

// SearchClients handles GET /api/clients?q=. An empty query returns
// every distinct client; a query with no matches returns an empty
// list, not an error.
func (h *DashboardHandler) SearchClients(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	clients, err := h.service.SearchClients(r.Context(), query)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   clients,
		"count":  len(clients),
	})
}

// GetClientReport handles POST /api/clients/{client}/report. A client
// with no rows under the active constraints yields an informational
// "no_data" response rather than an error.
func (h *DashboardHandler) GetClientReport(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	client, err := url.PathUnescape(chi.URLParam(r, "client"))
	if err != nil || client == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("client", "Client name is required"))
		return
	}

	c, ok := h.decodeConstraints(w, r)
	if !ok {
		return
	}

	h.logger.InfoContext(r.Context(), "building client report",
		slog.String("request_id", reqID),
		slog.String("client", client),
	)

	report, err := h.service.ClientReport(r.Context(), client, c)
	if err != nil {
		if errors.Is(err, services.ErrNoDataForClient) {
			render.JSON(w, r, map[string]interface{}{
				"status": "no_data",
				"detail": fmt.Sprintf("No records for client '%s' under the active filters", client),
				"client": client,
			})
			return
		}

		if errors.Is(err, services.ErrNoClientColumn) {
			h.errorHandler.HandleError(w, r, apierrors.New(
				http.StatusConflict,
				"NO_CLIENT_COLUMN",
				"The loaded dataset has no Client column",
			))
			return
		}

		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   report,
	})
}

// decodeConstraints parses and validates the optional constraint body.
// An empty body is valid and means "no restriction".
func (h *DashboardHandler) decodeConstraints(w http.ResponseWriter, r *http.Request) (analytics.Constraints, bool) {
	var req ConstraintsRequest

	if r.Body != nil && r.ContentLength != 0 {
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
				http.StatusBadRequest,
				"INVALID_REQUEST",
				"Invalid request body",
				map[string]interface{}{"error": err.Error()},
			))
			return analytics.Constraints{}, false
		}
	}

	if err := h.validate.Struct(&req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusBadRequest,
			"VALIDATION_FAILED",
			"Constraint validation failed",
			map[string]interface{}{"error": err.Error()},
		))
		return analytics.Constraints{}, false
	}

	c := analytics.Constraints{
		Providers: req.Providers,
		Resources: req.Resources,
	}

	if req.DateFrom != "" {
		from, _ := time.Parse(dateLayout, req.DateFrom)
		c.DateFrom = &from
	}
	if req.DateTo != "" {
		to, _ := time.Parse(dateLayout, req.DateTo)
		c.DateTo = &to
	}

	if c.DateFrom != nil && c.DateTo != nil && c.DateTo.Before(*c.DateFrom) {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("date_to", "date_to must not precede date_from"))
		return analytics.Constraints{}, false
	}

	return c, true
}

// handleServiceError maps shared service errors to API errors.
func (h *DashboardHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "service call failed",
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("path", r.URL.Path),
	)

	if errors.Is(err, services.ErrNoDataset) {
		h.errorHandler.HandleError(w, r, apierrors.New(
			http.StatusNotFound,
			"NO_DATASET",
			"No dataset loaded. Upload one or install the bundled default.",
		))
		return
	}

	h.errorHandler.HandleError(w, r, err)
}
