package http

import (
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"retrocli/internal/config"
	apierrors "retrocli/internal/errors"
	"retrocli/internal/exporter"
	"retrocli/internal/services"
	"retrocli/pkg/contracts/domain"
)

// AnalysisHandler handles retrospective analysis HTTP requests.
type AnalysisHandler struct {
	service      *services.AnalysisService
	limits       config.LimitsConfig
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validate     *validator.Validate
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(service *services.AnalysisService, limits config.LimitsConfig, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AnalysisHandler {
	return &AnalysisHandler{
		service:      service,
		limits:       limits,
		logger:       logger.With(slog.String("component", "analysis_handler")),
		errorHandler: errorHandler,
		validate:     validator.New(),
	}
}

// Routes returns the analysis routes.
func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Analyze)
	r.Post("/export", h.Export)

	return r
}

// analysisRequest carries the validated filter bounds of one request.
// max_votes must not undercut min_votes; there is no slider UI enforcing
// that structurally, so the boundary check lives here rather than in the
// aggregator.
type analysisRequest struct {
	MinVotes int `validate:"gte=0"`
	MaxVotes int `validate:"gtefield=MinVotes"`
}

// Analyze handles POST /api/analysis: a multipart upload of export files
// plus the vote-range bounds, answered with the consolidated feedback,
// the processing log, and the chart series.
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	req, files, err := h.parseAnalysisRequest(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	start := time.Now()
	report := h.service.Analyze(r.Context(), files, req.MinVotes, req.MaxVotes)

	h.logger.InfoContext(r.Context(), "analysis request served",
		slog.Int("files", len(files)),
		slog.Int("records", len(report.Result.Records)),
		slog.Duration("took", time.Since(start)))

	render.JSON(w, r, report)
}

// Export handles POST /api/analysis/export: same upload as Analyze, answered
// with a downloadable artifact in the requested format.
func (h *AnalysisHandler) Export(w http.ResponseWriter, r *http.Request) {
	req, files, err := h.parseAnalysisRequest(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	format, err := exporter.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("format", err.Error()))
		return
	}

	filename := fmt.Sprintf("retrospective_analysis.%s", format.Extension())
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if _, err := h.service.Export(r.Context(), files, req.MinVotes, req.MaxVotes, format, w); err != nil {
		// Headers are already out; all that is left is logging.
		h.logger.ErrorContext(r.Context(), "export rendering failed",
			slog.String("format", string(format)),
			slog.String("error", err.Error()))
	}
}

// parseAnalysisRequest reads the bounds and multipart files shared by both
// endpoints.
func (h *AnalysisHandler) parseAnalysisRequest(r *http.Request) (*analysisRequest, []domain.SourceFile, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, h.limits.MaxUploadBytes)

	if err := r.ParseMultipartForm(h.limits.MaxUploadBytes); err != nil {
		return nil, nil, apierrors.InvalidRequestWithError(fmt.Errorf("parsing multipart form: %w", err))
	}

	req := &analysisRequest{}

	var err error
	if req.MinVotes, err = formInt(r, "min_votes", 0); err != nil {
		return nil, nil, apierrors.ErrValidation("min_votes", err.Error())
	}
	if req.MaxVotes, err = formInt(r, "max_votes", h.limits.MaxVoteBound); err != nil {
		return nil, nil, apierrors.ErrValidation("max_votes", err.Error())
	}

	if err := h.validate.Struct(req); err != nil {
		return nil, nil, apierrors.NewWithDetails(http.StatusBadRequest, "VALIDATION_FAILED",
			"min_votes must be >= 0 and max_votes must be >= min_votes", err.Error())
	}
	if req.MaxVotes > h.limits.MaxVoteBound {
		return nil, nil, apierrors.ErrValidation("max_votes",
			fmt.Sprintf("max_votes must not exceed %d", h.limits.MaxVoteBound))
	}

	if r.MultipartForm == nil || len(r.MultipartForm.File["files"]) == 0 {
		return nil, nil, apierrors.ErrValidation("files", "at least one file must be uploaded")
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) > h.limits.MaxFiles {
		return nil, nil, apierrors.ErrValidation("files",
			fmt.Sprintf("too many files: %d uploaded, limit is %d", len(headers), h.limits.MaxFiles))
	}

	files := make([]domain.SourceFile, 0, len(headers))
	for _, fh := range headers {
		content, err := readUpload(fh)
		if err != nil {
			return nil, nil, apierrors.InvalidRequestWithError(fmt.Errorf("reading upload %s: %w", fh.Filename, err))
		}
		files = append(files, domain.SourceFile{Name: fh.Filename, Content: content})
	}

	return req, files, nil
}

// formInt reads an optional integer form value.
func formInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.FormValue(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return v, nil
}

// readUpload reads one multipart part fully into memory.
func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
