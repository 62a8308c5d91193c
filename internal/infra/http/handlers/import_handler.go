package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/xavierca1/buyer-leads/internal/entity"
	"github.com/xavierca1/buyer-leads/internal/infra/auth"
	"github.com/xavierca1/buyer-leads/internal/infra/csvio"
	"github.com/xavierca1/buyer-leads/internal/infra/http/middleware"
	"github.com/xavierca1/buyer-leads/internal/usecase"
)

type ImportLimits struct {
	MaxRows  int
	MaxBytes int64
}

type ImportHandler struct {
	ImportLeads *usecase.ImportLeadsUseCase
	ExportLeads *usecase.ExportLeadsUseCase
	Limits      ImportLimits
	RateLimiter *RateLimiter
	Logger      logrus.FieldLogger
}

func NewImportHandler(
	importLeads *usecase.ImportLeadsUseCase,
	exportLeads *usecase.ExportLeadsUseCase,
	limits ImportLimits,
	limiter *RateLimiter,
	logger logrus.FieldLogger,
) *ImportHandler {
	return &ImportHandler{
		ImportLeads: importLeads,
		ExportLeads: exportLeads,
		Limits:      limits,
		RateLimiter: limiter,
		Logger:      logger,
	}
}

type importResponse struct {
	Inserted int               `json:"inserted"`
	Errors   []entity.RowError `json:"errors"`
	Error    string            `json:"error,omitempty"`
}

// Import handles POST /api/buyers/import. The body is either raw CSV text
// or a multipart form with a "file" part.
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())

	if h.RateLimiter != nil && !h.RateLimiter.Allow(actor.ID) {
		writeError(w, http.StatusTooManyRequests, "Too many imports. Please try again later.")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.Limits.MaxBytes)
	body, closeBody, err := csvBody(r)
	if err != nil {
		h.writeReadError(w, err)
		return
	}
	defer closeBody()

	rows, err := csvio.ReadRows(body, h.Limits.MaxRows)
	if err != nil {
		h.writeReadError(w, err)
		return
	}

	out, err := h.ImportLeads.Execute(r.Context(), usecase.ImportLeadsInput{Actor: actor, Rows: rows})
	if out == nil {
		writeUsecaseError(w, h.Logger, err)
		return
	}
	middleware.RecordImport(out.Outcome, out.Inserted, failedRows(out.Errors))
	middleware.RecordLeadCreatedN("import", out.Inserted)

	resp := importResponse{Inserted: out.Inserted, Errors: out.Errors}
	if err != nil {
		h.Logger.WithError(err).Error("import aborted")
		resp.Error = "Import aborted: storage unavailable"
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	switch out.Outcome {
	case usecase.ImportComplete:
		writeJSON(w, http.StatusOK, resp)
	case usecase.ImportPartial:
		writeJSON(w, http.StatusMultiStatus, resp)
	default:
		writeJSON(w, http.StatusBadRequest, resp)
	}
}

// Export handles GET /api/buyers/export. format=xlsx returns a workbook.
func (h *ImportHandler) Export(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())

	leads, err := h.ExportLeads.Execute(r.Context(), filterFromQuery(r, actor))
	if err != nil {
		writeUsecaseError(w, h.Logger, err)
		return
	}

	if r.URL.Query().Get("format") == "xlsx" {
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="buyers.xlsx"`)
		if err := csvio.WriteLeadsXLSX(w, leads); err != nil {
			h.Logger.WithError(err).Error("xlsx export failed")
		}
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="buyers.csv"`)
	if err := csvio.WriteLeads(w, leads); err != nil {
		h.Logger.WithError(err).Error("csv export failed")
	}
}

func csvBody(r *http.Request) (io.Reader, func(), error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.Body, func() {}, nil
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, nil, fmt.Errorf("missing file part: %w", err)
	}
	return file, func() { file.Close() }, nil
}

func (h *ImportHandler) writeReadError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("CSV exceeds %d bytes", h.Limits.MaxBytes))
	case errors.Is(err, csvio.ErrTooManyRows):
		writeError(w, http.StatusBadRequest, fmt.Sprintf("CSV exceeds %d rows", h.Limits.MaxRows))
	case errors.Is(err, csvio.ErrEmptyDocument):
		writeError(w, http.StatusBadRequest, "CSV is empty")
	default:
		h.Logger.WithError(err).Warn("csv parse failed")
		writeError(w, http.StatusBadRequest, "Failed to parse CSV: "+strings.TrimPrefix(err.Error(), "csv: "))
	}
}

func failedRows(errs []entity.RowError) int {
	seen := make(map[int]struct{}, len(errs))
	for _, e := range errs {
		seen[e.Row] = struct{}{}
	}
	return len(seen)
}
