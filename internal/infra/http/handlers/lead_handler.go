package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/xavierca1/buyer-leads/internal/entity"
	"github.com/xavierca1/buyer-leads/internal/infra/auth"
	"github.com/xavierca1/buyer-leads/internal/infra/http/middleware"
	"github.com/xavierca1/buyer-leads/internal/usecase"
)

type LeadHandler struct {
	CreateLead *usecase.CreateLeadUseCase
	UpdateLead *usecase.UpdateLeadUseCase
	GetLead    *usecase.GetLeadUseCase
	ListLeads  *usecase.ListLeadsUseCase
	Logger     logrus.FieldLogger
}

func NewLeadHandler(
	create *usecase.CreateLeadUseCase,
	update *usecase.UpdateLeadUseCase,
	get *usecase.GetLeadUseCase,
	list *usecase.ListLeadsUseCase,
	logger logrus.FieldLogger,
) *LeadHandler {
	return &LeadHandler{
		CreateLead: create,
		UpdateLead: update,
		GetLead:    get,
		ListLeads:  list,
		Logger:     logger,
	}
}

// List handles GET /api/buyers.
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())
	q := r.URL.Query()

	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	out, err := h.ListLeads.Execute(r.Context(), usecase.ListLeadsInput{
		Actor:        actor,
		Page:         page,
		City:         q.Get("city"),
		PropertyType: q.Get("propertyType"),
		Status:       q.Get("status"),
		Timeline:     q.Get("timeline"),
		Search:       q.Get("search"),
	})
	if err != nil {
		writeUsecaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Create handles POST /api/buyers.
func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())

	raw, ok := decodeRaw(w, r)
	if !ok {
		return
	}

	out, err := h.CreateLead.Execute(r.Context(), usecase.CreateLeadInput{Actor: actor, Raw: raw})
	if err != nil {
		writeUsecaseError(w, h.Logger, err)
		return
	}
	if out.HistoryErr != nil {
		middleware.RecordHistoryFailure()
	}
	middleware.RecordLeadCreated("direct")

	writeJSON(w, http.StatusOK, out.Buyer)
}

// Get handles GET /api/buyers/{id}.
func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())

	out, err := h.GetLead.Execute(r.Context(), usecase.GetLeadInput{Actor: actor, ID: chi.URLParam(r, "id")})
	if err != nil {
		writeUsecaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Update handles POST and PUT /api/buyers/{id}. The body carries the full
// lead plus the updatedAt token the client last read.
func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())

	raw, ok := decodeRaw(w, r)
	if !ok {
		return
	}
	token, _ := raw["updatedAt"].(string)
	delete(raw, "updatedAt")

	out, err := h.UpdateLead.Execute(r.Context(), usecase.UpdateLeadInput{
		Actor:     actor,
		ID:        chi.URLParam(r, "id"),
		UpdatedAt: token,
		Raw:       raw,
	})
	if err != nil {
		middleware.RecordLeadUpdate(outcomeLabel(err))
		writeUsecaseError(w, h.Logger, err)
		return
	}
	if out.HistoryErr != nil {
		middleware.RecordHistoryFailure()
	}
	middleware.RecordLeadUpdate("ok")

	writeJSON(w, http.StatusOK, out)
}

func decodeRaw(w http.ResponseWriter, r *http.Request) (usecase.RawLead, bool) {
	var raw usecase.RawLead
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil || raw == nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return nil, false
	}
	return raw, true
}

func outcomeLabel(err error) string {
	switch usecase.ErrorCode(err) {
	case usecase.CodeValidation:
		return "invalid"
	case usecase.CodeNotFound:
		return "not_found"
	case usecase.CodeForbidden:
		return "forbidden"
	case usecase.CodeConflict:
		return "conflict"
	default:
		return "error"
	}
}

// filterFromQuery is shared by export; list reads the same keys.
func filterFromQuery(r *http.Request, actor entity.Actor) usecase.ExportLeadsInput {
	q := r.URL.Query()
	return usecase.ExportLeadsInput{
		Actor:        actor,
		City:         q.Get("city"),
		PropertyType: q.Get("propertyType"),
		Status:       q.Get("status"),
		Timeline:     q.Get("timeline"),
		Search:       q.Get("search"),
	}
}
