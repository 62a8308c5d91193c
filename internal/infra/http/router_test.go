package http_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/buyer-leads/internal/entity"
	"github.com/xavierca1/buyer-leads/internal/infra/auth"
	apihttp "github.com/xavierca1/buyer-leads/internal/infra/http"
	"github.com/xavierca1/buyer-leads/internal/infra/http/handlers"
	"github.com/xavierca1/buyer-leads/internal/infra/memory"
	"github.com/xavierca1/buyer-leads/internal/usecase"
)

type testServer struct {
	handler http.Handler
	tokens  *auth.TokenManager
}

func newTestServer(t *testing.T, limits handlers.ImportLimits) *testServer {
	t.Helper()
	logger, _ := logtest.NewNullLogger()

	users, err := auth.ParseDirectory("user-1:demo1@example.com:pass1;user-2:demo2@example.com:pass2")
	require.NoError(t, err)
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	leads := memory.NewLeadStore()
	recorder := usecase.NewHistoryRecorder(memory.NewHistoryStore())

	router := apihttp.NewRouter(apihttp.RouterDeps{
		Logger:   logger,
		Sessions: tokens,
		Leads: handlers.NewLeadHandler(
			usecase.NewCreateLeadUseCase(leads, recorder, nil, logger),
			usecase.NewUpdateLeadUseCase(leads, recorder, nil, logger),
			usecase.NewGetLeadUseCase(leads, recorder),
			usecase.NewListLeadsUseCase(leads),
			logger,
		),
		Imports: handlers.NewImportHandler(
			usecase.NewImportLeadsUseCase(leads, recorder, nil, logger),
			usecase.NewExportLeadsUseCase(leads),
			limits,
			handlers.NewRateLimiter(100),
			logger,
		),
		Auth:           handlers.NewAuthHandler(users, tokens, false, logger),
		Health:         handlers.NewHealthHandler(nil, nil, false),
		AllowedOrigins: []string{"http://localhost:3000"},
	})
	return &testServer{handler: router, tokens: tokens}
}

func defaultLimits() handlers.ImportLimits {
	return handlers.ImportLimits{MaxRows: 200, MaxBytes: 1 << 20}
}

func (s *testServer) do(t *testing.T, method, path, actorID string, body []byte, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if actorID != "" {
		token, _, err := s.tokens.Issue(entity.Actor{ID: actorID, Email: actorID + "@example.com"})
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: token})
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func leadPayload() map[string]any {
	return map[string]any{
		"fullName":     "Jane Doe",
		"phone":        "9876543210",
		"city":         "Mohali",
		"propertyType": "Apartment",
		"bhk":          "Two",
		"purpose":      "Buy",
		"budgetMin":    1000,
		"budgetMax":    2000,
		"timeline":     "Exploring",
		"source":       "Website",
		"tags":         []string{"hot"},
	}
}

func createLead(t *testing.T, s *testServer, actorID string) map[string]any {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/buyers", actorID, jsonBody(t, leadPayload()), "application/json")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var lead map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lead))
	return lead
}

func TestLoginSetsSessionCookie(t *testing.T) {
	s := newTestServer(t, defaultLimits())

	rec := s.do(t, http.MethodPost, "/api/login", "", jsonBody(t, map[string]string{"email": "demo1@example.com", "password": "pass1"}), "application/json")

	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.SessionCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	actor, err := s.tokens.Verify(cookies[0].Value)
	require.NoError(t, err)
	assert.Equal(t, "user-1", actor.ID)

	rec = s.do(t, http.MethodPost, "/api/login", "", jsonBody(t, map[string]string{"email": "demo1@example.com", "password": "nope"}), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBuyersRequireSession(t *testing.T) {
	s := newTestServer(t, defaultLimits())

	rec := s.do(t, http.MethodGet, "/api/buyers", "", nil, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
}

func TestCreateLeadValidationErrors(t *testing.T) {
	s := newTestServer(t, defaultLimits())
	payload := leadPayload()
	delete(payload, "bhk")
	payload["budgetMax"] = 500

	rec := s.do(t, http.MethodPost, "/api/buyers", "user-1", jsonBody(t, payload), "application/json")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body struct {
		Error map[string][]string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"BHK is required for Apartment or Villa"}, body.Error["bhk"])
	assert.Equal(t, []string{"Maximum budget must be greater than or equal to minimum budget"}, body.Error["budgetMax"])
}

func TestUpdateFlow(t *testing.T) {
	s := newTestServer(t, defaultLimits())
	lead := createLead(t, s, "user-1")
	id := lead["id"].(string)

	payload := leadPayload()
	payload["status"] = "Qualified"
	payload["updatedAt"] = lead["updatedAt"]

	rec := s.do(t, http.MethodPut, "/api/buyers/"+id, "user-1", jsonBody(t, payload), "application/json")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out struct {
		Buyer   map[string]any   `json:"buyer"`
		History []map[string]any `json:"history"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "Qualified", out.Buyer["status"])
	require.Len(t, out.History, 2)
	assert.Equal(t, map[string]any{"old": "New", "new": "Qualified"}, out.History[0]["diff"].(map[string]any)["status"])

	// replaying the old token conflicts
	rec = s.do(t, http.MethodPost, "/api/buyers/"+id, "user-1", jsonBody(t, payload), "application/json")
	assert.Equal(t, http.StatusConflict, rec.Code)

	// another user is forbidden, whatever the token
	rec = s.do(t, http.MethodPost, "/api/buyers/"+id, "user-2", jsonBody(t, payload), "application/json")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/buyers/"+id, "user-2", nil, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/buyers/00000000-0000-0000-0000-000000000000", "user-1", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListIsScopedAndFiltered(t *testing.T) {
	s := newTestServer(t, defaultLimits())
	createLead(t, s, "user-1")
	createLead(t, s, "user-2")

	rec := s.do(t, http.MethodGet, "/api/buyers?search=jane&city=Mohali", "user-1", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Buyers   []map[string]any `json:"buyers"`
		Total    int              `json:"total"`
		Page     int              `json:"page"`
		PageSize int              `json:"pageSize"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, 1, out.Total)
	assert.Equal(t, 1, out.Page)
	assert.Equal(t, entity.DefaultPageSize, out.PageSize)
	assert.Equal(t, "user-1", out.Buyers[0]["ownerId"])
}

const importCSV = "fullName,email,phone,city,propertyType,bhk,purpose,budgetMin,budgetMax,timeline,source,notes,tags,status\n" +
	"Asha Verma,,9876543210,Mohali,Plot,,Buy,1000,2000,0-3m,Website,,\"hot, nri\",\n" +
	"Ravi Kumar,,9876543211,InvalidCity,Plot,,Buy,,,3-6m,Website,,,\n" +
	"Neha Singh,neha@example.com,9876543212,Chandigarh,Apartment,Two,Rent,,,>6m,Referral,,,Qualified\n"

func TestImportPartialSuccess(t *testing.T) {
	s := newTestServer(t, defaultLimits())

	rec := s.do(t, http.MethodPost, "/api/buyers/import", "user-1", []byte(importCSV), "text/csv")

	require.Equal(t, http.StatusMultiStatus, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"inserted":2,"errors":[{"row":3,"message":"Invalid city: InvalidCity"}]}`, rec.Body.String())
}

func TestImportMultipartUpload(t *testing.T) {
	s := newTestServer(t, defaultLimits())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "buyers.csv")
	require.NoError(t, err)
	_, _ = part.Write([]byte(importCSV))
	require.NoError(t, mw.Close())

	rec := s.do(t, http.MethodPost, "/api/buyers/import", "user-1", buf.Bytes(), mw.FormDataContentType())

	assert.Equal(t, http.StatusMultiStatus, rec.Code, rec.Body.String())
}

func TestImportAllInvalid(t *testing.T) {
	s := newTestServer(t, defaultLimits())
	doc := "fullName,phone,city,propertyType,purpose,timeline,source\nA,1,Mohali,Plot,Buy,Exploring,Website\n"

	rec := s.do(t, http.MethodPost, "/api/buyers/import", "user-1", []byte(doc), "text/csv")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"inserted":0`)
}

func TestImportLimits(t *testing.T) {
	s := newTestServer(t, handlers.ImportLimits{MaxRows: 2, MaxBytes: 1 << 20})
	rec := s.do(t, http.MethodPost, "/api/buyers/import", "user-1", []byte(importCSV), "text/csv")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "exceeds 2 rows")

	s = newTestServer(t, handlers.ImportLimits{MaxRows: 200, MaxBytes: 64})
	rec = s.do(t, http.MethodPost, "/api/buyers/import", "user-1", []byte(importCSV), "text/csv")
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestExportCSVAndXLSX(t *testing.T) {
	s := newTestServer(t, defaultLimits())
	createLead(t, s, "user-1")
	createLead(t, s, "user-2")

	rec := s.do(t, http.MethodGet, "/api/buyers/export", "user-1", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "buyers.csv")
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Len(t, lines, 2, "header plus the caller's lead only")
	assert.Contains(t, lines[1], "Exploring")

	rec = s.do(t, http.MethodGet, "/api/buyers/export?format=xlsx", "user-1", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "buyers.xlsx")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")), "xlsx is a zip archive")
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, defaultLimits())

	rec := s.do(t, http.MethodGet, "/health", "", nil, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":"in-memory"`)
}
