package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/greenleaf/internal/blob"
	"github.com/smallbiznis/greenleaf/internal/blob/memory"
	"github.com/smallbiznis/greenleaf/internal/booking/domain"
	"github.com/smallbiznis/greenleaf/internal/booking/export"
	"github.com/smallbiznis/greenleaf/internal/booking/repository"
	"github.com/smallbiznis/greenleaf/internal/booking/service"
	"github.com/smallbiznis/greenleaf/internal/clock"
	"github.com/smallbiznis/greenleaf/internal/config"
	"github.com/smallbiznis/greenleaf/internal/maintenance"
	"github.com/smallbiznis/greenleaf/internal/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testAdminKey = "s3cret"
	testRef      = "GLB-25-000001-AB12"
)

type testServer struct {
	router *gin.Engine
	store  *memory.Store
	clock  *clock.FakeClock
}

func newTestServer(t *testing.T, cfg config.Config, policies config.RatePolicies) testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := zap.NewNop()
	store := memory.New()
	fc := clock.NewFakeClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	repos := repository.Provide(store, log)
	bookingSvc := service.New(service.Params{
		Log:     log,
		Clock:   fc,
		Config:  cfg,
		Records: repos.Records,
		Legacy:  repos.Legacy,
		Index:   repos.Index,
	})
	if policies == nil {
		policies = config.DefaultRatePolicies()
	}
	guard := ratelimit.NewGuard(cfg, ratelimit.NewSlidingWindow(fc), config.NewStaticPolicyHolder(policies), log)

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	NewServer(ServerParams{
		Gin:         router,
		Cfg:         cfg,
		Clock:       fc,
		BookingSvc:  bookingSvc,
		Maintenance: maintenance.New(store, log),
		Guard:       guard,
	})
	return testServer{router: router, store: store, clock: fc}
}

func defaultConfig() config.Config {
	return config.Config{
		AdminKey:      testAdminKey,
		BrandName:     "Greenleaf Assurance",
		PublicBaseURL: "https://booking.example.com",
		RateLimit:     config.RateLimitConfig{Enabled: true},
	}
}

func (s testServer) do(method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	s.router.ServeHTTP(resp, req)
	return resp
}

func adminHeader() map[string]string {
	return map[string]string{headerAdminKey: testAdminKey}
}

func decode(t *testing.T, resp *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out), resp.Body.String())
	return out
}

func errorType(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var out errorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out), resp.Body.String())
	return out.Error.Type
}

func saveBody(ref, email string) string {
	return `{"refId":"` + ref + `","form":{"requester":{"company":"Acme","email":"` + email + `"}}}`
}

func TestSaveThenGetBooking(t *testing.T) {
	srv := newTestServer(t, defaultConfig(), nil)

	resp := srv.do(http.MethodPost, "/api/bookings", saveBody(testRef, "a@x.com"), nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "no-store", resp.Header().Get("Cache-Control"))
	body := decode(t, resp)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, testRef, body["id"])
	assert.EqualValues(t, 1, body["version"])
	assert.Equal(t, false, body["locked"])
	assert.Equal(t, true, body["indexed"])

	resp = srv.do(http.MethodGet, "/api/bookings/"+testRef, "", nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var rec domain.BookingRecord
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &rec))
	assert.Equal(t, 2, rec.Version)
	assert.Equal(t, 1, rec.Metrics.Views)
	assert.JSONEq(t, `{"requester":{"company":"Acme","email":"a@x.com"}}`, string(rec.Form))

	resp = srv.do(http.MethodGet, "/api/get-booking?ref="+testRef, "", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &rec))
	assert.Equal(t, 2, rec.Metrics.Views)
}

func TestGetBookingErrors(t *testing.T) {
	srv := newTestServer(t, defaultConfig(), nil)

	resp := srv.do(http.MethodGet, "/api/bookings/GLB-404", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "not_found", errorType(t, resp))

	resp = srv.do(http.MethodGet, "/api/get-booking", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "validation_error", errorType(t, resp))
}

func TestLockedRecordRejectsAnonymousSave(t *testing.T) {
	srv := newTestServer(t, defaultConfig(), nil)
	require.Equal(t, http.StatusOK, srv.do(http.MethodPost, "/api/bookings", saveBody(testRef, "a@x.com"), nil).Code)

	lock := `{"refId":"` + testRef + `","action":"lock"}`
	resp := srv.do(http.MethodPost, "/api/admin/bookings/lock", lock, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = srv.do(http.MethodPost, "/api/admin/bookings/lock", lock, adminHeader())
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	body := decode(t, resp)
	assert.Equal(t, true, body["locked"])
	assert.EqualValues(t, 2, body["version"])

	resp = srv.do(http.MethodPost, "/api/save-booking", saveBody(testRef, "b@x.com"), nil)
	assert.Equal(t, http.StatusLocked, resp.Code)
	assert.Equal(t, "record_locked", errorType(t, resp))

	resp = srv.do(http.MethodPost, "/api/bookings", saveBody(testRef, "b@x.com"), adminHeader())
	require.Equal(t, http.StatusOK, resp.Code)
	assert.EqualValues(t, 3, decode(t, resp)["version"])
}

func TestLockRejectsUnknownAction(t *testing.T) {
	srv := newTestServer(t, defaultConfig(), nil)
	resp := srv.do(http.MethodPost, "/api/booking-admin", `{"refId":"`+testRef+`","action":"freeze"}`, adminHeader())
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	var out errorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	require.Len(t, out.Error.Errors, 1)
	assert.Equal(t, "invalid_action", out.Error.Errors[0].Code)
}

func TestEmptyAdminKeyDeniesEverything(t *testing.T) {
	cfg := defaultConfig()
	cfg.AdminKey = ""
	srv := newTestServer(t, cfg, nil)

	resp := srv.do(http.MethodPost, "/api/admin/index/rebuild", "", map[string]string{headerAdminKey: ""})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	resp = srv.do(http.MethodGet, "/api/booking-index", "", map[string]string{headerAdminKey: "anything"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestSetStageFromFormBodyAndQuery(t *testing.T) {
	srv := newTestServer(t, defaultConfig(), nil)
	require.Equal(t, http.StatusOK, srv.do(http.MethodPost, "/api/bookings", saveBody(testRef, "a@x.com"), nil).Code)

	req := httptest.NewRequest(http.MethodPost, "/api/job-update?ref="+testRef, strings.NewReader("stage=COMPLETED&dueAt=2025-04-01"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(headerAdminKey, testAdminKey)
	resp := httptest.NewRecorder()
	srv.router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var out struct {
		OK      bool                  `json:"ok"`
		Job     domain.JobState       `json:"job"`
		History []domain.HistoryEntry `json:"history"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	assert.True(t, out.OK)
	assert.Equal(t, domain.StageCompleted, out.Job.CurrentStage)
	require.NotNil(t, out.Job.DueAt)
	assert.Equal(t, "2025-04-01", *out.Job.DueAt)
	require.Len(t, out.History, 1)

	resp = srv.do(http.MethodPost, "/api/admin/bookings/stage", `{"refId":"`+testRef+`","stage":"COMPLETED","dueAt":""}`, adminHeader())
	require.Equal(t, http.StatusOK, resp.Code)

	resp = srv.do(http.MethodGet, "/api/job?ref="+testRef, "", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var view domain.JobView
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &view))
	assert.Equal(t, domain.StageCompleted, view.Job.CurrentStage)
	assert.Len(t, view.History, 1)
	require.NotNil(t, view.Job.DueAt)
	assert.Equal(t, "2025-04-01", *view.Job.DueAt)
}

func TestSetStageValidation(t *testing.T) {
	srv := newTestServer(t, defaultConfig(), nil)
	require.Equal(t, http.StatusOK, srv.do(http.MethodPost, "/api/bookings", saveBody(testRef, "a@x.com"), nil).Code)

	resp := srv.do(http.MethodPost, "/api/admin/bookings/stage", `{"ref":"`+testRef+`","stage":"SHIPPED"}`, adminHeader())
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = srv.do(http.MethodPost, "/api/admin/bookings/stage", `{"ref":"`+testRef+`"}`, adminHeader())
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = srv.do(http.MethodPost, "/api/admin/bookings/stage", `{"ref":"GLB-404","stage":"COMPLETED"}`, adminHeader())
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestGetJobDefaultsForNewRecord(t *testing.T) {
	srv := newTestServer(t, defaultConfig(), nil)
	require.Equal(t, http.StatusOK, srv.do(http.MethodPost, "/api/bookings", saveBody(testRef, "a@x.com"), nil).Code)

	resp := srv.do(http.MethodGet, "/api/bookings/"+testRef+"/job", "", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"job":{"current_stage":"APPLICATION_SUBMITTED","created_at":"2025-03-01T09:00:00.000Z","due_at":null},"history":[]}`, resp.Body.String())
}

func TestStagePreflight(t *testing.T) {
	srv := newTestServer(t, defaultConfig(), nil)

	for _, path := range []string{"/api/job-update", "/api/admin/bookings/stage", "/api/cleanup-blobs"} {
		resp := srv.do(http.MethodOptions, path, "", nil)
		assert.Equal(t, http.StatusOK, resp.Code, path)
		assert.Equal(t, "*", resp.Header().Get("Access-Control-Allow-Origin"), path)
		assert.Contains(t, resp.Header().Get("Access-Control-Allow-Headers"), headerAdminKey, path)
	}
}

func TestSavePayloadTooLarge(t *testing.T) {
	cfg := defaultConfig()
	cfg.MaxPayloadBytes = 32
	srv := newTestServer(t, cfg, nil)

	resp := srv.do(http.MethodPost, "/api/bookings", saveBody(testRef, "someone@example.com"), nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)
	assert.Equal(t, "payload_too_large", errorType(t, resp))
}

func TestSaveRejectsMalformedJSON(t *testing.T) {
	srv := newTestServer(t, defaultConfig(), nil)

	resp := srv.do(http.MethodPost, "/api/bookings", `{"refId":`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "validation_error", errorType(t, resp))
}

func TestRateLimitDeniesWithRetryAfter(t *testing.T) {
	policies := config.DefaultRatePolicies()
	policies[config.PolicyRead] = config.RatePolicy{Limit: 2, Window: time.Minute}
	srv := newTestServer(t, defaultConfig(), policies)

	for i := 0; i < 2; i++ {
		resp := srv.do(http.MethodGet, "/api/bookings/GLB-404", "", nil)
		assert.Equal(t, http.StatusNotFound, resp.Code)
	}
	resp := srv.do(http.MethodGet, "/api/bookings/GLB-404", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.Equal(t, "60", resp.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limited", errorType(t, resp))

	// Another client has its own window.
	resp = srv.do(http.MethodGet, "/api/bookings/GLB-404", "", map[string]string{headerEdgeClientIP: "198.51.100.9"})
	assert.Equal(t, http.StatusNotFound, resp.Code)

	srv.clock.Advance(time.Minute)
	resp = srv.do(http.MethodGet, "/api/bookings/GLB-404", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestRateLimitDisabled(t *testing.T) {
	cfg := defaultConfig()
	cfg.RateLimit.Enabled = false
	policies := config.DefaultRatePolicies()
	policies[config.PolicyRead] = config.RatePolicy{Limit: 1, Window: time.Minute}
	srv := newTestServer(t, cfg, policies)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusNotFound, srv.do(http.MethodGet, "/api/bookings/GLB-404", "", nil).Code)
	}
}

func TestExportCSV(t *testing.T) {
	srv := newTestServer(t, defaultConfig(), nil)

	resp := srv.do(http.MethodGet, "/api/bookings/export.csv", "", nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, strings.Join(export.Header, ",")+"\n", resp.Body.String())

	require.Equal(t, http.StatusOK, srv.do(http.MethodPost, "/api/bookings", saveBody(testRef, "a@x.com"), nil).Code)
	resp = srv.do(http.MethodGet, "/api/booking-export-csv", "", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="bookings.csv"`, resp.Header().Get("Content-Disposition"))
	lines := strings.Split(strings.TrimSpace(resp.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], testRef+",2025-03-01T09:00:00.000Z,Acme,a@x.com,"), lines[1])
}

func TestListBookings(t *testing.T) {
	srv := newTestServer(t, defaultConfig(), nil)
	require.Equal(t, http.StatusOK, srv.do(http.MethodPost, "/api/bookings", saveBody(testRef, "a@x.com"), nil).Code)
	srv.clock.Advance(time.Minute)
	require.Equal(t, http.StatusOK, srv.do(http.MethodPost, "/api/bookings", saveBody("GLB-25-000002-CD34", "b@y.com"), nil).Code)

	resp := srv.do(http.MethodGet, "/api/admin/bookings?q=b@y", "", adminHeader())
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var entries []domain.IndexEntry
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "GLB-25-000002-CD34", entries[0].ID)

	resp = srv.do(http.MethodGet, "/api/booking-index?format=csv&limit=1", "", adminHeader())
	require.Equal(t, http.StatusOK, resp.Code)
	lines := strings.Split(strings.TrimSpace(resp.Body.String()), "\n")
	assert.Len(t, lines, 2)

	resp = srv.do(http.MethodGet, "/api/admin/bookings?limit=abc", "", adminHeader())
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	resp = srv.do(http.MethodGet, "/api/admin/bookings?format=xml", "", adminHeader())
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestRebuildIndex(t *testing.T) {
	srv := newTestServer(t, defaultConfig(), nil)
	require.Equal(t, http.StatusOK, srv.do(http.MethodPost, "/api/bookings", saveBody(testRef, "a@x.com"), nil).Code)
	require.NoError(t, srv.store.Delete(context.Background(), domain.IndexKey))

	resp := srv.do(http.MethodPost, "/api/rebuild-index", "", adminHeader())
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.JSONEq(t, `{"ok":true,"count":1}`, resp.Body.String())

	raw, err := srv.store.Get(context.Background(), domain.IndexKey)
	require.NoError(t, err)
	assert.Contains(t, string(raw), testRef)
}

func TestPrintBooking(t *testing.T) {
	srv := newTestServer(t, defaultConfig(), nil)
	require.Equal(t, http.StatusOK, srv.do(http.MethodPost, "/api/bookings", saveBody(testRef, "a@x.com"), nil).Code)

	resp := srv.do(http.MethodGet, "/api/bookings/"+testRef+"/print", "", nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "text/html; charset=utf-8", resp.Header().Get("Content-Type"))
	assert.Contains(t, resp.Body.String(), testRef)
	assert.Contains(t, resp.Body.String(), "data:image/png;base64,")

	resp = srv.do(http.MethodGet, "/api/booking-print?ref="+testRef+"&format=pdf", "", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "application/pdf", resp.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(resp.Body.String(), "%PDF"))

	resp = srv.do(http.MethodGet, "/api/bookings/"+testRef+"/print?format=docx", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	var rec domain.BookingRecord
	raw, err := srv.store.Get(context.Background(), domain.RecordKey(testRef))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &rec))
	assert.Equal(t, 3, rec.Version)
	assert.Equal(t, "print", rec.LastEventType())
}

func TestCleanupBlobs(t *testing.T) {
	srv := newTestServer(t, defaultConfig(), nil)
	ctx := context.Background()
	require.NoError(t, srv.store.Put(ctx, "main@GLB-1.json", []byte(`{}`), blob.PutOptions{ContentType: "application/json"}))

	resp := srv.do(http.MethodPost, "/api/admin/blobs/cleanup", `{"prefix":"main@"}`, adminHeader())
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var res maintenance.CleanupResult
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &res))
	assert.True(t, res.DryRun)
	assert.Equal(t, []string{"main@GLB-1.json"}, res.ListedNotDeleted)
	_, err := srv.store.Get(ctx, "main@GLB-1.json")
	require.NoError(t, err)

	resp = srv.do(http.MethodPost, "/api/cleanup-blobs?dryRun=false", `{"prefix":"main@"}`, adminHeader())
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &res))
	assert.Equal(t, 1, res.DeletedCount)

	resp = srv.do(http.MethodPost, "/api/admin/blobs/cleanup", `{"prefix":"records/"}`, adminHeader())
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestMigrateBlobs(t *testing.T) {
	srv := newTestServer(t, defaultConfig(), nil)
	ctx := context.Background()
	require.NoError(t, srv.store.Put(ctx, "main@/GLB-1.json", []byte(`{}`), blob.PutOptions{}))

	resp := srv.do(http.MethodPost, "/api/migrate-blobs", `{"fromPrefix":"main@/","toPrefix":"archive/","dryRun":true}`, adminHeader())
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var res maintenance.MigrateResult
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &res))
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, []maintenance.Move{{From: "main@/GLB-1.json", To: "archive/GLB-1.json"}}, res.Moves)

	resp = srv.do(http.MethodPost, "/api/admin/blobs/migrate?fromPrefix=main@/&toPrefix=archive/", "", adminHeader())
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	_, err := srv.store.Get(ctx, "archive/GLB-1.json")
	require.NoError(t, err)
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t, defaultConfig(), nil)
	resp := srv.do(http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "not_found", errorType(t, resp))
}

func TestMapError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		typ    string
	}{
		{"storage", domain.NewStorageError("put", "records/x.json", errors.New("disk full")), http.StatusInternalServerError, "internal_error"},
		{"ref", domain.ErrInvalidRefID, http.StatusBadRequest, "validation_error"},
		{"prefix", maintenance.ErrInvalidPrefix, http.StatusBadRequest, "validation_error"},
		{"locked", domain.ErrRecordLocked, http.StatusLocked, "record_locked"},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"wrapped not found", errors.Join(errors.New("load"), domain.ErrNotFound), http.StatusNotFound, "not_found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, payload := mapError(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.typ, payload.Type)
		})
	}

	typ, code := classifyErrorForLog(domain.NewStorageError("get", "index.json", errors.New("timeout")))
	assert.Equal(t, "internal_error", typ)
	assert.Equal(t, "storage_failure", code)
}

func TestClientIPPrefersEdgeHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", clientIP(c))

	c.Request.Header.Set(headerEdgeClientIP, "203.0.113.7")
	assert.Equal(t, "203.0.113.7", clientIP(c))
}

func TestParseStageBodyDueAt(t *testing.T) {
	cases := []struct {
		name string
		body string
		set  bool
	}{
		{name: "json value", body: `{"dueAt":"2025-04-01"}`, set: true},
		{name: "json blank", body: `{"dueAt":"  "}`},
		{name: "json null", body: `{"dueAt":null}`},
		{name: "form value", body: "dueAt=2025-04-01", set: true},
		{name: "form empty", body: "dueAt="},
		{name: "absent", body: `{"stage":"COMPLETED"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.set, parseStageBody([]byte(tc.body)).dueAtSet)
		})
	}
}
