package httpapi_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fazalwahab12/shift-backend-sub001/internal/hiring"
	"github.com/Fazalwahab12/shift-backend-sub001/internal/httpapi"
	"github.com/Fazalwahab12/shift-backend-sub001/internal/storage/memory"
)

type testServer struct {
	srv  *httptest.Server
	gate *memory.Gate
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore(time.UTC)
	gate := memory.NewGate()
	engine := hiring.NewOrchestrator(hiring.Dependencies{
		Applications: store.Applications(),
		Interviews:   store.Interviews(),
		Jobs: memory.NewJobDirectory(hiring.Job{
			ID: "job-1", CompanyID: "company-1",
			Title: "Barista", CompanyName: "Muscat Coffee Works",
			Status: hiring.JobPublished,
		}),
		Gate:     gate,
		Chat:     memory.NewChatService(),
		Notifier: memory.NewNotifier(),
		Lease:    memory.NewLease(),
		Window:   hiring.Window{OpenMinute: 540, CloseMinute: 1080},
	})

	mux := http.NewServeMux()
	httpapi.NewHandler(engine, nil).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return &testServer{srv: srv, gate: gate}
}

func (ts *testServer) do(t *testing.T, method, path, userID, role string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, &buf)
	require.NoError(t, err)
	if userID != "" {
		req.Header.Set("x-user-id", userID)
		req.Header.Set("x-user-role", role)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeApp(t *testing.T, resp *http.Response) hiring.JobApplication {
	t.Helper()
	var app hiring.JobApplication
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&app))
	return app
}

func (ts *testServer) applyAndGet(t *testing.T) hiring.JobApplication {
	t.Helper()
	resp := ts.do(t, http.MethodPost, "/applications", "seeker-1", "seeker",
		map[string]string{"jobId": "job-1"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeApp(t, resp)
}

// ── Auth headers ───────────────────────────────────────────────────────────

func TestMissingIdentityHeaders(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.do(t, http.MethodGet, "/applications", "", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUnknownRole(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.do(t, http.MethodGet, "/applications", "u-1", "admin", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ── Application routes ─────────────────────────────────────────────────────

func TestApplyRoute(t *testing.T) {
	ts := newTestServer(t)
	app := ts.applyAndGet(t)
	assert.Equal(t, hiring.StatusApplied, app.Status)
	assert.Equal(t, "job-1", app.JobID)
}

func TestApplyRoute_MissingJobID(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.do(t, http.MethodPost, "/applications", "seeker-1", "seeker", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body hiring.Error
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, hiring.CodeValidation, body.Code)
}

func TestListApplicationsRoute(t *testing.T) {
	ts := newTestServer(t)
	ts.applyAndGet(t)

	resp := ts.do(t, http.MethodGet, "/applications", "company-1", "company", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var apps []hiring.JobApplication
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&apps))
	assert.Len(t, apps, 1)
}

func TestGetApplicationRoute(t *testing.T) {
	ts := newTestServer(t)
	app := ts.applyAndGet(t)

	resp := ts.do(t, http.MethodGet, "/applications/"+app.ID, "seeker-1", "seeker", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, app.ID, decodeApp(t, resp).ID)

	resp = ts.do(t, http.MethodGet, "/applications/"+app.ID, "seeker-2", "seeker", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/applications/nope", "seeker-1", "seeker", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestApplicationActionRoutes(t *testing.T) {
	ts := newTestServer(t)
	app := ts.applyAndGet(t)

	resp := ts.do(t, http.MethodPost, "/applications/"+app.ID+"/view", "company-1", "company", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, hiring.StatusViewed, decodeApp(t, resp).Status)

	resp = ts.do(t, http.MethodPost, "/applications/"+app.ID+"/shortlist", "company-1", "company", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, hiring.StatusShortlisted, decodeApp(t, resp).Status)

	resp = ts.do(t, http.MethodPost, "/applications/"+app.ID+"/reject", "company-1", "company",
		map[string]string{"reason": "position filled"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, hiring.StatusRejected, decodeApp(t, resp).Status)
}

func TestInvalidTransitionMapsTo422(t *testing.T) {
	ts := newTestServer(t)
	app := ts.applyAndGet(t)

	resp := ts.do(t, http.MethodPost, "/applications/"+app.ID+"/withdraw", "seeker-1", "seeker", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/applications/"+app.ID+"/reject", "company-1", "company",
		map[string]string{"reason": "late"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var body hiring.Error
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, hiring.CodeInvalidTransition, body.Code)
	assert.Equal(t, "withdrawn", body.Details["current"])
}

func TestPlanLimitMapsTo403(t *testing.T) {
	ts := newTestServer(t)
	ts.gate.Deny("company-1", "hire")
	app := ts.applyAndGet(t)

	resp := ts.do(t, http.MethodPost, "/applications/"+app.ID+"/accept", "company-1", "company", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var body hiring.Error
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, hiring.ReasonPlanLimit, body.Details["reason"])
}

func TestHireFlowRoutes(t *testing.T) {
	ts := newTestServer(t)
	app := ts.applyAndGet(t)

	resp := ts.do(t, http.MethodPost, "/applications/"+app.ID+"/accept", "company-1", "company", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	offered := decodeApp(t, resp)
	assert.Equal(t, hiring.StatusHireRequestSent, offered.Status)
	require.NotNil(t, offered.ChatID)

	resp = ts.do(t, http.MethodPost, "/applications/"+app.ID+"/hire-response", "seeker-1", "seeker",
		map[string]bool{"accepted": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, hiring.StatusHired, decodeApp(t, resp).Status)

	resp = ts.do(t, http.MethodPost, "/applications/"+app.ID+"/complete", "company-1", "company",
		map[string]any{"feedback": "solid", "rating": 5})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, hiring.StatusCompleted, decodeApp(t, resp).Status)
}

func TestHireResponseRequiresAcceptedField(t *testing.T) {
	ts := newTestServer(t)
	app := ts.applyAndGet(t)

	resp := ts.do(t, http.MethodPost, "/applications/"+app.ID+"/accept", "company-1", "company", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Neither an empty body nor one without the field may count as a decline.
	for _, body := range []any{nil, map[string]string{"reason": "thinking"}} {
		resp = ts.do(t, http.MethodPost, "/applications/"+app.ID+"/hire-response", "seeker-1", "seeker", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	}

	resp = ts.do(t, http.MethodGet, "/applications/"+app.ID, "seeker-1", "seeker", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, hiring.StatusHireRequestSent, decodeApp(t, resp).Status)
}

// ── Interview routes ───────────────────────────────────────────────────────

func scheduleBody(start string) map[string]any {
	return map[string]any{
		"date":            time.Now().AddDate(0, 0, 1).Format("2006-01-02"),
		"startTime":       start,
		"durationMinutes": 30,
		"interviewType":   "video",
	}
}

func TestInterviewRoutes(t *testing.T) {
	ts := newTestServer(t)
	app := ts.applyAndGet(t)

	resp := ts.do(t, http.MethodPost, "/applications/"+app.ID+"/interview", "company-1", "company",
		scheduleBody("10:00"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var iv hiring.Interview
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&iv))
	assert.Equal(t, hiring.InterviewScheduled, iv.Status)

	resp = ts.do(t, http.MethodPost, "/interviews/"+iv.ID+"/confirm", "seeker-1", "seeker", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/interviews/"+iv.ID+"/complete", "company-1", "company",
		map[string]any{"result": "pass", "rating": 4})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var done hiring.Interview
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&done))
	assert.Equal(t, hiring.InterviewCompleted, done.Status)

	resp = ts.do(t, http.MethodGet, "/applications/"+app.ID+"/interviews", "seeker-1", "seeker", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ivs []hiring.Interview
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ivs))
	assert.Len(t, ivs, 1)
}

func TestSlotConflictMapsTo409(t *testing.T) {
	ts := newTestServer(t)
	app := ts.applyAndGet(t)

	resp := ts.do(t, http.MethodPost, "/applications/"+app.ID+"/interview", "company-1", "company",
		scheduleBody("10:00"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// A second applicant asking for an overlapping slot collides.
	resp = ts.do(t, http.MethodPost, "/applications", "seeker-2", "seeker",
		map[string]string{"jobId": "job-1"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	app2 := decodeApp(t, resp)

	resp = ts.do(t, http.MethodPost, "/applications/"+app2.ID+"/interview", "company-1", "company",
		scheduleBody("10:15"))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var body hiring.Error
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, hiring.CodeSlotConflict, body.Code)
}

func TestRescheduleRoute(t *testing.T) {
	ts := newTestServer(t)
	app := ts.applyAndGet(t)

	resp := ts.do(t, http.MethodPost, "/applications/"+app.ID+"/interview", "company-1", "company",
		scheduleBody("10:00"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var iv hiring.Interview
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&iv))

	resp = ts.do(t, http.MethodPost, "/interviews/"+iv.ID+"/reschedule", "seeker-1", "seeker",
		map[string]string{
			"date":      time.Now().AddDate(0, 0, 1).Format("2006-01-02"),
			"startTime": "15:00",
			"reason":    "clash",
		})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var moved hiring.Interview
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&moved))
	assert.Equal(t, "15:00", moved.StartTime)
}

func TestAddDatesRoute(t *testing.T) {
	ts := newTestServer(t)
	app := ts.applyAndGet(t)

	resp := ts.do(t, http.MethodPost, "/applications/"+app.ID+"/interview", "company-1", "company",
		scheduleBody("10:00"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var iv hiring.Interview
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&iv))

	resp = ts.do(t, http.MethodPost, "/interviews/"+iv.ID+"/dates", "company-1", "company",
		map[string]any{"options": []map[string]string{
			{"date": time.Now().AddDate(0, 0, 2).Format("2006-01-02"), "startTime": "11:00"},
		}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got hiring.Interview
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Len(t, got.AdditionalDates, 1)
}

// ── Slots route ────────────────────────────────────────────────────────────

func TestSlotsRoute(t *testing.T) {
	ts := newTestServer(t)
	date := time.Now().AddDate(0, 0, 1).Format("2006-01-02")

	resp := ts.do(t, http.MethodGet,
		fmt.Sprintf("/slots?date=%s&duration=60", date), "company-1", "company", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Date  string   `json:"date"`
		Slots []string `json:"slots"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, date, body.Date)
	assert.Equal(t, "09:00", body.Slots[0])
	assert.Equal(t, "17:00", body.Slots[len(body.Slots)-1])
}

func TestSlotsRoute_MissingDuration(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.do(t, http.MethodGet, "/slots?date=2026-09-01", "company-1", "company", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUnknownActionIs404(t *testing.T) {
	ts := newTestServer(t)
	app := ts.applyAndGet(t)
	resp := ts.do(t, http.MethodPost, "/applications/"+app.ID+"/promote", "company-1", "company", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
