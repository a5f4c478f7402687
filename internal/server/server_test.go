package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/api/apitest"
	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/clock"
	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/complaint"
	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/errors"
	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/feedback"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type recordingNotifier struct {
	reports []complaint.BulkResult
}

func (n *recordingNotifier) SendBulkReport(res complaint.BulkResult) error {
	n.reports = append(n.reports, res)
	return nil
}

func newTestServer(t *testing.T, cfg Config) (*Server, *apitest.Fake, *recordingNotifier) {
	t.Helper()

	fake := apitest.New(t,
		apitest.NewComplaint(1, "Missing onions", 1),
		apitest.NewComplaint(2, "Spoiled milk", 1),
		apitest.NewComplaint(3, "Broken freezer", 3),
	)
	authority := fake.Authority()
	store := complaint.NewStore(authority,
		complaint.WithClock(clock.NewFake(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))))
	_, err := store.Load(context.Background())
	require.NoError(t, err)

	notifier := &recordingNotifier{}
	return New(cfg, store, feedback.NewLinker(authority, nil), nil, notifier), fake, notifier
}

func do(t *testing.T, s *Server, method, path, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	s, _, _ := newTestServer(t, Config{GateSecret: "secret"})

	w := do(t, s, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code, "health is outside the gate")
	assert.Equal(t, "ready", decode(t, w)["store"])
}

func TestListComplaints(t *testing.T) {
	s, _, _ := newTestServer(t, Config{PageSize: 2})

	w := do(t, s, http.MethodGet, "/api/complaints?status=pending", "")
	require.Equal(t, http.StatusOK, w.Code)

	data := decode(t, w)["data"].(map[string]any)
	assert.EqualValues(t, 2, data["totalItems"])
	assert.EqualValues(t, 1, data["totalPages"])
	items := data["items"].([]any)
	assert.Equal(t, "2025-0001", items[0].(map[string]any)["id"])

	w = do(t, s, http.MethodGet, "/api/complaints?status=bogus", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetStatus(t *testing.T) {
	s, fake, _ := newTestServer(t, Config{})

	w := do(t, s, http.MethodPatch, "/api/complaints/2025-0002/status", `{"status":"completed"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	remote, _ := fake.Complaint(2)
	assert.Equal(t, 3, remote.Status)

	w = do(t, s, http.MethodPatch, "/api/complaints/2025-00x2/status", `{"status":"completed"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "malformed id")

	fake.FailStatusUpdate(1, http.StatusBadRequest)
	w = do(t, s, http.MethodPatch, "/api/complaints/2025-0001/status", `{"status":"rejected"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	fake.FailStatusUpdate(1, http.StatusServiceUnavailable)
	w = do(t, s, http.MethodPatch, "/api/complaints/2025-0001/status", `{"status":"rejected"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestBulkStatusPartialFailure(t *testing.T) {
	s, fake, notifier := newTestServer(t, Config{})
	fake.FailStatusUpdate(2, http.StatusBadRequest)

	w := do(t, s, http.MethodPost, "/api/complaints/bulk-status",
		`{"ids":["2025-0001","2025-0002","2025-0003"],"status":"processing","notify":true}`)

	require.Equal(t, http.StatusMultiStatus, w.Code, w.Body.String())
	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, []any{"2025-0001", "2025-0003"}, data["succeeded"])
	failed := data["failed"].([]any)
	require.Len(t, failed, 1)
	assert.Equal(t, "2025-0002", failed[0].(map[string]any)["id"])
	require.Len(t, notifier.reports, 1)
	assert.Equal(t, 2, notifier.reports[0].SucceededCount())

	lastBulk := s.monitor.Status().LastBulk
	require.NotNil(t, lastBulk)
	assert.Equal(t, 1, lastBulk.Failed)
}

func TestBulkStatusAllSucceeded(t *testing.T) {
	s, _, notifier := newTestServer(t, Config{})

	w := do(t, s, http.MethodPost, "/api/complaints/bulk-status", `{"ids":["2025-0001"],"status":"completed"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, notifier.reports, "no report unless asked")
}

func TestFeedbackLifecycle(t *testing.T) {
	s, fake, _ := newTestServer(t, Config{})

	w := do(t, s, http.MethodGet, "/api/complaints/2025-0001/feedback", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["data"].(map[string]any)["present"])

	w = do(t, s, http.MethodPut, "/api/complaints/2025-0001/feedback", `{"assignee":"kim","content":"Onions ordered"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	saved := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, "Feedback for complaint #1", saved["title"])
	assert.Equal(t, 1, fake.Calls(apitest.OpCreate))

	w = do(t, s, http.MethodGet, "/api/complaints/2025-0001/feedback", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["data"].(map[string]any)["present"])

	w = do(t, s, http.MethodPut, "/api/complaints/2025-0001/feedback", `{"assignee":"kim","content":"   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodDelete, "/api/complaints/2025-0001/feedback", "")
	require.Equal(t, http.StatusOK, w.Code)
	_, exists := fake.FeedbackFor(1)
	assert.False(t, exists)
}

func TestFeedbackUnknownComplaint(t *testing.T) {
	s, _, _ := newTestServer(t, Config{})

	w := do(t, s, http.MethodGet, "/api/complaints/2025-0099/feedback", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFeedbackProbeFailure(t *testing.T) {
	s, fake, _ := newTestServer(t, Config{})
	fake.FailProbe(3, http.StatusInternalServerError)

	w := do(t, s, http.MethodPut, "/api/complaints/2025-0003/feedback", `{"assignee":"kim","content":"x"}`)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Zero(t, fake.Calls(apitest.OpCreate))
}

func TestStatsAndExport(t *testing.T) {
	s, _, _ := newTestServer(t, Config{})

	w := do(t, s, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]any)
	assert.EqualValues(t, 3, data["total"])
	assert.EqualValues(t, 2, data["byStatus"].(map[string]any)["pending"])
	assert.EqualValues(t, 0, data["byStatus"].(map[string]any)["rejected"])

	w = do(t, s, http.MethodGet, "/api/complaints/export.csv?search=milk", "")
	require.Equal(t, http.StatusOK, w.Code)
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[1], "Spoiled milk")
}

func TestReload(t *testing.T) {
	s, fake, _ := newTestServer(t, Config{})
	fake.FailList(http.StatusBadRequest, 1)

	w := do(t, s, http.MethodPost, "/api/complaints/reload", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "degraded", s.monitor.Status().Status)

	w = do(t, s, http.MethodPost, "/api/complaints/reload", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, decode(t, w)["data"].(map[string]any)["count"])
}

func adminToken(t *testing.T, secret, role string, exp time.Time) string {
	t.Helper()
	token, err := IssueToken(secret, GateClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "admin", ExpiresAt: jwt.NewNumericDate(exp)},
		Role:             role,
	})
	require.NoError(t, err)
	return token
}

func TestGate(t *testing.T) {
	const secret = "gate-secret"
	s, _, _ := newTestServer(t, Config{GateSecret: secret})
	future := time.Now().Add(time.Hour)

	w := do(t, s, http.MethodGet, "/api/stats", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, s, http.MethodGet, "/api/stats", "", "Authorization", "Bearer "+adminToken(t, secret, AdminRole, future))
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, s, http.MethodGet, "/api/stats", "", "Authorization", "Bearer "+adminToken(t, secret, "USER", future))
	assert.Equal(t, http.StatusUnauthorized, w.Code, "non-admin role")

	w = do(t, s, http.MethodGet, "/api/stats", "", "Authorization", "Bearer "+adminToken(t, "other", AdminRole, future))
	assert.Equal(t, http.StatusUnauthorized, w.Code, "wrong signature")

	w = do(t, s, http.MethodGet, "/api/stats", "", "Authorization", "Bearer "+adminToken(t, secret, AdminRole, time.Now().Add(-time.Minute)))
	assert.Equal(t, http.StatusUnauthorized, w.Code, "expired")
}

func TestGateRedirect(t *testing.T) {
	s, _, _ := newTestServer(t, Config{GateSecret: "gate-secret", GateRedirectURL: "https://ims.example.com/login"})

	w := do(t, s, http.MethodGet, "/api/complaints", "")

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://ims.example.com/login", w.Header().Get("Location"))
}

func TestGateCookie(t *testing.T) {
	const secret = "gate-secret"
	s, _, _ := newTestServer(t, Config{GateSecret: secret})

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.AddCookie(&http.Cookie{Name: accessCookie, Value: adminToken(t, secret, AdminRole, time.Now().Add(time.Hour))})
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.NewValidationFailedError("x", "y"), http.StatusBadRequest},
		{errors.NewMalformedIdentifierError("x", "y"), http.StatusBadRequest},
		{errors.NewRemoteRejectedError("op", 400, "no"), http.StatusUnprocessableEntity},
		{errors.NewNetworkFailureError("op", assert.AnError), http.StatusServiceUnavailable},
		{errors.NewUnexpectedFailureError("op", assert.AnError), http.StatusBadGateway},
		{errors.NewSessionExpiredError("login"), http.StatusUnauthorized},
		{errors.NewLoadFailedError(true, 3, errors.NewNetworkFailureError("op", assert.AnError)), http.StatusServiceUnavailable},
		{assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), "%T", tt.err)
	}
}

func TestCORS(t *testing.T) {
	s, _, _ := newTestServer(t, Config{AllowedOrigins: []string{"http://localhost:5173"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/stats", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}
