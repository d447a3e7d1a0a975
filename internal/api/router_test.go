package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Audit5S/internal/metrics"
	"github.com/MikeSquared-Agency/Audit5S/internal/state"
	"github.com/MikeSquared-Agency/Audit5S/internal/store"
)

const testToken = "test-token"

var testNow = time.Date(2026, 4, 20, 10, 0, 0, 0, time.UTC)

type mockPublisher struct {
	mu       sync.Mutex
	subjects []string
}

func (m *mockPublisher) Publish(subject string, _ interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subjects = append(m.subjects, subject)
	return nil
}

func (m *mockPublisher) Close() {}

func (m *mockPublisher) published() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.subjects...)
}

type mockImages struct {
	mock.Mock
}

func (m *mockImages) EditImage(ctx context.Context, dataURI, prompt string) (string, error) {
	args := m.Called(ctx, dataURI, prompt)
	return args.String(0), args.Error(1)
}

type testEnv struct {
	router  http.Handler
	state   *state.State
	events  *mockPublisher
	images  *mockImages
	metrics *metrics.Metrics
}

func setupTestRouter(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := state.Load(context.Background(), store.NewMemoryBackend(), logger, state.Options{
		Now:      func() time.Time { return testNow },
		Location: time.UTC,
	})
	require.NoError(t, err)

	env := &testEnv{
		state:   st,
		events:  &mockPublisher{},
		images:  &mockImages{},
		metrics: metrics.New(prometheus.NewRegistry()),
	}
	env.router = NewRouter(st, env.events, env.images, env.metrics, RouterOptions{AdminToken: testToken}, logger)
	return env
}

func (e *testEnv) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var rdr io.Reader
	if body != "" {
		rdr = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func fullAnswersJSON(ratings ...string) string {
	answers := make([]AnswerRequest, len(ratings))
	for i, r := range ratings {
		answers[i] = AnswerRequest{QuestionID: i + 1, Rating: r}
	}
	b, _ := json.Marshal(answers)
	return string(b)
}

func allYes() string {
	r := make([]string, len(store.DefaultQuestions))
	for i := range r {
		r[i] = "SI"
	}
	return fullAnswersJSON(r...)
}

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	NewMetricsRouter().ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestDraft(t *testing.T) {
	env := setupTestRouter(t)
	w := env.do("GET", "/api/v1/audits/draft", "")
	require.Equal(t, http.StatusOK, w.Code)

	var d state.Draft
	require.NoError(t, json.NewDecoder(w.Body).Decode(&d))
	assert.Equal(t, "ALMACÉN", d.Area)
	assert.Equal(t, "JEFE DE ALMACÉN", d.Responsable)
	assert.Equal(t, "2026-04-20", d.Date)
	assert.Len(t, d.Questions, len(store.DefaultQuestions))
}

func TestCreateAudit_DerivesActions(t *testing.T) {
	env := setupTestRouter(t)
	ratings := []string{"SI", "NO", "PARCIAL", "SI", "NA", "SI", "SI", "SI", "SI", "SI"}
	body := `{"area":"CALIDAD","auditor":"Ana","date":"2026-04-01","answers":` + fullAnswersJSON(ratings...) + `}`

	w := env.do("POST", "/api/v1/audits", body, "X-User", "ana")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp CreateAuditResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 83, resp.Audit.Score) // 7.5 / 9
	assert.Equal(t, "JEFE DE CALIDAD", resp.Audit.Responsable)
	require.Len(t, resp.Actions, 2)
	for _, a := range resp.Actions {
		assert.Equal(t, store.ActionPending, a.Status)
		assert.Equal(t, "2026-04-08", a.DueDate.Format("2006-01-02"))
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.AuditsSaved.WithLabelValues("create")))
	assert.Equal(t, 2.0, testutil.ToFloat64(env.metrics.ActionsGenerated))
	assert.Len(t, env.events.published(), 3)
}

func TestCreateAudit_AuditorMissing(t *testing.T) {
	env := setupTestRouter(t)
	w := env.do("POST", "/api/v1/audits", `{"auditor":"  ","answers":`+allYes()+`}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "auditor")
}

func TestCreateAudit_IncompleteConflict(t *testing.T) {
	env := setupTestRouter(t)
	w := env.do("POST", "/api/v1/audits", `{"auditor":"a","answers":`+fullAnswersJSON("NO", "SI")+`}`)
	require.Equal(t, http.StatusConflict, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, 2.0, body["answered"])
	assert.Equal(t, 10.0, body["total"])
	assert.Empty(t, env.state.Audits(""))

	w = env.do("POST", "/api/v1/audits", `{"auditor":"a","confirm_incomplete":true,"answers":`+fullAnswersJSON("NO", "SI")+`}`)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateAudit_BadRequests(t *testing.T) {
	env := setupTestRouter(t)
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{`},
		{"bad rating", `{"auditor":"a","answers":[{"questionId":1,"rating":"MAYBE"}]}`},
		{"bad question id", `{"auditor":"a","answers":[{"questionId":0,"rating":"SI"}]}`},
		{"bad date", `{"auditor":"a","date":"01/04/2026","answers":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do("POST", "/api/v1/audits", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestUpdateAudit_NoNewActions(t *testing.T) {
	env := setupTestRouter(t)
	w := env.do("POST", "/api/v1/audits", `{"auditor":"a","answers":`+allYes()+`}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created CreateAuditResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	assert.Empty(t, created.Actions)

	bad := fullAnswersJSON("NO", "NO", "NO", "NO", "NO", "NO", "NO", "NO", "NO", "NO")
	w = env.do("PUT", "/api/v1/audits/"+created.Audit.ID.String(), `{"auditor":"a","answers":`+bad+`}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var rec store.AuditRecord
	require.NoError(t, json.NewDecoder(w.Body).Decode(&rec))
	assert.Equal(t, 0, rec.Score)
	assert.Empty(t, env.state.Actions(actionplanAll()))
}

func TestGetAndDeleteAudit(t *testing.T) {
	env := setupTestRouter(t)
	w := env.do("POST", "/api/v1/audits", `{"auditor":"a","answers":`+fullAnswersJSON("NO", "SI", "SI", "SI", "SI", "SI", "SI", "SI", "SI", "SI")+`}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created CreateAuditResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	path := "/api/v1/audits/" + created.Audit.ID.String()

	assert.Equal(t, http.StatusOK, env.do("GET", path, "").Code)
	assert.Equal(t, http.StatusNoContent, env.do("DELETE", path, "").Code)
	assert.Equal(t, http.StatusNotFound, env.do("GET", path, "").Code)
	assert.Equal(t, http.StatusNotFound, env.do("DELETE", path, "").Code)
	assert.Equal(t, http.StatusBadRequest, env.do("GET", "/api/v1/audits/not-a-uuid", "").Code)

	assert.Len(t, env.state.Actions(actionplanAll()), 1, "actions survive audit deletion")
}

func TestListAudits_AreaFilter(t *testing.T) {
	env := setupTestRouter(t)
	for _, area := range []string{"CALIDAD", "OFICINAS", "CALIDAD"} {
		w := env.do("POST", "/api/v1/audits", `{"area":"`+area+`","auditor":"a","answers":`+allYes()+`}`)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := env.do("GET", "/api/v1/audits?area=CALIDAD", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []store.AuditRecord
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	assert.Len(t, list, 2)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do("POST", "/api/v1/config/areas", `{"name":"taller"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do("DELETE", "/api/v1/actions", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do("POST", "/api/v1/config/areas", `{"name":"taller"}`, "Authorization", "Bearer "+testToken)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestMetricsRouteLabel(t *testing.T) {
	env := setupTestRouter(t)
	env.do("GET", "/api/v1/dashboard", "")
	assert.Equal(t, 1, testutil.CollectAndCount(env.metrics.RequestDuration))
}
