package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/spigell/hh-screener/internal/ai"
	"github.com/spigell/hh-screener/internal/extraction"
	"github.com/spigell/hh-screener/internal/interview"
	"github.com/spigell/hh-screener/internal/metrics"
	"github.com/spigell/hh-screener/internal/questions"
	"github.com/spigell/hh-screener/internal/registry"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T, exportDir string) (*gin.Engine, *registry.Registry) {
	t.Helper()
	promReg := prometheus.NewRegistry()
	m := metrics.New(promReg)

	machine, err := interview.New(interview.Config{Company: "Acme"}, interview.Deps{
		Extractor: extraction.New(ai.Unavailable{}, zap.NewNop()),
		Generator: questions.New(ai.Unavailable{}, 3, zap.NewNop()),
		Metrics:   m,
	})
	require.NoError(t, err)

	reg := registry.New(m, zap.NewNop())
	h := NewHandler(reg, machine, Config{ExportDir: exportDir}, zap.NewNop())
	router := NewRouter(h, promReg, zap.NewNop())
	gin.SetMode(gin.TestMode)
	return router, reg
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeSession(t *testing.T, rec *httptest.ResponseRecorder) SessionResponse {
	t.Helper()
	var resp SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func TestSessionLifecycle(t *testing.T) {
	router, reg := newTestRouter(t, "")

	rec := do(t, router, http.MethodPost, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeSession(t, rec)
	assert.NotEmpty(t, created.SessionID)
	assert.Contains(t, created.Reply.Text, "Acme")
	assert.Equal(t, interview.PhaseCollecting, created.Reply.Progress.Phase)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	base := "/api/v1/sessions/" + created.SessionID

	rec = do(t, router, http.MethodPost, base+"/messages", map[string]string{"text": "My name is Jane Doe"})
	require.Equal(t, http.StatusOK, rec.Code)
	turn := decodeSession(t, rec)
	assert.True(t, turn.Reply.Progress.Fields["full_name"])
	assert.Contains(t, turn.Reply.Text, "email")
	assert.Equal(t, "email", turn.Summary.Missing[0])

	rec = do(t, router, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, turn.Reply.Text, decodeSession(t, rec).Reply.Text)

	rec = do(t, router, http.MethodGet, base+"/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var doc interview.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "Jane Doe", doc.Candidate.FullName)
	assert.Len(t, doc.Transcript, 3)

	rec = do(t, router, http.MethodPost, base+"/reset", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	reset := decodeSession(t, rec)
	assert.NotEqual(t, created.SessionID, reset.SessionID)
	assert.Equal(t, 1, reg.Len())

	rec = do(t, router, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "session_expired")

	rec = do(t, router, http.MethodDelete, "/api/v1/sessions/"+reset.SessionID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, reg.Len())
}

func TestMessageRejectsInvalidBody(t *testing.T) {
	router, _ := newTestRouter(t, "")
	created := decodeSession(t, do(t, router, http.MethodPost, "/api/v1/sessions", nil))

	rec := do(t, router, http.MethodPost, "/api/v1/sessions/"+created.SessionID+"/messages", "{not json")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_request")
}

func TestUnknownSession(t *testing.T) {
	router, _ := newTestRouter(t, "")

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/v1/sessions/nope/messages"},
		{http.MethodGet, "/api/v1/sessions/nope/export"},
		{http.MethodPost, "/api/v1/sessions/nope/reset"},
		{http.MethodDelete, "/api/v1/sessions/nope"},
	} {
		rec := do(t, router, tc.method, tc.path, map[string]string{"text": "hi"})
		assert.Equal(t, http.StatusNotFound, rec.Code, tc.path)
	}
}

func TestEndedSessionIsArchived(t *testing.T) {
	dir := t.TempDir()
	router, _ := newTestRouter(t, dir)
	created := decodeSession(t, do(t, router, http.MethodPost, "/api/v1/sessions", nil))

	rec := do(t, router, http.MethodPost, "/api/v1/sessions/"+created.SessionID+"/messages", map[string]string{"text": "bye"})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeSession(t, rec)
	assert.True(t, resp.Reply.Progress.Ended)
	assert.Equal(t, interview.EndedCandidateExit, resp.Reply.Progress.EndedReason)

	for i := 0; i < 2; i++ {
		rec = do(t, router, http.MethodPost, "/api/v1/sessions/"+created.SessionID+"/messages", map[string]string{"text": "hello again"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, decodeSession(t, rec).Reply.Progress.Ended)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "interview_"+created.SessionID))
}

func TestHealthAndMetrics(t *testing.T) {
	router, _ := newTestRouter(t, "")
	do(t, router, http.MethodPost, "/api/v1/sessions", nil)

	rec := do(t, router, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hh_screener_registry_active_sessions 1")
}
