package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perplext/cipherhoneypot/src/callback"
	"github.com/perplext/cipherhoneypot/src/config"
	"github.com/perplext/cipherhoneypot/src/detection"
	"github.com/perplext/cipherhoneypot/src/engagement"
	"github.com/perplext/cipherhoneypot/src/events"
	"github.com/perplext/cipherhoneypot/src/llm"
	"github.com/perplext/cipherhoneypot/src/orchestrator"
	"github.com/perplext/cipherhoneypot/src/persona"
	"github.com/perplext/cipherhoneypot/src/session"
)

func newTestServer(t *testing.T) (*Server, session.Store) {
	t.Helper()
	store := session.NewMemoryStore(0)
	bus := events.NewMemoryBus(zerolog.Nop())
	personas := persona.NewEngine("../persona/templates")
	orch := orchestrator.New(personas, llm.MockGenerator{}, 3, []float64{0.7, 0.9, 0.4}, 10, 5*time.Second, zerolog.Nop())
	dispatcher := callback.New("", "", 3, time.Millisecond, time.Second, nil, zerolog.Nop())
	cfg := config.DefaultConfig()

	controller := engagement.New(store, detection.NewEngine(nil), orch, bus, dispatcher, cfg, zerolog.Nop())
	return NewServer(controller, store, nil), store
}

func TestHandleEngage_ReturnsContinueOnScam(t *testing.T) {
	s, _ := newTestServer(t)

	body, _ := json.Marshal(EngageRequest{
		SessionID: "api-sess-1",
		Message:   MessageIn{Sender: "scammer@example.com", Text: "URGENT! pay to scammer@ybl now or face arrest"},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/engage", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.handleEngage(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp EngageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, StatusContinue, resp.Status)
	assert.True(t, resp.ScamDetected)
	require.NotNil(t, resp.Reply)
	assert.NotEmpty(t, *resp.Reply)
}

func TestHandleEngage_RejectsMissingFields(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/engage", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()
	s.handleEngage(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetSession_NotFound(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/session/unknown", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "unknown"})
	rec := httptest.NewRecorder()
	s.handleGetSession(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
