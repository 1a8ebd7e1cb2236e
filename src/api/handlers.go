package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/perplext/cipherhoneypot/src/engagement"
	"github.com/perplext/cipherhoneypot/src/llm"
	"github.com/perplext/cipherhoneypot/src/profile"
	"github.com/perplext/cipherhoneypot/src/session"
)

var validate = validator.New()

// Server holds the collaborators the HTTP handlers delegate to.
type Server struct {
	controller *engagement.Controller
	sessions   session.Store
	profiles   profile.Store
}

// NewServer constructs the handler set.
func NewServer(controller *engagement.Controller, sessions session.Store, profiles profile.Store) *Server {
	return &Server{controller: controller, sessions: sessions, profiles: profiles}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// handleEngage implements POST /api/v1/engage: the single synchronous
// per-turn request/response cycle.
func (s *Server) handleEngage(w http.ResponseWriter, r *http.Request) {
	var req EngageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	history := make([]llm.Message, 0, len(req.ConversationHistory))
	for _, m := range req.ConversationHistory {
		history = append(history, llm.Message{Role: m.Role, Content: m.Content})
	}

	result, err := s.controller.ProcessMessage(r.Context(), req.SessionID, req.Message.Sender, req.Message.Text, history)
	if err != nil {
		if errors.Is(err, engagement.ErrDisabled) {
			writeJSON(w, http.StatusOK, EngageResponse{Status: StatusDisabled})
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	sess, found := s.sessions.Get(r.Context(), req.SessionID)
	if !found {
		writeError(w, http.StatusInternalServerError, "session vanished after processing")
		return
	}

	status := StatusContinue
	if sess.State == session.StateCompleted || sess.State == session.StateSafe {
		status = StatusCompleted
	}

	reply := result.Reply
	writeJSON(w, http.StatusOK, EngageResponse{
		Status:          status,
		Reply:           &reply,
		SessionState:    sess.State,
		TurnNumber:      sess.TurnNumber,
		ScamDetected:    sess.IsScam,
		ConfidenceScore: sess.ScamScore,
	})
}

// handleGetSession implements GET /api/v1/session/{id}.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	sess, found := s.sessions.Get(r.Context(), id)
	if !found {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, SessionInspectResponse{
		SessionID:   sess.SessionID,
		TurnNumber:  sess.TurnNumber,
		State:       sess.State,
		ScamScore:   sess.ScamScore,
		IsScam:      sess.IsScam,
		PersonaID:   sess.PersonaID,
		IntelBuffer: stringifyCategories(sess.IntelBuffer.Snapshot()),
	})
}

// handleGetProfile implements GET /api/v1/profile/{sender}.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	sender := mux.Vars(r)["sender"]
	p, found := s.profiles.Get(r.Context(), sender)
	if !found {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(p))
}

// handleListProfiles implements GET /api/v1/profiles.
func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.profiles.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]ProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, toProfileResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func toProfileResponse(p *profile.SenderProfile) ProfileResponse {
	return ProfileResponse{
		Sender:            p.Sender,
		FirstSeen:         p.FirstSeen.Format(time.RFC3339),
		LastSeen:          p.LastSeen.Format(time.RFC3339),
		TotalEngagements:  p.TotalEngagements,
		TotalTurns:        p.TotalTurns,
		RiskScore:         p.RiskScore,
		ExtractedEntities: stringifyCategories(p.ExtractedEntities.Snapshot()),
		Status:            p.Status,
	}
}

func stringifyCategories(m map[session.IntelCategory][]string) map[string][]string {
	out := make(map[string][]string, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
