// Package api exposes the engagement controller, profile store, and event
// bus over HTTP and WebSocket.
package api

import (
	"github.com/perplext/cipherhoneypot/src/llm"
	"github.com/perplext/cipherhoneypot/src/session"
)

// MessageIn is the inbound message envelope within an EngageRequest.
type MessageIn struct {
	Sender    string `json:"sender" validate:"required"`
	Text      string `json:"text" validate:"required"`
	Timestamp int64  `json:"timestamp"`
}

// Metadata carries optional channel/locale hints that do not affect
// detection or orchestration logic but are passed through for auditing.
type Metadata struct {
	Channel  string `json:"channel,omitempty"`
	Language string `json:"language,omitempty"`
	Locale   string `json:"locale,omitempty"`
}

// HistoryMessage is one prior turn in conversationHistory.
type HistoryMessage struct {
	Role    llm.Role `json:"role" validate:"required,oneof=system user assistant"`
	Content string   `json:"content" validate:"required"`
}

// EngageRequest is the synchronous per-turn request body.
type EngageRequest struct {
	SessionID           string           `json:"sessionId" validate:"required"`
	Message             MessageIn        `json:"message" validate:"required"`
	ConversationHistory []HistoryMessage `json:"conversationHistory,omitempty"`
	Metadata            *Metadata        `json:"metadata,omitempty"`
}

// EngageStatus is the outcome discriminator for EngageResponse.
type EngageStatus string

const (
	StatusContinue  EngageStatus = "continue"
	StatusCompleted EngageStatus = "completed"
	StatusError     EngageStatus = "error"
	StatusDisabled  EngageStatus = "disabled"
)

// EngageResponse is the synchronous per-turn response body.
type EngageResponse struct {
	Status          EngageStatus  `json:"status"`
	Reply           *string       `json:"reply"`
	SessionState    session.State `json:"session_state"`
	TurnNumber      int           `json:"turn_number"`
	ScamDetected    bool          `json:"scam_detected"`
	ConfidenceScore float64       `json:"confidence_score"`
}

// ErrorResponse is the body returned alongside non-2xx status codes.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ProfileResponse mirrors the durable SenderProfile shape for the
// read-only profile endpoints.
type ProfileResponse struct {
	Sender            string              `json:"sender"`
	FirstSeen         string              `json:"first_seen"`
	LastSeen          string              `json:"last_seen"`
	TotalEngagements  int                 `json:"total_engagements"`
	TotalTurns        int                 `json:"total_turns"`
	RiskScore         float64             `json:"risk_score"`
	ExtractedEntities map[string][]string `json:"extracted_entities"`
	Status            string              `json:"status"`
}

// SessionInspectResponse is the read-only session introspection payload.
type SessionInspectResponse struct {
	SessionID   string              `json:"session_id"`
	TurnNumber  int                 `json:"turn_number"`
	State       session.State       `json:"state"`
	ScamScore   float64             `json:"scam_score"`
	IsScam      bool                `json:"is_scam"`
	PersonaID   string              `json:"persona_id"`
	IntelBuffer map[string][]string `json:"intel_buffer"`
}
