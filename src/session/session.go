// Package session defines the per-sender conversation state and its
// pluggable persistence.
package session

import (
	"encoding/json"
	"time"
)

// State is one of the six engagement lifecycle states.
type State string

const (
	StateIdle       State = "idle"
	StateDetecting  State = "detecting"
	StateEngaging   State = "engaging"
	StateSafe       State = "safe"
	StateCompleting State = "completing"
	StateCompleted  State = "completed"
)

// IntelCategory names one of the five fixed intel_buffer categories.
type IntelCategory string

const (
	CategoryBankAccounts       IntelCategory = "bankAccounts"
	CategoryUPIIds             IntelCategory = "upiIds"
	CategoryPhishingLinks      IntelCategory = "phishingLinks"
	CategoryPhoneNumbers       IntelCategory = "phoneNumbers"
	CategorySuspiciousKeywords IntelCategory = "suspiciousKeywords"
)

// AllCategories lists the five categories a well-formed intel buffer always has.
var AllCategories = []IntelCategory{
	CategoryBankAccounts,
	CategoryUPIIds,
	CategoryPhishingLinks,
	CategoryPhoneNumbers,
	CategorySuspiciousKeywords,
}

// IntelBuffer maps category to a deduplicated, unordered set of strings,
// serialized as JSON arrays.
type IntelBuffer map[IntelCategory]map[string]struct{}

// NewIntelBuffer returns a buffer with all five categories present and empty.
func NewIntelBuffer() IntelBuffer {
	b := make(IntelBuffer, len(AllCategories))
	for _, c := range AllCategories {
		b[c] = make(map[string]struct{})
	}
	return b
}

// Add inserts value into category, a no-op if already present.
func (b IntelBuffer) Add(category IntelCategory, value string) {
	if value == "" {
		return
	}
	if b[category] == nil {
		b[category] = make(map[string]struct{})
	}
	b[category][value] = struct{}{}
}

// Merge unions other into b, category by category. Idempotent and commutative.
func (b IntelBuffer) Merge(other IntelBuffer) {
	for _, c := range AllCategories {
		for v := range other[c] {
			b.Add(c, v)
		}
	}
}

// Snapshot returns a plain map[category][]string view for events and JSON.
func (b IntelBuffer) Snapshot() map[IntelCategory][]string {
	out := make(map[IntelCategory][]string, len(AllCategories))
	for _, c := range AllCategories {
		values := make([]string, 0, len(b[c]))
		for v := range b[c] {
			values = append(values, v)
		}
		out[c] = values
	}
	return out
}

// Count returns the total number of distinct extracted entities across categories.
func (b IntelBuffer) Count() int {
	n := 0
	for _, c := range AllCategories {
		n += len(b[c])
	}
	return n
}

// MarshalJSON serializes the buffer as {category: [values...]}.
func (b IntelBuffer) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Snapshot())
}

// UnmarshalJSON restores a buffer from {category: [values...]}, filling in
// any categories missing from the wire payload.
func (b *IntelBuffer) UnmarshalJSON(data []byte) error {
	var raw map[IntelCategory][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	fresh := NewIntelBuffer()
	for _, c := range AllCategories {
		for _, v := range raw[c] {
			fresh.Add(c, v)
		}
	}
	*b = fresh
	return nil
}

// Session is the durable per-sender conversation record.
type Session struct {
	SessionID   string      `json:"session_id"`
	TurnNumber  int         `json:"turn_number"`
	State       State       `json:"state"`
	ScamScore   float64     `json:"scam_score"`
	IsScam      bool        `json:"is_scam"`
	AgentActive bool        `json:"agent_active"`
	PersonaID   string      `json:"persona_id"`
	IntelBuffer IntelBuffer `json:"intel_buffer"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// New returns a fresh session in state idle, turn 0, with an initialized
// empty intel buffer.
func New(sessionID, personaID string) *Session {
	now := time.Now().UTC()
	return &Session{
		SessionID:   sessionID,
		TurnNumber:  0,
		State:       StateIdle,
		ScamScore:   0,
		IsScam:      false,
		AgentActive: false,
		PersonaID:   personaID,
		IntelBuffer: NewIntelBuffer(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Touch refreshes UpdatedAt and recomputes AgentActive from State.
func (s *Session) Touch() {
	s.UpdatedAt = time.Now().UTC()
	s.AgentActive = s.State == StateEngaging || s.State == StateCompleting
}

// IsTerminal reports whether the session accepts no further LLM-driven turns.
func (s *Session) IsTerminal() bool {
	return s.State == StateSafe || s.State == StateCompleted
}
