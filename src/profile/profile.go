// Package profile aggregates per-sender intelligence across sessions,
// subscribing to the event bus and maintaining a durable SenderProfile per
// distinct sender.
package profile

import (
	"encoding/json"
	"time"

	"github.com/perplext/cipherhoneypot/src/session"
)

// SenderProfile is the durable, cross-session record kept for a sender
// (phone number, UPI handle, or other stable identifier).
type SenderProfile struct {
	Sender             string                             `json:"sender"`
	FirstSeen          time.Time                          `json:"first_seen"`
	LastSeen           time.Time                          `json:"last_seen"`
	TotalEngagements   int                                `json:"total_engagements"`
	TotalTurns         int                                `json:"total_turns"`
	RiskScore          float64                            `json:"risk_score"`
	ScamCategories     map[string]struct{}                `json:"-"`
	ExtractedEntities  session.IntelBuffer                `json:"-"`
	TacticsObserved    map[string]struct{}                `json:"-"`
	Status             string                             `json:"status"`
}

const statusActive = "active"

// New returns a freshly seen profile for sender.
func New(sender string) *SenderProfile {
	now := time.Now().UTC()
	return &SenderProfile{
		Sender:            sender,
		FirstSeen:         now,
		LastSeen:          now,
		ScamCategories:    make(map[string]struct{}),
		ExtractedEntities: session.NewIntelBuffer(),
		TacticsObserved:   make(map[string]struct{}),
		Status:            statusActive,
	}
}

// wireProfile is the JSON-serializable view used by the SQL store.
type wireProfile struct {
	Sender            string                          `json:"sender"`
	FirstSeen         time.Time                       `json:"first_seen"`
	LastSeen          time.Time                       `json:"last_seen"`
	TotalEngagements  int                             `json:"total_engagements"`
	TotalTurns        int                             `json:"total_turns"`
	RiskScore         float64                         `json:"risk_score"`
	ScamCategories    []string                        `json:"scam_categories"`
	ExtractedEntities session.IntelBuffer             `json:"extracted_entities"`
	TacticsObserved   []string                        `json:"tactics_observed"`
	Status            string                          `json:"status"`
}

// MarshalJSON flattens the set-typed fields into arrays for storage.
func (p *SenderProfile) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireProfile{
		Sender:            p.Sender,
		FirstSeen:         p.FirstSeen,
		LastSeen:          p.LastSeen,
		TotalEngagements:  p.TotalEngagements,
		TotalTurns:        p.TotalTurns,
		RiskScore:         p.RiskScore,
		ScamCategories:    setToSlice(p.ScamCategories),
		ExtractedEntities: p.ExtractedEntities,
		TacticsObserved:   setToSlice(p.TacticsObserved),
		Status:            p.Status,
	})
}

// UnmarshalJSON restores the set-typed fields from their array form.
func (p *SenderProfile) UnmarshalJSON(data []byte) error {
	var w wireProfile
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	p.Sender = w.Sender
	p.FirstSeen = w.FirstSeen
	p.LastSeen = w.LastSeen
	p.TotalEngagements = w.TotalEngagements
	p.TotalTurns = w.TotalTurns
	p.RiskScore = w.RiskScore
	p.ScamCategories = sliceToSet(w.ScamCategories)
	p.ExtractedEntities = w.ExtractedEntities
	if p.ExtractedEntities == nil {
		p.ExtractedEntities = session.NewIntelBuffer()
	}
	p.TacticsObserved = sliceToSet(w.TacticsObserved)
	p.Status = w.Status
	return nil
}

func setToSlice(s map[string]struct{}) []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	return out
}

func sliceToSet(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[v] = struct{}{}
	}
	return out
}
