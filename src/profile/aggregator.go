package profile

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/perplext/cipherhoneypot/src/events"
	"github.com/perplext/cipherhoneypot/src/session"
)

// AgentSenderToken identifies the honeypot's own outbound messages; events
// carrying it as their sender are never aggregated into a profile.
const AgentSenderToken = "agent"

// Aggregator subscribes to scam.detected and engagement.turn, maintaining
// one SenderProfile per distinct sender.
type Aggregator struct {
	store            Store
	newEngagementGap time.Duration
	log              zerolog.Logger
}

// NewAggregator returns an aggregator writing through store. newEngagementGap
// is the idle window after which a repeat scam.detected counts as a new
// engagement rather than a continuation of the current one.
func NewAggregator(store Store, newEngagementGap time.Duration, log zerolog.Logger) *Aggregator {
	return &Aggregator{store: store, newEngagementGap: newEngagementGap, log: log}
}

// Subscribe registers the aggregator's handlers on bus.
func (a *Aggregator) Subscribe(bus events.Bus) {
	bus.Subscribe(events.TypeScamDetected, a.handleScamDetected)
	bus.Subscribe(events.TypeEngagementTurn, a.handleEngagementTurn)
}

func (a *Aggregator) handleScamDetected(ctx context.Context, e events.Event) error {
	sender, ok := stringField(e.Payload, "sender")
	if !ok || sender == AgentSenderToken {
		return nil
	}
	confidence, _ := floatField(e.Payload, "confidence")

	p, found := a.store.Get(ctx, sender)
	if !found {
		p = New(sender)
	}

	if !found || time.Since(p.LastSeen) > a.newEngagementGap {
		p.TotalEngagements++
	}
	if confidence > p.RiskScore {
		p.RiskScore = confidence
	}
	p.LastSeen = time.Now().UTC()

	if err := a.store.Upsert(ctx, p); err != nil {
		a.log.Error().Err(err).Str("sender", sender).Msg("profile: scam.detected upsert failed")
	}
	return nil
}

func (a *Aggregator) handleEngagementTurn(ctx context.Context, e events.Event) error {
	sender, ok := stringField(e.Payload, "sender")
	if !ok || sender == AgentSenderToken {
		return nil
	}

	p, found := a.store.Get(ctx, sender)
	if !found {
		p = New(sender)
	}

	p.TotalTurns++
	if snapshot, ok := e.Payload["intel_buffer_snapshot"]; ok {
		p.ExtractedEntities.Merge(decodeIntelSnapshot(snapshot))
	}
	p.RiskScore = clamp(0.05*float64(p.ExtractedEntities.Count())+0.01*float64(p.TotalTurns), 0, 1)
	p.LastSeen = time.Now().UTC()

	if err := a.store.Upsert(ctx, p); err != nil {
		a.log.Error().Err(err).Str("sender", sender).Msg("profile: engagement.turn upsert failed")
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func stringField(payload map[string]interface{}, key string) (string, bool) {
	v, ok := payload[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func floatField(payload map[string]interface{}, key string) (float64, bool) {
	switch v := payload[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

// decodeIntelSnapshot accepts either the in-process IntelBuffer snapshot
// type (MemoryBus, no serialization) or its JSON round-tripped shape
// (RedisBus: map[string]interface{} of []interface{}) and normalizes both
// into an IntelBuffer ready to merge.
func decodeIntelSnapshot(raw interface{}) session.IntelBuffer {
	out := session.NewIntelBuffer()

	switch snapshot := raw.(type) {
	case map[session.IntelCategory][]string:
		for cat, values := range snapshot {
			for _, v := range values {
				out.Add(cat, v)
			}
		}
	case map[string]interface{}:
		for catName, values := range snapshot {
			cat := session.IntelCategory(catName)
			switch vs := values.(type) {
			case []string:
				for _, v := range vs {
					out.Add(cat, v)
				}
			case []interface{}:
				for _, v := range vs {
					if s, ok := v.(string); ok {
						out.Add(cat, s)
					}
				}
			}
		}
	}
	return out
}
