// Package monitoring exposes counters for sessions, detections, and
// callback deliveries, subscribed onto the event bus.
package monitoring

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/perplext/cipherhoneypot/src/events"
)

// Metrics tracks process-lifetime counters. All fields are safe for
// concurrent use; ServeHTTP reads a consistent snapshot.
type Metrics struct {
	scamsDetected      atomic.Int64
	turnsProcessed     atomic.Int64
	engagementsClosed  atomic.Int64
	callbacksDelivered atomic.Int64
	callbacksDeadLetter atomic.Int64

	startTime time.Time
}

// New returns an empty counter set.
func New() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// Subscribe registers the metrics set against the session-lifecycle event
// types. It does not observe callback outcomes directly; call
// RecordCallback from the dispatcher's call site instead.
func (m *Metrics) Subscribe(bus events.Bus) {
	bus.Subscribe(events.TypeScamDetected, func(_ context.Context, _ events.Event) error {
		m.scamsDetected.Add(1)
		return nil
	})
	bus.Subscribe(events.TypeEngagementTurn, func(_ context.Context, _ events.Event) error {
		m.turnsProcessed.Add(1)
		return nil
	})
	bus.Subscribe(events.TypeEngagementComplete, func(_ context.Context, _ events.Event) error {
		m.engagementsClosed.Add(1)
		return nil
	})
}

// RecordCallback increments the delivered or dead-lettered counter.
func (m *Metrics) RecordCallback(delivered bool) {
	if delivered {
		m.callbacksDelivered.Add(1)
		return
	}
	m.callbacksDeadLetter.Add(1)
}

// Snapshot returns the current counter values.
func (m *Metrics) Snapshot() map[string]interface{} {
	return map[string]interface{}{
		"uptime_seconds":       time.Since(m.startTime).Seconds(),
		"scams_detected":       m.scamsDetected.Load(),
		"turns_processed":      m.turnsProcessed.Load(),
		"engagements_closed":   m.engagementsClosed.Load(),
		"callbacks_delivered":  m.callbacksDelivered.Load(),
		"callbacks_dead_letter": m.callbacksDeadLetter.Load(),
	}
}

// ServeHTTP writes the current snapshot as JSON, for use as a metrics
// endpoint handler.
func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(m.Snapshot())
}
