// Package audit provides a tamper-evident log of every engagement state
// transition, for operators who need to reconstruct what the honeypot did
// and prove the log was not altered afterward.
package audit

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/perplext/cipherhoneypot/src/events"
)

// Entry is one signed line of the audit trail.
type Entry struct {
	Timestamp time.Time              `json:"timestamp"`
	EventType events.Type            `json:"event_type"`
	Payload   map[string]interface{} `json:"payload"`
	Signature string                 `json:"signature,omitempty"`
}

// Trail appends every event it observes to a writer as newline-delimited
// JSON. When a signing key is configured, each entry carries an HMAC-SHA256
// signature over the previous signature and its own canonical body, forming
// a hash chain: altering or removing any entry invalidates every signature
// after it.
type Trail struct {
	mu          sync.Mutex
	w           io.Writer
	signingKey  []byte
	prevSigHex  string
}

// New returns a trail writing to w. signingKey may be nil to disable
// tamper-evident chaining (entries are still written, just unsigned).
func New(w io.Writer, signingKey []byte) *Trail {
	return &Trail{w: w, signingKey: signingKey}
}

// Subscribe registers the trail against every event type the bus carries.
func (t *Trail) Subscribe(bus events.Bus) {
	bus.Subscribe(events.TypeScamDetected, t.record)
	bus.Subscribe(events.TypeEngagementTurn, t.record)
	bus.Subscribe(events.TypeEngagementComplete, t.record)
}

func (t *Trail) record(_ context.Context, e events.Event) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry := Entry{
		Timestamp: time.Now().UTC(),
		EventType: e.EventType,
		Payload:   e.Payload,
	}

	if t.signingKey != nil {
		body, err := json.Marshal(struct {
			Timestamp time.Time              `json:"timestamp"`
			EventType events.Type            `json:"event_type"`
			Payload   map[string]interface{} `json:"payload"`
			Prev      string                 `json:"prev"`
		}{entry.Timestamp, entry.EventType, entry.Payload, t.prevSigHex})
		if err != nil {
			return fmt.Errorf("audit: encode entry body: %w", err)
		}
		mac := hmac.New(sha256.New, t.signingKey)
		mac.Write(body)
		entry.Signature = hex.EncodeToString(mac.Sum(nil))
		t.prevSigHex = entry.Signature
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("audit: encode entry: %w", err)
	}
	_, err = fmt.Fprintln(t.w, string(line))
	return err
}

// Verify replays entries and confirms the hash chain is unbroken. It
// returns the index of the first invalid entry, or -1 if entries all
// verify or signingKey is nil. With a non-nil key, an unsigned entry is
// reported as invalid.
func Verify(entries []Entry, signingKey []byte) int {
	if signingKey == nil {
		return -1
	}
	prev := ""
	for i, e := range entries {
		body, err := json.Marshal(struct {
			Timestamp time.Time              `json:"timestamp"`
			EventType events.Type            `json:"event_type"`
			Payload   map[string]interface{} `json:"payload"`
			Prev      string                 `json:"prev"`
		}{e.Timestamp, e.EventType, e.Payload, prev})
		if err != nil {
			return i
		}
		mac := hmac.New(sha256.New, signingKey)
		mac.Write(body)
		want := hex.EncodeToString(mac.Sum(nil))
		if !hmac.Equal([]byte(want), []byte(e.Signature)) {
			return i
		}
		prev = e.Signature
	}
	return -1
}
