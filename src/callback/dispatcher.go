// Package callback delivers the completion callback: one outbound POST per
// engaging -> completing edge, with bounded exponential-backoff retries and
// a dead-letter fallback on exhaustion.
package callback

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"

	"github.com/perplext/cipherhoneypot/src/session"
)

// Payload is the outbound completion callback body.
type Payload struct {
	SessionID       string                              `json:"session_id"`
	ScamDetected    bool                                `json:"scam_detected"`
	ConfidenceScore float64                             `json:"confidence_score"`
	Intelligence    map[session.IntelCategory][]string  `json:"intelligence"`
	TurnCount       int                                 `json:"turn_count"`
	CompletedAt     string                              `json:"completed_at"`
}

// DeadLetterSink receives payloads that exhausted every retry attempt.
type DeadLetterSink interface {
	Enqueue(ctx context.Context, p Payload) error
}

// Dispatcher POSTs the completion payload, signing it with a JWT bearer
// token when a signing secret is configured.
type Dispatcher struct {
	url           string
	signingSecret string
	maxRetries    int
	backoffBase   time.Duration
	perAttempt    time.Duration

	client     *retryablehttp.Client
	deadLetter DeadLetterSink
	log        zerolog.Logger
	onResult   func(delivered bool)
}

// New constructs a dispatcher. An empty url makes Dispatch a permanent no-op.
func New(url, signingSecret string, maxRetries int, backoffBase, perAttempt time.Duration, deadLetter DeadLetterSink, log zerolog.Logger) *Dispatcher {
	client := retryablehttp.NewClient()
	client.RetryMax = 0 // this package owns the retry loop so it can dead-letter on exhaustion
	client.Logger = nil

	return &Dispatcher{
		url:           url,
		signingSecret: signingSecret,
		maxRetries:    maxRetries,
		backoffBase:   backoffBase,
		perAttempt:    perAttempt,
		client:        client,
		deadLetter:    deadLetter,
		log:           log,
	}
}

// OnResult registers a callback invoked with the final delivered/dead-lettered
// outcome of every Dispatch call that actually attempted delivery (i.e. not
// the unconfigured-URL or non-scam no-op cases).
func (d *Dispatcher) OnResult(fn func(delivered bool)) {
	d.onResult = fn
}

// Dispatch is idempotent by intent: callers must invoke it exactly once,
// on the engaging -> completing edge, and only when the session is a scam.
// An unconfigured URL or a non-scam session short-circuits to a no-op.
func (d *Dispatcher) Dispatch(ctx context.Context, p Payload) bool {
	if d.url == "" || !p.ScamDetected {
		return false
	}

	body, err := json.Marshal(p)
	if err != nil {
		d.log.Error().Err(err).Str("session_id", p.SessionID).Msg("callback: failed to marshal payload")
		return false
	}

	for attempt := 0; attempt < d.maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(float64(d.backoffBase) * math.Pow(2, float64(attempt)))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				d.deadLetterOrLog(ctx, p)
				d.reportResult(false)
				return false
			}
		}

		if d.attempt(ctx, body) {
			d.reportResult(true)
			return true
		}
		d.log.Warn().Int("attempt", attempt+1).Str("session_id", p.SessionID).Msg("callback: attempt failed")
	}

	d.log.Error().Str("session_id", p.SessionID).Msg("callback: retries exhausted")
	d.deadLetterOrLog(ctx, p)
	d.reportResult(false)
	return false
}

func (d *Dispatcher) reportResult(delivered bool) {
	if d.onResult != nil {
		d.onResult(delivered)
	}
}

func (d *Dispatcher) attempt(ctx context.Context, body []byte) bool {
	attemptCtx, cancel := context.WithTimeout(ctx, d.perAttempt)
	defer cancel()

	req, err := retryablehttp.NewRequestWithContext(attemptCtx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	if d.signingSecret != "" {
		token, err := d.signRequest()
		if err == nil {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func (d *Dispatcher) signRequest() (string, error) {
	claims := jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(d.perAttempt)),
		Issuer:    "cipherhoneypot",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(d.signingSecret))
}

func (d *Dispatcher) deadLetterOrLog(ctx context.Context, p Payload) {
	if d.deadLetter == nil {
		return
	}
	if err := d.deadLetter.Enqueue(ctx, p); err != nil {
		d.log.Error().Err(err).Str("session_id", p.SessionID).Msg("callback: dead-letter enqueue failed")
	}
}

// FromSnapshot builds a Payload from a session's current state.
func FromSnapshot(s *session.Session) Payload {
	return Payload{
		SessionID:       s.SessionID,
		ScamDetected:    s.IsScam,
		ConfidenceScore: s.ScamScore,
		Intelligence:    s.IntelBuffer.Snapshot(),
		TurnCount:       s.TurnNumber,
		CompletedAt:     time.Now().UTC().Format(time.RFC3339),
	}
}
