// Package engagement implements the per-session state machine that
// mediates detection, intelligence extraction, and the LLM-backed persona
// orchestrator into a single reply per incoming message.
package engagement

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/perplext/cipherhoneypot/src/callback"
	"github.com/perplext/cipherhoneypot/src/config"
	"github.com/perplext/cipherhoneypot/src/detection"
	"github.com/perplext/cipherhoneypot/src/events"
	"github.com/perplext/cipherhoneypot/src/extraction"
	"github.com/perplext/cipherhoneypot/src/llm"
	"github.com/perplext/cipherhoneypot/src/orchestrator"
	"github.com/perplext/cipherhoneypot/src/session"
)

// shardCount bounds the number of independent locks the controller holds.
// A session's lock shard is session_id hashed modulo this count, so
// distinct sessions rarely contend and the lock set never grows unbounded.
const shardCount = 256

// Result is what ProcessMessage returns to the collaborator layer.
type Result struct {
	Reply  string
	State  session.State
	Status string
}

// Controller runs the engagement state machine described in the per-turn
// algorithm: detect, extract, orchestrate, transition, publish, persist.
type Controller struct {
	store      session.Store
	detector   *detection.Engine
	orch       *orchestrator.Orchestrator
	bus        events.Bus
	dispatcher *callback.Dispatcher
	cfg        *config.Config
	log        zerolog.Logger

	shards [shardCount]sync.Mutex
}

// New constructs a Controller from its fully wired collaborators.
func New(store session.Store, detector *detection.Engine, orch *orchestrator.Orchestrator, bus events.Bus, dispatcher *callback.Dispatcher, cfg *config.Config, log zerolog.Logger) *Controller {
	return &Controller{
		store:      store,
		detector:   detector,
		orch:       orch,
		bus:        bus,
		dispatcher: dispatcher,
		cfg:        cfg,
		log:        log,
	}
}

func (c *Controller) lockFor(sessionID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(sessionID))
	return &c.shards[h.Sum32()%shardCount]
}

// ProcessMessage is the controller's single public operation: load-or-create
// the session, run detection and extraction, call the orchestrator, advance
// the state machine, publish events, dispatch the completion callback, and
// persist — all serialized per session_id.
func (c *Controller) ProcessMessage(ctx context.Context, sessionID, sender, incomingMessage string, priorHistory []llm.Message) (Result, error) {
	if !c.cfg.Engagement.FeatureEnabled {
		return Result{Status: "disabled"}, ErrDisabled
	}

	mu := c.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	sess := c.loadOrCreate(ctx, sessionID)

	if sess.IsTerminal() {
		return Result{Reply: terminalAcknowledgement(sess.State), State: sess.State, Status: "terminal"}, nil
	}

	if sess.State == session.StateIdle || sess.State == session.StateDetecting {
		sess.State = session.StateDetecting

		signal, err := c.detectSafely(incomingMessage, sess.ScamScore)
		if err != nil {
			c.log.Error().Err(err).Str("session_id", sessionID).Msg("engagement: detection failed")
			return Result{}, err
		}

		if signal.ScamDetected {
			if signal.ConfidenceScore > sess.ScamScore {
				sess.ScamScore = signal.ConfidenceScore
			}
			sess.IsScam = true
			sess.State = session.StateEngaging
			sess.Touch()

			c.publish(ctx, events.TypeScamDetected, map[string]interface{}{
				"session_id": sessionID,
				"confidence": signal.ConfidenceScore,
				"sender":     sender,
				"text":       incomingMessage,
			})
		} else {
			sess.State = session.StateSafe
			sess.Touch()
			c.saveBestEffort(ctx, sess)
			return Result{Reply: benignAcknowledgement(), State: sess.State, Status: "safe"}, nil
		}
	}

	intel := extraction.Extract(incomingMessage)
	sess.IntelBuffer.Merge(intel)

	history := make([]llm.Message, len(priorHistory), len(priorHistory)+1)
	copy(history, priorHistory)
	history = append(history, llm.Message{Role: llm.RoleUser, Content: incomingMessage, Timestamp: time.Now().UTC()})

	turn := orchestrator.Turn{
		PersonaID:       sess.PersonaID,
		History:         history,
		Signal:          detection.Signal{ConfidenceScore: sess.ScamScore, RiskLevel: detection.MapRiskLevel(sess.ScamScore)},
		MissingEntities: missingCategories(sess.IntelBuffer),
		MessageCount:    sess.TurnNumber,
		MaxMessages:     c.cfg.Engagement.MaxSessionMessages,
	}

	reply, err := c.orch.ProcessTurn(ctx, turn)
	if err != nil {
		return Result{}, fmt.Errorf("engagement: orchestrator: %w", err)
	}

	sess.TurnNumber++
	sess.Touch()

	transitionedToCompleting := false
	if sess.State == session.StateEngaging {
		if sess.TurnNumber >= c.cfg.Engagement.MaxSessionMessages || reply.Disengage {
			sess.State = session.StateCompleting
			transitionedToCompleting = true
		}
	}
	sess.Touch()

	c.publish(ctx, events.TypeEngagementTurn, map[string]interface{}{
		"session_id":            sessionID,
		"turn_number":           sess.TurnNumber,
		"sender":                sender,
		"reply":                 reply.Text,
		"intel_buffer_snapshot": sess.IntelBuffer.Snapshot(),
	})

	if transitionedToCompleting {
		c.publish(ctx, events.TypeEngagementComplete, map[string]interface{}{
			"session_id": sessionID,
			"turn_count": sess.TurnNumber,
		})
		c.dispatcher.Dispatch(ctx, callback.FromSnapshot(sess))
		sess.State = session.StateCompleted
		sess.Touch()
	}

	c.saveBestEffort(ctx, sess)
	return Result{Reply: reply.Text, State: sess.State, Status: "ok"}, nil
}

// detectSafely runs the detection engine and recovers any panic from it,
// mapping the failure to ErrDetectionFailed so a bad rule or a malformed
// semantic analyzer response aborts the turn as a 5xx instead of crashing
// the collaborator layer.
func (c *Controller) detectSafely(incomingMessage string, priorScore float64) (signal detection.Signal, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrDetectionFailed, r)
		}
	}()
	return c.detector.Detect(incomingMessage, priorScore, c.cfg.Detection.DecayAlpha), nil
}

func (c *Controller) loadOrCreate(ctx context.Context, sessionID string) *session.Session {
	if sess, ok := c.store.Get(ctx, sessionID); ok {
		return sess
	}
	return session.New(sessionID, c.cfg.Agent.DefaultPersona)
}

func (c *Controller) saveBestEffort(ctx context.Context, sess *session.Session) {
	if err := c.store.Save(ctx, sess); err != nil {
		c.log.Error().Err(err).Str("session_id", sess.SessionID).Msg("engagement: session save failed, reply already emitted")
	}
}

func (c *Controller) publish(ctx context.Context, t events.Type, payload map[string]interface{}) {
	if err := c.bus.Publish(ctx, events.Event{EventType: t, Payload: payload}); err != nil {
		c.log.Error().Err(err).Str("event_type", string(t)).Msg("engagement: event publish failed")
	}
}

func missingCategories(buf session.IntelBuffer) []string {
	var missing []string
	for _, cat := range session.AllCategories {
		if len(buf[cat]) == 0 {
			missing = append(missing, string(cat))
		}
	}
	return missing
}

func terminalAcknowledgement(state session.State) string {
	if state == session.StateSafe {
		return "Thanks, have a good day!"
	}
	return "This conversation has ended."
}

func benignAcknowledgement() string {
	return "Sorry, I'm not sure I understand. Could you clarify what this is about?"
}
