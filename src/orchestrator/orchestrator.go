package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/perplext/cipherhoneypot/src/detection"
	"github.com/perplext/cipherhoneypot/src/llm"
	"github.com/perplext/cipherhoneypot/src/persona"
	"github.com/perplext/cipherhoneypot/src/reflection"
)

// Orchestrator wires the Persona Engine, Memory Summarizer, Prompt Builder,
// Generator (with whatever resilience middleware it was constructed with),
// Reflection Evaluator, and Retry Handler into one reply per turn.
type Orchestrator struct {
	personas  *persona.Engine
	generator llm.Generator
	evaluator *reflection.Evaluator
	retry     *reflection.RetryHandler

	maxTurnsRetained  int
	generationTimeout time.Duration
	log               zerolog.Logger
}

// New constructs an Orchestrator. temperatures and maxRetries drive the
// retry handler; maxTurnsRetained bounds the memory summarizer's window.
// generationTimeout bounds each individual generation attempt so a hung
// call fails over to the retry handler's next temperature instead of
// blocking the turn indefinitely.
func New(personas *persona.Engine, generator llm.Generator, maxRetries int, temperatures []float64, maxTurnsRetained int, generationTimeout time.Duration, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		personas:          personas,
		generator:         generator,
		evaluator:         reflection.NewEvaluator(),
		retry:             reflection.NewRetryHandler(maxRetries, temperatures, log),
		maxTurnsRetained:  maxTurnsRetained,
		generationTimeout: generationTimeout,
		log:               log,
	}
}

// Turn is one invocation's inputs: the persona in play, the full prior
// history, the latest detection signal for this session, the missing
// intelligence categories still worth extracting, and the session's turn
// depth relative to its configured ceiling.
type Turn struct {
	PersonaID       string
	History         []llm.Message
	Signal          detection.Signal
	MissingEntities []string
	MessageCount    int
	MaxMessages     int
}

// Reply is the orchestrator's structured output for one turn: the text to
// send back to the scammer, and whether the model itself signaled it wants
// to end the engagement.
type Reply struct {
	Text      string
	Disengage bool
}

// ProcessTurn runs one full generate-validate-retry cycle and returns the
// reply to relay to the counterparty.
func (o *Orchestrator) ProcessTurn(ctx context.Context, turn Turn) (Reply, error) {
	personaBlock, err := o.personas.BuildSystemPromptSegment(turn.PersonaID)
	if err != nil {
		return Reply{}, fmt.Errorf("orchestrator: load persona: %w", err)
	}

	p, err := o.personas.Load(turn.PersonaID)
	if err != nil {
		return Reply{}, fmt.Errorf("orchestrator: load persona fallbacks: %w", err)
	}

	history := SummarizeHistory(turn.History, o.maxTurnsRetained)

	promptCtx := TurnContext{
		History:         history,
		MissingEntities: turn.MissingEntities,
		MessageCount:    turn.MessageCount,
		MaxMessages:     turn.MaxMessages,
		Confidence:      turn.Signal.ConfidenceScore,
		RiskLevel:       turn.Signal.RiskLevel,
	}

	generate := func(ctx context.Context, temperature float64) (bool, string, reflection.AgentResponse) {
		attemptCtx, cancel := context.WithTimeout(ctx, o.generationTimeout)
		defer cancel()

		messages := BuildPrompt(personaBlock, promptCtx)
		raw, err := o.generator.Generate(attemptCtx, messages, temperature)
		if err != nil {
			return false, err.Error(), reflection.AgentResponse{}
		}
		return o.evaluator.Evaluate(raw)
	}

	resp := o.retry.Execute(ctx, generate, p.MicroFallbacks)

	return Reply{
		Text:      resp.FinalResponse,
		Disengage: reflection.IsDisengageSignal(resp),
	}, nil
}
