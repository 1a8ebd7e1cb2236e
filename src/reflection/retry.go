package reflection

import (
	"context"
	"math/rand"

	"github.com/rs/zerolog"
)

// GenerateFunc invokes the generator at one temperature and evaluates its
// output, returning the same triple the evaluator returns.
type GenerateFunc func(ctx context.Context, temperature float64) (valid bool, errMsg string, resp AgentResponse)

// RetryHandler runs GenerateFunc across a temperature-escalated sequence,
// falling back to a micro-fallback reply when every attempt fails.
type RetryHandler struct {
	maxRetries   int
	temperatures []float64
	log          zerolog.Logger
}

// NewRetryHandler returns a handler bounded to maxRetries attempts across
// temperatures (attempts beyond len(temperatures) reuse the last value).
func NewRetryHandler(maxRetries int, temperatures []float64, log zerolog.Logger) *RetryHandler {
	if len(temperatures) == 0 {
		temperatures = []float64{0.7}
	}
	return &RetryHandler{maxRetries: maxRetries, temperatures: temperatures, log: log}
}

// Execute runs generate up to maxRetries times. On total failure it returns
// a randomly chosen reply from fallbacks, the only permitted non-dynamic
// reply.
func (h *RetryHandler) Execute(ctx context.Context, generate GenerateFunc, fallbacks []string) AgentResponse {
	for attempt := 0; attempt < h.maxRetries; attempt++ {
		temperature := h.temperatureFor(attempt)

		valid, errMsg, resp := generate(ctx, temperature)
		if valid {
			return resp
		}
		h.log.Warn().Int("attempt", attempt+1).Float64("temperature", temperature).Str("error", errMsg).Msg("llm generation attempt failed validation")
	}

	h.log.Error().Msg("all structural generation attempts failed, falling back to micro-prompt")
	return microFallback(fallbacks)
}

func (h *RetryHandler) temperatureFor(attempt int) float64 {
	if attempt < len(h.temperatures) {
		return h.temperatures[attempt]
	}
	return h.temperatures[len(h.temperatures)-1]
}

func microFallback(fallbacks []string) AgentResponse {
	reply := "Oh dear, my screen just went black for a moment. What were you saying?"
	if len(fallbacks) > 0 {
		reply = fallbacks[rand.Intn(len(fallbacks))]
	}
	return AgentResponse{
		InternalReasoning: InternalReasoning{
			SituationAnalysis:     "SYSTEM FAILURE",
			StrategySelection:     "EMERGENCY MICRO-PROMPT TRIGGERED",
			PersonaAlignmentCheck: "MANUAL OVERRIDE",
		},
		FinalResponse: reply,
	}
}
