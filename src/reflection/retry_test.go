package reflection

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryHandler_Execute_SucceedsOnFirstAttempt(t *testing.T) {
	h := NewRetryHandler(3, []float64{0.5, 0.7, 0.9}, zerolog.Nop())

	var gotTemp float64
	resp := h.Execute(context.Background(), func(_ context.Context, temperature float64) (bool, string, AgentResponse) {
		gotTemp = temperature
		return true, "", AgentResponse{FinalResponse: "ok reply"}
	}, nil)

	assert.Equal(t, 0.5, gotTemp)
	assert.Equal(t, "ok reply", resp.FinalResponse)
}

func TestRetryHandler_Execute_RetriesAcrossTemperatures(t *testing.T) {
	h := NewRetryHandler(3, []float64{0.5, 0.7, 0.9}, zerolog.Nop())

	var attempts []float64
	resp := h.Execute(context.Background(), func(_ context.Context, temperature float64) (bool, string, AgentResponse) {
		attempts = append(attempts, temperature)
		if len(attempts) == 3 {
			return true, "", AgentResponse{FinalResponse: "third time lucky"}
		}
		return false, "bad output", AgentResponse{}
	}, nil)

	require.Equal(t, []float64{0.5, 0.7, 0.9}, attempts)
	assert.Equal(t, "third time lucky", resp.FinalResponse)
}

func TestRetryHandler_Execute_ReusesLastTemperatureBeyondList(t *testing.T) {
	h := NewRetryHandler(4, []float64{0.5, 0.7}, zerolog.Nop())

	var attempts []float64
	h.Execute(context.Background(), func(_ context.Context, temperature float64) (bool, string, AgentResponse) {
		attempts = append(attempts, temperature)
		return false, "bad", AgentResponse{}
	}, nil)

	assert.Equal(t, []float64{0.5, 0.7, 0.7, 0.7}, attempts)
}

func TestRetryHandler_Execute_FallsBackAfterExhaustion(t *testing.T) {
	h := NewRetryHandler(2, []float64{0.5}, zerolog.Nop())

	resp := h.Execute(context.Background(), func(_ context.Context, _ float64) (bool, string, AgentResponse) {
		return false, "always bad", AgentResponse{}
	}, []string{"the only fallback reply"})

	assert.Equal(t, "the only fallback reply", resp.FinalResponse)
	assert.Equal(t, "SYSTEM FAILURE", resp.InternalReasoning.SituationAnalysis)
}

func TestRetryHandler_Execute_FallsBackToDefaultReplyWithNoFallbacks(t *testing.T) {
	h := NewRetryHandler(1, nil, zerolog.Nop())

	resp := h.Execute(context.Background(), func(_ context.Context, _ float64) (bool, string, AgentResponse) {
		return false, "bad", AgentResponse{}
	}, nil)

	assert.Equal(t, "Oh dear, my screen just went black for a moment. What were you saying?", resp.FinalResponse)
}

func TestNewRetryHandler_DefaultsTemperatureWhenEmpty(t *testing.T) {
	h := NewRetryHandler(1, nil, zerolog.Nop())
	assert.Equal(t, 0.7, h.temperatureFor(0))
}
