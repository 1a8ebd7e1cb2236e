package orchestrator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perplext/cipherhoneypot/src/detection"
	"github.com/perplext/cipherhoneypot/src/llm"
)

func TestBuildPrompt_HighConfidenceFeignsConfusion(t *testing.T) {
	ctx := TurnContext{
		History:      []llm.Message{{Role: llm.RoleUser, Content: "pay now"}},
		MessageCount: 1,
		MaxMessages:  20,
		Confidence:   0.9,
		RiskLevel:    detection.RiskCritical,
	}
	messages := BuildPrompt("PERSONA BLOCK", ctx)
	require.Len(t, messages, 2)
	assert.Equal(t, llm.RoleSystem, messages[0].Role)
	assert.True(t, strings.Contains(messages[0].Content, "PERSONA BLOCK"))
	assert.True(t, strings.Contains(messages[0].Content, "Feign maximum confusion"))
}

func TestBuildPrompt_NearLimitAddsWrapUpClause(t *testing.T) {
	ctx := TurnContext{
		MessageCount: 18,
		MaxMessages:  20,
		Confidence:   0.3,
		RiskLevel:    detection.RiskLow,
	}
	messages := BuildPrompt("PERSONA BLOCK", ctx)
	assert.True(t, strings.Contains(messages[0].Content, "ENDING SOON"))
}

func TestTacticalDirective_Bands(t *testing.T) {
	assert.Contains(t, tacticalDirective(0.9), "Feign maximum confusion")
	assert.Contains(t, tacticalDirective(0.6), "clarifying")
	assert.Contains(t, tacticalDirective(0.2), "BENIGN")
}
