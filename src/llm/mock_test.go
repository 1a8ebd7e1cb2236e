package llm

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockGenerator_EmitsSchemaValidJSON(t *testing.T) {
	var m MockGenerator
	out, err := m.Generate(context.Background(), []Message{{Role: RoleUser, Content: "hello"}}, 0.7)
	require.NoError(t, err)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))
	assert.Contains(t, parsed, "internal_reasoning")
	assert.Contains(t, parsed, "final_response")
}

func TestMockGenerator_EmptyHistoryGreeting(t *testing.T) {
	var m MockGenerator
	out, err := m.Generate(context.Background(), nil, 0.5)
	require.NoError(t, err)
	assert.Contains(t, out, "What can I do for you")
}

func TestMockGenerator_RespectsCancelledContext(t *testing.T) {
	var m MockGenerator
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Generate(ctx, nil, 0.5)
	assert.ErrorIs(t, err, context.Canceled)
}
