package llm

import (
	"context"
	"encoding/json"
	"fmt"
)

// MockGenerator is a deterministic Generator used by tests and as the
// zero-config default when no provider is wired. It always emits a
// schema-valid AgentResponse JSON document.
type MockGenerator struct{}

func (MockGenerator) Generate(ctx context.Context, messages []Message, temperature float64) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	last := ""
	if len(messages) > 0 {
		last = messages[len(messages)-1].Content
	}

	payload := map[string]interface{}{
		"internal_reasoning": map[string]string{
			"situation_analysis":     fmt.Sprintf("Sender message analyzed at temperature %.1f.", temperature),
			"strategy_selection":     "Ask a naive clarifying question to keep the sender engaged.",
			"persona_alignment_check": "Response stays within the persona's vocabulary limits.",
		},
		"final_response": mockReply(last),
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func mockReply(lastMessage string) string {
	if lastMessage == "" {
		return "Oh, hello there. What can I do for you?"
	}
	return "I'm sorry dear, could you explain that again a little slower?"
}
