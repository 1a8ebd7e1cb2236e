// Package orchestrator composes the Persona Engine, Memory Summarizer,
// Prompt Builder, Generator, Reflection Evaluator, and Retry Handler into
// one conversational reply per turn.
package orchestrator

import (
	"strconv"

	"github.com/perplext/cipherhoneypot/src/llm"
)

// SummarizeHistory truncates history to the trailing window when it
// exceeds maxTurnsRetained, prepending a synthetic system note marking the
// truncation. Below the threshold, history is returned unchanged.
func SummarizeHistory(history []llm.Message, maxTurnsRetained int) []llm.Message {
	const keepRecent = 8

	if len(history) <= maxTurnsRetained {
		return history
	}

	truncated := history[len(history)-keepRecent:]
	note := llm.Message{
		Role: llm.RoleSystem,
		Content: "[SYSTEM NOTE: Conversation depth exceeds " +
			strconv.Itoa(maxTurnsRetained) + " messages. Prior context truncated for memory. Assume the user is continuing the established dialogue.]",
	}

	out := make([]llm.Message, 0, len(truncated)+1)
	out = append(out, note)
	out = append(out, truncated...)
	return out
}
