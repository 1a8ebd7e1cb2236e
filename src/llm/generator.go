// Package llm defines the pluggable asynchronous generator contract the
// Persona Orchestrator calls, plus resilience middleware and two concrete
// implementations.
package llm

import (
	"context"
	"time"
)

// Role is one of the three ChatML roles the generator contract accepts.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn in the conversation passed to Generate.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// Generator is the LLM provider contract: generate(messages, temperature)
// -> string, asynchronous, may return an error (including on timeout).
type Generator interface {
	Generate(ctx context.Context, messages []Message, temperature float64) (string, error)
}
