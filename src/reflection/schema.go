// Package reflection validates LLM-generated JSON against the agent's
// output schema and liveness rules, and drives the temperature-escalated
// retry loop.
package reflection

// InternalReasoning is the mandatory reasoning block every agent turn
// must emit alongside its reply.
type InternalReasoning struct {
	SituationAnalysis      string `json:"situation_analysis"`
	StrategySelection      string `json:"strategy_selection"`
	PersonaAlignmentCheck  string `json:"persona_alignment_check"`
}

// AgentResponse is the strict output contract the Prompt Builder instructs
// the model to emit.
type AgentResponse struct {
	InternalReasoning InternalReasoning `json:"internal_reasoning"`
	FinalResponse     string            `json:"final_response"`
}

// agentResponseSchema is the JSON Schema document the Reflection Evaluator
// validates parsed output against, in addition to the liveness checks.
const agentResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["internal_reasoning", "final_response"],
  "properties": {
    "internal_reasoning": {
      "type": "object",
      "required": ["situation_analysis", "strategy_selection", "persona_alignment_check"],
      "properties": {
        "situation_analysis": {"type": "string", "minLength": 1},
        "strategy_selection": {"type": "string", "minLength": 1},
        "persona_alignment_check": {"type": "string", "minLength": 1}
      }
    },
    "final_response": {"type": "string", "minLength": 1}
  }
}`

// DisengageToken is the literal strategy_selection value the persona
// prompt instructs the model to emit once it judges extraction complete,
// signaling the engagement controller to take the engaging -> completing
// edge early.
const DisengageToken = "disengage"

// genericReplyBlocklist rejects final_response text that reveals the
// assistant is an AI or otherwise breaks character.
var genericReplyBlocklist = []string{
	"as an ai", "i cannot assist", "i do not understand", "sorry, i am", "i am an ai",
}
