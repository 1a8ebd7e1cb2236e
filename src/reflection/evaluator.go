package reflection

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Evaluator validates raw LLM output against the structural schema and the
// dynamic-liveness/anti-static-reply rules.
type Evaluator struct {
	schema *gojsonschema.Schema
}

// NewEvaluator compiles the schema document once; compilation failure is a
// programmer error, not a runtime condition, so it panics.
func NewEvaluator() *Evaluator {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(agentResponseSchema))
	if err != nil {
		panic(fmt.Sprintf("reflection: invalid embedded schema: %v", err))
	}
	return &Evaluator{schema: schema}
}

// Evaluate parses rawOutput, strips optional fenced-code markers, validates
// it against the schema, and checks dynamic liveness. It returns the valid
// flag, a human-readable error for logging, and the parsed response (zero
// value when invalid).
func (e *Evaluator) Evaluate(rawOutput string) (bool, string, AgentResponse) {
	cleaned := stripFences(rawOutput)

	var raw interface{}
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return false, fmt.Sprintf("EVAL_FAIL: invalid JSON format: %v", err), AgentResponse{}
	}

	result, err := e.schema.Validate(gojsonschema.NewGoLoader(raw))
	if err != nil {
		return false, fmt.Sprintf("EVAL_FAIL: schema validation error: %v", err), AgentResponse{}
	}
	if !result.Valid() {
		return false, fmt.Sprintf("EVAL_FAIL: missing required schema fields: %v", result.Errors()), AgentResponse{}
	}

	var resp AgentResponse
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		return false, fmt.Sprintf("EVAL_FAIL: unexpected reflection error: %v", err), AgentResponse{}
	}

	if ok, reason := checkDynamicLiveness(resp); !ok {
		return false, "EVAL_FAIL: " + reason, AgentResponse{}
	}

	return true, "", resp
}

func checkDynamicLiveness(resp AgentResponse) (bool, string) {
	if len(resp.InternalReasoning.SituationAnalysis) < 10 {
		return false, "reasoning block too shallow or generic (situation_analysis)"
	}
	if len(resp.InternalReasoning.StrategySelection) < 10 {
		return false, "reasoning block too shallow or generic (strategy_selection)"
	}

	final := strings.ToLower(resp.FinalResponse)
	for _, blocked := range genericReplyBlocklist {
		if strings.Contains(final, blocked) {
			return false, "final_response matched generic-reply blocklist"
		}
	}
	return true, ""
}

// IsDisengageSignal reports whether the parsed response's strategy
// selection names the literal disengage token.
func IsDisengageSignal(resp AgentResponse) bool {
	return strings.Contains(strings.ToLower(resp.InternalReasoning.StrategySelection), DisengageToken)
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
