package orchestrator

import (
	"fmt"
	"strings"

	"github.com/perplext/cipherhoneypot/src/detection"
	"github.com/perplext/cipherhoneypot/src/llm"
	"github.com/perplext/cipherhoneypot/src/reflection"
)

// TurnContext carries the dynamic, per-turn state the prompt builder needs
// beyond the persona's static block.
type TurnContext struct {
	History         []llm.Message
	MissingEntities []string
	MessageCount    int
	MaxMessages     int
	Confidence      float64
	RiskLevel       detection.RiskLevel
}

const outputSchemaDirectiveTemplate = `
=== STRICT OUTPUT REQUIREMENT ===
You must respond in valid JSON format matching this schema exactly:
{
  "internal_reasoning": {
    "situation_analysis": "brief analysis of attacker tactics",
    "strategy_selection": "how you will handle this turn",
    "persona_alignment_check": "ensure your reaction fits your assigned demographic and literacy limits"
  },
  "final_response": "your actual conversational reply to the scammer"
}

RULES FOR FINAL_RESPONSE:
1. Under NO circumstances should you provide a static, generic tech-support reply.
2. Under NO circumstances should you break character or reveal you are an AI.
3. Keep the payload strictly conversational based on the persona rules.

RULES FOR STRATEGY_SELECTION:
4. Once every item in "Missing Target Intelligence" below reads "none" and
   you judge the extraction complete, write a short strategy_selection
   sentence that includes the word %q (e.g. "time to disengage and wind
   the call down"), and let final_response bring the call to a close with
   an in-character excuse. Never include that word while intelligence is
   still missing.
`

var outputSchemaDirective = fmt.Sprintf(outputSchemaDirectiveTemplate, reflection.DisengageToken)

// BuildPrompt assembles the final ChatML message sequence: one system
// message combining the persona block with the dynamic tactical
// directive, followed by the (already-summarized) history.
func BuildPrompt(personaBlock string, ctx TurnContext) []llm.Message {
	systemDirective := personaBlock + outputSchemaDirective
	dynamicConstraints := buildDetectionConstraints(ctx)

	fullSystemPrompt := systemDirective + "\n\n" + dynamicConstraints

	messages := make([]llm.Message, 0, len(ctx.History)+1)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: fullSystemPrompt})
	messages = append(messages, ctx.History...)
	return messages
}

func buildDetectionConstraints(ctx TurnContext) string {
	tactical := tacticalDirective(ctx.Confidence)

	if ctx.MessageCount > ctx.MaxMessages-3 {
		tactical += " CONVERSATION ENDING SOON. Make a final excuse (e.g., 'My son just arrived, I have to go')."
	}

	missing := ctx.MissingEntities
	extractionComplete := len(missing) == 0
	if extractionComplete {
		missing = []string{"none"}
		tactical += fmt.Sprintf(" EXTRACTION COMPLETE: nothing is left to gather, so your strategy_selection sentence should say you're ready to %s and bring the call to a natural close.", reflection.DisengageToken)
	}

	return fmt.Sprintf(`=== DYNAMIC SITUATION METRICS ===
- Current Scam Probability: %.1f%% (%s risk)
- Missing Target Intelligence: %s
- Turn Depth: %d/%d

=== TACTICAL DIRECTIVE ===
%s
`, ctx.Confidence*100, ctx.RiskLevel, strings.Join(missing, ", "), ctx.MessageCount, ctx.MaxMessages, tactical)
}

func tacticalDirective(confidence float64) string {
	switch {
	case confidence > 0.8:
		return "SCAM DETECTED. Feign maximum confusion. Make them explain step-by-step how to pay them or send money. Provide NO valid details yet."
	case confidence > 0.5:
		return "SUSPICIOUS. Ask clarifying, naive questions about why they contacted you."
	default:
		return "BENIGN. Respond naturally and politely but keep it brief."
	}
}
