package detection

import (
	"strings"
	"unicode"
)

// Lexicon weights derived from a production TF-IDF coefficient fit for
// scam probability; kept as plain token-weight tables here as a
// structurally complete fallback.
var (
	coercionLexicon = map[string]float64{
		"immediate": 0.2, "action": 0.2, "suspended": 0.3,
		"blocked": 0.3, "locked": 0.3, "disabled": 0.3,
	}
	legalThreatLexicon = map[string]float64{
		"arrest": 0.4, "warrant": 0.4, "legal": 0.3, "court": 0.3,
		"lawsuit": 0.4, "prosecution": 0.4, "penalty": 0.3,
		"fine": 0.3, "charge": 0.15,
	}
	urgencyLexicon = map[string]float64{
		"urgently": 0.25, "now": 0.15, "within": 0.2,
		"hours": 0.1, "minutes": 0.2,
	}
	financialVerbLexicon = map[string]float64{
		"transfer": 0.3, "send": 0.2, "pay": 0.3, "deposit": 0.25,
	}
)

// tokenize lowercases, strips punctuation, and splits on whitespace.
func tokenize(text string) []string {
	lower := strings.ToLower(text)
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) {
			return -1
		}
		return r
	}, lower)
	return strings.Fields(stripped)
}

func lexiconSum(tokens []string, lexicon map[string]float64) float64 {
	var sum float64
	for _, t := range tokens {
		sum += lexicon[t]
	}
	return sum
}

// runBehavioral is the L2 layer: token-weight lexicon sums combined by
// threshold rules, highest-priority coercion signal wins (legal-threat
// over plain coercion), urgency and financial intent add independently.
func runBehavioral(text string) layerResult {
	tokens := tokenize(text)

	coercionScore := lexiconSum(tokens, coercionLexicon)
	legalScore := lexiconSum(tokens, legalThreatLexicon)
	urgencyScore := lexiconSum(tokens, urgencyLexicon)
	financialScore := lexiconSum(tokens, financialVerbLexicon)

	var score float64
	var explanations []string

	switch {
	case legalScore >= 0.3:
		explanations = append(explanations, "L2: High statistical probability of legal/threat coercion")
		score += 0.4
	case coercionScore >= 0.3:
		explanations = append(explanations, "L2: Behavioral analysis indicates account coercion")
		score += 0.3
	}

	if urgencyScore >= 0.2 {
		explanations = append(explanations, "L2: Temporal urgency markers detected")
		score += 0.2
	}

	if financialScore >= 0.25 {
		explanations = append(explanations, "L2: Payment routing intent recognized")
		score += 0.3
	}

	if score > 1.0 {
		score = 1.0
	}
	return layerResult{score: score, explanations: explanations}
}
