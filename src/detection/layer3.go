package detection

import (
	"fmt"
	"strings"
)

// SemanticAnalyzer is the pluggable L3 contract. The shipped
// StubSemanticAnalyzer implements the fixed cluster-phrase rules; an
// operator may substitute a hosted zero-shot classifier without touching
// the ensemble (see engine.go). Model selection is deliberately left open
// per the system's design notes.
type SemanticAnalyzer interface {
	Analyze(text string) (score float64, explanations []string)
}

// StubSemanticAnalyzer fires on a small set of fixed social-engineering
// cluster phrases; it is the default when no ML-backed analyzer is wired.
type StubSemanticAnalyzer struct{}

func (StubSemanticAnalyzer) Analyze(text string) (float64, []string) {
	lower := strings.ToLower(text)
	var score float64
	var explanations []string

	if strings.Contains(lower, "help me out") && strings.Contains(lower, "gift card") {
		score = 0.8
		explanations = append(explanations, "L3: Semantic map closely aligns with 'Gift Card Request' phishing template")
	}
	if strings.Contains(lower, "customs package") && strings.Contains(lower, "held") {
		score = 0.9
		explanations = append(explanations, "L3: Matches 'Customs Delay / Advance Fee' semantic cluster")
	}
	if score > 1.0 {
		score = 1.0
	}
	return score, explanations
}

// ZeroShotLabelScorer is the contract a hosted zero-shot classifier
// implementation must satisfy to plug into ZeroShotSemanticAnalyzer.
type ZeroShotLabelScorer interface {
	ScoreLabels(text string, labels []string) (map[string]float64, error)
}

// ZeroShotSemanticAnalyzer wraps a hosted classifier scoring the fixed
// label set {scam, fraud, phishing, legitimate, safe}; the scam-cluster
// sum is boosted 1.2x and clamped to 1.0, with low scores suppressed to 0.
type ZeroShotSemanticAnalyzer struct {
	Scorer ZeroShotLabelScorer
}

var scamClusterLabels = []string{"scam", "fraud", "phishing", "legitimate", "safe"}

func (z ZeroShotSemanticAnalyzer) Analyze(text string) (float64, []string) {
	scores, err := z.Scorer.ScoreLabels(text, scamClusterLabels)
	if err != nil {
		return StubSemanticAnalyzer{}.Analyze(text)
	}

	var scamScore float64
	for _, label := range []string{"scam", "fraud", "phishing"} {
		scamScore += scores[label]
	}

	var score float64
	var explanations []string
	switch {
	case scamScore >= 0.5:
		score = scamScore * 1.2
		if score > 1.0 {
			score = 1.0
		}
		explanations = append(explanations, fmt.Sprintf("L3: Semantic model classified as scam (confidence %.2f)", score))
	case scamScore < 0.2:
		score = 0
	default:
		score = scamScore
	}

	if score > 0.4 && len(explanations) == 0 {
		explanations = append(explanations, fmt.Sprintf("L3: Semantic risk inferred (%.2f)", score))
	}
	return score, explanations
}
