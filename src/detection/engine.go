package detection

import (
	"fmt"
	"math"
)

// Ensemble weights; tuned against the reference detector and not
// operator-configurable.
const (
	weightHeuristics = 0.55
	weightBehavioral = 0.45
	weightSemantic   = 0.25

	// ScamThreshold is the confidence at or above which scam_detected is true.
	ScamThreshold = 0.50
)

// Engine runs the three-layer ensemble and applies session-memory decay.
// It is stateless and safe for concurrent use; the caller supplies the
// session's prior score each call.
type Engine struct {
	semantic SemanticAnalyzer
}

// NewEngine returns an engine using semantic as its L3 analyzer. Pass
// StubSemanticAnalyzer{} for the default fixed-cluster stub.
func NewEngine(semantic SemanticAnalyzer) *Engine {
	if semantic == nil {
		semantic = StubSemanticAnalyzer{}
	}
	return &Engine{semantic: semantic}
}

// Detect is the pure scoring function: Detect(text, previousSessionScore,
// alpha) -> Signal. alpha controls how much of the prior session score
// bleeds into this turn's final confidence.
func (e *Engine) Detect(text string, previousSessionScore, alpha float64) Signal {
	l1 := runHeuristics(text)
	l2 := runBehavioral(text)
	l3score, l3explanations := e.semantic.Analyze(text)

	current := weightHeuristics*l1.score + weightBehavioral*l2.score + weightSemantic*l3score

	explanations := make([]string, 0, len(l1.explanations)+len(l2.explanations)+len(l3explanations)+1)
	explanations = append(explanations, l1.explanations...)
	explanations = append(explanations, l2.explanations...)
	explanations = append(explanations, l3explanations...)

	historical := alpha*previousSessionScore + (1-alpha)*current
	final := math.Max(current, historical)
	final = math.Round(final*100) / 100
	if final > 1.0 {
		final = 1.0
	}

	if final > current && final > 0.45 {
		explanations = append(explanations, formatElevationNote(final))
	}

	risk := mapRiskLevel(final)
	return Signal{
		ScamDetected:    final >= ScamThreshold,
		ConfidenceScore: final,
		RiskLevel:       risk,
		Explanations:    explanations,
	}
}

func formatElevationNote(final float64) string {
	return fmt.Sprintf("Context: Session risk elevated from semantic history (%.2f)", final)
}
