package detection

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubSemanticAnalyzer_GiftCardCluster(t *testing.T) {
	score, explanations := StubSemanticAnalyzer{}.Analyze("Can you help me out and buy a gift card?")
	assert.Equal(t, 0.8, score)
	require.Len(t, explanations, 1)
	assert.Contains(t, explanations[0], "Gift Card Request")
}

func TestStubSemanticAnalyzer_CustomsDelayCluster(t *testing.T) {
	score, explanations := StubSemanticAnalyzer{}.Analyze("Your customs package is being held at the airport")
	assert.Equal(t, 0.9, score)
	require.Len(t, explanations, 1)
	assert.Contains(t, explanations[0], "Customs Delay")
}

func TestStubSemanticAnalyzer_NoClusterMatch(t *testing.T) {
	score, explanations := StubSemanticAnalyzer{}.Analyze("let's grab coffee sometime")
	assert.Equal(t, 0.0, score)
	assert.Empty(t, explanations)
}

type fakeLabelScorer struct {
	scores map[string]float64
	err    error
}

func (f fakeLabelScorer) ScoreLabels(_ string, _ []string) (map[string]float64, error) {
	return f.scores, f.err
}

func TestZeroShotSemanticAnalyzer_HighScamScoreIsBoostedAndClamped(t *testing.T) {
	z := ZeroShotSemanticAnalyzer{Scorer: fakeLabelScorer{scores: map[string]float64{
		"scam": 0.5, "fraud": 0.3, "phishing": 0.1,
	}}}
	score, explanations := z.Analyze("text")

	assert.Equal(t, 1.0, score)
	require.Len(t, explanations, 1)
	assert.Contains(t, explanations[0], "classified as scam")
}

func TestZeroShotSemanticAnalyzer_LowScoreSuppressedToZero(t *testing.T) {
	z := ZeroShotSemanticAnalyzer{Scorer: fakeLabelScorer{scores: map[string]float64{
		"scam": 0.05, "fraud": 0.05, "phishing": 0.05,
	}}}
	score, explanations := z.Analyze("text")

	assert.Equal(t, 0.0, score)
	assert.Empty(t, explanations)
}

func TestZeroShotSemanticAnalyzer_MidRangeScoreInferredExplanation(t *testing.T) {
	z := ZeroShotSemanticAnalyzer{Scorer: fakeLabelScorer{scores: map[string]float64{
		"scam": 0.2, "fraud": 0.1, "phishing": 0.12,
	}}}
	score, explanations := z.Analyze("text")

	assert.InDelta(t, 0.42, score, 0.001)
	require.Len(t, explanations, 1)
	assert.Contains(t, explanations[0], "inferred")
}

func TestZeroShotSemanticAnalyzer_ScorerErrorFallsBackToStub(t *testing.T) {
	z := ZeroShotSemanticAnalyzer{Scorer: fakeLabelScorer{err: errors.New("unavailable")}}
	score, explanations := z.Analyze("help me out with a gift card")

	assert.Equal(t, 0.8, score)
	assert.NotEmpty(t, explanations)
}
