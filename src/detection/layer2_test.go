package detection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunBehavioral_LegalThreatOutweighsCoercion(t *testing.T) {
	// legalScore = arrest(0.4)+warrant(0.4) = 0.8 >= 0.3, coercionScore = 0;
	// only the higher-priority legal-threat branch should fire.
	r := runBehavioral("you will face arrest under warrant")
	assert.InDelta(t, 0.4, r.score, 0.001)
	assert.Len(t, r.explanations, 1)
	assert.Contains(t, r.explanations[0], "legal/threat coercion")
}

func TestRunBehavioral_CoercionWithoutLegalThreat(t *testing.T) {
	// coercionScore = suspended(0.3)+blocked(0.3) = 0.6 >= 0.3, legalScore = 0.
	r := runBehavioral("your account is suspended and blocked")
	assert.InDelta(t, 0.3, r.score, 0.001)
	assert.Contains(t, r.explanations[0], "account coercion")
}

func TestRunBehavioral_UrgencyAndFinancialAreAdditive(t *testing.T) {
	// urgencyScore = urgently(0.25)+now(0.15) = 0.4 >= 0.2, financialScore = transfer(0.3)+pay(0.3) = 0.6 >= 0.25.
	r := runBehavioral("please urgently transfer and pay now")
	assert.Len(t, r.explanations, 2)
	assert.InDelta(t, 0.2+0.3, r.score, 0.001)
}

func TestRunBehavioral_BenignTextScoresZero(t *testing.T) {
	r := runBehavioral("hope you have a great weekend")
	assert.Equal(t, 0.0, r.score)
	assert.Empty(t, r.explanations)
}

func TestTokenize_StripsPunctuationAndLowercases(t *testing.T) {
	got := tokenize("URGENT! Pay, now.")
	assert.Equal(t, []string{"urgent", "pay", "now"}, got)
}
