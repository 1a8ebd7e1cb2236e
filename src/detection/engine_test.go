package detection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_Detect_BenignTextScoresLow(t *testing.T) {
	e := NewEngine(nil)
	sig := e.Detect("Hey, are we still on for lunch tomorrow?", 0, 0.3)

	assert.False(t, sig.ScamDetected)
	assert.Equal(t, RiskLow, sig.RiskLevel)
	assert.Empty(t, sig.Explanations)
}

func TestEngine_Detect_UPIPlusOTPCrossesThreshold(t *testing.T) {
	e := NewEngine(nil)
	// L1: upi_id (0.4) + otp_request (0.45) = 0.85, weighted 0.55*0.85 = 0.4675,
	// just under ScamThreshold on its own. L2: send(0.2)+pay(0.3) = 0.5 >= 0.25
	// adds 0.3, weighted 0.45*0.3 = 0.135, so the final score is 0.60.
	sig := e.Detect("Send your OTP now and pay scammer@ybl to verify", 0, 0.3)

	require.True(t, sig.ScamDetected)
	assert.GreaterOrEqual(t, sig.ConfidenceScore, ScamThreshold)
	assert.NotEmpty(t, sig.Explanations)
}

func TestEngine_Detect_HistoricalDecayElevatesScore(t *testing.T) {
	e := NewEngine(nil)
	// Benign text alone stays well under threshold, but a high previous
	// session score with enough weight should pull the blended score up.
	sig := e.Detect("Hello there", 1.0, 0.6)

	assert.Equal(t, 0.6, sig.ConfidenceScore)
	assert.Contains(t, sig.Explanations[len(sig.Explanations)-1], "elevated from semantic history")
}

func TestEngine_Detect_ScoreNeverExceedsOne(t *testing.T) {
	e := NewEngine(nil)
	sig := e.Detect("URGENT: your SBI bank account is blocked, send OTP, password and bank details now or face arrest and lawsuit, pay the fine", 1.0, 0.9)

	assert.LessOrEqual(t, sig.ConfidenceScore, 1.0)
}

func TestEngine_Detect_UsesCustomSemanticAnalyzer(t *testing.T) {
	e := NewEngine(StubSemanticAnalyzer{})
	sig := e.Detect("can you help me out, I need a gift card", 0, 0.3)

	assert.Contains(t, sig.Explanations, "L3: Semantic map closely aligns with 'Gift Card Request' phishing template")
}

func TestMapRiskLevel_Boundaries(t *testing.T) {
	cases := []struct {
		confidence float64
		want       RiskLevel
	}{
		{0.0, RiskLow},
		{0.44, RiskLow},
		{0.45, RiskMedium},
		{0.64, RiskMedium},
		{0.65, RiskHigh},
		{0.84, RiskHigh},
		{0.85, RiskCritical},
		{1.0, RiskCritical},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, MapRiskLevel(c.confidence), "confidence %.2f", c.confidence)
	}
}
