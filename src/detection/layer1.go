package detection

import "github.com/perplext/cipherhoneypot/modules/detectors"

// heuristicRules is the fixed L1 regex catalogue. Stable names, weights in
// [0, 0.5]; a rule contributes its weight once if it matches anywhere in
// the text. Layer score is the capped sum.
var heuristicRules = []detectors.RegexRule{
	detectors.NewRegexRule("upi_id",
		`[a-zA-Z0-9._-]+@(ybl|paytm|okaxis|oksbi|okhdfcbank|axl|upi|ibl)`,
		0.4, "L1: UPI ID blocklist entity found"),
	detectors.NewRegexRule("upi_link",
		`(?i)upi://pay\?`,
		0.5, "L1: Deep-link payment redirection"),
	detectors.NewRegexRule("bank_impersonation",
		`(?i)\b(sbi|hdfc|icici|axis|rbi|reserve\s*bank|bank\s*of\s*india)\s*(bank|customer\s*care|support)?\b`,
		0.3, "L1: Banking institution impersonation"),
	detectors.NewRegexRule("govt_impersonation",
		`(?i)\b(income\s*tax|it\s*department|customs|cyber\s*cell|police|government)\b`,
		0.4, "L1: Authority/Government impersonation"),
	detectors.NewRegexRule("otp_request",
		`(?i)\b(otp|one\s*time\s*password|verification\s*code|pin|cvv)\b`,
		0.45, "L1: PII/OTP extraction attempt"),
	detectors.NewRegexRule("password_request",
		`(?i)\b(password|login\s*credentials?|username\s*and\s*password)\b`,
		0.45, "L1: Credential theft attempt"),
	detectors.NewRegexRule("bank_details",
		`(?i)\b(bank\s*details?|account\s*number|ifsc|card\s*number|atm\s*pin)\b`,
		0.45, "L1: Bank details request"),
	detectors.NewRegexRule("lottery_scam",
		`(?i)\b(lottery|winner|prize|won|congratulations.*claim|lucky\s*draw)\b`,
		0.45, "L1: Lottery/Prize scam pattern"),
	detectors.NewRegexRule("job_scam",
		`(?i)\b(earn.*from\s*home|daily\s*income|part\s*time.*earn)\b`,
		0.35, "L1: Employment/Work-from-home scam pattern"),
	detectors.NewRegexRule("kyc_scam",
		`(?i)\b(kyc.*expir|update.*kyc|verify.*kyc|pan.*link)\b`,
		0.40, "L1: KYC verification/update urgency"),
	detectors.NewRegexRule("obfuscated_text",
		`([a-zA-Z]\.[a-zA-Z]\.[a-zA-Z]\.[a-zA-Z])|([a-zA-Z]![a-zA-Z])`,
		0.3, "L1: Obfuscation anomaly detected (filter evasion attempt)"),
	detectors.NewRegexRule("suspicious_url",
		`(?i)https?://[^\s]*\.(xyz|tk|ml|ga|cf|gq|top|click|link|info)/`,
		0.45, "L1: Suspicious TLD URL blocklist match"),
	detectors.NewRegexRule("shortened_url",
		`(?i)https?://(bit\.ly|tinyurl|t\.co|goo\.gl|ow\.ly|is\.gd|buff\.ly)/[^\s]+`,
		0.35, "L1: Obfuscated URL redirection"),
}

// runHeuristics is the deterministic L1 layer: a rule contributes once if
// its pattern matches anywhere in text.
func runHeuristics(text string) layerResult {
	var score float64
	var explanations []string
	for _, rule := range heuristicRules {
		if rule.Matches(text) {
			score += rule.Weight
			explanations = append(explanations, rule.Description)
		}
	}
	if score > 1.0 {
		score = 1.0
	}
	return layerResult{score: score, explanations: explanations}
}
