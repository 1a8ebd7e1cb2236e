// Package extraction mines structured intelligence entities out of raw
// message text.
package extraction

import (
	"regexp"
	"strings"

	"github.com/perplext/cipherhoneypot/src/session"
)

var (
	upiPattern = regexp.MustCompile(
		`(?i)[a-zA-Z0-9._-]+@(ybl|paytm|okaxis|oksbi|okhdfcbank|axl|upi|ibl|apl|waaxis|freecharge|icici|kotak|indus)`)
	phonePattern = regexp.MustCompile(`\b(?:\+91[\s-]?)?[6-9]\d{9}\b`)
	urlPattern   = regexp.MustCompile(`(?i)https?://[^\s<>"']+`)
	numberPattern = regexp.MustCompile(`\b\d{9,18}\b`)
)

// safeDomains are excluded from phishingLinks even when otherwise matched.
var safeDomains = []string{"google.com", "microsoft.com", "apple.com"}

// suspiciousKeywords is the fixed vocabulary whose literal presence (as a
// substring of the lowercased text) is recorded.
var suspiciousKeywords = []string{
	"otp", "verify", "blocked", "suspended", "urgent", "immediately",
	"arrest", "police", "legal action", "fine", "penalty", "refund",
	"cashback", "lottery", "winner", "prize", "kyc", "update",
	"link click", "download", "install", "remote", "anydesk", "teamviewer",
}

// bankAccountContextTerms gate bankAccounts extraction: a 9-18 digit run is
// only treated as a bank account number when one of these terms appears
// anywhere in the same message.
var bankAccountContextTerms = []string{"account", "a/c", "bank"}

// Extract mines text for the five fixed intelligence categories and
// returns a freshly populated buffer (always pass through Merge to fold
// it into a session's running intel_buffer).
func Extract(text string) session.IntelBuffer {
	result := session.NewIntelBuffer()
	lower := strings.ToLower(text)

	for _, m := range upiPattern.FindAllString(text, -1) {
		result.Add(session.CategoryUPIIds, strings.ToLower(m))
	}

	for _, m := range phonePattern.FindAllString(text, -1) {
		result.Add(session.CategoryPhoneNumbers, normalizePhone(m))
	}

	for _, m := range urlPattern.FindAllString(text, -1) {
		if !isSafeDomain(m) {
			result.Add(session.CategoryPhishingLinks, m)
		}
	}

	if hasBankContext(lower) {
		for _, m := range numberPattern.FindAllString(text, -1) {
			if len(m) >= 9 {
				result.Add(session.CategoryBankAccounts, m)
			}
		}
	}

	for _, keyword := range suspiciousKeywords {
		if strings.Contains(lower, keyword) {
			result.Add(session.CategorySuspiciousKeywords, keyword)
		}
	}

	return result
}

func normalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r == ' ' || r == '-' || r == '+' {
			continue
		}
		b.WriteRune(r)
	}
	normalized := b.String()
	if strings.HasPrefix(normalized, "91") && len(normalized) > 10 {
		normalized = normalized[2:]
	}
	return normalized
}

func isSafeDomain(url string) bool {
	lower := strings.ToLower(url)
	for _, safe := range safeDomains {
		if strings.Contains(lower, safe) {
			return true
		}
	}
	return false
}

func hasBankContext(lowerText string) bool {
	for _, term := range bankAccountContextTerms {
		if strings.Contains(lowerText, term) {
			return true
		}
	}
	return false
}
