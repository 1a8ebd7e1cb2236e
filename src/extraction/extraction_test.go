package extraction

import (
	"testing"

	"github.com/perplext/cipherhoneypot/src/session"
	"github.com/stretchr/testify/assert"
)

func TestExtract_UPIId(t *testing.T) {
	buf := Extract("please pay to scammer123@ybl right away")
	assert.Contains(t, buf.Snapshot()[session.CategoryUPIIds], "scammer123@ybl")
}

func TestExtract_PhoneNumberNormalized(t *testing.T) {
	buf := Extract("call me at +91 9876543210")
	assert.Contains(t, buf.Snapshot()[session.CategoryPhoneNumbers], "9876543210")
}

func TestExtract_PhishingLinkExcludesSafeDomains(t *testing.T) {
	buf := Extract("visit http://evil-bank-verify.test/login or https://www.google.com/search")
	links := buf.Snapshot()[session.CategoryPhishingLinks]
	assert.Contains(t, links, "http://evil-bank-verify.test/login")
	assert.NotContains(t, links, "https://www.google.com/search")
}

func TestExtract_BankAccountRequiresContextTerm(t *testing.T) {
	withoutContext := Extract("your order id is 123456789012")
	assert.Empty(t, withoutContext.Snapshot()[session.CategoryBankAccounts])

	withContext := Extract("transfer to my bank account number 123456789012")
	assert.Contains(t, withContext.Snapshot()[session.CategoryBankAccounts], "123456789012")
}

func TestExtract_SuspiciousKeywords(t *testing.T) {
	buf := Extract("Your account is BLOCKED, send OTP immediately or face legal action")
	keywords := buf.Snapshot()[session.CategorySuspiciousKeywords]
	assert.Contains(t, keywords, "blocked")
	assert.Contains(t, keywords, "otp")
	assert.Contains(t, keywords, "immediately")
	assert.Contains(t, keywords, "legal action")
}

func TestExtract_NoMatchesReturnsEmptyBuffer(t *testing.T) {
	buf := Extract("see you at the park later")
	assert.Equal(t, 0, buf.Count())
}
