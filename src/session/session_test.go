package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntelBuffer_AddDedupes(t *testing.T) {
	b := NewIntelBuffer()
	b.Add(CategoryUPIIds, "scammer@ybl")
	b.Add(CategoryUPIIds, "scammer@ybl")
	assert.Equal(t, 1, b.Count())
}

func TestIntelBuffer_MergeUnions(t *testing.T) {
	a := NewIntelBuffer()
	a.Add(CategoryPhoneNumbers, "9876543210")

	other := NewIntelBuffer()
	other.Add(CategoryPhoneNumbers, "9876543210")
	other.Add(CategoryBankAccounts, "1234567890")

	a.Merge(other)
	assert.Equal(t, 2, a.Count())
	assert.Contains(t, a.Snapshot()[CategoryBankAccounts], "1234567890")
}

func TestIntelBuffer_JSONRoundTrip(t *testing.T) {
	b := NewIntelBuffer()
	b.Add(CategoryPhishingLinks, "http://example-bank-verify.test")

	raw, err := b.MarshalJSON()
	assert.NoError(t, err)

	var restored IntelBuffer
	assert.NoError(t, restored.UnmarshalJSON(raw))
	assert.Equal(t, b.Snapshot(), restored.Snapshot())
}

func TestSession_TouchSetsAgentActive(t *testing.T) {
	s := New("sess-1", "margaret_72")
	assert.False(t, s.AgentActive)

	s.State = StateEngaging
	s.Touch()
	assert.True(t, s.AgentActive)

	s.State = StateSafe
	s.Touch()
	assert.False(t, s.AgentActive)
}

func TestSession_IsTerminal(t *testing.T) {
	s := New("sess-1", "margaret_72")
	assert.False(t, s.IsTerminal())

	s.State = StateCompleted
	assert.True(t, s.IsTerminal())
}
