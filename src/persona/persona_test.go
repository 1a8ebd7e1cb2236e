package persona

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPersonaYAML = `
demographics:
  name: Margaret
  age: 72
  location: Ohio
  socioeconomic: retired, fixed income
  technical_literacy: low
traits:
  behavioral:
    - trusts authority figures
    - easily flustered by urgency
  cognitive_biases:
    - authority bias
  emotional_modeling:
    baseline: friendly and chatty
    under_pressure: anxious and compliant
linguistic:
  style: folksy, rambling
  vocabulary_limits: no technical jargon
engagement_rules:
  risk_tolerance: low
  extraction_bait: ask for a callback number
micro_fallbacks:
  - "Oh dear, let me find my glasses."
  - "Can you repeat that, I didn't catch it."
`

func newTestEngine(t *testing.T) (*Engine, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "margaret_72.yml"), []byte(testPersonaYAML), 0o644))
	return NewEngine(dir), dir
}

func TestEngine_Load_ParsesYAML(t *testing.T) {
	e, _ := newTestEngine(t)

	p, err := e.Load("margaret_72")
	require.NoError(t, err)
	assert.Equal(t, "margaret_72", p.ID)
	assert.Equal(t, "Margaret", p.Demographics.Name)
	assert.Equal(t, 72, p.Demographics.Age)
	assert.Len(t, p.MicroFallbacks, 2)
}

func TestEngine_Load_CachesResult(t *testing.T) {
	e, dir := newTestEngine(t)

	_, err := e.Load("margaret_72")
	require.NoError(t, err)

	// Removing the backing file must not affect the cached result.
	require.NoError(t, os.Remove(filepath.Join(dir, "margaret_72.yml")))

	p, err := e.Load("margaret_72")
	require.NoError(t, err)
	assert.Equal(t, "Margaret", p.Demographics.Name)
}

func TestEngine_Load_MissingFileErrors(t *testing.T) {
	e, _ := newTestEngine(t)
	_, err := e.Load("nonexistent")
	assert.Error(t, err)
}

func TestEngine_BuildSystemPromptSegment_IncludesAllSections(t *testing.T) {
	e, _ := newTestEngine(t)

	seg, err := e.BuildSystemPromptSegment("margaret_72")
	require.NoError(t, err)

	assert.Contains(t, seg, "You are Margaret, aged 72 from Ohio.")
	assert.Contains(t, seg, "trusts authority figures")
	assert.Contains(t, seg, "authority bias")
	assert.Contains(t, seg, "friendly and chatty")
	assert.Contains(t, seg, "folksy, rambling")
	assert.Contains(t, seg, "ask for a callback number")
}

func TestEngine_BuildSystemPromptSegment_CachesSegment(t *testing.T) {
	e, _ := newTestEngine(t)

	first, err := e.BuildSystemPromptSegment("margaret_72")
	require.NoError(t, err)

	second, err := e.BuildSystemPromptSegment("margaret_72")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFlattenList_HandlesMixedStringAndMapEntries(t *testing.T) {
	items := []interface{}{
		"plain string",
		map[string]interface{}{"trigger": "urgency"},
	}
	out := flattenList(items)
	assert.Equal(t, []string{"plain string", "trigger: urgency"}, out)
}

func TestOrDefault(t *testing.T) {
	assert.Equal(t, "fallback", orDefault("", "fallback"))
	assert.Equal(t, "value", orDefault("value", "fallback"))
}
