// Package persona loads declarative YAML persona definitions and hydrates
// them into system-prompt instructional text.
package persona

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Demographics is the identity block of a persona.
type Demographics struct {
	Name              string `yaml:"name"`
	Age               int    `yaml:"age"`
	Location          string `yaml:"location"`
	Socioeconomic     string `yaml:"socioeconomic"`
	TechnicalLiteracy string `yaml:"technical_literacy"`
}

// EmotionalModeling captures baseline and under-pressure affect.
type EmotionalModeling struct {
	Baseline      string `yaml:"baseline"`
	UnderPressure string `yaml:"under_pressure"`
}

// Traits holds behavioral traits, cognitive biases, and emotional modeling.
// Behavioral and CognitiveBiases accept either plain strings or single-key
// maps in the source YAML (the author's convention varies); both flatten
// to "key: value" or the bare string.
type Traits struct {
	Behavioral        []interface{}     `yaml:"behavioral"`
	CognitiveBiases   []interface{}     `yaml:"cognitive_biases"`
	EmotionalModeling EmotionalModeling `yaml:"emotional_modeling"`
}

// Linguistic controls register and vocabulary limits.
type Linguistic struct {
	Style            string `yaml:"style"`
	VocabularyLimits string `yaml:"vocabulary_limits"`
}

// EngagementRules governs risk posture and extraction tactics.
type EngagementRules struct {
	RiskTolerance  string `yaml:"risk_tolerance"`
	ExtractionBait string `yaml:"extraction_bait"`
}

// MicroFallback is the persona-compliant static-reply pool used only when
// the orchestrator's retry loop is exhausted.
type MicroFallback []string

// Persona is the fully parsed, immutable-after-load declarative document.
type Persona struct {
	ID              string          `yaml:"-"`
	Demographics    Demographics    `yaml:"demographics"`
	Traits          Traits          `yaml:"traits"`
	Linguistic      Linguistic      `yaml:"linguistic"`
	EngagementRules EngagementRules `yaml:"engagement_rules"`
	MicroFallbacks  MicroFallback   `yaml:"micro_fallbacks"`
}

// Engine loads YAML persona files by ID, caching the parsed result and the
// hydrated system-prompt segment.
type Engine struct {
	dir string

	mu      sync.RWMutex
	cache   map[string]*Persona
	segment map[string]string
}

// NewEngine returns an engine reading persona files from dir.
func NewEngine(dir string) *Engine {
	return &Engine{
		dir:     dir,
		cache:   make(map[string]*Persona),
		segment: make(map[string]string),
	}
}

// Load reads and caches persona_id.yml from the engine's directory.
func (e *Engine) Load(personaID string) (*Persona, error) {
	e.mu.RLock()
	if p, ok := e.cache[personaID]; ok {
		e.mu.RUnlock()
		return p, nil
	}
	e.mu.RUnlock()

	path := filepath.Join(e.dir, personaID+".yml")
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("persona template not found: %w", err)
	}

	var p Persona
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parse persona %s: %w", personaID, err)
	}
	p.ID = personaID

	e.mu.Lock()
	e.cache[personaID] = &p
	e.mu.Unlock()
	return &p, nil
}

// BuildSystemPromptSegment hydrates the bare persona config into the
// persona-identity portion of the system prompt. Unknown keys are ignored
// because yaml.Unmarshal already drops them.
func (e *Engine) BuildSystemPromptSegment(personaID string) (string, error) {
	e.mu.RLock()
	if seg, ok := e.segment[personaID]; ok {
		e.mu.RUnlock()
		return seg, nil
	}
	e.mu.RUnlock()

	p, err := e.Load(personaID)
	if err != nil {
		return "", err
	}

	behavioral := flattenList(p.Traits.Behavioral)
	biases := flattenList(p.Traits.CognitiveBiases)

	seg := fmt.Sprintf(`You are %s, aged %d from %s.
Socioeconomic background: %s
Technical literacy: %s

# BEHAVIORAL TRAITS (CRITICAL)
- %s

# COGNITIVE BIASES
- %s

# EMOTIONAL STATE
- Baseline: %s
- Under Pressure: %s

# LINGUISTIC STYLE
- %s
- DO NOT UNDERSTAND: %s

# CORE DIRECTIVES & RISK TOLERANCE
- %s
- TACTIC: %s
`,
		orDefault(p.Demographics.Name, "a user"), p.Demographics.Age, orDefault(p.Demographics.Location, "unknown"),
		orDefault(p.Demographics.Socioeconomic, "average"),
		orDefault(p.Demographics.TechnicalLiteracy, "average"),
		strings.Join(behavioral, "\n- "),
		strings.Join(biases, "\n- "),
		orDefault(p.Traits.EmotionalModeling.Baseline, "calm"),
		orDefault(p.Traits.EmotionalModeling.UnderPressure, "anxious"),
		orDefault(p.Linguistic.Style, "casual"),
		orDefault(p.Linguistic.VocabularyLimits, "highly technical jargon"),
		orDefault(p.EngagementRules.RiskTolerance, "moderate"),
		orDefault(p.EngagementRules.ExtractionBait, "ask natural questions"),
	)

	e.mu.Lock()
	e.segment[personaID] = seg
	e.mu.Unlock()
	return seg, nil
}

func flattenList(items []interface{}) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case map[string]interface{}:
			for k, val := range v {
				out = append(out, fmt.Sprintf("%s: %v", k, val))
			}
		default:
			out = append(out, fmt.Sprintf("%v", v))
		}
	}
	return out
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
