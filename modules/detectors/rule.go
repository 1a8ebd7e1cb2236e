// Package detectors holds small, reusable rule-matching primitives shared
// by the detection engine's heuristic layer.
package detectors

import "regexp"

// RegexRule is a named, weighted pattern match: it contributes its weight
// once if the pattern matches anywhere in the candidate text.
type RegexRule struct {
	Name        string
	Pattern     *regexp.Regexp
	Weight      float64
	Description string
}

// NewRegexRule compiles pattern as given (case-sensitive unless the pattern
// itself embeds a (?i) flag) and panics on a malformed expression, since the rule
// catalogue is a fixed, compile-time constant, not user input.
func NewRegexRule(name, pattern string, weight float64, description string) RegexRule {
	return RegexRule{
		Name:        name,
		Pattern:     regexp.MustCompile(pattern),
		Weight:      weight,
		Description: description,
	}
}

// Matches reports whether the rule's pattern is found anywhere in text.
func (r RegexRule) Matches(text string) bool {
	return r.Pattern.MatchString(text)
}
