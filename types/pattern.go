package types

import (
	"strings"
	"time"
)

// Maturity indicates how battle-tested a pattern is.
type Maturity string

const (
	MaturityExperimental Maturity = "experimental"
	MaturityEmerging     Maturity = "emerging"
	MaturityEstablished  Maturity = "established"
)

// ValidMaturity reports whether m is one of the known maturity levels.
func ValidMaturity(m Maturity) bool {
	switch m {
	case MaturityExperimental, MaturityEmerging, MaturityEstablished:
		return true
	}
	return false
}

// PatternDocs holds the relative paths of the generated documents for a pattern.
type PatternDocs struct {
	Readme    string `json:"readme,omitempty" yaml:"readme,omitempty"`
	UserStory string `json:"user_story,omitempty" yaml:"user_story,omitempty"`
	Example   string `json:"example,omitempty" yaml:"example,omitempty"`
}

// Pattern is a single catalog entry: a named, documented practice for
// building LLM-based applications (e.g. "Deterministic IO", "Context Ledger").
type Pattern struct {
	ID        string      `json:"id" yaml:"id"` // slug, e.g. "structured-memory"
	Title     string      `json:"title" yaml:"title"`
	Summary   string      `json:"summary,omitempty" yaml:"summary,omitempty"`
	Tags      []string    `json:"tags,omitempty" yaml:"tags,omitempty"`
	Maturity  Maturity    `json:"maturity,omitempty" yaml:"maturity,omitempty"`
	Docs      PatternDocs `json:"docs,omitempty" yaml:"docs,omitempty"`
	CreatedAt time.Time   `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt time.Time   `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// Matches reports whether the pattern matches a case-insensitive keyword query
// against its ID, title, summary, or tags.
func (p *Pattern) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(p.ID), q) ||
		strings.Contains(strings.ToLower(p.Title), q) ||
		strings.Contains(strings.ToLower(p.Summary), q) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// Manifest is the catalog index: the machine-readable list of all patterns,
// the equivalent of the browser app's index.json.
type Manifest struct {
	Version     string    `json:"version" yaml:"version"`
	GeneratedAt time.Time `json:"generated_at,omitempty" yaml:"generated_at,omitempty"`
	Patterns    []Pattern `json:"patterns" yaml:"patterns"`
}
