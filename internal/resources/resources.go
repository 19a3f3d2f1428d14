// Package resources discovers learning material with a grounded search and
// restructures it into schema-conformant courses and opportunities.
package resources

import (
	_ "embed"

	"careerlift-backend/internal/llm"
)

var (
	//go:embed prompts/discover.txt
	discoverTemplate string
	//go:embed prompts/structure_system.txt
	structureSystem string
	//go:embed prompts/structure_user.txt
	structureTemplate string
)

// DiscoveryResult is free prose plus the citations that grounded it.
type DiscoveryResult struct {
	Text    string       `json:"text"`
	Sources []llm.Source `json:"sources"`
}

// Course is a structured course entry.
type Course struct {
	Title    string `json:"title"`
	Provider string `json:"provider"`
	Duration string `json:"duration,omitempty"`
	Cost     string `json:"cost,omitempty"`
	Link     string `json:"link"`
}

// Opportunity is a structured practice opportunity.
type Opportunity struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Difficulty  string `json:"difficulty,omitempty"`
	Link        string `json:"link"`
}

// StructuredSet holds the entries that passed per-entry validation.
type StructuredSet struct {
	Courses       []Course      `json:"courses"`
	Opportunities []Opportunity `json:"opportunities"`
	// Dropped counts entries removed for failing validation.
	Dropped int `json:"-"`
}
