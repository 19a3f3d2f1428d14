package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"careerlift-backend/internal/llm"
	"careerlift-backend/internal/schema"
	"careerlift-backend/internal/shared/apperr"
	"careerlift-backend/internal/shared/telemetry"
)

// Structurer converts discovery prose into a StructuredSet.
type Structurer struct {
	LLM   llm.Generator
	Model string
}

// Structure issues one schema-constrained request. Entries that fail validation are dropped.
func (s *Structurer) Structure(ctx context.Context, freeText string) (StructuredSet, error) {
	const op = "resources.Structure"
	if s.LLM == nil {
		return StructuredSet{}, apperr.New(apperr.KindGenerationFailed, op, llm.ErrNotConfigured)
	}

	resp, err := s.LLM.Generate(ctx, llm.Request{
		Model:             s.Model,
		SystemInstruction: structureSystem,
		Prompt:            strings.NewReplacer("{{NOTES}}", freeText).Replace(structureTemplate),
		Schema:            schema.LearningResources(),
	})
	if err != nil {
		return StructuredSet{}, apperr.New(apperr.KindGenerationFailed, op, err)
	}

	set, err := parseSet([]byte(resp.Text))
	if err != nil {
		return StructuredSet{}, apperr.New(apperr.KindSchemaViolation, op, err).WithRaw(resp.Text)
	}
	if set.Dropped > 0 {
		telemetry.Warn("resources.entries_dropped", map[string]any{
			"dropped": set.Dropped,
			"model":   resp.Model,
		})
	}
	return set, nil
}

type rawSet struct {
	Courses       []json.RawMessage `json:"courses"`
	Opportunities []json.RawMessage `json:"opportunities"`
}

func parseSet(raw []byte) (StructuredSet, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return StructuredSet{}, fmt.Errorf("decode resources: %w", err)
	}
	for _, key := range []string{"courses", "opportunities"} {
		v, ok := top[key]
		if !ok {
			return StructuredSet{}, fmt.Errorf("missing %q array", key)
		}
		var arr []json.RawMessage
		if err := json.Unmarshal(v, &arr); err != nil || arr == nil {
			return StructuredSet{}, fmt.Errorf("%q is not an array", key)
		}
	}
	var rs rawSet
	if err := json.Unmarshal(raw, &rs); err != nil {
		return StructuredSet{}, fmt.Errorf("decode resources: %w", err)
	}

	set := StructuredSet{Courses: []Course{}, Opportunities: []Opportunity{}}
	for _, entry := range rs.Courses {
		var c Course
		if !validEntry(entry, schema.ValidateCourse, &c) || !absoluteHTTP(c.Link) {
			set.Dropped++
			continue
		}
		set.Courses = append(set.Courses, trimCourse(c))
	}
	for _, entry := range rs.Opportunities {
		var o Opportunity
		if !validEntry(entry, schema.ValidateOpportunity, &o) || !absoluteHTTP(o.Link) {
			set.Dropped++
			continue
		}
		set.Opportunities = append(set.Opportunities, trimOpportunity(o))
	}
	return set, nil
}

func validEntry(raw json.RawMessage, validate func(any) error, dst any) bool {
	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return false
	}
	if err := validate(instance); err != nil {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func absoluteHTTP(link string) bool {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func trimCourse(c Course) Course {
	return Course{
		Title:    strings.TrimSpace(c.Title),
		Provider: strings.TrimSpace(c.Provider),
		Duration: strings.TrimSpace(c.Duration),
		Cost:     strings.TrimSpace(c.Cost),
		Link:     strings.TrimSpace(c.Link),
	}
}

func trimOpportunity(o Opportunity) Opportunity {
	return Opportunity{
		Name:        strings.TrimSpace(o.Name),
		Description: strings.TrimSpace(o.Description),
		Difficulty:  strings.TrimSpace(o.Difficulty),
		Link:        strings.TrimSpace(o.Link),
	}
}
