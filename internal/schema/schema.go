// Package schema holds the structured-output contracts the generative backend
// is asked to honor, and validates raw responses against them.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

const (
	AnalysisName          = "analysis"
	LearningResourcesName = "learning_resources"
)

var (
	analysisSchema    = buildAnalysis()
	resourcesSchema   = buildLearningResources()
	courseSchema      = resourcesSchema.Properties["courses"].Items
	opportunitySchema = resourcesSchema.Properties["opportunities"].Items

	analysisResolved    = mustResolve(analysisSchema)
	resourcesResolved   = mustResolve(resourcesSchema)
	courseResolved      = mustResolve(courseSchema)
	opportunityResolved = mustResolve(opportunitySchema)
)

// Analysis returns the Analysis Schema. Callers must not mutate it.
func Analysis() *jsonschema.Schema { return analysisSchema }

// LearningResources returns the Learning-Resource Schema. Callers must not mutate it.
func LearningResources() *jsonschema.Schema { return resourcesSchema }

// ValidateAnalysis decodes raw and validates it against the Analysis Schema.
func ValidateAnalysis(raw []byte) error {
	return validate(analysisResolved, raw)
}

// ValidateLearningResources decodes raw and validates it against the Learning-Resource Schema.
func ValidateLearningResources(raw []byte) error {
	return validate(resourcesResolved, raw)
}

// ValidateCourse validates a single decoded course entry.
func ValidateCourse(entry any) error {
	return courseResolved.Validate(entry)
}

// ValidateOpportunity validates a single decoded opportunity entry.
func ValidateOpportunity(entry any) error {
	return opportunityResolved.Validate(entry)
}

func validate(rs *jsonschema.Resolved, raw []byte) error {
	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return rs.Validate(instance)
}

func mustResolve(s *jsonschema.Schema) *jsonschema.Resolved {
	rs, err := s.Resolve(nil)
	if err != nil {
		panic(fmt.Sprintf("schema: resolve: %v", err))
	}
	return rs
}

func buildAnalysis() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:     "object",
		Required: []string{"resumeScore", "summary", "missingSkills", "recommendations"},
		Properties: map[string]*jsonschema.Schema{
			"resumeScore": {
				Type:        "integer",
				Description: "Overall fit of the resume for the career goal, 0-100.",
				Minimum:     jsonschema.Ptr(0.0),
				Maximum:     jsonschema.Ptr(100.0),
			},
			"summary": {
				Type:        "string",
				Description: "Short assessment of the resume against the career goal.",
			},
			"missingSkills": {
				Type:        "array",
				Description: "Skills required for the career goal that the resume does not show.",
				Items:       &jsonschema.Schema{Type: "string"},
				UniqueItems: true,
			},
			"recommendations": {
				Type:     "object",
				Required: []string{"certifications", "opportunities"},
				Properties: map[string]*jsonschema.Schema{
					"certifications": {
						Type:  "array",
						Items: &jsonschema.Schema{Type: "string"},
					},
					"opportunities": {
						Type:  "array",
						Items: &jsonschema.Schema{Type: "string"},
					},
				},
			},
		},
	}
}

func buildLearningResources() *jsonschema.Schema {
	course := &jsonschema.Schema{
		Type:     "object",
		Required: []string{"title", "provider", "link"},
		Properties: map[string]*jsonschema.Schema{
			"title":    {Type: "string", MinLength: jsonschema.Ptr(1)},
			"provider": {Type: "string", MinLength: jsonschema.Ptr(1)},
			"duration": {Type: "string"},
			"cost":     {Type: "string"},
			"link":     {Type: "string", MinLength: jsonschema.Ptr(1), Description: "Absolute http(s) URL."},
		},
	}
	opportunity := &jsonschema.Schema{
		Type:     "object",
		Required: []string{"name", "link"},
		Properties: map[string]*jsonschema.Schema{
			"name":        {Type: "string", MinLength: jsonschema.Ptr(1)},
			"description": {Type: "string"},
			"difficulty":  {Type: "string"},
			"link":        {Type: "string", MinLength: jsonschema.Ptr(1), Description: "Absolute http(s) URL."},
		},
	}
	return &jsonschema.Schema{
		Type:     "object",
		Required: []string{"courses", "opportunities"},
		Properties: map[string]*jsonschema.Schema{
			"courses":       {Type: "array", Items: course},
			"opportunities": {Type: "array", Items: opportunity},
		},
	}
}
