// Package analysis turns resume text and a career goal into a schema-conformant assessment.
package analysis

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"careerlift-backend/internal/llm"
	"careerlift-backend/internal/schema"
	"careerlift-backend/internal/shared/apperr"
	"careerlift-backend/internal/shared/telemetry"
)

const op = "analysis.Analyze"

var (
	//go:embed prompts/system.txt
	systemPrompt string
	//go:embed prompts/user.txt
	userTemplate string
)

// Recommendations groups suggested certifications and opportunities.
type Recommendations struct {
	Certifications []string `json:"certifications"`
	Opportunities  []string `json:"opportunities"`
}

// Metadata records how a result was produced.
type Metadata struct {
	Model       string    `json:"model"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Result is a validated resume assessment.
type Result struct {
	ResumeScore     int             `json:"resumeScore"`
	Summary         string          `json:"summary"`
	MissingSkills   []string        `json:"missingSkills"`
	Recommendations Recommendations `json:"recommendations"`
	CareerGoal      string          `json:"careerGoal"`
	Metadata        Metadata        `json:"metadata"`
}

// Generator issues one schema-constrained generation per call.
type Generator struct {
	LLM   llm.Generator
	Model string

	now func() time.Time
}

// New returns a Generator using gen. An empty model defers to the backend default.
func New(gen llm.Generator, model string) *Generator {
	return &Generator{LLM: gen, Model: model, now: time.Now}
}

// Analyze scores resumeText against careerGoal. It never retries and never repairs output.
func (g *Generator) Analyze(ctx context.Context, resumeText, careerGoal string) (Result, error) {
	goal := strings.TrimSpace(careerGoal)
	if goal == "" {
		return Result{}, apperr.New(apperr.KindInvalidInput, op, errors.New("careerGoal is required"))
	}
	if g.LLM == nil {
		return Result{}, apperr.New(apperr.KindGenerationFailed, op, llm.ErrNotConfigured)
	}

	resp, err := g.LLM.Generate(ctx, llm.Request{
		Model:             g.Model,
		SystemInstruction: systemPrompt,
		Prompt:            renderPrompt(resumeText, goal),
		Schema:            schema.Analysis(),
	})
	if err != nil {
		return Result{}, apperr.New(apperr.KindGenerationFailed, op, err)
	}

	result, err := parse([]byte(resp.Text))
	if err != nil {
		telemetry.Warn("analysis.schema_violation", map[string]any{
			"model": resp.Model,
			"error": err.Error(),
		})
		return Result{}, apperr.New(apperr.KindSchemaViolation, op, err).WithRaw(resp.Text)
	}

	now := time.Now
	if g.now != nil {
		now = g.now
	}
	model := resp.Model
	if model == "" {
		model = g.Model
	}
	result.CareerGoal = goal
	result.Metadata = Metadata{Model: model, GeneratedAt: now().UTC()}
	return result, nil
}

func renderPrompt(resumeText, careerGoal string) string {
	return strings.NewReplacer(
		"{{CAREER_GOAL}}", careerGoal,
		"{{RESUME_TEXT}}", resumeText,
	).Replace(userTemplate)
}

// parse validates raw against the Analysis Schema and the typed invariants.
func parse(raw []byte) (Result, error) {
	if err := schema.ValidateAnalysis(raw); err != nil {
		return Result{}, err
	}
	var r Result
	if err := json.Unmarshal(raw, &r); err != nil {
		return Result{}, fmt.Errorf("decode analysis: %w", err)
	}
	if err := checkInvariants(r); err != nil {
		return Result{}, err
	}
	return r, nil
}

func checkInvariants(r Result) error {
	if r.ResumeScore < 0 || r.ResumeScore > 100 {
		return fmt.Errorf("resumeScore %d out of range", r.ResumeScore)
	}
	if r.ResumeScore < 100 && len(r.MissingSkills) == 0 {
		return errors.New("missingSkills must not be empty when resumeScore is below 100")
	}
	seen := make(map[string]struct{}, len(r.MissingSkills))
	for _, skill := range r.MissingSkills {
		key := strings.ToLower(strings.TrimSpace(skill))
		if key == "" {
			return errors.New("missingSkills contains an empty entry")
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("duplicate missing skill %q", skill)
		}
		seen[key] = struct{}{}
	}
	return nil
}
