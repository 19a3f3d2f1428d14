// Package pipeline composes extraction, analysis, resource discovery and job
// matching into the operations the HTTP layer and the CLI expose.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"careerlift-backend/internal/analysis"
	"careerlift-backend/internal/extract"
	"careerlift-backend/internal/jobmatch"
	"careerlift-backend/internal/llm"
	"careerlift-backend/internal/resources"
	"careerlift-backend/internal/shared/apperr"
	"careerlift-backend/internal/shared/metrics"
	"careerlift-backend/internal/shared/telemetry"
)

const (
	OpAnalyze  = "analyze"
	OpExtract  = "extract_and_analyze"
	OpDiscover = "discover_and_structure"
	OpMatch    = "match_jobs"

	DefaultMinResumeChars = 50

	SkipNoCareerGoal = "career goal not provided"
	SkipTooShort     = "extracted text shorter than minimum length"
)

type Analyzer interface {
	Analyze(ctx context.Context, resumeText, careerGoal string) (analysis.Result, error)
}

type Extractor interface {
	Extract(ctx context.Context, up extract.Upload) (extract.ExtractedDocument, error)
}

type Discoverer interface {
	Discover(ctx context.Context, role, skillsText string) (resources.DiscoveryResult, error)
}

type Structurer interface {
	Structure(ctx context.Context, freeText string) (resources.StructuredSet, error)
}

type JobMatcher interface {
	BuildAndRun(ctx context.Context, f jobmatch.Filter) ([]jobmatch.JobRecord, error)
}

// HistoryRecorder persists successful analyses for the caller in ctx.
type HistoryRecorder interface {
	Record(ctx context.Context, ownerID, source string, res analysis.Result) error
}

// Extraction is the result of ExtractAndAnalyze. Analysis is nil when it was skipped.
type Extraction struct {
	Text            string           `json:"extractedText"`
	CharacterCount  int              `json:"characterCount"`
	PageCount       int              `json:"pageCount,omitempty"`
	Truncated       bool             `json:"truncated"`
	FileName        string           `json:"fileName,omitempty"`
	Analysis        *analysis.Result `json:"analysis"`
	AnalysisSkipped string           `json:"analysisSkipped,omitempty"`
}

// Resources is the result of DiscoverAndStructure. When Degraded is set the
// structured lists are empty and RawText carries the discovery prose.
type Resources struct {
	Courses       []resources.Course      `json:"courses"`
	Opportunities []resources.Opportunity `json:"opportunities"`
	Sources       []llm.Source            `json:"sources"`
	Degraded      bool                    `json:"degraded"`
	RawText       string                  `json:"rawText,omitempty"`
	Unverified    []string                `json:"unverifiedLinks"`
}

// Service is the pipeline surface. Jobs and History may be nil.
type Service struct {
	Analyzer   Analyzer
	Extractor  Extractor
	Discoverer Discoverer
	Structurer Structurer
	Jobs       JobMatcher
	History    HistoryRecorder

	MinResumeChars int
}

type ownerKey struct{}

// WithOwner tags ctx with the history partition key of the caller.
func WithOwner(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerKey{}, ownerID)
}

func ownerFrom(ctx context.Context) string {
	id, _ := ctx.Value(ownerKey{}).(string)
	return id
}

// Analyze produces a schema-conformant analysis of resumeText for careerGoal.
func (s *Service) Analyze(ctx context.Context, resumeText, careerGoal string) (res analysis.Result, err error) {
	defer func() { metrics.IncRequest(OpAnalyze, outcome(err, false)) }()
	if strings.TrimSpace(resumeText) == "" {
		return analysis.Result{}, apperr.New(apperr.KindInvalidInput, "pipeline.Analyze", errors.New("resumeText is required"))
	}
	res, err = s.analyze(ctx, resumeText, careerGoal)
	if err != nil {
		return analysis.Result{}, err
	}
	s.record(ctx, "text", res)
	return res, nil
}

// ExtractAndAnalyze extracts text from a staged upload and, when careerGoal is set and
// the text is long enough, analyzes it. The staged object is released exactly once.
func (s *Service) ExtractAndAnalyze(ctx context.Context, up extract.Upload, careerGoal string) (out Extraction, err error) {
	defer func() { metrics.IncRequest(OpExtract, outcome(err, false)) }()

	doc, err := s.Extractor.Extract(ctx, up)
	if err != nil {
		return Extraction{}, err
	}
	out = Extraction{
		Text:           doc.Text,
		CharacterCount: doc.CharacterCount,
		PageCount:      doc.PageCount,
		Truncated:      doc.Truncated,
		FileName:       doc.FileName,
	}

	switch {
	case strings.TrimSpace(careerGoal) == "":
		out.AnalysisSkipped = SkipNoCareerGoal
		return out, nil
	case utf8.RuneCountInString(strings.TrimSpace(doc.Text)) < s.minChars():
		out.AnalysisSkipped = SkipTooShort
		return out, nil
	}

	res, err := s.analyze(ctx, doc.Text, careerGoal)
	if err != nil {
		return Extraction{}, err
	}
	s.record(ctx, "upload", res)
	out.Analysis = &res
	return out, nil
}

// DiscoverAndStructure runs grounded discovery for role and converts the prose into
// typed resources. A schema violation from the structuring step degrades the result
// to the raw discovery text instead of failing.
func (s *Service) DiscoverAndStructure(ctx context.Context, role string, skills []string) (out Resources, err error) {
	degraded := false
	defer func() { metrics.IncRequest(OpDiscover, outcome(err, degraded)) }()

	disc, err := s.Discoverer.Discover(ctx, role, JoinSkills(skills))
	if err != nil {
		return Resources{}, err
	}
	out = Resources{
		Courses:       []resources.Course{},
		Opportunities: []resources.Opportunity{},
		Sources:       disc.Sources,
		Unverified:    []string{},
	}

	set, err := s.Structurer.Structure(ctx, disc.Text)
	if errors.Is(err, apperr.ErrSchemaViolation) {
		degraded = true
		telemetry.Warn("pipeline.discover_degraded", map[string]any{
			"role":  strings.TrimSpace(role),
			"error": err.Error(),
			"raw":   truncate(apperr.RawOf(err), 2048),
		})
		out.Degraded = true
		out.RawText = disc.Text
		return out, nil
	}
	if err != nil {
		return Resources{}, err
	}

	if set.Courses != nil {
		out.Courses = set.Courses
	}
	if set.Opportunities != nil {
		out.Opportunities = set.Opportunities
	}
	if unverified := resources.CrossReference(set, disc.Sources); len(unverified) > 0 {
		out.Unverified = unverified
	}
	return out, nil
}

// MatchJobs returns job postings matching f.
func (s *Service) MatchJobs(ctx context.Context, f jobmatch.Filter) (jobs []jobmatch.JobRecord, err error) {
	defer func() { metrics.IncRequest(OpMatch, outcome(err, false)) }()
	if s.Jobs == nil {
		return nil, apperr.New(apperr.KindStoreNotConfigured, "pipeline.MatchJobs", nil)
	}
	return s.Jobs.BuildAndRun(ctx, f)
}

// JoinSkills trims skills, drops empty entries and joins them with ", ".
func JoinSkills(skills []string) string {
	parts := make([]string, 0, len(skills))
	for _, sk := range skills {
		if sk = strings.TrimSpace(sk); sk != "" {
			parts = append(parts, sk)
		}
	}
	return strings.Join(parts, ", ")
}

func (s *Service) analyze(ctx context.Context, text, goal string) (analysis.Result, error) {
	start := time.Now()
	res, err := s.Analyzer.Analyze(ctx, text, goal)
	metrics.ObserveGenerationMs(metrics.Since(start))
	return res, err
}

func (s *Service) record(ctx context.Context, source string, res analysis.Result) {
	if s.History == nil {
		return
	}
	owner := ownerFrom(ctx)
	if owner == "" {
		return
	}
	if err := s.History.Record(context.WithoutCancel(ctx), owner, source, res); err != nil {
		telemetry.Warn("pipeline.history_failed", map[string]any{
			"owner_id": owner,
			"error":    err.Error(),
		})
	}
}

// CheckResumeLength rejects resume text shorter than the configured minimum, counting
// code points after trimming. Callers apply it before Analyze.
func (s *Service) CheckResumeLength(text string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(text))
	if n < s.minChars() {
		return apperr.New(apperr.KindInvalidInput, OpAnalyze,
			fmt.Errorf("resume text has %d characters, need at least %d", n, s.minChars()))
	}
	return nil
}

func (s *Service) minChars() int {
	if s.MinResumeChars > 0 {
		return s.MinResumeChars
	}
	return DefaultMinResumeChars
}

func outcome(err error, degraded bool) string {
	switch {
	case err != nil:
		return metrics.OutcomeError
	case degraded:
		return metrics.OutcomeDegraded
	default:
		return metrics.OutcomeOK
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return fmt.Sprintf("%s...", s[:n])
}
