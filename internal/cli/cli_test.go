package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"careerlift-backend/internal/analysis"
	"careerlift-backend/internal/extract"
	"careerlift-backend/internal/pipeline"
	"careerlift-backend/internal/shared/apperr"
	"careerlift-backend/internal/shared/storage/object/local"
)

type fixedAnalyzer struct {
	calls int
}

func (f *fixedAnalyzer) Analyze(ctx context.Context, resumeText, careerGoal string) (analysis.Result, error) {
	f.calls++
	return analysis.Result{
		ResumeScore:   70,
		Summary:       "ok",
		MissingSkills: []string{"Terraform"},
		CareerGoal:    careerGoal,
	}, nil
}

func execute(t *testing.T, deps Deps, args ...string) (string, error) {
	t.Helper()
	load := func(ctx context.Context) (Deps, func() error, error) {
		return deps, nil, nil
	}
	root := NewRootCmd(load)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestAnalyzeText(t *testing.T) {
	an := &fixedAnalyzer{}
	out, err := execute(t, Deps{Pipeline: &pipeline.Service{Analyzer: an}}, "analyze", "--goal", "SRE", "--text", strings.Repeat("Go and Linux experience. ", 3))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	var res analysis.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if res.ResumeScore != 70 || res.CareerGoal != "SRE" || an.calls != 1 {
		t.Fatalf("unexpected result %#v", res)
	}
}

func TestAnalyzeTextTooShort(t *testing.T) {
	an := &fixedAnalyzer{}
	_, err := execute(t, Deps{Pipeline: &pipeline.Service{Analyzer: an}}, "analyze", "--goal", "SRE", "--text", "Go and Linux experience")
	if !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if an.calls != 0 {
		t.Fatalf("expected analyzer not to be called, got %d calls", an.calls)
	}
}

func TestAnalyzeRequiresOneSource(t *testing.T) {
	an := &fixedAnalyzer{}
	deps := Deps{Pipeline: &pipeline.Service{Analyzer: an}}
	if _, err := execute(t, deps, "analyze", "--goal", "SRE"); err == nil {
		t.Fatalf("expected error without --file or --text")
	}
	if _, err := execute(t, deps, "analyze", "--goal", "SRE", "--file", "a.pdf", "--text", "x"); err == nil {
		t.Fatalf("expected error with both --file and --text")
	}
	if an.calls != 0 {
		t.Fatalf("expected analyzer not to be called")
	}
}

func TestAnalyzeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cv.txt")
	resume := strings.Repeat("Operated Kubernetes clusters on GCP. ", 3)
	if err := os.WriteFile(path, []byte(resume), 0o600); err != nil {
		t.Fatalf("write resume: %v", err)
	}
	store := local.New(filepath.Join(dir, "staging"))
	deps := Deps{
		Pipeline: &pipeline.Service{Analyzer: &fixedAnalyzer{}, Extractor: extract.New(store, 0)},
		Store:    store,
	}

	out, err := execute(t, deps, "analyze", "--goal", "Platform Engineer", "--file", path)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	var res pipeline.Extraction
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if res.Text != resume || res.Analysis == nil || res.Analysis.CareerGoal != "Platform Engineer" {
		t.Fatalf("unexpected extraction %#v", res)
	}
}

func TestJobsWithoutStore(t *testing.T) {
	_, err := execute(t, Deps{Pipeline: &pipeline.Service{}}, "jobs", "--skills", "go,rust")
	if !errors.Is(err, apperr.ErrStoreNotConfigured) {
		t.Fatalf("expected ErrStoreNotConfigured, got %v", err)
	}
}

func TestCoursesRequiresRole(t *testing.T) {
	if _, err := execute(t, Deps{Pipeline: &pipeline.Service{}}, "courses"); err == nil {
		t.Fatalf("expected error without --role")
	}
}
