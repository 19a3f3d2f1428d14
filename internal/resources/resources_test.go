package resources

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careerlift-backend/internal/llm"
	"careerlift-backend/internal/shared/apperr"
)

type stubGenerator struct {
	resp  llm.Response
	err   error
	calls []llm.Request
}

func (s *stubGenerator) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	s.calls = append(s.calls, req)
	return s.resp, s.err
}

func TestDiscoverDedupesSourcesInOrder(t *testing.T) {
	stub := &stubGenerator{resp: llm.Response{
		Text: "Kubernetes courses: ...",
		Sources: []llm.Source{
			{Title: "coursera.org", URI: "https://coursera.org/k8s"},
			{Title: "no uri", URI: ""},
			{Title: "edx.org", URI: "https://edx.org/devops"},
			{Title: "coursera again", URI: "https://coursera.org/k8s"},
		},
	}}
	d := &Discoverer{LLM: stub}

	got, err := d.Discover(context.Background(), "DevOps Engineer", "Kubernetes, Terraform")
	require.NoError(t, err)
	assert.Equal(t, []llm.Source{
		{Title: "coursera.org", URI: "https://coursera.org/k8s"},
		{Title: "edx.org", URI: "https://edx.org/devops"},
	}, got.Sources)
	require.Len(t, stub.calls, 1)
	assert.True(t, stub.calls[0].Grounding)
	assert.Nil(t, stub.calls[0].Schema)
	assert.Contains(t, stub.calls[0].Prompt, "DevOps Engineer")
	assert.Contains(t, stub.calls[0].Prompt, "Kubernetes, Terraform")
}

func TestDiscoverEmptySourcesIsValid(t *testing.T) {
	d := &Discoverer{LLM: &stubGenerator{resp: llm.Response{Text: "prose"}}}
	got, err := d.Discover(context.Background(), "Data Analyst", "")
	require.NoError(t, err)
	assert.Empty(t, got.Sources)
}

func TestDiscoverFailures(t *testing.T) {
	_, err := (&Discoverer{LLM: &stubGenerator{}}).Discover(context.Background(), " ", "go")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = (&Discoverer{LLM: &stubGenerator{resp: llm.Response{Text: "  "}}}).Discover(context.Background(), "SRE", "")
	assert.ErrorIs(t, err, apperr.ErrDiscoveryFailed)

	_, err = (&Discoverer{LLM: &stubGenerator{err: errors.New("boom")}}).Discover(context.Background(), "SRE", "")
	assert.ErrorIs(t, err, apperr.ErrDiscoveryFailed)
}

func TestStructureDropsInvalidEntries(t *testing.T) {
	payload := `{
	  "courses": [
	    {"title": "Kubernetes Basics", "provider": "Coursera", "duration": "4 weeks", "cost": "Free", "link": "https://coursera.org/k8s"},
	    {"title": "No link", "provider": "Udemy"},
	    {"title": "Relative", "provider": "Udemy", "link": "/courses/1"},
	    {"title": "", "provider": "edX", "link": "https://edx.org/x"}
	  ],
	  "opportunities": [
	    {"name": "CNCF mentoring", "description": "Mentored OSS work", "difficulty": "Intermediate", "link": "https://mentoring.cncf.io"},
	    {"name": "FTP thing", "link": "ftp://example.com/file"}
	  ]
	}`
	stub := &stubGenerator{resp: llm.Response{Text: payload}}
	set, err := (&Structurer{LLM: stub}).Structure(context.Background(), "notes")
	require.NoError(t, err)

	assert.Equal(t, []Course{{Title: "Kubernetes Basics", Provider: "Coursera", Duration: "4 weeks", Cost: "Free", Link: "https://coursera.org/k8s"}}, set.Courses)
	assert.Equal(t, []Opportunity{{Name: "CNCF mentoring", Description: "Mentored OSS work", Difficulty: "Intermediate", Link: "https://mentoring.cncf.io"}}, set.Opportunities)
	assert.Equal(t, 4, set.Dropped)
	require.Len(t, stub.calls, 1)
	assert.NotNil(t, stub.calls[0].Schema)
	assert.False(t, stub.calls[0].Grounding)
}

func TestStructureTopLevelViolation(t *testing.T) {
	for _, payload := range []string{`not json`, `{"courses": []}`, `{"courses": {}, "opportunities": []}`} {
		stub := &stubGenerator{resp: llm.Response{Text: payload}}
		_, err := (&Structurer{LLM: stub}).Structure(context.Background(), "notes")
		assert.ErrorIs(t, err, apperr.ErrSchemaViolation, payload)
		assert.Equal(t, payload, apperr.RawOf(err))
	}
}

func TestStructureBackendFailure(t *testing.T) {
	stub := &stubGenerator{err: &llm.Error{Kind: llm.KindTransport, Err: errors.New("503")}}
	_, err := (&Structurer{LLM: stub}).Structure(context.Background(), "notes")
	assert.ErrorIs(t, err, apperr.ErrGenerationFailed)
}

func TestCrossReference(t *testing.T) {
	set := StructuredSet{
		Courses: []Course{
			{Title: "A", Provider: "Coursera", Link: "https://www.coursera.org/learn/a"},
			{Title: "B", Provider: "Unknown", Link: "https://made-up.example/b"},
		},
		Opportunities: []Opportunity{
			{Name: "C", Link: "https://summerofcode.withgoogle.com/"},
		},
	}
	sources := []llm.Source{
		{Title: "coursera.org", URI: "https://vertexaisearch.cloud.google.com/grounding-api-redirect/abc"},
		{Title: "Google Summer of Code", URI: "https://summerofcode.withgoogle.com/about"},
	}
	assert.Equal(t, []string{"https://made-up.example/b"}, CrossReference(set, sources))
}
