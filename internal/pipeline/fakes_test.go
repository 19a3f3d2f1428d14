package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strconv"
	"sync"

	"careerlift-backend/internal/analysis"
	"careerlift-backend/internal/jobmatch"
	"careerlift-backend/internal/resources"
	"careerlift-backend/internal/shared/apperr"
	"careerlift-backend/internal/shared/storage/object"
)

type stubAnalyzer struct {
	mu    sync.Mutex
	calls int
	res   analysis.Result
	err   error
}

func (s *stubAnalyzer) Analyze(ctx context.Context, resumeText, careerGoal string) (analysis.Result, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return analysis.Result{}, err
	}
	if s.err != nil {
		return analysis.Result{}, s.err
	}
	res := s.res
	res.CareerGoal = careerGoal
	return res, nil
}

type memStore struct {
	mu       sync.Mutex
	objects  map[string][]byte
	released map[string]int
	next     int
	saveErr  error
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}, released: map[string]int{}}
}

func (m *memStore) Save(ctx context.Context, owner, fileName string, r io.Reader) (object.Object, error) {
	if m.saveErr != nil {
		return object.Object{}, m.saveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return object.Object{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	key := owner + "/" + strconv.Itoa(m.next) + "_" + fileName
	m.objects[key] = data
	return object.Object{Key: key, FileName: fileName, Size: int64(len(data))}, nil
}

func (m *memStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memStore) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.released[key]++
	delete(m.objects, key)
	return nil
}

func (m *memStore) put(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
}

func (m *memStore) releases(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.released[key]
}

func (m *memStore) totalReleases() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.released {
		n += c
	}
	return n
}

type stubDiscoverer struct {
	gotRole   string
	gotSkills string
	res       resources.DiscoveryResult
	err       error
}

func (s *stubDiscoverer) Discover(ctx context.Context, role, skillsText string) (resources.DiscoveryResult, error) {
	s.gotRole = role
	s.gotSkills = skillsText
	return s.res, s.err
}

type stubStructurer struct {
	set resources.StructuredSet
	err error
}

func (s *stubStructurer) Structure(ctx context.Context, freeText string) (resources.StructuredSet, error) {
	return s.set, s.err
}

type stubJobs struct {
	got  jobmatch.Filter
	jobs []jobmatch.JobRecord
	err  error
}

func (s *stubJobs) BuildAndRun(ctx context.Context, f jobmatch.Filter) ([]jobmatch.JobRecord, error) {
	s.got = f
	return s.jobs, s.err
}

type historyEntry struct {
	owner  string
	source string
	res    analysis.Result
}

type memHistory struct {
	mu      sync.Mutex
	entries []historyEntry
	err     error
}

func (m *memHistory) Record(ctx context.Context, ownerID, source string, res analysis.Result) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, historyEntry{owner: ownerID, source: source, res: res})
	return nil
}

func sampleResult() analysis.Result {
	res := analysis.Result{
		ResumeScore:   64,
		Summary:       "Strong backend base, little cloud exposure.",
		MissingSkills: []string{"Kubernetes", "Terraform"},
	}
	res.Recommendations.Certifications = []string{"CKA"}
	res.Recommendations.Opportunities = []string{"Contribute to an open-source operator"}
	return res
}

func errSchema() error {
	return apperr.New(apperr.KindSchemaViolation, "analysis.Analyze", errors.New("resumeScore out of range")).WithRaw(`{"resumeScore":140}`)
}
