package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"careerlift-backend/internal/extract"
	"careerlift-backend/internal/jobmatch"
	"careerlift-backend/internal/resources"
	"careerlift-backend/internal/shared/server/middleware"
	"careerlift-backend/internal/shared/util"
)

func newRouter(svc *Service, store *memStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.Identity())
	h := NewHandler(svc, store, Timeouts{}, 50, 1<<20)
	api := r.Group("/api")
	h.RegisterGeneration(api)
	h.RegisterJobs(api)
	return r
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Guest-Id", "g1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAnalyzeRejectsShortResumeWithoutCallingBackend(t *testing.T) {
	an := &stubAnalyzer{res: sampleResult()}
	r := newRouter(&Service{Analyzer: an}, newMemStore())

	short := strings.Repeat("x", 40)
	w := postJSON(r, "/api/analyze", `{"resumeText":"`+short+`","careerGoal":"SRE"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if an.calls != 0 {
		t.Fatalf("expected Analyze not to be invoked, got %d calls", an.calls)
	}
	if !strings.Contains(w.Body.String(), `"validation_error"`) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestAnalyzeRequiresGoal(t *testing.T) {
	an := &stubAnalyzer{res: sampleResult()}
	r := newRouter(&Service{Analyzer: an}, newMemStore())
	w := postJSON(r, "/api/analyze", `{"resumeText":"`+longResume+`"}`)
	if w.Code != http.StatusBadRequest || an.calls != 0 {
		t.Fatalf("expected 400 without backend call, got %d (%d calls)", w.Code, an.calls)
	}
}

func TestAnalyzeReturnsResultWithActionItems(t *testing.T) {
	r := newRouter(&Service{Analyzer: &stubAnalyzer{res: sampleResult()}}, newMemStore())
	w := postJSON(r, "/api/analyze", `{"resumeText":"`+longResume+`","careerGoal":"Platform Engineer"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["resumeScore"].(float64) != 64 || body["careerGoal"] != "Platform Engineer" {
		t.Fatalf("unexpected body: %v", body)
	}
	items, ok := body["actionItems"].([]any)
	if !ok || len(items) == 0 {
		t.Fatalf("expected action items, got %v", body["actionItems"])
	}
}

func TestAnalyzeMapsSchemaViolation(t *testing.T) {
	an := &stubAnalyzer{err: errSchema()}
	r := newRouter(&Service{Analyzer: an}, newMemStore())
	w := postJSON(r, "/api/analyze", `{"resumeText":"`+longResume+`","careerGoal":"SRE"}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "resumeScore") {
		t.Fatalf("raw payload leaked to client: %s", w.Body.String())
	}
}

func multipartBody(t *testing.T, fileName, content, goal string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if goal != "" {
		if err := mw.WriteField("careerGoal", goal); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestUploadResumeExtractsAndAnalyzes(t *testing.T) {
	store := newMemStore()
	svc := &Service{Analyzer: &stubAnalyzer{res: sampleResult()}, Extractor: extract.New(store, 0)}
	r := newRouter(svc, store)

	body, contentType := multipartBody(t, "cv.txt", longResume, "Data Engineer")
	req := httptest.NewRequest(http.MethodPost, "/api/upload-resume", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var out Extraction
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Text != longResume || out.CharacterCount != len(longResume) || out.Analysis == nil {
		t.Fatalf("unexpected extraction: %#v", out)
	}
	if store.totalReleases() != 1 {
		t.Fatalf("expected staged upload to be released once, got %d", store.totalReleases())
	}
}

func TestUploadResumeStagingErrors(t *testing.T) {
	tests := []struct {
		name    string
		saveErr error
		want    int
		code    string
	}{
		{"unusable file name", fmt.Errorf("sanitize file name: %w", util.ErrInvalidFileName), http.StatusBadRequest, "validation_error"},
		{"backend failure", errors.New("disk full"), http.StatusInternalServerError, "storage_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			store.saveErr = tt.saveErr
			an := &stubAnalyzer{res: sampleResult()}
			r := newRouter(&Service{Analyzer: an, Extractor: extract.New(store, 0)}, store)

			body, contentType := multipartBody(t, "cv.txt", longResume, "Data Engineer")
			req := httptest.NewRequest(http.MethodPost, "/api/upload-resume", body)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.want || !strings.Contains(w.Body.String(), tt.code) {
				t.Fatalf("expected %d %s, got %d: %s", tt.want, tt.code, w.Code, w.Body.String())
			}
			if an.calls != 0 {
				t.Fatalf("expected no analysis, got %d calls", an.calls)
			}
		})
	}
}

func TestUploadResumeRequiresFile(t *testing.T) {
	r := newRouter(&Service{}, newMemStore())
	req := httptest.NewRequest(http.MethodPost, "/api/upload-resume", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestUploadResumeUnsupportedFormat(t *testing.T) {
	store := newMemStore()
	svc := &Service{Analyzer: &stubAnalyzer{}, Extractor: extract.New(store, 0)}
	r := newRouter(svc, store)

	body, contentType := multipartBody(t, "cv.doc", "\xD0\xCF\x11\xE0\xA1\xB1\x1A\xE1legacy", "")
	req := httptest.NewRequest(http.MethodPost, "/api/upload-resume", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
	if store.totalReleases() != 1 {
		t.Fatalf("expected release on failure, got %d", store.totalReleases())
	}
}

func TestCoursesAcceptsStringOrArraySkills(t *testing.T) {
	for _, skills := range []string{`"SQL, Airflow"`, `["SQL","Airflow"]`} {
		disc := &stubDiscoverer{res: resources.DiscoveryResult{Text: "prose"}}
		svc := &Service{Discoverer: disc, Structurer: &stubStructurer{}}
		r := newRouter(svc, newMemStore())

		w := postJSON(r, "/api/courses", `{"role":"Data Engineer","skills":`+skills+`}`)
		if w.Code != http.StatusOK {
			t.Fatalf("skills %s: expected 200, got %d", skills, w.Code)
		}
		if disc.gotSkills != "SQL, Airflow" {
			t.Fatalf("skills %s: unexpected skills text %q", skills, disc.gotSkills)
		}
		var body map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		if _, ok := body["courses"].([]any); !ok {
			t.Fatalf("expected courses array, got %v", body["courses"])
		}
	}
}

func TestCoursesRequiresRole(t *testing.T) {
	r := newRouter(&Service{Discoverer: &stubDiscoverer{}, Structurer: &stubStructurer{}}, newMemStore())
	if w := postJSON(r, "/api/courses", `{"skills":["Go"]}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if w := postJSON(r, "/api/courses", `{"role":"SRE","skills":42}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for numeric skills, got %d", w.Code)
	}
}

func TestMatchJobsEndpoint(t *testing.T) {
	jobs := &stubJobs{jobs: []jobmatch.JobRecord{{JobTitle: "Backend Engineer", Company: "Acme"}}}
	r := newRouter(&Service{Jobs: jobs}, newMemStore())

	w := postJSON(r, "/api/jobs/match", `{"skills":["go"],"location":"Remote","limit":5}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Jobs  []jobmatch.JobRecord `json:"jobs"`
		Count int                  `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Count != 1 || body.Jobs[0].Company != "Acme" {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
	if jobs.got.Limit != 5 || jobs.got.Location != "Remote" {
		t.Fatalf("unexpected filter: %#v", jobs.got)
	}
}

func TestMatchJobsNotConfigured(t *testing.T) {
	r := newRouter(&Service{}, newMemStore())
	if w := postJSON(r, "/api/jobs/match", `{}`); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}
