package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"careerlift-backend/internal/analysis"
	"careerlift-backend/internal/extract"
	"careerlift-backend/internal/jobmatch"
	"careerlift-backend/internal/recommendations"
	"careerlift-backend/internal/shared/server/middleware"
	"careerlift-backend/internal/shared/server/respond"
	"careerlift-backend/internal/shared/storage/object"
	"careerlift-backend/internal/shared/telemetry"
	"careerlift-backend/internal/shared/util"
)

// Timeouts bounds each operation. Zero disables the bound.
type Timeouts struct {
	Analyze  time.Duration
	Discover time.Duration
	Jobs     time.Duration
}

type Handler struct {
	Svc            *Service
	Store          object.ObjectStore
	Timeouts       Timeouts
	MinResumeChars int
	MaxUploadBytes int64
}

func NewHandler(svc *Service, store object.ObjectStore, timeouts Timeouts, minResumeChars int, maxUploadBytes int64) *Handler {
	if minResumeChars <= 0 {
		minResumeChars = DefaultMinResumeChars
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &Handler{
		Svc:            svc,
		Store:          store,
		Timeouts:       timeouts,
		MinResumeChars: minResumeChars,
		MaxUploadBytes: maxUploadBytes,
	}
}

// RegisterGeneration attaches the routes that call the generative backend.
func (h *Handler) RegisterGeneration(rg *gin.RouterGroup) {
	rg.POST("/analyze", h.analyze)
	rg.POST("/upload-resume", h.uploadResume)
	rg.POST("/courses", h.courses)
}

// RegisterJobs attaches the job match route.
func (h *Handler) RegisterJobs(rg *gin.RouterGroup) {
	rg.POST("/jobs/match", h.matchJobs)
}

type analyzeRequest struct {
	ResumeText string `json:"resumeText"`
	CareerGoal string `json:"careerGoal"`
}

type analyzeResponse struct {
	analysis.Result
	ActionItems []recommendations.ActionItem `json:"actionItems"`
}

func (h *Handler) analyze(c *gin.Context) {
	c.Set(middleware.OpKey, OpAnalyze)
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Invalid JSON body", nil)
		return
	}
	text := strings.TrimSpace(req.ResumeText)
	goal := strings.TrimSpace(req.CareerGoal)
	if text == "" || goal == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "resumeText and careerGoal are required.", nil)
		return
	}
	if n := utf8.RuneCountInString(text); n < h.MinResumeChars {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Resume text is too short to analyze.", gin.H{
			"minChars":       h.MinResumeChars,
			"characterCount": n,
		})
		return
	}

	ctx, cancel := h.withTimeout(c, h.Timeouts.Analyze)
	defer cancel()
	res, err := h.Svc.Analyze(ctx, text, goal)
	if err != nil {
		respond.ErrorFrom(c, err)
		return
	}
	respond.OK(c, analyzeResponse{Result: res, ActionItems: actionItems(res)})
}

func (h *Handler) uploadResume(c *gin.Context) {
	c.Set(middleware.OpKey, OpExtract)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "Resume file is too large.", gin.H{"maxBytes": h.MaxUploadBytes})
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "No resume file uploaded.", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	ctx, cancel := h.withTimeout(c, h.Timeouts.Analyze)
	defer cancel()

	obj, err := h.Store.Save(ctx, middleware.UserIDFromContext(c), fileHeader.Filename, file)
	if errors.Is(err, util.ErrInvalidFileName) {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Uploaded file name is not usable.", nil)
		return
	}
	if err != nil {
		telemetry.Error("pipeline.stage_failed", map[string]any{
			"file":  fileHeader.Filename,
			"error": err.Error(),
		})
		respond.Error(c, http.StatusInternalServerError, "storage_error", "Failed to stage uploaded resume.", nil)
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = obj.SniffedType
	}
	out, err := h.Svc.ExtractAndAnalyze(ctx, extract.Upload{
		Key:      obj.Key,
		FileName: obj.FileName,
		MIMEType: mimeType,
	}, c.PostForm("careerGoal"))
	if err != nil {
		respond.ErrorFrom(c, err)
		return
	}
	respond.OK(c, out)
}

type coursesRequest struct {
	Role   string          `json:"role"`
	Skills json.RawMessage `json:"skills"`
}

func (h *Handler) courses(c *gin.Context) {
	c.Set(middleware.OpKey, OpDiscover)
	var req coursesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Invalid JSON body", nil)
		return
	}
	role := strings.TrimSpace(req.Role)
	if role == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "role is required.", nil)
		return
	}
	skills, err := decodeSkills(req.Skills)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "skills must be a string or an array of strings.", nil)
		return
	}

	ctx, cancel := h.withTimeout(c, h.Timeouts.Discover)
	defer cancel()
	out, err := h.Svc.DiscoverAndStructure(ctx, role, skills)
	if err != nil {
		respond.ErrorFrom(c, err)
		return
	}
	respond.OK(c, gin.H{
		"role":            role,
		"skills":          JoinSkills(skills),
		"courses":         out.Courses,
		"opportunities":   out.Opportunities,
		"sources":         out.Sources,
		"degraded":        out.Degraded,
		"rawText":         out.RawText,
		"unverifiedLinks": out.Unverified,
	})
}

func (h *Handler) matchJobs(c *gin.Context) {
	c.Set(middleware.OpKey, OpMatch)
	var f jobmatch.Filter
	if err := c.ShouldBindJSON(&f); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Invalid JSON body", nil)
		return
	}

	ctx, cancel := h.withTimeout(c, h.Timeouts.Jobs)
	defer cancel()
	jobs, err := h.Svc.MatchJobs(ctx, f)
	if err != nil {
		respond.ErrorFrom(c, err)
		return
	}
	respond.OK(c, gin.H{"jobs": jobs, "count": len(jobs)})
}

func (h *Handler) withTimeout(c *gin.Context, d time.Duration) (context.Context, context.CancelFunc) {
	ctx := WithOwner(c.Request.Context(), middleware.UserIDFromContext(c))
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// decodeSkills accepts either a JSON string or an array of strings.
func decodeSkills(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var one string
	if err := json.Unmarshal(raw, &one); err == nil {
		return []string{one}, nil
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err != nil {
		return nil, err
	}
	return many, nil
}

func actionItems(res analysis.Result) []recommendations.ActionItem {
	return recommendations.GenerateActionItems(recommendations.Input{
		ResumeScore:    res.ResumeScore,
		CareerGoal:     res.CareerGoal,
		MissingSkills:  res.MissingSkills,
		Certifications: res.Recommendations.Certifications,
		Opportunities:  res.Recommendations.Opportunities,
	})
}
