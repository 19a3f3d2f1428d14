package history

import (
	"encoding/json"
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

// Record is one stored analysis.
type Record struct {
	ID            string          `json:"id"`
	OwnerID       string          `json:"-"`
	CareerGoal    string          `json:"careerGoal"`
	ResumeScore   int             `json:"resumeScore"`
	Summary       string          `json:"summary"`
	MissingSkills []string        `json:"missingSkills"`
	Result        json.RawMessage `json:"result"`
	Model         string          `json:"model"`
	Source        string          `json:"source"`
	CreatedAt     time.Time       `json:"createdAt"`
}

const (
	SourceText   = "text"
	SourceUpload = "upload"

	defaultListLimit = 20
	maxListLimit     = 100
)

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
