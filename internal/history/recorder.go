package history

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"careerlift-backend/internal/analysis"
)

// Recorder turns analysis results into history records.
type Recorder struct {
	Repo Repo
	now  func() time.Time
}

// NewRecorder wraps repo.
func NewRecorder(repo Repo) *Recorder {
	return &Recorder{Repo: repo, now: time.Now}
}

// Record stores res for ownerID.
func (r *Recorder) Record(ctx context.Context, ownerID, source string, res analysis.Result) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return err
	}
	now := time.Now
	if r.now != nil {
		now = r.now
	}
	return r.Repo.Create(ctx, Record{
		ID:            uuid.NewString(),
		OwnerID:       ownerID,
		CareerGoal:    res.CareerGoal,
		ResumeScore:   res.ResumeScore,
		Summary:       res.Summary,
		MissingSkills: res.MissingSkills,
		Result:        payload,
		Model:         res.Metadata.Model,
		Source:        source,
		CreatedAt:     now().UTC(),
	})
}
