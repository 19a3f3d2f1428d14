package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	rec := Record{
		ID:          "rec-1",
		OwnerID:     "guest:abc",
		CareerGoal:  "Data Engineer",
		ResumeScore: 62,
		Summary:     "solid base",
		Result:      []byte(`{"resumeScore":62}`),
		Model:       "gemini-2.5-flash",
		Source:      SourceText,
		CreatedAt:   time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO analysis_history").
		WithArgs(
			rec.ID,
			rec.OwnerID,
			rec.CareerGoal,
			rec.ResumeScore,
			rec.Summary,
			[]byte(`[]`),
			[]byte(rec.Result),
			rec.Model,
			rec.Source,
			rec.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), rec); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoListByOwnerClampsLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "owner_id", "career_goal", "resume_score", "summary", "missing_skills", "result", "model", "source", "created_at"}).
		AddRow("rec-1", "user:1", "SRE", 40, "s", []byte(`["Go","Kubernetes"]`), []byte(`{}`), "m", SourceUpload, created)
	mock.ExpectQuery("SELECT (.+) FROM analysis_history").
		WithArgs("user:1", maxListLimit, 0).
		WillReturnRows(rows)

	repo := &PGRepo{DB: db}
	items, err := repo.ListByOwner(context.Background(), "user:1", 1000, -3)
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 record, got %d", len(items))
	}
	if len(items[0].MissingSkills) != 2 || items[0].MissingSkills[1] != "Kubernetes" {
		t.Fatalf("unexpected skills: %#v", items[0].MissingSkills)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoLatestNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("SELECT (.+) FROM analysis_history").
		WithArgs("user:1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := &PGRepo{DB: db}
	if _, err := repo.Latest(context.Background(), "user:1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
