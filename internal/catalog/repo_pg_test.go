package catalog

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

	now := time.Now().UTC()
	c := Course{ID: "c1", Title: "Go", Category: "backend", Level: "beginner", CreatedAt: now, UpdatedAt: now}
	mock.ExpectExec("INSERT INTO catalog_courses").
		WithArgs(c.ID, c.Title, c.Category, c.Level, "", "", "", now, now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := (&PGRepo{DB: db}).Create(context.Background(), c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoListFiltersByCategory(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM catalog_courses WHERE lower\\(category\\)").
		WithArgs("data").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "category", "level", "description", "url", "created_by", "created_at", "updated_at"}).
			AddRow("c1", "SQL", "data", "beginner", "", "", "staff", now, now))

	items, err := (&PGRepo{DB: db}).List(context.Background(), "data")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 || items[0].Title != "SQL" {
		t.Fatalf("unexpected items: %#v", items)
	}
}

func TestPGRepoUpdateMissingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec("UPDATE catalog_courses").WillReturnResult(sqlmock.NewResult(0, 0))
	err = (&PGRepo{DB: db}).Update(context.Background(), Course{ID: "missing"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec("DELETE FROM catalog_courses").WithArgs("c1").WillReturnResult(sqlmock.NewResult(0, 1))
	if err := (&PGRepo{DB: db}).Delete(context.Background(), "c1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}
