package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a record.
func (r *PGRepo) Create(ctx context.Context, rec Record) error {
	const query = `
INSERT INTO analysis_history (
	id, owner_id, career_goal, resume_score, summary, missing_skills, result, model, source, created_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	skills, err := json.Marshal(nonNil(rec.MissingSkills))
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		rec.ID,
		rec.OwnerID,
		rec.CareerGoal,
		rec.ResumeScore,
		rec.Summary,
		skills,
		[]byte(rec.Result),
		rec.Model,
		rec.Source,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert analysis_history: %w", err)
	}
	return nil
}

const selectColumns = `id, owner_id, career_goal, resume_score, summary, missing_skills, result, model, source, created_at`

// ListByOwner returns records newest first.
func (r *PGRepo) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Record, error) {
	limit, offset = clampPage(limit, offset)
	rows, err := r.DB.QueryContext(ctx, `
SELECT `+selectColumns+`
FROM analysis_history
WHERE owner_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Latest returns the newest record for the owner.
func (r *PGRepo) Latest(ctx context.Context, ownerID string) (Record, error) {
	row := r.DB.QueryRowContext(ctx, `
SELECT `+selectColumns+`
FROM analysis_history
WHERE owner_id = $1
ORDER BY created_at DESC
LIMIT 1`, ownerID)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return rec, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (Record, error) {
	var (
		rec    Record
		skills []byte
		result []byte
	)
	if err := s.Scan(
		&rec.ID,
		&rec.OwnerID,
		&rec.CareerGoal,
		&rec.ResumeScore,
		&rec.Summary,
		&skills,
		&result,
		&rec.Model,
		&rec.Source,
		&rec.CreatedAt,
	); err != nil {
		return Record{}, err
	}
	if len(skills) > 0 {
		if err := json.Unmarshal(skills, &rec.MissingSkills); err != nil {
			return Record{}, fmt.Errorf("decode missing_skills: %w", err)
		}
	}
	rec.Result = json.RawMessage(result)
	return rec, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
