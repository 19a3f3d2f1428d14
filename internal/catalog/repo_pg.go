package catalog

import (
	"context"
	"database/sql"
	"errors"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, c Course) error {
	const query = `
INSERT INTO catalog_courses (id, title, category, level, description, url, created_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.DB.ExecContext(ctx, query,
		c.ID,
		c.Title,
		c.Category,
		c.Level,
		c.Description,
		c.URL,
		c.CreatedBy,
		c.CreatedAt,
		c.UpdatedAt,
	)
	return err
}

const selectColumns = `id, title, category, level, description, url, created_by, created_at, updated_at`

func (r *PGRepo) List(ctx context.Context, category string) ([]Course, error) {
	query := `SELECT ` + selectColumns + ` FROM catalog_courses`
	args := []any{}
	if category != "" {
		query += ` WHERE lower(category) = lower($1)`
		args = append(args, category)
	}
	query += ` ORDER BY title, id`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Course{}
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Category, &c.Level, &c.Description, &c.URL, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PGRepo) Get(ctx context.Context, id string) (Course, error) {
	var c Course
	err := r.DB.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM catalog_courses WHERE id = $1`, id).
		Scan(&c.ID, &c.Title, &c.Category, &c.Level, &c.Description, &c.URL, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Course{}, ErrNotFound
	}
	return c, err
}

func (r *PGRepo) Update(ctx context.Context, c Course) error {
	const query = `
UPDATE catalog_courses
SET title = $2, category = $3, level = $4, description = $5, url = $6, updated_at = $7
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query,
		c.ID,
		c.Title,
		c.Category,
		c.Level,
		c.Description,
		c.URL,
		c.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PGRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM catalog_courses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
