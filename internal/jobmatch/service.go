// Package jobmatch renders parameterized job searches and runs them against a tabular store.
package jobmatch

import (
	"context"
	"errors"

	"careerlift-backend/internal/shared/apperr"
	"careerlift-backend/internal/shared/telemetry"
)

// Store executes a parameterized query and returns rows keyed by column name.
type Store interface {
	Query(ctx context.Context, sql string, params []Param) ([]map[string]any, error)
}

// Config names the job table and the result cap.
type Config struct {
	Table    Table
	MaxLimit int
}

// Service matches jobs. Whether it is enabled is decided once, at construction.
type Service struct {
	builder *Builder
	store   Store
	enabled bool
}

// NewService validates cfg. A partially configured table or a nil store yields a disabled
// service; a fully configured table with invalid identifiers is an error.
func NewService(cfg Config, store Store) (*Service, error) {
	if !cfg.Table.Configured() || store == nil {
		return &Service{}, nil
	}
	b, err := NewBuilder(cfg.Table, cfg.MaxLimit)
	if err != nil {
		return nil, err
	}
	return &Service{builder: b, store: store, enabled: true}, nil
}

// Enabled reports whether the service can run queries.
func (s *Service) Enabled() bool { return s != nil && s.enabled }

// BuildAndRun renders the filter and executes it. A disabled service fails before any I/O.
func (s *Service) BuildAndRun(ctx context.Context, f Filter) ([]JobRecord, error) {
	const op = "jobmatch.BuildAndRun"
	if !s.Enabled() {
		return nil, apperr.New(apperr.KindStoreNotConfigured, op, errors.New("job store is not configured"))
	}
	q := s.builder.Build(f)
	rows, err := s.store.Query(ctx, q.SQL(), q.Params())
	if err != nil {
		telemetry.Error("jobmatch.query_failed", map[string]any{"error": err.Error()})
		return nil, apperr.New(apperr.KindQueryFailed, op, err)
	}
	out := make([]JobRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, recordFromRow(row))
	}
	return out, nil
}
