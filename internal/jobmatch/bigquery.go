package jobmatch

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/bigquery"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// BigQueryStore runs parameterized queries on BigQuery.
type BigQueryStore struct {
	client *bigquery.Client
}

// NewBigQueryStore connects with a service-account JSON key, or application default
// credentials when credentialsJSON is empty.
func NewBigQueryStore(ctx context.Context, projectID, credentialsJSON string) (*BigQueryStore, error) {
	var opts []option.ClientOption
	if credentialsJSON != "" {
		creds, err := google.CredentialsFromJSON(ctx, []byte(credentialsJSON), bigquery.Scope)
		if err != nil {
			return nil, fmt.Errorf("parse bigquery credentials: %w", err)
		}
		opts = append(opts, option.WithCredentials(creds))
	}
	client, err := bigquery.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create bigquery client: %w", err)
	}
	return &BigQueryStore{client: client}, nil
}

// Query binds params by name and reads every row.
func (s *BigQueryStore) Query(ctx context.Context, sql string, params []Param) ([]map[string]any, error) {
	q := s.client.Query(sql)
	q.Parameters = make([]bigquery.QueryParameter, 0, len(params))
	for _, p := range params {
		q.Parameters = append(q.Parameters, bigquery.QueryParameter{Name: p.Name, Value: p.Value})
	}
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("bigquery read: %w", err)
	}

	var rows []map[string]any
	for {
		var row map[string]bigquery.Value
		err := it.Next(&row)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("bigquery next: %w", err)
		}
		rows = append(rows, plainRow(row))
	}
	return rows, nil
}

// Close releases the client.
func (s *BigQueryStore) Close() error {
	return s.client.Close()
}

func plainRow(row map[string]bigquery.Value) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		out[k] = plainValue(v)
	}
	return out
}

func plainValue(v bigquery.Value) any {
	if list, ok := v.([]bigquery.Value); ok {
		out := make([]any, len(list))
		for i, item := range list {
			out[i] = plainValue(item)
		}
		return out
	}
	return v
}

var _ Store = (*BigQueryStore)(nil)
