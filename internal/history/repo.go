package history

import "context"

// Repo defines persistence operations for analysis history.
type Repo interface {
	Create(ctx context.Context, rec Record) error
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Record, error)
	Latest(ctx context.Context, ownerID string) (Record, error)
}
